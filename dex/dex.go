// Package dex holds the immutable species/move/item/ability reference data.
// A Dex is built once (by the loader or by tests) and never mutated; the
// tracking engine treats it as a read-only lookup table.
package dex

import (
	"fmt"
	"sort"

	"github.com/nathoo/battlecore/types"
)

// NoItem is the dex entry representing an empty item slot. Every dex must
// define it so item possibility sets can collapse to "holding nothing".
const NoItem types.ItemName = "none"

// Species is one species entry.
type Species struct {
	Name      types.SpeciesName
	Types     []types.TypeName
	BaseStats map[types.StatName]int // hp, atk, def, spa, spd, spe
	Abilities []types.AbilityName
	Movepool  []types.MoveName
}

// Move is one move entry.
type Move struct {
	Name     types.MoveName
	Type     types.TypeName
	Category string // "physical", "special", or "status"
	BasePP   int
	Weather  types.WeatherName // weather this move summons, if any
	TwoTurn  bool              // charges one turn, executes the next
	Protect  bool              // protect/detect family
	Recharge bool              // forces a recharge turn after use

	SelfSwitch bool // u-turn family: the user switches out after the hit
	BatonPass  bool // passes the passable volatile subset to the replacement
	Trapping   bool // wrap family: pins the target for several turns
}

// MaxPP returns the fully PP-maxed count for the move (8/5 of base).
func (m Move) MaxPP() int {
	return m.BasePP * 8 / 5
}

// Item is one held-item entry.
type Item struct {
	Name           types.ItemName
	ExtendsWeather types.WeatherName // rock items: the weather they extend
	ExtendsScreens bool              // light clay
	ChoiceLock     bool              // locks the holder into its first move
}

// Ability is one ability entry.
type Ability struct {
	Name                 types.AbilityName
	SuppressesWeather    bool              // cloud nine, air lock
	IgnoresItem          bool              // klutz
	IgnoresTargetAbility bool              // mold breaker
	SummonsWeather       types.WeatherName // drizzle, drought, etc.
	Truant               bool              // acts only every other turn
}

// Dex is the compiled reference data. All maps are read-only after New.
type Dex struct {
	species   map[types.SpeciesName]Species
	moves     map[types.MoveName]Move
	items     map[types.ItemName]Item
	abilities map[types.AbilityName]Ability
}

// New builds a Dex from entry lists, checking for duplicates and dangling
// references. The "none" item is added automatically if absent.
func New(species []Species, moves []Move, items []Item, abilities []Ability) (*Dex, error) {
	d := &Dex{
		species:   make(map[types.SpeciesName]Species, len(species)),
		moves:     make(map[types.MoveName]Move, len(moves)),
		items:     make(map[types.ItemName]Item, len(items)+1),
		abilities: make(map[types.AbilityName]Ability, len(abilities)),
	}

	for _, m := range moves {
		if _, ok := d.moves[m.Name]; ok {
			return nil, fmt.Errorf("duplicate move %q", m.Name)
		}
		if m.BasePP <= 0 {
			return nil, fmt.Errorf("move %q: base pp must be positive", m.Name)
		}
		d.moves[m.Name] = m
	}
	for _, it := range items {
		if _, ok := d.items[it.Name]; ok {
			return nil, fmt.Errorf("duplicate item %q", it.Name)
		}
		d.items[it.Name] = it
	}
	if _, ok := d.items[NoItem]; !ok {
		d.items[NoItem] = Item{Name: NoItem}
	}
	for _, a := range abilities {
		if _, ok := d.abilities[a.Name]; ok {
			return nil, fmt.Errorf("duplicate ability %q", a.Name)
		}
		d.abilities[a.Name] = a
	}

	for _, sp := range species {
		if _, ok := d.species[sp.Name]; ok {
			return nil, fmt.Errorf("duplicate species %q", sp.Name)
		}
		if len(sp.Abilities) == 0 {
			return nil, fmt.Errorf("species %q: at least one ability required", sp.Name)
		}
		for _, a := range sp.Abilities {
			if _, ok := d.abilities[a]; !ok {
				return nil, fmt.Errorf("species %q references unknown ability %q", sp.Name, a)
			}
		}
		for _, m := range sp.Movepool {
			if _, ok := d.moves[m]; !ok {
				return nil, fmt.Errorf("species %q references unknown move %q", sp.Name, m)
			}
		}
		d.species[sp.Name] = sp
	}

	return d, nil
}

// Species looks up a species by name. Unknown names produce an error with a
// closest-match suggestion when one is near enough.
func (d *Dex) Species(name types.SpeciesName) (Species, error) {
	sp, ok := d.species[name]
	if !ok {
		return Species{}, fmt.Errorf("unknown species %q%s", name,
			suggest(string(name), speciesKeys(d.species)))
	}
	return sp, nil
}

// Move looks up a move by name.
func (d *Dex) Move(name types.MoveName) (Move, error) {
	m, ok := d.moves[name]
	if !ok {
		return Move{}, fmt.Errorf("unknown move %q%s", name,
			suggest(string(name), moveKeys(d.moves)))
	}
	return m, nil
}

// Item looks up an item by name.
func (d *Dex) Item(name types.ItemName) (Item, error) {
	it, ok := d.items[name]
	if !ok {
		return Item{}, fmt.Errorf("unknown item %q%s", name,
			suggest(string(name), itemKeys(d.items)))
	}
	return it, nil
}

// Ability looks up an ability by name.
func (d *Dex) Ability(name types.AbilityName) (Ability, error) {
	a, ok := d.abilities[name]
	if !ok {
		return Ability{}, fmt.Errorf("unknown ability %q%s", name,
			suggest(string(name), abilityKeys(d.abilities)))
	}
	return a, nil
}

// ScreenExtender returns the item that extends screen durations (light
// clay), if the dex defines one.
func (d *Dex) ScreenExtender() (types.ItemName, bool) {
	for name, it := range d.items {
		if it.ExtendsScreens {
			return name, true
		}
	}
	return "", false
}

// WeatherExtender returns the item that extends the given weather (the rock
// items), if the dex defines one.
func (d *Dex) WeatherExtender(w types.WeatherName) (types.ItemName, bool) {
	for name, it := range d.items {
		if it.ExtendsWeather == w {
			return name, true
		}
	}
	return "", false
}

// AbilityUniverse returns the full ability map for use as a possibility-set
// universe. The caller must treat it as read-only.
func (d *Dex) AbilityUniverse() map[types.AbilityName]Ability {
	return d.abilities
}

// ItemUniverse returns the full item map (including "none") for use as a
// possibility-set universe. Read-only.
func (d *Dex) ItemUniverse() map[types.ItemName]Item {
	return d.items
}

// SpeciesUniverse returns the full species map. Read-only.
func (d *Dex) SpeciesUniverse() map[types.SpeciesName]Species {
	return d.species
}

// SpeciesNames returns all species names in sorted order. The encoder relies
// on this order being stable across calls.
func (d *Dex) SpeciesNames() []types.SpeciesName {
	names := speciesKeys(d.species)
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// MoveNames returns all move names in sorted order.
func (d *Dex) MoveNames() []types.MoveName {
	names := moveKeys(d.moves)
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// ItemNames returns all item names in sorted order.
func (d *Dex) ItemNames() []types.ItemName {
	names := itemKeys(d.items)
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// AbilityNames returns all ability names in sorted order.
func (d *Dex) AbilityNames() []types.AbilityName {
	names := abilityKeys(d.abilities)
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

func speciesKeys(m map[types.SpeciesName]Species) []types.SpeciesName {
	keys := make([]types.SpeciesName, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

func moveKeys(m map[types.MoveName]Move) []types.MoveName {
	keys := make([]types.MoveName, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

func itemKeys(m map[types.ItemName]Item) []types.ItemName {
	keys := make([]types.ItemName, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

func abilityKeys(m map[types.AbilityName]Ability) []types.AbilityName {
	keys := make([]types.AbilityName, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
