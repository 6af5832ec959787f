// Package state holds the tracked battle state: combatant and side
// aggregates composed from possibility sets, turn counters, stat ranges and
// move-slot sets, with turn-boundary tick semantics and the symmetric
// pairwise relations (trapping, lock-on) between active combatants.
package state

import (
	"fmt"

	"github.com/nathoo/battlecore/dex"
	"github.com/nathoo/battlecore/engine/counters"
	"github.com/nathoo/battlecore/engine/moveset"
	"github.com/nathoo/battlecore/engine/possible"
	"github.com/nathoo/battlecore/engine/stats"
	"github.com/nathoo/battlecore/types"
)

// moveSlots is the slot count of a full move-set.
const moveSlots = 4

// sleepDurations are the possible sleep-turn kinds: naturally inflicted
// sleep vs. rest's fixed duration.
var sleepDurations = map[string]int{"slp": 4, "rest": 2}

// Pokemon is one combatant's persistent (base) tracked state. The hidden
// traits are possibility sets narrowed as evidence arrives; Volatile is
// non-nil only while the combatant is active.
type Pokemon struct {
	Species *possible.Set[types.SpeciesName, dex.Species]
	Ability *possible.Set[types.AbilityName, dex.Ability]
	Item    *possible.Set[types.ItemName, dex.Item]
	Types   []types.TypeName
	Level   int

	Stats map[types.StatName]*stats.Range
	Moves *moveset.MoveSet // persistent move-set; the active copy lives on Volatile

	HPPercent int // observed hp, normalized to [0, 100]
	Status    types.StatusName
	Sleep     *counters.Variable // slp turn tracking, silent
	Fainted   bool

	Volatile *Volatile

	dx *dex.Dex
}

// NewPokemon creates a freshly revealed combatant: species pinned, ability
// narrowed to the species' ability list, item fully unknown, stats at their
// widest ranges, move-set drawn from the species movepool.
func NewPokemon(dx *dex.Dex, species types.SpeciesName, level int) (*Pokemon, error) {
	sp, err := dx.Species(species)
	if err != nil {
		return nil, err
	}
	spSet, err := possible.New(dx.SpeciesUniverse(), species)
	if err != nil {
		return nil, err
	}
	ability, err := possible.New(dx.AbilityUniverse(), sp.Abilities...)
	if err != nil {
		return nil, fmt.Errorf("species %q abilities: %w", species, err)
	}
	item, err := possible.New(dx.ItemUniverse())
	if err != nil {
		return nil, err
	}
	moves, err := moveset.New(sp.Movepool, moveSlots, maxPPFunc(dx))
	if err != nil {
		return nil, fmt.Errorf("species %q movepool: %w", species, err)
	}

	p := &Pokemon{
		Species:   spSet,
		Ability:   ability,
		Item:      item,
		Level:     level,
		Stats:     make(map[types.StatName]*stats.Range, 6),
		Moves:     moves,
		HPPercent: 100,
		Sleep:     counters.NewVariable(sleepDurations, true),
		dx:        dx,
	}
	for _, stat := range []types.StatName{types.HP, types.Atk, types.Def, types.SpA, types.SpD, types.Spe} {
		p.Stats[stat] = stats.New(stat == types.HP, sp.BaseStats[stat], level)
	}

	// Types follow the species once it is definite (immediately, here;
	// later again if a form change re-pins it).
	p.Species.OnDetermined(func(_ types.SpeciesName, d dex.Species) {
		p.Types = d.Types
	})
	return p, nil
}

func maxPPFunc(dx *dex.Dex) moveset.PPFunc {
	return func(name types.MoveName) int {
		m, err := dx.Move(name)
		if err != nil {
			return 0
		}
		return m.MaxPP()
	}
}

// SetAbility records the combatant's revealed ability.
func (p *Pokemon) SetAbility(name types.AbilityName) error {
	return p.traits().ability.Narrow(name)
}

// SetItem records the combatant's revealed held item.
func (p *Pokemon) SetItem(name types.ItemName) error {
	return p.Item.Narrow(name)
}

// ConsumeItem records that the held item was used up or removed: the old
// possibility set is resolved to the revealed item (when named), then the
// slot becomes definitely empty.
func (p *Pokemon) ConsumeItem(name types.ItemName) error {
	if name != "" {
		if err := p.Item.Narrow(name); err != nil {
			return err
		}
	}
	fresh, err := possible.New(p.dx.ItemUniverse(), dex.NoItem)
	if err != nil {
		return err
	}
	p.Item = fresh
	return nil
}

// EffectiveAbility returns the ability possibility set that currently
// governs the combatant: the transform/override snapshot while one is in
// force, else the base set.
func (p *Pokemon) EffectiveAbility() *possible.Set[types.AbilityName, dex.Ability] {
	return p.traits().ability
}

// EffectiveTypes returns the types currently in force.
func (p *Pokemon) EffectiveTypes() []types.TypeName {
	if p.Volatile != nil && p.Volatile.overrideTypes != nil {
		return p.Volatile.overrideTypes
	}
	return p.Types
}

// ActiveMoves returns the move-set currently in force: the volatile copy
// while active, else the persistent set.
func (p *Pokemon) ActiveMoves() *moveset.MoveSet {
	if p.Volatile != nil && p.Volatile.Moves != nil {
		return p.Volatile.Moves
	}
	return p.Moves
}

// traits resolves to the override snapshot while transformed.
func (p *Pokemon) traits() traitRefs {
	if p.Volatile != nil && p.Volatile.overrideAbility != nil {
		return traitRefs{ability: p.Volatile.overrideAbility}
	}
	return traitRefs{ability: p.Ability}
}

type traitRefs struct {
	ability *possible.Set[types.AbilityName, dex.Ability]
}

// SetStatus applies a persistent status condition. Sleep starts its turn
// counter; rest is sleep with a fixed duration.
func (p *Pokemon) SetStatus(s types.StatusName, fromRest bool) error {
	p.Status = s
	if s == "slp" {
		kind := "slp"
		if fromRest {
			kind = "rest"
		}
		return p.Sleep.Start(kind, false, true)
	}
	return nil
}

// CureStatus clears any persistent status condition.
func (p *Pokemon) CureStatus() {
	p.Status = ""
	p.Sleep.End()
}

// Faint marks the combatant fainted and tears down its volatile state.
func (p *Pokemon) Faint() {
	p.Fainted = true
	p.HPPercent = 0
	p.Status = ""
	if p.Volatile != nil {
		p.Volatile.Clear()
		p.Volatile = nil
	}
}
