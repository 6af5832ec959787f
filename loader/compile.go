// Package loader loads Lua dex data into Go structs at startup.
// The Lua VM is discarded after loading — zero Lua at runtime.
package loader

import (
	"fmt"
	"sort"

	"github.com/nathoo/battlecore/dex"
	"github.com/nathoo/battlecore/types"
	lua "github.com/yuin/gopher-lua"
)

// rawDef holds a dex entry table before compilation.
type rawDef struct {
	id    string
	table *lua.LTable
}

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	v := tbl.RawGetString(key)
	if s, ok := v.(lua.LString); ok {
		return string(s)
	}
	return ""
}

// getBool returns a bool field from a Lua table, or false if missing.
func getBool(tbl *lua.LTable, key string) bool {
	v := tbl.RawGetString(key)
	if b, ok := v.(lua.LBool); ok {
		return bool(b)
	}
	return false
}

// getInt returns an int field from a Lua table, or 0 if missing.
func getInt(tbl *lua.LTable, key string) int {
	v := tbl.RawGetString(key)
	if n, ok := v.(lua.LNumber); ok {
		return int(n)
	}
	return 0
}

// getTable returns a table field from a Lua table, or nil if missing.
func getTable(tbl *lua.LTable, key string) *lua.LTable {
	v := tbl.RawGetString(key)
	if t, ok := v.(*lua.LTable); ok {
		return t
	}
	return nil
}

// stringList converts a Lua array field to a string slice. Non-string
// elements error.
func stringList(tbl *lua.LTable, key string) ([]string, error) {
	arr := getTable(tbl, key)
	if arr == nil {
		return nil, nil
	}
	maxN := arr.MaxN()
	out := make([]string, 0, maxN)
	for i := 1; i <= maxN; i++ {
		v := arr.RawGetInt(i)
		s, ok := v.(lua.LString)
		if !ok {
			return nil, fmt.Errorf("%s[%d]: expected string, got %s", key, i, v.Type())
		}
		out = append(out, string(s))
	}
	return out, nil
}

// statTable converts a baseStats table into a stat map. Only the six core
// stat keys are accepted.
func statTable(tbl *lua.LTable) (map[types.StatName]int, error) {
	stats := map[types.StatName]int{}
	var convErr error
	tbl.ForEach(func(k, v lua.LValue) {
		if convErr != nil {
			return
		}
		ks, ok := k.(lua.LString)
		if !ok {
			convErr = fmt.Errorf("baseStats: non-string key %s", k.Type())
			return
		}
		switch types.StatName(ks) {
		case types.HP, types.Atk, types.Def, types.SpA, types.SpD, types.Spe:
		default:
			convErr = fmt.Errorf("baseStats: unknown stat %q", ks)
			return
		}
		n, ok := v.(lua.LNumber)
		if !ok {
			convErr = fmt.Errorf("baseStats.%s: expected number, got %s", ks, v.Type())
			return
		}
		stats[types.StatName(ks)] = int(n)
	})
	return stats, convErr
}

// compile converts all collected Lua tables into typed dex entries.
func compile(coll *collector) ([]dex.Species, []dex.Move, []dex.Item, []dex.Ability, error) {
	var species []dex.Species
	for _, raw := range coll.species {
		sp, err := compileSpecies(raw)
		if err != nil {
			return nil, nil, nil, nil, fmt.Errorf("compiling species %s: %w", raw.id, err)
		}
		species = append(species, sp)
	}

	var moves []dex.Move
	for _, raw := range coll.moves {
		m, err := compileMove(raw)
		if err != nil {
			return nil, nil, nil, nil, fmt.Errorf("compiling move %s: %w", raw.id, err)
		}
		moves = append(moves, m)
	}

	var items []dex.Item
	for _, raw := range coll.items {
		items = append(items, compileItem(raw))
	}

	var abilities []dex.Ability
	for _, raw := range coll.abilities {
		abilities = append(abilities, compileAbility(raw))
	}

	return species, moves, items, abilities, nil
}

func compileSpecies(raw rawDef) (dex.Species, error) {
	tbl := raw.table
	sp := dex.Species{Name: types.SpeciesName(raw.id)}

	typs, err := stringList(tbl, "types")
	if err != nil {
		return dex.Species{}, err
	}
	for _, t := range typs {
		sp.Types = append(sp.Types, types.TypeName(t))
	}

	statsTbl := getTable(tbl, "baseStats")
	if statsTbl == nil {
		return dex.Species{}, fmt.Errorf("missing baseStats table")
	}
	sp.BaseStats, err = statTable(statsTbl)
	if err != nil {
		return dex.Species{}, err
	}

	abilities, err := stringList(tbl, "abilities")
	if err != nil {
		return dex.Species{}, err
	}
	for _, a := range abilities {
		sp.Abilities = append(sp.Abilities, types.AbilityName(a))
	}

	movepool, err := stringList(tbl, "movepool")
	if err != nil {
		return dex.Species{}, err
	}
	for _, m := range movepool {
		sp.Movepool = append(sp.Movepool, types.MoveName(m))
	}

	return sp, nil
}

func compileMove(raw rawDef) (dex.Move, error) {
	tbl := raw.table
	m := dex.Move{
		Name:       types.MoveName(raw.id),
		Type:       types.TypeName(getString(tbl, "type")),
		Category:   getString(tbl, "category"),
		BasePP:     getInt(tbl, "pp"),
		Weather:    types.WeatherName(getString(tbl, "weather")),
		TwoTurn:    getBool(tbl, "twoTurn"),
		Protect:    getBool(tbl, "protect"),
		Recharge:   getBool(tbl, "recharge"),
		SelfSwitch: getBool(tbl, "selfSwitch"),
		BatonPass:  getBool(tbl, "batonPass"),
		Trapping:   getBool(tbl, "trapping"),
	}
	if m.Category == "" {
		return dex.Move{}, fmt.Errorf("missing category")
	}
	return m, nil
}

func compileItem(raw rawDef) dex.Item {
	tbl := raw.table
	return dex.Item{
		Name:           types.ItemName(raw.id),
		ExtendsWeather: types.WeatherName(getString(tbl, "extendsWeather")),
		ExtendsScreens: getBool(tbl, "extendsScreens"),
		ChoiceLock:     getBool(tbl, "choiceLock"),
	}
}

func compileAbility(raw rawDef) dex.Ability {
	tbl := raw.table
	return dex.Ability{
		Name:                 types.AbilityName(raw.id),
		SuppressesWeather:    getBool(tbl, "suppressesWeather"),
		IgnoresItem:          getBool(tbl, "ignoresItem"),
		IgnoresTargetAbility: getBool(tbl, "ignoresTargetAbility"),
		SummonsWeather:       types.WeatherName(getString(tbl, "summonsWeather")),
		Truant:               getBool(tbl, "truant"),
	}
}

// sortedLuaFiles returns the file list in alphabetical order. Entry order
// never matters to the compiled dex, but a stable order keeps error
// messages reproducible.
func sortedLuaFiles(files []string) []string {
	sort.Strings(files)
	return files
}
