package loader

import (
	lua "github.com/yuin/gopher-lua"
)

// registerAPI registers the dex constructors as Lua globals.
func registerAPI(L *lua.LState, coll *collector) {
	// Species "id" { ... } — curried: Species("id") returns a function that
	// takes the definition table.
	L.SetGlobal("Species", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			coll.species = append(coll.species, rawDef{id: id, table: tbl})
			return 0
		}))
		return 1
	}))

	// Move "id" { ... } — curried.
	L.SetGlobal("Move", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			coll.moves = append(coll.moves, rawDef{id: id, table: tbl})
			return 0
		}))
		return 1
	}))

	// Item "id" { ... } — curried.
	L.SetGlobal("Item", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			coll.items = append(coll.items, rawDef{id: id, table: tbl})
			return 0
		}))
		return 1
	}))

	// Ability "id" { ... } — curried.
	L.SetGlobal("Ability", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			coll.abilities = append(coll.abilities, rawDef{id: id, table: tbl})
			return 0
		}))
		return 1
	}))
}
