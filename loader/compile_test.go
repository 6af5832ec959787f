package loader

import (
	"strings"
	"testing"

	"github.com/nathoo/battlecore/types"
	lua "github.com/yuin/gopher-lua"
)

// newTestVM creates a sandboxed Lua VM with the API registered and a fresh collector.
func newTestVM() (*lua.LState, *collector) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibs(L)
	sandbox(L)
	coll := &collector{}
	registerAPI(L, coll)
	return L, coll
}

func TestCompileSpecies(t *testing.T) {
	L, coll := newTestVM()
	defer L.Close()

	if err := L.DoString(`
		Species "golduck" {
			types = { "water" },
			baseStats = { hp = 80, atk = 82, def = 78, spa = 95, spd = 80, spe = 85 },
			abilities = { "damp", "cloudnine" },
			movepool = { "surf", "raindance" },
		}
	`); err != nil {
		t.Fatal(err)
	}

	species, _, _, _, err := compile(coll)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if len(species) != 1 {
		t.Fatalf("got %d species, want 1", len(species))
	}
	sp := species[0]
	if sp.Name != "golduck" {
		t.Errorf("name = %q", sp.Name)
	}
	if len(sp.Types) != 1 || sp.Types[0] != "water" {
		t.Errorf("types = %v", sp.Types)
	}
	if sp.BaseStats[types.HP] != 80 || sp.BaseStats[types.Spe] != 85 {
		t.Errorf("baseStats = %v", sp.BaseStats)
	}
	if len(sp.Abilities) != 2 || sp.Abilities[1] != "cloudnine" {
		t.Errorf("abilities = %v", sp.Abilities)
	}
	if len(sp.Movepool) != 2 || sp.Movepool[0] != "surf" {
		t.Errorf("movepool = %v", sp.Movepool)
	}
}

func TestCompileSpecies_MissingStats_Fails(t *testing.T) {
	L, coll := newTestVM()
	defer L.Close()

	if err := L.DoString(`
		Species "golduck" {
			types = { "water" },
			abilities = { "damp" },
			movepool = { "surf" },
		}
	`); err != nil {
		t.Fatal(err)
	}

	_, _, _, _, err := compile(coll)
	if err == nil || !strings.Contains(err.Error(), "missing baseStats") {
		t.Errorf("err = %v, want missing baseStats", err)
	}
}

func TestCompileSpecies_UnknownStatKey_Fails(t *testing.T) {
	L, coll := newTestVM()
	defer L.Close()

	if err := L.DoString(`
		Species "golduck" {
			types = { "water" },
			baseStats = { hp = 80, power = 95 },
			abilities = { "damp" },
			movepool = { "surf" },
		}
	`); err != nil {
		t.Fatal(err)
	}

	_, _, _, _, err := compile(coll)
	if err == nil || !strings.Contains(err.Error(), `unknown stat "power"`) {
		t.Errorf("err = %v, want unknown stat", err)
	}
}

func TestCompileSpecies_NonStringListElement_Fails(t *testing.T) {
	L, coll := newTestVM()
	defer L.Close()

	if err := L.DoString(`
		Species "golduck" {
			types = { "water", 7 },
			baseStats = { hp = 80, atk = 82, def = 78, spa = 95, spd = 80, spe = 85 },
			abilities = { "damp" },
			movepool = { "surf" },
		}
	`); err != nil {
		t.Fatal(err)
	}

	_, _, _, _, err := compile(coll)
	if err == nil || !strings.Contains(err.Error(), "expected string") {
		t.Errorf("err = %v, want expected string", err)
	}
}

func TestCompileMove(t *testing.T) {
	L, coll := newTestVM()
	defer L.Close()

	if err := L.DoString(`
		Move "raindance" {
			type = "water",
			category = "status",
			pp = 5,
			weather = "raindance",
		}
		Move "tackle" { type = "normal", category = "physical", pp = 35 }
	`); err != nil {
		t.Fatal(err)
	}

	_, moves, _, _, err := compile(coll)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if len(moves) != 2 {
		t.Fatalf("got %d moves, want 2", len(moves))
	}
	rd := moves[0]
	if rd.Name != "raindance" || rd.Type != "water" || rd.Category != "status" {
		t.Errorf("raindance = %+v", rd)
	}
	if rd.BasePP != 5 || rd.Weather != types.WeatherRain {
		t.Errorf("raindance = %+v", rd)
	}
	// Flags default to off.
	tk := moves[1]
	if tk.TwoTurn || tk.Protect || tk.Recharge || tk.SelfSwitch || tk.BatonPass || tk.Trapping {
		t.Errorf("tackle flags should default off: %+v", tk)
	}
}

func TestCompileMove_MissingCategory_Fails(t *testing.T) {
	L, coll := newTestVM()
	defer L.Close()

	if err := L.DoString(`Move "tackle" { type = "normal", pp = 35 }`); err != nil {
		t.Fatal(err)
	}

	_, _, _, _, err := compile(coll)
	if err == nil || !strings.Contains(err.Error(), "missing category") {
		t.Errorf("err = %v, want missing category", err)
	}
}

func TestCompileItem(t *testing.T) {
	L, coll := newTestVM()
	defer L.Close()

	if err := L.DoString(`
		Item "damprock" { extendsWeather = "raindance" }
		Item "lightclay" { extendsScreens = true }
		Item "choiceband" { choiceLock = true }
		Item "leftovers" {}
	`); err != nil {
		t.Fatal(err)
	}

	_, _, items, _, err := compile(coll)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if len(items) != 4 {
		t.Fatalf("got %d items, want 4", len(items))
	}
	if items[0].ExtendsWeather != types.WeatherRain {
		t.Errorf("damprock = %+v", items[0])
	}
	if !items[1].ExtendsScreens || !items[2].ChoiceLock {
		t.Errorf("items = %+v", items[1:3])
	}
	lo := items[3]
	if lo.ExtendsWeather != types.WeatherNone || lo.ExtendsScreens || lo.ChoiceLock {
		t.Errorf("leftovers flags should default off: %+v", lo)
	}
}

func TestCompileAbility(t *testing.T) {
	L, coll := newTestVM()
	defer L.Close()

	if err := L.DoString(`
		Ability "drizzle" { summonsWeather = "raindance" }
		Ability "cloudnine" { suppressesWeather = true }
		Ability "klutz" { ignoresItem = true }
		Ability "moldbreaker" { ignoresTargetAbility = true }
		Ability "truant" { truant = true }
		Ability "pressure" {}
	`); err != nil {
		t.Fatal(err)
	}

	_, _, _, abilities, err := compile(coll)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if len(abilities) != 6 {
		t.Fatalf("got %d abilities, want 6", len(abilities))
	}
	if abilities[0].SummonsWeather != types.WeatherRain {
		t.Errorf("drizzle = %+v", abilities[0])
	}
	if !abilities[1].SuppressesWeather || !abilities[2].IgnoresItem ||
		!abilities[3].IgnoresTargetAbility || !abilities[4].Truant {
		t.Errorf("ability flags not set: %+v", abilities[1:5])
	}
	pr := abilities[5]
	if pr.SuppressesWeather || pr.IgnoresItem || pr.SummonsWeather != types.WeatherNone {
		t.Errorf("pressure flags should default off: %+v", pr)
	}
}
