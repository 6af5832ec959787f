package dex

import (
	"strings"
	"testing"

	"github.com/nathoo/battlecore/types"
)

func testDex(t *testing.T) *Dex {
	t.Helper()
	d, err := New(
		[]Species{
			{
				Name:      "zapdos",
				Types:     []types.TypeName{"electric", "flying"},
				BaseStats: map[types.StatName]int{"hp": 90, "atk": 90, "def": 85, "spa": 125, "spd": 90, "spe": 100},
				Abilities: []types.AbilityName{"pressure"},
				Movepool:  []types.MoveName{"thunderbolt", "roost"},
			},
		},
		[]Move{
			{Name: "thunderbolt", Type: "electric", Category: "special", BasePP: 15},
			{Name: "roost", Type: "flying", Category: "status", BasePP: 10},
		},
		[]Item{
			{Name: "lightclay", ExtendsScreens: true},
		},
		[]Ability{
			{Name: "pressure"},
			{Name: "cloudnine", SuppressesWeather: true},
		},
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return d
}

func TestLookup(t *testing.T) {
	d := testDex(t)

	sp, err := d.Species("zapdos")
	if err != nil {
		t.Fatalf("Species: %v", err)
	}
	if sp.BaseStats["spa"] != 125 {
		t.Errorf("expected spa 125, got %d", sp.BaseStats["spa"])
	}

	m, err := d.Move("thunderbolt")
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if m.MaxPP() != 24 {
		t.Errorf("thunderbolt maxpp: expected 24, got %d", m.MaxPP())
	}
}

func TestNoneItemAlwaysPresent(t *testing.T) {
	d := testDex(t)
	if _, err := d.Item(NoItem); err != nil {
		t.Fatalf("the none item should always exist: %v", err)
	}
}

func TestUnknownNameSuggestion(t *testing.T) {
	d := testDex(t)
	_, err := d.Move("thunderblot")
	if err == nil {
		t.Fatal("expected error for unknown move")
	}
	if !strings.Contains(err.Error(), "thunderbolt") {
		t.Errorf("expected suggestion for thunderbolt, got: %v", err)
	}

	// Far-off names get no suggestion.
	_, err = d.Move("zzzzzzzzzzzz")
	if err == nil {
		t.Fatal("expected error for unknown move")
	}
	if strings.Contains(err.Error(), "did you mean") {
		t.Errorf("expected no suggestion, got: %v", err)
	}
}

func TestNewValidation(t *testing.T) {
	// Species referencing an unknown ability must fail.
	_, err := New(
		[]Species{{Name: "zapdos", Abilities: []types.AbilityName{"static"}}},
		nil, nil, nil,
	)
	if err == nil {
		t.Fatal("expected error for unknown ability reference")
	}

	// Duplicate moves must fail.
	_, err = New(nil, []Move{
		{Name: "tackle", BasePP: 35},
		{Name: "tackle", BasePP: 35},
	}, nil, nil)
	if err == nil {
		t.Fatal("expected error for duplicate move")
	}
}
