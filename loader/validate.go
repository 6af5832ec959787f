package loader

import (
	"fmt"
	"os"
	"strings"

	"github.com/nathoo/battlecore/dex"
	"github.com/nathoo/battlecore/types"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

// Known move categories.
var validCategories = map[string]bool{
	"physical": true,
	"special":  true,
	"status":   true,
}

// Known weather kinds.
var validWeathers = map[types.WeatherName]bool{
	types.WeatherSandstorm: true,
	types.WeatherSun:       true,
	types.WeatherRain:      true,
	types.WeatherHail:      true,
}

var coreStats = []types.StatName{
	types.HP, types.Atk, types.Def, types.SpA, types.SpD, types.Spe,
}

// validate checks the compiled entries for consistency before dex.New takes
// over duplicate and dangling-reference checks.
func validate(species []dex.Species, moves []dex.Move, items []dex.Item, abilities []dex.Ability) error {
	ve := &ValidationError{}

	for _, sp := range species {
		if len(sp.Types) < 1 || len(sp.Types) > 2 {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"species %q has %d types, want 1 or 2", sp.Name, len(sp.Types)))
		}
		for _, stat := range coreStats {
			v, ok := sp.BaseStats[stat]
			if !ok {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"species %q missing base stat %q", sp.Name, stat))
			} else if v <= 0 {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"species %q base stat %q must be positive", sp.Name, stat))
			}
		}
		if len(sp.Movepool) == 0 {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"species %q has an empty movepool", sp.Name))
		} else if len(sp.Movepool) < 4 {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf(
				"species %q movepool has only %d moves", sp.Name, len(sp.Movepool)))
		}
	}

	for _, m := range moves {
		if !validCategories[m.Category] {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"move %q has unknown category %q", m.Name, m.Category))
		}
		if m.Weather != types.WeatherNone && !validWeathers[m.Weather] {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"move %q summons unknown weather %q", m.Name, m.Weather))
		}
	}

	// At most one item may extend each weather, and one may extend screens:
	// the retroactive counters resolve extender items by flag, not by name.
	weatherExtenders := map[types.WeatherName]types.ItemName{}
	var screenExtender types.ItemName
	for _, it := range items {
		if it.ExtendsWeather != types.WeatherNone {
			if !validWeathers[it.ExtendsWeather] {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"item %q extends unknown weather %q", it.Name, it.ExtendsWeather))
			} else if prev, ok := weatherExtenders[it.ExtendsWeather]; ok {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"items %q and %q both extend weather %q", prev, it.Name, it.ExtendsWeather))
			} else {
				weatherExtenders[it.ExtendsWeather] = it.Name
			}
		}
		if it.ExtendsScreens {
			if screenExtender != "" {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"items %q and %q both extend screens", screenExtender, it.Name))
			}
			screenExtender = it.Name
		}
	}

	for _, a := range abilities {
		if a.SummonsWeather != types.WeatherNone && !validWeathers[a.SummonsWeather] {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"ability %q summons unknown weather %q", a.Name, a.SummonsWeather))
		}
	}

	// Print warnings to stderr.
	for _, w := range ve.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}
