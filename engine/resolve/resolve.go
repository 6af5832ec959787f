// Package resolve maps battle-log position references and display names to
// tracked state handles.
package resolve

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/nathoo/battlecore/engine/state"
	"github.com/nathoo/battlecore/types"
)

// NotFoundError indicates a position reference named no tracked combatant.
type NotFoundError struct {
	Ref        string
	Suggestion types.SpeciesName
}

func (e *NotFoundError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("no tracked combatant matches %q (did you mean %q?)", e.Ref, e.Suggestion)
	}
	return fmt.Sprintf("no tracked combatant matches %q", e.Ref)
}

// ID normalizes a display name to its dex identifier: lowercased, with
// everything but letters and digits stripped. "Light Clay" becomes
// "lightclay".
func ID(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteByte(byte(r))
		case r >= 'A' && r <= 'Z':
			b.WriteByte(byte(r - 'A' + 'a'))
		}
	}
	return b.String()
}

// Position parses a reference like "p1a: Zapdos" into its parts. The slot
// letter is optional in some log lines ("p1: Zapdos"); it defaults to 'a'.
func Position(ref string) (types.PositionRef, error) {
	head, name, ok := strings.Cut(ref, ":")
	if !ok {
		return types.PositionRef{}, fmt.Errorf("malformed position reference %q", ref)
	}
	head = strings.TrimSpace(head)
	name = strings.TrimSpace(name)
	if len(head) < 2 || head[0] != 'p' || (head[1] != '1' && head[1] != '2') {
		return types.PositionRef{}, fmt.Errorf("malformed position reference %q: bad side %q", ref, head)
	}
	slot := byte('a')
	if len(head) > 2 {
		slot = head[2]
	}
	return types.PositionRef{
		Side: types.SideID(head[:2]),
		Slot: slot,
		Name: name,
	}, nil
}

// Details parses a switch event's details field ("Zapdos, L82, M") into the
// species identifier and level. A missing level means level 100.
func Details(details string) (types.SpeciesName, int, error) {
	parts := strings.Split(details, ",")
	species := types.SpeciesName(ID(parts[0]))
	if species == "" {
		return "", 0, fmt.Errorf("malformed details %q: empty species", details)
	}
	level := 100
	for _, p := range parts[1:] {
		p = strings.TrimSpace(p)
		if len(p) > 1 && p[0] == 'L' {
			n, err := strconv.Atoi(p[1:])
			if err != nil {
				return "", 0, fmt.Errorf("malformed details %q: level %q", details, p)
			}
			level = n
		}
	}
	return species, level, nil
}

// maxSuggestDistance bounds how far a did-you-mean suggestion may stray.
const maxSuggestDistance = 3

// Combatant resolves a parsed position against the battle. The name is
// matched by species identifier among the side's revealed combatants;
// nicknames won't match, so the occupant of the active slot is the fallback.
func Combatant(b *state.Battle, ref types.PositionRef) (*state.Side, *state.Pokemon, error) {
	side, err := b.Side(ref.Side)
	if err != nil {
		return nil, nil, err
	}
	if p, ok := side.Find(types.SpeciesName(ID(ref.Name))); ok {
		return side, p, nil
	}
	// Nicknames won't match any species; the position still addresses the
	// occupant of the active slot.
	if p := side.Active(); p != nil {
		return side, p, nil
	}
	return nil, nil, &NotFoundError{Ref: ref.Name}
}

// ByName finds a side's revealed combatant by species name or identifier,
// suggesting the closest revealed species when nothing matches.
func ByName(b *state.Battle, id types.SideID, name string) (*state.Pokemon, error) {
	side, err := b.Side(id)
	if err != nil {
		return nil, err
	}
	species := types.SpeciesName(ID(name))
	if p, ok := side.Find(species); ok {
		return p, nil
	}
	return nil, &NotFoundError{
		Ref:        name,
		Suggestion: suggestSpecies(side, species),
	}
}

func suggestSpecies(side *state.Side, name types.SpeciesName) types.SpeciesName {
	best := types.SpeciesName("")
	bestDist := maxSuggestDistance + 1
	for _, p := range side.Revealed() {
		sp, ok := p.Species.Definite()
		if !ok {
			continue
		}
		if d := levenshtein.ComputeDistance(string(name), string(sp)); d < bestDist {
			best, bestDist = sp, d
		}
	}
	return best
}
