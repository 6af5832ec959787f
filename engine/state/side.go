package state

import (
	"fmt"

	"github.com/nathoo/battlecore/dex"
	"github.com/nathoo/battlecore/engine/counters"
	"github.com/nathoo/battlecore/types"
)

// Hazard layer caps.
const (
	maxSpikes      = 3
	maxToxicSpikes = 2
	maxStealthRock = 1
)

// Screen and side-condition durations.
const (
	screenShort   = 5
	screenLong    = 8
	safeguardLen  = 5
	mistLen       = 5
	tailwindLen   = 3
	luckyChantLen = 5
	wishLen       = 2
)

// SwitchKind is how the previous occupant left the field.
type SwitchKind int

const (
	// SwitchHard is a plain switch or forced drag: nothing is passed.
	SwitchHard SwitchKind = iota
	// SwitchSelf is a self-switching move (u-turn style): volatile state
	// tears down exactly like a hard switch.
	SwitchSelf
	// SwitchBaton is an explicit baton pass: the passable subset passes.
	SwitchBaton
)

// Side is one player's tracked half of the battle: the roster (revealed
// incrementally for the opponent), hazards, and side-wide conditions. The
// active combatant is always roster index 0.
type Side struct {
	ID     types.SideID
	roster []*Pokemon
	size   int

	Spikes      int
	ToxicSpikes int
	StealthRock int

	Reflect     *counters.ItemExtendable[types.ItemName, dex.Item]
	LightScreen *counters.ItemExtendable[types.ItemName, dex.Item]
	Safeguard   *counters.Fixed
	Mist        *counters.Fixed
	Tailwind    *counters.Fixed
	LuckyChant  *counters.Fixed
	Wish        *counters.Fixed

	// Pending is the switch kind the next switch-in uses, set when a
	// self-switching or baton-passing move resolves and consumed by the
	// switch event.
	Pending SwitchKind

	dx *dex.Dex
}

// NewSide creates an empty side with the given roster capacity.
func NewSide(dx *dex.Dex, id types.SideID, size int) *Side {
	return &Side{
		ID:         id,
		size:       size,
		Safeguard:  counters.NewFixed(safeguardLen, false),
		Mist:       counters.NewFixed(mistLen, false),
		Tailwind:   counters.NewFixed(tailwindLen, false),
		LuckyChant: counters.NewFixed(luckyChantLen, false),
		Wish:       counters.NewFixed(wishLen, true),
		dx:         dx,
	}
}

// Size returns the roster capacity.
func (s *Side) Size() int { return s.size }

// Revealed returns the combatants seen so far, active first.
func (s *Side) Revealed() []*Pokemon { return s.roster }

// Active returns the active combatant, or nil before the lead is revealed.
func (s *Side) Active() *Pokemon {
	if len(s.roster) == 0 {
		return nil
	}
	return s.roster[0]
}

// Find returns the revealed combatant of the given species, if any.
func (s *Side) Find(species types.SpeciesName) (*Pokemon, bool) {
	for _, p := range s.roster {
		if k, ok := p.Species.Definite(); ok && k == species {
			return p, true
		}
	}
	return nil, false
}

// Reveal returns the roster entry for the species, creating it on first
// sight. Revealing more combatants than the roster holds is a tracking
// error.
func (s *Side) Reveal(species types.SpeciesName, level int) (*Pokemon, error) {
	if p, ok := s.Find(species); ok {
		return p, nil
	}
	if len(s.roster) >= s.size {
		return nil, fmt.Errorf("side %s: revealing %q would exceed the %d-slot roster",
			s.ID, species, s.size)
	}
	p, err := NewPokemon(s.dx, species, level)
	if err != nil {
		return nil, err
	}
	s.roster = append(s.roster, p)
	return p, nil
}

// SwitchIn makes p the active combatant: the outgoing occupant's volatile
// state is torn down (passing the kind-appropriate subset), and p moves to
// roster index 0 with a fresh volatile aggregate.
func (s *Side) SwitchIn(p *Pokemon, kind SwitchKind) error {
	idx := -1
	for i, q := range s.roster {
		if q == p {
			idx = i
			break
		}
	}
	if idx == -1 {
		return fmt.Errorf("side %s: switching in a combatant not on the roster", s.ID)
	}

	out := s.Active()
	if out == p && out.Volatile != nil {
		return nil // already active
	}

	fresh := NewVolatile(p)
	if out != nil && out.Volatile != nil {
		if kind == SwitchBaton {
			out.Volatile.PassBaton(fresh)
		}
		out.Volatile.Clear()
		out.Volatile = nil
	}
	p.Volatile = fresh

	s.roster[idx] = s.roster[0]
	s.roster[0] = p
	return nil
}

// AddSpikes lays one hazard layer, capped at each hazard's maximum.
func (s *Side) AddSpikes() {
	if s.Spikes < maxSpikes {
		s.Spikes++
	}
}

// AddToxicSpikes lays one toxic spikes layer.
func (s *Side) AddToxicSpikes() {
	if s.ToxicSpikes < maxToxicSpikes {
		s.ToxicSpikes++
	}
}

// AddStealthRock sets the stealth rock hazard.
func (s *Side) AddStealthRock() {
	if s.StealthRock < maxStealthRock {
		s.StealthRock++
	}
}

// ClearHazards removes all entry hazards (rapid spin style).
func (s *Side) ClearHazards() {
	s.Spikes = 0
	s.ToxicSpikes = 0
	s.StealthRock = 0
}

// StartReflect starts the reflect screen, its duration hinging on whether
// the caster holds the screen-extending item.
func (s *Side) StartReflect(source *Pokemon) {
	s.Reflect = s.newScreen(source)
	s.Reflect.Start(true)
}

// EndReflect ends the reflect screen.
func (s *Side) EndReflect() {
	if s.Reflect != nil {
		s.Reflect.End()
		s.Reflect = nil
	}
}

// StartLightScreen starts the light screen, extender semantics as for
// reflect.
func (s *Side) StartLightScreen(source *Pokemon) {
	s.LightScreen = s.newScreen(source)
	s.LightScreen.Start(true)
}

// EndLightScreen ends the light screen.
func (s *Side) EndLightScreen() {
	if s.LightScreen != nil {
		s.LightScreen.End()
		s.LightScreen = nil
	}
}

func (s *Side) newScreen(source *Pokemon) *counters.ItemExtendable[types.ItemName, dex.Item] {
	extender, ok := s.dx.ScreenExtender()
	if !ok {
		// No extending item in this dex: bind the counter to a key outside
		// the universe so the short duration is effectively fixed.
		extender = ""
	}
	return counters.NewItemExtendable(screenShort, screenLong, source.Item, extender)
}

// PreTurn is the side's turn-start hook; nothing is defined for it yet.
func (s *Side) PreTurn() {
	if p := s.Active(); p != nil && p.Volatile != nil {
		p.Volatile.PreTurn()
	}
}

// PostTurn ticks the side-wide counters and the active combatant's volatile
// state.
func (s *Side) PostTurn() error {
	for _, c := range []interface{ Tick() error }{
		s.Safeguard, s.Mist, s.Tailwind, s.LuckyChant, s.Wish,
	} {
		if err := c.Tick(); err != nil {
			return err
		}
	}
	if s.Reflect != nil {
		if err := s.Reflect.Tick(); err != nil {
			return err
		}
	}
	if s.LightScreen != nil {
		if err := s.LightScreen.Tick(); err != nil {
			return err
		}
	}
	if p := s.Active(); p != nil && p.Volatile != nil {
		if err := p.Volatile.PostTurn(); err != nil {
			return err
		}
	}
	return nil
}
