package state

import (
	"fmt"

	"github.com/nathoo/battlecore/dex"
	"github.com/nathoo/battlecore/engine/counters"
	"github.com/nathoo/battlecore/types"
)

// Field condition durations.
const (
	weatherShort = 5
	weatherLong  = 8
	trickRoomLen = 5
	gravityLen   = 5
)

// Weather is the tracked field weather. Move-induced weather carries an
// item-extendable counter bound to the summoner's held item (the rock
// items); ability-induced weather has no counter and lasts until replaced.
type Weather struct {
	Kind    types.WeatherName
	counter *counters.ItemExtendable[types.ItemName, dex.Item]
	fixed   *counters.Fixed
}

// Infinite reports whether the weather has no duration (ability-induced).
func (w *Weather) Infinite() bool {
	return w.Kind != types.WeatherNone && w.counter == nil && w.fixed == nil
}

// Tick advances the weather's counter at the turn boundary.
func (w *Weather) Tick() error {
	if w.counter != nil {
		return w.counter.Tick()
	}
	if w.fixed != nil {
		return w.fixed.Tick()
	}
	return nil
}

// Turns returns the turns elapsed since the weather started, or 0 for
// infinite weather.
func (w *Weather) Turns() int {
	if w.counter != nil {
		return w.counter.Turns()
	}
	if w.fixed != nil {
		return w.fixed.Turns()
	}
	return 0
}

// Battle is the full tracked state of one battle from one player's
// perspective.
type Battle struct {
	sides map[types.SideID]*Side
	us    types.SideID

	Turn      int
	Weather   Weather
	TrickRoom *counters.Fixed
	Gravity   *counters.Fixed

	dx *dex.Dex
}

// NewBattle creates an empty tracked battle. us identifies the perspective
// side (ours is fully known to the event stream; the other is inferred).
func NewBattle(dx *dex.Dex, us types.SideID, rosterSize int) *Battle {
	them := types.SideID("p2")
	if us == "p2" {
		them = "p1"
	}
	return &Battle{
		sides: map[types.SideID]*Side{
			us:   NewSide(dx, us, rosterSize),
			them: NewSide(dx, them, rosterSize),
		},
		us:        us,
		TrickRoom: counters.NewFixed(trickRoomLen, false),
		Gravity:   counters.NewFixed(gravityLen, false),
		dx:        dx,
	}
}

// Dex returns the reference data this battle is tracked against.
func (b *Battle) Dex() *dex.Dex { return b.dx }

// Us returns the perspective side's id.
func (b *Battle) Us() types.SideID { return b.us }

// Side returns the side with the given id.
func (b *Battle) Side(id types.SideID) (*Side, error) {
	s, ok := b.sides[id]
	if !ok {
		return nil, fmt.Errorf("unknown side %q", id)
	}
	return s, nil
}

// OurSide returns the perspective side.
func (b *Battle) OurSide() *Side { return b.sides[b.us] }

// TheirSide returns the opposing side.
func (b *Battle) TheirSide() *Side {
	for id, s := range b.sides {
		if id != b.us {
			return s
		}
	}
	return nil
}

// Actives returns the active combatants of both sides, skipping sides whose
// lead has not been revealed yet.
func (b *Battle) Actives() []*Pokemon {
	var out []*Pokemon
	for _, s := range []*Side{b.OurSide(), b.TheirSide()} {
		if p := s.Active(); p != nil && !p.Fainted {
			out = append(out, p)
		}
	}
	return out
}

// StartWeather begins the given weather. A nil source means ability-induced,
// infinite weather; otherwise the duration hinges on the summoner's held
// item.
func (b *Battle) StartWeather(kind types.WeatherName, source *Pokemon) {
	b.EndWeather()
	b.Weather.Kind = kind
	if source == nil {
		return
	}
	if extender, ok := b.dx.WeatherExtender(kind); ok {
		b.Weather.counter = counters.NewItemExtendable(weatherShort, weatherLong, source.Item, extender)
		b.Weather.counter.Start(true)
		return
	}
	b.Weather.fixed = counters.NewFixed(weatherShort, false)
	b.Weather.fixed.Start(true)
}

// EndWeather clears the weather.
func (b *Battle) EndWeather() {
	if b.Weather.counter != nil {
		b.Weather.counter.End()
	}
	if b.Weather.fixed != nil {
		b.Weather.fixed.End()
	}
	b.Weather = Weather{}
}

// PreTurn applies the turn-start hook to both sides.
func (b *Battle) PreTurn() {
	b.OurSide().PreTurn()
	b.TheirSide().PreTurn()
}

// PostTurn applies the turn-end hook: field counters and both sides tick.
// Counter overflows propagate so the caller can abort tracking.
func (b *Battle) PostTurn() error {
	if err := b.Weather.Tick(); err != nil {
		return fmt.Errorf("weather: %w", err)
	}
	if err := b.TrickRoom.Tick(); err != nil {
		return fmt.Errorf("trick room: %w", err)
	}
	if err := b.Gravity.Tick(); err != nil {
		return fmt.Errorf("gravity: %w", err)
	}
	for _, s := range []*Side{b.OurSide(), b.TheirSide()} {
		if err := s.PostTurn(); err != nil {
			return fmt.Errorf("side %s: %w", s.ID, err)
		}
	}
	return nil
}
