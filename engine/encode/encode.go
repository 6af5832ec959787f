// Package encode projects tracked battle state into a fixed-size float32
// vector for downstream numeric consumers. Every slot is either a one-hot /
// indicator in [0, 1] or a normalized scalar in [-1, 1]; the layout is fully
// determined by the dex the battle is tracked against, so two encoders built
// over the same dex always agree on slot meaning.
package encode

import (
	"fmt"

	"github.com/nathoo/battlecore/dex"
	"github.com/nathoo/battlecore/engine/counters"
	"github.com/nathoo/battlecore/engine/state"
	"github.com/nathoo/battlecore/types"
)

// statuses is the persistent status one-hot order.
var statuses = []types.StatusName{"brn", "par", "slp", "frz", "psn", "tox"}

// weathers is the weather one-hot order.
var weathers = []types.WeatherName{
	types.WeatherSandstorm,
	types.WeatherSun,
	types.WeatherRain,
	types.WeatherHail,
}

// boostOrder fixes the boost slot order.
var boostOrder = []types.StatName{
	types.Atk, types.Def, types.SpA, types.SpD, types.Spe,
	types.Accuracy, types.Evasion,
}

// statOrder fixes the stat-range slot order.
var statOrder = []types.StatName{
	types.HP, types.Atk, types.Def, types.SpA, types.SpD, types.Spe,
}

// statScale normalizes stat values; no gen-4 stat reaches it.
const statScale = 1024

// Section describes one contiguous run of slots in the encoded vector.
type Section struct {
	Name   string `yaml:"name"`
	Offset int    `yaml:"offset"`
	Size   int    `yaml:"size"`
	Desc   string `yaml:"desc"`
}

type section struct {
	Section
	fn func(dst []float32)
}

// Encoder projects one battle. The battle is read, never mutated.
type Encoder struct {
	b  *state.Battle
	dx *dex.Dex

	species   []types.SpeciesName
	moves     []types.MoveName
	items     []types.ItemName
	abilities []types.AbilityName

	sections []section
	size     int
}

// New builds an encoder over the battle. Slot order is perspective-relative:
// our side's sections come before theirs.
func New(b *state.Battle) *Encoder {
	dx := b.Dex()
	e := &Encoder{
		b:         b,
		dx:        dx,
		species:   dx.SpeciesNames(),
		moves:     dx.MoveNames(),
		items:     dx.ItemNames(),
		abilities: dx.AbilityNames(),
	}

	e.add("field", "weather one-hot, field counters, turn", e.fieldSize(), e.encodeField)
	for _, half := range []struct {
		name string
		side func() *state.Side
	}{
		{"ours", b.OurSide},
		{"theirs", b.TheirSide},
	} {
		side := half.side
		e.add("side:"+half.name, "hazard layers and side counters", e.sideSize(),
			func(dst []float32) { e.encodeSide(dst, side()) })
		e.add("active:"+half.name, "active combatant boosts and volatile flags", e.activeSize(),
			func(dst []float32) { e.encodeActive(dst, side().Active()) })
		e.add("roster:"+half.name, "per-slot combatant traits and possibility indicators",
			rosterSlots*e.monSize(),
			func(dst []float32) { e.encodeRoster(dst, side()) })
	}
	return e
}

const rosterSlots = 6

func (e *Encoder) add(name, desc string, size int, fn func([]float32)) {
	e.sections = append(e.sections, section{
		Section: Section{Name: name, Offset: e.size, Size: size, Desc: desc},
		fn:      fn,
	})
	e.size += size
}

// Size returns the full encoded vector length.
func (e *Encoder) Size() int { return e.size }

// Layout returns the slot layout, YAML-marshalable for tooling.
func (e *Encoder) Layout() []Section {
	out := make([]Section, len(e.sections))
	for i, s := range e.sections {
		out[i] = s.Section
	}
	return out
}

// Encode writes the full vector into dst. dst must be exactly Size() long;
// a wrong length is an error and dst is left untouched.
func (e *Encoder) Encode(dst []float32) error {
	if len(dst) != e.size {
		return fmt.Errorf("encode: dst length %d, need %d", len(dst), e.size)
	}
	for i := range dst {
		dst[i] = 0
	}
	for _, s := range e.sections {
		s.fn(dst[s.Offset : s.Offset+s.Size])
	}
	return nil
}

// EncodeSection writes one named section into dst, for consumers that slice
// the vector apart.
func (e *Encoder) EncodeSection(name string, dst []float32) error {
	for _, s := range e.sections {
		if s.Name != name {
			continue
		}
		if len(dst) != s.Size {
			return fmt.Errorf("encode %s: dst length %d, need %d", name, len(dst), s.Size)
		}
		for i := range dst {
			dst[i] = 0
		}
		s.fn(dst)
		return nil
	}
	return fmt.Errorf("unknown encoder section %q", name)
}

func (e *Encoder) fieldSize() int {
	return len(weathers) + 1 /* weather turns */ + 2 /* trick room */ + 2 /* gravity */ + 1 /* turn */
}

func (e *Encoder) encodeField(dst []float32) {
	b := e.b
	i := 0
	for _, w := range weathers {
		if b.Weather.Kind == w {
			dst[i] = 1
		}
		i++
	}
	dst[i] = float32(b.Weather.Turns()) / 8
	i++
	dst[i] = boolSlot(b.TrickRoom.Active())
	i++
	dst[i] = float32(b.TrickRoom.Turns()) / float32(b.TrickRoom.Duration())
	i++
	dst[i] = boolSlot(b.Gravity.Active())
	i++
	dst[i] = float32(b.Gravity.Turns()) / float32(b.Gravity.Duration())
	i++
	dst[i] = capped(float32(b.Turn)/100, 1)
}

func (e *Encoder) sideSize() int {
	return 3 /* hazards */ + 2*2 /* screens: active, turns */ + 5 /* fixed side counters */
}

func (e *Encoder) encodeSide(dst []float32, s *state.Side) {
	dst[0] = float32(s.Spikes) / 3
	dst[1] = float32(s.ToxicSpikes) / 2
	dst[2] = float32(s.StealthRock)
	i := 3
	for _, screen := range []*counters.ItemExtendable[types.ItemName, dex.Item]{s.Reflect, s.LightScreen} {
		if screen != nil && screen.Active() {
			dst[i] = 1
			dst[i+1] = float32(screen.Turns()) / 8
		}
		i += 2
	}
	for _, c := range []*counters.Fixed{s.Safeguard, s.Mist, s.Tailwind, s.LuckyChant, s.Wish} {
		dst[i] = boolSlot(c.Active())
		i++
	}
}

func (e *Encoder) activeSize() int {
	return len(boostOrder) + len(activeFlags)
}

// activeFlags is the volatile flag slot order.
var activeFlags = []string{
	"substitute", "leechseed", "confusion", "taunt", "encore", "disable",
	"attract", "torment", "twoturn", "mustrecharge", "protect", "trapped",
	"trapping", "perish", "yawn", "embargo", "healblock", "transformed",
}

func (e *Encoder) encodeActive(dst []float32, p *state.Pokemon) {
	if p == nil || p.Volatile == nil {
		return
	}
	v := p.Volatile
	i := 0
	for _, stat := range boostOrder {
		dst[i] = float32(v.Boosts[stat]) / 6
		i++
	}
	flags := map[string]bool{
		"substitute":   v.Substitute,
		"leechseed":    v.LeechSeed,
		"confusion":    v.Confusion.Active(),
		"taunt":        v.Taunt.Active(),
		"encore":       v.Encore.Active(),
		"disable":      v.Disable.Active(),
		"attract":      v.Attract,
		"torment":      v.Torment,
		"twoturn":      v.TwoTurn.Active(),
		"mustrecharge": v.MustRecharge,
		"protect":      v.Protect,
		"trapped":      v.TrappedBy() != nil,
		"trapping":     v.Trapping() != nil,
		"perish":       v.Perish.Active(),
		"yawn":         v.Yawn.Active(),
		"embargo":      v.Embargo.Active(),
		"healblock":    v.HealBlock.Active(),
		"transformed":  v.Transformed,
	}
	for _, name := range activeFlags {
		dst[i] = boolSlot(flags[name])
		i++
	}
}

func (e *Encoder) monSize() int {
	return 4 /* exists, hp, level, fainted */ +
		len(statuses) +
		len(e.species) + len(e.abilities) + len(e.items) +
		2*len(e.moves) +
		2*len(statOrder)
}

// encodeMon writes one combatant block. Possibility sets become indicator
// vectors: a slot is 1 while that key is still possible, so a determined
// trait degenerates to a one-hot.
func (e *Encoder) encodeMon(dst []float32, p *state.Pokemon) {
	dst[0] = 1
	dst[1] = float32(p.HPPercent) / 100
	dst[2] = float32(p.Level) / 100
	dst[3] = boolSlot(p.Fainted)
	i := 4
	for _, s := range statuses {
		dst[i] = boolSlot(p.Status == s)
		i++
	}
	for _, sp := range e.species {
		dst[i] = boolSlot(p.Species.Contains(sp))
		i++
	}
	for _, a := range e.abilities {
		dst[i] = boolSlot(p.Ability.Contains(a))
		i++
	}
	for _, it := range e.items {
		dst[i] = boolSlot(p.Item.Contains(it))
		i++
	}
	for _, m := range e.moves {
		if slot, ok := p.Moves.Get(m); ok {
			dst[i] = 1
			if slot.MaxPP > 0 {
				dst[i+1] = float32(slot.PP) / float32(slot.MaxPP)
			}
		}
		i += 2
	}
	for _, stat := range statOrder {
		r := p.Stats[stat]
		dst[i] = float32(r.Min()) / statScale
		dst[i+1] = float32(r.Max()) / statScale
		i += 2
	}
}

func (e *Encoder) encodeRoster(dst []float32, s *state.Side) {
	block := e.monSize()
	for i, p := range s.Revealed() {
		if i >= rosterSlots {
			break
		}
		e.encodeMon(dst[i*block:(i+1)*block], p)
	}
}

func boolSlot(b bool) float32 {
	if b {
		return 1
	}
	return 0
}

func capped(v, max float32) float32 {
	if v > max {
		return max
	}
	return v
}
