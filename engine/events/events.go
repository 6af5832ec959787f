// Package events applies decoded battle events to the tracked state. Every
// event type is one atomic state mutation; where an event's legality hinges
// on something still unknown, the handler builds inference reasons and
// resolves them against the observed outcome.
package events

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nathoo/battlecore/dex"
	"github.com/nathoo/battlecore/engine/possible"
	"github.com/nathoo/battlecore/engine/reason"
	"github.com/nathoo/battlecore/engine/resolve"
	"github.com/nathoo/battlecore/engine/state"
	"github.com/nathoo/battlecore/types"
)

// Apply applies one decoded event to the battle, mutating it. Unknown event
// types are ignored silently; inconsistencies with previously accepted
// evidence propagate as errors so the caller can abort tracking.
func Apply(b *state.Battle, ev types.Event) error {
	dx := b.Dex()

	switch ev.Type {
	case "turn":
		n := argInt(ev, "number")
		if b.Turn > 0 {
			if err := b.PostTurn(); err != nil {
				return fmt.Errorf("turn %d upkeep: %w", b.Turn, err)
			}
		}
		b.Turn = n
		b.PreTurn()

	case "switch", "drag":
		side, err := b.Side(posSide(ev))
		if err != nil {
			return err
		}
		species, level, err := resolve.Details(argStr(ev, "details"))
		if err != nil {
			return err
		}
		mon, err := side.Reveal(species, level)
		if err != nil {
			return err
		}
		kind := side.Pending
		if ev.Type == "drag" {
			kind = state.SwitchHard
		}
		side.Pending = state.SwitchHard
		if err := side.SwitchIn(mon, kind); err != nil {
			return err
		}
		if hp := argStr(ev, "hp"); hp != "" {
			pct, _, err := hpPercent(hp)
			if err != nil {
				return err
			}
			mon.HPPercent = pct
		}

	case "move":
		side, mon, err := combatant(b, ev)
		if err != nil {
			return err
		}
		v := mon.Volatile
		if v == nil {
			return fmt.Errorf("move from inactive combatant %q", argStr(ev, "pos"))
		}
		name := types.MoveName(resolve.ID(argStr(ev, "move")))
		mv, err := dx.Move(name)
		if err != nil {
			return err
		}
		// Called moves (sleep talk, locked thrashing, etc.) carry a from
		// tag and reveal nothing about the move slots.
		if argStr(ev, "from") == "" {
			slot, err := v.Moves.Reveal(name, mv.MaxPP())
			if err != nil {
				return err
			}
			slot.Deduct(1)
			// Two different moves within one stint rule out a choice
			// lock. LastMove resets on every switch, so a fresh
			// arrival's first move never triggers this.
			if v.LastMove != "" && v.LastMove != name {
				if err := mon.Item.RemoveFunc(func(_ types.ItemName, d dex.Item) bool {
					return d.ChoiceLock
				}); err != nil {
					return fmt.Errorf("choice-lock inference for %q: %w", name, err)
				}
			}
		}
		v.LastMove = name
		v.MovedThisTurn = true
		if mv.Recharge {
			v.MustRecharge = true
		}
		if mv.Protect {
			v.Protect = true
		}
		if v.TwoTurn.Active() && v.TwoTurnMove == name {
			v.TwoTurn.End()
			v.TwoTurnMove = ""
		}
		if mv.BatonPass {
			side.Pending = state.SwitchBaton
		} else if mv.SelfSwitch {
			side.Pending = state.SwitchSelf
		}

	case "prepare":
		_, mon, err := combatant(b, ev)
		if err != nil {
			return err
		}
		v := mon.Volatile
		if v == nil {
			return nil
		}
		name := types.MoveName(resolve.ID(argStr(ev, "move")))
		mv, err := dx.Move(name)
		if err != nil {
			return err
		}
		if _, err := v.Moves.Reveal(name, mv.MaxPP()); err != nil {
			return err
		}
		v.TwoTurn.Start(true)
		v.TwoTurnMove = name

	case "cant":
		return applyCant(b, ev)

	case "fail":
		return applyFail(b, ev)

	case "faint":
		_, mon, err := combatant(b, ev)
		if err != nil {
			return err
		}
		mon.Faint()

	case "damage", "heal", "sethp":
		_, mon, err := combatant(b, ev)
		if err != nil {
			return err
		}
		pct, fainted, err := hpPercent(argStr(ev, "hp"))
		if err != nil {
			return err
		}
		mon.HPPercent = pct
		if fainted {
			mon.Faint()
		}
		return applyFromTag(b, ev, mon)

	case "status":
		_, mon, err := combatant(b, ev)
		if err != nil {
			return err
		}
		kind, from := fromTag(argStr(ev, "from"))
		fromRest := kind == "move" && types.MoveName(from) == "rest"
		return mon.SetStatus(types.StatusName(argStr(ev, "status")), fromRest)

	case "curestatus":
		_, mon, err := combatant(b, ev)
		if err != nil {
			return err
		}
		mon.CureStatus()

	case "boost", "unboost":
		_, mon, err := combatant(b, ev)
		if err != nil {
			return err
		}
		if v := mon.Volatile; v != nil {
			n := argInt(ev, "amount")
			if ev.Type == "unboost" {
				n = -n
			}
			v.Boost(types.StatName(argStr(ev, "stat")), n)
		}

	case "setboost":
		_, mon, err := combatant(b, ev)
		if err != nil {
			return err
		}
		if v := mon.Volatile; v != nil {
			stat := types.StatName(argStr(ev, "stat"))
			v.Boosts[stat] = 0
			v.Boost(stat, argInt(ev, "amount"))
		}

	case "clearboost":
		_, mon, err := combatant(b, ev)
		if err != nil {
			return err
		}
		if v := mon.Volatile; v != nil {
			for stat := range v.Boosts {
				v.Boosts[stat] = 0
			}
		}

	case "ability":
		_, mon, err := combatant(b, ev)
		if err != nil {
			return err
		}
		return mon.SetAbility(types.AbilityName(resolve.ID(argStr(ev, "ability"))))

	case "endability":
		_, mon, err := combatant(b, ev)
		if err != nil {
			return err
		}
		if name := argStr(ev, "ability"); name != "" {
			if err := mon.SetAbility(types.AbilityName(resolve.ID(name))); err != nil {
				return err
			}
		}
		if v := mon.Volatile; v != nil {
			v.GastroAcid = true
		}

	case "item":
		_, mon, err := combatant(b, ev)
		if err != nil {
			return err
		}
		return mon.SetItem(types.ItemName(resolve.ID(argStr(ev, "item"))))

	case "enditem":
		_, mon, err := combatant(b, ev)
		if err != nil {
			return err
		}
		return mon.ConsumeItem(types.ItemName(resolve.ID(argStr(ev, "item"))))

	case "weather":
		return applyWeather(b, ev)

	case "fieldstart", "fieldend":
		_, name := fromTag(argStr(ev, "condition"))
		switch types.MoveName(name) {
		case "trickroom":
			if ev.Type == "fieldstart" {
				b.TrickRoom.Start(true)
			} else {
				b.TrickRoom.End()
			}
		case "gravity":
			if ev.Type == "fieldstart" {
				b.Gravity.Start(true)
			} else {
				b.Gravity.End()
			}
		}

	case "sidestart":
		return applySideStart(b, ev)

	case "sideend":
		return applySideEnd(b, ev)

	case "start":
		return applyVolatileStart(b, ev)

	case "end":
		return applyVolatileEnd(b, ev)

	case "activate":
		return applyActivate(b, ev)

	case "transform":
		_, mon, err := combatant(b, ev)
		if err != nil {
			return err
		}
		targetRef, err := resolve.Position(argStr(ev, "target"))
		if err != nil {
			return err
		}
		_, target, err := resolve.Combatant(b, targetRef)
		if err != nil {
			return err
		}
		if mon.Volatile == nil {
			return fmt.Errorf("transform on inactive combatant %q", argStr(ev, "pos"))
		}
		return mon.Volatile.Transform(target)

	default:
		// Unknown event type, nothing to track.
	}
	return nil
}

// applyCant handles a combatant being prevented from acting.
func applyCant(b *state.Battle, ev types.Event) error {
	_, mon, err := combatant(b, ev)
	if err != nil {
		return err
	}
	v := mon.Volatile
	switch argStr(ev, "reason") {
	case "recharge":
		if v != nil {
			v.MustRecharge = false
		}
	case "slp":
		return mon.Sleep.Tick()
	case "truant":
		// Only one ability forces idle turns; seeing it is proof.
		if err := mon.Ability.NarrowFunc(func(_ types.AbilityName, d dex.Ability) bool {
			return d.Truant
		}); err != nil {
			return fmt.Errorf("truant inference: %w", err)
		}
	}
	if v != nil {
		v.MovedThisTurn = true
	}
	return nil
}

// applyFail resolves a failed move against the hypotheses that could explain
// it. A weather move failing under different weather means some active
// combatant's ability suppresses weather; with exactly one candidate
// combatant the suppression is committed.
func applyFail(b *state.Battle, ev types.Event) error {
	_, mon, err := combatant(b, ev)
	if err != nil {
		return err
	}
	v := mon.Volatile
	if v == nil || v.LastMove == "" {
		return nil
	}
	mv, err := b.Dex().Move(v.LastMove)
	if err != nil || mv.Weather == "" {
		return nil
	}
	if b.Weather.Kind == mv.Weather {
		return nil // failed because the weather is already up
	}
	reasons, certainty := reason.WeatherSuppressed(activeAbilities(b)...)
	if certainty == reason.Unknown && len(reasons) == 1 {
		if err := reasons[0].Assert(); err != nil {
			return fmt.Errorf("weather suppression inference: %w", err)
		}
	}
	return nil
}

// applyWeather handles weather changes and upkeep lines. Upkeep is ignored:
// the turn boundary ticks the weather counter.
func applyWeather(b *state.Battle, ev types.Event) error {
	kind := types.WeatherName(resolve.ID(argStr(ev, "weather")))
	if kind == types.WeatherNone {
		b.EndWeather()
		return nil
	}
	if argStr(ev, "upkeep") != "" {
		return nil
	}
	tag, name := fromTag(argStr(ev, "from"))
	if tag == "ability" {
		if of := argStr(ev, "of"); of != "" {
			ref, err := resolve.Position(of)
			if err != nil {
				return err
			}
			_, src, err := resolve.Combatant(b, ref)
			if err != nil {
				return err
			}
			if err := src.SetAbility(types.AbilityName(name)); err != nil {
				return err
			}
		}
		b.StartWeather(kind, nil)
		return nil
	}
	b.StartWeather(kind, weatherSource(b, kind))
	return nil
}

// weatherSource finds the active combatant whose move summoned the weather,
// so the duration can hinge on its held rock item.
func weatherSource(b *state.Battle, kind types.WeatherName) *state.Pokemon {
	for _, p := range b.Actives() {
		v := p.Volatile
		if v == nil || !v.MovedThisTurn || v.LastMove == "" {
			continue
		}
		if mv, err := b.Dex().Move(v.LastMove); err == nil && mv.Weather == kind {
			return p
		}
	}
	return nil
}

func applySideStart(b *state.Battle, ev types.Event) error {
	side, err := b.Side(sideID(argStr(ev, "side")))
	if err != nil {
		return err
	}
	_, name := fromTag(argStr(ev, "condition"))
	switch types.MoveName(name) {
	case "spikes":
		side.AddSpikes()
	case "toxicspikes":
		side.AddToxicSpikes()
	case "stealthrock":
		side.AddStealthRock()
	case "reflect":
		side.StartReflect(screenSetter(b, side))
	case "lightscreen":
		side.StartLightScreen(screenSetter(b, side))
	case "safeguard":
		side.Safeguard.Start(true)
	case "mist":
		side.Mist.Start(true)
	case "tailwind":
		side.Tailwind.Start(true)
	case "luckychant":
		side.LuckyChant.Start(true)
	}
	return nil
}

func applySideEnd(b *state.Battle, ev types.Event) error {
	side, err := b.Side(sideID(argStr(ev, "side")))
	if err != nil {
		return err
	}
	_, name := fromTag(argStr(ev, "condition"))
	switch types.MoveName(name) {
	case "spikes":
		side.Spikes = 0
	case "toxicspikes":
		side.ToxicSpikes = 0
	case "stealthrock":
		side.StealthRock = 0
	case "reflect":
		side.EndReflect()
	case "lightscreen":
		side.EndLightScreen()
	case "safeguard":
		side.Safeguard.End()
	case "mist":
		side.Mist.End()
	case "tailwind":
		side.Tailwind.End()
	case "luckychant":
		side.LuckyChant.End()
	}
	return nil
}

// screenSetter picks whose held item the screen duration hinges on: the
// setting side's active combatant.
func screenSetter(b *state.Battle, side *state.Side) *state.Pokemon {
	return side.Active()
}

func applyVolatileStart(b *state.Battle, ev types.Event) error {
	_, mon, err := combatant(b, ev)
	if err != nil {
		return err
	}
	v := mon.Volatile
	if v == nil {
		return nil
	}
	_, name := fromTag(argStr(ev, "condition"))
	switch name {
	case "confusion":
		kind := "confusion"
		if argStr(ev, "fatigue") != "" {
			kind = "fatigue"
		}
		return v.Confusion.Start(kind, kind == "fatigue", true)
	case "substitute":
		v.Substitute = true
	case "leechseed":
		v.LeechSeed = true
	case "perish3":
		v.Perish.Start(true)
	case "ingrain":
		v.Ingrain = true
	case "aquaring":
		v.AquaRing = true
	case "curse":
		v.Cursed = true
	case "focusenergy":
		v.FocusEnergy = true
	case "gastroacid":
		v.GastroAcid = true
	case "powertrick":
		v.PowerTrick = true
	case "magnetrise":
		v.MagnetRise.Start(true)
	case "embargo":
		v.Embargo.Start(true)
	case "attract":
		v.Attract = true
	case "torment":
		v.Torment = true
	case "taunt":
		v.Taunt.Start(true)
	case "encore":
		v.Encore.Start(true)
		v.EncoredMove = v.LastMove
	case "disable":
		v.Disable.Start(true)
		v.DisabledMove = types.MoveName(resolve.ID(argStr(ev, "move")))
	case "yawn":
		v.Yawn.Start(true)
	case "healblock":
		v.HealBlock.Start(true)
	case "slowstart":
		v.SlowStart.Start(true)
	case "uproar":
		v.Uproar.Start(true)
	case "bide":
		v.Bide.Start(true)
	case "charge":
		v.Charge.Start(true)
	case "stockpile1", "stockpile2", "stockpile3":
		v.Stockpile = int(name[len(name)-1] - '0')
	case "foresight":
		v.Foresight = true
	case "miracleeye":
		v.MiracleEye = true
	case "nightmare":
		v.Nightmare = true
	case "mudsport":
		v.MudSport = true
	case "watersport":
		v.WaterSport = true
	case "defensecurl":
		v.DefenseCurl = true
	case "minimize":
		v.Minimized = true
	case "destinybond":
		v.DestinyBond = true
	case "grudge":
		v.Grudge = true
	case "rage":
		v.Rage = true
	case "flashfire":
		v.FlashFire = true
	}
	return nil
}

func applyVolatileEnd(b *state.Battle, ev types.Event) error {
	_, mon, err := combatant(b, ev)
	if err != nil {
		return err
	}
	v := mon.Volatile
	if v == nil {
		return nil
	}
	_, name := fromTag(argStr(ev, "condition"))
	switch name {
	case "confusion":
		v.Confusion.End()
	case "substitute":
		v.Substitute = false
	case "leechseed":
		v.LeechSeed = false
	case "ingrain":
		v.Ingrain = false
	case "aquaring":
		v.AquaRing = false
	case "curse":
		v.Cursed = false
	case "gastroacid":
		v.GastroAcid = false
	case "powertrick":
		v.PowerTrick = false
	case "magnetrise":
		v.MagnetRise.End()
	case "embargo":
		v.Embargo.End()
	case "attract":
		v.Attract = false
	case "torment":
		v.Torment = false
	case "taunt":
		v.Taunt.End()
	case "encore":
		v.Encore.End()
		v.EncoredMove = ""
	case "disable":
		v.Disable.End()
		v.DisabledMove = ""
	case "yawn":
		v.Yawn.End()
	case "healblock":
		v.HealBlock.End()
	case "slowstart":
		v.SlowStart.End()
	case "uproar":
		v.Uproar.End()
	case "bide":
		v.Bide.End()
	case "stockpile":
		v.Stockpile = 0
	case "nightmare":
		v.Nightmare = false
	case "destinybond":
		v.DestinyBond = false
	case "rage":
		v.Rage = false
	case "flashfire":
		v.FlashFire = false
	case "trapped", "partiallytrapped":
		if by := v.TrappedBy(); by != nil {
			by.ClearTrapping()
		}
	}
	return nil
}

// applyActivate handles the activation lines the tracker cares about:
// trapping moves establish the symmetric trap relation.
func applyActivate(b *state.Battle, ev types.Event) error {
	_, mon, err := combatant(b, ev)
	if err != nil {
		return err
	}
	v := mon.Volatile
	if v == nil {
		return nil
	}
	tag, name := fromTag(argStr(ev, "condition"))
	if tag != "move" {
		return nil
	}
	mv, err := b.Dex().Move(types.MoveName(name))
	if err != nil || !mv.Trapping {
		return nil
	}
	of := argStr(ev, "of")
	if of == "" {
		return nil
	}
	ref, err := resolve.Position(of)
	if err != nil {
		return err
	}
	_, trapper, err := resolve.Combatant(b, ref)
	if err != nil {
		return err
	}
	if tv := trapper.Volatile; tv != nil {
		tv.SetTrapping(v)
		tv.TrappingTurns.Start(true)
	}
	return nil
}

// applyFromTag resolves damage/heal source tags that reveal a held item or
// ability. The trait belongs to the of-combatant when one is named, else to
// the event's subject.
func applyFromTag(b *state.Battle, ev types.Event, mon *state.Pokemon) error {
	tag, name := fromTag(argStr(ev, "from"))
	if tag != "item" && tag != "ability" {
		return nil
	}
	owner := mon
	if of := argStr(ev, "of"); of != "" {
		ref, err := resolve.Position(of)
		if err != nil {
			return err
		}
		_, owner, err = resolve.Combatant(b, ref)
		if err != nil {
			return err
		}
	}
	if tag == "item" {
		return owner.SetItem(types.ItemName(name))
	}
	return owner.SetAbility(types.AbilityName(name))
}

// combatant resolves the event's pos argument.
func combatant(b *state.Battle, ev types.Event) (*state.Side, *state.Pokemon, error) {
	ref, err := resolve.Position(argStr(ev, "pos"))
	if err != nil {
		return nil, nil, err
	}
	return resolve.Combatant(b, ref)
}

// activeAbilities collects the governing ability sets of all active
// combatants.
func activeAbilities(b *state.Battle) []*possible.Set[types.AbilityName, dex.Ability] {
	var sets []*possible.Set[types.AbilityName, dex.Ability]
	for _, p := range b.Actives() {
		sets = append(sets, p.EffectiveAbility())
	}
	return sets
}

// posSide extracts the side id from the event's pos argument without
// resolving the combatant (used by switch, where the combatant may be new).
func posSide(ev types.Event) types.SideID {
	return sideID(argStr(ev, "pos"))
}

// sideID reads the leading "p1"/"p2" of a side or position reference.
func sideID(s string) types.SideID {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		return types.SideID(s[:2])
	}
	return types.SideID(s)
}

// fromTag splits a tag like "move: Rain Dance" into its kind and normalized
// name. An untagged value comes back with an empty kind.
func fromTag(s string) (kind, name string) {
	if head, tail, ok := strings.Cut(s, ":"); ok {
		return strings.TrimSpace(head), resolve.ID(tail)
	}
	return "", resolve.ID(s)
}

// hpPercent parses an hp fraction like "82/100", "45/301 par", or "0 fnt"
// into a percentage.
func hpPercent(s string) (pct int, fainted bool, err error) {
	s = strings.TrimSpace(s)
	if cond, _, ok := strings.Cut(s, " "); ok {
		if strings.Contains(s, "fnt") {
			return 0, true, nil
		}
		s = cond
	}
	cur, max, ok := strings.Cut(s, "/")
	if !ok {
		n, convErr := strconv.Atoi(s)
		if convErr != nil {
			return 0, false, fmt.Errorf("malformed hp %q", s)
		}
		return n, false, nil
	}
	c, err1 := strconv.Atoi(cur)
	m, err2 := strconv.Atoi(max)
	if err1 != nil || err2 != nil || m <= 0 {
		return 0, false, fmt.Errorf("malformed hp %q", s)
	}
	return c * 100 / m, false, nil
}

func argStr(ev types.Event, key string) string {
	s, _ := ev.Args[key].(string)
	return s
}

func argInt(ev types.Event, key string) int {
	switch n := ev.Args[key].(type) {
	case int:
		return n
	case float64:
		return int(n)
	case string:
		v, _ := strconv.Atoi(n)
		return v
	default:
		return 0
	}
}
