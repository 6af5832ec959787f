// Package reason implements composable, lazily-evaluated claims about hidden
// state: "this fact would have to hold (or not) for an observed event to be
// consistent." Resolving a claim against the observed outcome narrows the
// underlying possibility sets.
package reason

import (
	"github.com/nathoo/battlecore/dex"
	"github.com/nathoo/battlecore/engine/possible"
	"github.com/nathoo/battlecore/types"
)

// Tristate is the result of querying a claim before enough evidence exists.
type Tristate int

// Unknown is the normal steady state before evidence accumulates, not an
// error.
const (
	Unknown Tristate = iota
	Holds
	Fails
)

func (t Tristate) String() string {
	switch t {
	case Holds:
		return "holds"
	case Fails:
		return "fails"
	default:
		return "unknown"
	}
}

// Reason is one claim about hidden state.
//
// CanHold is a pure query. Assert commits to the claim holding; Reject to
// its inverse; both propagate a possibility-exhaustion error when the
// commitment contradicts the evidence already accepted. Delay invokes cb
// exactly once when the claim becomes decided either way — synchronously if
// it already is — and returns a cancel handle for the unfired callback.
type Reason interface {
	CanHold() Tristate
	Assert() error
	Reject() error
	Delay(cb func(bool)) (cancel func())
}

// hasValue claims the set's true value is one of the claimed keys.
type hasValue[K comparable, D any] struct {
	set  *possible.Set[K, D]
	keys []K
}

// lacksValue claims the set's true value is none of the claimed keys.
type lacksValue[K comparable, D any] struct {
	set  *possible.Set[K, D]
	keys []K
}

func (r hasValue[K, D]) CanHold() Tristate {
	return claimState(r.set, r.keys)
}

func (r hasValue[K, D]) Assert() error {
	return r.set.Narrow(r.keys...)
}

func (r hasValue[K, D]) Reject() error {
	return r.set.Remove(r.keys...)
}

func (r hasValue[K, D]) Delay(cb func(bool)) (cancel func()) {
	return r.set.OnSubsetUpdate(r.keys, cb)
}

func (r lacksValue[K, D]) CanHold() Tristate {
	switch claimState(r.set, r.keys) {
	case Holds:
		return Fails
	case Fails:
		return Holds
	default:
		return Unknown
	}
}

func (r lacksValue[K, D]) Assert() error {
	return r.set.Remove(r.keys...)
}

func (r lacksValue[K, D]) Reject() error {
	return r.set.Narrow(r.keys...)
}

func (r lacksValue[K, D]) Delay(cb func(bool)) (cancel func()) {
	return r.set.OnSubsetUpdate(r.keys, func(kept bool) { cb(!kept) })
}

// claimState relates the live possible set to the claimed keys: Holds when
// possible ⊆ claimed, Fails when disjoint, Unknown otherwise.
func claimState[K comparable, D any](set *possible.Set[K, D], keys []K) Tristate {
	claimed := make(map[K]struct{}, len(keys))
	for _, k := range keys {
		claimed[k] = struct{}{}
	}
	inside := 0
	for _, k := range set.Keys() {
		if _, ok := claimed[k]; ok {
			inside++
		}
	}
	switch inside {
	case 0:
		return Fails
	case set.Len():
		return Holds
	default:
		return Unknown
	}
}

// HasAbility claims the combatant's ability is one of the given abilities.
func HasAbility(set *possible.Set[types.AbilityName, dex.Ability], abilities ...types.AbilityName) Reason {
	return hasValue[types.AbilityName, dex.Ability]{set: set, keys: abilities}
}

// DoesNotHaveAbility claims the combatant's ability is none of the given
// abilities.
func DoesNotHaveAbility(set *possible.Set[types.AbilityName, dex.Ability], abilities ...types.AbilityName) Reason {
	return lacksValue[types.AbilityName, dex.Ability]{set: set, keys: abilities}
}

// HasItem claims the combatant's held item is one of the given items.
func HasItem(set *possible.Set[types.ItemName, dex.Item], items ...types.ItemName) Reason {
	return hasValue[types.ItemName, dex.Item]{set: set, keys: items}
}

// DoesNotHaveItem claims the combatant's held item is none of the given
// items.
func DoesNotHaveItem(set *possible.Set[types.ItemName, dex.Item], items ...types.ItemName) Reason {
	return lacksValue[types.ItemName, dex.Item]{set: set, keys: items}
}

// abilityCandidates returns the still-possible abilities satisfying pred.
func abilityCandidates(set *possible.Set[types.AbilityName, dex.Ability], pred func(dex.Ability) bool) []types.AbilityName {
	var out []types.AbilityName
	for _, k := range set.Keys() {
		if a, ok := set.Data(k); ok && pred(a) {
			out = append(out, k)
		}
	}
	return out
}

// AbilityIgnoresItem is the derived claim that the combatant's ability makes
// it ignore its held item. The claim is built over the still-possible
// abilities carrying the flag.
func AbilityIgnoresItem(set *possible.Set[types.AbilityName, dex.Ability]) Reason {
	return HasAbility(set, abilityCandidates(set, func(a dex.Ability) bool { return a.IgnoresItem })...)
}

// AbilityIgnoresTargetAbility is the derived claim that the combatant's
// ability bypasses its target's ability.
func AbilityIgnoresTargetAbility(set *possible.Set[types.AbilityName, dex.Ability]) Reason {
	return HasAbility(set, abilityCandidates(set, func(a dex.Ability) bool { return a.IgnoresTargetAbility })...)
}

// WeatherSuppressed evaluates "some active combatant's ability suppresses
// weather" over the given ability sets. If any combatant certainly has a
// suppressing ability, the answer is certain with no reasons; combatants
// that certainly lack one contribute nothing; each remaining combatant
// contributes one has-ability reason. No reasons and no certain carrier
// means certainly not suppressed.
func WeatherSuppressed(abilities ...*possible.Set[types.AbilityName, dex.Ability]) ([]Reason, Tristate) {
	var reasons []Reason
	for _, set := range abilities {
		candidates := abilityCandidates(set, func(a dex.Ability) bool { return a.SuppressesWeather })
		if len(candidates) == 0 {
			continue
		}
		if len(candidates) == set.Len() {
			return nil, Holds
		}
		reasons = append(reasons, HasAbility(set, candidates...))
	}
	if len(reasons) == 0 {
		return nil, Fails
	}
	return reasons, Unknown
}
