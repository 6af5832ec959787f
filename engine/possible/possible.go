// Package possible implements the uncertain-value primitive: a set of
// candidate keys, one of which is the true hidden value, narrowed as
// evidence arrives. Listeners observe narrowing via one-shot callbacks.
package possible

import (
	"errors"
	"fmt"
)

// ErrExhausted reports that a narrow/remove emptied the possible set. This is
// an inference-consistency bug in the caller, never a normal outcome.
var ErrExhausted = errors.New("no possibilities remain")

// Set tracks which keys of a fixed universe are still possible. The universe
// map (key → associated data) is owned by the caller and never mutated here.
type Set[K comparable, D any] struct {
	universe map[K]D
	possible map[K]struct{}

	nextID     int
	determined []*determinedSub[K, D]
	subsets    []*subsetSub[K]
}

type determinedSub[K comparable, D any] struct {
	id        int
	cb        func(K, D)
	cancelled bool
}

type subsetSub[K comparable] struct {
	id        int
	tracked   map[K]struct{}
	cb        func(bool)
	fired     bool
	cancelled bool
}

// New creates a Set over the given universe. With no initial keys every
// universe key starts possible; otherwise only the given keys do. Initial
// keys absent from the universe are an error.
func New[K comparable, D any](universe map[K]D, initial ...K) (*Set[K, D], error) {
	if len(universe) == 0 {
		return nil, errors.New("possible: empty universe")
	}
	s := &Set[K, D]{
		universe: universe,
		possible: make(map[K]struct{}, len(universe)),
	}
	if len(initial) == 0 {
		for k := range universe {
			s.possible[k] = struct{}{}
		}
		return s, nil
	}
	for _, k := range initial {
		if _, ok := universe[k]; !ok {
			return nil, fmt.Errorf("possible: initial key %v not in universe", k)
		}
		s.possible[k] = struct{}{}
	}
	return s, nil
}

// MustNew is New for callers whose universe and initial keys are known good.
func MustNew[K comparable, D any](universe map[K]D, initial ...K) *Set[K, D] {
	s, err := New(universe, initial...)
	if err != nil {
		panic(err)
	}
	return s
}

// Len returns the number of still-possible keys.
func (s *Set[K, D]) Len() int { return len(s.possible) }

// Contains reports whether k is still possible.
func (s *Set[K, D]) Contains(k K) bool {
	_, ok := s.possible[k]
	return ok
}

// Keys returns the still-possible keys in unspecified order.
func (s *Set[K, D]) Keys() []K {
	keys := make([]K, 0, len(s.possible))
	for k := range s.possible {
		keys = append(keys, k)
	}
	return keys
}

// Definite returns the single remaining key iff exactly one key is possible.
func (s *Set[K, D]) Definite() (K, bool) {
	var zero K
	if len(s.possible) != 1 {
		return zero, false
	}
	for k := range s.possible {
		return k, true
	}
	return zero, false
}

// Data returns the universe data for k and whether k exists in the universe.
func (s *Set[K, D]) Data(k K) (D, bool) {
	d, ok := s.universe[k]
	return d, ok
}

// Narrow intersects the possible set with keys. Emptying the set returns
// ErrExhausted and leaves the set unchanged.
func (s *Set[K, D]) Narrow(keys ...K) error {
	keep := make(map[K]struct{}, len(keys))
	for _, k := range keys {
		if _, ok := s.possible[k]; ok {
			keep[k] = struct{}{}
		}
	}
	return s.apply(keep, fmt.Sprintf("narrow to %d key(s)", len(keys)))
}

// NarrowFunc intersects the possible set with the keys satisfying pred.
func (s *Set[K, D]) NarrowFunc(pred func(K, D) bool) error {
	keep := make(map[K]struct{}, len(s.possible))
	for k := range s.possible {
		if pred(k, s.universe[k]) {
			keep[k] = struct{}{}
		}
	}
	return s.apply(keep, "narrow by predicate")
}

// Remove subtracts keys from the possible set. Emptying the set returns
// ErrExhausted and leaves the set unchanged.
func (s *Set[K, D]) Remove(keys ...K) error {
	drop := make(map[K]struct{}, len(keys))
	for _, k := range keys {
		drop[k] = struct{}{}
	}
	keep := make(map[K]struct{}, len(s.possible))
	for k := range s.possible {
		if _, dropped := drop[k]; !dropped {
			keep[k] = struct{}{}
		}
	}
	return s.apply(keep, fmt.Sprintf("remove %d key(s)", len(keys)))
}

// RemoveFunc subtracts the keys satisfying pred from the possible set.
func (s *Set[K, D]) RemoveFunc(pred func(K, D) bool) error {
	keep := make(map[K]struct{}, len(s.possible))
	for k := range s.possible {
		if !pred(k, s.universe[k]) {
			keep[k] = struct{}{}
		}
	}
	return s.apply(keep, "remove by predicate")
}

// apply installs the new possible set and notifies listeners. The mutation is
// atomic with respect to listener visibility: every callback observes the
// final post-mutation state.
func (s *Set[K, D]) apply(keep map[K]struct{}, op string) error {
	if len(keep) == 0 {
		return fmt.Errorf("possible: %s of %d possibilities: %w", op, len(s.possible), ErrExhausted)
	}
	if len(keep) == len(s.possible) {
		return nil // nothing removed
	}
	s.possible = keep
	s.notify()
	return nil
}

// OnDetermined registers cb to run once when the set collapses to a single
// key. If the set is already determined, cb runs synchronously now.
func (s *Set[K, D]) OnDetermined(cb func(K, D)) {
	if k, ok := s.Definite(); ok {
		cb(k, s.universe[k])
		return
	}
	s.nextID++
	s.determined = append(s.determined, &determinedSub[K, D]{id: s.nextID, cb: cb})
}

// OnSubsetUpdate watches the relationship between the live possible set and
// the tracked keys. cb fires exactly once: with true when the possible set
// becomes a subset of tracked, or false when the two become disjoint. If the
// relationship is already decided, cb runs synchronously now. The returned
// cancel func suppresses an unfired callback; calling it later is a no-op.
func (s *Set[K, D]) OnSubsetUpdate(tracked []K, cb func(bool)) (cancel func()) {
	trackedSet := make(map[K]struct{}, len(tracked))
	for _, k := range tracked {
		trackedSet[k] = struct{}{}
	}
	return s.onSubsetUpdate(trackedSet, cb)
}

// OnSubsetUpdateFunc is OnSubsetUpdate with the tracked keys given as the
// universe keys satisfying pred.
func (s *Set[K, D]) OnSubsetUpdateFunc(pred func(K, D) bool, cb func(bool)) (cancel func()) {
	trackedSet := make(map[K]struct{})
	for k, d := range s.universe {
		if pred(k, d) {
			trackedSet[k] = struct{}{}
		}
	}
	return s.onSubsetUpdate(trackedSet, cb)
}

func (s *Set[K, D]) onSubsetUpdate(tracked map[K]struct{}, cb func(bool)) (cancel func()) {
	if decided, kept := subsetDecision(s.possible, tracked); decided {
		cb(kept)
		return func() {}
	}
	s.nextID++
	sub := &subsetSub[K]{id: s.nextID, tracked: tracked, cb: cb}
	s.subsets = append(s.subsets, sub)
	return func() {
		if !sub.fired {
			sub.cancelled = true
		}
	}
}

// subsetDecision reports whether the possible/tracked relationship is
// decided, and if so which way: kept (possible ⊆ tracked) or not kept
// (possible ∩ tracked empty).
func subsetDecision[K comparable](possible, tracked map[K]struct{}) (decided, kept bool) {
	inside := 0
	for k := range possible {
		if _, ok := tracked[k]; ok {
			inside++
		}
	}
	switch inside {
	case 0:
		return true, false
	case len(possible):
		return true, true
	default:
		return false, false
	}
}

// notify runs subset-update callbacks to a fixpoint, then determined
// callbacks. Callbacks fire in FIFO registration order within each category,
// and determined callbacks only after every subset callback for the mutation.
// Iteration is over stable snapshots so re-entrant registration or
// cancellation from inside a firing callback is safe.
func (s *Set[K, D]) notify() {
	for {
		fired := false
		snapshot := make([]*subsetSub[K], len(s.subsets))
		copy(snapshot, s.subsets)
		for _, sub := range snapshot {
			if sub.fired || sub.cancelled {
				continue
			}
			decided, kept := subsetDecision(s.possible, sub.tracked)
			if !decided {
				continue
			}
			sub.fired = true
			sub.cb(kept)
			fired = true
		}
		s.compactSubsets()
		if !fired {
			break
		}
	}

	k, ok := s.Definite()
	if !ok {
		return
	}
	d := s.universe[k]
	for len(s.determined) > 0 {
		sub := s.determined[0]
		s.determined = s.determined[1:]
		if sub.cancelled {
			continue
		}
		sub.cb(k, d)
	}
}

func (s *Set[K, D]) compactSubsets() {
	live := s.subsets[:0]
	for _, sub := range s.subsets {
		if !sub.fired && !sub.cancelled {
			live = append(live, sub)
		}
	}
	s.subsets = live
}
