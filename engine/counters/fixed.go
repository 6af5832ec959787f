// Package counters implements the bounded turn counters backing temporary
// status effects: fixed-duration, item-extendable-duration, and
// variable-duration-by-kind. Ticks happen once per turn boundary; effects
// with explicit end events use non-silent counters whose overflow is a
// tracking-consistency error.
package counters

import (
	"errors"
	"fmt"
)

// ErrOverflow reports a non-silent counter ticked past its duration: the
// event stream should have ended the effect first.
var ErrOverflow = errors.New("turn counter ticked past duration")

// Fixed is a turn counter with a constant duration. Silent counters simply
// deactivate when the duration elapses; non-silent counters treat that as an
// overflow error.
type Fixed struct {
	duration int
	silent   bool
	active   bool
	turns    int
}

// NewFixed creates an inactive fixed-duration counter.
func NewFixed(duration int, silent bool) *Fixed {
	return &Fixed{duration: duration, silent: silent}
}

// Start activates the counter at zero turns. When already active and restart
// is false, Start is a no-op.
func (f *Fixed) Start(restart bool) {
	if f.active && !restart {
		return
	}
	f.active = true
	f.turns = 0
}

// Tick advances the counter by one turn. Inactive counters ignore ticks.
// Reaching the duration deactivates silently or returns ErrOverflow.
func (f *Fixed) Tick() error {
	if !f.active {
		return nil
	}
	f.turns++
	if f.turns < f.duration {
		return nil
	}
	turns := f.turns
	f.End()
	if f.silent {
		return nil
	}
	return fmt.Errorf("fixed counter at %d/%d turns: %w", turns, f.duration, ErrOverflow)
}

// End deactivates the counter regardless of turn count.
func (f *Fixed) End() {
	f.active = false
	f.turns = 0
}

// Active reports whether the counter is running.
func (f *Fixed) Active() bool { return f.active }

// Turns returns the turns elapsed since Start.
func (f *Fixed) Turns() int { return f.turns }

// Duration returns the configured duration.
func (f *Fixed) Duration() int { return f.duration }
