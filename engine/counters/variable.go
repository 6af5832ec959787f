package counters

import "fmt"

// Variable is a turn counter whose duration depends on which of several
// mutually exclusive sub-kinds is active (e.g. confusion inflicted by a
// thrashing move vs. by an opposing move). It also tracks whether the active
// instance was triggered by another action rather than inflicted directly.
type Variable struct {
	durations map[string]int
	silent    bool

	kind      string
	triggered bool
	active    bool
	turns     int
	duration  int
}

// NewVariable creates an inactive counter over the given kind → duration
// table.
func NewVariable(durations map[string]int, silent bool) *Variable {
	return &Variable{durations: durations, silent: silent}
}

// Start activates the counter for the given kind. triggered records whether
// another action caused this instance. When already active and restart is
// false, Start is a no-op.
func (v *Variable) Start(kind string, triggered, restart bool) error {
	if v.active && !restart {
		return nil
	}
	d, ok := v.durations[kind]
	if !ok {
		return fmt.Errorf("variable counter: unknown kind %q", kind)
	}
	v.kind = kind
	v.triggered = triggered
	v.active = true
	v.turns = 0
	v.duration = d
	return nil
}

// Tick advances the counter by one turn. Reaching the active kind's duration
// deactivates silently or returns ErrOverflow.
func (v *Variable) Tick() error {
	if !v.active {
		return nil
	}
	v.turns++
	if v.turns < v.duration {
		return nil
	}
	turns, kind := v.turns, v.kind
	v.End()
	if v.silent {
		return nil
	}
	return fmt.Errorf("variable counter %q at %d/%d turns: %w", kind, turns, v.duration, ErrOverflow)
}

// End deactivates the counter regardless of turn count.
func (v *Variable) End() {
	v.active = false
	v.turns = 0
	v.kind = ""
	v.triggered = false
}

// Active reports whether the counter is running.
func (v *Variable) Active() bool { return v.active }

// Kind returns the active sub-kind, or "" when inactive.
func (v *Variable) Kind() string { return v.kind }

// Triggered reports whether the active instance was caused by another action.
func (v *Variable) Triggered() bool { return v.triggered }

// Turns returns the turns elapsed since Start.
func (v *Variable) Turns() int { return v.turns }
