// Package engine wires the battle-log parser and event application together
// over the tracked battle state.
package engine

import (
	"fmt"

	"github.com/nathoo/battlecore/dex"
	"github.com/nathoo/battlecore/engine/events"
	"github.com/nathoo/battlecore/engine/parser"
	"github.com/nathoo/battlecore/engine/state"
	"github.com/nathoo/battlecore/types"
)

// Engine holds the reference data and the tracked state of one battle. The
// consumed log lines are kept so a battle can be saved and replayed.
type Engine struct {
	Dex    *dex.Dex
	Battle *state.Battle

	// LineLog records every line that mutated state, in order.
	LineLog []string

	// Aborted is set when an event contradicted previously accepted
	// evidence; further lines are rejected until the battle is reset.
	Aborted error
}

// New creates an engine tracking a fresh battle from the given side's
// perspective.
func New(dx *dex.Dex, us types.SideID, rosterSize int) *Engine {
	return &Engine{
		Dex:    dx,
		Battle: state.NewBattle(dx, us, rosterSize),
	}
}

// HandleLine consumes one battle-log line. The first return reports whether
// the line carried a trackable event. A returned error means the event
// stream contradicted the tracked state; the engine stops accepting lines.
func (e *Engine) HandleLine(line string) (bool, error) {
	if e.Aborted != nil {
		return false, fmt.Errorf("tracking aborted: %w", e.Aborted)
	}
	ev, ok, err := parser.Parse(line)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	if err := events.Apply(e.Battle, ev); err != nil {
		e.Aborted = err
		return true, err
	}
	e.LineLog = append(e.LineLog, line)
	return true, nil
}

// HandleEvent applies an already-decoded event.
func (e *Engine) HandleEvent(ev types.Event) error {
	if e.Aborted != nil {
		return fmt.Errorf("tracking aborted: %w", e.Aborted)
	}
	if err := events.Apply(e.Battle, ev); err != nil {
		e.Aborted = err
		return err
	}
	return nil
}

// Replay rebuilds state by consuming a recorded line log from scratch.
func (e *Engine) Replay(lines []string) error {
	e.Battle = state.NewBattle(e.Dex, e.Battle.Us(), e.Battle.OurSide().Size())
	e.LineLog = nil
	e.Aborted = nil
	for _, line := range lines {
		if _, err := e.HandleLine(line); err != nil {
			return fmt.Errorf("replaying %q: %w", line, err)
		}
	}
	return nil
}
