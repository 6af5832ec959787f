package counters

import (
	"errors"
	"testing"

	"github.com/nathoo/battlecore/engine/possible"
)

func TestFixedSilentLifecycle(t *testing.T) {
	f := NewFixed(3, true)
	if f.Active() {
		t.Fatal("new counter should be inactive")
	}
	f.Start(false)
	for i := 0; i < 2; i++ {
		if err := f.Tick(); err != nil {
			t.Fatalf("tick %d: %v", i+1, err)
		}
		if !f.Active() {
			t.Fatalf("counter ended early at tick %d", i+1)
		}
	}
	if err := f.Tick(); err != nil {
		t.Fatalf("final tick: %v", err)
	}
	if f.Active() {
		t.Error("silent counter should end at duration")
	}
}

func TestFixedOverflow(t *testing.T) {
	f := NewFixed(2, false)
	f.Start(false)
	if err := f.Tick(); err != nil {
		t.Fatalf("tick 1: %v", err)
	}
	err := f.Tick()
	if !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected ErrOverflow, got %v", err)
	}
}

func TestFixedRestart(t *testing.T) {
	f := NewFixed(5, true)
	f.Start(false)
	_ = f.Tick()
	_ = f.Tick()

	// restart=false on an active counter is a no-op.
	f.Start(false)
	if f.Turns() != 2 {
		t.Errorf("Start(false) should not reset turns, got %d", f.Turns())
	}

	f.Start(true)
	if f.Turns() != 0 {
		t.Errorf("Start(true) should reset turns, got %d", f.Turns())
	}
}

func TestFixedInactiveTickIsNoop(t *testing.T) {
	f := NewFixed(1, false)
	if err := f.Tick(); err != nil {
		t.Fatalf("inactive tick should be a no-op, got %v", err)
	}
}

func newItemSet(t *testing.T, initial ...string) *possible.Set[string, int] {
	t.Helper()
	s, err := possible.New(map[string]int{"lightclay": 0, "leftovers": 1, "none": 2}, initial...)
	if err != nil {
		t.Fatalf("possible.New: %v", err)
	}
	return s
}

func TestItemExtendableRetroactiveInference(t *testing.T) {
	item := newItemSet(t)
	c := NewItemExtendable(5, 8, item, "lightclay")
	c.Start(false)

	// Ticks up to one before the short duration are uneventful.
	for i := 0; i < 4; i++ {
		if err := c.Tick(); err != nil {
			t.Fatalf("tick %d: %v", i+1, err)
		}
	}
	if item.Len() != 3 {
		t.Fatalf("no inference should have happened yet, got %v", item.Keys())
	}

	// The tick at the short duration proves the extending item.
	if err := c.Tick(); err != nil {
		t.Fatalf("tick 5: %v", err)
	}
	k, ok := item.Definite()
	if !ok || k != "lightclay" {
		t.Errorf("expected item narrowed to lightclay, got %v", item.Keys())
	}
	if c.Duration() != 8 {
		t.Errorf("expected duration extended to 8, got %d", c.Duration())
	}

	// The extended counter still overflows at the long duration.
	for i := 0; i < 2; i++ {
		if err := c.Tick(); err != nil {
			t.Fatalf("tick %d: %v", i+6, err)
		}
	}
	if err := c.Tick(); !errors.Is(err, ErrOverflow) {
		t.Errorf("expected ErrOverflow at long duration, got %v", err)
	}
}

func TestItemExtendableImpossibleItemOverflows(t *testing.T) {
	item := newItemSet(t)
	c := NewItemExtendable(5, 8, item, "lightclay")
	c.Start(false)
	if err := item.Remove("lightclay"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	for i := 0; i < 4; i++ {
		if err := c.Tick(); err != nil {
			t.Fatalf("tick %d: %v", i+1, err)
		}
	}
	if err := c.Tick(); !errors.Is(err, ErrOverflow) {
		t.Errorf("expected ErrOverflow once the extender is impossible, got %v", err)
	}
}

func TestItemExtendableConfirmedUpFront(t *testing.T) {
	item := newItemSet(t, "lightclay")
	c := NewItemExtendable(5, 8, item, "lightclay")
	c.Start(false)
	if c.Duration() != 8 {
		t.Errorf("known extender should select the long duration at start, got %d", c.Duration())
	}
}

func TestItemExtendableConfirmedMidway(t *testing.T) {
	item := newItemSet(t)
	c := NewItemExtendable(5, 8, item, "lightclay")
	c.Start(false)
	_ = c.Tick()

	// An item reveal elsewhere in the event stream confirms the extender.
	if err := item.Narrow("lightclay"); err != nil {
		t.Fatalf("Narrow: %v", err)
	}
	if c.Duration() != 8 {
		t.Errorf("expected duration extended on confirmation, got %d", c.Duration())
	}
}

func TestItemExtendableEndCancelsListener(t *testing.T) {
	item := newItemSet(t)
	c := NewItemExtendable(5, 8, item, "lightclay")
	c.Start(false)
	c.End()
	if err := item.Narrow("lightclay"); err != nil {
		t.Fatalf("Narrow: %v", err)
	}
	if c.Duration() == 8 {
		t.Error("ended counter should not react to item confirmation")
	}
}

func TestVariableKinds(t *testing.T) {
	v := NewVariable(map[string]int{"uproar": 5, "confusion": 4}, true)

	if err := v.Start("outrage", false, false); err == nil {
		t.Error("expected error for unknown kind")
	}

	if err := v.Start("confusion", true, false); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !v.Triggered() {
		t.Error("expected triggered flag set")
	}
	for i := 0; i < 3; i++ {
		if err := v.Tick(); err != nil {
			t.Fatalf("tick %d: %v", i+1, err)
		}
	}
	if err := v.Tick(); err != nil {
		t.Fatalf("final tick: %v", err)
	}
	if v.Active() {
		t.Error("silent variable counter should end at its kind's duration")
	}
}

func TestVariableOverflow(t *testing.T) {
	v := NewVariable(map[string]int{"bide": 2}, false)
	if err := v.Start("bide", false, false); err != nil {
		t.Fatalf("Start: %v", err)
	}
	_ = v.Tick()
	if err := v.Tick(); !errors.Is(err, ErrOverflow) {
		t.Errorf("expected ErrOverflow, got %v", err)
	}
}
