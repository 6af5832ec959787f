package possible

import (
	"errors"
	"testing"
)

func newABC(t *testing.T) *Set[string, int] {
	t.Helper()
	s, err := New(map[string]int{"a": 1, "b": 2, "c": 3})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestNewInitialSubset(t *testing.T) {
	s, err := New(map[string]int{"a": 1, "b": 2, "c": 3}, "a", "b")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s.Len() != 2 || !s.Contains("a") || !s.Contains("b") || s.Contains("c") {
		t.Errorf("expected possible {a,b}, got %v", s.Keys())
	}

	// Initial key outside the universe fails fast.
	if _, err := New(map[string]int{"a": 1}, "z"); err == nil {
		t.Error("expected error for initial key outside universe")
	}
}

func TestDefinite(t *testing.T) {
	s := newABC(t)
	if _, ok := s.Definite(); ok {
		t.Error("three possibilities should not be definite")
	}
	if err := s.Narrow("b"); err != nil {
		t.Fatalf("Narrow: %v", err)
	}
	k, ok := s.Definite()
	if !ok || k != "b" {
		t.Errorf("expected definite b, got %q, %v", k, ok)
	}
}

func TestNarrowExhaustion(t *testing.T) {
	s := newABC(t)
	if err := s.Narrow("a", "b"); err != nil {
		t.Fatalf("Narrow: %v", err)
	}
	err := s.Remove("a", "b")
	if !errors.Is(err, ErrExhausted) {
		t.Fatalf("expected ErrExhausted, got %v", err)
	}
	// The failed mutation must leave the set untouched.
	if s.Len() != 2 {
		t.Errorf("failed mutation should not change the set, got %v", s.Keys())
	}
}

func TestNarrowFunc(t *testing.T) {
	s := newABC(t)
	if err := s.NarrowFunc(func(_ string, d int) bool { return d >= 2 }); err != nil {
		t.Fatalf("NarrowFunc: %v", err)
	}
	if s.Contains("a") || !s.Contains("b") || !s.Contains("c") {
		t.Errorf("expected {b,c}, got %v", s.Keys())
	}
}

func TestOnDeterminedFIFO(t *testing.T) {
	s := newABC(t)
	var order []int
	s.OnDetermined(func(k string, d int) {
		if k != "c" || d != 3 {
			t.Errorf("expected (c, 3), got (%q, %d)", k, d)
		}
		order = append(order, 1)
	})
	s.OnDetermined(func(string, int) { order = append(order, 2) })

	if err := s.Remove("a", "b"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("expected FIFO order [1 2], got %v", order)
	}

	// Already determined: fires synchronously, exactly once.
	calls := 0
	s.OnDetermined(func(string, int) { calls++ })
	if calls != 1 {
		t.Errorf("expected immediate call, got %d", calls)
	}
}

func TestSubsetUpdateKept(t *testing.T) {
	s := newABC(t)
	var got []bool
	s.OnSubsetUpdate([]string{"a"}, func(kept bool) { got = append(got, kept) })
	if err := s.Remove("b", "c"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if len(got) != 1 || got[0] != true {
		t.Errorf("expected single true, got %v", got)
	}
}

func TestSubsetUpdateNotKept(t *testing.T) {
	s := newABC(t)
	var got []bool
	s.OnSubsetUpdate([]string{"a"}, func(kept bool) { got = append(got, kept) })
	if err := s.Remove("a"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if len(got) != 1 || got[0] != false {
		t.Errorf("expected single false, got %v", got)
	}
	// Further mutations never re-fire a one-shot callback.
	if err := s.Remove("b"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("callback fired again: %v", got)
	}
}

func TestSubsetUpdateImmediate(t *testing.T) {
	s := newABC(t)

	// Tracked set already covers all possibilities → immediate true.
	calls := 0
	s.OnSubsetUpdate([]string{"a", "b", "c"}, func(kept bool) {
		calls++
		if !kept {
			t.Error("expected kept=true")
		}
	})
	if calls != 1 {
		t.Fatalf("expected immediate call, got %d", calls)
	}

	// Tracked set already disjoint → immediate false.
	calls = 0
	s.OnSubsetUpdate([]string{"z"}, func(kept bool) {
		calls++
		if kept {
			t.Error("expected kept=false")
		}
	})
	if calls != 1 {
		t.Fatalf("expected immediate call, got %d", calls)
	}
}

func TestSubsetUpdateCancel(t *testing.T) {
	s := newABC(t)
	cancel := s.OnSubsetUpdate([]string{"a"}, func(bool) {
		t.Error("cancelled callback must not fire")
	})
	cancel()
	if err := s.Remove("b", "c"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	cancel() // after the fact: no-op
}

func TestBatchedMutationVisibility(t *testing.T) {
	// A single Remove of two keys must show listeners the final state only.
	s := newABC(t)
	s.OnSubsetUpdate([]string{"a"}, func(kept bool) {
		if !kept {
			t.Error("expected kept=true: both b and c removed in one mutation")
		}
		if s.Len() != 1 {
			t.Errorf("listener saw intermediate state with %d keys", s.Len())
		}
	})
	if err := s.Remove("b", "c"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
}

func TestDeterminedAfterSubsetCallbacks(t *testing.T) {
	s := newABC(t)
	var order []string
	s.OnDetermined(func(string, int) { order = append(order, "determined") })
	s.OnSubsetUpdate([]string{"c"}, func(bool) { order = append(order, "subset") })
	if err := s.Narrow("c"); err != nil {
		t.Fatalf("Narrow: %v", err)
	}
	if len(order) != 2 || order[0] != "subset" || order[1] != "determined" {
		t.Errorf("expected subset callbacks before determined, got %v", order)
	}
}

func TestReentrantRegistration(t *testing.T) {
	s := newABC(t)
	inner := 0
	s.OnSubsetUpdate([]string{"a", "b"}, func(bool) {
		// Registering from inside a firing callback must be safe.
		s.OnSubsetUpdate([]string{"a"}, func(bool) { inner++ })
	})
	if err := s.Remove("c"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := s.Remove("b"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if inner != 1 {
		t.Errorf("expected inner callback to fire once, got %d", inner)
	}
}

func TestReentrantCancel(t *testing.T) {
	s := newABC(t)
	var cancelSecond func()
	firstFired := false
	s.OnSubsetUpdate([]string{"a"}, func(bool) {
		firstFired = true
		cancelSecond()
	})
	cancelSecond = s.OnSubsetUpdate([]string{"a"}, func(bool) {
		t.Error("second callback should have been cancelled by the first")
	})
	if err := s.Remove("b", "c"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if !firstFired {
		t.Error("first callback never fired")
	}
}

func TestNoopMutationDoesNotNotify(t *testing.T) {
	s := newABC(t)
	if err := s.Narrow("a", "b"); err != nil {
		t.Fatalf("Narrow: %v", err)
	}
	fired := false
	s.OnSubsetUpdate([]string{"a"}, func(bool) { fired = true })
	// Removing an already-impossible key changes nothing.
	if err := s.Remove("c"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if fired {
		t.Error("no-op mutation must not fire callbacks")
	}
}
