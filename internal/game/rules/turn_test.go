package rules

import "testing"

func TestTurnManagerLifecycle(t *testing.T) {
	tm := NewTurnManager("Alice", "Bob")

	if tm.CurrentPhase() != PhaseSetup {
		t.Fatalf("expected phase %s, got %s", PhaseSetup, tm.CurrentPhase())
	}
	if tm.TurnNumber() != 0 {
		t.Fatalf("expected turn 0 during setup, got %d", tm.TurnNumber())
	}
	if _, err := tm.Advance(); err == nil {
		t.Fatal("expected advance during setup to fail")
	}

	if err := tm.Begin(); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if tm.ActivePlayer() != "Alice" || tm.Other(tm.ActivePlayer()) != "Bob" {
		t.Fatalf("expected Alice active, got %s", tm.ActivePlayer())
	}
	if err := tm.Begin(); err == nil {
		t.Fatal("expected second begin to fail")
	}
}

func TestTurnManagerAdvanceAlternates(t *testing.T) {
	tm := NewTurnManager("Alice", "Bob")
	if err := tm.Begin(); err != nil {
		t.Fatalf("begin: %v", err)
	}

	expected := []string{"Bob", "Alice", "Bob", "Alice"}
	for i, want := range expected {
		got, err := tm.Advance()
		if err != nil {
			t.Fatalf("advance %d: %v", i, err)
		}
		if got != want {
			t.Fatalf("advance %d: expected %s, got %s", i, want, got)
		}
		if tm.TurnNumber() != i+2 {
			t.Fatalf("advance %d: expected turn %d, got %d", i, i+2, tm.TurnNumber())
		}
	}
}

func TestTurnManagerFinish(t *testing.T) {
	tm := NewTurnManager("Alice", "Bob")
	_ = tm.Begin()
	tm.Finish()

	if !tm.IsOver() {
		t.Fatal("expected game over")
	}
	if _, err := tm.Advance(); err == nil {
		t.Fatal("expected advance after game over to fail")
	}
	if tm.CurrentPhase().String() != "GAME_OVER" {
		t.Fatalf("unexpected phase name %s", tm.CurrentPhase())
	}
}

func TestTurnManagerOther(t *testing.T) {
	tm := NewTurnManager("Alice", "Bob")
	if tm.Other("Alice") != "Bob" || tm.Other("Bob") != "Alice" {
		t.Fatal("unexpected opponent mapping")
	}
	if tm.Other("Carol") != "" {
		t.Fatal("expected empty opponent for unknown player")
	}
}
