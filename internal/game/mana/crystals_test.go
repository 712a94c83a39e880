package mana

import (
	"testing"
)

func TestCrystals_BeginTurnGrowsAndRefills(t *testing.T) {
	c := NewCrystals()

	c.BeginTurn()
	if c.Current() != 1 || c.Max() != 1 {
		t.Fatalf("Expected 1/1 after first turn, got %s", c)
	}

	if !c.Spend(1) {
		t.Fatal("Expected to spend 1 mana")
	}
	c.BeginTurn()
	if c.Current() != 2 || c.Max() != 2 {
		t.Errorf("Expected refill to 2/2, got %s", c)
	}
}

func TestCrystals_CapAtTen(t *testing.T) {
	c := NewCrystals()
	for i := 0; i < 15; i++ {
		c.BeginTurn()
	}
	if c.Max() != MaxCrystals {
		t.Errorf("Expected max %d, got %d", MaxCrystals, c.Max())
	}
	if c.Current() != MaxCrystals {
		t.Errorf("Expected current %d, got %d", MaxCrystals, c.Current())
	}
}

func TestCrystals_Spend(t *testing.T) {
	c := NewCrystals()
	if err := c.Set(3, 3); err != nil {
		t.Fatalf("set: %v", err)
	}

	if !c.Spend(3) {
		t.Fatal("Expected to spend 3 mana")
	}
	if c.Current() != 0 {
		t.Errorf("Expected 0 mana remaining, got %d", c.Current())
	}
	if c.Spend(1) {
		t.Error("Expected spend to fail with no mana")
	}
	if !c.Spend(0) {
		t.Error("Expected zero-cost spend to succeed")
	}
	if c.Spend(-1) {
		t.Error("Expected negative spend to fail")
	}
}

func TestCrystals_TemporarySpentFirstAndExpires(t *testing.T) {
	c := NewCrystals()
	c.BeginTurn()

	if got := c.AddTemporary(1); got != 1 {
		t.Fatalf("Expected 1 temporary crystal granted, got %d", got)
	}
	if c.Available() != 2 {
		t.Fatalf("Expected 2 available, got %d", c.Available())
	}
	if c.Current() > c.Max() {
		t.Fatalf("Permanent mana must not exceed max: %s", c)
	}

	if !c.Spend(1) {
		t.Fatal("Expected spend to succeed")
	}
	if c.Temporary() != 0 || c.Current() != 1 {
		t.Errorf("Expected temporary mana spent first, got %s", c)
	}

	c.AddTemporary(1)
	c.BeginTurn()
	if c.Temporary() != 0 {
		t.Errorf("Expected temporary mana to expire, got %d", c.Temporary())
	}
}

func TestCrystals_TemporaryBoundedByCap(t *testing.T) {
	c := NewCrystals()
	if err := c.Set(10, 10); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got := c.AddTemporary(1); got != 0 {
		t.Errorf("Expected no temporary mana at cap, got %d", got)
	}
}

func TestCrystals_SetRejectsOutOfRange(t *testing.T) {
	c := NewCrystals()
	if err := c.Set(2, 11); err == nil {
		t.Error("Expected error for max above cap")
	}
	if err := c.Set(4, 3); err == nil {
		t.Error("Expected error for current above max")
	}
}
