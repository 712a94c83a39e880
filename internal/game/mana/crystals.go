package mana

import "fmt"

// MaxCrystals is the cap on permanent mana crystals.
const MaxCrystals = 10

// Crystals represents a hero's mana: permanent crystals refilled every turn
// plus temporary crystals that only last until the owner's next turn.
type Crystals struct {
	current   int
	max       int
	temporary int
}

// NewCrystals creates an empty crystal pool (0/0).
func NewCrystals() *Crystals {
	return &Crystals{}
}

// Current returns the unspent permanent mana.
func (c *Crystals) Current() int {
	return c.current
}

// Max returns the number of permanent crystals.
func (c *Crystals) Max() int {
	return c.max
}

// Temporary returns unspent temporary mana.
func (c *Crystals) Temporary() int {
	return c.temporary
}

// Available returns everything that can be spent right now.
func (c *Crystals) Available() int {
	return c.current + c.temporary
}

// BeginTurn grows the pool by one crystal (capped), refills it and
// discards leftover temporary mana.
func (c *Crystals) BeginTurn() {
	if c.max < MaxCrystals {
		c.max++
	}
	c.current = c.max
	c.temporary = 0
}

// CanAfford reports whether cost can be paid from available mana.
func (c *Crystals) CanAfford(cost int) bool {
	return cost <= c.Available()
}

// Spend pays cost, drawing on temporary mana first. It returns false and
// leaves the pool untouched when the cost cannot be met.
func (c *Crystals) Spend(cost int) bool {
	if cost < 0 || !c.CanAfford(cost) {
		return false
	}
	fromTemp := min(cost, c.temporary)
	c.temporary -= fromTemp
	c.current -= cost - fromTemp
	return true
}

// AddTemporary grants mana usable this turn only. Total available mana
// never exceeds MaxCrystals.
func (c *Crystals) AddTemporary(amount int) int {
	if amount <= 0 {
		return 0
	}
	room := MaxCrystals - c.Available()
	if room <= 0 {
		return 0
	}
	granted := min(amount, room)
	c.temporary += granted
	return granted
}

// Set overwrites the pool. Intended for fixtures and restoring state.
func (c *Crystals) Set(current, max int) error {
	if max < 0 || max > MaxCrystals {
		return fmt.Errorf("max mana %d out of range [0,%d]", max, MaxCrystals)
	}
	if current < 0 || current > max {
		return fmt.Errorf("mana %d out of range [0,%d]", current, max)
	}
	c.current = current
	c.max = max
	c.temporary = 0
	return nil
}

func (c *Crystals) String() string {
	if c.temporary > 0 {
		return fmt.Sprintf("%d(+%d)/%d", c.current, c.temporary, c.max)
	}
	return fmt.Sprintf("%d/%d", c.current, c.max)
}
