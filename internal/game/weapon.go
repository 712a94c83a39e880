package game

import "fmt"

// Weapon is a hero's equipped weapon.
type Weapon struct {
	ID          string
	Name        string
	Attack      int
	Durability  int
	Deathrattle Effect
}

// Use spends one durability and reports whether the weapon broke.
func (w *Weapon) Use() bool {
	w.Durability--
	return w.Durability <= 0
}

func (w *Weapon) String() string {
	return fmt.Sprintf("%s (%d/%d)", w.Name, w.Attack, w.Durability)
}
