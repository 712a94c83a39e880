package game

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/magefree/hearth-server-go/internal/game/targeting"
)

// Rarity of a card.
type Rarity string

const (
	RarityCommon    Rarity = "Common"
	RarityRare      Rarity = "Rare"
	RarityEpic      Rarity = "Epic"
	RarityLegendary Rarity = "Legendary"
)

// CardKind identifies which variant payload a definition carries.
type CardKind string

const (
	KindMinion CardKind = "minion"
	KindSpell  CardKind = "spell"
	KindWeapon CardKind = "weapon"
)

// CardDefinition is the immutable template of a playable card. Exactly one of
// Minion, Spell or Weapon is set. Definitions are shared between instances and
// must never be mutated once loaded.
type CardDefinition struct {
	Name        string
	ManaCost    int
	Rarity      Rarity
	Description string

	Minion *MinionStats
	Spell  *SpellStats
	Weapon *WeaponStats
}

// MinionStats is the minion variant payload.
type MinionStats struct {
	Attack          int
	Health          int
	Keywords        Keywords
	Battlecry       Effect
	BattlecryTarget targeting.Class
	Deathrattle     Effect
}

// SpellStats is the spell variant payload.
type SpellStats struct {
	Effect         Effect
	RequiresTarget bool
	TargetClass    targeting.Class
}

// WeaponStats is the weapon variant payload.
type WeaponStats struct {
	Attack          int
	Durability      int
	Battlecry       Effect
	BattlecryTarget targeting.Class
	Deathrattle     Effect
}

// Kind returns the variant of the definition.
func (d *CardDefinition) Kind() CardKind {
	switch {
	case d.Minion != nil:
		return KindMinion
	case d.Spell != nil:
		return KindSpell
	case d.Weapon != nil:
		return KindWeapon
	}
	return ""
}

// Validate checks the definition is well formed.
func (d *CardDefinition) Validate() error {
	if d == nil {
		return errors.New("card definition is nil")
	}
	if d.Name == "" {
		return errors.New("card name is required")
	}
	if d.ManaCost < 0 {
		return fmt.Errorf("card %q: negative mana cost", d.Name)
	}
	payloads := 0
	if d.Minion != nil {
		payloads++
		if d.Minion.Attack < 0 || d.Minion.Health <= 0 {
			return fmt.Errorf("card %q: minion needs attack >= 0 and health > 0", d.Name)
		}
	}
	if d.Spell != nil {
		payloads++
		if d.Spell.Effect == nil {
			return fmt.Errorf("card %q: spell has no effect", d.Name)
		}
		if d.Spell.RequiresTarget && d.Spell.TargetClass == targeting.ClassNone {
			return fmt.Errorf("card %q: targeted spell needs a target class", d.Name)
		}
	}
	if d.Weapon != nil {
		payloads++
		if d.Weapon.Attack < 0 || d.Weapon.Durability <= 0 {
			return fmt.Errorf("card %q: weapon needs attack >= 0 and durability > 0", d.Name)
		}
	}
	if payloads != 1 {
		return fmt.Errorf("card %q: expected exactly one variant payload, got %d", d.Name, payloads)
	}
	return nil
}

// TargetClass returns the class of target the card can be aimed at, if any.
func (d *CardDefinition) TargetClass() targeting.Class {
	switch d.Kind() {
	case KindMinion:
		return d.Minion.BattlecryTarget
	case KindSpell:
		return d.Spell.TargetClass
	case KindWeapon:
		return d.Weapon.BattlecryTarget
	}
	return targeting.ClassNone
}

// RequiresTarget reports whether the card cannot be played without a target.
func (d *CardDefinition) RequiresTarget() bool {
	return d.Spell != nil && d.Spell.RequiresTarget
}

// CardInstance is one physical copy of a card in a deck or hand.
type CardInstance struct {
	ID  string
	Def *CardDefinition
}

// NewCardInstance creates a copy of def with a fresh instance id.
func NewCardInstance(def *CardDefinition) *CardInstance {
	return &CardInstance{ID: uuid.NewString(), Def: def}
}

// NewCardInstances creates one instance per definition, preserving order.
func NewCardInstances(defs []*CardDefinition) []*CardInstance {
	out := make([]*CardInstance, 0, len(defs))
	for _, def := range defs {
		out = append(out, NewCardInstance(def))
	}
	return out
}

// Summon creates the live board entity for a minion card. The minion keeps the
// instance id of the card it came from.
func (c *CardInstance) Summon() *Minion {
	stats := c.Def.Minion
	m := NewMinion(c.ID, c.Def.Name, stats.Attack, stats.Health, stats.Keywords)
	m.Deathrattle = stats.Deathrattle
	return m
}

// Forge creates the live weapon for a weapon card.
func (c *CardInstance) Forge() *Weapon {
	stats := c.Def.Weapon
	return &Weapon{
		ID:          c.ID,
		Name:        c.Def.Name,
		Attack:      stats.Attack,
		Durability:  stats.Durability,
		Deathrattle: stats.Deathrattle,
	}
}
