package game

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/magefree/hearth-server-go/internal/game/targeting"
)

// Minion is a live board unit. It is owned by exactly one board at a time.
type Minion struct {
	ID                string
	Name              string
	Attack            int
	BaseAttack        int
	Health            int
	MaxHealth         int
	Keywords          Keywords
	Deathrattle       Effect
	AttacksThisTurn   int
	MaxAttacksPerTurn int
	CanAttack         bool

	ownerID string
}

// NewMinion creates a minion fresh from play. Only charge minions may attack
// on the turn they arrive.
func NewMinion(id, name string, attack, health int, keywords Keywords) *Minion {
	m := &Minion{
		ID:                id,
		Name:              name,
		Attack:            attack,
		BaseAttack:        attack,
		Health:            health,
		MaxHealth:         health,
		Keywords:          keywords,
		MaxAttacksPerTurn: 1,
		CanAttack:         keywords.Has(Charge),
	}
	if keywords.Has(Windfury) {
		m.MaxAttacksPerTurn = 2
	}
	return m
}

// NewToken creates a minion that was not played from a card, such as a
// deathrattle summon, with its own instance id.
func NewToken(name string, attack, health int, keywords Keywords) *Minion {
	return NewMinion(uuid.NewString(), name, attack, health, keywords)
}

// OwnerID returns the id of the player whose board holds the minion.
func (m *Minion) OwnerID() string {
	return m.ownerID
}

// Ref returns the target handle of the minion.
func (m *Minion) Ref() targeting.Ref {
	return targeting.MinionRef(m.ownerID, m.ID)
}

// DisplayName returns the card name.
func (m *Minion) DisplayName() string {
	return m.Name
}

// IsDead reports whether health has dropped to zero or below.
func (m *Minion) IsDead() bool {
	return m.Health <= 0
}

// IsDamaged reports whether the minion is below its max health.
func (m *Minion) IsDamaged() bool {
	return m.Health < m.MaxHealth
}

// Has reports whether the minion currently has keyword k.
func (m *Minion) Has(k Keyword) bool {
	return m.Keywords.Has(k)
}

// CanAttackNow reports whether the minion may declare an attack.
func (m *Minion) CanAttackNow() bool {
	return m.attackBlocker() == ""
}

// attackBlocker explains why the minion cannot attack, or returns "".
func (m *Minion) attackBlocker() string {
	switch {
	case m.Has(Frozen):
		return fmt.Sprintf("%s is frozen!", m.Name)
	case !m.CanAttack:
		return fmt.Sprintf("%s can't attack this turn!", m.Name)
	case m.AttacksThisTurn >= m.MaxAttacksPerTurn:
		return fmt.Sprintf("%s has already attacked!", m.Name)
	case m.Attack <= 0:
		return fmt.Sprintf("%s has no attack!", m.Name)
	}
	return ""
}

// TakeDamage applies amount and reports whether the minion is now dead. A
// divine shield absorbs the whole of one non-zero hit, lethal or not.
func (m *Minion) TakeDamage(amount int) bool {
	m.takeDamage(amount)
	return m.IsDead()
}

func (m *Minion) takeDamage(amount int) (absorbed bool) {
	if amount > 0 && m.Has(DivineShield) {
		m.Keywords = m.Keywords.Without(DivineShield)
		return true
	}
	m.Health -= amount
	return false
}

// Heal restores up to amount health and returns how much was restored.
func (m *Minion) Heal(amount int) int {
	if amount <= 0 || m.IsDead() {
		return 0
	}
	before := m.Health
	m.Health = min(m.Health+amount, m.MaxHealth)
	return m.Health - before
}

// Buff adds to attack and to both current and max health. Buffs are permanent.
func (m *Minion) Buff(attack, health int) {
	m.Attack += attack
	m.Health += health
	m.MaxHealth += health
}

// RefreshAttack readies the minion at the start of its owner's turn.
func (m *Minion) RefreshAttack() {
	m.CanAttack = true
	m.AttacksThisTurn = 0
	m.Keywords = m.Keywords.Without(Frozen)
}

// Silence strips every keyword and the deathrattle. A silenced minion never
// fires a deathrattle, even if it dies later in the same action.
func (m *Minion) Silence() {
	m.Keywords = NewKeywords(Silenced)
	m.Deathrattle = nil
	m.MaxAttacksPerTurn = 1
}

// AttackTarget resolves one attack against target. Both combatants keep their
// pre-death state until the game sweeps the boards afterwards.
func (m *Minion) AttackTarget(g *Game, owner *PlayerState, target Character) bool {
	if reason := m.attackBlocker(); reason != "" {
		g.Logf("%s", reason)
		return false
	}

	if m.Has(Stealth) {
		m.Keywords = m.Keywords.Without(Stealth)
		g.Logf("%s breaks stealth!", m.Name)
	}

	g.Logf("%s attacks %s for %d damage", m.Name, target.DisplayName(), m.Attack)
	g.publish(eventAttack(m, target))

	absorbed := g.damage(target, m.Attack)

	if m.Has(Lifesteal) {
		healed := owner.Heal(m.Attack)
		g.Logf("%s heals %s for %d", m.Name, owner.Name, healed)
	}

	defender, isMinion := target.(*Minion)
	if isMinion && m.Has(Poisonous) && m.Attack > 0 && !absorbed && !defender.IsDead() {
		defender.Health = 0
		g.Logf("%s's poison destroys %s!", m.Name, defender.Name)
	}

	if isMinion {
		g.damage(m, defender.Attack)
		// Reciprocal poison has no shield exception.
		if defender.Has(Poisonous) && !m.IsDead() {
			m.Health = 0
			g.Logf("%s's poison destroys %s!", defender.Name, m.Name)
		}
		if defender.Has(Lifesteal) {
			if defenderOwner := g.Player(defender.ownerID); defenderOwner != nil {
				healed := defenderOwner.Heal(defender.Attack)
				g.Logf("%s heals %s for %d", defender.Name, defenderOwner.Name, healed)
			}
		}
	}

	m.AttacksThisTurn++
	return true
}

func (m *Minion) String() string {
	if kw := m.Keywords.String(); kw != "" {
		return fmt.Sprintf("%s (%d/%d) [%s]", m.Name, m.Attack, m.Health, kw)
	}
	return fmt.Sprintf("%s (%d/%d)", m.Name, m.Attack, m.Health)
}
