package game

import (
	"github.com/magefree/hearth-server-go/internal/game/rules"
)

// Primitive mutations used by combat and by card effects. None of them sweep
// the board; the operation that triggered them does.

// DealDamage damages a hero or minion and reports whether a divine shield
// absorbed the hit.
func (g *Game) DealDamage(target Character, amount int) bool {
	return g.damage(target, amount)
}

func (g *Game) damage(target Character, amount int) (absorbed bool) {
	ref := target.Ref()
	switch t := target.(type) {
	case *Minion:
		absorbed = t.takeDamage(amount)
		if absorbed {
			g.Logf("%s's Divine Shield absorbs the damage!", t.Name)
			g.publish(rules.NewEvent(rules.EventShieldPopped, t.ID, "", ref.PlayerID))
			return true
		}
		if amount > 0 {
			g.publish(rules.NewEventWithAmount(rules.EventDamaged, t.ID, "", ref.PlayerID, amount))
		}
	case *PlayerState:
		if dealt := t.TakeDamage(amount); dealt > 0 {
			g.publish(rules.NewEventWithAmount(rules.EventDamaged, t.ID, "", t.ID, dealt))
		}
	}
	return false
}

// Heal restores health to a hero or minion and returns the amount restored.
func (g *Game) Heal(target Character, amount int) int {
	healed := 0
	switch t := target.(type) {
	case *Minion:
		healed = t.Heal(amount)
	case *PlayerState:
		healed = t.Heal(amount)
	}
	if healed > 0 {
		ref := target.Ref()
		g.publish(rules.NewEventWithAmount(rules.EventHealed, ref.ID, "", ref.PlayerID, healed))
	}
	return healed
}

// Summon puts m at the end of owner's board. It fails when the board is full.
func (g *Game) Summon(owner *PlayerState, m *Minion) bool {
	if !owner.place(m) {
		g.Logf("%s's board is full!", owner.Name)
		return false
	}
	src := ""
	if s := g.Source(); s != nil {
		src = s.ID
	}
	g.publish(rules.NewEvent(rules.EventMinionSummoned, m.ID, src, owner.ID))
	return true
}

// Destroy marks m for removal by the next sweep.
func (g *Game) Destroy(m *Minion) {
	m.Health = 0
}

// Silence strips a minion's abilities.
func (g *Game) Silence(m *Minion) {
	m.Silence()
	g.Logf("%s is silenced!", m.Name)
}

// Freeze stops a minion from attacking until its owner's next turn ends its
// freeze. Heroes are not frozen.
func (g *Game) Freeze(target Character) bool {
	m, ok := target.(*Minion)
	if !ok {
		return false
	}
	m.Keywords = m.Keywords.With(Frozen)
	return true
}

// Equip gives owner a weapon, destroying the one already equipped.
func (g *Game) Equip(owner *PlayerState, w *Weapon) {
	if owner.weapon != nil {
		g.destroyWeapon(owner)
	}
	owner.weapon = w
	evt := rules.NewEvent(rules.EventWeaponEquipped, w.ID, w.ID, owner.ID)
	evt.Data = w.Name
	g.publish(evt)
}

// DestroyWeapon removes owner's weapon, if any, and reports whether one was removed.
func (g *Game) DestroyWeapon(owner *PlayerState) bool {
	if owner.weapon == nil {
		return false
	}
	g.Logf("%s is destroyed!", owner.weapon.Name)
	g.destroyWeapon(owner)
	return true
}

func (g *Game) destroyWeapon(owner *PlayerState) {
	w := owner.weapon
	owner.weapon = nil
	evt := rules.NewEvent(rules.EventWeaponDestroyed, w.ID, w.ID, owner.ID)
	evt.Data = w.Name
	g.publish(evt)
	if w.Deathrattle != nil {
		w.Deathrattle.Execute(owner, g, nil)
	}
}

// TakeControl moves m to newOwner's board. The minion cannot attack until its
// new owner's next turn.
func (g *Game) TakeControl(m *Minion, newOwner *PlayerState) bool {
	from := g.Player(m.ownerID)
	if from == nil || from == newOwner {
		return false
	}
	if newOwner.BoardFull() {
		g.Logf("%s's board is full!", newOwner.Name)
		return false
	}
	from.remove(m)
	newOwner.place(m)
	m.CanAttack = false
	g.publish(rules.NewEvent(rules.EventGainedControl, m.ID, from.ID, newOwner.ID))
	return true
}

// Transform replaces m in place with into.
func (g *Game) Transform(m *Minion, into *Minion) bool {
	owner := g.Player(m.ownerID)
	if owner == nil || !owner.replace(m, into) {
		return false
	}
	g.publish(rules.NewEvent(rules.EventMinionSummoned, into.ID, m.ID, owner.ID))
	return true
}

// AddTemporaryMana grants owner mana for this turn only and returns the amount granted.
func (g *Game) AddTemporaryMana(owner *PlayerState, amount int) int {
	return owner.crystals.AddTemporary(amount)
}

type temporaryMana struct {
	amount int
}

func (e temporaryMana) Execute(owner *PlayerState, g *Game, _ Character) {
	granted := g.AddTemporaryMana(owner, e.amount)
	g.Logf("%s gains %d mana crystal this turn!", owner.Name, granted)
}

// TheCoin returns the zero-cost spell given to the player going second.
func TheCoin() *CardDefinition {
	return &CardDefinition{
		Name:        "The Coin",
		ManaCost:    0,
		Rarity:      RarityCommon,
		Description: "Gain 1 mana crystal this turn",
		Spell:       &SpellStats{Effect: temporaryMana{amount: 1}},
	}
}
