package effects

import (
	"github.com/magefree/hearth-server-go/internal/game"
)

// HealEffect restores health to the chosen target.
type HealEffect struct {
	Source string
	Amount int
}

func (e *HealEffect) Execute(_ *game.PlayerState, g *game.Game, target game.Character) {
	if target == nil {
		return
	}
	healed := g.Heal(target, e.Amount)
	g.Logf("%s restores %d health!", e.Source, healed)
}

// HealFriendliesEffect restores health to the caster's hero and minions.
type HealFriendliesEffect struct {
	Source string
	Amount int
}

func (e *HealFriendliesEffect) Execute(owner *game.PlayerState, g *game.Game, _ game.Character) {
	g.Heal(owner, e.Amount)
	for _, m := range owner.Board() {
		g.Heal(m, e.Amount)
	}
	g.Logf("%s restores %d health to all friendlies!", e.Source, e.Amount)
}

// ArmorEffect gives the caster armor.
type ArmorEffect struct {
	Amount int
}

func (e *ArmorEffect) Execute(owner *game.PlayerState, _ *game.Game, _ game.Character) {
	owner.GainArmor(e.Amount)
}

// DrawEffect draws cards for the caster.
type DrawEffect struct {
	Count int
}

func (e *DrawEffect) Execute(owner *game.PlayerState, _ *game.Game, _ game.Character) {
	owner.DrawCards(e.Count)
}

// GainManaEffect grants temporary mana for the current turn.
type GainManaEffect struct {
	Amount int
}

func (e *GainManaEffect) Execute(owner *game.PlayerState, g *game.Game, _ game.Character) {
	granted := g.AddTemporaryMana(owner, e.Amount)
	g.Logf("%s gains %d mana crystal this turn!", owner.Name, granted)
}

// SetHeroHealthEffect sets a hero's health. The chosen hero is used when
// there is one; otherwise the enemy hero.
type SetHeroHealthEffect struct {
	Source string
	Amount int
}

func (e *SetHeroHealthEffect) Execute(owner *game.PlayerState, g *game.Game, target game.Character) {
	hero, ok := target.(*game.PlayerState)
	if !ok {
		hero = g.Opponent(owner)
	}
	hero.SetHealth(e.Amount)
	g.Logf("%s sets %s's health to %d!", e.Source, hero.Name, hero.Health())
}

// SequenceEffect runs effects in order against the same target.
type SequenceEffect struct {
	Effects []game.Effect
}

func (e *SequenceEffect) Execute(owner *game.PlayerState, g *game.Game, target game.Character) {
	for _, eff := range e.Effects {
		eff.Execute(owner, g, target)
	}
}
