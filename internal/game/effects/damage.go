package effects

import (
	"github.com/magefree/hearth-server-go/internal/game"
)

// DamageEffect deals damage to the chosen target, optionally freezing it. When
// Only is set the target must satisfy it or the effect fizzles.
type DamageEffect struct {
	Source string
	Amount int
	Freeze bool
	Only   Condition
}

func (e *DamageEffect) Execute(_ *game.PlayerState, g *game.Game, target game.Character) {
	if target == nil {
		return
	}
	if reason := e.Only.Check(target); reason != "" {
		g.Logf("%s %s", e.Source, reason)
		return
	}
	g.DealDamage(target, e.Amount)
	if e.Freeze && g.Freeze(target) {
		g.Logf("%s deals %d damage and freezes %s!", e.Source, e.Amount, target.DisplayName())
		return
	}
	if e.Only.IsZero() {
		g.Logf("%s deals %d damage!", e.Source, e.Amount)
		return
	}
	g.Logf("%s deals %d damage to %s!", e.Source, e.Amount, target.DisplayName())
}

// DamageEnemyHeroEffect deals damage to the opposing hero.
type DamageEnemyHeroEffect struct {
	Source string
	Amount int
}

func (e *DamageEnemyHeroEffect) Execute(owner *game.PlayerState, g *game.Game, _ game.Character) {
	g.DealDamage(g.Opponent(owner), e.Amount)
	g.Logf("%s deals %d damage to enemy hero!", e.Source, e.Amount)
}

// DamageOwnHeroEffect deals damage to the caster's own hero.
type DamageOwnHeroEffect struct {
	Source string
	Amount int
}

func (e *DamageOwnHeroEffect) Execute(owner *game.PlayerState, g *game.Game, _ game.Character) {
	g.DealDamage(owner, e.Amount)
	g.Logf("%s deals %d damage to %s!", e.Source, e.Amount, owner.Name)
}

// DamageEnemyMinionsEffect deals damage to every enemy minion.
type DamageEnemyMinionsEffect struct {
	Source string
	Amount int
}

func (e *DamageEnemyMinionsEffect) Execute(owner *game.PlayerState, g *game.Game, _ game.Character) {
	for _, m := range g.Opponent(owner).Board() {
		g.DealDamage(m, e.Amount)
	}
	g.Logf("%s deals %d damage to all enemy minions!", e.Source, e.Amount)
}

// DamageAllEnemiesEffect deals damage to the enemy hero and every enemy minion.
type DamageAllEnemiesEffect struct {
	Source string
	Amount int
}

func (e *DamageAllEnemiesEffect) Execute(owner *game.PlayerState, g *game.Game, _ game.Character) {
	enemy := g.Opponent(owner)
	g.DealDamage(enemy, e.Amount)
	for _, m := range enemy.Board() {
		g.DealDamage(m, e.Amount)
	}
	g.Logf("%s deals %d damage to all enemies!", e.Source, e.Amount)
}

// SplashDamageEffect deals Amount to the target and Splash to every other
// enemy character.
type SplashDamageEffect struct {
	Source string
	Amount int
	Splash int
}

func (e *SplashDamageEffect) Execute(owner *game.PlayerState, g *game.Game, target game.Character) {
	enemy := g.Opponent(owner)
	if target != nil {
		g.DealDamage(target, e.Amount)
	}
	for _, m := range enemy.Board() {
		if game.Character(m) != target {
			g.DealDamage(m, e.Splash)
		}
	}
	if game.Character(enemy) != target {
		g.DealDamage(enemy, e.Splash)
	}
	g.Logf("%s deals %d damage to target, %d to all other enemies!", e.Source, e.Amount, e.Splash)
}

// DestroyEffect destroys the target minion if it satisfies Only.
type DestroyEffect struct {
	Source string
	Only   Condition
}

func (e *DestroyEffect) Execute(_ *game.PlayerState, g *game.Game, target game.Character) {
	m, ok := target.(*game.Minion)
	if !ok {
		return
	}
	if reason := e.Only.Check(m); reason != "" {
		g.Logf("%s %s", e.Source, reason)
		return
	}
	g.Destroy(m)
	g.Logf("%s destroys %s!", e.Source, m.Name)
}
