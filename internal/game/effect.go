package game

import "github.com/magefree/hearth-server-go/internal/game/targeting"

// Effect is the capability behind battlecries, deathrattles, spells and hero
// powers. It mutates state through the game and logs its own outcome. target
// is nil for untargeted effects and for deathrattles; during a battlecry or
// deathrattle g.Source() returns the originating minion.
type Effect interface {
	Execute(owner *PlayerState, g *Game, target Character)
}

// Character is anything that can be targeted: a hero or a minion.
type Character interface {
	Ref() targeting.Ref
	DisplayName() string
	IsDead() bool
}

// EffectFunc adapts an ordinary function to the Effect interface.
type EffectFunc func(owner *PlayerState, g *Game, target Character)

// Execute calls f(owner, g, target).
func (f EffectFunc) Execute(owner *PlayerState, g *Game, target Character) {
	f(owner, g, target)
}
