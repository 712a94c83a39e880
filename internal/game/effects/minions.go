package effects

import (
	"github.com/magefree/hearth-server-go/internal/game"
)

// BuffEffect permanently raises the target minion's attack and health.
type BuffEffect struct {
	Attack int
	Health int
}

func (e *BuffEffect) Execute(_ *game.PlayerState, g *game.Game, target game.Character) {
	m, ok := target.(*game.Minion)
	if !ok {
		return
	}
	m.Buff(e.Attack, e.Health)
	g.Logf("%s gains +%d/+%d", m.Name, e.Attack, e.Health)
}

// BuffAdjacentEffect buffs the minions either side of the source minion and
// may give them taunt.
type BuffAdjacentEffect struct {
	Source string
	Attack int
	Health int
	Taunt  bool
}

func (e *BuffAdjacentEffect) Execute(owner *game.PlayerState, g *game.Game, _ game.Character) {
	board := owner.Board()
	idx := len(board) - 1
	if src := g.Source(); src != nil {
		if i := owner.MinionIndex(src); i >= 0 {
			idx = i
		}
	}
	for _, i := range []int{idx - 1, idx + 1} {
		if i < 0 || i >= len(board) {
			continue
		}
		m := board[i]
		m.Buff(e.Attack, e.Health)
		if e.Taunt {
			m.Keywords = m.Keywords.With(game.Taunt)
		}
		g.Logf("%s gains +%d/+%d", m.Name, e.Attack, e.Health)
	}
	g.Logf("%s buffs adjacent minions!", e.Source)
}

// SilenceEffect silences the target minion.
type SilenceEffect struct{}

func (e *SilenceEffect) Execute(_ *game.PlayerState, g *game.Game, target game.Character) {
	if m, ok := target.(*game.Minion); ok {
		g.Silence(m)
	}
}

// TransformEffect replaces the target minion with a fresh token.
type TransformEffect struct {
	Name   string
	Attack int
	Health int
}

func (e *TransformEffect) Execute(_ *game.PlayerState, g *game.Game, target game.Character) {
	m, ok := target.(*game.Minion)
	if !ok {
		return
	}
	if g.Transform(m, game.NewToken(e.Name, e.Attack, e.Health, 0)) {
		g.Logf("%s is transformed into a %s!", m.Name, e.Name)
	}
}

// StealEffect takes control of the target enemy minion.
type StealEffect struct {
	Source string
}

func (e *StealEffect) Execute(owner *game.PlayerState, g *game.Game, target game.Character) {
	m, ok := target.(*game.Minion)
	if !ok || m.OwnerID() == owner.ID {
		return
	}
	if g.TakeControl(m, owner) {
		g.Logf("%s steals %s!", e.Source, m.Name)
	}
}

// StealRandomEffect takes control of a random enemy minion.
type StealRandomEffect struct {
	Source string
}

func (e *StealRandomEffect) Execute(owner *game.PlayerState, g *game.Game, _ game.Character) {
	candidates := g.Opponent(owner).Board()
	if len(candidates) == 0 {
		return
	}
	m := candidates[g.Rand().Intn(len(candidates))]
	if g.TakeControl(m, owner) {
		g.Logf("%s steals %s!", e.Source, m.Name)
	}
}

// SummonEffect puts a token minion on the caster's board.
type SummonEffect struct {
	Source   string
	Name     string
	Attack   int
	Health   int
	Keywords game.Keywords
}

func (e *SummonEffect) Execute(owner *game.PlayerState, g *game.Game, _ game.Character) {
	if g.Summon(owner, game.NewToken(e.Name, e.Attack, e.Health, e.Keywords)) {
		g.Logf("%s summons a %d/%d %s!", e.Source, e.Attack, e.Health, e.Name)
	}
}
