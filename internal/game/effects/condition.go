package effects

import (
	"fmt"

	"github.com/magefree/hearth-server-go/internal/game"
)

// Condition restricts which minion an effect may resolve against. Zero
// bounds are unbounded; the zero Condition accepts any character.
type Condition struct {
	MinAttack int
	MaxAttack int
	Damaged   bool
	Undamaged bool
}

// IsZero reports whether the condition accepts everything.
func (c Condition) IsZero() bool {
	return c == Condition{}
}

// Check returns why target fails the condition, or "" when it passes.
func (c Condition) Check(target game.Character) string {
	if c.IsZero() {
		return ""
	}
	m, ok := target.(*game.Minion)
	if !ok {
		return "can only target minions!"
	}
	switch {
	case c.Damaged && !m.IsDamaged():
		return "can only target damaged minions!"
	case c.Undamaged && m.IsDamaged():
		return "can only target undamaged minions!"
	case c.MinAttack > 0 && m.Attack < c.MinAttack:
		return fmt.Sprintf("can only target minions with %d or more attack!", c.MinAttack)
	case c.MaxAttack > 0 && m.Attack > c.MaxAttack:
		return fmt.Sprintf("can only target minions with %d or less attack!", c.MaxAttack)
	}
	return ""
}
