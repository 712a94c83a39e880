package targeting

import (
	"fmt"
)

// BoardAccessor provides access to game state needed for target resolution.
type BoardAccessor interface {
	// OpponentOf returns the id of the other player
	OpponentOf(playerID string) string
	// MinionsForTarget returns the board of playerID, front to back
	MinionsForTarget(playerID string) []MinionInfo
}

// MinionInfo provides information about a minion for target resolution.
type MinionInfo struct {
	ID        string
	Name      string
	Stealthed bool
	Taunt     bool
}

// Resolver enumerates legal targets from one player's point of view.
type Resolver struct {
	board BoardAccessor
}

// NewResolver creates a new target resolver.
func NewResolver(board BoardAccessor) *Resolver {
	return &Resolver{board: board}
}

// ValidTargets returns every entity of class that playerID may select, in a
// stable order: enemy hero, friendly hero, enemy minions, friendly minions.
// Stealthed enemy minions are never returned.
func (r *Resolver) ValidTargets(playerID string, class Class) []Ref {
	if r == nil || r.board == nil || class == ClassNone {
		return nil
	}
	enemyID := r.board.OpponentOf(playerID)
	targets := make([]Ref, 0, 16)

	if class.includesHeroes() {
		targets = append(targets, HeroRef(enemyID), HeroRef(playerID))
	}
	if class.includesEnemyMinions() {
		for _, m := range r.board.MinionsForTarget(enemyID) {
			if m.Stealthed {
				continue
			}
			targets = append(targets, MinionRef(enemyID, m.ID))
		}
	}
	if class.includesFriendlyMinions() {
		for _, m := range r.board.MinionsForTarget(playerID) {
			targets = append(targets, MinionRef(playerID, m.ID))
		}
	}
	return targets
}

// Validate checks a single target against class, describing why it is illegal.
func (r *Resolver) Validate(playerID string, class Class, ref Ref) error {
	if r == nil || r.board == nil {
		return fmt.Errorf("target resolver not initialized")
	}
	if ref.IsZero() {
		return fmt.Errorf("no target supplied")
	}
	if class == ClassNone {
		return fmt.Errorf("target %s supplied for an untargeted effect", ref)
	}
	for _, candidate := range r.ValidTargets(playerID, class) {
		if candidate == ref {
			return nil
		}
	}
	return fmt.Errorf("target %s is not a legal %s target", ref, class)
}

// Taunts returns the un-stealthed taunt minions on the board of playerID. An
// attack on that player must pick one of them while any remain.
func (r *Resolver) Taunts(playerID string) []Ref {
	if r == nil || r.board == nil {
		return nil
	}
	var out []Ref
	for _, m := range r.board.MinionsForTarget(playerID) {
		if m.Taunt && !m.Stealthed {
			out = append(out, MinionRef(playerID, m.ID))
		}
	}
	return out
}
