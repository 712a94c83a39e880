package rules

import (
	"fmt"
	"strings"
)

// Phase represents the lifecycle state of a match.
type Phase int

const (
	PhaseSetup Phase = iota
	PhaseTurn
	PhaseGameOver
)

var phaseNames = map[Phase]string{
	PhaseSetup:    "SETUP",
	PhaseTurn:     "TURN",
	PhaseGameOver: "GAME_OVER",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("PHASE_%d", int(p))
}

// TurnManager tracks the active player and turn progression:
// Setup -> Turn(A) -> Turn(B) -> ... -> GameOver.
type TurnManager struct {
	phase       Phase
	turnNumber  int
	players     [2]string
	activeIndex int
}

// NewTurnManager creates a turn manager in setup with first to act first.
func NewTurnManager(first, second string) *TurnManager {
	return &TurnManager{
		phase:   PhaseSetup,
		players: [2]string{strings.TrimSpace(first), strings.TrimSpace(second)},
	}
}

// CurrentPhase returns the phase currently in progress.
func (tm *TurnManager) CurrentPhase() Phase {
	return tm.phase
}

// TurnNumber returns the current turn number (1-based, 0 during setup).
func (tm *TurnManager) TurnNumber() int {
	return tm.turnNumber
}

// ActivePlayer returns the player who currently has the turn.
func (tm *TurnManager) ActivePlayer() string {
	return tm.players[tm.activeIndex]
}

// Other returns the opponent of player, or "" for strangers.
func (tm *TurnManager) Other(player string) string {
	switch player {
	case tm.players[0]:
		return tm.players[1]
	case tm.players[1]:
		return tm.players[0]
	}
	return ""
}

// Begin leaves setup and starts turn 1.
func (tm *TurnManager) Begin() error {
	if tm.phase != PhaseSetup {
		return fmt.Errorf("cannot begin from phase %s", tm.phase)
	}
	tm.phase = PhaseTurn
	tm.turnNumber = 1
	tm.activeIndex = 0
	return nil
}

// Advance passes the turn to the other player and returns the new active player.
func (tm *TurnManager) Advance() (string, error) {
	if tm.phase != PhaseTurn {
		return "", fmt.Errorf("cannot advance from phase %s", tm.phase)
	}
	tm.activeIndex = 1 - tm.activeIndex
	tm.turnNumber++
	return tm.ActivePlayer(), nil
}

// Finish moves the match to game over. Finishing twice is a no-op.
func (tm *TurnManager) Finish() {
	tm.phase = PhaseGameOver
}

// IsOver reports whether the match has ended.
func (tm *TurnManager) IsOver() bool {
	return tm.phase == PhaseGameOver
}
