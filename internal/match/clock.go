package match

import (
	"context"
	"time"

	"github.com/magefree/hearth-server-go/internal/repository"
	"go.uber.org/zap"
)

// resultTimeout bounds recording a result when no request context exists.
const resultTimeout = 5 * time.Second

// armClock restarts the turn clock for the current turn. Caller holds m.mu.
func (mgr *Manager) armClock(m *Match) {
	m.stopClock()
	if mgr.opts.TurnTimeout <= 0 || m.game == nil || m.game.IsOver() {
		return
	}
	turn := m.game.TurnCount()
	m.timer = time.AfterFunc(mgr.opts.TurnTimeout, func() { mgr.expire(m, turn) })
}

// expire ends turn for the active player if it is still running.
func (mgr *Manager) expire(m *Match, turn int) {
	m.mu.Lock()
	if m.status != StatusActive || m.game.TurnCount() != turn {
		m.mu.Unlock()
		return
	}
	active := m.game.ActivePlayer()
	m.game.Logf("%s ran out of time!", active.Name)
	m.stats.timedOut()
	m.game.EndTurn()
	mgr.logger.Info("turn timed out",
		zap.String("match_id", m.ID),
		zap.String("player_id", active.ID),
		zap.Int("turn", turn),
	)

	msgs := mgr.statesLocked(m)
	var result *repository.Result
	if m.game.IsOver() {
		result = mgr.finishLocked(m)
		msgs = append(msgs, mgr.gameOverLocked(m)...)
	} else {
		mgr.armClock(m)
	}
	m.mu.Unlock()

	mgr.deliver(msgs)
	if result != nil {
		ctx, cancel := context.WithTimeout(context.Background(), resultTimeout)
		defer cancel()
		mgr.record(ctx, *result)
	}
}
