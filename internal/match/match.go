// Package match seats players, runs their games one intent at a time and
// records the outcomes.
package match

import (
	"crypto/subtle"
	"sync"
	"time"

	"github.com/magefree/hearth-server-go/internal/catalogue"
	"github.com/magefree/hearth-server-go/internal/game"
	"github.com/magefree/hearth-server-go/internal/game/rules"
)

// Status is the lifecycle state of a match.
type Status int

const (
	StatusWaiting Status = iota
	StatusActive
	StatusFinished
)

func (s Status) String() string {
	switch s {
	case StatusWaiting:
		return "WAITING"
	case StatusActive:
		return "ACTIVE"
	case StatusFinished:
		return "FINISHED"
	default:
		return "UNKNOWN"
	}
}

// Seat is one player's place at the table. PlayerID is public; Token is the
// secret the seated client presents to act or read its hand.
type Seat struct {
	PlayerID string
	Token    string
	Name     string
	Deck     catalogue.DeckKind
	Hero     string
}

// Stats are per-match analytics gathered from the engine's event bus.
type Stats struct {
	Actions     int `json:"actions"`
	Rejected    int `json:"rejected"`
	Turns       int `json:"turns"`
	CardsPlayed int `json:"cardsPlayed"`
	SpellsCast  int `json:"spellsCast"`
	MinionsDied int `json:"minionsDied"`
	Damage      int `json:"damage"`
	Timeouts    int `json:"timeouts"`
}

// statEvents are the bus events a statsCollector counts.
var statEvents = []rules.EventType{
	rules.EventBeginTurn,
	rules.EventCardPlayed,
	rules.EventSpellCast,
	rules.EventMinionDied,
	rules.EventDamaged,
	rules.EventActionError,
	rules.EventConceded,
}

// statsCollector has its own lock because bus callbacks run while the match
// lock is held.
type statsCollector struct {
	mu       sync.Mutex
	stats    Stats
	conceded bool
}

func (c *statsCollector) observe(e rules.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch e.Type {
	case rules.EventBeginTurn:
		c.stats.Turns = e.Amount
	case rules.EventCardPlayed:
		c.stats.CardsPlayed++
	case rules.EventSpellCast:
		c.stats.SpellsCast++
	case rules.EventMinionDied:
		c.stats.MinionsDied++
	case rules.EventDamaged:
		c.stats.Damage += e.Amount
	case rules.EventActionError:
		c.stats.Rejected++
	case rules.EventConceded:
		c.conceded = true
	}
}

func (c *statsCollector) accepted() {
	c.mu.Lock()
	c.stats.Actions++
	c.mu.Unlock()
}

func (c *statsCollector) timedOut() {
	c.mu.Lock()
	c.stats.Timeouts++
	c.mu.Unlock()
}

func (c *statsCollector) snapshot() (Stats, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats, c.conceded
}

// Match is one table. All fields are guarded by mu.
type Match struct {
	ID string

	mu        sync.Mutex
	status    Status
	seats     []Seat
	game      *game.Game
	stats     *statsCollector
	statsSub  int
	timer     *time.Timer
	createdAt time.Time
	startedAt time.Time
	endedAt   time.Time
}

func newMatch(id string) *Match {
	return &Match{
		ID:        id,
		status:    StatusWaiting,
		seats:     make([]Seat, 0, 2),
		stats:     &statsCollector{},
		createdAt: time.Now(),
	}
}

// Summary is a read-only view of a match for listings. It names players but
// never carries their credentials.
type Summary struct {
	ID        string     `json:"id"`
	Status    string     `json:"status"`
	Players   []string   `json:"players"`
	Turn      int        `json:"turn"`
	Active    string     `json:"activePlayer,omitempty"`
	Winner    string     `json:"winner,omitempty"`
	Stats     Stats      `json:"stats"`
	CreatedAt time.Time  `json:"createdAt"`
	StartedAt *time.Time `json:"startedAt,omitempty"`
	EndedAt   *time.Time `json:"endedAt,omitempty"`
}

// Summary describes the match.
func (m *Match) Summary() Summary {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.summaryLocked()
}

func (m *Match) summaryLocked() Summary {
	stats, _ := m.stats.snapshot()
	s := Summary{
		ID:        m.ID,
		Status:    m.status.String(),
		Players:   make([]string, 0, len(m.seats)),
		Stats:     stats,
		CreatedAt: m.createdAt,
	}
	for _, seat := range m.seats {
		s.Players = append(s.Players, seat.Name)
	}
	if m.game != nil {
		s.Turn = m.game.TurnCount()
		if !m.game.IsOver() {
			s.Active = m.game.ActivePlayer().Name
		}
		if w := m.game.Winner(); w != nil {
			s.Winner = w.Name
		}
	}
	if !m.startedAt.IsZero() {
		t := m.startedAt
		s.StartedAt = &t
	}
	if !m.endedAt.IsZero() {
		t := m.endedAt
		s.EndedAt = &t
	}
	return s
}

func (m *Match) seated(playerID string) bool {
	for _, s := range m.seats {
		if s.PlayerID == playerID {
			return true
		}
	}
	return false
}

// playerFor returns the player holding token, or "" when no seat matches.
func (m *Match) playerFor(token string) string {
	if token == "" {
		return ""
	}
	for _, s := range m.seats {
		if subtle.ConstantTimeCompare([]byte(s.Token), []byte(token)) == 1 {
			return s.PlayerID
		}
	}
	return ""
}

func (m *Match) stopClock() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}
