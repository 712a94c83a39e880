package match

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/magefree/hearth-server-go/internal/catalogue"
	"github.com/magefree/hearth-server-go/internal/game"
	"github.com/magefree/hearth-server-go/internal/game/rules"
	"github.com/magefree/hearth-server-go/internal/protocol"
	"github.com/magefree/hearth-server-go/internal/repository"
	"go.uber.org/zap"
)

var (
	// ErrMatchNotFound is returned for an unknown match id.
	ErrMatchNotFound = errors.New("match not found")
	// ErrSeatTaken is returned when joining a match that already has two players.
	ErrSeatTaken = errors.New("match already has two players")
	// ErrNotSeated is returned when a player acts in a match they are not part of.
	ErrNotSeated = errors.New("player is not seated in this match")
	// ErrNotYourTurn is returned for intents from the waiting player.
	ErrNotYourTurn = errors.New("not your turn")
	// ErrMatchNotStarted is returned for intents before both seats are filled.
	ErrMatchNotStarted = errors.New("match has not started")
	// ErrMatchOver is returned for intents after the game ended.
	ErrMatchOver = errors.New("match is over")
	// ErrRejected wraps the engine's reason for refusing an intent.
	ErrRejected = errors.New("action rejected")
	// ErrTooManyMatches is returned when the server is at capacity.
	ErrTooManyMatches = errors.New("too many matches")
	// ErrUnsupportedCommand is returned for commands that are not game intents.
	ErrUnsupportedCommand = errors.New("unsupported command")
)

// Notifier delivers server messages to a seated player.
type Notifier interface {
	Notify(playerID string, msgType protocol.MessageType, payload any)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(playerID string, msgType protocol.MessageType, payload any)

// Notify calls f.
func (f NotifierFunc) Notify(playerID string, msgType protocol.MessageType, payload any) {
	f(playerID, msgType, payload)
}

// Options tune the manager.
type Options struct {
	TurnTimeout time.Duration
	LogCapacity int
	LogLines    int
	MaxMatches  int
	// Seed makes deck shuffles reproducible; 0 seeds from the clock.
	Seed        int64
	DefaultDeck catalogue.DeckKind
	DefaultHero string
}

// Ticket identifies a seated player. Token is returned only to that player
// and authenticates every later Submit and Snapshot.
type Ticket struct {
	MatchID  string `json:"matchId"`
	PlayerID string `json:"playerId"`
	Token    string `json:"token"`
	Waiting  bool   `json:"waiting"`
}

type outbound struct {
	playerID string
	msgType  protocol.MessageType
	payload  any
}

// Manager owns every match on the server.
type Manager struct {
	cards  *catalogue.Catalogue
	store  repository.ResultStore
	opts   Options
	logger *zap.Logger

	mu       sync.RWMutex
	matches  map[string]*Match
	players  map[string]string
	lobby    string
	notifier Notifier
	created  int64
}

// NewManager creates a match manager. store may be nil to discard results.
func NewManager(cards *catalogue.Catalogue, store repository.ResultStore, opts Options, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.LogLines <= 0 {
		opts.LogLines = protocol.DefaultLogLines
	}
	if opts.DefaultDeck == "" {
		opts.DefaultDeck = catalogue.DeckStarter
	}
	if opts.DefaultHero == "" {
		opts.DefaultHero = "mage"
	}
	return &Manager{
		cards:   cards,
		store:   store,
		opts:    opts,
		logger:  logger,
		matches: make(map[string]*Match),
		players: make(map[string]string),
	}
}

// SetNotifier installs the transport that receives pushed messages.
func (mgr *Manager) SetNotifier(n Notifier) {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	mgr.notifier = n
}

func (mgr *Manager) deliver(msgs []outbound) {
	mgr.mu.RLock()
	n := mgr.notifier
	mgr.mu.RUnlock()
	if n == nil {
		return
	}
	for _, msg := range msgs {
		n.Notify(msg.playerID, msg.msgType, msg.payload)
	}
}

// Join seats a player. With an empty MatchID the player joins the lobby match
// or opens a new one; the game starts as soon as a second player sits down.
func (mgr *Manager) Join(ctx context.Context, req protocol.Join) (Ticket, error) {
	if err := req.Validate(); err != nil {
		return Ticket{}, fmt.Errorf("%w: %v", protocol.ErrInvalidPayload, err)
	}
	deckName := req.Deck
	if deckName == "" {
		deckName = string(mgr.opts.DefaultDeck)
	}
	deck, err := catalogue.ParseDeckKind(deckName)
	if err != nil {
		return Ticket{}, err
	}
	hero := req.Hero
	if hero == "" {
		hero = mgr.opts.DefaultHero
	}
	if _, err := mgr.cards.HeroPower(hero); err != nil {
		return Ticket{}, err
	}
	seat := Seat{PlayerID: uuid.NewString(), Token: uuid.NewString(), Name: req.Name, Deck: deck, Hero: hero}

	mgr.mu.Lock()
	m, err := mgr.tableFor(req.MatchID)
	if err != nil {
		mgr.mu.Unlock()
		return Ticket{}, err
	}
	m.mu.Lock()
	if m.status != StatusWaiting || len(m.seats) >= 2 {
		m.mu.Unlock()
		mgr.mu.Unlock()
		return Ticket{}, fmt.Errorf("%w: %s", ErrSeatTaken, m.ID)
	}
	m.seats = append(m.seats, seat)
	mgr.players[seat.PlayerID] = m.ID
	var msgs []outbound
	if len(m.seats) == 2 {
		if mgr.lobby == m.ID {
			mgr.lobby = ""
		}
		if msgs, err = mgr.start(m); err != nil {
			m.seats = m.seats[:1]
			m.game = nil
			delete(mgr.players, seat.PlayerID)
			mgr.lobby = m.ID
		}
	}
	ticket := Ticket{MatchID: m.ID, PlayerID: seat.PlayerID, Token: seat.Token, Waiting: m.status == StatusWaiting}
	m.mu.Unlock()
	mgr.mu.Unlock()

	if err != nil {
		return Ticket{}, err
	}
	mgr.logger.Info("player seated",
		zap.String("match_id", ticket.MatchID),
		zap.String("player_id", ticket.PlayerID),
		zap.String("name", seat.Name),
		zap.String("deck", string(seat.Deck)),
		zap.String("hero", seat.Hero),
	)
	mgr.deliver(msgs)
	return ticket, nil
}

// tableFor finds or opens the match a join request lands in. Caller holds mgr.mu.
func (mgr *Manager) tableFor(matchID string) (*Match, error) {
	if matchID != "" {
		m, ok := mgr.matches[matchID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
		}
		return m, nil
	}
	if m, ok := mgr.matches[mgr.lobby]; ok {
		return m, nil
	}
	if mgr.opts.MaxMatches > 0 && mgr.activeCountLocked() >= mgr.opts.MaxMatches {
		return nil, ErrTooManyMatches
	}
	m := newMatch(uuid.NewString())
	mgr.matches[m.ID] = m
	mgr.lobby = m.ID
	mgr.logger.Debug("match opened", zap.String("match_id", m.ID))
	return m, nil
}

func (mgr *Manager) activeCountLocked() int {
	n := 0
	for _, m := range mgr.matches {
		m.mu.Lock()
		if m.status != StatusFinished {
			n++
		}
		m.mu.Unlock()
	}
	return n
}

func (mgr *Manager) rngFor() *rand.Rand {
	mgr.created++
	if mgr.opts.Seed != 0 {
		return rand.New(rand.NewSource(mgr.opts.Seed + mgr.created))
	}
	return rand.New(rand.NewSource(time.Now().UnixNano() + mgr.created))
}

// start deals both decks and begins the game. Caller holds mgr.mu and m.mu.
func (mgr *Manager) start(m *Match) ([]outbound, error) {
	rng := mgr.rngFor()
	players := make([]*game.PlayerState, 0, 2)
	for _, seat := range m.seats {
		defs, err := mgr.cards.Deck(seat.Deck, rng)
		if err != nil {
			return nil, fmt.Errorf("build deck for %s: %w", seat.Name, err)
		}
		power, err := mgr.cards.HeroPower(seat.Hero)
		if err != nil {
			return nil, err
		}
		players = append(players, game.NewPlayer(seat.PlayerID, seat.Name, catalogue.Instances(defs), power))
	}

	bus := rules.NewEventBus()
	m.statsSub = bus.Subscribe(m.stats.observe, statEvents...)
	opts := []game.Option{
		game.WithID(m.ID),
		game.WithLogger(mgr.logger.With(zap.String("match_id", m.ID))),
		game.WithRand(rng),
		game.WithEventBus(bus),
	}
	if mgr.opts.LogCapacity > 0 {
		opts = append(opts, game.WithLogCapacity(mgr.opts.LogCapacity))
	}
	if coin := mgr.cards.Coin(); coin != nil {
		opts = append(opts, game.WithCoin(coin))
	}
	m.game = game.New(players[0], players[1], opts...)
	if !m.game.Start() {
		return nil, fmt.Errorf("start match %s: %v", m.ID, m.game.RecentLog(1))
	}
	m.status = StatusActive
	m.startedAt = time.Now()
	mgr.armClock(m)

	mgr.logger.Info("match started",
		zap.String("match_id", m.ID),
		zap.String("first", m.seats[0].Name),
		zap.String("second", m.seats[1].Name),
	)
	return mgr.statesLocked(m), nil
}

// Submit applies a validated intent from the player holding token.
func (mgr *Manager) Submit(ctx context.Context, matchID, token string, cmd protocol.Command) error {
	if err := cmd.Validate(); err != nil {
		return fmt.Errorf("%w: %v", protocol.ErrInvalidPayload, err)
	}
	m, err := mgr.Get(matchID)
	if err != nil {
		return err
	}

	m.mu.Lock()
	msgs, result, err := mgr.apply(m, m.playerFor(token), cmd)
	m.mu.Unlock()

	mgr.settle(ctx, msgs, result)
	return err
}

// settle pushes messages and records a result after the match lock is released.
func (mgr *Manager) settle(ctx context.Context, msgs []outbound, result *repository.Result) {
	mgr.deliver(msgs)
	if result != nil {
		mgr.record(ctx, *result)
	}
}

// apply runs cmd against the game. Caller holds m.mu.
func (mgr *Manager) apply(m *Match, playerID string, cmd protocol.Command) ([]outbound, *repository.Result, error) {
	switch m.status {
	case StatusWaiting:
		return nil, nil, ErrMatchNotStarted
	case StatusFinished:
		return nil, nil, ErrMatchOver
	}
	if !m.seated(playerID) {
		return nil, nil, ErrNotSeated
	}
	g := m.game
	if _, concede := cmd.(*protocol.Concede); !concede && g.ActivePlayer().ID != playerID {
		return nil, nil, ErrNotYourTurn
	}

	turn := g.TurnCount()
	var ok bool
	switch c := cmd.(type) {
	case *protocol.PlayCard:
		ok = g.PlayCard(c.CardIndex, c.Target.Ref())
	case *protocol.Attack:
		ok = g.AttackWithMinion(c.AttackerIndex, c.Target.Ref())
	case *protocol.HeroAttack:
		ok = g.HeroAttack(c.Target.Ref())
	case *protocol.HeroPower:
		ok = g.UseHeroPower(c.Target.Ref())
	case *protocol.EndTurn:
		ok = g.EndTurn()
	case *protocol.Concede:
		ok = g.Concede(playerID)
	default:
		return nil, nil, fmt.Errorf("%w: %s", ErrUnsupportedCommand, cmd.Type())
	}

	if !ok {
		reason := "rejected"
		if last := g.RecentLog(1); len(last) > 0 {
			reason = last[0]
		}
		mgr.logger.Debug("intent rejected",
			zap.String("match_id", m.ID),
			zap.String("player_id", playerID),
			zap.String("type", string(cmd.Type())),
			zap.String("reason", reason),
		)
		return nil, nil, fmt.Errorf("%w: %s", ErrRejected, reason)
	}

	m.stats.accepted()
	mgr.logger.Info("intent accepted",
		zap.String("match_id", m.ID),
		zap.String("player_id", playerID),
		zap.String("type", string(cmd.Type())),
		zap.Int("turn", g.TurnCount()),
	)
	if g.TurnCount() != turn {
		mgr.armClock(m)
	}
	msgs := mgr.statesLocked(m)
	var result *repository.Result
	if g.IsOver() {
		result = mgr.finishLocked(m)
		msgs = append(msgs, mgr.gameOverLocked(m)...)
	}
	return msgs, result, nil
}

// Snapshot renders the match for the player holding token.
func (mgr *Manager) Snapshot(matchID, token string) (*protocol.State, error) {
	m, err := mgr.Get(matchID)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.game == nil {
		return nil, ErrMatchNotStarted
	}
	playerID := m.playerFor(token)
	if playerID == "" {
		return nil, ErrNotSeated
	}
	return protocol.BuildState(m.ID, m.game, playerID, mgr.opts.LogLines)
}

// Leave removes a player the transport has already authenticated. A waiting
// seat is freed; leaving a running game concedes it.
func (mgr *Manager) Leave(ctx context.Context, playerID string) error {
	mgr.mu.Lock()
	matchID, ok := mgr.players[playerID]
	if !ok {
		mgr.mu.Unlock()
		return ErrNotSeated
	}
	m := mgr.matches[matchID]
	m.mu.Lock()
	if m.status == StatusWaiting {
		for i, s := range m.seats {
			if s.PlayerID == playerID {
				m.seats = append(m.seats[:i], m.seats[i+1:]...)
				break
			}
		}
		delete(mgr.players, playerID)
		if len(m.seats) == 0 {
			delete(mgr.matches, m.ID)
			if mgr.lobby == m.ID {
				mgr.lobby = ""
			}
		}
		m.mu.Unlock()
		mgr.mu.Unlock()
		mgr.logger.Info("player left lobby", zap.String("match_id", matchID), zap.String("player_id", playerID))
		return nil
	}
	finished := m.status == StatusFinished
	m.mu.Unlock()
	mgr.mu.Unlock()

	if finished {
		return nil
	}
	m.mu.Lock()
	msgs, result, err := mgr.apply(m, playerID, &protocol.Concede{})
	m.mu.Unlock()

	mgr.settle(ctx, msgs, result)
	return err
}

// Get looks a match up by id.
func (mgr *Manager) Get(matchID string) (*Match, error) {
	mgr.mu.RLock()
	m, ok := mgr.matches[matchID]
	mgr.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
	}
	return m, nil
}

// MatchOf returns the match id playerID is seated in.
func (mgr *Manager) MatchOf(playerID string) (string, bool) {
	mgr.mu.RLock()
	defer mgr.mu.RUnlock()
	id, ok := mgr.players[playerID]
	return id, ok
}

// List summarises every match, newest first.
func (mgr *Manager) List() []Summary {
	mgr.mu.RLock()
	matches := make([]*Match, 0, len(mgr.matches))
	for _, m := range mgr.matches {
		matches = append(matches, m)
	}
	mgr.mu.RUnlock()

	out := make([]Summary, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Summary())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// Prune forgets finished matches that ended before cutoff and returns how
// many were removed.
func (mgr *Manager) Prune(cutoff time.Time) int {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	removed := 0
	for id, m := range mgr.matches {
		m.mu.Lock()
		stale := m.status == StatusFinished && m.endedAt.Before(cutoff)
		seats := m.seats
		m.mu.Unlock()
		if !stale {
			continue
		}
		for _, s := range seats {
			delete(mgr.players, s.PlayerID)
		}
		delete(mgr.matches, id)
		removed++
	}
	if removed > 0 {
		mgr.logger.Debug("pruned finished matches", zap.Int("count", removed))
	}
	return removed
}

// Close stops every turn clock.
func (mgr *Manager) Close() {
	mgr.mu.RLock()
	defer mgr.mu.RUnlock()
	for _, m := range mgr.matches {
		m.mu.Lock()
		m.stopClock()
		m.mu.Unlock()
	}
}

func (mgr *Manager) statesLocked(m *Match) []outbound {
	msgs := make([]outbound, 0, len(m.seats))
	for _, s := range m.seats {
		state, err := protocol.BuildState(m.ID, m.game, s.PlayerID, mgr.opts.LogLines)
		if err != nil {
			mgr.logger.Error("failed to build state", zap.String("match_id", m.ID), zap.Error(err))
			continue
		}
		msgs = append(msgs, outbound{playerID: s.PlayerID, msgType: protocol.TypeState, payload: state})
	}
	return msgs
}

func (mgr *Manager) gameOverLocked(m *Match) []outbound {
	msgs := make([]outbound, 0, len(m.seats))
	for _, s := range m.seats {
		msgs = append(msgs, outbound{
			playerID: s.PlayerID,
			msgType:  protocol.TypeGameOver,
			payload:  protocol.BuildGameOver(m.ID, m.game, s.PlayerID),
		})
	}
	return msgs
}

// finishLocked marks m finished and returns the result to record.
func (mgr *Manager) finishLocked(m *Match) *repository.Result {
	m.stopClock()
	m.game.Events().Unsubscribe(m.statsSub)
	m.status = StatusFinished
	m.endedAt = time.Now()

	stats, conceded := m.stats.snapshot()
	r := repository.Result{
		MatchID: m.ID,
		Turns:   m.game.TurnCount(),
		Reason:  "lethal",
		EndedAt: m.endedAt.UTC(),
	}
	if conceded {
		r.Reason = "concede"
	}
	if w := m.game.Winner(); w != nil {
		loser := m.game.Opponent(w)
		r.WinnerID, r.Winner = w.ID, w.Name
		r.LoserID, r.Loser = loser.ID, loser.Name
	} else {
		r.Draw = true
	}
	mgr.logger.Info("match finished",
		zap.String("match_id", m.ID),
		zap.String("winner", r.Winner),
		zap.Bool("draw", r.Draw),
		zap.String("reason", r.Reason),
		zap.Int("turns", r.Turns),
		zap.Int("actions", stats.Actions),
	)
	return &r
}

func (mgr *Manager) record(ctx context.Context, r repository.Result) {
	if mgr.store == nil {
		return
	}
	if err := mgr.store.Save(ctx, r); err != nil {
		mgr.logger.Warn("failed to record match result", zap.String("match_id", r.MatchID), zap.Error(err))
	}
}
