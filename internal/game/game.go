package game

import (
	"fmt"
	"math/rand"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/magefree/hearth-server-go/internal/game/rules"
	"github.com/magefree/hearth-server-go/internal/game/targeting"
	"go.uber.org/zap"
)

const (
	openingHandFirst  = 3
	openingHandSecond = 4
)

// Game is the authoritative state of one match and the only component with a
// public operation surface. It is single-writer: callers must serialize
// operations. Every operation validates first and mutates nothing on failure.
type Game struct {
	id          string
	players     [2]*PlayerState
	turns       *rules.TurnManager
	winner      *PlayerState
	log         *Log
	logCapacity int
	events      *rules.EventBus
	resolver    *targeting.Resolver
	logger      *zap.Logger
	rng         *rand.Rand
	coin        *CardDefinition
	sources     []*Minion
}

// Option configures a Game.
type Option func(*Game)

// WithID sets the game id. A uuid is generated otherwise.
func WithID(id string) Option {
	return func(g *Game) { g.id = id }
}

// WithLogger sets the structured logger.
func WithLogger(logger *zap.Logger) Option {
	return func(g *Game) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithRand sets the random source used by random effects.
func WithRand(rng *rand.Rand) Option {
	return func(g *Game) {
		if rng != nil {
			g.rng = rng
		}
	}
}

// WithEventBus publishes game events on bus instead of a private bus.
func WithEventBus(bus *rules.EventBus) Option {
	return func(g *Game) {
		if bus != nil {
			g.events = bus
		}
	}
}

// WithLogCapacity sets how many human-readable log entries are kept.
func WithLogCapacity(capacity int) Option {
	return func(g *Game) { g.logCapacity = capacity }
}

// WithCoin replaces the compensation card given to the second player.
func WithCoin(def *CardDefinition) Option {
	return func(g *Game) {
		if def != nil {
			g.coin = def
		}
	}
}

// New creates a game in setup. first takes the first turn.
func New(first, second *PlayerState, opts ...Option) *Game {
	g := &Game{
		id:          uuid.NewString(),
		players:     [2]*PlayerState{first, second},
		turns:       rules.NewTurnManager(first.ID, second.ID),
		logCapacity: DefaultLogCapacity,
		events:      rules.NewEventBus(),
		logger:      zap.NewNop(),
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		coin:        TheCoin(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.log = NewLog(g.logCapacity, g.logger.With(zap.String("game_id", g.id)))
	g.resolver = targeting.NewResolver(g)
	for _, p := range g.players {
		p.attach(g.log, g.events)
	}
	return g
}

// ID returns the game id.
func (g *Game) ID() string { return g.id }

// Events returns the bus game events are published on.
func (g *Game) Events() *rules.EventBus { return g.events }

// Rand returns the random source for random effects.
func (g *Game) Rand() *rand.Rand { return g.rng }

// Phase returns the lifecycle phase.
func (g *Game) Phase() rules.Phase { return g.turns.CurrentPhase() }

// TurnCount returns the current turn number.
func (g *Game) TurnCount() int { return g.turns.TurnNumber() }

// IsOver reports whether the game has ended.
func (g *Game) IsOver() bool { return g.turns.IsOver() }

// Winner returns the winner, or nil while running or after a draw.
func (g *Game) Winner() *PlayerState { return g.winner }

// IsDraw reports whether the game ended without a winner.
func (g *Game) IsDraw() bool { return g.IsOver() && g.winner == nil }

// PlayerA returns the player who went first.
func (g *Game) PlayerA() *PlayerState { return g.players[0] }

// PlayerB returns the player who went second.
func (g *Game) PlayerB() *PlayerState { return g.players[1] }

// ActivePlayer returns the player whose turn it is.
func (g *Game) ActivePlayer() *PlayerState {
	return g.Player(g.turns.ActivePlayer())
}

// Player looks a player up by id.
func (g *Game) Player(id string) *PlayerState {
	for _, p := range g.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Opponent returns the other player.
func (g *Game) Opponent(p *PlayerState) *PlayerState {
	if p == g.players[0] {
		return g.players[1]
	}
	return g.players[0]
}

// Source returns the minion whose battlecry or deathrattle is resolving.
func (g *Game) Source() *Minion {
	if len(g.sources) == 0 {
		return nil
	}
	return g.sources[len(g.sources)-1]
}

func (g *Game) withSource(m *Minion, fn func()) {
	g.sources = append(g.sources, m)
	defer func() { g.sources = g.sources[:len(g.sources)-1] }()
	fn()
}

// Logf appends a human-readable entry to the game log.
func (g *Game) Logf(format string, args ...interface{}) {
	g.log.Append(fmt.Sprintf(format, args...))
}

// RecentLog returns up to n of the newest log entries, oldest first, with
// hidden information redacted.
func (g *Game) RecentLog(n int) []string {
	return g.log.Recent(n)
}

// RecentLogFor returns up to n of the newest log entries as playerID sees
// them, oldest first.
func (g *Game) RecentLogFor(playerID string, n int) []string {
	return g.log.RecentFor(playerID, n)
}

func (g *Game) publish(evt rules.Event) {
	g.events.Publish(evt)
}

// OpponentOf implements targeting.BoardAccessor.
func (g *Game) OpponentOf(playerID string) string {
	return g.turns.Other(playerID)
}

// MinionsForTarget implements targeting.BoardAccessor.
func (g *Game) MinionsForTarget(playerID string) []targeting.MinionInfo {
	p := g.Player(playerID)
	if p == nil {
		return nil
	}
	out := make([]targeting.MinionInfo, 0, len(p.board))
	for _, m := range p.board {
		out = append(out, targeting.MinionInfo{
			ID:        m.ID,
			Name:      m.Name,
			Stealthed: m.Has(Stealth),
			Taunt:     m.Has(Taunt),
		})
	}
	return out
}

// ValidTargets lists legal targets of class for the active player.
func (g *Game) ValidTargets(class targeting.Class) []targeting.Ref {
	return g.resolver.ValidTargets(g.turns.ActivePlayer(), class)
}

// Resolve turns a reference into the live hero or minion it names.
func (g *Game) Resolve(ref targeting.Ref) (Character, bool) {
	p := g.Player(ref.PlayerID)
	if p == nil {
		return nil, false
	}
	switch ref.Kind {
	case targeting.KindHero:
		return p, true
	case targeting.KindMinion:
		if m, ok := p.MinionByID(ref.ID); ok {
			return m, true
		}
	}
	return nil, false
}

// Start deals opening hands, gives the second player the coin and begins the
// first turn.
func (g *Game) Start() bool {
	if g.turns.CurrentPhase() != rules.PhaseSetup {
		g.Logf("Game already started!")
		return false
	}
	first, second := g.players[0], g.players[1]

	g.Logf("=== Game Started ===")
	first.drawOpening(openingHandFirst)
	second.drawOpening(openingHandSecond)
	g.Logf("%s draws %d cards", first.Name, openingHandFirst)
	g.Logf("%s draws %d cards", second.Name, openingHandSecond)

	if second.GiveCard(NewCardInstance(g.coin)) {
		g.Logf("%s receives %s!", second.Name, g.coin.Name)
	}

	if err := g.turns.Begin(); err != nil {
		g.logger.Error("failed to begin first turn", zap.String("game_id", g.id), zap.Error(err))
		return false
	}
	g.logger.Info("game started",
		zap.String("game_id", g.id),
		zap.String("first", first.ID),
		zap.String("second", second.ID),
	)
	g.publish(rules.NewEvent(rules.EventGameStarted, "", "", first.ID))

	first.StartTurn()
	g.publish(rules.NewEventWithAmount(rules.EventBeginTurn, "", "", first.ID, g.turns.TurnNumber()))
	g.settle()
	return true
}

// PlayCard plays the card at handIndex for the active player. target may be
// the zero Ref for untargeted cards.
func (g *Game) PlayCard(handIndex int, target targeting.Ref) bool {
	if !g.acceptingActions() {
		return false
	}
	p := g.ActivePlayer()
	if handIndex < 0 || handIndex >= len(p.hand) {
		g.reject(p, "Invalid card!")
		return false
	}
	card := p.hand[handIndex]
	def := card.Def

	if !p.crystals.CanAfford(def.ManaCost) {
		g.reject(p, fmt.Sprintf("Not enough mana! Need %d, have %d", def.ManaCost, p.AvailableMana()))
		return false
	}
	if def.Kind() == KindMinion && p.BoardFull() {
		g.reject(p, "Board is full!")
		return false
	}
	tgt, ok := g.selectTarget(p, def.TargetClass(), def.RequiresTarget(), target, "This spell requires a target!")
	if !ok {
		return false
	}

	p.crystals.Spend(def.ManaCost)
	p.takeFromHand(handIndex)

	played := rules.NewEvent(rules.EventCardPlayed, card.ID, card.ID, p.ID)
	played.Data = def.Name

	switch def.Kind() {
	case KindMinion:
		m := card.Summon()
		p.place(m)
		g.Logf("%s plays %s", p.Name, def.Name)
		g.publish(played)
		g.publish(rules.NewEvent(rules.EventMinionSummoned, m.ID, card.ID, p.ID))
		if def.Minion.Battlecry != nil {
			g.withSource(m, func() { def.Minion.Battlecry.Execute(p, g, tgt) })
		}
	case KindSpell:
		g.Logf("%s casts %s", p.Name, def.Name)
		g.publish(played)
		g.publish(rules.NewEvent(rules.EventSpellCast, targetID(tgt), card.ID, p.ID))
		def.Spell.Effect.Execute(p, g, tgt)
	case KindWeapon:
		g.Equip(p, card.Forge())
		g.Logf("%s equips %s", p.Name, def.Name)
		g.publish(played)
		if def.Weapon.Battlecry != nil {
			def.Weapon.Battlecry.Execute(p, g, tgt)
		}
	}

	g.settle()
	return true
}

// AttackWithMinion attacks target with the active player's minion at boardIndex.
func (g *Game) AttackWithMinion(boardIndex int, target targeting.Ref) bool {
	if !g.acceptingActions() {
		return false
	}
	p := g.ActivePlayer()
	if boardIndex < 0 || boardIndex >= len(p.board) {
		g.reject(p, "Invalid minion!")
		return false
	}
	attacker := p.board[boardIndex]
	if reason := attacker.attackBlocker(); reason != "" {
		g.reject(p, reason)
		return false
	}
	defender, ok := g.attackTarget(p, target)
	if !ok {
		return false
	}

	attacker.AttackTarget(g, p, defender)
	g.settle()
	return true
}

// HeroAttack attacks target with the active player's weapon.
func (g *Game) HeroAttack(target targeting.Ref) bool {
	if !g.acceptingActions() {
		return false
	}
	p := g.ActivePlayer()
	if p.weapon == nil {
		g.reject(p, "You don't have a weapon equipped!")
		return false
	}
	if p.heroAttacks > 0 {
		g.reject(p, "Your hero has already attacked this turn!")
		return false
	}
	defender, ok := g.attackTarget(p, target)
	if !ok {
		return false
	}

	w := p.weapon
	g.Logf("%s attacks %s for %d damage", p.Name, defender.DisplayName(), w.Attack)
	g.publish(eventAttack(p, defender))
	g.damage(defender, w.Attack)
	if m, isMinion := defender.(*Minion); isMinion {
		g.damage(p, m.Attack)
	}
	p.heroAttacks++
	if w.Use() {
		g.Logf("%s breaks!", w.Name)
		g.destroyWeapon(p)
	}

	g.settle()
	return true
}

// UseHeroPower activates the active player's hero power.
func (g *Game) UseHeroPower(target targeting.Ref) bool {
	if !g.acceptingActions() {
		return false
	}
	p := g.ActivePlayer()
	power := p.heroPower
	if power == nil {
		g.reject(p, "No hero power!")
		return false
	}
	if p.heroPowerUsed {
		g.reject(p, "Hero power already used this turn!")
		return false
	}
	if !p.crystals.CanAfford(power.Cost) {
		g.reject(p, "Not enough mana for hero power!")
		return false
	}
	tgt, ok := g.selectTarget(p, power.TargetClass, power.RequiresTarget, target, "Hero power requires a target!")
	if !ok {
		return false
	}

	p.crystals.Spend(power.Cost)
	p.heroPowerUsed = true
	g.Logf("%s uses %s", p.Name, power.Name)
	evt := rules.NewEvent(rules.EventHeroPower, targetID(tgt), p.ID, p.ID)
	evt.Data = power.Name
	g.publish(evt)
	if power.Effect != nil {
		power.Effect.Execute(p, g, tgt)
	}

	g.settle()
	return true
}

// EndTurn clears the board of dead minions, checks for a winner and, if the
// game goes on, starts the opponent's turn.
func (g *Game) EndTurn() bool {
	if !g.acceptingActions() {
		return false
	}
	p := g.ActivePlayer()
	g.publish(rules.NewEventWithAmount(rules.EventEndTurn, "", "", p.ID, g.turns.TurnNumber()))

	g.settle()
	if g.IsOver() {
		return true
	}

	next, err := g.turns.Advance()
	if err != nil {
		g.logger.Error("failed to advance turn", zap.String("game_id", g.id), zap.Error(err))
		return false
	}
	g.Logf("Turn %d", g.turns.TurnNumber())
	np := g.Player(next)
	np.StartTurn()
	g.publish(rules.NewEventWithAmount(rules.EventBeginTurn, "", "", np.ID, g.turns.TurnNumber()))

	g.settle()
	return true
}

// Concede ends the game in the opponent's favour.
func (g *Game) Concede(playerID string) bool {
	if !g.acceptingActions() {
		return false
	}
	p := g.Player(playerID)
	if p == nil {
		g.Logf("Unknown player!")
		return false
	}
	g.Logf("%s concedes!", p.Name)
	g.publish(rules.NewEvent(rules.EventConceded, p.ID, p.ID, p.ID))
	g.finish(g.Opponent(p))
	return true
}

func (g *Game) acceptingActions() bool {
	switch g.turns.CurrentPhase() {
	case rules.PhaseSetup:
		g.Logf("The game has not started yet!")
		return false
	case rules.PhaseGameOver:
		g.Logf("The game is over!")
		return false
	}
	return true
}

func (g *Game) reject(p *PlayerState, reason string) {
	g.Logf("%s", reason)
	g.logger.Debug("action rejected",
		zap.String("game_id", g.id),
		zap.String("player_id", p.ID),
		zap.String("reason", reason),
	)
	evt := rules.NewEvent(rules.EventActionError, "", "", p.ID)
	evt.Data = reason
	g.publish(evt)
}

// selectTarget validates an optional target for a card or hero power. A
// supplied target is ignored when the effect declares no target class.
func (g *Game) selectTarget(p *PlayerState, class targeting.Class, required bool, ref targeting.Ref, missing string) (Character, bool) {
	if ref.IsZero() {
		if required {
			g.reject(p, missing)
			return nil, false
		}
		return nil, true
	}
	if class == targeting.ClassNone {
		return nil, true
	}
	if err := g.resolver.Validate(p.ID, class, ref); err != nil {
		g.logger.Debug("illegal target",
			zap.String("player_id", p.ID),
			zap.Stringer("target", ref),
			zap.String("legal", targeting.FormatRefs(g.resolver.ValidTargets(p.ID, class))),
			zap.Error(err),
		)
		g.reject(p, "Invalid target!")
		return nil, false
	}
	tgt, ok := g.Resolve(ref)
	if !ok {
		g.reject(p, "Invalid target!")
		return nil, false
	}
	return tgt, true
}

// attackTarget validates an attack on an enemy hero or minion, enforcing
// taunt and stealth.
func (g *Game) attackTarget(p *PlayerState, ref targeting.Ref) (Character, bool) {
	opp := g.Opponent(p)
	if ref.PlayerID != opp.ID {
		g.reject(p, "Invalid attack target!")
		return nil, false
	}
	defender, ok := g.Resolve(ref)
	if !ok {
		g.reject(p, "Invalid attack target!")
		return nil, false
	}
	if taunts := g.resolver.Taunts(opp.ID); len(taunts) > 0 && !slices.Contains(taunts, ref) {
		g.reject(p, "Must attack a Taunt minion first!")
		return nil, false
	}
	if m, isMinion := defender.(*Minion); isMinion && m.Has(Stealth) {
		g.reject(p, "Cannot attack a stealthed minion!")
		return nil, false
	}
	return defender, true
}

// settle sweeps dead minions and checks whether the game has ended.
func (g *Game) settle() {
	g.sweep()
	g.checkGameOver()
}

// sweep removes dead minions, active player's board first, front to back.
// A deathrattle runs before its minion leaves the board and at most once;
// sweeping repeats until deathrattles leave nothing dead behind.
func (g *Game) sweep() {
	processed := make(map[*Minion]bool)
	for {
		removed := false
		for _, p := range g.turnOrder() {
			for {
				m := firstDead(p.board, processed)
				if m == nil {
					break
				}
				processed[m] = true
				removed = true
				if m.Deathrattle != nil && !m.Has(Silenced) {
					g.publish(rules.NewEvent(rules.EventDeathrattle, m.ID, m.ID, p.ID))
					rattle := m.Deathrattle
					g.withSource(m, func() { rattle.Execute(p, g, nil) })
				}
				owner := g.Player(m.ownerID)
				if owner != nil && owner.remove(m) {
					g.Logf("%s dies!", m.Name)
					evt := rules.NewEvent(rules.EventMinionDied, m.ID, m.ID, owner.ID)
					evt.Data = m.Name
					g.publish(evt)
				}
			}
		}
		if !removed {
			return
		}
	}
}

func firstDead(board []*Minion, processed map[*Minion]bool) *Minion {
	for _, m := range board {
		if m.IsDead() && !processed[m] {
			return m
		}
	}
	return nil
}

func (g *Game) turnOrder() []*PlayerState {
	active := g.ActivePlayer()
	return []*PlayerState{active, g.Opponent(active)}
}

func (g *Game) checkGameOver() {
	if g.IsOver() {
		return
	}
	a, b := g.players[0], g.players[1]
	switch {
	case a.IsDead() && b.IsDead():
		g.Logf("=== DRAW! Both heroes died! ===")
		g.finish(nil)
	case a.IsDead():
		g.finish(b)
	case b.IsDead():
		g.finish(a)
	}
}

func (g *Game) finish(winner *PlayerState) {
	g.winner = winner
	g.turns.Finish()
	winnerID := ""
	if winner != nil {
		winnerID = winner.ID
		g.Logf("=== %s WINS! ===", winner.Name)
	}
	g.logger.Info("game over",
		zap.String("game_id", g.id),
		zap.String("winner", winnerID),
		zap.Int("turns", g.turns.TurnNumber()),
	)
	evt := rules.NewEventWithAmount(rules.EventGameOver, winnerID, "", winnerID, g.turns.TurnNumber())
	evt.Data = winnerID
	g.publish(evt)
}

func targetID(c Character) string {
	if c == nil {
		return ""
	}
	return c.Ref().ID
}

func eventAttack(attacker, defender Character) rules.Event {
	ref := attacker.Ref()
	return rules.NewEvent(rules.EventAttack, defender.Ref().ID, ref.ID, ref.PlayerID)
}
