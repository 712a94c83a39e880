package game

import (
	"fmt"
	"math/rand"
	"testing"

	"go.uber.org/zap/zaptest"
)

// TestHarness provides utilities for setting up and running engine scenarios
// in tests of this and dependent packages.
type TestHarness struct {
	t     *testing.T
	Game  *Game
	Alice *PlayerState
	Bob   *PlayerState
}

// NewTestHarness starts a game between Alice (first) and Bob with decks of
// vanilla filler minions. Alice's first turn has begun.
func NewTestHarness(t *testing.T) *TestHarness {
	t.Helper()
	h := NewUnstartedHarness(t)
	if !h.Game.Start() {
		t.Fatalf("failed to start game: %v", h.Game.RecentLog(5))
	}
	return h
}

// NewUnstartedHarness prepares the same match without starting it.
func NewUnstartedHarness(t *testing.T) *TestHarness {
	t.Helper()
	alice := NewPlayer("alice", "Alice", fillerDeck(20), nil)
	bob := NewPlayer("bob", "Bob", fillerDeck(20), nil)
	g := New(alice, bob,
		WithID("test-game"),
		WithLogger(zaptest.NewLogger(t)),
		WithRand(rand.New(rand.NewSource(1))),
	)
	return &TestHarness{t: t, Game: g, Alice: alice, Bob: bob}
}

// Vanilla returns a minion card with no text.
func Vanilla(name string, cost, attack, health int) *CardDefinition {
	return &CardDefinition{
		Name:     name,
		ManaCost: cost,
		Rarity:   RarityCommon,
		Minion:   &MinionStats{Attack: attack, Health: health},
	}
}

func fillerDeck(n int) []*CardInstance {
	deck := make([]*CardInstance, 0, n)
	for i := 0; i < n; i++ {
		deck = append(deck, NewCardInstance(Vanilla(fmt.Sprintf("Filler %d", i), 1, 1, 1)))
	}
	return deck
}

// MinionSpec defines the properties of a test minion
type MinionSpec struct {
	Name        string
	Attack      int
	Health      int
	Keywords    Keywords
	Deathrattle Effect
	// Ready lets the minion attack immediately, as if it had been on the board
	// since its owner's last turn.
	Ready bool
}

// PutMinion places a minion directly on owner's board.
func (h *TestHarness) PutMinion(owner *PlayerState, spec MinionSpec) *Minion {
	h.t.Helper()
	m := NewToken(spec.Name, spec.Attack, spec.Health, spec.Keywords)
	m.Deathrattle = spec.Deathrattle
	if spec.Ready {
		m.CanAttack = true
	}
	if !owner.place(m) {
		h.t.Fatalf("board of %s is full", owner.Name)
	}
	return m
}

// SetMana overwrites a player's mana.
func (h *TestHarness) SetMana(p *PlayerState, current, max int) {
	h.t.Helper()
	if err := p.SetMana(current, max); err != nil {
		h.t.Fatalf("set mana: %v", err)
	}
}

// GiveCard adds a card to p's hand and returns its index.
func (h *TestHarness) GiveCard(p *PlayerState, def *CardDefinition) int {
	h.t.Helper()
	if !p.GiveCard(NewCardInstance(def)) {
		h.t.Fatalf("hand of %s is full", p.Name)
	}
	return len(p.hand) - 1
}

// ClearHand empties p's hand.
func (h *TestHarness) ClearHand(p *PlayerState) {
	p.hand = p.hand[:0]
}

// EmptyDeck removes every card from p's deck.
func (h *TestHarness) EmptyDeck(p *PlayerState) {
	p.deck = p.deck[:0]
}

// StackDeck places def on top of p's deck so it is the next card drawn.
func (h *TestHarness) StackDeck(p *PlayerState, def *CardDefinition) *CardInstance {
	card := NewCardInstance(def)
	p.deck = append(p.deck, card)
	return card
}

// Equip gives p a weapon directly.
func (h *TestHarness) Equip(p *PlayerState, name string, attack, durability int) *Weapon {
	w := &Weapon{ID: name, Name: name, Attack: attack, Durability: durability}
	p.weapon = w
	return w
}

// LastLog returns the newest log entry.
func (h *TestHarness) LastLog() string {
	return h.Game.log.Last()
}

// AssertLogContains fails unless one of the newest n entries equals want.
func (h *TestHarness) AssertLogContains(n int, want string) {
	h.t.Helper()
	for _, entry := range h.Game.RecentLog(n) {
		if entry == want {
			return
		}
	}
	h.t.Errorf("expected log entry %q in %v", want, h.Game.RecentLog(n))
}

// AssertInvariants checks the state rules that must hold between operations.
func (h *TestHarness) AssertInvariants() {
	h.t.Helper()
	for _, p := range h.Game.players {
		if len(p.board) > MaxBoardSize {
			h.t.Errorf("%s board has %d minions", p.Name, len(p.board))
		}
		if len(p.hand) > MaxHandSize {
			h.t.Errorf("%s hand has %d cards", p.Name, len(p.hand))
		}
		if p.Mana() < 0 || p.Mana() > p.MaxMana() || p.MaxMana() > 10 {
			h.t.Errorf("%s mana out of range: %d/%d", p.Name, p.Mana(), p.MaxMana())
		}
		for _, m := range p.board {
			if m.IsDead() {
				h.t.Errorf("dead minion %s still on %s's board", m.Name, p.Name)
			}
			if m.AttacksThisTurn > m.MaxAttacksPerTurn {
				h.t.Errorf("%s attacked %d times, max %d", m.Name, m.AttacksThisTurn, m.MaxAttacksPerTurn)
			}
			if m.OwnerID() != p.ID {
				h.t.Errorf("%s on %s's board is owned by %s", m.Name, p.Name, m.OwnerID())
			}
		}
	}
}
