package game

import (
	"fmt"

	"github.com/magefree/hearth-server-go/internal/game/mana"
	"github.com/magefree/hearth-server-go/internal/game/rules"
	"github.com/magefree/hearth-server-go/internal/game/targeting"
)

const (
	StartingHealth       = 30
	MaxHandSize          = 10
	MaxBoardSize         = 7
	DefaultHeroPowerCost = 2
)

// HeroPower is a hero's once-per-turn ability.
type HeroPower struct {
	Name           string
	Description    string
	Cost           int
	Effect         Effect
	RequiresTarget bool
	TargetClass    targeting.Class
}

// PlayerState is one contestant's hero, resources and zones. The deck is
// drawn from its end.
type PlayerState struct {
	ID   string
	Name string

	health    int
	maxHealth int
	armor     int
	crystals  *mana.Crystals
	fatigue   int

	deck  []*CardInstance
	hand  []*CardInstance
	board []*Minion

	weapon        *Weapon
	heroPower     *HeroPower
	heroPowerUsed bool
	heroAttacks   int

	log *Log
	bus *rules.EventBus
}

// NewPlayer creates a hero at full health with the given deck (top of the deck
// last) and hero power, which may be nil.
func NewPlayer(id, name string, deck []*CardInstance, power *HeroPower) *PlayerState {
	cards := make([]*CardInstance, len(deck))
	copy(cards, deck)
	return &PlayerState{
		ID:        id,
		Name:      name,
		health:    StartingHealth,
		maxHealth: StartingHealth,
		crystals:  mana.NewCrystals(),
		deck:      cards,
		hand:      make([]*CardInstance, 0, MaxHandSize),
		board:     make([]*Minion, 0, MaxBoardSize),
		heroPower: power,
	}
}

func (p *PlayerState) attach(log *Log, bus *rules.EventBus) {
	p.log = log
	p.bus = bus
}

func (p *PlayerState) logf(format string, args ...interface{}) {
	p.log.Append(fmt.Sprintf(format, args...))
}

// logPrivate records message for p alone; the opponent reads public.
func (p *PlayerState) logPrivate(message, public string) {
	p.log.AppendPrivate(p.ID, message, public)
}

func (p *PlayerState) publish(evt rules.Event) {
	p.bus.Publish(evt)
}

// Ref returns the target handle of the hero.
func (p *PlayerState) Ref() targeting.Ref {
	return targeting.HeroRef(p.ID)
}

// DisplayName returns the hero's name.
func (p *PlayerState) DisplayName() string {
	return p.Name
}

// IsDead reports whether the hero has no health left.
func (p *PlayerState) IsDead() bool {
	return p.health <= 0
}

func (p *PlayerState) Health() int { return p.health }
func (p *PlayerState) MaxHealth() int { return p.maxHealth }
func (p *PlayerState) Armor() int { return p.armor }
func (p *PlayerState) Mana() int { return p.crystals.Current() }
func (p *PlayerState) MaxMana() int { return p.crystals.Max() }
func (p *PlayerState) TemporaryMana() int { return p.crystals.Temporary() }
func (p *PlayerState) AvailableMana() int { return p.crystals.Available() }
func (p *PlayerState) DeckSize() int { return len(p.deck) }
func (p *PlayerState) HandSize() int { return len(p.hand) }
func (p *PlayerState) BoardSize() int { return len(p.board) }
func (p *PlayerState) Weapon() *Weapon { return p.weapon }
func (p *PlayerState) HeroPower() *HeroPower { return p.heroPower }
func (p *PlayerState) HeroPowerUsed() bool { return p.heroPowerUsed }
func (p *PlayerState) HeroAttacksThisTurn() int { return p.heroAttacks }
func (p *PlayerState) FatigueCounter() int { return p.fatigue }
func (p *PlayerState) BoardFull() bool { return len(p.board) >= MaxBoardSize }
func (p *PlayerState) HandFull() bool { return len(p.hand) >= MaxHandSize }

// Board returns a copy of the board, front to back.
func (p *PlayerState) Board() []*Minion {
	out := make([]*Minion, len(p.board))
	copy(out, p.board)
	return out
}

// Hand returns a copy of the hand.
func (p *PlayerState) Hand() []*CardInstance {
	out := make([]*CardInstance, len(p.hand))
	copy(out, p.hand)
	return out
}

// MinionByID finds a minion on this board.
func (p *PlayerState) MinionByID(id string) (*Minion, bool) {
	for _, m := range p.board {
		if m.ID == id {
			return m, true
		}
	}
	return nil, false
}

// MinionIndex returns the board position of m, or -1.
func (p *PlayerState) MinionIndex(m *Minion) int {
	for i, candidate := range p.board {
		if candidate == m {
			return i
		}
	}
	return -1
}

// SetMana overwrites the mana crystals. Used for fixtures.
func (p *PlayerState) SetMana(current, max int) error {
	return p.crystals.Set(current, max)
}

// GiveCard puts card into the hand if there is room.
func (p *PlayerState) GiveCard(card *CardInstance) bool {
	if p.HandFull() {
		return false
	}
	p.hand = append(p.hand, card)
	return true
}

// PutOnDeck places cards on top of the deck; the last one is drawn first.
func (p *PlayerState) PutOnDeck(cards ...*CardInstance) {
	p.deck = append(p.deck, cards...)
}

func (p *PlayerState) popDeck() *CardInstance {
	if len(p.deck) == 0 {
		return nil
	}
	card := p.deck[len(p.deck)-1]
	p.deck = p.deck[:len(p.deck)-1]
	return card
}

// DrawCards draws n cards one at a time. An empty deck deals escalating
// fatigue damage that armor does not absorb; a full hand burns the drawn card.
func (p *PlayerState) DrawCards(n int) []*CardInstance {
	drawn := make([]*CardInstance, 0, n)
	for i := 0; i < n; i++ {
		card := p.popDeck()
		if card == nil {
			p.fatigue++
			p.health -= p.fatigue
			p.logf("%s takes %d fatigue damage!", p.Name, p.fatigue)
			p.publish(rules.NewEventWithAmount(rules.EventFatigue, p.ID, "", p.ID, p.fatigue))
			continue
		}
		if p.HandFull() {
			p.logf("%s's hand is full! %s burned.", p.Name, card.Def.Name)
			evt := rules.NewEvent(rules.EventBurnedCard, card.ID, card.ID, p.ID)
			evt.Data = card.Def.Name
			p.publish(evt)
			continue
		}
		p.hand = append(p.hand, card)
		drawn = append(drawn, card)
		p.logPrivate(fmt.Sprintf("%s draws %s", p.Name, card.Def.Name), p.Name+" draws a card")
		p.publish(rules.NewEvent(rules.EventDrewCard, card.ID, card.ID, p.ID))
	}
	return drawn
}

// drawOpening deals the opening hand without per-card log entries.
func (p *PlayerState) drawOpening(n int) {
	for i := 0; i < n && !p.HandFull(); i++ {
		card := p.popDeck()
		if card == nil {
			return
		}
		p.hand = append(p.hand, card)
	}
}

// StartTurn grows and refills mana, readies the hero and every minion, then
// draws a card.
func (p *PlayerState) StartTurn() {
	p.crystals.BeginTurn()
	p.heroPowerUsed = false
	p.heroAttacks = 0
	for _, m := range p.board {
		m.RefreshAttack()
	}
	p.DrawCards(1)
	p.logf("--- %s's turn (Mana: %d/%d) ---", p.Name, p.Mana(), p.MaxMana())
}

// TakeDamage lets armor absorb first and returns the damage dealt to health.
func (p *PlayerState) TakeDamage(amount int) int {
	if amount <= 0 {
		return 0
	}
	if p.armor > 0 {
		absorbed := min(p.armor, amount)
		p.armor -= absorbed
		amount -= absorbed
		p.logf("%s's armor absorbs %d damage", p.Name, absorbed)
	}
	p.health -= amount
	return amount
}

// Heal restores health up to the maximum and returns the amount restored.
func (p *PlayerState) Heal(amount int) int {
	if amount <= 0 {
		return 0
	}
	before := p.health
	p.health = min(p.health+amount, p.maxHealth)
	return p.health - before
}

// GainArmor adds armor.
func (p *PlayerState) GainArmor(amount int) {
	if amount <= 0 {
		return
	}
	p.armor += amount
	p.logf("%s gains %d armor", p.Name, amount)
}

// SetHealth sets hero health, clamped to [0, maxHealth].
func (p *PlayerState) SetHealth(health int) {
	p.health = max(0, min(health, p.maxHealth))
}

// place appends m to the board and takes ownership of it.
func (p *PlayerState) place(m *Minion) bool {
	if p.BoardFull() {
		return false
	}
	m.ownerID = p.ID
	p.board = append(p.board, m)
	return true
}

// remove takes m off the board and reports whether it was there.
func (p *PlayerState) remove(m *Minion) bool {
	idx := p.MinionIndex(m)
	if idx < 0 {
		return false
	}
	p.board = append(p.board[:idx], p.board[idx+1:]...)
	return true
}

// replace swaps old for m in the same board position.
func (p *PlayerState) replace(old, m *Minion) bool {
	idx := p.MinionIndex(old)
	if idx < 0 {
		return false
	}
	m.ownerID = p.ID
	p.board[idx] = m
	return true
}

func (p *PlayerState) takeFromHand(index int) *CardInstance {
	card := p.hand[index]
	p.hand = append(p.hand[:index], p.hand[index+1:]...)
	return card
}

func (p *PlayerState) String() string {
	return fmt.Sprintf("%s - HP: %d | Armor: %d | Mana: %s", p.Name, p.health, p.armor, p.crystals)
}
