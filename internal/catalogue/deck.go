package catalogue

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/magefree/hearth-server-go/internal/game"
)

// DeckSize is the number of cards in every constructed deck.
const DeckSize = 30

// DeckKind names a deck recipe.
type DeckKind string

const (
	DeckStarter DeckKind = "starter"
	DeckRandom  DeckKind = "random"
	DeckAggro   DeckKind = "aggro"
	DeckControl DeckKind = "control"
)

// ErrUnknownDeck is returned for an unrecognised deck recipe.
var ErrUnknownDeck = errors.New("unknown deck kind")

// controlRemoval names the removal spells a control deck takes two of.
var controlRemoval = []string{"Frostbolt", "Assassinate", "Execute"}

// ParseDeckKind maps a name to a DeckKind; empty means starter.
func ParseDeckKind(s string) (DeckKind, error) {
	switch kind := DeckKind(strings.ToLower(strings.TrimSpace(s))); kind {
	case "":
		return DeckStarter, nil
	case DeckStarter, DeckRandom, DeckAggro, DeckControl:
		return kind, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDeck, s)
}

// Deck builds a shuffled deck of DeckSize cards following kind. A nil rng
// uses a time-seeded source.
func (c *Catalogue) Deck(kind DeckKind, rng *rand.Rand) ([]*game.CardDefinition, error) {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	var deck []*game.CardDefinition
	switch kind {
	case DeckStarter:
		deck = c.starter()
	case DeckRandom:
		deck = c.random(rng)
	case DeckAggro:
		deck = c.aggro(rng)
	case DeckControl:
		deck = c.control(rng)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDeck, kind)
	}
	if len(deck) == 0 {
		return nil, fmt.Errorf("catalogue cannot build a %s deck", kind)
	}
	rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
	if len(deck) > DeckSize {
		deck = deck[:DeckSize]
	}
	return deck, nil
}

// Instances turns definitions into fresh card instances for a player's deck.
func Instances(defs []*game.CardDefinition) []*game.CardInstance {
	return game.NewCardInstances(defs)
}

// playable returns the spells other than The Coin.
func (c *Catalogue) playable() []*game.CardDefinition {
	var out []*game.CardDefinition
	for _, def := range c.spells {
		if normalize(def.Name) != normalize(coinName) {
			out = append(out, def)
		}
	}
	return out
}

func (c *Catalogue) collectible() []*game.CardDefinition {
	return append(c.Minions(GroupBasic), c.Minions(GroupSpecial)...)
}

func twice(dst []*game.CardDefinition, defs ...*game.CardDefinition) []*game.CardDefinition {
	for _, def := range defs {
		dst = append(dst, def, def)
	}
	return dst
}

func head(defs []*game.CardDefinition, n int) []*game.CardDefinition {
	if len(defs) < n {
		return defs
	}
	return defs[:n]
}

// starter: two each of the first six basic minions, the first four special
// minions and the first five spells after The Coin.
func (c *Catalogue) starter() []*game.CardDefinition {
	deck := make([]*game.CardDefinition, 0, DeckSize)
	deck = twice(deck, head(c.Minions(GroupBasic), 6)...)
	deck = twice(deck, head(c.Minions(GroupSpecial), 4)...)
	deck = twice(deck, head(c.playable(), 5)...)
	return deck
}

// random: thirty independent picks from every minion, spell and weapon
// except The Coin and legendaries.
func (c *Catalogue) random(rng *rand.Rand) []*game.CardDefinition {
	pool := append(c.collectible(), c.playable()...)
	pool = append(pool, c.weapons...)
	return fill(nil, pool, rng)
}

// aggro: two of every charge minion, then cheap minions.
func (c *Catalogue) aggro(rng *rand.Rand) []*game.CardDefinition {
	var charge, cheap []*game.CardDefinition
	for _, def := range c.collectible() {
		if def.Minion.Keywords.Has(game.Charge) {
			charge = append(charge, def)
		}
		if def.ManaCost <= 3 {
			cheap = append(cheap, def)
		}
	}
	return fill(twice(nil, charge...), cheap, rng)
}

// control: two each of the first four taunt minions and three removal
// spells, then expensive minions.
func (c *Catalogue) control(rng *rand.Rand) []*game.CardDefinition {
	var taunts, expensive []*game.CardDefinition
	for _, def := range c.collectible() {
		if def.Minion.Keywords.Has(game.Taunt) {
			taunts = append(taunts, def)
		}
		if def.ManaCost >= 4 {
			expensive = append(expensive, def)
		}
	}
	deck := twice(nil, head(taunts, 4)...)
	for _, name := range controlRemoval {
		if def, err := c.Card(name); err == nil {
			deck = twice(deck, def)
		}
	}
	return fill(deck, expensive, rng)
}

func fill(deck, pool []*game.CardDefinition, rng *rand.Rand) []*game.CardDefinition {
	if len(pool) == 0 {
		return deck
	}
	for len(deck) < DeckSize {
		deck = append(deck, pool[rng.Intn(len(pool))])
	}
	return deck
}
