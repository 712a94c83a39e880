// Package catalogue loads card, weapon and hero power definitions from YAML
// and builds decks from them.
package catalogue

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/magefree/hearth-server-go/internal/game"
	"github.com/magefree/hearth-server-go/internal/game/effects"
	"github.com/magefree/hearth-server-go/internal/game/targeting"
	"gopkg.in/yaml.v3"
)

//go:embed cards.yaml
var embedded []byte

var (
	// ErrUnknownCard is returned when a card name is not in the catalogue.
	ErrUnknownCard = errors.New("unknown card")
	// ErrUnknownHero is returned when a hero class is not in the catalogue.
	ErrUnknownHero = errors.New("unknown hero class")
)

// Group classifies minions the way deck builders draw from them.
type Group string

const (
	GroupBasic     Group = "basic"
	GroupSpecial   Group = "special"
	GroupLegendary Group = "legendary"
)

const coinName = "The Coin"

type fileSchema struct {
	Minions []minionEntry `yaml:"minions"`
	Spells  []spellEntry  `yaml:"spells"`
	Weapons []weaponEntry `yaml:"weapons"`
	Heroes  []heroEntry   `yaml:"heroes"`
}

type minionEntry struct {
	Name            string        `yaml:"name"`
	Cost            int           `yaml:"cost"`
	Attack          int           `yaml:"attack"`
	Health          int           `yaml:"health"`
	Rarity          string        `yaml:"rarity"`
	Group           Group         `yaml:"group"`
	Description     string        `yaml:"description"`
	Keywords        []string      `yaml:"keywords"`
	Battlecry       *effects.Spec `yaml:"battlecry"`
	BattlecryTarget string        `yaml:"battlecry_target"`
	Deathrattle     *effects.Spec `yaml:"deathrattle"`
}

type spellEntry struct {
	Name        string       `yaml:"name"`
	Cost        int          `yaml:"cost"`
	Rarity      string       `yaml:"rarity"`
	Description string       `yaml:"description"`
	Target      string       `yaml:"target"`
	Effect      effects.Spec `yaml:"effect"`
}

type weaponEntry struct {
	Name        string        `yaml:"name"`
	Cost        int           `yaml:"cost"`
	Attack      int           `yaml:"attack"`
	Durability  int           `yaml:"durability"`
	Rarity      string        `yaml:"rarity"`
	Description string        `yaml:"description"`
	Deathrattle *effects.Spec `yaml:"deathrattle"`
}

type heroEntry struct {
	Class string     `yaml:"class"`
	Power powerEntry `yaml:"power"`
}

type powerEntry struct {
	Name        string       `yaml:"name"`
	Cost        *int         `yaml:"cost"`
	Description string       `yaml:"description"`
	Target      string       `yaml:"target"`
	Effect      effects.Spec `yaml:"effect"`
}

// Catalogue is an immutable, validated set of definitions. Definitions are
// shared by every game built from it and must not be mutated.
type Catalogue struct {
	byName  map[string]*game.CardDefinition
	groups  map[Group][]*game.CardDefinition
	spells  []*game.CardDefinition
	weapons []*game.CardDefinition
	powers  map[string]powerEntry
	classes []string
	order   []*game.CardDefinition
}

// Default returns the catalogue compiled into the binary.
func Default() (*Catalogue, error) {
	return Parse(embedded)
}

// LoadFile reads a catalogue from path, or returns Default when path is empty.
func LoadFile(path string) (*Catalogue, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalogue: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates catalogue YAML.
func Parse(data []byte) (*Catalogue, error) {
	var file fileSchema
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalogue: %w", err)
	}

	c := &Catalogue{
		byName: make(map[string]*game.CardDefinition),
		groups: make(map[Group][]*game.CardDefinition),
		powers: make(map[string]powerEntry),
	}
	for _, e := range file.Minions {
		def, err := e.definition()
		if err != nil {
			return nil, err
		}
		if err := c.add(def); err != nil {
			return nil, err
		}
		group := e.Group
		if group == "" {
			group = GroupBasic
		}
		c.groups[group] = append(c.groups[group], def)
	}
	for _, e := range file.Spells {
		def, err := e.definition()
		if err != nil {
			return nil, err
		}
		if err := c.add(def); err != nil {
			return nil, err
		}
		c.spells = append(c.spells, def)
	}
	for _, e := range file.Weapons {
		def, err := e.definition()
		if err != nil {
			return nil, err
		}
		if err := c.add(def); err != nil {
			return nil, err
		}
		c.weapons = append(c.weapons, def)
	}
	for _, h := range file.Heroes {
		class := strings.ToLower(strings.TrimSpace(h.Class))
		if class == "" {
			return nil, errors.New("hero without class")
		}
		if _, dup := c.powers[class]; dup {
			return nil, fmt.Errorf("duplicate hero class %q", class)
		}
		if _, err := buildPower(h.Power); err != nil {
			return nil, fmt.Errorf("hero %s: %w", class, err)
		}
		c.powers[class] = h.Power
		c.classes = append(c.classes, class)
	}
	return c, nil
}

func (c *Catalogue) add(def *game.CardDefinition) error {
	if err := def.Validate(); err != nil {
		return err
	}
	key := normalize(def.Name)
	if _, dup := c.byName[key]; dup {
		return fmt.Errorf("duplicate card %q", def.Name)
	}
	c.byName[key] = def
	c.order = append(c.order, def)
	return nil
}

func (e minionEntry) definition() (*game.CardDefinition, error) {
	stats := &game.MinionStats{Attack: e.Attack, Health: e.Health}
	for _, name := range e.Keywords {
		k, err := game.ParseKeyword(name)
		if err != nil {
			return nil, fmt.Errorf("card %q: %w", e.Name, err)
		}
		stats.Keywords = stats.Keywords.With(k)
	}
	var err error
	if e.Battlecry != nil {
		if stats.Battlecry, err = effects.Build(e.Name, *e.Battlecry); err != nil {
			return nil, fmt.Errorf("card %q battlecry: %w", e.Name, err)
		}
	}
	if stats.BattlecryTarget, err = parseTarget(e.BattlecryTarget); err != nil {
		return nil, fmt.Errorf("card %q: %w", e.Name, err)
	}
	if e.Deathrattle != nil {
		if stats.Deathrattle, err = effects.Build(e.Name, *e.Deathrattle); err != nil {
			return nil, fmt.Errorf("card %q deathrattle: %w", e.Name, err)
		}
	}
	return &game.CardDefinition{
		Name:        e.Name,
		ManaCost:    e.Cost,
		Rarity:      rarity(e.Rarity),
		Description: e.Description,
		Minion:      stats,
	}, nil
}

func (e spellEntry) definition() (*game.CardDefinition, error) {
	eff, err := effects.Build(e.Name, e.Effect)
	if err != nil {
		return nil, fmt.Errorf("card %q: %w", e.Name, err)
	}
	class, err := parseTarget(e.Target)
	if err != nil {
		return nil, fmt.Errorf("card %q: %w", e.Name, err)
	}
	return &game.CardDefinition{
		Name:        e.Name,
		ManaCost:    e.Cost,
		Rarity:      rarity(e.Rarity),
		Description: e.Description,
		Spell: &game.SpellStats{
			Effect:         eff,
			RequiresTarget: class != targeting.ClassNone,
			TargetClass:    class,
		},
	}, nil
}

func (e weaponEntry) definition() (*game.CardDefinition, error) {
	stats := &game.WeaponStats{Attack: e.Attack, Durability: e.Durability}
	if e.Deathrattle != nil {
		eff, err := effects.Build(e.Name, *e.Deathrattle)
		if err != nil {
			return nil, fmt.Errorf("card %q deathrattle: %w", e.Name, err)
		}
		stats.Deathrattle = eff
	}
	return &game.CardDefinition{
		Name:        e.Name,
		ManaCost:    e.Cost,
		Rarity:      rarity(e.Rarity),
		Description: e.Description,
		Weapon:      stats,
	}, nil
}

func buildPower(e powerEntry) (*game.HeroPower, error) {
	if e.Name == "" {
		return nil, errors.New("hero power needs a name")
	}
	eff, err := effects.Build(e.Name, e.Effect)
	if err != nil {
		return nil, err
	}
	class, err := parseTarget(e.Target)
	if err != nil {
		return nil, err
	}
	cost := game.DefaultHeroPowerCost
	if e.Cost != nil {
		cost = *e.Cost
	}
	return &game.HeroPower{
		Name:           e.Name,
		Description:    e.Description,
		Cost:           cost,
		Effect:         eff,
		RequiresTarget: class != targeting.ClassNone,
		TargetClass:    class,
	}, nil
}

func parseTarget(s string) (targeting.Class, error) {
	if strings.TrimSpace(s) == "" {
		return targeting.ClassNone, nil
	}
	return targeting.ParseClass(s)
}

func rarity(s string) game.Rarity {
	if s == "" {
		return game.RarityCommon
	}
	return game.Rarity(s)
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Card looks a definition up by name, ignoring case.
func (c *Catalogue) Card(name string) (*game.CardDefinition, error) {
	def, ok := c.byName[normalize(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCard, name)
	}
	return def, nil
}

// Cards returns every definition in catalogue order.
func (c *Catalogue) Cards() []*game.CardDefinition {
	return append([]*game.CardDefinition(nil), c.order...)
}

// Minions returns the minions of group in catalogue order.
func (c *Catalogue) Minions(group Group) []*game.CardDefinition {
	return append([]*game.CardDefinition(nil), c.groups[group]...)
}

// Spells returns every spell, including The Coin, in catalogue order.
func (c *Catalogue) Spells() []*game.CardDefinition {
	return append([]*game.CardDefinition(nil), c.spells...)
}

// Weapons returns every weapon in catalogue order.
func (c *Catalogue) Weapons() []*game.CardDefinition {
	return append([]*game.CardDefinition(nil), c.weapons...)
}

// Coin returns the compensation card for the second player, or nil if the
// catalogue does not define one.
func (c *Catalogue) Coin() *game.CardDefinition {
	return c.byName[normalize(coinName)]
}

// Classes lists the hero classes, sorted.
func (c *Catalogue) Classes() []string {
	out := append([]string(nil), c.classes...)
	sort.Strings(out)
	return out
}

// HeroPower builds a fresh hero power for class. Each hero gets its own
// instance.
func (c *Catalogue) HeroPower(class string) (*game.HeroPower, error) {
	entry, ok := c.powers[normalize(class)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownHero, class)
	}
	return buildPower(entry)
}
