package effects

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/magefree/hearth-server-go/internal/game"
)

// ErrUnknownEffect is returned by Build for an unregistered effect type.
var ErrUnknownEffect = errors.New("unknown effect")

// Spec describes an effect as data, as it appears in the card catalogue.
// Only the fields the named type reads are meaningful.
type Spec struct {
	Type       string   `yaml:"type" json:"type"`
	Amount     int      `yaml:"amount,omitempty" json:"amount,omitempty"`
	Splash     int      `yaml:"splash,omitempty" json:"splash,omitempty"`
	Count      int      `yaml:"count,omitempty" json:"count,omitempty"`
	Attack     int      `yaml:"attack,omitempty" json:"attack,omitempty"`
	Health     int      `yaml:"health,omitempty" json:"health,omitempty"`
	Durability int      `yaml:"durability,omitempty" json:"durability,omitempty"`
	Name       string   `yaml:"name,omitempty" json:"name,omitempty"`
	Keywords   []string `yaml:"keywords,omitempty" json:"keywords,omitempty"`
	Freeze     bool     `yaml:"freeze,omitempty" json:"freeze,omitempty"`
	Taunt      bool     `yaml:"taunt,omitempty" json:"taunt,omitempty"`
	MinAttack  int      `yaml:"min_attack,omitempty" json:"min_attack,omitempty"`
	MaxAttack  int      `yaml:"max_attack,omitempty" json:"max_attack,omitempty"`
	Damaged    bool     `yaml:"damaged,omitempty" json:"damaged,omitempty"`
	Undamaged  bool     `yaml:"undamaged,omitempty" json:"undamaged,omitempty"`
	Effects    []Spec   `yaml:"effects,omitempty" json:"effects,omitempty"`
}

func (s Spec) condition() Condition {
	return Condition{
		MinAttack: s.MinAttack,
		MaxAttack: s.MaxAttack,
		Damaged:   s.Damaged,
		Undamaged: s.Undamaged,
	}
}

type factory func(source string, s Spec) (game.Effect, error)

var registry = map[string]factory{
	"damage": func(src string, s Spec) (game.Effect, error) {
		return &DamageEffect{Source: src, Amount: s.Amount, Freeze: s.Freeze, Only: s.condition()}, nil
	},
	"damage_enemy_hero": func(src string, s Spec) (game.Effect, error) {
		return &DamageEnemyHeroEffect{Source: src, Amount: s.Amount}, nil
	},
	"damage_own_hero": func(src string, s Spec) (game.Effect, error) {
		return &DamageOwnHeroEffect{Source: src, Amount: s.Amount}, nil
	},
	"damage_enemy_minions": func(src string, s Spec) (game.Effect, error) {
		return &DamageEnemyMinionsEffect{Source: src, Amount: s.Amount}, nil
	},
	"damage_all_enemies": func(src string, s Spec) (game.Effect, error) {
		return &DamageAllEnemiesEffect{Source: src, Amount: s.Amount}, nil
	},
	"damage_other_enemies": func(src string, s Spec) (game.Effect, error) {
		return &SplashDamageEffect{Source: src, Amount: s.Amount, Splash: s.Splash}, nil
	},
	"destroy": func(src string, s Spec) (game.Effect, error) {
		return &DestroyEffect{Source: src, Only: s.condition()}, nil
	},
	"heal": func(src string, s Spec) (game.Effect, error) {
		return &HealEffect{Source: src, Amount: s.Amount}, nil
	},
	"heal_friendlies": func(src string, s Spec) (game.Effect, error) {
		return &HealFriendliesEffect{Source: src, Amount: s.Amount}, nil
	},
	"armor": func(_ string, s Spec) (game.Effect, error) {
		return &ArmorEffect{Amount: s.Amount}, nil
	},
	"draw": func(_ string, s Spec) (game.Effect, error) {
		if s.Count <= 0 {
			return nil, errors.New("draw needs a positive count")
		}
		return &DrawEffect{Count: s.Count}, nil
	},
	"gain_mana": func(_ string, s Spec) (game.Effect, error) {
		return &GainManaEffect{Amount: s.Amount}, nil
	},
	"set_hero_health": func(src string, s Spec) (game.Effect, error) {
		return &SetHeroHealthEffect{Source: src, Amount: s.Amount}, nil
	},
	"buff": func(_ string, s Spec) (game.Effect, error) {
		return &BuffEffect{Attack: s.Attack, Health: s.Health}, nil
	},
	"buff_adjacent": func(src string, s Spec) (game.Effect, error) {
		return &BuffAdjacentEffect{Source: src, Attack: s.Attack, Health: s.Health, Taunt: s.Taunt}, nil
	},
	"silence": func(string, Spec) (game.Effect, error) {
		return &SilenceEffect{}, nil
	},
	"transform": func(_ string, s Spec) (game.Effect, error) {
		if s.Name == "" || s.Health <= 0 {
			return nil, errors.New("transform needs a name and positive health")
		}
		return &TransformEffect{Name: s.Name, Attack: s.Attack, Health: s.Health}, nil
	},
	"steal": func(src string, _ Spec) (game.Effect, error) {
		return &StealEffect{Source: src}, nil
	},
	"steal_random": func(src string, _ Spec) (game.Effect, error) {
		return &StealRandomEffect{Source: src}, nil
	},
	"summon": func(src string, s Spec) (game.Effect, error) {
		if s.Name == "" || s.Health <= 0 {
			return nil, errors.New("summon needs a name and positive health")
		}
		kw, err := parseKeywords(s.Keywords)
		if err != nil {
			return nil, err
		}
		return &SummonEffect{Source: src, Name: s.Name, Attack: s.Attack, Health: s.Health, Keywords: kw}, nil
	},
	"equip_weapon": func(src string, s Spec) (game.Effect, error) {
		if s.Name == "" || s.Durability <= 0 {
			return nil, errors.New("equip_weapon needs a name and positive durability")
		}
		return &EquipWeaponEffect{Source: src, Name: s.Name, Attack: s.Attack, Durability: s.Durability}, nil
	},
	"destroy_enemy_weapon": func(string, Spec) (game.Effect, error) {
		return &DestroyEnemyWeaponEffect{}, nil
	},
}

// Build constructs the effect described by s. source names the card or hero
// power in log entries.
func Build(source string, s Spec) (game.Effect, error) {
	typ := strings.ToLower(strings.TrimSpace(s.Type))
	if typ == "sequence" {
		return buildSequence(source, s.Effects)
	}
	build, ok := registry[typ]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEffect, s.Type)
	}
	eff, err := build(source, s)
	if err != nil {
		return nil, fmt.Errorf("effect %s: %w", typ, err)
	}
	return eff, nil
}

func buildSequence(source string, specs []Spec) (game.Effect, error) {
	if len(specs) == 0 {
		return nil, errors.New("effect sequence: no effects")
	}
	seq := &SequenceEffect{Effects: make([]game.Effect, 0, len(specs))}
	for i, s := range specs {
		eff, err := Build(source, s)
		if err != nil {
			return nil, fmt.Errorf("effect sequence[%d]: %w", i, err)
		}
		seq.Effects = append(seq.Effects, eff)
	}
	return seq, nil
}

// Types lists the registered effect types, sorted.
func Types() []string {
	types := make([]string, 0, len(registry)+1)
	for typ := range registry {
		types = append(types, typ)
	}
	types = append(types, "sequence")
	sort.Strings(types)
	return types
}

func parseKeywords(names []string) (game.Keywords, error) {
	var set game.Keywords
	for _, name := range names {
		k, err := game.ParseKeyword(name)
		if err != nil {
			return 0, err
		}
		set = set.With(k)
	}
	return set, nil
}
