package targeting

import (
	"fmt"
	"strings"
)

// Class is the kind of target a spell, battlecry or hero power may select.
type Class string

const (
	// ClassNone means the effect takes no target.
	ClassNone Class = ""
	// ClassAny targets any hero or minion
	ClassAny Class = "any"
	// ClassMinionAny targets any minion on either board
	ClassMinionAny Class = "minion_any"
	// ClassMinionEnemy targets an enemy minion
	ClassMinionEnemy Class = "minion_enemy"
	// ClassMinionFriendly targets a friendly minion
	ClassMinionFriendly Class = "minion_friendly"
	// ClassHero targets either hero
	ClassHero Class = "hero"
)

var classAliases = map[string]Class{
	"":                ClassNone,
	"none":            ClassNone,
	"any":             ClassAny,
	"minion":          ClassMinionAny,
	"minion_any":      ClassMinionAny,
	"enemy_minion":    ClassMinionEnemy,
	"minion_enemy":    ClassMinionEnemy,
	"friendly_minion": ClassMinionFriendly,
	"minion_friendly": ClassMinionFriendly,
	"hero":            ClassHero,
}

// ParseClass converts a catalogue or wire string into a Class.
func ParseClass(s string) (Class, error) {
	if c, ok := classAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return c, nil
	}
	return ClassNone, fmt.Errorf("unknown target class %q", s)
}

func (c Class) includesHeroes() bool {
	return c == ClassAny || c == ClassHero
}

func (c Class) includesEnemyMinions() bool {
	return c == ClassAny || c == ClassMinionAny || c == ClassMinionEnemy
}

func (c Class) includesFriendlyMinions() bool {
	return c == ClassAny || c == ClassMinionAny || c == ClassMinionFriendly
}

// Kind says whether a reference points at a hero or a minion.
type Kind string

const (
	KindHero   Kind = "hero"
	KindMinion Kind = "minion"
)

// Ref is a stable handle to a targetable entity. For heroes ID equals PlayerID.
type Ref struct {
	Kind     Kind
	PlayerID string
	ID       string
}

// HeroRef references the hero of playerID.
func HeroRef(playerID string) Ref {
	return Ref{Kind: KindHero, PlayerID: playerID, ID: playerID}
}

// MinionRef references minion id on the board of playerID.
func MinionRef(playerID, id string) Ref {
	return Ref{Kind: KindMinion, PlayerID: playerID, ID: id}
}

// IsZero reports whether no target was supplied.
func (r Ref) IsZero() bool {
	return r.Kind == "" && r.ID == "" && r.PlayerID == ""
}

// IsHero reports whether the reference points at a hero.
func (r Ref) IsHero() bool {
	return r.Kind == KindHero
}

func (r Ref) String() string {
	if r.IsZero() {
		return "<none>"
	}
	if r.Kind == KindHero {
		return "hero:" + r.PlayerID
	}
	return fmt.Sprintf("minion:%s/%s", r.PlayerID, r.ID)
}

// FormatRefs formats references into a comma separated string for logs.
func FormatRefs(refs []Ref) string {
	if len(refs) == 0 {
		return ""
	}
	parts := make([]string, len(refs))
	for i, r := range refs {
		parts[i] = r.String()
	}
	return strings.Join(parts, ",")
}
