package game

import (
	"fmt"
	"strings"
)

// Keyword is a single minion ability flag.
type Keyword uint16

const (
	Taunt Keyword = 1 << iota
	Charge
	DivineShield
	Windfury
	Stealth
	Poisonous
	Lifesteal
	Frozen
	Silenced
)

// keywordOrder fixes the order keywords are reported in.
var keywordOrder = []Keyword{Taunt, Charge, DivineShield, Windfury, Stealth, Poisonous, Lifesteal, Frozen, Silenced}

var keywordNames = map[Keyword]string{
	Taunt:        "taunt",
	Charge:       "charge",
	DivineShield: "divine_shield",
	Windfury:     "windfury",
	Stealth:      "stealth",
	Poisonous:    "poisonous",
	Lifesteal:    "lifesteal",
	Frozen:       "frozen",
	Silenced:     "silenced",
}

func (k Keyword) String() string {
	if name, ok := keywordNames[k]; ok {
		return name
	}
	return fmt.Sprintf("KEYWORD_%d", uint16(k))
}

// ParseKeyword converts a catalogue name such as "divine_shield" into a Keyword.
func ParseKeyword(s string) (Keyword, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	name = strings.ReplaceAll(name, " ", "_")
	for k, n := range keywordNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown keyword %q", s)
}

// Keywords is a set of keyword flags.
type Keywords uint16

// NewKeywords builds a set from individual keywords.
func NewKeywords(ks ...Keyword) Keywords {
	var set Keywords
	for _, k := range ks {
		set = set.With(k)
	}
	return set
}

// Has reports whether k is in the set.
func (s Keywords) Has(k Keyword) bool {
	return s&Keywords(k) != 0
}

// With returns the set with k added.
func (s Keywords) With(k Keyword) Keywords {
	return s | Keywords(k)
}

// Without returns the set with k removed.
func (s Keywords) Without(k Keyword) Keywords {
	return s &^ Keywords(k)
}

// Names lists the keywords in the set in display order.
func (s Keywords) Names() []string {
	names := make([]string, 0, len(keywordOrder))
	for _, k := range keywordOrder {
		if s.Has(k) {
			names = append(names, k.String())
		}
	}
	return names
}

func (s Keywords) String() string {
	return strings.Join(s.Names(), ",")
}
