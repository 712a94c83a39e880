package targeting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBoard struct {
	boards map[string][]MinionInfo
}

func (f *fakeBoard) OpponentOf(playerID string) string {
	if playerID == "alice" {
		return "bob"
	}
	return "alice"
}

func (f *fakeBoard) MinionsForTarget(playerID string) []MinionInfo {
	return f.boards[playerID]
}

func newFakeBoard() *fakeBoard {
	return &fakeBoard{boards: map[string][]MinionInfo{
		"alice": {
			{ID: "a1", Name: "Chillwind Yeti"},
			{ID: "a2", Name: "Worgen Infiltrator", Stealthed: true},
		},
		"bob": {
			{ID: "b1", Name: "Jungle Panther", Stealthed: true},
			{ID: "b2", Name: "Goldshire Footman", Taunt: true},
			{ID: "b3", Name: "Patient Assassin", Taunt: true, Stealthed: true},
		},
	}}
}

func TestValidTargetsOrderAndFiltering(t *testing.T) {
	r := NewResolver(newFakeBoard())

	tests := []struct {
		name  string
		class Class
		want  []Ref
	}{
		{
			name:  "any",
			class: ClassAny,
			want: []Ref{
				HeroRef("bob"), HeroRef("alice"),
				MinionRef("bob", "b2"),
				MinionRef("alice", "a1"), MinionRef("alice", "a2"),
			},
		},
		{
			name:  "hero",
			class: ClassHero,
			want:  []Ref{HeroRef("bob"), HeroRef("alice")},
		},
		{
			name:  "minion any",
			class: ClassMinionAny,
			want:  []Ref{MinionRef("bob", "b2"), MinionRef("alice", "a1"), MinionRef("alice", "a2")},
		},
		{
			name:  "enemy minion skips stealth",
			class: ClassMinionEnemy,
			want:  []Ref{MinionRef("bob", "b2")},
		},
		{
			name:  "friendly minion keeps own stealth",
			class: ClassMinionFriendly,
			want:  []Ref{MinionRef("alice", "a1"), MinionRef("alice", "a2")},
		},
		{
			name:  "none",
			class: ClassNone,
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.ValidTargets("alice", tt.class))
		})
	}
}

func TestValidateRejectsIllegalTargets(t *testing.T) {
	r := NewResolver(newFakeBoard())

	require.NoError(t, r.Validate("alice", ClassMinionEnemy, MinionRef("bob", "b2")))
	assert.Error(t, r.Validate("alice", ClassMinionEnemy, MinionRef("bob", "b1")), "stealthed enemy")
	assert.Error(t, r.Validate("alice", ClassMinionEnemy, HeroRef("bob")), "hero for minion class")
	assert.Error(t, r.Validate("alice", ClassAny, Ref{}), "missing target")
	assert.Error(t, r.Validate("alice", ClassNone, HeroRef("bob")), "untargeted effect")
	assert.Error(t, r.Validate("alice", ClassAny, MinionRef("bob", "gone")), "unknown minion")
	assert.NoError(t, r.Validate("alice", ClassHero, HeroRef("alice")))
}

func TestTauntsIgnoresStealthed(t *testing.T) {
	r := NewResolver(newFakeBoard())
	assert.Equal(t, []Ref{MinionRef("bob", "b2")}, r.Taunts("bob"))
	assert.Empty(t, r.Taunts("alice"))
}

func TestParseClass(t *testing.T) {
	c, err := ParseClass("enemy_minion")
	require.NoError(t, err)
	assert.Equal(t, ClassMinionEnemy, c)

	c, err = ParseClass("Minion")
	require.NoError(t, err)
	assert.Equal(t, ClassMinionAny, c)

	_, err = ParseClass("graveyard")
	assert.Error(t, err)
}
