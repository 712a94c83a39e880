package main

import (
	"testing"

	"github.com/magefree/hearth-server-go/internal/game/targeting"
	"github.com/magefree/hearth-server-go/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleState() *protocol.State {
	return &protocol.State{
		Turn:     3,
		YourTurn: true,
		Player: protocol.PlayerView{
			ID: "me", Name: "Jaina", Health: 30, MaxHealth: 30,
			Board: []protocol.MinionView{{ID: "m1", Name: "Wisp", Attack: 1, Health: 1}},
			Hand:  []protocol.CardView{{ID: "c1", Name: "Fireball", Cost: 4}},
		},
		Opponent: protocol.PlayerView{
			ID: "them", Name: "Garrosh", Health: 28, MaxHealth: 30,
			Board: []protocol.MinionView{{ID: "m2", Name: "Sen'jin Shieldmasta", Attack: 3, Health: 5, Keywords: []string{"taunt"}}},
		},
	}
}

// TestParseCommand verifies input lines map onto protocol messages.
func TestParseCommand(t *testing.T) {
	state := sampleState()
	tests := []struct {
		line    string
		msgType protocol.MessageType
		payload any
	}{
		{"end", protocol.TypeEndTurn, nil},
		{"concede", protocol.TypeConcede, nil},
		{"play 0", protocol.TypePlayCard, protocol.PlayCard{CardIndex: 0}},
		{"play 0 them", protocol.TypePlayCard, protocol.PlayCard{Target: &protocol.Target{Kind: targeting.KindHero, PlayerID: "them"}}},
		{"attack 0 them:0", protocol.TypeAttack, protocol.Attack{Target: &protocol.Target{Kind: targeting.KindMinion, PlayerID: "them", ID: "m2"}}},
		{"hero me:0", protocol.TypeHeroAttack, protocol.HeroAttack{Target: &protocol.Target{Kind: targeting.KindMinion, PlayerID: "me", ID: "m1"}}},
		{"power", protocol.TypeHeroPower, protocol.HeroPower{}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			msgType, payload, err := parseCommand(tt.line, state)
			require.NoError(t, err)
			assert.Equal(t, tt.msgType, msgType)
			assert.Equal(t, tt.payload, payload)
		})
	}
}

// TestParseCommandErrors verifies malformed input is refused locally.
func TestParseCommandErrors(t *testing.T) {
	state := sampleState()
	for _, line := range []string{"", "dance", "play", "play x", "attack 0", "attack 0 them:5", "hero you", "play -1"} {
		_, _, err := parseCommand(line, state)
		assert.Error(t, err, line)
	}
	_, _, err := parseCommand("hero them", nil)
	assert.Error(t, err)

	_, _, err = parseCommand("quit", state)
	assert.ErrorIs(t, err, errQuit)
}

// TestRender verifies the board summary lists both sides and the hand.
func TestRender(t *testing.T) {
	out := render(sampleState())
	assert.Contains(t, out, "turn 3")
	assert.Contains(t, out, "[0] Sen'jin Shieldmasta 3/5 (taunt)")
	assert.Contains(t, out, "hand 0: Fireball (4)")
	assert.Contains(t, out, "your turn")
}
