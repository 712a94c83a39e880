// Package protocol defines the versioned JSON messages exchanged between game
// clients and the server. Every inbound payload is validated before it
// reaches a match.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/magefree/hearth-server-go/internal/game/targeting"
)

// SchemaVersion is the wire schema version. Messages carrying a different
// non-zero version are rejected.
const SchemaVersion = 1

// MaxNameLength bounds player names supplied on join.
const MaxNameLength = 32

// MessageType names a message on the wire.
type MessageType string

// Client to server.
const (
	TypeJoin       MessageType = "join"
	TypePlayCard   MessageType = "play_card"
	TypeAttack     MessageType = "attack"
	TypeHeroAttack MessageType = "hero_attack"
	TypeHeroPower  MessageType = "hero_power"
	TypeEndTurn    MessageType = "end_turn"
	TypeConcede    MessageType = "concede"
	TypePing       MessageType = "ping"
)

// Server to client.
const (
	TypeJoined   MessageType = "joined"
	TypeState    MessageType = "state"
	TypeGameOver MessageType = "game_over"
	TypeError    MessageType = "error"
	TypePong     MessageType = "pong"
)

var (
	// ErrUnknownMessage is returned for an unrecognised message type.
	ErrUnknownMessage = errors.New("unknown message type")
	// ErrUnsupportedVersion is returned when a client speaks another schema.
	ErrUnsupportedVersion = errors.New("unsupported schema version")
	// ErrInvalidPayload wraps payload validation failures.
	ErrInvalidPayload = errors.New("invalid payload")
)

// Validator is implemented by every inbound payload.
type Validator interface {
	Validate() error
}

// Command is a decoded, validated client intent.
type Command interface {
	Validator
	Type() MessageType
}

// Envelope is the frame every message travels in.
type Envelope struct {
	Type    MessageType     `json:"type"`
	Version int             `json:"version,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Target identifies a hero or minion on the wire. For heroes ID may be empty.
type Target struct {
	Kind     targeting.Kind `json:"kind"`
	PlayerID string         `json:"player_id"`
	ID       string         `json:"id,omitempty"`
}

// Validate checks the target is well formed.
func (t *Target) Validate() error {
	if t == nil {
		return nil
	}
	if strings.TrimSpace(t.PlayerID) == "" {
		return errors.New("target player_id is required")
	}
	switch t.Kind {
	case targeting.KindHero:
		if t.ID != "" && t.ID != t.PlayerID {
			return errors.New("hero target id must match player_id")
		}
	case targeting.KindMinion:
		if strings.TrimSpace(t.ID) == "" {
			return errors.New("minion target id is required")
		}
	default:
		return fmt.Errorf("unknown target kind %q", t.Kind)
	}
	return nil
}

// Ref converts the target to an engine reference; nil yields the zero Ref.
func (t *Target) Ref() targeting.Ref {
	if t == nil {
		return targeting.Ref{}
	}
	if t.Kind == targeting.KindHero {
		return targeting.HeroRef(t.PlayerID)
	}
	return targeting.MinionRef(t.PlayerID, t.ID)
}

// TargetOf converts an engine reference to its wire form.
func TargetOf(ref targeting.Ref) Target {
	return Target{Kind: ref.Kind, PlayerID: ref.PlayerID, ID: ref.ID}
}

// Join asks to be seated in a match. An empty MatchID joins the lobby.
type Join struct {
	Name    string `json:"name"`
	Deck    string `json:"deck,omitempty"`
	Hero    string `json:"hero,omitempty"`
	MatchID string `json:"match_id,omitempty"`
}

func (Join) Type() MessageType { return TypeJoin }

// Validate checks the join request.
func (j Join) Validate() error {
	name := strings.TrimSpace(j.Name)
	if name == "" {
		return errors.New("name is required")
	}
	if len(name) > MaxNameLength {
		return fmt.Errorf("name longer than %d characters", MaxNameLength)
	}
	return nil
}

// PlayCard plays the card at CardIndex in hand.
type PlayCard struct {
	CardIndex int     `json:"card_index"`
	Target    *Target `json:"target,omitempty"`
}

func (PlayCard) Type() MessageType { return TypePlayCard }

// Validate checks the play request.
func (p PlayCard) Validate() error {
	if p.CardIndex < 0 {
		return errors.New("card_index must not be negative")
	}
	return p.Target.Validate()
}

// Attack attacks with the minion at AttackerIndex on the board.
type Attack struct {
	AttackerIndex int     `json:"attacker_index"`
	Target        *Target `json:"target"`
}

func (Attack) Type() MessageType { return TypeAttack }

// Validate checks the attack request.
func (a Attack) Validate() error {
	if a.AttackerIndex < 0 {
		return errors.New("attacker_index must not be negative")
	}
	if a.Target == nil {
		return errors.New("target is required")
	}
	return a.Target.Validate()
}

// HeroAttack attacks with the hero's weapon.
type HeroAttack struct {
	Target *Target `json:"target"`
}

func (HeroAttack) Type() MessageType { return TypeHeroAttack }

// Validate checks the hero attack request.
func (h HeroAttack) Validate() error {
	if h.Target == nil {
		return errors.New("target is required")
	}
	return h.Target.Validate()
}

// HeroPower uses the hero power, optionally aimed.
type HeroPower struct {
	Target *Target `json:"target,omitempty"`
}

func (HeroPower) Type() MessageType { return TypeHeroPower }

// Validate checks the hero power request.
func (h HeroPower) Validate() error { return h.Target.Validate() }

// EndTurn passes the turn.
type EndTurn struct{}

func (EndTurn) Type() MessageType { return TypeEndTurn }
func (EndTurn) Validate() error   { return nil }

// Concede forfeits the match.
type Concede struct{}

func (Concede) Type() MessageType { return TypeConcede }
func (Concede) Validate() error   { return nil }

// Ping is a keepalive answered with pong.
type Ping struct{}

func (Ping) Type() MessageType { return TypePing }
func (Ping) Validate() error   { return nil }

// Decode parses and validates one inbound message.
func Decode(data []byte) (Command, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	return env.Command()
}

// Command decodes the envelope payload into its typed, validated command.
func (e Envelope) Command() (Command, error) {
	if e.Version != 0 && e.Version != SchemaVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, e.Version)
	}
	var cmd Command
	switch e.Type {
	case TypeJoin:
		cmd = &Join{}
	case TypePlayCard:
		cmd = &PlayCard{}
	case TypeAttack:
		cmd = &Attack{}
	case TypeHeroAttack:
		cmd = &HeroAttack{}
	case TypeHeroPower:
		cmd = &HeroPower{}
	case TypeEndTurn:
		cmd = &EndTurn{}
	case TypeConcede:
		cmd = &Concede{}
	case TypePing:
		cmd = &Ping{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessage, e.Type)
	}
	if len(e.Payload) > 0 && string(e.Payload) != "null" {
		if err := json.Unmarshal(e.Payload, cmd); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPayload, e.Type, err)
		}
	}
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPayload, e.Type, err)
	}
	return cmd, nil
}

// Encode wraps payload in an envelope of type t at the current version.
func Encode(t MessageType, payload any) ([]byte, error) {
	env := Envelope{Type: t, Version: SchemaVersion}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", t, err)
		}
		env.Payload = raw
	}
	return json.Marshal(env)
}
