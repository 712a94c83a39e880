package protocol

import (
	"fmt"

	"github.com/magefree/hearth-server-go/internal/game"
)

// Result values carried by a game_over message.
const (
	ResultVictory = "victory"
	ResultDefeat  = "defeat"
	ResultDraw    = "draw"
)

// DefaultLogLines is how many log entries a snapshot carries by default.
const DefaultLogLines = 10

// MinionView is a board minion as seen by either player.
type MinionView struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Attack    int      `json:"attack"`
	Health    int      `json:"health"`
	MaxHealth int      `json:"maxHealth"`
	Keywords  []string `json:"keywords"`
	CanAttack bool     `json:"canAttack"`
}

// CardView describes a card definition, optionally bound to a hand instance.
type CardView struct {
	ID             string   `json:"id,omitempty"`
	Name           string   `json:"name"`
	Kind           string   `json:"kind"`
	Cost           int      `json:"cost"`
	Rarity         string   `json:"rarity"`
	Description    string   `json:"description,omitempty"`
	Attack         int      `json:"attack,omitempty"`
	Health         int      `json:"health,omitempty"`
	Durability     int      `json:"durability,omitempty"`
	Keywords       []string `json:"keywords,omitempty"`
	TargetClass    string   `json:"targetClass,omitempty"`
	RequiresTarget bool     `json:"requiresTarget,omitempty"`
}

// WeaponView is an equipped weapon.
type WeaponView struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Attack     int    `json:"attack"`
	Durability int    `json:"durability"`
}

// HeroPowerView is a hero power and whether it is still available.
type HeroPowerView struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Cost        int    `json:"cost"`
	TargetClass string `json:"targetClass,omitempty"`
	Used        bool   `json:"used"`
}

// PlayerView is one side of the table. Hand is only filled for the viewer.
type PlayerView struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Health        int            `json:"health"`
	MaxHealth     int            `json:"maxHealth"`
	Armor         int            `json:"armor"`
	Mana          int            `json:"mana"`
	MaxMana       int            `json:"maxMana"`
	TemporaryMana int            `json:"temporaryMana,omitempty"`
	Board         []MinionView   `json:"board"`
	Hand          []CardView     `json:"hand,omitempty"`
	HandCount     int            `json:"handCount"`
	DeckSize      int            `json:"deckSize"`
	Weapon        *WeaponView    `json:"weapon,omitempty"`
	HeroPower     *HeroPowerView `json:"heroPower,omitempty"`
}

// State is the per-viewer snapshot pushed after every accepted operation.
type State struct {
	Version  int        `json:"version"`
	MatchID  string     `json:"matchId"`
	Player   PlayerView `json:"player"`
	Opponent PlayerView `json:"opponent"`
	Turn     int        `json:"turn"`
	YourTurn bool       `json:"yourTurn"`
	Phase    string     `json:"phase"`
	Log      []string   `json:"log"`
}

// GameOver is the terminal message for one viewer.
type GameOver struct {
	MatchID  string `json:"matchId"`
	Result   string `json:"result"`
	WinnerID string `json:"winnerId,omitempty"`
	Turns    int    `json:"turns"`
}

// Joined confirms a seat. Token is the seat's secret credential and is only
// ever sent to the player who owns it.
type Joined struct {
	MatchID  string `json:"matchId,omitempty"`
	PlayerID string `json:"playerId"`
	Token    string `json:"token,omitempty"`
	Waiting  bool   `json:"waiting"`
}

// Error reports a rejected message.
type Error struct {
	Message string `json:"message"`
}

// BuildState renders g from the point of view of viewerID, redacting the
// opponent's hand to a count and the opponent's draws in the log.
func BuildState(matchID string, g *game.Game, viewerID string, logLines int) (*State, error) {
	me := g.Player(viewerID)
	if me == nil {
		return nil, fmt.Errorf("player %q is not seated in match %s", viewerID, matchID)
	}
	if logLines <= 0 {
		logLines = DefaultLogLines
	}
	active := g.ActivePlayer()
	return &State{
		Version:  SchemaVersion,
		MatchID:  matchID,
		Player:   viewOf(me, true),
		Opponent: viewOf(g.Opponent(me), false),
		Turn:     g.TurnCount(),
		YourTurn: !g.IsOver() && active != nil && active.ID == me.ID,
		Phase:    g.Phase().String(),
		Log:      g.RecentLogFor(me.ID, logLines),
	}, nil
}

// BuildGameOver renders the outcome for viewerID.
func BuildGameOver(matchID string, g *game.Game, viewerID string) GameOver {
	out := GameOver{MatchID: matchID, Result: ResultDraw, Turns: g.TurnCount()}
	if w := g.Winner(); w != nil {
		out.WinnerID = w.ID
		if w.ID == viewerID {
			out.Result = ResultVictory
		} else {
			out.Result = ResultDefeat
		}
	}
	return out
}

func viewOf(p *game.PlayerState, owner bool) PlayerView {
	v := PlayerView{
		ID:            p.ID,
		Name:          p.Name,
		Health:        p.Health(),
		MaxHealth:     p.MaxHealth(),
		Armor:         p.Armor(),
		Mana:          p.Mana(),
		MaxMana:       p.MaxMana(),
		TemporaryMana: p.TemporaryMana(),
		Board:         make([]MinionView, 0, p.BoardSize()),
		HandCount:     p.HandSize(),
		DeckSize:      p.DeckSize(),
	}
	for _, m := range p.Board() {
		v.Board = append(v.Board, MinionOf(m))
	}
	if owner {
		v.Hand = make([]CardView, 0, p.HandSize())
		for _, c := range p.Hand() {
			card := CardOf(c.Def)
			card.ID = c.ID
			v.Hand = append(v.Hand, card)
		}
	}
	if w := p.Weapon(); w != nil {
		v.Weapon = &WeaponView{ID: w.ID, Name: w.Name, Attack: w.Attack, Durability: w.Durability}
	}
	if hp := p.HeroPower(); hp != nil {
		v.HeroPower = &HeroPowerView{
			Name:        hp.Name,
			Description: hp.Description,
			Cost:        hp.Cost,
			TargetClass: string(hp.TargetClass),
			Used:        p.HeroPowerUsed(),
		}
	}
	return v
}

// MinionOf renders a live minion.
func MinionOf(m *game.Minion) MinionView {
	return MinionView{
		ID:        m.ID,
		Name:      m.Name,
		Attack:    m.Attack,
		Health:    m.Health,
		MaxHealth: m.MaxHealth,
		Keywords:  m.Keywords.Names(),
		CanAttack: m.CanAttackNow(),
	}
}

// CardOf renders a card definition.
func CardOf(def *game.CardDefinition) CardView {
	v := CardView{
		Name:           def.Name,
		Kind:           string(def.Kind()),
		Cost:           def.ManaCost,
		Rarity:         string(def.Rarity),
		Description:    def.Description,
		TargetClass:    string(def.TargetClass()),
		RequiresTarget: def.RequiresTarget(),
	}
	switch {
	case def.Minion != nil:
		v.Attack = def.Minion.Attack
		v.Health = def.Minion.Health
		v.Keywords = def.Minion.Keywords.Names()
	case def.Weapon != nil:
		v.Attack = def.Weapon.Attack
		v.Durability = def.Weapon.Durability
	}
	return v
}
