package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/magefree/hearth-server-go/internal/game/targeting"
	"github.com/magefree/hearth-server-go/internal/protocol"
)

var errQuit = errors.New("quit")

const usage = `commands:
  play <hand#> [target]     play a card from hand
  attack <board#> <target>  attack with a minion
  hero <target>             attack with your hero
  power [target]            use your hero power
  end                       end your turn
  concede                   give up
  quit                      leave
targets: me, them, me:<board#>, them:<board#>`

// parseCommand turns one input line into a protocol message. Board and hand
// indexes are resolved against the last state received.
func parseCommand(line string, state *protocol.State) (protocol.MessageType, any, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil, errors.New("empty command")
	}
	args := fields[1:]
	switch fields[0] {
	case "quit", "exit":
		return "", nil, errQuit
	case "end":
		return protocol.TypeEndTurn, nil, nil
	case "concede":
		return protocol.TypeConcede, nil, nil
	case "play":
		if len(args) < 1 {
			return "", nil, errors.New("usage: play <hand#> [target]")
		}
		idx, err := index(args[0])
		if err != nil {
			return "", nil, err
		}
		target, err := optionalTarget(args[1:], state)
		if err != nil {
			return "", nil, err
		}
		return protocol.TypePlayCard, protocol.PlayCard{CardIndex: idx, Target: target}, nil
	case "attack":
		if len(args) != 2 {
			return "", nil, errors.New("usage: attack <board#> <target>")
		}
		idx, err := index(args[0])
		if err != nil {
			return "", nil, err
		}
		target, err := parseTarget(args[1], state)
		if err != nil {
			return "", nil, err
		}
		return protocol.TypeAttack, protocol.Attack{AttackerIndex: idx, Target: target}, nil
	case "hero":
		if len(args) != 1 {
			return "", nil, errors.New("usage: hero <target>")
		}
		target, err := parseTarget(args[0], state)
		if err != nil {
			return "", nil, err
		}
		return protocol.TypeHeroAttack, protocol.HeroAttack{Target: target}, nil
	case "power":
		target, err := optionalTarget(args, state)
		if err != nil {
			return "", nil, err
		}
		return protocol.TypeHeroPower, protocol.HeroPower{Target: target}, nil
	default:
		return "", nil, fmt.Errorf("unknown command %q", fields[0])
	}
}

func index(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("bad index %q", s)
	}
	return n, nil
}

func optionalTarget(args []string, state *protocol.State) (*protocol.Target, error) {
	if len(args) == 0 {
		return nil, nil
	}
	return parseTarget(args[0], state)
}

func parseTarget(s string, state *protocol.State) (*protocol.Target, error) {
	if state == nil {
		return nil, errors.New("no game state yet")
	}
	side, slot, hasSlot := strings.Cut(s, ":")
	var view protocol.PlayerView
	switch side {
	case "me":
		view = state.Player
	case "them":
		view = state.Opponent
	default:
		return nil, fmt.Errorf("bad target %q", s)
	}
	if !hasSlot {
		return &protocol.Target{Kind: targeting.KindHero, PlayerID: view.ID}, nil
	}
	idx, err := index(slot)
	if err != nil {
		return nil, err
	}
	if idx >= len(view.Board) {
		return nil, fmt.Errorf("no minion at %s", s)
	}
	return &protocol.Target{Kind: targeting.KindMinion, PlayerID: view.ID, ID: view.Board[idx].ID}, nil
}

func render(s *protocol.State) string {
	var b strings.Builder
	side := func(label string, p protocol.PlayerView) {
		fmt.Fprintf(&b, "%s %s  hp %d/%d", label, p.Name, p.Health, p.MaxHealth)
		if p.Armor > 0 {
			fmt.Fprintf(&b, " +%d armor", p.Armor)
		}
		fmt.Fprintf(&b, "  mana %d/%d  deck %d  hand %d", p.Mana, p.MaxMana, p.DeckSize, p.HandCount)
		if p.Weapon != nil {
			fmt.Fprintf(&b, "  weapon %s %d/%d", p.Weapon.Name, p.Weapon.Attack, p.Weapon.Durability)
		}
		b.WriteString("\n")
		for i, m := range p.Board {
			fmt.Fprintf(&b, "  [%d] %s %d/%d", i, m.Name, m.Attack, m.Health)
			if len(m.Keywords) > 0 {
				fmt.Fprintf(&b, " (%s)", strings.Join(m.Keywords, ", "))
			}
			b.WriteString("\n")
		}
	}
	fmt.Fprintf(&b, "--- turn %d ---\n", s.Turn)
	side("them", s.Opponent)
	side("you ", s.Player)
	for i, c := range s.Player.Hand {
		fmt.Fprintf(&b, "  hand %d: %s (%d)", i, c.Name, c.Cost)
		if c.Description != "" {
			fmt.Fprintf(&b, " - %s", c.Description)
		}
		b.WriteString("\n")
	}
	for _, line := range s.Log {
		fmt.Fprintf(&b, "  > %s\n", line)
	}
	if s.YourTurn {
		b.WriteString("your turn\n")
	}
	return b.String()
}
