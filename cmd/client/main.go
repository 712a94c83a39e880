package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/magefree/hearth-server-go/internal/protocol"
	"go.uber.org/zap"
)

var (
	serverURL = flag.String("server", "ws://localhost:8080/ws", "websocket endpoint")
	name      = flag.String("name", "Player", "player name")
	deck      = flag.String("deck", "", "deck kind (starter, random, aggro, control)")
	hero      = flag.String("hero", "", "hero class")
	matchID   = flag.String("match", "", "join a specific match")
)

type session struct {
	conn   *websocket.Conn
	logger *zap.Logger

	mu    sync.Mutex
	state *protocol.State
}

func main() {
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	conn, _, err := websocket.DefaultDialer.Dial(*serverURL, nil)
	if err != nil {
		logger.Fatal("failed to connect", zap.String("server", *serverURL), zap.Error(err))
	}
	defer conn.Close()

	s := &session{conn: conn, logger: logger}
	if err := s.send(protocol.TypeJoin, protocol.Join{Name: *name, Deck: *deck, Hero: *hero, MatchID: *matchID}); err != nil {
		logger.Fatal("failed to join", zap.Error(err))
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.listen()
	}()

	fmt.Println(usage)
	input := bufio.NewScanner(os.Stdin)
	for input.Scan() {
		s.mu.Lock()
		state := s.state
		s.mu.Unlock()

		msgType, payload, err := parseCommand(input.Text(), state)
		if errors.Is(err, errQuit) {
			break
		}
		if err != nil {
			fmt.Println(err)
			continue
		}
		if err := s.send(msgType, payload); err != nil {
			logger.Error("failed to send", zap.Error(err))
			break
		}
	}

	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	<-done
}

func (s *session) send(t protocol.MessageType, payload any) error {
	data, err := protocol.Encode(t, payload)
	if err != nil {
		return err
	}
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

func (s *session) listen() {
	for {
		var env protocol.Envelope
		if err := s.conn.ReadJSON(&env); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn("connection lost", zap.Error(err))
			}
			return
		}
		switch env.Type {
		case protocol.TypeJoined:
			var j protocol.Joined
			if s.decode(env, &j) {
				if j.Waiting {
					fmt.Printf("seated in match %s, waiting for an opponent\n", j.MatchID)
				} else {
					fmt.Printf("seated in match %s\n", j.MatchID)
				}
			}
		case protocol.TypeState:
			var st protocol.State
			if s.decode(env, &st) {
				s.mu.Lock()
				s.state = &st
				s.mu.Unlock()
				fmt.Print(render(&st))
			}
		case protocol.TypeGameOver:
			var over protocol.GameOver
			if s.decode(env, &over) {
				fmt.Printf("game over after %d turns: %s\n", over.Turns, over.Result)
			}
		case protocol.TypeError:
			var e protocol.Error
			if s.decode(env, &e) {
				fmt.Printf("error: %s\n", e.Message)
			}
		}
	}
}

func (s *session) decode(env protocol.Envelope, out any) bool {
	if err := json.Unmarshal(env.Payload, out); err != nil {
		s.logger.Warn("malformed message", zap.String("type", string(env.Type)), zap.Error(err))
		return false
	}
	return true
}
