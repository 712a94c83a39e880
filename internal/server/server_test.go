package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/magefree/hearth-server-go/internal/catalogue"
	"github.com/magefree/hearth-server-go/internal/config"
	"github.com/magefree/hearth-server-go/internal/match"
	"github.com/magefree/hearth-server-go/internal/protocol"
	"github.com/magefree/hearth-server-go/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type testServer struct {
	mgr   *match.Manager
	store *repository.MemoryStore
	hub   *Hub
	http  *httptest.Server
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zaptest.NewLogger(t)

	cards, err := catalogue.Default()
	require.NoError(t, err)
	store := repository.NewMemoryStore(10)
	mgr := match.NewManager(cards, store, match.Options{Seed: 7}, logger)

	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(mgr, config.WebSocketConfig{Path: "/ws"}, logger)
	go hub.Run(ctx)

	router := NewRouter(NewHandler(mgr, cards, store, logger), hub, "/ws", logger)
	srv := httptest.NewServer(router)
	t.Cleanup(func() {
		srv.Close()
		cancel()
		mgr.Close()
	})
	return &testServer{mgr: mgr, store: store, hub: hub, http: srv}
}

func (s *testServer) get(t *testing.T, path string, out any) int {
	t.Helper()
	resp, err := http.Get(s.http.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (s *testServer) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(s.http.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, msgType protocol.MessageType, payload any) {
	t.Helper()
	data, err := protocol.Encode(msgType, payload)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, data))
}

// await reads until a message of msgType arrives and decodes its payload.
func await(t *testing.T, conn *websocket.Conn, msgType protocol.MessageType, out any) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var env protocol.Envelope
		require.NoError(t, conn.ReadJSON(&env))
		if env.Type != msgType {
			continue
		}
		if out != nil {
			require.NoError(t, json.Unmarshal(env.Payload, out))
		}
		return
	}
}

// TestHTTPHealth verifies the liveness endpoint.
func TestHTTPHealth(t *testing.T) {
	s := newTestServer(t)
	var body map[string]string
	assert.Equal(t, http.StatusOK, s.get(t, "/healthz", &body))
	assert.Equal(t, "ok", body["status"])
}

// TestHTTPListCards verifies the catalogue listing and its kind filter.
func TestHTTPListCards(t *testing.T) {
	s := newTestServer(t)

	var all []protocol.CardView
	require.Equal(t, http.StatusOK, s.get(t, "/api/cards", &all))
	require.NotEmpty(t, all)

	var weapons []protocol.CardView
	require.Equal(t, http.StatusOK, s.get(t, "/api/cards?kind=weapon", &weapons))
	require.NotEmpty(t, weapons)
	assert.Less(t, len(weapons), len(all))
	for _, w := range weapons {
		assert.Equal(t, "weapon", w.Kind)
		assert.Positive(t, w.Durability)
	}

	assert.Equal(t, http.StatusBadRequest, s.get(t, "/api/cards?kind=hero", nil))
}

// TestHTTPListHeroes verifies every hero class is listed with its power.
func TestHTTPListHeroes(t *testing.T) {
	s := newTestServer(t)
	var heroes []struct {
		Class     string                 `json:"class"`
		HeroPower protocol.HeroPowerView `json:"heroPower"`
	}
	require.Equal(t, http.StatusOK, s.get(t, "/api/heroes", &heroes))
	classes := make(map[string]string)
	for _, h := range heroes {
		classes[h.Class] = h.HeroPower.Name
	}
	assert.Equal(t, "Fireblast", classes["mage"])
}

// TestHTTPMatches verifies match summaries, per-player views and errors.
func TestHTTPMatches(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	assert.Equal(t, http.StatusNotFound, s.get(t, "/api/matches/nope", nil))

	a, err := s.mgr.Join(ctx, protocol.Join{Name: "Jaina"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, s.get(t, "/api/matches/"+a.MatchID+"?token="+a.Token, nil))

	_, err = s.mgr.Join(ctx, protocol.Join{Name: "Rexxar", Hero: "hunter"})
	require.NoError(t, err)

	var list []match.Summary
	require.Equal(t, http.StatusOK, s.get(t, "/api/matches", &list))
	require.Len(t, list, 1)
	assert.Equal(t, "ACTIVE", list[0].Status)
	assert.Equal(t, []string{"Jaina", "Rexxar"}, list[0].Players)
	assert.Equal(t, "Jaina", list[0].Active)

	var state protocol.State
	require.Equal(t, http.StatusOK, s.get(t, "/api/matches/"+a.MatchID+"?token="+a.Token, &state))
	assert.Equal(t, "Jaina", state.Player.Name)
	assert.NotEmpty(t, state.Player.Hand)
	assert.Empty(t, state.Opponent.Hand)

	assert.Equal(t, http.StatusForbidden, s.get(t, "/api/matches/"+a.MatchID+"?token=stranger", nil))
	assert.Equal(t, http.StatusForbidden, s.get(t, "/api/matches/"+a.MatchID+"?token="+a.PlayerID, nil),
		"a public player id does not unlock the hand")
}

// TestHTTPResults verifies recorded results are listed newest first.
func TestHTTPResults(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	require.NoError(t, s.store.Save(ctx, repository.Result{MatchID: "m1", Draw: true, Turns: 3, Reason: "lethal", EndedAt: time.Now().Add(-time.Minute)}))
	require.NoError(t, s.store.Save(ctx, repository.Result{MatchID: "m2", Draw: true, Turns: 5, Reason: "lethal", EndedAt: time.Now()}))

	var results []repository.Result
	require.Equal(t, http.StatusOK, s.get(t, "/api/results?limit=1", &results))
	require.Len(t, results, 1)
	assert.Equal(t, "m2", results[0].MatchID)
}

// TestWebSocketRequiresJoin verifies intents before a join are refused.
func TestWebSocketRequiresJoin(t *testing.T) {
	s := newTestServer(t)
	conn := s.dial(t)

	send(t, conn, protocol.TypeEndTurn, nil)
	var e protocol.Error
	await(t, conn, protocol.TypeError, &e)
	assert.Contains(t, e.Message, "join")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	await(t, conn, protocol.TypeError, &e)
	assert.NotEmpty(t, e.Message)

	send(t, conn, protocol.TypePing, nil)
	await(t, conn, protocol.TypePong, nil)
}

// TestWebSocketMatch verifies two clients can join, pass turns and finish.
func TestWebSocketMatch(t *testing.T) {
	s := newTestServer(t)
	alice, bob := s.dial(t), s.dial(t)

	send(t, alice, protocol.TypeJoin, protocol.Join{Name: "Jaina"})
	var ja protocol.Joined
	await(t, alice, protocol.TypeJoined, &ja)
	assert.True(t, ja.Waiting)
	assert.NotEmpty(t, ja.Token)
	assert.NotEqual(t, ja.PlayerID, ja.Token)

	send(t, bob, protocol.TypeJoin, protocol.Join{Name: "Garrosh", Hero: "warrior"})
	var jb protocol.Joined
	await(t, bob, protocol.TypeJoined, &jb)
	assert.False(t, jb.Waiting)
	assert.Equal(t, ja.MatchID, jb.MatchID)

	var sa, sb protocol.State
	await(t, alice, protocol.TypeState, &sa)
	await(t, bob, protocol.TypeState, &sb)
	require.NotEqual(t, sa.YourTurn, sb.YourTurn)

	first, second := alice, bob
	if sb.YourTurn {
		first, second = bob, alice
	}

	send(t, second, protocol.TypeEndTurn, nil)
	var e protocol.Error
	await(t, second, protocol.TypeError, &e)
	assert.Contains(t, e.Message, "not your turn")

	send(t, first, protocol.TypeEndTurn, nil)
	var next protocol.State
	for next.Turn != 2 {
		await(t, second, protocol.TypeState, &next)
	}
	assert.True(t, next.YourTurn)

	send(t, first, protocol.TypeConcede, nil)
	var over protocol.GameOver
	await(t, first, protocol.TypeGameOver, &over)
	assert.Equal(t, protocol.ResultDefeat, over.Result)
	await(t, second, protocol.TypeGameOver, &over)
	assert.Equal(t, protocol.ResultVictory, over.Result)

	require.Eventually(t, func() bool {
		results, err := s.store.Recent(context.Background(), 10)
		return err == nil && len(results) == 1 && results[0].Reason == "concede"
	}, 2*time.Second, 10*time.Millisecond)
}

// TestWebSocketDisconnectConcedes verifies dropping the connection forfeits.
func TestWebSocketDisconnectConcedes(t *testing.T) {
	s := newTestServer(t)
	alice, bob := s.dial(t), s.dial(t)

	send(t, alice, protocol.TypeJoin, protocol.Join{Name: "Jaina"})
	await(t, alice, protocol.TypeJoined, nil)
	send(t, bob, protocol.TypeJoin, protocol.Join{Name: "Uther", Hero: "paladin"})
	var jb protocol.Joined
	await(t, bob, protocol.TypeJoined, &jb)

	require.NoError(t, alice.Close())

	var over protocol.GameOver
	await(t, bob, protocol.TypeGameOver, &over)
	assert.Equal(t, protocol.ResultVictory, over.Result)
	assert.Equal(t, jb.PlayerID, over.WinnerID)
}
