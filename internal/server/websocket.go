package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/magefree/hearth-server-go/internal/config"
	"github.com/magefree/hearth-server-go/internal/match"
	"github.com/magefree/hearth-server-go/internal/protocol"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	commandTimeout = 10 * time.Second
)

type delivery struct {
	client   *Client
	playerID string
	data     []byte
}

// binding attaches a joined player to its client; joined is sent first.
type binding struct {
	client   *Client
	playerID string
	joined   []byte
}

// Hub routes server messages to websocket clients. Its maps are owned by the
// Run goroutine.
type Hub struct {
	manager        *match.Manager
	logger         *zap.Logger
	upgrader       websocket.Upgrader
	sendBuffer     int
	maxMessageSize int64

	clients map[*Client]string
	players map[string]*Client

	register   chan *Client
	unregister chan *Client
	bind       chan binding
	outbox     chan delivery
	done       chan struct{}
}

// NewHub creates a hub and installs it as the manager's notifier.
func NewHub(mgr *match.Manager, cfg config.WebSocketConfig, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = 256
	}
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = 64 * 1024
	}
	h := &Hub{
		manager: mgr,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		sendBuffer:     cfg.SendBuffer,
		maxMessageSize: cfg.MaxMessageSize,
		clients:        make(map[*Client]string),
		players:        make(map[string]*Client),
		register:       make(chan *Client),
		unregister:     make(chan *Client),
		bind:           make(chan binding),
		outbox:         make(chan delivery),
		done:           make(chan struct{}),
	}
	mgr.SetNotifier(h)
	return h
}

// Run routes messages until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				close(client.send)
			}
			h.clients = map[*Client]string{}
			h.players = map[string]*Client{}
			return

		case client := <-h.register:
			h.clients[client] = ""
			h.logger.Debug("websocket client registered", zap.String("remote", client.conn.RemoteAddr().String()))

		case b := <-h.bind:
			if _, ok := h.clients[b.client]; !ok {
				continue
			}
			h.clients[b.client] = b.playerID
			h.players[b.playerID] = b.client
			select {
			case b.client.send <- b.joined:
			default:
				h.drop(b.client, b.playerID)
			}

		case client := <-h.unregister:
			if playerID, ok := h.clients[client]; ok {
				h.drop(client, playerID)
				h.logger.Debug("websocket client unregistered", zap.String("player_id", playerID))
			}

		case d := <-h.outbox:
			client := d.client
			if client == nil {
				client = h.players[d.playerID]
			}
			playerID, ok := h.clients[client]
			if client == nil || !ok {
				continue
			}
			select {
			case client.send <- d.data:
			default:
				h.logger.Warn("websocket client too slow, dropping", zap.String("player_id", playerID))
				h.drop(client, playerID)
			}
		}
	}
}

func (h *Hub) drop(client *Client, playerID string) {
	delete(h.clients, client)
	if playerID != "" && h.players[playerID] == client {
		delete(h.players, playerID)
	}
	close(client.send)
}

// Notify implements match.Notifier.
func (h *Hub) Notify(playerID string, msgType protocol.MessageType, payload any) {
	data, err := protocol.Encode(msgType, payload)
	if err != nil {
		h.logger.Error("failed to encode message", zap.String("type", string(msgType)), zap.Error(err))
		return
	}
	h.enqueue(delivery{playerID: playerID, data: data})
}

func (h *Hub) reply(client *Client, msgType protocol.MessageType, payload any) {
	data, err := protocol.Encode(msgType, payload)
	if err != nil {
		h.logger.Error("failed to encode message", zap.String("type", string(msgType)), zap.Error(err))
		return
	}
	h.enqueue(delivery{client: client, data: data})
}

func (h *Hub) enqueue(d delivery) {
	select {
	case h.outbox <- d:
	case <-h.done:
	}
}

// ServeWS upgrades the request and starts the client's pumps.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	client := &Client{hub: h, conn: conn, send: make(chan []byte, h.sendBuffer)}
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}
	go client.writePump()
	go client.readPump()
}

// Client is one websocket connection. playerID, token and matchID are owned
// by readPump.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	playerID string
	token    string
	matchID  string
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
		if c.playerID != "" {
			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()
			if err := c.hub.manager.Leave(ctx, c.playerID); err != nil && !errors.Is(err, match.ErrNotSeated) {
				c.hub.logger.Debug("leave after disconnect", zap.String("player_id", c.playerID), zap.Error(err))
			}
		}
	}()

	c.conn.SetReadLimit(c.hub.maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Debug("websocket read failed", zap.String("player_id", c.playerID), zap.Error(err))
			}
			return
		}
		c.handle(message)
	}
}

func (c *Client) handle(message []byte) {
	cmd, err := protocol.Decode(message)
	if err != nil {
		c.fail(err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	switch req := cmd.(type) {
	case *protocol.Ping:
		c.hub.reply(c, protocol.TypePong, nil)
	case *protocol.Join:
		if c.playerID != "" {
			c.fail(errors.New("already joined"))
			return
		}
		ticket, err := c.hub.manager.Join(ctx, *req)
		if err != nil {
			c.fail(err)
			return
		}
		c.playerID, c.token, c.matchID = ticket.PlayerID, ticket.Token, ticket.MatchID
		joined, err := protocol.Encode(protocol.TypeJoined, protocol.Joined{
			MatchID:  ticket.MatchID,
			PlayerID: ticket.PlayerID,
			Token:    ticket.Token,
			Waiting:  ticket.Waiting,
		})
		if err != nil {
			c.fail(err)
			return
		}
		select {
		case c.hub.bind <- binding{client: c, playerID: ticket.PlayerID, joined: joined}:
		case <-c.hub.done:
			return
		}
		// The opening state may have been pushed before this client was bound.
		if state, err := c.hub.manager.Snapshot(ticket.MatchID, ticket.Token); err == nil {
			c.hub.reply(c, protocol.TypeState, state)
		}
	default:
		if c.playerID == "" {
			c.fail(errors.New("join a match first"))
			return
		}
		if err := c.hub.manager.Submit(ctx, c.matchID, c.token, cmd); err != nil {
			c.fail(err)
		}
	}
}

func (c *Client) fail(err error) {
	c.hub.reply(c, protocol.TypeError, protocol.Error{Message: err.Error()})
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
