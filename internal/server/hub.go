package server

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"black-oil/internal/metrics"
	"black-oil/internal/protocol"
)

// Hub tracks connected clients and the session each one is bound to.
type Hub struct {
	handlers *Handlers
	log      *slog.Logger

	// Registered clients
	clients map[*Client]bool

	// Clients bound to each session
	sessionClients map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	mu sync.RWMutex
}

// NewHub creates a new Hub.
func NewHub(handlers *Handlers, log *slog.Logger) *Hub {
	return &Hub{
		handlers:       handlers,
		log:            log,
		clients:        make(map[*Client]bool),
		sessionClients: make(map[string]map[*Client]bool),
		register:       make(chan *Client),
		unregister:     make(chan *Client),
		done:           make(chan struct{}),
	}
}

// Run processes registrations until Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			metrics.WebSocketClients.Inc()
			h.handlers.sendWelcome(client)

		case client := <-h.unregister:
			h.handleDisconnect(client)

		case <-h.done:
			h.mu.Lock()
			for client := range h.clients {
				client.close()
				delete(h.clients, client)
				metrics.WebSocketClients.Dec()
			}
			h.mu.Unlock()
			return
		}
	}
}

// Stop ends Run and closes every client.
func (h *Hub) Stop() {
	select {
	case <-h.done:
	default:
		close(h.done)
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) handleDisconnect(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	metrics.WebSocketClients.Dec()

	if id := client.sessionID; id != "" {
		if clients, ok := h.sessionClients[id]; ok {
			delete(clients, client)
			if len(clients) == 0 {
				delete(h.sessionClients, id)
			}
		}
	}
	client.close()
}

// Bind attaches a client to a session, detaching it from any previous one.
func (h *Hub) Bind(client *Client, sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.unbindLocked(client)
	if h.sessionClients[sessionID] == nil {
		h.sessionClients[sessionID] = make(map[*Client]bool)
	}
	h.sessionClients[sessionID][client] = true
	client.sessionID = sessionID
}

// Unbind detaches a client from its session.
func (h *Hub) Unbind(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.unbindLocked(client)
}

func (h *Hub) unbindLocked(client *Client) {
	if client.sessionID == "" {
		return
	}
	if clients, ok := h.sessionClients[client.sessionID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.sessionClients, client.sessionID)
		}
	}
	client.sessionID = ""
}

// SessionOf returns the session a client is bound to.
func (h *Hub) SessionOf(client *Client) string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return client.sessionID
}

// DetachSession unbinds every client of a deleted session.
func (h *Hub) DetachSession(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.sessionClients[sessionID] {
		client.sessionID = ""
	}
	delete(h.sessionClients, sessionID)
}

// notifySession sends a message to every client of a session except one.
func (h *Hub) notifySession(sessionID string, except *Client, msgType protocol.MessageType, payload any) {
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.sessionClients[sessionID]))
	for client := range h.sessionClients[sessionID] {
		if client != except {
			targets = append(targets, client)
		}
	}
	h.mu.RUnlock()
	if len(targets) == 0 {
		return
	}

	msg, err := protocol.NewMessage(msgType, payload)
	if err != nil {
		return
	}
	for _, client := range targets {
		client.Send(msg)
	}
}

// Client is a connected WebSocket client.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan *protocol.Message

	sessionID string // guarded by hub.mu

	closeOnce sync.Once
	closed    chan struct{}
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 65536
)

// NewClient creates a new client.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan *protocol.Message, 256),
		closed: make(chan struct{}),
	}
}

// Send queues a message. A client whose queue is full is dropped.
func (c *Client) Send(msg *protocol.Message) {
	select {
	case <-c.closed:
		return
	default:
	}
	select {
	case c.send <- msg:
	case <-c.closed:
	default:
		go c.hub.Unregister(c)
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() { close(c.closed) })
}

// ReadPump reads messages and handles them in arrival order.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Warn("websocket read error", "err", err)
			}
			return
		}

		var msg protocol.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.hub.log.Debug("invalid message", "err", err)
			c.hub.handlers.sendError(c, nil, errInvalidPayload)
			continue
		}
		c.hub.handlers.Handle(c, &msg)
	}
}

// WritePump writes queued messages and keeps the connection alive.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			data, err := json.Marshal(msg)
			if err != nil {
				c.hub.log.Error("failed to marshal message", "type", msg.Type, "err", err)
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.closed:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
