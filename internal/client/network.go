// Package client implements the Black Oil game backends used by the REPL:
// an in-process game and a WebSocket connection to a server.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"

	"black-oil/internal/protocol"
)

// ErrNotConnected is returned when a request is made without a connection.
var ErrNotConnected = errors.New("not connected to server")

// NetworkClient handles WebSocket communication with the server.
type NetworkClient struct {
	conn     *websocket.Conn
	sendChan chan *protocol.Message
	done     chan struct{}
	log      *slog.Logger
	mu       sync.Mutex

	pending map[string]chan *protocol.Message

	// OnMessage receives messages that answer no pending request, such as
	// the welcome and updates caused by other clients of the session.
	OnMessage    func(*protocol.Message)
	OnDisconnect func(error)

	connected bool
}

// NewNetworkClient creates a new network client.
func NewNetworkClient(log *slog.Logger) *NetworkClient {
	if log == nil {
		log = slog.Default()
	}
	return &NetworkClient{
		sendChan: make(chan *protocol.Message, 64),
		done:     make(chan struct{}),
		log:      log,
		pending:  make(map[string]chan *protocol.Message),
	}
}

// WebSocketURL builds the endpoint for a server address. Addresses with a
// scheme are honoured; bare host:port uses ws://.
func WebSocketURL(serverAddr string) string {
	addr := strings.TrimSuffix(serverAddr, "/")
	switch {
	case strings.HasPrefix(addr, "wss://"), strings.HasPrefix(addr, "ws://"):
	case strings.HasPrefix(addr, "https://"):
		addr = "wss://" + strings.TrimPrefix(addr, "https://")
	case strings.HasPrefix(addr, "http://"):
		addr = "ws://" + strings.TrimPrefix(addr, "http://")
	default:
		addr = "ws://" + addr
	}
	if !strings.HasSuffix(addr, "/ws") {
		addr += "/ws"
	}
	return addr
}

// Connect establishes a connection to the server.
func (c *NetworkClient) Connect(ctx context.Context, serverAddr string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	url := WebSocketURL(serverAddr)
	c.log.Debug("connecting", "url", url)

	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(dialCtx, url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", url, err)
	}

	c.conn = conn
	c.connected = true
	c.done = make(chan struct{})

	go c.readPump(conn, c.done)
	go c.writePump(conn, c.done)

	c.log.Info("connected", "url", url)
	return nil
}

// Disconnect closes the connection.
func (c *NetworkClient) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return
	}

	c.connected = false
	close(c.done)

	if c.conn != nil {
		c.conn.Close(websocket.StatusNormalClosure, "")
		c.conn = nil
	}
}

// IsConnected returns true if connected to server.
func (c *NetworkClient) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Request sends a message and waits for the reply carrying its ID. An error
// reply is returned as *protocol.ErrorPayload.
func (c *NetworkClient) Request(ctx context.Context, msgType protocol.MessageType, payload any, out any) error {
	msg, err := protocol.NewMessage(msgType, payload)
	if err != nil {
		return err
	}

	reply := make(chan *protocol.Message, 1)
	c.mu.Lock()
	if !c.connected {
		c.mu.Unlock()
		return ErrNotConnected
	}
	c.pending[msg.ID] = reply
	done := c.done
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, msg.ID)
		c.mu.Unlock()
	}()

	select {
	case c.sendChan <- msg:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case resp := <-reply:
		if resp.Type == protocol.TypeError {
			var e protocol.ErrorPayload
			if err := resp.ParsePayload(&e); err != nil {
				return err
			}
			return &e
		}
		if out == nil {
			return nil
		}
		return resp.ParsePayload(out)
	case <-done:
		return ErrNotConnected
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *NetworkClient) dispatch(msg *protocol.Message) {
	c.mu.Lock()
	reply, ok := c.pending[msg.ID]
	c.mu.Unlock()

	if ok {
		reply <- msg
		return
	}
	if c.OnMessage != nil {
		c.OnMessage(msg)
	}
}

// readPump reads messages from the WebSocket.
func (c *NetworkClient) readPump(conn *websocket.Conn, done chan struct{}) {
	var readErr error
	defer func() {
		c.mu.Lock()
		wasConnected := c.connected && c.done == done
		if wasConnected {
			c.connected = false
			close(done)
		}
		c.mu.Unlock()

		if wasConnected && c.OnDisconnect != nil {
			c.OnDisconnect(readErr)
		}
	}()

	conn.SetReadLimit(65536)

	for {
		msgType, data, err := conn.Read(context.Background())
		if err != nil {
			status := websocket.CloseStatus(err)
			if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway {
				readErr = err
				c.log.Warn("websocket read error", "err", err)
			}
			return
		}

		if msgType != websocket.MessageText {
			continue
		}

		var msg protocol.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.log.Warn("failed to unmarshal message", "err", err)
			continue
		}
		c.dispatch(&msg)
	}
}

// writePump writes messages to the WebSocket.
func (c *NetworkClient) writePump(conn *websocket.Conn, done chan struct{}) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return

		case msg := <-c.sendChan:
			data, err := json.Marshal(msg)
			if err != nil {
				c.log.Error("failed to marshal message", "err", err)
				continue
			}

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			err = conn.Write(ctx, websocket.MessageText, data)
			cancel()
			if err != nil {
				c.log.Warn("websocket write error", "err", err)
				return
			}

		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			err := conn.Ping(ctx)
			cancel()
			if err != nil {
				return
			}
		}
	}
}
