package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/lox/rockpaperscissors/internal/game"
	"github.com/lox/rockpaperscissors/internal/server" // Reuse message types
	"github.com/lox/rockpaperscissors/internal/sessionid"
	"github.com/lox/rockpaperscissors/rps"
)

// ErrNotConnected is returned when sending before Connect or after Disconnect
var ErrNotConnected = errors.New("not connected")

// Client is a WebSocket client playing one remote game session
type Client struct {
	serverURL string
	conn      *websocket.Conn
	send      chan *server.Message
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.RWMutex
	connected bool
	welcome   server.WelcomeData
	closeOnce sync.Once

	// Event handlers
	eventHandlers map[server.MessageType][]handlerEntry
	nextHandlerID uint64
}

type handlerEntry struct {
	id uint64
	fn EventHandler
}

// EventHandler handles an incoming message. Handlers run one at a time in
// arrival order and must not block.
type EventHandler func(*server.Message)

// NewClient creates a new WebSocket client
func NewClient(serverURL string, logger *log.Logger) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	return &Client{
		serverURL:     serverURL,
		send:          make(chan *server.Message, 64),
		logger:        logger.WithPrefix("client"),
		ctx:           ctx,
		cancel:        cancel,
		eventHandlers: make(map[server.MessageType][]handlerEntry),
	}
}

// WebSocketURL converts a server URL into the /ws endpoint for mode
func WebSocketURL(serverURL string, mode game.Mode) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}

	// Convert http/https to ws/wss
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}

	u.Path = "/ws"
	q := url.Values{}
	if mode != "" {
		q.Set("mode", mode.String())
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Connect dials the server and waits for the welcome message
func (c *Client) Connect(ctx context.Context, mode game.Mode) error {
	wsURL, err := WebSocketURL(c.serverURL, mode)
	if err != nil {
		return err
	}
	c.logger.Info("Connecting to server", "url", wsURL)

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	var msg server.Message
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetReadDeadline(deadline)
	}
	if err := conn.ReadJSON(&msg); err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to read welcome: %w", err)
	}
	if msg.Type != server.MessageTypeWelcome {
		_ = conn.Close()
		return fmt.Errorf("expected welcome, got %s", msg.Type)
	}
	var welcome server.WelcomeData
	if err := json.Unmarshal(msg.Data, &welcome); err != nil {
		_ = conn.Close()
		return fmt.Errorf("invalid welcome: %w", err)
	}
	if _, err := sessionid.Parse(welcome.SessionID); err != nil {
		_ = conn.Close()
		return fmt.Errorf("invalid welcome: %w", err)
	}
	_ = conn.SetReadDeadline(time.Time{})

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.welcome = welcome
	c.mu.Unlock()

	go c.readPump()
	go c.writePump()

	c.logger.Info("Connected to server", "session", welcome.SessionID, "mode", welcome.Mode)
	return nil
}

// Disconnect closes the WebSocket connection
func (c *Client) Disconnect() error {
	c.closeOnce.Do(func() {
		c.cancel()

		c.mu.Lock()
		defer c.mu.Unlock()

		if c.conn != nil {
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			_ = c.conn.Close()
			c.connected = false
		}

		c.logger.Info("Disconnected from server")
	})
	return nil
}

// Done is closed once the client has disconnected
func (c *Client) Done() <-chan struct{} {
	return c.ctx.Done()
}

// IsConnected returns whether the client is connected
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// Welcome returns the session details sent by the server
func (c *Client) Welcome() server.WelcomeData {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.welcome
}

// SendMessage sends a message to the server
func (c *Client) SendMessage(msg *server.Message) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return ErrNotConnected
	default:
		return fmt.Errorf("send buffer full")
	}
}

// Pick sends the user's sign. Rejections arrive later as error messages.
func (c *Client) Pick(choice rps.Choice) error {
	if !choice.Valid() {
		return fmt.Errorf("pick: %w: %d", rps.ErrInvalidChoice, uint8(choice))
	}

	msg, err := server.NewMessage(server.MessageTypePick, server.PickData{Choice: choice.String()})
	if err != nil {
		return err
	}
	return c.SendMessage(msg)
}

// Reset asks the server to zero the score
func (c *Client) Reset() error {
	msg, err := server.NewMessage(server.MessageTypeReset, struct{}{})
	if err != nil {
		return err
	}
	return c.SendMessage(msg)
}

// readPump handles incoming messages from the server
func (c *Client) readPump() {
	defer func() {
		c.mu.Lock()
		c.connected = false
		c.mu.Unlock()
		c.cancel()
	}()

	for {
		var msg server.Message
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}

		c.logger.Debug("Received message", "type", msg.Type)
		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the server
func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second) // Ping interval
	defer ticker.Stop()

	for {
		select {
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				_ = c.conn.Close()
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// handleMessage dispatches messages to registered handlers
func (c *Client) handleMessage(msg *server.Message) {
	c.mu.RLock()
	handlers := append([]handlerEntry(nil), c.eventHandlers[msg.Type]...)
	c.mu.RUnlock()

	if len(handlers) == 0 {
		c.logger.Debug("No handler for message type", "type", msg.Type)
		return
	}
	for _, h := range handlers {
		h.fn(msg)
	}
}

// AddEventHandler adds an event handler for a specific message type and
// returns a function that removes it.
func (c *Client) AddEventHandler(messageType server.MessageType, handler EventHandler) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextHandlerID++
	id := c.nextHandlerID
	c.eventHandlers[messageType] = append(c.eventHandlers[messageType], handlerEntry{id: id, fn: handler})

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()

		handlers := c.eventHandlers[messageType]
		for i, h := range handlers {
			if h.id == id {
				c.eventHandlers[messageType] = append(handlers[:i:i], handlers[i+1:]...)
				return
			}
		}
	}
}

// OnState registers fn for every state update, already decoded. The
// returned function unregisters it.
func (c *Client) OnState(fn func(server.StateData, game.Snapshot)) func() {
	return c.AddEventHandler(server.MessageTypeState, func(msg *server.Message) {
		var data server.StateData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.logger.Warn("Invalid state message", "error", err)
			return
		}
		snap, err := server.SnapshotFromState(data)
		if err != nil {
			c.logger.Warn("Invalid state message", "error", err)
			return
		}
		fn(data, snap)
	})
}

// OnError registers fn for every error reported by the server
func (c *Client) OnError(fn func(error)) func() {
	return c.AddEventHandler(server.MessageTypeError, func(msg *server.Message) {
		var data server.ErrorData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.logger.Warn("Invalid error message", "error", err)
			return
		}
		fn(&RemoteError{Code: data.Code, Message: data.Message})
	})
}

// RemoteError is an error message received from the server. It unwraps to
// the matching local sentinel so callers can use errors.Is.
type RemoteError struct {
	Code    string
	Message string
}

func (e *RemoteError) Error() string {
	return e.Message
}

func (e *RemoteError) Unwrap() error {
	switch e.Code {
	case server.ErrorCodeRoundInProgress:
		return game.ErrRoundInProgress
	case server.ErrorCodeSessionClosed:
		return game.ErrSessionClosed
	case server.ErrorCodeInvalidChoice:
		return rps.ErrInvalidChoice
	default:
		return nil
	}
}
