package server

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/lox/rockpaperscissors/internal/game"
	"github.com/lox/rockpaperscissors/rps"
)

// Connection represents a WebSocket connection to a browser or terminal
// client. Every connection plays its own game.Session.
type Connection struct {
	conn      *websocket.Conn
	send      chan *Message
	id        string
	session   *game.Session
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// NewConnection creates a new connection wrapper and subscribes it to the
// session's events
func NewConnection(conn *websocket.Conn, id string, session *game.Session, logger *log.Logger) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	c := &Connection{
		conn:    conn,
		send:    make(chan *Message, 256),
		id:      id,
		session: session,
		logger:  logger.WithPrefix("conn").With("session", id),
		ctx:     ctx,
		cancel:  cancel,
	}
	session.Subscribe(c)
	return c
}

// ID returns the session id announced in the welcome message
func (c *Connection) ID() string {
	return c.id
}

// Session returns the game session owned by this connection
func (c *Connection) Session() *game.Session {
	return c.session
}

// Done is closed once the connection has shut down
func (c *Connection) Done() <-chan struct{} {
	return c.ctx.Done()
}

// Start sends the welcome and initial state, then begins handling the
// connection
func (c *Connection) Start() {
	_ = c.sendData(MessageTypeWelcome, NewWelcomeData(c.id, c.session.Mode(), c.session.Timing()))
	c.sendState(StateFromSnapshot(c.session.Snapshot()))

	go c.writePump()
	go c.readPump()
}

// Close closes the connection. It never touches the session, because it
// can be reached from OnEvent while the session lock is held.
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		err = c.conn.Close()
	})
	return err
}

// OnEvent implements game.EventSubscriber
func (c *Connection) OnEvent(event game.GameEvent) {
	c.sendState(StateFromEvent(event))
}

// SendMessage queues a message for the client without blocking
func (c *Connection) SendMessage(msg *Message) error {
	select {
	case <-c.ctx.Done():
		return ErrConnectionClosed
	default:
	}

	select {
	case c.send <- msg:
		return nil
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		_ = c.Close()
		return ErrConnectionClosed
	}
}

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096
)

var (
	ErrConnectionClosed = websocket.ErrCloseSent
)

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}

		msg, err := messageValidator.ValidateMessage(raw)
		if err != nil {
			c.rejectMessage(err)
			continue
		}
		c.handleMessage(msg)
	}
}

// rejectMessage reports a message that failed schema validation
func (c *Connection) rejectMessage(err error) {
	c.logger.Debug("Rejected message", "error", err)
	if errors.Is(err, ErrUnknownMessageType) {
		c.sendError(ErrorCodeUnknownType, err.Error())
		return
	}
	c.sendError(ErrorCodeInvalidMessage, err.Error())
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		}
	}
}

// handleMessage processes incoming messages from the client
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("Received message", "type", msg.Type)

	switch msg.Type {
	case MessageTypePick:
		var data PickData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError(ErrorCodeInvalidMessage, "Failed to parse pick data")
			return
		}
		c.handlePick(data)

	case MessageTypeReset:
		c.handleReset()

	default:
		c.sendError(ErrorCodeUnknownType, "Unknown message type: "+msg.Type.String())
	}
}

func (c *Connection) handlePick(data PickData) {
	choice, err := rps.ParseChoice(data.Choice)
	if err != nil {
		c.sendError(ErrorCodeInvalidChoice, err.Error())
		return
	}

	if err := c.session.Pick(choice); err != nil {
		c.sendSessionError(err)
		return
	}
	// State updates arrive through OnEvent
}

func (c *Connection) handleReset() {
	if err := c.session.Reset(); err != nil {
		c.sendSessionError(err)
	}
}

func (c *Connection) sendSessionError(err error) {
	switch {
	case errors.Is(err, game.ErrRoundInProgress):
		c.sendError(ErrorCodeRoundInProgress, err.Error())
	case errors.Is(err, game.ErrSessionClosed):
		c.sendError(ErrorCodeSessionClosed, err.Error())
	case errors.Is(err, rps.ErrInvalidChoice):
		c.sendError(ErrorCodeInvalidChoice, err.Error())
	default:
		c.logger.Error("Session rejected input", "error", err)
		c.sendError(ErrorCodeInvalidMessage, err.Error())
	}
}

func (c *Connection) sendState(state StateData) {
	_ = c.sendData(MessageTypeState, state)
}

// sendError sends an error message to the client
func (c *Connection) sendError(code, message string) {
	_ = c.sendData(MessageTypeError, ErrorData{
		Code:    code,
		Message: message,
	})
}

// sendData wraps data in an envelope and queues it
func (c *Connection) sendData(msgType MessageType, data any) error {
	msg, err := NewMessage(msgType, data)
	if err != nil {
		c.logger.Error("Failed to create message", "type", msgType, "error", err)
		return err
	}
	return c.SendMessage(msg)
}
