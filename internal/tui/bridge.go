package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/lox/rockpaperscissors/internal/client"
	"github.com/lox/rockpaperscissors/internal/game"
	"github.com/lox/rockpaperscissors/internal/server"
)

// Sender delivers messages to a running program. *tea.Program satisfies it.
type Sender interface {
	Send(msg tea.Msg)
}

// SessionBridge forwards a local session's events to the program
type SessionBridge struct {
	sender Sender
}

// NewSessionBridge creates a bridge for sender
func NewSessionBridge(sender Sender) *SessionBridge {
	return &SessionBridge{sender: sender}
}

// OnEvent implements game.EventSubscriber
func (b *SessionBridge) OnEvent(event game.GameEvent) {
	b.sender.Send(StateMsg{Event: event.EventType(), Snapshot: event.Snapshot()})
}

// BridgeClient registers handlers on c that forward state, errors and
// disconnects to sender. Call it before c.Connect so the initial state is
// not missed.
func BridgeClient(c *client.Client, sender Sender) {
	c.OnState(func(data server.StateData, snap game.Snapshot) {
		sender.Send(StateMsg{Event: game.EventType(data.Event), Snapshot: snap})
	})
	c.OnError(func(err error) {
		sender.Send(ErrMsg{Err: err})
	})
}

// WatchDisconnect sends DisconnectedMsg once c goes away
func WatchDisconnect(c *client.Client, sender Sender) {
	go func() {
		<-c.Done()
		sender.Send(DisconnectedMsg{})
	}()
}
