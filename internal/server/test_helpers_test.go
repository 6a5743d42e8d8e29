package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/lox/rockpaperscissors/internal/game"
	"github.com/lox/rockpaperscissors/rps"
	"github.com/stretchr/testify/require"
)

// testLogger creates a logger that discards output for tests
func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

var testTiming = game.Timing{
	TickInterval: 100 * time.Millisecond,
	RevealDelay:  350 * time.Millisecond,
	ResetDelay:   500 * time.Millisecond,
}

// sequencePicker returns its choices in order, repeating the last one
type sequencePicker struct {
	mu      sync.Mutex
	choices []rps.Choice
	next    int
}

func (p *sequencePicker) Pick() rps.Choice {
	p.mu.Lock()
	defer p.mu.Unlock()
	c := p.choices[p.next]
	if p.next < len(p.choices)-1 {
		p.next++
	}
	return c
}

type testServer struct {
	*Server
	http  *httptest.Server
	clock *quartz.Mock
}

func newTestServer(t *testing.T, mode game.Mode, computer ...rps.Choice) *testServer {
	t.Helper()

	if len(computer) == 0 {
		computer = []rps.Choice{rps.Scissors}
	}
	clock := quartz.NewMock(t)
	srv := NewServer(testLogger(),
		WithConfig(Config{Mode: mode, Timing: testTiming}),
		WithClock(clock),
		WithPicker(&sequencePicker{choices: computer}),
	)
	hs := httptest.NewServer(srv.Handler())

	t.Cleanup(func() {
		_ = srv.Shutdown(context.Background())
		hs.Close()
	})

	return &testServer{Server: srv, http: hs, clock: clock}
}

func (ts *testServer) dial(t *testing.T, query string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(ts.http.URL, "http") + "/ws" + query
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func sendMessage(t *testing.T, conn *websocket.Conn, msgType MessageType, data any) {
	t.Helper()

	msg, err := NewMessage(msgType, data)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(msg))
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

// readState reads the next message and requires it to be a state update
func readState(t *testing.T, conn *websocket.Conn) StateData {
	t.Helper()

	msg := readMessage(t, conn)
	require.Equal(t, MessageTypeState, msg.Type, "unexpected message: %s", string(msg.Data))

	var state StateData
	require.NoError(t, json.Unmarshal(msg.Data, &state))
	return state
}

func readError(t *testing.T, conn *websocket.Conn) ErrorData {
	t.Helper()

	msg := readMessage(t, conn)
	require.Equal(t, MessageTypeError, msg.Type, "unexpected message: %s", string(msg.Data))

	var data ErrorData
	require.NoError(t, json.Unmarshal(msg.Data, &data))
	return data
}

// readHandshake consumes the welcome message and the initial state
func readHandshake(t *testing.T, conn *websocket.Conn) (WelcomeData, StateData) {
	t.Helper()

	msg := readMessage(t, conn)
	require.Equal(t, MessageTypeWelcome, msg.Type)

	var welcome WelcomeData
	require.NoError(t, json.Unmarshal(msg.Data, &welcome))
	return welcome, readState(t, conn)
}

func advanceNext(t *testing.T, clock *quartz.Mock) time.Duration {
	t.Helper()

	d, w := clock.AdvanceNext()
	w.MustWait(t.Context())
	return d
}
