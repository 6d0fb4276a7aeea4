package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/koacards/koa-server-go/internal/config"
	"github.com/koacards/koa-server-go/internal/game"
	"github.com/koacards/koa-server-go/internal/game/schedule"
	"github.com/koacards/koa-server-go/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type wsFixture struct {
	t       *testing.T
	manager *session.Manager
	server  *WebSocketServer
	http    *httptest.Server
}

func newWSFixture(t *testing.T) *wsFixture {
	t.Helper()
	logger := zaptest.NewLogger(t)
	mgr := session.NewManager(session.DefaultConfig(), logger,
		session.WithClock(schedule.NewManualClock(time.Unix(0, 0))))

	srv := NewWebSocketServer(config.WebSocketConfig{}, mgr, logger)
	ctx, cancel := context.WithCancel(context.Background())
	go srv.Hub().Run(ctx)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		cancel()
		mgr.CloseAll()
	})
	return &wsFixture{t: t, manager: mgr, server: srv, http: ts}
}

func (f *wsFixture) dial() *websocket.Conn {
	f.t.Helper()
	url := "ws" + strings.TrimPrefix(f.http.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(f.t, err)
	f.t.Cleanup(func() { _ = conn.Close() })
	return conn
}

type received struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func write(t *testing.T, conn *websocket.Conn, msg WSMessage) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(msg))
}

// readUntil reads frames until one of the given type arrives.
func readUntil(t *testing.T, conn *websocket.Conn, msgType string) received {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var msg received
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type == msgType {
			return msg
		}
	}
}

func join(t *testing.T, conn *websocket.Conn, player string) JoinedData {
	t.Helper()
	write(t, conn, WSMessage{Type: MsgJoin, Player: player})
	var joined JoinedData
	require.NoError(t, json.Unmarshal(readUntil(t, conn, MsgJoined).Data, &joined))
	return joined
}

func TestWebSocketJoinSendsView(t *testing.T) {
	f := newWSFixture(t)
	conn := f.dial()

	joined := join(t, conn, "koa")
	assert.NotEmpty(t, joined.SessionID)
	assert.Equal(t, "koa", joined.Player)
	assert.Equal(t, "Platypus", joined.Enemy)

	var view game.View
	require.NoError(t, json.Unmarshal(readUntil(t, conn, MsgView).Data, &view))
	assert.Equal(t, "Platypus", view.Enemy.Name)
	assert.NotEmpty(t, view.Hand)
	assert.Equal(t, 1, f.manager.Count())
}

func TestWebSocketCommand(t *testing.T) {
	f := newWSFixture(t)
	conn := f.dial()
	join(t, conn, "koa")

	write(t, conn, WSMessage{Type: MsgCommand, Command: &session.Command{Action: session.ActionEndTurn}})
	var result ResultData
	require.NoError(t, json.Unmarshal(readUntil(t, conn, MsgResult).Data, &result))
	assert.Equal(t, session.ActionEndTurn, result.Action)
	assert.True(t, result.Accepted)

	write(t, conn, WSMessage{Type: MsgCommand, Command: &session.Command{Action: session.ActionContinue}})
	require.NoError(t, json.Unmarshal(readUntil(t, conn, MsgResult).Data, &result))
	assert.False(t, result.Accepted)
}

func TestWebSocketErrors(t *testing.T) {
	f := newWSFixture(t)
	conn := f.dial()

	write(t, conn, WSMessage{Type: MsgCommand, Command: &session.Command{Action: session.ActionEndTurn}})
	var text string
	require.NoError(t, json.Unmarshal(readUntil(t, conn, MsgError).Data, &text))
	assert.Equal(t, errNotJoined.Error(), text)

	write(t, conn, WSMessage{Type: "dance"})
	readUntil(t, conn, MsgError)

	write(t, conn, WSMessage{Type: MsgJoin})
	require.NoError(t, json.Unmarshal(readUntil(t, conn, MsgError).Data, &text))
	assert.Equal(t, session.ErrPlayerNameNeeded.Error(), text)

	write(t, conn, WSMessage{Type: MsgResume, SessionID: "missing"})
	require.NoError(t, json.Unmarshal(readUntil(t, conn, MsgError).Data, &text))
	assert.Equal(t, session.ErrSessionNotFound.Error(), text)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	readUntil(t, conn, MsgError)
}

func TestWebSocketResumeAfterDisconnect(t *testing.T) {
	f := newWSFixture(t)
	first := f.dial()
	joined := join(t, first, "koa")
	require.NoError(t, first.Close())

	second := f.dial()
	write(t, second, WSMessage{Type: MsgResume, SessionID: joined.SessionID})
	var resumed JoinedData
	require.NoError(t, json.Unmarshal(readUntil(t, second, MsgJoined).Data, &resumed))
	assert.Equal(t, joined.SessionID, resumed.SessionID)
	readUntil(t, second, MsgView)
	assert.Equal(t, 1, f.manager.Count())
}

func TestWebSocketLeaveRemovesSession(t *testing.T) {
	f := newWSFixture(t)
	conn := f.dial()
	joined := join(t, conn, "koa")

	write(t, conn, WSMessage{Type: MsgLeave})
	require.Eventually(t, func() bool { return f.manager.Count() == 0 }, time.Second, 5*time.Millisecond)

	_, err := f.manager.GetSession(joined.SessionID)
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestHealthz(t *testing.T) {
	f := newWSFixture(t)
	resp, err := http.Get(f.http.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCheckOrigin(t *testing.T) {
	req := func(origin string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/ws", nil)
		r.Header.Set("Origin", origin)
		return r
	}

	assert.True(t, checkOrigin(nil)(req("https://anywhere.test")))
	assert.True(t, checkOrigin([]string{"*"})(req("https://anywhere.test")))

	only := checkOrigin([]string{"https://koa.test"})
	assert.True(t, only(req("https://koa.test")))
	assert.False(t, only(req("https://evil.test")))
}
