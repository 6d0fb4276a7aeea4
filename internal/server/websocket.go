package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/koacards/koa-server-go/internal/config"
	"github.com/koacards/koa-server-go/internal/game"
	"github.com/koacards/koa-server-go/internal/session"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufferSize = 256
)

// Inbound message types.
const (
	MsgJoin    = "join"
	MsgResume  = "resume"
	MsgCommand = "command"
	MsgLeave   = "leave"
)

// Outbound message types.
const (
	MsgJoined       = "joined"
	MsgView         = "view"
	MsgNumber       = "number"
	MsgSound        = "sound"
	MsgAnnouncement = "announcement"
	MsgConfirmation = "confirmation"
	MsgResult       = "result"
	MsgError        = "error"
)

// WSMessage is the envelope for every websocket frame.
type WSMessage struct {
	Type      string           `json:"type"`
	SessionID string           `json:"session_id,omitempty"`
	Player    string           `json:"player,omitempty"`
	Command   *session.Command `json:"command,omitempty"`
	Data      any              `json:"data,omitempty"`
}

// JoinedData answers a join or resume.
type JoinedData struct {
	SessionID string `json:"session_id"`
	Player    string `json:"player"`
	Stage     int    `json:"stage"`
	Enemy     string `json:"enemy"`
}

// NumberData is a floating damage or heal number.
type NumberData struct {
	Side   game.Side       `json:"side"`
	Amount int             `json:"amount"`
	Kind   game.NumberKind `json:"kind"`
}

// ResultData reports whether a command was accepted.
type ResultData struct {
	Action   session.Action `json:"action"`
	Accepted bool           `json:"accepted"`
}

// Hub tracks connected clients.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
	sessions   *session.Manager
	logger     *zap.Logger
}

// NewHub creates a hub serving sessions from mgr.
func NewHub(mgr *session.Manager, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		sessions:   mgr,
		logger:     logger,
	}
}

// Run registers and unregisters clients until ctx is done, then closes
// every remaining client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for client := range h.clients {
				client.close()
				delete(h.clients, client)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.logger.Debug("client registered", zap.String("remote", client.remote))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.detach()
				client.close()
				h.logger.Debug("client unregistered", zap.String("remote", client.remote))
			}
			h.mu.Unlock()
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) handleMessage(c *Client, msg WSMessage) {
	ctx := context.Background()

	switch msg.Type {
	case MsgJoin:
		s, err := h.sessions.CreateSession(ctx, msg.Player)
		if err != nil {
			c.sendError(err)
			return
		}
		c.bind(s)

	case MsgResume:
		s, err := h.sessions.GetSession(msg.SessionID)
		if err != nil {
			c.sendError(err)
			return
		}
		s.Touch()
		c.bind(s)

	case MsgCommand:
		s := c.current()
		if s == nil {
			c.sendError(errNotJoined)
			return
		}
		if msg.Command == nil {
			c.sendError(errNoCommand)
			return
		}
		accepted, err := s.Dispatch(ctx, *msg.Command)
		if err != nil {
			c.sendError(err)
			return
		}
		c.send(MsgResult, ResultData{Action: msg.Command.Action, Accepted: accepted})

	case MsgLeave:
		s := c.current()
		if s == nil {
			return
		}
		c.detach()
		if err := h.sessions.RemoveSession(s.ID); err != nil && !errors.Is(err, session.ErrSessionNotFound) {
			h.logger.Warn("failed to remove session", zap.String("session_id", s.ID), zap.Error(err))
		}

	default:
		h.logger.Debug("unknown message type", zap.String("type", msg.Type))
		c.sendError(errors.New("unknown message type " + msg.Type))
	}
}

var (
	errNotJoined = errors.New("join or resume a session first")
	errNoCommand = errors.New("command is required")
)

// Client is one websocket connection. It is the output of at most one session.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	out    chan []byte
	remote string
	logger *zap.Logger

	mu      sync.Mutex
	session *session.Session
	closed  bool
}

func (c *Client) current() *session.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// bind makes c the output of s, detaching it from any previous session.
func (c *Client) bind(s *session.Session) {
	c.detach()
	c.mu.Lock()
	c.session = s
	c.mu.Unlock()

	snap := s.Snapshot()
	c.send(MsgJoined, JoinedData{
		SessionID: snap.ID,
		Player:    snap.PlayerName,
		Stage:     snap.Stage,
		Enemy:     snap.Enemy,
	})
	s.Attach(c)
}

// detach stops the current session from writing to c. The session itself
// stays alive until its lease expires so the player can resume.
func (c *Client) detach() {
	c.mu.Lock()
	s := c.session
	c.session = nil
	c.mu.Unlock()
	if s != nil {
		s.Detach(c)
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.out)
	}
}

// send queues a message, dropping it when the client is closed or too slow.
func (c *Client) send(msgType string, data any) {
	payload, err := json.Marshal(WSMessage{Type: msgType, Data: data})
	if err != nil {
		c.logger.Error("failed to marshal message", zap.String("type", msgType), zap.Error(err))
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.out <- payload:
	default:
		c.logger.Warn("client send buffer full, dropping message", zap.String("type", msgType))
	}
}

func (c *Client) sendError(err error) {
	c.send(MsgError, err.Error())
}

// SendView implements session.Output.
func (c *Client) SendView(v game.View) { c.send(MsgView, v) }

// SendNumber implements session.Output.
func (c *Client) SendNumber(side game.Side, amount int, kind game.NumberKind) {
	c.send(MsgNumber, NumberData{Side: side, Amount: amount, Kind: kind})
}

// SendSound implements session.Output.
func (c *Client) SendSound(sound game.Sound) { c.send(MsgSound, sound) }

// SendAnnouncement implements session.Output.
func (c *Client) SendAnnouncement(message string) { c.send(MsgAnnouncement, message) }

// SendConfirmation implements session.Output.
func (c *Client) SendConfirmation(message string) { c.send(MsgConfirmation, message) }

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
			c.detach()
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("websocket read error", zap.Error(err))
			}
			return
		}

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.logger.Debug("bad websocket message", zap.Error(err))
			c.sendError(err)
			continue
		}
		c.hub.handleMessage(c, msg)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.out:
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

// WebSocketServer serves the hub over HTTP.
type WebSocketServer struct {
	hub      *Hub
	upgrader websocket.Upgrader
	http     *http.Server
	logger   *zap.Logger
}

// NewWebSocketServer creates a websocket server on cfg.Address.
func NewWebSocketServer(cfg config.WebSocketConfig, mgr *session.Manager, logger *zap.Logger) *WebSocketServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &WebSocketServer{
		hub:    NewHub(mgr, logger),
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
			CheckOrigin:     checkOrigin(cfg.AllowedOrigins),
		},
	}
	s.http = &http.Server{
		Addr:              cfg.Address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// checkOrigin allows every origin when the list is empty or holds "*".
func checkOrigin(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		if len(allowed) == 0 || slices.Contains(allowed, "*") {
			return true
		}
		return slices.Contains(allowed, r.Header.Get("Origin"))
	}
}

// Hub returns the server's hub.
func (s *WebSocketServer) Hub() *Hub {
	return s.hub
}

// Handler returns the HTTP routes: /ws for the game and /healthz.
func (s *WebSocketServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.serveWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

func (s *WebSocketServer) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		hub:    s.hub,
		conn:   conn,
		out:    make(chan []byte, sendBufferSize),
		remote: r.RemoteAddr,
		logger: s.logger.With(zap.String("remote", r.RemoteAddr)),
	}
	select {
	case s.hub.register <- client:
	case <-s.hub.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// ListenAndServe runs the hub and the HTTP server until ctx is done or the
// server fails.
func (s *WebSocketServer) ListenAndServe(ctx context.Context) error {
	go s.hub.Run(ctx)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("websocket server shutdown", zap.Error(err))
		}
	}()

	s.logger.Info("starting WebSocket server", zap.String("address", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
