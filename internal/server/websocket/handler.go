package websocket

import (
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/brianly1003/fuzzy-explorer/internal/domain/events"
	"github.com/brianly1003/fuzzy-explorer/internal/domain/ports"
	"github.com/brianly1003/fuzzy-explorer/internal/hub"
	"github.com/brianly1003/fuzzy-explorer/internal/sync"
	"github.com/gorilla/websocket"
)

// DefaultHeartbeatInterval is the application-level heartbeat period.
const DefaultHeartbeatInterval = 30 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The server binds to loopback by default.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// StatusProvider supplies heartbeat contents.
type StatusProvider interface {
	IsBuilding() bool
	Len() int
}

// Handler upgrades HTTP requests to event streams. It doubles as the
// explorer's presenter: the list counts as visible while a client is
// connected.
type Handler struct {
	hub      ports.EventHub
	status   StatusProvider
	logger   *slog.Logger
	interval time.Duration

	commands atomic.Value // CommandHandler

	mu      sync.RWMutex
	clients map[string]*Client

	heartbeatDone chan struct{}
	heartbeatSeq  int64
	startTime     time.Time
	stopOnce      sync.Once
}

// NewHandler creates a handler. status may be nil.
func NewHandler(eventHub ports.EventHub, status StatusProvider, logger *slog.Logger) *Handler {
	return &Handler{
		hub:           eventHub,
		status:        status,
		logger:        logger,
		interval:      DefaultHeartbeatInterval,
		clients:       make(map[string]*Client),
		heartbeatDone: make(chan struct{}),
		startTime:     time.Now(),
	}
}

// SetStatusProvider sets the heartbeat source. Call before Start.
func (h *Handler) SetStatusProvider(status StatusProvider) {
	h.status = status
}

// SetCommandHandler sets the handler for client messages.
func (h *Handler) SetCommandHandler(fn CommandHandler) {
	h.commands.Store(fn)
}

// SetHeartbeatInterval changes the heartbeat period. Call before Start.
func (h *Handler) SetHeartbeatInterval(d time.Duration) {
	h.interval = d
}

// Start starts the heartbeat loop.
func (h *Handler) Start() {
	go h.heartbeatLoop()
}

// Stop ends the heartbeat loop and closes every client.
func (h *Handler) Stop() {
	h.stopOnce.Do(func() {
		close(h.heartbeatDone)

		h.mu.Lock()
		clients := h.clients
		h.clients = make(map[string]*Client)
		h.mu.Unlock()

		for id, c := range clients {
			h.hub.Unsubscribe(id)
			c.Close()
		}
	})
}

// ServeHTTP upgrades the connection and subscribes the client to the hub.
// The optional events query parameter is a comma-separated list of event
// types to receive; heartbeats are always delivered.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade WebSocket", "error", err)
		return
	}

	client := NewClient(conn, h.dispatch, func(id string) {
		h.hub.Unsubscribe(id)
		h.removeClient(id)
	})

	h.mu.Lock()
	h.clients[client.ID()] = client
	h.mu.Unlock()

	var sub ports.Subscriber = NewClientSubscriber(client)
	if types := parseTypes(r.URL.Query().Get("events")); len(types) > 0 {
		sub = hub.NewFilteredSubscriber(sub, types...)
	}
	h.hub.Subscribe(sub)

	h.logger.Info("WebSocket client connected",
		"client_id", client.ID(),
		"remote_addr", conn.RemoteAddr().String(),
	)
	client.Start()
}

func (h *Handler) dispatch(clientID string, message []byte) {
	if fn, ok := h.commands.Load().(CommandHandler); ok && fn != nil {
		fn(clientID, message)
	}
}

func (h *Handler) removeClient(id string) {
	h.mu.Lock()
	_, ok := h.clients[id]
	delete(h.clients, id)
	h.mu.Unlock()
	if ok {
		h.logger.Info("WebSocket client disconnected", "client_id", id)
	}
}

// SendTo sends an event to one client. It reports false if the client is
// gone.
func (h *Handler) SendTo(clientID string, event events.Event) bool {
	h.mu.RLock()
	client := h.clients[clientID]
	h.mu.RUnlock()
	if client == nil {
		return false
	}

	data, err := event.ToJSON()
	if err != nil {
		h.logger.Warn("Failed to serialize event", "error", err)
		return false
	}
	return client.Send(data)
}

// Broadcast sends a message to all connected clients.
func (h *Handler) Broadcast(message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		c.Send(message)
	}
}

// ClientCount returns the number of connected clients.
func (h *Handler) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Visible reports whether any client is connected.
func (h *Handler) Visible() bool {
	return h.ClientCount() > 0
}

func (h *Handler) heartbeatLoop() {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-h.heartbeatDone:
			return
		case <-ticker.C:
			h.broadcastHeartbeat()
		}
	}
}

func (h *Handler) broadcastHeartbeat() {
	if h.ClientCount() == 0 {
		return
	}

	var building bool
	var items int
	if h.status != nil {
		building = h.status.IsBuilding()
		items = h.status.Len()
	}

	seq := atomic.AddInt64(&h.heartbeatSeq, 1)
	data, err := events.NewHeartbeatEvent(seq, building, items, int64(time.Since(h.startTime).Seconds())).ToJSON()
	if err != nil {
		h.logger.Warn("Failed to serialize heartbeat", "error", err)
		return
	}
	h.Broadcast(data)
}

func parseTypes(raw string) []events.EventType {
	var types []events.EventType
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			types = append(types, events.EventType(part))
		}
	}
	return types
}

var _ ports.Presenter = (*Handler)(nil)
