// Package websocket pushes market status changes to browser clients.
package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/jasonmurdy-collab/MarketPulse/internal/infrastructure"
	"github.com/jasonmurdy-collab/MarketPulse/pkg/contracts/domain"
	"github.com/jasonmurdy-collab/MarketPulse/pkg/contracts/events"
)

const broadcastBuffer = 64

// Greeting returns the messages sent to a client right after it connects
type Greeting func(clientID string) []events.WebSocketMessage

// Hub maintains the set of active clients and broadcasts messages to them
type Hub struct {
	clients    map[*Client]struct{}
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	mu       sync.RWMutex
	logger   *slog.Logger
	metrics  *infrastructure.BusinessMetrics
	greeting Greeting

	messagesSent     atomic.Int64
	totalConnections atomic.Int64

	quit    chan struct{}
	done    chan struct{}
	running bool
	stopped bool
}

// HubOption customizes a Hub
type HubOption func(*Hub)

// WithHubMetrics records connected client counts
func WithHubMetrics(m *infrastructure.BusinessMetrics) HubOption {
	return func(h *Hub) { h.metrics = m }
}

// WithGreeting sets the messages every new client receives
func WithGreeting(g Greeting) HubOption {
	return func(h *Hub) { h.greeting = g }
}

// NewHub creates a new Hub instance
func NewHub(logger *slog.Logger, opts ...HubOption) *Hub {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	h := &Hub{
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan []byte, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger.With(slog.String("component", "websocket.hub")),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Start runs the hub loop in a goroutine. It is idempotent.
func (h *Hub) Start() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.running || h.stopped {
		return
	}
	h.running = true
	go h.run()
}

// Stop ends the hub loop and closes every client. A stopped hub cannot be
// restarted.
func (h *Hub) Stop() {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return
	}
	wasRunning := h.running
	h.running = false
	h.stopped = true
	h.mu.Unlock()

	close(h.quit)
	if wasRunning {
		<-h.done
	}
}

func (h *Hub) run() {
	defer close(h.done)
	for {
		select {
		case <-h.quit:
			h.closeAll()
			h.logger.Info("hub stopped", slog.Int64("messages_sent", h.messagesSent.Load()))
			return

		case client := <-h.register:
			h.add(client)

		case client := <-h.unregister:
			h.remove(client, "disconnected")

		case message := <-h.broadcast:
			h.fanOut(message)
		}
	}
}

func (h *Hub) add(client *Client) {
	h.mu.Lock()
	h.clients[client] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()
	h.totalConnections.Add(1)

	ctx := client.context()
	h.metrics.RecordWebSocketClients(ctx, 1)
	h.logger.InfoContext(ctx, "client registered",
		slog.String("client_id", client.id),
		slog.String("remote_addr", client.remoteAddr),
		slog.Int("total_clients", count))

	greeting := []events.WebSocketMessage{connectMessage(client.id)}
	if h.greeting != nil {
		greeting = append(greeting, h.greeting(client.id)...)
	}
	for _, msg := range greeting {
		data, err := json.Marshal(msg)
		if err != nil {
			h.logger.ErrorContext(ctx, "greeting marshal failed", slog.String("error", err.Error()))
			continue
		}
		select {
		case client.send <- data:
		default:
			h.logger.WarnContext(ctx, "client buffer full during greeting", slog.String("client_id", client.id))
		}
	}
}

// remove must only run on the hub goroutine; it owns client.send.
func (h *Hub) remove(client *Client, reason string) {
	h.mu.Lock()
	if _, ok := h.clients[client]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client)
	close(client.send)
	count := len(h.clients)
	h.mu.Unlock()

	ctx := client.context()
	h.metrics.RecordWebSocketClients(ctx, -1)
	h.logger.InfoContext(ctx, "client unregistered",
		slog.String("client_id", client.id),
		slog.String("reason", reason),
		slog.Duration("connection_duration", time.Since(client.connectedAt)),
		slog.Int("total_clients", count))
}

func (h *Hub) fanOut(message []byte) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	var slow []*Client
	for _, c := range clients {
		select {
		case c.send <- message:
			h.messagesSent.Add(1)
		default:
			slow = append(slow, c)
		}
	}
	for _, c := range slow {
		h.remove(c, "send buffer full")
	}

	h.logger.Debug("broadcast delivered",
		slog.Int("clients", len(clients)),
		slog.Int("dropped", len(slow)),
		slog.Int("size", len(message)))
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
		h.metrics.RecordWebSocketClients(context.Background(), -1)
	}
}

// Register adds a client to the hub. It returns false once the hub has
// stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.quit:
		return false
	}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.quit:
	}
}

// Broadcast queues msg for every connected client. Messages are dropped
// once the hub has stopped.
func (h *Hub) Broadcast(msg events.WebSocketMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal %s message: %w", msg.Type, err)
	}
	select {
	case h.broadcast <- data:
	case <-h.quit:
	}
	return nil
}

// BroadcastStatus pushes a market:status message
func (h *Hub) BroadcastStatus(status domain.Status) {
	if err := h.Broadcast(events.NewMarketStatus(uuid.NewString(), status)); err != nil {
		h.logger.Error("status broadcast failed", slog.String("error", err.Error()))
	}
}

// BroadcastReport pushes an ingestion:report message. Its signature matches
// services.ReportListener.
func (h *Hub) BroadcastReport(report domain.RunReport) {
	if err := h.Broadcast(events.NewIngestionReport(uuid.NewString(), report)); err != nil {
		h.logger.Error("report broadcast failed", slog.String("error", err.Error()))
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stats returns lifetime counters of the hub
func (h *Hub) Stats() map[string]int64 {
	return map[string]int64{
		"active_clients":    int64(h.ClientCount()),
		"total_connections": h.totalConnections.Load(),
		"messages_sent":     h.messagesSent.Load(),
	}
}

func connectMessage(clientID string) events.WebSocketMessage {
	return events.WebSocketMessage{
		BaseMessage: events.BaseMessage{
			ID:        uuid.NewString(),
			Type:      events.MessageTypeConnect,
			Timestamp: time.Now().UTC(),
		},
		Data: map[string]string{
			"status":    "connected",
			"client_id": clientID,
		},
	}
}
