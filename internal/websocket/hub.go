package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"ordermacro/internal/infrastructure"
)

// Message types sent besides the run events
const (
	TypeConnection = "connection"
	TypeSnapshot   = "run:snapshot"
)

const broadcastBuffer = 256

// Hub maintains the set of active clients and broadcasts run events to them
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	mu      sync.RWMutex
	logger  *slog.Logger
	quit    chan struct{}
	running bool

	totalConnections atomic.Int64
	messagesSent     atomic.Int64
	messagesDropped  atomic.Int64
}

// NewHub creates a new Hub instance
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &Hub{
		broadcast:  make(chan []byte, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		logger:     logger.With(slog.String("component", "websocket.hub")),
		quit:       make(chan struct{}),
	}
}

// Start runs the hub loop in its own goroutine
func (h *Hub) Start() {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return
	}
	h.running = true
	h.mu.Unlock()

	go h.run()
}

func (h *Hub) run() {
	for {
		select {
		case <-h.quit:
			h.logger.Info("hub_stopped")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mu.Unlock()
			h.totalConnections.Add(1)

			ctx := infrastructure.WithTraceID(context.Background(), client.traceID)
			h.logger.InfoContext(ctx, "client_registered",
				slog.Int("total_clients", count),
				slog.String("client_id", client.id),
				slog.String("remote_addr", client.remoteAddr))

			h.greet(client)

		case client := <-h.unregister:
			h.remove(client, "client_unregistered")

		case message := <-h.broadcast:
			var slow []*Client
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.send <- message:
					h.messagesSent.Add(1)
				default:
					slow = append(slow, client)
				}
			}
			h.mu.RUnlock()
			for _, client := range slow {
				h.remove(client, "client_buffer_full")
			}
		}
	}
}

func (h *Hub) greet(client *Client) {
	data, err := json.Marshal(map[string]interface{}{
		"type": TypeConnection,
		"data": map[string]interface{}{
			"status":    "connected",
			"client_id": client.id,
		},
		"timestamp": time.Now().Format(time.RFC3339),
		"trace_id":  client.traceID,
	})
	if err != nil {
		return
	}
	select {
	case client.send <- data:
	default:
	}
}

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

	h.logger.Info(reason,
		slog.Int("total_clients", count),
		slog.String("client_id", client.id),
		slog.Duration("connection_duration", time.Since(client.connectedAt)))
}

// BroadcastUpdate sends a run event to every client. It never blocks: when
// the queue is full the event is dropped.
func (h *Hub) BroadcastUpdate(eventType, step, status string, metadata interface{}) {
	message := map[string]interface{}{
		"type":      eventType,
		"step":      step,
		"status":    status,
		"data":      metadata,
		"timestamp": time.Now().Format(time.RFC3339),
	}
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("broadcast_marshal_failed",
			slog.String("error", err.Error()),
			slog.String("message_type", eventType))
		return
	}

	select {
	case h.broadcast <- data:
	default:
		h.messagesDropped.Add(1)
		h.logger.Warn("broadcast_dropped", slog.String("message_type", eventType))
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stop closes every client and ends the hub loop
func (h *Hub) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.running {
		return
	}
	h.running = false
	close(h.quit)
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
}

// Collectors exposes hub counters for the Prometheus registry
func (h *Hub) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "macro_ws_clients",
			Help: "Connected websocket clients",
		}, func() float64 { return float64(h.ClientCount()) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "macro_ws_connections_total",
			Help: "Websocket connections accepted",
		}, func() float64 { return float64(h.totalConnections.Load()) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "macro_ws_messages_sent_total",
			Help: "Run events delivered to clients",
		}, func() float64 { return float64(h.messagesSent.Load()) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "macro_ws_messages_dropped_total",
			Help: "Run events dropped because the broadcast queue was full",
		}, func() float64 { return float64(h.messagesDropped.Load()) }),
	}
}
