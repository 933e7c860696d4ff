package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/classroom-gateway/internal/config"
	"github.com/spec-kit/classroom-gateway/internal/observability"
)

// OutboundMessage is the envelope sent to connected clients.
type OutboundMessage struct {
	Event     string      `json:"event"`
	Timestamp string      `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// InboundMessage is the envelope clients send.
type InboundMessage struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ResponsePayload is the derived payload broadcast after an inbound event.
type ResponsePayload struct {
	Received     string          `json:"received"`
	ConnectionID string          `json:"connection_id"`
	Payload      json.RawMessage `json:"payload,omitempty"`
}

// Hub manages live connections and fans events out to all of them.
// Connections are anonymous: the channel carries no identity.
type Hub struct {
	cfg     config.RealtimeConfig
	logger  *zap.Logger
	metrics *observability.Metrics

	mu      sync.RWMutex
	clients map[*Client]struct{}
}

// NewHub creates a hub.
func NewHub(cfg config.RealtimeConfig, logger *zap.Logger, metrics *observability.Metrics) *Hub {
	if cfg.SendBufferSize <= 0 {
		cfg.SendBufferSize = 256
	}
	return &Hub{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
		clients: make(map[*Client]struct{}),
	}
}

// Run blocks until the context is cancelled, then disconnects all clients.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()
	h.closeAll()
}

// UpgradeRequired rejects plain HTTP requests on the websocket route.
func UpgradeRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}
}

// Handler returns the websocket endpoint handler.
func (h *Hub) Handler() fiber.Handler {
	return websocket.New(h.serve)
}

// serve owns the connection for its whole lifetime: register, pump, release.
func (h *Hub) serve(conn *websocket.Conn) {
	client := newClient(h, conn)
	h.register(client)
	defer h.unregister(client)

	go client.writePump()
	client.readPump()
}

func (h *Hub) register(client *Client) {
	h.mu.Lock()
	h.clients[client] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.SetConnectedClients(count)
	}
	h.logger.Info("client connected", zap.String("connection_id", client.id), zap.Int("clients", count))
}

// unregister removes the client. Only the goroutine that actually removes
// it from the map closes the send channel, preventing a double close when
// shutdown races a disconnect.
func (h *Hub) unregister(client *Client) {
	h.mu.Lock()
	_, existed := h.clients[client]
	delete(h.clients, client)
	count := len(h.clients)
	h.mu.Unlock()

	if existed {
		close(client.send)
	}
	if h.metrics != nil {
		h.metrics.SetConnectedClients(count)
	}
	h.logger.Info("client disconnected", zap.String("connection_id", client.id), zap.Int("clients", count))
}

// Broadcast sends a named event to every currently connected client.
// The client set is snapshotted under the read lock and released before
// sending, so a slow client never blocks the hub. A client whose buffer
// is full misses the message rather than stalling everyone else.
func (h *Hub) Broadcast(event string, payload interface{}) {
	msg := OutboundMessage{
		Event:     event,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Payload:   payload,
	}

	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal broadcast message", zap.Error(err))
		return
	}

	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		if !client.trySend(data) {
			h.logger.Warn("dropping message for slow client", zap.String("connection_id", client.id))
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// handleEvent answers an inbound event by broadcasting a derived response
// to every connected client, the sender included.
func (h *Hub) handleEvent(client *Client, msg InboundMessage) {
	h.Broadcast("response", ResponsePayload{
		Received:     msg.Event,
		ConnectionID: client.id,
		Payload:      msg.Payload,
	})
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.clients = make(map[*Client]struct{})
	h.mu.Unlock()

	for _, client := range clients {
		close(client.send)
	}
	if h.metrics != nil {
		h.metrics.SetConnectedClients(0)
	}
	if len(clients) > 0 {
		h.logger.Info("disconnected all clients", zap.Int("count", len(clients)))
	}
}

func newClient(h *Hub, conn *websocket.Conn) *Client {
	return &Client{
		id:   uuid.NewString(),
		hub:  h,
		conn: conn,
		send: make(chan []byte, h.cfg.SendBufferSize),
	}
}
