package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/samber/lo"

	"github.com/iyunix/go-bazaar-chat/internal/domain"
	"github.com/iyunix/go-bazaar-chat/internal/services"
)

// Hub pushes persisted messages to the recipient's open connections.
type Hub struct {
	registry *Registry
	logger   services.Logger

	mu       sync.Mutex
	attached map[string]*Connection // every live connection, associated or not
}

func NewHub(registry *Registry, logger services.Logger) *Hub {
	if logger == nil {
		logger = &services.NoOpLogger{}
	}
	return &Hub{registry: registry, logger: logger, attached: make(map[string]*Connection)}
}

func (h *Hub) Registry() *Registry { return h.registry }

// Attach starts conn's writer and, when it carries an identity, associates it.
// Unauthenticated connections stay open but can never be targeted.
func (h *Hub) Attach(conn *Connection) {
	conn.Start()
	h.mu.Lock()
	h.attached[conn.ID()] = conn
	h.mu.Unlock()

	if conn.Identity == "" {
		h.logger.Info("websocket connected without identity", "conn_id", conn.ID())
		return
	}
	h.registry.Add(conn.Identity, conn)
	h.logger.Info("websocket associated",
		"conn_id", conn.ID(),
		"identity", conn.Identity,
		"connections", h.registry.Count(conn.Identity))
}

// Detach removes whatever association conn holds. It runs on every disconnect path.
func (h *Hub) Detach(conn *Connection) {
	h.mu.Lock()
	delete(h.attached, conn.ID())
	h.mu.Unlock()

	if h.registry.Remove(conn.ID()) {
		h.logger.Info("websocket disassociated",
			"conn_id", conn.ID(),
			"identity", conn.Identity,
			"connections", h.registry.Count(conn.Identity))
	}
}

// Notify sends message to every connection of its recipient and returns how many
// accepted it. Zero deliveries is not an error: the message is already stored.
func (h *Hub) Notify(ctx context.Context, message domain.Message) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	conns := h.registry.Connections(message.Recipient)
	if len(conns) == 0 {
		h.logger.Debug("recipient offline, push skipped", "recipient", message.Recipient, "message_id", message.ID)
		return 0, nil
	}

	payload, err := json.Marshal(Event{Type: EventReceiveMessage, Message: &message})
	if err != nil {
		return 0, fmt.Errorf("encode push event: %w", err)
	}

	delivered := 0
	for _, conn := range conns {
		if err := conn.Send(payload); err != nil {
			h.logger.Warn("push to connection failed", "conn_id", conn.ID(), "recipient", message.Recipient, "error", err)
			continue
		}
		delivered++
	}
	return delivered, nil
}

// Welcome tells a freshly attached connection which identity it was bound to.
func (h *Hub) Welcome(conn *Connection) {
	payload, err := json.Marshal(Event{Type: EventConnected, Identity: conn.Identity})
	if err != nil {
		return
	}
	_ = conn.Send(payload)
}

// Close sends a going-away frame to every attached connection, including the
// unauthenticated ones, and clears all associations. Hijacked sockets are not
// tracked by http.Server.Shutdown, so this is the only close they get.
func (h *Hub) Close() {
	h.mu.Lock()
	conns := lo.Values(h.attached)
	h.attached = make(map[string]*Connection)
	h.mu.Unlock()

	h.registry.Drain()
	for _, conn := range conns {
		conn.Close(websocket.CloseGoingAway, "server shutdown")
	}
}

// Attached counts live connections, associated or not.
func (h *Hub) Attached() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.attached)
}
