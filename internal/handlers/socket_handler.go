package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/iyunix/go-bazaar-chat/internal/auth"
	"github.com/iyunix/go-bazaar-chat/internal/middleware"
	"github.com/iyunix/go-bazaar-chat/internal/realtime"
	"github.com/iyunix/go-bazaar-chat/internal/services"
	chatservice "github.com/iyunix/go-bazaar-chat/internal/services/chat"
)

// SocketHandler upgrades /ws/chat and keeps the connection associated with its
// owner's identity for as long as it stays open.
type SocketHandler struct {
	hub        *realtime.Hub
	validator  middleware.TokenValidator
	upgrader   websocket.Upgrader
	bufferSize int
	logger     services.Logger
}

func NewSocketHandler(hub *realtime.Hub, validator middleware.TokenValidator, allowedOrigins []string, bufferSize int, logger services.Logger) *SocketHandler {
	return &SocketHandler{
		hub:       hub,
		validator: validator,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return middleware.OriginAllowed(allowedOrigins, r.Header.Get("Origin"))
			},
		},
		bufferSize: bufferSize,
		logger:     logger,
	}
}

// ServeHTTP runs one connection from upgrade to disconnect. A missing or bad token
// leaves the socket open but unassociated.
func (h *SocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	identity, err := h.identify(r)
	if err != nil {
		h.logger.Info("websocket handshake without identity", "remote", r.RemoteAddr, "error", err)
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already answered the client.
		h.logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	conn := realtime.NewConnection(identity, ws, h.bufferSize)
	h.hub.Attach(conn)
	defer func() {
		h.hub.Detach(conn)
		conn.Close(websocket.CloseNormalClosure, "")
	}()

	h.hub.Welcome(conn)
	if err := conn.ReadLoop(); err != nil {
		h.logger.Debug("websocket read loop ended", "conn_id", conn.ID(), "error", err)
	}
}

// identify reads the bearer token from the Authorization header, or from the
// access_token query parameter for browsers that cannot set headers on upgrade.
func (h *SocketHandler) identify(r *http.Request) (string, error) {
	token := auth.BearerToken(r.Header.Get("Authorization"))
	if token == "" {
		token = r.URL.Query().Get("access_token")
	}
	username, err := h.validator.ValidateJWTToken(token)
	if err != nil {
		return "", chatservice.NewNotAuthenticatedError("connect", err)
	}
	return username, nil
}
