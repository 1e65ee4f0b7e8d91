package handlers

import (
	"net/http"
	"strings"

	"github.com/iyunix/go-bazaar-chat/internal/services"
)

// FrontendLogPayload defines the structure for logs coming from the chat widget.
type FrontendLogPayload struct {
	Level   string `json:"level"`
	Message string `json:"message"`
	Context any    `json:"context,omitempty"`
}

// NewLogHandler returns a handler that forwards widget log lines to logger at their own level.
func NewLogHandler(logger services.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload FrontendLogPayload
		if err := decodeJSON(w, r, &payload); err != nil {
			writeError(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		kv := []interface{}{"client_message", payload.Message, "context", payload.Context}
		switch strings.ToLower(payload.Level) {
		case "error":
			logger.Error("CLIENT_LOG", kv...)
		case "warn", "warning":
			logger.Warn("CLIENT_LOG", kv...)
		case "debug":
			logger.Debug("CLIENT_LOG", kv...)
		default:
			logger.Info("CLIENT_LOG", kv...)
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// Health answers load balancer probes.
func Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
