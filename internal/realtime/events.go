package realtime

import "github.com/iyunix/go-bazaar-chat/internal/domain"

// ReceiveMessage is the only per-message frame; it carries the full record, so
// clients derive their new-message notification from it.
const (
	EventConnected      = "connected"
	EventReceiveMessage = "ReceiveMessage"
)

// Event is the JSON frame pushed from server to client.
type Event struct {
	Type     string          `json:"type"`
	Identity string          `json:"identity,omitempty"`
	Message  *domain.Message `json:"message,omitempty"`
}
