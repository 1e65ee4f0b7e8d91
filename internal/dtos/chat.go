// File: internal/dtos/chat.go
package dtos

import (
	"time"

	"github.com/iyunix/go-bazaar-chat/internal/domain"
)

// SendMessageRequest is the body of POST /api/chat/send. Any client timestamp is ignored.
type SendMessageRequest struct {
	Sender    string `json:"sender" validate:"notblank,max=64"`
	Recipient string `json:"recipient" validate:"notblank,max=64"`
	Content   string `json:"content" validate:"notblank,max=10000"`
}

// MessageResponseDTO mirrors the pushed record so REST and websocket payloads look the same.
type MessageResponseDTO struct {
	ID        uint      `json:"id"`
	Sender    string    `json:"sender"`
	Recipient string    `json:"recipient"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Read      bool      `json:"read"`
}

type MarkReadResponseDTO struct {
	Message string `json:"message"`
	Updated int64  `json:"updated"`
}

func FromMessage(m domain.Message) MessageResponseDTO {
	return MessageResponseDTO{
		ID:        m.ID,
		Sender:    m.Sender,
		Recipient: m.Recipient,
		Content:   m.Content,
		Timestamp: m.Timestamp,
		Read:      m.Read,
	}
}

// FromMessages never returns nil so an empty conversation encodes as [].
func FromMessages(messages []domain.Message) []MessageResponseDTO {
	out := make([]MessageResponseDTO, len(messages))
	for i, m := range messages {
		out[i] = FromMessage(m)
	}
	return out
}
