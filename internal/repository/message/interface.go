// File: internal/repository/message/interface.go
package message

import (
	"context"

	"github.com/iyunix/go-bazaar-chat/internal/domain"
)

// MessageRepository is the durable record of direct messages.
type MessageRepository interface {
	Create(ctx context.Context, message *domain.Message) (*domain.Message, error)
	FindByID(ctx context.Context, messageID uint) (*domain.Message, error)
	// FindConversation returns every message exchanged between a and b in either
	// direction, oldest first.
	FindConversation(ctx context.Context, a, b string) ([]domain.Message, error)
	// MarkRead flips the read flag on unread messages from sender to recipient and
	// reports how many rows changed.
	MarkRead(ctx context.Context, sender, recipient string) (int64, error)
	FindUnread(ctx context.Context, recipient string) ([]domain.Message, error)
	CountUnreadBySender(ctx context.Context, recipient string) (map[string]int64, error)
}
