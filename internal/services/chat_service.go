// File: internal/services/chat_service.go
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/iyunix/go-bazaar-chat/internal/domain"
	"github.com/iyunix/go-bazaar-chat/internal/repository/message"
	chatservice "github.com/iyunix/go-bazaar-chat/internal/services/chat"
)

// Notifier pushes a stored message to whoever is connected as its recipient.
type Notifier interface {
	Notify(ctx context.Context, message domain.Message) (int, error)
}

type ChatService struct {
	messageRepo message.MessageRepository
	notifier    Notifier
	logger      Logger
	now         func() time.Time
}

func NewChatService(messageRepo message.MessageRepository, notifier Notifier, logger Logger) (*ChatService, error) {
	if messageRepo == nil {
		return nil, chatservice.NewValidationError("constructor", "messageRepo", "message repository is required")
	}
	if logger == nil {
		logger = &NoOpLogger{}
	}
	return &ChatService{
		messageRepo: messageRepo,
		notifier:    notifier,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}, nil
}

// WithClock replaces the timestamp source. Intended for tests.
func (s *ChatService) WithClock(now func() time.Time) *ChatService {
	s.now = now
	return s
}

// Send stores a new message and then pushes it to the recipient. The push is best
// effort: once the write succeeds the send has succeeded, whatever happens to
// delivery. Every call creates a new row; retries produce duplicates.
// Identities are stored trimmed, the same way lookups trim them.
func (s *ChatService) Send(ctx context.Context, sender, recipient, content string) (*domain.Message, error) {
	sender, recipient = strings.TrimSpace(sender), strings.TrimSpace(recipient)
	if err := requireFields("send",
		field{"sender", sender}, field{"recipient", recipient}, field{"content", content}); err != nil {
		return nil, err
	}

	stored, err := s.messageRepo.Create(ctx, &domain.Message{
		Sender:    sender,
		Recipient: recipient,
		Content:   content,
		Timestamp: s.now(),
		Read:      false,
	})
	if errors.Is(err, message.ErrInvalidMessage) {
		return nil, chatservice.NewValidationError("send", "content", err.Error())
	}
	if err != nil {
		s.logger.Error("message persistence failed", "sender", sender, "recipient", recipient, "error", err)
		return nil, chatservice.NewPersistenceError("send", "could not store message", err)
	}

	s.push(ctx, *stored)
	return stored, nil
}

func (s *ChatService) push(ctx context.Context, stored domain.Message) {
	if s.notifier == nil {
		return
	}
	// The sender may hang up as soon as the write lands; delivery should not be cut short by that.
	delivered, err := s.notifier.Notify(context.WithoutCancel(ctx), stored)
	if err != nil {
		s.logger.Warn("message push failed", "message_id", stored.ID, "recipient", stored.Recipient, "error", err)
		return
	}
	s.logger.Debug("message pushed", "message_id", stored.ID, "recipient", stored.Recipient, "connections", delivered)
}

// History returns the conversation between a and b in either direction, oldest first.
func (s *ChatService) History(ctx context.Context, a, b string) ([]domain.Message, error) {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if err := requireFields("history", field{"sender", a}, field{"recipient", b}); err != nil {
		return nil, err
	}
	messages, err := s.messageRepo.FindConversation(ctx, a, b)
	if err != nil {
		return nil, chatservice.NewPersistenceError("history", "could not load conversation", err)
	}
	return messages, nil
}

// MarkRead marks every unread message from sender to recipient as read. Repeating
// it is harmless and reports zero updates.
func (s *ChatService) MarkRead(ctx context.Context, sender, recipient string) (int64, error) {
	sender, recipient = strings.TrimSpace(sender), strings.TrimSpace(recipient)
	if err := requireFields("mark_read", field{"sender", sender}, field{"recipient", recipient}); err != nil {
		return 0, err
	}
	updated, err := s.messageRepo.MarkRead(ctx, sender, recipient)
	if err != nil {
		return 0, chatservice.NewPersistenceError("mark_read", "could not mark messages as read", err)
	}
	if updated > 0 {
		s.logger.Info("messages marked as read", "sender", sender, "recipient", recipient, "updated", updated)
	}
	return updated, nil
}

// Unread returns all unread messages addressed to recipient across all senders.
func (s *ChatService) Unread(ctx context.Context, recipient string) ([]domain.Message, error) {
	recipient = strings.TrimSpace(recipient)
	if err := requireFields("unread", field{"recipient", recipient}); err != nil {
		return nil, err
	}
	messages, err := s.messageRepo.FindUnread(ctx, recipient)
	if err != nil {
		return nil, chatservice.NewPersistenceError("unread", "could not load unread messages", err)
	}
	return messages, nil
}

// UnreadSummary counts unread messages for recipient per sender.
func (s *ChatService) UnreadSummary(ctx context.Context, recipient string) (map[string]int64, error) {
	recipient = strings.TrimSpace(recipient)
	if err := requireFields("unread_summary", field{"recipient", recipient}); err != nil {
		return nil, err
	}
	counts, err := s.messageRepo.CountUnreadBySender(ctx, recipient)
	if err != nil {
		return nil, chatservice.NewPersistenceError("unread_summary", "could not count unread messages", err)
	}
	return counts, nil
}

type field struct {
	name  string
	value string
}

func requireFields(operation string, fields ...field) error {
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return chatservice.NewValidationError(operation, f.name, f.name+" is required")
		}
	}
	return nil
}
