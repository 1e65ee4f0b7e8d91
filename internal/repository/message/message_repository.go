// File: internal/repository/message/message_repository.go
package message

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/iyunix/go-bazaar-chat/internal/domain"
	"gorm.io/gorm"
)

const maxContentLength = 10000

var (
	ErrMessageNotFound = errors.New("message not found")
	ErrInvalidMessage  = errors.New("invalid message")
)

type gormMessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &gormMessageRepository{db: db}
}

// Create inserts a single message row. The caller stamps Timestamp.
func (r *gormMessageRepository) Create(ctx context.Context, message *domain.Message) (*domain.Message, error) {
	if err := validateMessageInput(message); err != nil {
		return nil, err
	}

	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		// Content is never logged.
		log.Printf("[MessageRepository] Database error creating message %s -> %s: %v", message.Sender, message.Recipient, err)
		return nil, fmt.Errorf("database error creating message: %w", err)
	}
	return message, nil
}

func (r *gormMessageRepository) FindByID(ctx context.Context, messageID uint) (*domain.Message, error) {
	if messageID == 0 {
		return nil, fmt.Errorf("%w: id is required", ErrInvalidMessage)
	}

	var message domain.Message
	err := r.db.WithContext(ctx).First(&message, messageID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMessageNotFound
	}
	if err != nil {
		log.Printf("[MessageRepository] FindByID database error: %v", err)
		return nil, fmt.Errorf("database error fetching message: %w", err)
	}
	return &message, nil
}

func (r *gormMessageRepository) FindConversation(ctx context.Context, a, b string) ([]domain.Message, error) {
	if isBlank(a) || isBlank(b) {
		return nil, fmt.Errorf("%w: both parties are required", ErrInvalidMessage)
	}

	messages := []domain.Message{}
	err := r.db.WithContext(ctx).
		Where("(sender = ? AND recipient = ?) OR (sender = ? AND recipient = ?)", a, b, b, a).
		Order("timestamp asc").
		Order("id asc").
		Find(&messages).Error
	if err != nil {
		log.Printf("[MessageRepository] Database error fetching conversation %s <-> %s: %v", a, b, err)
		return nil, fmt.Errorf("database error fetching conversation: %w", err)
	}
	return messages, nil
}

func (r *gormMessageRepository) MarkRead(ctx context.Context, sender, recipient string) (int64, error) {
	if isBlank(sender) || isBlank(recipient) {
		return 0, fmt.Errorf("%w: sender and recipient are required", ErrInvalidMessage)
	}

	// Only unread rows are touched, so repeating the call changes nothing.
	result := r.db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("sender = ? AND recipient = ? AND is_read = ?", sender, recipient, false).
		Update("is_read", true)
	if result.Error != nil {
		log.Printf("[MessageRepository] Database error marking %s -> %s as read: %v", sender, recipient, result.Error)
		return 0, fmt.Errorf("database error marking messages as read: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *gormMessageRepository) FindUnread(ctx context.Context, recipient string) ([]domain.Message, error) {
	if isBlank(recipient) {
		return nil, fmt.Errorf("%w: recipient is required", ErrInvalidMessage)
	}

	messages := []domain.Message{}
	err := r.db.WithContext(ctx).
		Where("recipient = ? AND is_read = ?", recipient, false).
		Order("timestamp asc").
		Order("id asc").
		Find(&messages).Error
	if err != nil {
		log.Printf("[MessageRepository] Database error fetching unread for %s: %v", recipient, err)
		return nil, fmt.Errorf("database error fetching unread messages: %w", err)
	}
	return messages, nil
}

func (r *gormMessageRepository) CountUnreadBySender(ctx context.Context, recipient string) (map[string]int64, error) {
	if isBlank(recipient) {
		return nil, fmt.Errorf("%w: recipient is required", ErrInvalidMessage)
	}

	var rows []struct {
		Sender string
		Total  int64
	}
	err := r.db.WithContext(ctx).
		Model(&domain.Message{}).
		Select("sender, COUNT(*) AS total").
		Where("recipient = ? AND is_read = ?", recipient, false).
		Group("sender").
		Scan(&rows).Error
	if err != nil {
		log.Printf("[MessageRepository] Database error counting unread for %s: %v", recipient, err)
		return nil, fmt.Errorf("database error counting unread messages: %w", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Sender] = row.Total
	}
	return counts, nil
}

func validateMessageInput(message *domain.Message) error {
	switch {
	case message == nil:
		return fmt.Errorf("%w: message cannot be nil", ErrInvalidMessage)
	case isBlank(message.Sender):
		return fmt.Errorf("%w: sender is required", ErrInvalidMessage)
	case isBlank(message.Recipient):
		return fmt.Errorf("%w: recipient is required", ErrInvalidMessage)
	case isBlank(message.Content):
		return fmt.Errorf("%w: content cannot be empty", ErrInvalidMessage)
	case utf8.RuneCountInString(message.Content) > maxContentLength:
		return fmt.Errorf("%w: content too long (max %d characters)", ErrInvalidMessage, maxContentLength)
	case message.Timestamp.IsZero():
		return fmt.Errorf("%w: timestamp is required", ErrInvalidMessage)
	}
	return nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
