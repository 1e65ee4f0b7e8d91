// File: internal/domain/message.go
package domain

import "time"

// Message is a direct message between two users. Only Read ever changes after
// creation, and only from false to true.
type Message struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	Sender    string    `json:"sender" gorm:"not null;size:64;index:idx_messages_pair,priority:1"`
	Recipient string    `json:"recipient" gorm:"not null;size:64;index:idx_messages_pair,priority:2;index:idx_messages_unread,priority:1"`
	Content   string    `json:"content" gorm:"not null"`
	Timestamp time.Time `json:"timestamp" gorm:"not null;index"`
	Read      bool      `json:"read" gorm:"column:is_read;not null;default:false;index:idx_messages_unread,priority:2"`
}

// Involves reports whether m was exchanged between a and b, in either direction.
func (m Message) Involves(a, b string) bool {
	return (m.Sender == a && m.Recipient == b) || (m.Sender == b && m.Recipient == a)
}
