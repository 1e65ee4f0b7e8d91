package chatclient

import (
	"maps"
	"slices"

	"github.com/samber/lo"

	"github.com/iyunix/go-bazaar-chat/internal/domain"
)

// View is the derived, client-local conversation state. Reducers never mutate
// their input View; they return a new one.
type View struct {
	Self          string
	Correspondent string // open conversation, empty when none
	Messages      []domain.Message
	Unread        map[string]int
}

func NewView(self string) View {
	return View{Self: self, Unread: map[string]int{}}
}

// TotalUnread is the badge count shown on the closed widget.
func (v View) TotalUnread() int {
	return lo.Sum(lo.Values(v.Unread))
}

// ApplyIncoming folds a pushed message into v. A message belonging to the open
// conversation is appended; anything else bumps its sender's unread counter.
func ApplyIncoming(v View, m domain.Message) View {
	next := v.clone()
	if v.Correspondent != "" && m.Involves(v.Self, v.Correspondent) {
		if m.ID != 0 && slices.ContainsFunc(v.Messages, func(existing domain.Message) bool { return existing.ID == m.ID }) {
			return next
		}
		next.Messages = append(next.Messages, m)
		return next
	}
	if m.Sender != v.Self {
		next.Unread[m.Sender]++
	}
	return next
}

// OpenConversation replaces the message list with history and clears the
// correspondent's unread counter.
func OpenConversation(v View, correspondent string, history []domain.Message) View {
	next := v.clone()
	next.Correspondent = correspondent
	next.Messages = slices.Clone(history)
	delete(next.Unread, correspondent)
	return next
}

// MergeMessages appends to history the messages from late that it does not
// already hold, matching on ID.
func MergeMessages(history, late []domain.Message) []domain.Message {
	merged := slices.Clone(history)
	for _, m := range late {
		if m.ID != 0 && slices.ContainsFunc(merged, func(existing domain.Message) bool { return existing.ID == m.ID }) {
			continue
		}
		merged = append(merged, m)
	}
	return merged
}

// CloseConversation drops the open conversation; later pushes count as unread.
func CloseConversation(v View) View {
	next := v.clone()
	next.Correspondent = ""
	next.Messages = nil
	return next
}

// AppendOwn adds a message the user just sent. It is always shown as read.
func AppendOwn(v View, m domain.Message) View {
	next := v.clone()
	if v.Correspondent == "" || !m.Involves(v.Self, v.Correspondent) {
		return next
	}
	m.Read = true
	next.Messages = append(next.Messages, m)
	return next
}

// SeedUnread merges server-side unread counts, skipping the open conversation.
func SeedUnread(v View, counts map[string]int64) View {
	next := v.clone()
	for sender, n := range counts {
		if sender == v.Correspondent || n <= 0 {
			continue
		}
		next.Unread[sender] = int(n)
	}
	return next
}

func (v View) clone() View {
	out := v
	out.Messages = slices.Clone(v.Messages)
	out.Unread = maps.Clone(v.Unread)
	if out.Unread == nil {
		out.Unread = map[string]int{}
	}
	return out
}
