package chatclient

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/iyunix/go-bazaar-chat/internal/domain"
	"github.com/iyunix/go-bazaar-chat/internal/services"
)

var (
	ErrNoCorrespondent = errors.New("no correspondent selected")
	ErrEmptyMessage    = errors.New("message is empty")
	ErrWidgetClosed    = errors.New("chat widget is closed")
)

// API is the slice of the REST surface a Session needs.
type API interface {
	History(ctx context.Context, self, correspondent string) ([]domain.Message, error)
	Send(ctx context.Context, sender, recipient, content string) (*domain.Message, error)
	MarkRead(ctx context.Context, sender, recipient string) (int64, error)
	UnreadSummary(ctx context.Context, recipient string) (map[string]int64, error)
}

// Snapshot is a read-only copy of the session for rendering.
type Snapshot struct {
	State   WidgetState
	View    View
	Compose string
}

// Session drives one user's chat widget: visibility, the open conversation,
// unread badges, and the compose box. Safe for concurrent use; network calls
// run without the lock held.
type Session struct {
	api    API
	logger services.Logger

	mu      sync.Mutex
	state   WidgetState
	view    View
	compose string

	// pending is the correspondent whose history is being fetched; pushes for
	// that pair are held in buffered until the fetch lands.
	pending  string
	buffered []domain.Message
}

func NewSession(self string, api API, logger services.Logger) *Session {
	if logger == nil {
		logger = &services.NoOpLogger{}
	}
	return &Session{api: api, logger: logger, state: Closed, view: NewView(self)}
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{State: s.state, View: s.view.clone(), Compose: s.compose}
}

func (s *Session) Open() error     { return s.apply(ActionOpen) }
func (s *Session) Minimize() error { return s.apply(ActionMinimize) }
func (s *Session) Expand() error   { return s.apply(ActionExpand) }

// Close hides the widget and leaves the conversation; unread counters survive.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := Transition(s.state, ActionClose)
	if err != nil {
		return err
	}
	s.state = next
	s.view = CloseConversation(s.view)
	s.flushPendingLocked()
	return nil
}

// flushPendingLocked abandons an in-flight selection and applies its held pushes
// to the current view.
func (s *Session) flushPendingLocked() {
	held := s.buffered
	s.pending, s.buffered = "", nil
	for _, m := range held {
		s.view = ApplyIncoming(s.view, m)
	}
}

func (s *Session) apply(action Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := Transition(s.state, action)
	if err != nil {
		return err
	}
	s.state = next
	return nil
}

// LoadUnread seeds badges from the server, e.g. after a reload.
func (s *Session) LoadUnread(ctx context.Context) error {
	s.mu.Lock()
	self := s.view.Self
	s.mu.Unlock()

	counts, err := s.api.UnreadSummary(ctx, self)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.view = SeedUnread(s.view, counts)
	s.mu.Unlock()
	return nil
}

// Select opens the conversation with correspondent: the history replaces the
// message list and the unread counter resets. The server is told the messages
// were read on a best-effort basis. Pushes for the pair that arrive while the
// history is loading are merged into it rather than counted.
func (s *Session) Select(ctx context.Context, correspondent string) error {
	correspondent = strings.TrimSpace(correspondent)
	if correspondent == "" {
		return ErrNoCorrespondent
	}
	s.mu.Lock()
	if !s.state.IsOpen() {
		s.mu.Unlock()
		return ErrWidgetClosed
	}
	if s.pending != "" {
		s.flushPendingLocked()
	}
	self := s.view.Self
	s.pending = correspondent
	s.mu.Unlock()

	history, err := s.api.History(ctx, self, correspondent)

	s.mu.Lock()
	if s.pending != correspondent {
		// Closed or superseded by another selection while fetching.
		closed := !s.state.IsOpen()
		s.mu.Unlock()
		if closed {
			return ErrWidgetClosed
		}
		return err
	}
	if err != nil {
		s.flushPendingLocked()
		s.mu.Unlock()
		return err
	}
	s.view = OpenConversation(s.view, correspondent, MergeMessages(history, s.buffered))
	s.pending, s.buffered = "", nil
	s.mu.Unlock()

	if _, err := s.api.MarkRead(ctx, correspondent, self); err != nil {
		s.logger.Warn("mark as read failed", "correspondent", correspondent, "error", err)
	}
	return nil
}

// Receive applies a pushed message.
func (s *Session) Receive(m domain.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending != "" && m.Involves(s.view.Self, s.pending) {
		s.buffered = append(s.buffered, m)
		return
	}
	s.view = ApplyIncoming(s.view, m)
}

func (s *Session) SetCompose(text string) {
	s.mu.Lock()
	s.compose = text
	s.mu.Unlock()
}

// Submit sends the compose text to the open conversation. On success the
// message is appended as read and the compose box cleared; on failure the
// text stays so the user can retry by hand.
func (s *Session) Submit(ctx context.Context) (*domain.Message, error) {
	s.mu.Lock()
	self, correspondent := s.view.Self, s.view.Correspondent
	content := strings.TrimSpace(s.compose)
	s.mu.Unlock()

	if correspondent == "" {
		return nil, ErrNoCorrespondent
	}
	if content == "" {
		return nil, ErrEmptyMessage
	}

	stored, err := s.api.Send(ctx, self, correspondent, content)
	if err != nil {
		s.logger.Warn("send failed", "recipient", correspondent, "error", err)
		return nil, err
	}

	s.mu.Lock()
	s.view = AppendOwn(s.view, *stored)
	if strings.TrimSpace(s.compose) == content {
		s.compose = ""
	}
	s.mu.Unlock()
	return stored, nil
}
