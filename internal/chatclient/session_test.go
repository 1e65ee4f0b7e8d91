package chatclient

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-bazaar-chat/internal/domain"
)

type stubAPI struct {
	mu      sync.Mutex
	history map[string][]domain.Message
	sendErr error
	sent    []domain.Message
	marked  [][2]string
	summary map[string]int64
	nextID  uint
	// afterHistory runs once the history snapshot is taken, before it is returned.
	afterHistory func()
}

func (s *stubAPI) History(_ context.Context, self, correspondent string) ([]domain.Message, error) {
	s.mu.Lock()
	history := s.history[correspondent]
	s.mu.Unlock()
	if s.afterHistory != nil {
		s.afterHistory()
	}
	return history, nil
}

func (s *stubAPI) Send(_ context.Context, sender, recipient, content string) (*domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sendErr != nil {
		return nil, s.sendErr
	}
	s.nextID++
	m := domain.Message{ID: s.nextID, Sender: sender, Recipient: recipient, Content: content}
	s.sent = append(s.sent, m)
	return &m, nil
}

func (s *stubAPI) MarkRead(_ context.Context, sender, recipient string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marked = append(s.marked, [2]string{sender, recipient})
	return 1, nil
}

func (s *stubAPI) UnreadSummary(context.Context, string) (map[string]int64, error) {
	return s.summary, nil
}

func TestSession_InitialStateAndTransitions(t *testing.T) {
	s := NewSession("bob", &stubAPI{}, nil)
	require.Equal(t, Closed, s.Snapshot().State)

	require.ErrorIs(t, s.Minimize(), ErrInvalidTransition)
	require.NoError(t, s.Open())
	require.NoError(t, s.Minimize())
	require.Equal(t, OpenMinimized, s.Snapshot().State)
	require.NoError(t, s.Expand())
	require.NoError(t, s.Close())
	require.Equal(t, Closed, s.Snapshot().State)
}

func TestSession_SelectLoadsHistoryAndResetsUnread(t *testing.T) {
	api := &stubAPI{history: map[string][]domain.Message{
		"alice": {msg(1, "alice", "bob", "hi"), msg(2, "bob", "alice", "hey")},
	}}
	s := NewSession("bob", api, nil)

	s.Receive(msg(3, "alice", "bob", "you there?"))
	require.Equal(t, 1, s.Snapshot().View.Unread["alice"])

	require.ErrorIs(t, s.Select(context.Background(), "alice"), ErrWidgetClosed)
	require.NoError(t, s.Open())
	require.NoError(t, s.Select(context.Background(), "alice"))

	snap := s.Snapshot()
	require.Equal(t, "alice", snap.View.Correspondent)
	require.Len(t, snap.View.Messages, 2)
	require.Zero(t, snap.View.Unread["alice"])
	require.Equal(t, [][2]string{{"alice", "bob"}}, api.marked)
}

func TestSession_PushRouting(t *testing.T) {
	s := NewSession("bob", &stubAPI{}, nil)
	require.NoError(t, s.Open())
	require.NoError(t, s.Select(context.Background(), "alice"))

	s.Receive(msg(1, "alice", "bob", "in pane"))
	s.Receive(msg(2, "carol", "bob", "elsewhere"))

	snap := s.Snapshot()
	require.Len(t, snap.View.Messages, 1)
	require.Equal(t, "in pane", snap.View.Messages[0].Content)
	require.Equal(t, map[string]int{"carol": 1}, snap.View.Unread)
}

func TestSession_SubmitValidation(t *testing.T) {
	api := &stubAPI{}
	s := NewSession("alice", api, nil)
	require.NoError(t, s.Open())

	s.SetCompose("hello")
	_, err := s.Submit(context.Background())
	require.ErrorIs(t, err, ErrNoCorrespondent)

	require.NoError(t, s.Select(context.Background(), "bob"))
	s.SetCompose("   ")
	_, err = s.Submit(context.Background())
	require.ErrorIs(t, err, ErrEmptyMessage)
	require.Empty(t, api.sent)
}

func TestSession_SubmitAppendsAsReadAndClearsCompose(t *testing.T) {
	api := &stubAPI{}
	s := NewSession("alice", api, nil)
	require.NoError(t, s.Open())
	require.NoError(t, s.Select(context.Background(), "bob"))

	s.SetCompose("  Hello Bob  ")
	stored, err := s.Submit(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Hello Bob", stored.Content)

	snap := s.Snapshot()
	require.Empty(t, snap.Compose)
	require.Len(t, snap.View.Messages, 1)
	require.True(t, snap.View.Messages[0].Read)
}

func TestSession_SubmitFailureKeepsCompose(t *testing.T) {
	api := &stubAPI{sendErr: errors.New("503")}
	s := NewSession("alice", api, nil)
	require.NoError(t, s.Open())
	require.NoError(t, s.Select(context.Background(), "bob"))

	s.SetCompose("retry me")
	_, err := s.Submit(context.Background())
	require.Error(t, err)

	snap := s.Snapshot()
	require.Equal(t, "retry me", snap.Compose)
	require.Empty(t, snap.View.Messages)
}

func TestSession_LoadUnreadAndCloseKeepsBadges(t *testing.T) {
	api := &stubAPI{summary: map[string]int64{"carol": 4}}
	s := NewSession("bob", api, nil)
	require.NoError(t, s.LoadUnread(context.Background()))
	require.Equal(t, 4, s.Snapshot().View.TotalUnread())

	require.NoError(t, s.Open())
	require.NoError(t, s.Select(context.Background(), "alice"))
	require.NoError(t, s.Close())

	s.Receive(msg(1, "alice", "bob", "while closed"))
	snap := s.Snapshot()
	require.Empty(t, snap.View.Correspondent)
	require.Equal(t, 5, snap.View.TotalUnread())
}

func TestSession_PushDuringHistoryFetchIsKept(t *testing.T) {
	api := &stubAPI{history: map[string][]domain.Message{
		"alice": {msg(1, "alice", "bob", "hi")},
	}}
	s := NewSession("bob", api, nil)
	api.afterHistory = func() {
		s.Receive(msg(1, "alice", "bob", "hi"))
		s.Receive(msg(42, "alice", "bob", "sent while loading"))
		s.Receive(msg(43, "carol", "bob", "unrelated"))
	}
	require.NoError(t, s.Open())
	require.NoError(t, s.Select(context.Background(), "alice"))

	snap := s.Snapshot()
	require.Len(t, snap.View.Messages, 2)
	require.EqualValues(t, 42, snap.View.Messages[1].ID)
	require.Zero(t, snap.View.Unread["alice"])
	require.Equal(t, 1, snap.View.Unread["carol"])
}

func TestSession_CloseDuringHistoryFetchCountsHeldPushes(t *testing.T) {
	api := &stubAPI{}
	s := NewSession("bob", api, nil)
	api.afterHistory = func() {
		s.Receive(msg(7, "alice", "bob", "late"))
		require.NoError(t, s.Close())
	}
	require.NoError(t, s.Open())
	require.ErrorIs(t, s.Select(context.Background(), "alice"), ErrWidgetClosed)

	snap := s.Snapshot()
	require.Empty(t, snap.View.Correspondent)
	require.Equal(t, 1, snap.View.Unread["alice"])
	require.Empty(t, api.marked)
}

func TestMergeMessages_SkipsKnownIDs(t *testing.T) {
	merged := MergeMessages(
		[]domain.Message{msg(1, "a", "b", "x")},
		[]domain.Message{msg(1, "a", "b", "x"), msg(2, "b", "a", "y")},
	)
	require.Len(t, merged, 2)
	require.EqualValues(t, 2, merged[1].ID)
}
