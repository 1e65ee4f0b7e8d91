package chatclient

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-bazaar-chat/internal/domain"
)

func msg(id uint, from, to, content string) domain.Message {
	return domain.Message{ID: id, Sender: from, Recipient: to, Content: content, Timestamp: time.Unix(int64(id), 0)}
}

func TestApplyIncoming_OpenConversationAppends(t *testing.T) {
	v := OpenConversation(NewView("bob"), "alice", []domain.Message{msg(1, "alice", "bob", "hi")})

	next := ApplyIncoming(v, msg(2, "alice", "bob", "there?"))
	require.Len(t, next.Messages, 2)
	require.Zero(t, next.TotalUnread())
	require.Len(t, v.Messages, 1, "input view is untouched")
}

func TestApplyIncoming_OtherSenderCountsUnread(t *testing.T) {
	v := OpenConversation(NewView("bob"), "alice", nil)

	next := ApplyIncoming(v, msg(1, "carol", "bob", "psst"))
	next = ApplyIncoming(next, msg(2, "carol", "bob", "psst again"))
	require.Empty(t, next.Messages)
	require.Equal(t, 2, next.Unread["carol"])
	require.Equal(t, 2, next.TotalUnread())
	require.Empty(t, v.Unread, "input view is untouched")
}

func TestApplyIncoming_NoOpenConversationCountsUnread(t *testing.T) {
	next := ApplyIncoming(NewView("bob"), msg(1, "alice", "bob", "hi"))
	require.Equal(t, map[string]int{"alice": 1}, next.Unread)
}

func TestApplyIncoming_IgnoresDuplicatesAndOwnEchoes(t *testing.T) {
	v := OpenConversation(NewView("bob"), "alice", []domain.Message{msg(5, "alice", "bob", "hi")})
	require.Len(t, ApplyIncoming(v, msg(5, "alice", "bob", "hi")).Messages, 1)

	echo := ApplyIncoming(NewView("bob"), msg(6, "bob", "carol", "mine"))
	require.Zero(t, echo.TotalUnread())
}

func TestOpenConversation_ResetsOnlyThatCounter(t *testing.T) {
	v := NewView("bob")
	v = ApplyIncoming(v, msg(1, "alice", "bob", "a"))
	v = ApplyIncoming(v, msg(2, "carol", "bob", "c"))

	opened := OpenConversation(v, "alice", []domain.Message{msg(1, "alice", "bob", "a")})
	require.Equal(t, "alice", opened.Correspondent)
	require.Equal(t, map[string]int{"carol": 1}, opened.Unread)
	require.Len(t, opened.Messages, 1)
}

func TestAppendOwn_MarksRead(t *testing.T) {
	v := OpenConversation(NewView("alice"), "bob", nil)
	next := AppendOwn(v, msg(9, "alice", "bob", "sent"))
	require.Len(t, next.Messages, 1)
	require.True(t, next.Messages[0].Read)

	elsewhere := AppendOwn(v, msg(10, "alice", "carol", "wrong pane"))
	require.Empty(t, elsewhere.Messages)
}

func TestSeedUnread_SkipsOpenConversation(t *testing.T) {
	v := OpenConversation(NewView("bob"), "alice", nil)
	next := SeedUnread(v, map[string]int64{"alice": 3, "carol": 2, "dave": 0})
	require.Equal(t, map[string]int{"carol": 2}, next.Unread)
}

func TestCloseConversation(t *testing.T) {
	v := OpenConversation(NewView("bob"), "alice", []domain.Message{msg(1, "alice", "bob", "hi")})
	closed := CloseConversation(v)
	require.Empty(t, closed.Correspondent)
	require.Empty(t, closed.Messages)

	require.Equal(t, 1, ApplyIncoming(closed, msg(2, "alice", "bob", "back?")).Unread["alice"])
}
