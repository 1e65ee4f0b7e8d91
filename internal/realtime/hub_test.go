package realtime

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-bazaar-chat/internal/domain"
	"github.com/iyunix/go-bazaar-chat/internal/services"
)

func testMessage() domain.Message {
	return domain.Message{
		ID:        7,
		Sender:    "alice",
		Recipient: "bob",
		Content:   "Hello",
		Timestamp: time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC),
	}
}

func TestHub_NotifyFansOutToEveryRecipientConnection(t *testing.T) {
	registry := NewRegistry()
	hub := NewHub(registry, &services.NoOpLogger{})
	tab1, tab2 := &fakeSender{id: "b1"}, &fakeSender{id: "b2"}
	other := &fakeSender{id: "a1"}
	registry.Add("bob", tab1)
	registry.Add("bob", tab2)
	registry.Add("alice", other)

	delivered, err := hub.Notify(context.Background(), testMessage())
	require.NoError(t, err)
	require.Equal(t, 2, delivered)
	require.Empty(t, other.received())

	require.Len(t, tab1.received(), 1)
	var event Event
	require.NoError(t, json.Unmarshal(tab1.received()[0], &event))
	require.Equal(t, EventReceiveMessage, event.Type)
	require.Equal(t, uint(7), event.Message.ID)
	require.Equal(t, "Hello", event.Message.Content)
	require.False(t, event.Message.Read)
	require.Equal(t, tab1.received(), tab2.received())
}

func TestHub_NotifyOfflineRecipientIsNotAnError(t *testing.T) {
	hub := NewHub(NewRegistry(), nil)

	delivered, err := hub.Notify(context.Background(), testMessage())
	require.NoError(t, err)
	require.Zero(t, delivered)
}

func TestHub_NotifySkipsFailingConnections(t *testing.T) {
	registry := NewRegistry()
	hub := NewHub(registry, nil)
	healthy := &fakeSender{id: "b1"}
	registry.Add("bob", healthy)
	registry.Add("bob", &fakeSender{id: "b2", err: errBroken})

	delivered, err := hub.Notify(context.Background(), testMessage())
	require.NoError(t, err)
	require.Equal(t, 1, delivered)
	require.Len(t, healthy.received(), 1)
}

func TestHub_NotifyHonoursCancelledContext(t *testing.T) {
	registry := NewRegistry()
	registry.Add("bob", &fakeSender{id: "b1"})
	hub := NewHub(registry, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := hub.Notify(ctx, testMessage())
	require.ErrorIs(t, err, context.Canceled)
}
