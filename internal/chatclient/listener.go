package chatclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/iyunix/go-bazaar-chat/internal/domain"
	"github.com/iyunix/go-bazaar-chat/internal/realtime"
	"github.com/iyunix/go-bazaar-chat/internal/services"
)

// Listener keeps a push connection open and reconnects with exponential backoff.
// Each reconnect authenticates again, so the server builds a fresh association.
type Listener struct {
	URL     string
	Token   func() string
	Backoff Backoff
	Dialer  *websocket.Dialer
	Logger  services.Logger

	// OnConnected receives the identity the server bound the connection to.
	OnConnected func(identity string)
	OnMessage   func(domain.Message)
}

// Run blocks until ctx is cancelled.
func (l *Listener) Run(ctx context.Context) error {
	if err := l.Validate(); err != nil {
		return err
	}
	logger := l.Logger
	if logger == nil {
		logger = &services.NoOpLogger{}
	}
	dialer := l.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}

	retries := 0
	for {
		connected, err := l.session(ctx, dialer)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if connected {
			retries = 0
		}
		delay := l.Backoff.Delay(retries)
		retries++
		logger.Warn("push connection lost", "error", err, "retry_in", delay.String())

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// session runs one connection until it fails. connected reports whether the
// handshake succeeded.
func (l *Listener) session(ctx context.Context, dialer *websocket.Dialer) (connected bool, err error) {
	header := http.Header{}
	if l.Token != nil {
		if token := l.Token(); token != "" {
			header.Set("Authorization", "Bearer "+token)
		}
	}

	ws, _, err := dialer.DialContext(ctx, l.URL, header)
	if err != nil {
		return false, err
	}
	defer ws.Close()

	stop := context.AfterFunc(ctx, func() {
		_ = ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		_ = ws.Close()
	})
	defer stop()

	for {
		_, payload, err := ws.ReadMessage()
		if err != nil {
			return true, err
		}
		var event realtime.Event
		if err := json.Unmarshal(payload, &event); err != nil {
			continue
		}
		switch event.Type {
		case realtime.EventConnected:
			if l.OnConnected != nil {
				l.OnConnected(event.Identity)
			}
		case realtime.EventReceiveMessage:
			if event.Message != nil && l.OnMessage != nil {
				l.OnMessage(*event.Message)
			}
		}
	}
}

var errNoURL = errors.New("listener URL is required")

// Validate reports configuration mistakes before Run.
func (l *Listener) Validate() error {
	if l.URL == "" {
		return errNoURL
	}
	return nil
}
