package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-bazaar-chat/internal/auth"
	"github.com/iyunix/go-bazaar-chat/internal/database"
	"github.com/iyunix/go-bazaar-chat/internal/ratelimit"
	"github.com/iyunix/go-bazaar-chat/internal/realtime"
	"github.com/iyunix/go-bazaar-chat/internal/repository/message"
	"github.com/iyunix/go-bazaar-chat/internal/repository/user"
	"github.com/iyunix/go-bazaar-chat/internal/services"
	"github.com/iyunix/go-bazaar-chat/internal/services/user_services"
)

const testSecret = "handler-test-secret"

type testServer struct {
	*httptest.Server
	hub *realtime.Hub
}

func newTestServer(t *testing.T, authAttempts int) *testServer {
	t.Helper()
	db, err := database.OpenInMemory()
	require.NoError(t, err)

	logger := &services.NoOpLogger{}
	hub := realtime.NewHub(realtime.NewRegistry(), logger)
	chatService, err := services.NewChatService(message.NewMessageRepository(db), hub, logger)
	require.NoError(t, err)

	userRepo := user.NewGormUserRepository(db)
	authService := user_services.NewAuthService(userRepo, testSecret, time.Hour, logger)
	directory := user_services.NewDirectoryService(userRepo, logger)

	limiter := ratelimit.NewMemoryRateLimiter(ratelimit.AuthConfig(authAttempts, time.Minute))
	router := NewRouter(RouterDeps{
		Chat:           NewChatHandler(chatService),
		Auth:           NewAuthHandler(authService, directory),
		Socket:         NewSocketHandler(hub, authService, []string{"*"}, 16, logger),
		Tokens:         authService,
		AuthLimiter:    limiter,
		AllowedOrigins: []string{"*"},
		Logger:         logger,
	})

	srv := httptest.NewServer(router)
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
		limiter.Close()
	})
	return &testServer{Server: srv, hub: hub}
}

func tokenFor(t *testing.T, username string) string {
	t.Helper()
	token, _, err := auth.GenerateJWT(username, "ROLE_USER", []byte(testSecret), time.Hour)
	require.NoError(t, err)
	return token
}

// do sends body as JSON (when non-nil) and returns the status and raw response body.
func (ts *testServer) do(t *testing.T, method, path, token string, body interface{}) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, ts.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}
