package middleware

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-bazaar-chat/internal/ratelimit"
	"github.com/iyunix/go-bazaar-chat/internal/services"
)

type stubValidator struct {
	username string
	err      error
}

func (s stubValidator) ValidateJWTToken(token string) (string, error) {
	return s.username, s.err
}

func echoIdentity() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, ok := IdentityFrom(r.Context())
		if !ok {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		w.Write([]byte(username))
	})
}

func TestJWTMiddleware(t *testing.T) {
	tests := []struct {
		name      string
		header    string
		validator stubValidator
		status    int
		body      string
	}{
		{"missing header", "", stubValidator{username: "alice"}, http.StatusUnauthorized, ""},
		{"wrong scheme", "Basic abc", stubValidator{username: "alice"}, http.StatusUnauthorized, ""},
		{"invalid token", "Bearer abc", stubValidator{err: errors.New("expired")}, http.StatusUnauthorized, ""},
		{"valid token", "Bearer abc", stubValidator{username: "alice"}, http.StatusOK, "alice"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/chat/unread", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			NewJWTMiddleware(tt.validator)(echoIdentity()).ServeHTTP(w, r)
			require.Equal(t, tt.status, w.Code)
			if tt.body != "" {
				require.Equal(t, tt.body, w.Body.String())
			}
		})
	}
}

func TestCORS(t *testing.T) {
	handler := CORS([]string{"https://bazaar.example"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	r := httptest.NewRequest(http.MethodOptions, "/api/chat/send", nil)
	r.Header.Set("Origin", "https://bazaar.example")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, "https://bazaar.example", w.Header().Get("Access-Control-Allow-Origin"))

	r = httptest.NewRequest(http.MethodGet, "/health", nil)
	r.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	require.True(t, OriginAllowed([]string{"*"}, "https://any.example"))
	require.True(t, OriginAllowed([]string{"https://a"}, ""))
	require.False(t, OriginAllowed([]string{"https://a"}, "https://b"))
}

func TestRecoverPanic(t *testing.T) {
	handler := RecoverPanic(&services.NoOpLogger{})(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Contains(t, w.Body.String(), "error")
}

type recordingLogger struct {
	services.NoOpLogger
	kv []interface{}
}

func (l *recordingLogger) Info(msg string, keysAndValues ...interface{}) {
	l.kv = keysAndValues
}

func TestLoggingMiddleware_CapturesStatus(t *testing.T) {
	logger := &recordingLogger{}
	handler := LoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/register", nil))
	require.Contains(t, logger.kv, http.StatusCreated)
	require.Contains(t, logger.kv, "/register")
}

type hijackableRecorder struct {
	*httptest.ResponseRecorder
	hijacked bool
}

func (h *hijackableRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h.hijacked = true
	return nil, nil, nil
}

func TestResponseWriter_PassesHijackThrough(t *testing.T) {
	under := &hijackableRecorder{ResponseRecorder: httptest.NewRecorder()}
	rw := newResponseWriter(under)
	_, _, err := rw.Hijack()
	require.NoError(t, err)
	require.True(t, under.hijacked)
	require.Equal(t, http.StatusSwitchingProtocols, rw.statusCode)

	_, _, err = newResponseWriter(httptest.NewRecorder()).Hijack()
	require.Error(t, err)
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := ratelimit.NewMemoryRateLimiter(ratelimit.AuthConfig(2, time.Minute))
	t.Cleanup(limiter.Close)

	status := http.StatusUnauthorized
	handler := RateLimitMiddleware(limiter, "authenticate", &services.NoOpLogger{})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(status) }))

	call := func() *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodPost, "/authenticate", nil)
		r.RemoteAddr = "192.0.2.1:1000"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		return w
	}

	require.Equal(t, http.StatusUnauthorized, call().Code)
	require.Equal(t, http.StatusUnauthorized, call().Code)
	blocked := call()
	require.Equal(t, http.StatusTooManyRequests, blocked.Code)
	require.NotEmpty(t, blocked.Header().Get("Retry-After"))

	other := ratelimit.NewMemoryRateLimiter(ratelimit.AuthConfig(1, time.Minute))
	t.Cleanup(other.Close)
	status = http.StatusOK
	handler = RateLimitMiddleware(other, "authenticate", &services.NoOpLogger{})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(status) }))
	require.Equal(t, http.StatusOK, call().Code)
	require.Equal(t, http.StatusOK, call().Code, "successful logins reset the counter")
}
