package chatclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/iyunix/go-bazaar-chat/internal/domain"
	"github.com/iyunix/go-bazaar-chat/internal/dtos"
	"github.com/iyunix/go-bazaar-chat/internal/services"
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// Client talks to the chat REST surface. Send is never retried automatically
// since the server does not deduplicate.
type Client struct {
	baseURL string
	client  *http.Client
	logger  services.Logger

	mu    sync.RWMutex
	token string
}

func NewClient(baseURL string, logger services.Logger) *Client {
	if logger == nil {
		logger = &services.NoOpLogger{}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}
}

// Token returns the bearer token obtained by the last successful Authenticate.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// SocketURL is the websocket endpoint matching baseURL.
func (c *Client) SocketURL() string {
	switch {
	case strings.HasPrefix(c.baseURL, "https://"):
		return "wss://" + strings.TrimPrefix(c.baseURL, "https://") + "/ws/chat"
	case strings.HasPrefix(c.baseURL, "http://"):
		return "ws://" + strings.TrimPrefix(c.baseURL, "http://") + "/ws/chat"
	default:
		return c.baseURL + "/ws/chat"
	}
}

func (c *Client) Register(ctx context.Context, username, password string) error {
	return c.do(ctx, http.MethodPost, "/register", nil,
		dtos.RegisterRequestDTO{Username: username, Password: password}, nil)
}

// Authenticate logs in and keeps the token for later calls.
func (c *Client) Authenticate(ctx context.Context, username, password string) (time.Time, error) {
	var resp dtos.LoginResponseDTO
	if err := c.do(ctx, http.MethodPost, "/authenticate", nil,
		dtos.LoginRequestDTO{Username: username, Password: password}, &resp); err != nil {
		return time.Time{}, err
	}
	c.SetToken(resp.Token)
	c.logger.Info("authenticated", "username", username, "expires_at", resp.Expiration.Format(time.RFC3339))
	return resp.Expiration, nil
}

func (c *Client) History(ctx context.Context, self, correspondent string) ([]domain.Message, error) {
	var messages []domain.Message
	err := c.do(ctx, http.MethodGet, "/api/chat/messages",
		url.Values{"sender": {self}, "recipient": {correspondent}}, nil, &messages)
	return messages, err
}

func (c *Client) Send(ctx context.Context, sender, recipient, content string) (*domain.Message, error) {
	var stored domain.Message
	if err := c.do(ctx, http.MethodPost, "/api/chat/send", nil,
		dtos.SendMessageRequest{Sender: sender, Recipient: recipient, Content: content}, &stored); err != nil {
		return nil, err
	}
	return &stored, nil
}

func (c *Client) MarkRead(ctx context.Context, sender, recipient string) (int64, error) {
	var resp dtos.MarkReadResponseDTO
	err := c.do(ctx, http.MethodPost, "/api/chat/mark-as-read",
		url.Values{"sender": {sender}, "recipient": {recipient}}, nil, &resp)
	return resp.Updated, err
}

func (c *Client) Unread(ctx context.Context, recipient string) ([]domain.Message, error) {
	var messages []domain.Message
	err := c.do(ctx, http.MethodGet, "/api/chat/unread", url.Values{"recipient": {recipient}}, nil, &messages)
	return messages, err
}

func (c *Client) UnreadSummary(ctx context.Context, recipient string) (map[string]int64, error) {
	counts := map[string]int64{}
	err := c.do(ctx, http.MethodGet, "/api/chat/unread/summary", url.Values{"recipient": {recipient}}, nil, &counts)
	return counts, err
}

// Users returns the usernames the caller can write to.
func (c *Client) Users(ctx context.Context) ([]string, error) {
	var users []dtos.UserResponseDTO
	if err := c.do(ctx, http.MethodGet, "/api/users", nil, nil, &users); err != nil {
		return nil, err
	}
	return lo.Map(users, func(u dtos.UserResponseDTO, _ int) string { return u.Username }), nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("chat API call failed", "method", method, "path", path, "error", err)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		raw, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(raw, &apiErr) != nil || apiErr.Error == "" {
			apiErr.Error = strings.TrimSpace(string(raw))
		}
		return &APIError{Status: resp.StatusCode, Message: apiErr.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
