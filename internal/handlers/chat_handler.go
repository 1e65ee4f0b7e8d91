// File: internal/handlers/chat_handler.go
package handlers

import (
	"net/http"
	"strings"

	"github.com/iyunix/go-bazaar-chat/internal/dtos"
	"github.com/iyunix/go-bazaar-chat/internal/services"
)

// ChatHandler exposes the message store over REST. Sender and recipient come from
// the request itself; the bearer token only gates access.
type ChatHandler struct {
	ChatService *services.ChatService
}

func NewChatHandler(cs *services.ChatService) *ChatHandler {
	return &ChatHandler{ChatService: cs}
}

// SendMessage stores a message and pushes it to the recipient's open connections.
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req dtos.SendMessageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := dtos.Validate(req); err != nil {
		writeServiceError(w, err)
		return
	}

	stored, err := h.ChatService.Send(r.Context(), req.Sender, req.Recipient, req.Content)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dtos.FromMessage(*stored))
}

// GetMessages returns the conversation between sender and recipient, oldest first.
func (h *ChatHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	sender, recipient, ok := pairFromQuery(w, r)
	if !ok {
		return
	}
	messages, err := h.ChatService.History(r.Context(), sender, recipient)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dtos.FromMessages(messages))
}

// MarkAsRead flags every unread message from sender to recipient as read. A blank
// party matches nothing, so the call confirms with zero updates.
func (h *ChatHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sender := strings.TrimSpace(q.Get("sender"))
	recipient := strings.TrimSpace(q.Get("recipient"))
	if sender == "" || recipient == "" {
		writeJSON(w, http.StatusOK, dtos.MarkReadResponseDTO{Message: "messages marked as read"})
		return
	}
	updated, err := h.ChatService.MarkRead(r.Context(), sender, recipient)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dtos.MarkReadResponseDTO{Message: "messages marked as read", Updated: updated})
}

// GetUnread lists unread messages addressed to recipient from any sender.
func (h *ChatHandler) GetUnread(w http.ResponseWriter, r *http.Request) {
	recipient := strings.TrimSpace(r.URL.Query().Get("recipient"))
	if recipient == "" {
		writeError(w, "recipient is required", http.StatusBadRequest)
		return
	}
	messages, err := h.ChatService.Unread(r.Context(), recipient)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dtos.FromMessages(messages))
}

// GetUnreadSummary returns unread counts per sender for the widget badge.
func (h *ChatHandler) GetUnreadSummary(w http.ResponseWriter, r *http.Request) {
	recipient := strings.TrimSpace(r.URL.Query().Get("recipient"))
	if recipient == "" {
		writeError(w, "recipient is required", http.StatusBadRequest)
		return
	}
	counts, err := h.ChatService.UnreadSummary(r.Context(), recipient)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

func pairFromQuery(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	q := r.URL.Query()
	sender := strings.TrimSpace(q.Get("sender"))
	recipient := strings.TrimSpace(q.Get("recipient"))
	switch {
	case sender == "":
		writeError(w, "sender is required", http.StatusBadRequest)
		return "", "", false
	case recipient == "":
		writeError(w, "recipient is required", http.StatusBadRequest)
		return "", "", false
	}
	return sender, recipient, true
}
