package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/iyunix/go-bazaar-chat/internal/dtos"
	"github.com/iyunix/go-bazaar-chat/internal/repository/user"
	chatservice "github.com/iyunix/go-bazaar-chat/internal/services/chat"
	"github.com/iyunix/go-bazaar-chat/internal/services/user_services"
)

// writeJSON is a helper for sending JSON responses.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError is a helper for sending JSON error responses.
func writeError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps service and validation errors onto HTTP status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	var fieldErr *dtos.FieldError
	var chatErr *chatservice.ChatError
	switch {
	case errors.As(err, &fieldErr):
		writeError(w, fieldErr.Error(), http.StatusBadRequest)
	case chatservice.IsValidation(err):
		errors.As(err, &chatErr)
		writeError(w, chatErr.Message, http.StatusBadRequest)
	case chatservice.IsNotAuthenticated(err),
		errors.Is(err, user_services.ErrInvalidCredentials),
		errors.Is(err, user_services.ErrUnauthenticated):
		writeError(w, "Unauthorized", http.StatusUnauthorized)
	case errors.Is(err, user.ErrUsernameTaken):
		writeError(w, "username already taken", http.StatusConflict)
	default:
		writeError(w, "Internal server error", http.StatusInternalServerError)
	}
}

const maxBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst)
}
