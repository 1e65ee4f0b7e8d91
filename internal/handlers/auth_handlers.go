// File: internal/handlers/auth_handlers.go
package handlers

import (
	"net/http"

	"github.com/iyunix/go-bazaar-chat/internal/dtos"
	"github.com/iyunix/go-bazaar-chat/internal/middleware"
	"github.com/iyunix/go-bazaar-chat/internal/services/user_services"
)

// AuthHandler holds the dependencies for authentication handlers.
type AuthHandler struct {
	AuthService      *user_services.AuthService
	DirectoryService *user_services.DirectoryService
}

func NewAuthHandler(authService *user_services.AuthService, directory *user_services.DirectoryService) *AuthHandler {
	return &AuthHandler{AuthService: authService, DirectoryService: directory}
}

// Register creates an account and answers 201 with the username.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dtos.RegisterRequestDTO
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := dtos.Validate(req); err != nil {
		writeServiceError(w, err)
		return
	}

	created, err := h.AuthService.Register(r.Context(), req.ToDomain(), req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, dtos.RegisterResponseDTO{Username: created.Username})
}

// Authenticate exchanges credentials for a bearer token.
func (h *AuthHandler) Authenticate(w http.ResponseWriter, r *http.Request) {
	var req dtos.LoginRequestDTO
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := dtos.Validate(req); err != nil {
		writeServiceError(w, err)
		return
	}

	token, expiresAt, err := h.AuthService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dtos.LoginResponseDTO{Token: token, Expiration: expiresAt})
}

// Me returns the account behind the bearer token.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	username, _ := middleware.IdentityFrom(r.Context())
	found, err := h.DirectoryService.Me(r.Context(), username)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dtos.FromUser(*found))
}

// ListUsers returns everyone the caller can start a conversation with.
func (h *AuthHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	username, _ := middleware.IdentityFrom(r.Context())
	users, err := h.DirectoryService.Correspondents(r.Context(), username)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dtos.FromUsers(users))
}
