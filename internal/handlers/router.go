// File: internal/handlers/router.go
package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/iyunix/go-bazaar-chat/internal/middleware"
	"github.com/iyunix/go-bazaar-chat/internal/ratelimit"
	"github.com/iyunix/go-bazaar-chat/internal/services"
)

// RouterDeps collects everything the HTTP surface needs.
type RouterDeps struct {
	Chat           *ChatHandler
	Auth           *AuthHandler
	Socket         *SocketHandler
	Tokens         middleware.TokenValidator
	AuthLimiter    *ratelimit.MemoryRateLimiter
	AllowedOrigins []string
	Logger         services.Logger
}

// NewRouter wires every route. CORS wraps the router itself so preflight requests
// are answered even though no route registers OPTIONS.
func NewRouter(deps RouterDeps) http.Handler {
	r := mux.NewRouter()
	authMiddleware := middleware.NewJWTMiddleware(deps.Tokens)

	r.Use(middleware.RecoverPanic(deps.Logger))
	r.Use(middleware.LoggingMiddleware(deps.Logger))

	// --- Public Routes ---
	r.HandleFunc("/health", Health).Methods("GET")
	r.HandleFunc("/api/log", NewLogHandler(deps.Logger)).Methods("POST")
	r.Handle("/ws/chat", deps.Socket).Methods("GET")

	limited := r.NewRoute().Subrouter()
	if deps.AuthLimiter != nil {
		limited.Use(middleware.RateLimitMiddleware(deps.AuthLimiter, "auth", deps.Logger))
	}
	limited.HandleFunc("/register", deps.Auth.Register).Methods("POST")
	limited.HandleFunc("/authenticate", deps.Auth.Authenticate).Methods("POST")

	// --- Protected Routes ---
	protected := r.NewRoute().Subrouter()
	protected.Use(authMiddleware)
	protected.HandleFunc("/me", deps.Auth.Me).Methods("GET")
	protected.HandleFunc("/api/users", deps.Auth.ListUsers).Methods("GET")

	chat := protected.PathPrefix("/api/chat").Subrouter()
	chat.HandleFunc("/send", deps.Chat.SendMessage).Methods("POST")
	chat.HandleFunc("/messages", deps.Chat.GetMessages).Methods("GET")
	chat.HandleFunc("/mark-as-read", deps.Chat.MarkAsRead).Methods("POST")
	chat.HandleFunc("/unread", deps.Chat.GetUnread).Methods("GET")
	chat.HandleFunc("/unread/summary", deps.Chat.GetUnreadSummary).Methods("GET")

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, "Not found", http.StatusNotFound)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	})
	return middleware.CORS(deps.AllowedOrigins)(r)
}
