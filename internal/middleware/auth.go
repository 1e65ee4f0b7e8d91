package middleware

import (
	"log"
	"net/http"

	"github.com/iyunix/go-bazaar-chat/internal/auth"
)

// TokenValidator resolves a bearer token to the username it was issued to.
type TokenValidator interface {
	ValidateJWTToken(token string) (string, error)
}

// NewJWTMiddleware rejects requests without a valid "Authorization: Bearer" token.
func NewJWTMiddleware(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := auth.BearerToken(r.Header.Get("Authorization"))
			if token == "" {
				writeJSONError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			username, err := validator.ValidateJWTToken(token)
			if err != nil {
				log.Printf("[AuthMiddleware] Invalid token for %s: %v", r.URL.Path, err)
				writeJSONError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), username)))
		})
	}
}
