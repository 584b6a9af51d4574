package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/sakif/dev-directory/internal/apperror"
)

// contextKey is an unexported type for context keys in this package,
// so no other package can read or shadow the userID value.
type contextKey string

const userIDKey contextKey = "userID"

// RequireAuth enforces a valid credential on protected routes.
//
// The credential is read from the "Authorization: Bearer <token>"
// header (the directory client keeps its token in localStorage and
// sends it that way), with a fallback to a "token" cookie for browser
// flows (GitHub sign-in sets one). On success the userID lands in the
// request context; on failure the chain stops with 401 for a missing
// or malformed credential and 403 for an expired one, before any
// handler or store is touched.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := extractUserID(r, tokens)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				if errors.Is(err, apperror.ErrTokenExpired) {
					w.WriteHeader(http.StatusForbidden)
					w.Write([]byte(`{"error":"token_expired","message":"credential has expired"}`))
					return
				}
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"unauthenticated","message":"valid credential required"}`))
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext retrieves the authenticated user's ID from the
// request context. Returns ("", false) if the request carried no valid
// credential.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// extractUserID locates the bearer credential and validates it.
func extractUserID(r *http.Request, tokens *TokenService) (string, error) {
	if h := r.Header.Get("Authorization"); h != "" {
		const prefix = "Bearer "
		if !strings.HasPrefix(h, prefix) {
			return "", apperror.Unauthenticated("malformed Authorization header")
		}
		return tokens.Validate(strings.TrimPrefix(h, prefix))
	}

	cookie, err := r.Cookie("token")
	if err != nil {
		return "", apperror.Unauthenticated("no credential presented")
	}
	return tokens.Validate(cookie.Value)
}
