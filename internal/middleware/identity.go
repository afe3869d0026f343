package middleware

import (
	"context"
	"net/http"
	"strings"
)

// UserHeader carries the authenticated user id, set by the upstream gateway
// that terminates authentication.
const UserHeader = "X-Forum-User"

type contextKey string

const userIDKey contextKey = "user_id"

// IdentityMiddleware stores the trusted user id from UserHeader in the request context.
func IdentityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := strings.TrimSpace(r.Header.Get(UserHeader)); id != "" {
			r = r.WithContext(ContextWithUserID(r.Context(), id))
			if info := requestInfoFrom(r); info != nil {
				info.userID = id
			}
		}
		next.ServeHTTP(w, r)
	})
}

// ContextWithUserID returns a context carrying the acting user id.
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the acting user id, or "" for anonymous requests.
func UserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}
