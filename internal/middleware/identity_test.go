package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentityMiddleware(t *testing.T) {
	var got string
	handler := IdentityMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = UserIDFromContext(r.Context())
	}))

	t.Run("trusted header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
		req.Header.Set(UserHeader, " alice ")
		handler.ServeHTTP(httptest.NewRecorder(), req)
		assert.Equal(t, "alice", got)
	})

	t.Run("anonymous", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
		handler.ServeHTTP(httptest.NewRecorder(), req)
		assert.Empty(t, got)
	})
}
