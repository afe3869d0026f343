package routing

import (
	"net/http"

	"agora/internal/handlers"
	"agora/internal/middleware"
	"agora/internal/realtime"

	"github.com/klauspost/compress/gzhttp"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Config holds the configuration needed for setting up routes
type Config struct {
	Handlers *handlers.Handler
	Hub      *realtime.Hub
	Logger   zerolog.Logger

	// RateLimits are owned by the caller, who stops them on shutdown.
	// Nil disables rate limiting.
	RateLimits *middleware.RateLimitConfig
}

// SetupRouter creates and configures the HTTP router with all routes and middleware
func SetupRouter(cfg Config) http.Handler {
	h := cfg.Handlers
	api := http.NewServeMux()

	// Accounts
	api.HandleFunc("POST /api/auth/register", h.HandleRegister)
	api.HandleFunc("POST /api/auth/login", h.HandleLogin)
	api.HandleFunc("GET /api/users/{id}", h.HandleUserGet)
	api.HandleFunc("PATCH /api/me/profile", h.HandleProfileUpdate)

	// Lookup collections
	api.HandleFunc("GET /api/lookups/{kind}", h.HandleLookupList)
	api.HandleFunc("POST /api/lookups/{kind}", h.HandleLookupCreate)

	// Posts and comments
	api.HandleFunc("POST /api/posts", h.HandlePostCreate)
	api.HandleFunc("GET /api/posts", h.HandlePostList)
	api.HandleFunc("GET /api/posts/{id}", h.HandlePostGet)
	api.HandleFunc("GET /api/posts/{id}/comments", h.HandleCommentList)
	api.HandleFunc("POST /api/posts/{id}/awards", h.HandlePostAward)
	api.HandleFunc("POST /api/comments", h.HandleCommentCreate)
	api.HandleFunc("POST /api/comments/{id}/pin", h.HandleCommentPin)
	api.HandleFunc("DELETE /api/comments/{id}/pin", h.HandleCommentUnpin)

	// Votes and reports
	api.HandleFunc("POST /api/votes", h.HandleVote)
	api.HandleFunc("DELETE /api/votes", h.HandleUnvote)
	api.HandleFunc("POST /api/reports", h.HandleReport)

	// Notifications
	api.HandleFunc("POST /api/realtime/auth", h.HandleRealtimeAuth)
	api.HandleFunc("GET /api/notifications", h.HandleNotificationsPop)
	api.HandleFunc("DELETE /api/notifications", h.HandleNotificationsDrop)

	// Moderation. The users routes are more specific than {kind}.
	api.HandleFunc("POST /api/mod/users/{id}/ban", h.HandleModBan)
	api.HandleFunc("POST /api/mod/users/{id}/unban", h.HandleModUnban)
	api.HandleFunc("POST /api/mod/{kind}/{id}/{action}", h.HandleModContentAction)
	api.HandleFunc("GET /api/mod/audit", h.HandleModAuditLog)
	api.HandleFunc("GET /api/mod/pending", h.HandleModPending)

	mux := http.NewServeMux()
	// Compress JSON responses; the websocket upgrade must see the raw writer
	mux.Handle("/api/", gzhttp.GzipHandler(middleware.RecordRoute(api)))
	mux.HandleFunc("GET /ws", cfg.Hub.ServeWS)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Apply middleware in order (outermost first, innermost last)
	var handler http.Handler = middleware.RecordRoute(mux)

	// 1. Limit request body size (innermost - runs first on request)
	handler = middleware.LimitBodyMiddleware(handler)

	// 2. Resolve the acting user from the trusted gateway header
	handler = middleware.IdentityMiddleware(handler)

	// 3. Apply rate limiting
	if cfg.RateLimits != nil {
		handler = middleware.RateLimitMiddleware(cfg.RateLimits)(handler)
	}

	// 4. Apply security headers
	handler = middleware.SecurityHeadersMiddleware(handler)

	// 5. Apply logging middleware
	handler = middleware.LoggingMiddleware(cfg.Logger)(handler)

	// 6. Trace every request (outermost)
	return otelhttp.NewHandler(handler, "agora.http")
}
