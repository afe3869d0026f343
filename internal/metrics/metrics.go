package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "agora_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"method", "path"})
)

// Automod metrics
var (
	ClassifierRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_classifier_requests_total",
		Help: "Total number of hate-speech classifier calls by outcome (clean, flagged, error)",
	}, []string{"outcome"})

	ClassifierDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "agora_classifier_duration_seconds",
		Help:    "Hate-speech classifier call duration in seconds",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	})

	HonourChecksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_honour_checks_total",
		Help: "Total number of honour level checks by result (pending, published)",
	}, []string{"result"})
)

// Moderation metrics
var (
	ModeratorActionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_moderator_actions_total",
		Help: "Total number of applied moderator transitions",
	}, []string{"action", "kind"})
)

// Notification metrics
var (
	NotificationsStashedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_notifications_stashed_total",
		Help: "Total number of notifications stashed by event",
	}, []string{"event"})

	NotificationPushesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_notification_pushes_total",
		Help: "Total number of realtime pushes by outcome (sent, failed)",
	}, []string{"outcome"})
)

// Gauges updated periodically by the collector
var (
	LivePoolEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "agora_live_pool_entries",
		Help: "Number of live realtime connection pool entries",
	})

	StashedNotifications = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "agora_stashed_notifications",
		Help: "Number of notifications held in the stash pool",
	})

	RealtimeConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "agora_realtime_connections",
		Help: "Number of open websocket connections",
	})

	PendingContent = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "agora_pending_content",
		Help: "Number of posts and comments awaiting moderator review",
	}, []string{"kind"})
)

// Event counters (incremented on occurrence)
var (
	PostsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_posts_total",
		Help: "Total number of post submissions by status (published, pending, rejected)",
	}, []string{"status"})

	CommentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_comments_total",
		Help: "Total number of comment submissions by status (published, pending, rejected)",
	}, []string{"status"})

	VotesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_votes_total",
		Help: "Total number of vote operations",
	}, []string{"operation"})

	ReportsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agora_reports_total",
		Help: "Total number of user reports submitted",
	})

	AuthLoginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_auth_logins_total",
		Help: "Total number of login attempts",
	}, []string{"status"})
)

// NormalizePath reduces high-cardinality path labels by replacing dynamic
// segments with placeholders. This keeps the metric label space bounded.
func NormalizePath(path string) string {
	segments := splitPath(path)
	if len(segments) < 3 || segments[0] != "api" {
		return path
	}

	switch segments[1] {
	case "posts":
		switch len(segments) {
		case 3:
			return "/api/posts/:id"
		case 4:
			return "/api/posts/:id/" + segments[3]
		}
	case "comments":
		switch len(segments) {
		case 3:
			return "/api/comments/:id"
		case 4:
			return "/api/comments/:id/" + segments[3]
		}
	case "users":
		if len(segments) == 3 {
			return "/api/users/:id"
		}
	case "lookups":
		if len(segments) == 3 {
			return "/api/lookups/" + segments[2]
		}
	case "mod":
		if len(segments) == 5 {
			if segments[2] == "users" {
				return "/api/mod/users/:id/" + segments[4]
			}
			return "/api/mod/" + segments[2] + "/:id/" + segments[4]
		}
	}

	return path
}

func splitPath(path string) []string {
	// Skip leading slash
	if len(path) > 0 && path[0] == '/' {
		path = path[1:]
	}
	// Split on /
	var segments []string
	start := 0
	for i := 0; i < len(path); i++ {
		if path[i] == '/' {
			if i > start {
				segments = append(segments, path[start:i])
			}
			start = i + 1
		}
	}
	if start < len(path) {
		segments = append(segments, path[start:])
	}
	return segments
}
