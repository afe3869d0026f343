package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		// Exact routes (no normalization needed)
		{"/", "/"},
		{"/metrics", "/metrics"},
		{"/ws", "/ws"},
		{"/api/posts", "/api/posts"},
		{"/api/notifications", "/api/notifications"},
		{"/api/realtime/auth", "/api/realtime/auth"},
		{"/api/mod/audit", "/api/mod/audit"},

		// Posts
		{"/api/posts/3l4abc", "/api/posts/:id"},
		{"/api/posts/3l4abc/comments", "/api/posts/:id/comments"},
		{"/api/posts/3l4abc/awards", "/api/posts/:id/awards"},

		// Comments
		{"/api/comments/3l4xyz", "/api/comments/:id"},
		{"/api/comments/3l4xyz/pin", "/api/comments/:id/pin"},

		// Users and lookups
		{"/api/users/u1", "/api/users/:id"},
		{"/api/lookups/gender", "/api/lookups/gender"},

		// Moderation
		{"/api/mod/post/3l4abc/restrict", "/api/mod/post/:id/restrict"},
		{"/api/mod/comment/3l4xyz/allow", "/api/mod/comment/:id/allow"},
		{"/api/mod/users/u1/ban", "/api/mod/users/:id/ban"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizePath(tt.input))
		})
	}
}

func TestCollect(t *testing.T) {
	collect(context.Background(), StatsSource{
		PoolEntryCount: func() int { return 3 },
		StashedCount:   func() int { return 7 },
		PendingCountByKind: func(context.Context) map[string]int {
			return map[string]int{"post": 4, "comment": 1}
		},
	})

	assert.Equal(t, float64(3), testutil.ToFloat64(LivePoolEntries))
	assert.Equal(t, float64(7), testutil.ToFloat64(StashedNotifications))
	assert.Equal(t, float64(4), testutil.ToFloat64(PendingContent.WithLabelValues("post")))
	assert.Equal(t, float64(1), testutil.ToFloat64(PendingContent.WithLabelValues("comment")))
}

func TestStartCollector_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := make(chan struct{}, 16)

	StartCollector(ctx, StatsSource{
		StashedCount: func() int {
			select {
			case calls <- struct{}{}:
			default:
			}
			return 0
		},
	}, 10*time.Millisecond)

	// Initial collection happens synchronously.
	assert.Len(t, calls, 1)

	assert.Eventually(t, func() bool { return len(calls) >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
}

func histogramCount(t *testing.T) uint64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, ClassifierDuration.Write(&m))
	return m.GetHistogram().GetSampleCount()
}

func TestClassifierDuration_Observes(t *testing.T) {
	before := histogramCount(t)

	ClassifierDuration.Observe(0.2)
	ClassifierDuration.Observe(3)

	assert.Equal(t, before+2, histogramCount(t))
}

func TestHTTPRequestDuration_Buckets(t *testing.T) {
	HTTPRequestDuration.WithLabelValues("GET", "/api/posts/:id").Observe(0.003)

	var m dto.Metric
	observer := HTTPRequestDuration.WithLabelValues("GET", "/api/posts/:id")
	require.NoError(t, observer.(interface{ Write(*dto.Metric) error }).Write(&m))

	buckets := m.GetHistogram().GetBucket()
	require.NotEmpty(t, buckets)
	assert.InDelta(t, 0.001, buckets[0].GetUpperBound(), 1e-12)
	assert.GreaterOrEqual(t, buckets[1].GetCumulativeCount(), uint64(1))
}

func TestCollect_LeavesRealtimeConnectionsToHub(t *testing.T) {
	RealtimeConnections.Set(5)
	t.Cleanup(func() { RealtimeConnections.Set(0) })

	collect(context.Background(), StatsSource{
		PoolEntryCount: func() int { return 1 },
	})

	assert.Equal(t, float64(5), testutil.ToFloat64(RealtimeConnections))
}
