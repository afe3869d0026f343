package metrics

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// StatsSource provides functions to retrieve current counts for gauge metrics.
// Nil functions are skipped. RealtimeConnections is not polled: the hub
// updates it as sockets open and close.
type StatsSource struct {
	PoolEntryCount     func() int
	StashedCount       func() int
	PendingCountByKind func(ctx context.Context) map[string]int
}

// StartCollector launches a goroutine that periodically updates gauge metrics.
// It runs every interval until the context is cancelled.
func StartCollector(ctx context.Context, src StatsSource, interval time.Duration) {
	// Do an initial collection immediately
	collect(ctx, src)

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				collect(ctx, src)
			}
		}
	}()

	log.Info().Dur("interval", interval).Msg("Metrics collector started")
}

func collect(ctx context.Context, src StatsSource) {
	if src.PoolEntryCount != nil {
		LivePoolEntries.Set(float64(src.PoolEntryCount()))
	}
	if src.StashedCount != nil {
		StashedNotifications.Set(float64(src.StashedCount()))
	}
	if src.PendingCountByKind != nil {
		for kind, count := range src.PendingCountByKind(ctx) {
			PendingContent.WithLabelValues(kind).Set(float64(count))
		}
	}
}
