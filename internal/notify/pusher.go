package notify

import (
	"context"
	"sync"
	"time"

	"agora/internal/metrics"

	"github.com/rs/zerolog/log"
)

// ChannelKindNotifications is the private channel kind notifications are pushed on.
const ChannelKindNotifications = "private-notifications"

// ChannelName returns the channel a pool entry subscribes to.
func ChannelName(kind, poolID string) string {
	return kind + "-" + poolID
}

// Relay is the pub/sub transport realtime messages are delivered through.
type Relay interface {
	Trigger(ctx context.Context, channel, event string, payload any) error
}

// Pusher fans a message out to every live connection of a user.
type Pusher struct {
	relay   Relay
	pool    *ConnectionPool
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewPusher creates a Pusher delivering through relay to the entries in pool.
func NewPusher(relay Relay, pool *ConnectionPool) *Pusher {
	return &Pusher{
		relay:   relay,
		pool:    pool,
		timeout: 10 * time.Second,
	}
}

// Trigger delivers payload on a single channel and waits for the result.
func (p *Pusher) Trigger(ctx context.Context, channel, event string, payload any) error {
	return p.relay.Trigger(ctx, channel, event, payload)
}

// TriggerUser pushes payload to every live pool entry of userID. Each push
// runs in its own detached goroutine; failures are logged and never retried.
// It returns the number of pushes started.
func (p *Pusher) TriggerUser(ctx context.Context, channelKind, event, userID string, payload any) int {
	items := p.pool.ItemsByUser(userID)

	// The triggering request may finish before delivery does.
	detached := context.WithoutCancel(ctx)

	for _, item := range items {
		channel := ChannelName(channelKind, item.PoolID)
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()

			pushCtx, cancel := context.WithTimeout(detached, p.timeout)
			defer cancel()

			if err := p.relay.Trigger(pushCtx, channel, event, payload); err != nil {
				metrics.NotificationPushesTotal.WithLabelValues("failed").Inc()
				log.Warn().Err(err).
					Str("user_id", userID).
					Str("pool_id", item.PoolID).
					Str("event", event).
					Msg("notify: push failed")
				return
			}
			metrics.NotificationPushesTotal.WithLabelValues("sent").Inc()
		}()
	}

	return len(items)
}

// Wait blocks until every push started so far has finished.
func (p *Pusher) Wait() {
	p.wg.Wait()
}
