package notify

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// DefaultPoolTTL is how long a connection pool entry survives without being touched.
const DefaultPoolTTL = 30 * time.Minute

// PoolItem maps one live realtime connection to its user.
type PoolItem struct {
	PoolID         string    `json:"pool_id"`
	UserID         string    `json:"user_id"`
	CreatedAt      time.Time `json:"created_at"`
	LastAccessedAt time.Time `json:"last_accessed_at"`
}

// ConnectionPool tracks the live realtime connections of every user.
// A user may hold several entries at once, one per open client.
type ConnectionPool struct {
	mu    sync.Mutex
	items map[string]*PoolItem // keyed by pool ID
	ttl   time.Duration
	now   func() time.Time
}

// NewConnectionPool creates a pool whose entries expire after ttl of inactivity.
func NewConnectionPool(ttl time.Duration) *ConnectionPool {
	if ttl <= 0 {
		ttl = DefaultPoolTTL
	}
	return &ConnectionPool{
		items: make(map[string]*PoolItem),
		ttl:   ttl,
		now:   time.Now,
	}
}

// AddUser registers a new pool entry for userID and returns its pool ID.
func (p *ConnectionPool) AddUser(userID string) string {
	now := p.now()
	item := &PoolItem{
		PoolID:         uuid.NewString(),
		UserID:         userID,
		CreatedAt:      now,
		LastAccessedAt: now,
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.items[item.PoolID] = item
	return item.PoolID
}

// Lookup returns the entry for poolID and refreshes its last access time.
// Expired entries that have not been swept yet are reported as missing.
func (p *ConnectionPool) Lookup(poolID string) (PoolItem, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	item, ok := p.items[poolID]
	if !ok || p.expired(item) {
		return PoolItem{}, false
	}
	item.LastAccessedAt = p.now()
	return *item, true
}

// ItemsByUser returns every live entry registered for userID.
func (p *ConnectionPool) ItemsByUser(userID string) []PoolItem {
	p.mu.Lock()
	defer p.mu.Unlock()

	var items []PoolItem
	for _, item := range p.items {
		if item.UserID == userID && !p.expired(item) {
			items = append(items, *item)
		}
	}
	return items
}

// Remove deletes the entry for poolID.
func (p *ConnectionPool) Remove(poolID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.items, poolID)
}

// Len returns the number of entries, including expired ones not yet swept.
func (p *ConnectionPool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.items)
}

// Sweep removes every entry idle for longer than the TTL and returns how many
// were removed. It holds the same lock as Lookup, so an entry being touched
// is never swept mid-touch.
func (p *ConnectionPool) Sweep() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	removed := 0
	for id, item := range p.items {
		if p.expired(item) {
			delete(p.items, id)
			removed++
		}
	}
	return removed
}

// expired must be called with p.mu held.
func (p *ConnectionPool) expired(item *PoolItem) bool {
	return p.now().Sub(item.LastAccessedAt) > p.ttl
}

// Start sweeps the pool every interval until ctx is cancelled.
func (p *ConnectionPool) Start(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := p.Sweep(); n > 0 {
					log.Debug().Int("removed", n).Msg("notify: swept idle pool entries")
				}
			}
		}
	}()

	log.Info().Dur("ttl", p.ttl).Dur("interval", interval).Msg("Connection pool sweeper started")
}
