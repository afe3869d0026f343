package notify

import (
	"sync"
	"time"
)

// StashItem is a notification held for a subscriber until it is popped or dropped.
type StashItem struct {
	Token        string    `json:"token"`
	SubscriberID string    `json:"subscriber_id"`
	Message      string    `json:"message"`
	Avatar       string    `json:"avatar,omitempty"`
	Username     string    `json:"username,omitempty"`
	PushedAt     time.Time `json:"pushed_at"`
}

// StashPool is an in-memory, per-subscriber list of notifications.
// Stash and PopAll are atomic with respect to each other, so concurrent
// stashes for one subscriber accumulate and a pop never loses an item.
type StashPool struct {
	mu    sync.Mutex
	items map[string][]StashItem
	now   func() time.Time
}

// NewStashPool creates an empty StashPool.
func NewStashPool() *StashPool {
	return &StashPool{
		items: make(map[string][]StashItem),
		now:   time.Now,
	}
}

// Stash appends a notification for subscriberID and returns the stored item.
func (p *StashPool) Stash(token, subscriberID, message, avatar, username string) StashItem {
	item := StashItem{
		Token:        token,
		SubscriberID: subscriberID,
		Message:      message,
		Avatar:       avatar,
		Username:     username,
		PushedAt:     p.now(),
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.items[subscriberID] = append(p.items[subscriberID], item)
	return item
}

// PopAll returns every stashed item for subscriberID, oldest first, and clears them.
func (p *StashPool) PopAll(subscriberID string) []StashItem {
	p.mu.Lock()
	defer p.mu.Unlock()

	items := p.items[subscriberID]
	delete(p.items, subscriberID)
	return items
}

// Drop discards every stashed item for subscriberID.
// It reports whether anything was stashed.
func (p *StashPool) Drop(subscriberID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, ok := p.items[subscriberID]
	delete(p.items, subscriberID)
	return ok
}

// Len returns the total number of stashed items across all subscribers.
func (p *StashPool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := 0
	for _, items := range p.items {
		n += len(items)
	}
	return n
}
