package forum

import (
	"context"
	"time"

	"agora/internal/database"
	"agora/internal/notify"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// ProfileCache memoizes the display fields carried in notification payloads
// and public views.
type ProfileCache struct {
	users database.UserStore
	cache *expirable.LRU[string, notify.Actor]
}

// NewProfileCache creates a cache holding up to capacity profiles for ttl.
func NewProfileCache(users database.UserStore, capacity int, ttl time.Duration) *ProfileCache {
	return &ProfileCache{
		users: users,
		cache: expirable.NewLRU[string, notify.Actor](capacity, nil, ttl),
	}
}

// Actor returns the display fields for userID.
func (c *ProfileCache) Actor(ctx context.Context, userID string) (notify.Actor, error) {
	if actor, ok := c.cache.Get(userID); ok {
		return actor, nil
	}

	user, err := c.users.GetUser(ctx, userID)
	if err != nil {
		return notify.Actor{}, err
	}
	actor := notify.Actor{ID: user.ID, Username: user.Username, Avatar: user.Avatar}
	c.cache.Add(userID, actor)
	return actor, nil
}

// Invalidate drops userID so the next lookup reloads it.
func (c *ProfileCache) Invalidate(userID string) {
	c.cache.Remove(userID)
}

// Len returns the number of cached profiles.
func (c *ProfileCache) Len() int {
	return c.cache.Len()
}
