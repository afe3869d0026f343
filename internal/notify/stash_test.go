package notify

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStashPool_RoundTrip(t *testing.T) {
	pool := NewStashPool()

	pool.Stash("tok-1", "u1", "hello", "", "")

	items := pool.PopAll("u1")
	require.Len(t, items, 1)
	assert.Equal(t, "tok-1", items[0].Token)
	assert.Equal(t, "hello", items[0].Message)
	assert.False(t, items[0].PushedAt.IsZero())

	assert.Empty(t, pool.PopAll("u1"))
}

func TestStashPool_Accumulates(t *testing.T) {
	pool := NewStashPool()

	pool.Stash("a", "u1", "first", "a.png", "alice")
	pool.Stash("b", "u1", "second", "", "")
	pool.Stash("c", "u2", "other", "", "")

	assert.Equal(t, 3, pool.Len())

	items := pool.PopAll("u1")
	require.Len(t, items, 2)
	assert.Equal(t, "first", items[0].Message)
	assert.Equal(t, "alice", items[0].Username)
	assert.Equal(t, "second", items[1].Message)
	assert.Equal(t, 1, pool.Len())
}

func TestStashPool_Drop(t *testing.T) {
	pool := NewStashPool()
	pool.Stash("a", "u1", "first", "", "")

	assert.True(t, pool.Drop("u1"))
	assert.False(t, pool.Drop("u1"))
	assert.Empty(t, pool.PopAll("u1"))
}

func TestStashPool_ConcurrentStashAndPop(t *testing.T) {
	pool := NewStashPool()

	const writers = 8
	const perWriter = 100

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		popped []StashItem
	)

	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				pool.Stash(fmt.Sprintf("%d-%d", w, i), "u1", "msg", "", "")
			}
		}(w)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			items := pool.PopAll("u1")
			mu.Lock()
			popped = append(popped, items...)
			mu.Unlock()
		}
	}()

	wg.Wait()
	<-done
	popped = append(popped, pool.PopAll("u1")...)

	// Every stashed item is popped exactly once.
	assert.Len(t, popped, writers*perWriter)
	seen := make(map[string]bool, len(popped))
	for _, item := range popped {
		assert.False(t, seen[item.Token], "duplicate token %s", item.Token)
		seen[item.Token] = true
	}
}
