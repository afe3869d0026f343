package boltstore

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"agora/internal/moderation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestAuditStore(t *testing.T) *AuditStore {
	store, err := Open(Options{Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() {
		store.Close()
	})
	return store.AuditStore()
}

func TestAuditLog(t *testing.T) {
	ctx := context.Background()
	store := setupTestAuditStore(t)

	t.Run("empty log", func(t *testing.T) {
		entries, err := store.ListAuditLog(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("newest first with limit", func(t *testing.T) {
		now := time.Now()
		for i := 0; i < 5; i++ {
			require.NoError(t, store.LogAction(ctx, moderation.AuditEntry{
				ID:          fmt.Sprintf("audit%d", i),
				Action:      moderation.AuditActionRestrict,
				ModeratorID: "mod",
				TargetKind:  "post",
				TargetID:    fmt.Sprintf("p%d", i),
				Timestamp:   now.Add(time.Duration(i) * time.Second),
			}))
		}

		entries, err := store.ListAuditLog(ctx, 3)
		require.NoError(t, err)
		require.Len(t, entries, 3)
		assert.Equal(t, "audit4", entries[0].ID)
		assert.Equal(t, "audit3", entries[1].ID)
		assert.Equal(t, "audit2", entries[2].ID)
	})

	t.Run("same timestamp keeps both", func(t *testing.T) {
		ts := time.Now().Add(time.Hour)
		require.NoError(t, store.LogAction(ctx, moderation.AuditEntry{ID: "a", Action: moderation.AuditActionBan, Timestamp: ts}))
		require.NoError(t, store.LogAction(ctx, moderation.AuditEntry{ID: "b", Action: moderation.AuditActionUnban, Timestamp: ts}))

		entries, err := store.ListAuditLog(ctx, 100)
		require.NoError(t, err)
		assert.Len(t, entries, 7)
	})
}
