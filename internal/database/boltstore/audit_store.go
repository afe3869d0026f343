package boltstore

import (
	"context"
	"encoding/json"
	"fmt"

	"agora/internal/models"
	"agora/internal/moderation"

	bolt "go.etcd.io/bbolt"
)

// AuditStore persists the moderation audit log in BoltDB.
type AuditStore struct {
	db *bolt.DB
}

// Ensure AuditStore implements the interface at compile time.
var _ moderation.AuditStore = (*AuditStore)(nil)

// LogAction stores a moderation action in the audit log.
func (s *AuditStore) LogAction(ctx context.Context, entry moderation.AuditEntry) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		bucket, err := mustBucket(tx, BucketModerationAuditLog)
		if err != nil {
			return err
		}

		// Timestamp-based key for chronological ordering, ID for uniqueness
		key := fmt.Sprintf("%s:%s", timeKey(entry.Timestamp), entry.ID)
		return putJSON(bucket, []byte(key), entry)
	})
	return models.NewStorageError("log moderation action", err)
}

// ListAuditLog returns the most recent audit log entries, newest first.
func (s *AuditStore) ListAuditLog(ctx context.Context, limit int) ([]moderation.AuditEntry, error) {
	var entries []moderation.AuditEntry

	err := s.db.View(func(tx *bolt.Tx) error {
		bucket, err := mustBucket(tx, BucketModerationAuditLog)
		if err != nil {
			return err
		}

		c := bucket.Cursor()
		for k, v := c.Last(); k != nil && len(entries) < limit; k, v = c.Prev() {
			var entry moderation.AuditEntry
			if err := json.Unmarshal(v, &entry); err != nil {
				continue // Skip malformed entries
			}
			entries = append(entries, entry)
		}
		return nil
	})

	return entries, models.NewStorageError("list audit log", err)
}
