// Package sqlitestore provides SQLite-backed store implementations.
package sqlitestore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"agora/internal/models"
	"agora/internal/moderation"

	"github.com/XSAM/otelsql"
	"go.opentelemetry.io/otel/attribute"
	_ "modernc.org/sqlite"
)

const auditSchema = `
CREATE TABLE IF NOT EXISTS moderation_audit_log (
	id           TEXT PRIMARY KEY,
	action       TEXT NOT NULL,
	moderator_id TEXT NOT NULL,
	target_kind  TEXT NOT NULL,
	target_id    TEXT NOT NULL,
	reason       TEXT NOT NULL DEFAULT '',
	timestamp    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_audit_timestamp ON moderation_audit_log(timestamp);
`

// Open opens (or creates) a SQLite database at path, instrumented with
// OpenTelemetry, and applies the audit schema.
func Open(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := otelsql.Open("sqlite", path,
		otelsql.WithAttributes(attribute.String("db.system", "sqlite")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	// SQLite allows a single writer
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		`PRAGMA journal_mode=WAL;`,
		`PRAGMA busy_timeout=3000;`,
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(auditSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply audit schema: %w", err)
	}
	return db, nil
}

// AuditStore implements moderation.AuditStore using SQLite.
type AuditStore struct {
	db *sql.DB
}

// NewAuditStore creates an AuditStore backed by the given database.
// The database must already have the audit schema applied (see Open).
func NewAuditStore(db *sql.DB) *AuditStore {
	return &AuditStore{db: db}
}

// Ensure AuditStore implements the interface at compile time.
var _ moderation.AuditStore = (*AuditStore)(nil)

func (s *AuditStore) LogAction(ctx context.Context, entry moderation.AuditEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO moderation_audit_log (id, action, moderator_id, target_kind, target_id, reason, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, entry.ID, string(entry.Action), entry.ModeratorID, entry.TargetKind, entry.TargetID, entry.Reason,
		entry.Timestamp.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return models.NewStorageError("log moderation action", err)
	}
	return nil
}

func (s *AuditStore) ListAuditLog(ctx context.Context, limit int) ([]moderation.AuditEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, action, moderator_id, target_kind, target_id, reason, timestamp
		FROM moderation_audit_log ORDER BY timestamp DESC, id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, models.NewStorageError("list audit log", err)
	}
	defer rows.Close()

	var entries []moderation.AuditEntry
	for rows.Next() {
		var e moderation.AuditEntry
		var timestampStr string
		if err := rows.Scan(&e.ID, &e.Action, &e.ModeratorID, &e.TargetKind, &e.TargetID, &e.Reason, &timestampStr); err != nil {
			continue
		}
		e.Timestamp, _ = time.Parse(time.RFC3339Nano, timestampStr)
		entries = append(entries, e)
	}
	return entries, models.NewStorageError("list audit log", rows.Err())
}
