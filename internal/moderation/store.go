package moderation

import "context"

// AuditStore persists the moderation audit trail.
// Implementations must be safe for concurrent use.
type AuditStore interface {
	LogAction(ctx context.Context, entry AuditEntry) error
	// ListAuditLog returns up to limit entries, newest first.
	ListAuditLog(ctx context.Context, limit int) ([]AuditEntry, error)
}
