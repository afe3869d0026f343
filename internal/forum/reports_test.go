package forum

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"agora/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReport(t *testing.T) {
	ctx := context.Background()
	f := setupTestForum(t)
	f.seedPost(t, "p1", "alice", nil)
	target := models.Target{Kind: models.TargetPost, ID: "p1"}

	report, err := f.Reports.Report(ctx, "bob", target, "  off topic  ")
	require.NoError(t, err)
	assert.Equal(t, "off topic", report.Reason)

	_, err = f.Reports.Report(ctx, "bob", target, "again")
	assert.ErrorIs(t, err, models.ErrConflict)

	reports, err := f.store.ListReportsForTarget(ctx, target)
	require.NoError(t, err)
	assert.Len(t, reports, 1)
}

func TestReport_ReasonCapped(t *testing.T) {
	ctx := context.Background()
	f := setupTestForum(t)
	f.seedPost(t, "p1", "alice", nil)

	report, err := f.Reports.Report(ctx, "bob", models.Target{Kind: models.TargetPost, ID: "p1"}, strings.Repeat("é", 600))
	require.NoError(t, err)
	assert.Equal(t, models.MaxReasonLength, utf8.RuneCountInString(report.Reason))
}

func TestReport_Guards(t *testing.T) {
	ctx := context.Background()
	f := setupTestForum(t)
	f.seedPost(t, "p1", "alice", nil)
	f.seedPost(t, "pending", "alice", func(p *models.Post) { p.Pending = true })
	f.seedComment(t, "restricted", "p1", "alice", func(c *models.Comment) {
		c.Restricted = &models.RestrictedProps{Reason: "r"}
	})

	tests := []struct {
		name     string
		reporter string
		target   models.Target
		reason   string
		want     error
	}{
		{"own content", "alice", models.Target{Kind: models.TargetPost, ID: "p1"}, "x", models.ErrInvalid},
		{"pending content", "bob", models.Target{Kind: models.TargetPost, ID: "pending"}, "x", models.ErrConflict},
		{"restricted content", "bob", models.Target{Kind: models.TargetComment, ID: "restricted"}, "x", models.ErrConflict},
		{"missing content", "bob", models.Target{Kind: models.TargetPost, ID: "nope"}, "x", models.ErrNotFound},
		{"empty reason", "bob", models.Target{Kind: models.TargetPost, ID: "p1"}, "   ", models.ErrInvalid},
		{"banned reporter", "banned", models.Target{Kind: models.TargetPost, ID: "p1"}, "x", models.ErrBanned},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.Reports.Report(ctx, tt.reporter, tt.target, tt.reason)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
