package forum

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"agora/internal/database"
	"agora/internal/metrics"
	"agora/internal/models"

	"github.com/rs/zerolog/log"
)

// ReportService files user reports against content.
type ReportService struct {
	store database.Store
	now   func() time.Time
}

// NewReportService creates a ReportService.
func NewReportService(store database.Store) *ReportService {
	return &ReportService{store: store, now: utcNow}
}

// Report files a report. A user may report a target once, never their own
// content, and never content that is pending or already restricted.
func (s *ReportService) Report(ctx context.Context, reporterID string, t models.Target, reason string) (*models.Report, error) {
	if !t.Kind.Valid() {
		return nil, fmt.Errorf("%w: unknown target kind %q", models.ErrInvalid, t.Kind)
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: reason is required", models.ErrInvalid)
	}
	if utf8.RuneCountInString(reason) > models.MaxReasonLength {
		reason = string([]rune(reason)[:models.MaxReasonLength])
	}

	if _, err := activeUser(ctx, s.store, reporterID); err != nil {
		return nil, err
	}

	subject, err := resolveTarget(ctx, s.store, t)
	if err != nil {
		return nil, err
	}
	switch {
	case subject.Deleted:
		return nil, fmt.Errorf("%s: %w", t.Key(), ErrDeleted)
	case subject.AuthorID == reporterID:
		return nil, fmt.Errorf("%w: cannot report your own content", models.ErrInvalid)
	case subject.Pending:
		return nil, fmt.Errorf("%w: %s is awaiting review", models.ErrConflict, t.Key())
	case subject.Restricted:
		return nil, fmt.Errorf("%w: %s is already restricted", models.ErrConflict, t.Key())
	}

	reported, err := s.store.HasReported(ctx, reporterID, t)
	if err != nil {
		return nil, err
	}
	if reported {
		return nil, fmt.Errorf("%w: already reported %s", models.ErrConflict, t.Key())
	}

	report := models.Report{
		ID:         models.NewID(),
		ReporterID: reporterID,
		Target:     t,
		Reason:     reason,
		ReportedAt: s.now(),
	}
	if err := s.store.CreateReport(ctx, report); err != nil {
		return nil, err
	}

	metrics.ReportsTotal.Inc()
	log.Info().Str("report_id", report.ID).Str("target", t.Key()).Str("user_id", reporterID).Msg("Content reported")

	return &report, nil
}
