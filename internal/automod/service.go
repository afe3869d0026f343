// Package automod screens new content with an external hate-speech
// classifier and decides from the author's track record whether the content
// should wait for moderator approval.
package automod

import (
	"context"
	"errors"
	"fmt"
	"time"

	"agora/internal/metrics"
	"agora/internal/models"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Confidence recorded for offences flagged by the classifier path.
const classifierConfidence = 1.0

// rejectionReason is surfaced to the author of flagged content.
const rejectionReason = "hate speech detected"

// HistoryStore is the slice of the user repository automod needs.
type HistoryStore interface {
	AddOffence(ctx context.Context, userID string, record models.OffenceRecord) error
	ListOffences(ctx context.Context, userID string) ([]models.OffenceRecord, error)
	ListPostsByAuthor(ctx context.Context, authorID string) ([]*models.Post, error)
}

// Service runs the automated moderation pipeline.
type Service struct {
	classifier Classifier
	history    HistoryStore
	endpoint   string
	threshold  float64
	now        func() time.Time
}

// NewService creates an automod service. A threshold <= 0 falls back to
// DefaultPendingThreshold.
func NewService(classifier Classifier, history HistoryStore, endpoint string, threshold float64) *Service {
	if threshold <= 0 {
		threshold = DefaultPendingThreshold
	}
	return &Service{
		classifier: classifier,
		history:    history,
		endpoint:   endpoint,
		threshold:  threshold,
		now:        time.Now,
	}
}

// CheckForHateSpeech screens text written by userID.
//
// It fails closed: if the classifier cannot be reached or answers with an
// unexpected shape, the action is rejected. Flagged content is recorded on the
// user's offence history before the rejection is returned. Otherwise pending
// reports whether the content must wait for moderator approval.
func (s *Service) CheckForHateSpeech(ctx context.Context, text, userID string) (pending bool, err error) {
	flagged, err := tracedClassify(ctx, s.classifier, s.endpoint, userID, text)
	if err != nil {
		metrics.ClassifierRequestsTotal.WithLabelValues("error").Inc()
		log.Warn().Err(err).Str("user_id", userID).Msg("Classifier unavailable, rejecting content")
		return false, &models.ModerationRejectedError{Reason: "content could not be screened"}
	}

	if flagged {
		metrics.ClassifierRequestsTotal.WithLabelValues("flagged").Inc()
		record := models.OffenceRecord{
			Timestamp:              s.now().UTC(),
			Content:                text,
			AutoModConfidenceLevel: classifierConfidence,
		}
		if err := s.history.AddOffence(ctx, userID, record); err != nil {
			return false, fmt.Errorf("record offence: %w", err)
		}
		log.Info().Str("user_id", userID).Msg("Content flagged by classifier")
		return false, &models.ModerationRejectedError{Reason: rejectionReason}
	}
	metrics.ClassifierRequestsTotal.WithLabelValues("clean").Inc()

	level, err := s.HonourLevel(ctx, userID)
	if err != nil {
		return false, err
	}

	pending = level < s.threshold
	result := "published"
	if pending {
		result = "pending"
	}
	metrics.HonourChecksTotal.WithLabelValues(result).Inc()
	log.Debug().Str("user_id", userID).Float64("honour_level", level).Bool("pending", pending).Msg("Honour level computed")

	return pending, nil
}

// HonourLevel computes userID's honour level from their offence history and
// the posts they authored that are neither pending nor restricted.
func (s *Service) HonourLevel(ctx context.Context, userID string) (float64, error) {
	var (
		offences []models.OffenceRecord
		posts    []*models.Post
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		offences, err = s.history.ListOffences(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		posts, err = s.history.ListPostsByAuthor(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return 0, err
		}
		return 0, fmt.Errorf("honour level inputs: %w", err)
	}

	clean := 0
	for _, p := range posts {
		if !p.Pending && !p.IsRestricted() {
			clean++
		}
	}

	return ComputeHonourLevel(clean, len(offences)), nil
}
