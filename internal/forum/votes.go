package forum

import (
	"context"
	"fmt"
	"time"

	"agora/internal/database"
	"agora/internal/metrics"
	"agora/internal/models"
	"agora/internal/notify"

	"github.com/rs/zerolog/log"
)

// VoteService casts and withdraws votes.
type VoteService struct {
	store  database.Store
	events notify.Publisher
	cache  *ProfileCache
	now    func() time.Time
}

// NewVoteService creates a VoteService.
func NewVoteService(store database.Store, events notify.Publisher, cache *ProfileCache) *VoteService {
	return &VoteService{store: store, events: events, cache: cache, now: utcNow}
}

// Vote casts an up or down vote on visible content. Repeating the current
// vote is a conflict; voting the other way replaces it. The author of the
// content is notified.
func (s *VoteService) Vote(ctx context.Context, userID string, t models.Target, dir models.VoteDirection) (models.VoteTally, error) {
	if !t.Kind.Valid() {
		return models.VoteTally{}, fmt.Errorf("%w: unknown target kind %q", models.ErrInvalid, t.Kind)
	}
	if !dir.Valid() {
		return models.VoteTally{}, fmt.Errorf("%w: unknown vote direction %q", models.ErrInvalid, dir)
	}
	if _, err := activeUser(ctx, s.store, userID); err != nil {
		return models.VoteTally{}, err
	}

	subject, err := resolveTarget(ctx, s.store, t)
	if err != nil {
		return models.VoteTally{}, err
	}
	if err := subject.gate(); err != nil {
		return models.VoteTally{}, fmt.Errorf("%s: %w", t.Key(), err)
	}

	// The conflict check happens inside the store's write transaction so two
	// identical concurrent votes cannot both succeed.
	vote := models.Vote{UserID: userID, Target: t, Direction: dir, VotedAt: s.now()}
	previous, err := s.store.PutVote(ctx, vote)
	if err != nil {
		return models.VoteTally{}, err
	}

	operation := "cast"
	if previous != nil {
		operation = "switch"
	}
	metrics.VotesTotal.WithLabelValues(operation).Inc()
	log.Debug().Str("user_id", userID).Str("target", t.Key()).Str("direction", string(dir)).Msg("Vote cast")

	actor := eventActor(ctx, s.cache, userID, false)
	up := dir == models.VoteUp
	if t.Kind == models.TargetPost {
		s.events.Publish(ctx, notify.PostVoted(subject.AuthorID, actor, up, subject.PostID, subject.Text))
	} else {
		s.events.Publish(ctx, notify.CommentVoted(subject.AuthorID, actor, up, subject.PostID, subject.CommentID, subject.Text))
	}

	return s.store.CountVotes(ctx, t)
}

// Unvote withdraws the user's vote on t.
func (s *VoteService) Unvote(ctx context.Context, userID string, t models.Target) (models.VoteTally, error) {
	if !t.Kind.Valid() {
		return models.VoteTally{}, fmt.Errorf("%w: unknown target kind %q", models.ErrInvalid, t.Kind)
	}
	if _, err := activeUser(ctx, s.store, userID); err != nil {
		return models.VoteTally{}, err
	}

	existing, err := s.store.GetVote(ctx, userID, t)
	if err != nil {
		return models.VoteTally{}, err
	}
	if existing == nil {
		return models.VoteTally{}, fmt.Errorf("no vote on %s: %w", t.Key(), models.ErrNotFound)
	}

	if err := s.store.DeleteVote(ctx, userID, t); err != nil {
		return models.VoteTally{}, err
	}
	metrics.VotesTotal.WithLabelValues("withdraw").Inc()

	return s.store.CountVotes(ctx, t)
}
