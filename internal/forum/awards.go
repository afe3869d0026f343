package forum

import (
	"context"
	"fmt"
	"time"

	"agora/internal/database"
	"agora/internal/models"

	"github.com/rs/zerolog/log"
)

// AwardService grants awards to posts.
type AwardService struct {
	store database.Store
	now   func() time.Time
}

// NewAwardService creates an AwardService.
func NewAwardService(store database.Store) *AwardService {
	return &AwardService{store: store, now: utcNow}
}

// Grant gives a visible post an award. A user may grant each award to a post once.
func (s *AwardService) Grant(ctx context.Context, userID, postID, awardID string) (*models.AwardGrant, error) {
	if _, err := activeUser(ctx, s.store, userID); err != nil {
		return nil, err
	}

	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := postGate(post); err != nil {
		return nil, fmt.Errorf("post %s: %w", postID, err)
	}
	if _, err := s.store.GetLookup(ctx, models.LookupAward, awardID); err != nil {
		return nil, err
	}

	grant := models.AwardGrant{
		AwardID:   awardID,
		PostID:    postID,
		GrantedBy: userID,
		GrantedAt: s.now(),
	}
	if err := s.store.GrantAward(ctx, grant); err != nil {
		return nil, err
	}

	log.Info().Str("post_id", postID).Str("award_id", awardID).Str("user_id", userID).Msg("Award granted")
	return &grant, nil
}
