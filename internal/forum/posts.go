package forum

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"agora/internal/database"
	"agora/internal/metrics"
	"agora/internal/models"
	"agora/internal/tracing"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// DefaultListLimit is used when a list is requested without a limit.
const DefaultListLimit = 20

// PostService creates and reads posts.
type PostService struct {
	store    database.Store
	screener Screener
	cache    *ProfileCache
	now      func() time.Time
}

// NewPostService creates a PostService.
func NewPostService(store database.Store, screener Screener, cache *ProfileCache) *PostService {
	return &PostService{store: store, screener: screener, cache: cache, now: utcNow}
}

// Create screens and stores a new post. Content from authors with a poor
// track record is stored pending moderator approval.
func (s *PostService) Create(ctx context.Context, authorID string, in models.NewPost) (post *models.Post, err error) {
	ctx, span := tracing.ForumSpan(ctx, "post.create", authorID)
	defer func() {
		tracing.EndWithError(span, err)
		span.End()
	}()

	if err := in.Validate(); err != nil {
		return nil, err
	}
	if _, err := activeUser(ctx, s.store, authorID); err != nil {
		return nil, err
	}
	if err := s.checkClassification(ctx, in.TypeID, in.TagIDs); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(in.Title)
	pending, err := s.screener.CheckForHateSpeech(ctx, title+"\n"+in.Content, authorID)
	if err != nil {
		if models.IsModerationRejected(err) {
			metrics.PostsTotal.WithLabelValues("rejected").Inc()
		}
		return nil, err
	}

	post = &models.Post{
		ID:      models.NewID(),
		Title:   title,
		Content: in.Content,
		TypeID:  in.TypeID,
		TagIDs:  in.TagIDs,
		Pending: pending,
		Authorship: models.Authorship{
			AuthorID:    authorID,
			AuthoredAt:  s.now(),
			Anonymously: in.Anonymously,
		},
	}
	if err := s.store.CreatePost(ctx, post); err != nil {
		return nil, err
	}

	status := "published"
	if pending {
		status = "pending"
	}
	metrics.PostsTotal.WithLabelValues(status).Inc()
	log.Info().Str("post_id", post.ID).Str("user_id", authorID).Bool("pending", pending).Msg("Post created")

	return post, nil
}

// checkClassification verifies the type and tags exist.
func (s *PostService) checkClassification(ctx context.Context, typeID string, tagIDs []string) error {
	if typeID != "" {
		if _, err := s.store.GetLookup(ctx, models.LookupType, typeID); err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return fmt.Errorf("%w: unknown type %s", models.ErrInvalid, typeID)
			}
			return err
		}
	}
	for _, id := range tagIDs {
		if _, err := s.store.GetLookup(ctx, models.LookupTag, id); err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return fmt.Errorf("%w: unknown tag %s", models.ErrInvalid, id)
			}
			return err
		}
	}
	return nil
}

// GetPublic returns a post for public display. Pending, restricted and
// deleted posts are reported as not found.
func (s *PostService) GetPublic(ctx context.Context, id string) (*PostView, error) {
	post, err := s.store.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := postGate(post); err != nil {
		return nil, fmt.Errorf("post %s: %w", id, err)
	}
	return s.hydrate(ctx, post)
}

// ListPublic returns up to limit visible posts, newest first.
func (s *PostService) ListPublic(ctx context.Context, limit int) ([]*PostView, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	posts, err := s.store.ListPosts(ctx, 0)
	if err != nil {
		return nil, err
	}

	views := make([]*PostView, 0, limit)
	for _, post := range posts {
		if len(views) == limit {
			break
		}
		if postGate(post) != nil {
			continue
		}
		view, err := s.hydrate(ctx, post)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// hydrate loads everything a reader sees alongside the post.
func (s *PostService) hydrate(ctx context.Context, post *models.Post) (*PostView, error) {
	view := &PostView{
		ID:          post.ID,
		Title:       post.Title,
		Content:     post.Content,
		Anonymously: post.Anonymously,
		AuthoredAt:  post.AuthoredAt,
		Tags:        []models.Lookup{},
		Awards:      []AwardView{},
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		view.Author = authorView(gctx, s.cache, post.Authorship)
		return nil
	})
	g.Go(func() error {
		tally, err := s.store.CountVotes(gctx, models.Target{Kind: models.TargetPost, ID: post.ID})
		if err != nil {
			return err
		}
		view.Votes = tally
		view.Score = tally.Score()
		return nil
	})
	g.Go(func() error {
		if post.TypeID == "" {
			return nil
		}
		typ, err := s.store.GetLookup(gctx, models.LookupType, post.TypeID)
		if errors.Is(err, models.ErrNotFound) {
			return nil
		}
		view.Type = typ
		return err
	})
	g.Go(func() error {
		for _, id := range post.TagIDs {
			tag, err := s.store.GetLookup(gctx, models.LookupTag, id)
			if errors.Is(err, models.ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			view.Tags = append(view.Tags, *tag)
		}
		return nil
	})
	g.Go(func() error {
		awards, err := s.awards(gctx, post.ID)
		if err != nil {
			return err
		}
		view.Awards = awards
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return view, nil
}

func (s *PostService) awards(ctx context.Context, postID string) ([]AwardView, error) {
	grants, err := s.store.ListAwardGrants(ctx, postID)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, g := range grants {
		counts[g.AwardID]++
	}

	awards := make([]AwardView, 0, len(counts))
	for id, count := range counts {
		award, err := s.store.GetLookup(ctx, models.LookupAward, id)
		if errors.Is(err, models.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		awards = append(awards, AwardView{Lookup: *award, Count: count})
	}
	sort.Slice(awards, func(i, j int) bool {
		if awards[i].Count != awards[j].Count {
			return awards[i].Count > awards[j].Count
		}
		return awards[i].ID < awards[j].ID
	})
	return awards, nil
}
