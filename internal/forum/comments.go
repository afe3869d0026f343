package forum

import (
	"context"
	"fmt"
	"sort"
	"time"

	"agora/internal/database"
	"agora/internal/metrics"
	"agora/internal/models"
	"agora/internal/notify"
	"agora/internal/tracing"

	"github.com/rs/zerolog/log"
)

// CommentService creates, lists and pins comments.
type CommentService struct {
	store    database.Store
	screener Screener
	events   notify.Publisher
	cache    *ProfileCache
	now      func() time.Time
}

// NewCommentService creates a CommentService.
func NewCommentService(store database.Store, screener Screener, events notify.Publisher, cache *ProfileCache) *CommentService {
	return &CommentService{store: store, screener: screener, events: events, cache: cache, now: utcNow}
}

// Create screens and stores a reply to a visible post or comment. The author
// of the parent is notified once the reply is public.
func (s *CommentService) Create(ctx context.Context, authorID string, in models.NewComment) (comment *models.Comment, err error) {
	ctx, span := tracing.ForumSpan(ctx, "comment.create", authorID)
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

	postID, parentAuthorID, err := s.resolveParent(ctx, in.ParentKind, in.ParentID)
	if err != nil {
		return nil, err
	}

	pending, err := s.screener.CheckForHateSpeech(ctx, in.Content, authorID)
	if err != nil {
		if models.IsModerationRejected(err) {
			metrics.CommentsTotal.WithLabelValues("rejected").Inc()
		}
		return nil, err
	}

	comment = &models.Comment{
		ID:         models.NewID(),
		PostID:     postID,
		ParentKind: in.ParentKind,
		ParentID:   in.ParentID,
		Content:    in.Content,
		Pending:    pending,
		Authorship: models.Authorship{
			AuthorID:    authorID,
			AuthoredAt:  s.now(),
			Anonymously: in.Anonymously,
		},
	}
	if err := s.store.CreateComment(ctx, comment); err != nil {
		return nil, err
	}

	status := "published"
	if pending {
		status = "pending"
	}
	metrics.CommentsTotal.WithLabelValues(status).Inc()
	log.Info().Str("comment_id", comment.ID).Str("post_id", postID).Str("user_id", authorID).Bool("pending", pending).Msg("Comment created")

	if !pending {
		actor := eventActor(ctx, s.cache, authorID, in.Anonymously)
		if in.ParentKind == models.ParentPost {
			s.events.Publish(ctx, notify.NewCommentOnPost(parentAuthorID, actor, postID, comment.ID, comment.Content))
		} else {
			s.events.Publish(ctx, notify.NewCommentOnComment(parentAuthorID, actor, postID, comment.ID, comment.Content))
		}
	}

	return comment, nil
}

// resolveParent checks the parent, and for replies the root post, are
// publicly visible. It returns the root post id and the parent's author.
func (s *CommentService) resolveParent(ctx context.Context, kind models.ParentKind, parentID string) (postID, authorID string, err error) {
	if kind == models.ParentComment {
		parent, err := s.store.GetComment(ctx, parentID)
		if err != nil {
			return "", "", err
		}
		if err := commentGate(parent); err != nil {
			return "", "", fmt.Errorf("comment %s: %w", parentID, err)
		}
		root, err := s.store.GetPost(ctx, parent.PostID)
		if err != nil {
			return "", "", err
		}
		if err := postGate(root); err != nil {
			return "", "", fmt.Errorf("post %s: %w", root.ID, err)
		}
		return root.ID, parent.AuthorID, nil
	}

	post, err := s.store.GetPost(ctx, parentID)
	if err != nil {
		return "", "", err
	}
	if err := postGate(post); err != nil {
		return "", "", fmt.Errorf("post %s: %w", parentID, err)
	}
	return post.ID, post.AuthorID, nil
}

// ListForPost returns the visible reply tree of a post, pinned comments
// first and otherwise in creation order. Replies under a hidden comment are
// hidden with it.
func (s *CommentService) ListForPost(ctx context.Context, postID string) ([]*CommentView, error) {
	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := postGate(post); err != nil {
		return nil, fmt.Errorf("post %s: %w", postID, err)
	}

	comments, err := s.store.ListCommentsByPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	// Parents are always created before their replies.
	visible := make(map[string]bool, len(comments))
	views := make([]*CommentView, 0, len(comments))
	for _, c := range comments {
		if commentGate(c) != nil {
			continue
		}
		if c.ParentKind == models.ParentComment && !visible[c.ParentID] {
			continue
		}
		visible[c.ID] = true

		tally, err := s.store.CountVotes(ctx, models.Target{Kind: models.TargetComment, ID: c.ID})
		if err != nil {
			return nil, err
		}
		views = append(views, &CommentView{
			ID:          c.ID,
			PostID:      c.PostID,
			ParentKind:  c.ParentKind,
			ParentID:    c.ParentID,
			Content:     c.Content,
			Pinned:      c.Pinned,
			Author:      authorView(ctx, s.cache, c.Authorship),
			Anonymously: c.Anonymously,
			AuthoredAt:  c.AuthoredAt,
			Votes:       tally,
		})
	}

	sort.SliceStable(views, func(i, j int) bool {
		return views[i].Pinned && !views[j].Pinned
	})
	return views, nil
}

// Pin highlights a comment on a post. Only the author of the post may pin,
// and the comment's author is notified.
func (s *CommentService) Pin(ctx context.Context, actorID, commentID string) (*models.Comment, error) {
	comment, post, err := s.pinnable(ctx, actorID, commentID)
	if err != nil {
		return nil, err
	}
	if comment.Pinned {
		return comment, nil
	}

	if err := s.store.SetCommentPinned(ctx, comment.ID, true); err != nil {
		return nil, err
	}
	comment.Pinned = true
	log.Info().Str("comment_id", comment.ID).Str("post_id", post.ID).Msg("Comment pinned")

	actor := eventActor(ctx, s.cache, actorID, post.Anonymously)
	s.events.Publish(ctx, notify.CommentPinned(comment.AuthorID, actor, post.ID, comment.ID, comment.Content))

	return comment, nil
}

// Unpin removes the highlight from a comment.
func (s *CommentService) Unpin(ctx context.Context, actorID, commentID string) (*models.Comment, error) {
	comment, _, err := s.pinnable(ctx, actorID, commentID)
	if err != nil {
		return nil, err
	}
	if !comment.Pinned {
		return comment, nil
	}

	if err := s.store.SetCommentPinned(ctx, comment.ID, false); err != nil {
		return nil, err
	}
	comment.Pinned = false
	return comment, nil
}

func (s *CommentService) pinnable(ctx context.Context, actorID, commentID string) (*models.Comment, *models.Post, error) {
	if _, err := activeUser(ctx, s.store, actorID); err != nil {
		return nil, nil, err
	}
	comment, err := s.store.GetComment(ctx, commentID)
	if err != nil {
		return nil, nil, err
	}
	if err := commentGate(comment); err != nil {
		return nil, nil, fmt.Errorf("comment %s: %w", commentID, err)
	}
	post, err := s.store.GetPost(ctx, comment.PostID)
	if err != nil {
		return nil, nil, err
	}
	if post.AuthorID != actorID {
		return nil, nil, fmt.Errorf("%w: only the post author may pin comments", models.ErrForbidden)
	}
	return comment, post, nil
}
