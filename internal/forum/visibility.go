package forum

import (
	"context"
	"fmt"

	"agora/internal/database"
	"agora/internal/models"
)

// Content hidden from readers is reported as not found. The three gates are
// independent and checked on every public read.
var (
	ErrAwaitingReview = fmt.Errorf("%w: awaiting moderator review", models.ErrNotFound)
	ErrRestricted     = fmt.Errorf("%w: restricted by a moderator", models.ErrNotFound)
	ErrDeleted        = fmt.Errorf("%w: deleted", models.ErrNotFound)
)

func postGate(p *models.Post) error {
	switch {
	case p.Pending:
		return ErrAwaitingReview
	case p.IsRestricted():
		return ErrRestricted
	case p.IsDeleted():
		return ErrDeleted
	}
	return nil
}

func commentGate(c *models.Comment) error {
	switch {
	case c.Pending:
		return ErrAwaitingReview
	case c.IsRestricted():
		return ErrRestricted
	case c.IsDeleted():
		return ErrDeleted
	}
	return nil
}

// target is the resolved subject of a vote or report.
type target struct {
	models.Target
	AuthorID   string
	PostID     string
	CommentID  string
	Text       string
	Pending    bool
	Restricted bool
	Deleted    bool
}

func (t *target) gate() error {
	switch {
	case t.Pending:
		return ErrAwaitingReview
	case t.Restricted:
		return ErrRestricted
	case t.Deleted:
		return ErrDeleted
	}
	return nil
}

// resolveTarget loads the post or comment t refers to.
func resolveTarget(ctx context.Context, store database.Store, t models.Target) (*target, error) {
	switch t.Kind {
	case models.TargetPost:
		post, err := store.GetPost(ctx, t.ID)
		if err != nil {
			return nil, err
		}
		return &target{
			Target:     t,
			AuthorID:   post.AuthorID,
			PostID:     post.ID,
			Text:       post.Title,
			Pending:    post.Pending,
			Restricted: post.IsRestricted(),
			Deleted:    post.IsDeleted(),
		}, nil
	case models.TargetComment:
		comment, err := store.GetComment(ctx, t.ID)
		if err != nil {
			return nil, err
		}
		return &target{
			Target:     t,
			AuthorID:   comment.AuthorID,
			PostID:     comment.PostID,
			CommentID:  comment.ID,
			Text:       comment.Content,
			Pending:    comment.Pending,
			Restricted: comment.IsRestricted(),
			Deleted:    comment.IsDeleted(),
		}, nil
	}
	return nil, fmt.Errorf("%w: unknown target kind %q", models.ErrInvalid, t.Kind)
}
