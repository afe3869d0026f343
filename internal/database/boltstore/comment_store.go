package boltstore

import (
	"context"
	"encoding/json"
	"fmt"

	"agora/internal/models"

	bolt "go.etcd.io/bbolt"
)

// CreateComment stores a new comment and indexes it under its post.
func (s *ForumStore) CreateComment(ctx context.Context, comment *models.Comment) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		comments, err := mustBucket(tx, BucketComments)
		if err != nil {
			return err
		}
		if comments.Get([]byte(comment.ID)) != nil {
			return fmt.Errorf("comment %s already exists: %w", comment.ID, models.ErrConflict)
		}
		if err := putJSON(comments, []byte(comment.ID), comment); err != nil {
			return err
		}

		byPost, err := mustBucket(tx, BucketCommentsByPost)
		if err != nil {
			return err
		}
		return byPost.Put(compositeKey(comment.PostID, comment.ID), []byte{})
	})
	return models.NewStorageError("create comment", err)
}

// GetComment retrieves a comment by ID.
func (s *ForumStore) GetComment(ctx context.Context, id string) (*models.Comment, error) {
	var comment *models.Comment

	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		comment, err = getCommentTx(tx, id)
		return err
	})
	if err != nil {
		return nil, models.NewStorageError("get comment", err)
	}
	return comment, nil
}

func getCommentTx(tx *bolt.Tx, id string) (*models.Comment, error) {
	comments, err := mustBucket(tx, BucketComments)
	if err != nil {
		return nil, err
	}
	var comment models.Comment
	found, err := getJSON(comments, []byte(id), &comment)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("comment %s: %w", id, models.ErrNotFound)
	}
	return &comment, nil
}

// ListCommentsByPost returns every comment under a post in creation order,
// including nested replies.
func (s *ForumStore) ListCommentsByPost(ctx context.Context, postID string) ([]*models.Comment, error) {
	var comments []*models.Comment

	err := s.db.View(func(tx *bolt.Tx) error {
		byPost, err := mustBucket(tx, BucketCommentsByPost)
		if err != nil {
			return err
		}
		return scanPrefix(byPost, prefixOf(postID), func(k, _ []byte) error {
			comment, err := getCommentTx(tx, lastSegment(k))
			if err != nil {
				return err
			}
			comments = append(comments, comment)
			return nil
		})
	})

	return comments, models.NewStorageError("list comments by post", err)
}

// ListPendingComments returns every comment awaiting moderator review.
func (s *ForumStore) ListPendingComments(ctx context.Context) ([]*models.Comment, error) {
	var comments []*models.Comment

	err := s.db.View(func(tx *bolt.Tx) error {
		bucket, err := mustBucket(tx, BucketComments)
		if err != nil {
			return err
		}
		return bucket.ForEach(func(k, v []byte) error {
			var comment models.Comment
			if err := json.Unmarshal(v, &comment); err != nil {
				return nil // Skip malformed entries
			}
			if comment.Pending {
				comments = append(comments, &comment)
			}
			return nil
		})
	})

	return comments, models.NewStorageError("list pending comments", err)
}

func (s *ForumStore) updateComment(op, id string, fn func(*models.Comment)) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		comment, err := getCommentTx(tx, id)
		if err != nil {
			return err
		}
		fn(comment)
		return putJSON(tx.Bucket(BucketComments), []byte(id), comment)
	})
	return models.NewStorageError(op, err)
}

func (s *ForumStore) SetCommentPending(ctx context.Context, id string, pending bool) error {
	return s.updateComment("set comment pending", id, func(c *models.Comment) {
		c.Pending = pending
	})
}

func (s *ForumStore) SetCommentRestricted(ctx context.Context, id string, props *models.RestrictedProps) error {
	return s.updateComment("set comment restricted", id, func(c *models.Comment) {
		c.Restricted = props
	})
}

func (s *ForumStore) SetCommentDeleted(ctx context.Context, id string, props *models.DeletedProps) error {
	return s.updateComment("set comment deleted", id, func(c *models.Comment) {
		c.Deleted = props
	})
}

func (s *ForumStore) SetCommentPinned(ctx context.Context, id string, pinned bool) error {
	return s.updateComment("set comment pinned", id, func(c *models.Comment) {
		c.Pinned = pinned
	})
}
