package boltstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"agora/internal/database"
	"agora/internal/models"

	bolt "go.etcd.io/bbolt"
)

// ForumStore implements database.Store on top of BoltDB.
type ForumStore struct {
	db *bolt.DB
}

// Ensure ForumStore implements the interface at compile time.
var _ database.Store = (*ForumStore)(nil)

// Close closes the underlying database.
func (s *ForumStore) Close() error {
	return s.db.Close()
}

// keySep separates the parts of composite index keys.
const keySep = "|"

func compositeKey(parts ...string) []byte {
	return []byte(strings.Join(parts, keySep))
}

// prefixOf returns the scan prefix for keys starting with the given parts.
func prefixOf(parts ...string) []byte {
	return []byte(strings.Join(parts, keySep) + keySep)
}

// timeKey renders t so that lexical order matches chronological order.
func timeKey(t time.Time) string {
	return fmt.Sprintf("%020d", t.UnixNano())
}

func mustBucket(tx *bolt.Tx, name []byte) (*bolt.Bucket, error) {
	bucket := tx.Bucket(name)
	if bucket == nil {
		return nil, fmt.Errorf("bucket not found: %s", name)
	}
	return bucket, nil
}

func getJSON(bucket *bolt.Bucket, key []byte, v any) (bool, error) {
	data := bucket.Get(key)
	if data == nil {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return true, fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return true, nil
}

func putJSON(bucket *bolt.Bucket, key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	return bucket.Put(key, data)
}

// scanPrefix calls fn for every key in bucket that starts with prefix.
func scanPrefix(bucket *bolt.Bucket, prefix []byte, fn func(k, v []byte) error) error {
	c := bucket.Cursor()
	for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
		if err := fn(k, v); err != nil {
			return err
		}
	}
	return nil
}

// lastSegment returns the part of a composite key after the final separator.
func lastSegment(k []byte) string {
	if i := bytes.LastIndex(k, []byte(keySep)); i >= 0 {
		return string(k[i+1:])
	}
	return string(k)
}

// ========== Posts ==========

// CreatePost stores a new post and indexes it by author.
func (s *ForumStore) CreatePost(ctx context.Context, post *models.Post) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		posts, err := mustBucket(tx, BucketPosts)
		if err != nil {
			return err
		}
		if posts.Get([]byte(post.ID)) != nil {
			return fmt.Errorf("post %s already exists: %w", post.ID, models.ErrConflict)
		}
		if err := putJSON(posts, []byte(post.ID), post); err != nil {
			return err
		}

		byAuthor, err := mustBucket(tx, BucketPostsByAuthor)
		if err != nil {
			return err
		}
		return byAuthor.Put(compositeKey(post.AuthorID, post.ID), []byte{})
	})
	return models.NewStorageError("create post", err)
}

// GetPost retrieves a post by ID.
func (s *ForumStore) GetPost(ctx context.Context, id string) (*models.Post, error) {
	var post *models.Post

	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		post, err = getPostTx(tx, id)
		return err
	})
	if err != nil {
		return nil, models.NewStorageError("get post", err)
	}
	return post, nil
}

func getPostTx(tx *bolt.Tx, id string) (*models.Post, error) {
	posts, err := mustBucket(tx, BucketPosts)
	if err != nil {
		return nil, err
	}
	var post models.Post
	found, err := getJSON(posts, []byte(id), &post)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("post %s: %w", id, models.ErrNotFound)
	}
	return &post, nil
}

// ListPosts returns up to limit posts, newest first. A limit <= 0 returns all posts.
// Post IDs are TIDs, so reverse key order is reverse chronological order.
func (s *ForumStore) ListPosts(ctx context.Context, limit int) ([]*models.Post, error) {
	var posts []*models.Post

	err := s.db.View(func(tx *bolt.Tx) error {
		bucket, err := mustBucket(tx, BucketPosts)
		if err != nil {
			return err
		}

		c := bucket.Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(posts) >= limit {
				break
			}
			var post models.Post
			if err := json.Unmarshal(v, &post); err != nil {
				continue // Skip malformed entries
			}
			posts = append(posts, &post)
		}
		return nil
	})

	return posts, models.NewStorageError("list posts", err)
}

// ListPostsByAuthor returns every post authored by the given user.
func (s *ForumStore) ListPostsByAuthor(ctx context.Context, authorID string) ([]*models.Post, error) {
	var posts []*models.Post

	err := s.db.View(func(tx *bolt.Tx) error {
		byAuthor, err := mustBucket(tx, BucketPostsByAuthor)
		if err != nil {
			return err
		}
		return scanPrefix(byAuthor, prefixOf(authorID), func(k, _ []byte) error {
			post, err := getPostTx(tx, lastSegment(k))
			if err != nil {
				return err
			}
			posts = append(posts, post)
			return nil
		})
	})

	return posts, models.NewStorageError("list posts by author", err)
}

// ListPendingPosts returns every post awaiting moderator review.
func (s *ForumStore) ListPendingPosts(ctx context.Context) ([]*models.Post, error) {
	var posts []*models.Post

	err := s.db.View(func(tx *bolt.Tx) error {
		bucket, err := mustBucket(tx, BucketPosts)
		if err != nil {
			return err
		}
		return bucket.ForEach(func(k, v []byte) error {
			var post models.Post
			if err := json.Unmarshal(v, &post); err != nil {
				return nil // Skip malformed entries
			}
			if post.Pending {
				posts = append(posts, &post)
			}
			return nil
		})
	})

	return posts, models.NewStorageError("list pending posts", err)
}

// updatePost applies fn to a post inside a single write transaction.
func (s *ForumStore) updatePost(op, id string, fn func(*models.Post)) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		post, err := getPostTx(tx, id)
		if err != nil {
			return err
		}
		fn(post)
		return putJSON(tx.Bucket(BucketPosts), []byte(id), post)
	})
	return models.NewStorageError(op, err)
}

// SetPostPending sets or clears the pending flag.
func (s *ForumStore) SetPostPending(ctx context.Context, id string, pending bool) error {
	return s.updatePost("set post pending", id, func(p *models.Post) {
		p.Pending = pending
	})
}

// SetPostRestricted sets the restriction, or clears it when props is nil.
func (s *ForumStore) SetPostRestricted(ctx context.Context, id string, props *models.RestrictedProps) error {
	return s.updatePost("set post restricted", id, func(p *models.Post) {
		p.Restricted = props
	})
}

// SetPostDeleted soft-deletes the post, or restores it when props is nil.
func (s *ForumStore) SetPostDeleted(ctx context.Context, id string, props *models.DeletedProps) error {
	return s.updatePost("set post deleted", id, func(p *models.Post) {
		p.Deleted = props
	})
}
