// Package boltstore provides persistent storage using BoltDB (bbolt).
// It implements database.Store for the forum's posts, comments, votes,
// reports, users and lookups, and moderation.AuditStore for the audit log.
//
// Relationship state that a graph would model as edges (AUTHORED, UPVOTES,
// REPORTED, RESTRICTED, ...) is stored either as nullable fields on the entity
// JSON or as composite-key index buckets that can be prefix-scanned.
package boltstore

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Bucket names for organizing data
var (
	// BucketPosts stores posts keyed by ID
	BucketPosts = []byte("posts")

	// BucketPostsByAuthor indexes posts: {author_id|post_id} -> {}
	BucketPostsByAuthor = []byte("posts_by_author")

	// BucketComments stores comments keyed by ID
	BucketComments = []byte("comments")

	// BucketCommentsByPost indexes comments: {post_id|comment_id} -> {}
	BucketCommentsByPost = []byte("comments_by_post")

	// BucketVotes stores vote edges: {target_key|user_id} -> {Vote JSON}
	BucketVotes = []byte("votes")

	// BucketReports stores reports keyed by ID
	BucketReports = []byte("reports")

	// BucketReportsByTarget indexes reports: {target_key|reporter_id} -> {report_id}
	BucketReportsByTarget = []byte("reports_by_target")

	// BucketUsers stores users keyed by ID
	BucketUsers = []byte("users")

	// BucketUsersByName maps normalized usernames to user IDs
	BucketUsersByName = []byte("users_by_name")

	// BucketOffences stores automod offence records: {user_id|timestamp} -> {OffenceRecord JSON}
	BucketOffences = []byte("offences")

	// BucketPreviousBans archives lifted bans: {user_id|timestamp} -> {PreviousBan JSON}
	BucketPreviousBans = []byte("previous_bans")

	// BucketLookups stores gender/sexuality/openness/tag/type/award entries: {kind|id} -> {Lookup JSON}
	BucketLookups = []byte("lookups")

	// BucketAwardGrants stores award grants: {post_id|award_id|user_id} -> {AwardGrant JSON}
	BucketAwardGrants = []byte("award_grants")

	// BucketModerationAuditLog stores moderation action audit trail
	BucketModerationAuditLog = []byte("moderation_audit_log")
)

var allBuckets = [][]byte{
	BucketPosts,
	BucketPostsByAuthor,
	BucketComments,
	BucketCommentsByPost,
	BucketVotes,
	BucketReports,
	BucketReportsByTarget,
	BucketUsers,
	BucketUsersByName,
	BucketOffences,
	BucketPreviousBans,
	BucketLookups,
	BucketAwardGrants,
	BucketModerationAuditLog,
}

// Store wraps a BoltDB database and provides access to specialized stores.
type Store struct {
	db *bolt.DB
}

// Options configures the BoltDB store.
type Options struct {
	// Path to the database file. Parent directories will be created if needed.
	Path string

	// Timeout for obtaining a file lock on the database.
	// If zero, a default of 5 seconds is used.
	Timeout time.Duration

	// FileMode for creating the database file.
	// If zero, 0600 is used.
	FileMode os.FileMode
}

// DefaultOptions returns sensible defaults for development.
func DefaultOptions() Options {
	return Options{
		Path:     "agora.db",
		Timeout:  5 * time.Second,
		FileMode: 0600,
	}
}

// Open creates or opens a BoltDB database at the specified path.
// It creates all necessary buckets if they don't exist.
func Open(opts Options) (*Store, error) {
	if opts.Path == "" {
		opts.Path = "agora.db"
	}
	if opts.Timeout == 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.FileMode == 0 {
		opts.FileMode = 0600
	}

	dir := filepath.Dir(opts.Path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := bolt.Open(opts.Path, opts.FileMode, &bolt.Options{
		Timeout: opts.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// DB returns the underlying BoltDB instance for advanced operations.
func (s *Store) DB() *bolt.DB {
	return s.db
}

// ForumStore returns the forum repositories backed by this database.
func (s *Store) ForumStore() *ForumStore {
	return &ForumStore{db: s.db}
}

// AuditStore returns a moderation audit log store backed by this database.
func (s *Store) AuditStore() *AuditStore {
	return &AuditStore{db: s.db}
}

// Stats returns database statistics.
func (s *Store) Stats() bolt.Stats {
	return s.db.Stats()
}
