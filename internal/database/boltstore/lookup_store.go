package boltstore

import (
	"context"
	"encoding/json"
	"fmt"

	"agora/internal/models"

	bolt "go.etcd.io/bbolt"
)

// CreateLookup stores a lookup entry under its kind.
func (s *ForumStore) CreateLookup(ctx context.Context, lookup *models.Lookup) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		bucket, err := mustBucket(tx, BucketLookups)
		if err != nil {
			return err
		}
		key := compositeKey(string(lookup.Kind), lookup.ID)
		if bucket.Get(key) != nil {
			return fmt.Errorf("%s %s already exists: %w", lookup.Kind, lookup.ID, models.ErrConflict)
		}
		return putJSON(bucket, key, lookup)
	})
	return models.NewStorageError("create lookup", err)
}

// GetLookup retrieves a lookup entry by kind and ID.
func (s *ForumStore) GetLookup(ctx context.Context, kind models.LookupKind, id string) (*models.Lookup, error) {
	var lookup models.Lookup

	err := s.db.View(func(tx *bolt.Tx) error {
		bucket, err := mustBucket(tx, BucketLookups)
		if err != nil {
			return err
		}
		found, err := getJSON(bucket, compositeKey(string(kind), id), &lookup)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("%s %s: %w", kind, id, models.ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return nil, models.NewStorageError("get lookup", err)
	}
	return &lookup, nil
}

// ListLookups returns every entry of the given kind.
func (s *ForumStore) ListLookups(ctx context.Context, kind models.LookupKind) ([]models.Lookup, error) {
	var lookups []models.Lookup

	err := s.db.View(func(tx *bolt.Tx) error {
		bucket, err := mustBucket(tx, BucketLookups)
		if err != nil {
			return err
		}
		return scanPrefix(bucket, prefixOf(string(kind)), func(_, v []byte) error {
			var lookup models.Lookup
			if err := json.Unmarshal(v, &lookup); err != nil {
				return nil // Skip malformed entries
			}
			lookups = append(lookups, lookup)
			return nil
		})
	})

	return lookups, models.NewStorageError("list lookups", err)
}

// GrantAward records that a user granted an award to a post.
func (s *ForumStore) GrantAward(ctx context.Context, grant models.AwardGrant) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		bucket, err := mustBucket(tx, BucketAwardGrants)
		if err != nil {
			return err
		}
		key := compositeKey(grant.PostID, grant.AwardID, grant.GrantedBy)
		if bucket.Get(key) != nil {
			return fmt.Errorf("award %s already granted: %w", grant.AwardID, models.ErrConflict)
		}
		return putJSON(bucket, key, grant)
	})
	return models.NewStorageError("grant award", err)
}

// ListAwardGrants returns every award granted to a post.
func (s *ForumStore) ListAwardGrants(ctx context.Context, postID string) ([]models.AwardGrant, error) {
	var grants []models.AwardGrant

	err := s.db.View(func(tx *bolt.Tx) error {
		bucket, err := mustBucket(tx, BucketAwardGrants)
		if err != nil {
			return err
		}
		return scanPrefix(bucket, prefixOf(postID), func(_, v []byte) error {
			var grant models.AwardGrant
			if err := json.Unmarshal(v, &grant); err != nil {
				return nil // Skip malformed entries
			}
			grants = append(grants, grant)
			return nil
		})
	})

	return grants, models.NewStorageError("list award grants", err)
}
