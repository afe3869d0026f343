package boltstore

import (
	"context"
	"encoding/json"
	"fmt"

	"agora/internal/models"

	bolt "go.etcd.io/bbolt"
)

// CreateUser stores a new user and claims their normalized username.
func (s *ForumStore) CreateUser(ctx context.Context, user *models.User) error {
	if user.NormalizedUsername == "" {
		user.NormalizedUsername = models.NormalizeUsername(user.Username)
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		byName, err := mustBucket(tx, BucketUsersByName)
		if err != nil {
			return err
		}
		if byName.Get([]byte(user.NormalizedUsername)) != nil {
			return fmt.Errorf("username %q is taken: %w", user.Username, models.ErrConflict)
		}

		users, err := mustBucket(tx, BucketUsers)
		if err != nil {
			return err
		}
		if users.Get([]byte(user.ID)) != nil {
			return fmt.Errorf("user %s already exists: %w", user.ID, models.ErrConflict)
		}
		if err := putJSON(users, []byte(user.ID), user); err != nil {
			return err
		}
		return byName.Put([]byte(user.NormalizedUsername), []byte(user.ID))
	})
	return models.NewStorageError("create user", err)
}

// GetUser retrieves a user by ID.
func (s *ForumStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user *models.User

	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		user, err = getUserTx(tx, id)
		return err
	})
	if err != nil {
		return nil, models.NewStorageError("get user", err)
	}
	return user, nil
}

func getUserTx(tx *bolt.Tx, id string) (*models.User, error) {
	users, err := mustBucket(tx, BucketUsers)
	if err != nil {
		return nil, err
	}
	var user models.User
	found, err := getJSON(users, []byte(id), &user)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("user %s: %w", id, models.ErrNotFound)
	}
	return &user, nil
}

// GetUserByUsername retrieves a user by username, ignoring case.
func (s *ForumStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user *models.User

	err := s.db.View(func(tx *bolt.Tx) error {
		byName, err := mustBucket(tx, BucketUsersByName)
		if err != nil {
			return err
		}
		id := byName.Get([]byte(models.NormalizeUsername(username)))
		if id == nil {
			return fmt.Errorf("username %q: %w", username, models.ErrNotFound)
		}
		user, err = getUserTx(tx, string(id))
		return err
	})
	if err != nil {
		return nil, models.NewStorageError("get user by username", err)
	}
	return user, nil
}

// UpdateUser overwrites a user's profile. The username and ban state are
// owned by CreateUser and the ban methods and are preserved.
func (s *ForumStore) UpdateUser(ctx context.Context, user *models.User) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		existing, err := getUserTx(tx, user.ID)
		if err != nil {
			return err
		}
		updated := *user
		updated.Username = existing.Username
		updated.NormalizedUsername = existing.NormalizedUsername
		updated.Banned = existing.Banned
		return putJSON(tx.Bucket(BucketUsers), []byte(user.ID), &updated)
	})
	return models.NewStorageError("update user", err)
}

func (s *ForumStore) updateUser(op, id string, fn func(*bolt.Tx, *models.User) error) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		user, err := getUserTx(tx, id)
		if err != nil {
			return err
		}
		if err := fn(tx, user); err != nil {
			return err
		}
		return putJSON(tx.Bucket(BucketUsers), []byte(id), user)
	})
	return models.NewStorageError(op, err)
}

// SetUserBanned sets the live ban on a user.
func (s *ForumStore) SetUserBanned(ctx context.Context, id string, props models.BannedProps) error {
	return s.updateUser("ban user", id, func(_ *bolt.Tx, u *models.User) error {
		u.Banned = &props
		return nil
	})
}

// UnbanUser archives the live ban and clears it in one transaction.
func (s *ForumStore) UnbanUser(ctx context.Context, id string, archived models.PreviousBan) error {
	return s.updateUser("unban user", id, func(tx *bolt.Tx, u *models.User) error {
		if u.Banned == nil {
			return fmt.Errorf("user %s is not banned: %w", id, models.ErrConflict)
		}
		bans, err := mustBucket(tx, BucketPreviousBans)
		if err != nil {
			return err
		}
		if err := putJSON(bans, compositeKey(id, timeKey(archived.UnbannedAt)), archived); err != nil {
			return err
		}
		u.Banned = nil
		return nil
	})
}

// ListPreviousBans returns the user's archived bans, oldest first.
func (s *ForumStore) ListPreviousBans(ctx context.Context, id string) ([]models.PreviousBan, error) {
	var bans []models.PreviousBan

	err := s.db.View(func(tx *bolt.Tx) error {
		bucket, err := mustBucket(tx, BucketPreviousBans)
		if err != nil {
			return err
		}
		return scanPrefix(bucket, prefixOf(id), func(_, v []byte) error {
			var ban models.PreviousBan
			if err := json.Unmarshal(v, &ban); err != nil {
				return nil // Skip malformed entries
			}
			bans = append(bans, ban)
			return nil
		})
	})

	return bans, models.NewStorageError("list previous bans", err)
}

// AddOffence appends an automod offence record to the user.
func (s *ForumStore) AddOffence(ctx context.Context, userID string, record models.OffenceRecord) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		if _, err := getUserTx(tx, userID); err != nil {
			return err
		}
		offences, err := mustBucket(tx, BucketOffences)
		if err != nil {
			return err
		}
		// Two offences in the same nanosecond must not overwrite each other.
		seq, err := offences.NextSequence()
		if err != nil {
			return err
		}
		key := compositeKey(userID, timeKey(record.Timestamp), fmt.Sprintf("%010d", seq))
		return putJSON(offences, key, record)
	})
	return models.NewStorageError("add offence", err)
}

// ListOffences returns the user's offence records, oldest first.
func (s *ForumStore) ListOffences(ctx context.Context, userID string) ([]models.OffenceRecord, error) {
	var records []models.OffenceRecord

	err := s.db.View(func(tx *bolt.Tx) error {
		bucket, err := mustBucket(tx, BucketOffences)
		if err != nil {
			return err
		}
		return scanPrefix(bucket, prefixOf(userID), func(_, v []byte) error {
			var record models.OffenceRecord
			if err := json.Unmarshal(v, &record); err != nil {
				return nil // Skip malformed entries
			}
			records = append(records, record)
			return nil
		})
	})

	return records, models.NewStorageError("list offences", err)
}
