package boltstore

import (
	"context"
	"encoding/json"
	"fmt"

	"agora/internal/models"

	bolt "go.etcd.io/bbolt"
)

func voteKey(userID string, target models.Target) []byte {
	return compositeKey(target.Key(), userID)
}

// GetVote returns the user's vote on target, or nil if they have not voted.
func (s *ForumStore) GetVote(ctx context.Context, userID string, target models.Target) (*models.Vote, error) {
	var vote *models.Vote

	err := s.db.View(func(tx *bolt.Tx) error {
		votes, err := mustBucket(tx, BucketVotes)
		if err != nil {
			return err
		}
		var v models.Vote
		found, err := getJSON(votes, voteKey(userID, target), &v)
		if err != nil || !found {
			return err
		}
		vote = &v
		return nil
	})
	if err != nil {
		return nil, models.NewStorageError("get vote", err)
	}
	return vote, nil
}

// PutVote records the vote and returns the one it replaced, if any. A single
// key per (target, user) means a vote in the other direction is replaced
// within the same transaction; repeating the same direction is a conflict.
func (s *ForumStore) PutVote(ctx context.Context, vote models.Vote) (*models.Vote, error) {
	var previous *models.Vote

	err := s.db.Update(func(tx *bolt.Tx) error {
		votes, err := mustBucket(tx, BucketVotes)
		if err != nil {
			return err
		}
		key := voteKey(vote.UserID, vote.Target)

		var existing models.Vote
		found, err := getJSON(votes, key, &existing)
		if err != nil {
			return err
		}
		if found {
			if existing.Direction == vote.Direction {
				return fmt.Errorf("already voted on %s: %w", vote.Target.Key(), models.ErrConflict)
			}
			previous = &existing
		}
		return putJSON(votes, key, vote)
	})
	if err != nil {
		return nil, models.NewStorageError("put vote", err)
	}
	return previous, nil
}

// DeleteVote removes the user's vote on target. Deleting a missing vote is a no-op.
func (s *ForumStore) DeleteVote(ctx context.Context, userID string, target models.Target) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		votes, err := mustBucket(tx, BucketVotes)
		if err != nil {
			return err
		}
		return votes.Delete(voteKey(userID, target))
	})
	return models.NewStorageError("delete vote", err)
}

// CountVotes tallies the vote edges on target.
func (s *ForumStore) CountVotes(ctx context.Context, target models.Target) (models.VoteTally, error) {
	var tally models.VoteTally

	err := s.db.View(func(tx *bolt.Tx) error {
		votes, err := mustBucket(tx, BucketVotes)
		if err != nil {
			return err
		}
		return scanPrefix(votes, prefixOf(target.Key()), func(_, v []byte) error {
			var vote models.Vote
			if err := json.Unmarshal(v, &vote); err != nil {
				return nil // Skip malformed entries
			}
			switch vote.Direction {
			case models.VoteUp:
				tally.Up++
			case models.VoteDown:
				tally.Down++
			}
			return nil
		})
	})

	return tally, models.NewStorageError("count votes", err)
}
