package models

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPost_Validate(t *testing.T) {
	t.Run("valid request", func(t *testing.T) {
		req := &NewPost{Title: "Hello", Content: "World"}
		assert.NoError(t, req.Validate())
	})

	t.Run("empty title", func(t *testing.T) {
		req := &NewPost{Title: "  ", Content: "World"}
		assert.ErrorIs(t, req.Validate(), ErrTitleRequired)
	})

	t.Run("title too long", func(t *testing.T) {
		req := &NewPost{Title: strings.Repeat("a", MaxTitleLength+1), Content: "x"}
		assert.ErrorIs(t, req.Validate(), ErrTitleTooLong)
	})

	t.Run("title at max length", func(t *testing.T) {
		req := &NewPost{Title: strings.Repeat("a", MaxTitleLength), Content: "x"}
		assert.NoError(t, req.Validate())
	})

	t.Run("empty content", func(t *testing.T) {
		req := &NewPost{Title: "Hello"}
		assert.ErrorIs(t, req.Validate(), ErrContentRequired)
	})

	t.Run("too many tags", func(t *testing.T) {
		req := &NewPost{Title: "Hello", Content: "x", TagIDs: make([]string, MaxTagsPerPost+1)}
		assert.ErrorIs(t, req.Validate(), ErrTooManyTags)
	})

	t.Run("validation errors are invalid input", func(t *testing.T) {
		req := &NewPost{}
		assert.ErrorIs(t, req.Validate(), ErrInvalid)
	})
}

func TestNewComment_Validate(t *testing.T) {
	t.Run("valid reply to post", func(t *testing.T) {
		req := &NewComment{ParentKind: ParentPost, ParentID: "p1", Content: "nice"}
		assert.NoError(t, req.Validate())
	})

	t.Run("unknown parent kind", func(t *testing.T) {
		req := &NewComment{ParentKind: "user", ParentID: "u1", Content: "nice"}
		assert.ErrorIs(t, req.Validate(), ErrInvalidParent)
	})

	t.Run("missing parent id", func(t *testing.T) {
		req := &NewComment{ParentKind: ParentComment, Content: "nice"}
		assert.ErrorIs(t, req.Validate(), ErrInvalidParent)
	})

	t.Run("content too long", func(t *testing.T) {
		req := &NewComment{ParentKind: ParentPost, ParentID: "p1", Content: strings.Repeat("a", MaxCommentLength+1)}
		assert.ErrorIs(t, req.Validate(), ErrContentTooLong)
	})
}

func TestRegistration_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     Registration
		wantErr error
	}{
		{"valid", Registration{Username: "alice", Email: "a@example.com", Password: "hunter22!"}, nil},
		{"short username", Registration{Username: "al", Email: "a@example.com", Password: "hunter22!"}, ErrUsernameInvalid},
		{"long username", Registration{Username: strings.Repeat("a", MaxUsernameLength+1), Email: "a@example.com", Password: "hunter22!"}, ErrUsernameInvalid},
		{"no email", Registration{Username: "alice", Password: "hunter22!"}, ErrEmailRequired},
		{"short password", Registration{Username: "alice", Email: "a@example.com", Password: "short"}, ErrPasswordTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNormalizeUsername(t *testing.T) {
	assert.Equal(t, "alice", NormalizeUsername("  Alice "))
	assert.Equal(t, "bob_99", NormalizeUsername("BOB_99"))
}

func TestUser_Roles(t *testing.T) {
	u := &User{Roles: []Role{RoleUser, RoleModerator}}
	assert.True(t, u.HasRole(RoleModerator))
	assert.False(t, u.HasRole(RoleAdmin))
	assert.False(t, u.IsBanned())

	u.Banned = &BannedProps{Reason: "spam"}
	assert.True(t, u.IsBanned())
}

func TestTarget(t *testing.T) {
	assert.Equal(t, "post:abc", Target{Kind: TargetPost, ID: "abc"}.Key())
	assert.True(t, TargetComment.Valid())
	assert.False(t, TargetKind("user").Valid())
	assert.True(t, VoteDown.Valid())
	assert.False(t, VoteDirection("SIDEWAYS").Valid())
	assert.Equal(t, -1, VoteTally{Up: 2, Down: 3}.Score())
}

func TestLookupKind_Valid(t *testing.T) {
	for _, kind := range AllLookupKinds() {
		assert.True(t, kind.Valid(), string(kind))
	}
	assert.False(t, LookupKind("colour").Valid())
}

func TestStorageError(t *testing.T) {
	t.Run("wraps plain errors", func(t *testing.T) {
		base := errors.New("disk full")
		err := NewStorageError("put post", base)
		assert.True(t, IsStorageError(err))
		assert.ErrorIs(t, err, base)
		assert.Contains(t, err.Error(), "put post")
	})

	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, NewStorageError("op", nil))
	})

	t.Run("domain errors pass through", func(t *testing.T) {
		err := NewStorageError("get post", fmt.Errorf("post p1: %w", ErrNotFound))
		assert.False(t, IsStorageError(err))
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestModerationRejectedError(t *testing.T) {
	var err error = &ModerationRejectedError{Reason: "hate speech"}
	assert.True(t, IsModerationRejected(fmt.Errorf("create post: %w", err)))
	assert.Equal(t, "content flagged: hate speech", err.Error())
	assert.False(t, IsModerationRejected(ErrConflict))
}

func TestNewID_Monotonic(t *testing.T) {
	prev := NewID()
	for i := 0; i < 1000; i++ {
		next := NewID()
		assert.Greater(t, next, prev)
		prev = next
	}
}
