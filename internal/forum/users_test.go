package forum

import (
	"context"
	"testing"
	"time"

	"agora/internal/database"
	"agora/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	f := setupTestForum(t)

	user, err := f.Users.Register(ctx, models.Registration{Username: " Carol ", Email: "carol@example.com", Password: "hunter22"})
	require.NoError(t, err)
	assert.Equal(t, "Carol", user.Username)
	assert.Equal(t, "carol", user.NormalizedUsername)
	assert.NotEqual(t, "hunter22", user.PasswordHash)
	assert.Equal(t, []models.Role{models.RoleUser}, user.Roles)

	_, err = f.Users.Register(ctx, models.Registration{Username: "CAROL", Email: "c2@example.com", Password: "hunter22"})
	assert.ErrorIs(t, err, models.ErrConflict)

	got, err := f.Users.Authenticate(ctx, "carol", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = f.Users.Authenticate(ctx, "carol", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.Users.Authenticate(ctx, "nobody", "hunter22")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegister_Validation(t *testing.T) {
	f := setupTestForum(t)

	_, err := f.Users.Register(context.Background(), models.Registration{Username: "ab", Email: "e", Password: "hunter22"})
	assert.ErrorIs(t, err, models.ErrInvalid)
}

func TestUpdateProfileAndPublicView(t *testing.T) {
	ctx := context.Background()
	f := setupTestForum(t)

	avatar := "new.png"
	user, err := f.Users.UpdateProfile(ctx, "alice", models.ProfileUpdate{
		Avatar:   &avatar,
		Gender:   &models.ProfileAttribute{LookupID: "nb", Private: true},
		Openness: &models.ProfileAttribute{LookupID: "open"},
	})
	require.NoError(t, err)
	assert.Equal(t, "new.png", user.Avatar)

	view, err := f.Users.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Nil(t, view.Gender, "private attributes are hidden")
	require.NotNil(t, view.Openness)
	assert.Equal(t, "Open", view.Openness.Name)
	assert.Equal(t, "new.png", view.Avatar)

	_, err = f.Users.UpdateProfile(ctx, "alice", models.ProfileUpdate{
		Sexuality: &models.ProfileAttribute{LookupID: "missing"},
	})
	assert.ErrorIs(t, err, models.ErrInvalid)
}

func TestUpdateProfile_InvalidatesCache(t *testing.T) {
	ctx := context.Background()
	f := setupTestForum(t)
	f.seedPost(t, "p1", "alice", nil)

	view, err := f.Posts.GetPublic(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "a.png", view.Author.Avatar)

	avatar := "b.png"
	_, err = f.Users.UpdateProfile(ctx, "alice", models.ProfileUpdate{Avatar: &avatar})
	require.NoError(t, err)

	view, err = f.Posts.GetPublic(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "b.png", view.Author.Avatar)
}

func TestProfileCache_HitsStoreOnce(t *testing.T) {
	calls := 0
	store := &database.MockStore{
		GetUserFunc: func(ctx context.Context, id string) (*models.User, error) {
			calls++
			return &models.User{ID: id, Username: "alice"}, nil
		},
	}
	cache := NewProfileCache(store, 8, time.Minute)

	for range 3 {
		actor, err := cache.Actor(context.Background(), "alice")
		require.NoError(t, err)
		assert.Equal(t, "alice", actor.Username)
	}
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, cache.Len())

	cache.Invalidate("alice")
	_, err := cache.Actor(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestLookups(t *testing.T) {
	ctx := context.Background()
	f := setupTestForum(t)

	_, err := f.Lookups.Create(ctx, "alice", models.Lookup{Kind: models.LookupTag, Name: "Rust"})
	assert.ErrorIs(t, err, models.ErrForbidden)

	created, err := f.Lookups.Create(ctx, "admin", models.Lookup{Kind: models.LookupTag, Name: " Rust "})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Rust", created.Name)

	tags, err := f.Lookups.List(ctx, models.LookupTag)
	require.NoError(t, err)
	assert.Len(t, tags, 2)

	sexualities, err := f.Lookups.List(ctx, models.LookupSexuality)
	require.NoError(t, err)
	assert.NotNil(t, sexualities)
	assert.Empty(t, sexualities)

	_, err = f.Lookups.List(ctx, "colour")
	assert.ErrorIs(t, err, models.ErrInvalid)
}

func TestAwardGrant(t *testing.T) {
	ctx := context.Background()
	f := setupTestForum(t)
	f.seedPost(t, "p1", "alice", nil)

	_, err := f.Awards.Grant(ctx, "bob", "p1", "gold")
	require.NoError(t, err)

	_, err = f.Awards.Grant(ctx, "bob", "p1", "gold")
	assert.ErrorIs(t, err, models.ErrConflict)

	_, err = f.Awards.Grant(ctx, "bob", "p1", "platinum")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestSubscriber(t *testing.T) {
	ctx := context.Background()
	f := setupTestForum(t)

	user, err := f.Users.Subscriber(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	user, err = f.Users.Subscriber(ctx, "banned")
	require.NoError(t, err)
	assert.True(t, user.IsBanned())

	_, err = f.Users.Subscriber(ctx, "ghost")
	assert.ErrorIs(t, err, models.ErrForbidden)

	_, err = f.Users.Subscriber(ctx, "")
	assert.ErrorIs(t, err, models.ErrForbidden)
}
