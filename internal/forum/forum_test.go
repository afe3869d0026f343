package forum

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"agora/internal/database/boltstore"
	"agora/internal/models"
	"agora/internal/notify"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// stubScreener returns a fixed verdict and records what it screened.
type stubScreener struct {
	mu      sync.Mutex
	pending bool
	err     error
	texts   []string
}

func (s *stubScreener) CheckForHateSpeech(ctx context.Context, text, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.texts = append(s.texts, text)
	return s.pending, s.err
}

// recorder collects published events.
type recorder struct {
	mu     sync.Mutex
	events []notify.Event
}

func (r *recorder) Publish(ctx context.Context, e notify.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) Events() []notify.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notify.Event(nil), r.events...)
}

type fixture struct {
	*Services
	store    *boltstore.ForumStore
	screener *stubScreener
	events   *recorder
}

func setupTestForum(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	db, err := boltstore.Open(boltstore.Options{Path: filepath.Join(t.TempDir(), "forum.db")})
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
	})

	f := &fixture{
		store:    db.ForumStore(),
		screener: &stubScreener{},
		events:   &recorder{},
	}
	cache := NewProfileCache(f.store, 64, time.Minute)
	f.Services = New(f.store, f.screener, f.events, cache)
	f.Users.cost = bcrypt.MinCost

	users := []*models.User{
		{ID: "alice", Username: "alice", Avatar: "a.png", Roles: []models.Role{models.RoleUser}},
		{ID: "bob", Username: "bob", Roles: []models.Role{models.RoleUser}},
		{ID: "admin", Username: "admin", Roles: []models.Role{models.RoleUser, models.RoleAdmin}},
		{ID: "banned", Username: "banned", Roles: []models.Role{models.RoleUser},
			Banned: &models.BannedProps{ModeratorID: "admin", Reason: "spam"}},
	}
	for _, u := range users {
		require.NoError(t, f.store.CreateUser(ctx, u))
	}

	lookups := []*models.Lookup{
		{ID: "question", Kind: models.LookupType, Name: "Question"},
		{ID: "go", Kind: models.LookupTag, Name: "Go"},
		{ID: "gold", Kind: models.LookupAward, Name: "Gold", Image: "gold.png"},
		{ID: "nb", Kind: models.LookupGender, Name: "Non-binary"},
		{ID: "open", Kind: models.LookupOpenness, Name: "Open"},
	}
	for _, l := range lookups {
		require.NoError(t, f.store.CreateLookup(ctx, l))
	}
	return f
}

// seedPost stores a post directly, bypassing screening.
func (f *fixture) seedPost(t *testing.T, id, authorID string, mutate func(*models.Post)) *models.Post {
	t.Helper()
	post := &models.Post{
		ID: id, Title: "Title " + id, Content: "body",
		Authorship: models.Authorship{AuthorID: authorID, AuthoredAt: time.Now().UTC()},
	}
	if mutate != nil {
		mutate(post)
	}
	require.NoError(t, f.store.CreatePost(context.Background(), post))
	return post
}

// seedComment stores a comment directly, bypassing screening.
func (f *fixture) seedComment(t *testing.T, id, postID, authorID string, mutate func(*models.Comment)) *models.Comment {
	t.Helper()
	comment := &models.Comment{
		ID: id, PostID: postID, ParentKind: models.ParentPost, ParentID: postID, Content: "comment " + id,
		Authorship: models.Authorship{AuthorID: authorID, AuthoredAt: time.Now().UTC()},
	}
	if mutate != nil {
		mutate(comment)
	}
	require.NoError(t, f.store.CreateComment(context.Background(), comment))
	return comment
}
