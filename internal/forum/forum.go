// Package forum implements the user-facing use cases: writing posts and
// comments, voting, reporting, pinning, awards and profiles. Content goes
// through automated screening before it is stored, and notification-worthy
// actions are published as events for the notifier.
package forum

import (
	"context"
	"errors"
	"fmt"
	"time"

	"agora/internal/database"
	"agora/internal/models"
	"agora/internal/notify"
)

// Screener decides whether new content is rejected outright or must wait for
// moderator approval. *automod.Service satisfies it.
type Screener interface {
	CheckForHateSpeech(ctx context.Context, text, userID string) (pending bool, err error)
}

// Services bundles every forum use case over one store.
type Services struct {
	Posts    *PostService
	Comments *CommentService
	Votes    *VoteService
	Reports  *ReportService
	Awards   *AwardService
	Users    *UserService
	Lookups  *LookupService
}

// New creates every forum service. events may be nil.
func New(store database.Store, screener Screener, events notify.Publisher, cache *ProfileCache) *Services {
	if events == nil {
		events = notify.Discard
	}
	return &Services{
		Posts:    NewPostService(store, screener, cache),
		Comments: NewCommentService(store, screener, events, cache),
		Votes:    NewVoteService(store, events, cache),
		Reports:  NewReportService(store),
		Awards:   NewAwardService(store),
		Users:    NewUserService(store, cache),
		Lookups:  NewLookupService(store),
	}
}

// knownUser loads the acting user. Unknown users are forbidden.
func knownUser(ctx context.Context, users database.UserStore, id string) (*models.User, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: authentication required", models.ErrForbidden)
	}
	user, err := users.GetUser(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("%w: unknown user %s", models.ErrForbidden, id)
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// activeUser is knownUser for write actions: banned users may not act.
func activeUser(ctx context.Context, users database.UserStore, id string) (*models.User, error) {
	user, err := knownUser(ctx, users, id)
	if err != nil {
		return nil, err
	}
	if user.IsBanned() {
		return nil, fmt.Errorf("%w: %s", models.ErrBanned, user.Username)
	}
	return user, nil
}

func utcNow() time.Time {
	return time.Now().UTC()
}
