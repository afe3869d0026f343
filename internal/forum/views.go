package forum

import (
	"context"
	"time"

	"agora/internal/models"
	"agora/internal/notify"

	"github.com/rs/zerolog/log"
)

// AuthorView is the public face of a content author.
type AuthorView struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar,omitempty"`
}

// AwardView is an award with the number of times it was granted to a post.
type AwardView struct {
	models.Lookup
	Count int `json:"count"`
}

// PostView is a post as shown to readers. Author is nil for anonymous posts.
type PostView struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Content     string           `json:"content"`
	Author      *AuthorView      `json:"author,omitempty"`
	Anonymously bool             `json:"anonymously"`
	AuthoredAt  time.Time        `json:"authored_at"`
	Votes       models.VoteTally `json:"votes"`
	Score       int              `json:"score"`
	Type        *models.Lookup   `json:"type,omitempty"`
	Tags        []models.Lookup  `json:"tags"`
	Awards      []AwardView      `json:"awards"`
}

// CommentView is a comment as shown to readers.
type CommentView struct {
	ID          string            `json:"id"`
	PostID      string            `json:"post_id"`
	ParentKind  models.ParentKind `json:"parent_kind"`
	ParentID    string            `json:"parent_id"`
	Content     string            `json:"content"`
	Pinned      bool              `json:"pinned"`
	Author      *AuthorView       `json:"author,omitempty"`
	Anonymously bool              `json:"anonymously"`
	AuthoredAt  time.Time         `json:"authored_at"`
	Votes       models.VoteTally  `json:"votes"`
}

// PublicUser is a profile as shown to other users. Private attributes are omitted.
type PublicUser struct {
	ID        string         `json:"id"`
	Username  string         `json:"username"`
	Avatar    string         `json:"avatar,omitempty"`
	Level     int            `json:"level"`
	Roles     []models.Role  `json:"roles"`
	Gender    *models.Lookup `json:"gender,omitempty"`
	Sexuality *models.Lookup `json:"sexuality,omitempty"`
	Openness  *models.Lookup `json:"openness,omitempty"`
	Banned    bool           `json:"banned"`
	CreatedAt time.Time      `json:"created_at"`
}

// authorView resolves the author of a piece of content, or nil when it was
// written anonymously.
func authorView(ctx context.Context, cache *ProfileCache, a models.Authorship) *AuthorView {
	if a.Anonymously {
		return nil
	}
	actor, err := cache.Actor(ctx, a.AuthorID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", a.AuthorID).Msg("Failed to resolve author")
		return nil
	}
	return &AuthorView{ID: actor.ID, Username: actor.Username, Avatar: actor.Avatar}
}

// eventActor returns the actor shown in a notification. Anonymous actions
// carry only the id, which is never rendered.
func eventActor(ctx context.Context, cache *ProfileCache, userID string, anonymously bool) notify.Actor {
	if anonymously {
		return notify.Actor{ID: userID}
	}
	actor, err := cache.Actor(ctx, userID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("Failed to resolve actor for notification")
		return notify.Actor{ID: userID}
	}
	return actor
}
