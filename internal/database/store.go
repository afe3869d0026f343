package database

import (
	"context"

	"agora/internal/models"
)

// PostStore persists posts and their moderation state.
// Get methods return models.ErrNotFound when the post does not exist; every
// other failure is returned as a *models.StorageError.
type PostStore interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPost(ctx context.Context, id string) (*models.Post, error)
	ListPosts(ctx context.Context, limit int) ([]*models.Post, error)
	ListPostsByAuthor(ctx context.Context, authorID string) ([]*models.Post, error)
	ListPendingPosts(ctx context.Context) ([]*models.Post, error)

	SetPostPending(ctx context.Context, id string, pending bool) error
	SetPostRestricted(ctx context.Context, id string, props *models.RestrictedProps) error
	SetPostDeleted(ctx context.Context, id string, props *models.DeletedProps) error
}

// CommentStore persists comments, the reply tree and their moderation state.
type CommentStore interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetComment(ctx context.Context, id string) (*models.Comment, error)
	ListCommentsByPost(ctx context.Context, postID string) ([]*models.Comment, error)
	ListPendingComments(ctx context.Context) ([]*models.Comment, error)

	SetCommentPending(ctx context.Context, id string, pending bool) error
	SetCommentRestricted(ctx context.Context, id string, props *models.RestrictedProps) error
	SetCommentDeleted(ctx context.Context, id string, props *models.DeletedProps) error
	SetCommentPinned(ctx context.Context, id string, pinned bool) error
}

// VoteStore persists UPVOTES / DOWN_VOTES edges. A user holds at most one
// vote per target. PutVote checks and replaces any existing edge in the same
// transaction, returning the replaced vote, or ErrConflict when the direction
// is unchanged.
type VoteStore interface {
	GetVote(ctx context.Context, userID string, target models.Target) (*models.Vote, error)
	PutVote(ctx context.Context, vote models.Vote) (*models.Vote, error)
	DeleteVote(ctx context.Context, userID string, target models.Target) error
	CountVotes(ctx context.Context, target models.Target) (models.VoteTally, error)
}

// ReportStore persists REPORTED edges.
type ReportStore interface {
	CreateReport(ctx context.Context, report models.Report) error
	HasReported(ctx context.Context, reporterID string, target models.Target) (bool, error)
	ListReportsForTarget(ctx context.Context, target models.Target) ([]models.Report, error)
}

// UserStore persists accounts, ban state and automod offence history.
type UserStore interface {
	// CreateUser returns models.ErrConflict if the normalized username is taken.
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error

	SetUserBanned(ctx context.Context, id string, props models.BannedProps) error
	// UnbanUser appends archived to the user's ban history and clears the live
	// ban in one transaction.
	UnbanUser(ctx context.Context, id string, archived models.PreviousBan) error
	ListPreviousBans(ctx context.Context, id string) ([]models.PreviousBan, error)

	AddOffence(ctx context.Context, userID string, record models.OffenceRecord) error
	ListOffences(ctx context.Context, userID string) ([]models.OffenceRecord, error)
}

// LookupStore persists the shared lookup collections and award grants.
type LookupStore interface {
	CreateLookup(ctx context.Context, lookup *models.Lookup) error
	GetLookup(ctx context.Context, kind models.LookupKind, id string) (*models.Lookup, error)
	ListLookups(ctx context.Context, kind models.LookupKind) ([]models.Lookup, error)

	// GrantAward returns models.ErrConflict if the user already granted this award to the post.
	GrantAward(ctx context.Context, grant models.AwardGrant) error
	ListAwardGrants(ctx context.Context, postID string) ([]models.AwardGrant, error)
}

// Store defines every repository the forum needs.
// Implementations must be safe for concurrent use.
type Store interface {
	PostStore
	CommentStore
	VoteStore
	ReportStore
	UserStore
	LookupStore

	Close() error
}
