package database

import (
	"context"

	"agora/internal/models"
)

// MockStore is a mock implementation of the Store interface for testing.
// Uses function fields to allow tests to inject custom behavior.
type MockStore struct {
	// Post operations
	CreatePostFunc        func(ctx context.Context, post *models.Post) error
	GetPostFunc           func(ctx context.Context, id string) (*models.Post, error)
	ListPostsFunc         func(ctx context.Context, limit int) ([]*models.Post, error)
	ListPostsByAuthorFunc func(ctx context.Context, authorID string) ([]*models.Post, error)
	ListPendingPostsFunc  func(ctx context.Context) ([]*models.Post, error)
	SetPostPendingFunc    func(ctx context.Context, id string, pending bool) error
	SetPostRestrictedFunc func(ctx context.Context, id string, props *models.RestrictedProps) error
	SetPostDeletedFunc    func(ctx context.Context, id string, props *models.DeletedProps) error

	// Comment operations
	CreateCommentFunc        func(ctx context.Context, comment *models.Comment) error
	GetCommentFunc           func(ctx context.Context, id string) (*models.Comment, error)
	ListCommentsByPostFunc   func(ctx context.Context, postID string) ([]*models.Comment, error)
	ListPendingCommentsFunc  func(ctx context.Context) ([]*models.Comment, error)
	SetCommentPendingFunc    func(ctx context.Context, id string, pending bool) error
	SetCommentRestrictedFunc func(ctx context.Context, id string, props *models.RestrictedProps) error
	SetCommentDeletedFunc    func(ctx context.Context, id string, props *models.DeletedProps) error
	SetCommentPinnedFunc     func(ctx context.Context, id string, pinned bool) error

	// Vote operations
	GetVoteFunc    func(ctx context.Context, userID string, target models.Target) (*models.Vote, error)
	PutVoteFunc    func(ctx context.Context, vote models.Vote) (*models.Vote, error)
	DeleteVoteFunc func(ctx context.Context, userID string, target models.Target) error
	CountVotesFunc func(ctx context.Context, target models.Target) (models.VoteTally, error)

	// Report operations
	CreateReportFunc         func(ctx context.Context, report models.Report) error
	HasReportedFunc          func(ctx context.Context, reporterID string, target models.Target) (bool, error)
	ListReportsForTargetFunc func(ctx context.Context, target models.Target) ([]models.Report, error)

	// User operations
	CreateUserFunc        func(ctx context.Context, user *models.User) error
	GetUserFunc           func(ctx context.Context, id string) (*models.User, error)
	GetUserByUsernameFunc func(ctx context.Context, username string) (*models.User, error)
	UpdateUserFunc        func(ctx context.Context, user *models.User) error
	SetUserBannedFunc     func(ctx context.Context, id string, props models.BannedProps) error
	UnbanUserFunc         func(ctx context.Context, id string, archived models.PreviousBan) error
	ListPreviousBansFunc  func(ctx context.Context, id string) ([]models.PreviousBan, error)
	AddOffenceFunc        func(ctx context.Context, userID string, record models.OffenceRecord) error
	ListOffencesFunc      func(ctx context.Context, userID string) ([]models.OffenceRecord, error)

	// Lookup operations
	CreateLookupFunc    func(ctx context.Context, lookup *models.Lookup) error
	GetLookupFunc       func(ctx context.Context, kind models.LookupKind, id string) (*models.Lookup, error)
	ListLookupsFunc     func(ctx context.Context, kind models.LookupKind) ([]models.Lookup, error)
	GrantAwardFunc      func(ctx context.Context, grant models.AwardGrant) error
	ListAwardGrantsFunc func(ctx context.Context, postID string) ([]models.AwardGrant, error)

	CloseFunc func() error
}

// Ensure MockStore implements Store at compile time.
var _ Store = (*MockStore)(nil)

// CreatePost calls the mock function or returns nil if not set
func (m *MockStore) CreatePost(ctx context.Context, post *models.Post) error {
	if m.CreatePostFunc != nil {
		return m.CreatePostFunc(ctx, post)
	}
	return nil
}

// GetPost calls the mock function or returns models.ErrNotFound if not set
func (m *MockStore) GetPost(ctx context.Context, id string) (*models.Post, error) {
	if m.GetPostFunc != nil {
		return m.GetPostFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

// ListPosts calls the mock function or returns nil if not set
func (m *MockStore) ListPosts(ctx context.Context, limit int) ([]*models.Post, error) {
	if m.ListPostsFunc != nil {
		return m.ListPostsFunc(ctx, limit)
	}
	return nil, nil
}

// ListPostsByAuthor calls the mock function or returns nil if not set
func (m *MockStore) ListPostsByAuthor(ctx context.Context, authorID string) ([]*models.Post, error) {
	if m.ListPostsByAuthorFunc != nil {
		return m.ListPostsByAuthorFunc(ctx, authorID)
	}
	return nil, nil
}

// ListPendingPosts calls the mock function or returns nil if not set
func (m *MockStore) ListPendingPosts(ctx context.Context) ([]*models.Post, error) {
	if m.ListPendingPostsFunc != nil {
		return m.ListPendingPostsFunc(ctx)
	}
	return nil, nil
}

// SetPostPending calls the mock function or returns nil if not set
func (m *MockStore) SetPostPending(ctx context.Context, id string, pending bool) error {
	if m.SetPostPendingFunc != nil {
		return m.SetPostPendingFunc(ctx, id, pending)
	}
	return nil
}

// SetPostRestricted calls the mock function or returns nil if not set
func (m *MockStore) SetPostRestricted(ctx context.Context, id string, props *models.RestrictedProps) error {
	if m.SetPostRestrictedFunc != nil {
		return m.SetPostRestrictedFunc(ctx, id, props)
	}
	return nil
}

// SetPostDeleted calls the mock function or returns nil if not set
func (m *MockStore) SetPostDeleted(ctx context.Context, id string, props *models.DeletedProps) error {
	if m.SetPostDeletedFunc != nil {
		return m.SetPostDeletedFunc(ctx, id, props)
	}
	return nil
}

// CreateComment calls the mock function or returns nil if not set
func (m *MockStore) CreateComment(ctx context.Context, comment *models.Comment) error {
	if m.CreateCommentFunc != nil {
		return m.CreateCommentFunc(ctx, comment)
	}
	return nil
}

// GetComment calls the mock function or returns models.ErrNotFound if not set
func (m *MockStore) GetComment(ctx context.Context, id string) (*models.Comment, error) {
	if m.GetCommentFunc != nil {
		return m.GetCommentFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

// ListCommentsByPost calls the mock function or returns nil if not set
func (m *MockStore) ListCommentsByPost(ctx context.Context, postID string) ([]*models.Comment, error) {
	if m.ListCommentsByPostFunc != nil {
		return m.ListCommentsByPostFunc(ctx, postID)
	}
	return nil, nil
}

// ListPendingComments calls the mock function or returns nil if not set
func (m *MockStore) ListPendingComments(ctx context.Context) ([]*models.Comment, error) {
	if m.ListPendingCommentsFunc != nil {
		return m.ListPendingCommentsFunc(ctx)
	}
	return nil, nil
}

// SetCommentPending calls the mock function or returns nil if not set
func (m *MockStore) SetCommentPending(ctx context.Context, id string, pending bool) error {
	if m.SetCommentPendingFunc != nil {
		return m.SetCommentPendingFunc(ctx, id, pending)
	}
	return nil
}

// SetCommentRestricted calls the mock function or returns nil if not set
func (m *MockStore) SetCommentRestricted(ctx context.Context, id string, props *models.RestrictedProps) error {
	if m.SetCommentRestrictedFunc != nil {
		return m.SetCommentRestrictedFunc(ctx, id, props)
	}
	return nil
}

// SetCommentDeleted calls the mock function or returns nil if not set
func (m *MockStore) SetCommentDeleted(ctx context.Context, id string, props *models.DeletedProps) error {
	if m.SetCommentDeletedFunc != nil {
		return m.SetCommentDeletedFunc(ctx, id, props)
	}
	return nil
}

// SetCommentPinned calls the mock function or returns nil if not set
func (m *MockStore) SetCommentPinned(ctx context.Context, id string, pinned bool) error {
	if m.SetCommentPinnedFunc != nil {
		return m.SetCommentPinnedFunc(ctx, id, pinned)
	}
	return nil
}

// GetVote calls the mock function or returns nil if not set
func (m *MockStore) GetVote(ctx context.Context, userID string, target models.Target) (*models.Vote, error) {
	if m.GetVoteFunc != nil {
		return m.GetVoteFunc(ctx, userID, target)
	}
	return nil, nil
}

// PutVote calls the mock function or returns nil if not set
func (m *MockStore) PutVote(ctx context.Context, vote models.Vote) (*models.Vote, error) {
	if m.PutVoteFunc != nil {
		return m.PutVoteFunc(ctx, vote)
	}
	return nil, nil
}

// DeleteVote calls the mock function or returns nil if not set
func (m *MockStore) DeleteVote(ctx context.Context, userID string, target models.Target) error {
	if m.DeleteVoteFunc != nil {
		return m.DeleteVoteFunc(ctx, userID, target)
	}
	return nil
}

// CountVotes calls the mock function or returns the zero value if not set
func (m *MockStore) CountVotes(ctx context.Context, target models.Target) (models.VoteTally, error) {
	if m.CountVotesFunc != nil {
		return m.CountVotesFunc(ctx, target)
	}
	return models.VoteTally{}, nil
}

// CreateReport calls the mock function or returns nil if not set
func (m *MockStore) CreateReport(ctx context.Context, report models.Report) error {
	if m.CreateReportFunc != nil {
		return m.CreateReportFunc(ctx, report)
	}
	return nil
}

// HasReported calls the mock function or returns the zero value if not set
func (m *MockStore) HasReported(ctx context.Context, reporterID string, target models.Target) (bool, error) {
	if m.HasReportedFunc != nil {
		return m.HasReportedFunc(ctx, reporterID, target)
	}
	return false, nil
}

// ListReportsForTarget calls the mock function or returns nil if not set
func (m *MockStore) ListReportsForTarget(ctx context.Context, target models.Target) ([]models.Report, error) {
	if m.ListReportsForTargetFunc != nil {
		return m.ListReportsForTargetFunc(ctx, target)
	}
	return nil, nil
}

// CreateUser calls the mock function or returns nil if not set
func (m *MockStore) CreateUser(ctx context.Context, user *models.User) error {
	if m.CreateUserFunc != nil {
		return m.CreateUserFunc(ctx, user)
	}
	return nil
}

// GetUser calls the mock function or returns models.ErrNotFound if not set
func (m *MockStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	if m.GetUserFunc != nil {
		return m.GetUserFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

// GetUserByUsername calls the mock function or returns models.ErrNotFound if not set
func (m *MockStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.GetUserByUsernameFunc != nil {
		return m.GetUserByUsernameFunc(ctx, username)
	}
	return nil, models.ErrNotFound
}

// UpdateUser calls the mock function or returns nil if not set
func (m *MockStore) UpdateUser(ctx context.Context, user *models.User) error {
	if m.UpdateUserFunc != nil {
		return m.UpdateUserFunc(ctx, user)
	}
	return nil
}

// SetUserBanned calls the mock function or returns nil if not set
func (m *MockStore) SetUserBanned(ctx context.Context, id string, props models.BannedProps) error {
	if m.SetUserBannedFunc != nil {
		return m.SetUserBannedFunc(ctx, id, props)
	}
	return nil
}

// UnbanUser calls the mock function or returns nil if not set
func (m *MockStore) UnbanUser(ctx context.Context, id string, archived models.PreviousBan) error {
	if m.UnbanUserFunc != nil {
		return m.UnbanUserFunc(ctx, id, archived)
	}
	return nil
}

// ListPreviousBans calls the mock function or returns nil if not set
func (m *MockStore) ListPreviousBans(ctx context.Context, id string) ([]models.PreviousBan, error) {
	if m.ListPreviousBansFunc != nil {
		return m.ListPreviousBansFunc(ctx, id)
	}
	return nil, nil
}

// AddOffence calls the mock function or returns nil if not set
func (m *MockStore) AddOffence(ctx context.Context, userID string, record models.OffenceRecord) error {
	if m.AddOffenceFunc != nil {
		return m.AddOffenceFunc(ctx, userID, record)
	}
	return nil
}

// ListOffences calls the mock function or returns nil if not set
func (m *MockStore) ListOffences(ctx context.Context, userID string) ([]models.OffenceRecord, error) {
	if m.ListOffencesFunc != nil {
		return m.ListOffencesFunc(ctx, userID)
	}
	return nil, nil
}

// CreateLookup calls the mock function or returns nil if not set
func (m *MockStore) CreateLookup(ctx context.Context, lookup *models.Lookup) error {
	if m.CreateLookupFunc != nil {
		return m.CreateLookupFunc(ctx, lookup)
	}
	return nil
}

// GetLookup calls the mock function or returns models.ErrNotFound if not set
func (m *MockStore) GetLookup(ctx context.Context, kind models.LookupKind, id string) (*models.Lookup, error) {
	if m.GetLookupFunc != nil {
		return m.GetLookupFunc(ctx, kind, id)
	}
	return nil, models.ErrNotFound
}

// ListLookups calls the mock function or returns nil if not set
func (m *MockStore) ListLookups(ctx context.Context, kind models.LookupKind) ([]models.Lookup, error) {
	if m.ListLookupsFunc != nil {
		return m.ListLookupsFunc(ctx, kind)
	}
	return nil, nil
}

// GrantAward calls the mock function or returns nil if not set
func (m *MockStore) GrantAward(ctx context.Context, grant models.AwardGrant) error {
	if m.GrantAwardFunc != nil {
		return m.GrantAwardFunc(ctx, grant)
	}
	return nil
}

// ListAwardGrants calls the mock function or returns nil if not set
func (m *MockStore) ListAwardGrants(ctx context.Context, postID string) ([]models.AwardGrant, error) {
	if m.ListAwardGrantsFunc != nil {
		return m.ListAwardGrantsFunc(ctx, postID)
	}
	return nil, nil
}

// Close calls the mock function or returns nil if not set
func (m *MockStore) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}
