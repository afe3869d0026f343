package moderation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"agora/internal/database"
	"agora/internal/metrics"
	"agora/internal/models"
	"agora/internal/notify"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// DefaultAuditLimit is used when ListAuditLog is called without a limit.
const DefaultAuditLimit = 50

// Mailer sends plain-text e-mail. *email.Sender satisfies it.
type Mailer interface {
	Enabled() bool
	Send(to, subject, body string) error
}

// Service performs moderator actions on posts, comments and users.
//
// Every transition is idempotent: acting on a target that is already in the
// requested state returns it unchanged and writes nothing. Only unbanning a
// user who is not banned is an error.
type Service struct {
	store  database.Store
	audit  AuditStore
	events notify.Publisher
	mailer Mailer
	now    func() time.Time

	// Tracks detached ban notices
	wg sync.WaitGroup
}

// NewService creates a moderation service. events and mailer may be nil.
func NewService(store database.Store, audit AuditStore, events notify.Publisher, mailer Mailer) *Service {
	if events == nil {
		events = notify.Discard
	}
	return &Service{
		store:  store,
		audit:  audit,
		events: events,
		mailer: mailer,
		now:    time.Now,
	}
}

// authorize loads the acting user and checks they hold perm.
func (s *Service) authorize(ctx context.Context, moderatorID string, perm Permission) (*models.User, error) {
	mod, err := s.store.GetUser(ctx, moderatorID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("%w: unknown moderator %s", models.ErrForbidden, moderatorID)
	}
	if err != nil {
		return nil, err
	}
	if !HasPermission(mod, perm) {
		return nil, fmt.Errorf("%w: %s requires %s", models.ErrForbidden, moderatorID, perm)
	}
	return mod, nil
}

// record writes an audit entry for an applied transition.
// Audit failures are logged; the transition itself already happened.
func (s *Service) record(ctx context.Context, moderatorID string, action AuditAction, kind, targetID, reason string) {
	metrics.ModeratorActionsTotal.WithLabelValues(string(action), kind).Inc()

	entry := AuditEntry{
		ID:          models.NewID(),
		Action:      action,
		ModeratorID: moderatorID,
		TargetKind:  kind,
		TargetID:    targetID,
		Reason:      reason,
		Timestamp:   s.now(),
	}
	if err := s.audit.LogAction(ctx, entry); err != nil {
		log.Error().Err(err).
			Str("action", string(action)).
			Str("target_kind", kind).
			Str("target_id", targetID).
			Msg("moderation: failed to write audit entry")
	}

	log.Info().
		Str("moderator_id", moderatorID).
		Str("action", string(action)).
		Str("target_kind", kind).
		Str("target_id", targetID).
		Msg("moderation: action applied")
}

// The moderator's name is never shown in notifications.
func moderatorActor(mod *models.User) notify.Actor {
	return notify.Actor{ID: mod.ID}
}

// ========== Posts ==========

// AllowPost approves a pending post.
func (s *Service) AllowPost(ctx context.Context, moderatorID, postID string) (*models.Post, error) {
	mod, err := s.authorize(ctx, moderatorID, PermissionAllowContent)
	if err != nil {
		return nil, err
	}
	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !post.Pending {
		return post, nil
	}

	if err := s.store.SetPostPending(ctx, postID, false); err != nil {
		return nil, err
	}
	post.Pending = false

	s.record(ctx, mod.ID, AuditActionAllow, string(models.TargetPost), postID, "")
	s.events.Publish(ctx, notify.PostApproved(post.AuthorID, moderatorActor(mod), post.ID, post.Title))
	return post, nil
}

// RestrictPost hides a post from readers. An existing restriction is kept as is.
func (s *Service) RestrictPost(ctx context.Context, moderatorID string, p RestrictPayload) (*models.Post, error) {
	mod, err := s.authorize(ctx, moderatorID, PermissionRestrictContent)
	if err != nil {
		return nil, err
	}
	post, err := s.store.GetPost(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if post.IsRestricted() {
		return post, nil
	}

	props := &models.RestrictedProps{RestrictedAt: s.now(), ModeratorID: mod.ID, Reason: p.Reason}
	if err := s.store.SetPostRestricted(ctx, p.ID, props); err != nil {
		return nil, err
	}
	post.Restricted = props

	s.record(ctx, mod.ID, AuditActionRestrict, string(models.TargetPost), p.ID, p.Reason)
	s.events.Publish(ctx, notify.PostRestricted(post.AuthorID, moderatorActor(mod), post.ID, post.Title, p.Reason))
	return post, nil
}

// UnrestrictPost lifts a restriction.
func (s *Service) UnrestrictPost(ctx context.Context, moderatorID, postID string) (*models.Post, error) {
	mod, err := s.authorize(ctx, moderatorID, PermissionUnrestrictContent)
	if err != nil {
		return nil, err
	}
	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !post.IsRestricted() {
		return post, nil
	}

	if err := s.store.SetPostRestricted(ctx, postID, nil); err != nil {
		return nil, err
	}
	post.Restricted = nil

	s.record(ctx, mod.ID, AuditActionUnrestrict, string(models.TargetPost), postID, "")
	return post, nil
}

// DeletePost soft-deletes a post.
func (s *Service) DeletePost(ctx context.Context, moderatorID string, p DeletePayload) (*models.Post, error) {
	mod, err := s.authorize(ctx, moderatorID, PermissionDeleteContent)
	if err != nil {
		return nil, err
	}
	post, err := s.store.GetPost(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if post.IsDeleted() {
		return post, nil
	}

	props := &models.DeletedProps{DeletedAt: s.now(), ModeratorID: mod.ID, Reason: p.Reason}
	if err := s.store.SetPostDeleted(ctx, p.ID, props); err != nil {
		return nil, err
	}
	post.Deleted = props

	s.record(ctx, mod.ID, AuditActionDelete, string(models.TargetPost), p.ID, p.Reason)
	return post, nil
}

// RestorePost undoes a soft delete.
func (s *Service) RestorePost(ctx context.Context, moderatorID, postID string) (*models.Post, error) {
	mod, err := s.authorize(ctx, moderatorID, PermissionRestoreContent)
	if err != nil {
		return nil, err
	}
	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !post.IsDeleted() {
		return post, nil
	}

	if err := s.store.SetPostDeleted(ctx, postID, nil); err != nil {
		return nil, err
	}
	post.Deleted = nil

	s.record(ctx, mod.ID, AuditActionRestore, string(models.TargetPost), postID, "")
	return post, nil
}

// ========== Comments ==========

// AllowComment approves a pending comment.
func (s *Service) AllowComment(ctx context.Context, moderatorID, commentID string) (*models.Comment, error) {
	mod, err := s.authorize(ctx, moderatorID, PermissionAllowContent)
	if err != nil {
		return nil, err
	}
	comment, err := s.store.GetComment(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if !comment.Pending {
		return comment, nil
	}

	if err := s.store.SetCommentPending(ctx, commentID, false); err != nil {
		return nil, err
	}
	comment.Pending = false

	s.record(ctx, mod.ID, AuditActionAllow, string(models.TargetComment), commentID, "")
	s.events.Publish(ctx, notify.CommentApproved(comment.AuthorID, moderatorActor(mod), comment.PostID, comment.ID, comment.Content))
	return comment, nil
}

// RestrictComment hides a comment from readers. An existing restriction is kept as is.
func (s *Service) RestrictComment(ctx context.Context, moderatorID string, p RestrictPayload) (*models.Comment, error) {
	mod, err := s.authorize(ctx, moderatorID, PermissionRestrictContent)
	if err != nil {
		return nil, err
	}
	comment, err := s.store.GetComment(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if comment.IsRestricted() {
		return comment, nil
	}

	props := &models.RestrictedProps{RestrictedAt: s.now(), ModeratorID: mod.ID, Reason: p.Reason}
	if err := s.store.SetCommentRestricted(ctx, p.ID, props); err != nil {
		return nil, err
	}
	comment.Restricted = props

	s.record(ctx, mod.ID, AuditActionRestrict, string(models.TargetComment), p.ID, p.Reason)
	s.events.Publish(ctx, notify.CommentRestricted(comment.AuthorID, moderatorActor(mod), comment.PostID, comment.ID, comment.Content, p.Reason))
	return comment, nil
}

// UnrestrictComment lifts a restriction.
func (s *Service) UnrestrictComment(ctx context.Context, moderatorID, commentID string) (*models.Comment, error) {
	mod, err := s.authorize(ctx, moderatorID, PermissionUnrestrictContent)
	if err != nil {
		return nil, err
	}
	comment, err := s.store.GetComment(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if !comment.IsRestricted() {
		return comment, nil
	}

	if err := s.store.SetCommentRestricted(ctx, commentID, nil); err != nil {
		return nil, err
	}
	comment.Restricted = nil

	s.record(ctx, mod.ID, AuditActionUnrestrict, string(models.TargetComment), commentID, "")
	return comment, nil
}

// DeleteComment soft-deletes a comment.
func (s *Service) DeleteComment(ctx context.Context, moderatorID string, p DeletePayload) (*models.Comment, error) {
	mod, err := s.authorize(ctx, moderatorID, PermissionDeleteContent)
	if err != nil {
		return nil, err
	}
	comment, err := s.store.GetComment(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if comment.IsDeleted() {
		return comment, nil
	}

	props := &models.DeletedProps{DeletedAt: s.now(), ModeratorID: mod.ID, Reason: p.Reason}
	if err := s.store.SetCommentDeleted(ctx, p.ID, props); err != nil {
		return nil, err
	}
	comment.Deleted = props

	s.record(ctx, mod.ID, AuditActionDelete, string(models.TargetComment), p.ID, p.Reason)
	return comment, nil
}

// RestoreComment undoes a soft delete.
func (s *Service) RestoreComment(ctx context.Context, moderatorID, commentID string) (*models.Comment, error) {
	mod, err := s.authorize(ctx, moderatorID, PermissionRestoreContent)
	if err != nil {
		return nil, err
	}
	comment, err := s.store.GetComment(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if !comment.IsDeleted() {
		return comment, nil
	}

	if err := s.store.SetCommentDeleted(ctx, commentID, nil); err != nil {
		return nil, err
	}
	comment.Deleted = nil

	s.record(ctx, mod.ID, AuditActionRestore, string(models.TargetComment), commentID, "")
	return comment, nil
}

// ApplyContentAction dispatches a content action by name. It returns the
// updated *models.Post or *models.Comment.
func (s *Service) ApplyContentAction(ctx context.Context, moderatorID string, kind models.TargetKind, action AuditAction, id, reason string) (any, error) {
	switch kind {
	case models.TargetPost:
		switch action {
		case AuditActionAllow:
			return s.AllowPost(ctx, moderatorID, id)
		case AuditActionRestrict:
			return s.RestrictPost(ctx, moderatorID, RestrictPayload{ID: id, Reason: reason})
		case AuditActionUnrestrict:
			return s.UnrestrictPost(ctx, moderatorID, id)
		case AuditActionDelete:
			return s.DeletePost(ctx, moderatorID, DeletePayload{ID: id, Reason: reason})
		case AuditActionRestore:
			return s.RestorePost(ctx, moderatorID, id)
		}
	case models.TargetComment:
		switch action {
		case AuditActionAllow:
			return s.AllowComment(ctx, moderatorID, id)
		case AuditActionRestrict:
			return s.RestrictComment(ctx, moderatorID, RestrictPayload{ID: id, Reason: reason})
		case AuditActionUnrestrict:
			return s.UnrestrictComment(ctx, moderatorID, id)
		case AuditActionDelete:
			return s.DeleteComment(ctx, moderatorID, DeletePayload{ID: id, Reason: reason})
		case AuditActionRestore:
			return s.RestoreComment(ctx, moderatorID, id)
		}
	default:
		return nil, fmt.Errorf("%w: unknown target kind %q", models.ErrInvalid, kind)
	}
	return nil, fmt.Errorf("%w: unknown action %q", models.ErrInvalid, action)
}

// ========== Users ==========

// BanUser sets a live ban. Banning a banned user keeps the original ban.
func (s *Service) BanUser(ctx context.Context, moderatorID string, p BanPayload) (*models.User, error) {
	mod, err := s.authorize(ctx, moderatorID, PermissionBanUser)
	if err != nil {
		return nil, err
	}
	user, err := s.store.GetUser(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	if user.IsBanned() {
		return user, nil
	}

	props := models.BannedProps{BannedAt: s.now(), ModeratorID: mod.ID, Reason: p.Reason}
	if err := s.store.SetUserBanned(ctx, p.UserID, props); err != nil {
		return nil, err
	}
	user.Banned = &props

	s.record(ctx, mod.ID, AuditActionBan, AuditTargetUser, p.UserID, p.Reason)
	s.sendBanNotice(user, props)
	return user, nil
}

// UnbanUser archives the live ban into the user's ban history and clears it.
// The user must currently be banned.
func (s *Service) UnbanUser(ctx context.Context, moderatorID, userID string) (*models.User, error) {
	mod, err := s.authorize(ctx, moderatorID, PermissionUnbanUser)
	if err != nil {
		return nil, err
	}
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsBanned() {
		return nil, fmt.Errorf("user %s is not banned: %w", userID, models.ErrConflict)
	}

	archived := models.PreviousBan{
		BannedProps: *user.Banned,
		UnbannedAt:  s.now(),
		UnbannedBy:  mod.ID,
	}
	if err := s.store.UnbanUser(ctx, userID, archived); err != nil {
		return nil, err
	}
	user.Banned = nil

	s.record(ctx, mod.ID, AuditActionUnban, AuditTargetUser, userID, "")
	return user, nil
}

// sendBanNotice e-mails the banned user in the background.
func (s *Service) sendBanNotice(user *models.User, props models.BannedProps) {
	if s.mailer == nil || !s.mailer.Enabled() || user.Email == "" {
		return
	}

	subject := "Your account has been suspended"
	body := fmt.Sprintf("Hi %s,\n\nYour account was suspended on %s.\n\nReason: %s\n",
		user.Username, props.BannedAt.UTC().Format(time.RFC1123), props.Reason)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.mailer.Send(user.Email, subject, body); err != nil {
			log.Warn().Err(err).Str("user_id", user.ID).Msg("moderation: failed to send ban notice")
		}
	}()
}

// Wait blocks until background ban notices have been sent.
func (s *Service) Wait() {
	s.wg.Wait()
}

// ========== Queues ==========

// ListAuditLog returns the most recent moderator actions.
func (s *Service) ListAuditLog(ctx context.Context, moderatorID string, limit int) ([]AuditEntry, error) {
	if _, err := s.authorize(ctx, moderatorID, PermissionViewAuditLog); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultAuditLimit
	}
	return s.audit.ListAuditLog(ctx, limit)
}

// ListPending returns every post and comment awaiting review.
func (s *Service) ListPending(ctx context.Context, moderatorID string) (*PendingQueue, error) {
	if _, err := s.authorize(ctx, moderatorID, PermissionViewPending); err != nil {
		return nil, err
	}

	var queue PendingQueue
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		queue.Posts, err = s.store.ListPendingPosts(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		queue.Comments, err = s.store.ListPendingComments(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &queue, nil
}

// PendingCounts returns the size of the review queue by kind, for metrics.
// Failures are logged and reported as missing kinds.
func (s *Service) PendingCounts(ctx context.Context) map[string]int {
	counts := make(map[string]int)
	if posts, err := s.store.ListPendingPosts(ctx); err == nil {
		counts[string(models.TargetPost)] = len(posts)
	} else {
		log.Warn().Err(err).Msg("moderation: failed to count pending posts")
	}
	if comments, err := s.store.ListPendingComments(ctx); err == nil {
		counts[string(models.TargetComment)] = len(comments)
	} else {
		log.Warn().Err(err).Msg("moderation: failed to count pending comments")
	}
	return counts
}
