package models

import (
	"strings"
	"time"
)

// Field limits
const (
	MaxTitleLength    = 300
	MaxContentLength  = 20000
	MaxCommentLength  = 5000
	MaxUsernameLength = 32
	MinUsernameLength = 3
	MinPasswordLength = 8
	MaxReasonLength   = 500
	MaxTagsPerPost    = 5
)

// Role is a forum-wide role held by a user
type Role string

const (
	RoleUser      Role = "USER"
	RoleModerator Role = "MODERATOR"
	RoleAdmin     Role = "ADMIN"
)

// RestrictedProps is set while a moderator keeps content hidden from readers
type RestrictedProps struct {
	RestrictedAt time.Time `json:"restricted_at"`
	ModeratorID  string    `json:"moderator_id"`
	Reason       string    `json:"reason"`
}

// DeletedProps is set on soft-deleted content
type DeletedProps struct {
	DeletedAt   time.Time `json:"deleted_at"`
	ModeratorID string    `json:"moderator_id"`
	Reason      string    `json:"reason"`
}

// BannedProps is the live ban state of a user
type BannedProps struct {
	BannedAt    time.Time `json:"banned_at"`
	ModeratorID string    `json:"moderator_id"`
	Reason      string    `json:"reason"`
}

// PreviousBan archives a lifted ban
type PreviousBan struct {
	BannedProps
	UnbannedAt time.Time `json:"unbanned_at"`
	UnbannedBy string    `json:"unbanned_by"`
}

// OffenceRecord is appended to a user whenever automod flags their content
type OffenceRecord struct {
	Timestamp              time.Time `json:"timestamp"`
	Content                string    `json:"content"`
	AutoModConfidenceLevel float64   `json:"automod_confidence_level"`
}

// ProfileAttribute references a shared lookup entry (gender, sexuality, openness).
// Private attributes are hidden from public profile views.
type ProfileAttribute struct {
	LookupID string `json:"lookup_id"`
	Private  bool   `json:"private"`
}

// User is a forum account
type User struct {
	ID                 string            `json:"id"`
	Username           string            `json:"username"`
	NormalizedUsername string            `json:"normalized_username"`
	PasswordHash       string            `json:"password_hash,omitempty"`
	Email              string            `json:"email"`
	Avatar             string            `json:"avatar,omitempty"`
	Roles              []Role            `json:"roles"`
	Level              int               `json:"level"`
	Gender             *ProfileAttribute `json:"gender,omitempty"`
	Sexuality          *ProfileAttribute `json:"sexuality,omitempty"`
	Openness           *ProfileAttribute `json:"openness,omitempty"`
	Banned             *BannedProps      `json:"got_banned_props,omitempty"`
	CreatedAt          time.Time         `json:"created_at"`
}

// HasRole reports whether the user holds the given role
func (u *User) HasRole(role Role) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsBanned reports whether the user currently has a live ban
func (u *User) IsBanned() bool {
	return u.Banned != nil
}

// NormalizeUsername returns the canonical form used for uniqueness checks
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// Authorship describes the AUTHORED relation between a user and content
type Authorship struct {
	AuthorID    string    `json:"author_id"`
	AuthoredAt  time.Time `json:"authored_at"`
	Anonymously bool      `json:"anonymously"`
}

// Post is a top-level forum entry
type Post struct {
	ID         string           `json:"id"`
	Title      string           `json:"title"`
	Content    string           `json:"content"`
	TypeID     string           `json:"type_id,omitempty"`
	TagIDs     []string         `json:"tag_ids,omitempty"`
	Pending    bool             `json:"pending"`
	Restricted *RestrictedProps `json:"restricted_props,omitempty"`
	Deleted    *DeletedProps    `json:"deleted_props,omitempty"`
	Authorship
}

// IsRestricted reports whether a moderator restriction is active
func (p *Post) IsRestricted() bool { return p.Restricted != nil }

// IsDeleted reports whether the post is soft-deleted
func (p *Post) IsDeleted() bool { return p.Deleted != nil }

// ParentKind identifies what a comment replies to
type ParentKind string

const (
	ParentPost    ParentKind = "post"
	ParentComment ParentKind = "comment"
)

// Comment is a reply to a post or to another comment
type Comment struct {
	ID         string           `json:"id"`
	PostID     string           `json:"post_id"`
	ParentKind ParentKind       `json:"parent_kind"`
	ParentID   string           `json:"parent_id"`
	Content    string           `json:"content"`
	Pending    bool             `json:"pending"`
	Pinned     bool             `json:"pinned"`
	Restricted *RestrictedProps `json:"restricted_props,omitempty"`
	Deleted    *DeletedProps    `json:"deleted_props,omitempty"`
	Authorship
}

// IsRestricted reports whether a moderator restriction is active
func (c *Comment) IsRestricted() bool { return c.Restricted != nil }

// IsDeleted reports whether the comment is soft-deleted
func (c *Comment) IsDeleted() bool { return c.Deleted != nil }

// TargetKind identifies votable/reportable content
type TargetKind string

const (
	TargetPost    TargetKind = "post"
	TargetComment TargetKind = "comment"
)

// Valid reports whether the kind is known
func (k TargetKind) Valid() bool {
	return k == TargetPost || k == TargetComment
}

// Target addresses a post or comment
type Target struct {
	Kind TargetKind `json:"kind"`
	ID   string     `json:"id"`
}

// Key returns the storage key for the target
func (t Target) Key() string {
	return string(t.Kind) + ":" + t.ID
}

// VoteDirection is the type of a vote edge
type VoteDirection string

const (
	VoteUp   VoteDirection = "UPVOTES"
	VoteDown VoteDirection = "DOWN_VOTES"
)

// Valid reports whether the direction is known
func (d VoteDirection) Valid() bool {
	return d == VoteUp || d == VoteDown
}

// Vote is a single user's vote on a target
type Vote struct {
	UserID    string        `json:"user_id"`
	Target    Target        `json:"target"`
	Direction VoteDirection `json:"direction"`
	VotedAt   time.Time     `json:"voted_at"`
}

// VoteTally is the derived vote aggregate of a target
type VoteTally struct {
	Up   int `json:"up"`
	Down int `json:"down"`
}

// Score returns up minus down
func (t VoteTally) Score() int {
	return t.Up - t.Down
}

// Report is a REPORTED edge from a user to content
type Report struct {
	ID         string    `json:"id"`
	ReporterID string    `json:"reporter_id"`
	Target     Target    `json:"target"`
	Reason     string    `json:"reason"`
	ReportedAt time.Time `json:"reported_at"`
}

// AwardGrant records a user granting an award to a post
type AwardGrant struct {
	AwardID   string    `json:"award_id"`
	PostID    string    `json:"post_id"`
	GrantedBy string    `json:"granted_by"`
	GrantedAt time.Time `json:"granted_at"`
}
