package models

import (
	"strings"
	"unicode/utf8"
)

// NewPost is the input for creating a post
type NewPost struct {
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	TypeID      string   `json:"type_id"`
	TagIDs      []string `json:"tag_ids"`
	Anonymously bool     `json:"anonymously"`
}

// Validate checks field presence and limits
func (p *NewPost) Validate() error {
	title := strings.TrimSpace(p.Title)
	if title == "" {
		return ErrTitleRequired
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return ErrTitleTooLong
	}
	if strings.TrimSpace(p.Content) == "" {
		return ErrContentRequired
	}
	if utf8.RuneCountInString(p.Content) > MaxContentLength {
		return ErrContentTooLong
	}
	if len(p.TagIDs) > MaxTagsPerPost {
		return ErrTooManyTags
	}
	return nil
}

// NewComment is the input for creating a comment
type NewComment struct {
	ParentKind  ParentKind `json:"parent_kind"`
	ParentID    string     `json:"parent_id"`
	Content     string     `json:"content"`
	Anonymously bool       `json:"anonymously"`
}

// Validate checks field presence and limits
func (c *NewComment) Validate() error {
	if c.ParentKind != ParentPost && c.ParentKind != ParentComment {
		return ErrInvalidParent
	}
	if c.ParentID == "" {
		return ErrInvalidParent
	}
	if strings.TrimSpace(c.Content) == "" {
		return ErrContentRequired
	}
	if utf8.RuneCountInString(c.Content) > MaxCommentLength {
		return ErrContentTooLong
	}
	return nil
}

// Registration is the input for creating a user
type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks field presence and limits
func (r *Registration) Validate() error {
	n := utf8.RuneCountInString(strings.TrimSpace(r.Username))
	if n < MinUsernameLength || n > MaxUsernameLength {
		return ErrUsernameInvalid
	}
	if strings.TrimSpace(r.Email) == "" {
		return ErrEmailRequired
	}
	if len(r.Password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

// ProfileUpdate changes profile attributes. Nil fields are left unchanged.
type ProfileUpdate struct {
	Avatar    *string           `json:"avatar,omitempty"`
	Gender    *ProfileAttribute `json:"gender,omitempty"`
	Sexuality *ProfileAttribute `json:"sexuality,omitempty"`
	Openness  *ProfileAttribute `json:"openness,omitempty"`
}
