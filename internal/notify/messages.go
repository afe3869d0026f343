package notify

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/google/go-querystring/query"
)

// DefaultPreviewLength is how many characters of user content a message quotes.
const DefaultPreviewLength = 20

// ErrUnknownEvent is returned for event kinds without a message template.
var ErrUnknownEvent = errors.New("unknown notification event")

// MessageMaker renders notification messages. It holds no mutable state, so
// the same event always yields the same message.
type MessageMaker struct {
	previewLength int
}

// NewMessageMaker creates a MessageMaker quoting previewLength characters.
// A non-positive length falls back to DefaultPreviewLength.
func NewMessageMaker(previewLength int) *MessageMaker {
	if previewLength <= 0 {
		previewLength = DefaultPreviewLength
	}
	return &MessageMaker{previewLength: previewLength}
}

type template func(m *MessageMaker, e Event) string

var templates = map[EventKind]template{
	EventNewCommentOnPost: func(m *MessageMaker, e Event) string {
		return fmt.Sprintf("%s commented on your post: %q %s", displayName(e), m.preview(e.Content), commentLink(e))
	},
	EventNewCommentOnComment: func(m *MessageMaker, e Event) string {
		return fmt.Sprintf("%s replied to your comment: %q %s", displayName(e), m.preview(e.Content), commentLink(e))
	},
	EventCommentUpVote: func(m *MessageMaker, e Event) string {
		return fmt.Sprintf("%s upvoted your comment %q %s", displayName(e), m.preview(e.Content), commentLink(e))
	},
	EventCommentDownVote: func(m *MessageMaker, e Event) string {
		return fmt.Sprintf("%s downvoted your comment %q %s", displayName(e), m.preview(e.Content), commentLink(e))
	},
	EventCommentRestricted: func(m *MessageMaker, e Event) string {
		return fmt.Sprintf("Your comment %q was restricted by a moderator: %s %s", m.preview(e.Content), e.Reason, commentLink(e))
	},
	EventCommentApproved: func(m *MessageMaker, e Event) string {
		return fmt.Sprintf("Your comment %q was approved by a moderator %s", m.preview(e.Content), commentLink(e))
	},
	EventCommentPinned: func(m *MessageMaker, e Event) string {
		return fmt.Sprintf("%s pinned your comment %q %s", displayName(e), m.preview(e.Content), commentLink(e))
	},
	EventPostUpVote: func(m *MessageMaker, e Event) string {
		return fmt.Sprintf("%s upvoted your post %q %s", displayName(e), m.preview(e.Content), postLink(e))
	},
	EventPostDownVote: func(m *MessageMaker, e Event) string {
		return fmt.Sprintf("%s downvoted your post %q %s", displayName(e), m.preview(e.Content), postLink(e))
	},
	EventPostRestricted: func(m *MessageMaker, e Event) string {
		return fmt.Sprintf("Your post %q was restricted by a moderator: %s %s", m.preview(e.Content), e.Reason, postLink(e))
	},
	EventPostApproved: func(m *MessageMaker, e Event) string {
		return fmt.Sprintf("Your post %q was approved by a moderator %s", m.preview(e.Content), postLink(e))
	},
}

// Make renders the message for e.
func (m *MessageMaker) Make(e Event) (string, error) {
	tmpl, ok := templates[e.Kind]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownEvent, e.Kind)
	}
	return tmpl(m, e), nil
}

// preview truncates s to the configured number of runes, marking the cut with "...".
func (m *MessageMaker) preview(s string) string {
	runes := []rune(s)
	if len(runes) <= m.previewLength {
		return s
	}
	return string(runes[:m.previewLength]) + "..."
}

func displayName(e Event) string {
	if e.Username == "" {
		return "Someone"
	}
	return e.Username
}

// linkQuery is the query string of a deep link.
type linkQuery struct {
	Comment string `url:"comment,omitempty"`
}

// DeepLink returns the client path for a post, optionally focused on a comment.
func DeepLink(postID, commentID string) string {
	link := "/posts/" + url.PathEscape(postID)
	v, err := query.Values(linkQuery{Comment: commentID})
	if err != nil {
		return link
	}
	if encoded := v.Encode(); encoded != "" {
		link += "?" + encoded
	}
	return link
}

func postLink(e Event) string {
	return DeepLink(e.PostID, "")
}

func commentLink(e Event) string {
	return DeepLink(e.PostID, e.CommentID)
}
