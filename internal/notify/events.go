// Package notify turns forum events into stashed and pushed notifications.
//
// A service raises an Event on a Publisher (normally the Bus). The Notifier
// composes the message with the MessageMaker, stashes it in the StashPool
// under a fresh token and pushes it to every live ConnectionPool entry of the
// subscriber through a Relay. Pushes are best-effort; the stash is what a
// client reads back when it reconnects.
package notify

import "context"

// EventKind is the wire-level name of a notification event.
type EventKind string

const (
	EventNewCommentOnPost    EventKind = "new-comment-on-post"
	EventNewCommentOnComment EventKind = "new-comment-on-comment"
	EventCommentUpVote       EventKind = "comment-got-up-vote"
	EventCommentDownVote     EventKind = "comment-got-down-vote"
	EventCommentRestricted   EventKind = "comment-got-restricted"
	EventCommentApproved     EventKind = "comment-got-approved-by-moderator"
	EventCommentPinned       EventKind = "comment-got-pinned-by-author"
	EventPostUpVote          EventKind = "post-got-up-vote"
	EventPostDownVote        EventKind = "post-got-down-vote"
	EventPostRestricted      EventKind = "post-got-restricted"
	EventPostApproved        EventKind = "post-got-approved-by-moderator"
)

// AllEventKinds returns every event in the catalog.
func AllEventKinds() []EventKind {
	return []EventKind{
		EventNewCommentOnPost,
		EventNewCommentOnComment,
		EventCommentUpVote,
		EventCommentDownVote,
		EventCommentRestricted,
		EventCommentApproved,
		EventCommentPinned,
		EventPostUpVote,
		EventPostDownVote,
		EventPostRestricted,
		EventPostApproved,
	}
}

// Actor is the user whose action raised an event. Moderator events carry
// the moderator as actor but never expose their name in the message.
type Actor struct {
	ID       string
	Username string
	Avatar   string
}

// Event is a single notification-worthy occurrence addressed to one subscriber.
// Build events with the constructors below so each kind carries the fields
// its message template needs.
type Event struct {
	Kind         EventKind `json:"event"`
	SubscriberID string    `json:"subscriber_id"`
	ActorID      string    `json:"actor_id,omitempty"`
	Username     string    `json:"username,omitempty"`
	Avatar       string    `json:"avatar,omitempty"`
	PostID       string    `json:"post_id"`
	CommentID    string    `json:"comment_id,omitempty"`
	Content      string    `json:"content,omitempty"`
	Reason       string    `json:"reason,omitempty"`
}

func newEvent(kind EventKind, subscriberID string, actor Actor, postID, commentID, content string) Event {
	return Event{
		Kind:         kind,
		SubscriberID: subscriberID,
		ActorID:      actor.ID,
		Username:     actor.Username,
		Avatar:       actor.Avatar,
		PostID:       postID,
		CommentID:    commentID,
		Content:      content,
	}
}

// NewCommentOnPost notifies a post author about a top-level reply.
func NewCommentOnPost(postAuthorID string, actor Actor, postID, commentID, commentContent string) Event {
	return newEvent(EventNewCommentOnPost, postAuthorID, actor, postID, commentID, commentContent)
}

// NewCommentOnComment notifies a comment author about a reply to their comment.
func NewCommentOnComment(parentAuthorID string, actor Actor, postID, commentID, commentContent string) Event {
	return newEvent(EventNewCommentOnComment, parentAuthorID, actor, postID, commentID, commentContent)
}

// PostVoted notifies a post author about an up or down vote.
func PostVoted(authorID string, actor Actor, up bool, postID, title string) Event {
	kind := EventPostDownVote
	if up {
		kind = EventPostUpVote
	}
	return newEvent(kind, authorID, actor, postID, "", title)
}

// CommentVoted notifies a comment author about an up or down vote.
func CommentVoted(authorID string, actor Actor, up bool, postID, commentID, content string) Event {
	kind := EventCommentDownVote
	if up {
		kind = EventCommentUpVote
	}
	return newEvent(kind, authorID, actor, postID, commentID, content)
}

// PostRestricted notifies a post author that a moderator restricted their post.
func PostRestricted(authorID string, moderator Actor, postID, title, reason string) Event {
	e := newEvent(EventPostRestricted, authorID, moderator, postID, "", title)
	e.Reason = reason
	return e
}

// CommentRestricted notifies a comment author that a moderator restricted their comment.
func CommentRestricted(authorID string, moderator Actor, postID, commentID, content, reason string) Event {
	e := newEvent(EventCommentRestricted, authorID, moderator, postID, commentID, content)
	e.Reason = reason
	return e
}

// PostApproved notifies a post author that their pending post was approved.
func PostApproved(authorID string, moderator Actor, postID, title string) Event {
	return newEvent(EventPostApproved, authorID, moderator, postID, "", title)
}

// CommentApproved notifies a comment author that their pending comment was approved.
func CommentApproved(authorID string, moderator Actor, postID, commentID, content string) Event {
	return newEvent(EventCommentApproved, authorID, moderator, postID, commentID, content)
}

// CommentPinned notifies a comment author that the post author pinned their comment.
func CommentPinned(authorID string, postAuthor Actor, postID, commentID, content string) Event {
	return newEvent(EventCommentPinned, authorID, postAuthor, postID, commentID, content)
}

// Publisher accepts events for asynchronous processing.
// Publish never blocks on notification delivery.
type Publisher interface {
	Publish(ctx context.Context, e Event)
}

// PublisherFunc adapts a function to the Publisher interface.
type PublisherFunc func(ctx context.Context, e Event)

// Publish calls f(ctx, e).
func (f PublisherFunc) Publish(ctx context.Context, e Event) {
	f(ctx, e)
}

// Discard is a Publisher that drops every event.
var Discard Publisher = PublisherFunc(func(context.Context, Event) {})
