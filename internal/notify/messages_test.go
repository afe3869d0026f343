package notify

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageMaker_EveryEventHasTemplate(t *testing.T) {
	m := NewMessageMaker(0)
	for _, kind := range AllEventKinds() {
		t.Run(string(kind), func(t *testing.T) {
			msg, err := m.Make(Event{Kind: kind, PostID: "p1", CommentID: "c1", Content: "hello"})
			require.NoError(t, err)
			assert.NotEmpty(t, msg)
			assert.Contains(t, msg, "/posts/p1")
		})
	}
}

func TestMessageMaker_UnknownEvent(t *testing.T) {
	_, err := NewMessageMaker(20).Make(Event{Kind: "post-got-eaten"})
	assert.ErrorIs(t, err, ErrUnknownEvent)
}

func TestMessageMaker_Deterministic(t *testing.T) {
	m := NewMessageMaker(20)
	e := NewCommentOnPost("author", Actor{ID: "u2", Username: "bob"}, "p1", "c9", "a perfectly ordinary reply")

	first, err := m.Make(e)
	require.NoError(t, err)
	second, err := m.Make(e)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestMessageMaker_Preview(t *testing.T) {
	m := NewMessageMaker(20)

	t.Run("truncates long content", func(t *testing.T) {
		e := NewCommentOnPost("author", Actor{ID: "u2", Username: "bob"}, "p1", "c9", strings.Repeat("x", 50))
		msg, err := m.Make(e)
		require.NoError(t, err)
		assert.Contains(t, msg, `"`+strings.Repeat("x", 20)+`..."`)
		assert.NotContains(t, msg, strings.Repeat("x", 21))
	})

	t.Run("short content is quoted whole", func(t *testing.T) {
		e := PostVoted("author", Actor{ID: "u2", Username: "bob"}, true, "p1", "Short title")
		msg, err := m.Make(e)
		require.NoError(t, err)
		assert.Equal(t, `bob upvoted your post "Short title" /posts/p1`, msg)
	})

	t.Run("counts runes not bytes", func(t *testing.T) {
		e := PostVoted("author", Actor{ID: "u2"}, false, "p1", strings.Repeat("é", 25))
		msg, err := m.Make(e)
		require.NoError(t, err)
		assert.Contains(t, msg, strings.Repeat("é", 20)+"...")
		assert.True(t, strings.HasPrefix(msg, "Someone downvoted"))
	})
}

func TestMessageMaker_Restricted(t *testing.T) {
	e := CommentRestricted("author", Actor{ID: "mod", Username: "mod"}, "p1", "c1", "rude", "Rule 3")
	msg, err := NewMessageMaker(20).Make(e)
	require.NoError(t, err)
	assert.Equal(t, `Your comment "rude" was restricted by a moderator: Rule 3 /posts/p1?comment=c1`, msg)
	assert.NotContains(t, msg, "mod ")
}

func TestDeepLink(t *testing.T) {
	assert.Equal(t, "/posts/p1", DeepLink("p1", ""))
	assert.Equal(t, "/posts/p1?comment=c1", DeepLink("p1", "c1"))
	assert.Equal(t, "/posts/a%2Fb?comment=c+1", DeepLink("a/b", "c 1"))
}

func TestEventConstructors(t *testing.T) {
	actor := Actor{ID: "u2", Username: "bob", Avatar: "bob.png"}

	assert.Equal(t, EventNewCommentOnComment, NewCommentOnComment("u1", actor, "p", "c", "x").Kind)
	assert.Equal(t, EventCommentUpVote, CommentVoted("u1", actor, true, "p", "c", "x").Kind)
	assert.Equal(t, EventCommentDownVote, CommentVoted("u1", actor, false, "p", "c", "x").Kind)
	assert.Equal(t, EventPostDownVote, PostVoted("u1", actor, false, "p", "x").Kind)
	assert.Equal(t, EventPostApproved, PostApproved("u1", actor, "p", "x").Kind)
	assert.Equal(t, EventCommentApproved, CommentApproved("u1", actor, "p", "c", "x").Kind)
	assert.Equal(t, EventCommentPinned, CommentPinned("u1", actor, "p", "c", "x").Kind)

	e := PostRestricted("u1", actor, "p", "title", "spam")
	assert.Equal(t, EventPostRestricted, e.Kind)
	assert.Equal(t, "u1", e.SubscriberID)
	assert.Equal(t, "u2", e.ActorID)
	assert.Equal(t, "spam", e.Reason)
	assert.Equal(t, "bob.png", e.Avatar)
}
