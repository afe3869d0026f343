package forum

import (
	"context"
	"testing"

	"agora/internal/models"
	"agora/internal/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentCreate_NotifiesPostAuthor(t *testing.T) {
	ctx := context.Background()
	f := setupTestForum(t)
	f.seedPost(t, "p1", "alice", nil)

	comment, err := f.Comments.Create(ctx, "bob", models.NewComment{
		ParentKind: models.ParentPost, ParentID: "p1", Content: "nice post",
	})
	require.NoError(t, err)
	assert.False(t, comment.Pending)
	assert.Equal(t, "p1", comment.PostID)

	events := f.events.Events()
	require.Len(t, events, 1)
	assert.Equal(t, notify.EventNewCommentOnPost, events[0].Kind)
	assert.Equal(t, "alice", events[0].SubscriberID)
	assert.Equal(t, "bob", events[0].Username)
	assert.Equal(t, comment.ID, events[0].CommentID)
}

func TestCommentCreate_ReplyNotifiesParentAuthor(t *testing.T) {
	ctx := context.Background()
	f := setupTestForum(t)
	f.seedPost(t, "p1", "alice", nil)
	f.seedComment(t, "c1", "p1", "bob", nil)

	reply, err := f.Comments.Create(ctx, "alice", models.NewComment{
		ParentKind: models.ParentComment, ParentID: "c1", Content: "thanks",
	})
	require.NoError(t, err)
	assert.Equal(t, "p1", reply.PostID)

	events := f.events.Events()
	require.Len(t, events, 1)
	assert.Equal(t, notify.EventNewCommentOnComment, events[0].Kind)
	assert.Equal(t, "bob", events[0].SubscriberID)
}

func TestCommentCreate_PendingRaisesNoEvent(t *testing.T) {
	ctx := context.Background()
	f := setupTestForum(t)
	f.seedPost(t, "p1", "alice", nil)
	f.screener.pending = true

	comment, err := f.Comments.Create(ctx, "bob", models.NewComment{
		ParentKind: models.ParentPost, ParentID: "p1", Content: "hmm",
	})
	require.NoError(t, err)
	assert.True(t, comment.Pending)
	assert.Empty(t, f.events.Events())
}

func TestCommentCreate_AnonymousActorHasNoName(t *testing.T) {
	ctx := context.Background()
	f := setupTestForum(t)
	f.seedPost(t, "p1", "alice", nil)

	_, err := f.Comments.Create(ctx, "bob", models.NewComment{
		ParentKind: models.ParentPost, ParentID: "p1", Content: "psst", Anonymously: true,
	})
	require.NoError(t, err)

	events := f.events.Events()
	require.Len(t, events, 1)
	assert.Empty(t, events[0].Username)
}

func TestCommentCreate_HiddenParent(t *testing.T) {
	ctx := context.Background()
	f := setupTestForum(t)
	f.seedPost(t, "p1", "alice", nil)
	f.seedPost(t, "hidden", "alice", func(p *models.Post) { p.Pending = true })
	f.seedComment(t, "restricted", "p1", "bob", func(c *models.Comment) {
		c.Restricted = &models.RestrictedProps{Reason: "r"}
	})

	_, err := f.Comments.Create(ctx, "bob", models.NewComment{ParentKind: models.ParentPost, ParentID: "hidden", Content: "x"})
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = f.Comments.Create(ctx, "alice", models.NewComment{ParentKind: models.ParentComment, ParentID: "restricted", Content: "x"})
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = f.Comments.Create(ctx, "alice", models.NewComment{ParentKind: models.ParentPost, ParentID: "nope", Content: "x"})
	assert.ErrorIs(t, err, models.ErrNotFound)

	assert.Empty(t, f.screener.texts)
}

func TestCommentListForPost(t *testing.T) {
	ctx := context.Background()
	f := setupTestForum(t)
	f.seedPost(t, "p1", "alice", nil)
	f.seedComment(t, "c1", "p1", "bob", nil)
	f.seedComment(t, "c2", "p1", "bob", func(c *models.Comment) { c.Pending = true })
	f.seedComment(t, "c3", "p1", "bob", func(c *models.Comment) {
		c.ParentKind = models.ParentComment
		c.ParentID = "c2"
	})
	f.seedComment(t, "c4", "p1", "alice", func(c *models.Comment) { c.Pinned = true })
	f.seedComment(t, "c5", "p1", "alice", func(c *models.Comment) {
		c.ParentKind = models.ParentComment
		c.ParentID = "c1"
	})

	views, err := f.Comments.ListForPost(ctx, "p1")
	require.NoError(t, err)

	ids := make([]string, len(views))
	for i, v := range views {
		ids[i] = v.ID
	}
	// c2 is pending and hides its reply c3
	assert.Equal(t, []string{"c4", "c1", "c5"}, ids)
}

func TestCommentPin(t *testing.T) {
	ctx := context.Background()
	f := setupTestForum(t)
	f.seedPost(t, "p1", "alice", nil)
	f.seedComment(t, "c1", "p1", "bob", nil)

	_, err := f.Comments.Pin(ctx, "bob", "c1")
	assert.ErrorIs(t, err, models.ErrForbidden, "only the post author may pin")

	comment, err := f.Comments.Pin(ctx, "alice", "c1")
	require.NoError(t, err)
	assert.True(t, comment.Pinned)

	// Pinning again is a no-op
	_, err = f.Comments.Pin(ctx, "alice", "c1")
	require.NoError(t, err)

	events := f.events.Events()
	require.Len(t, events, 1)
	assert.Equal(t, notify.EventCommentPinned, events[0].Kind)
	assert.Equal(t, "bob", events[0].SubscriberID)
	assert.Equal(t, "alice", events[0].Username)

	comment, err = f.Comments.Unpin(ctx, "alice", "c1")
	require.NoError(t, err)
	assert.False(t, comment.Pinned)

	stored, err := f.store.GetComment(ctx, "c1")
	require.NoError(t, err)
	assert.False(t, stored.Pinned)
}
