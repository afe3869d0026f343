package notify

import (
	"context"
	"time"

	"agora/internal/metrics"

	"github.com/google/uuid"
)

// PushPayload is the data pushed to a client for one notification.
type PushPayload struct {
	Token     string    `json:"token"`
	Event     EventKind `json:"event"`
	Message   string    `json:"message"`
	Username  string    `json:"username,omitempty"`
	Avatar    string    `json:"avatar,omitempty"`
	PostID    string    `json:"post_id"`
	CommentID string    `json:"comment_id,omitempty"`
	PushedAt  time.Time `json:"pushed_at"`
}

// Notifier is the event listener that composes, stashes and pushes notifications.
type Notifier struct {
	maker    *MessageMaker
	stash    *StashPool
	pusher   *Pusher
	newToken func() string
}

// NewNotifier creates a Notifier.
func NewNotifier(maker *MessageMaker, stash *StashPool, pusher *Pusher) *Notifier {
	return &Notifier{
		maker:    maker,
		stash:    stash,
		pusher:   pusher,
		newToken: uuid.NewString,
	}
}

// Register subscribes the notifier to every event kind on bus.
func (n *Notifier) Register(bus *Bus) {
	bus.SubscribeAll(n.Handle)
}

// Handle processes a single event. Self-notifications are skipped.
func (n *Notifier) Handle(ctx context.Context, e Event) error {
	if e.SubscriberID == "" || e.SubscriberID == e.ActorID {
		return nil
	}

	message, err := n.maker.Make(e)
	if err != nil {
		return err
	}

	item := n.stash.Stash(n.newToken(), e.SubscriberID, message, e.Avatar, e.Username)
	metrics.NotificationsStashedTotal.WithLabelValues(string(e.Kind)).Inc()

	n.pusher.TriggerUser(ctx, ChannelKindNotifications, string(e.Kind), e.SubscriberID, PushPayload{
		Token:     item.Token,
		Event:     e.Kind,
		Message:   item.Message,
		Username:  item.Username,
		Avatar:    item.Avatar,
		PostID:    e.PostID,
		CommentID: e.CommentID,
		PushedAt:  item.PushedAt,
	})
	return nil
}
