package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"agora/internal/metrics"
	"agora/internal/notify"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupHub(t *testing.T) (*Hub, *notify.ConnectionPool, *httptest.Server) {
	t.Helper()
	pool := notify.NewConnectionPool(time.Minute)
	hub := NewHub(pool)
	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return hub, pool, srv
}

func dial(t *testing.T, srv *httptest.Server, poolID string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?pool_id=" + poolID
	return websocket.DefaultDialer.Dial(url, nil)
}

func TestHub_DeliversToSubscribedPool(t *testing.T) {
	hub, pool, srv := setupHub(t)
	poolID := pool.AddUser("alice")

	conn, _, err := dial(t, srv, poolID)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 10*time.Millisecond)

	channel := notify.ChannelName(notify.ChannelKindNotifications, poolID)
	err = hub.Trigger(context.Background(), channel, "post-got-up-vote", map[string]string{"token": "t1"})
	require.NoError(t, err)

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var frame Frame
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, channel, frame.Channel)
	assert.Equal(t, "post-got-up-vote", frame.Event)

	var data map[string]string
	require.NoError(t, json.Unmarshal(frame.Data, &data))
	assert.Equal(t, "t1", data["token"])
}

func TestHub_OtherChannelsNotDelivered(t *testing.T) {
	hub, pool, srv := setupHub(t)
	mine := pool.AddUser("alice")
	other := pool.AddUser("bob")

	conn, _, err := dial(t, srv, mine)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 10*time.Millisecond)

	// bob has no live socket; the push is silently dropped
	err = hub.Trigger(context.Background(), notify.ChannelName(notify.ChannelKindNotifications, other), "post-got-up-vote", "x")
	require.NoError(t, err)

	_ = conn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err, "no frame expected")
}

func TestHub_RejectsUnknownPoolID(t *testing.T) {
	_, _, srv := setupHub(t)

	_, resp, err := dial(t, srv, "nope")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHub_UnregistersOnDisconnect(t *testing.T) {
	hub, pool, srv := setupHub(t)
	poolID := pool.AddUser("alice")
	before := testutil.ToFloat64(metrics.RealtimeConnections)

	conn, _, err := dial(t, srv, poolID)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(metrics.RealtimeConnections) == before+1
	}, time.Second, 10*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.Count() == 0 }, 2*time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(metrics.RealtimeConnections) == before
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHub_TriggerWithoutSubscribers(t *testing.T) {
	hub := NewHub(notify.NewConnectionPool(time.Minute))
	assert.NoError(t, hub.Trigger(context.Background(), "private-notifications-none", "evt", nil))
	assert.Equal(t, 0, hub.Count())
}

func TestHub_WorksAsPusherRelay(t *testing.T) {
	hub, pool, srv := setupHub(t)
	poolID := pool.AddUser("alice")

	conn, _, err := dial(t, srv, poolID)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 10*time.Millisecond)

	pusher := notify.NewPusher(hub, pool)
	n := pusher.TriggerUser(context.Background(), notify.ChannelKindNotifications, "comment-got-pinned-by-author", "alice", map[string]string{"message": "hi"})
	assert.Equal(t, 1, n)
	pusher.Wait()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var frame Frame
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, "comment-got-pinned-by-author", frame.Event)
}
