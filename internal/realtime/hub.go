// Package realtime is the websocket relay that carries pushed notifications
// to live clients. Each connection subscribes to the private channel of the
// pool id it was issued by the realtime auth endpoint.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"agora/internal/metrics"
	"agora/internal/notify"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait    = 10 * time.Second
	pingInterval = 30 * time.Second
	pongWait     = 60 * time.Second
	sendBuffer   = 32
)

// ErrBacklogFull is returned by Trigger when a subscriber is not draining its
// queue fast enough.
var ErrBacklogFull = errors.New("subscriber backlog full")

// Frame is the JSON message written to subscribers.
type Frame struct {
	Channel string          `json:"channel"`
	Event   string          `json:"event"`
	Data    json.RawMessage `json:"data"`
}

type subscriber struct {
	conn    *websocket.Conn
	poolID  string
	channel string
	send    chan []byte
	done    chan struct{}
	once    sync.Once
}

func (s *subscriber) close() {
	s.once.Do(func() { close(s.done) })
}

// Hub tracks websocket subscribers by channel and implements notify.Relay.
type Hub struct {
	pool     *notify.ConnectionPool
	upgrader websocket.Upgrader

	mu       sync.RWMutex
	channels map[string]map[*subscriber]struct{}
	closed   bool
}

// Ensure Hub implements notify.Relay at compile time.
var _ notify.Relay = (*Hub)(nil)

// NewHub creates a hub that authenticates connections against pool.
func NewHub(pool *notify.ConnectionPool) *Hub {
	return &Hub{
		pool: pool,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1 << 10,
			WriteBufferSize: 10 << 10,
		},
		channels: make(map[string]map[*subscriber]struct{}),
	}
}

// Trigger queues an event for every subscriber of channel. A channel with no
// subscribers is not an error: the notification is still in the stash.
func (h *Hub) Trigger(ctx context.Context, channel, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	frame, err := json.Marshal(Frame{Channel: channel, Event: event, Data: data})
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	subs := h.channels[channel]
	if len(subs) == 0 {
		log.Debug().Str("channel", channel).Str("event", event).Msg("No subscribers on channel")
		return nil
	}

	var errs []error
	for sub := range subs {
		select {
		case sub.send <- frame:
		case <-ctx.Done():
			return ctx.Err()
		default:
			errs = append(errs, fmt.Errorf("pool %s: %w", sub.poolID, ErrBacklogFull))
		}
	}
	return errors.Join(errs...)
}

// Count returns the number of open subscriber connections.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for _, subs := range h.channels {
		n += len(subs)
	}
	return n
}

func (h *Hub) register(sub *subscriber) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}
	subs, ok := h.channels[sub.channel]
	if !ok {
		subs = make(map[*subscriber]struct{})
		h.channels[sub.channel] = subs
	}
	subs[sub] = struct{}{}
	return true
}

func (h *Hub) unregister(sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if subs, ok := h.channels[sub.channel]; ok {
		delete(subs, sub)
		if len(subs) == 0 {
			delete(h.channels, sub.channel)
		}
	}
}

// Close disconnects every subscriber and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for _, subs := range h.channels {
		for sub := range subs {
			sub.close()
		}
	}
}

// ServeWS upgrades the request to a websocket subscribed to the private
// notifications channel of the pool_id query parameter. The pool id must have
// been issued by the realtime auth endpoint and still be live.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	poolID := r.URL.Query().Get("pool_id")
	item, ok := h.pool.Lookup(poolID)
	if poolID == "" || !ok {
		http.Error(w, "Unknown or expired pool id", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response
		log.Warn().Err(err).Str("pool_id", poolID).Msg("Websocket upgrade failed")
		return
	}

	sub := &subscriber{
		conn:    conn,
		poolID:  poolID,
		channel: notify.ChannelName(notify.ChannelKindNotifications, poolID),
		send:    make(chan []byte, sendBuffer),
		done:    make(chan struct{}),
	}
	if !h.register(sub) {
		conn.Close()
		return
	}

	metrics.RealtimeConnections.Inc()
	log.Info().Str("pool_id", poolID).Str("user_id", item.UserID).Msg("Realtime subscriber connected")

	defer func() {
		h.unregister(sub)
		sub.close()
		conn.Close()
		metrics.RealtimeConnections.Dec()
		log.Info().Str("pool_id", poolID).Msg("Realtime subscriber disconnected")
	}()

	go h.writeLoop(sub)
	h.readLoop(sub)
}

// readLoop discards client messages and keeps the pool entry alive while the
// client is active. It returns when the connection fails or the pool entry
// has expired.
func (h *Hub) readLoop(sub *subscriber) {
	conn := sub.conn
	conn.SetReadLimit(1 << 10)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))

	touch := func() bool {
		_, live := h.pool.Lookup(sub.poolID)
		return live
	}

	conn.SetPongHandler(func(string) error {
		if !touch() {
			return errors.New("pool entry expired")
		}
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	conn.SetPingHandler(func(message string) error {
		err := conn.WriteControl(websocket.PongMessage, []byte(message), time.Now().Add(writeWait))
		if err == websocket.ErrCloseSent {
			return nil
		} else if e, ok := err.(net.Error); ok && e.Timeout() {
			return nil
		}
		return err
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Str("pool_id", sub.poolID).Msg("Realtime read failed")
			}
			return
		}
		if !touch() {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	}
}

func (h *Hub) writeLoop(sub *subscriber) {
	conn := sub.conn
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case frame := <-sub.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				log.Warn().Err(err).Str("pool_id", sub.poolID).Msg("Realtime write failed")
				conn.Close()
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(5*time.Second)); err != nil {
				log.Warn().Err(err).Str("pool_id", sub.poolID).Msg("Failed to ping realtime client")
				conn.Close()
				return
			}
		case <-sub.done:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(writeWait))
			conn.Close()
			return
		}
	}
}
