package notify

import (
	"context"
	"runtime/debug"
	"sync"

	"github.com/rs/zerolog/log"
)

// Handler processes one event. Errors are logged by the Bus.
type Handler func(ctx context.Context, e Event) error

// Bus dispatches each published event to every handler subscribed to its
// kind. Every handler runs once per event in its own supervised goroutine,
// so Publish returns immediately and no ordering holds between events.
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventKind][]Handler
	closed   bool
	wg       sync.WaitGroup
}

// NewBus creates a Bus with no subscribers.
func NewBus() *Bus {
	return &Bus{handlers: make(map[EventKind][]Handler)}
}

// Ensure Bus implements Publisher at compile time.
var _ Publisher = (*Bus)(nil)

// Subscribe registers h for events of the given kind.
func (b *Bus) Subscribe(kind EventKind, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[kind] = append(b.handlers[kind], h)
}

// SubscribeAll registers h for every kind in the catalog.
func (b *Bus) SubscribeAll(h Handler) {
	for _, kind := range AllEventKinds() {
		b.Subscribe(kind, h)
	}
}

// Publish hands e to its handlers without waiting for them.
// Events published after Close are dropped.
func (b *Bus) Publish(ctx context.Context, e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		log.Warn().Str("event", string(e.Kind)).Msg("notify: bus closed, dropping event")
		return
	}

	detached := context.WithoutCancel(ctx)
	for _, h := range b.handlers[e.Kind] {
		b.wg.Add(1)
		go b.run(detached, h, e)
	}
}

func (b *Bus) run(ctx context.Context, h Handler, e Event) {
	defer b.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Interface("panic", r).
				Str("event", string(e.Kind)).
				Bytes("stack", debug.Stack()).
				Msg("notify: handler panicked")
		}
	}()

	if err := h(ctx, e); err != nil {
		log.Warn().Err(err).
			Str("event", string(e.Kind)).
			Str("subscriber_id", e.SubscriberID).
			Msg("notify: handler failed")
	}
}

// Close stops accepting events and waits for running handlers to finish.
func (b *Bus) Close() {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()

	b.wg.Wait()
}
