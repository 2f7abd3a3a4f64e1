// Package feed keeps a locally cached snapshot of a remote collection in sync
// with change notifications.
//
// A Store fetches the whole collection on every refresh. Overlapping
// refreshes are not sequenced: whichever response arrives last wins.
package feed

import (
	"context"
	"sync"
	"time"

	"resto-collect/internal/realtime"

	"github.com/rs/zerolog"
)

// Fetcher loads the full collection.
type Fetcher[T any] func(ctx context.Context) ([]T, error)

// Topic selects the change notifications that trigger a refresh.
type Topic struct {
	Collection string
	Kind       realtime.EventKind
	// Filter, when set, must accept an event for it to trigger a refresh.
	Filter func(realtime.Event) bool
}

// Option configures a Store.
type Option[T any] func(*Store[T])

// WithNormalizer applies fn to every fetched item.
func WithNormalizer[T any](fn func(T) T) Option[T] {
	return func(s *Store[T]) {
		s.normalize = fn
	}
}

// WithPollInterval refreshes the store every d while attached.
func WithPollInterval[T any](d time.Duration) Option[T] {
	return func(s *Store[T]) {
		s.poll = d
	}
}

// Store is a cached, self-refreshing collection.
type Store[T any] struct {
	name      string
	fetch     Fetcher[T]
	hub       realtime.Subscriber
	topic     Topic
	normalize func(T) T
	poll      time.Duration
	logger    zerolog.Logger

	mu        sync.Mutex
	items     []T
	loading   bool
	lastErr   error
	closed    bool
	handle    realtime.Handle
	attached  bool
	gen       uint64
	stop      context.CancelFunc
	nextID    int
	listeners map[int]func([]T)
}

// New creates a store named name. hub may be nil for a store that is only
// refreshed explicitly.
func New[T any](name string, fetch Fetcher[T], hub realtime.Subscriber, topic Topic, logger zerolog.Logger, opts ...Option[T]) *Store[T] {
	s := &Store[T]{
		name:      name,
		fetch:     fetch,
		hub:       hub,
		topic:     topic,
		logger:    logger.With().Str("feed", name).Logger(),
		listeners: make(map[int]func([]T)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Refresh reloads the collection. When showLoading is set Loading reports
// true until the fetch resolves. A failed fetch keeps the previous snapshot.
// Results arriving after Close are discarded.
func (s *Store[T]) Refresh(ctx context.Context, showLoading bool) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	if showLoading {
		s.loading = true
	}
	s.mu.Unlock()

	items, err := s.fetch(ctx)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	if showLoading {
		s.loading = false
	}
	if err != nil {
		s.lastErr = err
		s.mu.Unlock()
		s.logger.Warn().Err(err).Msg("feed refresh failed")
		return err
	}

	if s.normalize != nil {
		for i := range items {
			items[i] = s.normalize(items[i])
		}
	}
	s.items = items
	s.lastErr = nil
	listeners := make([]func([]T), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	s.logger.Debug().Int("count", len(items)).Msg("feed refreshed")

	for _, fn := range listeners {
		fn(s.copyOf(items))
	}
	return nil
}

// Items returns a copy of the current snapshot.
func (s *Store[T]) Items() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyOf(s.items)
}

// Loading reports whether a user-visible refresh is in flight.
func (s *Store[T]) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Err returns the error of the last refresh, or nil if it succeeded.
func (s *Store[T]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Attached reports whether the store is subscribed to change notifications.
func (s *Store[T]) Attached() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attached
}

// OnChange registers fn to receive every new snapshot.
func (s *Store[T]) OnChange(fn func([]T)) (cancel func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Attach subscribes to the store's topic, replacing any existing
// subscription. Each matching event triggers a background refresh. The
// subscription lasts until Detach, Close, or ctx is done.
func (s *Store[T]) Attach(ctx context.Context) {
	s.Detach()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	attachCtx, cancel := context.WithCancel(ctx)
	s.stop = cancel
	s.attached = true
	s.gen++
	gen := s.gen

	if s.hub != nil && s.topic.Collection != "" {
		kind := s.topic.Kind
		if kind == "" {
			kind = realtime.EventAny
		}
		filter := s.topic.Filter
		s.handle = s.hub.Subscribe(s.topic.Collection, kind, func(ev realtime.Event) {
			if attachCtx.Err() != nil {
				return
			}
			if filter != nil && !filter(ev) {
				return
			}
			go func() {
				_ = s.Refresh(attachCtx, false)
			}()
		})
	}

	if s.poll > 0 {
		go s.pollLoop(attachCtx, s.poll)
	}

	go func() {
		<-attachCtx.Done()
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.gen == gen {
			s.detachLocked()
		}
	}()
}

// Detach drops the subscription. It is safe to call at any time.
func (s *Store[T]) Detach() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detachLocked()
}

func (s *Store[T]) detachLocked() {
	if !s.attached {
		return
	}

	if s.hub != nil && s.handle != 0 {
		s.hub.Unsubscribe(s.handle)
	}
	s.handle = 0
	s.attached = false
	if s.stop != nil {
		s.stop()
		s.stop = nil
	}
}

// Close detaches the store and marks it dead.
func (s *Store[T]) Close() {
	s.Detach()

	s.mu.Lock()
	s.closed = true
	s.loading = false
	s.listeners = make(map[int]func([]T))
	s.mu.Unlock()
}

func (s *Store[T]) pollLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = s.Refresh(ctx, false)
		}
	}
}

func (s *Store[T]) copyOf(items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	return out
}
