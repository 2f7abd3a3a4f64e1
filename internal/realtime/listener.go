package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// DefaultChannel is the NOTIFY channel migrations use when none is configured.
const DefaultChannel = "resto_changes"

// Publisher is the publish side of the hub.
type Publisher interface {
	Publish(ev Event)
}

// Listener turns Postgres notifications into hub events.
type Listener struct {
	pool      *pgxpool.Pool
	channel   string
	backoff   time.Duration
	publisher Publisher
	logger    zerolog.Logger
}

// NewListener creates a listener on channel. backoff is the wait before
// reconnecting after the connection drops.
func NewListener(pool *pgxpool.Pool, channel string, backoff time.Duration, publisher Publisher, logger zerolog.Logger) *Listener {
	if channel == "" {
		channel = DefaultChannel
	}
	if backoff <= 0 {
		backoff = 2 * time.Second
	}
	return &Listener{
		pool:      pool,
		channel:   channel,
		backoff:   backoff,
		publisher: publisher,
		logger:    logger.With().Str("component", "realtime-listener").Str("channel", channel).Logger(),
	}
}

// Run listens until ctx is cancelled, reconnecting after failures.
func (l *Listener) Run(ctx context.Context) error {
	for {
		err := l.listen(ctx)
		if ctx.Err() != nil {
			return nil
		}

		l.logger.Warn().Err(err).Dur("backoff", l.backoff).Msg("notification listener stopped, reconnecting")

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(l.backoff):
		}
	}
}

func (l *Listener) listen(ctx context.Context) error {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{l.channel}.Sanitize()); err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	l.logger.Info().Msg("listening for change notifications")

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("failed to wait for notification: %w", err)
		}

		ev, err := DecodeNotification(n.Payload)
		if err != nil {
			l.logger.Warn().Err(err).Str("payload", n.Payload).Msg("dropping malformed notification")
			continue
		}

		l.publisher.Publish(ev)
	}
}

// DecodeNotification parses a trigger payload.
func DecodeNotification(payload string) (Event, error) {
	var ev Event
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return Event{}, fmt.Errorf("failed to decode notification: %w", err)
	}
	if ev.Collection == "" || ev.Kind == "" {
		return Event{}, errors.New("notification is missing table or op")
	}
	return ev, nil
}
