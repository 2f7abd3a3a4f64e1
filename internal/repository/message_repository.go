package repository

import (
	"context"
	"fmt"

	"resto-collect/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// messageRepository implements the MessageRepository interface using PostgreSQL.
type messageRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewMessageRepository creates a new PostgreSQL-backed message repository.
func NewMessageRepository(pool *pgxpool.Pool, logger zerolog.Logger) MessageRepository {
	return &messageRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "message").Logger(),
	}
}

// Conversation returns the messages exchanged between a and b, oldest first.
func (r *messageRepository) Conversation(ctx context.Context, a, b uuid.UUID) ([]model.Message, error) {
	query := `
		SELECT id, sender_id, receiver_id, content, read, created_at
		FROM messages
		WHERE (sender_id = $1 AND receiver_id = $2)
		   OR (sender_id = $2 AND receiver_id = $1)
		ORDER BY created_at, id
	`

	rows, err := r.pool.Query(ctx, query, a, b)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query conversation")
		return nil, fmt.Errorf("failed to query conversation: %w", err)
	}
	defer rows.Close()

	messages := []model.Message{}
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Content, &m.Read, &m.CreatedAt); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan message row")
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, m)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating message rows")
		return nil, fmt.Errorf("error iterating messages: %w", err)
	}

	return messages, nil
}

// Insert stores a message and fills in its id and timestamp.
func (r *messageRepository) Insert(ctx context.Context, msg *model.Message) error {
	query := `
		INSERT INTO messages (sender_id, receiver_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, read, created_at
	`

	err := r.pool.QueryRow(ctx, query, msg.SenderID, msg.ReceiverID, msg.Content).
		Scan(&msg.ID, &msg.Read, &msg.CreatedAt)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("sender_id", msg.SenderID.String()).
			Str("receiver_id", msg.ReceiverID.String()).
			Msg("failed to insert message")
		return fmt.Errorf("failed to insert message: %w", err)
	}

	return nil
}

// CountUnread counts the unread messages addressed to receiver.
func (r *messageRepository) CountUnread(ctx context.Context, receiver uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM messages WHERE receiver_id = $1 AND NOT read`, receiver,
	).Scan(&count)
	if err != nil {
		r.logger.Error().Err(err).Str("receiver_id", receiver.String()).Msg("failed to count unread messages")
		return 0, fmt.Errorf("failed to count unread messages: %w", err)
	}
	return count, nil
}

// MarkRead flags the messages from sender to receiver as read.
func (r *messageRepository) MarkRead(ctx context.Context, receiver, sender uuid.UUID) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE messages SET read = TRUE WHERE receiver_id = $1 AND sender_id = $2 AND NOT read`,
		receiver, sender,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("receiver_id", receiver.String()).Msg("failed to mark messages read")
		return 0, fmt.Errorf("failed to mark messages read: %w", err)
	}
	return tag.RowsAffected(), nil
}
