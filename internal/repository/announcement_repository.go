package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"resto-collect/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// announcementRepository implements the AnnouncementRepository interface using PostgreSQL.
type announcementRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewAnnouncementRepository creates a new PostgreSQL-backed announcement repository.
func NewAnnouncementRepository(pool *pgxpool.Pool, logger zerolog.Logger) AnnouncementRepository {
	return &announcementRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "announcement").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *announcementRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// List returns announcements newest first.
func (r *announcementRepository) List(ctx context.Context, viewer uuid.UUID) ([]model.Announcement, error) {
	query := `
		SELECT
			a.id,
			a.title,
			a.content,
			a.image_urls,
			a.user_id,
			COALESCE(c.first_name, ''),
			COALESCE(c.last_name, ''),
			(SELECT COUNT(*) FROM announcement_likes l WHERE l.announcement_id = a.id),
			EXISTS (SELECT 1 FROM announcement_likes l WHERE l.announcement_id = a.id AND l.user_id = $1),
			a.created_at
		FROM announcements a
		LEFT JOIN clients c ON c.id = a.user_id
		ORDER BY a.created_at DESC, a.id DESC
	`

	rows, err := r.pool.Query(ctx, query, viewer)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query announcements")
		return nil, fmt.Errorf("failed to query announcements: %w", err)
	}
	defer rows.Close()

	announcements := []model.Announcement{}
	for rows.Next() {
		var (
			a         model.Announcement
			rawImages []byte
		)
		err := rows.Scan(
			&a.ID,
			&a.Title,
			&a.Content,
			&rawImages,
			&a.AuthorID,
			&a.AuthorFirstName,
			&a.AuthorLastName,
			&a.LikeCount,
			&a.LikedByMe,
			&a.CreatedAt,
		)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan announcement row")
			return nil, fmt.Errorf("failed to scan announcement: %w", err)
		}
		a.ImageURLs = model.DecodeImageURLs(rawImages)
		announcements = append(announcements, a)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating announcement rows")
		return nil, fmt.Errorf("error iterating announcements: %w", err)
	}

	return announcements, nil
}

// Insert stores an announcement and fills in its id and timestamp.
func (r *announcementRepository) Insert(ctx context.Context, a *model.Announcement) error {
	urls := a.ImageURLs
	if urls == nil {
		urls = []string{}
	}
	images, err := json.Marshal(urls)
	if err != nil {
		return fmt.Errorf("failed to encode image urls: %w", err)
	}

	query := `
		INSERT INTO announcements (title, content, image_urls, user_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err = r.pool.QueryRow(ctx, query, a.Title, a.Content, images, a.AuthorID).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("author_id", a.AuthorID.String()).Msg("failed to insert announcement")
		return fmt.Errorf("failed to insert announcement: %w", err)
	}

	r.logger.Debug().
		Int64("announcement_id", a.ID).
		Int("images", len(urls)).
		Msg("announcement created successfully")

	return nil
}

// IsLiked reports whether user likes the announcement.
func (r *announcementRepository) IsLiked(ctx context.Context, tx pgx.Tx, announcementID int64, user uuid.UUID) (bool, error) {
	var liked bool
	err := tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM announcement_likes WHERE announcement_id = $1 AND user_id = $2)`,
		announcementID, user,
	).Scan(&liked)
	if err != nil {
		r.logger.Error().Err(err).Int64("announcement_id", announcementID).Msg("failed to query like")
		return false, fmt.Errorf("failed to query like: %w", err)
	}
	return liked, nil
}

// Like records a like.
func (r *announcementRepository) Like(ctx context.Context, tx pgx.Tx, announcementID int64, user uuid.UUID) error {
	tag, err := tx.Exec(ctx, `
		INSERT INTO announcement_likes (announcement_id, user_id)
		SELECT $1::bigint, $2::uuid WHERE EXISTS (SELECT 1 FROM announcements WHERE id = $1)
		ON CONFLICT DO NOTHING
	`, announcementID, user)
	if err != nil {
		r.logger.Error().Err(err).Int64("announcement_id", announcementID).Msg("failed to insert like")
		return fmt.Errorf("failed to insert like: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM announcements WHERE id = $1)`, announcementID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check announcement: %w", err)
		}
		if !exists {
			return model.ErrNotFound
		}
	}
	return nil
}

// Unlike removes a like.
func (r *announcementRepository) Unlike(ctx context.Context, tx pgx.Tx, announcementID int64, user uuid.UUID) error {
	_, err := tx.Exec(ctx,
		`DELETE FROM announcement_likes WHERE announcement_id = $1 AND user_id = $2`,
		announcementID, user,
	)
	if err != nil {
		r.logger.Error().Err(err).Int64("announcement_id", announcementID).Msg("failed to delete like")
		return fmt.Errorf("failed to delete like: %w", err)
	}
	return nil
}
