package repository

import (
	"context"
	"errors"
	"fmt"

	"resto-collect/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const (
	pgUniqueViolation = "23505"
	pgNoDataFound     = "P0002"
)

const clientColumns = `id, email, password_hash, first_name, last_name, role, tokens, created_at`

// clientRepository implements the ClientRepository interface using PostgreSQL.
type clientRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewClientRepository creates a new PostgreSQL-backed client repository.
func NewClientRepository(pool *pgxpool.Pool, logger zerolog.Logger) ClientRepository {
	return &clientRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "client").Logger(),
	}
}

// Create inserts a new client.
func (r *clientRepository) Create(ctx context.Context, client *model.Client) error {
	query := `
		INSERT INTO clients (id, email, password_hash, first_name, last_name, role, tokens, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		client.ID,
		client.Email,
		client.PasswordHash,
		client.FirstName,
		client.LastName,
		string(client.Role),
		client.Tokens,
		client.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return model.ErrEmailTaken
		}
		r.logger.Error().Err(err).Str("client_id", client.ID.String()).Msg("failed to create client")
		return fmt.Errorf("failed to create client: %w", err)
	}

	r.logger.Debug().Str("client_id", client.ID.String()).Msg("client created successfully")

	return nil
}

// GetByEmail retrieves a client by email.
func (r *clientRepository) GetByEmail(ctx context.Context, email string) (*model.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE email = $1`

	client, err := scanClient(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		r.logger.Error().Err(err).Msg("failed to query client by email")
		return nil, fmt.Errorf("failed to query client: %w", err)
	}

	return client, nil
}

// GetByID retrieves a client by id.
func (r *clientRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1`

	client, err := scanClient(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		r.logger.Error().Err(err).Str("client_id", id.String()).Msg("failed to query client")
		return nil, fmt.Errorf("failed to query client: %w", err)
	}

	return client, nil
}

// GetTokens returns the loyalty balance of a client.
func (r *clientRepository) GetTokens(ctx context.Context, id uuid.UUID) (int64, error) {
	var tokens int64
	err := r.pool.QueryRow(ctx, `SELECT tokens FROM clients WHERE id = $1`, id).Scan(&tokens)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, model.ErrNotFound
		}
		r.logger.Error().Err(err).Str("client_id", id.String()).Msg("failed to query tokens")
		return 0, fmt.Errorf("failed to query tokens: %w", err)
	}
	return tokens, nil
}

// AddTokens atomically increments the loyalty balance through add_tokens.
func (r *clientRepository) AddTokens(ctx context.Context, id uuid.UUID, amount int64) error {
	var balance int64
	err := r.pool.QueryRow(ctx, `SELECT add_tokens($1, $2)`, id, amount).Scan(&balance)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgNoDataFound {
			return model.ErrNotFound
		}
		r.logger.Error().
			Err(err).
			Str("client_id", id.String()).
			Int64("amount", amount).
			Msg("failed to add tokens")
		return fmt.Errorf("failed to add tokens: %w", err)
	}

	r.logger.Debug().
		Str("client_id", id.String()).
		Int64("amount", amount).
		Int64("balance", balance).
		Msg("tokens added")

	return nil
}

// ListByRole returns the contacts having role, ordered by name.
func (r *clientRepository) ListByRole(ctx context.Context, role model.Role) ([]model.Contact, error) {
	query := `
		SELECT id, first_name, last_name
		FROM clients
		WHERE role = $1
		ORDER BY first_name, last_name, created_at
	`

	rows, err := r.pool.Query(ctx, query, string(role))
	if err != nil {
		r.logger.Error().Err(err).Str("role", string(role)).Msg("failed to query clients by role")
		return nil, fmt.Errorf("failed to query clients by role: %w", err)
	}
	defer rows.Close()

	contacts := []model.Contact{}
	for rows.Next() {
		var c model.Contact
		if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan contact row")
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, c)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating contact rows")
		return nil, fmt.Errorf("error iterating contacts: %w", err)
	}

	return contacts, nil
}

func scanClient(row pgx.Row) (*model.Client, error) {
	var (
		c    model.Client
		role string
	)
	err := row.Scan(
		&c.ID,
		&c.Email,
		&c.PasswordHash,
		&c.FirstName,
		&c.LastName,
		&role,
		&c.Tokens,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Role = model.Role(role)
	return &c, nil
}
