package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// migration is one idempotent schema step.
type migration struct {
	name string
	sql  string
}

var migrations = []migration{
	{
		name: "clients",
		sql: `
			CREATE TABLE IF NOT EXISTS clients (
				id UUID PRIMARY KEY,
				email VARCHAR(255) NOT NULL UNIQUE,
				password_hash TEXT NOT NULL,
				first_name VARCHAR(100) NOT NULL,
				last_name VARCHAR(100) NOT NULL,
				role VARCHAR(20) NOT NULL DEFAULT 'client',
				tokens BIGINT NOT NULL DEFAULT 0 CHECK (tokens >= 0),
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);`,
	},
	{
		name: "menu_items",
		sql: `
			CREATE TABLE IF NOT EXISTS menu_items (
				id BIGSERIAL PRIMARY KEY,
				name VARCHAR(255) NOT NULL UNIQUE,
				description TEXT NOT NULL DEFAULT '',
				price DECIMAL(10, 2) NOT NULL CHECK (price >= 0),
				category VARCHAR(100) NOT NULL DEFAULT '',
				available BOOLEAN,
				image_url TEXT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);
			CREATE INDEX IF NOT EXISTS idx_menu_items_price ON menu_items(price);`,
	},
	{
		name: "messages",
		sql: `
			CREATE TABLE IF NOT EXISTS messages (
				id BIGSERIAL PRIMARY KEY,
				sender_id UUID NOT NULL REFERENCES clients(id) ON DELETE CASCADE,
				receiver_id UUID NOT NULL REFERENCES clients(id) ON DELETE CASCADE,
				content TEXT NOT NULL,
				read BOOLEAN NOT NULL DEFAULT FALSE,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);
			CREATE INDEX IF NOT EXISTS idx_messages_pair ON messages(sender_id, receiver_id, created_at);
			CREATE INDEX IF NOT EXISTS idx_messages_unread ON messages(receiver_id) WHERE NOT read;`,
	},
	{
		name: "announcements",
		sql: `
			CREATE TABLE IF NOT EXISTS announcements (
				id BIGSERIAL PRIMARY KEY,
				title VARCHAR(255) NOT NULL,
				content TEXT NOT NULL,
				image_urls JSONB NOT NULL DEFAULT '[]'::jsonb,
				user_id UUID NOT NULL REFERENCES clients(id) ON DELETE CASCADE,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);
			CREATE TABLE IF NOT EXISTS announcement_likes (
				announcement_id BIGINT NOT NULL REFERENCES announcements(id) ON DELETE CASCADE,
				user_id UUID NOT NULL REFERENCES clients(id) ON DELETE CASCADE,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				PRIMARY KEY (announcement_id, user_id)
			);`,
	},
	{
		name: "fidelity_scans",
		sql: `
			CREATE TABLE IF NOT EXISTS fidelity_scans (
				id BIGSERIAL PRIMARY KEY,
				client_id UUID NOT NULL REFERENCES clients(id) ON DELETE CASCADE,
				purchase_id VARCHAR(100) NOT NULL,
				points BIGINT NOT NULL CHECK (points >= 0),
				balance_id VARCHAR(100) NOT NULL DEFAULT '',
				issued_at VARCHAR(64) NOT NULL DEFAULT '',
				scanned_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);
			CREATE INDEX IF NOT EXISTS idx_fidelity_scans_client ON fidelity_scans(client_id);`,
	},
	{
		name: "add_tokens",
		sql: `
			CREATE OR REPLACE FUNCTION add_tokens(user_id UUID, amount BIGINT)
			RETURNS BIGINT
			LANGUAGE plpgsql
			AS $$
			DECLARE
				balance BIGINT;
			BEGIN
				UPDATE clients SET tokens = tokens + amount
				WHERE id = user_id
				RETURNING tokens INTO balance;

				IF NOT FOUND THEN
					RAISE EXCEPTION 'client % not found', user_id USING ERRCODE = 'P0002';
				END IF;

				RETURN balance;
			END;
			$$;`,
	},
	{
		name: "change_notifications",
		sql: `
			-- Large text columns are stripped to stay under the NOTIFY payload limit.
			CREATE OR REPLACE FUNCTION notify_resto_change()
			RETURNS TRIGGER
			LANGUAGE plpgsql
			AS $$
			DECLARE
				rec RECORD;
			BEGIN
				IF TG_OP = 'DELETE' THEN
					rec := OLD;
				ELSE
					rec := NEW;
				END IF;

				PERFORM pg_notify('{{channel}}', json_build_object(
					'table', TG_TABLE_NAME,
					'op', TG_OP,
					'record', row_to_json(rec)::jsonb - 'content' - 'description' - 'image_urls'
				)::text);

				RETURN NULL;
			END;
			$$;

			DROP TRIGGER IF EXISTS menu_items_notify ON menu_items;
			CREATE TRIGGER menu_items_notify AFTER INSERT OR UPDATE OR DELETE ON menu_items
				FOR EACH ROW EXECUTE FUNCTION notify_resto_change();

			DROP TRIGGER IF EXISTS messages_notify ON messages;
			CREATE TRIGGER messages_notify AFTER INSERT OR UPDATE OR DELETE ON messages
				FOR EACH ROW EXECUTE FUNCTION notify_resto_change();

			DROP TRIGGER IF EXISTS announcements_notify ON announcements;
			CREATE TRIGGER announcements_notify AFTER INSERT OR UPDATE OR DELETE ON announcements
				FOR EACH ROW EXECUTE FUNCTION notify_resto_change();

			DROP TRIGGER IF EXISTS announcement_likes_notify ON announcement_likes;
			CREATE TRIGGER announcement_likes_notify AFTER INSERT OR DELETE ON announcement_likes
				FOR EACH ROW EXECUTE FUNCTION notify_resto_change();`,
	},
}

// DefaultNotifyChannel is the channel change triggers notify on when none is given.
const DefaultNotifyChannel = "resto_changes"

// Migrate creates or updates the schema. Every step is idempotent, so it is
// safe to run on each start. Change triggers notify on channel; re-running
// with another channel moves them.
func Migrate(ctx context.Context, pool *pgxpool.Pool, channel string, logger zerolog.Logger) error {
	if channel == "" {
		channel = DefaultNotifyChannel
	}
	literal := strings.ReplaceAll(channel, "'", "''")

	for _, m := range migrations {
		sql := strings.ReplaceAll(m.sql, "{{channel}}", literal)
		if _, err := pool.Exec(ctx, sql); err != nil {
			logger.Error().Err(err).Str("migration", m.name).Msg("migration failed")
			return fmt.Errorf("failed to apply migration %s: %w", m.name, err)
		}
		logger.Debug().Str("migration", m.name).Msg("migration applied")
	}

	logger.Info().
		Int("migrations", len(migrations)).
		Str("notify_channel", channel).
		Msg("database schema up to date")
	return nil
}
