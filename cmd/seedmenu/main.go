// Command seedmenu loads a YAML menu, from S3 or the local file system, and
// upserts every dish into the database.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"resto-collect/internal/blob"
	"resto-collect/internal/config"
	"resto-collect/internal/database"
	"resto-collect/internal/repository"

	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		file     = flag.String("file", "data/menu.yaml", "menu file path, or object key when -bucket is set")
		dbURL    = flag.String("db", os.Getenv("DATABASE_URL"), "postgres connection string")
		bucket   = flag.String("bucket", "", "S3 bucket holding the menu file")
		region   = flag.String("region", "eu-west-3", "S3 region")
		endpoint = flag.String("endpoint", "", "S3 endpoint override")
		migrate  = flag.Bool("migrate", true, "apply schema migrations first")
		channel  = flag.String("channel", os.Getenv("REALTIME_CHANNEL"), "change notification channel used by migrations")
	)
	flag.Parse()

	if *dbURL == "" {
		return fmt.Errorf("database URL is required (-db or DATABASE_URL)")
	}

	logger := config.NewLogger(config.LoggerConfig{Level: "info", Format: "console"})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	data, err := fetchMenu(ctx, *file, *bucket, *region, *endpoint, logger)
	if err != nil {
		return err
	}

	items, err := parseMenu(data)
	if err != nil {
		return err
	}

	pool, err := database.OpenURL(ctx, *dbURL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	if *migrate {
		if err := database.Migrate(ctx, pool, *channel, logger); err != nil {
			return err
		}
	}

	repo := repository.NewMenuRepository(pool, logger)
	for i := range items {
		if err := repo.Upsert(ctx, &items[i]); err != nil {
			return err
		}
		logger.Info().
			Int64("id", items[i].ID).
			Str("name", items[i].Name).
			Str("price", items[i].Price.StringFixed(2)).
			Msg("menu item seeded")
	}

	logger.Info().Int("count", len(items)).Msg("menu seeded")
	return nil
}

// fetchMenu reads the menu from S3 when a bucket is given, falling back to
// the local file of the same name.
func fetchMenu(ctx context.Context, file, bucket, region, endpoint string, logger zerolog.Logger) ([]byte, error) {
	local, err := blob.NewFileStore(".", "", logger)
	if err != nil {
		return nil, err
	}

	var remote blob.Store
	if bucket != "" {
		remote, err = blob.NewS3Store(ctx, blob.S3Options{
			Bucket:   bucket,
			Region:   region,
			Endpoint: endpoint,
		}, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to initialise S3 store, reading local file only")
		}
	}

	store := blob.NewFallbackStore(remote, local, remote != nil, logger)

	data, err := store.Fetch(ctx, filepath.ToSlash(file))
	if err != nil {
		return nil, fmt.Errorf("failed to read menu file: %w", err)
	}
	return data, nil
}
