package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"resto-collect/internal/auth"
	"resto-collect/internal/blob"
	"resto-collect/internal/config"
	"resto-collect/internal/database"
	"resto-collect/internal/handler"
	"resto-collect/internal/localstore"
	"resto-collect/internal/loyalty"
	"resto-collect/internal/middleware"
	"resto-collect/internal/realtime"
	"resto-collect/internal/repository"
	"resto-collect/internal/router"
	"resto-collect/internal/service"
	"resto-collect/internal/session"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting resto-collect API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, cfg.Realtime.Channel, logger); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// Change notifications fan out to every live feed through the hub
	hub := realtime.NewHub(logger)
	listener := realtime.NewListener(pool, cfg.Realtime.Channel, cfg.Realtime.Backoff, hub, logger)
	go func() {
		if err := listener.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("realtime listener stopped")
		}
	}()

	// Durable local store for carts
	store, err := localstore.Open(cfg.LocalStore.Path, logger)
	if err != nil {
		return fmt.Errorf("failed to open local store: %w", err)
	}
	defer store.Close()

	// Initialize repositories
	clientRepo := repository.NewClientRepository(pool, logger)
	menuRepo := repository.NewMenuRepository(pool, logger)
	messageRepo := repository.NewMessageRepository(pool, logger)
	announcementRepo := repository.NewAnnouncementRepository(pool, logger)
	scanRepo := repository.NewScanRepository(pool, logger)

	sessions := session.NewManager(store, clientRepo, logger)
	tokens := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authenticator := auth.NewPasswordAuthenticator(clientRepo, cfg.Auth.ChefEmails, logger)

	// Initialize image store with S3 and local fallback
	fileStore, err := blob.NewFileStore(cfg.Media.Dir, cfg.Media.BaseURL, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize media directory: %w", err)
	}
	var remoteStore blob.Store
	if cfg.S3.Enabled {
		remoteStore, err = blob.NewS3Store(ctx, blob.S3Options{
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			Prefix:    cfg.S3.Prefix,
			PublicURL: cfg.S3.PublicURL,
			Endpoint:  cfg.S3.Endpoint,
		}, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 store, falling back to local file system only")
		}
	} else {
		logger.Info().Msg("using local file system for announcement images (S3 disabled)")
	}
	images := blob.NewFallbackStore(remoteStore, fileStore, remoteStore != nil, logger)

	// Initialize services
	catalog := service.NewCatalog(menuRepo, hub, logger)
	catalog.Attach(ctx)
	defer catalog.Close()

	menuService := service.NewMenuService(menuRepo, catalog, hub, logger)
	cartService := service.NewCartService(sessions, menuService, logger)
	loyaltyService := service.NewLoyaltyService(sessions, loyalty.NewScanner(scanRepo, logger), logger)
	chatService := service.NewChatService(clientRepo, messageRepo, hub, logger)
	announcementService := service.NewAnnouncementService(announcementRepo, images, hub, logger)
	accountService := service.NewAccountService(authenticator, tokens, sessions, logger)

	// Initialize HTTP handlers
	handlers := router.Handlers{
		Auth:         handler.NewAuthHandler(accountService, logger),
		Menu:         handler.NewMenuHandler(menuService, logger),
		Cart:         handler.NewCartHandler(cartService, logger),
		Loyalty:      handler.NewLoyaltyHandler(loyaltyService, logger),
		Chat:         handler.NewChatHandler(chatService, logger),
		Announcement: handler.NewAnnouncementHandler(announcementService, logger),
		Live:         handler.NewLiveHandler(menuService, chatService, announcementService, cfg.Server.AllowedOrigins, logger),
	}

	// Initialize router
	mux := router.New(handlers, router.Options{
		Verifier:       tokens,
		AuthLimiter:    middleware.NewRateLimiter(cfg.Auth.LoginRate, cfg.Auth.LoginBurst, logger),
		AllowedOrigins: cfg.Server.AllowedOrigins,
		MediaDir:       cfg.Media.Dir,
	}, logger)

	// Create HTTP server. Live feeds hold their connection open, so only the
	// header read is bounded.
	server := &http.Server{
		Addr:              cfg.Server.Address(),
		Handler:           mux,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Stop the listener and feeds so live connections unwind
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().
			Int("sessions", sessions.Len()).
			Msg("server shutdown completed")
	}

	return nil
}
