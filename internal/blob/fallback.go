package blob

import (
	"context"

	"github.com/rs/zerolog"
)

// fallbackStore tries the remote store first, then the local one.
type fallbackStore struct {
	remote        Store
	local         Store
	remoteEnabled bool
	logger        zerolog.Logger
}

// NewFallbackStore creates a store that tries remote first, then falls back
// to local. If remote is nil or disabled only local is used.
func NewFallbackStore(remote, local Store, remoteEnabled bool, logger zerolog.Logger) Store {
	return &fallbackStore{
		remote:        remote,
		local:         local,
		remoteEnabled: remoteEnabled,
		logger:        logger.With().Str("component", "fallback-blob-store").Logger(),
	}
}

func (s *fallbackStore) useRemote() bool {
	return s.remoteEnabled && s.remote != nil
}

func (s *fallbackStore) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if s.useRemote() {
		url, err := s.remote.Upload(ctx, key, data, contentType)
		if err == nil {
			return url, nil
		}
		s.logger.Warn().
			Err(err).
			Str("key", key).
			Msg("remote upload failed, falling back to local media directory")
	}

	return s.local.Upload(ctx, key, data, contentType)
}

func (s *fallbackStore) Fetch(ctx context.Context, key string) ([]byte, error) {
	if s.useRemote() {
		data, err := s.remote.Fetch(ctx, key)
		if err == nil {
			return data, nil
		}
		s.logger.Warn().
			Err(err).
			Str("key", key).
			Msg("remote fetch failed, falling back to local file system")
	} else {
		s.logger.Debug().
			Bool("remote_enabled", s.remoteEnabled).
			Bool("has_remote", s.remote != nil).
			Msg("remote store disabled or not configured, using local file system")
	}

	return s.local.Fetch(ctx, key)
}
