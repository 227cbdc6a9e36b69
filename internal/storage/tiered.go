package storage

import (
	"bytes"
	"context"
	"io"

	"github.com/rs/zerolog"
)

// remoteBlobs is the S3 side of a TieredStore.
type remoteBlobs interface {
	Save(ctx context.Context, key string, data []byte, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Exists(ctx context.Context, key string) bool
	Ping(ctx context.Context) error
}

// TieredStore combines local disk (source of truth) with S3 (backup).
// Write path: local first, then S3 best-effort.
// Read path: local first, S3 fallback with cache-on-read.
type TieredStore struct {
	remote remoteBlobs
	local  *LocalStore
	log    zerolog.Logger
}

func NewTieredStore(remote remoteBlobs, local *LocalStore, log zerolog.Logger) *TieredStore {
	return &TieredStore{
		remote: remote,
		local:  local,
		log:    log.With().Str("component", "tiered-store").Logger(),
	}
}

// Save fails only if the local write fails. A failed S3 write marks the key
// pending so the upload reconciler replaces the stale remote copy.
func (s *TieredStore) Save(ctx context.Context, key string, data []byte, ct string) error {
	if err := s.local.Save(ctx, key, data, ct); err != nil {
		return err
	}
	if err := s.remote.Save(ctx, key, data, ct); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("S3 backup write failed, reconciler will retry")
		if err := markPending(s.local.Dir(), key); err != nil {
			s.log.Error().Err(err).Str("key", key).Msg("failed to mark blob pending")
		}
		return nil
	}
	if err := clearPending(s.local.Dir(), key); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("failed to clear pending marker")
	}
	return nil
}

func (s *TieredStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if r, err := s.local.Open(ctx, key); err == nil {
		return r, nil
	}
	r, err := s.remote.Open(ctx, key)
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(r)
	r.Close()
	if err != nil {
		return nil, err
	}
	if cacheErr := s.local.Save(ctx, key, data, ""); cacheErr != nil {
		s.log.Warn().Err(cacheErr).Str("key", key).Msg("failed to cache S3 blob locally")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *TieredStore) Exists(ctx context.Context, key string) bool {
	if s.local.Exists(ctx, key) {
		return true
	}
	return s.remote.Exists(ctx, key)
}

// Ping reports the S3 side; the local tier has nothing to check.
func (s *TieredStore) Ping(ctx context.Context) error {
	return s.remote.Ping(ctx)
}

func (s *TieredStore) Type() string { return "tiered" }
