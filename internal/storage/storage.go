package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/writemyvoice/wmv-engine/internal/config"
)

// ErrNotFound is returned by Open when no backend holds the key.
var ErrNotFound = errors.New("blob not found")

// BlobStore abstracts small-object storage backends. Keys are slash
// separated relative paths such as "app_settings.json".
type BlobStore interface {
	Save(ctx context.Context, key string, data []byte, contentType string) error

	// Open returns a reader for the blob, or ErrNotFound.
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	Exists(ctx context.Context, key string) bool

	// Type returns "local", "s3", or "tiered".
	Type() string
}

// Pinger is implemented by stores with a remote dependency worth health checking.
type Pinger interface {
	Ping(ctx context.Context) error
}

// BackgroundService is a stoppable background goroutine.
type BackgroundService interface {
	Start()
	Stop()
}

// New creates a BlobStore based on config, plus any background services
// the caller must Start/Stop. Fails if S3 is configured but unreachable.
func New(cfg config.S3Config, dataDir string, log zerolog.Logger) (BlobStore, []BackgroundService, error) {
	if !cfg.Enabled() {
		return NewLocalStore(dataDir), nil, nil
	}

	s3store, err := NewS3Store(cfg, log)
	if err != nil {
		return nil, nil, fmt.Errorf("S3 init failed: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s3store.Ping(ctx); err != nil {
		return nil, nil, fmt.Errorf("S3 startup check failed (bucket=%q endpoint=%q): %w",
			cfg.Bucket, cfg.Endpoint, err)
	}
	log.Info().Str("bucket", cfg.Bucket).Str("endpoint", cfg.Endpoint).Msg("S3 connection verified")

	if !cfg.LocalCache {
		return s3store, nil, nil
	}

	local := NewLocalStore(dataDir)
	tiered := NewTieredStore(s3store, local, log)
	reconciler := NewUploadReconciler(dataDir, s3store, log)
	return tiered, []BackgroundService{reconciler}, nil
}

func contentTypeFromExt(ext string) string {
	switch ext {
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
