package storage

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// uploadTarget is what the reconciler needs from the remote tier.
type uploadTarget interface {
	Exists(ctx context.Context, key string) bool
	Save(ctx context.Context, key string, data []byte, contentType string) error
}

// UploadReconciler scans the local tier for blobs missing from S3 or marked
// pending by a failed TieredStore write, and uploads them.
type UploadReconciler struct {
	dir      string
	remote   uploadTarget
	delay    time.Duration
	interval time.Duration
	log      zerolog.Logger
	stop     chan struct{}
	stopOnce sync.Once
}

func NewUploadReconciler(dir string, remote uploadTarget, log zerolog.Logger) *UploadReconciler {
	return &UploadReconciler{
		dir:      dir,
		remote:   remote,
		delay:    30 * time.Second,
		interval: 5 * time.Minute,
		log:      log.With().Str("component", "upload-reconciler").Logger(),
		stop:     make(chan struct{}),
	}
}

func (r *UploadReconciler) Start() { go r.loop() }
func (r *UploadReconciler) Stop()  { r.stopOnce.Do(func() { close(r.stop) }) }

func (r *UploadReconciler) loop() {
	select {
	case <-time.After(r.delay):
	case <-r.stop:
		return
	}

	r.Reconcile()
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.Reconcile()
		case <-r.stop:
			return
		}
	}
}

// ReconcileResult summarizes one pass.
type ReconcileResult struct {
	Checked  int
	Uploaded int
	Failed   int
}

// Reconcile runs a single pass over the local tier.
func (r *UploadReconciler) Reconcile() ReconcileResult {
	var res ReconcileResult

	markers := filepath.Join(r.dir, pendingDir)
	_ = filepath.WalkDir(r.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path == markers {
				return filepath.SkipDir
			}
			return nil
		}
		if isTempFile(d.Name()) {
			return nil
		}
		rel, err := filepath.Rel(r.dir, path)
		if err != nil {
			return nil
		}
		key := filepath.ToSlash(rel)
		res.Checked++

		stale := isPending(r.dir, key)
		if !stale {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			exists := r.remote.Exists(ctx, key)
			cancel()
			if exists {
				return nil
			}
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := r.remote.Save(ctx, key, data, contentTypeFromExt(filepath.Ext(path))); err != nil {
			r.log.Warn().Err(err).Str("key", key).Msg("reconcile upload failed")
			res.Failed++
			return nil
		}
		res.Uploaded++

		// A newer write may have landed (and failed remotely) meanwhile.
		if stale {
			if cur, err := os.ReadFile(path); err == nil && bytes.Equal(cur, data) {
				if err := clearPending(r.dir, key); err != nil {
					r.log.Warn().Err(err).Str("key", key).Msg("failed to clear pending marker")
				}
			}
		}
		return nil
	})

	if res.Uploaded > 0 || res.Failed > 0 {
		r.log.Info().
			Int("uploaded", res.Uploaded).
			Int("failed", res.Failed).
			Int("checked", res.Checked).
			Msg("reconcile complete")
	}
	return res
}
