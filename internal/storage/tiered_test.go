package storage

import (
	"context"
	"io"
	"testing"

	"github.com/rs/zerolog"
)

func TestTieredStore(t *testing.T) {
	ctx := context.Background()

	t.Run("writes_both_tiers", func(t *testing.T) {
		remote := newFakeRemote()
		local := NewLocalStore(t.TempDir())
		s := NewTieredStore(remote, local, zerolog.Nop())
		if err := s.Save(ctx, "a.json", []byte("x"), "application/json"); err != nil {
			t.Fatalf("Save: %v", err)
		}
		if !local.Exists(ctx, "a.json") {
			t.Error("missing local copy")
		}
		if !remote.Exists(ctx, "a.json") {
			t.Error("missing remote copy")
		}
	})

	t.Run("remote_failure_is_not_fatal", func(t *testing.T) {
		remote := newFakeRemote()
		remote.saveErr = errUnavailable
		dir := t.TempDir()
		s := NewTieredStore(remote, NewLocalStore(dir), zerolog.Nop())
		if err := s.Save(ctx, "a.json", []byte("x"), ""); err != nil {
			t.Fatalf("Save: %v", err)
		}
		if !s.Exists(ctx, "a.json") {
			t.Error("local copy should exist")
		}
		if !isPending(dir, "a.json") {
			t.Error("failed remote write should mark the key pending")
		}

		remote.setSaveErr(nil)
		if err := s.Save(ctx, "a.json", []byte("y"), ""); err != nil {
			t.Fatalf("Save: %v", err)
		}
		if isPending(dir, "a.json") {
			t.Error("successful remote write should clear the pending marker")
		}
	})

	t.Run("read_through_caches_locally", func(t *testing.T) {
		remote := newFakeRemote()
		remote.objects["b.json"] = []byte("from-s3")
		local := NewLocalStore(t.TempDir())
		s := NewTieredStore(remote, local, zerolog.Nop())

		r, err := s.Open(ctx, "b.json")
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		data, _ := io.ReadAll(r)
		r.Close()
		if string(data) != "from-s3" {
			t.Errorf("data = %q", data)
		}
		if !local.Exists(ctx, "b.json") {
			t.Error("blob should be cached locally after S3 read")
		}
	})

	t.Run("ping_from_remote", func(t *testing.T) {
		remote := newFakeRemote()
		remote.pingErr = errUnavailable
		s := NewTieredStore(remote, NewLocalStore(t.TempDir()), zerolog.Nop())
		if s.Ping(ctx) != errUnavailable {
			t.Error("Ping should surface remote error")
		}
		if s.Type() != "tiered" {
			t.Errorf("Type = %q", s.Type())
		}
	})
}
