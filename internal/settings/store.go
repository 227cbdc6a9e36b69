package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"github.com/writemyvoice/wmv-engine/internal/process"
	"github.com/writemyvoice/wmv-engine/internal/storage"
)

// Blobs is the storage the store persists through.
type Blobs interface {
	Save(ctx context.Context, key string, data []byte, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// Store is the single owner of the settings bundle. Reads return copies;
// every setter writes the whole bundle before the in-memory value changes.
type Store struct {
	mu      sync.RWMutex
	current Settings
	blobs   Blobs
	log     zerolog.Logger
}

// Open loads the persisted bundle. A missing or unreadable blob yields the
// defaults; it is never an error.
func Open(ctx context.Context, blobs Blobs, log zerolog.Logger) *Store {
	s := &Store{
		current: Defaults(),
		blobs:   blobs,
		log:     log.With().Str("component", "settings").Logger(),
	}

	r, err := blobs.Open(ctx, Key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.log.Info().Msg("no saved settings, using defaults")
		} else {
			s.log.Warn().Err(err).Msg("settings unreadable, using defaults")
		}
		return s
	}
	defer r.Close()

	loaded := Defaults()
	if err := json.NewDecoder(r).Decode(&loaded); err != nil {
		s.log.Warn().Err(err).Msg("settings corrupt, using defaults")
		return s
	}
	loaded, fixed := loaded.repair()
	if len(fixed) > 0 {
		s.log.Warn().Strs("fields", fixed).Msg("invalid saved settings replaced with defaults")
	}
	s.current = loaded
	return s
}

// Get returns a copy of the current settings.
func (s *Store) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *Store) SetAutoPlayVoice(ctx context.Context, v bool) (Settings, error) {
	return s.update(ctx, func(st *Settings) error {
		st.AutoPlayVoice = v
		return nil
	})
}

func (s *Store) SetHapticFeedback(ctx context.Context, v bool) (Settings, error) {
	return s.update(ctx, func(st *Settings) error {
		st.HapticFeedback = v
		return nil
	})
}

func (s *Store) SetDefaultTargetLanguage(ctx context.Context, lang string) (Settings, error) {
	return s.update(ctx, func(st *Settings) error {
		name, err := parseLanguage(lang)
		if err != nil {
			return err
		}
		st.DefaultTargetLanguage = name
		return nil
	})
}

func (s *Store) SetDefaultTone(ctx context.Context, tone process.Tone) (Settings, error) {
	return s.update(ctx, func(st *Settings) error {
		t, err := parseTone(tone)
		if err != nil {
			return err
		}
		st.DefaultTone = t
		return nil
	})
}

func (s *Store) SetUIIntensity(ctx context.Context, i Intensity) (Settings, error) {
	return s.update(ctx, func(st *Settings) error {
		v, err := parseIntensity(i)
		if err != nil {
			return err
		}
		st.UIIntensity = v
		return nil
	})
}

// Replace validates and stores a whole bundle.
func (s *Store) Replace(ctx context.Context, next Settings) (Settings, error) {
	return s.update(ctx, func(st *Settings) error {
		n, err := next.normalize()
		if err != nil {
			return err
		}
		*st = n
		return nil
	})
}

func (s *Store) update(ctx context.Context, mutate func(*Settings) error) (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.current
	if err := mutate(&next); err != nil {
		return s.current, err
	}

	data, err := json.Marshal(next)
	if err != nil {
		return s.current, fmt.Errorf("encode settings: %w", err)
	}
	if err := s.blobs.Save(ctx, Key, data, "application/json"); err != nil {
		return s.current, fmt.Errorf("save settings: %w", err)
	}
	s.current = next
	s.log.Debug().Interface("settings", next).Msg("settings saved")
	return next, nil
}

// Patch names the fields to change; nil fields are left alone.
type Patch struct {
	AutoPlayVoice         *bool         `json:"autoPlayVoice"`
	DefaultTargetLanguage *string       `json:"defaultTargetLanguage"`
	DefaultTone           *process.Tone `json:"defaultTone"`
	HapticFeedback        *bool         `json:"hapticFeedback"`
	UIIntensity           *Intensity    `json:"uiIntensity"`
}

// Apply changes several fields in one write. Either every field in p is
// applied or none is.
func (s *Store) Apply(ctx context.Context, p Patch) (Settings, error) {
	return s.update(ctx, func(st *Settings) error {
		next := *st
		if p.AutoPlayVoice != nil {
			next.AutoPlayVoice = *p.AutoPlayVoice
		}
		if p.HapticFeedback != nil {
			next.HapticFeedback = *p.HapticFeedback
		}
		if p.DefaultTargetLanguage != nil {
			next.DefaultTargetLanguage = *p.DefaultTargetLanguage
		}
		if p.DefaultTone != nil {
			next.DefaultTone = *p.DefaultTone
		}
		if p.UIIntensity != nil {
			next.UIIntensity = *p.UIIntensity
		}
		n, err := next.normalize()
		if err != nil {
			return err
		}
		*st = n
		return nil
	})
}
