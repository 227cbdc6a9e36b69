// Package settings holds the process-wide user preference bundle.
package settings

import (
	"errors"
	"fmt"

	"github.com/writemyvoice/wmv-engine/internal/process"
)

// Key is the blob key the bundle is persisted under.
const Key = "app_settings.json"

// ErrInvalidSettings is returned by setters given a value outside the allowed set.
var ErrInvalidSettings = errors.New("invalid settings")

// Intensity controls how strong visual effects are in the client.
type Intensity string

const (
	IntensitySoft Intensity = "Soft"
	IntensityHigh Intensity = "High"
)

type Settings struct {
	AutoPlayVoice         bool         `json:"autoPlayVoice"`
	DefaultTargetLanguage string       `json:"defaultTargetLanguage"`
	DefaultTone           process.Tone `json:"defaultTone"`
	HapticFeedback        bool         `json:"hapticFeedback"`
	UIIntensity           Intensity    `json:"uiIntensity"`
}

func Defaults() Settings {
	return Settings{
		AutoPlayVoice:         false,
		DefaultTargetLanguage: "English",
		DefaultTone:           process.ToneNeutral,
		HapticFeedback:        true,
		UIIntensity:           IntensityHigh,
	}
}

func parseLanguage(s string) (string, error) {
	l, ok := process.LookupLanguage(s)
	if !ok {
		return "", fmt.Errorf("%w: unsupported language %q", ErrInvalidSettings, s)
	}
	return l.Name, nil
}

func parseTone(t process.Tone) (process.Tone, error) {
	if t == "" {
		return "", fmt.Errorf("%w: tone is required", ErrInvalidSettings)
	}
	tone, err := process.ParseTone(string(t))
	if err != nil {
		return "", fmt.Errorf("%w: unknown tone %q", ErrInvalidSettings, t)
	}
	return tone, nil
}

func parseIntensity(i Intensity) (Intensity, error) {
	switch i {
	case IntensitySoft, IntensityHigh:
		return i, nil
	}
	return "", fmt.Errorf("%w: ui intensity must be Soft or High, got %q", ErrInvalidSettings, i)
}

// normalize canonicalises every field, failing on the first invalid one.
func (s Settings) normalize() (Settings, error) {
	var err error
	if s.DefaultTargetLanguage, err = parseLanguage(s.DefaultTargetLanguage); err != nil {
		return s, err
	}
	if s.DefaultTone, err = parseTone(s.DefaultTone); err != nil {
		return s, err
	}
	if s.UIIntensity, err = parseIntensity(s.UIIntensity); err != nil {
		return s, err
	}
	return s, nil
}

// repair replaces each invalid field with its default and reports which
// ones were replaced.
func (s Settings) repair() (Settings, []string) {
	d := Defaults()
	var fixed []string
	if lang, err := parseLanguage(s.DefaultTargetLanguage); err != nil {
		s.DefaultTargetLanguage = d.DefaultTargetLanguage
		fixed = append(fixed, "defaultTargetLanguage")
	} else {
		s.DefaultTargetLanguage = lang
	}
	if tone, err := parseTone(s.DefaultTone); err != nil {
		s.DefaultTone = d.DefaultTone
		fixed = append(fixed, "defaultTone")
	} else {
		s.DefaultTone = tone
	}
	if _, err := parseIntensity(s.UIIntensity); err != nil {
		s.UIIntensity = d.UIIntensity
		fixed = append(fixed, "uiIntensity")
	}
	return s, fixed
}
