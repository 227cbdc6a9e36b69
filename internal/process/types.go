package process

import (
	"fmt"
	"strings"

	"github.com/writemyvoice/wmv-engine/internal/audio"
)

// Tab identifies the feature screen a request was issued from.
type Tab string

const (
	TabTranslator    Tab = "translator"
	TabScriptwriter  Tab = "scriptwriter"
	TabTextConverter Tab = "textconverter"
	TabSettings      Tab = "settings"
)

// ParseTab accepts any known tab, including the view-only settings tab.
func ParseTab(s string) (Tab, error) {
	switch t := Tab(strings.ToLower(strings.TrimSpace(s))); t {
	case TabTranslator, TabScriptwriter, TabTextConverter, TabSettings:
		return t, nil
	}
	return "", fmt.Errorf("%w: unknown tab %q", ErrInvalidRequest, s)
}

// Tone is the creative genre applied to script output and storyboard frames.
type Tone string

const (
	ToneNeutral Tone = "Neutral"
	ToneAction  Tone = "Action"
	ToneNoir    Tone = "Noir"
	ToneComedy  Tone = "Comedy"
	ToneDrama   Tone = "Drama"
	ToneSciFi   Tone = "Sci-Fi"
	ToneHorror  Tone = "Horror"
)

// Tones lists every tone in display order.
var Tones = []Tone{ToneNeutral, ToneAction, ToneNoir, ToneComedy, ToneDrama, ToneSciFi, ToneHorror}

// ParseTone matches case-insensitively and returns the canonical tone.
// An empty string means Neutral.
func ParseTone(s string) (Tone, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ToneNeutral, nil
	}
	for _, t := range Tones {
		if strings.EqualFold(s, string(t)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: unknown tone %q", ErrInvalidRequest, s)
}

// InputMode says how the payload was captured.
type InputMode string

const (
	ModeVoice  InputMode = "voice"
	ModeVisual InputMode = "visual"
	ModeText   InputMode = "text"
)

func ParseInputMode(s string) (InputMode, error) {
	switch m := InputMode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeVoice, ModeVisual, ModeText:
		return m, nil
	}
	return "", fmt.Errorf("%w: unknown input mode %q", ErrInvalidRequest, s)
}

// Request is one user submission. Text is used in text mode; Data and
// MIMEType carry the captured audio or image otherwise.
type Request struct {
	Mode           InputMode
	Tab            Tab
	TargetLanguage string
	Tone           Tone
	Text           string
	Data           []byte
	MIMEType       string
}

func (r Request) validate() error {
	if strings.TrimSpace(r.TargetLanguage) == "" {
		return fmt.Errorf("%w: target language is required", ErrInvalidRequest)
	}
	switch r.Mode {
	case ModeText:
		if strings.TrimSpace(r.Text) == "" {
			return fmt.Errorf("%w: text input is empty", ErrInvalidRequest)
		}
	case ModeVoice, ModeVisual:
		if len(r.Data) == 0 {
			return fmt.Errorf("%w: %s input has no data", ErrInvalidRequest, r.Mode)
		}
		if r.MIMEType == "" {
			return fmt.Errorf("%w: %s input has no mime type", ErrInvalidRequest, r.Mode)
		}
	default:
		return fmt.Errorf("%w: unknown input mode %q", ErrInvalidRequest, r.Mode)
	}
	return nil
}

// Result is the structured output of one Process call. When
// StoryboardURLs is set it is index-aligned with StoryboardPrompts and a
// frame that could not be generated is "".
type Result struct {
	OriginalLanguage  string   `json:"original_language"`
	OriginalText      string   `json:"original_text"`
	TranslatedText    string   `json:"translated_text"`
	RomanizedText     string   `json:"romanized_text,omitempty"`
	TargetTranslation string   `json:"target_translation,omitempty"`
	ConfidenceScore   float64  `json:"confidence_score"`
	StoryboardPrompts []string `json:"storyboard_prompts,omitempty"`
	StoryboardURLs    []string `json:"storyboard_urls,omitempty"`
}

// SpeechText is what gets read aloud for a result.
func (r *Result) SpeechText() string {
	if r.TargetTranslation != "" {
		return r.TargetTranslation
	}
	return r.TranslatedText
}

// Speech is synthesized audio in both wire and decoded form.
type Speech struct {
	PCM    []byte
	Buffer *audio.Buffer
}
