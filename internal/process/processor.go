// Package process turns captured voice, image or text input into a
// structured transcription/translation result, with storyboard frames for
// script requests and speech synthesis on demand.
package process

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/writemyvoice/wmv-engine/internal/metrics"
)

const (
	DefaultSampleRate = 24000
	SpeechChannels    = 1
	FrameAspectRatio  = "16:9"
)

type Options struct {
	SampleRate int
	Log        zerolog.Logger
}

// Processor is safe for concurrent use; it holds only immutable configuration.
type Processor struct {
	backend    Backend
	sampleRate int
	log        zerolog.Logger
}

func New(backend Backend, opts Options) *Processor {
	if opts.SampleRate <= 0 {
		opts.SampleRate = DefaultSampleRate
	}
	return &Processor{
		backend:    backend,
		sampleRate: opts.SampleRate,
		log:        opts.Log,
	}
}

// Process runs one request through the tab's model profile. On any remote
// failure it returns a *RemoteServiceError and no result. Storyboard frame
// failures never fail the call.
func (p *Processor) Process(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	res, err := p.process(ctx, req)

	tab := string(req.Tab)
	if _, ok := tabProfiles[req.Tab]; !ok {
		tab = "invalid"
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
		if errors.Is(err, ErrInvalidRequest) {
			outcome = "invalid"
		}
	}
	metrics.ProcessRequestsTotal.WithLabelValues(tab, outcome).Inc()
	metrics.ProcessDuration.WithLabelValues(tab).Observe(time.Since(start).Seconds())

	return res, err
}

func (p *Processor) process(ctx context.Context, req Request) (*Result, error) {
	profile, err := profileFor(req.Tab)
	if err != nil {
		return nil, err
	}
	if err := req.validate(); err != nil {
		return nil, err
	}
	tone, err := ParseTone(string(req.Tone))
	if err != nil {
		return nil, err
	}

	sreq := StructuredRequest{
		Tier:              profile.tier,
		SystemInstruction: profile.instruction(tone, req.TargetLanguage, profile.storyboard),
		Instruction:       requestInstruction(req.Tab, req.TargetLanguage, tone),
	}
	if req.Mode == ModeText {
		sreq.Text = "INPUT: " + req.Text
	} else {
		sreq.Data = req.Data
		sreq.MIMEType = req.MIMEType
	}

	raw, err := p.backend.GenerateStructured(ctx, sreq)
	if err != nil {
		return nil, &RemoteServiceError{Op: "generate", Err: err}
	}
	res, err := parseResult(raw)
	if err != nil {
		return nil, &RemoteServiceError{Op: "generate", Err: err}
	}

	if !profile.storyboard {
		res.StoryboardPrompts = nil
	} else if len(res.StoryboardPrompts) > 0 {
		res.StoryboardURLs = p.Storyboard(ctx, res.StoryboardPrompts, tone)
	}

	p.log.Debug().
		Str("tab", string(req.Tab)).
		Str("mode", string(req.Mode)).
		Str("language", res.OriginalLanguage).
		Int("frames", len(res.StoryboardURLs)).
		Msg("request processed")
	return res, nil
}

type wireResult struct {
	OriginalLanguage  *string  `json:"original_language"`
	OriginalText      *string  `json:"original_text"`
	TranslatedText    *string  `json:"translated_text"`
	RomanizedText     string   `json:"romanized_text"`
	TargetTranslation *string  `json:"target_translation"`
	ConfidenceScore   *float64 `json:"confidence_score"`
	StoryboardPrompts []string `json:"storyboard_prompts"`
}

func parseResult(raw []byte) (*Result, error) {
	var w wireResult
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	var missing []string
	if w.OriginalLanguage == nil {
		missing = append(missing, "original_language")
	}
	if w.OriginalText == nil {
		missing = append(missing, "original_text")
	}
	if w.TranslatedText == nil {
		missing = append(missing, "translated_text")
	}
	if w.TargetTranslation == nil {
		missing = append(missing, "target_translation")
	}
	if w.ConfidenceScore == nil {
		missing = append(missing, "confidence_score")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %v", ErrMalformedResponse, missing)
	}

	return &Result{
		OriginalLanguage:  *w.OriginalLanguage,
		OriginalText:      *w.OriginalText,
		TranslatedText:    *w.TranslatedText,
		RomanizedText:     w.RomanizedText,
		TargetTranslation: *w.TargetTranslation,
		ConfidenceScore:   *w.ConfidenceScore,
		StoryboardPrompts: w.StoryboardPrompts,
	}, nil
}
