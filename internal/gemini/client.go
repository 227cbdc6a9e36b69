// Package gemini implements process.Backend on the Google Gen AI SDK.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/writemyvoice/wmv-engine/internal/process"
)

var (
	ErrEmptyResponse = errors.New("empty model response")
	ErrNoImage       = errors.New("no image in model response")
	ErrEmptyAudio    = errors.New("no audio in model response")
)

type Options struct {
	APIKey     string
	ProModel   string
	FlashModel string
	ImageModel string
	TTSModel   string
	Voice      string
	Log        zerolog.Logger
}

// generator is the slice of *genai.Models the client uses.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client talks to the Gemini API. It is safe for concurrent use.
type Client struct {
	models generator
	opts   Options
	log    zerolog.Logger
}

var _ process.Backend = (*Client)(nil)

// New creates a Gemini API client.
func New(ctx context.Context, opts Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, errors.New("gemini: api key is required")
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return newClient(gc.Models, opts), nil
}

func newClient(models generator, opts Options) *Client {
	return &Client{
		models: models,
		opts:   opts,
		log:    opts.Log.With().Str("component", "gemini").Logger(),
	}
}

func (c *Client) modelFor(tier process.Tier) string {
	if tier == process.TierPro {
		return c.opts.ProModel
	}
	return c.opts.FlashModel
}

// GenerateStructured issues one JSON-schema constrained request and returns
// the raw JSON text.
func (c *Client) GenerateStructured(ctx context.Context, req process.StructuredRequest) ([]byte, error) {
	model := c.modelFor(req.Tier)
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.SystemInstruction, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    resultSchema,
	}

	resp, err := c.models.GenerateContent(ctx, model, structuredContents(req), cfg)
	if err != nil {
		return nil, fmt.Errorf("generate content (%s): %w", model, err)
	}
	text := strings.TrimSpace(responseText(resp))
	if text == "" {
		return nil, ErrEmptyResponse
	}
	c.log.Debug().Str("model", model).Stringer("tier", req.Tier).Int("bytes", len(text)).Msg("structured response")
	return []byte(text), nil
}

// GenerateImage requests one still and returns the first inline image part.
func (c *Client) GenerateImage(ctx context.Context, req process.ImageRequest) (*process.Image, error) {
	cfg := &genai.GenerateContentConfig{}
	if req.AspectRatio != "" {
		cfg.ImageConfig = &genai.ImageConfig{AspectRatio: req.AspectRatio}
	}
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{genai.NewPartFromText(req.Prompt)}, genai.RoleUser),
	}

	resp, err := c.models.GenerateContent(ctx, c.opts.ImageModel, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("generate image (%s): %w", c.opts.ImageModel, err)
	}
	blob := firstInlineData(resp, "image/")
	if blob == nil {
		return nil, ErrNoImage
	}
	return &process.Image{Data: blob.Data, MIMEType: blob.MIMEType}, nil
}

// SynthesizeSpeech reads text aloud with the configured prebuilt voice and
// returns raw 16-bit PCM.
func (c *Client) SynthesizeSpeech(ctx context.Context, text string) ([]byte, error) {
	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: c.opts.Voice},
			},
		},
	}
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{genai.NewPartFromText(text)}, genai.RoleUser),
	}

	resp, err := c.models.GenerateContent(ctx, c.opts.TTSModel, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("synthesize speech (%s): %w", c.opts.TTSModel, err)
	}
	blob := firstInlineData(resp, "")
	if blob == nil {
		return nil, ErrEmptyAudio
	}
	return blob.Data, nil
}

func structuredContents(req process.StructuredRequest) []*genai.Content {
	var input *genai.Part
	if len(req.Data) > 0 {
		input = genai.NewPartFromBytes(req.Data, req.MIMEType)
	} else {
		input = genai.NewPartFromText(req.Text)
	}
	parts := []*genai.Part{input, genai.NewPartFromText(req.Instruction)}
	return []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
}

// responseText concatenates the text parts of the first candidate,
// skipping thought parts.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p == nil || p.Thought {
			continue
		}
		sb.WriteString(p.Text)
	}
	return sb.String()
}

// firstInlineData returns the first non-empty inline blob whose MIME type
// starts with prefix.
func firstInlineData(resp *genai.GenerateContentResponse, prefix string) *genai.Blob {
	if resp == nil {
		return nil
	}
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, p := range cand.Content.Parts {
			if p == nil || p.InlineData == nil || len(p.InlineData.Data) == 0 {
				continue
			}
			if strings.HasPrefix(p.InlineData.MIMEType, prefix) {
				return p.InlineData
			}
		}
	}
	return nil
}
