package process

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

type fakeBackend struct {
	structured func(StructuredRequest) ([]byte, error)
	image      func(ImageRequest) (*Image, error)
	speech     func(string) ([]byte, error)

	mu              sync.Mutex
	structuredCalls []StructuredRequest
	imageCalls      []ImageRequest
	speechCalls     []string
}

func (f *fakeBackend) GenerateStructured(_ context.Context, req StructuredRequest) ([]byte, error) {
	f.mu.Lock()
	f.structuredCalls = append(f.structuredCalls, req)
	f.mu.Unlock()
	return f.structured(req)
}

func (f *fakeBackend) GenerateImage(_ context.Context, req ImageRequest) (*Image, error) {
	f.mu.Lock()
	f.imageCalls = append(f.imageCalls, req)
	f.mu.Unlock()
	if f.image == nil {
		return &Image{Data: []byte("png"), MIMEType: "image/png"}, nil
	}
	return f.image(req)
}

func (f *fakeBackend) SynthesizeSpeech(_ context.Context, text string) ([]byte, error) {
	f.mu.Lock()
	f.speechCalls = append(f.speechCalls, text)
	f.mu.Unlock()
	return f.speech(text)
}

func (f *fakeBackend) images() []ImageRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ImageRequest(nil), f.imageCalls...)
}

func newTestProcessor(b Backend) *Processor {
	return New(b, Options{Log: zerolog.Nop()})
}

// respondWith returns a structured handler producing a complete result
// with the given storyboard prompts.
func respondWith(t *testing.T, prompts ...string) func(StructuredRequest) ([]byte, error) {
	t.Helper()
	doc := map[string]any{
		"original_language":  "English",
		"original_text":      "Hello, how are you?",
		"translated_text":    "Hello, how are you?",
		"romanized_text":     "",
		"target_translation": "Hola, ¿cómo estás?",
		"confidence_score":   0.97,
	}
	if prompts != nil {
		doc["storyboard_prompts"] = prompts
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	return func(StructuredRequest) ([]byte, error) { return raw, nil }
}
