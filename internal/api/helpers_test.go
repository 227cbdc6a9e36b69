package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/writemyvoice/wmv-engine/internal/config"
	"github.com/writemyvoice/wmv-engine/internal/process"
	"github.com/writemyvoice/wmv-engine/internal/settings"
	"github.com/writemyvoice/wmv-engine/internal/storage"
)

// okHandler is a trivial handler that writes 200 OK.
var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

const scriptResponse = `{
	"original_language": "English",
	"original_text": "It was raining.",
	"translated_text": "EXT. STREET - NIGHT\nIt was raining.",
	"romanized_text": "",
	"target_translation": "Il pleuvait.",
	"confidence_score": 0.91,
	"storyboard_prompts": ["wet street", "lamp post"]
}`

type stubBackend struct {
	mu          sync.Mutex
	structured  []process.StructuredRequest
	response    string
	generateErr error
	speechErr   error
	speechPCM   []byte
}

func (b *stubBackend) GenerateStructured(_ context.Context, req process.StructuredRequest) ([]byte, error) {
	b.mu.Lock()
	b.structured = append(b.structured, req)
	b.mu.Unlock()
	if b.generateErr != nil {
		return nil, b.generateErr
	}
	return []byte(b.response), nil
}

func (b *stubBackend) GenerateImage(_ context.Context, req process.ImageRequest) (*process.Image, error) {
	return &process.Image{Data: []byte("png"), MIMEType: "image/png"}, nil
}

func (b *stubBackend) SynthesizeSpeech(_ context.Context, text string) ([]byte, error) {
	if b.speechErr != nil {
		return nil, b.speechErr
	}
	if b.speechPCM != nil {
		return b.speechPCM, nil
	}
	return make([]byte, 4800), nil // 0.1s at 24kHz mono
}

func (b *stubBackend) lastStructured(t *testing.T) process.StructuredRequest {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.structured) == 0 {
		t.Fatal("no structured call made")
	}
	return b.structured[len(b.structured)-1]
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) Publish(eventType string, _ any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType)
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}

type fakeConn bool

func (c fakeConn) IsConnected() bool { return bool(c) }

type testEnv struct {
	router   http.Handler
	backend  *stubBackend
	settings *settings.Store
	events   *recordingPublisher
	dataDir  string
}

func newTestEnv(t *testing.T, mutate func(*ServerOptions)) *testEnv {
	t.Helper()
	dir := t.TempDir()
	store := storage.NewLocalStore(dir)
	backend := &stubBackend{response: scriptResponse}
	events := &recordingPublisher{}
	st := settings.Open(context.Background(), store, zerolog.Nop())

	opts := ServerOptions{
		Config:    &config.Config{MaxUploadMB: 1},
		Processor: process.New(backend, process.Options{Log: zerolog.Nop()}),
		Settings:  st,
		Store:     store,
		Events:    events,
		Version:   "test",
		StartTime: time.Now(),
		Log:       zerolog.Nop(),
	}
	if mutate != nil {
		mutate(&opts)
	}
	return &testEnv{
		router:   NewRouter(opts),
		backend:  backend,
		settings: st,
		events:   events,
		dataDir:  dir,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

var errUpstream = errors.New("upstream 503")
