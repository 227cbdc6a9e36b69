package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/writemyvoice/wmv-engine/internal/audio"
	"github.com/writemyvoice/wmv-engine/internal/mqttclient"
	"github.com/writemyvoice/wmv-engine/internal/process"
	"github.com/writemyvoice/wmv-engine/internal/settings"
)

const defaultMaxUpload = 25 << 20

type ProcessHandler struct {
	processor *process.Processor
	settings  *settings.Store
	events    EventPublisher
	maxUpload int64
	log       zerolog.Logger
}

func NewProcessHandler(p *process.Processor, s *settings.Store, events EventPublisher, maxUpload int64, log zerolog.Logger) *ProcessHandler {
	if events == nil {
		events = nopPublisher{}
	}
	if maxUpload <= 0 {
		maxUpload = defaultMaxUpload
	}
	return &ProcessHandler{
		processor: p,
		settings:  s,
		events:    events,
		maxUpload: maxUpload,
		log:       log.With().Str("handler", "process").Logger(),
	}
}

func (h *ProcessHandler) Routes(r chi.Router) {
	r.Post("/process", h.Process)
}

// processBody is the JSON form of a process request. Data is base64.
type processBody struct {
	Mode           string `json:"mode"`
	Tab            string `json:"tab"`
	TargetLanguage string `json:"target_language"`
	Tone           string `json:"tone"`
	Text           string `json:"text"`
	Data           string `json:"data"`
	MIMEType       string `json:"mime_type"`
}

// ProcessResponse is the result plus speech when auto-play is enabled.
type ProcessResponse struct {
	*process.Result
	Speech *SpeechPayload `json:"speech,omitempty"`
}

// Process handles POST /api/v1/process. Accepts JSON or multipart with the
// capture in a "file" part. Missing language and tone fall back to the
// saved defaults.
func (h *ProcessHandler) Process(w http.ResponseWriter, r *http.Request) {
	body, data, err := h.decode(w, r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteErrorWithCode(w, http.StatusRequestEntityTooLarge, ErrPayloadTooLarge,
				fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
			return
		}
		WriteErrorWithCode(w, http.StatusBadRequest, ErrInvalidBody, err.Error())
		return
	}
	req, err := body.toRequest(data)
	if err != nil {
		WriteErrorWithCode(w, http.StatusBadRequest, ErrInvalidRequest, err.Error())
		return
	}

	prefs := h.settings.Get()
	if req.TargetLanguage == "" {
		req.TargetLanguage = prefs.DefaultTargetLanguage
	}
	if req.Tone == "" {
		req.Tone = prefs.DefaultTone
	}

	// In-flight remote calls are never aborted by a client disconnect.
	ctx := context.WithoutCancel(r.Context())
	res, err := h.processor.Process(ctx, req)
	if err != nil {
		h.events.Publish(mqttclient.EventProcessFailed, map[string]any{
			"tab":   req.Tab,
			"mode":  req.Mode,
			"error": err.Error(),
		})
		h.writeProcessError(w, err)
		return
	}

	resp := ProcessResponse{Result: res}
	if prefs.AutoPlayVoice {
		if sp, err := h.processor.Speak(ctx, res.SpeechText()); err != nil {
			h.log.Warn().Err(err).Msg("auto-play speech failed")
		} else {
			resp.Speech = newSpeechPayload(sp)
		}
	}

	failedFrames := 0
	for _, u := range res.StoryboardURLs {
		if u == "" {
			failedFrames++
		}
	}
	h.events.Publish(mqttclient.EventProcessCompleted, map[string]any{
		"tab":               req.Tab,
		"mode":              req.Mode,
		"original_language": res.OriginalLanguage,
		"target_language":   req.TargetLanguage,
		"storyboard_frames": len(res.StoryboardURLs),
		"failed_frames":     failedFrames,
	})

	WriteJSON(w, http.StatusOK, resp)
}

func (h *ProcessHandler) writeProcessError(w http.ResponseWriter, err error) {
	var rse *process.RemoteServiceError
	switch {
	case errors.Is(err, process.ErrInvalidRequest):
		WriteErrorWithCode(w, http.StatusBadRequest, ErrInvalidRequest, err.Error())
	case errors.As(err, &rse):
		h.log.Error().Err(err).Str("op", rse.Op).Msg("process failed")
		WriteErrorDetail(w, http.StatusBadGateway, ErrRemoteService,
			"processing failed, please try again", err.Error())
	default:
		h.log.Error().Err(err).Msg("process failed")
		WriteErrorWithCode(w, http.StatusInternalServerError, ErrInternal, "internal error")
	}
}

func (h *ProcessHandler) decode(w http.ResponseWriter, r *http.Request) (processBody, []byte, error) {
	if r.ContentLength > h.maxUpload {
		return processBody{}, nil, &http.MaxBytesError{Limit: h.maxUpload}
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "multipart/form-data" {
		return decodeMultipart(r, h.maxUpload)
	}

	var body processBody
	if err := DecodeJSON(r, &body); err != nil {
		return body, nil, err
	}
	var data []byte
	if body.Data != "" {
		var err error
		if data, err = audio.DecodeBase64(body.Data); err != nil {
			return body, nil, fmt.Errorf("data: %w", err)
		}
	}
	return body, data, nil
}

func decodeMultipart(r *http.Request, maxMemory int64) (processBody, []byte, error) {
	var body processBody
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		return body, nil, fmt.Errorf("invalid multipart form: %w", err)
	}
	defer r.MultipartForm.RemoveAll()

	body.Mode = r.FormValue("mode")
	body.Tab = r.FormValue("tab")
	body.TargetLanguage = r.FormValue("target_language")
	body.Tone = r.FormValue("tone")
	body.Text = r.FormValue("text")
	body.MIMEType = r.FormValue("mime_type")

	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return body, nil, nil
	}
	if err != nil {
		return body, nil, fmt.Errorf("read file part: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return body, nil, fmt.Errorf("read file part: %w", err)
	}
	if body.MIMEType == "" {
		body.MIMEType = header.Header.Get("Content-Type")
	}
	return body, data, nil
}

func (b processBody) toRequest(data []byte) (process.Request, error) {
	mode := b.Mode
	if mode == "" && strings.TrimSpace(b.Text) != "" && len(data) == 0 {
		mode = string(process.ModeText)
	}
	m, err := process.ParseInputMode(mode)
	if err != nil {
		return process.Request{}, err
	}
	tab, err := process.ParseTab(b.Tab)
	if err != nil {
		return process.Request{}, err
	}
	return process.Request{
		Mode:           m,
		Tab:            tab,
		TargetLanguage: strings.TrimSpace(b.TargetLanguage),
		Tone:           process.Tone(strings.TrimSpace(b.Tone)),
		Text:           b.Text,
		Data:           data,
		MIMEType:       b.MIMEType,
	}, nil
}
