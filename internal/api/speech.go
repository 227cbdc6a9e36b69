package api

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/writemyvoice/wmv-engine/internal/audio"
	"github.com/writemyvoice/wmv-engine/internal/process"
)

// SpeechPayload carries raw PCM as base64 with its format.
type SpeechPayload struct {
	Audio           string  `json:"audio"`
	Encoding        string  `json:"encoding"`
	SampleRate      int     `json:"sample_rate"`
	Channels        int     `json:"channels"`
	Frames          int     `json:"frames"`
	DurationSeconds float64 `json:"duration_seconds"`
}

func newSpeechPayload(sp *process.Speech) *SpeechPayload {
	return &SpeechPayload{
		Audio:           base64.StdEncoding.EncodeToString(sp.PCM),
		Encoding:        "pcm_s16le",
		SampleRate:      sp.Buffer.SampleRate,
		Channels:        sp.Buffer.NumChannels(),
		Frames:          sp.Buffer.Frames(),
		DurationSeconds: sp.Buffer.Duration().Seconds(),
	}
}

type SpeechHandler struct {
	processor *process.Processor
	log       zerolog.Logger
}

func NewSpeechHandler(p *process.Processor, log zerolog.Logger) *SpeechHandler {
	return &SpeechHandler{
		processor: p,
		log:       log.With().Str("handler", "speech").Logger(),
	}
}

func (h *SpeechHandler) Routes(r chi.Router) {
	r.Post("/speech", h.Speak)
}

type speechBody struct {
	Text string `json:"text"`
}

// Speak handles POST /api/v1/speech. Responds with a WAV file when the
// client accepts audio/wav, JSON with base64 PCM otherwise.
func (h *SpeechHandler) Speak(w http.ResponseWriter, r *http.Request) {
	var body speechBody
	if err := DecodeJSON(r, &body); err != nil {
		WriteErrorWithCode(w, http.StatusBadRequest, ErrInvalidBody, err.Error())
		return
	}

	sp, err := h.processor.Speak(context.WithoutCancel(r.Context()), body.Text)
	if err != nil {
		var rse *process.RemoteServiceError
		switch {
		case errors.Is(err, process.ErrInvalidRequest):
			WriteErrorWithCode(w, http.StatusBadRequest, ErrInvalidRequest, err.Error())
		case errors.As(err, &rse):
			h.log.Error().Err(err).Msg("speech failed")
			WriteErrorDetail(w, http.StatusBadGateway, ErrRemoteService, "speech synthesis failed", err.Error())
		default:
			h.log.Error().Err(err).Msg("speech failed")
			WriteErrorWithCode(w, http.StatusInternalServerError, ErrInternal, "internal error")
		}
		return
	}

	if !strings.Contains(r.Header.Get("Accept"), "audio/wav") {
		WriteJSON(w, http.StatusOK, newSpeechPayload(sp))
		return
	}

	wav, err := audio.EncodeWAV(sp.PCM, sp.Buffer.SampleRate, sp.Buffer.NumChannels())
	if err != nil {
		h.log.Error().Err(err).Msg("wav encode failed")
		WriteErrorWithCode(w, http.StatusInternalServerError, ErrInternal, "internal error")
		return
	}
	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Content-Length", strconv.Itoa(len(wav)))
	w.WriteHeader(http.StatusOK)
	w.Write(wav)
}
