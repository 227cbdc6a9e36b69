package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/writemyvoice/wmv-engine/internal/mqttclient"
	"github.com/writemyvoice/wmv-engine/internal/settings"
)

type SettingsHandler struct {
	store  *settings.Store
	events EventPublisher
	log    zerolog.Logger
}

func NewSettingsHandler(store *settings.Store, events EventPublisher, log zerolog.Logger) *SettingsHandler {
	if events == nil {
		events = nopPublisher{}
	}
	return &SettingsHandler{
		store:  store,
		events: events,
		log:    log.With().Str("handler", "settings").Logger(),
	}
}

func (h *SettingsHandler) Routes(r chi.Router) {
	r.Get("/settings", h.Get)
	r.Put("/settings", h.Replace)
	r.Patch("/settings", h.Patch)
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.store.Get())
}

// Replace handles PUT /api/v1/settings with a complete bundle.
func (h *SettingsHandler) Replace(w http.ResponseWriter, r *http.Request) {
	var body settings.Settings
	if err := DecodeJSON(r, &body); err != nil {
		WriteErrorWithCode(w, http.StatusBadRequest, ErrInvalidBody, err.Error())
		return
	}
	next, err := h.store.Replace(r.Context(), body)
	h.respond(w, next, err)
}

// Patch handles PATCH /api/v1/settings; only present fields change.
func (h *SettingsHandler) Patch(w http.ResponseWriter, r *http.Request) {
	var body settings.Patch
	if err := DecodeJSON(r, &body); err != nil {
		WriteErrorWithCode(w, http.StatusBadRequest, ErrInvalidBody, err.Error())
		return
	}
	next, err := h.store.Apply(r.Context(), body)
	h.respond(w, next, err)
}

func (h *SettingsHandler) respond(w http.ResponseWriter, next settings.Settings, err error) {
	if err != nil {
		if errors.Is(err, settings.ErrInvalidSettings) {
			WriteErrorWithCode(w, http.StatusBadRequest, ErrInvalidSettings, err.Error())
			return
		}
		h.log.Error().Err(err).Msg("settings update failed")
		WriteErrorWithCode(w, http.StatusInternalServerError, ErrInternal, "failed to save settings")
		return
	}
	h.events.Publish(mqttclient.EventSettingsUpdated, next)
	WriteJSON(w, http.StatusOK, next)
}
