package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/writemyvoice/wmv-engine/internal/process"
)

// CatalogHandler serves the fixed option lists clients build pickers from.
type CatalogHandler struct{}

func (h CatalogHandler) Routes(r chi.Router) {
	r.Get("/languages", h.Languages)
	r.Get("/tones", h.Tones)
	r.Get("/tabs", h.Tabs)
}

func (CatalogHandler) Languages(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{"languages": process.Languages})
}

func (CatalogHandler) Tones(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{"tones": process.Tones})
}

type tabInfo struct {
	Name       process.Tab `json:"name"`
	Storyboard bool        `json:"storyboard"`
}

func (CatalogHandler) Tabs(w http.ResponseWriter, r *http.Request) {
	tabs := make([]tabInfo, 0, len(process.InputTabs))
	for _, t := range process.InputTabs {
		tabs = append(tabs, tabInfo{Name: t, Storyboard: process.StoryboardEnabled(t)})
	}
	WriteJSON(w, http.StatusOK, map[string]any{"tabs": tabs})
}
