package api

import (
	"context"
	"net/http"
	"time"

	"github.com/writemyvoice/wmv-engine/internal/storage"
)

type HealthResponse struct {
	Status        string            `json:"status"`
	Version       string            `json:"version"`
	UptimeSeconds int64             `json:"uptime_seconds"`
	Checks        map[string]string `json:"checks"`
}

// ConnectionStatus is satisfied by the MQTT client.
type ConnectionStatus interface {
	IsConnected() bool
}

type HealthHandler struct {
	store     storage.BlobStore
	mqtt      ConnectionStatus
	version   string
	startTime time.Time
}

func NewHealthHandler(store storage.BlobStore, mqtt ConnectionStatus, version string, startTime time.Time) *HealthHandler {
	return &HealthHandler{
		store:     store,
		mqtt:      mqtt,
		version:   version,
		startTime: startTime,
	}
}

// ServeHTTP reports healthy, or degraded when an optional dependency is
// down. The core path never depends on them, so degraded still returns 200.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)
	status := "healthy"

	if h.store == nil {
		checks["storage"] = "not_configured"
	} else if p, ok := h.store.(storage.Pinger); ok {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		err := p.Ping(ctx)
		cancel()
		if err != nil {
			checks["storage"] = "error"
			status = "degraded"
		} else {
			checks["storage"] = "ok"
		}
	} else {
		checks["storage"] = "ok"
	}

	if h.mqtt != nil {
		if h.mqtt.IsConnected() {
			checks["mqtt"] = "ok"
		} else {
			checks["mqtt"] = "disconnected"
			status = "degraded"
		}
	} else {
		checks["mqtt"] = "not_configured"
	}

	WriteJSON(w, http.StatusOK, HealthResponse{
		Status:        status,
		Version:       h.version,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		Checks:        checks,
	})
}
