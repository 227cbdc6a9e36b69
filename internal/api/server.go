package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/writemyvoice/wmv-engine/internal/config"
	"github.com/writemyvoice/wmv-engine/internal/metrics"
	"github.com/writemyvoice/wmv-engine/internal/process"
	"github.com/writemyvoice/wmv-engine/internal/settings"
	"github.com/writemyvoice/wmv-engine/internal/storage"
)

type Server struct {
	http *http.Server
	log  zerolog.Logger
}

// ServerOptions wires the server's dependencies. Events and MQTT may be nil.
type ServerOptions struct {
	Config    *config.Config
	Processor *process.Processor
	Settings  *settings.Store
	Store     storage.BlobStore
	Events    EventPublisher
	MQTT      ConnectionStatus
	Version   string
	StartTime time.Time
	Log       zerolog.Logger
}

func NewServer(opts ServerOptions) *Server {
	return &Server{
		http: &http.Server{
			Addr:         opts.Config.HTTPAddr,
			Handler:      NewRouter(opts),
			ReadTimeout:  opts.Config.ReadTimeout,
			WriteTimeout: opts.Config.WriteTimeout,
			IdleTimeout:  opts.Config.IdleTimeout,
		},
		log: opts.Log,
	}
}

func NewRouter(opts ServerOptions) http.Handler {
	cfg := opts.Config
	log := opts.Log
	maxUpload := int64(cfg.MaxUploadMB) << 20

	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(Recoverer)
	r.Use(Logger(log))
	r.Use(metrics.InstrumentHandler)
	r.Use(CORSWithOrigins(cfg.CORSOriginList()))

	// Health and metrics are public
	health := NewHealthHandler(opts.Store, opts.MQTT, opts.Version, opts.StartTime)
	r.Get("/api/v1/health", health.ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(cfg.AuthToken))
		r.Route("/api/v1", func(r chi.Router) {
			NewProcessHandler(opts.Processor, opts.Settings, opts.Events, maxUpload, log).Routes(r)
			NewSpeechHandler(opts.Processor, log).Routes(r)
			NewSettingsHandler(opts.Settings, opts.Events, log).Routes(r)
			CatalogHandler{}.Routes(r)
		})
	})

	return r
}

func (s *Server) Start() error {
	s.log.Info().Str("addr", s.http.Addr).Msg("http server starting")
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("http server shutting down")
	return s.http.Shutdown(ctx)
}
