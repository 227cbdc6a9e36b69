package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/writemyvoice/wmv-engine/internal/api"
	"github.com/writemyvoice/wmv-engine/internal/config"
	"github.com/writemyvoice/wmv-engine/internal/gemini"
	"github.com/writemyvoice/wmv-engine/internal/mqttclient"
	"github.com/writemyvoice/wmv-engine/internal/process"
	"github.com/writemyvoice/wmv-engine/internal/settings"
	"github.com/writemyvoice/wmv-engine/internal/storage"
)

var version = "dev"

func main() {
	startTime := time.Now()

	var overrides config.Overrides
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.StringVar(&overrides.EnvFile, "env-file", "", "path to .env file (default .env)")
	flag.StringVar(&overrides.HTTPAddr, "listen", "", "HTTP listen address (overrides HTTP_ADDR)")
	flag.StringVar(&overrides.LogLevel, "log-level", "", "log level (overrides LOG_LEVEL)")
	flag.StringVar(&overrides.DataDir, "data-dir", "", "local data directory (overrides DATA_DIR)")
	flag.StringVar(&overrides.MQTTBrokerURL, "mqtt-broker", "", "MQTT broker URL (overrides MQTT_BROKER_URL)")
	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		return
	}

	// Config
	cfg, err := config.Load(overrides)
	if err != nil {
		early := zerolog.New(os.Stderr).With().Timestamp().Logger()
		early.Fatal().Err(err).Msg("failed to load config")
	}

	// Logger
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stdout).With().Timestamp().Logger().Level(level)
	log.Info().Str("version", version).Msg("wmv-engine starting")

	// Context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Storage
	storeLog := log.With().Str("component", "storage").Logger()
	store, services, err := storage.New(cfg.S3, cfg.DataDir, storeLog)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize storage")
	}
	for _, svc := range services {
		svc.Start()
		defer svc.Stop()
	}
	log.Info().Str("type", store.Type()).Msg("blob storage ready")

	// Settings
	prefs := settings.Open(ctx, store, log)

	// Gemini
	backend, err := gemini.New(ctx, gemini.Options{
		APIKey:     cfg.GeminiAPIKey,
		ProModel:   cfg.GeminiProModel,
		FlashModel: cfg.GeminiFlashModel,
		ImageModel: cfg.GeminiImageModel,
		TTSModel:   cfg.GeminiTTSModel,
		Voice:      cfg.GeminiVoice,
		Log:        log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create gemini client")
	}
	processor := process.New(backend, process.Options{
		SampleRate: cfg.SpeechSampleRate,
		Log:        log.With().Str("component", "process").Logger(),
	})

	opts := api.ServerOptions{
		Config:    cfg,
		Processor: processor,
		Settings:  prefs,
		Store:     store,
		Version:   version,
		StartTime: startTime,
		Log:       log.With().Str("component", "http").Logger(),
	}

	// MQTT (optional)
	if cfg.MQTTBrokerURL != "" {
		mqtt, err := mqttclient.Connect(mqttclient.Options{
			BrokerURL:   cfg.MQTTBrokerURL,
			ClientID:    cfg.MQTTClientID,
			TopicPrefix: cfg.MQTTTopicPrefix,
			Username:    cfg.MQTTUsername,
			Password:    cfg.MQTTPassword,
			Log:         log.With().Str("component", "mqtt").Logger(),
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to mqtt broker")
		}
		defer mqtt.Close()
		opts.Events = mqtt
		opts.MQTT = mqtt
	}

	// HTTP Server
	srv := api.NewServer(opts)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("http server error")
		}
	}

	// Graceful shutdown with 10s timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown error")
	}

	log.Info().Msg("wmv-engine stopped")
}
