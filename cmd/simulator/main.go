package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/sebastiankruger/building-simulator/internal/api"
	"github.com/sebastiankruger/building-simulator/internal/config"
	"github.com/sebastiankruger/building-simulator/internal/core"
	"github.com/sebastiankruger/building-simulator/internal/dataset"
	"github.com/sebastiankruger/building-simulator/internal/generator"
	"github.com/sebastiankruger/building-simulator/internal/health"
	"github.com/sebastiankruger/building-simulator/internal/metrics"
	"github.com/sebastiankruger/building-simulator/internal/opcua"
	"github.com/sebastiankruger/building-simulator/internal/publisher"
	"github.com/sebastiankruger/building-simulator/internal/replay"
)

func main() {
	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	} else {
		log.Warn().Str("level", cfg.LogLevel).Msg("Unknown log level, using info")
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	log.Info().
		Str("name", cfg.SimulatorName).
		Str("mode", cfg.Mode).
		Int64("seed", cfg.Seed).
		Str("start_date", cfg.StartDate).
		Int("days", cfg.Days).
		Dur("frequency", cfg.Frequency).
		Str("output_dir", cfg.OutputDir).
		Msg("Configuration loaded")

	switch cfg.Mode {
	case config.ModeReplay:
		runReplay(cfg)
	default:
		if err := runGenerate(cfg); err != nil {
			log.Fatal().Err(err).Msg("Generation failed")
		}
	}
}

// runGenerate produces the dataset and writes every output file
func runGenerate(cfg *config.Config) error {
	start := time.Now()

	ds, err := generator.New(cfg.Seed).GenerateAll(cfg.GenerationParams())
	if err != nil {
		return err
	}

	manifest := dataset.NewManifest(runInfo(cfg), ds, time.Now())
	if err := dataset.SaveAll(cfg.OutputDir, ds, manifest, dataset.SaveOptions{XLSX: cfg.XLSXExport}); err != nil {
		return err
	}

	log.Info().
		Str("run_id", manifest.RunID).
		Int("sensors", len(ds.Sensors)).
		Int("energy", len(ds.Energy)).
		Int("equipment", len(ds.Equipment)).
		Int("anomalies", len(ds.Anomalies)).
		Dur("elapsed", time.Since(start)).
		Msg("Dataset written")
	return nil
}

func runInfo(cfg *config.Config) dataset.RunInfo {
	return dataset.RunInfo{
		Seed:           cfg.Seed,
		StartDate:      cfg.StartDate,
		Days:           cfg.Days,
		Frequency:      cfg.Frequency,
		MissingPercent: cfg.MissingPercent,
		AnomalyPercent: cfg.AnomalyPercent,
	}
}

// loadOrGenerate reads the dataset from the output directory, or generates
// it in memory when no files are there yet.
func loadOrGenerate(cfg *config.Config) (*core.Dataset, error) {
	if dataset.Exists(cfg.OutputDir) {
		return dataset.LoadAll(cfg.OutputDir)
	}
	log.Info().Str("dir", cfg.OutputDir).Msg("No dataset found, generating in memory")
	return generator.New(cfg.Seed).GenerateAll(cfg.GenerationParams())
}

// runReplay serves a dataset over OPC UA, Kafka and HTTP until a signal arrives
func runReplay(cfg *config.Config) {
	// Recover from panics
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Recovered from panic")
		}
	}()

	// Setup context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	healthHandler := health.NewHandler()
	runtimeConfig := config.NewRuntimeConfig(cfg)
	m := metrics.New()

	ds, err := loadOrGenerate(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load dataset")
	}
	m.ObserveDataset(ds)
	healthHandler.SetDatasetLoaded(true)

	// Create OPC UA server
	opcuaServer := opcua.NewServer(cfg.OPCUAPort, cfg.SimulatorName)
	if err := opcuaServer.RegisterBuilding(); err != nil {
		log.Fatal().Err(err).Msg("Failed to register building namespace")
	}
	if err := opcuaServer.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to start OPC UA server")
	}
	healthHandler.SetOPCUAServing(opcuaServer.Running())

	sinks := []replay.Sink{opcuaServer, m}

	var kafkaPublisher *publisher.Kafka
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher = publisher.NewKafka(cfg.SimulatorName, cfg.KafkaBrokers, cfg.KafkaTopic)
		sinks = append(sinks, kafkaPublisher)
	}

	if cfg.BMSEndpoint != "" {
		sinks = append(sinks, publisher.NewHTTP(cfg.SimulatorName, cfg.BMSEndpoint, cfg.BMSPath))
	}

	runner := replay.NewRunner(ds, runtimeConfig, sinks...)
	runner.OnSinkError(func(sink string, err error) {
		m.SinkError(sink)
	})

	// Start HTTP server (health + API + metrics)
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler.HandleHealth)
	mux.HandleFunc("/health/live", healthHandler.HandleLive)
	mux.HandleFunc("/health/ready", healthHandler.HandleReady)
	mux.Handle("/metrics", m.Handler())
	api.NewHandler(cfg.SimulatorName, runner, runtimeConfig).Register(mux)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HealthPort),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.HealthPort).Msg("Starting HTTP server (health + API + metrics)")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("HTTP server error")
		}
	}()

	// Main replay loop, returns on shutdown signal
	runner.Run(ctx)

	log.Info().Msg("Shutting down...")

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	if kafkaPublisher != nil {
		if err := kafkaPublisher.Close(); err != nil {
			log.Error().Err(err).Msg("Kafka publisher close error")
		}
	}

	if err := opcuaServer.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("OPC UA server shutdown error")
	}

	log.Info().Msg("Simulator stopped")
}
