package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"sentinela/internal/address"
	"sentinela/internal/archive"
	"sentinela/internal/assist"
	"sentinela/internal/onboarding"
	"sentinela/internal/patient"
	"sentinela/internal/platform/config"
	"sentinela/internal/platform/httpserver"
	"sentinela/internal/platform/logger"
	"sentinela/internal/platform/metrics"
	"sentinela/internal/platform/middleware"
	"sentinela/internal/platform/token"
	"sentinela/internal/record"
	"sentinela/internal/screening"
	"sentinela/internal/settings"
	"sentinela/internal/storage"
	httptransport "sentinela/internal/transport/http"
)

// main wires dependencies and owns the server lifecycle. Business logic lives
// in the internal packages.
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.FromEnv()
	log := logger.New()
	ctx := context.Background()

	backend, err := newBackend(ctx, cfg)
	if err != nil {
		return fmt.Errorf("storage backend: %w", err)
	}
	codec, err := newCodec(cfg)
	if err != nil {
		return fmt.Errorf("snapshot codec: %w", err)
	}
	if _, plain := codec.(storage.ObfuscatingCodec); plain {
		log.Warn("snapshots are stored without encryption, set SENTINELA_SNAPSHOT_KEY to enable it")
	}

	m := metrics.New()
	store, err := storage.New(backend, codec, storage.WithLogger(log), storage.WithMetrics(m))
	if err != nil {
		return err
	}

	records, err := record.NewRepository(ctx, store, record.WithLogger(log), record.WithMetrics(m))
	if err != nil {
		return err
	}
	patients, err := patient.NewRepository(ctx, store,
		patient.WithLogger(log),
		patient.WithMetrics(m),
		patient.WithRecordPurger(records),
	)
	if err != nil {
		return err
	}
	settingsSvc, err := settings.NewService(ctx, store, settings.WithLogger(log))
	if err != nil {
		return err
	}

	addresses, err := address.NewClient(offlineAddressSuggester{}, address.WithLogger(log), address.WithMetrics(m))
	if err != nil {
		return err
	}
	intake, err := onboarding.NewWizard(patients, onboarding.WithLogger(log), onboarding.WithAddressSuggester(addresses))
	if err != nil {
		return err
	}
	screen, err := screening.NewWizard(patients, records, offlineEndemicAssessor{},
		screening.WithLogger(log), screening.WithMetrics(m))
	if err != nil {
		return err
	}
	assistSvc, err := assist.NewService(patients, records, offlineRiskAssessor{},
		assist.WithLogger(log), assist.WithMetrics(m))
	if err != nil {
		return err
	}
	archiveSvc, err := archive.NewService(patients, records, offlineDocumentExtractor{},
		archive.WithLogger(log), archive.WithMetrics(m))
	if err != nil {
		return err
	}

	var validator middleware.JWTValidator
	if cfg.JWTSigningKey != "" {
		validator = token.NewJWTService(cfg.JWTSigningKey)
	}

	handler := httptransport.New(httptransport.Deps{
		Logger:       log,
		Metrics:      m,
		Patients:     patients,
		Records:      records,
		Intake:       intake,
		Screening:    screen,
		Assist:       assistSvc,
		Archive:      archiveSvc,
		Addresses:    addresses,
		Settings:     settingsSvc,
		JWTValidator: validator,
	})

	srv := httpserver.New(cfg.Addr, handler.Router())
	log.Info("starting sentinela",
		"addr", cfg.Addr,
		"storage_driver", cfg.StorageDriver,
		"auth_enabled", validator != nil,
	)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	log.Info("sentinela stopped")
	return nil
}

func newBackend(ctx context.Context, cfg config.Server) (storage.Backend, error) {
	switch cfg.StorageDriver {
	case "file":
		return storage.NewFileBackend(cfg.DataDir)
	case "memory":
		return storage.NewMemoryBackend(), nil
	case "redis":
		return storage.NewRedisBackend(ctx, cfg.RedisURL)
	case "postgres":
		return storage.NewPostgresBackend(ctx, cfg.PostgresURL)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

func newCodec(cfg config.Server) (storage.Codec, error) {
	if cfg.SnapshotKey == "" {
		return storage.NewObfuscatingCodec(), nil
	}
	key, err := hex.DecodeString(cfg.SnapshotKey)
	if err != nil {
		return nil, fmt.Errorf("SENTINELA_SNAPSHOT_KEY must be hex: %w", err)
	}
	return storage.NewAEADCodec(key)
}
