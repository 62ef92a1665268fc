// Command airspace-cached runs the airspace geometry cache and
// rendering pipeline as a standalone HTTP service, wiring
// configuration, logging, the facade Engine and the optional S3
// backup service together the way the teacher's main.go wires its
// PocketBase app — here without the PocketBase application layer,
// since this module is an embedded cache engine rather than a
// multi-tenant BaaS (see SPEC_FULL's note on the dropped framework
// layer).
package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/labstack/echo/v5"

	"airspacecache"
	"airspacecache/internal/backup"
	"airspacecache/internal/config"
	"airspacecache/internal/handlers"
	"airspacecache/internal/logging"
	"airspacecache/internal/prefs"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger := logging.New(cfg.Log.Dir, cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backupSvc, err := backup.New(ctx, cfg.Backup, logger)
	if err != nil {
		log.Fatalf("configuring backup service: %v", err)
	}
	dbPath := filepath.Join(cfg.Store.Dir, cfg.Store.FileName)
	if backupSvc.Enabled() {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			if key, err := backupSvc.RestoreLatest(ctx, dbPath); err != nil {
				logger.Warn("restoring latest snapshot failed", slog.Any("error", err))
			} else if key != "" {
				logger.Info("restored cache from snapshot", slog.String("key", key))
			}
		}
	}

	preferenceStore, err := prefs.Open(filepath.Join(cfg.Store.Dir, "airspace_prefs.json"))
	if err != nil {
		log.Fatalf("opening preference store: %v", err)
	}

	engine, err := airspacecache.New(cfg, preferenceStore, logger)
	if err != nil {
		log.Fatalf("starting engine: %v", err)
	}
	defer engine.Close()

	e := echo.New()
	handlers.New(engine, logger).Register(e)

	addr := os.Getenv("AIRSPACE_LISTEN_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{Addr: addr, Handler: e}

	go func() {
		logger.Info("airspace-cached listening", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server stopped unexpectedly", slog.Any("error", err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.Any("error", err))
	}

	if backupSvc.Enabled() {
		if key, err := backupSvc.Snapshot(context.Background(), dbPath); err != nil {
			logger.Warn("final snapshot failed", slog.Any("error", err))
		} else if key != "" {
			logger.Info("final snapshot uploaded", slog.String("key", key))
		}
	}
}
