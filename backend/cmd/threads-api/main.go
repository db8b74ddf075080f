package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/itchan-dev/threads/backend/internal/router"
	"github.com/itchan-dev/threads/backend/internal/setup"
	"github.com/itchan-dev/threads/shared/config"
	"github.com/itchan-dev/threads/shared/logger"
)

func main() {
	var configFolder string
	flag.StringVar(&configFolder, "config_folder", "backend/config", "path to folder with configs")
	flag.Parse()

	cfg := config.MustLoad(configFolder)
	logger.Initialize(cfg.Public.LogLevel, cfg.Public.LogJSON)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := setup.SetupDependencies(ctx, cfg)
	if err != nil {
		logger.Log.Error("failed to setup dependencies", "error", err)
		os.Exit(1)
	}
	defer deps.Close()

	if err := deps.Repairer.StartBackgroundRepair(ctx, cfg.Public.RepairSchedule); err != nil {
		logger.Log.Error("failed to start link repair", "error", err)
		os.Exit(1)
	}

	httpPort := os.Getenv("PORT")
	if httpPort == "" {
		httpPort = "8080"
	}
	srv := &http.Server{
		Addr:              ":" + httpPort,
		Handler:           router.New(deps),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Log.Error("server shutdown failed", "error", err)
		}
	}()

	logger.Log.Info("server started", "port", httpPort, "storage", cfg.Public.Storage)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Log.Error("server failed", "error", err)
		return
	}
	logger.Log.Info("server stopped")
}
