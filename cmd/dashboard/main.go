package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/riskibarqy/packers-hub/internal/app"
	"github.com/riskibarqy/packers-hub/internal/config"
	"github.com/riskibarqy/packers-hub/internal/platform/logging"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.NewJSON(cfg.LogLevel)
	defer func() { _ = logger.Sync() }()
	logging.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	engine, err := app.NewEngine(ctx, cfg, logger)
	if err != nil {
		logger.Error("build engine", "error", err)
		os.Exit(1)
	}

	engine.Start(ctx)
	logger.Info("sync engine started",
		"env", cfg.AppEnv,
		"season", cfg.Season,
		"backend", cfg.BackendBaseURL,
		"schedule_interval", cfg.ScheduleInterval,
		"stats_interval", cfg.StatsInterval,
	)

	<-ctx.Done()

	engine.Stop()
	logger.Info("sync engine stopped")
}
