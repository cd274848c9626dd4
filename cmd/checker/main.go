// Command checker runs a single availability check and exits. It is meant to be
// started by a scheduler (cron, a Kubernetes CronJob, ...).
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"go.uber.org/zap"

	"github.com/nekogravitycat/flight-checker/internal/app"
	"github.com/nekogravitycat/flight-checker/internal/config"
	"github.com/nekogravitycat/flight-checker/internal/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Printf("failed to load config: %v", err)
		return 1
	}

	zapLogger, err := logger.New(cfg.IsProduction, cfg.LogLevel)
	if err != nil {
		log.Printf("failed to create logger: %v", err)
		return 1
	}
	defer zapLogger.Sync()

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	container, err := app.NewContainer(ctx, cfg, zapLogger)
	if err != nil {
		zapLogger.Error("failed to initialize application", zap.Error(err))
		return 1
	}
	defer container.Close()

	report, err := container.Checker.Run(ctx)
	if err != nil {
		zapLogger.Error("check failed", zap.Error(err))
		return 1
	}

	zapLogger.Info("check finished",
		zap.String("run_id", report.RunID),
		zap.Int("found", len(report.Lines)),
		zap.Bool("notified", report.Notified),
	)
	return 0
}
