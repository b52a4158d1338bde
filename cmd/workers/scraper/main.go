package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"bcmce/exchange-backend/internal/config"
	"bcmce/exchange-backend/internal/scraper"
)

func main() {
	cfg, err := config.LoadConfig("config.json")
	if err != nil {
		panic(err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	db, err := sqlx.Connect("postgres", cfg.Database.GetDatabaseURL())
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	service := scraper.NewService(scraper.NewRepository(db), cfg.Scraper, logger)

	run := func() {
		result, err := service.Run(ctx)
		if err != nil {
			logger.Error("Scrape run failed", zap.Error(err))
			return
		}
		logger.Info("Scrape run finished",
			zap.Int("found", result.Found),
			zap.Int("new", result.New))
	}

	run()

	scheduler := cron.New()
	if _, err := scheduler.AddFunc("@every 6h", run); err != nil {
		logger.Fatal("Failed to schedule scrape", zap.Error(err))
	}
	scheduler.Start()
	logger.Info("Scraper worker started", zap.String("schedule", "@every 6h"))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	logger.Info("Shutdown signal received")

	cancel()
	<-scheduler.Stop().Done()
	logger.Info("Scraper worker stopped")
}
