package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"bcmce/exchange-backend/internal/alerts"
	"bcmce/exchange-backend/internal/catalog"
	"bcmce/exchange-backend/internal/config"
	"bcmce/exchange-backend/internal/notifications"
	"bcmce/exchange-backend/internal/options"
	"bcmce/exchange-backend/internal/pricing"
)

// The sweeper expires overdue option contracts and walks the
// expiry-warning ladder on a fixed schedule.
type sweeper struct {
	options options.Service
	repo    options.Repository
	engine  *alerts.Engine
	logger  *zap.Logger
}

func (s *sweeper) sweep(ctx context.Context) {
	now := time.Now().UTC()

	expired, err := s.options.ExpireOverdue(ctx, now)
	if err != nil {
		s.logger.Error("Expiry sweep failed", zap.Error(err))
	} else if expired > 0 {
		s.logger.Info("Expired overdue contracts", zap.Int("count", expired))
	}

	active, err := s.repo.ListActive(ctx)
	if err != nil {
		s.logger.Error("Failed to list active contracts", zap.Error(err))
		return
	}

	if err := s.engine.EvaluateExpiryLadder(ctx, active, now); err != nil {
		s.logger.Error("Expiry ladder evaluation failed", zap.Error(err))
	}
}

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

	catalogService := catalog.NewService(catalog.NewRepository(db), logger)

	alertRepo := alerts.NewRepository(db)
	alertEngine := alerts.NewEngine(alertRepo, logger)

	pricingEngine := pricing.NewEngine()
	pricingService := pricing.NewService(pricing.NewRepository(db), catalogService, pricingEngine, alertEngine, logger)

	var emailSender notifications.EmailSender
	if cfg.Notifications.EmailEnabled {
		emailSender, err = notifications.NewSESSender(ctx, cfg.Notifications.SESRegion, cfg.Notifications.SenderEmail)
		if err != nil {
			logger.Warn("SES unavailable, email notifications disabled", zap.Error(err))
			cfg.Notifications.EmailEnabled = false
		}
	}
	notificationService := notifications.NewService(
		notifications.NewRepository(db), emailSender, nil, alertRepo, cfg.Notifications, logger)

	go notificationService.Run(ctx, alertEngine.Queue())

	// Alerts triggered while no dispatcher was running.
	if unsent, err := alertRepo.ListUnsent(ctx); err != nil {
		logger.Warn("Failed to list unsent alerts", zap.Error(err))
	} else {
		for i := range unsent {
			notificationService.DeliverAlert(ctx, &unsent[i])
		}
	}

	optionRepo := options.NewRepository(db)
	optionService := options.NewService(
		optionRepo, catalogService, pricingService, pricingEngine,
		notificationService, nil, logger)

	s := &sweeper{
		options: optionService,
		repo:    optionRepo,
		engine:  alertEngine,
		logger:  logger,
	}

	// Catch anything due since the last run before the schedule kicks in.
	s.sweep(ctx)

	scheduler := cron.New()
	if _, err := scheduler.AddFunc("@every 5m", func() { s.sweep(ctx) }); err != nil {
		logger.Fatal("Failed to schedule sweep", zap.Error(err))
	}
	scheduler.Start()
	logger.Info("Sweeper started", zap.String("schedule", "@every 5m"))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	logger.Info("Shutdown signal received")

	cancel()
	<-scheduler.Stop().Done()
	logger.Info("Sweeper stopped")
}
