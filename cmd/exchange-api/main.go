package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"bcmce/exchange-backend/internal/alerts"
	"bcmce/exchange-backend/internal/auth"
	"bcmce/exchange-backend/internal/catalog"
	"bcmce/exchange-backend/internal/config"
	"bcmce/exchange-backend/internal/notifications"
	"bcmce/exchange-backend/internal/notifications/websocket"
	"bcmce/exchange-backend/internal/options"
	"bcmce/exchange-backend/internal/pricing"
	"bcmce/exchange-backend/internal/procurement"
	"bcmce/exchange-backend/internal/scraper"
	"bcmce/exchange-backend/pkg/pdf"
	"bcmce/exchange-backend/pkg/storage"
)

func main() {
	cfg, err := config.LoadConfig("config.json")
	if err != nil {
		panic(err)
	}

	logger := newLogger(cfg.Logging.Level)
	defer logger.Sync()

	runDBMigration(cfg, logger)

	db, err := sqlx.Connect("postgres", cfg.Database.GetDatabaseURL())
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxConnections)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)

	ctx := context.Background()

	// Catalog
	catalogRepo := catalog.NewRepository(db)
	catalogService := catalog.NewService(catalogRepo, logger)
	catalogHandler := catalog.NewHandler(catalogService)

	// Alerts
	alertRepo := alerts.NewRepository(db)
	alertEngine := alerts.NewEngine(alertRepo, logger)
	alertHandler := alerts.NewHandler(alertRepo)

	// Pricing
	pricingEngine := pricing.NewEngine()
	pricingRepo := pricing.NewRepository(db)
	pricingService := pricing.NewService(pricingRepo, catalogService, pricingEngine, alertEngine, logger)
	pricingHandler := pricing.NewHandler(pricingService)

	// Notifications
	wsManager := websocket.NewManager(logger)
	defer wsManager.Close()

	var emailSender notifications.EmailSender
	if cfg.Notifications.EmailEnabled {
		emailSender, err = notifications.NewSESSender(ctx, cfg.Notifications.SESRegion, cfg.Notifications.SenderEmail)
		if err != nil {
			logger.Warn("SES unavailable, email notifications disabled", zap.Error(err))
			cfg.Notifications.EmailEnabled = false
		}
	}

	notificationRepo := notifications.NewRepository(db)
	notificationService := notifications.NewService(
		notificationRepo, emailSender, wsManager, alertRepo, cfg.Notifications, logger)

	alertCtx, stopAlerts := context.WithCancel(ctx)
	defer stopAlerts()
	go notificationService.Run(alertCtx, alertEngine.Queue())

	// Options
	var confirmations options.ConfirmationPublisher
	if s3Client, err := storage.NewS3Client(ctx, cfg.Storage.Bucket, cfg.Storage.Region); err != nil {
		logger.Warn("S3 unavailable, contract confirmations disabled", zap.Error(err))
	} else {
		confirmations = options.NewConfirmationPublisher(pdf.NewGenerator(), s3Client, logger)
	}

	optionRepo := options.NewRepository(db)
	optionService := options.NewService(
		optionRepo, catalogService, pricingService, pricingEngine,
		notificationService, confirmations, logger)
	optionHandler := options.NewHandler(optionService, pricingService)

	// Procurement
	procurementRepo := procurement.NewRepository(db)
	procurementService := procurement.NewService(procurementRepo, catalogService, logger)
	procurementHandler := procurement.NewHandler(procurementService)

	// Scraper
	scraperRepo := scraper.NewRepository(db)
	scraperService := scraper.NewService(scraperRepo, cfg.Scraper, logger)
	scraperHandler := scraper.NewHandler(scraperService)

	// Auth
	authRepo := auth.NewRepository(db)
	authService := auth.NewService(authRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenExpiry, logger)
	authHandler := auth.NewHandler(authService)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// CORS Middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, PATCH, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	api := router.Group("/api/v1")
	{
		authHandler.RegisterRoutes(api)
		catalogHandler.RegisterRoutes(api)
		pricingHandler.RegisterRoutes(api)
		alertHandler.RegisterRoutes(api)
		scraperHandler.RegisterRoutes(api)

		guarded := api.Group("", auth.Middleware(authService))
		optionHandler.RegisterRoutes(guarded)
		procurementHandler.RegisterRoutes(guarded)
	}

	router.GET("/ws", func(c *gin.Context) {
		userID := c.Query("user_id")
		if _, err := wsManager.HandleConnection(c.Writer, c.Request, userID); err != nil {
			logger.Warn("Websocket upgrade failed", zap.Error(err))
		}
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
		})
	})

	srv := &http.Server{
		Addr:    cfg.Server.GetServerAddr(),
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", zap.Error(err))
		}
	}()

	logger.Info("Server started", zap.String("addr", cfg.Server.GetServerAddr()))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exiting")
}

func newLogger(level string) *zap.Logger {
	var logger *zap.Logger
	var err error
	if level == "debug" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	return logger
}

func runDBMigration(cfg *config.Config, logger *zap.Logger) {
	migration, err := migrate.New("file://"+cfg.Database.MigrationsPath, cfg.Database.GetDatabaseURL())
	if err != nil {
		logger.Fatal("cannot create migrate instance", zap.Error(err))
	}

	if err = migration.Up(); err != nil && err != migrate.ErrNoChange {
		logger.Fatal("failed to run migrate up", zap.Error(err))
	}
	logger.Info("db migrated successfully")
}
