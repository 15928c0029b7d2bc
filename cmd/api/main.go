package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"FieldMonitorAPI/internal/config"
	"FieldMonitorAPI/internal/database"
	"FieldMonitorAPI/internal/handler"
	"FieldMonitorAPI/internal/logger"
	"FieldMonitorAPI/internal/notify"
	"FieldMonitorAPI/internal/repository"
	"FieldMonitorAPI/internal/scheduler"
	"FieldMonitorAPI/internal/server"
	"FieldMonitorAPI/internal/service"
	"FieldMonitorAPI/internal/websocket"
)

func main() {
	// 1. Load Config
	cfg, err := config.Load()
	if err != nil {
		// Fallback logger since main logger isn't ready
		panic("Failed to load configuration: " + err.Error())
	}

	// 2. Initialize Logger
	log, err := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		LogFilePath: cfg.Logging.FilePath,
		UseColors:   cfg.Logging.UseColors,
		ShowCaller:  cfg.Logging.ShowCaller,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer log.Close()

	if err := cfg.Validate(); err != nil {
		log.Fatal("Configuration validation failed: %v", err)
	}

	cfg.Print()
	log.Info("Starting Field Monitor API Server")

	// 3. Database Connection
	db, err := database.New(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	log.Info("Database connected successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := db.Health(ctx); err != nil {
		log.Fatal("Database health check failed: %v", err)
	}

	// 4. Initialize Repositories
	thresholdRepo := repository.NewThresholdRepository(db.DB)
	alertRepo := repository.NewAlertRepository(db.DB)
	adminRepo := repository.NewAdminRepository(db.DB)
	chartRepo := repository.NewChartRepository(db.DB)
	readingRepo := repository.NewReadingRepository(db.DB, cfg.Alerting.WeatherStationID)
	recapRepo := repository.NewRecapRepository(db.DB)

	// 5. Notification Providers
	var smsSender notify.SMSSender
	var emailSender notify.EmailSender

	if cfg.SMSEnabled() {
		smsSender = notify.NewTwilioSender(&cfg.Twilio, log)
		log.Info("Twilio SMS sender configured")
	} else {
		smsSender = notify.NewLogSender(log)
		log.Warn("Twilio not configured, SMS alerts will be logged only")
	}

	if cfg.EmailEnabled() {
		emailSender = notify.NewSendGridSender(&cfg.SendGrid, log)
		log.Info("SendGrid email sender configured")
	} else {
		emailSender = notify.NewLogSender(log)
		log.Warn("SendGrid not configured, email alerts will be logged only")
	}

	// 6. WebSocket Hub
	hub := websocket.NewHub(log)
	go hub.Run(ctx)

	// 7. Initialize Services
	alertService := service.NewAlertService(alertRepo, hub, log)
	thresholdService := service.NewThresholdService(thresholdRepo, log)
	adminService := service.NewAdminService(adminRepo, log)
	dataService := service.NewDataService(readingRepo, chartRepo, recapRepo)
	recapService := service.NewRecapService(recapRepo, readingRepo, alertRepo, log)

	checker := service.NewThresholdChecker(
		thresholdRepo, adminRepo, readingRepo, chartRepo,
		alertService, smsSender, emailSender,
		&cfg.Alerting, log,
	)

	// 8. Scheduler
	if cfg.Alerting.EnableScheduler {
		sched := scheduler.New(checker, recapService, &cfg.Alerting, log)
		if err := sched.Start(); err != nil {
			log.Fatal("Failed to start scheduler: %v", err)
		}
		defer sched.Stop()
	} else {
		log.Warn("Scheduler disabled, checks run only via /thresholds/run-check")
	}

	// 9. Initialize Handlers
	thresholdHandler := handler.NewThresholdHandler(thresholdService, checker, cfg.Alerting.CycleTimeout, log)
	alertHandler := handler.NewAlertHandler(alertService, log)
	adminHandler := handler.NewAdminHandler(adminService, log)
	dataHandler := handler.NewDataHandler(dataService, log)
	healthHandler := handler.NewHealthHandler(db, log)

	// 10. Start HTTP Server
	srv := server.New(cfg, log)
	srv.RegisterHandlers(thresholdHandler, alertHandler, adminHandler, dataHandler, healthHandler, hub)

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal("Server failed: %v", err)
		}
	}()

	log.Info("API server ready on http://%s:%d", cfg.Server.Host, cfg.Server.Port)

	// 11. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Warn("Shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error: %v", err)
	}

	cancel()
	log.Info("Shutdown complete")
}
