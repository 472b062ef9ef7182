package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aristath/pricewatch/internal/config"
	"github.com/aristath/pricewatch/internal/database"
	"github.com/aristath/pricewatch/internal/events"
	"github.com/aristath/pricewatch/internal/modules/history"
	"github.com/aristath/pricewatch/internal/modules/tracker"
	"github.com/aristath/pricewatch/internal/notify"
	"github.com/aristath/pricewatch/internal/scheduler"
	"github.com/aristath/pricewatch/internal/scraper"
	"github.com/aristath/pricewatch/internal/server"
	"github.com/aristath/pricewatch/pkg/logger"
)

func main() {
	// Load configuration first so the logger honors LOG_LEVEL
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New(logger.Config{Level: "info", Pretty: true})
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Msg("Starting pricewatch")

	if !cfg.MailConfigured() {
		log.Warn().Msg("EMAIL / EMAIL_PASSWORD not set, price checks will be skipped until configured")
	}

	// Initialize database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	// Run migrations
	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Wire up modules
	eventManager := events.NewManager(log)

	historyRepo := history.NewRepository(db.Conn(), log)
	historyService := history.NewService(historyRepo, log)
	historyHandlers := history.NewHandlers(historyService, log)

	trackerRepo := tracker.NewRepository(db.Conn(), log)
	trackerService := tracker.NewService(trackerRepo, historyService, eventManager, log)
	trackerHandlers := tracker.NewHandlers(trackerService, log)

	fetcher := scraper.NewFetcher(cfg.FetchTimeout, log)
	notifier := notify.NewEmailNotifier(notify.EmailConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		From:     cfg.SenderEmail,
		Password: cfg.SenderSecret,
	}, log)

	// Background jobs stop at job boundaries when this context is cancelled
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	defer cancelJobs()

	// Initialize scheduler
	sched := scheduler.New(log)

	checkCycle := scheduler.NewCheckCycleJob(scheduler.CheckCycleConfig{
		Ctx:      jobCtx,
		Jobs:     trackerRepo,
		History:  historyService,
		Checker:  fetcher,
		Notifier: notifier,
		Events:   eventManager,
		Log:      log,
	})
	if err := sched.AddJob("@every "+cfg.CheckInterval.String(), checkCycle); err != nil {
		log.Fatal().Err(err).Msg("Failed to register check cycle")
	}

	maintenance := scheduler.NewMaintenanceJob(scheduler.MaintenanceConfig{
		Ctx: jobCtx,
		DB:  db,
		Log: log,
	})
	if err := sched.AddJob("@daily", maintenance); err != nil {
		log.Fatal().Err(err).Msg("Failed to register maintenance job")
	}
	sched.Start()

	// Initialize HTTP server
	srv := server.New(server.Config{
		Port:     cfg.Port,
		Log:      log,
		DB:       db,
		Config:   cfg,
		DevMode:  cfg.DevMode,
		Tracker:  trackerHandlers,
		History:  historyHandlers,
		JobStats: trackerRepo,
	})

	// Start server in goroutine
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().
		Int("port", cfg.Port).
		Dur("check_interval", cfg.CheckInterval).
		Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down...")

	// Stop scheduling new cycles, then let a running cycle finish its job
	cancelJobs()
	sched.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
