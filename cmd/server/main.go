package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/gelateria/internal/config"
	"github.com/mamadbah2/gelateria/internal/repository/local"
	"github.com/mamadbah2/gelateria/internal/repository/mongodb"
	"github.com/mamadbah2/gelateria/internal/repository/sheets"
	"github.com/mamadbah2/gelateria/internal/scheduler"
	"github.com/mamadbah2/gelateria/internal/server/handlers"
	"github.com/mamadbah2/gelateria/internal/server/router"
	commandsvc "github.com/mamadbah2/gelateria/internal/service/commands"
	"github.com/mamadbah2/gelateria/internal/service/insight"
	"github.com/mamadbah2/gelateria/internal/service/ledger"
	reportingsvc "github.com/mamadbah2/gelateria/internal/service/reporting"
	whatsappsvc "github.com/mamadbah2/gelateria/internal/service/whatsapp"
	"github.com/mamadbah2/gelateria/pkg/clients/anthropic"
	whatsappclient "github.com/mamadbah2/gelateria/pkg/clients/whatsapp"
	"github.com/mamadbah2/gelateria/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loc, err := time.LoadLocation(cfg.Reporting.Timezone)
	if err != nil {
		baseLogger.Fatal("invalid timezone", zap.String("timezone", cfg.Reporting.Timezone), zap.Error(err))
	}

	var gateway ledger.Gateway
	switch cfg.Storage.Backend {
	case config.BackendMongoDB:
		mongoRepo, err := mongodb.NewMongoDBRepository(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName, logger.Named(baseLogger, "repo.mongodb"))
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		defer func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		gateway = mongoRepo
	default:
		localRepo, err := local.NewRepository(cfg.Storage.LocalPath, logger.Named(baseLogger, "repo.local"))
		if err != nil {
			baseLogger.Fatal("failed to init local repository", zap.Error(err))
		}
		gateway = localRepo
	}
	baseLogger.Info("persistence backend selected", zap.String("backend", cfg.Storage.Backend))

	inventory := ledger.New(gateway, loc, logger.Named(baseLogger, "svc.ledger"))
	if err := inventory.Load(ctx); err != nil {
		// Nothing is fatal: start empty and keep writing through.
		baseLogger.Error("failed to load ledger state, starting empty", zap.Error(err))
	}
	if err := inventory.Watch(ctx); err != nil {
		baseLogger.Warn("live updates unavailable", zap.Error(err))
	}

	var aiClient anthropic.Client
	if cfg.AI.AnthropicKey != "" {
		aiClient = anthropic.NewClient(cfg.AI.AnthropicKey, anthropic.WithModel(cfg.AI.Model))
		baseLogger.Info("anthropic ai client enabled", zap.String("model", cfg.AI.Model))
	} else {
		baseLogger.Warn("anthropic api key missing, insights will use the fallback text")
	}
	advisor := insight.NewAdvisor(aiClient, logger.Named(baseLogger, "svc.insight"))

	reportingSvc := reportingsvc.NewService(inventory, logger.Named(baseLogger, "svc.reporting"))

	schedOpts := scheduler.Options{
		Schedule:  cfg.Reporting.CronSchedule,
		Location:  loc,
		Source:    inventory,
		Advisor:   advisor,
		Recipient: cfg.WhatsApp.ReportRecipient,
	}
	if cfg.Sheets.Enabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(ctx, cfg.Sheets, logger.Named(baseLogger, "repo.sheets"))
		if err != nil {
			baseLogger.Warn("sheets export disabled", zap.Error(err))
		} else {
			schedOpts.Sheet = sheetsRepo
		}
	} else {
		baseLogger.Warn("google sheets not configured, daily ledger export disabled")
	}
	whatsClient := whatsappclient.NewClient(cfg.WhatsApp)
	if cfg.WhatsApp.Enabled() {
		schedOpts.Sender = whatsClient
	} else {
		baseLogger.Warn("whatsapp not configured, daily summary delivery disabled")
	}

	var webhookHandler *handlers.WebhookHandler
	if cfg.WhatsApp.WebhookEnabled() {
		dispatcher := commandsvc.NewService(reportingSvc, inventory, advisor, logger.Named(baseLogger, "svc.commands"))
		messagingSvc := whatsappsvc.NewMetaWhatsAppService(cfg.WhatsApp, whatsClient, dispatcher, logger.Named(baseLogger, "svc.whatsapp"))
		webhookHandler = handlers.NewWebhookHandler(messagingSvc, logger.Named(baseLogger, "handlers.whatsapp"))
	} else {
		baseLogger.Warn("whatsapp webhook not configured, stock query bot disabled")
	}

	sched := scheduler.NewScheduler(schedOpts, logger.Named(baseLogger, "scheduler"))
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	engine := router.New(
		handlers.NewLedgerHandler(inventory, loc, logger.Named(baseLogger, "handlers.ledger")),
		handlers.NewReportsHandler(inventory, reportingSvc, advisor, loc, logger.Named(baseLogger, "handlers.reports")),
		webhookHandler,
		logger.Named(baseLogger, "router"),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
