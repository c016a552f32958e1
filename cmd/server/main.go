package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/agritrack/internal/config"
	"github.com/mamadbah2/agritrack/internal/repository/mongodb"
	"github.com/mamadbah2/agritrack/internal/repository/sheets"
	"github.com/mamadbah2/agritrack/internal/scheduler"
	"github.com/mamadbah2/agritrack/internal/server/handlers"
	"github.com/mamadbah2/agritrack/internal/server/middleware"
	"github.com/mamadbah2/agritrack/internal/server/router"
	recordsvc "github.com/mamadbah2/agritrack/internal/service/records"
	"github.com/mamadbah2/agritrack/internal/validation"
	"github.com/mamadbah2/agritrack/pkg/clients/alerts"
	"github.com/mamadbah2/agritrack/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	mongoRepo, err := mongodb.NewMongoDBRepository(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
	if err != nil {
		baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
	}
	defer func() {
		if err := mongoRepo.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	if err := mongoRepo.EnsureIndexes(context.Background()); err != nil {
		baseLogger.Fatal("failed to create indexes", zap.Error(err))
	}

	var alerter recordsvc.Alerter
	if cfg.Alerts.Enabled() {
		alerter = alerts.NewClient(cfg.Alerts)
		baseLogger.Info("health alert webhook enabled")
	} else {
		baseLogger.Warn("health alert webhook not configured, low-score alerting disabled")
	}

	var exporter sheets.Exporter
	if cfg.Sheets.Enabled() {
		exporter, err = sheets.NewGoogleSheetExporter(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets exporter", zap.Error(err))
		}
		baseLogger.Info("health report export enabled")
	}

	validator := validation.New(nil)
	svc := recordsvc.NewService(mongoRepo, validator, alerter, cfg.Health.AlertThreshold, baseLogger.Named("svc.records"))

	handler := handlers.NewFarmDataHandler(svc, baseLogger.Named("handlers.farmdata"))
	authMiddleware := middleware.Protect(cfg.Auth.JWTSecret, mongoRepo, baseLogger.Named("middleware.auth"))
	engine := router.New(handler, authMiddleware, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(cfg.Health, svc, mongoRepo, exporter, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

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
