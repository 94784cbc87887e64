package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/homegate/notify-pipeline/internal/api"
	"github.com/homegate/notify-pipeline/internal/cache"
	"github.com/homegate/notify-pipeline/internal/config"
	"github.com/homegate/notify-pipeline/internal/mailing"
	"github.com/homegate/notify-pipeline/internal/pkg/logger"
	"github.com/homegate/notify-pipeline/internal/service/reputation"
	"github.com/homegate/notify-pipeline/internal/service/suppression"
	"github.com/homegate/notify-pipeline/internal/ses"
	"github.com/homegate/notify-pipeline/internal/storage"
)

func main() {
	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		logger.Error("failed to load config", "error", err.Error())
		os.Exit(1)
	}

	ctx := context.Background()

	sesClient, err := ses.NewClient(ctx, cfg.SES)
	if err != nil {
		logger.Error("failed to create SES client", "error", err.Error())
		os.Exit(1)
	}

	// Storage is optional per table: a missing table name disables that
	// component rather than failing startup.
	var suppRepo suppression.Repository
	var metricsStore reputation.Store
	if cfg.Storage.SuppressionTable != "" || cfg.Storage.MetricsTable != "" {
		dynamoClient, err := storage.NewClient(ctx, cfg.Storage.AWSRegion, cfg.Storage.GetAWSProfile())
		if err != nil {
			logger.Error("failed to create DynamoDB client", "error", err.Error())
			os.Exit(1)
		}
		if cfg.Storage.SuppressionTable != "" {
			suppRepo = storage.NewSuppressionStore(dynamoClient, cfg.Storage.SuppressionTable)
		} else {
			logger.Warn("suppression table not configured, suppression filter disabled")
		}
		if cfg.Storage.MetricsTable != "" {
			metricsStore = storage.NewMetricsStore(dynamoClient, cfg.Storage.MetricsTable)
		} else {
			logger.Warn("metrics table not configured, reputation snapshots disabled")
		}
	} else {
		logger.Warn("no storage tables configured, suppression and reputation persistence disabled")
	}

	var suppCache suppression.Cache
	if cfg.Cache.Enabled {
		c := cache.New(cfg.Cache.Addr, cfg.Cache.Password, cfg.Cache.DB, cfg.Cache.TTL())
		defer c.Close()
		suppCache = c
		logger.Info("suppression cache enabled", "addr", cfg.Cache.Addr)
	}

	suppSvc := suppression.NewService(suppRepo, suppCache)
	repSvc := reputation.NewService(sesClient, metricsStore)
	engine := mailing.NewEngine(cfg.Sending.BaseURL)

	handlers := api.NewHandlers(suppSvc, repSvc, engine)
	server := api.NewServer(handlers)

	addr := fmt.Sprintf("%s:%d", cfg.Server.GetHost(), cfg.Server.Port)
	go func() {
		logger.Info("operator API listening", "addr", addr)
		if err := server.ListenAndServe(addr); err != nil {
			logger.Error("server stopped", "error", err.Error())
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err.Error())
	}
}
