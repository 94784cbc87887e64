// The daily-metrics binary runs one reputation metrics pass and exits.
// It is meant to be driven by an external scheduler (cron, EventBridge);
// the pipeline itself performs no scheduling, and overlapping runs for the
// same date are last-write-wins.
package main

import (
	"context"
	"os"
	"time"

	"github.com/homegate/notify-pipeline/internal/config"
	"github.com/homegate/notify-pipeline/internal/pkg/logger"
	"github.com/homegate/notify-pipeline/internal/service/reputation"
	"github.com/homegate/notify-pipeline/internal/ses"
	"github.com/homegate/notify-pipeline/internal/storage"
)

func main() {
	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		logger.Error("failed to load config", "error", err.Error())
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	sesClient, err := ses.NewClient(ctx, cfg.SES)
	if err != nil {
		logger.Error("failed to create SES client", "error", err.Error())
		os.Exit(1)
	}

	var store reputation.Store
	if cfg.Storage.MetricsTable != "" {
		dynamoClient, err := storage.NewClient(ctx, cfg.Storage.AWSRegion, cfg.Storage.GetAWSProfile())
		if err != nil {
			logger.Error("failed to create DynamoDB client", "error", err.Error())
			os.Exit(1)
		}
		store = storage.NewMetricsStore(dynamoClient, cfg.Storage.MetricsTable)
	} else {
		logger.Warn("metrics table not configured, computing without persistence")
	}

	svc := reputation.NewService(sesClient, store)
	m := svc.UpdateDailyMetrics(ctx)

	logger.Info("daily metrics run complete",
		"date", m.MetricDate,
		"score", m.ReputationScore,
		"emails_sent", m.TotalEmailsSent,
		"bounce_rate", m.BounceRate,
		"complaint_rate", m.ComplaintRate,
		"bounce_alert", m.BounceRateAlert,
		"complaint_alert", m.ComplaintRateAlert)
}
