// Package ses adapts AWS SES v2 to the pipeline's provider and transport
// contracts: VDM metric queries feed the reputation monitor, GetAccount
// supplies quota state, and SendEmail carries rendered notifications.
package ses

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	appconfig "github.com/homegate/notify-pipeline/internal/config"
	"github.com/homegate/notify-pipeline/internal/domain"
)

// VDM metric types queried per statistics window.
const (
	metricSend            = "SEND"
	metricDelivery        = "DELIVERY"
	metricPermanentBounce = "PERMANENT_BOUNCE"
	metricTransientBounce = "TRANSIENT_BOUNCE"
	metricComplaint       = "COMPLAINT"
)

func statisticsMetrics() []string {
	return []string{
		metricSend,
		metricDelivery,
		metricPermanentBounce,
		metricTransientBounce,
		metricComplaint,
	}
}

// Client is an AWS SES v2 API client.
type Client struct {
	client *sesv2.Client
	region string
}

// NewClient creates an SES client with static credentials when configured,
// the default chain otherwise.
func NewClient(ctx context.Context, cfg appconfig.SESConfig) (*Client, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	return &Client{
		client: sesv2.NewFromConfig(awsCfg),
		region: cfg.Region,
	}, nil
}

// GetQuota returns the account's current sending quota state.
func (c *Client) GetQuota(ctx context.Context) (domain.SendQuota, error) {
	account, err := c.client.GetAccount(ctx, &sesv2.GetAccountInput{})
	if err != nil {
		return domain.SendQuota{}, fmt.Errorf("getting account: %w", err)
	}
	if account.SendQuota == nil {
		return domain.SendQuota{}, nil
	}
	return domain.SendQuota{
		SentLast24Hours: account.SendQuota.SentLast24Hours,
		Max24HourSend:   account.SendQuota.Max24HourSend,
		MaxSendRate:     account.SendQuota.MaxSendRate,
	}, nil
}

// GetDeliveryStatistics fetches the VDM metrics for [from, to] and folds
// them into per-timestamp data points. SES reports no reject metric, so
// rejects are derived as the gap between sends and accounted outcomes.
func (c *Client) GetDeliveryStatistics(ctx context.Context, from, to time.Time) ([]domain.SendStatistic, error) {
	metrics := statisticsMetrics()
	queries := make([]types.BatchGetMetricDataQuery, 0, len(metrics))
	for i, metric := range metrics {
		queries = append(queries, types.BatchGetMetricDataQuery{
			Id:        aws.String(fmt.Sprintf("q%d_%s", i, metric)),
			Namespace: types.MetricNamespaceVdm,
			Metric:    types.Metric(metric),
			StartDate: aws.Time(from),
			EndDate:   aws.Time(to),
		})
	}

	output, err := c.client.BatchGetMetricData(ctx, &sesv2.BatchGetMetricDataInput{
		Queries: queries,
	})
	if err != nil {
		return nil, fmt.Errorf("fetching delivery statistics: %w", err)
	}

	results := make([]metricResult, 0, len(output.Results))
	for _, r := range output.Results {
		if r.Id == nil {
			continue
		}
		mr := metricResult{id: *r.Id}
		for i, ts := range r.Timestamps {
			if i >= len(r.Values) {
				break
			}
			mr.points = append(mr.points, metricPoint{at: ts, value: int64(r.Values[i])})
		}
		results = append(results, mr)
	}

	return foldStatistics(results), nil
}

type metricPoint struct {
	at    time.Time
	value int64
}

type metricResult struct {
	id     string
	points []metricPoint
}

// foldStatistics merges per-metric timeseries into per-timestamp statistics.
func foldStatistics(results []metricResult) []domain.SendStatistic {
	type bucket struct {
		send, delivery, bounces, complaints int64
	}
	buckets := make(map[time.Time]*bucket)

	get := func(at time.Time) *bucket {
		at = at.UTC()
		b, ok := buckets[at]
		if !ok {
			b = &bucket{}
			buckets[at] = b
		}
		return b
	}

	for _, r := range results {
		for _, p := range r.points {
			b := get(p.at)
			switch {
			case hasMetricSuffix(r.id, metricSend):
				b.send += p.value
			case hasMetricSuffix(r.id, metricDelivery):
				b.delivery += p.value
			case hasMetricSuffix(r.id, metricPermanentBounce), hasMetricSuffix(r.id, metricTransientBounce):
				b.bounces += p.value
			case hasMetricSuffix(r.id, metricComplaint):
				b.complaints += p.value
			}
		}
	}

	stats := make([]domain.SendStatistic, 0, len(buckets))
	for at, b := range buckets {
		rejects := b.send - b.delivery - b.bounces - b.complaints
		if rejects < 0 {
			rejects = 0
		}
		stats = append(stats, domain.SendStatistic{
			Timestamp:        at,
			DeliveryAttempts: b.send,
			Bounces:          b.bounces,
			Complaints:       b.complaints,
			Rejects:          rejects,
		})
	}
	sort.Slice(stats, func(i, j int) bool {
		return stats[i].Timestamp.Before(stats[j].Timestamp)
	})
	return stats
}

// hasMetricSuffix matches a query ID of the form q<N>_<METRIC>. DELIVERY is
// checked before the bounce metrics by the caller, so the SEND/DELIVERY
// suffix overlap with nothing.
func hasMetricSuffix(id, metric string) bool {
	return len(id) >= len(metric)+1 && id[len(id)-len(metric)-1:] == "_"+metric
}
