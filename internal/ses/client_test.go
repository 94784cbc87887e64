package ses

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/homegate/notify-pipeline/internal/service/reputation"
)

var _ reputation.Provider = (*Client)(nil)

func TestFoldStatistics(t *testing.T) {
	day1 := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	results := []metricResult{
		{id: "q0_SEND", points: []metricPoint{{day1, 1000}, {day2, 500}}},
		{id: "q1_DELIVERY", points: []metricPoint{{day1, 960}, {day2, 495}}},
		{id: "q2_PERMANENT_BOUNCE", points: []metricPoint{{day1, 20}}},
		{id: "q3_TRANSIENT_BOUNCE", points: []metricPoint{{day1, 10}, {day2, 5}}},
		{id: "q4_COMPLAINT", points: []metricPoint{{day1, 2}}},
	}

	stats := foldStatistics(results)
	if len(stats) != 2 {
		t.Fatalf("expected 2 data points, got %d", len(stats))
	}

	first := stats[0]
	assert.Equal(t, day1, first.Timestamp)
	assert.Equal(t, int64(1000), first.DeliveryAttempts)
	assert.Equal(t, int64(30), first.Bounces)
	assert.Equal(t, int64(2), first.Complaints)
	// 1000 sends, 960 delivered, 30 bounced, 2 complained: 8 unaccounted.
	assert.Equal(t, int64(8), first.Rejects)

	second := stats[1]
	assert.Equal(t, day2, second.Timestamp)
	assert.Equal(t, int64(500), second.DeliveryAttempts)
	assert.Equal(t, int64(5), second.Bounces)
	assert.Equal(t, int64(0), second.Rejects)
}

func TestFoldStatistics_NegativeRejectGapClamps(t *testing.T) {
	at := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	stats := foldStatistics([]metricResult{
		{id: "q0_SEND", points: []metricPoint{{at, 100}}},
		{id: "q1_DELIVERY", points: []metricPoint{{at, 105}}},
	})

	if len(stats) != 1 {
		t.Fatalf("expected 1 data point, got %d", len(stats))
	}
	assert.Equal(t, int64(0), stats[0].Rejects)
}

func TestHasMetricSuffix(t *testing.T) {
	assert.True(t, hasMetricSuffix("q0_SEND", metricSend))
	assert.True(t, hasMetricSuffix("q2_PERMANENT_BOUNCE", metricPermanentBounce))
	// TRANSIENT_BOUNCE must not match the PERMANENT_BOUNCE query.
	assert.False(t, hasMetricSuffix("q2_PERMANENT_BOUNCE", metricTransientBounce))
	assert.False(t, hasMetricSuffix("SEND", metricSend))
}
