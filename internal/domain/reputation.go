package domain

import "time"

// ReputationMetrics is the daily sender-health snapshot, keyed by calendar
// date (YYYY-MM-DD). A scheduled run upserts the row for the current date;
// running twice on the same day overwrites rather than appends.
type ReputationMetrics struct {
	MetricDate         string    `json:"metric_date" dynamodbav:"MetricDate"`
	TotalEmailsSent    int64     `json:"total_emails_sent" dynamodbav:"TotalEmailsSent"`
	TotalBounces       int64     `json:"total_bounces" dynamodbav:"TotalBounces"`
	TotalComplaints    int64     `json:"total_complaints" dynamodbav:"TotalComplaints"`
	BounceRate         float64   `json:"bounce_rate" dynamodbav:"BounceRate"`
	ComplaintRate      float64   `json:"complaint_rate" dynamodbav:"ComplaintRate"`
	DeliveryRate       float64   `json:"delivery_rate" dynamodbav:"DeliveryRate"`
	ReputationScore    int       `json:"reputation_score" dynamodbav:"ReputationScore"`
	SendingQuotaUsed   float64   `json:"sending_quota_used" dynamodbav:"SendingQuotaUsed"`
	SendingQuotaMax    float64   `json:"sending_quota_max" dynamodbav:"SendingQuotaMax"`
	SendRateMax        float64   `json:"send_rate_max" dynamodbav:"SendRateMax"`
	BounceRateAlert    bool      `json:"bounce_rate_alert" dynamodbav:"BounceRateAlert"`
	ComplaintRateAlert bool      `json:"complaint_rate_alert" dynamodbav:"ComplaintRateAlert"`
	UpdatedAt          time.Time `json:"updated_at" dynamodbav:"UpdatedAt"`
}

// SendStatistic is one provider-reported data point in a rolling delivery
// statistics window. Points are aggregated into a day's ReputationMetrics
// and are not persisted individually.
type SendStatistic struct {
	Timestamp        time.Time `json:"timestamp"`
	DeliveryAttempts int64     `json:"delivery_attempts"`
	Bounces          int64     `json:"bounces"`
	Complaints       int64     `json:"complaints"`
	Rejects          int64     `json:"rejects"`
}

// SendQuota is the provider's current quota state for the sending identity.
type SendQuota struct {
	SentLast24Hours float64 `json:"sent_last_24_hours"`
	Max24HourSend   float64 `json:"max_24_hour_send"`
	MaxSendRate     float64 `json:"max_send_rate"`
}

// AlertStatus is the lightweight on-demand alert check computed from fresh
// provider statistics without persisting anything.
type AlertStatus struct {
	BounceRateAlert      bool    `json:"bounce_rate_alert"`
	ComplaintRateAlert   bool    `json:"complaint_rate_alert"`
	CurrentBounceRate    float64 `json:"current_bounce_rate"`
	CurrentComplaintRate float64 `json:"current_complaint_rate"`
}
