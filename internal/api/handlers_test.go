package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homegate/notify-pipeline/internal/domain"
	"github.com/homegate/notify-pipeline/internal/mailing"
	"github.com/homegate/notify-pipeline/internal/service/reputation"
	"github.com/homegate/notify-pipeline/internal/service/suppression"
)

// memRepo is an in-memory suppression repository.
type memRepo struct {
	records []*domain.SuppressionRecord
}

func (m *memRepo) ActiveByEmail(_ context.Context, email string) ([]domain.SuppressionRecord, error) {
	var out []domain.SuppressionRecord
	for _, rec := range m.records {
		if rec.EmailAddress == email && rec.IsActive {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (m *memRepo) Insert(_ context.Context, rec *domain.SuppressionRecord) error {
	cp := *rec
	m.records = append(m.records, &cp)
	return nil
}

func (m *memRepo) Deactivate(_ context.Context, rec *domain.SuppressionRecord) error {
	for _, stored := range m.records {
		if stored.ID == rec.ID {
			stored.IsActive = false
		}
	}
	return nil
}

func (m *memRepo) ListActive(_ context.Context, limit int) ([]domain.SuppressionRecord, error) {
	all, _ := m.AllActive(context.Background())
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (m *memRepo) AllActive(_ context.Context) ([]domain.SuppressionRecord, error) {
	var out []domain.SuppressionRecord
	for _, rec := range m.records {
		if rec.IsActive {
			out = append(out, *rec)
		}
	}
	return out, nil
}

// memStore is an in-memory metrics store.
type memStore struct {
	rows map[string]*domain.ReputationMetrics
}

func newMemStore() *memStore {
	return &memStore{rows: make(map[string]*domain.ReputationMetrics)}
}

func (m *memStore) UpsertDailyMetrics(_ context.Context, row *domain.ReputationMetrics) error {
	cp := *row
	m.rows[row.MetricDate] = &cp
	return nil
}

func (m *memStore) GetByDate(_ context.Context, date string) (*domain.ReputationMetrics, error) {
	row, ok := m.rows[date]
	if !ok {
		return nil, nil
	}
	cp := *row
	return &cp, nil
}

func (m *memStore) Recent(_ context.Context, days int) ([]domain.ReputationMetrics, error) {
	var out []domain.ReputationMetrics
	for _, row := range m.rows {
		out = append(out, *row)
	}
	if days > 0 && len(out) > days {
		out = out[:days]
	}
	return out, nil
}

// stubProvider serves fixed statistics.
type stubProvider struct {
	stats []domain.SendStatistic
}

func (p *stubProvider) GetQuota(context.Context) (domain.SendQuota, error) {
	return domain.SendQuota{SentLast24Hours: 100, Max24HourSend: 50000, MaxSendRate: 14}, nil
}

func (p *stubProvider) GetDeliveryStatistics(context.Context, time.Time, time.Time) ([]domain.SendStatistic, error) {
	return p.stats, nil
}

func newTestServer(t *testing.T) (*Server, *memRepo, *memStore) {
	t.Helper()
	repo := &memRepo{}
	store := newMemStore()
	provider := &stubProvider{stats: []domain.SendStatistic{{DeliveryAttempts: 1000, Bounces: 10}}}

	h := NewHandlers(
		suppression.NewService(repo, nil),
		reputation.NewService(provider, store),
		mailing.NewEngine("https://files.homegate.example"),
	)
	return NewServer(h), repo, store
}

func doRequest(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)
	return rr
}

func TestHealthCheck(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rr := doRequest(t, srv, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestSuppressionLifecycle(t *testing.T) {
	srv, _, _ := newTestServer(t)

	// Unknown address is sendable.
	rr := doRequest(t, srv, http.MethodGet, "/api/suppression/check/lead@example.com", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var check suppression.CheckResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &check))
	assert.False(t, check.Suppressed)

	// Suppress it.
	rr = doRequest(t, srv, http.MethodPost, "/api/suppression",
		`{"email_address":"Lead@Example.com","suppression_type":"COMPLAINT","reason":"spam complaint","source":"provider-notification"}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	// Now blocked, with the record's reason.
	rr = doRequest(t, srv, http.MethodGet, "/api/suppression/check/lead@example.com", "")
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &check))
	assert.True(t, check.Suppressed)
	assert.Equal(t, "spam complaint", check.Reason)

	// Stats reflect the record.
	rr = doRequest(t, srv, http.MethodGet, "/api/suppression/stats", "")
	var stats suppression.Stats
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.TotalSuppressed)
	assert.Equal(t, 1, stats.Complaints)

	// Reactivate and verify sendable again.
	rr = doRequest(t, srv, http.MethodPost, "/api/suppression/lead@example.com/reactivate",
		`{"actor_id":"admin-7"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	var react map[string]bool
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &react))
	assert.True(t, react["reactivated"])

	rr = doRequest(t, srv, http.MethodGet, "/api/suppression/check/lead@example.com", "")
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &check))
	assert.False(t, check.Suppressed)
}

func TestCreateSuppression_BadRequests(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rr := doRequest(t, srv, http.MethodPost, "/api/suppression", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doRequest(t, srv, http.MethodPost, "/api/suppression", `{"email_address":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestReactivate_UnknownAddress(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rr := doRequest(t, srv, http.MethodPost, "/api/suppression/ghost@example.com/reactivate", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var react map[string]bool
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &react))
	assert.False(t, react["reactivated"])
}

func TestReputationEndpoints(t *testing.T) {
	srv, _, _ := newTestServer(t)
	today := time.Now().UTC().Format("2006-01-02")

	// Nothing stored yet.
	rr := doRequest(t, srv, http.MethodGet, "/api/reputation/current", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	// On-demand refresh persists today's row.
	rr = doRequest(t, srv, http.MethodPost, "/api/reputation/refresh", "")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doRequest(t, srv, http.MethodGet, "/api/reputation/current", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var m domain.ReputationMetrics
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &m))
	assert.Equal(t, today, m.MetricDate)
	assert.Equal(t, int64(1000), m.TotalEmailsSent)

	rr = doRequest(t, srv, http.MethodGet, "/api/reputation/"+today, "")
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = doRequest(t, srv, http.MethodGet, "/api/reputation/not-a-date", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doRequest(t, srv, http.MethodGet, "/api/reputation/history?days=7", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var hist struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &hist))
	assert.Equal(t, 1, hist.Count)

	rr = doRequest(t, srv, http.MethodGet, "/api/reputation/alerts", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var alerts domain.AlertStatus
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &alerts))
	assert.Equal(t, 1.0, alerts.CurrentBounceRate)
}

func TestPreviewTemplate(t *testing.T) {
	srv, _, _ := newTestServer(t)

	body := `{
		"template": {
			"emailSubject": "Hello {{ lead.name }}",
			"emailContentHtml": "<p>Hi {{ lead.name }}</p>",
			"variables": "[\"lead.name\"]"
		},
		"payload": {"lead": {"name": "Jane"}}
	}`
	rr := doRequest(t, srv, http.MethodPost, "/api/templates/preview", body)
	require.Equal(t, http.StatusOK, rr.Code)

	var rendered domain.ProcessedTemplate
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rendered))
	assert.Equal(t, "Hello Jane", rendered.Subject)
}

func TestPreviewTemplate_MissingVariable(t *testing.T) {
	srv, _, _ := newTestServer(t)

	body := `{
		"template": {
			"emailSubject": "Hello {{ lead.name }}",
			"variables": "[\"lead.name\"]"
		},
		"payload": {}
	}`
	rr := doRequest(t, srv, http.MethodPost, "/api/templates/preview", body)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	var resp struct {
		MissingVariables []string `json:"missing_variables"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, []string{"lead.name"}, resp.MissingVariables)
}
