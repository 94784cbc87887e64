package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/homegate/notify-pipeline/internal/domain"
	"github.com/homegate/notify-pipeline/internal/mailing"
	"github.com/homegate/notify-pipeline/internal/service/suppression"
)

// blockedRepo reports every address as suppressed.
type blockedRepo struct{}

func (blockedRepo) ActiveByEmail(_ context.Context, email string) ([]domain.SuppressionRecord, error) {
	return []domain.SuppressionRecord{{
		ID:              "rec-1",
		EmailAddress:    email,
		SuppressionType: domain.SuppressionComplaint,
		Reason:          "spam complaint",
		IsActive:        true,
		SuppressedAt:    time.Now().UTC(),
	}}, nil
}

func (blockedRepo) Insert(context.Context, *domain.SuppressionRecord) error     { return nil }
func (blockedRepo) Deactivate(context.Context, *domain.SuppressionRecord) error { return nil }
func (blockedRepo) ListActive(context.Context, int) ([]domain.SuppressionRecord, error) {
	return nil, nil
}
func (blockedRepo) AllActive(context.Context) ([]domain.SuppressionRecord, error) { return nil, nil }

// openRepo reports every address as sendable.
type openRepo struct{ blockedRepo }

func (openRepo) ActiveByEmail(context.Context, string) ([]domain.SuppressionRecord, error) {
	return nil, nil
}

type mockEmail struct {
	sent    int
	lastTo  string
	lastSub string
	err     error
}

func (m *mockEmail) SendEmail(_ context.Context, _, to, subject, _, _ string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.sent++
	m.lastTo = to
	m.lastSub = subject
	return "msg-123", nil
}

type mockSMS struct {
	sent int
	err  error
}

func (m *mockSMS) SendSMS(context.Context, string, string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.sent++
	return "sms-456", nil
}

func testTemplate() *domain.NotificationTemplate {
	return &domain.NotificationTemplate{
		EmailSubject:     "Tour request from {{ lead.name }}",
		EmailContentHTML: "<p>{{ lead.name }} wants a showing.</p>",
		SMSContent:       "{{ lead.name }} wants a showing.",
		Variables:        `["lead.name"]`,
	}
}

func TestDispatch_SuppressedRecipientSkipsSend(t *testing.T) {
	email := &mockEmail{}
	d := NewDispatcher(
		suppression.NewService(blockedRepo{}, nil),
		mailing.NewEngine(""),
		email, nil, "noreply@homegate.example",
	)

	res, err := d.Dispatch(context.Background(), testTemplate(), Recipient{Email: "blocked@example.com"},
		map[string]interface{}{"lead": map[string]interface{}{"name": "Jane"}})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if !res.Suppressed {
		t.Fatal("expected suppressed result")
	}
	if res.SuppressionReason != "spam complaint" {
		t.Errorf("reason = %q", res.SuppressionReason)
	}
	if email.sent != 0 {
		t.Error("suppressed recipient must not receive email")
	}
}

func TestDispatch_SendsEmailAndSMS(t *testing.T) {
	email := &mockEmail{}
	sms := &mockSMS{}
	d := NewDispatcher(
		suppression.NewService(openRepo{}, nil),
		mailing.NewEngine(""),
		email, sms, "noreply@homegate.example",
	)

	res, err := d.Dispatch(context.Background(), testTemplate(),
		Recipient{Email: "lead@example.com", Phone: "4155551212"},
		map[string]interface{}{"lead": map[string]interface{}{"name": "Jane"}})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	if res.MessageID != "msg-123" {
		t.Errorf("message id = %q", res.MessageID)
	}
	if res.SMSMessageID != "sms-456" {
		t.Errorf("sms message id = %q", res.SMSMessageID)
	}
	if email.lastTo != "lead@example.com" {
		t.Errorf("sent to %q", email.lastTo)
	}
	if email.lastSub != "Tour request from Jane" {
		t.Errorf("subject = %q", email.lastSub)
	}
	if res.Rendered == nil || res.Rendered.TextContent == "" {
		t.Error("expected rendered content in result")
	}
}

func TestDispatch_RenderErrorPropagates(t *testing.T) {
	email := &mockEmail{}
	d := NewDispatcher(
		suppression.NewService(openRepo{}, nil),
		mailing.NewEngine(""),
		email, nil, "noreply@homegate.example",
	)

	_, err := d.Dispatch(context.Background(), testTemplate(), Recipient{Email: "lead@example.com"},
		map[string]interface{}{})
	if err == nil {
		t.Fatal("expected validation error for missing payload variable")
	}
	var verr *mailing.ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("expected ValidationError, got %v", err)
	}
	if email.sent != 0 {
		t.Error("nothing should be sent when rendering fails")
	}
}

func TestDispatch_SMSFailureDoesNotFailDispatch(t *testing.T) {
	email := &mockEmail{}
	sms := &mockSMS{err: errors.New("carrier rejected")}
	d := NewDispatcher(
		suppression.NewService(openRepo{}, nil),
		mailing.NewEngine(""),
		email, sms, "noreply@homegate.example",
	)

	res, err := d.Dispatch(context.Background(), testTemplate(),
		Recipient{Email: "lead@example.com", Phone: "4155551212"},
		map[string]interface{}{"lead": map[string]interface{}{"name": "Jane"}})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if res.SMSMessageID != "" {
		t.Error("failed sms should leave no message id")
	}
	if email.sent != 1 {
		t.Error("email should still be delivered")
	}
}

func TestDispatch_EmailFailurePropagates(t *testing.T) {
	email := &mockEmail{err: errors.New("quota exceeded")}
	d := NewDispatcher(
		suppression.NewService(openRepo{}, nil),
		mailing.NewEngine(""),
		email, nil, "noreply@homegate.example",
	)

	_, err := d.Dispatch(context.Background(), testTemplate(), Recipient{Email: "lead@example.com"},
		map[string]interface{}{"lead": map[string]interface{}{"name": "Jane"}})
	if err == nil {
		t.Fatal("expected transport error to propagate")
	}
}
