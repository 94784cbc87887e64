// Package pipeline wires the suppression filter, template engine, and
// transport into the per-notification dispatch flow: check the recipient,
// render the template, hand the channel-ready content to the transport.
package pipeline

import (
	"context"
	"fmt"

	"github.com/homegate/notify-pipeline/internal/domain"
	"github.com/homegate/notify-pipeline/internal/mailing"
	"github.com/homegate/notify-pipeline/internal/pkg/logger"
	"github.com/homegate/notify-pipeline/internal/service/suppression"
)

// EmailTransport delivers one rendered email and returns the provider's
// message ID.
type EmailTransport interface {
	SendEmail(ctx context.Context, from, to, subject, htmlBody, textBody string) (string, error)
}

// SMSTransport delivers one text message and returns the provider's
// message ID.
type SMSTransport interface {
	SendSMS(ctx context.Context, to, body string) (string, error)
}

// Recipient is the resolved delivery target for one notification.
type Recipient struct {
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

// Result reports what happened to one candidate notification.
type Result struct {
	Suppressed        bool                      `json:"suppressed"`
	SuppressionReason string                    `json:"suppression_reason,omitempty"`
	MessageID         string                    `json:"message_id,omitempty"`
	SMSMessageID      string                    `json:"sms_message_id,omitempty"`
	Rendered          *domain.ProcessedTemplate `json:"rendered,omitempty"`
}

// Dispatcher runs the dispatch flow for candidate notifications.
type Dispatcher struct {
	filter *suppression.Service
	engine *mailing.Engine
	email  EmailTransport
	sms    SMSTransport
	from   string
}

// NewDispatcher assembles a dispatcher. sms may be nil when no SMS
// transport is configured; SMS content is then rendered but not sent.
func NewDispatcher(filter *suppression.Service, engine *mailing.Engine, email EmailTransport, sms SMSTransport, fromAddress string) *Dispatcher {
	return &Dispatcher{
		filter: filter,
		engine: engine,
		email:  email,
		sms:    sms,
		from:   fromAddress,
	}
}

// Dispatch runs one notification through the pipeline. A suppressed
// recipient yields a Result with Suppressed set and no error: suppression
// is an outcome, not a failure. Render errors propagate because shipping a
// template with missing data would silently send broken content.
func (d *Dispatcher) Dispatch(ctx context.Context, tmpl *domain.NotificationTemplate, rcpt Recipient, payload map[string]interface{}) (*Result, error) {
	check := d.filter.IsSuppressed(ctx, rcpt.Email)
	if check.Suppressed {
		logger.Info("notification skipped, recipient suppressed",
			"email", logger.RedactEmail(rcpt.Email),
			"type", string(check.SuppressionType))
		return &Result{
			Suppressed:        true,
			SuppressionReason: check.Reason,
		}, nil
	}

	rendered, err := d.engine.Render(tmpl, payload)
	if err != nil {
		return nil, fmt.Errorf("rendering template: %w", err)
	}

	result := &Result{Rendered: rendered}

	if d.email != nil && rcpt.Email != "" {
		id, err := d.email.SendEmail(ctx, d.from, rcpt.Email, rendered.Subject, rendered.HTMLContent, rendered.TextContent)
		if err != nil {
			return nil, fmt.Errorf("sending email: %w", err)
		}
		result.MessageID = id
	}

	if d.sms != nil && rcpt.Phone != "" && rendered.TextContent != "" {
		id, err := d.sms.SendSMS(ctx, rcpt.Phone, rendered.TextContent)
		if err != nil {
			// Email already went out; an SMS failure downgrades to a log line.
			logger.Error("sms delivery failed", "error", err.Error())
		} else {
			result.SMSMessageID = id
		}
	}

	return result, nil
}
