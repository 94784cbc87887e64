package domain

import (
	"strings"
	"time"
)

// SuppressionType enumerates why an address must not receive mail.
type SuppressionType string

const (
	SuppressionBounce    SuppressionType = "BOUNCE"
	SuppressionComplaint SuppressionType = "COMPLAINT"
	SuppressionManual    SuppressionType = "MANUAL"
)

// SuppressionSource indicates where the suppression signal originated.
type SuppressionSource string

const (
	SourceProviderNotification SuppressionSource = "provider-notification"
	SourceAdminAction          SuppressionSource = "admin-action"
	SourceUserRequest          SuppressionSource = "user-request"
)

// Bounce permanence classifications as reported by the provider.
const (
	BouncePermanent = "Permanent"
	BounceTransient = "Transient"
)

// SuppressionRecord is one suppression event for an address. An address may
// accumulate multiple historical rows; it is suppressed while at least one
// row is active. Rows are never physically deleted — reactivation flips
// IsActive to false so the re-suppression history is preserved.
type SuppressionRecord struct {
	ID              string            `json:"id" dynamodbav:"ID"`
	EmailAddress    string            `json:"email_address" dynamodbav:"EmailAddress"`
	SuppressionType SuppressionType   `json:"suppression_type" dynamodbav:"SuppressionType"`
	Reason          string            `json:"reason" dynamodbav:"Reason"`
	BounceType      string            `json:"bounce_type,omitempty" dynamodbav:"BounceType,omitempty"`
	BounceSubType   string            `json:"bounce_sub_type,omitempty" dynamodbav:"BounceSubType,omitempty"`
	Source          SuppressionSource `json:"source" dynamodbav:"Source"`
	IsActive        bool              `json:"is_active" dynamodbav:"IsActive"`
	SuppressedAt    time.Time         `json:"suppressed_at" dynamodbav:"SuppressedAt"`
	CreatedAt       time.Time         `json:"created_at" dynamodbav:"CreatedAt"`
	UpdatedAt       time.Time         `json:"updated_at" dynamodbav:"UpdatedAt"`
	CreatedBy       string            `json:"created_by,omitempty" dynamodbav:"CreatedBy,omitempty"`
	UpdatedBy       string            `json:"updated_by,omitempty" dynamodbav:"UpdatedBy,omitempty"`
}

// NormalizeEmail lowercases and trims an address. Every lookup and every
// stored record uses the normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
