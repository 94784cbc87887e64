package domain

// NotificationTemplate is the template record handed to the pipeline by the
// external signal-matching service. Two shapes exist in the wild: the
// unified shape (EmailSubject / EmailContentHTML / SMSContent) and the
// legacy shape (Subject / Content / ContentHTML / ContentText). A template
// uses one shape or the other; the unified fields win when present.
//
// Variables, when set, is a JSON-encoded array of dotted-path variable names
// (e.g. "agentInfo.fullName") that must be present in the render payload.
type NotificationTemplate struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`

	// Unified shape.
	EmailSubject     string `json:"emailSubject,omitempty"`
	EmailContentHTML string `json:"emailContentHtml,omitempty"`
	SMSContent       string `json:"smsContent,omitempty"`

	// Legacy shape.
	Subject     string `json:"subject,omitempty"`
	Content     string `json:"content,omitempty"`
	ContentHTML string `json:"contentHtml,omitempty"`
	ContentText string `json:"contentText,omitempty"`

	Variables string `json:"variables,omitempty"`
}

// IsUnified reports which shape the template uses. The decision is made once
// per render; a template must not mix both shapes within a single render.
func (t *NotificationTemplate) IsUnified() bool {
	return t.EmailSubject != "" || t.EmailContentHTML != ""
}

// ProcessedTemplate holds the three channel-ready strings produced by one
// render call. It is returned to the caller for dispatch and never persisted.
type ProcessedTemplate struct {
	Subject     string `json:"subject"`
	HTMLContent string `json:"htmlContent"`
	TextContent string `json:"textContent"`
}
