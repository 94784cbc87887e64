// Package mailing implements the notification template engine: Liquid-based
// rendering with a per-instance helper filter registry, required-variable
// validation, CSS inlining for mail-client portability, and output
// sanitization with hard size caps.
package mailing

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/osteele/liquid"

	"github.com/homegate/notify-pipeline/internal/domain"
)

// Hard caps bound downstream storage and transport cost.
const (
	maxSubjectLen = 200
	maxHTMLLen    = 100_000
	maxTextLen    = 50_000
)

// ValidationError is the single error class a caller must be prepared to
// catch: missing required variables or an unparseable template. Rendering
// with missing data would silently ship broken content, so this one is
// raised rather than swallowed.
type ValidationError struct {
	MissingVariables []string
	Message          string
}

func (e *ValidationError) Error() string {
	if len(e.MissingVariables) > 0 {
		return "missing required template variables: " + strings.Join(e.MissingVariables, ", ")
	}
	return e.Message
}

// Engine renders notification templates. Each instance owns its own Liquid
// engine and filter registry; nothing is registered globally, so helper
// identity and registration order are deterministic and testable.
type Engine struct {
	liquid  *liquid.Engine
	baseURL string
}

// NewEngine creates a template engine. baseURL resolves relative file links
// in templates to absolute URLs; it may be empty.
func NewEngine(baseURL string) *Engine {
	e := &Engine{
		liquid:  liquid.NewEngine(),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
	e.registerFilters()
	return e
}

// Render validates the payload against the template's declared variables and
// produces the three channel-ready strings. The unified-vs-legacy shape is
// decided once, up front, never re-checked per field.
func (e *Engine) Render(tmpl *domain.NotificationTemplate, payload map[string]interface{}) (*domain.ProcessedTemplate, error) {
	required, err := parseRequiredVariables(tmpl.Variables)
	if err != nil {
		return nil, &ValidationError{Message: fmt.Sprintf("invalid variables declaration: %v", err)}
	}

	var missing []string
	for _, path := range required {
		if !pathExists(path, payload) {
			missing = append(missing, path)
		}
	}
	if len(missing) > 0 {
		return nil, &ValidationError{MissingVariables: missing}
	}

	var subjectSrc, htmlSrc, textSrc string
	if tmpl.IsUnified() {
		subjectSrc = tmpl.EmailSubject
		htmlSrc = tmpl.EmailContentHTML
		textSrc = tmpl.SMSContent
	} else {
		subjectSrc = tmpl.Subject
		htmlSrc = tmpl.ContentHTML
		if htmlSrc == "" {
			htmlSrc = tmpl.Content
		}
		textSrc = tmpl.ContentText
	}

	subject, err := e.renderString(subjectSrc, payload)
	if err != nil {
		return nil, &ValidationError{Message: fmt.Sprintf("rendering subject: %v", err)}
	}
	htmlOut, err := e.renderString(htmlSrc, payload)
	if err != nil {
		return nil, &ValidationError{Message: fmt.Sprintf("rendering html body: %v", err)}
	}
	textOut, err := e.renderString(textSrc, payload)
	if err != nil {
		return nil, &ValidationError{Message: fmt.Sprintf("rendering text body: %v", err)}
	}

	return &domain.ProcessedTemplate{
		Subject:     sanitizeSubject(subject),
		HTMLContent: truncate(InlineStyles(htmlOut), maxHTMLLen),
		TextContent: truncate(normalizeText(textOut), maxTextLen),
	}, nil
}

func (e *Engine) renderString(src string, bindings map[string]interface{}) (string, error) {
	if src == "" {
		return "", nil
	}
	return e.liquid.ParseAndRenderString(src, bindings)
}

// parseRequiredVariables decodes the JSON-encoded array of dotted-path
// variable names. An empty declaration means no required variables.
func parseRequiredVariables(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var names []string
	if err := json.Unmarshal([]byte(raw), &names); err != nil {
		return nil, err
	}
	return names, nil
}

// pathExists walks a dotted path through nested maps. A variable "a.b.c" is
// missing if any segment along the path is undefined, not merely if the leaf
// is falsy.
func pathExists(varPath string, payload map[string]interface{}) bool {
	parts := strings.Split(varPath, ".")

	var current interface{} = payload
	for _, part := range parts {
		m, ok := current.(map[string]interface{})
		if !ok {
			return false
		}
		val, ok := m[part]
		if !ok {
			return false
		}
		current = val
	}
	return true
}

var whitespaceRunRe = regexp.MustCompile(`\s+`)

func sanitizeSubject(s string) string {
	s = whitespaceRunRe.ReplaceAllString(s, " ")
	return truncate(strings.TrimSpace(s), maxSubjectLen)
}

var brTagRe = regexp.MustCompile(`(?i)<br\s*/?>`)

// normalizeText converts markup and escaped line breaks to real newlines.
// Authoring tools produce both literal <br> tags and literal backslash-n
// sequences, so both forms are handled.
func normalizeText(s string) string {
	s = brTagRe.ReplaceAllString(s, "\n")
	s = strings.ReplaceAll(s, `\n`, "\n")
	return s
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
