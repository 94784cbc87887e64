package mailing

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Urgency lookups are case-insensitive with a defined fallback for
// unrecognized or missing values.
var urgencyColors = map[string]string{
	"urgent": "#dc2626",
	"high":   "#dc2626",
	"medium": "#f59e0b",
	"low":    "#16a34a",
}

var urgencyLabels = map[string]string{
	"urgent": "Urgent",
	"high":   "Urgent",
	"medium": "Standard",
	"low":    "Low Priority",
}

const (
	fallbackUrgencyColor = "#6b7280"
	fallbackUrgencyLabel = "Standard"
)

var tenDigitRe = regexp.MustCompile(`^\d{10}$`)

// registerFilters adds the notification helper library to this engine's
// Liquid instance. Filters are pure: no side effects beyond formatting.
func (e *Engine) registerFilters() {
	eng := e.liquid

	// Date formatting with short/time/default variants:
	// {{ tour.scheduledAt | format_date: "short" }}
	eng.RegisterFilter("format_date", func(value interface{}, variant func(string) string) string {
		t, ok := coerceTime(value)
		if !ok {
			return fmt.Sprintf("%v", value)
		}
		switch variant("default") {
		case "short":
			return t.Format("Jan 2, 2006")
		case "time":
			return t.Format("3:04 PM")
		default:
			return t.Format("January 2, 2006 at 3:04 PM")
		}
	})

	// Uppercase: {{ listing.status | upper }}
	eng.RegisterFilter("upper", strings.ToUpper)

	// Equality test: {% if request.type | eq: "showing" %}
	eng.RegisterFilter("eq", func(a, b interface{}) bool {
		return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
	})

	// Default value: {{ lead.firstName | default: "there" }}
	eng.RegisterFilter("default", func(value interface{}, defaultVal string) interface{} {
		if value == nil {
			return defaultVal
		}
		strVal := fmt.Sprintf("%v", value)
		if strVal == "" || strVal == "<nil>" {
			return defaultVal
		}
		return value
	})

	// List joining with a configurable separator:
	// {{ listing.features | join_list: " · " }}
	eng.RegisterFilter("join_list", func(value interface{}, sep func(string) string) string {
		separator := sep(", ")
		switch v := value.(type) {
		case []string:
			return strings.Join(v, separator)
		case []interface{}:
			parts := make([]string, 0, len(v))
			for _, item := range v {
				parts = append(parts, fmt.Sprintf("%v", item))
			}
			return strings.Join(parts, separator)
		case nil:
			return ""
		default:
			return fmt.Sprintf("%v", value)
		}
	})

	// Urgency → color: {{ request.urgency | urgency_color }}
	eng.RegisterFilter("urgency_color", func(value interface{}) string {
		if c, ok := urgencyColors[normalizeUrgency(value)]; ok {
			return c
		}
		return fallbackUrgencyColor
	})

	// Urgency → label: {{ request.urgency | urgency_label }}
	eng.RegisterFilter("urgency_label", func(value interface{}) string {
		if l, ok := urgencyLabels[normalizeUrgency(value)]; ok {
			return l
		}
		return fallbackUrgencyLabel
	})

	// Phone formatting: 10-digit numbers become (XXX) XXX-XXXX, anything
	// else passes through unchanged.
	eng.RegisterFilter("format_phone", func(value interface{}) string {
		s := strings.TrimSpace(fmt.Sprintf("%v", value))
		if tenDigitRe.MatchString(s) {
			return fmt.Sprintf("(%s) %s-%s", s[:3], s[3:6], s[6:])
		}
		return s
	})

	// Parse a JSON array from a string, [] on malformed input:
	// {% for tag in lead.tags | parse_json_list %}
	eng.RegisterFilter("parse_json_list", func(value interface{}) []interface{} {
		raw := strings.TrimSpace(fmt.Sprintf("%v", value))
		if raw == "" {
			return []interface{}{}
		}
		var items []interface{}
		if err := json.Unmarshal([]byte(raw), &items); err != nil {
			return []interface{}{}
		}
		return items
	})

	// File link renderers: {{ request.files | file_links }} for HTML,
	// {{ request.files | file_links_text }} for the plain-text channel.
	eng.RegisterFilter("file_links", func(value interface{}) string {
		return e.renderFileLinksHTML(fmt.Sprintf("%v", value))
	})
	eng.RegisterFilter("file_links_text", func(value interface{}) string {
		return e.renderFileLinksText(fmt.Sprintf("%v", value))
	})
}

func normalizeUrgency(value interface{}) string {
	if value == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(fmt.Sprintf("%v", value)))
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func coerceTime(value interface{}) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, true
	case *time.Time:
		if v == nil {
			return time.Time{}, false
		}
		return *v, true
	case string:
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}
