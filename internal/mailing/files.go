package mailing

import (
	"encoding/json"
	"fmt"
	"html"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/homegate/notify-pipeline/internal/pkg/logger"
)

// fileLink is one entry of a template's file list. Entries arrive either as
// bare URL strings or as objects with url/type/name fields.
type fileLink struct {
	URL  string
	Type string
	Name string
}

var imageExts = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "gif": true,
	"webp": true, "svg": true, "bmp": true,
}

var videoExts = map[string]bool{
	"mp4": true, "mov": true, "avi": true, "webm": true,
	"mkv": true, "m4v": true,
}

// Upload filenames carry a numeric timestamp prefix from the upload service;
// it is stripped for display only.
var numericPrefixRe = regexp.MustCompile(`^\d+[-_]`)

func parseFileList(raw string) ([]fileLink, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "<nil>" {
		return nil, nil
	}

	var entries []interface{}
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, err
	}

	links := make([]fileLink, 0, len(entries))
	for _, entry := range entries {
		switch v := entry.(type) {
		case string:
			if v != "" {
				links = append(links, fileLink{URL: v})
			}
		case map[string]interface{}:
			var l fileLink
			if s, ok := v["url"].(string); ok {
				l.URL = s
			}
			if s, ok := v["type"].(string); ok {
				l.Type = s
			}
			if s, ok := v["name"].(string); ok {
				l.Name = s
			}
			if l.URL != "" {
				links = append(links, l)
			}
		}
	}
	return links, nil
}

// resolveURL makes a file URL absolute: already-absolute URLs pass through,
// relative ones are prefixed with the configured sending-domain base.
func (e *Engine) resolveURL(u string) string {
	if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return u
	}
	if e.baseURL == "" {
		return u
	}
	return e.baseURL + "/" + strings.TrimLeft(u, "/")
}

// classifyFile buckets a link into image, video, or document — by explicit
// type hint first, extension pattern otherwise.
func classifyFile(l fileLink) string {
	switch strings.ToLower(strings.TrimSpace(l.Type)) {
	case "image":
		return "image"
	case "video":
		return "video"
	case "document":
		return "document"
	}

	ext := strings.ToLower(strings.TrimPrefix(path.Ext(urlPath(l.URL)), "."))
	switch {
	case imageExts[ext]:
		return "image"
	case videoExts[ext]:
		return "video"
	default:
		return "document"
	}
}

func displayName(l fileLink) string {
	if l.Name != "" {
		return l.Name
	}
	base := path.Base(urlPath(l.URL))
	if unescaped, err := url.PathUnescape(base); err == nil {
		base = unescaped
	}
	base = numericPrefixRe.ReplaceAllString(base, "")
	if base == "" || base == "." || base == "/" {
		return "file"
	}
	return base
}

func urlPath(raw string) string {
	if u, err := url.Parse(raw); err == nil && u.Path != "" {
		return u.Path
	}
	return raw
}

// renderFileLinksHTML renders a JSON file list as email-safe markup: inline
// thumbnails for images, placeholder tiles with captions for videos and
// documents. Malformed input renders nothing — user-authored data must not
// block delivery of the surrounding notification.
func (e *Engine) renderFileLinksHTML(raw string) string {
	links, err := parseFileList(raw)
	if err != nil {
		logger.Warn("template file list is not valid JSON, rendering empty fragment", "error", err.Error())
		return ""
	}
	if len(links) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(`<div style="margin:12px 0;">`)
	for _, l := range links {
		abs := e.resolveURL(l.URL)
		name := html.EscapeString(displayName(l))
		switch classifyFile(l) {
		case "image":
			fmt.Fprintf(&b,
				`<div style="display:inline-block;margin:4px;"><a href="%s"><img src="%s" alt="%s" style="max-width:200px;max-height:150px;border-radius:4px;"/></a></div>`,
				abs, abs, name)
		case "video":
			fmt.Fprintf(&b,
				`<div style="display:inline-block;margin:4px;text-align:center;"><a href="%s" style="text-decoration:none;"><div style="width:200px;height:120px;background:#1f2937;color:#ffffff;line-height:120px;text-align:center;border-radius:4px;font-size:32px;">&#9658;</div><span style="font-size:12px;color:#374151;">%s</span></a></div>`,
				abs, name)
		default:
			fmt.Fprintf(&b,
				`<div style="display:inline-block;margin:4px;text-align:center;"><a href="%s" style="text-decoration:none;"><div style="width:200px;height:120px;background:#e5e7eb;color:#374151;line-height:120px;text-align:center;border-radius:4px;font-size:32px;">&#128196;</div><span style="font-size:12px;color:#374151;">%s</span></a></div>`,
				abs, name)
		}
	}
	b.WriteString("</div>")
	return b.String()
}

// renderFileLinksText renders the same list for the plain-text channel as
// "• filename: url" lines. This is the one helper whose failure mode is a
// visible in-band message: the output is directly user-facing.
func (e *Engine) renderFileLinksText(raw string) string {
	links, err := parseFileList(raw)
	if err != nil {
		return "[attached files could not be displayed]"
	}
	if len(links) == 0 {
		return "No files attached"
	}

	lines := make([]string, 0, len(links))
	for _, l := range links {
		lines = append(lines, fmt.Sprintf("• %s: %s", displayName(l), e.resolveURL(l.URL)))
	}
	return strings.Join(lines, "\n")
}
