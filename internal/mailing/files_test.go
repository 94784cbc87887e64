package mailing

import (
	"strings"
	"testing"
)

func TestFileLinksHTML_ImageThumbnail(t *testing.T) {
	e := NewEngine("")
	out := e.renderFileLinksHTML(`["https://cdn.example.com/a.jpg"]`)

	if !strings.Contains(out, "<img") {
		t.Fatalf("expected inline thumbnail, got %q", out)
	}
	if !strings.Contains(out, `src="https://cdn.example.com/a.jpg"`) {
		t.Errorf("thumbnail should point at the file URL: %q", out)
	}
	if !strings.Contains(out, "max-width:200px") {
		t.Errorf("thumbnail is missing its size cap: %q", out)
	}
}

func TestFileLinksHTML_VideoAndDocumentTiles(t *testing.T) {
	e := NewEngine("")
	out := e.renderFileLinksHTML(`["https://cdn.example.com/tour.mp4","https://cdn.example.com/disclosure.pdf"]`)

	if !strings.Contains(out, "&#9658;") {
		t.Errorf("video tile missing: %q", out)
	}
	if !strings.Contains(out, "&#128196;") {
		t.Errorf("document tile missing: %q", out)
	}
	if strings.Contains(out, "<img") {
		t.Errorf("no thumbnails expected for non-image files: %q", out)
	}
}

func TestFileLinksHTML_TypeHintOverridesExtension(t *testing.T) {
	e := NewEngine("")
	out := e.renderFileLinksHTML(`[{"url":"https://cdn.example.com/blob","type":"image","name":"floor plan"}]`)

	if !strings.Contains(out, "<img") {
		t.Errorf("type hint should force image rendering: %q", out)
	}
	if !strings.Contains(out, "floor plan") {
		t.Errorf("explicit name should be used: %q", out)
	}
}

func TestFileLinksHTML_MalformedIsEmpty(t *testing.T) {
	e := NewEngine("")
	if out := e.renderFileLinksHTML("not-json"); out != "" {
		t.Errorf("malformed list should render nothing, got %q", out)
	}
	if out := e.renderFileLinksHTML("[]"); out != "" {
		t.Errorf("empty list should render nothing, got %q", out)
	}
}

func TestFileLinksText(t *testing.T) {
	e := NewEngine("")

	out := e.renderFileLinksText(`["https://cdn.example.com/a.pdf","https://cdn.example.com/b.jpg"]`)
	want := "• a.pdf: https://cdn.example.com/a.pdf\n• b.jpg: https://cdn.example.com/b.jpg"
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}

	if out := e.renderFileLinksText("[]"); out != "No files attached" {
		t.Errorf("empty list = %q", out)
	}
	if out := e.renderFileLinksText("not-json"); out != "[attached files could not be displayed]" {
		t.Errorf("malformed list = %q", out)
	}
}

func TestResolveURL(t *testing.T) {
	e := NewEngine("https://files.example.com")

	if got := e.resolveURL("https://other.example.com/x.png"); got != "https://other.example.com/x.png" {
		t.Errorf("absolute URL changed: %q", got)
	}
	if got := e.resolveURL("/uploads/x.png"); got != "https://files.example.com/uploads/x.png" {
		t.Errorf("relative URL = %q", got)
	}
	if got := e.resolveURL("uploads/x.png"); got != "https://files.example.com/uploads/x.png" {
		t.Errorf("bare relative URL = %q", got)
	}
}

func TestDisplayName(t *testing.T) {
	cases := []struct {
		link fileLink
		want string
	}{
		{fileLink{URL: "https://cdn.example.com/1699999999-report.pdf"}, "report.pdf"},
		{fileLink{URL: "https://cdn.example.com/1699999999_report.pdf"}, "report.pdf"},
		{fileLink{URL: "https://cdn.example.com/floor%20plan.pdf"}, "floor plan.pdf"},
		{fileLink{URL: "https://cdn.example.com/report.pdf", Name: "Inspection Report"}, "Inspection Report"},
		{fileLink{URL: "https://cdn.example.com/"}, "file"},
	}
	for _, tc := range cases {
		if got := displayName(tc.link); got != tc.want {
			t.Errorf("displayName(%+v) = %q, want %q", tc.link, got, tc.want)
		}
	}
}
