package notify

import (
	"testing"

	"github.com/linktrack/linktrack/internal/source"
)

func TestRenderDescriptionFieldOrder(t *testing.T) {
	info := source.Info{
		{Key: "commit message", Value: "fix parser"},
		{Key: "user", Value: "octocat"},
		{Key: "date", Value: "2025-04-01 19:56:41"},
	}
	want := "commit message: fix parser\nuser: octocat\ndate: 2025-04-01 19:56:41\n"
	if got := RenderDescription(info); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRenderDescriptionStripsPreviewHTML(t *testing.T) {
	info := source.Info{
		{Key: "title", Value: "<p>kept as is</p>"},
		{Key: "preview", Value: "<p>Some <b>bold</b> text</p>"},
	}
	want := "title: <p>kept as is</p>\npreview: Some bold text\n"
	if got := RenderDescription(info); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRenderDescriptionEmpty(t *testing.T) {
	if got := RenderDescription(nil); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain text", "plain text"},
		{"<p>a</p><p>b</p>", "ab"},
		{"<a href=\"x\">link</a> tail", "link tail"},
		{"", ""},
	}
	for _, tc := range tests {
		if got := stripHTML(tc.in); got != tc.want {
			t.Errorf("stripHTML(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
