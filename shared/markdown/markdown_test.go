package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRender(t *testing.T) {
	tp := New()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "hello", "<p>hello</p>"},
		{"emphasis", "*hi* **there**", "<p><em>hi</em> <strong>there</strong></p>"},
		{"strikethrough", "~~gone~~", "<p><del>gone</del></p>"},
		{"code span", "use `go test`", "<p>use <code>go test</code></p>"},
		{"headings stay text", "# title", "<p># title</p>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tp.Render(tt.input))
		})
	}
}

func TestRender_StripsScripts(t *testing.T) {
	tp := New()

	out := tp.Render(`<script>alert(1)</script><img src=x onerror=alert(1)>`)

	// raw html is never passed through, only escaped as text
	assert.NotContains(t, out, "<script")
	assert.NotContains(t, out, "<img")
	assert.Contains(t, out, "&lt;script&gt;")
	assert.Contains(t, out, "&lt;img")
}
