package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTMLToText(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"paragraphs", "<p>Hi Ana,</p><p>Quick question.</p>", "Hi Ana,\nQuick question."},
		{"breaks", "line one<br>line two<br />line three", "line one\nline two\nline three"},
		{"entities", "<p>Fish &amp; chips</p>", "Fish & chips"},
		{"strips tags", "<div><strong>bold</strong> plain</div>", "bold plain"},
		{"plain passes", "just text", "just text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTMLToText(tt.body))
		})
	}
}

func TestSanitizeField(t *testing.T) {
	assert.Equal(t, "Acme", SanitizeField("  <script>x()</script>Acme  "))
	assert.Equal(t, "Lee", SanitizeField("<b>Lee</b>"))
}
