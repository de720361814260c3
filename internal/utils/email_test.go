package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractDomainFromEmail(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"user@Example.COM", "example.com"},
		{"Jane Doe <jane@corp.io>", "corp.io"},
		{"  spaced@domain.net  ", "domain.net"},
		{"no-at-sign", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExtractDomainFromEmail(tt.input), "input %q", tt.input)
	}
}

func TestStripHTMLTags(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text", "hello world", "hello world"},
		{"tags dropped", "<p>Hello <strong>there</strong></p>", "Hello there"},
		{"entities decoded", "Tom &amp; Jerry &lt;3", "Tom & Jerry <3"},
		{"whitespace collapsed", "<div>\n  a\n\n  b  </div>", "a b"},
		{"nbsp", "a&nbsp;b", "a b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripHTMLTags(tt.input))
		})
	}
}

func TestGenerateNanoIDWithPrefix(t *testing.T) {
	id := GenerateNanoIDWithPrefix("cmp", 24)
	assert.True(t, strings.HasPrefix(id, "cmp_"))
	assert.Len(t, id, len("cmp_")+24)

	other := GenerateNanoIDWithPrefix("cmp", 24)
	assert.NotEqual(t, id, other)
}

func TestGenerateMessageID(t *testing.T) {
	id := GenerateMessageID("acme.com")
	assert.True(t, strings.HasPrefix(id, "<"))
	assert.True(t, strings.HasSuffix(id, "@acme.com>"))
	assert.NotEqual(t, id, GenerateMessageID("acme.com"))
}
