package htmlutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripTags(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "plain text untouched",
			input:    "Just some text",
			expected: "Just some text",
		},
		{
			name:     "paragraphs become newlines",
			input:    "<p>First paragraph.</p><p>Second paragraph.</p>",
			expected: "First paragraph.\nSecond paragraph.",
		},
		{
			name:     "br variants become newlines",
			input:    "line one<br>line two<br/>line three<br />line four",
			expected: "line one\nline two\nline three\nline four",
		},
		{
			name:     "inline tags stripped without breaks",
			input:    "An <em>epic</em> tale of <strong>adventure</strong>",
			expected: "An epic tale of adventure",
		},
		{
			name:     "uppercase tags",
			input:    "<P>First.</P><DIV>Second.</DIV>",
			expected: "First.\nSecond.",
		},
		{
			name:     "entities decoded",
			input:    "Tom &amp; Jerry &mdash; &quot;classics&quot;",
			expected: "Tom & Jerry — \"classics\"",
		},
		{
			name:     "nbsp becomes plain space",
			input:    "one&nbsp;two",
			expected: "one two",
		},
		{
			name:     "whitespace collapsed",
			input:    "too   many\t\tspaces",
			expected: "too many spaces",
		},
		{
			name:     "empty lines dropped",
			input:    "<p>First</p><p></p><p>  </p><p>Second</p>",
			expected: "First\nSecond",
		},
		{
			name:     "list items",
			input:    "<ul><li>one</li><li>two</li></ul>",
			expected: "one\ntwo",
		},
		{
			name:     "attributes ignored",
			input:    `<a href="http://example.com" class="link">a link</a>`,
			expected: "a link",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StripTags(tt.input))
		})
	}
}
