package natsort

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSort(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{
			name:     "numeric runs compare by value",
			input:    []string{"Chapter 10", "Chapter 2", "Chapter 1"},
			expected: []string{"Chapter 1", "Chapter 2", "Chapter 10"},
		},
		{
			name:     "leading zeros",
			input:    []string{"page-010.jpg", "page-002.jpg", "page-1.jpg"},
			expected: []string{"page-1.jpg", "page-002.jpg", "page-010.jpg"},
		},
		{
			name:     "case insensitive",
			input:    []string{"beta", "Alpha", "gamma"},
			expected: []string{"Alpha", "beta", "gamma"},
		},
		{
			name:     "mixed alphanumeric",
			input:    []string{"vol2ch11", "vol2ch2", "vol10ch1", "vol1ch1"},
			expected: []string{"vol1ch1", "vol2ch2", "vol2ch11", "vol10ch1"},
		},
		{
			name:     "empty input",
			input:    []string{},
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Sort(tt.input)
			assert.Equal(t, tt.expected, tt.input)
		})
	}
}

func TestSortIsDeterministic(t *testing.T) {
	a := []string{"b10", "B2", "a1", "A1"}
	b := []string{"b10", "B2", "a1", "A1"}
	Sort(a)
	Sort(b)
	assert.Equal(t, a, b)
}

func TestLess(t *testing.T) {
	assert.True(t, Less("Chapter 2", "Chapter 10"))
	assert.False(t, Less("Chapter 10", "Chapter 2"))
	assert.False(t, Less("same", "same"))
}

func TestSortFunc(t *testing.T) {
	type entry struct {
		Name string
	}
	entries := []entry{{"10 - End"}, {"2 - Middle"}, {"1 - Start"}}
	SortFunc(entries, func(e entry) string { return e.Name })
	assert.Equal(t, []entry{{"1 - Start"}, {"2 - Middle"}, {"10 - End"}}, entries)
}

func TestTitleSort(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "The at beginning",
			input:    "The Promised Neverland",
			expected: "Promised Neverland, The",
		},
		{
			name:     "A at beginning",
			input:    "A Bride's Story",
			expected: "Bride's Story, A",
		},
		{
			name:     "An at beginning",
			input:    "An American Tragedy",
			expected: "American Tragedy, An",
		},
		{
			name:     "lowercase article",
			input:    "the hobbit",
			expected: "hobbit, the",
		},
		{
			name:     "no article",
			input:    "Lord of the Rings",
			expected: "Lord of the Rings",
		},
		{
			name:     "article in middle only",
			input:    "Return of the King",
			expected: "Return of the King",
		},
		{
			name:     "article only",
			input:    "The",
			expected: "The",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TitleSort(tt.input))
		})
	}
}
