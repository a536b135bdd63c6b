package providers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hondana/hondana/pkg/models"
)

func TestNormalizeISBN(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "valid isbn-13", input: "9781591169789", expected: "9781591169789"},
		{name: "isbn-13 with hyphens", input: "978-1-59116-978-9", expected: "9781591169789"},
		{name: "isbn-13 with spaces", input: "978 1 59116 978 9", expected: "9781591169789"},
		{name: "isbn-13 bad check digit", input: "9781591169780", expected: ""},
		{name: "valid isbn-10", input: "159116978X", expected: "9781591169789"},
		{name: "isbn-10 with X check digit", input: "080442957X", expected: "9780804429573"},
		{name: "isbn-10 bad check digit", input: "1591169784", expected: ""},
		{name: "too short", input: "12345", expected: ""},
		{name: "letters", input: "not-an-isbn", expected: ""},
		{name: "empty", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeISBN(tt.input))
		})
	}
}

func TestISBNProviderBookPatch(t *testing.T) {
	provider := NewISBNProvider()

	t.Run("normalizes existing metadata isbn", func(t *testing.T) {
		patch, err := provider.BookPatch(context.Background(), BookContext{
			Book: &models.Book{
				Name:     "Some Book",
				Metadata: &models.BookMetadata{ISBN: "159116978X"},
			},
		})
		require.NoError(t, err)
		require.NotNil(t, patch)
		assert.Equal(t, "9781591169789", *patch.ISBN)
	})

	t.Run("finds isbn in file name", func(t *testing.T) {
		patch, err := provider.BookPatch(context.Background(), BookContext{
			Book: &models.Book{Name: "Monster v01 [978-1-59116-978-9]"},
		})
		require.NoError(t, err)
		require.NotNil(t, patch)
		assert.Equal(t, "9781591169789", *patch.ISBN)
	})

	t.Run("no candidates yields nil patch", func(t *testing.T) {
		patch, err := provider.BookPatch(context.Background(), BookContext{
			Book: &models.Book{Name: "Monster v01"},
		})
		require.NoError(t, err)
		assert.Nil(t, patch)
	})

	t.Run("invalid candidates yield nil patch", func(t *testing.T) {
		patch, err := provider.BookPatch(context.Background(), BookContext{
			Book: &models.Book{Name: "Book 9781591169780"},
		})
		require.NoError(t, err)
		assert.Nil(t, patch)
	})
}
