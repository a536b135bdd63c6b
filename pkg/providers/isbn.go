package providers

import (
	"context"
	"regexp"
	"strings"

	"github.com/hondana/hondana/pkg/metadata"
	"github.com/hondana/hondana/pkg/models"
)

// isbnPattern matches ISBN-10 or ISBN-13 candidates embedded in file
// names, with or without separators.
var isbnPattern = regexp.MustCompile(`(?:97[89][-\s]?)?(?:\d[-\s]?){9}[\dXx]`)

// ISBNProvider normalizes ISBN identifiers. It looks for an ISBN in the
// book's file name and in already-persisted metadata, validates the check
// digit, and patches the canonical hyphen-free ISBN-13 form. It performs
// no network lookups.
type ISBNProvider struct{}

func NewISBNProvider() *ISBNProvider {
	return &ISBNProvider{}
}

func (p *ISBNProvider) Name() string {
	return "isbn"
}

func (p *ISBNProvider) Source() string {
	return models.MetadataSourceISBN
}

func (p *ISBNProvider) Capabilities() []Capability {
	return []Capability{CapabilityBookMetadata}
}

func (p *ISBNProvider) BookPatch(_ context.Context, book BookContext) (*metadata.BookPatch, error) {
	var candidates []string
	if book.Book != nil {
		if book.Book.Metadata != nil && book.Book.Metadata.ISBN != "" {
			candidates = append(candidates, book.Book.Metadata.ISBN)
		}
		candidates = append(candidates, isbnPattern.FindAllString(book.Book.Name, -1)...)
	}

	for _, candidate := range candidates {
		if isbn := NormalizeISBN(candidate); isbn != "" {
			return &metadata.BookPatch{ISBN: &isbn}, nil
		}
	}
	return nil, nil
}

func (p *ISBNProvider) SeriesPatch(_ context.Context, _ BookContext) (*metadata.SeriesPatch, error) {
	return nil, nil
}

// NormalizeISBN validates value as an ISBN-10 or ISBN-13 and returns the
// canonical ISBN-13 digit string, or "" when the value is not a valid
// ISBN.
func NormalizeISBN(value string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9':
			return r
		case r == 'x' || r == 'X':
			return 'X'
		case r == '-' || r == ' ':
			return -1
		default:
			return r
		}
	}, strings.TrimSpace(value))

	switch len(cleaned) {
	case 10:
		if !validISBN10(cleaned) {
			return ""
		}
		return isbn10To13(cleaned)
	case 13:
		if !validISBN13(cleaned) {
			return ""
		}
		return cleaned
	default:
		return ""
	}
}

func validISBN10(isbn string) bool {
	sum := 0
	for i, r := range isbn {
		var digit int
		switch {
		case r >= '0' && r <= '9':
			digit = int(r - '0')
		case r == 'X' && i == 9:
			digit = 10
		default:
			return false
		}
		sum += digit * (10 - i)
	}
	return sum%11 == 0
}

func validISBN13(isbn string) bool {
	sum := 0
	for i, r := range isbn {
		if r < '0' || r > '9' {
			return false
		}
		digit := int(r - '0')
		if i%2 == 1 {
			digit *= 3
		}
		sum += digit
	}
	return sum%10 == 0
}

// isbn10To13 converts a valid ISBN-10 to its 978-prefixed ISBN-13 form.
func isbn10To13(isbn string) string {
	body := "978" + isbn[:9]
	sum := 0
	for i, r := range body {
		digit := int(r - '0')
		if i%2 == 1 {
			digit *= 3
		}
		sum += digit
	}
	check := (10 - sum%10) % 10
	return body + string(rune('0'+check))
}
