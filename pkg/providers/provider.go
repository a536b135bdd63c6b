// Package providers defines the metadata provider port and its built-in
// implementations. A provider inspects a book's container file and
// returns partial patches; it returns nil (not an error) when it has no
// opinion, and the orchestrator catches and logs any error so one
// provider's failure never blocks the others.
package providers

import (
	"context"

	"github.com/hondana/hondana/pkg/metadata"
	"github.com/hondana/hondana/pkg/models"
)

// Capability declares which patch kinds a provider can produce, letting
// the orchestrator skip calls that would always return nil.
type Capability string

const (
	CapabilityBookMetadata   Capability = "book_metadata"
	CapabilitySeriesMetadata Capability = "series_metadata"
)

// BookContext carries everything a provider may need to inspect one book.
type BookContext struct {
	Library *models.Library
	Series  *models.Series
	Book    *models.Book
	Media   *models.Media
}

// Provider extracts metadata patches from a book's container file.
type Provider interface {
	// Name identifies the provider in logs.
	Name() string
	// Source matches a library's per-provider enable flags.
	Source() string
	Capabilities() []Capability
	// BookPatch returns a partial book metadata record, or nil when the
	// provider has no opinion about this book.
	BookPatch(ctx context.Context, book BookContext) (*metadata.BookPatch, error)
	// SeriesPatch returns this book's contribution to series metadata,
	// or nil.
	SeriesPatch(ctx context.Context, book BookContext) (*metadata.SeriesPatch, error)
}

// HasCapability reports whether p declares the given capability.
func HasCapability(p Provider, c Capability) bool {
	for _, pc := range p.Capabilities() {
		if pc == c {
			return true
		}
	}
	return false
}

// Default returns the built-in providers in their fixed evaluation order.
// Later providers overwrite earlier ones for unlocked fields, so the
// order is part of the merge contract.
func Default() []Provider {
	return []Provider{
		NewComicInfoProvider(),
		NewEpubProvider(),
		NewISBNProvider(),
	}
}
