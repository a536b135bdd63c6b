// Package metadata holds the patch types produced by metadata providers
// and the pure merge logic that applies them to persisted records.
package metadata

import (
	"time"

	"github.com/hondana/hondana/pkg/models"
)

// BookPatch is a partial book metadata record. Nil fields mean the
// provider has no opinion; non-nil fields are candidate values that merge
// under the per-field lock rules in Apply.
type BookPatch struct {
	Title       *string
	Summary     *string
	Number      *string
	NumberSort  *float64
	ReleaseDate *time.Time
	Authors     []models.Author
	Tags        []string
	ISBN        *string

	// ReadLists are membership hints resolved by the metadata lifecycle,
	// not by field merging.
	ReadLists []ReadListHint
}

// ReadListHint asks for the book to be placed in the named read list. A
// nil Position means append.
type ReadListHint struct {
	Name     string
	Position *int
}

// SeriesPatch is a partial series metadata record with the same nil
// semantics as BookPatch. One patch is produced per book and the set is
// reduced by Aggregate before merging.
type SeriesPatch struct {
	Title          *string
	TitleSort      *string
	Summary        *string
	Status         *string
	Publisher      *string
	Language       *string
	Genres         []string
	Tags           []string
	AgeRating      *int
	TotalBookCount *int

	// Collections are membership hints by collection name.
	Collections []string
}
