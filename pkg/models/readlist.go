package models

import (
	"time"

	"github.com/uptrace/bun"
)

// ReadList is a named ordered grouping of books. Member order is an
// explicit position map so that inserting a member never requires
// renumbering the rest of the list.
type ReadList struct {
	bun.BaseModel `bun:"table:read_lists,alias:rl"`

	ID        int       `bun:",pk,nullzero" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Name      string    `bun:",nullzero" json:"name"`
	Summary   string    `json:"summary"`

	Books []*ReadListBook `bun:"rel:has-many,join:id=read_list_id" json:"books,omitempty"`
}

type ReadListBook struct {
	bun.BaseModel `bun:"table:read_list_books,alias:rlb"`

	ID         int   `bun:",pk,nullzero" json:"id"`
	ReadListID int   `bun:",nullzero" json:"read_list_id"`
	BookID     int   `bun:",nullzero" json:"book_id"`
	Book       *Book `bun:"rel:belongs-to,join:book_id=id" json:"book,omitempty"`
	Position   int   `json:"position"`
}

// SeriesCollection is a named unordered grouping of series.
type SeriesCollection struct {
	bun.BaseModel `bun:"table:collections,alias:c"`

	ID        int       `bun:",pk,nullzero" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Name      string    `bun:",nullzero" json:"name"`

	Series []*CollectionSeries `bun:"rel:has-many,join:id=collection_id" json:"series,omitempty"`
}

type CollectionSeries struct {
	bun.BaseModel `bun:"table:collection_series,alias:cs"`

	ID           int     `bun:",pk,nullzero" json:"id"`
	CollectionID int     `bun:",nullzero" json:"collection_id"`
	SeriesID     int     `bun:",nullzero" json:"series_id"`
	Series       *Series `bun:"rel:belongs-to,join:series_id=id" json:"series,omitempty"`
}
