package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Series struct {
	bun.BaseModel `bun:"table:series,alias:s"`

	ID        int       `bun:",pk,nullzero" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	LibraryID int       `bun:",nullzero" json:"library_id"`
	Library   *Library  `bun:"rel:belongs-to,join:library_id=id" json:"library,omitempty"`

	// URL is the filesystem path of the series directory. It is the
	// stable natural key within a library across rescans.
	URL  string `bun:",nullzero" json:"url"`
	Name string `bun:",nullzero" json:"name"`

	FileLastModified time.Time `json:"file_last_modified"`

	Thumbnail []byte `json:"-"`

	Metadata  *SeriesMetadata `bun:"rel:has-one,join:id=series_id" json:"metadata,omitempty"`
	Books     []*Book         `bun:"rel:has-many,join:id=series_id" json:"books,omitempty"`
	BookCount int             `bun:",scanonly" json:"book_count"`
}

// Series publication status values.
const (
	SeriesStatusOngoing   = "ongoing"
	SeriesStatusEnded     = "ended"
	SeriesStatusAbandoned = "abandoned"
	SeriesStatusHiatus    = "hiatus"
)

// SeriesMetadata is the mutable, patch-driven metadata record of a
// series. Every field has a paired lock flag; a locked field is never
// overwritten by a provider patch.
type SeriesMetadata struct {
	bun.BaseModel `bun:"table:series_metadata,alias:sm"`

	ID        int       `bun:",pk,nullzero" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	SeriesID  int       `bun:",nullzero" json:"series_id"`

	Title     string `json:"title"`
	TitleLock bool   `json:"title_lock"`

	TitleSort     string `json:"title_sort"`
	TitleSortLock bool   `json:"title_sort_lock"`

	Summary     string `json:"summary"`
	SummaryLock bool   `json:"summary_lock"`

	Status     string `json:"status"`
	StatusLock bool   `json:"status_lock"`

	Publisher     string `json:"publisher"`
	PublisherLock bool   `json:"publisher_lock"`

	Language     string `json:"language"`
	LanguageLock bool   `json:"language_lock"`

	Genres     []string `json:"genres"`
	GenresLock bool     `json:"genres_lock"`

	Tags     []string `json:"tags"`
	TagsLock bool     `json:"tags_lock"`

	AgeRating     *int `json:"age_rating"`
	AgeRatingLock bool `json:"age_rating_lock"`

	TotalBookCount     *int `json:"total_book_count"`
	TotalBookCountLock bool `json:"total_book_count_lock"`
}
