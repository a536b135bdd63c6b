package books

import (
	"time"

	"github.com/hondana/hondana/pkg/models"
)

type ListBooksQuery struct {
	Limit     int  `query:"limit" default:"10" validate:"min=1,max=100"`
	Offset    int  `query:"offset" validate:"min=0"`
	LibraryID *int `query:"library_id"`
	SeriesID  *int `query:"series_id"`
}

// UpdateBookMetadataPayload carries a partial metadata update. Setting
// a value field also locks it unless the paired lock field says
// otherwise, so user edits survive later provider refreshes.
type UpdateBookMetadataPayload struct {
	Title     *string `json:"title"`
	TitleLock *bool   `json:"title_lock"`

	Summary     *string `json:"summary"`
	SummaryLock *bool   `json:"summary_lock"`

	Number     *string `json:"number"`
	NumberLock *bool   `json:"number_lock"`

	NumberSort     *float64 `json:"number_sort"`
	NumberSortLock *bool    `json:"number_sort_lock"`

	ReleaseDate     *time.Time `json:"release_date"`
	ReleaseDateLock *bool      `json:"release_date_lock"`

	Authors     []models.Author `json:"authors"`
	AuthorsLock *bool           `json:"authors_lock"`

	Tags     []string `json:"tags"`
	TagsLock *bool    `json:"tags_lock"`

	ISBN     *string `json:"isbn"`
	ISBNLock *bool   `json:"isbn_lock"`
}

type ConvertBookPayload struct {
	// PageHashes limits a page-removal conversion to the pages with
	// these content hashes. Empty means convert the container to CBZ.
	PageHashes []string `json:"page_hashes"`
}
