package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Media extraction status values.
const (
	MediaStatusReady       = "ready"
	MediaStatusError       = "error"
	MediaStatusUnsupported = "unsupported"
	MediaStatusOutdated    = "outdated"
)

// Container media types the analyzer can produce.
const (
	MediaTypeZip  = "application/zip"
	MediaTypeRar  = "application/x-rar-compressed"
	MediaTypeEpub = "application/epub+zip"
	MediaTypePDF  = "application/pdf"
)

// Media is the analysis result of a book file. It is owned exclusively
// by one book and recreated wholesale on each analysis, never patched
// incrementally.
type Media struct {
	bun.BaseModel `bun:"table:media,alias:m"`

	ID        int       `bun:",pk,nullzero" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	BookID    int       `bun:",nullzero" json:"book_id"`

	Status    string `bun:",nullzero,default:'outdated'" json:"status"`
	MediaType string `json:"media_type"`
	// Comment carries the human-readable failure reason when Status is
	// error or unsupported.
	Comment   string `json:"comment"`
	Thumbnail []byte `json:"-"`

	Pages []*MediaPage `bun:"rel:has-many,join:id=media_id" json:"pages,omitempty"`
	Files []*MediaFile `bun:"rel:has-many,join:id=media_id" json:"files,omitempty"`
}

// PageCount returns the number of pages without forcing callers to
// nil-check the relation.
func (m *Media) PageCount() int {
	return len(m.Pages)
}

// MediaPage is one ordered page entry of an analyzed container.
// Number is 1-indexed.
type MediaPage struct {
	bun.BaseModel `bun:"table:media_pages,alias:mp"`

	ID      int `bun:",pk,nullzero" json:"id"`
	MediaID int `bun:",nullzero" json:"media_id"`

	Number    int    `bun:",nullzero" json:"number"`
	FileName  string `bun:",nullzero" json:"file_name"`
	MediaType string `bun:",nullzero" json:"media_type"`
	// FileHash is the xxhash64 of the page content, hex-encoded. Used
	// to carry read-progress continuity across conversions.
	FileHash *string `json:"file_hash"`
}

// MediaFile is a non-page entry of an analyzed container (metadata
// files, fonts, stylesheets).
type MediaFile struct {
	bun.BaseModel `bun:"table:media_files,alias:mf"`

	ID      int `bun:",pk,nullzero" json:"id"`
	MediaID int `bun:",nullzero" json:"media_id"`

	FileName  string `bun:",nullzero" json:"file_name"`
	MediaType string `json:"media_type"`
}
