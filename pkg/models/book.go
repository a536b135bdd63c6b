package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Book struct {
	bun.BaseModel `bun:"table:books,alias:b"`

	ID        int       `bun:",pk,nullzero" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	LibraryID int       `bun:",nullzero" json:"library_id"`
	Library   *Library  `bun:"rel:belongs-to,join:library_id=id" json:"library,omitempty"`
	SeriesID  int       `bun:",nullzero" json:"series_id"`
	Series    *Series   `bun:"rel:belongs-to,join:series_id=id" json:"series,omitempty"`

	// URL is the filesystem path of the book file, the stable natural
	// key within a library. Renames are delete+add on purpose.
	URL  string `bun:",nullzero" json:"url"`
	Name string `bun:",nullzero" json:"name"`

	// Number is the ordinal assigned by natural-sort position within
	// the series.
	Number int `json:"number"`

	FileLastModified time.Time `json:"file_last_modified"`
	FileSizeBytes    int64     `json:"file_size_bytes"`

	Media    *Media        `bun:"rel:has-one,join:id=book_id" json:"media,omitempty"`
	Metadata *BookMetadata `bun:"rel:has-one,join:id=book_id" json:"metadata,omitempty"`
}

// Author is a named creator with a role (writer, penciller, ...).
// Stored inline on BookMetadata as JSON.
type Author struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

// Author role values, following the ComicInfo.xml creator fields.
const (
	AuthorRoleWriter      = "writer"
	AuthorRolePenciller   = "penciller"
	AuthorRoleInker       = "inker"
	AuthorRoleColorist    = "colorist"
	AuthorRoleLetterer    = "letterer"
	AuthorRoleCoverArtist = "cover_artist"
	AuthorRoleEditor      = "editor"
	AuthorRoleTranslator  = "translator"
)

// BookMetadata is the mutable, patch-driven metadata record of a book.
// Every field has a paired lock flag honored by the patch applier.
type BookMetadata struct {
	bun.BaseModel `bun:"table:book_metadata,alias:bm"`

	ID        int       `bun:",pk,nullzero" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	BookID    int       `bun:",nullzero" json:"book_id"`

	Title     string `json:"title"`
	TitleLock bool   `json:"title_lock"`

	Summary     string `json:"summary"`
	SummaryLock bool   `json:"summary_lock"`

	// Number is the display number ("7", "7.5"); NumberSort is the
	// float used for ordering. Both default to the book ordinal and
	// are rewritten on sort unless locked.
	Number     string `json:"number"`
	NumberLock bool   `json:"number_lock"`

	NumberSort     float64 `json:"number_sort"`
	NumberSortLock bool    `json:"number_sort_lock"`

	ReleaseDate     *time.Time `json:"release_date"`
	ReleaseDateLock bool       `json:"release_date_lock"`

	Authors     []Author `json:"authors"`
	AuthorsLock bool     `json:"authors_lock"`

	Tags     []string `json:"tags"`
	TagsLock bool     `json:"tags_lock"`

	ISBN     string `json:"isbn"`
	ISBNLock bool   `json:"isbn_lock"`
}
