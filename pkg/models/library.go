package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Library struct {
	bun.BaseModel `bun:"table:libraries,alias:l"`

	ID        int        `bun:",pk,nullzero" json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"-"`
	Name      string     `bun:",nullzero" json:"name"`
	RootPath  string     `bun:",nullzero" json:"root_path"`

	// Scan behavior.
	ScanDeep          bool `json:"scan_deep"`
	ForceModifiedTime bool `json:"force_modified_time"`
	ConvertToCBZ      bool `json:"convert_to_cbz"`

	// Per-provider enable flags checked by the metadata lifecycles.
	ImportComicInfo bool `bun:",default:true" json:"import_comic_info"`
	ImportEpub      bool `bun:",default:true" json:"import_epub"`
	ImportISBN      bool `bun:",default:true" json:"import_isbn"`

	// Cleanup policies applied at the end of a scan.
	DeleteEmptyReadLists   bool `json:"delete_empty_read_lists"`
	DeleteEmptyCollections bool `json:"delete_empty_collections"`

	Series []*Series `bun:"rel:has-many,join:id=library_id" json:"series,omitempty"`
}

// ProviderEnabled reports whether the library has enabled the given
// metadata source. Unknown sources are disabled.
func (l *Library) ProviderEnabled(source string) bool {
	switch source {
	case MetadataSourceComicInfo:
		return l.ImportComicInfo
	case MetadataSourceEpub:
		return l.ImportEpub
	case MetadataSourceISBN:
		return l.ImportISBN
	}
	return false
}

const (
	MetadataSourceComicInfo = "comicinfo"
	MetadataSourceEpub      = "epub"
	MetadataSourceISBN      = "isbn"
)
