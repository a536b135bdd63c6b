package libraries

type CreateLibraryPayload struct {
	Name                   string `json:"name" validate:"required,max=100"`
	RootPath               string `json:"root_path" validate:"required"`
	ScanDeep               *bool  `json:"scan_deep,omitempty"`
	ForceModifiedTime      *bool  `json:"force_modified_time,omitempty"`
	ConvertToCBZ           *bool  `json:"convert_to_cbz,omitempty"`
	ImportComicInfo        *bool  `json:"import_comic_info,omitempty"`
	ImportEpub             *bool  `json:"import_epub,omitempty"`
	ImportISBN             *bool  `json:"import_isbn,omitempty"`
	DeleteEmptyReadLists   *bool  `json:"delete_empty_read_lists,omitempty"`
	DeleteEmptyCollections *bool  `json:"delete_empty_collections,omitempty"`
}

type ListLibrariesQuery struct {
	Limit   int  `query:"limit" json:"limit,omitempty" default:"10" validate:"min=1,max=100"`
	Offset  int  `query:"offset" json:"offset,omitempty" validate:"min=0"`
	Deleted bool `query:"deleted" json:"deleted,omitempty"`
}

type UpdateLibraryPayload struct {
	Name                   *string `json:"name,omitempty" validate:"omitempty,max=100"`
	RootPath               *string `json:"root_path,omitempty"`
	ScanDeep               *bool   `json:"scan_deep,omitempty"`
	ForceModifiedTime      *bool   `json:"force_modified_time,omitempty"`
	ConvertToCBZ           *bool   `json:"convert_to_cbz,omitempty"`
	ImportComicInfo        *bool   `json:"import_comic_info,omitempty"`
	ImportEpub             *bool   `json:"import_epub,omitempty"`
	ImportISBN             *bool   `json:"import_isbn,omitempty"`
	DeleteEmptyReadLists   *bool   `json:"delete_empty_read_lists,omitempty"`
	DeleteEmptyCollections *bool   `json:"delete_empty_collections,omitempty"`
	Deleted                *bool   `json:"deleted,omitempty" validate:"omitempty"`
}
