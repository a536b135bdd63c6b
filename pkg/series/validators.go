package series

type ListSeriesQuery struct {
	Limit     int  `query:"limit" default:"10" validate:"min=1,max=100"`
	Offset    int  `query:"offset" validate:"min=0"`
	LibraryID *int `query:"library_id"`
}

type ListSeriesBooksQuery struct {
	Limit  int `query:"limit" default:"10" validate:"min=1,max=100"`
	Offset int `query:"offset" validate:"min=0"`
}

// UpdateSeriesMetadataPayload carries a partial metadata update. Setting
// a value field also locks it unless the paired lock field says
// otherwise, so user edits survive later provider refreshes.
type UpdateSeriesMetadataPayload struct {
	Title     *string `json:"title"`
	TitleLock *bool   `json:"title_lock"`

	TitleSort     *string `json:"title_sort"`
	TitleSortLock *bool   `json:"title_sort_lock"`

	Summary     *string `json:"summary"`
	SummaryLock *bool   `json:"summary_lock"`

	Status     *string `json:"status" validate:"omitempty,oneof=ongoing ended abandoned hiatus"`
	StatusLock *bool   `json:"status_lock"`

	Publisher     *string `json:"publisher"`
	PublisherLock *bool   `json:"publisher_lock"`

	Language     *string `json:"language"`
	LanguageLock *bool   `json:"language_lock"`

	Genres     []string `json:"genres"`
	GenresLock *bool    `json:"genres_lock"`

	Tags     []string `json:"tags"`
	TagsLock *bool    `json:"tags_lock"`

	AgeRating     *int  `json:"age_rating" validate:"omitempty,min=0"`
	AgeRatingLock *bool `json:"age_rating_lock"`

	TotalBookCount     *int  `json:"total_book_count" validate:"omitempty,min=1"`
	TotalBookCountLock *bool `json:"total_book_count_lock"`
}
