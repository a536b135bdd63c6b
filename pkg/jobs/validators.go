package jobs

type CreateJobPayload struct {
	Type string      `json:"type" validate:"required,oneof=scan analyze refresh_book_metadata refresh_series_metadata refresh_book_artwork refresh_series_artwork convert_book"`
	Data interface{} `json:"data" validate:"required"`
}

type ListJobsQuery struct {
	Limit  int      `query:"limit" json:"limit,omitempty" default:"10" validate:"min=1,max=100"`
	Offset int      `query:"offset" json:"offset,omitempty" validate:"min=0"`
	Status []string `query:"status" json:"status,omitempty" validate:"dive,oneof=pending in_progress completed failed"`
	Type   *string  `query:"type" json:"type,omitempty" validate:"omitempty,oneof=scan analyze refresh_book_metadata refresh_series_metadata refresh_book_artwork refresh_series_artwork convert_book"`
}
