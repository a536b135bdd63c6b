package collections

type ListCollectionsQuery struct {
	Limit  int `query:"limit" default:"10" validate:"min=1,max=100"`
	Offset int `query:"offset" validate:"min=0"`
}

type AddSeriesPayload struct {
	SeriesID int `json:"series_id" validate:"required"`
}
