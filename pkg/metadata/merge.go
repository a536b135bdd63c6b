package metadata

// MergeSeriesPatches flattens one book's provider contributions into a
// single patch. Later patches overwrite earlier ones field by field;
// membership hints are concatenated in order. Nil inputs are skipped
// and an all-nil input yields nil.
func MergeSeriesPatches(patches ...*SeriesPatch) *SeriesPatch {
	var merged *SeriesPatch
	for _, patch := range patches {
		if patch == nil {
			continue
		}
		if merged == nil {
			merged = &SeriesPatch{}
		}
		if patch.Title != nil {
			merged.Title = patch.Title
		}
		if patch.TitleSort != nil {
			merged.TitleSort = patch.TitleSort
		}
		if patch.Summary != nil {
			merged.Summary = patch.Summary
		}
		if patch.Status != nil {
			merged.Status = patch.Status
		}
		if patch.Publisher != nil {
			merged.Publisher = patch.Publisher
		}
		if patch.Language != nil {
			merged.Language = patch.Language
		}
		if patch.Genres != nil {
			merged.Genres = patch.Genres
		}
		if patch.Tags != nil {
			merged.Tags = patch.Tags
		}
		if patch.AgeRating != nil {
			merged.AgeRating = patch.AgeRating
		}
		if patch.TotalBookCount != nil {
			merged.TotalBookCount = patch.TotalBookCount
		}
		merged.Collections = append(merged.Collections, patch.Collections...)
	}
	return merged
}
