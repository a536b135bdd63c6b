package metadata

import (
	"slices"
	"time"

	"github.com/hondana/hondana/pkg/models"
)

// ApplyBookPatch merges patch into existing in place. Every field follows
// the same rule: the patch value wins only when it is non-nil and the
// field is not locked. A locked field is never overwritten, no matter
// what the patch says. Returns true when any field changed.
func ApplyBookPatch(patch *BookPatch, existing *models.BookMetadata) bool {
	if patch == nil {
		return false
	}

	changed := false
	changed = applyString(patch.Title, existing.TitleLock, &existing.Title) || changed
	changed = applyString(patch.Summary, existing.SummaryLock, &existing.Summary) || changed
	changed = applyString(patch.Number, existing.NumberLock, &existing.Number) || changed
	changed = applyFloat(patch.NumberSort, existing.NumberSortLock, &existing.NumberSort) || changed
	changed = applyTime(patch.ReleaseDate, existing.ReleaseDateLock, &existing.ReleaseDate) || changed
	changed = applyAuthors(patch.Authors, existing.AuthorsLock, &existing.Authors) || changed
	changed = applyStrings(patch.Tags, existing.TagsLock, &existing.Tags) || changed
	changed = applyString(patch.ISBN, existing.ISBNLock, &existing.ISBN) || changed
	return changed
}

// ApplySeriesPatch merges patch into existing in place under the same
// rule as ApplyBookPatch. Returns true when any field changed.
func ApplySeriesPatch(patch *SeriesPatch, existing *models.SeriesMetadata) bool {
	if patch == nil {
		return false
	}

	changed := false
	changed = applyString(patch.Title, existing.TitleLock, &existing.Title) || changed
	changed = applyString(patch.TitleSort, existing.TitleSortLock, &existing.TitleSort) || changed
	changed = applyString(patch.Summary, existing.SummaryLock, &existing.Summary) || changed
	changed = applyString(patch.Status, existing.StatusLock, &existing.Status) || changed
	changed = applyString(patch.Publisher, existing.PublisherLock, &existing.Publisher) || changed
	changed = applyString(patch.Language, existing.LanguageLock, &existing.Language) || changed
	changed = applyStrings(patch.Genres, existing.GenresLock, &existing.Genres) || changed
	changed = applyStrings(patch.Tags, existing.TagsLock, &existing.Tags) || changed
	changed = applyIntPtr(patch.AgeRating, existing.AgeRatingLock, &existing.AgeRating) || changed
	changed = applyIntPtr(patch.TotalBookCount, existing.TotalBookCountLock, &existing.TotalBookCount) || changed
	return changed
}

func applyString(patch *string, lock bool, field *string) bool {
	if patch == nil || lock || *patch == *field {
		return false
	}
	*field = *patch
	return true
}

func applyFloat(patch *float64, lock bool, field *float64) bool {
	if patch == nil || lock || *patch == *field {
		return false
	}
	*field = *patch
	return true
}

func applyTime(patch *time.Time, lock bool, field **time.Time) bool {
	if patch == nil || lock {
		return false
	}
	if *field != nil && (*field).Equal(*patch) {
		return false
	}
	t := *patch
	*field = &t
	return true
}

func applyIntPtr(patch *int, lock bool, field **int) bool {
	if patch == nil || lock {
		return false
	}
	if *field != nil && **field == *patch {
		return false
	}
	v := *patch
	*field = &v
	return true
}

func applyStrings(patch []string, lock bool, field *[]string) bool {
	if patch == nil || lock || slices.Equal(patch, *field) {
		return false
	}
	*field = slices.Clone(patch)
	return true
}

func applyAuthors(patch []models.Author, lock bool, field *[]models.Author) bool {
	if patch == nil || lock || slices.Equal(patch, *field) {
		return false
	}
	*field = slices.Clone(patch)
	return true
}
