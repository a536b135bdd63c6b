package metadata

// AggregateSeriesPatches reduces the per-book series patches of one series
// into a single patch. Scalar fields resolve by most-frequent-value
// voting, with ties going to the value seen first. Genres, tags, and
// collections are unioned in first-seen order. Age rating and total book
// count take the maximum. Summary is never aggregated: a series summary
// is not derived from book summaries.
func AggregateSeriesPatches(patches []*SeriesPatch) *SeriesPatch {
	if len(patches) == 0 {
		return nil
	}

	titles := newBallot[string]()
	titleSorts := newBallot[string]()
	statuses := newBallot[string]()
	publishers := newBallot[string]()
	languages := newBallot[string]()

	var genres, tags, collections []string
	genreSeen := map[string]bool{}
	tagSeen := map[string]bool{}
	collectionSeen := map[string]bool{}

	var ageRating, totalBookCount *int

	for _, patch := range patches {
		if patch == nil {
			continue
		}
		titles.cast(patch.Title)
		titleSorts.cast(patch.TitleSort)
		statuses.cast(patch.Status)
		publishers.cast(patch.Publisher)
		languages.cast(patch.Language)

		for _, g := range patch.Genres {
			if !genreSeen[g] {
				genreSeen[g] = true
				genres = append(genres, g)
			}
		}
		for _, tg := range patch.Tags {
			if !tagSeen[tg] {
				tagSeen[tg] = true
				tags = append(tags, tg)
			}
		}
		for _, c := range patch.Collections {
			if !collectionSeen[c] {
				collectionSeen[c] = true
				collections = append(collections, c)
			}
		}

		if patch.AgeRating != nil && (ageRating == nil || *patch.AgeRating > *ageRating) {
			v := *patch.AgeRating
			ageRating = &v
		}
		if patch.TotalBookCount != nil && (totalBookCount == nil || *patch.TotalBookCount > *totalBookCount) {
			v := *patch.TotalBookCount
			totalBookCount = &v
		}
	}

	return &SeriesPatch{
		Title:          titles.winner(),
		TitleSort:      titleSorts.winner(),
		Status:         statuses.winner(),
		Publisher:      publishers.winner(),
		Language:       languages.winner(),
		Genres:         genres,
		Tags:           tags,
		AgeRating:      ageRating,
		TotalBookCount: totalBookCount,
		Collections:    collections,
	}
}

// ballot counts votes for a scalar field across patches, remembering the
// order values were first seen so ties resolve deterministically.
type ballot[T comparable] struct {
	counts map[T]int
	order  []T
}

func newBallot[T comparable]() *ballot[T] {
	return &ballot[T]{counts: map[T]int{}}
}

func (b *ballot[T]) cast(value *T) {
	if value == nil {
		return
	}
	if _, ok := b.counts[*value]; !ok {
		b.order = append(b.order, *value)
	}
	b.counts[*value]++
}

func (b *ballot[T]) winner() *T {
	if len(b.order) == 0 {
		return nil
	}
	best := b.order[0]
	for _, v := range b.order[1:] {
		if b.counts[v] > b.counts[best] {
			best = v
		}
	}
	return &best
}
