package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeSeriesPatches(t *testing.T) {
	t.Run("later overwrites earlier field by field", func(t *testing.T) {
		merged := MergeSeriesPatches(
			&SeriesPatch{Title: strPtr("Akira"), Publisher: strPtr("Epic Comics")},
			&SeriesPatch{Title: strPtr("AKIRA"), Language: strPtr("ja")},
		)
		require.NotNil(t, merged)
		assert.Equal(t, "AKIRA", *merged.Title)
		assert.Equal(t, "Epic Comics", *merged.Publisher)
		assert.Equal(t, "ja", *merged.Language)
	})

	t.Run("collections concatenate", func(t *testing.T) {
		merged := MergeSeriesPatches(
			&SeriesPatch{Collections: []string{"Cyberpunk"}},
			nil,
			&SeriesPatch{Collections: []string{"Seinen"}},
		)
		require.NotNil(t, merged)
		assert.Equal(t, []string{"Cyberpunk", "Seinen"}, merged.Collections)
	})

	t.Run("all nil yields nil", func(t *testing.T) {
		assert.Nil(t, MergeSeriesPatches(nil, nil))
		assert.Nil(t, MergeSeriesPatches())
	})
}
