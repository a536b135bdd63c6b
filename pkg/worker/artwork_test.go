package worker

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/robinjoseph08/golib/pointerutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hondana/hondana/pkg/books"
	"github.com/hondana/hondana/pkg/models"
	"github.com/hondana/hondana/pkg/series"
)

func TestProcessRefreshSeriesArtworkJobFromSidecar(t *testing.T) {
	w, db := newTestWorker(t)
	ctx := context.Background()
	root := t.TempDir()
	library := seedLibrary(t, db, root)

	writeCBZ(t, filepath.Join(root, "Akira", "Akira v01.cbz"), map[string][]byte{"001.png": pngBytes(t, 0)})
	require.NoError(t, os.WriteFile(filepath.Join(root, "Akira", "cover.png"), pngBytes(t, 7), 0o644))

	runScan(t, w, library)
	drainJobs(t, w, models.JobTypeAnalyze, models.JobTypeRefreshSeriesArtwork)

	s, err := w.seriesService.RetrieveSeries(ctx, series.RetrieveSeriesOptions{
		LibraryID: &library.ID,
		URL:       pointerutil.String(filepath.Join(root, "Akira")),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, s.Thumbnail)
}

func TestProcessRefreshSeriesArtworkJobFallsBackToFirstBook(t *testing.T) {
	w, db := newTestWorker(t)
	ctx := context.Background()
	root := t.TempDir()
	library := seedLibrary(t, db, root)

	writeCBZ(t, filepath.Join(root, "Akira", "Akira v01.cbz"), map[string][]byte{"001.png": pngBytes(t, 0)})
	runScan(t, w, library)
	drainJobs(t, w, models.JobTypeAnalyze)

	s, err := w.seriesService.RetrieveSeries(ctx, series.RetrieveSeriesOptions{
		LibraryID: &library.ID,
		URL:       pointerutil.String(filepath.Join(root, "Akira")),
	})
	require.NoError(t, err)
	require.Empty(t, s.Thumbnail)

	job := newJob(t, w, models.JobTypeRefreshSeriesArtwork, models.JobSeriesData{SeriesID: s.ID})
	require.NoError(t, w.ProcessRefreshSeriesArtworkJob(ctx, job))

	refreshed, err := w.seriesService.RetrieveSeries(ctx, series.RetrieveSeriesOptions{ID: &s.ID})
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.Thumbnail, "without a sidecar the first book's thumbnail is promoted")
}

func TestProcessRefreshBookArtworkJobFromSidecar(t *testing.T) {
	w, db := newTestWorker(t)
	ctx := context.Background()
	root := t.TempDir()
	library := seedLibrary(t, db, root)

	writeCBZ(t, filepath.Join(root, "Akira", "Akira v01.cbz"), map[string][]byte{"001.png": pngBytes(t, 0)})
	// Same base name as the book marks the image as its cover.
	require.NoError(t, os.WriteFile(filepath.Join(root, "Akira", "Akira v01.png"), pngBytes(t, 7), 0o644))

	runScan(t, w, library)
	drainJobs(t, w, models.JobTypeAnalyze)

	allBooks, err := w.bookService.ListBooks(ctx, books.ListBooksOptions{LibraryID: &library.ID})
	require.NoError(t, err)
	require.Len(t, allBooks, 1)
	pageThumbnail := allBooks[0].Media.Thumbnail

	drainJobs(t, w, models.JobTypeRefreshBookArtwork)

	book, err := w.bookService.RetrieveBook(ctx, books.RetrieveBookOptions{ID: &allBooks[0].ID})
	require.NoError(t, err)
	assert.NotEmpty(t, book.Media.Thumbnail)
	assert.NotEqual(t, pageThumbnail, book.Media.Thumbnail, "the sidecar replaces the first-page thumbnail")
}
