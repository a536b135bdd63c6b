package worker

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hondana/hondana/pkg/books"
	"github.com/hondana/hondana/pkg/models"
)

func TestProcessAnalyzeJob(t *testing.T) {
	w, db := newTestWorker(t)
	ctx := context.Background()
	root := t.TempDir()
	library := seedLibrary(t, db, root)

	writeCBZ(t, filepath.Join(root, "Akira", "Akira v01.cbz"), map[string][]byte{
		"002.png": pngBytes(t, 1),
		"001.png": pngBytes(t, 0),
	})
	runScan(t, w, library)

	allBooks, err := w.bookService.ListBooks(ctx, books.ListBooksOptions{LibraryID: &library.ID})
	require.NoError(t, err)
	require.Len(t, allBooks, 1)

	drainJobs(t, w, models.JobTypeAnalyze)

	book, err := w.bookService.RetrieveBook(ctx, books.RetrieveBookOptions{ID: &allBooks[0].ID})
	require.NoError(t, err)
	require.NotNil(t, book.Media)
	assert.Equal(t, models.MediaStatusReady, book.Media.Status)
	assert.Equal(t, models.MediaTypeZip, book.Media.MediaType)
	require.Len(t, book.Media.Pages, 2)
	assert.Equal(t, "001.png", book.Media.Pages[0].FileName)
	assert.NotEmpty(t, book.Media.Pages[0].FileHash)
	assert.NotEmpty(t, book.Media.Thumbnail, "first page becomes the thumbnail")

	// A ready analysis chains into a metadata refresh.
	assert.Len(t, jobsOfType(t, w, models.JobTypeRefreshBookMetadata), 1)
}

func TestProcessAnalyzeJobCorruptFile(t *testing.T) {
	w, db := newTestWorker(t)
	ctx := context.Background()
	root := t.TempDir()
	library := seedLibrary(t, db, root)

	path := filepath.Join(root, "Akira", "Akira v01.cbz")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("not a zip"), 0o644))
	runScan(t, w, library)

	allBooks, err := w.bookService.ListBooks(ctx, books.ListBooksOptions{LibraryID: &library.ID})
	require.NoError(t, err)
	require.Len(t, allBooks, 1)

	drainJobs(t, w, models.JobTypeAnalyze)

	book, err := w.bookService.RetrieveBook(ctx, books.RetrieveBookOptions{ID: &allBooks[0].ID})
	require.NoError(t, err)
	require.NotNil(t, book.Media)
	assert.NotEqual(t, models.MediaStatusReady, book.Media.Status)
	assert.Empty(t, book.Media.Pages)

	// Broken books never reach the metadata pipeline.
	assert.Empty(t, jobsOfType(t, w, models.JobTypeRefreshBookMetadata))
}
