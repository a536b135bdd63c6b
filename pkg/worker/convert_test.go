package worker

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hondana/hondana/pkg/books"
	"github.com/hondana/hondana/pkg/models"
)

func seedReadyBook(t *testing.T, w *Worker, library *models.Library, path string, entries map[string][]byte) *models.Book {
	t.Helper()
	ctx := context.Background()

	writeCBZ(t, path, entries)
	runScan(t, w, library)
	drainJobs(t, w, models.JobTypeAnalyze)

	allBooks, err := w.bookService.ListBooks(ctx, books.ListBooksOptions{LibraryID: &library.ID})
	require.NoError(t, err)
	require.Len(t, allBooks, 1)
	require.Equal(t, models.MediaStatusReady, allBooks[0].Media.Status)
	return allBooks[0]
}

func TestProcessConvertBookJobNormalizesExtension(t *testing.T) {
	w, db := newTestWorker(t)
	ctx := context.Background()
	root := t.TempDir()
	library := seedLibrary(t, db, root)
	library.ConvertToCBZ = true
	_, err := db.NewUpdate().Model(library).Column("convert_to_cbz").WherePK().Exec(ctx)
	require.NoError(t, err)

	original := filepath.Join(root, "Akira", "Akira v01.zip")
	book := seedReadyBook(t, w, library, original, map[string][]byte{
		"001.png": pngBytes(t, 0),
		"002.png": pngBytes(t, 1),
	})

	job := newJob(t, w, models.JobTypeConvertBook, models.JobConvertData{BookID: book.ID})
	require.NoError(t, w.ProcessConvertBookJob(ctx, job))

	converted, err := w.bookService.RetrieveBook(ctx, books.RetrieveBookOptions{ID: &book.ID})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(converted.URL, ".cbz"))
	assert.Equal(t, "Akira v01", converted.Name)
	assert.Equal(t, models.MediaStatusReady, converted.Media.Status)
	assert.Len(t, converted.Media.Pages, 2)

	_, err = os.Stat(original)
	assert.True(t, os.IsNotExist(err), "the old container is removed after the commit")
	info, err := os.Stat(converted.URL)
	require.NoError(t, err)
	assert.Equal(t, info.Size(), converted.FileSizeBytes, "stored file stats track the new container")
}

func TestProcessConvertBookJobRemovesPages(t *testing.T) {
	w, db := newTestWorker(t)
	ctx := context.Background()
	root := t.TempDir()
	library := seedLibrary(t, db, root)

	path := filepath.Join(root, "Akira", "Akira v01.cbz")
	book := seedReadyBook(t, w, library, path, map[string][]byte{
		"001.png": pngBytes(t, 0),
		"002.png": pngBytes(t, 1),
		"003.png": pngBytes(t, 2),
	})
	require.Len(t, book.Media.Pages, 3)
	require.NotNil(t, book.Media.Pages[1].FileHash)

	job := newJob(t, w, models.JobTypeConvertBook, models.JobConvertData{
		BookID:     book.ID,
		PageHashes: []string{*book.Media.Pages[1].FileHash},
	})
	require.NoError(t, w.ProcessConvertBookJob(ctx, job))

	converted, err := w.bookService.RetrieveBook(ctx, books.RetrieveBookOptions{ID: &book.ID})
	require.NoError(t, err)
	require.Len(t, converted.Media.Pages, 2)
	assert.Equal(t, *book.Media.Pages[0].FileHash, *converted.Media.Pages[0].FileHash)
	assert.Equal(t, *book.Media.Pages[2].FileHash, *converted.Media.Pages[1].FileHash)
}

func TestProcessConvertBookJobSkipsWhenDisabled(t *testing.T) {
	w, db := newTestWorker(t)
	ctx := context.Background()
	root := t.TempDir()
	library := seedLibrary(t, db, root)
	require.False(t, library.ConvertToCBZ)

	original := filepath.Join(root, "Akira", "Akira v01.zip")
	book := seedReadyBook(t, w, library, original, map[string][]byte{"001.png": pngBytes(t, 0)})

	job := newJob(t, w, models.JobTypeConvertBook, models.JobConvertData{BookID: book.ID})
	require.NoError(t, w.ProcessConvertBookJob(ctx, job))

	unchanged, err := w.bookService.RetrieveBook(ctx, books.RetrieveBookOptions{ID: &book.ID})
	require.NoError(t, err)
	assert.Equal(t, original, unchanged.URL)
	_, err = os.Stat(original)
	assert.NoError(t, err)
}
