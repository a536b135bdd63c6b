package worker

import (
	"context"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"

	"github.com/hondana/hondana/pkg/books"
	"github.com/hondana/hondana/pkg/errcodes"
	"github.com/hondana/hondana/pkg/joblogs"
	"github.com/hondana/hondana/pkg/libraries"
	"github.com/hondana/hondana/pkg/models"
	"github.com/hondana/hondana/pkg/scanner"
	"github.com/hondana/hondana/pkg/series"
)

// ProcessScanJob walks a library root and reconciles the database with
// what is on disk. The filesystem is the source of truth for which
// series and books exist; metadata edits survive through the lock
// flags, not by skipping reconciliation.
func (w *Worker) ProcessScanJob(ctx context.Context, job *models.Job) error {
	log := logger.FromContext(ctx)
	jobLog := w.jobLogService.NewJobLogger(ctx, job.ID, log)

	data, ok := job.DataParsed.(*models.JobScanData)
	if !ok {
		return errors.New("unexpected job data type")
	}

	library, err := w.libraryService.RetrieveLibrary(ctx, libraries.RetrieveLibraryOptions{
		ID: &data.LibraryID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	jobLog.Info("starting scan", logger.Data{"library_id": library.ID, "root_path": library.RootPath})

	// An unreadable root aborts the scan before any database changes. A
	// missing disk must not dissolve the whole library.
	snapshot, err := w.scanner.Scan(library.RootPath, library.ForceModifiedTime)
	if err != nil {
		jobLog.Error("library root is not readable; aborting scan", err, logger.Data{"root_path": library.RootPath})
		return errors.WithStack(err)
	}

	err = w.reconcileLibrary(ctx, job, library, snapshot)
	if err != nil {
		return errors.WithStack(err)
	}

	err = w.reconcileSidecars(ctx, library, snapshot)
	if err != nil {
		return errors.WithStack(err)
	}

	if library.DeleteEmptyReadLists {
		deleted, err := w.readListService.DeleteEmptyReadLists(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if deleted > 0 {
			jobLog.Info("deleted empty read lists", logger.Data{"count": deleted})
		}
	}
	if library.DeleteEmptyCollections {
		deleted, err := w.collectionService.DeleteEmptyCollections(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if deleted > 0 {
			jobLog.Info("deleted empty collections", logger.Data{"count": deleted})
		}
	}

	jobLog.Info("finished scan", logger.Data{"series_count": len(snapshot.Series)})
	return nil
}

func (w *Worker) reconcileLibrary(ctx context.Context, job *models.Job, library *models.Library, snapshot *scanner.Snapshot) error {
	log := logger.FromContext(ctx)
	jobLog := w.jobLogService.NewJobLogger(ctx, job.ID, log)

	existingSeries, err := w.seriesService.ListSeries(ctx, series.ListSeriesOptions{
		LibraryID: &library.ID,
	})
	if err != nil {
		return errors.WithStack(err)
	}
	seriesByURL := map[string]*models.Series{}
	for _, s := range existingSeries {
		seriesByURL[s.URL] = s
	}

	seenSeries := map[string]bool{}
	total := len(snapshot.Series)
	for i, entry := range snapshot.Series {
		seenSeries[entry.Series.URL] = true
		err := w.reconcileSeries(ctx, jobLog, library, seriesByURL[entry.Series.URL], entry)
		if err != nil {
			return errors.WithStack(err)
		}
		w.updateProgress(ctx, job, i+1, total)
	}

	// Series directories gone from disk take everything under them.
	// An empty but readable root is an empty snapshot, so this also
	// clears the whole library.
	for url, s := range seriesByURL {
		if seenSeries[url] {
			continue
		}
		jobLog.Info("deleting series no longer on disk", logger.Data{"series_id": s.ID, "url": url})
		err := w.seriesService.DeleteSeries(ctx, s.ID)
		if err != nil {
			return errors.WithStack(err)
		}
	}

	return nil
}

// reconcileSeries brings one series directory in line with its snapshot
// entry, creating or updating the series row and diffing its books.
func (w *Worker) reconcileSeries(ctx context.Context, jobLog *joblogs.JobLogger, library *models.Library, existing *models.Series, entry scanner.SeriesEntry) error {
	seriesChanged := true
	if existing == nil {
		existing = &models.Series{
			LibraryID:        library.ID,
			URL:              entry.Series.URL,
			Name:             entry.Series.Name,
			FileLastModified: entry.Series.LastModified,
		}
		jobLog.Info("creating series", logger.Data{"url": entry.Series.URL})
		err := w.seriesService.CreateSeries(ctx, existing)
		if err != nil {
			return errors.WithStack(err)
		}
	} else if !existing.FileLastModified.Equal(entry.Series.LastModified) || existing.Name != entry.Series.Name {
		existing.Name = entry.Series.Name
		existing.FileLastModified = entry.Series.LastModified
		err := w.seriesService.UpdateSeries(ctx, existing, series.UpdateSeriesOptions{
			Columns: []string{"name", "file_last_modified"},
		})
		if err != nil {
			return errors.WithStack(err)
		}
	} else {
		seriesChanged = false
	}

	// An unchanged series only has its books re-diffed when the library
	// asks for deep scans. The series modified time covers both the
	// directory and the newest book, so membership and content changes
	// still register as a changed series on shallow scans.
	if !seriesChanged && !library.ScanDeep {
		return nil
	}

	existingBooks, err := w.bookService.ListBooks(ctx, books.ListBooksOptions{
		SeriesID: &existing.ID,
	})
	if err != nil {
		return errors.WithStack(err)
	}
	booksByURL := map[string]*models.Book{}
	for _, b := range existingBooks {
		booksByURL[b.URL] = b
	}

	membershipChanged := false
	seenBooks := map[string]bool{}
	for _, stub := range entry.Books {
		seenBooks[stub.URL] = true
		book := booksByURL[stub.URL]
		if book == nil {
			membershipChanged = true
			err := w.createBookFromStub(ctx, jobLog, library, existing, stub)
			if err != nil {
				return errors.WithStack(err)
			}
			continue
		}

		// Millisecond precision on both sides keeps this comparison
		// stable across filesystems.
		if book.FileLastModified.Equal(stub.LastModified) && book.FileSizeBytes == stub.SizeBytes {
			continue
		}

		jobLog.Info("book file changed; marking for reanalysis", logger.Data{"book_id": book.ID, "url": book.URL})
		book.FileLastModified = stub.LastModified
		book.FileSizeBytes = stub.SizeBytes
		err := w.bookService.UpdateBook(ctx, book, books.UpdateBookOptions{
			Columns: []string{"file_last_modified", "file_size_bytes"},
		})
		if err != nil {
			return errors.WithStack(err)
		}
		err = w.markMediaOutdated(ctx, book)
		if err != nil {
			return errors.WithStack(err)
		}
		err = w.enqueueJob(ctx, models.JobTypeAnalyze, models.JobAnalyzeData{BookID: book.ID})
		if err != nil {
			return errors.WithStack(err)
		}
	}

	for url, book := range booksByURL {
		if seenBooks[url] {
			continue
		}
		membershipChanged = true
		jobLog.Info("deleting book no longer on disk", logger.Data{"book_id": book.ID, "url": url})
		err := w.bookService.DeleteBook(ctx, book.ID)
		if err != nil {
			return errors.WithStack(err)
		}
	}

	if membershipChanged {
		err := w.sortBooks(ctx, existing.ID)
		if err != nil {
			return errors.WithStack(err)
		}
		err = w.enqueueJob(ctx, models.JobTypeRefreshSeriesMetadata, models.JobSeriesData{SeriesID: existing.ID})
		if err != nil {
			return errors.WithStack(err)
		}
	}

	return nil
}

func (w *Worker) createBookFromStub(ctx context.Context, jobLog *joblogs.JobLogger, library *models.Library, s *models.Series, stub scanner.BookStub) error {
	jobLog.Info("creating book", logger.Data{"url": stub.URL})

	book := &models.Book{
		LibraryID:        library.ID,
		SeriesID:         s.ID,
		URL:              stub.URL,
		Name:             stub.Name,
		FileLastModified: stub.LastModified,
		FileSizeBytes:    stub.SizeBytes,
		Media: &models.Media{
			Status: models.MediaStatusOutdated,
		},
	}
	err := w.bookService.CreateBook(ctx, book)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(w.enqueueJob(ctx, models.JobTypeAnalyze, models.JobAnalyzeData{BookID: book.ID}))
}

func (w *Worker) markMediaOutdated(ctx context.Context, book *models.Book) error {
	if book.Media == nil {
		return nil
	}
	return errors.WithStack(w.bookService.MarkMediaOutdated(ctx, book.Media.ID))
}

// reconcileSidecars upserts the sidecars found on disk, queues artwork
// refreshes for the ones that are new or strictly newer, and drops
// rows for sidecars that vanished.
func (w *Worker) reconcileSidecars(ctx context.Context, library *models.Library, snapshot *scanner.Snapshot) error {
	urls := make([]string, 0, len(snapshot.Sidecars))
	for _, stub := range snapshot.Sidecars {
		urls = append(urls, stub.URL)

		changed, err := w.sidecarService.UpsertSidecar(ctx, &models.Sidecar{
			LibraryID:    library.ID,
			URL:          stub.URL,
			ParentURL:    stub.ParentURL,
			Kind:         stub.Kind,
			LastModified: stub.LastModified,
		})
		if err != nil {
			return errors.WithStack(err)
		}
		if !changed {
			continue
		}

		err = w.enqueueSidecarRefresh(ctx, library, stub)
		if err != nil {
			return errors.WithStack(err)
		}
	}

	return errors.WithStack(w.sidecarService.DeleteSidecarsExcept(ctx, library.ID, urls))
}

// enqueueSidecarRefresh queues the refresh matching the sidecar's
// parent: a book job when it names a book file, a series job when it
// names a series directory.
func (w *Worker) enqueueSidecarRefresh(ctx context.Context, library *models.Library, stub scanner.SidecarStub) error {
	book, err := w.bookService.RetrieveBook(ctx, books.RetrieveBookOptions{
		URL: &stub.ParentURL,
	})
	if err != nil && !errors.Is(err, errcodes.NotFound("Book")) {
		return errors.WithStack(err)
	}
	if book != nil {
		return errors.WithStack(w.enqueueJob(ctx, models.JobTypeRefreshBookArtwork, models.JobBookData{BookID: book.ID}))
	}

	s, err := w.seriesService.RetrieveSeries(ctx, series.RetrieveSeriesOptions{
		LibraryID: &library.ID,
		URL:       &stub.ParentURL,
	})
	if err != nil {
		if errors.Is(err, errcodes.NotFound("Series")) {
			return nil
		}
		return errors.WithStack(err)
	}

	if stub.Kind == models.SidecarKindInfo {
		return errors.WithStack(w.enqueueJob(ctx, models.JobTypeRefreshSeriesMetadata, models.JobSeriesData{SeriesID: s.ID}))
	}
	return errors.WithStack(w.enqueueJob(ctx, models.JobTypeRefreshSeriesArtwork, models.JobSeriesData{SeriesID: s.ID}))
}
