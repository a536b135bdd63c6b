package worker

import (
	"context"
	"os"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"

	"github.com/hondana/hondana/pkg/books"
	"github.com/hondana/hondana/pkg/images"
	"github.com/hondana/hondana/pkg/models"
	"github.com/hondana/hondana/pkg/series"
	"github.com/hondana/hondana/pkg/sidecars"
)

// ProcessRefreshBookArtworkJob rebuilds a book's thumbnail. An artwork
// sidecar next to the file wins over the first page.
func (w *Worker) ProcessRefreshBookArtworkJob(ctx context.Context, job *models.Job) error {
	log := logger.FromContext(ctx)
	jobLog := w.jobLogService.NewJobLogger(ctx, job.ID, log)

	data, ok := job.DataParsed.(*models.JobBookData)
	if !ok {
		return errors.New("unexpected job data type")
	}

	book, err := w.bookService.RetrieveBook(ctx, books.RetrieveBookOptions{
		ID: &data.BookID,
	})
	if err != nil {
		return errors.WithStack(err)
	}
	if book.Media == nil {
		jobLog.Warn("book has no media record; skipping artwork refresh", logger.Data{"book_id": book.ID})
		return nil
	}

	thumbnail, err := w.sidecarThumbnail(ctx, book.LibraryID, book.URL)
	if err != nil {
		return errors.WithStack(err)
	}
	if thumbnail == nil {
		return nil
	}

	jobLog.Info("updating book thumbnail from sidecar", logger.Data{"book_id": book.ID})
	return errors.WithStack(w.updateMediaThumbnail(ctx, book.Media.ID, thumbnail))
}

// ProcessRefreshSeriesArtworkJob rebuilds a series' thumbnail. A series
// artwork sidecar wins; otherwise the first book's thumbnail is used.
func (w *Worker) ProcessRefreshSeriesArtworkJob(ctx context.Context, job *models.Job) error {
	log := logger.FromContext(ctx)
	jobLog := w.jobLogService.NewJobLogger(ctx, job.ID, log)

	data, ok := job.DataParsed.(*models.JobSeriesData)
	if !ok {
		return errors.New("unexpected job data type")
	}

	s, err := w.seriesService.RetrieveSeries(ctx, series.RetrieveSeriesOptions{
		ID: &data.SeriesID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	thumbnail, err := w.sidecarThumbnail(ctx, s.LibraryID, s.URL)
	if err != nil {
		return errors.WithStack(err)
	}
	if thumbnail == nil {
		thumbnail = w.firstBookThumbnail(ctx, s.ID)
	}
	if thumbnail == nil {
		return nil
	}

	jobLog.Info("updating series thumbnail", logger.Data{"series_id": s.ID})
	s.Thumbnail = thumbnail
	return errors.WithStack(w.seriesService.UpdateSeries(ctx, s, series.UpdateSeriesOptions{
		Columns: []string{"thumbnail"},
	}))
}

// sidecarThumbnail renders the newest artwork sidecar attached to the
// given parent, or nil when there is none.
func (w *Worker) sidecarThumbnail(ctx context.Context, libraryID int, parentURL string) ([]byte, error) {
	all, err := w.sidecarService.ListSidecars(ctx, sidecars.ListSidecarsOptions{
		LibraryID: &libraryID,
		ParentURL: &parentURL,
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	var newest *models.Sidecar
	for _, sc := range all {
		if sc.Kind != models.SidecarKindArtwork {
			continue
		}
		if newest == nil || sc.LastModified.After(newest.LastModified) {
			newest = sc
		}
	}
	if newest == nil {
		return nil, nil
	}

	raw, err := os.ReadFile(newest.URL)
	if err != nil {
		// The file may have vanished since the scan; the next scan
		// cleans up the row.
		return nil, nil
	}
	thumbnail, err := images.Thumbnail(raw, w.config.ThumbnailSize)
	if err != nil {
		return nil, nil
	}
	return thumbnail, nil
}

func (w *Worker) firstBookThumbnail(ctx context.Context, seriesID int) []byte {
	seriesBooks, err := w.bookService.ListBooks(ctx, books.ListBooksOptions{
		SeriesID: &seriesID,
	})
	if err != nil {
		return nil
	}
	for _, book := range seriesBooks {
		if book.Media != nil && len(book.Media.Thumbnail) > 0 {
			return book.Media.Thumbnail
		}
	}
	return nil
}

func (w *Worker) updateMediaThumbnail(ctx context.Context, mediaID int, thumbnail []byte) error {
	media := &models.Media{ID: mediaID, Thumbnail: thumbnail}
	return errors.WithStack(w.bookService.UpdateMediaThumbnail(ctx, media))
}
