package worker

import (
	"context"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"

	"github.com/hondana/hondana/pkg/books"
	"github.com/hondana/hondana/pkg/joblogs"
	"github.com/hondana/hondana/pkg/libraries"
	"github.com/hondana/hondana/pkg/metadata"
	"github.com/hondana/hondana/pkg/models"
	"github.com/hondana/hondana/pkg/providers"
	"github.com/hondana/hondana/pkg/readlists"
	"github.com/hondana/hondana/pkg/series"
)

var bookMetadataColumns = []string{
	"title", "summary", "number", "number_sort", "release_date",
	"authors", "tags", "isbn",
}

var seriesMetadataColumns = []string{
	"title", "title_sort", "summary", "status", "publisher", "language",
	"genres", "tags", "age_rating", "total_book_count",
}

// ProcessRefreshBookMetadataJob runs the metadata providers over one
// book in their fixed order and merges the results under the per-field
// locks. A provider failure is logged and skipped, never fatal. The
// series is refreshed afterwards since its aggregate may have moved.
func (w *Worker) ProcessRefreshBookMetadataJob(ctx context.Context, job *models.Job) error {
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
	library, err := w.libraryService.RetrieveLibrary(ctx, libraries.RetrieveLibraryOptions{
		ID: &book.LibraryID,
	})
	if err != nil {
		return errors.WithStack(err)
	}
	s, err := w.seriesService.RetrieveSeries(ctx, series.RetrieveSeriesOptions{
		ID: &book.SeriesID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	bookCtx := providers.BookContext{
		Library: library,
		Series:  s,
		Book:    book,
		Media:   book.Media,
	}

	changed := false
	for _, p := range w.providers {
		if !providers.HasCapability(p, providers.CapabilityBookMetadata) {
			continue
		}
		if !library.ProviderEnabled(p.Source()) {
			continue
		}

		patch, err := p.BookPatch(ctx, bookCtx)
		if err != nil {
			jobLog.Error("metadata provider failed", err, logger.Data{"provider": p.Name(), "book_id": book.ID})
			continue
		}
		if patch == nil {
			continue
		}

		if metadata.ApplyBookPatch(patch, book.Metadata) {
			changed = true
		}
		err = w.applyReadListHints(ctx, jobLog, book, patch.ReadLists)
		if err != nil {
			return errors.WithStack(err)
		}
	}

	if changed {
		jobLog.Info("book metadata updated", logger.Data{"book_id": book.ID})
		err = w.bookService.UpdateBookMetadata(ctx, book.Metadata, books.UpdateBookMetadataOptions{
			Columns: bookMetadataColumns,
		})
		if err != nil {
			return errors.WithStack(err)
		}
	}

	return errors.WithStack(w.enqueueJob(ctx, models.JobTypeRefreshSeriesMetadata, models.JobSeriesData{SeriesID: s.ID}))
}

// ProcessRefreshSeriesMetadataJob recomputes a series' metadata from
// its books. Each book contributes one merged patch; the set is then
// reduced by voting and applied under the per-field locks.
func (w *Worker) ProcessRefreshSeriesMetadataJob(ctx context.Context, job *models.Job) error {
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
	library, err := w.libraryService.RetrieveLibrary(ctx, libraries.RetrieveLibraryOptions{
		ID: &s.LibraryID,
	})
	if err != nil {
		return errors.WithStack(err)
	}
	seriesBooks, err := w.bookService.ListBooks(ctx, books.ListBooksOptions{
		SeriesID: &s.ID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	perBook := make([]*metadata.SeriesPatch, 0, len(seriesBooks))
	for _, book := range seriesBooks {
		bookCtx := providers.BookContext{
			Library: library,
			Series:  s,
			Book:    book,
			Media:   book.Media,
		}

		contributions := []*metadata.SeriesPatch{}
		for _, p := range w.providers {
			if !providers.HasCapability(p, providers.CapabilitySeriesMetadata) {
				continue
			}
			if !library.ProviderEnabled(p.Source()) {
				continue
			}

			patch, err := p.SeriesPatch(ctx, bookCtx)
			if err != nil {
				jobLog.Error("metadata provider failed", err, logger.Data{"provider": p.Name(), "book_id": book.ID})
				continue
			}
			contributions = append(contributions, patch)
		}
		perBook = append(perBook, metadata.MergeSeriesPatches(contributions...))
	}

	aggregate := metadata.AggregateSeriesPatches(perBook)
	if aggregate == nil {
		return nil
	}

	if metadata.ApplySeriesPatch(aggregate, s.Metadata) {
		jobLog.Info("series metadata updated", logger.Data{"series_id": s.ID})
		err = w.seriesService.UpdateSeriesMetadata(ctx, s.Metadata, series.UpdateSeriesMetadataOptions{
			Columns: seriesMetadataColumns,
		})
		if err != nil {
			return errors.WithStack(err)
		}
	}

	for _, name := range aggregate.Collections {
		err := w.collectionService.AddSeries(ctx, name, s.ID)
		if err != nil {
			return errors.WithStack(err)
		}
	}

	return nil
}

func (w *Worker) applyReadListHints(ctx context.Context, jobLog *joblogs.JobLogger, book *models.Book, hints []metadata.ReadListHint) error {
	for _, hint := range hints {
		if hint.Name == "" {
			continue
		}
		jobLog.Info("adding book to read list", logger.Data{"book_id": book.ID, "read_list": hint.Name})
		err := w.readListService.AddBook(ctx, readlists.AddBookOptions{
			Name:     hint.Name,
			BookID:   book.ID,
			Position: hint.Position,
		})
		if err != nil {
			return errors.WithStack(err)
		}
	}
	return nil
}
