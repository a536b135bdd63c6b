package worker

import (
	"context"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"

	"github.com/hondana/hondana/pkg/books"
	"github.com/hondana/hondana/pkg/models"
)

// ProcessAnalyzeJob opens a book's container file, extracts its page
// list, and replaces the book's media record with the result. A ready
// analysis chains into a metadata refresh.
func (w *Worker) ProcessAnalyzeJob(ctx context.Context, job *models.Job) error {
	log := logger.FromContext(ctx)
	jobLog := w.jobLogService.NewJobLogger(ctx, job.ID, log)

	data, ok := job.DataParsed.(*models.JobAnalyzeData)
	if !ok {
		return errors.New("unexpected job data type")
	}

	book, err := w.bookService.RetrieveBook(ctx, books.RetrieveBookOptions{
		ID: &data.BookID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	jobLog.Info("analyzing book", logger.Data{"book_id": book.ID, "url": book.URL})

	media := w.analyzer.Analyze(ctx, book)
	err = w.bookService.ReplaceMedia(ctx, book.ID, media)
	if err != nil {
		return errors.WithStack(err)
	}

	switch media.Status {
	case models.MediaStatusReady:
		jobLog.Info("analysis complete", logger.Data{"book_id": book.ID, "pages": len(media.Pages)})
		err = w.enqueueJob(ctx, models.JobTypeRefreshBookMetadata, models.JobBookData{BookID: book.ID})
		if err != nil {
			return errors.WithStack(err)
		}
	default:
		jobLog.Warn("analysis did not produce pages", logger.Data{
			"book_id": book.ID,
			"status":  media.Status,
			"comment": media.Comment,
		})
	}

	return nil
}
