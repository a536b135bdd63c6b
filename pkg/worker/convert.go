package worker

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"

	"github.com/hondana/hondana/pkg/books"
	"github.com/hondana/hondana/pkg/libraries"
	"github.com/hondana/hondana/pkg/models"
)

// ProcessConvertBookJob rewrites a book's container as CBZ, optionally
// dropping the pages named by hash. The database only changes after
// the converter has committed the verified file.
func (w *Worker) ProcessConvertBookJob(ctx context.Context, job *models.Job) error {
	log := logger.FromContext(ctx)
	jobLog := w.jobLogService.NewJobLogger(ctx, job.ID, log)

	data, ok := job.DataParsed.(*models.JobConvertData)
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

	// A plain format conversion is skipped unless the library wants
	// CBZ normalization. A zip container under a different extension
	// still gets renamed to .cbz.
	alreadyCBZ := strings.EqualFold(filepath.Ext(book.URL), ".cbz")
	if len(data.PageHashes) == 0 {
		if alreadyCBZ {
			jobLog.Info("book is already a cbz; nothing to convert", logger.Data{"book_id": book.ID})
			return nil
		}
		if !library.ConvertToCBZ {
			jobLog.Info("library does not convert to cbz; skipping", logger.Data{"book_id": book.ID})
			return nil
		}
	}

	jobLog.Info("converting book", logger.Data{"book_id": book.ID, "remove_pages": len(data.PageHashes)})

	result, err := w.converter.Convert(ctx, book, book.Media, data.PageHashes)
	if err != nil {
		jobLog.Error("conversion failed; original file left untouched", err, logger.Data{"book_id": book.ID})
		return errors.WithStack(err)
	}

	columns := []string{"file_size_bytes", "file_last_modified"}
	if result.URL != book.URL {
		book.URL = result.URL
		book.Name = strings.TrimSuffix(filepath.Base(result.URL), filepath.Ext(result.URL))
		columns = append(columns, "url", "name")
	}
	err = w.refreshBookFileStats(book)
	if err != nil {
		return errors.WithStack(err)
	}
	err = w.bookService.UpdateBook(ctx, book, books.UpdateBookOptions{
		Columns: columns,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	err = w.bookService.ReplaceMedia(ctx, book.ID, result.Media)
	if err != nil {
		return errors.WithStack(err)
	}

	jobLog.Info("conversion committed", logger.Data{"book_id": book.ID, "url": result.URL, "pages": len(result.Media.Pages)})
	return nil
}

func (w *Worker) refreshBookFileStats(book *models.Book) error {
	info, err := os.Stat(book.URL)
	if err != nil {
		return errors.WithStack(err)
	}
	book.FileSizeBytes = info.Size()
	book.FileLastModified = info.ModTime().Truncate(time.Millisecond)
	return nil
}
