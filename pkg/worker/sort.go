package worker

import (
	"context"
	"strconv"

	"github.com/pkg/errors"

	"github.com/hondana/hondana/pkg/books"
	"github.com/hondana/hondana/pkg/models"
	"github.com/hondana/hondana/pkg/natsort"
)

// sortBooks reassigns book ordinals within a series after membership
// changes. Books are numbered 1..n by the natural sort of their file
// names, and each book's metadata number follows the ordinal unless
// the user has locked it.
func (w *Worker) sortBooks(ctx context.Context, seriesID int) error {
	seriesBooks, err := w.bookService.ListBooks(ctx, books.ListBooksOptions{
		SeriesID: &seriesID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	natsort.SortFunc(seriesBooks, func(b *models.Book) string {
		return b.Name
	})

	for i, book := range seriesBooks {
		ordinal := i + 1
		if book.Number != ordinal {
			book.Number = ordinal
			err := w.bookService.UpdateBook(ctx, book, books.UpdateBookOptions{
				Columns: []string{"number"},
			})
			if err != nil {
				return errors.WithStack(err)
			}
		}

		md := book.Metadata
		if md == nil {
			continue
		}

		columns := []string{}
		display := strconv.Itoa(ordinal)
		if !md.NumberLock && md.Number != display {
			md.Number = display
			columns = append(columns, "number")
		}
		if !md.NumberSortLock && md.NumberSort != float64(ordinal) {
			md.NumberSort = float64(ordinal)
			columns = append(columns, "number_sort")
		}
		if len(columns) > 0 {
			err := w.bookService.UpdateBookMetadata(ctx, md, books.UpdateBookMetadataOptions{
				Columns: columns,
			})
			if err != nil {
				return errors.WithStack(err)
			}
		}
	}

	return nil
}
