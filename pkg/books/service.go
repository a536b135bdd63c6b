package books

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"

	"github.com/hondana/hondana/pkg/errcodes"
	"github.com/hondana/hondana/pkg/models"
)

type RetrieveBookOptions struct {
	ID  *int
	URL *string
}

type ListBooksOptions struct {
	Limit     *int
	Offset    *int
	LibraryID *int
	SeriesID  *int

	includeTotal bool
}

type UpdateBookOptions struct {
	Columns []string
}

type UpdateBookMetadataOptions struct {
	Columns []string
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// CreateBook inserts a book along with its metadata row and, when
// present, an initial media record. Missing metadata is seeded from the
// book name.
func (svc *Service) CreateBook(ctx context.Context, book *models.Book) error {
	now := time.Now()
	if book.CreatedAt.IsZero() {
		book.CreatedAt = now
	}
	book.UpdatedAt = book.CreatedAt

	if book.Metadata == nil {
		book.Metadata = &models.BookMetadata{
			Title: book.Name,
		}
	}

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.
			NewInsert().
			Model(book).
			Returning("*").
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		book.Metadata.BookID = book.ID
		book.Metadata.CreatedAt = book.CreatedAt
		book.Metadata.UpdatedAt = book.CreatedAt
		_, err = tx.
			NewInsert().
			Model(book.Metadata).
			Returning("*").
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		if book.Media != nil {
			book.Media.BookID = book.ID
			return insertMedia(ctx, tx, book.Media)
		}
		return nil
	})
	return errors.WithStack(err)
}

func (svc *Service) RetrieveBook(ctx context.Context, opts RetrieveBookOptions) (*models.Book, error) {
	book := &models.Book{}

	q := svc.db.
		NewSelect().
		Model(book).
		Relation("Metadata").
		Relation("Media").
		Relation("Media.Pages", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("mp.number ASC")
		}).
		Relation("Media.Files")

	if opts.ID != nil {
		q = q.Where("b.id = ?", *opts.ID)
	}
	if opts.URL != nil {
		q = q.Where("b.url = ?", *opts.URL)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Book")
		}
		return nil, errors.WithStack(err)
	}

	return book, nil
}

func (svc *Service) ListBooks(ctx context.Context, opts ListBooksOptions) ([]*models.Book, error) {
	books, _, err := svc.listBooksWithTotal(ctx, opts)
	return books, errors.WithStack(err)
}

func (svc *Service) ListBooksWithTotal(ctx context.Context, opts ListBooksOptions) ([]*models.Book, int, error) {
	opts.includeTotal = true
	return svc.listBooksWithTotal(ctx, opts)
}

func (svc *Service) listBooksWithTotal(ctx context.Context, opts ListBooksOptions) ([]*models.Book, int, error) {
	books := []*models.Book{}
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&books).
		Relation("Metadata").
		Relation("Media").
		Relation("Media.Pages", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("mp.number ASC")
		}).
		Relation("Media.Files").
		Order("b.number ASC", "b.name ASC")

	if opts.Limit != nil {
		q = q.Limit(*opts.Limit)
	}
	if opts.Offset != nil {
		q = q.Offset(*opts.Offset)
	}
	if opts.LibraryID != nil {
		q = q.Where("b.library_id = ?", *opts.LibraryID)
	}
	if opts.SeriesID != nil {
		q = q.Where("b.series_id = ?", *opts.SeriesID)
	}

	if opts.includeTotal {
		total, err = q.ScanAndCount(ctx)
	} else {
		err = q.Scan(ctx)
	}
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return books, total, nil
}

func (svc *Service) UpdateBook(ctx context.Context, book *models.Book, opts UpdateBookOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}

	// Update updated_at.
	now := time.Now()
	book.UpdatedAt = now
	columns := append(opts.Columns, "updated_at")

	_, err := svc.db.
		NewUpdate().
		Model(book).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errcodes.NotFound("Book")
		}
		return errors.WithStack(err)
	}

	return nil
}

func (svc *Service) UpdateBookMetadata(ctx context.Context, metadata *models.BookMetadata, opts UpdateBookMetadataOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}

	now := time.Now()
	metadata.UpdatedAt = now
	columns := append(opts.Columns, "updated_at")

	_, err := svc.db.
		NewUpdate().
		Model(metadata).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errcodes.NotFound("Book metadata")
		}
		return errors.WithStack(err)
	}

	return nil
}

// MarkMediaOutdated flags a media record for reanalysis without
// touching its pages.
func (svc *Service) MarkMediaOutdated(ctx context.Context, mediaID int) error {
	_, err := svc.db.
		NewUpdate().
		Model((*models.Media)(nil)).
		Set("status = ?", models.MediaStatusOutdated).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", mediaID).
		Exec(ctx)
	return errors.WithStack(err)
}

// UpdateMediaThumbnail overwrites a media record's thumbnail bytes.
func (svc *Service) UpdateMediaThumbnail(ctx context.Context, media *models.Media) error {
	media.UpdatedAt = time.Now()
	_, err := svc.db.
		NewUpdate().
		Model(media).
		Column("thumbnail", "updated_at").
		WherePK().
		Exec(ctx)
	return errors.WithStack(err)
}

// ReplaceMedia swaps a book's media record wholesale. Analysis results
// are never patched in place; the old media row and its pages and files
// are deleted and the new ones inserted in one transaction.
func (svc *Service) ReplaceMedia(ctx context.Context, bookID int, media *models.Media) error {
	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		err := deleteMediaForBooks(ctx, tx, []int{bookID})
		if err != nil {
			return err
		}

		media.BookID = bookID
		return insertMedia(ctx, tx, media)
	})
	return errors.WithStack(err)
}

// DeleteBook removes a book and all rows that hang off it: metadata,
// media, and read list memberships.
func (svc *Service) DeleteBook(ctx context.Context, bookID int) error {
	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		err := deleteMediaForBooks(ctx, tx, []int{bookID})
		if err != nil {
			return err
		}

		_, err = tx.
			NewDelete().
			Model((*models.BookMetadata)(nil)).
			Where("book_id = ?", bookID).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = tx.
			NewDelete().
			Model((*models.ReadListBook)(nil)).
			Where("book_id = ?", bookID).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = tx.
			NewDelete().
			Model((*models.Book)(nil)).
			Where("id = ?", bookID).
			Exec(ctx)
		return errors.WithStack(err)
	})
	return errors.WithStack(err)
}

func insertMedia(ctx context.Context, tx bun.Tx, media *models.Media) error {
	now := time.Now()
	if media.CreatedAt.IsZero() {
		media.CreatedAt = now
	}
	media.UpdatedAt = now

	_, err := tx.
		NewInsert().
		Model(media).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	for _, page := range media.Pages {
		page.MediaID = media.ID
	}
	if len(media.Pages) > 0 {
		_, err = tx.
			NewInsert().
			Model(&media.Pages).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
	}

	for _, file := range media.Files {
		file.MediaID = media.ID
	}
	if len(media.Files) > 0 {
		_, err = tx.
			NewInsert().
			Model(&media.Files).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
	}

	return nil
}

func deleteMediaForBooks(ctx context.Context, tx bun.Tx, bookIDs []int) error {
	mediaIDs := []int{}
	err := tx.
		NewSelect().
		Model((*models.Media)(nil)).
		Column("m.id").
		Where("m.book_id IN (?)", bun.In(bookIDs)).
		Scan(ctx, &mediaIDs)
	if err != nil {
		return errors.WithStack(err)
	}
	if len(mediaIDs) == 0 {
		return nil
	}

	_, err = tx.
		NewDelete().
		Model((*models.MediaPage)(nil)).
		Where("media_id IN (?)", bun.In(mediaIDs)).
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	_, err = tx.
		NewDelete().
		Model((*models.MediaFile)(nil)).
		Where("media_id IN (?)", bun.In(mediaIDs)).
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	_, err = tx.
		NewDelete().
		Model((*models.Media)(nil)).
		Where("id IN (?)", bun.In(mediaIDs)).
		Exec(ctx)
	return errors.WithStack(err)
}
