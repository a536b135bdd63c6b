package series

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"

	"github.com/hondana/hondana/pkg/errcodes"
	"github.com/hondana/hondana/pkg/models"
	"github.com/hondana/hondana/pkg/natsort"
)

type RetrieveSeriesOptions struct {
	ID        *int
	URL       *string
	LibraryID *int
}

type ListSeriesOptions struct {
	Limit     *int
	Offset    *int
	LibraryID *int

	includeTotal bool
}

type UpdateSeriesOptions struct {
	Columns []string
}

type UpdateSeriesMetadataOptions struct {
	Columns []string
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// CreateSeries inserts a series along with its metadata row. When no
// metadata is attached, one is seeded from the series name.
func (svc *Service) CreateSeries(ctx context.Context, series *models.Series) error {
	now := time.Now()
	if series.CreatedAt.IsZero() {
		series.CreatedAt = now
	}
	series.UpdatedAt = series.CreatedAt

	if series.Metadata == nil {
		series.Metadata = &models.SeriesMetadata{
			Title:     series.Name,
			TitleSort: natsort.TitleSort(series.Name),
			Status:    models.SeriesStatusOngoing,
		}
	}

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.
			NewInsert().
			Model(series).
			Returning("*").
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		series.Metadata.SeriesID = series.ID
		series.Metadata.CreatedAt = series.CreatedAt
		series.Metadata.UpdatedAt = series.CreatedAt
		_, err = tx.
			NewInsert().
			Model(series.Metadata).
			Returning("*").
			Exec(ctx)
		return errors.WithStack(err)
	})
	return errors.WithStack(err)
}

func (svc *Service) RetrieveSeries(ctx context.Context, opts RetrieveSeriesOptions) (*models.Series, error) {
	series := &models.Series{}

	q := svc.db.
		NewSelect().
		Model(series).
		Relation("Metadata")

	if opts.ID != nil {
		q = q.Where("s.id = ?", *opts.ID)
	}
	if opts.URL != nil {
		q = q.Where("s.url = ?", *opts.URL)
	}
	if opts.LibraryID != nil {
		q = q.Where("s.library_id = ?", *opts.LibraryID)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Series")
		}
		return nil, errors.WithStack(err)
	}

	return series, nil
}

func (svc *Service) ListSeries(ctx context.Context, opts ListSeriesOptions) ([]*models.Series, error) {
	s, _, err := svc.listSeriesWithTotal(ctx, opts)
	return s, errors.WithStack(err)
}

func (svc *Service) ListSeriesWithTotal(ctx context.Context, opts ListSeriesOptions) ([]*models.Series, int, error) {
	opts.includeTotal = true
	return svc.listSeriesWithTotal(ctx, opts)
}

func (svc *Service) listSeriesWithTotal(ctx context.Context, opts ListSeriesOptions) ([]*models.Series, int, error) {
	series := []*models.Series{}
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&series).
		Column("s.*").
		ColumnExpr("(SELECT COUNT(*) FROM books b WHERE b.series_id = s.id) AS book_count").
		Relation("Metadata").
		Order("s.name ASC")

	if opts.Limit != nil {
		q = q.Limit(*opts.Limit)
	}
	if opts.Offset != nil {
		q = q.Offset(*opts.Offset)
	}
	if opts.LibraryID != nil {
		q = q.Where("s.library_id = ?", *opts.LibraryID)
	}

	if opts.includeTotal {
		total, err = q.ScanAndCount(ctx)
	} else {
		err = q.Scan(ctx)
	}
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return series, total, nil
}

func (svc *Service) UpdateSeries(ctx context.Context, series *models.Series, opts UpdateSeriesOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}

	// Update updated_at.
	now := time.Now()
	series.UpdatedAt = now
	columns := append(opts.Columns, "updated_at")

	_, err := svc.db.
		NewUpdate().
		Model(series).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errcodes.NotFound("Series")
		}
		return errors.WithStack(err)
	}

	return nil
}

func (svc *Service) UpdateSeriesMetadata(ctx context.Context, metadata *models.SeriesMetadata, opts UpdateSeriesMetadataOptions) error {
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
			return errcodes.NotFound("Series metadata")
		}
		return errors.WithStack(err)
	}

	return nil
}

// DeleteSeries removes a series and everything that hangs off it: its
// books, their media and metadata, and any read list or collection
// memberships. No orphaned child rows may survive.
func (svc *Service) DeleteSeries(ctx context.Context, seriesID int) error {
	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		bookIDs := []int{}
		err := tx.
			NewSelect().
			Model((*models.Book)(nil)).
			Column("b.id").
			Where("b.series_id = ?", seriesID).
			Scan(ctx, &bookIDs)
		if err != nil {
			return errors.WithStack(err)
		}

		if len(bookIDs) > 0 {
			err = deleteBookChildren(ctx, tx, bookIDs)
			if err != nil {
				return err
			}
			_, err = tx.
				NewDelete().
				Model((*models.Book)(nil)).
				Where("id IN (?)", bun.In(bookIDs)).
				Exec(ctx)
			if err != nil {
				return errors.WithStack(err)
			}
		}

		_, err = tx.
			NewDelete().
			Model((*models.CollectionSeries)(nil)).
			Where("series_id = ?", seriesID).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = tx.
			NewDelete().
			Model((*models.SeriesMetadata)(nil)).
			Where("series_id = ?", seriesID).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = tx.
			NewDelete().
			Model((*models.Series)(nil)).
			Where("id = ?", seriesID).
			Exec(ctx)
		return errors.WithStack(err)
	})
	return errors.WithStack(err)
}

// deleteBookChildren removes media, metadata, and read list rows for the
// given books.
func deleteBookChildren(ctx context.Context, tx bun.Tx, bookIDs []int) error {
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

	if len(mediaIDs) > 0 {
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
		if err != nil {
			return errors.WithStack(err)
		}
	}

	_, err = tx.
		NewDelete().
		Model((*models.BookMetadata)(nil)).
		Where("book_id IN (?)", bun.In(bookIDs)).
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	_, err = tx.
		NewDelete().
		Model((*models.ReadListBook)(nil)).
		Where("book_id IN (?)", bun.In(bookIDs)).
		Exec(ctx)
	return errors.WithStack(err)
}
