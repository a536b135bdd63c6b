package collections

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"

	"github.com/hondana/hondana/pkg/errcodes"
	"github.com/hondana/hondana/pkg/models"
)

type RetrieveCollectionOptions struct {
	ID   *int
	Name *string
}

type ListCollectionsOptions struct {
	Limit  *int
	Offset *int

	includeTotal bool
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

func (svc *Service) RetrieveCollection(ctx context.Context, opts RetrieveCollectionOptions) (*models.SeriesCollection, error) {
	collection := &models.SeriesCollection{}

	q := svc.db.
		NewSelect().
		Model(collection).
		Relation("Series").
		Relation("Series.Series")

	if opts.ID != nil {
		q = q.Where("c.id = ?", *opts.ID)
	}
	if opts.Name != nil {
		q = q.Where("c.name = ? COLLATE NOCASE", *opts.Name)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Collection")
		}
		return nil, errors.WithStack(err)
	}

	return collection, nil
}

func (svc *Service) ListCollections(ctx context.Context, opts ListCollectionsOptions) ([]*models.SeriesCollection, error) {
	collections, _, err := svc.listCollectionsWithTotal(ctx, opts)
	return collections, errors.WithStack(err)
}

func (svc *Service) ListCollectionsWithTotal(ctx context.Context, opts ListCollectionsOptions) ([]*models.SeriesCollection, int, error) {
	opts.includeTotal = true
	return svc.listCollectionsWithTotal(ctx, opts)
}

func (svc *Service) listCollectionsWithTotal(ctx context.Context, opts ListCollectionsOptions) ([]*models.SeriesCollection, int, error) {
	collections := []*models.SeriesCollection{}
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&collections).
		Order("c.name ASC")

	if opts.Limit != nil {
		q = q.Limit(*opts.Limit)
	}
	if opts.Offset != nil {
		q = q.Offset(*opts.Offset)
	}

	if opts.includeTotal {
		total, err = q.ScanAndCount(ctx)
	} else {
		err = q.Scan(ctx)
	}
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return collections, total, nil
}

// AddSeries adds a series to the collection with the given name,
// creating the collection if needed. Names match case-insensitively
// and membership is idempotent.
func (svc *Service) AddSeries(ctx context.Context, name string, seriesID int) error {
	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		collection := &models.SeriesCollection{}
		err := tx.
			NewSelect().
			Model(collection).
			Where("c.name = ? COLLATE NOCASE", name).
			Scan(ctx)
		if err != nil {
			if !errors.Is(err, sql.ErrNoRows) {
				return errors.WithStack(err)
			}

			now := time.Now()
			collection = &models.SeriesCollection{
				Name:      name,
				CreatedAt: now,
				UpdatedAt: now,
			}
			_, err = tx.
				NewInsert().
				Model(collection).
				Returning("*").
				Exec(ctx)
			if err != nil {
				return errors.WithStack(err)
			}
		}

		exists, err := tx.
			NewSelect().
			Model((*models.CollectionSeries)(nil)).
			Where("collection_id = ?", collection.ID).
			Where("series_id = ?", seriesID).
			Exists(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if exists {
			return nil
		}

		_, err = tx.
			NewInsert().
			Model(&models.CollectionSeries{
				CollectionID: collection.ID,
				SeriesID:     seriesID,
			}).
			Exec(ctx)
		return errors.WithStack(err)
	})
	return errors.WithStack(err)
}

func (svc *Service) DeleteCollection(ctx context.Context, collectionID int) error {
	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.
			NewDelete().
			Model((*models.CollectionSeries)(nil)).
			Where("collection_id = ?", collectionID).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = tx.
			NewDelete().
			Model((*models.SeriesCollection)(nil)).
			Where("id = ?", collectionID).
			Exec(ctx)
		return errors.WithStack(err)
	})
	return errors.WithStack(err)
}

// DeleteEmptyCollections removes collections that no longer have any
// members. Run after scans for libraries that opt in.
func (svc *Service) DeleteEmptyCollections(ctx context.Context) (int, error) {
	res, err := svc.db.
		NewDelete().
		Model((*models.SeriesCollection)(nil)).
		Where("id NOT IN (SELECT DISTINCT collection_id FROM collection_series)").
		Exec(ctx)
	if err != nil {
		return 0, errors.WithStack(err)
	}

	deleted, err := res.RowsAffected()
	return int(deleted), errors.WithStack(err)
}
