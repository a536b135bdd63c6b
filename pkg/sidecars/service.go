package sidecars

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"

	"github.com/hondana/hondana/pkg/models"
)

type ListSidecarsOptions struct {
	LibraryID *int
	ParentURL *string
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

func (svc *Service) ListSidecars(ctx context.Context, opts ListSidecarsOptions) ([]*models.Sidecar, error) {
	sidecars := []*models.Sidecar{}

	q := svc.db.
		NewSelect().
		Model(&sidecars).
		Order("sc.url ASC")

	if opts.LibraryID != nil {
		q = q.Where("sc.library_id = ?", *opts.LibraryID)
	}
	if opts.ParentURL != nil {
		q = q.Where("sc.parent_url = ?", *opts.ParentURL)
	}

	err := q.Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return sidecars, nil
}

// UpsertSidecar records a sidecar seen on disk. It returns true when
// the sidecar is new or strictly newer than the stored row, meaning
// its content should be reprocessed. An unchanged or older timestamp
// is a no-op.
func (svc *Service) UpsertSidecar(ctx context.Context, sidecar *models.Sidecar) (bool, error) {
	existing := &models.Sidecar{}
	err := svc.db.
		NewSelect().
		Model(existing).
		Where("sc.library_id = ?", sidecar.LibraryID).
		Where("sc.url = ?", sidecar.URL).
		Scan(ctx)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return false, errors.WithStack(err)
		}

		now := time.Now()
		sidecar.CreatedAt = now
		sidecar.UpdatedAt = now
		_, err = svc.db.
			NewInsert().
			Model(sidecar).
			Returning("*").
			Exec(ctx)
		if err != nil {
			return false, errors.WithStack(err)
		}
		return true, nil
	}

	sidecar.ID = existing.ID
	sidecar.CreatedAt = existing.CreatedAt
	if !sidecar.LastModified.After(existing.LastModified) {
		sidecar.LastModified = existing.LastModified
		return false, nil
	}

	sidecar.UpdatedAt = time.Now()
	_, err = svc.db.
		NewUpdate().
		Model(sidecar).
		Column("parent_url", "kind", "last_modified", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return false, errors.WithStack(err)
	}

	return true, nil
}

// DeleteSidecarsExcept removes all sidecar rows of a library whose url
// is not in the given set. Called after a scan with the urls that are
// still on disk.
func (svc *Service) DeleteSidecarsExcept(ctx context.Context, libraryID int, urls []string) error {
	q := svc.db.
		NewDelete().
		Model((*models.Sidecar)(nil)).
		Where("library_id = ?", libraryID)

	if len(urls) > 0 {
		q = q.Where("url NOT IN (?)", bun.In(urls))
	}

	_, err := q.Exec(ctx)
	return errors.WithStack(err)
}
