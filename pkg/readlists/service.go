package readlists

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"

	"github.com/hondana/hondana/pkg/errcodes"
	"github.com/hondana/hondana/pkg/models"
)

type RetrieveReadListOptions struct {
	ID   *int
	Name *string
}

type ListReadListsOptions struct {
	Limit  *int
	Offset *int

	includeTotal bool
}

type UpdateReadListOptions struct {
	Columns []string
}

// AddBookOptions places a book in a named read list. The list is
// created on first use. A nil Position or one already taken appends
// the book at the end instead.
type AddBookOptions struct {
	Name     string
	BookID   int
	Position *int
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

func (svc *Service) CreateReadList(ctx context.Context, readList *models.ReadList) error {
	now := time.Now()
	readList.CreatedAt = now
	readList.UpdatedAt = now

	_, err := svc.db.
		NewInsert().
		Model(readList).
		Returning("*").
		Exec(ctx)
	return errors.WithStack(err)
}

func (svc *Service) RetrieveReadList(ctx context.Context, opts RetrieveReadListOptions) (*models.ReadList, error) {
	readList := &models.ReadList{}

	q := svc.db.
		NewSelect().
		Model(readList).
		Relation("Books", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("rlb.position ASC")
		}).
		Relation("Books.Book")

	if opts.ID != nil {
		q = q.Where("rl.id = ?", *opts.ID)
	}
	if opts.Name != nil {
		q = q.Where("rl.name = ? COLLATE NOCASE", *opts.Name)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Read list")
		}
		return nil, errors.WithStack(err)
	}

	return readList, nil
}

func (svc *Service) ListReadLists(ctx context.Context, opts ListReadListsOptions) ([]*models.ReadList, error) {
	readLists, _, err := svc.listReadListsWithTotal(ctx, opts)
	return readLists, errors.WithStack(err)
}

func (svc *Service) ListReadListsWithTotal(ctx context.Context, opts ListReadListsOptions) ([]*models.ReadList, int, error) {
	opts.includeTotal = true
	return svc.listReadListsWithTotal(ctx, opts)
}

func (svc *Service) listReadListsWithTotal(ctx context.Context, opts ListReadListsOptions) ([]*models.ReadList, int, error) {
	readLists := []*models.ReadList{}
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&readLists).
		Order("rl.name ASC")

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

	return readLists, total, nil
}

func (svc *Service) UpdateReadList(ctx context.Context, readList *models.ReadList, opts UpdateReadListOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}

	now := time.Now()
	readList.UpdatedAt = now
	columns := append(opts.Columns, "updated_at")

	_, err := svc.db.
		NewUpdate().
		Model(readList).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errcodes.NotFound("Read list")
		}
		return errors.WithStack(err)
	}

	return nil
}

func (svc *Service) DeleteReadList(ctx context.Context, readListID int) error {
	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.
			NewDelete().
			Model((*models.ReadListBook)(nil)).
			Where("read_list_id = ?", readListID).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = tx.
			NewDelete().
			Model((*models.ReadList)(nil)).
			Where("id = ?", readListID).
			Exec(ctx)
		return errors.WithStack(err)
	})
	return errors.WithStack(err)
}

// AddBook adds a book to the read list with the given name, creating
// the list if needed. Names match case-insensitively. Re-adding a book
// keeps its existing position.
func (svc *Service) AddBook(ctx context.Context, opts AddBookOptions) error {
	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		readList := &models.ReadList{}
		err := tx.
			NewSelect().
			Model(readList).
			Where("rl.name = ? COLLATE NOCASE", opts.Name).
			Scan(ctx)
		if err != nil {
			if !errors.Is(err, sql.ErrNoRows) {
				return errors.WithStack(err)
			}

			now := time.Now()
			readList = &models.ReadList{
				Name:      opts.Name,
				CreatedAt: now,
				UpdatedAt: now,
			}
			_, err = tx.
				NewInsert().
				Model(readList).
				Returning("*").
				Exec(ctx)
			if err != nil {
				return errors.WithStack(err)
			}
		}

		exists, err := tx.
			NewSelect().
			Model((*models.ReadListBook)(nil)).
			Where("read_list_id = ?", readList.ID).
			Where("book_id = ?", opts.BookID).
			Exists(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if exists {
			return nil
		}

		position, err := resolvePosition(ctx, tx, readList.ID, opts.Position)
		if err != nil {
			return err
		}

		_, err = tx.
			NewInsert().
			Model(&models.ReadListBook{
				ReadListID: readList.ID,
				BookID:     opts.BookID,
				Position:   position,
			}).
			Exec(ctx)
		return errors.WithStack(err)
	})
	return errors.WithStack(err)
}

// resolvePosition returns the requested position when it is free, and
// one past the current maximum otherwise. Positions never shift
// existing members.
func resolvePosition(ctx context.Context, tx bun.Tx, readListID int, requested *int) (int, error) {
	if requested != nil {
		taken, err := tx.
			NewSelect().
			Model((*models.ReadListBook)(nil)).
			Where("read_list_id = ?", readListID).
			Where("position = ?", *requested).
			Exists(ctx)
		if err != nil {
			return 0, errors.WithStack(err)
		}
		if !taken {
			return *requested, nil
		}
	}

	var max sql.NullInt64
	err := tx.
		NewSelect().
		Model((*models.ReadListBook)(nil)).
		ColumnExpr("MAX(position)").
		Where("read_list_id = ?", readListID).
		Scan(ctx, &max)
	if err != nil {
		return 0, errors.WithStack(err)
	}

	return int(max.Int64) + 1, nil
}

// DeleteEmptyReadLists removes read lists that no longer have any
// members. Run after scans for libraries that opt in.
func (svc *Service) DeleteEmptyReadLists(ctx context.Context) (int, error) {
	res, err := svc.db.
		NewDelete().
		Model((*models.ReadList)(nil)).
		Where("id NOT IN (SELECT DISTINCT read_list_id FROM read_list_books)").
		Exec(ctx)
	if err != nil {
		return 0, errors.WithStack(err)
	}

	deleted, err := res.RowsAffected()
	return int(deleted), errors.WithStack(err)
}
