package collections

import (
	"context"
	"database/sql"
	"testing"

	"github.com/robinjoseph08/golib/pointerutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/hondana/hondana/pkg/migrations"
	"github.com/hondana/hondana/pkg/models"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func seedSeries(t *testing.T, db *bun.DB, names ...string) []*models.Series {
	t.Helper()
	ctx := context.Background()

	library := &models.Library{Name: "Comics", RootPath: "/data/comics"}
	_, err := db.NewInsert().Model(library).Returning("*").Exec(ctx)
	require.NoError(t, err)

	series := make([]*models.Series, len(names))
	for i, name := range names {
		series[i] = &models.Series{
			LibraryID: library.ID,
			URL:       "/data/comics/" + name,
			Name:      name,
		}
		_, err = db.NewInsert().Model(series[i]).Returning("*").Exec(ctx)
		require.NoError(t, err)
	}
	return series
}

func TestAddSeriesCreatesCollectionOnFirstUse(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()
	series := seedSeries(t, db, "Akira", "Dune")

	require.NoError(t, svc.AddSeries(ctx, "Cyberpunk", series[0].ID))

	collection, err := svc.RetrieveCollection(ctx, RetrieveCollectionOptions{
		Name: pointerutil.String("Cyberpunk"),
	})
	require.NoError(t, err)
	require.Len(t, collection.Series, 1)

	// Case-insensitive match, idempotent membership.
	require.NoError(t, svc.AddSeries(ctx, "cyberpunk", series[0].ID))
	require.NoError(t, svc.AddSeries(ctx, "CYBERPUNK", series[1].ID))

	collections, err := svc.ListCollections(ctx, ListCollectionsOptions{})
	require.NoError(t, err)
	assert.Len(t, collections, 1)

	collection, err = svc.RetrieveCollection(ctx, RetrieveCollectionOptions{ID: &collection.ID})
	require.NoError(t, err)
	assert.Len(t, collection.Series, 2)
}

func TestDeleteEmptyCollections(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()
	series := seedSeries(t, db, "Akira")

	require.NoError(t, svc.AddSeries(ctx, "Kept", series[0].ID))

	empty := &models.SeriesCollection{Name: "Empty"}
	_, err := db.NewInsert().Model(empty).Returning("*").Exec(ctx)
	require.NoError(t, err)

	deleted, err := svc.DeleteEmptyCollections(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	collections, err := svc.ListCollections(ctx, ListCollectionsOptions{})
	require.NoError(t, err)
	require.Len(t, collections, 1)
	assert.Equal(t, "Kept", collections[0].Name)
}

func TestDeleteCollectionRemovesMemberships(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()
	series := seedSeries(t, db, "Akira")

	require.NoError(t, svc.AddSeries(ctx, "Cyberpunk", series[0].ID))
	collection, err := svc.RetrieveCollection(ctx, RetrieveCollectionOptions{
		Name: pointerutil.String("Cyberpunk"),
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteCollection(ctx, collection.ID))

	count, err := db.NewSelect().Model((*models.CollectionSeries)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
	// The series itself survives.
	count, err = db.NewSelect().Model((*models.Series)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
