package libraries

import (
	"context"
	"database/sql"
	"testing"

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

func TestCreateAndRetrieveLibrary(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	library := &models.Library{
		Name:            "Comics",
		RootPath:        "/data/comics",
		ImportComicInfo: true,
		ImportEpub:      true,
		ImportISBN:      true,
	}
	require.NoError(t, svc.CreateLibrary(ctx, library))
	require.NotZero(t, library.ID)

	loaded, err := svc.RetrieveLibrary(ctx, RetrieveLibraryOptions{ID: &library.ID})
	require.NoError(t, err)
	assert.Equal(t, "Comics", loaded.Name)
	assert.Equal(t, "/data/comics", loaded.RootPath)
	assert.True(t, loaded.ImportComicInfo)
	assert.False(t, loaded.ScanDeep)
}

func TestRetrieveLibraryNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	id := 42
	_, err := svc.RetrieveLibrary(context.Background(), RetrieveLibraryOptions{ID: &id})
	require.Error(t, err)
}

func TestListLibrariesExcludesDeleted(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	active := &models.Library{Name: "Active", RootPath: "/a"}
	require.NoError(t, svc.CreateLibrary(ctx, active))

	deleted := &models.Library{Name: "Old", RootPath: "/b"}
	require.NoError(t, svc.CreateLibrary(ctx, deleted))

	_, err := db.NewUpdate().
		Model(deleted).
		Set("deleted_at = CURRENT_TIMESTAMP").
		WherePK().
		Exec(ctx)
	require.NoError(t, err)

	libraries, err := svc.ListLibraries(ctx, ListLibrariesOptions{})
	require.NoError(t, err)
	require.Len(t, libraries, 1)
	assert.Equal(t, "Active", libraries[0].Name)

	all, total, err := svc.ListLibrariesWithTotal(ctx, ListLibrariesOptions{IncludeDeleted: true})
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, 2, total)
}

func TestUpdateLibraryOnlyNamedColumns(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	library := &models.Library{Name: "Before", RootPath: "/a"}
	require.NoError(t, svc.CreateLibrary(ctx, library))

	library.Name = "After"
	library.RootPath = "/should-not-change"
	require.NoError(t, svc.UpdateLibrary(ctx, library, UpdateLibraryOptions{Columns: []string{"name"}}))

	loaded, err := svc.RetrieveLibrary(ctx, RetrieveLibraryOptions{ID: &library.ID})
	require.NoError(t, err)
	assert.Equal(t, "After", loaded.Name)
	assert.Equal(t, "/a", loaded.RootPath)
}
