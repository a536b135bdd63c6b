package series

import (
	"context"
	"database/sql"
	"testing"
	"time"

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

func seedLibrary(t *testing.T, db *bun.DB) *models.Library {
	t.Helper()

	library := &models.Library{
		Name:     "Comics",
		RootPath: "/data/comics",
	}
	_, err := db.NewInsert().Model(library).Returning("*").Exec(context.Background())
	require.NoError(t, err)
	return library
}

func TestCreateSeriesSeedsMetadata(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()
	library := seedLibrary(t, db)

	series := &models.Series{
		LibraryID: library.ID,
		URL:       "/data/comics/The Hobbit",
		Name:      "The Hobbit",
	}
	require.NoError(t, svc.CreateSeries(ctx, series))
	require.NotZero(t, series.ID)
	require.NotNil(t, series.Metadata)
	assert.Equal(t, series.ID, series.Metadata.SeriesID)
	assert.Equal(t, "The Hobbit", series.Metadata.Title)
	assert.Equal(t, "Hobbit, The", series.Metadata.TitleSort)
	assert.Equal(t, models.SeriesStatusOngoing, series.Metadata.Status)

	loaded, err := svc.RetrieveSeries(ctx, RetrieveSeriesOptions{ID: &series.ID})
	require.NoError(t, err)
	require.NotNil(t, loaded.Metadata)
	assert.Equal(t, "The Hobbit", loaded.Metadata.Title)
}

func TestRetrieveSeriesByURL(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()
	library := seedLibrary(t, db)

	series := &models.Series{
		LibraryID: library.ID,
		URL:       "/data/comics/Akira",
		Name:      "Akira",
	}
	require.NoError(t, svc.CreateSeries(ctx, series))

	loaded, err := svc.RetrieveSeries(ctx, RetrieveSeriesOptions{
		LibraryID: &library.ID,
		URL:       pointerutil.String("/data/comics/Akira"),
	})
	require.NoError(t, err)
	assert.Equal(t, series.ID, loaded.ID)

	_, err = svc.RetrieveSeries(ctx, RetrieveSeriesOptions{
		LibraryID: &library.ID,
		URL:       pointerutil.String("/data/comics/Missing"),
	})
	assert.Error(t, err)
}

func TestListSeriesBookCount(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()
	library := seedLibrary(t, db)

	series := &models.Series{
		LibraryID: library.ID,
		URL:       "/data/comics/Akira",
		Name:      "Akira",
	}
	require.NoError(t, svc.CreateSeries(ctx, series))

	for _, name := range []string{"Akira v01.cbz", "Akira v02.cbz"} {
		book := &models.Book{
			LibraryID: library.ID,
			SeriesID:  series.ID,
			URL:       "/data/comics/Akira/" + name,
			Name:      name,
		}
		_, err := db.NewInsert().Model(book).Exec(ctx)
		require.NoError(t, err)
	}

	listed, total, err := svc.ListSeriesWithTotal(ctx, ListSeriesOptions{
		LibraryID: &library.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, listed, 1)
	assert.Equal(t, 2, listed[0].BookCount)
}

func TestUpdateSeriesMetadataOnlyNamedColumns(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()
	library := seedLibrary(t, db)

	series := &models.Series{
		LibraryID: library.ID,
		URL:       "/data/comics/Akira",
		Name:      "Akira",
	}
	require.NoError(t, svc.CreateSeries(ctx, series))

	md := series.Metadata
	md.Summary = "Neo-Tokyo is about to explode."
	md.SummaryLock = true
	md.Publisher = "should not persist"
	err := svc.UpdateSeriesMetadata(ctx, md, UpdateSeriesMetadataOptions{
		Columns: []string{"summary", "summary_lock"},
	})
	require.NoError(t, err)

	loaded, err := svc.RetrieveSeries(ctx, RetrieveSeriesOptions{ID: &series.ID})
	require.NoError(t, err)
	assert.Equal(t, "Neo-Tokyo is about to explode.", loaded.Metadata.Summary)
	assert.True(t, loaded.Metadata.SummaryLock)
	assert.Empty(t, loaded.Metadata.Publisher)
}

func TestDeleteSeriesCascades(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()
	library := seedLibrary(t, db)

	series := &models.Series{
		LibraryID: library.ID,
		URL:       "/data/comics/Akira",
		Name:      "Akira",
	}
	require.NoError(t, svc.CreateSeries(ctx, series))

	book := &models.Book{
		LibraryID:        library.ID,
		SeriesID:         series.ID,
		URL:              "/data/comics/Akira/Akira v01.cbz",
		Name:             "Akira v01.cbz",
		FileLastModified: time.Now(),
	}
	_, err := db.NewInsert().Model(book).Returning("*").Exec(ctx)
	require.NoError(t, err)

	bookMD := &models.BookMetadata{BookID: book.ID, Title: "Akira v01"}
	_, err = db.NewInsert().Model(bookMD).Exec(ctx)
	require.NoError(t, err)

	media := &models.Media{BookID: book.ID, Status: models.MediaStatusReady, MediaType: models.MediaTypeZip}
	_, err = db.NewInsert().Model(media).Returning("*").Exec(ctx)
	require.NoError(t, err)
	page := &models.MediaPage{MediaID: media.ID, Number: 1, FileName: "001.jpg", MediaType: "image/jpeg"}
	_, err = db.NewInsert().Model(page).Exec(ctx)
	require.NoError(t, err)

	readList := &models.ReadList{Name: "Favorites"}
	_, err = db.NewInsert().Model(readList).Returning("*").Exec(ctx)
	require.NoError(t, err)
	_, err = db.NewInsert().Model(&models.ReadListBook{ReadListID: readList.ID, BookID: book.ID, Position: 1}).Exec(ctx)
	require.NoError(t, err)

	collection := &models.SeriesCollection{Name: "Cyberpunk"}
	_, err = db.NewInsert().Model(collection).Returning("*").Exec(ctx)
	require.NoError(t, err)
	_, err = db.NewInsert().Model(&models.CollectionSeries{CollectionID: collection.ID, SeriesID: series.ID}).Exec(ctx)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteSeries(ctx, series.ID))

	for _, model := range []interface{}{
		(*models.Series)(nil),
		(*models.SeriesMetadata)(nil),
		(*models.Book)(nil),
		(*models.BookMetadata)(nil),
		(*models.Media)(nil),
		(*models.MediaPage)(nil),
		(*models.ReadListBook)(nil),
		(*models.CollectionSeries)(nil),
	} {
		count, err := db.NewSelect().Model(model).Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)
	}

	// The containers themselves survive; only memberships go.
	count, err := db.NewSelect().Model((*models.ReadList)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
