package books

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

func seedSeries(t *testing.T, db *bun.DB) *models.Series {
	t.Helper()
	ctx := context.Background()

	library := &models.Library{
		Name:     "Comics",
		RootPath: "/data/comics",
	}
	_, err := db.NewInsert().Model(library).Returning("*").Exec(ctx)
	require.NoError(t, err)

	series := &models.Series{
		LibraryID: library.ID,
		URL:       "/data/comics/Akira",
		Name:      "Akira",
	}
	_, err = db.NewInsert().Model(series).Returning("*").Exec(ctx)
	require.NoError(t, err)
	return series
}

func TestCreateBookSeedsMetadata(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()
	series := seedSeries(t, db)

	book := &models.Book{
		LibraryID: series.LibraryID,
		SeriesID:  series.ID,
		URL:       "/data/comics/Akira/Akira v01.cbz",
		Name:      "Akira v01.cbz",
	}
	require.NoError(t, svc.CreateBook(ctx, book))
	require.NotZero(t, book.ID)
	require.NotNil(t, book.Metadata)
	assert.Equal(t, book.ID, book.Metadata.BookID)
	assert.Equal(t, "Akira v01.cbz", book.Metadata.Title)
}

func TestCreateBookWithMedia(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()
	series := seedSeries(t, db)

	hash := "00000000000000aa"
	book := &models.Book{
		LibraryID: series.LibraryID,
		SeriesID:  series.ID,
		URL:       "/data/comics/Akira/Akira v01.cbz",
		Name:      "Akira v01.cbz",
		Media: &models.Media{
			Status:    models.MediaStatusReady,
			MediaType: models.MediaTypeZip,
			Pages: []*models.MediaPage{
				{Number: 1, FileName: "001.jpg", MediaType: "image/jpeg", FileHash: &hash},
				{Number: 2, FileName: "002.jpg", MediaType: "image/jpeg", FileHash: &hash},
			},
			Files: []*models.MediaFile{
				{FileName: "ComicInfo.xml", MediaType: "text/xml"},
			},
		},
	}
	require.NoError(t, svc.CreateBook(ctx, book))

	loaded, err := svc.RetrieveBook(ctx, RetrieveBookOptions{ID: &book.ID})
	require.NoError(t, err)
	require.NotNil(t, loaded.Media)
	assert.Equal(t, models.MediaStatusReady, loaded.Media.Status)
	require.Len(t, loaded.Media.Pages, 2)
	assert.Equal(t, 1, loaded.Media.Pages[0].Number)
	assert.Equal(t, "001.jpg", loaded.Media.Pages[0].FileName)
	require.Len(t, loaded.Media.Files, 1)
}

func TestRetrieveBookByURL(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()
	series := seedSeries(t, db)

	book := &models.Book{
		LibraryID: series.LibraryID,
		SeriesID:  series.ID,
		URL:       "/data/comics/Akira/Akira v01.cbz",
		Name:      "Akira v01.cbz",
	}
	require.NoError(t, svc.CreateBook(ctx, book))

	loaded, err := svc.RetrieveBook(ctx, RetrieveBookOptions{
		URL: pointerutil.String("/data/comics/Akira/Akira v01.cbz"),
	})
	require.NoError(t, err)
	assert.Equal(t, book.ID, loaded.ID)

	_, err = svc.RetrieveBook(ctx, RetrieveBookOptions{
		URL: pointerutil.String("/data/comics/Akira/Akira v99.cbz"),
	})
	assert.Error(t, err)
}

func TestListBooksOrdersByNumber(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()
	series := seedSeries(t, db)

	for i, name := range []string{"Akira v03.cbz", "Akira v01.cbz", "Akira v02.cbz"} {
		book := &models.Book{
			LibraryID: series.LibraryID,
			SeriesID:  series.ID,
			URL:       "/data/comics/Akira/" + name,
			Name:      name,
			Number:    3 - i,
		}
		require.NoError(t, svc.CreateBook(ctx, book))
	}

	books, total, err := svc.ListBooksWithTotal(ctx, ListBooksOptions{
		SeriesID: &series.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, books, 3)
	assert.Equal(t, "Akira v02.cbz", books[0].Name)
	assert.Equal(t, "Akira v01.cbz", books[1].Name)
	assert.Equal(t, "Akira v03.cbz", books[2].Name)
}

func TestListBooksLoadsMediaRelations(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()
	series := seedSeries(t, db)

	hash := "00000000000000ab"
	book := &models.Book{
		LibraryID: series.LibraryID,
		SeriesID:  series.ID,
		URL:       "/data/comics/Akira/Akira v01.cbz",
		Name:      "Akira v01.cbz",
		Media: &models.Media{
			Status:    models.MediaStatusReady,
			MediaType: models.MediaTypeZip,
			Pages: []*models.MediaPage{
				{Number: 2, FileName: "002.jpg", MediaType: "image/jpeg", FileHash: &hash},
				{Number: 1, FileName: "001.jpg", MediaType: "image/jpeg", FileHash: &hash},
			},
			Files: []*models.MediaFile{
				{FileName: "ComicInfo.xml", MediaType: "text/xml"},
			},
		},
	}
	require.NoError(t, svc.CreateBook(ctx, book))

	books, err := svc.ListBooks(ctx, ListBooksOptions{SeriesID: &series.ID})
	require.NoError(t, err)
	require.Len(t, books, 1)
	require.NotNil(t, books[0].Media)
	require.Len(t, books[0].Media.Pages, 2)
	assert.Equal(t, "001.jpg", books[0].Media.Pages[0].FileName)
	assert.Equal(t, "002.jpg", books[0].Media.Pages[1].FileName)
	require.Len(t, books[0].Media.Files, 1)
	assert.Equal(t, "ComicInfo.xml", books[0].Media.Files[0].FileName)
}

func TestReplaceMedia(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()
	series := seedSeries(t, db)

	book := &models.Book{
		LibraryID: series.LibraryID,
		SeriesID:  series.ID,
		URL:       "/data/comics/Akira/Akira v01.cbz",
		Name:      "Akira v01.cbz",
		Media: &models.Media{
			Status:    models.MediaStatusOutdated,
			MediaType: models.MediaTypeZip,
			Pages: []*models.MediaPage{
				{Number: 1, FileName: "old.jpg", MediaType: "image/jpeg"},
			},
		},
	}
	require.NoError(t, svc.CreateBook(ctx, book))

	err := svc.ReplaceMedia(ctx, book.ID, &models.Media{
		Status:    models.MediaStatusReady,
		MediaType: models.MediaTypeZip,
		Pages: []*models.MediaPage{
			{Number: 1, FileName: "001.jpg", MediaType: "image/jpeg"},
			{Number: 2, FileName: "002.jpg", MediaType: "image/jpeg"},
		},
	})
	require.NoError(t, err)

	loaded, err := svc.RetrieveBook(ctx, RetrieveBookOptions{ID: &book.ID})
	require.NoError(t, err)
	require.NotNil(t, loaded.Media)
	assert.Equal(t, models.MediaStatusReady, loaded.Media.Status)
	require.Len(t, loaded.Media.Pages, 2)
	assert.Equal(t, "001.jpg", loaded.Media.Pages[0].FileName)

	// Exactly one media row remains.
	count, err := db.NewSelect().Model((*models.Media)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	count, err = db.NewSelect().Model((*models.MediaPage)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestUpdateBookMetadataOnlyNamedColumns(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()
	series := seedSeries(t, db)

	book := &models.Book{
		LibraryID: series.LibraryID,
		SeriesID:  series.ID,
		URL:       "/data/comics/Akira/Akira v01.cbz",
		Name:      "Akira v01.cbz",
	}
	require.NoError(t, svc.CreateBook(ctx, book))

	md := book.Metadata
	md.Title = "Akira, Volume 1"
	md.TitleLock = true
	md.Summary = "should not persist"
	err := svc.UpdateBookMetadata(ctx, md, UpdateBookMetadataOptions{
		Columns: []string{"title", "title_lock"},
	})
	require.NoError(t, err)

	loaded, err := svc.RetrieveBook(ctx, RetrieveBookOptions{ID: &book.ID})
	require.NoError(t, err)
	assert.Equal(t, "Akira, Volume 1", loaded.Metadata.Title)
	assert.True(t, loaded.Metadata.TitleLock)
	assert.Empty(t, loaded.Metadata.Summary)
}

func TestDeleteBookCascades(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()
	series := seedSeries(t, db)

	book := &models.Book{
		LibraryID: series.LibraryID,
		SeriesID:  series.ID,
		URL:       "/data/comics/Akira/Akira v01.cbz",
		Name:      "Akira v01.cbz",
		Media: &models.Media{
			Status:    models.MediaStatusReady,
			MediaType: models.MediaTypeZip,
			Pages: []*models.MediaPage{
				{Number: 1, FileName: "001.jpg", MediaType: "image/jpeg"},
			},
		},
	}
	require.NoError(t, svc.CreateBook(ctx, book))

	readList := &models.ReadList{Name: "Favorites"}
	_, err := db.NewInsert().Model(readList).Returning("*").Exec(ctx)
	require.NoError(t, err)
	_, err = db.NewInsert().Model(&models.ReadListBook{ReadListID: readList.ID, BookID: book.ID, Position: 1}).Exec(ctx)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteBook(ctx, book.ID))

	for _, model := range []interface{}{
		(*models.Book)(nil),
		(*models.BookMetadata)(nil),
		(*models.Media)(nil),
		(*models.MediaPage)(nil),
		(*models.ReadListBook)(nil),
	} {
		count, err := db.NewSelect().Model(model).Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)
	}
}
