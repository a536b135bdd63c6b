package worker

import (
	"archive/zip"
	"bytes"
	"context"
	"database/sql"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/hondana/hondana/pkg/config"
	"github.com/hondana/hondana/pkg/jobs"
	"github.com/hondana/hondana/pkg/migrations"
	"github.com/hondana/hondana/pkg/models"
)

func newTestWorker(t *testing.T) (*Worker, *bun.DB) {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	cfg := &config.Config{
		ThumbnailSize:   300,
		WorkerProcesses: 1,
	}
	return New(cfg, db), db
}

func seedLibrary(t *testing.T, db *bun.DB, rootPath string) *models.Library {
	t.Helper()

	// Library names are unique, so derive one from the root path to
	// let a single test seed more than one library.
	library := &models.Library{
		Name:            "Comics " + filepath.Base(rootPath),
		RootPath:        rootPath,
		ImportComicInfo: true,
		ImportEpub:      true,
		ImportISBN:      true,
	}
	_, err := db.NewInsert().Model(library).Returning("*").Exec(context.Background())
	require.NoError(t, err)
	return library
}

func pngBytes(t *testing.T, seed int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 60))
	for x := 0; x < 40; x++ {
		for y := 0; y < 60; y++ {
			img.Set(x, y, color.RGBA{R: uint8((x + seed) % 256), G: uint8(y % 256), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func writeCBZ(t *testing.T, path string, entries map[string][]byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	for name, data := range entries {
		entry, err := w.Create(name)
		require.NoError(t, err)
		_, err = entry.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
}

// newJob persists a job and round-trips its data the way the fetch
// loop would before handing it to a process function.
func newJob(t *testing.T, w *Worker, jobType string, data interface{}) *models.Job {
	t.Helper()

	job := &models.Job{
		Type:       jobType,
		Status:     models.JobStatusPending,
		DataParsed: data,
	}
	require.NoError(t, w.jobService.CreateJob(context.Background(), job))
	require.NoError(t, job.UnmarshalData())
	return job
}

func jobsOfType(t *testing.T, w *Worker, jobType string) []*models.Job {
	t.Helper()

	found, err := w.jobService.ListJobs(context.Background(), jobs.ListJobsOptions{
		Type: &jobType,
	})
	require.NoError(t, err)
	return found
}

// runScan runs a scan job for the library and returns it.
func runScan(t *testing.T, w *Worker, library *models.Library) *models.Job {
	t.Helper()

	job := newJob(t, w, models.JobTypeScan, models.JobScanData{LibraryID: library.ID})
	require.NoError(t, w.ProcessScanJob(context.Background(), job))
	return job
}

// drainJobs processes every pending job of the given types, in queue
// order, until none remain. Lets tests run the scan -> analyze ->
// metadata chain to quiescence without the fetch loop.
func drainJobs(t *testing.T, w *Worker, types ...string) {
	t.Helper()
	ctx := context.Background()

	wanted := map[string]bool{}
	for _, jobType := range types {
		wanted[jobType] = true
	}

	for {
		pending, err := w.jobService.ListJobs(ctx, jobs.ListJobsOptions{
			Statuses: []string{models.JobStatusPending},
		})
		require.NoError(t, err)

		processed := false
		for _, job := range pending {
			if len(wanted) > 0 && !wanted[job.Type] {
				continue
			}
			fn, ok := w.processFuncs[job.Type]
			require.True(t, ok, "no process func for %s", job.Type)
			require.NoError(t, fn(ctx, job))
			w.finishJob(ctx, job, models.JobStatusCompleted)
			processed = true
		}
		if !processed {
			return
		}
	}
}
