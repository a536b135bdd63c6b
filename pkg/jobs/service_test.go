package jobs

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

func TestCreateJobMarshalsData(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	job := &models.Job{
		Type:       models.JobTypeScan,
		Status:     models.JobStatusPending,
		DataParsed: &models.JobScanData{LibraryID: 3},
	}
	require.NoError(t, svc.CreateJob(ctx, job))
	assert.NotZero(t, job.ID)
	assert.JSONEq(t, `{"library_id":3}`, job.Data)

	loaded, err := svc.RetrieveJob(ctx, RetrieveJobOptions{ID: &job.ID})
	require.NoError(t, err)
	data, ok := loaded.DataParsed.(*models.JobScanData)
	require.True(t, ok)
	assert.Equal(t, 3, data.LibraryID)
}

func TestRetrieveJobNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	id := 999
	_, err := svc.RetrieveJob(context.Background(), RetrieveJobOptions{ID: &id})
	require.Error(t, err)
}

func TestHasActiveJobByType(t *testing.T) {
	tests := []struct {
		name     string
		status   string
		expected bool
	}{
		{name: "pending job is active", status: models.JobStatusPending, expected: true},
		{name: "in progress job is active", status: models.JobStatusInProgress, expected: true},
		{name: "completed job is not active", status: models.JobStatusCompleted, expected: false},
		{name: "failed job is not active", status: models.JobStatusFailed, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := newTestDB(t)
			svc := NewService(db)
			ctx := context.Background()

			job := &models.Job{
				Type:       models.JobTypeScan,
				Status:     tt.status,
				DataParsed: &models.JobScanData{},
			}
			require.NoError(t, svc.CreateJob(ctx, job))

			hasActive, err := svc.HasActiveJobByType(ctx, models.JobTypeScan)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, hasActive)
		})
	}
}

func TestListJobsFilters(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	processID := "worker-1"
	seed := []*models.Job{
		{Type: models.JobTypeScan, Status: models.JobStatusPending, DataParsed: &models.JobScanData{LibraryID: 1}},
		{Type: models.JobTypeAnalyze, Status: models.JobStatusPending, DataParsed: &models.JobAnalyzeData{BookID: 1}},
		{Type: models.JobTypeAnalyze, Status: models.JobStatusInProgress, DataParsed: &models.JobAnalyzeData{BookID: 2}, ProcessID: &processID},
	}
	for _, job := range seed {
		require.NoError(t, svc.CreateJob(ctx, job))
	}

	t.Run("by status", func(t *testing.T) {
		jobs, err := svc.ListJobs(ctx, ListJobsOptions{Statuses: []string{models.JobStatusPending}})
		require.NoError(t, err)
		assert.Len(t, jobs, 2)
	})

	t.Run("by type", func(t *testing.T) {
		jobType := models.JobTypeAnalyze
		jobs, err := svc.ListJobs(ctx, ListJobsOptions{Type: &jobType})
		require.NoError(t, err)
		assert.Len(t, jobs, 2)
	})

	t.Run("excluding a process id", func(t *testing.T) {
		jobs, err := svc.ListJobs(ctx, ListJobsOptions{ProcessIDToExclude: &processID})
		require.NoError(t, err)
		assert.Len(t, jobs, 2)
	})
}

func TestDeleteJob(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	pending := &models.Job{
		Type:       models.JobTypeScan,
		Status:     models.JobStatusPending,
		DataParsed: &models.JobScanData{},
	}
	require.NoError(t, svc.CreateJob(ctx, pending))
	claimed := &models.Job{
		Type:       models.JobTypeAnalyze,
		Status:     models.JobStatusInProgress,
		DataParsed: &models.JobAnalyzeData{BookID: 1},
	}
	require.NoError(t, svc.CreateJob(ctx, claimed))

	require.NoError(t, svc.DeleteJob(ctx, pending.ID))
	_, err := svc.RetrieveJob(ctx, RetrieveJobOptions{ID: &pending.ID})
	require.Error(t, err)

	// A claimed job stays put.
	require.Error(t, svc.DeleteJob(ctx, claimed.ID))
	loaded, err := svc.RetrieveJob(ctx, RetrieveJobOptions{ID: &claimed.ID})
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusInProgress, loaded.Status)
}

func TestUpdateJob(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	job := &models.Job{
		Type:       models.JobTypeScan,
		Status:     models.JobStatusPending,
		DataParsed: &models.JobScanData{},
	}
	require.NoError(t, svc.CreateJob(ctx, job))

	job.Status = models.JobStatusCompleted
	job.Progress = 100
	require.NoError(t, svc.UpdateJob(ctx, job, UpdateJobOptions{Columns: []string{"status", "progress"}}))

	loaded, err := svc.RetrieveJob(ctx, RetrieveJobOptions{ID: &job.ID})
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, loaded.Status)
	assert.Equal(t, 100, loaded.Progress)
}
