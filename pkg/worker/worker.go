package worker

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/robinjoseph08/golib/logger"
	"github.com/robinjoseph08/golib/pointerutil"
	"github.com/uptrace/bun"

	"github.com/hondana/hondana/pkg/analyzer"
	"github.com/hondana/hondana/pkg/books"
	"github.com/hondana/hondana/pkg/collections"
	"github.com/hondana/hondana/pkg/config"
	"github.com/hondana/hondana/pkg/converter"
	"github.com/hondana/hondana/pkg/joblogs"
	"github.com/hondana/hondana/pkg/jobs"
	"github.com/hondana/hondana/pkg/libraries"
	"github.com/hondana/hondana/pkg/models"
	"github.com/hondana/hondana/pkg/providers"
	"github.com/hondana/hondana/pkg/readlists"
	"github.com/hondana/hondana/pkg/scanner"
	"github.com/hondana/hondana/pkg/series"
	"github.com/hondana/hondana/pkg/sidecars"
)

var processID = randStringBytes(8)

type Worker struct {
	config *config.Config
	log    logger.Logger

	processFuncs map[string]func(ctx context.Context, job *models.Job) error

	bookService       *books.Service
	collectionService *collections.Service
	jobService        *jobs.Service
	jobLogService     *joblogs.Service
	libraryService    *libraries.Service
	readListService   *readlists.Service
	seriesService     *series.Service
	sidecarService    *sidecars.Service

	scanner   *scanner.Scanner
	analyzer  *analyzer.Analyzer
	converter *converter.Converter
	providers []providers.Provider

	queue          chan *models.Job
	shutdown       chan struct{}
	doneFetching   chan struct{}
	doneProcessing chan struct{}
}

func New(cfg *config.Config, db *bun.DB) *Worker {
	a := analyzer.New(cfg.ThumbnailSize)

	w := &Worker{
		config: cfg,
		log:    logger.New(),

		bookService:       books.NewService(db),
		collectionService: collections.NewService(db),
		jobService:        jobs.NewService(db),
		jobLogService:     joblogs.NewService(db),
		libraryService:    libraries.NewService(db),
		readListService:   readlists.NewService(db),
		seriesService:     series.NewService(db),
		sidecarService:    sidecars.NewService(db),

		scanner:   scanner.New(),
		analyzer:  a,
		converter: converter.New(a),
		providers: providers.Default(),

		queue:          make(chan *models.Job, cfg.WorkerProcesses),
		shutdown:       make(chan struct{}),
		doneFetching:   make(chan struct{}),
		doneProcessing: make(chan struct{}, cfg.WorkerProcesses),
	}

	w.processFuncs = map[string]func(ctx context.Context, job *models.Job) error{
		models.JobTypeScan:                  w.ProcessScanJob,
		models.JobTypeAnalyze:               w.ProcessAnalyzeJob,
		models.JobTypeRefreshBookMetadata:   w.ProcessRefreshBookMetadataJob,
		models.JobTypeRefreshSeriesMetadata: w.ProcessRefreshSeriesMetadataJob,
		models.JobTypeRefreshBookArtwork:    w.ProcessRefreshBookArtworkJob,
		models.JobTypeRefreshSeriesArtwork:  w.ProcessRefreshSeriesArtworkJob,
		models.JobTypeConvertBook:           w.ProcessConvertBookJob,
	}

	return w
}

func (w *Worker) Start() {
	go w.fetchJobs()
	for i := 0; i < w.config.WorkerProcesses; i++ {
		go w.processJobs()
	}
}

func (w *Worker) fetchJobs() {
	duration := 5 * time.Second
	timer := time.NewTimer(duration)

	for {
		select {
		case <-w.shutdown:
			// We're shutting down, so stop adding more jobs to the queue.
			w.doneFetching <- struct{}{}
			return
		case <-timer.C:
			j, err := w.jobService.ListJobs(context.Background(), jobs.ListJobsOptions{
				Limit:              pointerutil.Int(1),
				Statuses:           []string{models.JobStatusPending, models.JobStatusInProgress},
				ProcessIDToExclude: &processID,
			})
			if err != nil {
				w.log.Err(err).Error("list jobs error")
				timer.Reset(duration)
				continue
			}
			for _, job := range j {
				w.queue <- job
			}
			timer.Reset(duration)
		}
	}
}

func (w *Worker) processJobs() {
	for {
		select {
		case <-w.shutdown:
			w.doneProcessing <- struct{}{}
			return
		case job := <-w.queue:
			// Prep the context to be passed down to the process function.
			id, err := uuid.NewRandom()
			if err != nil {
				w.log.Err(err).Error("new uuid error")
				continue
			}
			log := w.log.ID(id.String()).Root(logger.Data{"job_id": job.ID, "type": job.Type, "process_id": processID})
			ctx := log.WithContext(context.Background())

			// Update job to be in progress and claimed by this process.
			job.Status = models.JobStatusInProgress
			job.ProcessID = &processID

			err = w.jobService.UpdateJob(ctx, job, jobs.UpdateJobOptions{
				Columns: []string{"status", "process_id"},
			})
			if err != nil {
				log.Err(err).Error("update job error")
				continue
			}

			// Find and invoke the appropriate process function.
			fn, ok := w.processFuncs[job.Type]
			if !ok {
				log.Error("can't find process function for type")
				w.finishJob(ctx, job, models.JobStatusFailed)
				continue
			}
			err = fn(ctx, job)
			if err != nil {
				log.Err(err).Error("process error")
				w.finishJob(ctx, job, models.JobStatusFailed)
				continue
			}

			// Update job to be completed so that it's not picked up anymore.
			w.finishJob(ctx, job, models.JobStatusCompleted)
		}
	}
}

func (w *Worker) finishJob(ctx context.Context, job *models.Job, status string) {
	job.Status = status
	job.Progress = 100

	err := w.jobService.UpdateJob(ctx, job, jobs.UpdateJobOptions{
		Columns: []string{"status", "progress"},
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).Error("update job error")
	}
}

func (w *Worker) updateProgress(ctx context.Context, job *models.Job, done, total int) {
	if total == 0 {
		return
	}
	progress := done * 100 / total
	if progress == job.Progress {
		return
	}
	job.Progress = progress

	err := w.jobService.UpdateJob(ctx, job, jobs.UpdateJobOptions{
		Columns: []string{"progress"},
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).Error("update job progress error")
	}
}

// enqueueJob inserts a pending follow-up job.
func (w *Worker) enqueueJob(ctx context.Context, jobType string, data interface{}) error {
	job := &models.Job{
		Type:       jobType,
		Status:     models.JobStatusPending,
		DataParsed: data,
	}
	return w.jobService.CreateJob(ctx, job)
}

func (w *Worker) Shutdown() {
	close(w.shutdown)

	<-w.doneFetching
	for i := 0; i < w.config.WorkerProcesses; i++ {
		<-w.doneProcessing
	}
}

const letterBytes = "abcdef0123456789"

func randStringBytes(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = letterBytes[rand.Intn(len(letterBytes))]
	}
	return string(b)
}
