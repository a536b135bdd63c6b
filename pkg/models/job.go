package models

import (
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
	"github.com/uptrace/bun"
)

const (
	JobStatusPending    = "pending"
	JobStatusInProgress = "in_progress"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)

const (
	JobTypeScan                  = "scan"
	JobTypeAnalyze               = "analyze"
	JobTypeRefreshBookMetadata   = "refresh_book_metadata"
	JobTypeRefreshSeriesMetadata = "refresh_series_metadata"
	JobTypeRefreshBookArtwork    = "refresh_book_artwork"
	JobTypeRefreshSeriesArtwork  = "refresh_series_artwork"
	JobTypeConvertBook           = "convert_book"
)

type Job struct {
	bun.BaseModel `bun:"table:jobs,alias:j"`

	ID         int         `bun:",pk,nullzero" json:"id"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
	Type       string      `bun:",nullzero" json:"type"`
	Status     string      `bun:",nullzero" json:"status"`
	Data       string      `bun:",nullzero" json:"-"`
	DataParsed interface{} `bun:"-" json:"data"`
	Progress   int         `json:"progress"`
	ProcessID  *string     `json:"process_id,omitempty"`
}

func (job *Job) UnmarshalData() error {
	switch job.Type {
	case JobTypeScan:
		job.DataParsed = &JobScanData{}
	case JobTypeAnalyze:
		job.DataParsed = &JobAnalyzeData{}
	case JobTypeRefreshBookMetadata:
		job.DataParsed = &JobBookData{}
	case JobTypeRefreshSeriesMetadata:
		job.DataParsed = &JobSeriesData{}
	case JobTypeRefreshBookArtwork:
		job.DataParsed = &JobBookData{}
	case JobTypeRefreshSeriesArtwork:
		job.DataParsed = &JobSeriesData{}
	case JobTypeConvertBook:
		job.DataParsed = &JobConvertData{}
	}

	err := json.Unmarshal([]byte(job.Data), job.DataParsed)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

type JobScanData struct {
	LibraryID int `json:"library_id"`
}

type JobAnalyzeData struct {
	BookID int `json:"book_id"`
}

type JobBookData struct {
	BookID int `json:"book_id"`
}

type JobSeriesData struct {
	SeriesID int `json:"series_id"`
}

type JobConvertData struct {
	BookID int `json:"book_id"`
	// PageHashes limits a page-removal conversion to the pages with
	// these content hashes. Empty means convert-to-CBZ only.
	PageHashes []string `json:"page_hashes,omitempty"`
}
