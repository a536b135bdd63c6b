package series

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/hondana/hondana/pkg/books"
	"github.com/hondana/hondana/pkg/errcodes"
	"github.com/hondana/hondana/pkg/jobs"
	"github.com/hondana/hondana/pkg/models"
)

type handler struct {
	seriesService *Service
	bookService   *books.Service
	jobService    *jobs.Service
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Series")
	}

	series, err := h.seriesService.RetrieveSeries(ctx, RetrieveSeriesOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, series))
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListSeriesQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	series, total, err := h.seriesService.ListSeriesWithTotal(ctx, ListSeriesOptions{
		Limit:     &params.Limit,
		Offset:    &params.Offset,
		LibraryID: params.LibraryID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	resp := map[string]interface{}{
		"series": series,
		"total":  total,
	}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) listBooks(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Series")
	}

	params := ListSeriesBooksQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	// 404 before listing so an unknown series isn't an empty list.
	series, err := h.seriesService.RetrieveSeries(ctx, RetrieveSeriesOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	bks, total, err := h.bookService.ListBooksWithTotal(ctx, books.ListBooksOptions{
		Limit:    &params.Limit,
		Offset:   &params.Offset,
		SeriesID: &series.ID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	resp := map[string]interface{}{
		"books": bks,
		"total": total,
	}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) thumbnail(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Series")
	}

	series, err := h.seriesService.RetrieveSeries(ctx, RetrieveSeriesOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}
	if len(series.Thumbnail) == 0 {
		return errcodes.NotFound("Thumbnail")
	}

	return errors.WithStack(c.Blob(http.StatusOK, "image/jpeg", series.Thumbnail))
}

func (h *handler) updateMetadata(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Series")
	}

	params := UpdateSeriesMetadataPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	series, err := h.seriesService.RetrieveSeries(ctx, RetrieveSeriesOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	md := series.Metadata
	columns := []string{}

	setLock := func(lock *bool, field *bool, column string) {
		if lock != nil {
			*field = *lock
			columns = append(columns, column)
		}
	}
	// An edited field locks itself unless the request says otherwise.
	editLock := func(lock *bool, field *bool, column string) {
		if lock == nil {
			*field = true
		} else {
			*field = *lock
		}
		columns = append(columns, column)
	}

	if params.Title != nil {
		md.Title = *params.Title
		columns = append(columns, "title")
		editLock(params.TitleLock, &md.TitleLock, "title_lock")
	} else {
		setLock(params.TitleLock, &md.TitleLock, "title_lock")
	}
	if params.TitleSort != nil {
		md.TitleSort = *params.TitleSort
		columns = append(columns, "title_sort")
		editLock(params.TitleSortLock, &md.TitleSortLock, "title_sort_lock")
	} else {
		setLock(params.TitleSortLock, &md.TitleSortLock, "title_sort_lock")
	}
	if params.Summary != nil {
		md.Summary = *params.Summary
		columns = append(columns, "summary")
		editLock(params.SummaryLock, &md.SummaryLock, "summary_lock")
	} else {
		setLock(params.SummaryLock, &md.SummaryLock, "summary_lock")
	}
	if params.Status != nil {
		md.Status = *params.Status
		columns = append(columns, "status")
		editLock(params.StatusLock, &md.StatusLock, "status_lock")
	} else {
		setLock(params.StatusLock, &md.StatusLock, "status_lock")
	}
	if params.Publisher != nil {
		md.Publisher = *params.Publisher
		columns = append(columns, "publisher")
		editLock(params.PublisherLock, &md.PublisherLock, "publisher_lock")
	} else {
		setLock(params.PublisherLock, &md.PublisherLock, "publisher_lock")
	}
	if params.Language != nil {
		md.Language = *params.Language
		columns = append(columns, "language")
		editLock(params.LanguageLock, &md.LanguageLock, "language_lock")
	} else {
		setLock(params.LanguageLock, &md.LanguageLock, "language_lock")
	}
	if params.Genres != nil {
		md.Genres = params.Genres
		columns = append(columns, "genres")
		editLock(params.GenresLock, &md.GenresLock, "genres_lock")
	} else {
		setLock(params.GenresLock, &md.GenresLock, "genres_lock")
	}
	if params.Tags != nil {
		md.Tags = params.Tags
		columns = append(columns, "tags")
		editLock(params.TagsLock, &md.TagsLock, "tags_lock")
	} else {
		setLock(params.TagsLock, &md.TagsLock, "tags_lock")
	}
	if params.AgeRating != nil {
		md.AgeRating = params.AgeRating
		columns = append(columns, "age_rating")
		editLock(params.AgeRatingLock, &md.AgeRatingLock, "age_rating_lock")
	} else {
		setLock(params.AgeRatingLock, &md.AgeRatingLock, "age_rating_lock")
	}
	if params.TotalBookCount != nil {
		md.TotalBookCount = params.TotalBookCount
		columns = append(columns, "total_book_count")
		editLock(params.TotalBookCountLock, &md.TotalBookCountLock, "total_book_count_lock")
	} else {
		setLock(params.TotalBookCountLock, &md.TotalBookCountLock, "total_book_count_lock")
	}

	err = h.seriesService.UpdateSeriesMetadata(ctx, md, UpdateSeriesMetadataOptions{
		Columns: columns,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, series))
}

func (h *handler) refreshMetadata(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Series")
	}

	series, err := h.seriesService.RetrieveSeries(ctx, RetrieveSeriesOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	job := &models.Job{
		Type:       models.JobTypeRefreshSeriesMetadata,
		Status:     models.JobStatusPending,
		DataParsed: models.JobSeriesData{SeriesID: series.ID},
	}
	err = h.jobService.CreateJob(ctx, job)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, job))
}
