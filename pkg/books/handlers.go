package books

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/hondana/hondana/pkg/analyzer"
	"github.com/hondana/hondana/pkg/errcodes"
	"github.com/hondana/hondana/pkg/images"
	"github.com/hondana/hondana/pkg/jobs"
	"github.com/hondana/hondana/pkg/models"
)

type handler struct {
	bookService *Service
	jobService  *jobs.Service
	analyzer    *analyzer.Analyzer
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	book, err := h.bookService.RetrieveBook(ctx, RetrieveBookOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, book))
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListBooksQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	books, total, err := h.bookService.ListBooksWithTotal(ctx, ListBooksOptions{
		Limit:     &params.Limit,
		Offset:    &params.Offset,
		LibraryID: params.LibraryID,
		SeriesID:  params.SeriesID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	resp := map[string]interface{}{
		"books": books,
		"total": total,
	}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

// page serves the raw content of a single page. Page numbers are
// 1-indexed.
func (h *handler) page(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}
	pageNumber, err := strconv.Atoi(c.Param("page"))
	if err != nil {
		return errcodes.NotFound("Page")
	}

	book, err := h.bookService.RetrieveBook(ctx, RetrieveBookOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	data, mediaType, err := h.analyzer.GetPageContent(book, book.Media, pageNumber)
	if err != nil {
		return errors.WithStack(err)
	}

	if target := c.QueryParam("convert"); target != "" && target != mediaType {
		if !images.CanEncode(target) {
			return errcodes.UnsupportedMediaType()
		}
		data, err = images.Convert(data, target)
		if err != nil {
			return errors.WithStack(err)
		}
		mediaType = target
	}

	return errors.WithStack(c.Blob(http.StatusOK, mediaType, data))
}

func (h *handler) thumbnail(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	book, err := h.bookService.RetrieveBook(ctx, RetrieveBookOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}
	if book.Media == nil || len(book.Media.Thumbnail) == 0 {
		return errcodes.NotFound("Thumbnail")
	}

	return errors.WithStack(c.Blob(http.StatusOK, "image/jpeg", book.Media.Thumbnail))
}

func (h *handler) file(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	book, err := h.bookService.RetrieveBook(ctx, RetrieveBookOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.Attachment(book.URL, book.Name))
}

func (h *handler) updateMetadata(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	params := UpdateBookMetadataPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	book, err := h.bookService.RetrieveBook(ctx, RetrieveBookOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	md := book.Metadata
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
	if params.Summary != nil {
		md.Summary = *params.Summary
		columns = append(columns, "summary")
		editLock(params.SummaryLock, &md.SummaryLock, "summary_lock")
	} else {
		setLock(params.SummaryLock, &md.SummaryLock, "summary_lock")
	}
	if params.Number != nil {
		md.Number = *params.Number
		columns = append(columns, "number")
		editLock(params.NumberLock, &md.NumberLock, "number_lock")
	} else {
		setLock(params.NumberLock, &md.NumberLock, "number_lock")
	}
	if params.NumberSort != nil {
		md.NumberSort = *params.NumberSort
		columns = append(columns, "number_sort")
		editLock(params.NumberSortLock, &md.NumberSortLock, "number_sort_lock")
	} else {
		setLock(params.NumberSortLock, &md.NumberSortLock, "number_sort_lock")
	}
	if params.ReleaseDate != nil {
		md.ReleaseDate = params.ReleaseDate
		columns = append(columns, "release_date")
		editLock(params.ReleaseDateLock, &md.ReleaseDateLock, "release_date_lock")
	} else {
		setLock(params.ReleaseDateLock, &md.ReleaseDateLock, "release_date_lock")
	}
	if params.Authors != nil {
		md.Authors = params.Authors
		columns = append(columns, "authors")
		editLock(params.AuthorsLock, &md.AuthorsLock, "authors_lock")
	} else {
		setLock(params.AuthorsLock, &md.AuthorsLock, "authors_lock")
	}
	if params.Tags != nil {
		md.Tags = params.Tags
		columns = append(columns, "tags")
		editLock(params.TagsLock, &md.TagsLock, "tags_lock")
	} else {
		setLock(params.TagsLock, &md.TagsLock, "tags_lock")
	}
	if params.ISBN != nil {
		md.ISBN = *params.ISBN
		columns = append(columns, "isbn")
		editLock(params.ISBNLock, &md.ISBNLock, "isbn_lock")
	} else {
		setLock(params.ISBNLock, &md.ISBNLock, "isbn_lock")
	}

	err = h.bookService.UpdateBookMetadata(ctx, md, UpdateBookMetadataOptions{
		Columns: columns,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, book))
}

func (h *handler) analyze(c echo.Context) error {
	return h.createBookJob(c, models.JobTypeAnalyze)
}

func (h *handler) refreshMetadata(c echo.Context) error {
	return h.createBookJob(c, models.JobTypeRefreshBookMetadata)
}

func (h *handler) convert(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	params := ConvertBookPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	book, err := h.bookService.RetrieveBook(ctx, RetrieveBookOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	job := &models.Job{
		Type:   models.JobTypeConvertBook,
		Status: models.JobStatusPending,
		DataParsed: models.JobConvertData{
			BookID:     book.ID,
			PageHashes: params.PageHashes,
		},
	}
	err = h.jobService.CreateJob(ctx, job)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, job))
}

func (h *handler) createBookJob(c echo.Context, jobType string) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	book, err := h.bookService.RetrieveBook(ctx, RetrieveBookOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	var data interface{} = models.JobBookData{BookID: book.ID}
	if jobType == models.JobTypeAnalyze {
		data = models.JobAnalyzeData{BookID: book.ID}
	}

	job := &models.Job{
		Type:       jobType,
		Status:     models.JobStatusPending,
		DataParsed: data,
	}
	err = h.jobService.CreateJob(ctx, job)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, job))
}
