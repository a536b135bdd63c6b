package libraries

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/pointerutil"

	"github.com/hondana/hondana/pkg/errcodes"
	"github.com/hondana/hondana/pkg/jobs"
	"github.com/hondana/hondana/pkg/models"
)

type handler struct {
	libraryService *Service
	jobService     *jobs.Service
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	// Bind params.
	params := CreateLibraryPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	boolOr := func(v *bool, fallback bool) bool {
		if v != nil {
			return *v
		}
		return fallback
	}

	library := &models.Library{
		Name:                   params.Name,
		RootPath:               params.RootPath,
		ScanDeep:               boolOr(params.ScanDeep, false),
		ForceModifiedTime:      boolOr(params.ForceModifiedTime, false),
		ConvertToCBZ:           boolOr(params.ConvertToCBZ, false),
		ImportComicInfo:        boolOr(params.ImportComicInfo, true),
		ImportEpub:             boolOr(params.ImportEpub, true),
		ImportISBN:             boolOr(params.ImportISBN, true),
		DeleteEmptyReadLists:   boolOr(params.DeleteEmptyReadLists, true),
		DeleteEmptyCollections: boolOr(params.DeleteEmptyCollections, true),
	}

	err := h.libraryService.CreateLibrary(ctx, library)
	if err != nil {
		return errors.WithStack(err)
	}

	// Queue an initial scan of the new library. A failure here should not
	// fail the creation itself.
	scanJob := &models.Job{
		Type:       models.JobTypeScan,
		Status:     models.JobStatusPending,
		DataParsed: &models.JobScanData{LibraryID: library.ID},
	}
	if err := h.jobService.CreateJob(ctx, scanJob); err != nil {
		c.Logger().Errorf("failed to create scan job after library creation: %v", err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, library))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Library")
	}

	library, err := h.libraryService.RetrieveLibrary(ctx, RetrieveLibraryOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, library))
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	// Bind params.
	params := ListLibrariesQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	libraries, total, err := h.libraryService.ListLibrariesWithTotal(ctx, ListLibrariesOptions{
		Limit:          &params.Limit,
		Offset:         &params.Offset,
		IncludeDeleted: params.Deleted,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Libraries []*models.Library `json:"libraries"`
		Total     int               `json:"total"`
	}{libraries, total}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Library")
	}

	// Bind params.
	params := UpdateLibraryPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	// Fetch the library.
	library, err := h.libraryService.RetrieveLibrary(ctx, RetrieveLibraryOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	// Keep track of what's been changed.
	opts := UpdateLibraryOptions{Columns: []string{}}

	if params.Name != nil && *params.Name != library.Name {
		library.Name = *params.Name
		opts.Columns = append(opts.Columns, "name")
	}
	if params.RootPath != nil && *params.RootPath != library.RootPath {
		library.RootPath = *params.RootPath
		opts.Columns = append(opts.Columns, "root_path")
	}

	boolColumns := []struct {
		param  *bool
		field  *bool
		column string
	}{
		{params.ScanDeep, &library.ScanDeep, "scan_deep"},
		{params.ForceModifiedTime, &library.ForceModifiedTime, "force_modified_time"},
		{params.ConvertToCBZ, &library.ConvertToCBZ, "convert_to_cbz"},
		{params.ImportComicInfo, &library.ImportComicInfo, "import_comic_info"},
		{params.ImportEpub, &library.ImportEpub, "import_epub"},
		{params.ImportISBN, &library.ImportISBN, "import_isbn"},
		{params.DeleteEmptyReadLists, &library.DeleteEmptyReadLists, "delete_empty_read_lists"},
		{params.DeleteEmptyCollections, &library.DeleteEmptyCollections, "delete_empty_collections"},
	}
	for _, bc := range boolColumns {
		if bc.param != nil && *bc.param != *bc.field {
			*bc.field = *bc.param
			opts.Columns = append(opts.Columns, bc.column)
		}
	}

	if params.Deleted != nil && (*params.Deleted && library.DeletedAt == nil || !*params.Deleted && library.DeletedAt != nil) {
		if *params.Deleted {
			library.DeletedAt = pointerutil.Time(time.Now())
		} else {
			library.DeletedAt = nil
		}
		opts.Columns = append(opts.Columns, "deleted_at")
	}

	// Update the model.
	err = h.libraryService.UpdateLibrary(ctx, library, opts)
	if err != nil {
		return errors.WithStack(err)
	}

	// Reload the model.
	library, err = h.libraryService.RetrieveLibrary(ctx, RetrieveLibraryOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, library))
}

func (h *handler) scan(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Library")
	}

	library, err := h.libraryService.RetrieveLibrary(ctx, RetrieveLibraryOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	hasActive, err := h.jobService.HasActiveJobByType(ctx, models.JobTypeScan)
	if err != nil {
		return errors.WithStack(err)
	}
	if hasActive {
		return errcodes.Conflict("A scan job is already running or pending.")
	}

	job := &models.Job{
		Type:       models.JobTypeScan,
		Status:     models.JobStatusPending,
		DataParsed: &models.JobScanData{LibraryID: library.ID},
	}
	err = h.jobService.CreateJob(ctx, job)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, job))
}
