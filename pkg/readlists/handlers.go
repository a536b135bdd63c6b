package readlists

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/hondana/hondana/pkg/errcodes"
	"github.com/hondana/hondana/pkg/models"
)

type handler struct {
	readListService *Service
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	params := CreateReadListPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	readList := &models.ReadList{
		Name:    params.Name,
		Summary: params.Summary,
	}
	err := h.readListService.CreateReadList(ctx, readList)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, readList))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Read list")
	}

	readList, err := h.readListService.RetrieveReadList(ctx, RetrieveReadListOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, readList))
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListReadListsQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	readLists, total, err := h.readListService.ListReadListsWithTotal(ctx, ListReadListsOptions{
		Limit:  &params.Limit,
		Offset: &params.Offset,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	resp := map[string]interface{}{
		"read_lists": readLists,
		"total":      total,
	}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Read list")
	}

	params := UpdateReadListPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	readList, err := h.readListService.RetrieveReadList(ctx, RetrieveReadListOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	columns := []string{}
	if params.Name != nil {
		readList.Name = *params.Name
		columns = append(columns, "name")
	}
	if params.Summary != nil {
		readList.Summary = *params.Summary
		columns = append(columns, "summary")
	}

	err = h.readListService.UpdateReadList(ctx, readList, UpdateReadListOptions{
		Columns: columns,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, readList))
}

func (h *handler) addBook(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Read list")
	}

	params := AddBookPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	readList, err := h.readListService.RetrieveReadList(ctx, RetrieveReadListOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	err = h.readListService.AddBook(ctx, AddBookOptions{
		Name:     readList.Name,
		BookID:   params.BookID,
		Position: params.Position,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	readList, err = h.readListService.RetrieveReadList(ctx, RetrieveReadListOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, readList))
}

func (h *handler) deleteReadList(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Read list")
	}

	_, err = h.readListService.RetrieveReadList(ctx, RetrieveReadListOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	err = h.readListService.DeleteReadList(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.NoContent(http.StatusNoContent))
}
