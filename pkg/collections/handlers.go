package collections

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/hondana/hondana/pkg/errcodes"
)

type handler struct {
	collectionService *Service
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Collection")
	}

	collection, err := h.collectionService.RetrieveCollection(ctx, RetrieveCollectionOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, collection))
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListCollectionsQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	collections, total, err := h.collectionService.ListCollectionsWithTotal(ctx, ListCollectionsOptions{
		Limit:  &params.Limit,
		Offset: &params.Offset,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	resp := map[string]interface{}{
		"collections": collections,
		"total":       total,
	}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) addSeries(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Collection")
	}

	params := AddSeriesPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	collection, err := h.collectionService.RetrieveCollection(ctx, RetrieveCollectionOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	err = h.collectionService.AddSeries(ctx, collection.Name, params.SeriesID)
	if err != nil {
		return errors.WithStack(err)
	}

	collection, err = h.collectionService.RetrieveCollection(ctx, RetrieveCollectionOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, collection))
}

func (h *handler) deleteCollection(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Collection")
	}

	_, err = h.collectionService.RetrieveCollection(ctx, RetrieveCollectionOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	err = h.collectionService.DeleteCollection(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.NoContent(http.StatusNoContent))
}
