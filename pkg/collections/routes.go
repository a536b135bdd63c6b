package collections

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

func RegisterRoutes(e *echo.Echo, db *bun.DB) {
	h := &handler{
		collectionService: NewService(db),
	}

	e.GET("/collections", h.list)
	e.GET("/collections/:id", h.retrieve)
	e.POST("/collections/:id/series", h.addSeries)
	e.DELETE("/collections/:id", h.deleteCollection)
}
