package series

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"

	"github.com/hondana/hondana/pkg/books"
	"github.com/hondana/hondana/pkg/jobs"
)

func RegisterRoutes(e *echo.Echo, db *bun.DB) {
	h := &handler{
		seriesService: NewService(db),
		bookService:   books.NewService(db),
		jobService:    jobs.NewService(db),
	}

	e.GET("/series", h.list)
	e.GET("/series/:id", h.retrieve)
	e.GET("/series/:id/books", h.listBooks)
	e.GET("/series/:id/thumbnail", h.thumbnail)
	e.PATCH("/series/:id/metadata", h.updateMetadata)
	e.POST("/series/:id/metadata/refresh", h.refreshMetadata)
}
