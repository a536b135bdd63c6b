package libraries

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"

	"github.com/hondana/hondana/pkg/jobs"
)

func RegisterRoutes(e *echo.Echo, db *bun.DB) {
	libraryService := NewService(db)
	jobService := jobs.NewService(db)

	h := &handler{
		libraryService: libraryService,
		jobService:     jobService,
	}

	e.POST("/libraries", h.create)
	e.GET("/libraries/:id", h.retrieve)
	e.GET("/libraries", h.list)
	e.POST("/libraries/:id", h.update)
	e.POST("/libraries/:id/scan", h.scan)
}
