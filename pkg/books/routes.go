package books

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"

	"github.com/hondana/hondana/pkg/analyzer"
	"github.com/hondana/hondana/pkg/jobs"
)

func RegisterRoutes(e *echo.Echo, db *bun.DB, a *analyzer.Analyzer) {
	h := &handler{
		bookService: NewService(db),
		jobService:  jobs.NewService(db),
		analyzer:    a,
	}

	e.GET("/books", h.list)
	e.GET("/books/:id", h.retrieve)
	e.GET("/books/:id/pages/:page", h.page)
	e.GET("/books/:id/thumbnail", h.thumbnail)
	e.GET("/books/:id/file", h.file)
	e.PATCH("/books/:id/metadata", h.updateMetadata)
	e.POST("/books/:id/analyze", h.analyze)
	e.POST("/books/:id/metadata/refresh", h.refreshMetadata)
	e.POST("/books/:id/convert", h.convert)
	// Page removal goes through the same verified conversion path.
	e.DELETE("/books/:id/pages", h.convert)
}
