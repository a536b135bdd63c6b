package readlists

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

func RegisterRoutes(e *echo.Echo, db *bun.DB) {
	h := &handler{
		readListService: NewService(db),
	}

	e.GET("/readlists", h.list)
	e.GET("/readlists/:id", h.retrieve)
	e.POST("/readlists", h.create)
	e.POST("/readlists/:id", h.update)
	e.POST("/readlists/:id/books", h.addBook)
	e.DELETE("/readlists/:id", h.deleteReadList)
}
