package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/health"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/echo/v4/middleware/recovery"
	"github.com/uptrace/bun"

	"github.com/hondana/hondana/pkg/analyzer"
	"github.com/hondana/hondana/pkg/binder"
	"github.com/hondana/hondana/pkg/books"
	"github.com/hondana/hondana/pkg/collections"
	"github.com/hondana/hondana/pkg/config"
	"github.com/hondana/hondana/pkg/errcodes"
	"github.com/hondana/hondana/pkg/joblogs"
	"github.com/hondana/hondana/pkg/jobs"
	"github.com/hondana/hondana/pkg/libraries"
	"github.com/hondana/hondana/pkg/readlists"
	"github.com/hondana/hondana/pkg/series"
)

func New(cfg *config.Config, db *bun.DB) (*http.Server, error) {
	e := echo.New()

	b, err := binder.New()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	e.Binder = b

	e.Use(logger.Middleware())
	e.Use(recovery.Middleware())
	e.Use(middleware.CORS())

	health.RegisterRoutes(e)

	a := analyzer.New(cfg.ThumbnailSize)

	books.RegisterRoutes(e, db, a)
	collections.RegisterRoutes(e, db)
	joblogs.RegisterRoutes(e, db)
	jobs.RegisterRoutes(e, db)
	libraries.RegisterRoutes(e, db)
	readlists.RegisterRoutes(e, db)
	series.RegisterRoutes(e, db)

	echo.NotFoundHandler = notFoundHandler
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
		Handler:           e,
		ReadHeaderTimeout: 3 * time.Second,
	}

	return srv, nil
}

func notFoundHandler(c echo.Context) error {
	c.SetPath("/:path")
	return errcodes.NotFound("Page")
}
