package cmd

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"trading-journal/pkg/logger"
	"trading-journal/pkg/middleware"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
)

type HTTPServer struct {
	ctx    context.Context
	appDep *AppDependency
}

func NewHTTPServer(ctx context.Context, appDep *AppDependency) *HTTPServer {
	return &HTTPServer{
		ctx:    ctx,
		appDep: appDep,
	}
}

// Use installs the global middleware chain. Must run before any route is added.
func (s *HTTPServer) Use() {
	e := s.appDep.echo
	e.HideBanner = true
	e.HidePort = true

	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.RequestID())
	e.Use(middleware.NewContextLoggerMiddleware(s.appDep.log))
	e.Use(middleware.NewRequestLoggerMiddleware(s.appDep.log))
	e.Use(echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization},
	}))
	e.Use(echoMiddleware.BodyLimit(s.appDep.cfg.API.BodyLimit))
	e.Use(middleware.NewRateLimiterMiddleware(s.appDep.cfg.API.RateLimit, func(c echo.Context) bool {
		path := c.Request().URL.Path
		return path == "/healthz" || strings.HasPrefix(path, "/api/v1/telegram/")
	}))
}

func (s *HTTPServer) Start() error {
	s.appDep.log.Info("Starting HTTP server", logger.IntField("port", s.appDep.cfg.API.Port))
	address := fmt.Sprintf(":%d", s.appDep.cfg.API.Port)
	return s.appDep.echo.Start(address)
}

func (s *HTTPServer) Stop() error {
	s.appDep.log.Info("Shutting down HTTP server")

	ctx, cancel := context.WithTimeout(context.WithoutCancel(s.ctx), 10*time.Second)
	defer cancel()

	if err := s.appDep.echo.Shutdown(ctx); err != nil && err != http.ErrServerClosed {
		s.appDep.log.Error("Error when stopping HTTP server", logger.ErrorField(err))
		return err
	}
	s.appDep.log.Info("HTTP server stopped successfully")
	return nil
}
