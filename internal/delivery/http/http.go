package http

import (
	"context"

	"trading-journal/config"
	"trading-journal/internal/service"
	"trading-journal/pkg/logger"
	"trading-journal/pkg/middleware"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// HealthChecker is satisfied by *postgres.DB and *sql.DB.
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

type HttpAPIHandler struct {
	cfg         *config.Config
	log         *logger.Logger
	echo        *echo.Echo
	validator   *goValidator.Validate
	service     *service.Service
	health      HealthChecker
	requireAuth echo.MiddlewareFunc
}

func NewHttpAPIHandler(
	cfg *config.Config,
	log *logger.Logger,
	echo *echo.Echo,
	validator *goValidator.Validate,
	service *service.Service,
	health HealthChecker,
) *HttpAPIHandler {
	return &HttpAPIHandler{
		cfg:         cfg,
		log:         log,
		echo:        echo,
		validator:   validator,
		service:     service,
		health:      health,
		requireAuth: middleware.NewAuthMiddleware(service.AuthService),
	}
}

func (h *HttpAPIHandler) SetupRoutes() {
	h.SetupHealth(h.echo)

	base := h.echo.Group("/api")
	h.SetupAuth(base)
	h.SetupTrades(base)
	h.SetupUpload(base)
	h.SetupAnalytics(base)
	h.SetupSetups(base)
	h.SetupSessions(base)
	h.SetupProfile(base)
	h.SetupSettings(base)
	h.SetupJobs(base)
}
