package http

import (
	"context"
	"net/http"
	"time"

	"trading-journal/internal/dto"
	"trading-journal/pkg/logger"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupHealth(e *echo.Echo) {
	e.GET("/healthz", h.healthz)
}

func (h *HttpAPIHandler) healthz(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	if err := h.health.PingContext(ctx); err != nil {
		h.log.WarnContext(ctx, "Health check failed", logger.ErrorField(err))
		return c.JSON(http.StatusServiceUnavailable, dto.NewBaseResponse(http.StatusServiceUnavailable, "database unavailable", nil))
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("ok", nil))
}
