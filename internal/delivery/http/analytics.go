package http

import (
	"net/http"

	"trading-journal/internal/dto"
	"trading-journal/pkg/middleware"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupAnalytics(base *echo.Group) {
	base.GET("/analytics", h.getAnalytics, h.requireAuth)
}

func (h *HttpAPIHandler) getAnalytics(c echo.Context) error {
	filter := new(dto.AnalyticsFilter)
	if err := h.bindAndValidate(c, filter); err != nil {
		return h.respondError(c, err, "Failed to fetch analytics")
	}

	summary, err := h.service.AnalyticsService.GetAnalytics(c.Request().Context(), middleware.GetUserID(c), *filter)
	if err != nil {
		return h.respondError(c, err, "Failed to fetch analytics")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"analytics": summary})
}
