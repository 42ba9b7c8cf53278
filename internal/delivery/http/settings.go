package http

import (
	"net/http"

	"trading-journal/pkg/middleware"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupSettings(base *echo.Group) {
	base.GET("/settings", h.getSettings, h.requireAuth)
}

func (h *HttpAPIHandler) getSettings(c echo.Context) error {
	settings, err := h.service.SettingsService.Get(c.Request().Context(), middleware.GetUserID(c))
	if err != nil {
		return h.respondError(c, err, "Failed to fetch settings")
	}
	return c.JSON(http.StatusOK, settings)
}
