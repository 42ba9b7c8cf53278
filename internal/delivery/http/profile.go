package http

import (
	"net/http"

	"trading-journal/internal/dto"
	"trading-journal/pkg/middleware"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupProfile(base *echo.Group) {
	profile := base.Group("/profile", h.requireAuth)
	{
		profile.GET("", h.getProfile)
		profile.PATCH("", h.updateProfile)
	}
}

func (h *HttpAPIHandler) getProfile(c echo.Context) error {
	user, err := h.service.ProfileService.Get(c.Request().Context(), middleware.GetUserID(c))
	if err != nil {
		return h.respondError(c, err, "Failed to fetch profile")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"profile": user})
}

func (h *HttpAPIHandler) updateProfile(c echo.Context) error {
	req := new(dto.UpdateProfileRequest)
	if err := h.bindAndValidate(c, req); err != nil {
		return h.respondError(c, err, "Failed to update profile")
	}

	user, err := h.service.ProfileService.Update(c.Request().Context(), middleware.GetUserID(c), *req)
	if err != nil {
		return h.respondError(c, err, "Failed to update profile")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"profile": user})
}
