package http

import (
	"net/http"

	"trading-journal/internal/dto"
	"trading-journal/pkg/middleware"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupSetups(base *echo.Group) {
	setups := base.Group("/setups", h.requireAuth)
	{
		setups.GET("", h.listSetups)
		setups.POST("", h.createSetup)
		setups.PATCH("/:id", h.updateSetup)
		setups.DELETE("/:id", h.deleteSetup)
	}
}

func (h *HttpAPIHandler) listSetups(c echo.Context) error {
	setups, err := h.service.SetupService.List(c.Request().Context(), middleware.GetUserID(c))
	if err != nil {
		return h.respondError(c, err, "Failed to fetch setups")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"setups": setups})
}

func (h *HttpAPIHandler) createSetup(c echo.Context) error {
	req := new(dto.CreateSetupRequest)
	if err := h.bindAndValidate(c, req); err != nil {
		return h.respondError(c, err, "Failed to create setup")
	}

	setup, err := h.service.SetupService.Create(c.Request().Context(), middleware.GetUserID(c), *req)
	if err != nil {
		return h.respondError(c, err, "Failed to create setup")
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{"setup": setup})
}

func (h *HttpAPIHandler) updateSetup(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return h.respondError(c, err, "Failed to update setup")
	}
	req := new(dto.UpdateSetupRequest)
	if err := h.bindAndValidate(c, req); err != nil {
		return h.respondError(c, err, "Failed to update setup")
	}

	setup, err := h.service.SetupService.Update(c.Request().Context(), middleware.GetUserID(c), id, *req)
	if err != nil {
		return h.respondError(c, err, "Failed to update setup")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"setup": setup})
}

func (h *HttpAPIHandler) deleteSetup(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return h.respondError(c, err, "Failed to delete setup")
	}

	if err := h.service.SetupService.Delete(c.Request().Context(), middleware.GetUserID(c), id); err != nil {
		return h.respondError(c, err, "Failed to delete setup")
	}
	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "Setup deleted successfully"})
}
