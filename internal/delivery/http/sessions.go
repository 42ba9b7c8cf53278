package http

import (
	"net/http"

	"trading-journal/internal/dto"
	"trading-journal/pkg/middleware"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupSessions(base *echo.Group) {
	sessions := base.Group("/sessions", h.requireAuth)
	{
		sessions.GET("", h.listSessions)
		sessions.POST("", h.createSession)
		sessions.PATCH("/:id", h.updateSession)
		sessions.DELETE("/:id", h.deleteSession)
	}
}

func (h *HttpAPIHandler) listSessions(c echo.Context) error {
	sessions, err := h.service.SessionService.List(c.Request().Context(), middleware.GetUserID(c))
	if err != nil {
		return h.respondError(c, err, "Failed to fetch sessions")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"sessions": sessions})
}

func (h *HttpAPIHandler) createSession(c echo.Context) error {
	req := new(dto.CreateSessionRequest)
	if err := h.bindAndValidate(c, req); err != nil {
		return h.respondError(c, err, "Failed to create session")
	}

	session, err := h.service.SessionService.Create(c.Request().Context(), middleware.GetUserID(c), *req)
	if err != nil {
		return h.respondError(c, err, "Failed to create session")
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{"session": session})
}

func (h *HttpAPIHandler) updateSession(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return h.respondError(c, err, "Failed to update session")
	}
	req := new(dto.UpdateSessionRequest)
	if err := h.bindAndValidate(c, req); err != nil {
		return h.respondError(c, err, "Failed to update session")
	}

	session, err := h.service.SessionService.Update(c.Request().Context(), middleware.GetUserID(c), id, *req)
	if err != nil {
		return h.respondError(c, err, "Failed to update session")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"session": session})
}

func (h *HttpAPIHandler) deleteSession(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return h.respondError(c, err, "Failed to delete session")
	}

	if err := h.service.SessionService.Delete(c.Request().Context(), middleware.GetUserID(c), id); err != nil {
		return h.respondError(c, err, "Failed to delete session")
	}
	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "Session deleted successfully"})
}
