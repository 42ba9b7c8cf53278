package http

import (
	"net/http"

	"trading-journal/internal/dto"
	"trading-journal/internal/service"
	"trading-journal/pkg/middleware"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupAuth(base *echo.Group) {
	auth := base.Group("/auth")
	{
		auth.POST("/signup", h.signUp)
		auth.POST("/login", h.login)
		auth.POST("/refresh", h.refresh)
		auth.POST("/logout", h.logout, h.requireAuth)
	}
}

func (h *HttpAPIHandler) signUp(c echo.Context) error {
	req := new(dto.SignUpRequest)
	if err := h.bindAndValidate(c, req); err != nil {
		return h.respondError(c, err, "Failed to sign up")
	}

	user, err := h.service.AuthService.SignUp(c.Request().Context(), *req)
	if err != nil {
		return h.respondError(c, err, "Failed to sign up")
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{"user": user})
}

func (h *HttpAPIHandler) login(c echo.Context) error {
	req := new(dto.LoginRequest)
	if err := h.bindAndValidate(c, req); err != nil {
		return h.respondError(c, err, "Failed to log in")
	}

	token, err := h.service.AuthService.Login(c.Request().Context(), *req)
	if err != nil {
		return h.respondError(c, err, "Failed to log in")
	}
	return c.JSON(http.StatusOK, token)
}

func (h *HttpAPIHandler) refresh(c echo.Context) error {
	token, ok := middleware.BearerToken(c)
	if !ok {
		return h.respondError(c, service.ErrInvalidToken, "")
	}

	fresh, err := h.service.AuthService.Refresh(c.Request().Context(), token)
	if err != nil {
		return h.respondError(c, err, "Failed to refresh token")
	}
	return c.JSON(http.StatusOK, fresh)
}

func (h *HttpAPIHandler) logout(c echo.Context) error {
	if err := h.service.AuthService.Logout(c.Request().Context(), middleware.GetToken(c)); err != nil {
		return h.respondError(c, err, "Failed to log out")
	}
	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "Logged out"})
}
