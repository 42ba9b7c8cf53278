package http

import (
	"net/http"

	"trading-journal/pkg/middleware"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupUpload(base *echo.Group) {
	base.POST("/upload", h.upload, h.requireAuth)
}

func (h *HttpAPIHandler) upload(c echo.Context) error {
	upload, err := readUpload(c)
	if err != nil {
		return h.respondError(c, err, "Failed to upload file")
	}

	url, err := h.service.ScreenshotService.UploadForUser(c.Request().Context(), middleware.GetUserID(c), *upload)
	if err != nil {
		return h.respondError(c, err, "Failed to upload file")
	}
	return c.JSON(http.StatusOK, map[string]string{"url": url})
}
