package http

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"trading-journal/internal/dto"
	"trading-journal/pkg/middleware"
	"trading-journal/pkg/utils"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupTrades(base *echo.Group) {
	trades := base.Group("/trades", h.requireAuth)
	{
		trades.GET("", h.listTrades)
		trades.POST("", h.createTrade)
		trades.GET("/export", h.exportTrades)
		trades.GET("/:id", h.getTrade)
		trades.PATCH("/:id", h.updateTrade)
		trades.DELETE("/:id", h.deleteTrade)
		trades.POST("/:id/screenshots", h.uploadTradeScreenshot)
	}
}

func (h *HttpAPIHandler) listTrades(c echo.Context) error {
	filter := new(dto.TradeFilter)
	if err := h.bindAndValidate(c, filter); err != nil {
		return h.respondError(c, err, "Failed to fetch trades")
	}

	trades, err := h.service.TradeService.List(c.Request().Context(), middleware.GetUserID(c), *filter)
	if err != nil {
		return h.respondError(c, err, "Failed to fetch trades")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"trades": trades})
}

func (h *HttpAPIHandler) createTrade(c echo.Context) error {
	req := new(dto.CreateTradeRequest)
	if err := h.bindAndValidate(c, req); err != nil {
		return h.respondError(c, err, "Failed to create trade")
	}

	trade, err := h.service.TradeService.Create(c.Request().Context(), middleware.GetUserID(c), *req)
	if err != nil {
		return h.respondError(c, err, "Failed to create trade")
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{"trade": trade})
}

func (h *HttpAPIHandler) getTrade(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return h.respondError(c, err, "Failed to fetch trade")
	}

	trade, err := h.service.TradeService.Get(c.Request().Context(), middleware.GetUserID(c), id)
	if err != nil {
		return h.respondError(c, err, "Failed to fetch trade")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"trade": trade})
}

func (h *HttpAPIHandler) updateTrade(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return h.respondError(c, err, "Failed to update trade")
	}
	req := new(dto.UpdateTradeRequest)
	if err := h.bindAndValidate(c, req); err != nil {
		return h.respondError(c, err, "Failed to update trade")
	}

	trade, err := h.service.TradeService.Update(c.Request().Context(), middleware.GetUserID(c), id, *req)
	if err != nil {
		return h.respondError(c, err, "Failed to update trade")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"trade": trade})
}

func (h *HttpAPIHandler) deleteTrade(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return h.respondError(c, err, "Failed to delete trade")
	}

	if err := h.service.TradeService.Delete(c.Request().Context(), middleware.GetUserID(c), id); err != nil {
		return h.respondError(c, err, "Failed to delete trade")
	}
	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "Trade deleted successfully"})
}

func (h *HttpAPIHandler) exportTrades(c echo.Context) error {
	filter := new(dto.TradeFilter)
	if err := h.bindAndValidate(c, filter); err != nil {
		return h.respondError(c, err, "Failed to export trades")
	}

	// buffered so a failure can still be reported as json
	var buf bytes.Buffer
	if err := h.service.TradeService.ExportCSV(c.Request().Context(), middleware.GetUserID(c), *filter, &buf); err != nil {
		return h.respondError(c, err, "Failed to export trades")
	}

	filename := fmt.Sprintf("trades-%s.csv", utils.TimeNowUTC().Format("20060102"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (h *HttpAPIHandler) uploadTradeScreenshot(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return h.respondError(c, err, "Failed to upload screenshot")
	}
	upload, err := readUpload(c)
	if err != nil {
		return h.respondError(c, err, "Failed to upload screenshot")
	}
	upload.Kind = dto.ScreenshotKind(c.QueryParam("kind"))

	trade, err := h.service.TradeService.AttachScreenshot(c.Request().Context(), middleware.GetUserID(c), id, *upload)
	if err != nil {
		return h.respondError(c, err, "Failed to upload screenshot")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"trade": trade})
}

func pathID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, validationErrorf("id", "must be a valid uuid")
	}
	return id, nil
}

// readUpload loads the multipart "file" field into memory.
func readUpload(c echo.Context) (*dto.UploadScreenshotRequest, error) {
	header, err := c.FormFile("file")
	if err != nil {
		return nil, validationErrorf("file", "is required")
	}
	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	return &dto.UploadScreenshotRequest{
		Filename:    header.Filename,
		ContentType: header.Header.Get(echo.HeaderContentType),
		Size:        header.Size,
		Content:     content,
	}, nil
}
