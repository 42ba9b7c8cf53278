package http

import (
	"errors"
	"fmt"
	"net/http"

	"trading-journal/internal/service"
	"trading-journal/pkg/logger"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// bindAndValidate fills req from the request and checks its validate tags.
// The returned error is already safe to show to the client.
func (h *HttpAPIHandler) bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return &service.ValidationError{Message: "Invalid request body"}
	}
	if err := h.validator.Struct(req); err != nil {
		return validationMessage(err)
	}
	return nil
}

func validationMessage(err error) error {
	var fieldErrs goValidator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &service.ValidationError{Message: err.Error()}
	}
	fe := fieldErrs[0]
	if fe.Tag() == "required" {
		return &service.ValidationError{Message: fmt.Sprintf("Missing required field: %s", fe.Field())}
	}
	return &service.ValidationError{Field: fe.Field(), Message: fmt.Sprintf("failed on the %q rule", fe.Tag())}
}

// respondError maps service errors to status codes. Unknown errors become a
// 500 with fallback as the message.
func (h *HttpAPIHandler) respondError(c echo.Context, err error, fallback string) error {
	var validationErr *service.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return errorJSON(c, http.StatusBadRequest, validationErr.Error())
	case errors.Is(err, service.ErrTradeNotFound),
		errors.Is(err, service.ErrSetupNotFound),
		errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrJobNotFound):
		return errorJSON(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInvalidToken):
		return errorJSON(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrEmailTaken):
		return errorJSON(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrTooManyAttempts):
		return errorJSON(c, http.StatusTooManyRequests, err.Error())
	}

	h.log.ErrorContext(c.Request().Context(), fallback, logger.ErrorField(err), logger.StringField("path", c.Path()))
	return errorJSON(c, http.StatusInternalServerError, fallback)
}

func errorJSON(c echo.Context, code int, message string) error {
	return c.JSON(code, map[string]string{"error": message})
}

func validationErrorf(field, format string, args ...interface{}) error {
	return &service.ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
