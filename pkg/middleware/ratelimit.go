package middleware

import (
	"net/http"

	"trading-journal/config"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// ErrorResponse is the body every middleware rejection carries.
type ErrorResponse struct {
	Error string `json:"error"`
}

func NewRateLimiterMiddleware(cfg config.RateLimit, skipper middleware.Skipper) echo.MiddlewareFunc {
	if skipper == nil {
		skipper = middleware.DefaultSkipper
	}
	config := middleware.RateLimiterConfig{
		Skipper: skipper,
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(cfg.RequestPerSecond),
				Burst:     cfg.Burst,
				ExpiresIn: cfg.ExpiresIn,
			},
		),

		IdentifierExtractor: func(ctx echo.Context) (string, error) {
			id := ctx.RealIP()
			return id, nil
		},

		ErrorHandler: func(context echo.Context, err error) error {
			return context.JSON(http.StatusForbidden, ErrorResponse{Error: "Access forbidden: Rate limiter error occurred"})
		},

		DenyHandler: func(context echo.Context, identifier string, err error) error {
			return context.JSON(http.StatusTooManyRequests, ErrorResponse{Error: "Too many requests: Rate limit exceeded. Please try again later"})
		},
	}

	return middleware.RateLimiterWithConfig(config)
}
