package middleware

import (
	"trading-journal/pkg/logger"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// NewContextLoggerMiddleware stores a logger tagged with the request id in
// the request context so services log with it through *Context calls.
// It must run after middleware.RequestID.
func NewContextLoggerMiddleware(log *logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := c.Response().Header().Get(echo.HeaderXRequestID)
			reqLog := log.With(zap.String("request_id", requestID))
			req := c.Request()
			c.SetRequest(req.WithContext(logger.NewContext(req.Context(), reqLog)))
			return next(c)
		}
	}
}

// NewRequestLoggerMiddleware writes one access log line per request.
func NewRequestLoggerMiddleware(log *logger.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("request_id", v.RequestID),
				zap.String("remote_ip", v.RemoteIP),
			}
			if userID := GetUserID(c); userID != uuid.Nil {
				fields = append(fields, zap.String("user_id", userID.String()))
			}
			switch {
			case v.Error != nil || v.Status >= 500:
				fields = append(fields, logger.ErrorField(v.Error))
				log.Error("Request failed", fields...)
			case v.Status >= 400:
				log.Warn("Request rejected", fields...)
			default:
				log.Info("Request handled", fields...)
			}
			return nil
		},
	})
}
