package utils

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"trading-journal/pkg/logger"
)

// GoSafe runs the given function in a new goroutine and recovers from any panic.
func GoSafe(log *logger.Logger, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error("Panic recovered", logger.Field("panic", r))
			}
		}()
		fn()
	}()
}

func ToPointer[T any](value T) *T {
	return &value
}

// ShouldContinue is false once ctx is done; the caller's name is logged.
func ShouldContinue(ctx context.Context, log *logger.Logger) bool {
	select {
	case <-ctx.Done():
		pc, _, _, ok := runtime.Caller(1)
		funcName := "unknown"
		if ok {
			if fn := runtime.FuncForPC(pc); fn != nil {
				parts := strings.Split(fn.Name(), "/")
				funcName = parts[len(parts)-1]
			}
		}

		log.WarnContext(ctx, "Context cancelled", logger.StringField("caller", funcName))
		return false
	default:
		return true
	}
}

// FormatR renders an R-multiple with an explicit sign, e.g. +1.50R.
func FormatR(value float64) string {
	return fmt.Sprintf("%+.2fR", value)
}

func FormatPercentage(value float64) string {
	return fmt.Sprintf("%.1f%%", value)
}
