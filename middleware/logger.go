package middleware

import (
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// quietPrefixes are logged at debug level when they succeed
var quietPrefixes = []string{"/health", "/static/"}

func StructuredLogger(logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		requestID := c.Get(fiber.HeaderXRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Locals("requestID", requestID)
		c.Set(fiber.HeaderXRequestID, requestID)

		err := c.Next()

		status := c.Response().StatusCode()
		path := c.Path()

		logAttrs := []slog.Attr{
			slog.String("request_id", requestID),
			slog.String("method", c.Method()),
			slog.String("path", path),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
			slog.String("ip", c.IP()),
		}

		if q := c.Query("q"); q != "" {
			logAttrs = append(logAttrs, slog.String("query", q))
		}
		if userID, ok := c.Locals("userID").(string); ok && userID != "" {
			logAttrs = append(logAttrs, slog.String("user_id", userID))
		}

		switch {
		case err != nil:
			logAttrs = append(logAttrs, slog.String("error", err.Error()))
			logger.LogAttrs(c.UserContext(), slog.LevelError, "request error", logAttrs...)
		case status >= 500:
			logger.LogAttrs(c.UserContext(), slog.LevelError, "server error", logAttrs...)
		case status >= 400:
			logger.LogAttrs(c.UserContext(), slog.LevelWarn, "client error", logAttrs...)
		case isQuiet(path):
			logger.LogAttrs(c.UserContext(), slog.LevelDebug, "request completed", logAttrs...)
		default:
			logger.LogAttrs(c.UserContext(), slog.LevelInfo, "request completed", logAttrs...)
		}

		return err
	}
}

func isQuiet(path string) bool {
	for _, prefix := range quietPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
