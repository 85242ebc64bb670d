package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"
)

const (
	slowRequest      = 500 * time.Millisecond
	errorStatusFloor = 400
)

// Logger only logs slow or failed requests. Combat clients poll and fire a
// lot, so logging every request would drown everything else.
func Logger(log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		latency := time.Since(start)

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		if status < errorStatusFloor && latency < slowRequest {
			return err
		}

		// fasthttp reuses the request buffers once the handler returns.
		fields := []zap.Field{
			zap.Int("status", status),
			zap.Duration("latency", latency),
			zap.String("method", utils.CopyString(c.Method())),
			zap.String("path", utils.CopyString(c.Path())),
		}
		if id := PlayerID(c); id != "" {
			fields = append(fields, zap.String("player_id", id))
		}
		if err != nil {
			fields = append(fields, zap.Error(err))
		}
		switch {
		case status >= 500:
			log.Error("request", fields...)
		default:
			log.Warn("request", fields...)
		}
		return err
	}
}
