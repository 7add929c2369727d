package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// RequestLogger logs one line per request through zap.
func RequestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			fields := []zap.Field{
				zap.String("method", req.Method),
				zap.String("path", c.Path()),
				zap.Int("status", c.Response().Status),
				zap.Duration("latency", time.Since(start)),
			}
			if cl := GetClaims(c); cl != nil {
				fields = append(fields, zap.String("session_id", cl.SessionID))
			}
			if err != nil {
				logger.Warn("request failed", append(fields, zap.Error(err))...)
				return nil
			}
			logger.Info("request", fields...)
			return nil
		}
	}
}
