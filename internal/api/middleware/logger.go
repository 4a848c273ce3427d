package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// quietPaths 探活类路径，成功时只记 Debug
var quietPaths = map[string]struct{}{
	"/health": {},
}

// Logger 每个请求一行结构化日志：路由模板、状态、耗时、请求 ID 与调用者身份。
// 5xx 记 Error，4xx 记 Warn，其余记 Info。
func Logger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		level := zapcore.InfoLevel
		switch {
		case status >= 500:
			level = zapcore.ErrorLevel
		case status >= 400:
			level = zapcore.WarnLevel
		default:
			if _, quiet := quietPaths[path]; quiet {
				level = zapcore.DebugLevel
			}
		}
		ce := logger.Check(level, "HTTP 请求")
		if ce == nil {
			return
		}

		fields := make([]zap.Field, 0, 12)
		fields = append(fields,
			zap.String("request_id", RequestIDFrom(c)),
			zap.String("method", c.Request.Method),
			zap.String("route", c.FullPath()),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		)
		if q := c.Request.URL.RawQuery; q != "" {
			fields = append(fields, zap.String("query", q))
		}
		if id, ok := identityFrom(c); ok {
			fields = append(fields, zap.String("user_id", id.ID), zap.String("role", string(id.Role)))
			if id.ClassName != "" {
				fields = append(fields, zap.String("class", id.ClassName))
			}
		}
		if errs := c.Errors.ByType(gin.ErrorTypePrivate); len(errs) > 0 {
			fields = append(fields, zap.String("errors", errs.String()))
		}
		ce.Write(fields...)
	}
}
