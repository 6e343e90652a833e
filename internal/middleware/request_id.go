package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/supportbot/consultbot-go/internal/service"
	"go.uber.org/zap"
)

// RequestIDHeader 请求 ID 头
const RequestIDHeader = "X-Request-ID"

// requestIDKey gin.Context 中保存请求 ID 的键
const requestIDKey = "requestId"

// RequestID 为每个请求分配 ID，客户端带了就沿用
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}

		c.Set(requestIDKey, id)
		c.Writer.Header().Set(RequestIDHeader, id)
		c.Request = c.Request.WithContext(service.WithRequestID(c.Request.Context(), id))

		c.Next()
	}
}

// GetRequestID 取当前请求 ID
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// AccessLog 访问日志
func AccessLog(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("HTTP 请求",
			zap.String("requestId", GetRequestID(c)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("clientIp", c.ClientIP()))
	}
}
