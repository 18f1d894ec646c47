/**
 * 日志中间件
 * @author: sun977
 * @date: 2026.07.19
 * @description: 观测API的访问日志中间件，记录请求方法、路径、状态码和耗时
 * @func: 请求/响应日志、慢请求告警
 */
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"bassethound/internal/pkg/logger"
	"bassethound/internal/pkg/utils"
)

// LoggingConfig 日志配置
type LoggingConfig struct {
	// 是否启用请求日志
	EnableRequestLog bool `json:"enable_request_log"`

	// 是否启用响应日志
	EnableResponseLog bool `json:"enable_response_log"`

	// 慢请求阈值
	SlowRequestThreshold time.Duration `json:"slow_request_threshold"`

	// 跳过日志的路径
	SkipPaths []string `json:"skip_paths"`
}

// LoggingMiddleware 日志中间件
type LoggingMiddleware struct {
	config *LoggingConfig
}

// NewLoggingMiddleware 创建日志中间件
func NewLoggingMiddleware(config *LoggingConfig) *LoggingMiddleware {
	if config == nil {
		config = &LoggingConfig{
			EnableRequestLog:     true,
			EnableResponseLog:    true,
			SlowRequestThreshold: 2 * time.Second,
			SkipPaths: []string{
				"/health",
				"/ping",
			},
		}
	}

	return &LoggingMiddleware{
		config: config,
	}
}

// Handler 日志处理器
func (m *LoggingMiddleware) Handler() gin.HandlerFunc {
	return gin.HandlerFunc(func(c *gin.Context) {
		startTime := time.Now()
		path := c.Request.URL.Path

		if m.shouldSkipLogging(path) {
			c.Next()
			return
		}

		if m.config.EnableRequestLog {
			logger.WithFields(map[string]interface{}{
				"method": c.Request.Method,
				"path":   path,
				"query":  c.Request.URL.RawQuery,
				"ip":     utils.GetClientIP(c),
			}).Info("HTTP Request")
		}

		c.Next()

		duration := time.Since(startTime)

		if m.config.EnableResponseLog {
			m.logResponse(c, duration)
		}

		if duration > m.config.SlowRequestThreshold {
			logger.WithFields(map[string]interface{}{
				"method":   c.Request.Method,
				"path":     path,
				"duration": duration.String(),
			}).Warn("Slow Request Detected")
		}
	})
}

// shouldSkipLogging 检查是否应该跳过日志
func (m *LoggingMiddleware) shouldSkipLogging(path string) bool {
	for _, skipPath := range m.config.SkipPaths {
		if path == skipPath {
			return true
		}
	}
	return false
}

// logResponse 记录响应信息，按状态码选择日志级别
func (m *LoggingMiddleware) logResponse(c *gin.Context, duration time.Duration) {
	entry := logger.WithFields(map[string]interface{}{
		"method":   c.Request.Method,
		"path":     c.Request.URL.Path,
		"ip":       utils.GetClientIP(c),
		"status":   c.Writer.Status(),
		"size":     c.Writer.Size(),
		"duration": duration.String(),
	})

	switch {
	case c.Writer.Status() >= 500:
		entry.Error("HTTP Response")
	case c.Writer.Status() >= 400:
		entry.Warn("HTTP Response")
	default:
		entry.Info("HTTP Response")
	}
}

// UpdateConfig 更新中间件配置
func (m *LoggingMiddleware) UpdateConfig(config *LoggingConfig) {
	if config != nil {
		m.config = config
	}
}
