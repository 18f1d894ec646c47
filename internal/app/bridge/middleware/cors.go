/**
 * CORS中间件
 * @author: sun977
 * @date: 2026.07.19
 * @description: 观测API的CORS中间件，浏览器扩展页面会跨域访问本地API
 * @func: 预检请求处理、CORS响应头设置
 */
package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"bassethound/internal/pkg/logger"
)

// CORSConfig CORS配置
type CORSConfig struct {
	// 允许的源
	AllowOrigins []string `json:"allow_origins"`

	// 允许的方法
	AllowMethods []string `json:"allow_methods"`

	// 允许的头部
	AllowHeaders []string `json:"allow_headers"`

	// 是否允许凭证
	AllowCredentials bool `json:"allow_credentials"`

	// 预检请求缓存时间
	MaxAge time.Duration `json:"max_age"`

	// 是否允许所有源
	AllowAllOrigins bool `json:"allow_all_origins"`

	// 是否启用CORS
	Enabled bool `json:"enabled"`
}

// CORSMiddleware CORS中间件
type CORSMiddleware struct {
	config *CORSConfig
}

// NewCORSMiddleware 创建CORS中间件
func NewCORSMiddleware(config *CORSConfig) *CORSMiddleware {
	if config == nil {
		config = &CORSConfig{
			AllowOrigins: []string{"*"},
			AllowMethods: []string{
				http.MethodGet,
				http.MethodPost,
				http.MethodOptions,
			},
			AllowHeaders: []string{
				"Origin",
				"Content-Length",
				"Content-Type",
				"X-Request-ID",
			},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
			AllowAllOrigins:  true,
			Enabled:          true,
		}
	}

	return &CORSMiddleware{
		config: config,
	}
}

// Handler CORS处理器
func (m *CORSMiddleware) Handler() gin.HandlerFunc {
	return gin.HandlerFunc(func(c *gin.Context) {
		if !m.config.Enabled {
			c.Next()
			return
		}

		origin := c.GetHeader("Origin")

		// 处理预检请求
		if c.Request.Method == http.MethodOptions {
			m.handlePreflightRequest(c, origin)
			return
		}

		m.setCORSHeaders(c, origin)

		c.Next()
	})
}

// handlePreflightRequest 处理预检请求
func (m *CORSMiddleware) handlePreflightRequest(c *gin.Context, origin string) {
	if !m.isOriginAllowed(origin) {
		logger.Warn("CORS preflight request denied")
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	requestMethod := c.GetHeader("Access-Control-Request-Method")
	if !m.isMethodAllowed(requestMethod) {
		logger.Warn("CORS preflight method not allowed")
		c.AbortWithStatus(http.StatusMethodNotAllowed)
		return
	}

	m.setCORSHeaders(c, origin)
	if m.config.MaxAge > 0 {
		c.Header("Access-Control-Max-Age", fmt.Sprintf("%.0f", m.config.MaxAge.Seconds()))
	}

	c.AbortWithStatus(http.StatusNoContent)
}

// setCORSHeaders 设置CORS头部
func (m *CORSMiddleware) setCORSHeaders(c *gin.Context, origin string) {
	if m.config.AllowAllOrigins {
		c.Header("Access-Control-Allow-Origin", "*")
	} else if m.isOriginAllowed(origin) {
		c.Header("Access-Control-Allow-Origin", origin)
	}

	if len(m.config.AllowMethods) > 0 {
		c.Header("Access-Control-Allow-Methods", strings.Join(m.config.AllowMethods, ", "))
	}

	if len(m.config.AllowHeaders) > 0 {
		c.Header("Access-Control-Allow-Headers", strings.Join(m.config.AllowHeaders, ", "))
	}

	if m.config.AllowCredentials {
		c.Header("Access-Control-Allow-Credentials", "true")
	}
}

// isOriginAllowed 检查源是否被允许
func (m *CORSMiddleware) isOriginAllowed(origin string) bool {
	if m.config.AllowAllOrigins {
		return true
	}

	if origin == "" {
		return false
	}

	for _, allowedOrigin := range m.config.AllowOrigins {
		if allowedOrigin == "*" || allowedOrigin == origin {
			return true
		}
	}

	return false
}

// isMethodAllowed 检查方法是否被允许
func (m *CORSMiddleware) isMethodAllowed(method string) bool {
	if method == "" {
		return false
	}

	for _, allowedMethod := range m.config.AllowMethods {
		if allowedMethod == method {
			return true
		}
	}

	return false
}

// UpdateConfig 更新中间件配置
func (m *CORSMiddleware) UpdateConfig(config *CORSConfig) {
	if config != nil {
		m.config = config
	}
}
