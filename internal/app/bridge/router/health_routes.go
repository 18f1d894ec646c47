/**
 * 路由:健康检查路由
 * @author: sun977
 * @date: 2026.07.19
 * @description: Bridge端健康检查路由，包含健康检查、存活检查等路由
 * @func: 健康检查相关路由注册和处理器
 */
package router

import (
	"net/http"
	"runtime"

	"github.com/gin-gonic/gin"

	"bassethound/internal/pkg/logger"
	"bassethound/internal/pkg/version"
)

// setupHealthRoutes 设置健康检查路由
func (r *Router) setupHealthRoutes() {
	r.engine.GET("/health", r.handleHealth)
	r.engine.GET("/ping", r.handlePing)
	r.engine.GET("/version", r.handleVersion)
}

// handleHealth 健康检查处理器
func (r *Router) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": logger.NowFormatted(),
		"service":   "bassethound-bridge",
		"version":   version.GetVersion(),
	})
}

// handlePing Ping处理器
func (r *Router) handlePing(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":   "pong",
		"timestamp": logger.NowFormatted(),
	})
}

// handleVersion 版本信息处理器
func (r *Router) handleVersion(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service":     "bassethound-bridge",
		"version":     version.GetVersion(),
		"api_version": version.APIVersion,
		"go_version":  runtime.Version(),
		"timestamp":   logger.NowFormatted(),
	})
}
