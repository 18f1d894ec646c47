/**
 * Bridge端路由注册
 * @author: sun977
 * @date: 2026.07.19
 * @description: 观测API路由注册，统一管理所有路由
 * @func: 路由器创建、全局中间件注册
 */
package router

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"bassethound/internal/app/bridge/middleware"
	handlerBridge "bassethound/internal/handler/bridge"
	"bassethound/internal/pkg/logger"
)

// RouterConfig 路由配置
type RouterConfig struct {
	// 是否启用调试模式
	Debug bool `json:"debug"`

	// API版本
	APIVersion string `json:"api_version"`

	// 路由前缀
	Prefix string `json:"prefix"`

	// 是否启用中间件
	EnableMiddleware bool `json:"enable_middleware"`

	// 中间件配置
	MiddlewareConfig *MiddlewareConfig `json:"middleware_config"`
}

// MiddlewareConfig 中间件配置
type MiddlewareConfig struct {
	// 日志中间件配置
	Logging *middleware.LoggingConfig `json:"logging"`

	// CORS中间件配置
	CORS *middleware.CORSConfig `json:"cors"`
}

// Router Bridge路由器
type Router struct {
	engine *gin.Engine
	config *RouterConfig

	// 中间件
	loggingMiddleware *middleware.LoggingMiddleware
	corsMiddleware    *middleware.CORSMiddleware

	// 处理器
	bridgeHandler handlerBridge.BridgeHandler
}

// NewRouter 创建新的路由器
func NewRouter(config *RouterConfig, bridgeHandler handlerBridge.BridgeHandler) *Router {
	if config == nil {
		config = &RouterConfig{
			Debug:            false,
			APIVersion:       "v1",
			Prefix:           "/api",
			EnableMiddleware: true,
			MiddlewareConfig: &MiddlewareConfig{},
		}
	}

	// 设置Gin模式
	if config.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	router := &Router{
		engine:        engine,
		config:        config,
		bridgeHandler: bridgeHandler,
	}

	// 初始化中间件
	if config.EnableMiddleware {
		router.initMiddleware()
	}

	// 注册路由
	router.registerRoutes()

	return router
}

// initMiddleware 初始化中间件
func (r *Router) initMiddleware() {
	if r.config.MiddlewareConfig.Logging != nil {
		r.loggingMiddleware = middleware.NewLoggingMiddleware(r.config.MiddlewareConfig.Logging)
	}

	if r.config.MiddlewareConfig.CORS != nil {
		r.corsMiddleware = middleware.NewCORSMiddleware(r.config.MiddlewareConfig.CORS)
	}
}

// registerRoutes 注册路由
func (r *Router) registerRoutes() {
	// 注册全局中间件
	r.registerGlobalMiddleware()

	// 注册健康检查路由
	r.setupHealthRoutes()

	// 注册API路由组
	apiGroup := r.engine.Group(r.config.Prefix + "/" + r.config.APIVersion)

	// 注册桥接控制路由
	setupBridgeRoutes(apiGroup, r.bridgeHandler)

	logger.Info("Router registration completed")
}

// registerGlobalMiddleware 注册全局中间件
func (r *Router) registerGlobalMiddleware() {
	// 恢复中间件
	r.engine.Use(gin.Recovery())

	// CORS中间件
	if r.corsMiddleware != nil {
		r.engine.Use(r.corsMiddleware.Handler())
	}

	// 日志中间件
	if r.loggingMiddleware != nil {
		r.engine.Use(r.loggingMiddleware.Handler())
	}
}

// GetEngine 获取Gin引擎
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}

// UpdateConfig 更新路由配置
func (r *Router) UpdateConfig(config *RouterConfig) error {
	if config == nil {
		return fmt.Errorf("config cannot be nil")
	}

	r.config = config

	// 更新中间件配置
	if r.loggingMiddleware != nil && config.MiddlewareConfig.Logging != nil {
		r.loggingMiddleware.UpdateConfig(config.MiddlewareConfig.Logging)
	}

	if r.corsMiddleware != nil && config.MiddlewareConfig.CORS != nil {
		r.corsMiddleware.UpdateConfig(config.MiddlewareConfig.CORS)
	}

	logger.Info("Router config updated")

	return nil
}

// GetConfig 获取当前配置
func (r *Router) GetConfig() *RouterConfig {
	return r.config
}
