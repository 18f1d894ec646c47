/**
 * 服务器模块初始化
 * @author: sun977
 * @date: 2026.07.19
 * @description: 初始化本地观测HTTP服务器
 * @func: SetupServer
 */
package setup

import (
	"fmt"
	"net/http"
	"time"

	"bassethound/internal/app/bridge/middleware"
	"bassethound/internal/app/bridge/router"
	"bassethound/internal/config"
	handlerBridge "bassethound/internal/handler/bridge"
)

// SetupServer 初始化服务器模块
func SetupServer(cfg *config.Config, core *CoreModule) *ServerModule {
	// 创建路由器配置
	routerConfig := &router.RouterConfig{
		Debug:            cfg.App.Debug,
		APIVersion:       "v1",
		Prefix:           "/api",
		EnableMiddleware: true,
		MiddlewareConfig: createMiddlewareConfig(),
	}

	bridgeHandler := handlerBridge.NewBridgeHandler(core.Manager, core.Dispatcher, core.Registry)
	r := router.NewRouter(routerConfig, bridgeHandler)

	// 初始化HTTP服务器
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r.GetEngine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &ServerModule{
		Router:     r,
		HTTPServer: httpServer,
	}
}

// createMiddlewareConfig 创建中间件配置
func createMiddlewareConfig() *router.MiddlewareConfig {
	return &router.MiddlewareConfig{
		Logging: &middleware.LoggingConfig{
			EnableRequestLog:     true,
			EnableResponseLog:    true,
			SlowRequestThreshold: 2 * time.Second,
			SkipPaths:            []string{"/health", "/ping"},
		},
		CORS: &middleware.CORSConfig{
			Enabled:         true,
			AllowAllOrigins: true,
			AllowOrigins:    []string{"*"},
			AllowMethods:    []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders:    []string{"Origin", "Content-Type", "X-Request-ID"},
			MaxAge:          12 * time.Hour,
		},
	}
}
