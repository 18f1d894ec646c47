/**
 * Bridge应用程序核心逻辑
 * @author: sun977
 * @date: 2026.07.19
 * @description: Bridge应用的核心逻辑，负责初始化各组件并管理生命周期
 * @architecture: 将应用逻辑从main函数中分离，setup子包负责模块组装
 */

package bridge

import (
	"context"
	"fmt"
	"net/http"

	"bassethound/internal/app/bridge/router"
	"bassethound/internal/app/bridge/setup"
	"bassethound/internal/config"
	"bassethound/internal/connection"
	"bassethound/internal/dispatcher"
	"bassethound/internal/pkg/logger"
	"bassethound/internal/registry"
)

// App Bridge应用程序结构体
type App struct {
	router     *router.Router
	httpServer *http.Server
	config     *config.Config
	logger     *logger.LoggerManager
	core       *setup.CoreModule
	watcher    *config.ConfigWatcher
}

// Option 配置覆盖函数，在配置加载后、模块组装前应用
// 命令行参数优先级高于配置文件
type Option func(*config.Config)

// WithEndpoint 覆盖后端WebSocket地址
func WithEndpoint(endpoint string) Option {
	return func(c *config.Config) {
		c.Backend.EndpointURL = endpoint
	}
}

// NewApp 创建新的Bridge应用程序实例
func NewApp(configPath string, opts ...Option) (*App, error) {
	// 加载配置
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadConfigFrom(configPath)
	} else {
		cfg, err = config.LoadConfig()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 应用配置覆盖并重新校验（覆盖值可能非法）
	for _, opt := range opts {
		opt(cfg)
	}
	if len(opts) > 0 {
		if verr := cfg.Validate(); verr != nil {
			return nil, fmt.Errorf("config validation failed: %w", verr)
		}
	}

	// 初始化日志管理器
	loggerManager, err := logger.InitLogger(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}

	// 设置全局日志实例
	logger.LoggerInstance = loggerManager

	logger.Info("Basset Hound bridge initializing...")

	// 初始化各模块
	coreModule, err := setup.SetupCore(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to setup core module: %w", err)
	}
	serverModule := setup.SetupServer(cfg, coreModule)

	app := &App{
		router:     serverModule.Router,
		httpServer: serverModule.HTTPServer,
		config:     cfg,
		logger:     loggerManager,
		core:       coreModule,
	}

	// 配置文件热重载（仅日志配置即时生效，连接配置在下次重连时生效）
	if configPath != "" {
		if watcher, werr := config.NewConfigWatcher(configPath); werr == nil {
			watcher.OnChange(app.onConfigChange)
			app.watcher = watcher
		} else {
			logger.Warnf("Config hot reload disabled: %v", werr)
		}
	}

	return app, nil
}

// GetRouter 获取路由器实例
func (a *App) GetRouter() *router.Router {
	return a.router
}

// GetConfig 获取配置实例
func (a *App) GetConfig() *config.Config {
	return a.config
}

// GetHTTPServer 获取HTTP服务器实例
func (a *App) GetHTTPServer() *http.Server {
	return a.httpServer
}

// GetManager 获取连接管理器实例
func (a *App) GetManager() *connection.Manager {
	return a.core.Manager
}

// GetRegistry 获取命令注册表实例
// 领域模块（DOM采集、OSINT查询等）通过注册表追加自己的命令处理器
func (a *App) GetRegistry() *registry.Registry {
	return a.core.Registry
}

// GetDispatcher 获取命令分发器实例
func (a *App) GetDispatcher() *dispatcher.Dispatcher {
	return a.core.Dispatcher
}

// Start 启动Bridge应用程序
func (a *App) Start(ctx context.Context) error {
	logger.Info("Starting Basset Hound bridge...")

	// 启动本地观测HTTP服务器
	go func() {
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Failed to start HTTP server: ", err)
		}
	}()

	// 启动配置监听
	if a.watcher != nil {
		if err := a.watcher.Start(); err != nil {
			logger.Warnf("Failed to start config watcher: %v", err)
		}
	}

	// 启动后端连接管理器（后台运行）
	if err := a.core.Manager.Start(ctx); err != nil {
		return fmt.Errorf("failed to start connection manager: %w", err)
	}

	logger.Infof("Basset Hound bridge started, observability API on %s:%d, backend %s",
		a.config.Server.Host, a.config.Server.Port, a.config.Backend.EndpointURL)

	return nil
}

// Stop 停止Bridge应用程序
func (a *App) Stop(ctx context.Context) error {
	logger.Info("Stopping Basset Hound bridge...")

	// 先停连接管理器，在途命令以传输错误终结
	a.core.Manager.Stop()

	if a.watcher != nil {
		_ = a.watcher.Stop()
	}

	// 停止HTTP服务器
	if err := a.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to stop HTTP server: %w", err)
	}

	logger.Info("Basset Hound bridge stopped")
	return nil
}

// onConfigChange 配置热重载回调
func (a *App) onConfigChange(oldConfig, newConfig *config.Config) error {
	if newConfig.Log != nil {
		if err := a.logger.UpdateConfig(newConfig.Log); err != nil {
			logger.Errorf("Failed to apply new log config: %v", err)
			return err
		}
	}
	a.config = newConfig
	logger.Info("Configuration reloaded")
	return nil
}
