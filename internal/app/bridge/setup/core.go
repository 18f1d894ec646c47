/**
 * 核心模块初始化
 * @author: sun977
 * @date: 2026.07.19
 * @description: 初始化命令注册表、分发器和连接管理器
 * @func: SetupCore
 */
package setup

import (
	"fmt"

	"bassethound/internal/config"
	"bassethound/internal/connection"
	"bassethound/internal/dispatcher"
	"bassethound/internal/handler/builtin"
	"bassethound/internal/registry"
	"bassethound/internal/transport"
)

// SetupCore 初始化桥接核心模块
// 注册表 -> 分发器 -> 连接管理器的依赖链在这里组装
func SetupCore(cfg *config.Config) (*CoreModule, error) {
	reg := registry.NewRegistry()

	// 内置命令处理器，领域处理器（导航、表单填充等）由外部模块追加注册
	if err := builtin.RegisterBuiltin(reg); err != nil {
		return nil, fmt.Errorf("failed to register builtin handlers: %w", err)
	}

	disp := dispatcher.NewDispatcher(reg, cfg.Bridge.DefaultCommandTimeout)

	dialer := transport.NewWebSocketDialer(cfg.Backend.HandshakeTimeout)
	manager := connection.NewManager(cfg.Backend, dialer, disp, cfg.Monitor.EnableHeartbeatMetrics)

	return &CoreModule{
		Registry:   reg,
		Dispatcher: disp,
		Manager:    manager,
	}, nil
}
