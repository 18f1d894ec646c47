/**
 * 内置命令处理器
 * @author: sun977
 * @date: 2026.07.18
 * @description: 与浏览器采集无关的基础命令：连通性探测、回显、系统信息、版本查询
 * @func: RegisterBuiltin 注册全部内置处理器
 */
package builtin

import (
	"context"
	"runtime"

	"bassethound/internal/pkg/monitor"
	"bassethound/internal/pkg/version"
	"bassethound/internal/protocol"
	"bassethound/internal/registry"
)

// RegisterBuiltin 注册全部内置命令处理器
func RegisterBuiltin(reg *registry.Registry) error {
	handlers := map[string]registry.HandlerFunc{
		"ping":        pingHandler,
		"echo":        echoHandler,
		"system_info": systemInfoHandler,
		"version":     versionHandler,
	}
	for name, fn := range handlers {
		if err := reg.RegisterFunc(name, fn); err != nil {
			return err
		}
	}
	return nil
}

// pingHandler 连通性探测
func pingHandler(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	return map[string]interface{}{
		"pong":      true,
		"timestamp": protocol.NowMillis(),
	}, nil
}

// echoHandler 参数原样回显（后端侧联调使用）
func echoHandler(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	return params, nil
}

// systemInfoHandler 主机信息与当前系统指标
func systemInfoHandler(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	hostInfo, err := monitor.GetHostInfo()
	if err != nil {
		return nil, err
	}
	metrics, err := monitor.GetSystemMetrics()
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"host":    hostInfo,
		"metrics": metrics,
	}, nil
}

// versionHandler 版本信息
func versionHandler(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	return map[string]interface{}{
		"version":     version.GetVersion(),
		"api_version": version.APIVersion,
		"go_version":  runtime.Version(),
	}, nil
}
