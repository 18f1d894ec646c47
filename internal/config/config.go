/**
 * Bridge配置管理
 * @author: sun977
 * @date: 2026.07.14
 * @description: Bridge端配置管理，负责加载和管理所有配置
 * @func: 定义配置结构体和辅助方法
 */
package config

import (
	"fmt"
	"net/url"
	"time"

	"gopkg.in/yaml.v3"
)

// Config Bridge配置
type Config struct {
	// 应用配置
	App *AppConfig `yaml:"app" mapstructure:"app"`

	// 本地HTTP服务器配置（观测接口）
	Server *ServerConfig `yaml:"server" mapstructure:"server"`

	// 日志配置
	Log *LogConfig `yaml:"log" mapstructure:"log"`

	// 后端连接配置
	Backend *BackendConfig `yaml:"backend" mapstructure:"backend"`

	// 命令分发配置
	Bridge *BridgeConfig `yaml:"bridge" mapstructure:"bridge"`

	// 监控配置
	Monitor *MonitorConfig `yaml:"monitor" mapstructure:"monitor"`
}

// AppConfig 应用配置
type AppConfig struct {
	Name        string `yaml:"name" mapstructure:"name"`               // 应用名称
	Version     string `yaml:"version" mapstructure:"version"`         // 应用版本
	Environment string `yaml:"environment" mapstructure:"environment"` // 运行环境
	Debug       bool   `yaml:"debug" mapstructure:"debug"`             // 调试模式
}

// ServerConfig 本地HTTP服务器配置
type ServerConfig struct {
	Host         string        `yaml:"host" mapstructure:"host"`                   // 监听地址
	Port         int           `yaml:"port" mapstructure:"port"`                   // 监听端口
	Mode         string        `yaml:"mode" mapstructure:"mode"`                   // 运行模式 (debug/release/test)
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`   // 读取超时时间
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"` // 写入超时时间
	IdleTimeout  time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`   // 空闲超时时间
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `yaml:"level" mapstructure:"level"`             // 日志级别 (debug/info/warn/error)
	Format     string `yaml:"format" mapstructure:"format"`           // 日志格式 (json/text)
	Output     string `yaml:"output" mapstructure:"output"`           // 日志输出 (stdout/stderr/file)
	FilePath   string `yaml:"file_path" mapstructure:"file_path"`     // 日志文件路径
	MaxSize    int    `yaml:"max_size" mapstructure:"max_size"`       // 最大文件大小（MB）
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"` // 最大备份数
	MaxAge     int    `yaml:"max_age" mapstructure:"max_age"`         // 最大保留天数
	Compress   bool   `yaml:"compress" mapstructure:"compress"`       // 是否压缩
	Caller     bool   `yaml:"caller" mapstructure:"caller"`           // 是否显示调用者信息
}

// BackendConfig 自动化后端连接配置
// 对应WebSocket连接的生命周期参数：重连退避、心跳、握手超时
type BackendConfig struct {
	EndpointURL           string        `yaml:"endpoint_url" mapstructure:"endpoint_url"`                       // 后端WebSocket地址
	MaxReconnectAttempts  int           `yaml:"max_reconnect_attempts" mapstructure:"max_reconnect_attempts"`   // 最大重连次数
	InitialReconnectDelay time.Duration `yaml:"initial_reconnect_delay" mapstructure:"initial_reconnect_delay"` // 初始重连延迟
	MaxReconnectDelay     time.Duration `yaml:"max_reconnect_delay" mapstructure:"max_reconnect_delay"`         // 最大重连延迟
	HeartbeatInterval     time.Duration `yaml:"heartbeat_interval" mapstructure:"heartbeat_interval"`           // 心跳间隔
	HandshakeTimeout      time.Duration `yaml:"handshake_timeout" mapstructure:"handshake_timeout"`             // 握手超时时间
}

// BridgeConfig 命令分发配置
type BridgeConfig struct {
	DefaultCommandTimeout time.Duration `yaml:"default_command_timeout" mapstructure:"default_command_timeout"` // 默认命令超时时间
}

// MonitorConfig 监控配置
type MonitorConfig struct {
	EnableHeartbeatMetrics bool `yaml:"enable_heartbeat_metrics" mapstructure:"enable_heartbeat_metrics"` // 心跳是否携带系统指标
}

// Validate 验证配置合法性
// 端点URL非法属于启动期致命错误，直接返回error中断初始化
func (c *Config) Validate() error {
	if c.Backend == nil {
		return fmt.Errorf("backend config is required")
	}

	// 验证后端端点URL
	u, err := url.Parse(c.Backend.EndpointURL)
	if err != nil {
		return fmt.Errorf("invalid backend endpoint url %q: %w", c.Backend.EndpointURL, err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("backend endpoint url must use ws:// or wss:// scheme, got %q", c.Backend.EndpointURL)
	}
	if u.Host == "" {
		return fmt.Errorf("backend endpoint url missing host: %q", c.Backend.EndpointURL)
	}

	// 验证重连参数
	if c.Backend.MaxReconnectAttempts <= 0 {
		return fmt.Errorf("backend.max_reconnect_attempts must be positive, got %d", c.Backend.MaxReconnectAttempts)
	}
	if c.Backend.InitialReconnectDelay <= 0 {
		return fmt.Errorf("backend.initial_reconnect_delay must be positive, got %v", c.Backend.InitialReconnectDelay)
	}
	if c.Backend.MaxReconnectDelay < c.Backend.InitialReconnectDelay {
		return fmt.Errorf("backend.max_reconnect_delay must be >= initial_reconnect_delay")
	}
	if c.Backend.HeartbeatInterval <= 0 {
		return fmt.Errorf("backend.heartbeat_interval must be positive, got %v", c.Backend.HeartbeatInterval)
	}

	if c.Bridge == nil || c.Bridge.DefaultCommandTimeout <= 0 {
		return fmt.Errorf("bridge.default_command_timeout must be positive")
	}

	if c.Log != nil {
		switch c.Log.Format {
		case "", "json", "text":
		default:
			return fmt.Errorf("unsupported log format: %s", c.Log.Format)
		}
	}

	return nil
}

// YAML 导出当前配置为YAML文本
// 用于观测接口展示生效配置
func (c *Config) YAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// DefaultConfig 返回默认配置
// 默认值与协议文档保持一致：重连退避1s起步、30s封顶、最多10次，心跳与命令超时均为30s
func DefaultConfig() *Config {
	return &Config{
		App: &AppConfig{
			Name:        "bassethound-bridge",
			Version:     "1.0.0",
			Environment: "production",
			Debug:       false,
		},
		Server: &ServerConfig{
			Host:         "127.0.0.1",
			Port:         8766,
			Mode:         "release",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Log: &LogConfig{
			Level:      "info",
			Format:     "text",
			Output:     "stdout",
			FilePath:   "logs/bridge.log",
			MaxSize:    100,
			MaxBackups: 7,
			MaxAge:     30,
			Compress:   true,
			Caller:     false,
		},
		Backend: &BackendConfig{
			EndpointURL:           "ws://localhost:8765/browser",
			MaxReconnectAttempts:  10,
			InitialReconnectDelay: 1 * time.Second,
			MaxReconnectDelay:     30 * time.Second,
			HeartbeatInterval:     30 * time.Second,
			HandshakeTimeout:      10 * time.Second,
		},
		Bridge: &BridgeConfig{
			DefaultCommandTimeout: 30 * time.Second,
		},
		Monitor: &MonitorConfig{
			EnableHeartbeatMetrics: true,
		},
	}
}
