package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// ConfigLoader 配置加载器
type ConfigLoader struct {
	configPath string
	envPrefix  string
	viper      *viper.Viper
}

// NewConfigLoader 创建配置加载器
func NewConfigLoader(configPath, envPrefix string) *ConfigLoader {
	if envPrefix == "" {
		envPrefix = "BASSETHOUND"
	}

	return &ConfigLoader{
		configPath: configPath,
		envPrefix:  envPrefix,
		viper:      viper.New(),
	}
}

// LoadConfig 加载配置
// 优先级：环境变量 > 配置文件 > 默认值
func (cl *ConfigLoader) LoadConfig() (*Config, error) {
	// 加载.env文件（不存在时静默忽略）
	LoadEnvFiles()

	// 设置配置文件类型
	cl.viper.SetConfigType("yaml")

	// 设置环境变量前缀
	cl.viper.SetEnvPrefix(cl.envPrefix)
	cl.viper.AutomaticEnv()
	cl.viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 设置默认值
	cl.setDefaults()

	// 加载配置文件
	if err := cl.loadConfigFile(); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// 解析配置
	config := DefaultConfig()
	if err := cl.viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 验证配置
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// loadConfigFile 加载配置文件
func (cl *ConfigLoader) loadConfigFile() error {
	if cl.configPath == "" {
		// 尝试从环境变量获取配置文件路径，默认./configs
		cl.configPath = NewEnvManager(cl.envPrefix).GetString("config_path", "./configs")
	}

	// 配置文件路径直接指向文件时按文件加载
	if info, err := os.Stat(cl.configPath); err == nil && !info.IsDir() {
		cl.viper.SetConfigFile(cl.configPath)
		if err := cl.viper.ReadInConfig(); err != nil {
			return fmt.Errorf("config file not readable: %w", err)
		}
		return nil
	}

	// 设置配置文件搜索路径
	cl.viper.AddConfigPath(cl.configPath)
	cl.viper.AddConfigPath("./configs")
	cl.viper.AddConfigPath(".")
	cl.viper.SetConfigName("config")

	if err := cl.viper.ReadInConfig(); err != nil {
		// 配置文件不存在时退回默认值+环境变量
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("config file not found: %w", err)
	}

	return nil
}

// setDefaults 设置默认配置值
func (cl *ConfigLoader) setDefaults() {
	def := DefaultConfig()

	// 应用默认值
	cl.viper.SetDefault("app.name", def.App.Name)
	cl.viper.SetDefault("app.version", def.App.Version)
	cl.viper.SetDefault("app.environment", def.App.Environment)
	cl.viper.SetDefault("app.debug", def.App.Debug)

	// 服务器默认值
	cl.viper.SetDefault("server.host", def.Server.Host)
	cl.viper.SetDefault("server.port", def.Server.Port)
	cl.viper.SetDefault("server.mode", def.Server.Mode)
	cl.viper.SetDefault("server.read_timeout", def.Server.ReadTimeout)
	cl.viper.SetDefault("server.write_timeout", def.Server.WriteTimeout)
	cl.viper.SetDefault("server.idle_timeout", def.Server.IdleTimeout)

	// 日志默认值
	cl.viper.SetDefault("log.level", def.Log.Level)
	cl.viper.SetDefault("log.format", def.Log.Format)
	cl.viper.SetDefault("log.output", def.Log.Output)
	cl.viper.SetDefault("log.file_path", def.Log.FilePath)
	cl.viper.SetDefault("log.max_size", def.Log.MaxSize)
	cl.viper.SetDefault("log.max_backups", def.Log.MaxBackups)
	cl.viper.SetDefault("log.max_age", def.Log.MaxAge)
	cl.viper.SetDefault("log.compress", def.Log.Compress)
	cl.viper.SetDefault("log.caller", def.Log.Caller)

	// 后端连接默认值
	cl.viper.SetDefault("backend.endpoint_url", def.Backend.EndpointURL)
	cl.viper.SetDefault("backend.max_reconnect_attempts", def.Backend.MaxReconnectAttempts)
	cl.viper.SetDefault("backend.initial_reconnect_delay", def.Backend.InitialReconnectDelay)
	cl.viper.SetDefault("backend.max_reconnect_delay", def.Backend.MaxReconnectDelay)
	cl.viper.SetDefault("backend.heartbeat_interval", def.Backend.HeartbeatInterval)
	cl.viper.SetDefault("backend.handshake_timeout", def.Backend.HandshakeTimeout)

	// 分发器默认值
	cl.viper.SetDefault("bridge.default_command_timeout", def.Bridge.DefaultCommandTimeout)

	// 监控默认值
	cl.viper.SetDefault("monitor.enable_heartbeat_metrics", def.Monitor.EnableHeartbeatMetrics)
}

// GetConfigPath 获取实际使用的配置文件路径
func (cl *ConfigLoader) GetConfigPath() string {
	return cl.viper.ConfigFileUsed()
}

// LoadConfig 使用默认加载器加载配置
func LoadConfig() (*Config, error) {
	return NewConfigLoader("", "").LoadConfig()
}

// LoadConfigFrom 从指定路径加载配置
func LoadConfigFrom(path string) (*Config, error) {
	return NewConfigLoader(path, "").LoadConfig()
}
