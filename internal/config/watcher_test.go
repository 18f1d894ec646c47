package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeWatcherConfig(t *testing.T, path, endpoint string) {
	t.Helper()
	content := "backend:\n  endpoint_url: " + endpoint + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestConfigWatcherReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeWatcherConfig(t, path, "ws://localhost:8765/browser")

	watcher, err := NewConfigWatcher(path)
	require.NoError(t, err)
	watcher.reloadDelay = 50 * time.Millisecond

	changes := make(chan *Config, 8)
	watcher.OnChange(func(oldConfig, newConfig *Config) error {
		changes <- newConfig
		return nil
	})

	require.NoError(t, watcher.Start())
	defer watcher.Stop()

	writeWatcherConfig(t, path, "ws://localhost:9001/browser")

	select {
	case cfg := <-changes:
		require.Equal(t, "ws://localhost:9001/browser", cfg.Backend.EndpointURL)
	case <-time.After(2 * time.Second):
		t.Fatal("Config change was not reloaded")
	}
}

func TestConfigWatcherBurstKeepsLastWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeWatcherConfig(t, path, "ws://localhost:8765/browser")

	watcher, err := NewConfigWatcher(path)
	require.NoError(t, err)
	watcher.reloadDelay = 100 * time.Millisecond

	changes := make(chan *Config, 8)
	watcher.OnChange(func(oldConfig, newConfig *Config) error {
		changes <- newConfig
		return nil
	})

	require.NoError(t, watcher.Start())
	defer watcher.Stop()

	// 快速连续保存：防抖窗口内的后续写入不能被丢掉，最终以最后一次内容生效
	writeWatcherConfig(t, path, "ws://localhost:9001/browser")
	time.Sleep(20 * time.Millisecond)
	writeWatcherConfig(t, path, "ws://localhost:9002/browser")

	deadline := time.After(3 * time.Second)
	for {
		select {
		case cfg := <-changes:
			if cfg.Backend.EndpointURL == "ws://localhost:9002/browser" {
				return
			}
		case <-deadline:
			t.Fatal("Final write of burst was never reloaded")
		}
	}
}
