package logger

import (
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"

	"bassethound/internal/config"
)

func testLogConfig() *config.LogConfig {
	return &config.LogConfig{
		Level:  "info",
		Format: "text",
		Output: "stdout",
	}
}

func TestInitLogger(t *testing.T) {
	lm, err := InitLogger(testLogConfig())
	if err != nil {
		t.Fatalf("InitLogger failed: %v", err)
	}
	if lm.GetLogger().GetLevel() != logrus.InfoLevel {
		t.Errorf("Expected info level, got %v", lm.GetLogger().GetLevel())
	}
	if LoggerInstance != lm {
		t.Error("Expected global instance to be set")
	}
}

func TestInitLoggerInvalidLevelFallsBack(t *testing.T) {
	cfg := testLogConfig()
	cfg.Level = "not-a-level"

	lm, err := InitLogger(cfg)
	if err != nil {
		t.Fatalf("InitLogger failed: %v", err)
	}
	// 非法级别回退到info而不是启动失败
	if lm.GetLogger().GetLevel() != logrus.InfoLevel {
		t.Errorf("Expected fallback to info, got %v", lm.GetLogger().GetLevel())
	}
}

func TestInitLoggerInvalidFormat(t *testing.T) {
	cfg := testLogConfig()
	cfg.Format = "xml"
	if _, err := InitLogger(cfg); err == nil {
		t.Fatal("Expected error for unsupported format")
	}
}

func TestInitLoggerFileOutput(t *testing.T) {
	cfg := testLogConfig()
	cfg.Output = "file"
	cfg.FilePath = filepath.Join(t.TempDir(), "logs", "bridge.log")

	lm, err := InitLogger(cfg)
	if err != nil {
		t.Fatalf("InitLogger failed: %v", err)
	}
	lm.GetLogger().Info("probe")
}

func TestInitLoggerFileOutputRequiresPath(t *testing.T) {
	cfg := testLogConfig()
	cfg.Output = "file"
	cfg.FilePath = ""
	if _, err := InitLogger(cfg); err == nil {
		t.Fatal("Expected error for missing file path")
	}
}

func TestUpdateConfig(t *testing.T) {
	lm, err := InitLogger(testLogConfig())
	if err != nil {
		t.Fatalf("InitLogger failed: %v", err)
	}

	newCfg := testLogConfig()
	newCfg.Level = "debug"
	if err := lm.UpdateConfig(newCfg); err != nil {
		t.Fatalf("UpdateConfig failed: %v", err)
	}
	if lm.GetLogger().GetLevel() != logrus.DebugLevel {
		t.Errorf("Expected debug level after update, got %v", lm.GetLogger().GetLevel())
	}

	bad := testLogConfig()
	bad.Level = "nope"
	if err := lm.UpdateConfig(bad); err == nil {
		t.Error("Expected error for invalid level update")
	}
}
