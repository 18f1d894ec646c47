package bridge

import (
	"testing"
)

func TestNewAppWithEndpointOverride(t *testing.T) {
	app, err := NewApp("", WithEndpoint("ws://10.0.0.5:9999/browser"))
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}

	// 覆盖值必须一路传到连接管理器，而不是只停留在配置对象上
	if got := app.GetConfig().Backend.EndpointURL; got != "ws://10.0.0.5:9999/browser" {
		t.Errorf("Expected endpoint override in config, got %s", got)
	}
	if got := app.GetManager().Snapshot().Endpoint; got != "ws://10.0.0.5:9999/browser" {
		t.Errorf("Expected endpoint override in manager, got %s", got)
	}
}

func TestNewAppRejectsInvalidEndpointOverride(t *testing.T) {
	if _, err := NewApp("", WithEndpoint("http://not-a-ws-endpoint")); err == nil {
		t.Error("Expected error for non-websocket endpoint override")
	}
}
