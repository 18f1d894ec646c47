package builtin

import (
	"context"
	"testing"

	"bassethound/internal/registry"
)

func TestRegisterBuiltin(t *testing.T) {
	reg := registry.NewRegistry()
	if err := RegisterBuiltin(reg); err != nil {
		t.Fatalf("RegisterBuiltin failed: %v", err)
	}

	for _, name := range []string{"ping", "echo", "system_info", "version"} {
		if _, ok := reg.Resolve(name); !ok {
			t.Errorf("Expected builtin handler %s to be registered", name)
		}
	}

	// 重复注册必须失败
	if err := RegisterBuiltin(reg); err == nil {
		t.Error("Expected error on double registration")
	}
}

func TestPingHandler(t *testing.T) {
	result, err := pingHandler(context.Background(), map[string]interface{}{})
	if err != nil {
		t.Fatalf("ping failed: %v", err)
	}

	m, ok := result.(map[string]interface{})
	if !ok {
		t.Fatalf("Expected map result, got %T", result)
	}
	if m["pong"] != true {
		t.Errorf("Expected pong=true, got %v", m["pong"])
	}
}

func TestEchoHandler(t *testing.T) {
	params := map[string]interface{}{"a": "b", "n": float64(42)}
	result, err := echoHandler(context.Background(), params)
	if err != nil {
		t.Fatalf("echo failed: %v", err)
	}

	m, ok := result.(map[string]interface{})
	if !ok {
		t.Fatalf("Expected map result, got %T", result)
	}
	if m["a"] != "b" || m["n"] != float64(42) {
		t.Errorf("Expected params echoed back, got %v", m)
	}
}

func TestVersionHandler(t *testing.T) {
	result, err := versionHandler(context.Background(), nil)
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}

	m := result.(map[string]interface{})
	if m["version"] == "" {
		t.Error("Expected non-empty version")
	}
}
