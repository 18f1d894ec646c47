package registry

import (
	"context"
	"errors"
	"testing"
)

func nopHandler(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	return nil, nil
}

func TestRegisterAndResolve(t *testing.T) {
	r := NewRegistry()

	if err := r.RegisterFunc("navigate", nopHandler); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if _, ok := r.Resolve("navigate"); !ok {
		t.Error("Expected handler for navigate")
	}
	if _, ok := r.Resolve("unknown"); ok {
		t.Error("Expected no handler for unknown")
	}
}

func TestRegisterDuplicate(t *testing.T) {
	r := NewRegistry()

	if err := r.RegisterFunc("fill_form", nopHandler); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	// 重复注册必须失败，避免处理器被静默覆盖
	err := r.RegisterFunc("fill_form", nopHandler)
	if !errors.Is(err, ErrDuplicateHandler) {
		t.Fatalf("Expected ErrDuplicateHandler, got %v", err)
	}
}

func TestRegisterInvalid(t *testing.T) {
	r := NewRegistry()

	if err := r.RegisterFunc("", nopHandler); err == nil {
		t.Error("Expected error for empty type")
	}
	if err := r.Register("x", nil); err == nil {
		t.Error("Expected error for nil handler")
	}
}

func TestTypesSorted(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"c_cmd", "a_cmd", "b_cmd"} {
		if err := r.RegisterFunc(name, nopHandler); err != nil {
			t.Fatalf("Register failed: %v", err)
		}
	}

	types := r.Types()
	expected := []string{"a_cmd", "b_cmd", "c_cmd"}
	if len(types) != len(expected) {
		t.Fatalf("Expected %d types, got %d", len(expected), len(types))
	}
	for i, want := range expected {
		if types[i] != want {
			t.Errorf("Expected types[%d]=%s, got %s", i, want, types[i])
		}
	}

	if r.Size() != 3 {
		t.Errorf("Expected size 3, got %d", r.Size())
	}
}
