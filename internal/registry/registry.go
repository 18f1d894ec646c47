/**
 * 命令注册表
 * @author: sun977
 * @date: 2026.07.15
 * @description: 命令类型到处理器的映射，领域模块在启动时注册，运行期只读
 * @func: Register/Resolve/Types
 */
package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	// ErrDuplicateHandler 重复注册同一命令类型
	// 属于启动期致命错误，避免处理器被静默覆盖
	ErrDuplicateHandler = errors.New("duplicate command handler")

	// ErrHandlerNotFound 命令类型未注册
	ErrHandlerNotFound = errors.New("command handler not found")
)

// Handler 命令处理器接口
// 领域模块（导航、表单填充、OSINT查询等）实现该接口后注册，内部行为对核心不可见
type Handler interface {
	// Execute 执行命令，返回结果或错误
	// ctx在命令超时或连接关闭后取消，处理器应尽量响应取消信号
	Execute(ctx context.Context, params map[string]interface{}) (interface{}, error)
}

// HandlerFunc 函数式处理器适配
type HandlerFunc func(ctx context.Context, params map[string]interface{}) (interface{}, error)

// Execute 实现Handler接口
func (f HandlerFunc) Execute(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	return f(ctx, params)
}

// Registry 命令注册表
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRegistry 创建命令注册表
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string]Handler),
	}
}

// Register 注册命令处理器
// 重复注册返回ErrDuplicateHandler，调用方应在启动时fail fast
func (r *Registry) Register(commandType string, handler Handler) error {
	if commandType == "" {
		return fmt.Errorf("command type cannot be empty")
	}
	if handler == nil {
		return fmt.Errorf("handler cannot be nil for type %q", commandType)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handlers[commandType]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateHandler, commandType)
	}
	r.handlers[commandType] = handler
	return nil
}

// RegisterFunc 注册函数式处理器
func (r *Registry) RegisterFunc(commandType string, fn HandlerFunc) error {
	return r.Register(commandType, fn)
}

// Resolve 查找命令处理器
func (r *Registry) Resolve(commandType string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[commandType]
	return h, ok
}

// Types 返回已注册的命令类型列表（按字典序）
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.handlers))
	for t := range r.handlers {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Size 返回已注册的处理器数量
func (r *Registry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers)
}
