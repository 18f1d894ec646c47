/**
 * 命令分发器
 * @author: sun977
 * @date: 2026.07.16
 * @description: 将解码后的命令分发给注册的处理器，强制超时，保证每条被接受的命令恰好产生一条响应
 * @func: Dispatch/AbortAll/Stats/Inflight
 */
package dispatcher

import (
	"context"
	"fmt"
	"sync"
	"time"

	"bassethound/internal/pkg/logger"
	"bassethound/internal/protocol"
	"bassethound/internal/registry"
)

// ResponseFunc 响应发送回调
// 连接管理器注入，分发器对每条被接受的命令恰好调用一次
type ResponseFunc func(*protocol.Response)

// Dispatcher 命令分发器
// 在途命令相互独立：一个处理器阻塞不影响其他命令的分发和超时处理
type Dispatcher struct {
	reg            *registry.Registry
	defaultTimeout time.Duration

	mu      sync.Mutex
	pending map[string]*PendingCommand
	stats   Stats
}

// NewDispatcher 创建命令分发器
func NewDispatcher(reg *registry.Registry, defaultTimeout time.Duration) *Dispatcher {
	if defaultTimeout <= 0 {
		defaultTimeout = 30 * time.Second
	}
	return &Dispatcher{
		reg:            reg,
		defaultTimeout: defaultTimeout,
		pending:        make(map[string]*PendingCommand),
	}
}

// Dispatch 分发一条命令
//
// 验证 -> 解析处理器 -> 登记在途条目 -> 异步执行处理器并与定时器竞争。
// 处理器先完成则取消定时器；定时器先触发则发出超时响应，处理器的后续结果被丢弃。
// 返回error仅表示命令未被接受（无处可回复时丢弃），已接受的命令总会异步产生响应。
func (d *Dispatcher) Dispatch(ctx context.Context, cmd *protocol.Command, respond ResponseFunc) error {
	// command_id缺失时没有回复地址，记录日志后丢弃
	if cmd.CommandID == "" {
		d.addRejected()
		logger.LogSystemEvent("Dispatcher", "Dispatch", "Dropped command without command_id", logger.WarnLevel,
			map[string]interface{}{"command_type": cmd.Type})
		return fmt.Errorf("command dropped: missing command_id")
	}

	// type缺失时仍有回复地址，发出失败响应
	if cmd.Type == "" {
		d.addRejected()
		respond(protocol.NewErrorResponse(cmd.CommandID, protocol.ErrorKindInvalidCommand,
			"invalid command: missing type"))
		return nil
	}

	// 解析处理器
	handler, ok := d.reg.Resolve(cmd.Type)
	if !ok {
		d.addRejected()
		respond(protocol.NewErrorResponse(cmd.CommandID, protocol.ErrorKindUnknownType,
			fmt.Sprintf("unknown command type: %s", cmd.Type)))
		return nil
	}

	timeout := d.resolveTimeout(cmd)

	d.mu.Lock()
	// 同一command_id已在途：响应权属于先到的命令，后到者只能丢弃
	if _, exists := d.pending[cmd.CommandID]; exists {
		d.stats.Rejected++
		d.mu.Unlock()
		logger.LogSystemEvent("Dispatcher", "Dispatch", "Dropped command with duplicate command_id", logger.WarnLevel,
			map[string]interface{}{"command_id": cmd.CommandID, "command_type": cmd.Type})
		return fmt.Errorf("command dropped: duplicate command_id %s", cmd.CommandID)
	}

	hctx, cancel := context.WithCancel(ctx)
	pc := &PendingCommand{
		CommandID: cmd.CommandID,
		Type:      cmd.Type,
		StartTime: time.Now(),
		Status:    StatusRunning,
		cancel:    cancel,
		respond:   respond,
	}
	d.pending[cmd.CommandID] = pc
	d.stats.Dispatched++

	// 定时器回调经过settle的completed检查，与处理器结果天然互斥
	pc.timer = time.AfterFunc(timeout, func() {
		d.settle(pc, StatusTimedOut, protocol.NewErrorResponse(pc.CommandID, protocol.ErrorKindTimeout,
			fmt.Sprintf("Command timeout after %dms", timeout.Milliseconds())))
	})
	d.mu.Unlock()

	// 处理器异步执行，panic被隔离转换为失败响应
	go func() {
		defer func() {
			if r := recover(); r != nil {
				d.settle(pc, StatusFailed, protocol.NewErrorResponse(pc.CommandID, protocol.ErrorKindHandler,
					fmt.Sprintf("handler panic: %v", r)))
			}
		}()

		result, err := handler.Execute(hctx, cmd.Params)
		if err != nil {
			d.settle(pc, StatusFailed, protocol.NewErrorResponse(pc.CommandID, protocol.ErrorKindHandler, err.Error()))
			return
		}
		d.settle(pc, StatusCompleted, protocol.NewSuccessResponse(pc.CommandID, result))
	}()

	return nil
}

// addRejected 累加拒绝计数
func (d *Dispatcher) addRejected() {
	d.mu.Lock()
	d.stats.Rejected++
	d.mu.Unlock()
}

// settle 终结一条在途命令
// 先到者胜出：completed标志在锁内检查并翻转，第二次及之后的终结请求被静默忽略
func (d *Dispatcher) settle(pc *PendingCommand, status Status, resp *protocol.Response) {
	d.mu.Lock()
	if pc.completed {
		d.mu.Unlock()
		return
	}
	pc.completed = true
	pc.Status = status
	delete(d.pending, pc.CommandID)

	switch status {
	case StatusCompleted:
		d.stats.Succeeded++
	case StatusTimedOut:
		d.stats.TimedOut++
	default:
		d.stats.Failed++
	}

	if pc.timer != nil {
		pc.timer.Stop()
	}
	cancel := pc.cancel
	respond := pc.respond
	d.mu.Unlock()

	// 取消处理器上下文，迟到的处理器结果在settle的completed检查处被丢弃
	if cancel != nil {
		cancel()
	}
	respond(resp)
}

// AbortAll 中止所有在途命令
// 传输层断开时调用，每条在途命令以TransportError终结
func (d *Dispatcher) AbortAll(message string) int {
	d.mu.Lock()
	pcs := make([]*PendingCommand, 0, len(d.pending))
	for _, pc := range d.pending {
		pcs = append(pcs, pc)
	}
	d.mu.Unlock()

	for _, pc := range pcs {
		d.settle(pc, StatusFailed, protocol.NewErrorResponse(pc.CommandID, protocol.ErrorKindTransport, message))
	}

	if len(pcs) > 0 {
		logger.LogSystemEvent("Dispatcher", "AbortAll", fmt.Sprintf("Aborted %d inflight commands: %s", len(pcs), message),
			logger.WarnLevel, nil)
	}
	return len(pcs)
}

// resolveTimeout 解析命令超时时间
// params.timeout（毫秒数值）允许单条命令覆盖默认超时
func (d *Dispatcher) resolveTimeout(cmd *protocol.Command) time.Duration {
	if v, ok := cmd.Params["timeout"]; ok {
		if ms, ok := toMillis(v); ok && ms > 0 {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return d.defaultTimeout
}

// toMillis JSON数值转毫秒数
func toMillis(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int:
		return int64(n), true
	case int64:
		return n, true
	default:
		return 0, false
	}
}

// Stats 返回统计计数快照
func (d *Dispatcher) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := d.stats
	s.Inflight = len(d.pending)
	return s
}

// Inflight 返回在途命令快照（观测接口使用）
func (d *Dispatcher) Inflight() []InflightInfo {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := time.Now()
	infos := make([]InflightInfo, 0, len(d.pending))
	for _, pc := range d.pending {
		infos = append(infos, InflightInfo{
			CommandID: pc.CommandID,
			Type:      pc.Type,
			Status:    pc.Status,
			StartTime: pc.StartTime,
			ElapsedMs: now.Sub(pc.StartTime).Milliseconds(),
		})
	}
	return infos
}
