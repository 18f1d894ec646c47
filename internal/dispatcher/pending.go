package dispatcher

import (
	"context"
	"time"
)

// Status 在途命令状态
type Status string

const (
	StatusRunning   Status = "running"   // 处理器执行中
	StatusCompleted Status = "completed" // 处理器成功返回
	StatusFailed    Status = "failed"    // 处理器失败或被中止
	StatusTimedOut  Status = "timed_out" // 超时
)

// PendingCommand 在途命令的簿记条目
// completed标志在分发器锁内检查和翻转，保证先到者胜出、响应恰好一条
type PendingCommand struct {
	CommandID string
	Type      string
	StartTime time.Time
	Status    Status

	timer     *time.Timer
	cancel    context.CancelFunc
	respond   ResponseFunc
	completed bool
}

// InflightInfo 在途命令快照（观测接口使用）
type InflightInfo struct {
	CommandID string    `json:"command_id"`
	Type      string    `json:"type"`
	Status    Status    `json:"status"`
	StartTime time.Time `json:"start_time"`
	ElapsedMs int64     `json:"elapsed_ms"`
}

// Stats 分发器统计计数
type Stats struct {
	Dispatched uint64 `json:"dispatched"` // 已接受（建立在途条目）的命令总数
	Succeeded  uint64 `json:"succeeded"`  // 成功完成数
	Failed     uint64 `json:"failed"`     // 处理器失败/中止数
	TimedOut   uint64 `json:"timed_out"`  // 超时数
	Rejected   uint64 `json:"rejected"`   // 未进入在途表即被拒绝的命令数（非法/未知类型/丢弃）
	Inflight   int    `json:"inflight"`   // 当前在途数
}
