/**
 * 连接状态机
 * @author: sun977
 * @date: 2026.07.17
 * @description: 连接生命周期的状态定义和合法迁移表
 * @func: State枚举、CanTransition迁移检查
 */
package connection

// State 连接状态
type State string

const (
	StateDisconnected State = "disconnected" // 未连接（手动断开或尚未启动）
	StateConnecting   State = "connecting"   // 正在建立连接
	StateConnected    State = "connected"    // 连接存活
	StateReconnecting State = "reconnecting" // 等待退避延迟后重连
	StateFailed       State = "failed"       // 重连次数耗尽，等待手动重连
)

// String 实现Stringer
func (s State) String() string {
	return string(s)
}

// validTransitions 合法状态迁移表
// 任何状态都可以迁移到disconnected（手动断开或进程关闭）
var validTransitions = map[State][]State{
	StateDisconnected: {StateConnecting},
	StateConnecting:   {StateConnected, StateReconnecting, StateFailed, StateDisconnected},
	StateConnected:    {StateReconnecting, StateDisconnected},
	StateReconnecting: {StateConnecting, StateFailed, StateDisconnected},
	StateFailed:       {StateConnecting, StateDisconnected},
}

// CanTransition 检查状态迁移是否合法
func CanTransition(from, to State) bool {
	if to == StateDisconnected {
		return true
	}
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
