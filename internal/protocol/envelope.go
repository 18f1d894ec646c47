/**
 * 协议帧模型
 * @author: sun977
 * @date: 2026.07.15
 * @description: 后端WebSocket协议的四种帧类型定义：命令、响应、心跳、状态通知
 * @func: 定义帧结构体和构造函数
 */
package protocol

import "time"

// MessageKind 帧类型
type MessageKind string

const (
	KindCommand   MessageKind = "command"   // 后端下发的命令帧
	KindResponse  MessageKind = "response"  // 命令响应帧
	KindHeartbeat MessageKind = "heartbeat" // 心跳帧
	KindStatus    MessageKind = "status"    // 状态通知帧
)

// Command 后端下发的命令
// 生命周期：后端创建 -> 连接管理器接收一次 -> 分发器消费一次，创建后不再变更
type Command struct {
	CommandID string                 `json:"command_id"` // 命令ID，调用方提供，用于响应关联
	Type      string                 `json:"type"`       // 命令类型，决定由哪个处理器执行
	Params    map[string]interface{} `json:"params"`     // 处理器自定义参数，可为空
}

// Response 命令响应
// 不变式：每个被接受的命令恰好产生一条响应，超时和处理器异常也不例外
type Response struct {
	CommandID string      `json:"command_id"` // 与原命令ID一致
	Success   bool        `json:"success"`    // 执行是否成功
	Result    interface{} `json:"result"`     // 成功时的结果，失败时为null
	Error     *string     `json:"error"`      // 失败时的错误信息，成功时为null
	Timestamp int64       `json:"timestamp"`  // 响应创建时间（毫秒时间戳）

	// Kind 内部错误类别，不参与序列化
	Kind ErrorKind `json:"-"`
}

// Heartbeat 心跳帧
// 连接存活期间周期性发送，无需响应关联
type Heartbeat struct {
	Type      string      `json:"type"`              // 恒为"heartbeat"
	Timestamp int64       `json:"timestamp"`         // 当前时间（毫秒时间戳）
	Metrics   interface{} `json:"metrics,omitempty"` // 可选的系统指标
}

// StatusNotification 状态通知帧
// 连接状态变化时发送给后端和本地观察者
type StatusNotification struct {
	Type      string                 `json:"type"`      // 恒为"status"
	Status    string                 `json:"status"`    // connected/disconnected/reconnecting/failed
	Data      map[string]interface{} `json:"data"`      // 附加数据
	Timestamp int64                  `json:"timestamp"` // 通知时间（毫秒时间戳）
}

// Envelope 解码后的帧封装
// Kind指明帧类型，对应字段非空，其余为nil
type Envelope struct {
	Kind      MessageKind
	Command   *Command
	Response  *Response
	Heartbeat *Heartbeat
	Status    *StatusNotification
}

// NowMillis 当前毫秒时间戳
func NowMillis() int64 {
	return time.Now().UnixMilli()
}

// NewSuccessResponse 构造成功响应
func NewSuccessResponse(commandID string, result interface{}) *Response {
	return &Response{
		CommandID: commandID,
		Success:   true,
		Result:    result,
		Timestamp: NowMillis(),
	}
}

// NewErrorResponse 构造失败响应
func NewErrorResponse(commandID string, kind ErrorKind, message string) *Response {
	return &Response{
		CommandID: commandID,
		Success:   false,
		Error:     &message,
		Timestamp: NowMillis(),
		Kind:      kind,
	}
}

// NewHeartbeat 构造心跳帧
func NewHeartbeat(metrics interface{}) *Heartbeat {
	return &Heartbeat{
		Type:      "heartbeat",
		Timestamp: NowMillis(),
		Metrics:   metrics,
	}
}

// NewStatusNotification 构造状态通知帧
func NewStatusNotification(status string, data map[string]interface{}) *StatusNotification {
	if data == nil {
		data = map[string]interface{}{}
	}
	return &StatusNotification{
		Type:      "status",
		Status:    status,
		Data:      data,
		Timestamp: NowMillis(),
	}
}
