/**
 * 协议错误定义
 * @author: sun977
 * @date: 2026.07.15
 * @description: 协议层与命令分发相关的错误类别定义
 * @func: 定义错误类别枚举和哨兵错误
 */
package protocol

import "errors"

// ErrorKind 内部错误类别
// 响应帧的error字段只携带可读信息，类别用于内部统计和日志
type ErrorKind string

const (
	ErrorKindNone           ErrorKind = ""                   // 无错误
	ErrorKindMalformed      ErrorKind = "malformed_message"  // 帧无法解码
	ErrorKindInvalidCommand ErrorKind = "invalid_command"    // 缺少type或command_id
	ErrorKindUnknownType    ErrorKind = "unknown_command_type" // 未注册的命令类型
	ErrorKindHandler        ErrorKind = "handler_error"      // 处理器抛出错误
	ErrorKindTimeout        ErrorKind = "timeout"            // 处理器超时
	ErrorKindTransport      ErrorKind = "transport_error"    // 底层连接故障
)

var (
	// ErrMalformedMessage 帧不是合法JSON或缺少判别字段
	// 连接管理器收到后记录日志并丢弃帧，不影响连接状态
	ErrMalformedMessage = errors.New("malformed message")
)
