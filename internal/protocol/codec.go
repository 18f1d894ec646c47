/**
 * 消息编解码器
 * @author: sun977
 * @date: 2026.07.15
 * @description: JSON文本帧与类型化帧结构之间的转换，按字段存在性判别帧类型
 * @func: Decode/Encode，纯转换无副作用
 */
package protocol

import (
	"encoding/json"
	"fmt"
)

// probe 判别用的探测结构
// 指针类型区分"字段不存在"和"字段为零值"
type probe struct {
	CommandID *string `json:"command_id"`
	Type      *string `json:"type"`
	Success   *bool   `json:"success"`
}

// Decode 解码原始文本帧
//
// 判别规则（按顺序）：
// 1. type == "heartbeat"                      -> 心跳帧
// 2. 有command_id和type且无success字段        -> 命令帧
// 3. 有command_id和布尔success字段            -> 响应帧
// 4. type == "status"                         -> 状态通知帧
// 其余情况返回ErrMalformedMessage，调用方记录日志后丢弃
func Decode(raw []byte) (*Envelope, error) {
	var p probe
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}

	// 心跳帧
	if p.Type != nil && *p.Type == "heartbeat" {
		var hb Heartbeat
		if err := json.Unmarshal(raw, &hb); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
		}
		return &Envelope{Kind: KindHeartbeat, Heartbeat: &hb}, nil
	}

	// 命令帧
	if p.CommandID != nil && p.Type != nil && p.Success == nil {
		var cmd Command
		if err := json.Unmarshal(raw, &cmd); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
		}
		if cmd.Params == nil {
			cmd.Params = map[string]interface{}{}
		}
		return &Envelope{Kind: KindCommand, Command: &cmd}, nil
	}

	// 响应帧
	if p.CommandID != nil && p.Success != nil {
		var resp Response
		if err := json.Unmarshal(raw, &resp); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
		}
		return &Envelope{Kind: KindResponse, Response: &resp}, nil
	}

	// 状态通知帧
	if p.Type != nil && *p.Type == "status" {
		var st StatusNotification
		if err := json.Unmarshal(raw, &st); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
		}
		return &Envelope{Kind: KindStatus, Status: &st}, nil
	}

	return nil, fmt.Errorf("%w: missing discriminator fields", ErrMalformedMessage)
}

// Encode 序列化帧为JSON文本
// 键的存在性稳定（Response的result/error始终存在，便于对端处理）
func Encode(frame interface{}) ([]byte, error) {
	data, err := json.Marshal(frame)
	if err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}
	return data, nil
}
