/**
 * 传输层抽象
 * @author: sun977
 * @date: 2026.07.16
 * @description: 到后端的双工消息通道抽象，连接管理器只依赖接口，便于测试注入
 * @func: 定义Conn和Dialer接口
 */
package transport

import "context"

// Conn 双工消息连接
// 实现必须允许一个读协程和多个写调用方并发使用
type Conn interface {
	// ReadMessage 阻塞读取下一条完整消息，连接关闭或出错时返回error
	ReadMessage() ([]byte, error)

	// WriteMessage 发送一条完整消息
	WriteMessage(data []byte) error

	// Close 关闭连接，未完成的ReadMessage随之返回error
	Close() error
}

// Dialer 连接建立器
type Dialer interface {
	// Dial 连接到指定端点
	Dial(ctx context.Context, endpoint string) (Conn, error)
}
