package transport

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocketDialer 基于gorilla/websocket的连接建立器
type WebSocketDialer struct {
	// HandshakeTimeout 握手超时时间，零值时使用10秒
	HandshakeTimeout time.Duration
}

// NewWebSocketDialer 创建WebSocket连接建立器
func NewWebSocketDialer(handshakeTimeout time.Duration) *WebSocketDialer {
	if handshakeTimeout <= 0 {
		handshakeTimeout = 10 * time.Second
	}
	return &WebSocketDialer{HandshakeTimeout: handshakeTimeout}
}

// Dial 连接到后端WebSocket端点
func (d *WebSocketDialer) Dial(ctx context.Context, endpoint string) (Conn, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: d.HandshakeTimeout,
		ReadBufferSize:   4096,
		WriteBufferSize:  4096,
	}

	conn, _, err := dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", endpoint, err)
	}

	return &wsConn{conn: conn}, nil
}

// wsConn gorilla连接的包装
// gorilla/websocket要求写操作串行，writeMu保证心跳协程和响应发送互不踩踏
type wsConn struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

// ReadMessage 读取下一条文本帧
func (c *wsConn) ReadMessage() ([]byte, error) {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	return data, nil
}

// WriteMessage 发送一条文本帧
func (c *wsConn) WriteMessage(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Close 发送关闭帧后关闭底层连接
func (c *wsConn) Close() error {
	c.writeMu.Lock()
	// 尽力通知对端正常关闭，失败时直接断开
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	c.writeMu.Unlock()
	return c.conn.Close()
}
