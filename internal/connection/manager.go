/**
 * 连接管理器
 * @author: sun977
 * @date: 2026.07.17
 * @description: 持有传输层生命周期：建连、故障检测、指数退避重连、心跳、状态对外可见
 * @func: Start/Stop/Reconnect/Disconnect/Snapshot/观察者订阅
 */
package connection

import (
	"context"
	"fmt"
	"sync"
	"time"

	"bassethound/internal/config"
	"bassethound/internal/dispatcher"
	"bassethound/internal/pkg/logger"
	"bassethound/internal/pkg/monitor"
	"bassethound/internal/pkg/utils"
	"bassethound/internal/pkg/version"
	"bassethound/internal/protocol"
	"bassethound/internal/transport"
)

// StatusEvent 状态变更事件（推送给本地观察者）
type StatusEvent struct {
	From      State     `json:"from"`
	State     State     `json:"state"`
	Cause     string    `json:"cause"`
	Attempts  int       `json:"attempts"`
	Timestamp time.Time `json:"timestamp"`
}

// Snapshot 连接状态快照（观测接口使用）
type Snapshot struct {
	State         State      `json:"state"`
	Endpoint      string     `json:"endpoint"`
	SessionID     string     `json:"session_id"`
	Attempts      int        `json:"attempts"`
	NextDelayMs   int64      `json:"next_delay_ms"`
	LastHeartbeat *time.Time `json:"last_heartbeat"`
	ConnectedAt   *time.Time `json:"connected_at"`
}

// Manager 连接管理器
// 单一属主：状态和传输层只被run循环这一个协程写入，
// 外部调用（Reconnect/Disconnect）只翻转标志并唤醒循环
type Manager struct {
	cfg           *config.BackendConfig
	dialer        transport.Dialer
	disp          *dispatcher.Dispatcher
	enableMetrics bool

	mu            sync.RWMutex
	state         State
	attempts      int
	nextDelay     time.Duration
	lastHeartbeat *time.Time
	connectedAt   *time.Time
	sessionID     string
	conn          transport.Conn
	manualDown    bool
	running       bool

	stateObservers []func(StatusEvent)
	frameObservers []func(*protocol.Envelope)

	signalCh chan struct{}
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewManager 创建连接管理器
func NewManager(cfg *config.BackendConfig, dialer transport.Dialer, disp *dispatcher.Dispatcher, enableMetrics bool) *Manager {
	return &Manager{
		cfg:           cfg,
		dialer:        dialer,
		disp:          disp,
		enableMetrics: enableMetrics,
		state:         StateDisconnected,
		signalCh:      make(chan struct{}, 1),
	}
}

// OnStateChange 订阅状态变更事件
// 必须在Start之前调用，运行期间订阅列表只读
func (m *Manager) OnStateChange(cb func(StatusEvent)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stateObservers = append(m.stateObservers, cb)
}

// OnFrame 订阅后端下发的心跳/状态通知帧
// 必须在Start之前调用
func (m *Manager) OnFrame(cb func(*protocol.Envelope)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frameObservers = append(m.frameObservers, cb)
}

// Start 启动连接管理器
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return fmt.Errorf("connection manager already started")
	}
	m.running = true
	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.mu.Unlock()

	logger.LogSystemEvent("ConnectionManager", "startup",
		fmt.Sprintf("Connecting to backend %s", m.cfg.EndpointURL), logger.InfoLevel, nil)

	m.wg.Add(1)
	go m.run(runCtx)
	return nil
}

// Stop 停止连接管理器并等待后台协程退出
func (m *Manager) Stop() {
	m.mu.Lock()
	cancel := m.cancel
	conn := m.conn
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if conn != nil {
		_ = conn.Close()
	}
	m.wg.Wait()

	m.mu.Lock()
	m.running = false
	m.mu.Unlock()
}

// Reconnect 手动重连
// 重置重连计数，failed状态由此恢复；退避等待中调用会立即重连
func (m *Manager) Reconnect() {
	m.mu.Lock()
	m.manualDown = false
	m.attempts = 0
	m.mu.Unlock()

	logger.LogSystemEvent("ConnectionManager", "manual_reconnect", "Manual reconnect requested", logger.InfoLevel, nil)
	m.poke()
}

// Disconnect 手动断开
// 进入disconnected终态，自动重连停止，直到显式调用Reconnect
func (m *Manager) Disconnect() {
	m.mu.Lock()
	m.manualDown = true
	conn := m.conn
	m.mu.Unlock()

	logger.LogSystemEvent("ConnectionManager", "manual_disconnect", "Manual disconnect requested", logger.InfoLevel, nil)
	if conn != nil {
		// 读循环随连接关闭退出，run循环看到manualDown后停在disconnected
		_ = conn.Close()
	} else {
		m.poke()
	}
}

// State 返回当前连接状态
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Snapshot 返回连接状态快照
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Snapshot{
		State:         m.state,
		Endpoint:      m.cfg.EndpointURL,
		SessionID:     m.sessionID,
		Attempts:      m.attempts,
		NextDelayMs:   m.nextDelay.Milliseconds(),
		LastHeartbeat: m.lastHeartbeat,
		ConnectedAt:   m.connectedAt,
	}
}

// poke 唤醒run循环（非阻塞，信号可合并）
func (m *Manager) poke() {
	select {
	case m.signalCh <- struct{}{}:
	default:
	}
}

// drainSignal 丢弃已缓冲的唤醒信号
func (m *Manager) drainSignal() {
	select {
	case <-m.signalCh:
	default:
	}
}

// run 连接生命周期主循环
// 进程内唯一写入连接状态的协程
func (m *Manager) run(ctx context.Context) {
	defer m.wg.Done()
	defer m.transition(StateDisconnected, "shutdown")

	for {
		if ctx.Err() != nil {
			return
		}

		// 手动断开：停在disconnected等待手动重连
		m.mu.RLock()
		down := m.manualDown
		m.mu.RUnlock()
		if down {
			m.transition(StateDisconnected, "manual disconnect")
			if !m.waitSignal(ctx) {
				return
			}
			continue
		}

		m.transition(StateConnecting, "")
		conn, err := m.dialer.Dial(ctx, m.cfg.EndpointURL)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if !m.handleConnectFailure(ctx, err) {
				return
			}
			continue
		}

		// 建连成功：重置计数，记录会话标识
		// 拨号期间可能已收到手动断开请求，入座前最后检查一次
		sessionID, _ := utils.GenerateShortUUID()
		now := time.Now()
		m.mu.Lock()
		if m.manualDown {
			m.mu.Unlock()
			_ = conn.Close()
			continue
		}
		m.conn = conn
		m.attempts = 0
		m.nextDelay = 0
		m.sessionID = sessionID
		m.connectedAt = &now
		m.mu.Unlock()

		m.transition(StateConnected, "")

		// 收发循环，连接断开前一直阻塞
		connCtx, connCancel := context.WithCancel(ctx)
		reason := m.serve(connCtx, conn)
		connCancel()

		// 连接存活期间缓冲的唤醒信号已失效，丢弃以免掐断后续退避等待
		m.drainSignal()

		// 传输层断开时在途命令以TransportError终结，不会悬挂
		m.disp.AbortAll("transport error: backend connection lost")

		m.mu.Lock()
		m.conn = nil
		m.connectedAt = nil
		manual := m.manualDown
		m.mu.Unlock()
		_ = conn.Close()

		if ctx.Err() != nil {
			return
		}
		if manual {
			continue
		}

		// 意外断开计为第一次连接失败，按退避延迟后重连
		cause := "connection closed"
		if reason != nil {
			cause = reason.Error()
		}
		m.mu.Lock()
		m.attempts = 1
		delay := BackoffDelay(1, m.cfg.InitialReconnectDelay, m.cfg.MaxReconnectDelay)
		m.nextDelay = delay
		m.mu.Unlock()

		m.transition(StateReconnecting, cause)
		if !m.sleep(ctx, delay) {
			return
		}
	}
}

// handleConnectFailure 处理建连失败
// 返回false表示ctx已取消，run循环应退出
func (m *Manager) handleConnectFailure(ctx context.Context, err error) bool {
	m.mu.Lock()
	m.attempts++
	attempts := m.attempts
	m.mu.Unlock()

	logger.LogSystemEvent("ConnectionManager", "connect_failed",
		fmt.Sprintf("Connection attempt %d/%d failed: %v", attempts, m.cfg.MaxReconnectAttempts, err),
		logger.WarnLevel, nil)

	// 次数耗尽：进入failed终态，只有手动重连能恢复
	if attempts >= m.cfg.MaxReconnectAttempts {
		m.transition(StateFailed, fmt.Sprintf("max reconnect attempts (%d) exhausted", m.cfg.MaxReconnectAttempts))
		return m.waitSignal(ctx)
	}

	delay := BackoffDelay(attempts, m.cfg.InitialReconnectDelay, m.cfg.MaxReconnectDelay)
	m.mu.Lock()
	m.nextDelay = delay
	m.mu.Unlock()

	m.transition(StateReconnecting, err.Error())
	return m.sleep(ctx, delay)
}

// serve 连接存活期间的收发循环
// 心跳协程周期性发送心跳帧，本协程阻塞读入站帧，读出错即视为连接断开
func (m *Manager) serve(ctx context.Context, conn transport.Conn) error {
	hbStop := make(chan struct{})
	var hbWg sync.WaitGroup
	hbWg.Add(1)
	go func() {
		defer hbWg.Done()
		ticker := time.NewTicker(m.cfg.HeartbeatInterval)
		defer ticker.Stop()
		for {
			select {
			case <-hbStop:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.sendHeartbeat(conn)
			}
		}
	}()

	var reason error
	for {
		data, err := conn.ReadMessage()
		if err != nil {
			reason = err
			break
		}
		m.handleFrame(ctx, data)
	}

	close(hbStop)
	hbWg.Wait()
	return reason
}

// handleFrame 处理一条入站帧
// 解码失败的帧记录日志后丢弃，连接状态不受影响
func (m *Manager) handleFrame(ctx context.Context, data []byte) {
	env, err := protocol.Decode(data)
	if err != nil {
		logger.LogSystemEvent("ConnectionManager", "malformed_frame",
			fmt.Sprintf("Dropped malformed frame: %v", err), logger.WarnLevel, nil)
		return
	}

	switch env.Kind {
	case protocol.KindCommand:
		if err := m.disp.Dispatch(ctx, env.Command, m.sendResponse); err != nil {
			logger.Debugf("Command not accepted: %v", err)
		}
	default:
		// 心跳/状态通知/响应帧交给本地观察者
		m.mu.RLock()
		observers := m.frameObservers
		m.mu.RUnlock()
		for _, cb := range observers {
			cb(env)
		}
	}
}

// sendHeartbeat 发送一次心跳帧
// 写失败时主动关闭连接，触发读循环退出进入重连
func (m *Manager) sendHeartbeat(conn transport.Conn) {
	var metrics interface{}
	if m.enableMetrics {
		if ms, err := monitor.GetSystemMetrics(); err == nil {
			metrics = ms
		}
	}

	data, err := protocol.Encode(protocol.NewHeartbeat(metrics))
	if err != nil {
		logger.Errorf("Failed to encode heartbeat: %v", err)
		return
	}

	if err := conn.WriteMessage(data); err != nil {
		logger.LogSystemEvent("ConnectionManager", "heartbeat_failed",
			fmt.Sprintf("Heartbeat write failed: %v", err), logger.WarnLevel, nil)
		_ = conn.Close()
		return
	}

	now := time.Now()
	m.mu.Lock()
	m.lastHeartbeat = &now
	m.mu.Unlock()
}

// sendResponse 发送命令响应帧
// 分发器注入的回调，连接不存在时只能丢弃（对端断开后无处可回复）
func (m *Manager) sendResponse(resp *protocol.Response) {
	m.mu.RLock()
	conn := m.conn
	m.mu.RUnlock()

	if conn == nil {
		logger.Warnf("Dropped response for command %s: not connected", resp.CommandID)
		return
	}

	data, err := protocol.Encode(resp)
	if err != nil {
		logger.Errorf("Failed to encode response for command %s: %v", resp.CommandID, err)
		return
	}
	if err := conn.WriteMessage(data); err != nil {
		logger.Warnf("Failed to send response for command %s: %v", resp.CommandID, err)
	}
}

// sendStatusFrame 尽力向后端发送状态通知帧
// 连接不存在时静默跳过（reconnecting/failed时传输层本来就不在）
func (m *Manager) sendStatusFrame(status string, extra map[string]interface{}) {
	m.mu.RLock()
	conn := m.conn
	m.mu.RUnlock()
	if conn == nil {
		return
	}

	data, err := protocol.Encode(protocol.NewStatusNotification(status, extra))
	if err != nil {
		return
	}
	_ = conn.WriteMessage(data)
}

// transition 执行一次状态迁移并通知观察者
// 非法迁移记录错误日志便于发现状态机缺陷，但不中断运行
func (m *Manager) transition(to State, cause string) {
	m.mu.Lock()
	from := m.state
	if from == to {
		m.mu.Unlock()
		return
	}
	if !CanTransition(from, to) {
		logger.Errorf("Invalid state transition %s -> %s", from, to)
	}
	m.state = to
	attempts := m.attempts
	sessionID := m.sessionID
	observers := m.stateObservers
	m.mu.Unlock()

	logger.LogSystemEvent("ConnectionManager", "state_change",
		fmt.Sprintf("Connection state %s -> %s", from, to), logger.InfoLevel,
		map[string]interface{}{"cause": cause, "attempts": attempts})

	event := StatusEvent{
		From:      from,
		State:     to,
		Cause:     cause,
		Attempts:  attempts,
		Timestamp: time.Now(),
	}
	for _, cb := range observers {
		cb(event)
	}

	// 连接打开后向后端发送状态帧（对端以此作为就绪信号）
	if to == StateConnected {
		m.sendStatusFrame(string(StateConnected), map[string]interface{}{
			"session_id": sessionID,
			"version":    version.GetVersion(),
		})
	}
}

// waitSignal 等待手动重连信号
// 返回false表示ctx已取消
func (m *Manager) waitSignal(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-m.signalCh:
		return true
	}
}

// sleep 可中断的退避等待
// 手动信号会提前唤醒（Reconnect跳过剩余延迟），返回false表示ctx已取消
func (m *Manager) sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	case <-m.signalCh:
		return true
	}
}
