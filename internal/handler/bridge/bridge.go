/**
 * 桥接控制处理器
 * @author: sun977
 * @date: 2026.07.19
 * @description: 本地观测API：连接状态查询、在途命令查询、处理器列表、手动重连/断开
 * @func: 连接管理器和分发器的HTTP视图
 */
package bridge

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"bassethound/internal/connection"
	"bassethound/internal/dispatcher"
	"bassethound/internal/registry"
)

// BridgeHandler 桥接控制处理器接口
type BridgeHandler interface {
	GetStatus(c *gin.Context)   // 连接状态快照 [GET /api/v1/bridge/status]
	GetCommands(c *gin.Context) // 命令统计和在途命令 [GET /api/v1/bridge/commands]
	GetHandlers(c *gin.Context) // 已注册的命令类型 [GET /api/v1/bridge/handlers]
	Reconnect(c *gin.Context)   // 手动重连 [POST /api/v1/bridge/reconnect]
	Disconnect(c *gin.Context)  // 手动断开 [POST /api/v1/bridge/disconnect]
}

// bridgeHandler 桥接控制处理器实现
type bridgeHandler struct {
	manager *connection.Manager
	disp    *dispatcher.Dispatcher
	reg     *registry.Registry
}

// NewBridgeHandler 创建桥接控制处理器实例
func NewBridgeHandler(manager *connection.Manager, disp *dispatcher.Dispatcher, reg *registry.Registry) BridgeHandler {
	return &bridgeHandler{
		manager: manager,
		disp:    disp,
		reg:     reg,
	}
}

// GetStatus 获取连接状态快照
// @Summary 获取连接状态
// @Description 返回到后端的连接状态、重连计数和最近心跳时间
// @Tags 桥接控制
// @Produce json
// @Success 200 {object} map[string]interface{} "状态获取成功"
// @Router /api/v1/bridge/status [get]
func (h *bridgeHandler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "success",
		"timestamp": time.Now(),
		"data": gin.H{
			"connection": h.manager.Snapshot(),
			"commands":   h.disp.Stats(),
		},
	})
}

// GetCommands 获取命令统计和在途命令
// @Summary 获取命令统计
// @Description 返回分发器累计计数和当前在途命令列表
// @Tags 桥接控制
// @Produce json
// @Success 200 {object} map[string]interface{} "统计获取成功"
// @Router /api/v1/bridge/commands [get]
func (h *bridgeHandler) GetCommands(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "success",
		"timestamp": time.Now(),
		"data": gin.H{
			"stats":    h.disp.Stats(),
			"inflight": h.disp.Inflight(),
		},
	})
}

// GetHandlers 获取已注册的命令类型
// @Summary 获取命令处理器列表
// @Description 返回已注册的命令类型（字典序）
// @Tags 桥接控制
// @Produce json
// @Success 200 {object} map[string]interface{} "列表获取成功"
// @Router /api/v1/bridge/handlers [get]
func (h *bridgeHandler) GetHandlers(c *gin.Context) {
	types := h.reg.Types()
	c.JSON(http.StatusOK, gin.H{
		"status":    "success",
		"timestamp": time.Now(),
		"data": gin.H{
			"count": len(types),
			"types": types,
		},
	})
}

// Reconnect 手动重连
// @Summary 手动重连
// @Description 重置重连计数并立即重连，failed状态由此恢复
// @Tags 桥接控制
// @Produce json
// @Success 202 {object} map[string]interface{} "重连已触发"
// @Router /api/v1/bridge/reconnect [post]
func (h *bridgeHandler) Reconnect(c *gin.Context) {
	h.manager.Reconnect()
	c.JSON(http.StatusAccepted, gin.H{
		"status":    "success",
		"message":   "Reconnect triggered",
		"timestamp": time.Now(),
		"data": gin.H{
			"state": h.manager.State(),
		},
	})
}

// Disconnect 手动断开
// @Summary 手动断开
// @Description 断开后端连接并停止自动重连，直到再次手动重连
// @Tags 桥接控制
// @Produce json
// @Success 202 {object} map[string]interface{} "断开已触发"
// @Router /api/v1/bridge/disconnect [post]
func (h *bridgeHandler) Disconnect(c *gin.Context) {
	h.manager.Disconnect()
	c.JSON(http.StatusAccepted, gin.H{
		"status":    "success",
		"message":   "Disconnect triggered",
		"timestamp": time.Now(),
		"data": gin.H{
			"state": h.manager.State(),
		},
	})
}
