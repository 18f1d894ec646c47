/**
 * 路由:桥接控制路由
 * @author: sun977
 * @date: 2026.07.19
 * @description: Bridge端桥接控制路由，包含连接状态查询和手动重连/断开等路由
 * @func: 桥接控制相关路由注册
 */
package router

import (
	"github.com/gin-gonic/gin"

	handlerBridge "bassethound/internal/handler/bridge"
)

// setupBridgeRoutes 设置桥接控制路由
func setupBridgeRoutes(apiGroup *gin.RouterGroup, bridgeHandler handlerBridge.BridgeHandler) {
	bridgeGroup := apiGroup.Group("/bridge")
	{
		// 状态查询
		bridgeGroup.GET("/status", bridgeHandler.GetStatus)     // 连接状态快照
		bridgeGroup.GET("/commands", bridgeHandler.GetCommands) // 命令统计和在途命令
		bridgeGroup.GET("/handlers", bridgeHandler.GetHandlers) // 已注册的命令类型

		// 连接控制
		bridgeGroup.POST("/reconnect", bridgeHandler.Reconnect)   // 手动重连
		bridgeGroup.POST("/disconnect", bridgeHandler.Disconnect) // 手动断开
	}
}
