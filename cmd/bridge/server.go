/*
 * @author: Sun977
 * @date: 2026.07.19
 * @description: Server 模式子命令 (Daemon Mode)
 */

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"bassethound/internal/app/bridge"
)

var (
	endpointURL string
)

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "启动桥接服务模式 (Daemon)",
	Long: `以守护进程方式启动桥接器，连接自动化后端并监听命令下发。

可以通过命令行参数指定后端地址，也可以通过配置文件指定。
命令行参数优先级高于配置文件。

示例:
  bassethound-bridge server --endpoint ws://127.0.0.1:8765/browser`,
	Run: func(cmd *cobra.Command, args []string) {
		runServer()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)

	// 定义 Flags
	serverCmd.Flags().StringVar(&endpointURL, "endpoint", "", "后端WebSocket地址 (e.g. ws://127.0.0.1:8765/browser)")
}

// runServer 守护进程主流程
func runServer() {
	// 命令行参数覆盖配置文件
	var opts []bridge.Option
	if endpointURL != "" {
		opts = append(opts, bridge.WithEndpoint(endpointURL))
	}

	// 创建Bridge应用实例
	app, err := bridge.NewApp(cfgFile, opts...)
	if err != nil {
		log.Fatalf("Failed to create bridge app: %v", err)
	}

	runCtx, runCancel := context.WithCancel(context.Background())
	defer runCancel()

	// 启动Bridge应用
	if err2 := app.Start(runCtx); err2 != nil {
		log.Fatalf("Failed to start bridge app: %v", err2)
	}

	// 等待中断信号以优雅地关闭服务器
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down bridge...")

	// 给服务器5秒钟的时间来完成现有请求
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	runCancel()

	// 停止Bridge应用
	if err1 := app.Stop(ctx); err1 != nil {
		log.Fatal("Bridge forced to shutdown:", err1)
	}

	log.Println("Bridge exiting")
}
