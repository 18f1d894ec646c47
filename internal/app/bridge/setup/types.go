package setup

import (
	"net/http"

	"bassethound/internal/app/bridge/router"
	"bassethound/internal/connection"
	"bassethound/internal/dispatcher"
	"bassethound/internal/registry"
)

// CoreModule 桥接核心模块
type CoreModule struct {
	Registry   *registry.Registry
	Dispatcher *dispatcher.Dispatcher
	Manager    *connection.Manager
}

// ServerModule 本地观测服务器模块
type ServerModule struct {
	Router     *router.Router
	HTTPServer *http.Server
}
