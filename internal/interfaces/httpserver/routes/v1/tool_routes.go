package v1

import (
	"github.com/gin-gonic/gin"

	"agent-server/services/agent-api/internal/interfaces/httpserver/handlers"
)

func registerToolRoutes(router gin.IRoutes, handler *handlers.ToolHandler) {
	router.POST("/tools", handler.Register)
	router.GET("/tools", handler.List)
	router.GET("/tools/:tool_name", handler.Get)
	router.DELETE("/tools/:tool_name", handler.Delete)
	router.POST("/tools/:tool_name/execute", handler.Execute)
}
