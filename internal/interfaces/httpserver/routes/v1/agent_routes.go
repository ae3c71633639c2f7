package v1

import (
	"github.com/gin-gonic/gin"

	"agent-server/services/agent-api/internal/interfaces/httpserver/handlers"
)

func registerAgentRoutes(router gin.IRoutes, handler *handlers.AgentHandler) {
	router.POST("/agents", handler.Register)
	router.GET("/agents", handler.List)
	router.GET("/agents/:agent_name", handler.Get)
	router.DELETE("/agents/:agent_name", handler.Delete)
	router.PUT("/agents/:agent_name/tools", handler.AssignTools)
	router.POST("/agents/:agent_name/invoke", handler.Invoke)
}
