package v1

import (
	"github.com/gin-gonic/gin"

	"agent-server/services/agent-api/internal/interfaces/httpserver/handlers"
)

func registerWorkflowRoutes(router gin.IRoutes, handler *handlers.WorkflowHandler) {
	router.POST("/workflows", handler.Define)
	router.GET("/workflows", handler.List)
	router.GET("/workflows/executions", handler.History)
	router.GET("/workflows/:workflow_name", handler.Get)
	router.POST("/workflows/:workflow_name/execute", handler.Execute)
}
