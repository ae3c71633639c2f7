package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"agent-server/services/agent-api/internal/domain/tool"
	"agent-server/services/agent-api/internal/infrastructure/metrics"
	"agent-server/services/agent-api/internal/interfaces/httpserver/dto"
)

// ToolHandler exposes HTTP entrypoints for the tool registry and executor.
type ToolHandler struct {
	registry *tool.Registry
	executor *tool.Executor
	log      zerolog.Logger
}

// NewToolHandler constructs the handler.
func NewToolHandler(registry *tool.Registry, executor *tool.Executor, log zerolog.Logger) *ToolHandler {
	return &ToolHandler{
		registry: registry,
		executor: executor,
		log:      log.With().Str("handler", "tool").Logger(),
	}
}

// Register handles POST /v1/tools
// @Summary Register a tool
// @Description Registers a named tool with its schema, kind and configuration.
// @Tags Tools
// @Accept json
// @Produce json
// @Param request body dto.RegisterToolRequest true "Tool definition"
// @Success 201 {object} dto.ToolPayload
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /v1/tools [post]
func (h *ToolHandler) Register(c *gin.Context) {
	var req dto.RegisterToolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	desc := req.ToDomain()
	if err := h.registry.Register(desc); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, tool.ErrDuplicateTool) {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	h.log.Info().Str("tool", desc.Name).Str("kind", string(desc.Kind)).Msg("tool registered")
	c.JSON(http.StatusCreated, dto.FromTool(desc))
}

// List handles GET /v1/tools
// @Summary List registered tools
// @Tags Tools
// @Produce json
// @Success 200 {array} dto.ToolPayload
// @Router /v1/tools [get]
func (h *ToolHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, dto.FromTools(h.registry.List()))
}

// Get handles GET /v1/tools/:tool_name
// @Summary Get a tool by name
// @Tags Tools
// @Produce json
// @Param tool_name path string true "Tool name"
// @Success 200 {object} dto.ToolPayload
// @Failure 404 {object} map[string]string
// @Router /v1/tools/{tool_name} [get]
func (h *ToolHandler) Get(c *gin.Context) {
	name := c.Param("tool_name")
	desc, ok := h.registry.Get(name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": tool.ErrToolNotFound.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.FromTool(desc))
}

// Delete handles DELETE /v1/tools/:tool_name
// @Summary Remove a tool
// @Tags Tools
// @Produce json
// @Param tool_name path string true "Tool name"
// @Success 200 {object} map[string]bool
// @Failure 404 {object} map[string]string
// @Router /v1/tools/{tool_name} [delete]
func (h *ToolHandler) Delete(c *gin.Context) {
	name := c.Param("tool_name")
	if !h.registry.Remove(name) {
		c.JSON(http.StatusNotFound, gin.H{"error": tool.ErrToolNotFound.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": true})
}

// Execute handles POST /v1/tools/:tool_name/execute
// @Summary Execute a tool directly
// @Description Runs a registered tool with the given parameters. Failures are reported in the response body, not as HTTP errors.
// @Tags Tools
// @Accept json
// @Produce json
// @Param tool_name path string true "Tool name"
// @Param request body dto.ExecuteToolRequest true "Execution parameters"
// @Success 200 {object} dto.ToolExecutionPayload
// @Failure 404 {object} map[string]string
// @Router /v1/tools/{tool_name}/execute [post]
func (h *ToolHandler) Execute(c *gin.Context) {
	name := c.Param("tool_name")
	desc, ok := h.registry.Get(name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": tool.ErrToolNotFound.Error()})
		return
	}

	var req dto.ExecuteToolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp := h.executor.Execute(c.Request.Context(), desc, req.Parameters)

	status := "success"
	if !resp.Success {
		status = "error"
	}
	metrics.RecordToolCall(desc.Name, string(desc.Kind), status, resp.ExecutionTimeMS/1000)

	c.JSON(http.StatusOK, dto.FromToolResponse(resp))
}
