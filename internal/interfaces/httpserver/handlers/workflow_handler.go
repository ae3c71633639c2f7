package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"agent-server/services/agent-api/internal/domain/llm"
	"agent-server/services/agent-api/internal/domain/workflow"
	"agent-server/services/agent-api/internal/infrastructure/metrics"
	"agent-server/services/agent-api/internal/interfaces/httpserver/dto"
)

// WorkflowHandler exposes HTTP entrypoints for workflow definition and
// execution.
type WorkflowHandler struct {
	manager *workflow.Manager
	log     zerolog.Logger
}

// NewWorkflowHandler constructs the handler.
func NewWorkflowHandler(manager *workflow.Manager, log zerolog.Logger) *WorkflowHandler {
	return &WorkflowHandler{
		manager: manager,
		log:     log.With().Str("handler", "workflow").Logger(),
	}
}

// Define handles POST /v1/workflows
// @Summary Define a workflow
// @Description Registers a named sequence of typed steps. Redefining a name replaces its steps.
// @Tags Workflows
// @Accept json
// @Produce json
// @Param request body dto.DefineWorkflowRequest true "Workflow definition"
// @Success 201 {object} dto.WorkflowPayload
// @Failure 400 {object} map[string]string
// @Router /v1/workflows [post]
func (h *WorkflowHandler) Define(c *gin.Context) {
	var req dto.DefineWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.manager.Define(req.Name, req.ToDomain()); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	def, _ := h.manager.Get(req.Name)
	h.log.Info().Str("workflow", req.Name).Int("steps", len(req.Steps)).Msg("workflow defined")
	c.JSON(http.StatusCreated, dto.FromWorkflow(def))
}

// List handles GET /v1/workflows
// @Summary List defined workflows
// @Tags Workflows
// @Produce json
// @Success 200 {array} dto.WorkflowPayload
// @Router /v1/workflows [get]
func (h *WorkflowHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, dto.FromWorkflows(h.manager.List()))
}

// Get handles GET /v1/workflows/:workflow_name
// @Summary Get a workflow by name
// @Tags Workflows
// @Produce json
// @Param workflow_name path string true "Workflow name"
// @Success 200 {object} dto.WorkflowPayload
// @Failure 404 {object} map[string]string
// @Router /v1/workflows/{workflow_name} [get]
func (h *WorkflowHandler) Get(c *gin.Context) {
	name := c.Param("workflow_name")
	def, ok := h.manager.Get(name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": workflow.ErrWorkflowNotFound.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.FromWorkflow(def))
}

// Execute handles POST /v1/workflows/:workflow_name/execute
// @Summary Execute a workflow
// @Description Runs the workflow's steps in order against the given context. Step failures halt the run; the partial trace is returned with status failed.
// @Tags Workflows
// @Accept json
// @Produce json
// @Param workflow_name path string true "Workflow name"
// @Param request body dto.ExecuteWorkflowRequest true "Initial context"
// @Success 200 {object} dto.ExecutionPayload
// @Failure 404 {object} map[string]string
// @Router /v1/workflows/{workflow_name}/execute [post]
func (h *WorkflowHandler) Execute(c *gin.Context) {
	name := c.Param("workflow_name")

	var req dto.ExecuteWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	authCtx := llm.ContextWithAuthToken(c.Request.Context(), strings.TrimSpace(c.GetHeader("Authorization")))
	c.Request = c.Request.WithContext(authCtx)

	execution, err := h.manager.Execute(c.Request.Context(), name, req.Context)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, workflow.ErrWorkflowNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	metrics.RecordWorkflowExecution(name, execution.Status.String(), execution.EndTime.Sub(execution.StartTime).Seconds())
	c.JSON(http.StatusOK, dto.FromExecution(*execution))
}

// History handles GET /v1/workflows/executions
// @Summary List workflow executions
// @Description Returns finished executions, optionally filtered by workflow name.
// @Tags Workflows
// @Produce json
// @Param workflow query string false "Workflow name filter"
// @Success 200 {array} dto.ExecutionPayload
// @Router /v1/workflows/executions [get]
func (h *WorkflowHandler) History(c *gin.Context) {
	name := c.Query("workflow")
	c.JSON(http.StatusOK, dto.FromExecutions(h.manager.History(name)))
}
