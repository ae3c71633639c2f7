package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"agent-server/services/agent-api/internal/domain/agent"
	"agent-server/services/agent-api/internal/domain/llm"
	"agent-server/services/agent-api/internal/infrastructure/metrics"
	"agent-server/services/agent-api/internal/interfaces/httpserver/dto"
)

// AgentHandler exposes HTTP entrypoints for the agent registry and the
// orchestration loop.
type AgentHandler struct {
	registry     *agent.Registry
	orchestrator *agent.Orchestrator
	log          zerolog.Logger
}

// NewAgentHandler constructs the handler.
func NewAgentHandler(registry *agent.Registry, orchestrator *agent.Orchestrator, log zerolog.Logger) *AgentHandler {
	return &AgentHandler{
		registry:     registry,
		orchestrator: orchestrator,
		log:          log.With().Str("handler", "agent").Logger(),
	}
}

// Register handles POST /v1/agents
// @Summary Register an agent
// @Description Registers a named agent with its role prompt and tool list. Every referenced tool must already be registered.
// @Tags Agents
// @Accept json
// @Produce json
// @Param request body dto.RegisterAgentRequest true "Agent definition"
// @Success 201 {object} dto.AgentPayload
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /v1/agents [post]
func (h *AgentHandler) Register(c *gin.Context) {
	var req dto.RegisterAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	a := agent.Agent{
		Name:        req.Name,
		Description: req.Description,
		RolePrompt:  req.RolePrompt,
		Tools:       req.Tools,
	}
	if err := h.registry.Register(a); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, agent.ErrDuplicateAgent) {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	h.log.Info().Str("agent", a.Name).Int("tools", len(a.Tools)).Msg("agent registered")
	c.JSON(http.StatusCreated, dto.FromAgent(a))
}

// List handles GET /v1/agents
// @Summary List registered agents
// @Tags Agents
// @Produce json
// @Success 200 {array} dto.AgentPayload
// @Router /v1/agents [get]
func (h *AgentHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, dto.FromAgents(h.registry.List()))
}

// Get handles GET /v1/agents/:agent_name
// @Summary Get an agent by name
// @Tags Agents
// @Produce json
// @Param agent_name path string true "Agent name"
// @Success 200 {object} dto.AgentPayload
// @Failure 404 {object} map[string]string
// @Router /v1/agents/{agent_name} [get]
func (h *AgentHandler) Get(c *gin.Context) {
	name := c.Param("agent_name")
	a, ok := h.registry.Get(name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": agent.ErrAgentNotFound.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.FromAgent(a))
}

// Delete handles DELETE /v1/agents/:agent_name
// @Summary Remove an agent
// @Tags Agents
// @Produce json
// @Param agent_name path string true "Agent name"
// @Success 200 {object} map[string]bool
// @Failure 404 {object} map[string]string
// @Router /v1/agents/{agent_name} [delete]
func (h *AgentHandler) Delete(c *gin.Context) {
	name := c.Param("agent_name")
	if !h.registry.Remove(name) {
		c.JSON(http.StatusNotFound, gin.H{"error": agent.ErrAgentNotFound.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": true})
}

// AssignTools handles PUT /v1/agents/:agent_name/tools
// @Summary Replace an agent's tool list
// @Tags Agents
// @Accept json
// @Produce json
// @Param agent_name path string true "Agent name"
// @Param request body dto.AssignToolsRequest true "Tool names"
// @Success 200 {object} dto.AgentPayload
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /v1/agents/{agent_name}/tools [put]
func (h *AgentHandler) AssignTools(c *gin.Context) {
	name := c.Param("agent_name")

	var req dto.AssignToolsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.registry.AssignTools(name, req.Tools); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, agent.ErrAgentNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	a, _ := h.registry.Get(name)
	c.JSON(http.StatusOK, dto.FromAgent(a))
}

// Invoke handles POST /v1/agents/:agent_name/invoke
// @Summary Invoke an agent
// @Description Runs the orchestration loop for the agent and prompt. The call never fails on backend or tool errors; degraded answers carry fallback metadata.
// @Tags Agents
// @Accept json
// @Produce json
// @Param agent_name path string true "Agent name"
// @Param request body dto.InvokeAgentRequest true "Invocation request"
// @Success 200 {object} dto.InvocationPayload
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /v1/agents/{agent_name}/invoke [post]
func (h *AgentHandler) Invoke(c *gin.Context) {
	name := c.Param("agent_name")
	a, ok := h.registry.Get(name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": agent.ErrAgentNotFound.Error()})
		return
	}

	var req dto.InvokeAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	useTools := true
	if req.UseTools != nil {
		useTools = *req.UseTools
	}

	authCtx := llm.ContextWithAuthToken(c.Request.Context(), strings.TrimSpace(c.GetHeader("Authorization")))
	c.Request = c.Request.WithContext(authCtx)

	result := h.orchestrator.Invoke(c.Request.Context(), a, agent.InvokeParams{
		Prompt:       req.Prompt,
		MaxTokens:    req.MaxTokens,
		Temperature:  req.Temperature,
		Stop:         req.Stop,
		UseTools:     useTools,
		MaxToolCalls: req.MaxToolCalls,
		TextMode:     req.TextMode,
	})

	metrics.RecordOrchestration(a.Name, string(result.Metadata.Mode), result.Metadata.Iterations)
	c.JSON(http.StatusOK, dto.FromInvocation(result))
}
