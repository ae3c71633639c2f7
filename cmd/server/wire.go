//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"github.com/rs/zerolog"

	"agent-server/services/agent-api/internal/config"
	agentdomain "agent-server/services/agent-api/internal/domain/agent"
	"agent-server/services/agent-api/internal/domain/llm"
	"agent-server/services/agent-api/internal/domain/tool"
	"agent-server/services/agent-api/internal/domain/workflow"
	"agent-server/services/agent-api/internal/infrastructure/apiclient"
	"agent-server/services/agent-api/internal/infrastructure/auth"
	"agent-server/services/agent-api/internal/infrastructure/database"
	"agent-server/services/agent-api/internal/infrastructure/llmprovider"
	"agent-server/services/agent-api/internal/infrastructure/logger"
	"agent-server/services/agent-api/internal/interfaces/httpserver"
	"agent-server/services/agent-api/internal/interfaces/httpserver/handlers"
)

var agentSet = wire.NewSet(
	tool.NewRegistry,
	newExecutor,
	newLLMProvider,
	wire.Bind(new(llm.Provider), new(*llmprovider.Client)),
	agentdomain.NewRegistry,
	newOrchestrator,
	workflow.NewManager,
	handlers.NewProvider,
)

// BuildApplication assembles the agent service with Wire.
func BuildApplication(ctx context.Context) (*Application, error) {
	wire.Build(
		config.Load,
		logger.New,
		newAuthValidator,
		agentSet,
		httpserver.New,
		NewApplication,
	)
	return nil, nil
}

func newExecutor(cfg *config.Config, log zerolog.Logger) *tool.Executor {
	return tool.NewExecutor(
		apiclient.NewCaller(),
		database.NewRunner(),
		cfg.ToolDatabaseDSN,
		cfg.ToolTimeout,
		log,
	)
}

func newLLMProvider(cfg *config.Config) *llmprovider.Client {
	return llmprovider.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey)
}

func newOrchestrator(provider llm.Provider, tools *tool.Registry, executor *tool.Executor, cfg *config.Config, log zerolog.Logger) *agentdomain.Orchestrator {
	return agentdomain.NewOrchestrator(provider, tools, executor, cfg.DefaultModel, cfg.MaxToolCalls, log)
}

func newAuthValidator(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*auth.Validator, error) {
	return auth.NewValidator(ctx, cfg, log)
}
