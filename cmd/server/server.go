package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"agent-server/services/agent-api/internal/config"
	agentdomain "agent-server/services/agent-api/internal/domain/agent"
	"agent-server/services/agent-api/internal/domain/tool"
	"agent-server/services/agent-api/internal/domain/workflow"
	"agent-server/services/agent-api/internal/infrastructure/apiclient"
	"agent-server/services/agent-api/internal/infrastructure/auth"
	"agent-server/services/agent-api/internal/infrastructure/database"
	"agent-server/services/agent-api/internal/infrastructure/llmprovider"
	"agent-server/services/agent-api/internal/infrastructure/logger"
	"agent-server/services/agent-api/internal/infrastructure/observability"
	"agent-server/services/agent-api/internal/interfaces/httpserver"
	"agent-server/services/agent-api/internal/interfaces/httpserver/handlers"
)

// @title Agent API
// @version 1.0
// @description Orchestrates LLM tool calling, dynamic tool execution, and multi-step workflows.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
type Application struct {
	httpServer *httpserver.HttpServer
	log        zerolog.Logger
}

func NewApplication(httpServer *httpserver.HttpServer, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		log:        log,
	}
}

func (a *Application) Start(ctx context.Context) error {
	return a.httpServer.Run(ctx)
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown telemetry")
		}
	}()

	authValidator, err := auth.NewValidator(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize auth validator")
	}

	toolRegistry := tool.NewRegistry()
	executor := tool.NewExecutor(
		apiclient.NewCaller(),
		database.NewRunner(),
		cfg.ToolDatabaseDSN,
		cfg.ToolTimeout,
		log,
	)

	llmClient := llmprovider.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey)
	agentRegistry := agentdomain.NewRegistry(toolRegistry)
	orchestrator := agentdomain.NewOrchestrator(llmClient, toolRegistry, executor, cfg.DefaultModel, cfg.MaxToolCalls, log)
	workflowManager := workflow.NewManager(toolRegistry, executor, agentRegistry, orchestrator, log)

	handlerProvider := handlers.NewProvider(toolRegistry, executor, agentRegistry, orchestrator, workflowManager, log)
	httpServer := httpserver.New(cfg, log, handlerProvider, authValidator)
	app := NewApplication(httpServer, log)

	if err := app.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("application stopped with error")
	}

	log.Info().Msg("application exited cleanly")
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
