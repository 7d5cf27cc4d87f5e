// Package agent wires the routing state machine to the analysis and
// management handlers and exposes the single entry point callers use.
package agent

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"worklens/internal/aggregate"
	"worklens/internal/config"
	"worklens/internal/decide"
	"worklens/internal/domain"
	"worklens/internal/insight"
	"worklens/internal/intent"
	"worklens/internal/llm"
	"worklens/internal/provider"
)

// Response is the outcome of one routed request.
type Response struct {
	Success  bool
	Content  string
	Handler  Target
	Routing  Verdict
	Decision *domain.Decision
	Data     *domain.UnifiedResponse
	Err      string
}

// Coordinator classifies each message and dispatches it to the matching
// handler, attaching routing metadata to whatever the handler returns.
type Coordinator struct {
	router     *Router
	analysis   *AnalysisHandler
	management *ManagementHandler
	project    domain.ProjectContext
	logger     *zap.Logger
}

// New builds a fully wired coordinator from configuration. A nil client
// keeps every model-backed path on its deterministic fallback.
func New(cfg *config.Config, providers []provider.Provider, client llm.Client, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}

	project := domain.ProjectContext{
		Key:   cfg.ProjectKey,
		Name:  cfg.ProjectName,
		Tools: cfg.Tools,
	}

	analyzer := intent.NewAnalyzer(logger)
	engine := decide.NewEngine(client, analyzer, domain.DefaultCapabilities(),
		cfg.LLM.Temperature, cfg.LLM.MaxTokens, logger)
	aggregator := aggregate.NewEngine(providers, logger)
	narrator := insight.NewNarrator(client, logger)

	return &Coordinator{
		router: NewRouter(client, logger),
		analysis: NewAnalysisHandler(engine, aggregator, narrator,
			cfg.Aggregation.DefaultLimit, cfg.Aggregation.MaxLimit, logger),
		management: NewManagementHandler(engine, providers, logger),
		project:    project,
		logger:     logger,
	}
}

// Project returns the project this coordinator is scoped to.
func (c *Coordinator) Project() domain.ProjectContext {
	return c.project
}

// RouteAndExecute classifies the query, runs the owning handler, and wraps
// its result with routing metadata. Handler panics become a failed response
// rather than taking down the caller.
func (c *Coordinator) RouteAndExecute(ctx context.Context, query string, history []domain.Turn) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("handler panic", zap.Any("panic", r))
			resp = Response{
				Success: false,
				Content: "I encountered an error while processing your request. Please try again.",
				Err:     fmt.Sprintf("handler panic: %v", r),
			}
		}
	}()

	verdict := c.router.Route(ctx, query)
	c.logger.Info("routing request",
		zap.String("target", string(verdict.Target)),
		zap.String("reasoning", verdict.Reasoning),
		zap.Float64("confidence", verdict.Confidence))

	var result Result
	switch verdict.Target {
	case TargetManagement:
		result = c.management.Handle(ctx, query, c.project, history)
	default:
		result = c.analysis.Handle(ctx, query, c.project, history)
	}

	resp = Response{
		Success:  result.Success,
		Content:  result.Content,
		Handler:  verdict.Target,
		Routing:  verdict,
		Decision: &result.Decision,
		Data:     result.Data,
	}
	if !result.Success {
		resp.Err = result.Content
	}
	return resp
}
