package agent

import (
	"context"

	"go.uber.org/zap"

	"worklens/internal/aggregate"
	"worklens/internal/decide"
	"worklens/internal/domain"
	"worklens/internal/insight"
	"worklens/internal/search"
)

// AnalysisHandler satisfies read requests: it turns a query into a decision,
// plans and executes the fan-out fetch, and renders the aggregated data as
// metrics with an optional model-written narrative.
type AnalysisHandler struct {
	engine       *decide.Engine
	aggregator   *aggregate.Engine
	narrator     *insight.Narrator
	defaultLimit int
	maxLimit     int
	logger       *zap.Logger
}

func NewAnalysisHandler(engine *decide.Engine, aggregator *aggregate.Engine, narrator *insight.Narrator, defaultLimit, maxLimit int, logger *zap.Logger) *AnalysisHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalysisHandler{
		engine:       engine,
		aggregator:   aggregator,
		narrator:     narrator,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
		logger:       logger,
	}
}

// Result is what a handler hands back to the coordinator.
type Result struct {
	Success  bool
	Content  string
	Decision domain.Decision
	Data     *domain.UnifiedResponse
}

func (h *AnalysisHandler) Handle(ctx context.Context, query string, project domain.ProjectContext, history []domain.Turn) Result {
	decision, err := h.engine.Decide(ctx, query, project, history)
	if err != nil {
		return Result{Success: false, Content: err.Error()}
	}

	plan := decide.PlanQuery(decision, h.defaultLimit, h.maxLimit)
	resp := h.aggregator.Execute(ctx, plan, decision.ToolsToUse)

	if decision.ActionType == domain.ActionSearch && len(resp.Data[domain.EntityWorkItem]) > 0 {
		resp.Data[domain.EntityWorkItem] = search.ReorderByRelevance(resp.Data[domain.EntityWorkItem], query)
	}

	h.logger.Debug("analysis aggregation complete",
		zap.Int("entities", resp.Metadata.TotalEntities),
		zap.Strings("sources", resp.SourceTools),
		zap.Int("errors", len(resp.Errors)))

	report := insight.Build(resp)
	content := h.narrator.Narrate(ctx, query, decision, report)

	return Result{
		Success:  true,
		Content:  content,
		Decision: decision,
		Data:     &resp,
	}
}
