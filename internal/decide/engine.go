package decide

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"worklens/internal/domain"
	"worklens/internal/intent"
	"worklens/internal/llm"
)

// jsonBlock grabs the outermost JSON object in a completion, tolerating
// surrounding prose or markdown fences.
var jsonBlock = regexp.MustCompile(`(?s)\{.*\}`)

const backlogNote = " (Removed invalid 'backlog' status filter)"

// Engine turns a raw query into a Decision. It prefers the LLM and falls
// back to deterministic keyword classification when the LLM is unavailable,
// errors, or returns output outside the known vocabulary.
type Engine struct {
	client      llm.Client
	analyzer    *intent.Analyzer
	caps        map[string]domain.Capability
	temperature float32
	maxTokens   int
	logger      *zap.Logger
}

func NewEngine(client llm.Client, analyzer *intent.Analyzer, caps map[string]domain.Capability, temperature float32, maxTokens int, logger *zap.Logger) *Engine {
	if temperature == 0 {
		temperature = 0.1
	}
	if maxTokens == 0 {
		maxTokens = 500
	}
	return &Engine{
		client:      client,
		analyzer:    analyzer,
		caps:        caps,
		temperature: temperature,
		maxTokens:   maxTokens,
		logger:      logger,
	}
}

// decisionPayload mirrors the JSON contract the model is asked to produce.
type decisionPayload struct {
	ActionType        string            `json:"action_type"`
	EntitiesNeeded    []string          `json:"entities_needed"`
	ToolsToUse        []string          `json:"tools_to_use"`
	Filters           map[string]string `json:"filters"`
	Reasoning         string            `json:"reasoning"`
	Confidence        float64           `json:"confidence"`
	AdditionalContext struct {
		Limit     int    `json:"limit"`
		SortBy    string `json:"sort_by"`
		SortOrder string `json:"sort_order"`
	} `json:"additional_context"`
}

// Decide analyzes the query and produces a Decision scoped to the tools the
// project has configured. An empty resolved tool list is the only hard
// failure; every other problem degrades to the deterministic fallback.
func (e *Engine) Decide(ctx context.Context, query string, project domain.ProjectContext, history []domain.Turn) (domain.Decision, error) {
	analysis := e.analyzer.Analyze(query, history)
	available := e.availableTools(project)
	if len(available) == 0 {
		return domain.Decision{}, fmt.Errorf("no usable tools configured for project %s", project.Key)
	}

	if e.client == nil {
		return e.fallback(analysis, available), nil
	}

	sys := systemPrompt(e.caps, available, project)
	resp, err := e.client.Complete(ctx, llm.CompletionRequest{
		System:      sys,
		Prompt:      userPrompt(query, analysis, available),
		Temperature: e.temperature,
		MaxTokens:   e.maxTokens,
	})
	if err != nil {
		e.logger.Warn("llm decision failed, using fallback", zap.Error(err))
		return e.fallback(analysis, available), nil
	}

	decision, err := e.parse(resp, available)
	if err != nil {
		e.logger.Warn("llm decision unusable, using fallback", zap.Error(err))
		return e.fallback(analysis, available), nil
	}
	return decision, nil
}

func (e *Engine) availableTools(project domain.ProjectContext) []string {
	var tools []string
	for _, name := range project.Tools {
		if _, ok := e.caps[name]; ok {
			tools = append(tools, name)
		}
	}
	return tools
}

func (e *Engine) parse(resp string, available []string) (domain.Decision, error) {
	match := jsonBlock.FindString(resp)
	if match == "" {
		return domain.Decision{}, fmt.Errorf("no JSON object in response")
	}

	var payload decisionPayload
	if err := json.Unmarshal([]byte(match), &payload); err != nil {
		return domain.Decision{}, fmt.Errorf("parsing decision JSON: %w", err)
	}

	action := domain.ActionType(strings.ToLower(strings.TrimSpace(payload.ActionType)))
	switch action {
	case "":
		action = domain.ActionAnalyze
	case domain.ActionAnalyze, domain.ActionCreate, domain.ActionUpdate, domain.ActionDelete,
		domain.ActionSearch, domain.ActionReport, domain.ActionAssign, domain.ActionMove, domain.ActionPlan:
	default:
		return domain.Decision{}, fmt.Errorf("unknown action type %q", payload.ActionType)
	}

	var entities []domain.EntityType
	for _, s := range payload.EntitiesNeeded {
		et, ok := domain.ParseEntityType(s)
		if !ok {
			return domain.Decision{}, fmt.Errorf("unknown entity type %q", s)
		}
		entities = append(entities, et)
	}
	if len(entities) == 0 {
		entities = []domain.EntityType{domain.EntityWorkItem}
	}

	tools := payload.ToolsToUse
	if len(tools) == 0 {
		tools = available
	} else {
		for _, t := range tools {
			if !containsString(available, t) {
				return domain.Decision{}, fmt.Errorf("unknown tool %q", t)
			}
		}
	}

	filters := payload.Filters
	if filters == nil {
		filters = map[string]string{}
	}
	reasoning := payload.Reasoning
	if reasoning == "" {
		reasoning = "LLM-based decision"
	}
	if strings.EqualFold(filters["status"], "backlog") {
		delete(filters, "status")
		reasoning += backlogNote
	}

	confidence := payload.Confidence
	if confidence <= 0 || confidence > 1 {
		confidence = 0.7
	}

	hints := domain.QueryHints{
		Limit:     payload.AdditionalContext.Limit,
		SortBy:    payload.AdditionalContext.SortBy,
		SortOrder: payload.AdditionalContext.SortOrder,
	}

	return domain.Decision{
		ActionType:     action,
		EntitiesNeeded: entities,
		ToolsToUse:     tools,
		Filters:        filters,
		Reasoning:      reasoning,
		Confidence:     confidence,
		Hints:          hints,
	}, nil
}

// fallback builds a deterministic Decision from the keyword analysis alone.
func (e *Engine) fallback(analysis domain.QueryAnalysis, available []string) domain.Decision {
	var entities []domain.EntityType
	for _, s := range analysis.EntitiesMentioned {
		if et, ok := domain.ParseEntityType(s); ok {
			entities = append(entities, et)
		}
	}
	if len(entities) == 0 {
		entities = []domain.EntityType{domain.EntityWorkItem}
	}

	filters := map[string]string{}
	for k, v := range analysis.SpecificFilters {
		filters[k] = v
	}
	if strings.EqualFold(filters["status"], "backlog") {
		delete(filters, "status")
	}

	names := make([]string, 0, len(entities))
	for _, et := range entities {
		names = append(names, string(et))
	}
	reasoning := fmt.Sprintf("Fallback decision: %s action for %s", analysis.Intent, strings.Join(names, ", "))

	return domain.Decision{
		ActionType:     analysis.Intent,
		EntitiesNeeded: entities,
		ToolsToUse:     available,
		Filters:        filters,
		Reasoning:      reasoning,
		Confidence:     0.6,
		Hints:          domain.QueryHints{Limit: 50, SortBy: "updated_date", SortOrder: "desc"},
	}
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
