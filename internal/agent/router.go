package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"worklens/internal/llm"
)

// Target names the specialized handler that owns a request.
type Target string

const (
	TargetAnalysis   Target = "analysis"
	TargetManagement Target = "management"
)

// Verdict is the routing decision for one message.
type Verdict struct {
	Target     Target
	Reasoning  string
	Confidence float64
}

const routerSystemPrompt = `You are an intelligent request router for a project management assistant. Your job is to analyze user messages and determine the appropriate specialized handler for the request.

## Available Handlers:

### 1. Analysis Handler
**Purpose**: Viewing, reporting, metrics, insights, and analysis
**Handles**: viewing current work items, sprints, backlogs; status reports and project health analysis; metrics and progress summaries; team performance and velocity; searching and displaying project data
**Keywords**: show, view, display, list, current, status, analyze, report, health, metrics, dashboard, progress, performance, velocity, forecast, trends, insights, summary, how is, what is, tell me about

### 2. Management Handler
**Purpose**: Creating, updating, and managing project artifacts
**Handles**: creating, deleting, updating work items; moving items across statuses; assigning users to work items; sprint creation and planning; backlog cleanup
**Keywords**: create, add, new, update, edit, change, modify, delete, remove, assign, move, transition, plan sprint, create sprint, organize backlog, manage backlog, prioritize, schedule

## Critical Routing Rules:
1. VIEWING/SHOWING DATA goes to the analysis handler, even if it mentions backlog, work items, or sprints
2. CREATING/MODIFYING DATA goes to the management handler
3. When in doubt, prefer the analysis handler for data viewing requests

Respond with ONLY a JSON object in this exact format:

{
  "target_agent": "analysis|management",
  "reasoning": "Brief explanation of why this handler was selected",
  "confidence": "high|medium|low"
}`

var verdictBlock = regexp.MustCompile(`(?s)\{.*\}`)

// confidenceScale translates the model's coarse confidence labels into the
// numeric scale the rest of the system uses.
var confidenceScale = map[string]float64{
	"high":   0.9,
	"medium": 0.7,
	"low":    0.4,
}

// Strong routing signals. A message matching exactly one side routes there
// with high confidence before any verb-level scoring.
var strongAnalysisKeywords = []string{
	"show", "view", "display", "list", "see", "current", "status",
	"report", "analyze", "analysis", "health", "metrics", "dashboard",
	"progress", "performance", "velocity", "forecast", "trends",
	"insights", "summary", "how is", "what is", "tell me about",
	"current items", "show items", "view backlog", "backlog status",
}

var strongManagementKeywords = []string{
	"create", "add", "new", "update", "edit", "change", "modify",
	"delete", "remove", "assign", "move", "transition", "close",
	"resolve", "reopen", "plan sprint", "create sprint", "organize backlog",
	"manage backlog", "prioritize", "schedule",
}

// Narrower verb sets used when the strong sets tie or both miss.
var analysisVerbs = []string{"show", "view", "display", "list", "see", "get", "find", "search"}
var managementVerbs = []string{"create", "add", "update", "edit", "delete", "assign", "move", "plan"}

// Router classifies a message as an analysis or management request. The
// model verdict is tried first; keyword scoring covers model failures and
// out-of-vocabulary replies.
type Router struct {
	client llm.Client
	logger *zap.Logger
}

func NewRouter(client llm.Client, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{client: client, logger: logger}
}

type verdictPayload struct {
	TargetAgent string `json:"target_agent"`
	Reasoning   string `json:"reasoning"`
	Confidence  string `json:"confidence"`
}

// Route decides which handler owns the query.
func (r *Router) Route(ctx context.Context, query string) Verdict {
	if r.client == nil {
		return r.fallback(query)
	}

	prompt := fmt.Sprintf("Analyze this user message and determine the appropriate specialized handler:\n\nUser Message: %q\n\nRespond with the JSON routing decision:", query)
	resp, err := r.client.Complete(ctx, llm.CompletionRequest{
		System:      routerSystemPrompt,
		Prompt:      prompt,
		Temperature: 0.1,
		MaxTokens:   150,
	})
	if err != nil {
		r.logger.Warn("routing model call failed, using keyword fallback", zap.Error(err))
		return r.fallback(query)
	}

	verdict, err := parseVerdict(resp)
	if err != nil {
		r.logger.Warn("unusable routing verdict, using keyword fallback",
			zap.String("response", resp), zap.Error(err))
		return r.fallback(query)
	}
	return verdict
}

func parseVerdict(resp string) (Verdict, error) {
	block := verdictBlock.FindString(strings.TrimSpace(resp))
	if block == "" {
		return Verdict{}, fmt.Errorf("no JSON object in response")
	}

	var payload verdictPayload
	if err := json.Unmarshal([]byte(block), &payload); err != nil {
		return Verdict{}, fmt.Errorf("decoding verdict: %w", err)
	}

	target := Target(payload.TargetAgent)
	if target != TargetAnalysis && target != TargetManagement {
		return Verdict{}, fmt.Errorf("unknown target %q", payload.TargetAgent)
	}

	reasoning := payload.Reasoning
	if reasoning == "" {
		reasoning = "No reasoning provided"
	}

	confidence, ok := confidenceScale[strings.ToLower(payload.Confidence)]
	if !ok {
		confidence = confidenceScale["medium"]
	}

	return Verdict{Target: target, Reasoning: reasoning, Confidence: confidence}, nil
}

func (r *Router) fallback(query string) Verdict {
	lower := strings.ToLower(query)

	analysisScore := countMatches(lower, strongAnalysisKeywords)
	managementScore := countMatches(lower, strongManagementKeywords)

	if analysisScore > 0 && managementScore == 0 {
		return Verdict{
			Target:     TargetAnalysis,
			Reasoning:  "Strong analysis keywords detected: viewing/analyzing data request",
			Confidence: confidenceScale["high"],
		}
	}
	if managementScore > 0 && analysisScore == 0 {
		return Verdict{
			Target:     TargetManagement,
			Reasoning:  "Strong management keywords detected: creating/modifying data request",
			Confidence: confidenceScale["high"],
		}
	}

	// Mixed or absent signals: score the narrower verb sets.
	analysisVerbScore := countMatches(lower, analysisVerbs)
	managementVerbScore := countMatches(lower, managementVerbs)

	switch {
	case analysisVerbScore > managementVerbScore:
		return Verdict{
			Target:     TargetAnalysis,
			Reasoning:  "Action verbs indicate viewing/analyzing data",
			Confidence: confidenceScale["medium"],
		}
	case managementVerbScore > analysisVerbScore:
		return Verdict{
			Target:     TargetManagement,
			Reasoning:  "Action verbs indicate creating/modifying data",
			Confidence: confidenceScale["medium"],
		}
	default:
		// Most queries are for viewing data, and a wrong default must
		// never mutate anything.
		return Verdict{
			Target:     TargetAnalysis,
			Reasoning:  "Ambiguous request, defaulting to analysis for data viewing",
			Confidence: confidenceScale["low"],
		}
	}
}

func countMatches(lower string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			n++
		}
	}
	return n
}
