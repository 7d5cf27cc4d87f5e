package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"worklens/internal/llm"
)

func TestRouteModelVerdict(t *testing.T) {
	client := &llm.Scripted{Responses: []string{
		`{"target_agent": "management", "reasoning": "User wants to create a sprint", "confidence": "high"}`,
	}}
	r := NewRouter(client, zap.NewNop())

	v := r.Route(context.Background(), "create a new sprint for next month")
	assert.Equal(t, TargetManagement, v.Target)
	assert.Equal(t, "User wants to create a sprint", v.Reasoning)
	assert.Equal(t, 0.9, v.Confidence)
	require.Len(t, client.Calls, 1)
	assert.Contains(t, client.Calls[0].Prompt, "create a new sprint")
}

func TestRouteModelVerdictConfidenceScale(t *testing.T) {
	tests := []struct {
		label string
		want  float64
	}{
		{"high", 0.9},
		{"medium", 0.7},
		{"low", 0.4},
		{"certain", 0.7}, // unknown label falls back to medium
	}
	for _, tt := range tests {
		client := &llm.Scripted{Responses: []string{
			`{"target_agent": "analysis", "reasoning": "view request", "confidence": "` + tt.label + `"}`,
		}}
		r := NewRouter(client, zap.NewNop())
		v := r.Route(context.Background(), "how is the project doing")
		assert.Equal(t, tt.want, v.Confidence, "label %q", tt.label)
	}
}

func TestRouteUnknownTargetFallsBack(t *testing.T) {
	client := &llm.Scripted{Responses: []string{
		`{"target_agent": "supervisor", "reasoning": "?", "confidence": "high"}`,
	}}
	r := NewRouter(client, zap.NewNop())

	// keyword fallback sees "show" and routes to analysis
	v := r.Route(context.Background(), "show me the backlog")
	assert.Equal(t, TargetAnalysis, v.Target)
	assert.Equal(t, 0.9, v.Confidence)
}

func TestRouteMalformedReplyFallsBack(t *testing.T) {
	client := &llm.Scripted{Responses: []string{"I think you want the analysis agent."}}
	r := NewRouter(client, zap.NewNop())

	v := r.Route(context.Background(), "delete AG-4")
	assert.Equal(t, TargetManagement, v.Target)
}

func TestRouteModelErrorFallsBack(t *testing.T) {
	client := &llm.Scripted{Err: assert.AnError}
	r := NewRouter(client, zap.NewNop())

	v := r.Route(context.Background(), "show current sprint status")
	assert.Equal(t, TargetAnalysis, v.Target)
}

func TestFallbackStrongKeywords(t *testing.T) {
	r := NewRouter(nil, zap.NewNop())

	v := r.Route(context.Background(), "show me the current backlog")
	assert.Equal(t, TargetAnalysis, v.Target)
	assert.Equal(t, 0.9, v.Confidence)

	v = r.Route(context.Background(), "assign AG-12 to Dana Kim")
	assert.Equal(t, TargetManagement, v.Target)
	assert.Equal(t, 0.9, v.Confidence)
}

func TestFallbackMixedSignalsUsesVerbs(t *testing.T) {
	r := NewRouter(nil, zap.NewNop())

	// "update" (management) and "status" (analysis) both hit, so the
	// narrower verb sets decide
	v := r.Route(context.Background(), "update AG-1 status to Done")
	assert.Equal(t, TargetManagement, v.Target)
	assert.Equal(t, 0.7, v.Confidence)
}

func TestFallbackDefaultsToAnalysis(t *testing.T) {
	r := NewRouter(nil, zap.NewNop())

	v := r.Route(context.Background(), "hmm, the sprint feels off")
	assert.Equal(t, TargetAnalysis, v.Target)
	assert.Equal(t, 0.4, v.Confidence)
}
