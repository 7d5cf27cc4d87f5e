package decide

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"worklens/internal/domain"
	"worklens/internal/intent"
	"worklens/internal/llm"
)

var testProject = domain.ProjectContext{
	Key:   "AG",
	Name:  "Agile Board",
	Tools: []string{"jira", "github", "azure_devops"},
}

func newEngine(client llm.Client) *Engine {
	return NewEngine(client, intent.NewAnalyzer(zap.NewNop()), domain.DefaultCapabilities(), 0.1, 500, zap.NewNop())
}

func TestDecideParsesLLMResponse(t *testing.T) {
	script := &llm.Scripted{Responses: []string{`Here you go:
{
  "action_type": "analyze",
  "entities_needed": ["work_item", "sprint"],
  "tools_to_use": ["jira"],
  "filters": {"priority": "high"},
  "reasoning": "Sprint health needs items and sprint data",
  "confidence": 0.85,
  "additional_context": {"limit": 30, "sort_by": "updated_date", "sort_order": "desc"}
}`}}

	d, err := newEngine(script).Decide(context.Background(), "show sprint health", testProject, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.ActionAnalyze, d.ActionType)
	assert.Equal(t, []domain.EntityType{domain.EntityWorkItem, domain.EntitySprint}, d.EntitiesNeeded)
	assert.Equal(t, []string{"jira"}, d.ToolsToUse)
	assert.Equal(t, "high", d.Filters["priority"])
	assert.InDelta(t, 0.85, d.Confidence, 0.001)
	assert.Equal(t, 30, d.Hints.Limit)

	require.Len(t, script.Calls, 1)
	assert.Contains(t, script.Calls[0].System, "JIRA")
	assert.Contains(t, script.Calls[0].Prompt, "show sprint health")
}

func TestDecideStripsBacklogStatus(t *testing.T) {
	script := &llm.Scripted{Responses: []string{`{
  "action_type": "search",
  "entities_needed": ["work_item"],
  "tools_to_use": ["jira"],
  "filters": {"status": "backlog"},
  "reasoning": "User wants backlog items",
  "confidence": 0.8
}`}}

	d, err := newEngine(script).Decide(context.Background(), "show me the backlog", testProject, nil)
	require.NoError(t, err)
	_, hasStatus := d.Filters["status"]
	assert.False(t, hasStatus)
	assert.Contains(t, d.Reasoning, "Removed invalid 'backlog' status filter")
}

func TestDecideFallbackOnError(t *testing.T) {
	script := &llm.Scripted{Err: assert.AnError}

	d, err := newEngine(script).Decide(context.Background(), "show current sprint tasks", testProject, nil)
	require.NoError(t, err)
	assert.InDelta(t, 0.6, d.Confidence, 0.001)
	assert.Equal(t, domain.ActionAnalyze, d.ActionType)
	assert.Contains(t, d.EntitiesNeeded, domain.EntityWorkItem)
	assert.Contains(t, d.EntitiesNeeded, domain.EntitySprint)
	assert.Equal(t, testProject.Tools, d.ToolsToUse)
	assert.Equal(t, 50, d.Hints.Limit)
	assert.Equal(t, "updated_date", d.Hints.SortBy)
	assert.Equal(t, "desc", d.Hints.SortOrder)
}

func TestDecideFallbackOnNonJSON(t *testing.T) {
	script := &llm.Scripted{Responses: []string{"I cannot help with that."}}

	d, err := newEngine(script).Decide(context.Background(), "find blocked bugs", testProject, nil)
	require.NoError(t, err)
	assert.InDelta(t, 0.6, d.Confidence, 0.001)
	assert.Equal(t, domain.ActionSearch, d.ActionType)
	assert.Equal(t, "blocked", d.Filters["status"])
}

func TestDecideFallbackOnUnknownVocabulary(t *testing.T) {
	tests := []string{
		`{"action_type": "obliterate", "entities_needed": ["work_item"]}`,
		`{"action_type": "analyze", "entities_needed": ["gizmo"]}`,
		`{"action_type": "analyze", "entities_needed": ["work_item"], "tools_to_use": ["linear"]}`,
	}
	for _, resp := range tests {
		script := &llm.Scripted{Responses: []string{resp}}
		d, err := newEngine(script).Decide(context.Background(), "show tasks", testProject, nil)
		require.NoError(t, err)
		assert.InDelta(t, 0.6, d.Confidence, 0.001, "response %s", resp)
	}
}

func TestDecideNoClientUsesFallback(t *testing.T) {
	d, err := newEngine(nil).Decide(context.Background(), "show open pull requests", testProject, nil)
	require.NoError(t, err)
	assert.InDelta(t, 0.6, d.Confidence, 0.001)
	assert.Contains(t, d.EntitiesNeeded, domain.EntityPullRequest)
}

func TestDecideDefaultsWorkItemWhenNoEntities(t *testing.T) {
	d, err := newEngine(nil).Decide(context.Background(), "how are we doing", testProject, nil)
	require.NoError(t, err)
	assert.Equal(t, []domain.EntityType{domain.EntityWorkItem}, d.EntitiesNeeded)
}

func TestDecideFailsWithoutUsableTools(t *testing.T) {
	project := domain.ProjectContext{Key: "AG", Name: "Agile Board", Tools: []string{"linear"}}

	_, err := newEngine(nil).Decide(context.Background(), "show tasks", project, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no usable tools")
}

func TestRelatedEntities(t *testing.T) {
	rel := RelatedEntities([]domain.EntityType{domain.EntityWorkItem})
	assert.ElementsMatch(t, []domain.EntityType{domain.EntityUser, domain.EntitySprint}, rel)

	rel = RelatedEntities([]domain.EntityType{domain.EntityWorkItem, domain.EntitySprint})
	assert.ElementsMatch(t, []domain.EntityType{domain.EntityUser}, rel)

	rel = RelatedEntities([]domain.EntityType{domain.EntityRepository})
	assert.ElementsMatch(t, []domain.EntityType{domain.EntityPullRequest, domain.EntityCommit}, rel)

	assert.Empty(t, RelatedEntities([]domain.EntityType{domain.EntityCommit}))
}

func TestPlanQuery(t *testing.T) {
	d := domain.Decision{
		EntitiesNeeded: []domain.EntityType{domain.EntityWorkItem},
		Filters:        map[string]string{"priority": "high"},
		Hints:          domain.QueryHints{Limit: 30, SortBy: "updated_date", SortOrder: "desc"},
	}
	q := PlanQuery(d, 50, 200)
	assert.Equal(t, 30, q.Limit)
	assert.Equal(t, "desc", q.SortOrder)
	assert.ElementsMatch(t, []domain.EntityType{domain.EntityUser, domain.EntitySprint}, q.IncludeRelated)

	// no hint: default applies
	d.Hints = domain.QueryHints{}
	q = PlanQuery(d, 50, 200)
	assert.Equal(t, 50, q.Limit)
	assert.Equal(t, "asc", q.SortOrder)

	// over cap: clamped
	d.Hints = domain.QueryHints{Limit: 1000}
	q = PlanQuery(d, 50, 200)
	assert.Equal(t, 200, q.Limit)
}
