package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"worklens/internal/domain"
)

func newAnalyzer() *Analyzer {
	return NewAnalyzer(zap.NewNop())
}

func TestAnalyzeEntities(t *testing.T) {
	a := newAnalyzer()

	got := a.Analyze("show me all tasks in the current sprint", nil)
	assert.Contains(t, got.EntitiesMentioned, "work_item")
	assert.Contains(t, got.EntitiesMentioned, "sprint")

	got = a.Analyze("list open pull requests for the api repo", nil)
	assert.Contains(t, got.EntitiesMentioned, "pull_request")
	assert.Contains(t, got.EntitiesMentioned, "repository")

	got = a.Analyze("hello there", nil)
	assert.Empty(t, got.EntitiesMentioned)
}

func TestAnalyzeIntentPriority(t *testing.T) {
	a := newAnalyzer()

	tests := []struct {
		query string
		want  domain.ActionType
	}{
		{"show sprint health", domain.ActionAnalyze},
		{"create a new task for login", domain.ActionCreate},
		{"update AG-12 and show the result", domain.ActionUpdate},
		{"find all blocked tickets", domain.ActionSearch},
		{"assign AG-3 to Dana", domain.ActionAssign},
		{"plan the next sprint", domain.ActionPlan},
		{"delete the duplicate ticket", domain.ActionDelete},
		{"move AG-7 to done", domain.ActionMove},
		{"what about the weather", domain.ActionAnalyze},
	}
	for _, tt := range tests {
		got := a.Analyze(tt.query, nil)
		assert.Equal(t, tt.want, got.Intent, "query %q", tt.query)
	}
}

func TestAnalyzeCreateBeatsSearch(t *testing.T) {
	a := newAnalyzer()

	// "get" implies search and "create" implies create; create wins
	got := a.Analyze("get me a report after you create the task", nil)
	assert.Equal(t, domain.ActionCreate, got.Intent)
	assert.Contains(t, got.ActionsImplied, domain.ActionSearch)
	assert.Contains(t, got.ActionsImplied, domain.ActionCreate)
}

func TestAnalyzeTemporalAndFilters(t *testing.T) {
	a := newAnalyzer()

	got := a.Analyze("show high priority items done this week", nil)
	assert.Contains(t, got.TemporalReferences, "this week")
	assert.Equal(t, "done", got.SpecificFilters["status"])
	assert.Equal(t, "high", got.SpecificFilters["priority"])
}

func TestAnalyzeBacklogNeverBecomesStatus(t *testing.T) {
	a := newAnalyzer()

	got := a.Analyze("show me the backlog", nil)
	_, hasStatus := got.SpecificFilters["status"]
	assert.False(t, hasStatus)

	got = a.Analyze("what is sitting in the backlog right now", nil)
	_, hasStatus = got.SpecificFilters["status"]
	assert.False(t, hasStatus)
}

func TestAnalyzeContextClues(t *testing.T) {
	a := newAnalyzer()

	history := []domain.Turn{
		{Query: "tell me about the web project"},
		{Query: "show sprint status"},
	}
	got := a.Analyze("and the velocity?", history)
	assert.Contains(t, got.ContextClues, "project_context")
	assert.Contains(t, got.ContextClues, "entity_continuity")

	// only the last three turns count
	history = []domain.Turn{
		{Query: "tell me about the web project"},
		{Query: "hello"},
		{Query: "hi"},
		{Query: "hey"},
	}
	got = a.Analyze("ok", history)
	assert.NotContains(t, got.ContextClues, "project_context")
}

func TestAnalyzeNoHistory(t *testing.T) {
	a := newAnalyzer()
	got := a.Analyze("show tasks", nil)
	assert.Empty(t, got.ContextClues)
}
