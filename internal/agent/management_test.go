package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"worklens/internal/decide"
	"worklens/internal/domain"
	"worklens/internal/intent"
	"worklens/internal/llm"
	"worklens/internal/provider"
)

func newTestTracker() *provider.MemoryTracker {
	return provider.NewMemoryTracker("jira", "AG", domain.DefaultCapabilities()["jira"])
}

func newManagementHandler(client llm.Client, tracker provider.Provider) *ManagementHandler {
	engine := decide.NewEngine(client, intent.NewAnalyzer(zap.NewNop()),
		domain.DefaultCapabilities(), 0, 0, zap.NewNop())
	return NewManagementHandler(engine, []provider.Provider{tracker}, zap.NewNop())
}

var testProject = domain.ProjectContext{Key: "AG", Name: "Agility", Tools: []string{"jira"}}

func seedItem(t *testing.T, tracker *provider.MemoryTracker, title string) *domain.WorkItem {
	t.Helper()
	item, err := tracker.CreateWorkItem(context.Background(), &domain.WorkItem{Title: title})
	require.NoError(t, err)
	return item
}

func TestManagementUpdateStatus(t *testing.T) {
	tracker := newTestTracker()
	item := seedItem(t, tracker, "Fix login bug")
	h := newManagementHandler(nil, tracker)

	res := h.Handle(context.Background(), "update "+item.ID+" status to Done", testProject, nil)
	require.True(t, res.Success)
	assert.Contains(t, res.Content, "✅ Work item "+item.ID)
	assert.Contains(t, res.Content, "status: Done")
	assert.Equal(t, domain.ActionUpdate, res.Decision.ActionType)
}

func TestManagementUpdateMissingItem(t *testing.T) {
	h := newManagementHandler(nil, newTestTracker())

	res := h.Handle(context.Background(), "update AG-99 status to Done", testProject, nil)
	require.False(t, res.Success)
	assert.Contains(t, res.Content, "AG-99 was not found")
}

func TestManagementInvalidIDNoProviderCall(t *testing.T) {
	h := newManagementHandler(nil, newTestTracker())

	res := h.Handle(context.Background(), "update 9X-1 status to Done", testProject, nil)
	require.False(t, res.Success)
	assert.Contains(t, res.Content, "Invalid work item ID format")
}

func TestManagementAssignToPerson(t *testing.T) {
	tracker := newTestTracker()
	item := seedItem(t, tracker, "Fix login bug")
	h := newManagementHandler(nil, tracker)

	res := h.Handle(context.Background(), "assign "+item.ID+" to Dana Kim", testProject, nil)
	require.True(t, res.Success)
	assert.Contains(t, res.Content, item.ID)
	assert.Contains(t, res.Content, "Dana Kim")
	assert.Equal(t, domain.ActionAssign, res.Decision.ActionType)
}

func TestManagementAssignToSprint(t *testing.T) {
	tracker := newTestTracker()
	item := seedItem(t, tracker, "Fix login bug")
	tracker.AddSprint(domain.Sprint{Name: "Sprint 2", State: domain.SprintFuture})
	h := newManagementHandler(nil, tracker)

	res := h.Handle(context.Background(), "assign "+item.ID+" to sprint 2", testProject, nil)
	require.True(t, res.Success)
	assert.Contains(t, res.Content, "assigned to sprint 'Sprint 2'")
}

func TestManagementAssignToUnknownSprint(t *testing.T) {
	tracker := newTestTracker()
	item := seedItem(t, tracker, "Fix login bug")
	tracker.AddSprint(domain.Sprint{Name: "Sprint 1", State: domain.SprintFuture})
	h := newManagementHandler(nil, tracker)

	res := h.Handle(context.Background(), "assign "+item.ID+" to sprint 7", testProject, nil)
	require.False(t, res.Success)
	assert.Contains(t, res.Content, "Sprint '7' not found")
	assert.Contains(t, res.Content, "Sprint 1")
}

func TestManagementDelete(t *testing.T) {
	tracker := newTestTracker()
	item := seedItem(t, tracker, "Obsolete spike")
	h := newManagementHandler(nil, tracker)

	res := h.Handle(context.Background(), "delete "+item.ID, testProject, nil)
	require.True(t, res.Success)
	assert.Contains(t, res.Content, "successfully deleted")

	_, err := tracker.UpdateWorkItem(context.Background(), item.ID, map[string]any{"status": "Done"})
	assert.True(t, provider.IsNotFound(err))
}

func TestManagementRemoveDuplicates(t *testing.T) {
	tracker := newTestTracker()
	kept := seedItem(t, tracker, "Fix login bug")
	dup := seedItem(t, tracker, "Fix Login Bug ")
	seedItem(t, tracker, "Add dark mode")

	client := &llm.Scripted{Responses: []string{
		`{"action_type": "delete", "entities_needed": ["work_item"], "tools_to_use": ["jira"],
		  "filters": {}, "reasoning": "Resolve duplicate work items in the backlog", "confidence": 0.9}`,
	}}
	h := newManagementHandler(client, tracker)

	res := h.Handle(context.Background(), "clean up duplicate items in the backlog", testProject, nil)
	require.True(t, res.Success)
	assert.Contains(t, res.Content, "**Kept**: "+kept.ID)
	assert.Contains(t, res.Content, "Resolved: "+dup.ID)
	assert.Contains(t, res.Content, "Duplicate groups found: 1")
}

func TestManagementRemoveDuplicatesCleanBacklog(t *testing.T) {
	tracker := newTestTracker()
	seedItem(t, tracker, "Fix login bug")
	seedItem(t, tracker, "Add dark mode")

	client := &llm.Scripted{Responses: []string{
		`{"action_type": "delete", "entities_needed": ["work_item"], "tools_to_use": ["jira"],
		  "filters": {}, "reasoning": "Remove duplicate items", "confidence": 0.9}`,
	}}
	h := newManagementHandler(client, tracker)

	res := h.Handle(context.Background(), "remove duplicates from the backlog", testProject, nil)
	require.True(t, res.Success)
	assert.Contains(t, res.Content, "already clean")
}

func TestManagementPlanSprints(t *testing.T) {
	tracker := newTestTracker()
	h := newManagementHandler(nil, tracker)

	res := h.Handle(context.Background(), "plan sprints from 2025-07-07 to 2025-08-04", testProject, nil)
	require.True(t, res.Success)
	assert.Contains(t, res.Content, "Sprint 1")
	assert.Contains(t, res.Content, "Sprint 2")
	assert.Contains(t, res.Content, "Total Sprints: 2")

	entities, err := tracker.Fetch(context.Background(), domain.EntitySprint, nil, 0)
	require.NoError(t, err)
	assert.Len(t, entities, 2)
}

func TestManagementPlanSprintsMissingDates(t *testing.T) {
	h := newManagementHandler(nil, newTestTracker())

	res := h.Handle(context.Background(), "plan the next few sprints", testProject, nil)
	require.False(t, res.Success)
	assert.Contains(t, res.Content, "No sprint date range found")
}

func TestManagementCreateWorkItem(t *testing.T) {
	tracker := newTestTracker()
	h := newManagementHandler(nil, tracker)

	res := h.Handle(context.Background(), "create a task for user authentication", testProject, nil)
	require.True(t, res.Success)
	assert.Contains(t, res.Content, "user authentication")
	assert.Equal(t, domain.ActionCreate, res.Decision.ActionType)

	entities, err := tracker.Fetch(context.Background(), domain.EntityWorkItem, nil, 0)
	require.NoError(t, err)
	require.Len(t, entities, 1)
	item := entities[0].(domain.WorkItem)
	assert.Equal(t, "user authentication", item.Title)
	assert.Equal(t, domain.TypeTask, item.Type)
}

func TestManagementGeneralGuidance(t *testing.T) {
	h := newManagementHandler(nil, newTestTracker())

	// no mutating verbs, so the decision falls through to guidance
	res := h.Handle(context.Background(), "help me with the backlog", testProject, nil)
	require.True(t, res.Success)
	assert.Contains(t, res.Content, "clarif")
}
