package insight

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"worklens/internal/domain"
	"worklens/internal/llm"
)

func responseWith(data map[domain.EntityType][]domain.Entity) domain.UnifiedResponse {
	return domain.UnifiedResponse{Success: true, Data: data}
}

func TestBuildWorkItemSummary(t *testing.T) {
	dana := &domain.User{ID: "u1", Name: "Dana Kim"}
	resp := responseWith(map[domain.EntityType][]domain.Entity{
		domain.EntityWorkItem: {
			domain.WorkItem{ID: "AG-1", Status: domain.StatusDone, Priority: domain.PriorityHigh, Type: domain.TypeBug, Assignee: dana, SourceTool: "jira"},
			domain.WorkItem{ID: "AG-2", Status: domain.StatusInProgress, Priority: domain.PriorityHigh, Type: domain.TypeTask, SourceTool: "jira"},
			domain.WorkItem{ID: "AG-3", Status: domain.StatusTodo, Priority: domain.PriorityLow, Type: domain.TypeTask, SourceTool: "azure_devops"},
		},
	})

	report := Build(resp)
	require.NotNil(t, report.WorkItems)
	s := report.WorkItems

	assert.Equal(t, 3, s.TotalCount)
	assert.Equal(t, 1, s.CompletedItems)
	assert.InDelta(t, 33.3, s.CompletionRate, 0.01)
	assert.Equal(t, 1, s.StatusDistribution["done"])
	assert.Equal(t, 2, s.PriorityDistribution["high"])
	assert.Equal(t, 2, s.TypeDistribution["task"])
	assert.Equal(t, 1, s.AssigneeDistribution["Dana Kim"])
	assert.Equal(t, 2, s.AssigneeDistribution["Unassigned"])
	assert.Equal(t, []string{"azure_devops", "jira"}, s.ToolSources)

	assert.InDelta(t, 33.3, report.Metrics.CompletionRate, 0.01)
	assert.Equal(t, 3, report.Metrics.TotalWorkItems)
}

func TestBuildSprintSummary(t *testing.T) {
	start := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	resp := responseWith(map[domain.EntityType][]domain.Entity{
		domain.EntitySprint: {
			domain.Sprint{ID: "s1", Name: "Sprint 1", State: domain.SprintClosed, SourceTool: "jira"},
			domain.Sprint{ID: "s2", Name: "Sprint 2", State: domain.SprintActive, StartDate: &start, SourceTool: "jira"},
		},
	})

	report := Build(resp)
	require.NotNil(t, report.Sprints)
	assert.Equal(t, 2, report.Sprints.TotalCount)
	assert.Equal(t, 1, report.Sprints.StateDistribution["active"])
	require.NotNil(t, report.Sprints.ActiveSprint)
	assert.Equal(t, "Sprint 2", report.Sprints.ActiveSprint.Name)
}

func TestBuildCommitAndPullRequestSummaries(t *testing.T) {
	author := &domain.User{ID: "u1", Name: "Sam Ortiz"}
	resp := responseWith(map[domain.EntityType][]domain.Entity{
		domain.EntityPullRequest: {
			domain.PullRequest{ID: "pr1", State: "open", Author: author, SourceTool: "github"},
			domain.PullRequest{ID: "pr2", State: "merged", SourceTool: "github"},
		},
		domain.EntityCommit: {
			domain.Commit{ID: "c1", Author: author, Additions: 120, Deletions: 30, SourceTool: "github"},
			domain.Commit{ID: "c2", Additions: 10, Deletions: 50, SourceTool: "github"},
		},
	})

	report := Build(resp)
	require.NotNil(t, report.PullRequests)
	assert.Equal(t, 1, report.PullRequests.StateDistribution["open"])
	assert.Equal(t, 1, report.PullRequests.AuthorDistribution["Sam Ortiz"])
	assert.Equal(t, 1, report.PullRequests.AuthorDistribution["Unknown"])

	require.NotNil(t, report.Commits)
	assert.Equal(t, 130, report.Commits.TotalAdditions)
	assert.Equal(t, 80, report.Commits.TotalDeletions)
	assert.Equal(t, 50, report.Commits.NetChanges)

	assert.InDelta(t, 50.0, report.Metrics.PRMergeRate, 0.01)
	assert.Equal(t, 2, report.Metrics.TotalCommits)
	assert.Equal(t, 210, report.Metrics.TotalCodeChanges)
}

func TestBuildRepositorySummary(t *testing.T) {
	resp := responseWith(map[domain.EntityType][]domain.Entity{
		domain.EntityRepository: {
			domain.Repository{ID: "r1", Name: "api", Language: "Go", Stars: 40, Forks: 5, SourceTool: "github"},
			domain.Repository{ID: "r2", Name: "web", Language: "TypeScript", Stars: 10, Forks: 2, SourceTool: "github"},
		},
	})

	report := Build(resp)
	require.NotNil(t, report.Repositories)
	assert.Equal(t, 1, report.Repositories.LanguageDistribution["Go"])
	assert.Equal(t, 50, report.Repositories.TotalStars)
	assert.InDelta(t, 25.0, report.Repositories.AverageStars, 0.01)
}

func TestCrossEntityInsights(t *testing.T) {
	resp := responseWith(map[domain.EntityType][]domain.Entity{
		domain.EntityWorkItem: {
			domain.WorkItem{ID: "AG-1", Status: domain.StatusDone, SprintID: "s1", SourceTool: "jira"},
			domain.WorkItem{ID: "AG-2", Status: domain.StatusTodo, SprintID: "s1", SourceTool: "jira"},
			domain.WorkItem{ID: "AG-3", Status: domain.StatusTodo, SourceTool: "jira"},
		},
		domain.EntitySprint: {
			domain.Sprint{ID: "s1", Name: "Sprint 1", State: domain.SprintActive, SourceTool: "jira"},
		},
		domain.EntityPullRequest: {
			domain.PullRequest{ID: "pr1", State: "open", SourceTool: "github"},
		},
		domain.EntityCommit: {
			domain.Commit{ID: "c1", SourceTool: "github"},
		},
	})

	report := Build(resp)
	require.Len(t, report.CrossEntityInsights, 2)
	assert.Contains(t, report.CrossEntityInsights[0], "2 work items")
	assert.Contains(t, report.CrossEntityInsights[0], "50.0% completion rate")
	assert.Contains(t, report.CrossEntityInsights[1], "1 recent commits and 1 open pull requests")
}

func TestNarrateNoData(t *testing.T) {
	n := NewNarrator(&llm.Scripted{Responses: []string{"should not be used"}}, zap.NewNop())

	got := n.Narrate(context.Background(), "show backlog", domain.Decision{}, Report{})
	assert.Contains(t, got, "No Data Retrieved")
}

func TestNarrateUsesLLM(t *testing.T) {
	script := &llm.Scripted{Responses: []string{"The sprint is on track."}}
	n := NewNarrator(script, zap.NewNop())

	report := Build(responseWith(map[domain.EntityType][]domain.Entity{
		domain.EntityWorkItem: {domain.WorkItem{ID: "AG-1", Status: domain.StatusDone, SourceTool: "jira"}},
	}))
	decision := domain.Decision{ActionType: domain.ActionAnalyze, ToolsToUse: []string{"jira"}, Reasoning: "r", Confidence: 0.8}

	got := n.Narrate(context.Background(), "how is the sprint", decision, report)
	assert.Equal(t, "The sprint is on track.", got)

	require.Len(t, script.Calls, 1)
	assert.Contains(t, script.Calls[0].Prompt, "how is the sprint")
	assert.Contains(t, script.Calls[0].Prompt, "Work Items")
}

func TestNarrateFallbackOnError(t *testing.T) {
	n := NewNarrator(&llm.Scripted{Err: assert.AnError}, zap.NewNop())

	report := Build(responseWith(map[domain.EntityType][]domain.Entity{
		domain.EntityWorkItem: {
			domain.WorkItem{ID: "AG-1", Status: domain.StatusDone, SourceTool: "jira"},
			domain.WorkItem{ID: "AG-2", Status: domain.StatusTodo, SourceTool: "jira"},
		},
	}))

	got := n.Narrate(context.Background(), "status", domain.Decision{}, report)
	assert.Contains(t, got, "Analysis Complete")
	assert.Contains(t, got, "**Work Items**: 2 items analyzed")
	assert.Contains(t, got, "Completion Rate: 50.0%")
}
