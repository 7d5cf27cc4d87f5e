package insight

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"worklens/internal/domain"
)

// WorkItemSummary is the rollup for a bucket of work items.
type WorkItemSummary struct {
	TotalCount           int            `json:"totalCount"`
	CompletedItems       int            `json:"completedItems"`
	CompletionRate       float64        `json:"completionRate"`
	StatusDistribution   map[string]int `json:"statusDistribution"`
	PriorityDistribution map[string]int `json:"priorityDistribution"`
	AssigneeDistribution map[string]int `json:"assigneeDistribution"`
	TypeDistribution     map[string]int `json:"typeDistribution"`
	ToolSources          []string       `json:"toolSources"`
}

type SprintSummary struct {
	TotalCount        int            `json:"totalCount"`
	StateDistribution map[string]int `json:"stateDistribution"`
	ActiveSprint      *domain.Sprint `json:"activeSprint,omitempty"`
	ToolSources       []string       `json:"toolSources"`
}

type PullRequestSummary struct {
	TotalCount         int            `json:"totalCount"`
	StateDistribution  map[string]int `json:"stateDistribution"`
	AuthorDistribution map[string]int `json:"authorDistribution"`
	ToolSources        []string       `json:"toolSources"`
}

type CommitSummary struct {
	TotalCount         int            `json:"totalCount"`
	AuthorDistribution map[string]int `json:"authorDistribution"`
	TotalAdditions     int            `json:"totalAdditions"`
	TotalDeletions     int            `json:"totalDeletions"`
	NetChanges         int            `json:"netChanges"`
	ToolSources        []string       `json:"toolSources"`
}

type RepositorySummary struct {
	TotalCount           int            `json:"totalCount"`
	LanguageDistribution map[string]int `json:"languageDistribution"`
	TotalStars           int            `json:"totalStars"`
	TotalForks           int            `json:"totalForks"`
	AverageStars         float64        `json:"averageStars"`
	ToolSources          []string       `json:"toolSources"`
}

// Metrics are headline numbers derived from whichever buckets had data.
type Metrics struct {
	CompletionRate     float64 `json:"completionRate,omitempty"`
	TotalWorkItems     int     `json:"totalWorkItems,omitempty"`
	CompletedWorkItems int     `json:"completedWorkItems,omitempty"`
	PRMergeRate        float64 `json:"prMergeRate,omitempty"`
	TotalPullRequests  int     `json:"totalPullRequests,omitempty"`
	TotalCommits       int     `json:"totalCommits,omitempty"`
	TotalCodeChanges   int     `json:"totalCodeChanges,omitempty"`
}

// Report is the full deterministic analysis of a unified response.
type Report struct {
	WorkItems           *WorkItemSummary    `json:"workItems,omitempty"`
	Sprints             *SprintSummary      `json:"sprints,omitempty"`
	PullRequests        *PullRequestSummary `json:"pullRequests,omitempty"`
	Commits             *CommitSummary      `json:"commits,omitempty"`
	Repositories        *RepositorySummary  `json:"repositories,omitempty"`
	CrossEntityInsights []string            `json:"crossEntityInsights,omitempty"`
	Metrics             Metrics             `json:"metrics"`
}

// TotalItems counts every analyzed entity across buckets.
func (r Report) TotalItems() int {
	total := 0
	if r.WorkItems != nil {
		total += r.WorkItems.TotalCount
	}
	if r.Sprints != nil {
		total += r.Sprints.TotalCount
	}
	if r.PullRequests != nil {
		total += r.PullRequests.TotalCount
	}
	if r.Commits != nil {
		total += r.Commits.TotalCount
	}
	if r.Repositories != nil {
		total += r.Repositories.TotalCount
	}
	return total
}

// Build computes the deterministic report for an aggregated response.
func Build(resp domain.UnifiedResponse) Report {
	var report Report

	if items := workItems(resp); len(items) > 0 {
		report.WorkItems = analyzeWorkItems(items)
	}
	if sprints := sprintsOf(resp); len(sprints) > 0 {
		report.Sprints = analyzeSprints(sprints)
	}
	if pulls := pullsOf(resp); len(pulls) > 0 {
		report.PullRequests = analyzePullRequests(pulls)
	}
	if commits := commitsOf(resp); len(commits) > 0 {
		report.Commits = analyzeCommits(commits)
	}
	if repos := reposOf(resp); len(repos) > 0 {
		report.Repositories = analyzeRepositories(repos)
	}

	report.CrossEntityInsights = crossEntityInsights(workItems(resp), sprintsOf(resp), pullsOf(resp), commitsOf(resp))
	report.Metrics = metrics(report)
	return report
}

func workItems(resp domain.UnifiedResponse) []domain.WorkItem {
	var out []domain.WorkItem
	for _, e := range resp.Data[domain.EntityWorkItem] {
		if w, ok := e.(domain.WorkItem); ok {
			out = append(out, w)
		}
	}
	return out
}

func sprintsOf(resp domain.UnifiedResponse) []domain.Sprint {
	var out []domain.Sprint
	for _, e := range resp.Data[domain.EntitySprint] {
		if s, ok := e.(domain.Sprint); ok {
			out = append(out, s)
		}
	}
	return out
}

func pullsOf(resp domain.UnifiedResponse) []domain.PullRequest {
	var out []domain.PullRequest
	for _, e := range resp.Data[domain.EntityPullRequest] {
		if p, ok := e.(domain.PullRequest); ok {
			out = append(out, p)
		}
	}
	return out
}

func commitsOf(resp domain.UnifiedResponse) []domain.Commit {
	var out []domain.Commit
	for _, e := range resp.Data[domain.EntityCommit] {
		if c, ok := e.(domain.Commit); ok {
			out = append(out, c)
		}
	}
	return out
}

func reposOf(resp domain.UnifiedResponse) []domain.Repository {
	var out []domain.Repository
	for _, e := range resp.Data[domain.EntityRepository] {
		if r, ok := e.(domain.Repository); ok {
			out = append(out, r)
		}
	}
	return out
}

func analyzeWorkItems(items []domain.WorkItem) *WorkItemSummary {
	s := &WorkItemSummary{
		TotalCount:           len(items),
		StatusDistribution:   map[string]int{},
		PriorityDistribution: map[string]int{},
		AssigneeDistribution: map[string]int{},
		TypeDistribution:     map[string]int{},
	}
	sources := map[string]bool{}

	for _, item := range items {
		s.StatusDistribution[string(item.Status)]++
		s.PriorityDistribution[string(item.Priority)]++
		s.TypeDistribution[string(item.Type)]++

		assignee := "Unassigned"
		if item.Assignee != nil {
			assignee = item.Assignee.Name
		}
		s.AssigneeDistribution[assignee]++

		if item.Status == domain.StatusDone {
			s.CompletedItems++
		}
		if item.SourceTool != "" {
			sources[item.SourceTool] = true
		}
	}

	s.CompletionRate = round1(float64(s.CompletedItems) / float64(len(items)) * 100)
	s.ToolSources = sortedKeys(sources)
	return s
}

func analyzeSprints(sprints []domain.Sprint) *SprintSummary {
	s := &SprintSummary{
		TotalCount:        len(sprints),
		StateDistribution: map[string]int{},
	}
	sources := map[string]bool{}

	for i, sprint := range sprints {
		s.StateDistribution[string(sprint.State)]++
		if sprint.State == domain.SprintActive && s.ActiveSprint == nil {
			s.ActiveSprint = &sprints[i]
		}
		if sprint.SourceTool != "" {
			sources[sprint.SourceTool] = true
		}
	}
	s.ToolSources = sortedKeys(sources)
	return s
}

func analyzePullRequests(pulls []domain.PullRequest) *PullRequestSummary {
	s := &PullRequestSummary{
		TotalCount:         len(pulls),
		StateDistribution:  map[string]int{},
		AuthorDistribution: map[string]int{},
	}
	sources := map[string]bool{}

	for _, pr := range pulls {
		s.StateDistribution[pr.State]++
		author := "Unknown"
		if pr.Author != nil {
			author = pr.Author.Name
		}
		s.AuthorDistribution[author]++
		if pr.SourceTool != "" {
			sources[pr.SourceTool] = true
		}
	}
	s.ToolSources = sortedKeys(sources)
	return s
}

func analyzeCommits(commits []domain.Commit) *CommitSummary {
	s := &CommitSummary{
		TotalCount:         len(commits),
		AuthorDistribution: map[string]int{},
	}
	sources := map[string]bool{}

	for _, c := range commits {
		author := "Unknown"
		if c.Author != nil {
			author = c.Author.Name
		}
		s.AuthorDistribution[author]++
		s.TotalAdditions += c.Additions
		s.TotalDeletions += c.Deletions
		if c.SourceTool != "" {
			sources[c.SourceTool] = true
		}
	}
	s.NetChanges = s.TotalAdditions - s.TotalDeletions
	s.ToolSources = sortedKeys(sources)
	return s
}

func analyzeRepositories(repos []domain.Repository) *RepositorySummary {
	s := &RepositorySummary{
		TotalCount:           len(repos),
		LanguageDistribution: map[string]int{},
	}
	sources := map[string]bool{}

	for _, r := range repos {
		if r.Language != "" {
			s.LanguageDistribution[r.Language]++
		}
		s.TotalStars += r.Stars
		s.TotalForks += r.Forks
		if r.SourceTool != "" {
			sources[r.SourceTool] = true
		}
	}
	s.AverageStars = round1(float64(s.TotalStars) / float64(len(repos)))
	s.ToolSources = sortedKeys(sources)
	return s
}

// crossEntityInsights correlates buckets that arrived together.
func crossEntityInsights(items []domain.WorkItem, sprints []domain.Sprint, pulls []domain.PullRequest, commits []domain.Commit) []string {
	var insights []string

	if len(items) > 0 && len(sprints) > 0 {
		var active *domain.Sprint
		for i := range sprints {
			if sprints[i].State == domain.SprintActive {
				active = &sprints[i]
				break
			}
		}
		if active != nil {
			var inSprint, done int
			for _, w := range items {
				if w.SprintID != active.ID {
					continue
				}
				inSprint++
				if w.Status == domain.StatusDone {
					done++
				}
			}
			if inSprint > 0 {
				rate := float64(done) / float64(inSprint) * 100
				insights = append(insights, fmt.Sprintf("Current sprint has %d work items with %.1f%% completion rate", inSprint, rate))
			}
		}
	}

	if len(pulls) > 0 && len(commits) > 0 {
		open := 0
		for _, pr := range pulls {
			if pr.State == "open" {
				open++
			}
		}
		insights = append(insights, fmt.Sprintf("Development activity shows %d recent commits and %d open pull requests", len(commits), open))
	}

	return insights
}

func metrics(report Report) Metrics {
	var m Metrics

	if report.WorkItems != nil {
		m.CompletionRate = report.WorkItems.CompletionRate
		m.TotalWorkItems = report.WorkItems.TotalCount
		m.CompletedWorkItems = report.WorkItems.CompletedItems
	}
	if report.PullRequests != nil {
		merged := report.PullRequests.StateDistribution["merged"]
		m.PRMergeRate = round1(float64(merged) / float64(report.PullRequests.TotalCount) * 100)
		m.TotalPullRequests = report.PullRequests.TotalCount
	}
	if report.Commits != nil {
		m.TotalCommits = report.Commits.TotalCount
		m.TotalCodeChanges = report.Commits.TotalAdditions + report.Commits.TotalDeletions
	}
	return m
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Summary renders the deterministic fallback narrative.
func (r Report) Summary() string {
	lines := []string{"## Analysis Complete", ""}

	appendCount := func(label string, count int) {
		lines = append(lines, fmt.Sprintf("**%s**: %d items analyzed", label, count))
	}
	if r.WorkItems != nil {
		appendCount("Work Items", r.WorkItems.TotalCount)
	}
	if r.Sprints != nil {
		appendCount("Sprints", r.Sprints.TotalCount)
	}
	if r.PullRequests != nil {
		appendCount("Pull Requests", r.PullRequests.TotalCount)
	}
	if r.Commits != nil {
		appendCount("Commits", r.Commits.TotalCount)
	}
	if r.Repositories != nil {
		appendCount("Repositories", r.Repositories.TotalCount)
	}

	var metricLines []string
	if r.Metrics.TotalWorkItems > 0 {
		metricLines = append(metricLines,
			fmt.Sprintf("- Completion Rate: %.1f%%", r.Metrics.CompletionRate),
			fmt.Sprintf("- Total Work Items: %d", r.Metrics.TotalWorkItems),
			fmt.Sprintf("- Completed Work Items: %d", r.Metrics.CompletedWorkItems))
	}
	if r.Metrics.TotalPullRequests > 0 {
		metricLines = append(metricLines,
			fmt.Sprintf("- PR Merge Rate: %.1f%%", r.Metrics.PRMergeRate),
			fmt.Sprintf("- Total Pull Requests: %d", r.Metrics.TotalPullRequests))
	}
	if r.Metrics.TotalCommits > 0 {
		metricLines = append(metricLines,
			fmt.Sprintf("- Total Commits: %d", r.Metrics.TotalCommits),
			fmt.Sprintf("- Total Code Changes: %d", r.Metrics.TotalCodeChanges))
	}
	if len(metricLines) > 0 {
		lines = append(lines, "", "**Key Metrics:**")
		lines = append(lines, metricLines...)
	}

	for _, insight := range r.CrossEntityInsights {
		lines = append(lines, "", "- "+insight)
	}

	return strings.Join(lines, "\n")
}
