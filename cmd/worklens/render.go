package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"worklens/internal/agent"
	"worklens/internal/domain"
)

// renderResponse prints the assistant's answer and, when the response carries
// aggregated data, a table per entity type below it.
func renderResponse(resp agent.Response) {
	fmt.Println(resp.Content)

	if resp.Data == nil {
		return
	}
	renderWorkItems(resp.Data.Data[domain.EntityWorkItem])
	renderSprints(resp.Data.Data[domain.EntitySprint])
	renderPullRequests(resp.Data.Data[domain.EntityPullRequest])
	renderCommits(resp.Data.Data[domain.EntityCommit])
	renderRepositories(resp.Data.Data[domain.EntityRepository])

	if len(resp.Data.Errors) > 0 {
		fmt.Println()
		fmt.Println("Some tools could not be reached:")
		for _, e := range resp.Data.Errors {
			fmt.Println("  -", e)
		}
	}
}

func renderWorkItems(entities []domain.Entity) {
	items := collect[domain.WorkItem](entities)
	if len(items) == 0 {
		return
	}
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row{"ID", "Title", "Type", "Status", "Priority", "Assignee", "Sprint"})
	for _, it := range items {
		assignee := ""
		if it.Assignee != nil {
			assignee = it.Assignee.Name
		}
		tw.AppendRow(table.Row{it.ID, truncate(it.Title, 48), it.Type, it.Status, it.Priority, assignee, it.SprintID})
	}
	fmt.Println()
	tw.Render()
}

func renderSprints(entities []domain.Entity) {
	sprints := collect[domain.Sprint](entities)
	if len(sprints) == 0 {
		return
	}
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row{"ID", "Name", "State", "Start", "End", "Goal"})
	for _, s := range sprints {
		tw.AppendRow(table.Row{s.ID, s.Name, s.State, formatDate(s.StartDate), formatDate(s.EndDate), truncate(s.Goal, 40)})
	}
	fmt.Println()
	tw.Render()
}

func renderPullRequests(entities []domain.Entity) {
	prs := collect[domain.PullRequest](entities)
	if len(prs) == 0 {
		return
	}
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row{"ID", "Title", "State", "Author", "+/-"})
	for _, pr := range prs {
		author := ""
		if pr.Author != nil {
			author = pr.Author.Name
		}
		tw.AppendRow(table.Row{pr.ID, truncate(pr.Title, 48), pr.State, author, fmt.Sprintf("+%d/-%d", pr.Additions, pr.Deletions)})
	}
	fmt.Println()
	tw.Render()
}

func renderCommits(entities []domain.Entity) {
	commits := collect[domain.Commit](entities)
	if len(commits) == 0 {
		return
	}
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row{"SHA", "Message", "Author", "When"})
	for _, c := range commits {
		author := ""
		if c.Author != nil {
			author = c.Author.Name
		}
		sha := c.SHA
		if len(sha) > 8 {
			sha = sha[:8]
		}
		tw.AppendRow(table.Row{sha, truncate(firstLine(c.Message), 56), author, formatDate(&c.Timestamp)})
	}
	fmt.Println()
	tw.Render()
}

func renderRepositories(entities []domain.Entity) {
	repos := collect[domain.Repository](entities)
	if len(repos) == 0 {
		return
	}
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row{"Name", "Language", "Stars", "Forks", "Open Issues"})
	for _, r := range repos {
		tw.AppendRow(table.Row{r.Name, r.Language, r.Stars, r.Forks, r.OpenIssues})
	}
	fmt.Println()
	tw.Render()
}

func collect[T domain.Entity](entities []domain.Entity) []T {
	var out []T
	for _, e := range entities {
		if v, ok := e.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
