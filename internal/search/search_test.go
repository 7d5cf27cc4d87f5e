package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worklens/internal/domain"
)

func item(id, title, description string, labels ...string) domain.WorkItem {
	return domain.WorkItem{ID: id, Title: title, Description: description, Labels: labels}
}

func TestRankTitleBeatsDescription(t *testing.T) {
	items := []domain.WorkItem{
		item("AG-1", "Improve dashboards", "Slow login page mentioned in passing"),
		item("AG-2", "Fix login redirect loop", "Users bounce between pages"),
	}

	matches := Rank(items, "find login issues")
	require.Len(t, matches, 2)
	assert.Equal(t, "AG-2", matches[0].Item.ID, "title match should outrank description match")
	assert.Greater(t, matches[0].Score, matches[1].Score)
}

func TestRankOmitsNonMatches(t *testing.T) {
	items := []domain.WorkItem{
		item("AG-1", "Upgrade TLS configuration", ""),
		item("AG-2", "Fix login redirect loop", ""),
	}

	matches := Rank(items, "login")
	require.Len(t, matches, 1)
	assert.Equal(t, "AG-2", matches[0].Item.ID)
}

func TestRankStopwordOnlyQuery(t *testing.T) {
	items := []domain.WorkItem{item("AG-1", "Fix login redirect loop", "")}
	assert.Empty(t, Rank(items, "show me all the items"))
}

func TestRankLabelMatch(t *testing.T) {
	items := []domain.WorkItem{
		item("AG-1", "Tune query planner", "", "performance"),
		item("AG-2", "Write onboarding docs", ""),
	}

	matches := Rank(items, "performance")
	require.Len(t, matches, 1)
	assert.Equal(t, "AG-1", matches[0].Item.ID)
	assert.Contains(t, matches[0].Snippet, "**performance**")
}

func TestRankSnippetHighlightsMatch(t *testing.T) {
	items := []domain.WorkItem{
		item("AG-1", "Unrelated title", "The session cookie expires early, causing the login form to reappear after every refresh of the page"),
	}

	matches := Rank(items, "login")
	require.Len(t, matches, 1)
	assert.Contains(t, matches[0].Snippet, "**login**")
	assert.Contains(t, matches[0].Snippet, "...")
}

func TestReorderByRelevance(t *testing.T) {
	entities := []domain.Entity{
		item("AG-1", "Upgrade TLS configuration", ""),
		item("AG-2", "Fix login redirect loop", ""),
		item("AG-3", "Login page accessibility", ""),
	}

	out := ReorderByRelevance(entities, "login")
	require.Len(t, out, 3)
	first := out[0].(domain.WorkItem)
	second := out[1].(domain.WorkItem)
	third := out[2].(domain.WorkItem)
	assert.ElementsMatch(t, []string{"AG-2", "AG-3"}, []string{first.ID, second.ID})
	assert.Equal(t, "AG-1", third.ID, "unmatched items keep their place behind the matches")
}

func TestReorderByRelevanceNoMatches(t *testing.T) {
	entities := []domain.Entity{
		item("AG-1", "Upgrade TLS configuration", ""),
		item("AG-2", "Write onboarding docs", ""),
	}

	out := ReorderByRelevance(entities, "kubernetes")
	assert.Equal(t, entities, out, "no matches leaves the slice untouched")
}
