package mutate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worklens/internal/domain"
)

func TestExtractDateRangeFormats(t *testing.T) {
	tests := []struct {
		query string
		start string
		end   string
	}{
		{"plan sprints from 2025-07-07 to 2025-08-04", "2025-07-07", "2025-08-04"},
		{"plan sprints from July 7th, 2025 to August 4th, 2025", "2025-07-07", "2025-08-04"},
		{"plan sprints between 7 July 2025 and 4 August 2025", "2025-07-07", "2025-08-04"},
		{"plan sprints 7/7/2025 through 8/4/2025", "2025-07-07", "2025-08-04"},
		{"sprints from December 30 2025 to January 27 2026", "2025-12-30", "2026-01-27"},
	}
	for _, tt := range tests {
		start, end, ok := ExtractDateRange(tt.query)
		require.True(t, ok, "query %q", tt.query)
		assert.Equal(t, tt.start, start.Format("2006-01-02"), "query %q", tt.query)
		assert.Equal(t, tt.end, end.Format("2006-01-02"), "query %q", tt.query)
	}
}

func TestExtractDateRangeTooFew(t *testing.T) {
	_, _, ok := ExtractDateRange("plan sprints starting 2025-07-07")
	assert.False(t, ok)

	_, _, ok = ExtractDateRange("plan some sprints for me")
	assert.False(t, ok)
}

func TestExtractDateRangeDedupesSameDay(t *testing.T) {
	// the ISO and slash forms name the same day, so only one date remains
	_, _, ok := ExtractDateRange("plan sprints from 2025-07-07 to 7/7/2025")
	assert.False(t, ok)
}

func TestPlanSprintsTwoWeekCuts(t *testing.T) {
	start := time.Date(2025, 7, 7, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 28)

	sprints := PlanSprints(start, end)
	require.Len(t, sprints, 2)

	assert.Equal(t, "Sprint 1", sprints[0].Name)
	assert.Equal(t, "Sprint 1 objectives", sprints[0].Goal)
	assert.Equal(t, domain.SprintFuture, sprints[0].State)
	assert.Equal(t, start, *sprints[0].StartDate)
	assert.Equal(t, start.AddDate(0, 0, 14), *sprints[0].EndDate)

	assert.Equal(t, "Sprint 2", sprints[1].Name)
	assert.Equal(t, start.AddDate(0, 0, 14), *sprints[1].StartDate)
	assert.Equal(t, end, *sprints[1].EndDate)
}

func TestPlanSprintsShortFinalSprint(t *testing.T) {
	start := time.Date(2025, 7, 7, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 17)

	sprints := PlanSprints(start, end)
	require.Len(t, sprints, 2)
	assert.Equal(t, end, *sprints[1].EndDate)
	assert.Equal(t, 3*24*time.Hour, sprints[1].EndDate.Sub(*sprints[1].StartDate))
}

func TestPlanSprintsCap(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(10, 0, 0)

	sprints := PlanSprints(start, end)
	assert.Len(t, sprints, 50)
}

func TestPlanSprintsEmptyRange(t *testing.T) {
	start := time.Date(2025, 7, 7, 0, 0, 0, 0, time.UTC)
	assert.Empty(t, PlanSprints(start, start))
}
