package mutate

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"worklens/internal/domain"
)

// Date shapes accepted in sprint planning requests.
var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d{1,2}(?:st|nd|rd|th)?\s+\w+\s+\d{4})`),      // 7th July 2025
	regexp.MustCompile(`(?i)(\w+\s+\d{1,2}(?:st|nd|rd|th)?\s*,?\s+\d{4})`), // July 7th, 2025
	regexp.MustCompile(`(?i)(\w+\s+\d{1,2}\s+\d{4})`),                      // December 30 2025
	regexp.MustCompile(`(\d{4}-\d{2}-\d{2})`),                              // 2025-07-07
	regexp.MustCompile(`(\d{1,2}/\d{1,2}/\d{4})`),                          // 7/7/2025
}

var ordinalSuffix = regexp.MustCompile(`(?i)(\d{1,2})(st|nd|rd|th)`)

var dateLayouts = []string{
	"2 January 2006",
	"January 2, 2006",
	"January 2 2006",
	"2006-01-02",
	"1/2/2006",
}

// ExtractDateRange pulls the first two distinct dates out of a planning
// request. The second return is false when the query names fewer than two.
func ExtractDateRange(query string) (start, end time.Time, ok bool) {
	var found []string
	seen := map[string]bool{}
	for _, p := range datePatterns {
		for _, m := range p.FindAllString(query, -1) {
			if !seen[m] {
				seen[m] = true
				found = append(found, m)
			}
		}
	}

	var parsed []time.Time
	usedDays := map[string]bool{}
	for _, raw := range found {
		t, err := parseDate(raw)
		if err != nil {
			continue
		}
		day := t.Format("2006-01-02")
		if usedDays[day] {
			continue
		}
		usedDays[day] = true
		parsed = append(parsed, t)
	}

	if len(parsed) < 2 {
		return time.Time{}, time.Time{}, false
	}
	return parsed[0], parsed[1], true
}

func parseDate(raw string) (time.Time, error) {
	cleaned := ordinalSuffix.ReplaceAllString(raw, "$1")
	cleaned = strings.Join(strings.Fields(strings.ReplaceAll(cleaned, ",", ", ")), " ")
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return t, nil
		}
	}
	// retry without the comma normalization
	compact := strings.Join(strings.Fields(strings.ReplaceAll(raw, ",", " ")), " ")
	compact = ordinalSuffix.ReplaceAllString(compact, "$1")
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, compact); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}

const (
	sprintLength      = 14 * 24 * time.Hour
	maxPlannedSprints = 50
)

// PlanSprints cuts the [start, end) range into consecutive two-week future
// sprints. The final sprint is shortened to the end date when the range does
// not divide evenly.
func PlanSprints(start, end time.Time) []domain.Sprint {
	var sprints []domain.Sprint
	current := start
	number := 1

	for current.Before(end) {
		sprintEnd := current.Add(sprintLength)
		if sprintEnd.After(end) {
			sprintEnd = end
		}

		s := current
		e := sprintEnd
		sprints = append(sprints, domain.Sprint{
			Name:      fmt.Sprintf("Sprint %d", number),
			Goal:      fmt.Sprintf("Sprint %d objectives", number),
			State:     domain.SprintFuture,
			StartDate: &s,
			EndDate:   &e,
		})

		current = sprintEnd
		number++
		if number > maxPlannedSprints {
			break
		}
	}
	return sprints
}
