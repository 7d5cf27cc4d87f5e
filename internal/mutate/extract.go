package mutate

import (
	"fmt"
	"regexp"
	"strings"

	"worklens/internal/domain"
)

// idCandidate catches anything shaped like a work item reference, including
// malformed ones, so that a bad ID produces a format error rather than a
// silent miss.
var idCandidate = regexp.MustCompile(`\b(\w+-\d+)\b`)

// idStrict is the canonical work item key format, e.g. AG-123.
var idStrict = regexp.MustCompile(`(?i)^[A-Z]+[A-Z0-9]*-\d+$`)

// ExtractWorkItemID finds and validates the work item ID in a request.
// Missing and malformed IDs are both user input errors.
func ExtractWorkItemID(query string) (string, error) {
	match := idCandidate.FindString(query)
	if match == "" {
		return "", domain.NewUserInputError("No valid work item ID found in your request. Please specify the work item ID (e.g., 'update AG-123 status to Done').")
	}
	if !idStrict.MatchString(match) {
		return "", domain.NewUserInputError(fmt.Sprintf("Invalid work item ID format: '%s'. Please use a format like 'AG-123'.", match))
	}
	return strings.ToUpper(match), nil
}

// Status extraction patterns, most specific first. All run against the
// lowercased query.
var statusPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:change|update)\s+status\s+of\s+workitem\s+[a-z]+-\d+\s+to\s+(\w+(?:[\s-]+\w+)*)`),
	regexp.MustCompile(`status\s+of\s+workitem\s+[a-z]+-\d+\s+to\s+(\w+(?:[\s-]+\w+)*)`),
	regexp.MustCompile(`workitem\s+[a-z]+-\d+\s+(?:status\s+)?to\s+(\w+(?:[\s-]+\w+)*)`),
	regexp.MustCompile(`(?:update|change)\s+[a-z]+-\d+\s+status\s+to\s+(\w+(?:[\s-]+\w+)*)`),
	regexp.MustCompile(`[a-z]+-\d+\s+status\s+(?:to\s+)?(\w+(?:[\s-]+\w+)*)`),
	regexp.MustCompile(`move\s+[a-z]+-\d+\s+to\s+(\w+(?:[\s-]+\w+)*)`),
	regexp.MustCompile(`(?:set|mark)\s+(?:[a-z]+-\d+\s+)?(?:as\s+)?(\w+(?:[\s-]+\w+)*)`),
	regexp.MustCompile(`status\s+(?:to\s+)?(\w+(?:[\s-]+\w+)*)`),
}

// statusSynonyms maps the title-cased captured phrase to the tracker's
// display status.
var statusSynonyms = map[string]string{
	"Todo":        "To Do",
	"To Do":       "To Do",
	"Inprogress":  "In Progress",
	"In Progress": "In Progress",
	"In-Progress": "In Progress",
	"Done":        "Done",
	"Complete":    "Done",
	"Completed":   "Done",
	"Closed":      "Done",
	"Blocked":     "Blocked",
	"Open":        "To Do",
}

var priorityPatterns = []*regexp.Regexp{
	regexp.MustCompile(`priority\s+(?:to\s+)?(\w+)`),
	regexp.MustCompile(`(?:set|change)\s+priority\s+(?:to\s+)?(\w+)`),
}

var prioritySynonyms = map[string]string{
	"Low":      "Low",
	"Medium":   "Medium",
	"High":     "High",
	"Critical": "Highest",
	"Highest":  "Highest",
}

var titlePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:title|summary)\s+(?:to\s+)?["']([^"']+)["']`),
	regexp.MustCompile(`(?i)(?:rename|change\s+title)\s+(?:to\s+)?["']([^"']+)["']`),
}

var descriptionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)description\s+(?:to\s+)?["']([^"']+)["']`),
	regexp.MustCompile(`(?i)(?:change|update)\s+description\s+(?:to\s+)?["']([^"']+)["']`),
}

// ExtractUpdates parses the field changes requested by an update query.
// Returns a user input error when no recognizable change is present.
func ExtractUpdates(query, workItemID string) (map[string]any, error) {
	updates := map[string]any{}
	lower := strings.ToLower(query)

	for _, p := range statusPatterns {
		m := p.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		value := titleCase(strings.TrimSpace(m[1]))
		if mapped, ok := statusSynonyms[value]; ok {
			value = mapped
		}
		updates["status"] = value
		break
	}

	for _, p := range priorityPatterns {
		m := p.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		value := titleCase(strings.TrimSpace(m[1]))
		if mapped, ok := prioritySynonyms[value]; ok {
			value = mapped
		}
		updates["priority"] = value
		break
	}

	for _, p := range titlePatterns {
		if m := p.FindStringSubmatch(query); m != nil {
			updates["title"] = strings.TrimSpace(m[1])
			break
		}
	}

	for _, p := range descriptionPatterns {
		if m := p.FindStringSubmatch(query); m != nil {
			updates["description"] = strings.TrimSpace(m[1])
			break
		}
	}

	if len(updates) == 0 {
		return nil, domain.NewUserInputError(fmt.Sprintf(
			"No valid updates found for work item %s. You can update: status, priority, title, description, or assignee.\n\nExamples:\n- 'update %s status to Done'\n- 'change %s priority to High'\n- 'set %s title to \"New Title\"'",
			workItemID, workItemID, workItemID, workItemID))
	}
	return updates, nil
}

// statusKeywords mark a query as a field update rather than a person
// assignment; they are checked before any assignment pattern.
var statusKeywords = []string{
	"status", "state", "progress", "done", "todo", "complete", "completed",
	"closed", "open", "blocked", "priority", "title", "description",
}

// HasStatusKeyword reports whether the query mentions a field-update word.
func HasStatusKeyword(query string) bool {
	lower := strings.ToLower(query)
	for _, kw := range statusKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

var personAssignPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)assign\s+[A-Z]+-\d+\s+to\s+([A-Z][a-z]+\s+[A-Z][a-z]+)`),
	regexp.MustCompile(`(?i)[A-Z]+-\d+\s+to\s+([A-Z][a-z]+\s+[A-Z][a-z]+)(?:\s|$)`),
}

var assignmentKeywords = []string{"assign", "assignee", "assigned"}

// IsAssignmentRequest decides whether an update-classified query is really a
// person assignment. Status keywords always win.
func IsAssignmentRequest(query string) bool {
	if HasStatusKeyword(query) {
		return false
	}
	for _, p := range personAssignPatterns {
		if p.MatchString(query) {
			return true
		}
	}
	lower := strings.ToLower(query)
	for _, kw := range assignmentKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

var assigneePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)assign\s+[A-Z]+-\d+\s+to\s+(.+?)\s*$`),
	regexp.MustCompile(`(?i)to\s+([A-Z][a-zA-Z\s]+?)\s*$`),
	regexp.MustCompile(`(?i)assignee\s+([A-Z][a-zA-Z\s]+?)\s*$`),
	regexp.MustCompile(`(?i)user\s+([A-Z][a-zA-Z\s]+?)\s*$`),
}

var assigneeNoise = regexp.MustCompile(`(?i)\b(assign|assignee|user|item|work)\b`)

// ExtractAssignee pulls the target person's name from an assignment query.
func ExtractAssignee(query string) (string, error) {
	for _, p := range assigneePatterns {
		m := p.FindStringSubmatch(query)
		if m == nil {
			continue
		}
		name := strings.TrimSpace(m[1])
		cleaned := strings.TrimSpace(assigneeNoise.ReplaceAllString(name, ""))
		cleaned = strings.Join(strings.Fields(cleaned), " ")
		if len(cleaned) > 1 {
			name = cleaned
		}
		if name != "" {
			return name, nil
		}
	}
	return "", domain.NewUserInputError("No assignee name found. Please specify who to assign the work item to (e.g., 'assign AG-123 to John Doe') or which sprint to assign it to (e.g., 'assign AG-123 to sprint 1').")
}

var sprintRefPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:assign|add)\s+(?:workitem\s+)?[A-Z]+-\d+\s+to\s+sprint\s+(\d+|[A-Za-z\s]+)`),
	regexp.MustCompile(`(?i)(?:move|put)\s+(?:workitem\s+)?[A-Z]+-\d+\s+(?:to|into)\s+sprint\s+(\d+|[A-Za-z\s]+)`),
	regexp.MustCompile(`(?i)sprint\s+(\d+|[A-Za-z\s]+)`),
}

// ExtractSprintRef returns the sprint reference in an assignment query, if
// the query targets a sprint at all.
func ExtractSprintRef(query string) (string, bool) {
	for _, p := range sprintRefPatterns {
		if m := p.FindStringSubmatch(query); m != nil {
			return strings.TrimSpace(m[1]), true
		}
	}
	return "", false
}

// titleCase capitalizes each letter that follows a non-letter, matching how
// the status synonyms are keyed ("in-progress" becomes "In-Progress").
func titleCase(s string) string {
	out := []rune(strings.ToLower(s))
	prevLetter := false
	for i, r := range out {
		isLetter := r >= 'a' && r <= 'z'
		if isLetter && !prevLetter {
			out[i] = r - ('a' - 'A')
		}
		prevLetter = isLetter || (r >= 'A' && r <= 'Z')
	}
	return string(out)
}
