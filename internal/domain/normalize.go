package domain

import "strings"

// Native-to-canonical vocabulary maps. These run at the adapter boundary so
// that status and priority downstream are always one of the closed enum
// values.

var jiraStatus = map[string]WorkItemStatus{
	"to do":       StatusTodo,
	"todo":        StatusTodo,
	"open":        StatusTodo,
	"in progress": StatusInProgress,
	"doing":       StatusInProgress,
	"active":      StatusInProgress,
	"done":        StatusDone,
	"closed":      StatusDone,
	"resolved":    StatusDone,
	"blocked":     StatusBlocked,
	"cancelled":   StatusCancelled,
}

var githubStatus = map[string]WorkItemStatus{
	"open":   StatusTodo,
	"closed": StatusDone,
}

var azureStatus = map[string]WorkItemStatus{
	"new":      StatusTodo,
	"active":   StatusInProgress,
	"resolved": StatusDone,
	"closed":   StatusDone,
	"removed":  StatusCancelled,
}

// NormalizeStatus maps a tool's native status string to the canonical
// vocabulary. Already-canonical values pass through; unknown values default
// to todo.
func NormalizeStatus(tool, native string) WorkItemStatus {
	key := strings.ToLower(strings.TrimSpace(native))
	switch WorkItemStatus(key) {
	case StatusTodo, StatusInProgress, StatusDone, StatusBlocked, StatusCancelled:
		return WorkItemStatus(key)
	}
	var m map[string]WorkItemStatus
	switch tool {
	case "github":
		m = githubStatus
	case "azure_devops":
		m = azureStatus
	default:
		m = jiraStatus
	}
	if s, ok := m[key]; ok {
		return s
	}
	return StatusTodo
}

var nativePriority = map[string]Priority{
	"highest":  PriorityCritical,
	"critical": PriorityCritical,
	"high":     PriorityHigh,
	"medium":   PriorityMedium,
	"low":      PriorityLow,
	"lowest":   PriorityLow,
}

// NormalizePriority maps a native priority string to the canonical
// vocabulary. Unknown values default to medium.
func NormalizePriority(native string) Priority {
	if p, ok := nativePriority[strings.ToLower(strings.TrimSpace(native))]; ok {
		return p
	}
	return PriorityMedium
}

var nativeType = map[string]WorkItemType{
	"story":      TypeStory,
	"user story": TypeStory,
	"task":       TypeTask,
	"bug":        TypeBug,
	"epic":       TypeEpic,
	"feature":    TypeFeature,
	"issue":      TypeIssue,
}

// NormalizeWorkItemType maps a native issue type to the canonical vocabulary.
// Unknown values default to task.
func NormalizeWorkItemType(native string) WorkItemType {
	if t, ok := nativeType[strings.ToLower(strings.TrimSpace(native))]; ok {
		return t
	}
	return TypeTask
}
