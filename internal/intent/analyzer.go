package intent

import (
	"strings"

	"go.uber.org/zap"

	"worklens/internal/domain"
)

// Keyword tables driving the deterministic analysis pass. Matching is
// case-insensitive substring containment over the raw query.
var entityKeywords = map[domain.EntityType][]string{
	domain.EntityWorkItem:    {"work item", "task", "issue", "story", "bug", "ticket", "epic"},
	domain.EntitySprint:      {"sprint", "iteration", "cycle"},
	domain.EntityUser:        {"user", "assignee", "team member", "developer"},
	domain.EntityRepository:  {"repo", "repository", "code", "github"},
	domain.EntityPullRequest: {"pr", "pull request", "merge request"},
	domain.EntityCommit:      {"commit", "change", "version"},
}

var actionKeywords = map[domain.ActionType][]string{
	domain.ActionAnalyze: {"analyze", "show", "display", "view", "report", "status", "health", "performance"},
	domain.ActionCreate:  {"create", "add", "new", "generate", "make"},
	domain.ActionUpdate:  {"update", "edit", "change", "modify", "fix"},
	domain.ActionDelete:  {"delete", "remove", "cancel"},
	domain.ActionSearch:  {"find", "search", "look for", "get", "fetch"},
	domain.ActionAssign:  {"assign", "reassign", "allocate"},
	domain.ActionMove:    {"move", "transition", "change status"},
	domain.ActionPlan:    {"plan", "schedule", "organize"},
}

var entityOrder = []domain.EntityType{
	domain.EntityWorkItem,
	domain.EntitySprint,
	domain.EntityUser,
	domain.EntityRepository,
	domain.EntityPullRequest,
	domain.EntityCommit,
}

// actionPriority resolves multi-action queries: mutations win over reads.
var actionPriority = []domain.ActionType{
	domain.ActionCreate,
	domain.ActionUpdate,
	domain.ActionDelete,
	domain.ActionAssign,
	domain.ActionMove,
	domain.ActionPlan,
	domain.ActionSearch,
	domain.ActionAnalyze,
}

var temporalKeywords = []string{
	"today", "yesterday", "this week", "last week", "this month", "last month",
	"current", "recent", "latest", "past", "upcoming", "next",
}

// Status filter vocabulary. "backlog" is deliberately absent: it names a
// location, not a work item state, and must never surface as a status filter.
var statusKeywords = []string{"todo", "in progress", "done", "blocked", "open", "closed"}

var priorityKeywords = []string{"high", "low", "critical", "medium"}

// Analyzer extracts structural signals from free-form request text.
type Analyzer struct {
	logger *zap.Logger
}

func NewAnalyzer(logger *zap.Logger) *Analyzer {
	return &Analyzer{logger: logger}
}

// Analyze classifies the query and extracts entities, actions, temporal
// references, filters and context clues from up to the last three turns of
// history. It never fails: an unmatchable query yields the analyze intent
// with no entities.
func (a *Analyzer) Analyze(query string, history []domain.Turn) domain.QueryAnalysis {
	lower := strings.ToLower(query)

	analysis := domain.QueryAnalysis{
		Intent:          domain.ActionAnalyze,
		SpecificFilters: map[string]string{},
	}

	for _, et := range entityOrder {
		for _, kw := range entityKeywords[et] {
			if strings.Contains(lower, kw) {
				analysis.EntitiesMentioned = appendUnique(analysis.EntitiesMentioned, string(et))
				break
			}
		}
	}

	for _, action := range actionPriority {
		for _, kw := range actionKeywords[action] {
			if strings.Contains(lower, kw) {
				analysis.ActionsImplied = appendUniqueAction(analysis.ActionsImplied, action)
				break
			}
		}
	}

	for _, prio := range actionPriority {
		if containsAction(analysis.ActionsImplied, prio) {
			analysis.Intent = prio
			break
		}
	}

	for _, kw := range temporalKeywords {
		if strings.Contains(lower, kw) {
			analysis.TemporalReferences = append(analysis.TemporalReferences, kw)
		}
	}

	for _, kw := range statusKeywords {
		if strings.Contains(lower, kw) {
			analysis.SpecificFilters["status"] = kw
			break
		}
	}
	for _, kw := range priorityKeywords {
		if strings.Contains(lower, kw) {
			analysis.SpecificFilters["priority"] = kw
			break
		}
	}

	analysis.ContextClues = contextClues(history)

	a.logger.Debug("analyzed query",
		zap.String("intent", string(analysis.Intent)),
		zap.Strings("entities", analysis.EntitiesMentioned),
		zap.Strings("context_clues", analysis.ContextClues))
	return analysis
}

// contextClues inspects the most recent three turns for signals that the
// current query continues an earlier thread.
func contextClues(history []domain.Turn) []string {
	if len(history) > 3 {
		history = history[len(history)-3:]
	}
	var clues []string
	for _, turn := range history {
		lower := strings.ToLower(turn.Query)
		if strings.Contains(lower, "project") {
			clues = appendUnique(clues, "project_context")
		}
		for _, keywords := range entityKeywords {
			found := false
			for _, kw := range keywords {
				if strings.Contains(lower, kw) {
					clues = appendUnique(clues, "entity_continuity")
					found = true
					break
				}
			}
			if found {
				break
			}
		}
	}
	return clues
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}

func appendUniqueAction(list []domain.ActionType, v domain.ActionType) []domain.ActionType {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}

func containsAction(list []domain.ActionType, v domain.ActionType) bool {
	for _, a := range list {
		if a == v {
			return true
		}
	}
	return false
}
