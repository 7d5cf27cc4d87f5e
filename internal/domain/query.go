package domain

type ActionType string

const (
	ActionAnalyze ActionType = "analyze"
	ActionCreate  ActionType = "create"
	ActionUpdate  ActionType = "update"
	ActionDelete  ActionType = "delete"
	ActionSearch  ActionType = "search"
	ActionReport  ActionType = "report"
	ActionAssign  ActionType = "assign"
	ActionMove    ActionType = "move"
	ActionPlan    ActionType = "plan"
)

// ProjectContext identifies the project a conversation is scoped to and the
// tools configured for it.
type ProjectContext struct {
	Key   string   `json:"key"`
	Name  string   `json:"name"`
	Tools []string `json:"tools"`
}

// Turn is one completed exchange in a conversation.
type Turn struct {
	Query    string `json:"query"`
	Response string `json:"response"`
}

// QueryAnalysis is the structural signal extracted from raw request text.
type QueryAnalysis struct {
	Intent             ActionType
	EntitiesMentioned  []string
	ActionsImplied     []ActionType
	TemporalReferences []string
	SpecificFilters    map[string]string
	ContextClues       []string
}

// QueryHints carries paging and sort preferences attached to a Decision.
type QueryHints struct {
	Limit     int
	SortBy    string
	SortOrder string
}

// Decision is the structured output of intent classification: what to fetch
// or do, from which tools, with what filters. A Decision is a value consumed
// exactly once by the query planner.
type Decision struct {
	ActionType     ActionType
	EntitiesNeeded []EntityType
	ToolsToUse     []string
	Filters        map[string]string
	Reasoning      string
	Confidence     float64
	Hints          QueryHints
}

// UnifiedQuery is the executable request built from a Decision.
type UnifiedQuery struct {
	Entities       []EntityType
	Filters        map[string]string
	IncludeRelated []EntityType
	Limit          int
	SortBy         string
	SortOrder      string
}

type ResponseMetadata struct {
	TotalEntities int                `json:"totalEntities"`
	EntityCounts  map[EntityType]int `json:"entityCounts"`
	Limit         int                `json:"limit,omitempty"`
	SortBy        string             `json:"sortBy,omitempty"`
	SortOrder     string             `json:"sortOrder,omitempty"`
	Filters       map[string]string  `json:"filters,omitempty"`
}

// UnifiedResponse holds merged data from every tool that contributed.
// Partial success is valid: Success is false only when zero tools returned
// usable data.
type UnifiedResponse struct {
	Success     bool
	Data        map[EntityType][]Entity
	Metadata    ResponseMetadata
	Errors      []string
	SourceTools []string
}
