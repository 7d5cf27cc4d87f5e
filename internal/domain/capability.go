package domain

type Operation string

const (
	OpRead   Operation = "read"
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// Capability describes what one tool can do and how fast it may be asked.
// Loaded once per process and never mutated at runtime, so it is safe for
// concurrent reads.
type Capability struct {
	ToolName          string
	SupportedEntities []EntityType
	SupportedOps      []Operation
	RealTimeData      bool
	RateLimitPerMin   int
}

func (c Capability) SupportsEntity(e EntityType) bool {
	for _, se := range c.SupportedEntities {
		if se == e {
			return true
		}
	}
	return false
}

func (c Capability) SupportsOp(op Operation) bool {
	for _, so := range c.SupportedOps {
		if so == op {
			return true
		}
	}
	return false
}

// DefaultCapabilities returns the static registry for the standard tool
// kinds. Callers must treat the result as read-only.
func DefaultCapabilities() map[string]Capability {
	return map[string]Capability{
		"jira": {
			ToolName: "jira",
			SupportedEntities: []EntityType{
				EntityWorkItem, EntitySprint, EntityUser, EntityProject, EntityComment,
			},
			SupportedOps:    []Operation{OpRead, OpCreate, OpUpdate, OpDelete},
			RealTimeData:    true,
			RateLimitPerMin: 300,
		},
		"github": {
			ToolName: "github",
			SupportedEntities: []EntityType{
				EntityRepository, EntityWorkItem, EntityPullRequest, EntityCommit,
				EntityUser, EntityComment,
			},
			SupportedOps:    []Operation{OpRead, OpCreate, OpUpdate},
			RealTimeData:    true,
			RateLimitPerMin: 83, // 5000 requests per hour
		},
		"azure_devops": {
			ToolName: "azure_devops",
			SupportedEntities: []EntityType{
				EntityWorkItem, EntitySprint, EntityUser, EntityProject, EntityRepository,
			},
			SupportedOps:    []Operation{OpRead, OpCreate, OpUpdate, OpDelete},
			RealTimeData:    true,
			RateLimitPerMin: 200,
		},
	}
}
