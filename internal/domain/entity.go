package domain

import (
	"strings"
	"time"
)

type EntityType string

const (
	EntityWorkItem    EntityType = "work_item"
	EntitySprint      EntityType = "sprint"
	EntityUser        EntityType = "user"
	EntityProject     EntityType = "project"
	EntityRepository  EntityType = "repository"
	EntityPullRequest EntityType = "pull_request"
	EntityCommit      EntityType = "commit"
	EntityMilestone   EntityType = "milestone"
	EntityLabel       EntityType = "label"
	EntityComment     EntityType = "comment"
)

// ParseEntityType reports whether s names a known entity type.
func ParseEntityType(s string) (EntityType, bool) {
	et := EntityType(strings.ToLower(strings.TrimSpace(s)))
	switch et {
	case EntityWorkItem, EntitySprint, EntityUser, EntityProject, EntityRepository,
		EntityPullRequest, EntityCommit, EntityMilestone, EntityLabel, EntityComment:
		return et, true
	}
	return "", false
}

type WorkItemType string

const (
	TypeTask    WorkItemType = "task"
	TypeStory   WorkItemType = "story"
	TypeBug     WorkItemType = "bug"
	TypeEpic    WorkItemType = "epic"
	TypeFeature WorkItemType = "feature"
	TypeIssue   WorkItemType = "issue"
)

type WorkItemStatus string

const (
	StatusTodo       WorkItemStatus = "todo"
	StatusInProgress WorkItemStatus = "in_progress"
	StatusDone       WorkItemStatus = "done"
	StatusBlocked    WorkItemStatus = "blocked"
	StatusCancelled  WorkItemStatus = "cancelled"
)

type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

type SprintState string

const (
	SprintFuture SprintState = "future"
	SprintActive SprintState = "active"
	SprintClosed SprintState = "closed"
)

// Entity is the common surface every canonical entity exposes. SortValue
// returns a lexically sortable representation of the named field, or false
// when the entity has no such field.
type Entity interface {
	EntityID() string
	Source() string
	SortValue(field string) (string, bool)
}

type User struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Email      string            `json:"email,omitempty"`
	AvatarURL  string            `json:"avatarUrl,omitempty"`
	Role       string            `json:"role,omitempty"`
	SourceTool string            `json:"sourceTool,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// WorkItem is the canonical work item. Status and priority are always one of
// the closed enum values; translation from a tool's native vocabulary happens
// at the adapter boundary, never downstream.
type WorkItem struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	Type        WorkItemType      `json:"type"`
	Status      WorkItemStatus    `json:"status"`
	Priority    Priority          `json:"priority"`
	Assignee    *User             `json:"assignee,omitempty"`
	Reporter    *User             `json:"reporter,omitempty"`
	Labels      []string          `json:"labels,omitempty"`
	StoryPoints *int              `json:"storyPoints,omitempty"`
	EpicLink    string            `json:"epicLink,omitempty"`
	SprintID    string            `json:"sprintId,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
	DueAt       *time.Time        `json:"dueAt,omitempty"`
	CompletedAt *time.Time        `json:"completedAt,omitempty"`
	SourceTool  string            `json:"sourceTool"`
	SourceURL   string            `json:"sourceUrl,omitempty"`
	Comments    []Comment         `json:"comments,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type Sprint struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	State      SprintState       `json:"state"`
	Goal       string            `json:"goal,omitempty"`
	StartDate  *time.Time        `json:"startDate,omitempty"`
	EndDate    *time.Time        `json:"endDate,omitempty"`
	Capacity   *int              `json:"capacity,omitempty"`
	SourceTool string            `json:"sourceTool"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

type Repository struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	FullName      string            `json:"fullName"`
	Description   string            `json:"description,omitempty"`
	URL           string            `json:"url,omitempty"`
	DefaultBranch string            `json:"defaultBranch"`
	Language      string            `json:"language,omitempty"`
	Stars         int               `json:"stars"`
	Forks         int               `json:"forks"`
	OpenIssues    int               `json:"openIssues"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
	SourceTool    string            `json:"sourceTool"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

type PullRequest struct {
	ID           string            `json:"id"`
	Title        string            `json:"title"`
	Description  string            `json:"description,omitempty"`
	State        string            `json:"state"` // open, closed, merged
	Author       *User             `json:"author,omitempty"`
	Assignees    []User            `json:"assignees,omitempty"`
	Reviewers    []User            `json:"reviewers,omitempty"`
	SourceBranch string            `json:"sourceBranch,omitempty"`
	TargetBranch string            `json:"targetBranch,omitempty"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
	MergedAt     *time.Time        `json:"mergedAt,omitempty"`
	CommitsCount int               `json:"commitsCount"`
	Additions    int               `json:"additions"`
	Deletions    int               `json:"deletions"`
	SourceTool   string            `json:"sourceTool"`
	SourceURL    string            `json:"sourceUrl,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

type Commit struct {
	ID           string            `json:"id"`
	SHA          string            `json:"sha"`
	Message      string            `json:"message"`
	Author       *User             `json:"author,omitempty"`
	Committer    *User             `json:"committer,omitempty"`
	Timestamp    time.Time         `json:"timestamp"`
	Additions    int               `json:"additions"`
	Deletions    int               `json:"deletions"`
	FilesChanged []string          `json:"filesChanged,omitempty"`
	SourceTool   string            `json:"sourceTool"`
	SourceURL    string            `json:"sourceUrl,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

type Comment struct {
	ID         string            `json:"id"`
	Content    string            `json:"content"`
	Author     *User             `json:"author,omitempty"`
	CreatedAt  time.Time         `json:"createdAt"`
	UpdatedAt  time.Time         `json:"updatedAt"`
	ParentID   string            `json:"parentId,omitempty"`
	SourceTool string            `json:"sourceTool"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

func (w WorkItem) EntityID() string { return w.ID }
func (w WorkItem) Source() string   { return w.SourceTool }

func (w WorkItem) SortValue(field string) (string, bool) {
	switch field {
	case "title":
		return w.Title, true
	case "status":
		return string(w.Status), true
	case "priority":
		return string(w.Priority), true
	case "created_date":
		return w.CreatedAt.UTC().Format(time.RFC3339), true
	case "updated_date":
		return w.UpdatedAt.UTC().Format(time.RFC3339), true
	}
	return "", false
}

func (s Sprint) EntityID() string { return s.ID }
func (s Sprint) Source() string   { return s.SourceTool }

func (s Sprint) SortValue(field string) (string, bool) {
	switch field {
	case "name":
		return s.Name, true
	case "state":
		return string(s.State), true
	case "start_date":
		if s.StartDate == nil {
			return "", true
		}
		return s.StartDate.UTC().Format(time.RFC3339), true
	case "end_date":
		if s.EndDate == nil {
			return "", true
		}
		return s.EndDate.UTC().Format(time.RFC3339), true
	}
	return "", false
}

func (u User) EntityID() string { return u.ID }
func (u User) Source() string   { return u.SourceTool }

func (u User) SortValue(field string) (string, bool) {
	if field == "name" {
		return u.Name, true
	}
	return "", false
}

func (r Repository) EntityID() string { return r.ID }
func (r Repository) Source() string   { return r.SourceTool }

func (r Repository) SortValue(field string) (string, bool) {
	switch field {
	case "name":
		return r.Name, true
	case "created_date":
		return r.CreatedAt.UTC().Format(time.RFC3339), true
	case "updated_date":
		return r.UpdatedAt.UTC().Format(time.RFC3339), true
	}
	return "", false
}

func (p PullRequest) EntityID() string { return p.ID }
func (p PullRequest) Source() string   { return p.SourceTool }

func (p PullRequest) SortValue(field string) (string, bool) {
	switch field {
	case "title":
		return p.Title, true
	case "state":
		return p.State, true
	case "created_date":
		return p.CreatedAt.UTC().Format(time.RFC3339), true
	case "updated_date":
		return p.UpdatedAt.UTC().Format(time.RFC3339), true
	}
	return "", false
}

func (c Commit) EntityID() string { return c.ID }
func (c Commit) Source() string   { return c.SourceTool }

func (c Commit) SortValue(field string) (string, bool) {
	switch field {
	case "message":
		return c.Message, true
	case "created_date", "timestamp":
		return c.Timestamp.UTC().Format(time.RFC3339), true
	}
	return "", false
}

func (c Comment) EntityID() string { return c.ID }
func (c Comment) Source() string   { return c.SourceTool }

func (c Comment) SortValue(field string) (string, bool) {
	if field == "created_date" {
		return c.CreatedAt.UTC().Format(time.RFC3339), true
	}
	return "", false
}
