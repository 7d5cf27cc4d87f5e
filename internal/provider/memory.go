package provider

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"worklens/internal/domain"
)

// MemoryTracker is an in-memory Provider used for local runs and tests. It
// stores work items under sequential keys like AG-1 and keeps native
// jira-style status strings internally, translating to the canonical
// vocabulary on the way out.
type MemoryTracker struct {
	mu         sync.RWMutex
	name       string
	projectKey string
	capability domain.Capability
	seq        int
	items      map[string]*memoryItem
	sprints    map[string]*domain.Sprint
	users      map[string]*domain.User
	repos      map[string]*domain.Repository
	pulls      map[string]*domain.PullRequest
	commits    map[string]*domain.Commit
	now        func() time.Time
}

// memoryItem keeps the native status alongside the canonical item.
type memoryItem struct {
	item         domain.WorkItem
	nativeStatus string
}

func NewMemoryTracker(name, projectKey string, capability domain.Capability) *MemoryTracker {
	return &MemoryTracker{
		name:       name,
		projectKey: projectKey,
		capability: capability,
		items:      make(map[string]*memoryItem),
		sprints:    make(map[string]*domain.Sprint),
		users:      make(map[string]*domain.User),
		repos:      make(map[string]*domain.Repository),
		pulls:      make(map[string]*domain.PullRequest),
		commits:    make(map[string]*domain.Commit),
		now:        time.Now,
	}
}

func (m *MemoryTracker) Name() string                  { return m.name }
func (m *MemoryTracker) Capability() domain.Capability { return m.capability }

// TestConnection reports whether the tracker is reachable. The in-memory
// tracker is always reachable; the check still honors context cancellation
// so wiring code exercises the same path real adapters will.
func (m *MemoryTracker) TestConnection(ctx context.Context) error {
	return ctx.Err()
}

func (m *MemoryTracker) Fetch(_ context.Context, entity domain.EntityType, filters map[string]string, limit int) ([]domain.Entity, error) {
	if !m.capability.SupportsEntity(entity) {
		return nil, NewError(KindUnknown, m.name, fmt.Sprintf("entity type %s not supported", entity))
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []domain.Entity
	switch entity {
	case domain.EntityWorkItem:
		for _, mi := range m.items {
			if !m.matchesItem(mi, filters) {
				continue
			}
			item := mi.item
			out = append(out, item)
		}
	case domain.EntitySprint:
		for _, s := range m.sprints {
			if state, ok := filters["state"]; ok && !strings.EqualFold(string(s.State), state) {
				continue
			}
			out = append(out, *s)
		}
	case domain.EntityUser:
		for _, u := range m.users {
			out = append(out, *u)
		}
	case domain.EntityRepository:
		for _, r := range m.repos {
			out = append(out, *r)
		}
	case domain.EntityPullRequest:
		for _, p := range m.pulls {
			if state, ok := filters["state"]; ok && !strings.EqualFold(p.State, state) {
				continue
			}
			out = append(out, *p)
		}
	case domain.EntityCommit:
		for _, c := range m.commits {
			out = append(out, *c)
		}
	}

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryTracker) matchesItem(mi *memoryItem, filters map[string]string) bool {
	if status, ok := filters["status"]; ok {
		want := domain.NormalizeStatus(m.name, status)
		if mi.item.Status != want {
			return false
		}
	}
	if priority, ok := filters["priority"]; ok {
		if mi.item.Priority != domain.NormalizePriority(priority) {
			return false
		}
	}
	if assignee, ok := filters["assignee"]; ok {
		if mi.item.Assignee == nil || !strings.EqualFold(mi.item.Assignee.Name, assignee) {
			return false
		}
	}
	if sprintID, ok := filters["sprint_id"]; ok {
		if mi.item.SprintID != sprintID {
			return false
		}
	}
	return true
}

func (m *MemoryTracker) CreateWorkItem(_ context.Context, item *domain.WorkItem) (*domain.WorkItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	created := *item
	created.ID = fmt.Sprintf("%s-%d", m.projectKey, m.seq)
	created.SourceTool = m.name
	now := m.now()
	created.CreatedAt = now
	created.UpdatedAt = now
	if created.Type == "" {
		created.Type = domain.TypeTask
	} else {
		created.Type = domain.NormalizeWorkItemType(string(created.Type))
	}
	if created.Status == "" {
		created.Status = domain.StatusTodo
	} else {
		created.Status = domain.NormalizeStatus(m.name, string(created.Status))
	}
	if created.Priority == "" {
		created.Priority = domain.PriorityMedium
	} else {
		created.Priority = domain.NormalizePriority(string(created.Priority))
	}

	m.items[created.ID] = &memoryItem{item: created, nativeStatus: displayStatus(created.Status)}
	return &created, nil
}

func (m *MemoryTracker) UpdateWorkItem(_ context.Context, id string, updates map[string]any) (*domain.WorkItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	mi, exists := m.items[id]
	if !exists {
		return nil, NewError(KindNotFound, m.name, fmt.Sprintf("work item with ID %s not found", id))
	}

	updated := mi.item
	native := mi.nativeStatus

	if title, ok := updates["title"].(string); ok {
		updated.Title = title
	}
	if description, ok := updates["description"].(string); ok {
		updated.Description = description
	}
	if status, ok := updates["status"].(string); ok {
		native = status
		updated.Status = domain.NormalizeStatus(m.name, status)
		if updated.Status == domain.StatusDone {
			done := m.now()
			updated.CompletedAt = &done
		}
	}
	if priority, ok := updates["priority"].(string); ok {
		updated.Priority = domain.NormalizePriority(priority)
	}
	if assignee, ok := updates["assignee"].(string); ok {
		updated.Assignee = m.userByName(assignee)
	}
	if sprintID, ok := updates["sprint_id"].(string); ok {
		if _, found := m.sprints[sprintID]; !found {
			return nil, NewError(KindNotFound, m.name, fmt.Sprintf("sprint with ID %s not found", sprintID))
		}
		updated.SprintID = sprintID
	}
	if resolution, ok := updates["resolution"].(string); ok {
		if updated.Metadata == nil {
			updated.Metadata = map[string]string{}
		}
		updated.Metadata["resolution"] = resolution
	}

	updated.UpdatedAt = m.now()
	m.items[id] = &memoryItem{item: updated, nativeStatus: native}
	return &updated, nil
}

func (m *MemoryTracker) DeleteWorkItem(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.items[id]; !exists {
		return NewError(KindNotFound, m.name, fmt.Sprintf("work item with ID %s not found", id))
	}
	delete(m.items, id)
	return nil
}

// CreateSprint stores a new sprint. At most one sprint may be active at a
// time.
func (m *MemoryTracker) CreateSprint(_ context.Context, sprint *domain.Sprint) (*domain.Sprint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	created := *sprint
	if created.ID == "" {
		created.ID = uuid.New().String()
	}
	if _, exists := m.sprints[created.ID]; exists {
		return nil, NewError(KindUnknown, m.name, fmt.Sprintf("sprint with ID %s already exists", created.ID))
	}
	if created.State == "" {
		created.State = domain.SprintFuture
	}
	if created.State == domain.SprintActive {
		for _, s := range m.sprints {
			if s.State == domain.SprintActive {
				return nil, NewError(KindUnknown, m.name, fmt.Sprintf("sprint %s is already active", s.Name))
			}
		}
	}
	created.SourceTool = m.name

	m.sprints[created.ID] = &created
	return &created, nil
}

// SprintByRef resolves a sprint by ID, exact name, or bare number ("2"
// matches "Sprint 2").
func (m *MemoryTracker) SprintByRef(ref string) (*domain.Sprint, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if s, ok := m.sprints[ref]; ok {
		copied := *s
		return &copied, true
	}
	for _, s := range m.sprints {
		if strings.EqualFold(s.Name, ref) || strings.EqualFold(s.Name, "Sprint "+ref) {
			copied := *s
			return &copied, true
		}
	}
	return nil, false
}

func (m *MemoryTracker) userByName(name string) *domain.User {
	for _, u := range m.users {
		if strings.EqualFold(u.Name, name) {
			copied := *u
			return &copied
		}
	}
	u := &domain.User{ID: uuid.New().String(), Name: name, SourceTool: m.name}
	m.users[u.ID] = u
	return &domain.User{ID: u.ID, Name: u.Name, SourceTool: u.SourceTool}
}

// Seed helpers for demos and tests.

func (m *MemoryTracker) AddUser(u domain.User) domain.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	u.SourceTool = m.name
	m.users[u.ID] = &u
	return u
}

func (m *MemoryTracker) AddSprint(s domain.Sprint) domain.Sprint {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	s.SourceTool = m.name
	m.sprints[s.ID] = &s
	return s
}

func (m *MemoryTracker) AddRepository(r domain.Repository) domain.Repository {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	r.SourceTool = m.name
	m.repos[r.ID] = &r
	return r
}

func (m *MemoryTracker) AddPullRequest(p domain.PullRequest) domain.PullRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	p.SourceTool = m.name
	m.pulls[p.ID] = &p
	return p
}

func (m *MemoryTracker) AddCommit(c domain.Commit) domain.Commit {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == "" {
		c.ID = c.SHA
	}
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	c.SourceTool = m.name
	m.commits[c.ID] = &c
	return c
}

// displayStatus renders a canonical status in the jira-style display form
// the tracker stores natively.
func displayStatus(s domain.WorkItemStatus) string {
	switch s {
	case domain.StatusTodo:
		return "To Do"
	case domain.StatusInProgress:
		return "In Progress"
	case domain.StatusDone:
		return "Done"
	case domain.StatusBlocked:
		return "Blocked"
	case domain.StatusCancelled:
		return "Cancelled"
	}
	return string(s)
}
