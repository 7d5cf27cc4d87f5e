package provider

import (
	"sort"

	"worklens/internal/domain"
)

// TrackerState is the serializable contents of a MemoryTracker. The file
// store uses it to carry tracker data across process restarts.
type TrackerState struct {
	Seq     int                  `json:"seq"`
	Items   []SavedWorkItem      `json:"items,omitempty"`
	Sprints []domain.Sprint      `json:"sprints,omitempty"`
	Users   []domain.User        `json:"users,omitempty"`
	Repos   []domain.Repository  `json:"repositories,omitempty"`
	Pulls   []domain.PullRequest `json:"pullRequests,omitempty"`
	Commits []domain.Commit      `json:"commits,omitempty"`
}

// SavedWorkItem keeps the tracker's native status string alongside the
// canonical item, matching what the tracker holds in memory.
type SavedWorkItem struct {
	Item         domain.WorkItem `json:"item"`
	NativeStatus string          `json:"nativeStatus"`
}

// State snapshots the tracker's contents. Slices are sorted by ID so the
// serialized form is stable across runs.
func (m *MemoryTracker) State() TrackerState {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state := TrackerState{Seq: m.seq}
	for _, mi := range m.items {
		state.Items = append(state.Items, SavedWorkItem{Item: mi.item, NativeStatus: mi.nativeStatus})
	}
	sort.Slice(state.Items, func(i, j int) bool { return state.Items[i].Item.ID < state.Items[j].Item.ID })

	for _, s := range m.sprints {
		state.Sprints = append(state.Sprints, *s)
	}
	sort.Slice(state.Sprints, func(i, j int) bool { return state.Sprints[i].ID < state.Sprints[j].ID })

	for _, u := range m.users {
		state.Users = append(state.Users, *u)
	}
	sort.Slice(state.Users, func(i, j int) bool { return state.Users[i].ID < state.Users[j].ID })

	for _, r := range m.repos {
		state.Repos = append(state.Repos, *r)
	}
	sort.Slice(state.Repos, func(i, j int) bool { return state.Repos[i].ID < state.Repos[j].ID })

	for _, p := range m.pulls {
		state.Pulls = append(state.Pulls, *p)
	}
	sort.Slice(state.Pulls, func(i, j int) bool { return state.Pulls[i].ID < state.Pulls[j].ID })

	for _, c := range m.commits {
		state.Commits = append(state.Commits, *c)
	}
	sort.Slice(state.Commits, func(i, j int) bool { return state.Commits[i].ID < state.Commits[j].ID })

	return state
}

// LoadState replaces the tracker's contents with the snapshot.
func (m *MemoryTracker) LoadState(state TrackerState) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq = state.Seq
	m.items = make(map[string]*memoryItem, len(state.Items))
	for _, saved := range state.Items {
		item := saved.Item
		m.items[item.ID] = &memoryItem{item: item, nativeStatus: saved.NativeStatus}
	}
	m.sprints = make(map[string]*domain.Sprint, len(state.Sprints))
	for _, s := range state.Sprints {
		sprint := s
		m.sprints[sprint.ID] = &sprint
	}
	m.users = make(map[string]*domain.User, len(state.Users))
	for _, u := range state.Users {
		user := u
		m.users[user.ID] = &user
	}
	m.repos = make(map[string]*domain.Repository, len(state.Repos))
	for _, r := range state.Repos {
		repo := r
		m.repos[repo.ID] = &repo
	}
	m.pulls = make(map[string]*domain.PullRequest, len(state.Pulls))
	for _, p := range state.Pulls {
		pull := p
		m.pulls[pull.ID] = &pull
	}
	m.commits = make(map[string]*domain.Commit, len(state.Commits))
	for _, c := range state.Commits {
		commit := c
		m.commits[commit.ID] = &commit
	}
}
