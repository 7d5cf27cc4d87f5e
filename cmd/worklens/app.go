package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"worklens/internal/agent"
	"worklens/internal/domain"
	"worklens/internal/llm"
	"worklens/internal/provider"
	"worklens/internal/storage"
)

// saveState persists tracker state after mutations. It stays nil unless a
// state directory is configured.
var saveState func()

// buildCoordinator wires the coordinator from loaded configuration: one
// in-memory tracker per configured tool, and a Gemini client when an API key
// is present. Without a key every model-backed path runs its deterministic
// fallback, which keeps the CLI usable offline.
func buildCoordinator(ctx context.Context) (*agent.Coordinator, error) {
	caps := domain.DefaultCapabilities()

	var store *storage.FileStore
	if cfg.StateDir != "" {
		var err error
		store, err = storage.NewFileStore(cfg.StateDir)
		if err != nil {
			return nil, err
		}
	}

	var providers []provider.Provider
	var trackers []*provider.MemoryTracker
	var primary *provider.MemoryTracker
	primaryRestored := false
	for _, name := range cfg.Tools {
		capability, ok := caps[name]
		if !ok {
			logger.Warn("skipping tool without capability descriptor", zap.String("tool", name))
			continue
		}
		tracker := provider.NewMemoryTracker(name, cfg.ProjectKey, capability)
		restored := false
		if store != nil {
			state, found, err := store.Load(name)
			if err != nil {
				return nil, err
			}
			if found {
				tracker.LoadState(state)
				restored = true
			}
		}
		if primary == nil {
			primary = tracker
			primaryRestored = restored
		}
		if err := tracker.TestConnection(ctx); err != nil {
			logger.Warn("tracker connection check failed", zap.String("tool", name), zap.Error(err))
		}
		trackers = append(trackers, tracker)
		providers = append(providers, tracker)
	}

	if demo && primary != nil && !primaryRestored {
		seedDemo(ctx, primary)
	}

	if store != nil {
		saveState = func() {
			for _, tracker := range trackers {
				if err := store.Save(tracker.Name(), tracker.State()); err != nil {
					logger.Warn("saving tracker state failed", zap.String("tool", tracker.Name()), zap.Error(err))
				}
			}
		}
	}

	var client llm.Client
	if cfg.LLM.Enabled() {
		gemini, err := llm.NewGeminiClient(ctx, cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.Timeout, logger)
		if err != nil {
			return nil, err
		}
		client = gemini
	}

	return agent.New(cfg, providers, client, logger), nil
}

// seedDemo fills a tracker with enough sample data that every analysis and
// management path has something to chew on.
func seedDemo(ctx context.Context, tracker *provider.MemoryTracker) {
	dana := tracker.AddUser(domain.User{Name: "Dana Kim", Email: "dana@example.com"})
	priya := tracker.AddUser(domain.User{Name: "Priya Nair", Email: "priya@example.com"})

	start := time.Now().AddDate(0, 0, -7)
	end := start.AddDate(0, 0, 14)
	sprint := tracker.AddSprint(domain.Sprint{
		Name:      "Sprint 1",
		Goal:      "Stabilize authentication",
		State:     domain.SprintActive,
		StartDate: &start,
		EndDate:   &end,
	})

	items := []domain.WorkItem{
		{Title: "Fix login redirect loop", Type: domain.TypeBug, Status: domain.StatusInProgress, Priority: domain.PriorityHigh, Assignee: &dana, SprintID: sprint.ID},
		{Title: "Add session timeout setting", Type: domain.TypeStory, Status: domain.StatusTodo, Priority: domain.PriorityMedium, SprintID: sprint.ID},
		{Title: "Password reset emails land in spam", Type: domain.TypeBug, Status: domain.StatusTodo, Priority: domain.PriorityCritical, Assignee: &priya},
		{Title: "Upgrade TLS configuration", Type: domain.TypeTask, Status: domain.StatusDone, Priority: domain.PriorityMedium, Assignee: &dana, SprintID: sprint.ID},
		{Title: "Document OAuth flows", Type: domain.TypeTask, Status: domain.StatusTodo, Priority: domain.PriorityLow},
	}
	for i := range items {
		if _, err := tracker.CreateWorkItem(ctx, &items[i]); err != nil {
			logger.Warn("seeding demo work item failed", zap.Error(err))
		}
	}

	tracker.AddRepository(domain.Repository{
		Name: "auth-service", Language: "Go", Stars: 42, Forks: 7,
	})
	tracker.AddPullRequest(domain.PullRequest{
		Title: "Fix redirect loop on expired sessions", State: "merged",
		Author: &dana, SourceBranch: "fix/session-redirect", TargetBranch: "main", Additions: 120, Deletions: 40,
	})
	tracker.AddPullRequest(domain.PullRequest{
		Title: "Session timeout configuration", State: "open",
		Author: &priya, SourceBranch: "feat/session-timeout", TargetBranch: "main", Additions: 85, Deletions: 10,
	})
	tracker.AddCommit(domain.Commit{
		Message: "fix: break redirect loop when the session is expired",
		Author: &dana, Additions: 120, Deletions: 40,
	})
}
