package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worklens/internal/domain"
	"worklens/internal/provider"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	tracker := provider.NewMemoryTracker("jira", "AG", domain.DefaultCapabilities()["jira"])
	tracker.AddUser(domain.User{Name: "Dana Kim"})
	tracker.AddSprint(domain.Sprint{Name: "Sprint 1", State: domain.SprintActive})
	_, err = tracker.CreateWorkItem(context.Background(), &domain.WorkItem{Title: "Fix login redirect loop"})
	require.NoError(t, err)

	require.NoError(t, store.Save("jira", tracker.State()))

	state, ok, err := store.Load("jira")
	require.NoError(t, err)
	require.True(t, ok)

	restored := provider.NewMemoryTracker("jira", "AG", domain.DefaultCapabilities()["jira"])
	restored.LoadState(state)

	items, err := restored.Fetch(context.Background(), domain.EntityWorkItem, nil, 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	item := items[0].(domain.WorkItem)
	assert.Equal(t, "AG-1", item.ID)
	assert.Equal(t, "Fix login redirect loop", item.Title)

	// The restored sequence continues where the snapshot left off.
	created, err := restored.CreateWorkItem(context.Background(), &domain.WorkItem{Title: "Next item"})
	require.NoError(t, err)
	assert.Equal(t, "AG-2", created.ID)
}

func TestLoadMissingSnapshot(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, ok, err := store.Load("jira")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSaveRejectsInvalidToolName(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	assert.Error(t, store.Save("../escape", provider.TrackerState{}))
}

func TestSaveLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Save("jira", provider.TrackerState{Seq: 3}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "jira.json", entries[0].Name())
	assert.Equal(t, filepath.Ext(entries[0].Name()), ".json")
}
