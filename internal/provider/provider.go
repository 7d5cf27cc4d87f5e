package provider

import (
	"context"
	"errors"
	"fmt"

	"worklens/internal/domain"
)

// Provider is a connected work tracker. Fetch returns canonical entities;
// mutations operate on work items and sprints only since those are the only
// entity kinds the trackers let us write.
type Provider interface {
	Name() string
	Capability() domain.Capability
	TestConnection(ctx context.Context) error
	Fetch(ctx context.Context, entity domain.EntityType, filters map[string]string, limit int) ([]domain.Entity, error)
	CreateWorkItem(ctx context.Context, item *domain.WorkItem) (*domain.WorkItem, error)
	UpdateWorkItem(ctx context.Context, id string, updates map[string]any) (*domain.WorkItem, error)
	DeleteWorkItem(ctx context.Context, id string) error
	CreateSprint(ctx context.Context, sprint *domain.Sprint) (*domain.Sprint, error)
}

// SourceBrowser is implemented by providers that host code alongside work
// items.
type SourceBrowser interface {
	Repositories(ctx context.Context) ([]domain.Repository, error)
	PullRequests(ctx context.Context, repo string) ([]domain.PullRequest, error)
	Commits(ctx context.Context, repo string, limit int) ([]domain.Commit, error)
}

// ErrorKind classifies provider failures so callers can choose a response.
type ErrorKind string

const (
	KindNotFound    ErrorKind = "not_found"
	KindForbidden   ErrorKind = "forbidden"
	KindRateLimited ErrorKind = "rate_limited"
	KindUnknown     ErrorKind = "unknown"
)

// Error is a classified provider failure.
type Error struct {
	Kind ErrorKind
	Tool string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Tool, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Tool, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError creates a classified provider error.
func NewError(kind ErrorKind, tool, msg string) *Error {
	return &Error{Kind: kind, Tool: tool, Msg: msg}
}

// KindOf returns the classification of err, or KindUnknown for foreign
// errors.
func KindOf(err error) ErrorKind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindUnknown
}

// IsNotFound reports whether err is a not-found provider error.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}
