package llm

import (
	"context"
	"sync"
)

// Scripted is a Client that replays canned responses in order. Once the
// script is exhausted it keeps returning the final entry. A nil Err with an
// empty script yields empty responses.
type Scripted struct {
	mu        sync.Mutex
	Responses []string
	Err       error
	Calls     []CompletionRequest
}

func (s *Scripted) Complete(_ context.Context, req CompletionRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls = append(s.Calls, req)
	if s.Err != nil {
		return "", s.Err
	}
	if len(s.Responses) == 0 {
		return "", nil
	}
	idx := len(s.Calls) - 1
	if idx >= len(s.Responses) {
		idx = len(s.Responses) - 1
	}
	return s.Responses[idx], nil
}
