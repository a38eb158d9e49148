// Package transcript holds the ordered conversation history. The store is
// the single source of truth for what has been said; only the orchestrator
// writes to it.
package transcript

import (
	"sync"

	"github.com/voxlab/askai/pkg/core/types"
)

// Store is an in-memory ordered sequence of turns. Insertion order defines
// the conversational context sent to the model. The store lives for one
// session and is destroyed with it; there is no durable form.
type Store struct {
	mu    sync.Mutex
	turns []types.Turn
}

// NewStore creates an empty transcript.
func NewStore() *Store {
	return &Store{}
}

// Append adds a turn to the end of the transcript.
func (s *Store) Append(turn types.Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = append(s.turns, turn)
}

// DropLastModel removes the final turn if and only if it is a model turn.
// Reports whether a turn was removed. The role check keeps a repeated
// regenerate from ever consuming a user turn.
func (s *Store) DropLastModel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.turns)
	if n == 0 || s.turns[n-1].Role != types.RoleModel {
		return false
	}
	s.turns = s.turns[:n-1]
	return true
}

// LastUser returns the most recent user turn, if any.
func (s *Store) LastUser() (types.Turn, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.turns) - 1; i >= 0; i-- {
		if s.turns[i].Role == types.RoleUser {
			return s.turns[i], true
		}
	}
	return types.Turn{}, false
}

// Snapshot returns a copy of the current turns.
func (s *Store) Snapshot() []types.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.Turn(nil), s.turns...)
}

// Len returns the number of turns.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.turns)
}

// Reset clears the transcript.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = nil
}
