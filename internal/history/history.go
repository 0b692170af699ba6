// Package history keeps per-user conversational context for prompt
// injection.
//
// The store is process-scoped state with an explicit lifecycle: created at
// startup, populated on first query from a user, never persisted and never
// torn down. Entries are append-only; reads surface only the most recent
// few turns. Retention is unbounded per user — acceptable for the current
// deployment profile, revisit before multi-tenant use.
package history

import (
	"fmt"
	"strings"
	"sync"
)

// recentWindow is the number of most recent turns surfaced to the prompt.
// Older entries are retained but never read.
const recentWindow = 3

// Entry is one completed conversational turn. Entries are only appended
// after generation succeeds, so an Entry always represents a full Q/A pair.
type Entry struct {
	Question string
	Answer   string
}

// Store holds conversation history keyed by user ID.
// Safe for concurrent use; appends for the same user are serialized so
// concurrent turns never lose entries.
type Store struct {
	mu    sync.RWMutex
	users map[string]*userHistory
}

type userHistory struct {
	mu      sync.Mutex
	entries []Entry
}

// NewStore creates an empty history store.
func NewStore() *Store {
	return &Store{users: make(map[string]*userHistory)}
}

// user returns the history bucket for userID, creating it on first use.
func (s *Store) user(userID string) *userHistory {
	s.mu.RLock()
	u, ok := s.users[userID]
	s.mu.RUnlock()
	if ok {
		return u
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok = s.users[userID]; ok {
		return u
	}
	u = &userHistory{}
	s.users[userID] = u
	return u
}

// Get returns a copy of the full history for userID, oldest first.
// Unseen users yield an empty slice.
func (s *Store) Get(userID string) []Entry {
	s.mu.RLock()
	u, ok := s.users[userID]
	s.mu.RUnlock()
	if !ok {
		return nil
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	out := make([]Entry, len(u.entries))
	copy(out, u.entries)
	return out
}

// Append records a completed turn for userID.
func (s *Store) Append(userID, question, answer string) {
	u := s.user(userID)
	u.mu.Lock()
	defer u.mu.Unlock()
	u.entries = append(u.entries, Entry{Question: question, Answer: answer})
}

// FormatRecent renders the last recentWindow turns as alternating
// "Q: ..."/"A: ..." blocks joined by blank lines, oldest of the window
// first. Users with no history render as the empty string, which the
// prompt composer treats as "no history block".
func (s *Store) FormatRecent(userID string) string {
	entries := s.Get(userID)
	if len(entries) > recentWindow {
		entries = entries[len(entries)-recentWindow:]
	}

	blocks := make([]string, 0, len(entries))
	for _, e := range entries {
		blocks = append(blocks, fmt.Sprintf("Q: %s\nA: %s", e.Question, e.Answer))
	}
	return strings.Join(blocks, "\n\n")
}
