// Package session keeps bounded in-memory conversation history per session.
package session

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Exchange is one completed user turn: the question and the answer.
type Exchange struct {
	UserMessage      string
	AssistantMessage string
}

// Store holds conversation history keyed by session ID. Each session retains
// at most maxHistory exchanges; older ones are evicted oldest-first.
type Store struct {
	mu         sync.Mutex
	maxHistory int
	sessions   map[string][]Exchange
}

// NewStore creates a Store that keeps up to maxHistory exchanges per session.
func NewStore(maxHistory int) *Store {
	return &Store{
		maxHistory: maxHistory,
		sessions:   make(map[string][]Exchange),
	}
}

// CreateSession registers a new empty session and returns its ID.
func (s *Store) CreateSession() string {
	id := fmt.Sprintf("session_%s", uuid.NewString())

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = nil
	return id
}

// RecordExchange appends a completed exchange to the session, creating the
// session if it does not exist, and evicts the oldest exchanges beyond the
// history bound.
func (s *Store) RecordExchange(id, userMessage, assistantMessage string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := append(s.sessions[id], Exchange{
		UserMessage:      userMessage,
		AssistantMessage: assistantMessage,
	})
	if excess := len(history) - s.maxHistory; excess > 0 {
		history = history[excess:]
	}
	s.sessions[id] = history
}

// HistoryText renders the session's exchanges as alternating "User:" and
// "Assistant:" lines, oldest first. The second return is false when the
// session is unknown or has no history yet.
func (s *Store) HistoryText(id string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := s.sessions[id]
	if len(history) == 0 {
		return "", false
	}

	lines := make([]string, 0, len(history)*2)
	for _, e := range history {
		lines = append(lines, "User: "+e.UserMessage)
		lines = append(lines, "Assistant: "+e.AssistantMessage)
	}
	return strings.Join(lines, "\n"), true
}

// ClearSession drops all history for the session. Clearing an unknown session
// is a no-op.
func (s *Store) ClearSession(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}
