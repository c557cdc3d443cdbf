package services

import (
	"sync"
	"time"

	"voice-agent-platform/models"
)

// SessionStore tracks the retrieval context the agent used for each room.
// Entries are created on first write, live for the process lifetime, and
// are never deleted. It has no relationship to the document registry.
type SessionStore struct {
	mu     sync.Mutex
	states map[string]models.SessionState
}

func NewSessionStore() *SessionStore {
	return &SessionStore{states: make(map[string]models.SessionState)}
}

// Get returns the state for a room, or false if the room was never written.
func (s *SessionStore) Get(roomName string) (models.SessionState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.states[roomName]
	return state, ok
}

// Upsert merges the supplied fields onto the room's previous state. Omitted
// fields carry forward; updatedAt always moves. The read-modify-write runs
// under the lock so concurrent writers always merge onto the latest state.
func (s *SessionStore) Upsert(roomName string, update models.SessionUpdate) models.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.states[roomName]
	next := models.SessionState{
		RoomName:   roomName,
		UpdatedAt:  time.Now().UTC(),
		Sources:    current.Sources,
		LastAnswer: current.LastAnswer,
	}
	if update.Sources != nil {
		next.Sources = update.Sources
	}
	if next.Sources == nil {
		next.Sources = []models.SessionSource{}
	}
	if update.LastAnswer != nil {
		next.LastAnswer = *update.LastAnswer
	}

	s.states[roomName] = next
	return next
}
