package chat

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/Reese0301/careerinfinance/internal/model/chat"
	"github.com/Reese0301/careerinfinance/internal/session"
)

var ErrSessionNotFound = errors.New("session not found")

// Service tracks the live sessions of this process.
type Service struct {
	welcome string

	mu       sync.RWMutex
	sessions map[string]*session.State
}

// NewService bootstraps an in-memory registry. Every new session log is seeded
// with welcome.
func NewService(welcome string) *Service {
	return &Service{
		welcome:  welcome,
		sessions: make(map[string]*session.State),
	}
}

// CreateSession starts a new session with the default mode selection.
func (s *Service) CreateSession(_ context.Context) (*session.State, error) {
	state := session.NewState(uuid.NewString(), s.welcome)

	s.mu.Lock()
	s.sessions[state.ID()] = state
	s.mu.Unlock()

	return state, nil
}

// GetSession retrieves a session by identifier.
func (s *Service) GetSession(_ context.Context, sessionID string) (*session.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return state, nil
}

// EndSession discards a session and everything it holds.
func (s *Service) EndSession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, sessionID)
	return nil
}

// LoadTranscript returns the logged messages for the provided session.
func (s *Service) LoadTranscript(ctx context.Context, sessionID string) ([]chat.Message, error) {
	state, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return state.Messages(), nil
}

// Count reports the number of live sessions.
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
