package models

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrCodeTaken       = errors.New("session code already in use")
	ErrInvalidCode     = errors.New("session code must be 6 digits")
)

// SessionState is the onboarding wizard progress a student can save and
// resume later with a 6-digit code.
type SessionState struct {
	Code           string    `json:"code" validate:"omitempty,len=6,numeric"`
	Persona        Persona   `json:"persona" validate:"omitempty,oneof=commuter resident"`
	Major          string    `json:"major,omitempty" validate:"max=120"`
	ClassYear      string    `json:"classYear,omitempty" validate:"omitempty,oneof=freshman sophomore junior senior graduate"`
	Interests      []string  `json:"interests,omitempty" validate:"max=30,dive,max=60"`
	CurrentStep    int       `json:"currentStep" validate:"min=0,max=50"`
	CompletedSteps []string  `json:"completedSteps,omitempty" validate:"max=50"`
	Points         int       `json:"points" validate:"min=0"`
	Favorites      []string  `json:"favorites,omitempty" validate:"max=200"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// SessionStore persists onboarding state keyed by its code.
type SessionStore interface {
	// Create stores state under a new code and fails with ErrCodeTaken if
	// the code is already in use.
	Create(ctx context.Context, state *SessionState, ttl time.Duration) error
	Put(ctx context.Context, state *SessionState, ttl time.Duration) error
	Get(ctx context.Context, code string) (*SessionState, error)
	Delete(ctx context.Context, code string) error
}

type memorySession struct {
	state   SessionState
	expires time.Time
}

// MemorySessionStore keeps sessions in process memory. Used when no Redis
// instance is configured and in tests.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]memorySession
	now      func() time.Time
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]memorySession),
		now:      time.Now,
	}
}

func (m *MemorySessionStore) Create(ctx context.Context, state *SessionState, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[state.Code]; ok && m.now().Before(s.expires) {
		return ErrCodeTaken
	}
	m.sessions[state.Code] = memorySession{state: cloneSession(state), expires: m.now().Add(ttl)}
	return nil
}

func (m *MemorySessionStore) Put(ctx context.Context, state *SessionState, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[state.Code] = memorySession{state: cloneSession(state), expires: m.now().Add(ttl)}
	return nil
}

func (m *MemorySessionStore) Get(ctx context.Context, code string) (*SessionState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[code]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if !m.now().Before(s.expires) {
		delete(m.sessions, code)
		return nil, ErrSessionNotFound
	}
	out := cloneSession(&s.state)
	return &out, nil
}

func (m *MemorySessionStore) Delete(ctx context.Context, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[code]; !ok {
		return ErrSessionNotFound
	}
	delete(m.sessions, code)
	return nil
}

func cloneSession(s *SessionState) SessionState {
	out := *s
	out.Interests = append([]string(nil), s.Interests...)
	out.CompletedSteps = append([]string(nil), s.CompletedSteps...)
	out.Favorites = append([]string(nil), s.Favorites...)
	return out
}
