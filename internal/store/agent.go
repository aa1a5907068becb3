package store

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/credence-sim/credence/internal/domain"
	"github.com/google/uuid"
)

// ErrNotFound is returned when a lookup matches no agent.
var ErrNotFound = errors.New("not found")

// AgentStore keeps agent records in memory. The simulation has no persisted
// state; agents live for the duration of the process and are evicted when
// idle.
type AgentStore struct {
	mu     sync.RWMutex
	agents map[uuid.UUID]*domain.Agent
}

func NewAgentStore() *AgentStore {
	return &AgentStore{agents: make(map[uuid.UUID]*domain.Agent)}
}

func (s *AgentStore) Create(ctx context.Context, a *domain.Agent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	a.LastActiveAt = now

	cp := *a
	s.agents[a.ID] = &cp
	return nil
}

func (s *AgentStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.agents[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *AgentStore) List(ctx context.Context) ([]domain.Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Agent, 0, len(s.agents))
	for _, a := range s.agents {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *AgentStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.agents[id]; !ok {
		return ErrNotFound
	}
	delete(s.agents, id)
	return nil
}

// UpdateSnapshot refreshes the mutable fields the service mirrors out of the
// integrator after each operation.
func (s *AgentStore) UpdateSnapshot(ctx context.Context, id uuid.UUID, params domain.Parameters, regime domain.Regime, belief float64, steps int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.agents[id]
	if !ok {
		return ErrNotFound
	}
	now := time.Now().UTC()
	a.Params = params
	a.Regime = regime
	a.Belief = belief
	a.Steps = steps
	a.UpdatedAt = now
	a.LastActiveAt = now
	return nil
}

// Touch marks the agent active without changing its snapshot.
func (s *AgentStore) Touch(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.agents[id]
	if !ok {
		return ErrNotFound
	}
	a.LastActiveAt = time.Now().UTC()
	return nil
}

// DeleteIdle removes agents whose last activity predates the cutoff and
// returns their IDs.
func (s *AgentStore) DeleteIdle(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed []uuid.UUID
	for id, a := range s.agents {
		if a.LastActiveAt.Before(cutoff) {
			delete(s.agents, id)
			removed = append(removed, id)
		}
	}
	return removed, nil
}
