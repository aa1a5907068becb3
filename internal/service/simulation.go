package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/credence-sim/credence/internal/domain"
	"github.com/credence-sim/credence/internal/integrator"
	"github.com/credence-sim/credence/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// DefaultMaxStepsPerRequest bounds a single update call. Divergent
	// parameter choices are allowed; unbounded loops are not.
	DefaultMaxStepsPerRequest = 100000
)

var (
	ErrAgentNotFound  = errors.New("agent not found")
	ErrNoObservation  = errors.New("no observation recorded for agent")
	ErrTooManySteps   = errors.New("step count exceeds per-request limit")
	ErrAgentNameEmpty = errors.New("agent name is required")
)

// agentRuntime pairs a live integrator with the mutex that serializes all
// access to it. The integrator itself is not goroutine safe; every operation
// holds mu across the mutation and the store snapshot so concurrent requests
// on one agent observe a consistent ordering.
type agentRuntime struct {
	mu sync.Mutex
	it *integrator.Integrator
}

// SimulationService owns the agent registry: metadata in the store, live
// integrators in a runtime map keyed by the same IDs.
type SimulationService struct {
	agents *store.AgentStore
	logger *zap.Logger

	mu       sync.RWMutex
	runtimes map[uuid.UUID]*agentRuntime

	maxSteps int
}

func NewSimulationService(agents *store.AgentStore, logger *zap.Logger) *SimulationService {
	return &SimulationService{
		agents:   agents,
		logger:   logger,
		runtimes: make(map[uuid.UUID]*agentRuntime),
		maxSteps: DefaultMaxStepsPerRequest,
	}
}

func (s *SimulationService) SetMaxSteps(n int) {
	if n > 0 {
		s.maxSteps = n
	}
}

// CreateAgent validates parameters by constructing the integrator, then
// registers the agent. Validation failures surface before any state exists.
func (s *SimulationService) CreateAgent(ctx context.Context, name string, params domain.Parameters, bounds *domain.Bounds, metadata map[string]any) (*domain.Agent, error) {
	if name == "" {
		return nil, ErrAgentNameEmpty
	}

	it, err := integrator.New(integrator.Config{Params: params, Bounds: bounds})
	if err != nil {
		return nil, err
	}

	agent := &domain.Agent{
		Name:     name,
		Params:   params,
		Bounds:   bounds,
		Regime:   domain.RegimeBaseline,
		Belief:   it.Belief(),
		Metadata: metadata,
	}
	if err := s.agents.Create(ctx, agent); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.runtimes[agent.ID] = &agentRuntime{it: it}
	s.mu.Unlock()

	s.logger.Info("agent created",
		zap.String("agent_id", agent.ID.String()),
		zap.String("name", name),
		zap.Float64("prior_mean", params.PriorMean),
		zap.Float64("prior_precision", params.PriorPrecision),
		zap.Float64("sensory_precision", params.SensoryPrecision),
		zap.Float64("step_size", params.StepSize))

	return agent, nil
}

func (s *SimulationService) GetAgent(ctx context.Context, id uuid.UUID) (*domain.Agent, error) {
	agent, err := s.agents.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrAgentNotFound
		}
		return nil, err
	}
	return agent, nil
}

func (s *SimulationService) ListAgents(ctx context.Context) ([]domain.Agent, error) {
	return s.agents.List(ctx)
}

func (s *SimulationService) DeleteAgent(ctx context.Context, id uuid.UUID) error {
	if err := s.agents.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrAgentNotFound
		}
		return err
	}

	s.mu.Lock()
	delete(s.runtimes, id)
	s.mu.Unlock()

	s.logger.Info("agent deleted", zap.String("agent_id", id.String()))
	return nil
}

// Observe records the latest observation for the agent without integrating.
func (s *SimulationService) Observe(ctx context.Context, id uuid.UUID, value float64) error {
	rt, err := s.runtime(id)
	if err != nil {
		return err
	}

	rt.mu.Lock()
	defer rt.mu.Unlock()

	rt.it.RecordObservation(value)
	return s.agents.Touch(ctx, id)
}

// UpdateResult reports the outcome of an update call.
type UpdateResult struct {
	Belief           float64 `json:"belief"`
	Steps            int     `json:"steps"`
	FixedPoint       float64 `json:"fixed_point"`
	StabilityProduct float64 `json:"stability_product"`
	Stable           bool    `json:"stable"`
}

// UpdateBelief advances the agent's belief. When observation is nil the last
// recorded observation is used.
func (s *SimulationService) UpdateBelief(ctx context.Context, id uuid.UUID, observation *float64, steps int) (*UpdateResult, error) {
	if steps > s.maxSteps {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManySteps, steps, s.maxSteps)
	}

	rt, err := s.runtime(id)
	if err != nil {
		return nil, err
	}

	rt.mu.Lock()
	defer rt.mu.Unlock()

	var obs float64
	if observation != nil {
		obs = *observation
	} else {
		recorded, ok := rt.it.LastObservation()
		if !ok {
			return nil, ErrNoObservation
		}
		obs = recorded
	}
	rt.it.Update(obs, steps)

	if err := s.snapshot(ctx, id, rt.it); err != nil {
		return nil, err
	}

	s.logger.Debug("belief updated",
		zap.String("agent_id", id.String()),
		zap.Float64("observation", obs),
		zap.Int("steps", steps),
		zap.Float64("belief", rt.it.Belief()))

	return s.result(rt.it, obs), nil
}

// InduceLock switches the agent into the high-prior-precision regime.
// targetPrecision <= 0 selects the default.
func (s *SimulationService) InduceLock(ctx context.Context, id uuid.UUID, targetPrecision float64) (*domain.Agent, error) {
	rt, err := s.runtime(id)
	if err != nil {
		return nil, err
	}

	rt.mu.Lock()
	defer rt.mu.Unlock()

	rt.it.InduceHighPrecisionRegime(targetPrecision)
	if err := s.snapshot(ctx, id, rt.it); err != nil {
		return nil, err
	}

	p := rt.it.Params()
	s.logger.Info("high precision regime induced",
		zap.String("agent_id", id.String()),
		zap.Float64("prior_precision", p.PriorPrecision),
		zap.Float64("step_size", p.StepSize))

	return s.GetAgent(ctx, id)
}

// Relax applies the inverse regime change.
func (s *SimulationService) Relax(ctx context.Context, id uuid.UUID, r integrator.Relaxation) (*domain.Agent, error) {
	rt, err := s.runtime(id)
	if err != nil {
		return nil, err
	}

	rt.mu.Lock()
	defer rt.mu.Unlock()

	rt.it.RelaxRegime(r)
	if err := s.snapshot(ctx, id, rt.it); err != nil {
		return nil, err
	}

	p := rt.it.Params()
	s.logger.Info("regime relaxed",
		zap.String("agent_id", id.String()),
		zap.Float64("prior_precision", p.PriorPrecision),
		zap.Float64("sensory_precision", p.SensoryPrecision),
		zap.Float64("step_size", p.StepSize),
		zap.Bool("stable", rt.it.Stable()))

	return s.GetAgent(ctx, id)
}

// Trajectory returns up to limit most recent points (limit <= 0 means all).
func (s *SimulationService) Trajectory(ctx context.Context, id uuid.UUID, limit int) ([]domain.TrajectoryPoint, error) {
	rt, err := s.runtime(id)
	if err != nil {
		return nil, err
	}

	rt.mu.Lock()
	points := rt.it.Trajectory()
	rt.mu.Unlock()

	if limit > 0 && len(points) > limit {
		points = points[len(points)-limit:]
	}
	return points, nil
}

// StabilityReport exposes the Euler stability bound for an agent.
type StabilityReport struct {
	Params           domain.Parameters `json:"params"`
	StabilityProduct float64           `json:"stability_product"`
	Stable           bool              `json:"stable"`
}

func (s *SimulationService) Stability(ctx context.Context, id uuid.UUID) (*StabilityReport, error) {
	rt, err := s.runtime(id)
	if err != nil {
		return nil, err
	}

	rt.mu.Lock()
	defer rt.mu.Unlock()

	return &StabilityReport{
		Params:           rt.it.Params(),
		StabilityProduct: rt.it.StabilityProduct(),
		Stable:           rt.it.Stable(),
	}, nil
}

func (s *SimulationService) runtime(id uuid.UUID) (*agentRuntime, error) {
	s.mu.RLock()
	rt, ok := s.runtimes[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrAgentNotFound
	}
	return rt, nil
}

func (s *SimulationService) snapshot(ctx context.Context, id uuid.UUID, it *integrator.Integrator) error {
	err := s.agents.UpdateSnapshot(ctx, id, it.Params(), it.Regime(), it.Belief(), it.Steps())
	if errors.Is(err, store.ErrNotFound) {
		return ErrAgentNotFound
	}
	return err
}

func (s *SimulationService) result(it *integrator.Integrator, obs float64) *UpdateResult {
	return &UpdateResult{
		Belief:           it.Belief(),
		Steps:            it.Steps(),
		FixedPoint:       it.FixedPoint(obs),
		StabilityProduct: it.StabilityProduct(),
		Stable:           it.Stable(),
	}
}

// EvictIdle removes agents idle since before the cutoff, keeping the runtime
// map in step with the store. Used by the expirer.
func (s *SimulationService) EvictIdle(ctx context.Context, cutoff time.Time) (int, error) {
	removed, err := s.agents.DeleteIdle(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	for _, id := range removed {
		delete(s.runtimes, id)
	}
	s.mu.Unlock()

	return len(removed), nil
}
