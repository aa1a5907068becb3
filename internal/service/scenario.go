package service

import (
	"context"
	"math"

	"github.com/credence-sim/credence/internal/domain"
	"github.com/credence-sim/credence/internal/integrator"
	"go.uber.org/zap"
)

// Scenario defaults describe the canonical demonstration: an agent whose
// prior says "threat" (0.9) exposed to a constant safety signal (0.0), first
// under the locked regime, then after relaxation.
const (
	DefaultScenarioPriorMean        = 0.9
	DefaultScenarioPriorPrecision   = 10.0
	DefaultScenarioSensoryPrecision = 2.0
	DefaultScenarioStepSize         = 0.01
	DefaultScenarioObservation      = 0.0
	DefaultScenarioPhaseSteps       = 5000
	DefaultScenarioPriorDivisor     = 500.0
)

// ScenarioRequest configures a two-phase run. The pointer fields distinguish
// an explicit zero (valid per the model) from an absent value, which selects
// the defaults above. Observation needs no default: 0.0 is the canonical
// safety signal. Bounds enables clamping for both phases.
type ScenarioRequest struct {
	PriorMean        *float64              `json:"prior_mean,omitempty"`
	PriorPrecision   *float64              `json:"prior_precision,omitempty"`
	SensoryPrecision *float64              `json:"sensory_precision,omitempty"`
	StepSize         float64               `json:"step_size"`
	Observation      float64               `json:"observation"`
	LockedPrecision  float64               `json:"locked_precision"`
	PhaseSteps       int                   `json:"phase_steps"`
	Relaxation       integrator.Relaxation `json:"relaxation"`
	Bounds           *domain.Bounds        `json:"bounds,omitempty"`
}

// PhaseResult summarizes one phase of a scenario.
type PhaseResult struct {
	Regime           domain.Regime     `json:"regime"`
	Params           domain.Parameters `json:"params"`
	Steps            int               `json:"steps"`
	FinalBelief      float64           `json:"final_belief"`
	FixedPoint       float64           `json:"fixed_point"`
	DistanceToPrior  float64           `json:"distance_to_prior"`
	DistanceToSignal float64           `json:"distance_to_signal"`
	Stable           bool              `json:"stable"`
}

// ScenarioResult is the full outcome of a two-phase run.
type ScenarioResult struct {
	Observation float64     `json:"observation"`
	Locked      PhaseResult `json:"locked"`
	Relaxed     PhaseResult `json:"relaxed"`
	Recovered   bool        `json:"recovered"`
}

// ScenarioService runs the canned lock-then-relax demonstration against a
// fresh integrator and streams the trajectory to any configured sinks.
type ScenarioService struct {
	logger *zap.Logger
	sinks  []domain.TrajectorySink
}

func NewScenarioService(logger *zap.Logger, sinks ...domain.TrajectorySink) *ScenarioService {
	return &ScenarioService{logger: logger, sinks: sinks}
}

// Run executes both phases. The integrator is created, driven and discarded
// inside the call; nothing is registered in the agent store.
func (s *ScenarioService) Run(ctx context.Context, req ScenarioRequest) (*ScenarioResult, error) {
	applyScenarioDefaults(&req)

	it, err := integrator.New(integrator.Config{
		Params: domain.Parameters{
			PriorMean:        orDefault(req.PriorMean, DefaultScenarioPriorMean),
			PriorPrecision:   orDefault(req.PriorPrecision, DefaultScenarioPriorPrecision),
			SensoryPrecision: orDefault(req.SensoryPrecision, DefaultScenarioSensoryPrecision),
			StepSize:         req.StepSize,
		},
		Bounds:   req.Bounds,
		Capacity: 2 * req.PhaseSteps,
	})
	if err != nil {
		return nil, err
	}

	// Phase 1: exposure without relaxation. The belief stays anchored.
	it.InduceHighPrecisionRegime(req.LockedPrecision)
	it.Update(req.Observation, req.PhaseSteps)
	locked := s.phase(it, req)

	s.logger.Info("scenario phase complete",
		zap.String("regime", string(locked.Regime)),
		zap.Float64("belief", locked.FinalBelief),
		zap.Float64("distance_to_prior", locked.DistanceToPrior))

	// Phase 2: relax and expose again. The belief tracks the observation.
	it.RelaxRegime(req.Relaxation)
	it.Update(req.Observation, req.PhaseSteps)
	relaxed := s.phase(it, req)

	s.logger.Info("scenario phase complete",
		zap.String("regime", string(relaxed.Regime)),
		zap.Float64("belief", relaxed.FinalBelief),
		zap.Float64("distance_to_signal", relaxed.DistanceToSignal))

	if err := s.emit(it.Trajectory()); err != nil {
		return nil, err
	}

	return &ScenarioResult{
		Observation: req.Observation,
		Locked:      locked,
		Relaxed:     relaxed,
		Recovered:   relaxed.DistanceToSignal < locked.DistanceToSignal,
	}, nil
}

func (s *ScenarioService) phase(it *integrator.Integrator, req ScenarioRequest) PhaseResult {
	// PriorMean never changes across regimes, so the integrator's own copy is
	// the resolved value whether or not the request supplied one.
	return PhaseResult{
		Regime:           it.Regime(),
		Params:           it.Params(),
		Steps:            it.Steps(),
		FinalBelief:      it.Belief(),
		FixedPoint:       it.FixedPoint(req.Observation),
		DistanceToPrior:  math.Abs(it.Belief() - it.Params().PriorMean),
		DistanceToSignal: math.Abs(it.Belief() - req.Observation),
		Stable:           it.Stable(),
	}
}

func (s *ScenarioService) emit(points []domain.TrajectoryPoint) error {
	for _, sink := range s.sinks {
		if err := sink.Write(points); err != nil {
			return err
		}
	}
	return nil
}

func applyScenarioDefaults(req *ScenarioRequest) {
	// Step size 0 is invalid anyway, so a zero value can only mean "default".
	if req.StepSize == 0 {
		req.StepSize = DefaultScenarioStepSize
	}
	if req.PhaseSteps <= 0 {
		req.PhaseSteps = DefaultScenarioPhaseSteps
	}
	if req.Relaxation == (integrator.Relaxation{}) {
		req.Relaxation = integrator.Relaxation{PriorDivisor: DefaultScenarioPriorDivisor}
	}
}

func orDefault(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
