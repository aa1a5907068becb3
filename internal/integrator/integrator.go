package integrator

import (
	"errors"
	"fmt"

	"github.com/credence-sim/credence/internal/domain"
)

var (
	// ErrInvalidParameter rejects construction with a non-positive step size,
	// a negative precision, or inverted bounds.
	ErrInvalidParameter = errors.New("invalid integrator parameter")

	// ErrNoObservation is returned by UpdateRecorded when no observation has
	// been recorded yet.
	ErrNoObservation = errors.New("no observation recorded")
)

// Config describes a new integrator. Bounds is optional; when nil the belief
// is unbounded and divergence under unstable parameters is left visible.
type Config struct {
	Params domain.Parameters
	Bounds *domain.Bounds

	// Capacity preallocates the trajectory log. Zero is fine.
	Capacity int
}

// Integrator advances a scalar belief by explicit Euler integration of the
// free-energy gradient
//
//	gradient = sensoryPrecision*(obs - belief) - priorPrecision*(belief - priorMean)
//	belief  += stepSize * gradient
//
// This is the single-weighted convention (no factor of 2); the precisions in
// Parameters are therefore the effective gradient weights. The scheme
// converges to the precision-weighted fixed point only while
// stepSize*(priorPrecision+sensoryPrecision) < 2.
type Integrator struct {
	belief float64
	params domain.Parameters
	bounds *domain.Bounds
	regime domain.Regime

	// Construction-time precisions, kept so relaxation can derive its target
	// from the base rather than from whatever the locked regime set.
	basePriorPrecision   float64
	baseSensoryPrecision float64

	observation    float64
	hasObservation bool

	steps      int
	trajectory []domain.TrajectoryPoint
}

// New validates the configuration and returns an integrator with belief
// initialized to the prior mean. No state is mutated before validation passes.
func New(cfg Config) (*Integrator, error) {
	p := cfg.Params
	if p.StepSize <= 0 {
		return nil, fmt.Errorf("%w: step_size %v must be > 0", ErrInvalidParameter, p.StepSize)
	}
	if p.PriorPrecision < 0 {
		return nil, fmt.Errorf("%w: prior_precision %v must be >= 0", ErrInvalidParameter, p.PriorPrecision)
	}
	if p.SensoryPrecision < 0 {
		return nil, fmt.Errorf("%w: sensory_precision %v must be >= 0", ErrInvalidParameter, p.SensoryPrecision)
	}
	if cfg.Bounds != nil && cfg.Bounds.Min > cfg.Bounds.Max {
		return nil, fmt.Errorf("%w: bounds [%v, %v] inverted", ErrInvalidParameter, cfg.Bounds.Min, cfg.Bounds.Max)
	}

	var bounds *domain.Bounds
	if cfg.Bounds != nil {
		b := *cfg.Bounds
		bounds = &b
	}

	return &Integrator{
		belief:               p.PriorMean,
		params:               p,
		bounds:               bounds,
		regime:               domain.RegimeBaseline,
		basePriorPrecision:   p.PriorPrecision,
		baseSensoryPrecision: p.SensoryPrecision,
		trajectory:           make([]domain.TrajectoryPoint, 0, cfg.Capacity),
	}, nil
}

// Update advances the belief by the given number of Euler steps against a
// constant observation and returns the result. steps below 1 means one step.
// One trajectory point is appended per integration step.
func (it *Integrator) Update(observation float64, steps int) float64 {
	if steps < 1 {
		steps = 1
	}
	for i := 0; i < steps; i++ {
		sensoryError := observation - it.belief
		priorError := it.belief - it.params.PriorMean
		gradient := it.params.SensoryPrecision*sensoryError - it.params.PriorPrecision*priorError

		it.belief += it.params.StepSize * gradient
		if it.bounds != nil {
			it.belief = it.bounds.Clamp(it.belief)
		}

		it.steps++
		it.trajectory = append(it.trajectory, domain.TrajectoryPoint{
			Step:             it.steps,
			Observation:      observation,
			Belief:           it.belief,
			Gradient:         gradient,
			PriorPrecision:   it.params.PriorPrecision,
			SensoryPrecision: it.params.SensoryPrecision,
			StepSize:         it.params.StepSize,
			Regime:           it.regime,
		})
	}
	return it.belief
}

// RecordObservation stores the latest observation for a later UpdateRecorded
// call. Pure side effect, no computation.
func (it *Integrator) RecordObservation(v float64) {
	it.observation = v
	it.hasObservation = true
}

// UpdateRecorded advances the belief against the last recorded observation.
func (it *Integrator) UpdateRecorded(steps int) (float64, error) {
	if !it.hasObservation {
		return it.belief, ErrNoObservation
	}
	return it.Update(it.observation, steps), nil
}

// LastObservation returns the most recently recorded observation.
func (it *Integrator) LastObservation() (float64, bool) {
	return it.observation, it.hasObservation
}

// Belief returns the current belief.
func (it *Integrator) Belief() float64 { return it.belief }

// Params returns the current parameter snapshot.
func (it *Integrator) Params() domain.Parameters { return it.params }

// Bounds returns a copy of the clamp interval, or nil when unbounded.
func (it *Integrator) Bounds() *domain.Bounds {
	if it.bounds == nil {
		return nil
	}
	b := *it.bounds
	return &b
}

// Regime returns the current regime label.
func (it *Integrator) Regime() domain.Regime { return it.regime }

// Steps returns the total number of integration steps performed.
func (it *Integrator) Steps() int { return it.steps }

// Trajectory returns a copy of the recorded trajectory.
func (it *Integrator) Trajectory() []domain.TrajectoryPoint {
	out := make([]domain.TrajectoryPoint, len(it.trajectory))
	copy(out, it.trajectory)
	return out
}

// FixedPoint returns the equilibrium belief for a constant observation under
// the current parameters.
func (it *Integrator) FixedPoint(observation float64) float64 {
	return it.params.FixedPoint(observation)
}

// StabilityProduct returns stepSize*(priorPrecision+sensoryPrecision).
func (it *Integrator) StabilityProduct() float64 {
	return it.params.StabilityProduct()
}

// Stable reports whether the current parameters satisfy the Euler bound.
func (it *Integrator) Stable() bool { return it.params.Stable() }
