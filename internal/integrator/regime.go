package integrator

import "github.com/credence-sim/credence/internal/domain"

const (
	// DefaultLockedPrecision is the pathologically high prior precision the
	// locked regime installs.
	DefaultLockedPrecision = 10000.0

	// DefaultLockedStepSize keeps explicit Euler integration inside the
	// stability bound once the prior precision is locked high.
	DefaultLockedStepSize = 5e-5

	// DefaultRelaxedStepSize is the restored step size after relaxation.
	DefaultRelaxedStepSize = 0.01

	// DefaultSensoryGain is the multiplier applied to the base sensory
	// precision during relaxation.
	DefaultSensoryGain = 5.0
)

// InduceHighPrecisionRegime sets the prior precision to targetPrecision
// (values <= 0 select DefaultLockedPrecision) and shrinks the step size to
// DefaultLockedStepSize. High precision makes the gradient stiff, so the small
// step size must accompany it or the scheme diverges. Re-invoking with the
// same target reproduces the same state.
func (it *Integrator) InduceHighPrecisionRegime(targetPrecision float64) {
	if targetPrecision <= 0 {
		targetPrecision = DefaultLockedPrecision
	}
	it.params.PriorPrecision = targetPrecision
	it.params.StepSize = DefaultLockedStepSize
	it.regime = domain.RegimeLocked
}

// Relaxation describes a RelaxRegime request. TargetPriorPrecision wins when
// positive; otherwise the base prior precision is divided by PriorDivisor.
// Zero-valued fields fall back to the defaults above.
type Relaxation struct {
	TargetPriorPrecision float64 `json:"target_prior_precision,omitempty"`
	PriorDivisor         float64 `json:"prior_divisor,omitempty"`
	SensoryGain          float64 `json:"sensory_gain,omitempty"`
	StepSize             float64 `json:"step_size,omitempty"`
}

// RelaxRegime is the inverse of InduceHighPrecisionRegime: it weakens the
// prior pull, boosts sensory gain, and restores a numerically safe step size
// so that subsequent updates track observations instead of the prior mean.
func (it *Integrator) RelaxRegime(r Relaxation) {
	switch {
	case r.TargetPriorPrecision > 0:
		it.params.PriorPrecision = r.TargetPriorPrecision
	case r.PriorDivisor > 0:
		it.params.PriorPrecision = it.basePriorPrecision / r.PriorDivisor
	default:
		it.params.PriorPrecision = it.basePriorPrecision
	}

	gain := r.SensoryGain
	if gain <= 0 {
		gain = DefaultSensoryGain
	}
	it.params.SensoryPrecision = it.baseSensoryPrecision * gain

	step := r.StepSize
	if step <= 0 {
		step = DefaultRelaxedStepSize
	}
	it.params.StepSize = step

	it.regime = domain.RegimeRelaxed
}
