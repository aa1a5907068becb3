package domain

// Parameters holds the generative-model parameters of a belief integrator.
// PriorMean is fixed after construction; the precisions and step size are
// mutated by regime operations.
type Parameters struct {
	PriorMean        float64 `json:"prior_mean"`
	PriorPrecision   float64 `json:"prior_precision"`
	SensoryPrecision float64 `json:"sensory_precision"`
	StepSize         float64 `json:"step_size"`
}

// StabilityProduct returns step_size * (prior_precision + sensory_precision).
// The explicit Euler scheme converges only while this stays below 2; regime
// changes that push it past the bound produce oscillation or divergence.
func (p Parameters) StabilityProduct() float64 {
	return p.StepSize * (p.PriorPrecision + p.SensoryPrecision)
}

// Stable reports whether the parameters satisfy the Euler stability bound.
func (p Parameters) Stable() bool {
	return p.StabilityProduct() < 2
}

// FixedPoint returns the equilibrium belief for a constant observation:
// the precision-weighted average of observation and prior mean.
func (p Parameters) FixedPoint(observation float64) float64 {
	total := p.SensoryPrecision + p.PriorPrecision
	if total == 0 {
		return p.PriorMean
	}
	return (p.SensoryPrecision*observation + p.PriorPrecision*p.PriorMean) / total
}

// Bounds is an optional closed interval the belief is clamped to after each
// integration step. Clamping is off by default; the belief represents a
// probability-like estimate, so [0, 1] is the usual choice when enabled.
type Bounds struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Clamp returns v restricted to the interval.
func (b Bounds) Clamp(v float64) float64 {
	if v < b.Min {
		return b.Min
	}
	if v > b.Max {
		return b.Max
	}
	return v
}
