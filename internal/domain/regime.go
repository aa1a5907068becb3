package domain

// Regime names a qualitative configuration of precisions and step size.
type Regime string

const (
	// RegimeBaseline is the construction-time configuration.
	RegimeBaseline Regime = "baseline"
	// RegimeLocked is the high-prior-precision configuration: the belief is
	// anchored to the prior mean and barely responds to observations.
	RegimeLocked Regime = "locked"
	// RegimeRelaxed is the configuration after relaxation: weak prior pull,
	// boosted sensory gain, restored step size.
	RegimeRelaxed Regime = "relaxed"
)
