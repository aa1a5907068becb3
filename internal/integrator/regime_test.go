package integrator

import (
	"math"
	"testing"

	"github.com/credence-sim/credence/internal/domain"
)

func baselineIntegrator(t *testing.T) *Integrator {
	t.Helper()
	it, err := New(Config{Params: domain.Parameters{
		PriorMean:        0.9,
		PriorPrecision:   10,
		SensoryPrecision: 2,
		StepSize:         0.01,
	}})
	if err != nil {
		t.Fatal(err)
	}
	return it
}

func TestInduceHighPrecisionRegime(t *testing.T) {
	it := baselineIntegrator(t)

	it.InduceHighPrecisionRegime(0)

	p := it.Params()
	if p.PriorPrecision != DefaultLockedPrecision {
		t.Fatalf("prior precision = %v, want %v", p.PriorPrecision, DefaultLockedPrecision)
	}
	if p.StepSize != DefaultLockedStepSize {
		t.Fatalf("step size = %v, want %v", p.StepSize, DefaultLockedStepSize)
	}
	if it.Regime() != domain.RegimeLocked {
		t.Fatalf("regime = %v, want locked", it.Regime())
	}
	if !it.Stable() {
		t.Fatalf("locked regime must remain stable, product = %v", it.StabilityProduct())
	}
}

func TestInduceHighPrecisionRegimeIdempotent(t *testing.T) {
	a := baselineIntegrator(t)
	b := baselineIntegrator(t)

	a.InduceHighPrecisionRegime(10000)
	b.InduceHighPrecisionRegime(10000)
	b.InduceHighPrecisionRegime(10000)

	if a.Params() != b.Params() {
		t.Fatalf("re-invocation changed state: %+v vs %+v", a.Params(), b.Params())
	}
}

func TestRelaxRegimeDivisor(t *testing.T) {
	it := baselineIntegrator(t)
	it.InduceHighPrecisionRegime(0)

	// Base prior precision 10 divided by 500, base sensory 2 times 5.
	it.RelaxRegime(Relaxation{PriorDivisor: 500, SensoryGain: 5})

	p := it.Params()
	if p.PriorPrecision != 0.02 {
		t.Fatalf("prior precision = %v, want 0.02", p.PriorPrecision)
	}
	if p.SensoryPrecision != 10 {
		t.Fatalf("sensory precision = %v, want 10", p.SensoryPrecision)
	}
	if p.StepSize != DefaultRelaxedStepSize {
		t.Fatalf("step size = %v, want %v", p.StepSize, DefaultRelaxedStepSize)
	}
	if it.Regime() != domain.RegimeRelaxed {
		t.Fatalf("regime = %v, want relaxed", it.Regime())
	}
}

func TestRelaxRegimeTargetWinsOverDivisor(t *testing.T) {
	it := baselineIntegrator(t)
	it.RelaxRegime(Relaxation{TargetPriorPrecision: 1, PriorDivisor: 500, SensoryGain: 2.5, StepSize: 0.02})

	p := it.Params()
	if p.PriorPrecision != 1 {
		t.Fatalf("prior precision = %v, want 1", p.PriorPrecision)
	}
	if p.SensoryPrecision != 5 {
		t.Fatalf("sensory precision = %v, want 5", p.SensoryPrecision)
	}
	if p.StepSize != 0.02 {
		t.Fatalf("step size = %v, want 0.02", p.StepSize)
	}
}

func TestAnnealingRecovery(t *testing.T) {
	// Lock the belief against a contradicting observation, then relax and
	// watch it track the observation.
	it := baselineIntegrator(t)
	it.InduceHighPrecisionRegime(0)
	it.Update(0.0, 5000)

	locked := it.Belief()
	if math.Abs(locked-0.9) > 0.001 {
		t.Fatalf("locked belief %v strayed from prior mean", locked)
	}

	it.RelaxRegime(Relaxation{PriorDivisor: 500, SensoryGain: 5})
	if !it.Stable() {
		t.Fatalf("relaxed parameters must be stable, product = %v", it.StabilityProduct())
	}

	prev := it.Belief()
	for i := 0; i < 5000; i++ {
		b := it.Update(0.0, 1)
		if b > prev+1e-12 {
			t.Fatalf("belief not monotone toward observation at step %d: %v -> %v", i, prev, b)
		}
		prev = b
	}

	if math.Abs(it.Belief()) > 0.01 {
		t.Fatalf("relaxed belief %v did not reach observation 0.0", it.Belief())
	}
}

func TestRelaxToComparablePrecisionConvergesToFixedPoint(t *testing.T) {
	// The explicit-target variant: prior precision 1, sensory 5. The fixed
	// point for observation 0 is 0.9/6 = 0.15, not 0; the belief must land
	// there, not at the observation itself.
	it := baselineIntegrator(t)
	it.InduceHighPrecisionRegime(0)
	it.Update(0.0, 1000)

	it.RelaxRegime(Relaxation{TargetPriorPrecision: 1, SensoryGain: 2.5, StepSize: 0.01})
	it.Update(0.0, 5000)

	want := it.FixedPoint(0.0)
	if math.Abs(want-0.15) > 1e-6 {
		t.Fatalf("fixed point = %v, want 0.15", want)
	}
	if math.Abs(it.Belief()-want) > 1e-6 {
		t.Fatalf("belief = %v, want fixed point %v", it.Belief(), want)
	}
}
