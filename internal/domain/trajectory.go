package domain

// TrajectoryPoint records the integrator state after one integration step.
type TrajectoryPoint struct {
	Step             int     `json:"step"`
	Observation      float64 `json:"observation"`
	Belief           float64 `json:"belief"`
	Gradient         float64 `json:"gradient"`
	PriorPrecision   float64 `json:"prior_precision"`
	SensoryPrecision float64 `json:"sensory_precision"`
	StepSize         float64 `json:"step_size"`
	Regime           Regime  `json:"regime"`
}

// TrajectorySink consumes a sequence of recorded integrator states. Console
// progress lines, CSV export and chart rendering all sit behind this; the
// integrator itself never depends on any of them being present.
type TrajectorySink interface {
	Write(points []TrajectoryPoint) error
}
