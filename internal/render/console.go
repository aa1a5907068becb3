package render

import (
	"fmt"
	"io"

	"github.com/credence-sim/credence/internal/domain"
)

// ConsoleSink prints one progress line per recorded point, optionally
// thinned to every Nth step so long runs stay readable.
type ConsoleSink struct {
	w     io.Writer
	every int
}

// NewConsoleSink writes to w. every <= 1 prints every point.
func NewConsoleSink(w io.Writer, every int) *ConsoleSink {
	if every < 1 {
		every = 1
	}
	return &ConsoleSink{w: w, every: every}
}

func (c *ConsoleSink) Write(points []domain.TrajectoryPoint) error {
	for i, pt := range points {
		if i%c.every != 0 && i != len(points)-1 {
			continue
		}
		_, err := fmt.Fprintf(c.w, "step %d [%s]: obs=%.3f belief=%.6f\n",
			pt.Step, pt.Regime, pt.Observation, pt.Belief)
		if err != nil {
			return err
		}
	}
	return nil
}
