package render

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/credence-sim/credence/internal/domain"
)

// CSVSink writes trajectory points as CSV rows with a header.
type CSVSink struct {
	w io.Writer
}

func NewCSVSink(w io.Writer) *CSVSink {
	return &CSVSink{w: w}
}

func (c *CSVSink) Write(points []domain.TrajectoryPoint) error {
	cw := csv.NewWriter(c.w)

	header := []string{"step", "observation", "belief", "gradient", "prior_precision", "sensory_precision", "step_size", "regime"}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, pt := range points {
		row := []string{
			strconv.Itoa(pt.Step),
			formatFloat(pt.Observation),
			formatFloat(pt.Belief),
			formatFloat(pt.Gradient),
			formatFloat(pt.PriorPrecision),
			formatFloat(pt.SensoryPrecision),
			formatFloat(pt.StepSize),
			string(pt.Regime),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
