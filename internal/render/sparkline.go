package render

import (
	"math"
	"strings"

	"github.com/credence-sim/credence/internal/domain"
)

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

// Sparkline renders a belief trajectory as a single line of block characters,
// resampled to at most width columns. Non-finite beliefs (a diverged run)
// render as '!'.
func Sparkline(points []domain.TrajectoryPoint, width int) string {
	if len(points) == 0 || width < 1 {
		return ""
	}

	values := resample(points, width)

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if !finite(v) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	var b strings.Builder
	for _, v := range values {
		if !finite(v) {
			b.WriteByte('!')
			continue
		}
		idx := 0
		if hi > lo {
			idx = int((v - lo) / (hi - lo) * float64(len(sparkRunes)-1))
		}
		b.WriteRune(sparkRunes[idx])
	}
	return b.String()
}

// Chart renders a small multi-line plot of the belief trajectory for
// terminal inspection.
func Chart(points []domain.TrajectoryPoint, width, height int) string {
	if len(points) == 0 || width < 1 || height < 2 {
		return ""
	}

	values := resample(points, width)

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if !finite(v) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi <= lo {
		hi = lo + 1
	}

	grid := make([][]byte, height)
	for r := range grid {
		grid[r] = []byte(strings.Repeat(" ", width))
	}
	for col, v := range values {
		if !finite(v) {
			grid[0][col] = '!'
			continue
		}
		row := int((hi - v) / (hi - lo) * float64(height-1))
		grid[row][col] = '*'
	}

	lines := make([]string, height)
	for r := range grid {
		lines[r] = string(grid[r])
	}
	return strings.Join(lines, "\n")
}

func resample(points []domain.TrajectoryPoint, width int) []float64 {
	if len(points) <= width {
		out := make([]float64, len(points))
		for i, pt := range points {
			out[i] = pt.Belief
		}
		return out
	}

	if width == 1 {
		return []float64{points[len(points)-1].Belief}
	}

	out := make([]float64, width)
	for i := 0; i < width; i++ {
		idx := i * (len(points) - 1) / (width - 1)
		out[i] = points[idx].Belief
	}
	return out
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
