package render

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/credence-sim/credence/internal/domain"
)

func tracePoints(beliefs ...float64) []domain.TrajectoryPoint {
	points := make([]domain.TrajectoryPoint, len(beliefs))
	for i, b := range beliefs {
		points[i] = domain.TrajectoryPoint{
			Step:        i + 1,
			Observation: 0.0,
			Belief:      b,
			Regime:      domain.RegimeLocked,
		}
	}
	return points
}

func TestConsoleSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewConsoleSink(&buf, 1)

	if err := sink.Write(tracePoints(0.9, 0.8, 0.7)); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "step 1 [locked]: obs=0.000 belief=0.900000") {
		t.Fatalf("unexpected line: %q", lines[0])
	}
}

func TestConsoleSinkThinning(t *testing.T) {
	var buf bytes.Buffer
	sink := NewConsoleSink(&buf, 10)

	beliefs := make([]float64, 25)
	if err := sink.Write(tracePoints(beliefs...)); err != nil {
		t.Fatal(err)
	}

	// Indices 0, 10, 20 plus the final point.
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4:\n%s", len(lines), buf.String())
	}
}

func TestCSVSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewCSVSink(&buf)

	if err := sink.Write(tracePoints(0.9, 0.45)); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines", len(lines))
	}
	if lines[0] != "step,observation,belief,gradient,prior_precision,sensory_precision,step_size,regime" {
		t.Fatalf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "1,0,0.9,") {
		t.Fatalf("row = %q", lines[1])
	}
	if !strings.HasSuffix(lines[2], ",locked") {
		t.Fatalf("row = %q", lines[2])
	}
}

func TestSparkline(t *testing.T) {
	s := Sparkline(tracePoints(0.0, 0.5, 1.0), 3)
	if utf8.RuneCountInString(s) != 3 {
		t.Fatalf("width = %d, want 3", utf8.RuneCountInString(s))
	}
	runes := []rune(s)
	if runes[0] != '▁' || runes[2] != '█' {
		t.Fatalf("sparkline = %q", s)
	}
}

func TestSparklineResamples(t *testing.T) {
	beliefs := make([]float64, 1000)
	for i := range beliefs {
		beliefs[i] = float64(i)
	}
	s := Sparkline(tracePoints(beliefs...), 40)
	if utf8.RuneCountInString(s) != 40 {
		t.Fatalf("width = %d, want 40", utf8.RuneCountInString(s))
	}
}

func TestSparklineDivergedRun(t *testing.T) {
	s := Sparkline(tracePoints(0.9, math.Inf(1)), 2)
	if !strings.Contains(s, "!") {
		t.Fatalf("diverged point not marked: %q", s)
	}
}

func TestSparklineEmpty(t *testing.T) {
	if s := Sparkline(nil, 10); s != "" {
		t.Fatalf("got %q", s)
	}
}

func TestChart(t *testing.T) {
	c := Chart(tracePoints(0.0, 0.5, 1.0), 3, 5)
	lines := strings.Split(c, "\n")
	if len(lines) != 5 {
		t.Fatalf("height = %d", len(lines))
	}
	// Highest belief plots on the top row, lowest on the bottom.
	if lines[0][2] != '*' {
		t.Fatalf("top row: %q", lines[0])
	}
	if lines[4][0] != '*' {
		t.Fatalf("bottom row: %q", lines[4])
	}
}
