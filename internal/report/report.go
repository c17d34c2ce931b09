// Package report formats similarity results for the command line.
package report

import (
	"fmt"
	"io"
	"math"
	"strings"

	json "github.com/goccy/go-json"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Modes of a Result.
const (
	ModeAverage  = "average-then-compare"
	ModePairwise = "compare-then-average"
)

// Result is the outcome of one similarity run.
type Result struct {
	RunID   string    `json:"run_id"`
	Mode    string    `json:"mode"`
	ListA   []string  `json:"list_a"`
	ListB   []string  `json:"list_b"`
	Mask    string    `json:"mask"`
	SigmaA  []float64 `json:"sigma_a"`
	SigmaB  []float64 `json:"sigma_b"`
	Score   *float64  `json:"score,omitempty"`
	Scores  []float64 `json:"scores,omitempty"`
	Summary *Summary  `json:"summary,omitempty"`
}

// Summary describes the distribution of pairwise scores.
type Summary struct {
	N        int     `json:"n"`
	Mean     float64 `json:"mean"`
	Variance float64 `json:"variance"`
	StdDev   float64 `json:"std_dev"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
}

// Summarize computes the mean and unbiased variance of scores. Variance is
// zero for fewer than two scores.
func Summarize(scores []float64) Summary {
	s := Summary{N: len(scores)}
	if len(scores) == 0 {
		return s
	}
	s.Min, s.Max = floats.Min(scores), floats.Max(scores)
	if len(scores) == 1 {
		s.Mean = scores[0]
		return s
	}
	s.Mean, s.Variance = stat.MeanVariance(scores, nil)
	s.StdDev = math.Sqrt(s.Variance)
	return s
}

// Write prints r as text or JSON.
func Write(w io.Writer, r Result, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
		_, err = fmt.Fprintf(w, "%s\n", data)
		return err
	case "", "text":
		return writeText(w, r)
	}
	return fmt.Errorf("unknown output format %q", format)
}

func writeText(w io.Writer, r Result) error {
	var sb strings.Builder
	if r.RunID != "" {
		fmt.Fprintf(&sb, "Run:    %s\n", r.RunID)
	}
	fmt.Fprintf(&sb, "Mode:   %s\n", r.Mode)
	fmt.Fprintf(&sb, "List A: %s\n", strings.Join(r.ListA, ", "))
	fmt.Fprintf(&sb, "List B: %s\n", strings.Join(r.ListB, ", "))
	fmt.Fprintf(&sb, "Mask:   %s\n", r.Mask)
	if r.Score != nil {
		fmt.Fprintf(&sb, "Score:  %.6f\n", *r.Score)
	}
	if len(r.Scores) > 0 {
		nB := len(r.ListB)
		if nB == 0 {
			nB = len(r.Scores)
		}
		sb.WriteString("Pairwise scores:\n")
		for i, s := range r.Scores {
			a, b := i/nB, i%nB
			fmt.Fprintf(&sb, "  [%d,%d] %.6f\n", a, b, s)
		}
	}
	if r.Summary != nil {
		fmt.Fprintf(&sb, "Mean:     %.6f\n", r.Summary.Mean)
		fmt.Fprintf(&sb, "Variance: %.6f\n", r.Summary.Variance)
		fmt.Fprintf(&sb, "Range:    [%.6f, %.6f]\n", r.Summary.Min, r.Summary.Max)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// PyList renders strings in Python list notation:
// ['a', 'b'].
func PyList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = "'" + s + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// FloatList renders scores as [x, y, z] with full precision.
func FloatList(vals []float64) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = fmt.Sprintf("%v", v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
