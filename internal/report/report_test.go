package report

import (
	"bytes"
	"math"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	s := Summarize([]float64{1, 0.964, 0.47, 0.964, 1, 0.477, 0.47, 0.477, 1})
	assert.Equal(t, 9, s.N)
	assert.InDelta(t, 0.758, s.Mean, 1e-3)
	assert.Equal(t, 0.47, s.Min)
	assert.Equal(t, 1.0, s.Max)
	assert.InDelta(t, math.Sqrt(s.Variance), s.StdDev, 1e-15)
	assert.Greater(t, s.Variance, 0.0)

	assert.Equal(t, Summary{}, Summarize(nil))
	assert.Equal(t, Summary{N: 1, Mean: 0.5, Min: 0.5, Max: 0.5}, Summarize([]float64{0.5}))

	s = Summarize([]float64{2, 4})
	assert.Equal(t, 3.0, s.Mean)
	assert.Equal(t, 2.0, s.Variance)
}

func TestWriteText(t *testing.T) {
	score := 0.25
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Result{
		Mode:  ModeAverage,
		ListA: []string{"a.nii", "b.nii"},
		ListB: []string{"c.nii"},
		Mask:  "mask.img",
		Score: &score,
	}, "text"))
	out := buf.String()
	assert.Contains(t, out, "List A: a.nii, b.nii")
	assert.Contains(t, out, "Score:  0.250000")

	buf.Reset()
	summary := Summarize([]float64{1, 0.5, 0.5, 1})
	require.NoError(t, Write(&buf, Result{
		Mode:    ModePairwise,
		ListA:   []string{"a", "b"},
		ListB:   []string{"a", "b"},
		Scores:  []float64{1, 0.5, 0.5, 1},
		Summary: &summary,
	}, ""))
	out = buf.String()
	assert.Contains(t, out, "[1,0] 0.500000")
	assert.Contains(t, out, "Mean:     0.750000")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Result{
		Mode:   ModePairwise,
		ListA:  []string{"a"},
		ListB:  []string{"b", "c"},
		Scores: []float64{0.9, 0.1},
	}, "json"))

	var decoded Result
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, ModePairwise, decoded.Mode)
	assert.Equal(t, []float64{0.9, 0.1}, decoded.Scores)
	assert.Nil(t, decoded.Score)

	assert.Error(t, Write(&buf, Result{}, "xml"))
}

func TestPythonStyleLists(t *testing.T) {
	assert.Equal(t, "['original/3153.nii.gz', 'original/3154.nii.gz']", PyList([]string{"original/3153.nii.gz", "original/3154.nii.gz"}))
	assert.Equal(t, "[]", PyList(nil))
	assert.Equal(t, "[1, 0.5]", FloatList([]float64{1, 0.5}))
}
