package main

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cogfusion/internal/report"
	"cogfusion/pkg/nifti"
	"cogfusion/pkg/volume"
)

// writeFixtures writes three related contrast images and a mask into dir
// using the file layout of the reference run.
func writeFixtures(t *testing.T, dir string) (images []string, mask string) {
	t.Helper()
	shape := []int{5, 4, 3}
	n := 5 * 4 * 3
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "original"), 0755))

	for k, name := range harnessImages {
		data := make([]float64, n)
		for i := range data {
			data[i] = math.Sin(float64(i)*0.3) + 0.2*math.Cos(float64(i*(k+2)))
		}
		v, err := volume.New(name, shape, data)
		require.NoError(t, err)
		p := filepath.Join(dir, name)
		require.NoError(t, nifti.Write(p, v))
		images = append(images, p)
	}

	maskData := make([]float64, n)
	for i := range maskData {
		if i%4 != 0 {
			maskData[i] = 1
		}
	}
	m, err := volume.New("mask", append(shape, 1), maskData)
	require.NoError(t, err)
	mask = filepath.Join(dir, harnessMasks[0])
	require.NoError(t, nifti.Write(mask, m))
	return images, mask
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--config", filepath.Join(t.TempDir(), "absent.yaml"), "--log-level", "error"))
	err := cmd.Execute()
	return out.String(), err
}

func TestAverageCommand(t *testing.T) {
	images, mask := writeFixtures(t, t.TempDir())
	list := strings.Join(images, ",")

	out, err := run(t, "average", "--a", list, "--b", list, "--mask", mask)
	require.NoError(t, err)
	assert.Contains(t, out, "Score:  1.000000")

	out, err = run(t, "average", "--a", images[0], "--b", images[2], "-m", mask, "--smooth-a", "1", "--smooth-b", "1,1,0")
	require.NoError(t, err)
	assert.Contains(t, out, "Mode:   "+report.ModeAverage)
	assert.Contains(t, out, "Score:")
}

func TestPairwiseCommandJSON(t *testing.T) {
	images, mask := writeFixtures(t, t.TempDir())
	list := strings.Join(images, ",")

	out, err := run(t, "pairwise", "--a", list, "--b", list, "--mask", mask, "--format", "json", "--workers", "2")
	require.NoError(t, err)

	var res report.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	_, err = uuid.Parse(res.RunID)
	assert.NoError(t, err)
	require.Len(t, res.Scores, 9)
	for i := 0; i < 3; i++ {
		assert.InDelta(t, 1.0, res.Scores[i*3+i], 1e-12)
	}
	require.NotNil(t, res.Summary)
	assert.Equal(t, 9, res.Summary.N)
}

func TestCompareCommandErrors(t *testing.T) {
	dir := t.TempDir()
	images, mask := writeFixtures(t, dir)

	_, err := run(t, "average", "--a", images[0], "--b", filepath.Join(dir, "missing.nii"), "--mask", mask)
	var loadErr *nifti.LoadError
	assert.ErrorAs(t, err, &loadErr)

	_, err = run(t, "average", "--a", images[0], "--b", images[1])
	assert.Error(t, err, "mask is required")

	_, err = run(t, "pairwise", "--a", images[0], "--b", images[1], "--mask", mask, "--smooth-a", "-2")
	assert.Error(t, err)
}

func TestHarnessCommand(t *testing.T) {
	dir := t.TempDir()
	writeFixtures(t, dir)

	out, err := run(t, "harness", "--dir", dir)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "['original/3153.nii.gz', 'original/3154.nii.gz', 'original/3155.nii.gz']", lines[0])
	assert.Equal(t, "['EPI_MASK_NOEYES.img']", lines[1])
	assert.Equal(t, "testing contrastDocProductAvg", lines[2])
	score, err := strconv.ParseFloat(lines[3], 64)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, score, 1e-12)
	assert.Equal(t, "testing contrastAvgDocProduct", lines[4])
	assert.True(t, strings.HasPrefix(lines[5], "["))
}

func TestMeanCommand(t *testing.T) {
	dir := t.TempDir()
	images, _ := writeFixtures(t, dir)
	output := filepath.Join(dir, "mean.nii.gz")

	args := append([]string{"mean", "-o", output}, images...)
	out, err := run(t, args...)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote mean of 3 images")

	mean, err := nifti.Load(output)
	require.NoError(t, err)
	vols, err := nifti.LoadVolumes(images)
	require.NoError(t, err)
	want, err := volume.Mean(vols)
	require.NoError(t, err)
	assert.Equal(t, want.Data, mean.Data)
}

func TestSlicesCommand(t *testing.T) {
	dir := t.TempDir()
	_, mask := writeFixtures(t, dir)
	out := filepath.Join(dir, "render")

	stdout, err := run(t, "slices", "--out", out, mask)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Saved 3 z-axis slices")
	assert.FileExists(t, filepath.Join(out, "x", "slice_x_004.jpg"))
	assert.FileExists(t, filepath.Join(out, "z", "slice_z_002.jpg"))
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "cogfusion.toml")
	out, err := run(t, "config", "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)
	assert.FileExists(t, path)
}
