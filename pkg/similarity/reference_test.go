package similarity

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cogfusion/pkg/nifti"
	"cogfusion/pkg/smoothing"
)

// TestReferenceContrasts reproduces the published run on three contrast
// images of one study. Set COGFUSION_TESTDATA to a directory holding
// original/3153.nii.gz, original/3154.nii.gz, original/3155.nii.gz and the
// EPI_MASK_NOEYES.hdr/img pair.
func TestReferenceContrasts(t *testing.T) {
	dir := os.Getenv("COGFUSION_TESTDATA")
	if dir == "" {
		t.Skip("COGFUSION_TESTDATA not set")
	}

	names := []string{
		filepath.Join(dir, "original", "3153.nii.gz"),
		filepath.Join(dir, "original", "3154.nii.gz"),
		filepath.Join(dir, "original", "3155.nii.gz"),
	}
	images, err := nifti.LoadVolumes(names)
	require.NoError(t, err)
	masks, err := nifti.LoadVolumes([]string{filepath.Join(dir, "EPI_MASK_NOEYES.img")})
	require.NoError(t, err)
	mask, err := FirstMask(masks)
	require.NoError(t, err)

	e := NewEngine()
	avg, err := e.AverageThenCompare(context.Background(), images, images, mask, smoothing.Sigma{}, smoothing.Sigma{})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, avg, 1e-9)

	scores, err := e.CompareThenAverage(context.Background(), images, images, mask, smoothing.Sigma{}, smoothing.Sigma{})
	require.NoError(t, err)
	want := []float64{
		1.0, 0.96397000438290426, 0.47014563818126826,
		0.96397000438290426, 1.0, 0.47736370554624213,
		0.47014563818126831, 0.47736370554624213, 1.0,
	}
	require.Len(t, scores, len(want))
	for i := range want {
		assert.InDelta(t, want[i], scores[i], 1e-6, "pair %d", i)
	}
}
