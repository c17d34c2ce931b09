package visualization

import (
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cogfusion/pkg/volume"
)

// slabVolume returns a volume where every z-slice holds the value z.
func slabVolume(t *testing.T, width, height, depth int) *volume.Volume {
	t.Helper()
	data := make([]float64, width*height*depth)
	for z := 0; z < depth; z++ {
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				data[z*width*height+y*width+x] = float64(z)
			}
		}
	}
	v, err := volume.New("slab", []int{width, height, depth, 1}, data)
	require.NoError(t, err)
	return v
}

// TestNewViewer verifies that singleton axes are squeezed before viewing
func TestNewViewer(t *testing.T) {
	viewer, err := NewViewer(slabVolume(t, 10, 8, 5))
	require.NoError(t, err)

	w, h, d := viewer.Dims()
	assert.Equal(t, 10, w)
	assert.Equal(t, 8, h)
	assert.Equal(t, 5, d)

	flat, err := volume.New("flat", []int{4, 1, 3}, make([]float64, 12))
	require.NoError(t, err)
	viewer, err = NewViewer(flat)
	require.NoError(t, err)
	w, h, d = viewer.Dims()
	assert.Equal(t, [3]int{4, 3, 1}, [3]int{w, h, d})

	series, err := volume.New("series", []int{2, 2, 2, 2}, make([]float64, 16))
	require.NoError(t, err)
	_, err = NewViewer(series)
	assert.Error(t, err)
}

// TestExtractSlice verifies slice dimensions and intensity normalization
func TestExtractSlice(t *testing.T) {
	width, height, depth := 10, 8, 5
	viewer, err := NewViewer(slabVolume(t, width, height, depth))
	require.NoError(t, err)

	for z := 0; z < depth; z++ {
		img, err := viewer.ExtractSlice("z", z)
		require.NoError(t, err)

		bounds := img.Bounds()
		assert.Equal(t, width, bounds.Dx())
		assert.Equal(t, height, bounds.Dy())

		gray, ok := img.(*image.Gray16)
		require.True(t, ok, "expected *image.Gray16, got %T", img)
		want := uint16(float64(z) / float64(depth-1) * 65535)
		assert.InDelta(t, want, gray.Gray16At(width/2, height/2).Y, 1)
	}

	imgX, err := viewer.ExtractSlice("x", width/2)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, depth, height), imgX.Bounds())

	imgY, err := viewer.ExtractSlice("Y", height/2)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, width, depth), imgY.Bounds())
	gray := imgY.(*image.Gray16)
	assert.Equal(t, uint16(0), gray.Gray16At(0, 0).Y)
	assert.Equal(t, uint16(65535), gray.Gray16At(0, depth-1).Y)
}

func TestExtractSliceErrors(t *testing.T) {
	viewer, err := NewViewer(slabVolume(t, 4, 4, 4))
	require.NoError(t, err)

	_, err = viewer.ExtractSlice("z", -1)
	assert.Error(t, err)
	_, err = viewer.ExtractSlice("x", 4)
	assert.Error(t, err)
	_, err = viewer.ExtractSlice("w", 0)
	assert.Error(t, err)
}

func TestConstantVolumeRendersBlack(t *testing.T) {
	v, err := volume.New("flat", []int{3, 3, 3}, make([]float64, 27))
	require.NoError(t, err)
	viewer, err := NewViewer(v)
	require.NoError(t, err)

	img, err := viewer.ExtractSlice("z", 1)
	require.NoError(t, err)
	assert.Equal(t, uint16(0), img.(*image.Gray16).Gray16At(1, 1).Y)
}

func TestSaveSliceSequence(t *testing.T) {
	viewer, err := NewViewer(slabVolume(t, 6, 5, 4))
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "slices", "z")
	n, err := viewer.SaveSliceSequence("z", dir)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 4)
	assert.FileExists(t, filepath.Join(dir, "slice_z_003.jpg"))

	_, err = viewer.SaveSliceSequence("q", dir)
	assert.Error(t, err)
}
