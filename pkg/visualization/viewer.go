package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"math"
	"os"
	"path/filepath"

	"cogfusion/pkg/volume"
)

// Viewer renders orthogonal slices of a contrast or mask volume for visual
// inspection. Intensities are mapped linearly from the volume's [min, max]
// onto the full 16-bit gray range.
type Viewer struct {
	// volumeData holds the voxels, x fastest
	volumeData []float64

	// dimensions of the volume
	width  int
	height int
	depth  int

	// intensity window
	lo, hi float64
}

// NewViewer creates a viewer for v. Singleton axes are squeezed away and the
// remaining volume must have at most three axes.
func NewViewer(v *volume.Volume) (*Viewer, error) {
	sq := v.Squeeze()
	if sq.Rank() > 3 {
		return nil, fmt.Errorf("cannot view %s: %d non-singleton axes", v.Name, sq.Rank())
	}
	dims := [3]int{1, 1, 1}
	copy(dims[:], sq.Shape)
	lo, hi := sq.MinMax()
	return &Viewer{
		volumeData: sq.Data,
		width:      dims[0],
		height:     dims[1],
		depth:      dims[2],
		lo:         lo,
		hi:         hi,
	}, nil
}

// Dims returns the width, height and depth of the viewed volume.
func (v *Viewer) Dims() (width, height, depth int) {
	return v.width, v.height, v.depth
}

func (v *Viewer) gray(val float64) color.Gray16 {
	if v.hi == v.lo || math.IsNaN(val) {
		return color.Gray16{Y: 0}
	}
	n := (val - v.lo) / (v.hi - v.lo)
	return color.Gray16{Y: uint16(math.Max(0, math.Min(65535, n*65535)))}
}

// ExtractSlice extracts a 2D slice from the volume along the specified axis
func (v *Viewer) ExtractSlice(axis string, position int) (image.Image, error) {
	if position < 0 {
		return nil, fmt.Errorf("position must be non-negative")
	}

	var img *image.Gray16

	switch axis {
	case "x", "X":
		// Extract slice along YZ plane
		if position >= v.width {
			return nil, fmt.Errorf("position %d exceeds width %d", position, v.width)
		}

		img = image.NewGray16(image.Rect(0, 0, v.depth, v.height))
		for y := 0; y < v.height; y++ {
			for z := 0; z < v.depth; z++ {
				idx := z*v.width*v.height + y*v.width + position
				img.SetGray16(z, y, v.gray(v.volumeData[idx]))
			}
		}

	case "y", "Y":
		// Extract slice along XZ plane
		if position >= v.height {
			return nil, fmt.Errorf("position %d exceeds height %d", position, v.height)
		}

		img = image.NewGray16(image.Rect(0, 0, v.width, v.depth))
		for z := 0; z < v.depth; z++ {
			for x := 0; x < v.width; x++ {
				idx := z*v.width*v.height + position*v.width + x
				img.SetGray16(x, z, v.gray(v.volumeData[idx]))
			}
		}

	case "z", "Z":
		// Extract slice along XY plane
		if position >= v.depth {
			return nil, fmt.Errorf("position %d exceeds depth %d", position, v.depth)
		}

		img = image.NewGray16(image.Rect(0, 0, v.width, v.height))
		for y := 0; y < v.height; y++ {
			for x := 0; x < v.width; x++ {
				idx := position*v.width*v.height + y*v.width + x
				img.SetGray16(x, y, v.gray(v.volumeData[idx]))
			}
		}

	default:
		return nil, fmt.Errorf("invalid axis: %s (must be x, y, or z)", axis)
	}

	return img, nil
}

// SaveSlice saves an extracted slice as a JPEG image
func (v *Viewer) SaveSlice(img image.Image, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return jpeg.Encode(file, img, &jpeg.Options{Quality: 90})
}

// SaveSliceSequence extracts and saves every slice along the specified axis.
// It returns the number of files written.
func (v *Viewer) SaveSliceSequence(axis string, outputDir string) (int, error) {
	var maxPos int
	switch axis {
	case "x", "X":
		maxPos = v.width
	case "y", "Y":
		maxPos = v.height
	case "z", "Z":
		maxPos = v.depth
	default:
		return 0, fmt.Errorf("invalid axis: %s (must be x, y, or z)", axis)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return 0, err
	}

	for pos := 0; pos < maxPos; pos++ {
		img, err := v.ExtractSlice(axis, pos)
		if err != nil {
			return pos, err
		}

		filename := filepath.Join(outputDir, fmt.Sprintf("slice_%s_%03d.jpg", axis, pos))
		if err := v.SaveSlice(img, filename); err != nil {
			return pos, err
		}
	}

	return maxPos, nil
}
