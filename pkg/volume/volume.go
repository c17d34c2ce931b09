// Package volume provides the dense voxel container shared by the loader,
// the smoothing filter and the similarity engine.
package volume

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// MaxRank is the largest number of axes a volume may have.
const MaxRank = 7

// ErrEmpty is returned when an operation needs at least one volume.
var ErrEmpty = errors.New("volume: empty volume list")

// Volume is a dense array of voxel intensities.
//
// Data is stored in file order: the first axis varies fastest, so the voxel
// at (x, y, z) of a 3-D volume lives at x + nx*(y + ny*z). A Volume is never
// modified after construction; every operation returns a new one.
type Volume struct {
	// Name identifies where the volume came from, usually a file path.
	Name string

	// Shape holds the size of each axis.
	Shape []int

	// Data holds the voxel values.
	Data []float64
}

// New creates a volume from shape and data. The data slice is used as-is.
func New(name string, shape []int, data []float64) (*Volume, error) {
	if len(shape) == 0 || len(shape) > MaxRank {
		return nil, fmt.Errorf("volume %s: rank %d out of range [1, %d]", name, len(shape), MaxRank)
	}
	n := 1
	for _, s := range shape {
		if s < 1 {
			return nil, fmt.Errorf("volume %s: invalid shape %v", name, shape)
		}
		n *= s
	}
	if len(data) != n {
		return nil, fmt.Errorf("volume %s: shape %v needs %d voxels, got %d", name, shape, n, len(data))
	}
	return &Volume{Name: name, Shape: append([]int(nil), shape...), Data: data}, nil
}

// Len returns the number of voxels.
func (v *Volume) Len() int { return len(v.Data) }

// Rank returns the number of axes.
func (v *Volume) Rank() int { return len(v.Shape) }

// Strides returns the distance in Data between neighbours along each axis.
func (v *Volume) Strides() []int {
	strides := make([]int, len(v.Shape))
	step := 1
	for i, s := range v.Shape {
		strides[i] = step
		step *= s
	}
	return strides
}

// At returns the voxel at the given coordinates. It panics if the number
// of coordinates does not match the rank or a coordinate is out of range.
func (v *Volume) At(coords ...int) float64 {
	if len(coords) != len(v.Shape) {
		panic(fmt.Sprintf("volume: %d coordinates for rank %d", len(coords), len(v.Shape)))
	}
	idx := 0
	step := 1
	for i, c := range coords {
		if c < 0 || c >= v.Shape[i] {
			panic(fmt.Sprintf("volume: coordinate %d out of range on axis %d", c, i))
		}
		idx += c * step
		step *= v.Shape[i]
	}
	return v.Data[idx]
}

// Squeeze removes every axis of size one. A volume with a single voxel
// keeps one axis. The returned volume shares Data with v.
func (v *Volume) Squeeze() *Volume {
	shape := make([]int, 0, len(v.Shape))
	for _, s := range v.Shape {
		if s != 1 {
			shape = append(shape, s)
		}
	}
	if len(shape) == 0 {
		shape = append(shape, 1)
	}
	return &Volume{Name: v.Name, Shape: shape, Data: v.Data}
}

// SameShape reports whether v and o have identical shapes.
func (v *Volume) SameShape(o *Volume) bool {
	return EqualShapes(v.Shape, o.Shape)
}

// EqualShapes reports whether two shapes are identical.
func EqualShapes(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of v.
func (v *Volume) Clone() *Volume {
	return &Volume{
		Name:  v.Name,
		Shape: append([]int(nil), v.Shape...),
		Data:  append([]float64(nil), v.Data...),
	}
}

// DivScalar returns a new volume with every voxel divided by d.
func (v *Volume) DivScalar(d float64) *Volume {
	out := v.Clone()
	for i := range out.Data {
		out.Data[i] /= d
	}
	return out
}

// Scale returns a new volume with every voxel multiplied by c.
func (v *Volume) Scale(c float64) *Volume {
	out := v.Clone()
	floats.Scale(c, out.Data)
	return out
}

// MinMax returns the smallest and largest voxel values.
func (v *Volume) MinMax() (lo, hi float64) {
	return floats.Min(v.Data), floats.Max(v.Data)
}

// Sum adds the volumes voxel-wise. Shapes are compared after squeezing;
// the result has the squeezed shape of the first volume.
func Sum(vols []*Volume) (*Volume, error) {
	if len(vols) == 0 {
		return nil, ErrEmpty
	}
	first := vols[0].Squeeze()
	sum := &Volume{Name: "sum", Shape: append([]int(nil), first.Shape...), Data: make([]float64, first.Len())}
	for _, v := range vols {
		sq := v.Squeeze()
		if !sq.SameShape(sum) {
			return nil, &ShapeMismatchError{What: v.Name, Want: sum.Shape, Got: sq.Shape}
		}
		floats.Add(sum.Data, sq.Data)
	}
	return sum, nil
}

// Mean returns the voxel-wise arithmetic mean: the sum of all volumes
// divided by their count.
func Mean(vols []*Volume) (*Volume, error) {
	sum, err := Sum(vols)
	if err != nil {
		return nil, err
	}
	n := float64(len(vols))
	for i := range sum.Data {
		sum.Data[i] /= n
	}
	sum.Name = "mean"
	return sum, nil
}
