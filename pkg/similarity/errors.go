package similarity

import (
	"errors"
	"fmt"

	"cogfusion/pkg/volume"
)

var (
	// ErrEmptyList is returned when an image list has no volumes.
	ErrEmptyList = errors.New("similarity: image list is empty")

	// ErrNoMask is returned when no mask volume is supplied.
	ErrNoMask = errors.New("similarity: no mask volume")
)

// ShapeMismatchError reports an input whose squeezed shape differs from the
// mask or from the other images.
type ShapeMismatchError = volume.ShapeMismatchError

// DegenerateNormError reports a mask-weighted norm that is zero or not
// finite, which leaves the cosine undefined.
type DegenerateNormError struct {
	// Side is "A" or "B".
	Side string
	// Name identifies the volume (or "mean") whose norm degenerated.
	Name string
	Norm float64
}

func (e *DegenerateNormError) Error() string {
	return fmt.Sprintf("degenerate mask-weighted norm %g for side %s (%s)", e.Norm, e.Side, e.Name)
}

// PairError wraps the failure of a single pair in a pairwise sweep.
type PairError struct {
	// Index is the position of the pair in the result sequence.
	Index int
	A, B  string
	Err   error
}

func (e *PairError) Error() string {
	return fmt.Sprintf("pair %d (%s, %s): %v", e.Index, e.A, e.B, e.Err)
}

func (e *PairError) Unwrap() error { return e.Err }
