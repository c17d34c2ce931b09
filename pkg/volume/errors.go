package volume

import "fmt"

// ShapeMismatchError reports a volume whose squeezed shape differs from the
// shape the computation expects.
type ShapeMismatchError struct {
	// What names the offending input, e.g. a file path or "mask".
	What string
	Want []int
	Got  []int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("shape mismatch for %s: want %v, got %v", e.What, e.Want, e.Got)
}
