package smoothing

import "fmt"

// Mode selects the boundary extension used past the volume edge.
type Mode int

const (
	// Reflect mirrors about the edge, repeating the edge voxel: d c b a | a b c d | d c b a.
	Reflect Mode = iota
	// Mirror mirrors about the edge voxel centre: d c b | a b c d | c b a.
	Mirror
	// Nearest repeats the edge voxel: a a a | a b c d | d d d.
	Nearest
	// Wrap treats the line as periodic: b c d | a b c d | a b c.
	Wrap
	// Constant pads with zeros.
	Constant
)

// ParseMode maps a mode name to a Mode.
func ParseMode(name string) (Mode, error) {
	switch name {
	case "", "reflect":
		return Reflect, nil
	case "mirror":
		return Mirror, nil
	case "nearest":
		return Nearest, nil
	case "wrap":
		return Wrap, nil
	case "constant":
		return Constant, nil
	}
	return Reflect, fmt.Errorf("smoothing: unknown boundary mode %q", name)
}

func (m Mode) String() string {
	switch m {
	case Reflect:
		return "reflect"
	case Mirror:
		return "mirror"
	case Nearest:
		return "nearest"
	case Wrap:
		return "wrap"
	case Constant:
		return "constant"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// index maps position i on a line of length n to a sample index, or -1 when
// the sample is the zero pad.
func (m Mode) index(i, n int) int {
	if i >= 0 && i < n {
		return i
	}
	switch m {
	case Nearest:
		if i < 0 {
			return 0
		}
		return n - 1
	case Wrap:
		return mod(i, n)
	case Mirror:
		if n == 1 {
			return 0
		}
		period := 2*n - 2
		i = mod(i, period)
		if i >= n {
			i = period - i
		}
		return i
	case Constant:
		return -1
	default:
		period := 2 * n
		i = mod(i, period)
		if i >= n {
			i = period - 1 - i
		}
		return i
	}
}

func mod(a, b int) int {
	r := a % b
	if r < 0 {
		r += b
	}
	return r
}
