// Package smoothing implements separable Gaussian filtering of volumes.
//
// The filter samples a Gaussian kernel out to truncate*sigma voxels on each
// side, normalizes it to unit sum and correlates it with the volume one axis
// at a time. Axes whose sigma is zero are left untouched, so a zero Sigma is
// an exact identity.
package smoothing

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"cogfusion/pkg/volume"
)

// DefaultTruncate is the kernel half-width in standard deviations.
const DefaultTruncate = 4.0

var (
	// ErrNegativeSigma is returned for a sigma component below zero.
	ErrNegativeSigma = errors.New("smoothing: sigma must be non-negative")

	// ErrSigmaRank is returned when a non-zero sigma targets an axis the
	// volume does not have.
	ErrSigmaRank = errors.New("smoothing: sigma set for an axis beyond the volume rank")
)

// Sigma holds the Gaussian standard deviation, in voxels, for the x, y and
// z axes.
type Sigma [3]float64

// IsZero reports whether no axis is smoothed.
func (s Sigma) IsZero() bool {
	return s[0] == 0 && s[1] == 0 && s[2] == 0
}

// Validate checks that every component is a non-negative finite number.
func (s Sigma) Validate() error {
	for i, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("smoothing: sigma[%d] is not finite", i)
		}
		if v < 0 {
			return fmt.Errorf("%w: sigma[%d]=%g", ErrNegativeSigma, i, v)
		}
	}
	return nil
}

func (s Sigma) String() string {
	return fmt.Sprintf("%g,%g,%g", s[0], s[1], s[2])
}

// SigmaFromSlice builds a Sigma from zero values (no smoothing), one value
// (isotropic) or three values (per axis).
func SigmaFromSlice(vals []float64) (Sigma, error) {
	var s Sigma
	switch len(vals) {
	case 0:
	case 1:
		s = Sigma{vals[0], vals[0], vals[0]}
	case 3:
		copy(s[:], vals)
	default:
		return s, fmt.Errorf("smoothing: need 1 or 3 sigma values, got %d", len(vals))
	}
	return s, s.Validate()
}

// ParseSigma parses "s" or "sx,sy,sz". An empty string means no smoothing.
func ParseSigma(text string) (Sigma, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Sigma{}, nil
	}
	parts := strings.Split(text, ",")
	vals := make([]float64, 0, len(parts))
	for _, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return Sigma{}, fmt.Errorf("smoothing: invalid sigma %q: %w", text, err)
		}
		vals = append(vals, f)
	}
	return SigmaFromSlice(vals)
}

type filter struct {
	truncate float64
	mode     Mode
}

// Option configures Gaussian.
type Option func(*filter)

// WithTruncate sets the kernel half-width in standard deviations.
func WithTruncate(t float64) Option {
	return func(f *filter) {
		if t > 0 {
			f.truncate = t
		}
	}
}

// WithMode sets how samples beyond the volume edge are obtained.
func WithMode(m Mode) Option {
	return func(f *filter) { f.mode = m }
}

// Kernel returns the normalized 1-D Gaussian weights for sigma, from
// -radius to +radius.
func Kernel(sigma, truncate float64) []float64 {
	radius := int(truncate*sigma + 0.5)
	weights := make([]float64, 2*radius+1)
	sum := 0.0
	for i := range weights {
		x := float64(i - radius)
		weights[i] = math.Exp(-0.5 / (sigma * sigma) * x * x)
		sum += weights[i]
	}
	for i := range weights {
		weights[i] /= sum
	}
	return weights
}

// Gaussian returns v smoothed with the given per-axis sigma. The input is
// never modified. Sigma components beyond the rank of v must be zero.
func Gaussian(v *volume.Volume, sigma Sigma, opts ...Option) (*volume.Volume, error) {
	if err := sigma.Validate(); err != nil {
		return nil, err
	}
	f := filter{truncate: DefaultTruncate, mode: Reflect}
	for _, opt := range opts {
		opt(&f)
	}
	for axis := v.Rank(); axis < len(sigma); axis++ {
		if sigma[axis] != 0 {
			return nil, fmt.Errorf("%w: axis %d, rank %d", ErrSigmaRank, axis, v.Rank())
		}
	}

	out := v.Clone()
	if sigma.IsZero() {
		return out, nil
	}
	strides := out.Strides()
	for axis := 0; axis < len(sigma) && axis < out.Rank(); axis++ {
		if sigma[axis] == 0 {
			continue
		}
		weights := Kernel(sigma[axis], f.truncate)
		out.Data = f.correlateAxis(out.Data, out.Shape, strides, axis, weights)
	}
	return out, nil
}

// correlateAxis filters every 1-D line of data along axis.
func (f *filter) correlateAxis(data []float64, shape, strides []int, axis int, weights []float64) []float64 {
	n := shape[axis]
	stride := strides[axis]
	radius := len(weights) / 2
	result := make([]float64, len(data))
	line := make([]float64, n)

	for start := range data {
		// Visit each line once, from the voxel whose coordinate on axis is 0.
		if (start/stride)%n != 0 {
			continue
		}
		for i := 0; i < n; i++ {
			line[i] = data[start+i*stride]
		}
		for i := 0; i < n; i++ {
			acc := 0.0
			for k, w := range weights {
				j := f.mode.index(i+k-radius, n)
				if j < 0 {
					continue
				}
				acc += w * line[j]
			}
			result[start+i*stride] = acc
		}
	}
	return result
}
