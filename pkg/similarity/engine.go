// Package similarity computes mask-weighted cosine similarity between sets
// of contrast images.
//
// Two strategies are provided. AverageThenCompare averages each list and
// compares the two means. CompareThenAverage compares every pair across the
// lists and returns the raw scores in listA-major order, leaving any
// averaging or variance estimate to the caller.
//
// For inputs a, b and mask m the score is
//
//	sum(a*b*m) / sqrt(sum(a*a*m)) / sqrt(sum(b*b*m))
//
// where every volume is squeezed and optionally Gaussian-smoothed first.
package similarity

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"cogfusion/pkg/smoothing"
	"cogfusion/pkg/volume"
)

// Engine evaluates similarity scores. The zero value is not usable; build
// one with NewEngine. An Engine holds no per-call state and may be shared.
type Engine struct {
	workers    int
	permissive bool
	smoothing  []smoothing.Option
}

// Option configures an Engine.
type Option func(*Engine)

// WithWorkers bounds the number of goroutines used by CompareThenAverage.
// Values below one are ignored.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithPermissive disables the degenerate norm check. A zero norm then
// yields the non-finite quotient instead of a DegenerateNormError.
func WithPermissive(permissive bool) Option {
	return func(e *Engine) { e.permissive = permissive }
}

// WithSmoothing passes options to the Gaussian filter.
func WithSmoothing(opts ...smoothing.Option) Option {
	return func(e *Engine) { e.smoothing = append(e.smoothing, opts...) }
}

// NewEngine creates an Engine. By default it uses one worker per CPU and
// rejects degenerate norms.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{workers: runtime.NumCPU()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Workers returns the worker bound used for pairwise sweeps.
func (e *Engine) Workers() int { return e.workers }

// FirstMask returns the first volume of a loaded mask list. Only one mask
// is used per computation.
func FirstMask(masks []*volume.Volume) (*volume.Volume, error) {
	if len(masks) == 0 || masks[0] == nil {
		return nil, ErrNoMask
	}
	return masks[0], nil
}

// AverageThenCompare averages listA and listB voxel-wise, smooths the means
// with sigmaA and sigmaB and returns their mask-weighted cosine similarity.
func (e *Engine) AverageThenCompare(ctx context.Context, listA, listB []*volume.Volume, mask *volume.Volume, sigmaA, sigmaB smoothing.Sigma) (float64, error) {
	if err := e.validate(listA, listB, mask, sigmaA, sigmaB); err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m := mask.Squeeze()

	meanA, err := volume.Mean(listA)
	if err != nil {
		return 0, fmt.Errorf("average list A: %w", err)
	}
	meanB, err := volume.Mean(listB)
	if err != nil {
		return 0, fmt.Errorf("average list B: %w", err)
	}
	meanA.Name, meanB.Name = "mean A", "mean B"

	for _, mean := range []*volume.Volume{meanA, meanB} {
		if !mean.SameShape(m) {
			return 0, &ShapeMismatchError{What: maskName(mask), Want: mean.Shape, Got: m.Shape}
		}
	}

	buf := make([]float64, m.Len())
	a, err := e.prepare(meanA, m, sigmaA, "A", buf)
	if err != nil {
		return 0, err
	}
	b, err := e.prepare(meanB, m, sigmaB, "B", buf)
	if err != nil {
		return 0, err
	}

	score := weightedDot(a.vol.Data, b.vol.Data, m.Data, buf) / a.norm / b.norm
	log.Debug().
		Int("images_a", len(listA)).
		Int("images_b", len(listB)).
		Ints("shape", m.Shape).
		Float64("score", score).
		Msg("Average-then-compare done")
	return score, nil
}

// CompareThenAverage scores every (imageA, imageB) pair. Each image is
// divided by the length of its own list before comparison. The result has
// len(listA)*len(listB) entries; entry i*len(listB)+j holds the score of
// listA[i] against listB[j].
//
// The sweep aborts on failure and returns a *PairError for the first pair,
// in result order, that cannot be scored.
func (e *Engine) CompareThenAverage(ctx context.Context, listA, listB []*volume.Volume, mask *volume.Volume, sigmaA, sigmaB smoothing.Sigma) ([]float64, error) {
	if err := e.validate(listA, listB, mask, sigmaA, sigmaB); err != nil {
		return nil, err
	}
	m := mask.Squeeze()
	nA, nB := len(listA), len(listB)

	log.Debug().
		Int("pairs", nA*nB).
		Int("workers", e.workers).
		Msg("Starting pairwise sweep")

	sideA := make([]prepared, nA)
	sideB := make([]prepared, nB)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	e.prepareSide(gctx, g, listA, m, sigmaA, "A", sideA)
	e.prepareSide(gctx, g, listB, m, sigmaB, "B", sideB)
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := firstPairError(listA, listB, sideA, sideB); err != nil {
		return nil, err
	}

	scores := make([]float64, nA*nB)
	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i := range sideA {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			buf := make([]float64, m.Len())
			a := sideA[i]
			for j, b := range sideB {
				scores[i*nB+j] = weightedDot(a.vol.Data, b.vol.Data, m.Data, buf) / a.norm / b.norm
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return scores, nil
}

func (e *Engine) validate(listA, listB []*volume.Volume, mask *volume.Volume, sigmaA, sigmaB smoothing.Sigma) error {
	if len(listA) == 0 {
		return fmt.Errorf("list A: %w", ErrEmptyList)
	}
	if len(listB) == 0 {
		return fmt.Errorf("list B: %w", ErrEmptyList)
	}
	if mask == nil {
		return ErrNoMask
	}
	if err := sigmaA.Validate(); err != nil {
		return fmt.Errorf("sigma A: %w", err)
	}
	if err := sigmaB.Validate(); err != nil {
		return fmt.Errorf("sigma B: %w", err)
	}
	return nil
}

// prepared is an input ready for scoring: squeezed, smoothed, with its
// mask-weighted norm.
type prepared struct {
	vol  *volume.Volume
	norm float64
	err  error
}

// prepare squeezes and smooths v and computes its norm. v must already
// have the mask's squeezed shape.
func (e *Engine) prepare(v, mask *volume.Volume, sigma smoothing.Sigma, side string, buf []float64) (prepared, error) {
	smoothed, err := smoothing.Gaussian(v.Squeeze(), sigma, e.smoothing...)
	if err != nil {
		return prepared{}, fmt.Errorf("smooth %s: %w", v.Name, err)
	}
	norm := math.Sqrt(weightedDot(smoothed.Data, smoothed.Data, mask.Data, buf))
	if !e.permissive && (norm == 0 || math.IsNaN(norm) || math.IsInf(norm, 0)) {
		return prepared{}, &DegenerateNormError{Side: side, Name: v.Name, Norm: norm}
	}
	return prepared{vol: smoothed, norm: norm}, nil
}

// prepareSide scales every image of list by 1/len(list) and prepares it.
// Per-image failures are recorded in out rather than returned so the
// caller can report them in pair order.
func (e *Engine) prepareSide(ctx context.Context, g *errgroup.Group, list []*volume.Volume, mask *volume.Volume, sigma smoothing.Sigma, side string, out []prepared) {
	n := float64(len(list))
	for i, img := range list {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			sq := img.Squeeze()
			if !sq.SameShape(mask) {
				out[i].err = &ShapeMismatchError{What: img.Name, Want: mask.Shape, Got: sq.Shape}
				return nil
			}
			scaled := sq.DivScalar(n)
			p, err := e.prepare(scaled, mask, sigma, side, make([]float64, mask.Len()))
			if err != nil {
				out[i].err = err
				return nil
			}
			out[i] = p
			return nil
		})
	}
}

// firstPairError returns the error of the lowest-indexed pair that
// involves a failed image. Image A[i] first appears in pair i*len(B);
// image B[j] first appears in pair j. On a tie A fails first.
func firstPairError(listA, listB []*volume.Volume, sideA, sideB []prepared) error {
	nB := len(listB)
	idxA, idxB := -1, -1
	for i, p := range sideA {
		if p.err != nil {
			idxA = i
			break
		}
	}
	for j, p := range sideB {
		if p.err != nil {
			idxB = j
			break
		}
	}
	switch {
	case idxA >= 0 && (idxB < 0 || idxA*nB <= idxB):
		return &PairError{Index: idxA * nB, A: listA[idxA].Name, B: listB[0].Name, Err: sideA[idxA].err}
	case idxB >= 0:
		return &PairError{Index: idxB, A: listA[0].Name, B: listB[idxB].Name, Err: sideB[idxB].err}
	}
	return nil
}

// weightedDot returns sum(x*y*w), using buf as scratch space.
func weightedDot(x, y, w, buf []float64) float64 {
	floats.MulTo(buf, x, y)
	return floats.Dot(buf, w)
}

func maskName(mask *volume.Volume) string {
	if mask.Name == "" {
		return "mask"
	}
	return mask.Name
}
