// Package resample turns a volume and a plane into a row-major color buffer.
//
// Pixel (px,py) maps to plane coordinates u = px/(width-1) and
// v = py/(height-1); index 0 of the buffer is the plane's bottom-left
// corner and the last index is its top-right. Pixels are independent, so
// rows are split into disjoint bands computed by parallel workers; the
// output is identical for any worker count.
package resample

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r3"

	"volslice/pkg/interpolation"
	"volslice/pkg/plane"
	"volslice/pkg/transfer"
	"volslice/pkg/volume"
)

// ErrBufferSize is returned when the caller's buffer does not hold exactly
// width*height pixels or a dimension is not positive.
var ErrBufferSize = errors.New("buffer size does not match slice dimensions")

// OutsideColor marks pixels whose position falls outside the volume.
var OutsideColor = color.RGBA{R: 255, G: 0, B: 0, A: 255}

// Resampler holds the pluggable parts of the slice pipeline
type Resampler struct {
	transfer transfer.Func
	kernel   interpolation.Kernel
	outside  color.RGBA
	workers  int
}

// Option configures a Resampler
type Option func(*Resampler)

// WithKernel replaces the default trilinear kernel
func WithKernel(k interpolation.Kernel) Option {
	return func(r *Resampler) { r.kernel = k }
}

// WithWorkers bounds the number of concurrent row bands; n < 1 means
// runtime.NumCPU().
func WithWorkers(n int) Option {
	return func(r *Resampler) { r.workers = n }
}

// WithOutsideColor replaces the red out-of-volume sentinel
func WithOutsideColor(c color.RGBA) Option {
	return func(r *Resampler) { r.outside = c }
}

// New returns a Resampler using tf, or Grayscale when tf is nil.
func New(tf transfer.Func, opts ...Option) *Resampler {
	if tf == nil {
		tf = transfer.Grayscale
	}
	r := &Resampler{
		transfer: tf,
		kernel:   interpolation.Trilinear,
		outside:  OutsideColor,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.workers < 1 {
		r.workers = runtime.NumCPU()
	}
	return r
}

// Workers returns the configured worker bound
func (r *Resampler) Workers() int { return r.workers }

// ColorAt returns the color of a single voxel-space position.
func (r *Resampler) ColorAt(vol *volume.Volume, pos r3.Vec) (color.RGBA, error) {
	if !interpolation.Inside(vol.Extents(), pos) {
		return r.outside, nil
	}
	v, err := r.kernel(vol, pos)
	if err != nil {
		return color.RGBA{}, err
	}
	return r.transfer(v), nil
}

// ComputeSlice fills buf with the colors of the plane sampled at
// width x height points.
func (r *Resampler) ComputeSlice(vol *volume.Volume, p plane.Plane, width, height int, buf []color.RGBA) error {
	if err := checkSize(width, height, len(buf)); err != nil {
		return err
	}
	return r.each(width, height, func(lo, hi int) error {
		for py := lo; py < hi; py++ {
			row := buf[py*width : (py+1)*width]
			v := coord(py, height)
			for px := range row {
				c, err := r.ColorAt(vol, p.At(coord(px, width), v))
				if err != nil {
					return fmt.Errorf("pixel (%d,%d): %w", px, py, err)
				}
				row[px] = c
			}
		}
		return nil
	})
}

// Slice allocates a buffer and computes it.
func (r *Resampler) Slice(vol *volume.Volume, p plane.Plane, width, height int) ([]color.RGBA, error) {
	if err := checkSize(width, height, width*height); err != nil {
		return nil, err
	}
	buf := make([]color.RGBA, width*height)
	if err := r.ComputeSlice(vol, p, width, height, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// ComputeScalars fills dst with the interpolated normalized values of the
// plane, using NaN for positions outside the volume.
func (r *Resampler) ComputeScalars(vol *volume.Volume, p plane.Plane, width, height int, dst []float64) error {
	if err := checkSize(width, height, len(dst)); err != nil {
		return err
	}
	ext := vol.Extents()
	return r.each(width, height, func(lo, hi int) error {
		for py := lo; py < hi; py++ {
			row := dst[py*width : (py+1)*width]
			v := coord(py, height)
			for px := range row {
				pos := p.At(coord(px, width), v)
				if !interpolation.Inside(ext, pos) {
					row[px] = math.NaN()
					continue
				}
				val, err := r.kernel(vol, pos)
				if err != nil {
					return fmt.Errorf("pixel (%d,%d): %w", px, py, err)
				}
				row[px] = val
			}
		}
		return nil
	})
}

// each runs fn over disjoint row bands [lo,hi) covering [0,height).
func (r *Resampler) each(width, height int, fn func(lo, hi int) error) error {
	bands := r.workers
	if bands > height {
		bands = height
	}
	if bands <= 1 {
		return fn(0, height)
	}

	var g errgroup.Group
	g.SetLimit(r.workers)
	per := (height + bands - 1) / bands
	for lo := 0; lo < height; lo += per {
		lo, hi := lo, min(lo+per, height)
		g.Go(func() error { return fn(lo, hi) })
	}
	return g.Wait()
}

func coord(i, n int) float64 {
	if n == 1 {
		return 0
	}
	return float64(i) / float64(n-1)
}

func checkSize(width, height, n int) error {
	if width < 1 || height < 1 {
		return fmt.Errorf("%w: %dx%d", ErrBufferSize, width, height)
	}
	if n != width*height {
		return fmt.Errorf("%w: %d pixels for %dx%d", ErrBufferSize, n, width, height)
	}
	return nil
}
