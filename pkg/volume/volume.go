// Package volume implements the normalized regular-grid voxel store.
//
// A Volume is built once from raw samples and is read-only afterwards, so
// every query is safe to call from concurrent goroutines.
package volume

import (
	"errors"
	"fmt"
	"math"

	"cogentcore.org/core/math32/minmax"
	"gonum.org/v1/gonum/spatial/r3"

	"volslice/internal/models"
)

// ErrInvalidVolume is returned when a header or sample buffer cannot
// describe a volume.
var ErrInvalidVolume = errors.New("invalid volume")

// Sample is any raw numeric type a loader may hand over.
type Sample interface {
	~uint8 | ~uint16 | ~uint32 | ~int8 | ~int16 | ~int32 | ~float32 | ~float64
}

// Header describes the raw layout produced by a loader
type Header struct {
	// Name identifies the source, usually its path
	Name string

	// Extents is the voxel count along x, y and z
	Extents models.Extents

	// Components is the number of values per voxel (1 = scalar field)
	Components int

	// Spacing is the physical size of one voxel along each axis
	Spacing r3.Vec
}

// Validate checks the header against a sample count.
func (h Header) Validate(samples int) error {
	if !h.Extents.Valid() {
		return fmt.Errorf("%w: extents %s", ErrInvalidVolume, h.Extents)
	}
	if h.Components < 1 {
		return fmt.Errorf("%w: %d components", ErrInvalidVolume, h.Components)
	}
	for _, s := range []float64{h.Spacing.X, h.Spacing.Y, h.Spacing.Z} {
		if !(s > 0) || math.IsInf(s, 0) {
			return fmt.Errorf("%w: spacing %v", ErrInvalidVolume, h.Spacing)
		}
	}
	if want := h.Extents.Voxels() * h.Components; samples != want {
		return fmt.Errorf("%w: %d samples, want %d", ErrInvalidVolume, samples, want)
	}
	return nil
}

// Volume is a dense 3D grid of normalized samples.
//
// Samples live in one flat slice. The voxel (x,y,z) starts at
// (x + y*width + z*width*height) * components and component c is stored at
// offset components-1-c within that group. The reversed order matches the
// raw PVM byte layout and must not be changed.
type Volume struct {
	name       string
	extents    models.Extents
	components int
	spacing    r3.Vec
	ranges     []minmax.F64
	data       []float32
}

// New normalizes raw samples into a Volume. Each component is remapped to
// [0,1] with its own min/max. A component whose min equals its max
// normalizes to 0 everywhere.
func New[T Sample](hdr Header, raw []T) (*Volume, error) {
	if err := hdr.Validate(len(raw)); err != nil {
		return nil, err
	}

	comps := hdr.Components
	ranges := make([]minmax.F64, comps)
	for i := range ranges {
		ranges[i].SetInfinity()
	}
	for i, v := range raw {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("%w: non-finite sample at %d", ErrInvalidVolume, i)
		}
		ranges[comps-1-i%comps].FitValInRange(f)
	}

	data := make([]float32, len(raw))
	for i, v := range raw {
		r := &ranges[comps-1-i%comps]
		data[i] = float32(normalize(float64(v), r))
	}

	return &Volume{
		name:       hdr.Name,
		extents:    hdr.Extents,
		components: comps,
		spacing:    hdr.Spacing,
		ranges:     ranges,
		data:       data,
	}, nil
}

func normalize(v float64, r *minmax.F64) float64 {
	span := r.Range()
	if span == 0 {
		return 0
	}
	n := (v - r.Min) / span
	switch {
	case n < 0:
		return 0
	case n > 1:
		return 1
	}
	return n
}

// Clone returns a deep copy that shares no memory with v.
func (v *Volume) Clone() *Volume {
	c := *v
	c.ranges = append([]minmax.F64(nil), v.ranges...)
	c.data = append([]float32(nil), v.data...)
	return &c
}

// Name returns the source identifier given at construction
func (v *Volume) Name() string { return v.name }

// Components returns the number of values per voxel
func (v *Volume) Components() int { return v.components }

// IsScalarField reports whether each voxel holds a single value
func (v *Volume) IsScalarField() bool { return v.components == 1 }

// IsVectorField reports whether each voxel holds more than one value
func (v *Volume) IsVectorField() bool { return v.components > 1 }

// Extents returns the voxel counts along x, y and z
func (v *Volume) Extents() models.Extents { return v.extents }

// Spacing returns the physical size of one voxel along each axis
func (v *Volume) Spacing() r3.Vec { return v.spacing }

// Voxels returns the number of grid cells
func (v *Volume) Voxels() int { return v.extents.Voxels() }

// SizeBytes returns the memory held by the sample buffer
func (v *Volume) SizeBytes() int { return len(v.data) * 4 }

// Range returns the raw (min, max) recorded for component c at load time.
func (v *Volume) Range(c int) (minmax.F64, error) {
	if c < 0 || c >= v.components {
		return minmax.F64{}, &OutOfRangeError{Axis: AxisComponent, Index: c, Limit: v.components}
	}
	return v.ranges[c], nil
}

// VoxelPositionStart returns the physical position of the voxel's low corner
func (v *Volume) VoxelPositionStart(x, y, z int) r3.Vec {
	return r3.Vec{
		X: float64(x) * v.spacing.X,
		Y: float64(y) * v.spacing.Y,
		Z: float64(z) * v.spacing.Z,
	}
}

// VoxelPositionCenter returns the physical position of the voxel's center
func (v *Volume) VoxelPositionCenter(x, y, z int) r3.Vec {
	return r3.Add(v.VoxelPositionStart(x, y, z), r3.Scale(0.5, v.spacing))
}

// VoxelPositionEnd returns the physical position of the voxel's high corner
func (v *Volume) VoxelPositionEnd(x, y, z int) r3.Vec {
	return r3.Add(v.VoxelPositionStart(x, y, z), v.spacing)
}

// SampleNormalized returns the [0,1] value of component c at (x,y,z).
// Every index is checked against an exclusive upper bound.
func (v *Volume) SampleNormalized(x, y, z, c int) (float64, error) {
	switch {
	case x < 0 || x >= v.extents.X:
		return 0, &OutOfRangeError{Axis: AxisX, Index: x, Limit: v.extents.X}
	case y < 0 || y >= v.extents.Y:
		return 0, &OutOfRangeError{Axis: AxisY, Index: y, Limit: v.extents.Y}
	case z < 0 || z >= v.extents.Z:
		return 0, &OutOfRangeError{Axis: AxisZ, Index: z, Limit: v.extents.Z}
	case c < 0 || c >= v.components:
		return 0, &OutOfRangeError{Axis: AxisComponent, Index: c, Limit: v.components}
	}

	voxel := (x + y*v.extents.X + z*v.extents.X*v.extents.Y) * v.components
	return float64(v.data[voxel+v.components-1-c]), nil
}

// Sample returns the de-normalized value of component c at (x,y,z).
func (v *Volume) Sample(x, y, z, c int) (float64, error) {
	n, err := v.SampleNormalized(x, y, z, c)
	if err != nil {
		return 0, err
	}
	return v.ranges[c].ProjValue(n), nil
}
