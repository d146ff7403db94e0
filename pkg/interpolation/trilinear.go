// Package interpolation reconstructs volume values at non-grid positions.
//
// Kernels are plain function values so the resampler can swap them without
// any type hierarchy.
package interpolation

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"volslice/internal/models"
	"volslice/pkg/volume"
)

// Kernel returns the normalized value of component 0 at pos, given in voxel
// index space. pos must lie inside the volume's bounds.
type Kernel func(vol *volume.Volume, pos r3.Vec) (float64, error)

// Named kernels accepted in configuration
var kernels = map[string]Kernel{
	"trilinear": Trilinear,
	"nearest":   Nearest,
}

// ByName returns the kernel registered under name.
func ByName(name string) (Kernel, error) {
	k, ok := kernels[name]
	if !ok {
		return nil, fmt.Errorf("unknown interpolation kernel %q", name)
	}
	return k, nil
}

// Inside reports whether pos lies in the inclusive box
// [(0,0,0), extents-(1,1,1)]. NaN coordinates are outside.
func Inside(ext models.Extents, pos r3.Vec) bool {
	m := ext.Max()
	return pos.X >= 0 && pos.X <= m.X &&
		pos.Y >= 0 && pos.Y <= m.Y &&
		pos.Z >= 0 && pos.Z <= m.Z
}

// Lerp blends a and b. It is a*(1-t) + b*t written so that equal inputs and
// t == 0 return a exactly.
func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// Cell is the 2x2x2 neighbourhood of a sample position. Cxyz holds the
// value at offset (x,y,z) from the low corner.
type Cell struct {
	C000, C100, C010, C110 float64
	C001, C101, C011, C111 float64
}

// Interpolate blends the eight corners with fractional offsets tx, ty, tz.
func (c Cell) Interpolate(tx, ty, tz float64) float64 {
	front := Lerp(Lerp(c.C000, c.C100, tx), Lerp(c.C010, c.C110, tx), ty)
	back := Lerp(Lerp(c.C001, c.C101, tx), Lerp(c.C011, c.C111, tx), ty)
	return Lerp(front, back, tz)
}

// split returns the low index, the clamped high index and the fraction
// along one axis. A position on the last layer reuses that layer as its
// high neighbour.
func split(p float64, size int) (lo, hi int, t float64) {
	f := math.Floor(p)
	lo = int(f)
	hi = lo + 1
	if hi > size-1 {
		hi = size - 1
	}
	return lo, hi, p - f
}

// CellAt gathers the neighbourhood of pos and its fractional offsets.
func CellAt(vol *volume.Volume, pos r3.Vec) (Cell, r3.Vec, error) {
	ext := vol.Extents()
	x0, x1, tx := split(pos.X, ext.X)
	y0, y1, ty := split(pos.Y, ext.Y)
	z0, z1, tz := split(pos.Z, ext.Z)

	var cell Cell
	corners := []struct {
		dst     *float64
		x, y, z int
	}{
		{&cell.C000, x0, y0, z0}, {&cell.C100, x1, y0, z0},
		{&cell.C010, x0, y1, z0}, {&cell.C110, x1, y1, z0},
		{&cell.C001, x0, y0, z1}, {&cell.C101, x1, y0, z1},
		{&cell.C011, x0, y1, z1}, {&cell.C111, x1, y1, z1},
	}
	for _, c := range corners {
		v, err := vol.SampleNormalized(c.x, c.y, c.z, 0)
		if err != nil {
			return Cell{}, r3.Vec{}, err
		}
		*c.dst = v
	}
	return cell, r3.Vec{X: tx, Y: ty, Z: tz}, nil
}

// Trilinear blends the eight voxels surrounding pos.
func Trilinear(vol *volume.Volume, pos r3.Vec) (float64, error) {
	cell, t, err := CellAt(vol, pos)
	if err != nil {
		return 0, err
	}
	return cell.Interpolate(t.X, t.Y, t.Z), nil
}

// Nearest returns the voxel whose index is closest to pos.
func Nearest(vol *volume.Volume, pos r3.Vec) (float64, error) {
	return vol.SampleNormalized(
		int(math.Round(pos.X)),
		int(math.Round(pos.Y)),
		int(math.Round(pos.Z)),
		0,
	)
}
