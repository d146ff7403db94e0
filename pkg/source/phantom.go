package source

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"

	"volslice/internal/models"
	"volslice/pkg/volume"
)

// Shape generates the value of one synthetic voxel.
type Shape func(x, y, z int, ext models.Extents) uint8

var shapes = map[string]Shape{
	"sphere":   sphere,
	"gradient": gradient,
	"constant": constant,
	"shells":   shells,
}

// Shapes lists the phantom names accepted by Phantom.
func Shapes() []string {
	names := make([]string, 0, len(shapes))
	for name := range shapes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Phantom builds a single-component synthetic volume.
func Phantom(name string, ext models.Extents) (*Raw, error) {
	shape, ok := shapes[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown phantom %q", ErrUnsupportedFormat, name)
	}
	if !ext.Valid() {
		return nil, fmt.Errorf("%w: extents %s", volume.ErrInvalidVolume, ext)
	}
	data := make([]byte, ext.Voxels())
	i := 0
	for z := 0; z < ext.Z; z++ {
		for y := 0; y < ext.Y; y++ {
			for x := 0; x < ext.X; x++ {
				data[i] = shape(x, y, z, ext)
				i++
			}
		}
	}
	return &Raw{
		Header: volume.Header{
			Name:       "phantom:" + name,
			Extents:    ext,
			Components: 1,
			Spacing:    r3.Vec{X: 1, Y: 1, Z: 1},
		},
		Data: data,
	}, nil
}

// radius returns the distance of (x,y,z) from the volume center relative
// to half the shortest axis.
func radius(x, y, z int, ext models.Extents) float64 {
	c := r3.Scale(0.5, ext.Max())
	half := math.Max(math.Min(c.X, math.Min(c.Y, c.Z)), 0.5)
	p := r3.Vec{X: float64(x), Y: float64(y), Z: float64(z)}
	return r3.Norm(r3.Sub(p, c)) / half
}

func sphere(x, y, z int, ext models.Extents) uint8 {
	r := radius(x, y, z, ext)
	if r >= 1 {
		return 0
	}
	return uint8(math.Round(255 * (1 - r)))
}

// gradient ramps from 0 at x=0 to 255 at the last column.
func gradient(x, _, _ int, ext models.Extents) uint8 {
	if ext.X == 1 {
		return 0
	}
	return uint8(math.Round(255 * float64(x) / float64(ext.X-1)))
}

func constant(_, _, _ int, _ models.Extents) uint8 {
	return 128
}

func shells(x, y, z int, ext models.Extents) uint8 {
	band := int(math.Floor(radius(x, y, z, ext) * 4))
	if band%2 == 0 {
		return 40
	}
	return 220
}
