package plane

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"volslice/internal/models"
)

// Params are the user-facing slice controls
type Params struct {
	// Orientation picks the normal axis
	Orientation Orientation `yaml:"orientation" toml:"orientation" json:"orientation"`

	// Offset slides the plane along its normal, 0 = near face, 100 = far face
	Offset float64 `yaml:"offset" toml:"offset" json:"offset"`

	// Rotation turns the plane about its normal, in degrees
	Rotation float64 `yaml:"rotation" toml:"rotation" json:"rotation"`
}

// Validate checks the ranges Build relies on.
func (p Params) Validate() error {
	if p.Orientation < Axial || p.Orientation > Coronal {
		return fmt.Errorf("%w: orientation %d", ErrInvalidParams, int(p.Orientation))
	}
	if !(p.Offset >= 0 && p.Offset <= 100) {
		return fmt.Errorf("%w: offset %v not in [0,100]", ErrInvalidParams, p.Offset)
	}
	if !finite(p.Rotation) {
		return fmt.Errorf("%w: rotation %v", ErrInvalidParams, p.Rotation)
	}
	return nil
}

// basis holds the unrotated corners of an orientation together with its
// normal and the extent along that normal.
type basis struct {
	normal      r3.Vec
	depth       float64
	topLeft     r3.Vec
	bottomRight r3.Vec
}

func orientationBasis(o Orientation, m r3.Vec) basis {
	switch o {
	case Sagittal:
		return basis{
			normal:      r3.Vec{X: 1},
			depth:       m.X,
			topLeft:     r3.Vec{Z: m.Z},
			bottomRight: r3.Vec{Y: m.Y},
		}
	case Coronal:
		return basis{
			normal:      r3.Vec{Y: 1},
			depth:       m.Y,
			topLeft:     r3.Vec{Z: m.Z},
			bottomRight: r3.Vec{X: m.X},
		}
	default:
		return basis{
			normal:      r3.Vec{Z: 1},
			depth:       m.Z,
			topLeft:     r3.Vec{Y: m.Y},
			bottomRight: r3.Vec{X: m.X},
		}
	}
}

// Build computes the sampling plane for a volume of the given extents.
//
// The orientation's base corners are translated by offset percent of the
// last voxel index along the normal, then rotated about the normal around
// the midpoint of TopLeft and BottomRight. A volume one voxel thick along
// one of the plane's in-plane axes gives collinear corners and fails with
// ErrDegeneratePlane, so flat volumes only slice normal to their flat axis.
func Build(extents models.Extents, params Params) (Plane, error) {
	if !extents.Valid() {
		return Plane{}, fmt.Errorf("%w: extents %s", ErrInvalidParams, extents)
	}
	if err := params.Validate(); err != nil {
		return Plane{}, err
	}

	b := orientationBasis(params.Orientation, extents.Max())
	offset := r3.Scale(b.depth*(params.Offset/100), b.normal)
	p := Plane{
		TopLeft:     r3.Add(b.topLeft, offset),
		BottomLeft:  offset,
		BottomRight: r3.Add(b.bottomRight, offset),
	}

	if params.Rotation != 0 {
		p = Rotate(p, b.normal, params.Rotation)
	}

	if err := p.Validate(); err != nil {
		return Plane{}, fmt.Errorf("%s plane for %s: %w", params.Orientation, extents, err)
	}
	return p, nil
}

// Rotate turns every corner of p by degrees about axis, pivoting on
// p.Center().
func Rotate(p Plane, axis r3.Vec, degrees float64) Plane {
	rot := r3.NewRotation(degrees*math.Pi/180, axis)
	center := p.Center()
	turn := func(c r3.Vec) r3.Vec {
		return r3.Add(center, rot.Rotate(r3.Sub(c, center)))
	}
	return Plane{
		TopLeft:     turn(p.TopLeft),
		BottomLeft:  turn(p.BottomLeft),
		BottomRight: turn(p.BottomRight),
	}
}
