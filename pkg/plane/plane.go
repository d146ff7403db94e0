// Package plane builds the oriented sampling quad used to cut a slice out of
// a volume.
package plane

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrInvalidParams is returned for offsets outside [0,100], non-finite
	// angles or empty extents.
	ErrInvalidParams = errors.New("invalid plane parameters")

	// ErrDegeneratePlane is returned when the three corners are collinear.
	ErrDegeneratePlane = errors.New("degenerate plane")
)

// Orientation selects the plane's normal axis
type Orientation int

const (
	// Axial slices are normal to +Z
	Axial Orientation = iota
	// Sagittal slices are normal to +X
	Sagittal
	// Coronal slices are normal to +Y
	Coronal
)

// Orientations lists every orientation in display order
var Orientations = []Orientation{Axial, Sagittal, Coronal}

func (o Orientation) String() string {
	switch o {
	case Axial:
		return "axial"
	case Sagittal:
		return "sagittal"
	case Coronal:
		return "coronal"
	default:
		return fmt.Sprintf("Orientation(%d)", int(o))
	}
}

// ParseOrientation accepts the names printed by String, case-insensitively.
func ParseOrientation(s string) (Orientation, error) {
	for _, o := range Orientations {
		if strings.EqualFold(s, o.String()) {
			return o, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown orientation %q", ErrInvalidParams, s)
}

// MarshalText implements encoding.TextMarshaler
func (o Orientation) MarshalText() ([]byte, error) {
	if o < Axial || o > Coronal {
		return nil, fmt.Errorf("%w: orientation %d", ErrInvalidParams, int(o))
	}
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (o *Orientation) UnmarshalText(text []byte) error {
	parsed, err := ParseOrientation(string(text))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

// Plane is a parallelogram in voxel index space. BottomLeft->TopLeft and
// BottomLeft->BottomRight are its two local axes.
type Plane struct {
	TopLeft     r3.Vec
	BottomLeft  r3.Vec
	BottomRight r3.Vec
}

// TopRight returns the derived fourth corner.
func (p Plane) TopRight() r3.Vec {
	return r3.Add(p.TopLeft, r3.Sub(p.BottomRight, p.BottomLeft))
}

// Center returns the midpoint of TopLeft and BottomRight.
func (p Plane) Center() r3.Vec {
	return r3.Scale(0.5, r3.Add(p.TopLeft, p.BottomRight))
}

// At maps plane coordinates (u,v) in [0,1]^2 to a position. (0,0) is
// BottomLeft, (1,0) BottomRight and (0,1) TopLeft.
func (p Plane) At(u, v float64) r3.Vec {
	right := r3.Sub(p.BottomRight, p.BottomLeft)
	up := r3.Sub(p.TopLeft, p.BottomLeft)
	return r3.Add(p.BottomLeft, r3.Add(r3.Scale(u, right), r3.Scale(v, up)))
}

// Normal returns the unit normal right x up, or the zero vector when the
// plane is degenerate.
func (p Plane) Normal() r3.Vec {
	n := r3.Cross(r3.Sub(p.BottomRight, p.BottomLeft), r3.Sub(p.TopLeft, p.BottomLeft))
	if r3.Norm(n) == 0 {
		return r3.Vec{}
	}
	return r3.Unit(n)
}

// Validate rejects collinear or non-finite corners.
func (p Plane) Validate() error {
	for _, c := range []r3.Vec{p.TopLeft, p.BottomLeft, p.BottomRight} {
		if !finite(c.X) || !finite(c.Y) || !finite(c.Z) {
			return fmt.Errorf("%w: non-finite corner %v", ErrDegeneratePlane, c)
		}
	}
	n := r3.Cross(r3.Sub(p.BottomRight, p.BottomLeft), r3.Sub(p.TopLeft, p.BottomLeft))
	if r3.Norm(n) == 0 {
		return fmt.Errorf("%w: corners are collinear", ErrDegeneratePlane)
	}
	return nil
}

func (p Plane) String() string {
	return fmt.Sprintf("plane{tl=%v bl=%v br=%v}", p.TopLeft, p.BottomLeft, p.BottomRight)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
