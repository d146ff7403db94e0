// Package models holds the small value types shared between the volume,
// plane and session packages.
package models

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// Extents is the number of voxels along each axis of a volume
type Extents struct {
	// X is the voxel count along x (width)
	X int

	// Y is the voxel count along y (height)
	Y int

	// Z is the voxel count along z (depth)
	Z int
}

// Valid reports whether every axis holds at least one voxel
func (e Extents) Valid() bool {
	return e.X > 0 && e.Y > 0 && e.Z > 0
}

// Voxels returns the total number of grid cells
func (e Extents) Voxels() int {
	return e.X * e.Y * e.Z
}

// Max returns the index of the last voxel along each axis as floats.
func (e Extents) Max() r3.Vec {
	return r3.Vec{X: float64(e.X - 1), Y: float64(e.Y - 1), Z: float64(e.Z - 1)}
}

func (e Extents) String() string {
	return fmt.Sprintf("%dx%dx%d", e.X, e.Y, e.Z)
}

// Dataset names one of the volume sources offered to the viewer
type Dataset int

const (
	Baby Dataset = iota
	CTHead
	Fuel
)

// Datasets lists every known dataset in display order
var Datasets = []Dataset{Baby, CTHead, Fuel}

var datasetNames = map[Dataset]string{
	Baby:   "Baby",
	CTHead: "CT-Head",
	Fuel:   "Fuel",
}

func (d Dataset) String() string {
	if name, ok := datasetNames[d]; ok {
		return name
	}
	return fmt.Sprintf("Dataset(%d)", int(d))
}

// ParseDataset resolves a dataset from its display name, case-insensitively.
func ParseDataset(s string) (Dataset, error) {
	for d, name := range datasetNames {
		if strings.EqualFold(name, s) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown dataset %q", s)
}

// MarshalText implements encoding.TextMarshaler
func (d Dataset) MarshalText() ([]byte, error) {
	if _, ok := datasetNames[d]; !ok {
		return nil, fmt.Errorf("unknown dataset %d", int(d))
	}
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Dataset) UnmarshalText(text []byte) error {
	parsed, err := ParseDataset(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
