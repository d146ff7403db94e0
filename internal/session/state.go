package session

import (
	"fmt"

	"volslice/internal/models"
	"volslice/pkg/plane"
)

// State is an immutable snapshot of what the viewer shows. Every transition
// returns a copy with Version incremented, so a renderer can tell whether
// anything changed since its last frame.
type State struct {
	Version uint64
	Dataset models.Dataset
	plane.Params
}

// Initial is the state shown before any interaction: the first dataset,
// axial, no offset and no rotation.
func Initial() State {
	return State{Dataset: models.Baby, Params: plane.Params{Orientation: plane.Axial}}
}

// WithDataset switches datasets and resets the plane to axial, offset 0,
// rotation 0.
func (s State) WithDataset(d models.Dataset) State {
	return State{
		Version: s.Version + 1,
		Dataset: d,
		Params:  plane.Params{Orientation: plane.Axial},
	}
}

// WithOrientation switches the normal axis and resets the offset. The
// rotation is kept.
func (s State) WithOrientation(o plane.Orientation) State {
	s.Version++
	s.Orientation = o
	s.Offset = 0
	return s
}

// WithOffset moves the plane along its normal.
func (s State) WithOffset(offset float64) State {
	s.Version++
	s.Offset = offset
	return s
}

// WithRotation turns the plane about its normal.
func (s State) WithRotation(degrees float64) State {
	s.Version++
	s.Rotation = degrees
	return s
}

func (s State) String() string {
	return fmt.Sprintf("v%d %s %s offset=%g rotation=%g", s.Version, s.Dataset, s.Orientation, s.Offset, s.Rotation)
}
