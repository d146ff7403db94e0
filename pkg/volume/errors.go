package volume

import (
	"errors"
	"fmt"
)

// ErrOutOfRange matches every *OutOfRangeError under errors.Is.
var ErrOutOfRange = errors.New("index out of range")

// Axis names the index that failed a bounds check
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
	AxisComponent
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x coordinate"
	case AxisY:
		return "y coordinate"
	case AxisZ:
		return "z coordinate"
	case AxisComponent:
		return "component index"
	default:
		return fmt.Sprintf("Axis(%d)", int(a))
	}
}

// OutOfRangeError reports a query index outside [0, Limit).
type OutOfRangeError struct {
	Axis  Axis
	Index int
	Limit int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("%s %d out of range [0,%d)", e.Axis, e.Index, e.Limit)
}

// Is lets errors.Is(err, ErrOutOfRange) match any axis.
func (e *OutOfRangeError) Is(target error) bool {
	return target == ErrOutOfRange
}
