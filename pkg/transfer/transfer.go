// Package transfer maps normalized intensities to display colors.
package transfer

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"sort"
	"strings"

	"cogentcore.org/core/colors"
	"cogentcore.org/core/colors/colormap"
)

// ErrInvalidControlPoints is returned by Piecewise for unusable point sets.
var ErrInvalidControlPoints = errors.New("invalid transfer control points")

// ErrUnknownPreset is returned by Preset for names it does not know.
var ErrUnknownPreset = errors.New("unknown transfer preset")

// Func maps t in [0,1] to an opaque or translucent color. Implementations
// must be pure. Every Func in this package clamps t into [0,1] and treats
// NaN as 0.
type Func func(t float64) color.RGBA

func clamp(t float64) float64 {
	switch {
	case math.IsNaN(t), t < 0:
		return 0
	case t > 1:
		return 1
	}
	return t
}

func channel(f float64) uint8 {
	return uint8(math.Round(f * 255))
}

// Grayscale is the baseline ramp: 0 is black, 1 is white, alpha is 255.
func Grayscale(t float64) color.RGBA {
	v := channel(clamp(t))
	return color.RGBA{R: v, G: v, B: v, A: 255}
}

// Inverted is Grayscale reversed.
func Inverted(t float64) color.RGBA {
	return Grayscale(1 - clamp(t))
}

// HotMap is the black, red, yellow, white heat ramp. It is registered in
// colormap.AvailableMaps as "Hot".
var HotMap = &colormap.Map{
	Name:    "Hot",
	Blend:   colors.RGB,
	NoColor: color.RGBA{0, 0, 0, 255},
	Colors: []color.RGBA{
		{0, 0, 0, 255},
		{255, 0, 0, 255},
		{255, 255, 0, 255},
		{255, 255, 255, 255},
	},
}

func init() {
	colormap.AvailableMaps[HotMap.Name] = HotMap
}

// FromMap adapts a color map. The map's NoColor is never used since NaN is
// clamped to 0 first.
func FromMap(cm *colormap.Map) Func {
	return func(t float64) color.RGBA {
		return cm.Map(float32(clamp(t)))
	}
}

// ControlPoint pins a color at a position of the ramp
type ControlPoint struct {
	Position float64  `yaml:"position" toml:"position" json:"position"`
	Color    [4]uint8 `yaml:"color" toml:"color" json:"color"`
}

func (p ControlPoint) rgba() color.RGBA {
	return color.RGBA{R: p.Color[0], G: p.Color[1], B: p.Color[2], A: p.Color[3]}
}

// Piecewise blends linearly in RGB between control points, which need not be
// evenly spaced. Inputs before the first point or after the last take that
// point's color.
func Piecewise(points []ControlPoint) (Func, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: no points", ErrInvalidControlPoints)
	}
	pts := append([]ControlPoint(nil), points...)
	for _, p := range pts {
		if math.IsNaN(p.Position) || p.Position < 0 || p.Position > 1 {
			return nil, fmt.Errorf("%w: position %v not in [0,1]", ErrInvalidControlPoints, p.Position)
		}
	}
	sort.SliceStable(pts, func(i, j int) bool { return pts[i].Position < pts[j].Position })

	// segs[i] spans pts[i-1] to pts[i]; segs[0] is unused
	segs := make([]colormap.Map, len(pts))
	for i := 1; i < len(pts); i++ {
		segs[i] = colormap.Map{
			Blend:  colors.RGB,
			Colors: []color.RGBA{pts[i-1].rgba(), pts[i].rgba()},
		}
	}

	return func(t float64) color.RGBA {
		t = clamp(t)
		i := sort.Search(len(pts), func(i int) bool { return pts[i].Position >= t })
		switch {
		case i == 0:
			return pts[0].rgba()
		case i == len(pts):
			return pts[len(pts)-1].rgba()
		}
		lo, hi := pts[i-1].Position, pts[i].Position
		return segs[i].Map(float32((t - lo) / (hi - lo)))
	}, nil
}

// Preset returns a named transfer function. Besides grayscale and inverted,
// any colormap.AvailableMaps entry (hot, viridis, jet, ...) is accepted,
// matched case-insensitively.
func Preset(name string) (Func, error) {
	switch strings.ToLower(name) {
	case "", "grayscale", "gray":
		return Grayscale, nil
	case "inverted":
		return Inverted, nil
	}
	for k, cm := range colormap.AvailableMaps {
		if strings.EqualFold(k, name) {
			return FromMap(cm), nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
}

// Presets lists the names Preset accepts, builtin ramps first.
func Presets() []string {
	return append([]string{"grayscale", "inverted"}, colormap.AvailableMapsList()...)
}
