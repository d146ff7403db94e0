package visualization

import (
	"errors"
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"volslice/pkg/plane"
	"volslice/pkg/resample"
	"volslice/pkg/volume"
)

// ErrEmptySlice is returned by Stats when no pixel of the slice lies inside
// the volume.
var ErrEmptySlice = errors.New("slice does not intersect the volume")

// Viewer cuts oblique slices out of one volume at a fixed resolution.
type Viewer struct {
	// volume is the data being sliced
	volume *volume.Volume

	// resampler turns a plane into colors
	resampler *resample.Resampler

	// width and height are the output resolution in pixels
	width  int
	height int
}

// NewViewer creates a new slice viewer
func NewViewer(vol *volume.Volume, r *resample.Resampler, width, height int) *Viewer {
	return &Viewer{
		volume:    vol,
		resampler: r,
		width:     width,
		height:    height,
	}
}

// Plane builds the sampling plane for params within the viewer's volume.
func (v *Viewer) Plane(params plane.Params) (plane.Plane, error) {
	return plane.Build(v.volume.Extents(), params)
}

// ExtractSlice resamples the plane described by params into an image. The
// bottom-left corner of the plane is the bottom-left pixel of the image.
func (v *Viewer) ExtractSlice(params plane.Params) (*image.RGBA, error) {
	p, err := v.Plane(params)
	if err != nil {
		return nil, err
	}
	buf, err := v.resampler.Slice(v.volume, p, v.width, v.height)
	if err != nil {
		return nil, err
	}
	return resample.ToImage(buf, v.width, v.height)
}

// SaveSlice saves an extracted slice, encoded according to the file extension
func (v *Viewer) SaveSlice(img image.Image, filename string) error {
	format, err := FormatFor(filename)
	if err != nil {
		return err
	}
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := Encode(file, img, format); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// SaveSliceSequence sweeps the offset from 0 to 100 in steps images and saves
// them to outputDir. Orientation and rotation come from params. It returns
// the written file names in sweep order.
func (v *Viewer) SaveSliceSequence(params plane.Params, steps int, outputDir, format string) ([]string, error) {
	if steps < 1 {
		return nil, fmt.Errorf("sweep needs at least one step, got %d", steps)
	}
	ext, err := Extension(format)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, err
	}

	files := make([]string, 0, steps)
	for i := 0; i < steps; i++ {
		if steps > 1 {
			params.Offset = 100 * float64(i) / float64(steps-1)
		}
		img, err := v.ExtractSlice(params)
		if err != nil {
			return files, err
		}

		filename := filepath.Join(outputDir, fmt.Sprintf("slice_%s_%03d%s", params.Orientation, i, ext))
		if err := v.SaveSlice(img, filename); err != nil {
			return files, err
		}
		files = append(files, filename)
	}

	return files, nil
}

// SliceStats summarizes the normalized values of the pixels of a slice that
// fall inside the volume.
type SliceStats struct {
	Pixels int
	Inside int
	Min    float64
	Max    float64
	Mean   float64
	StdDev float64
	Median float64
}

// Stats resamples params as scalars and summarizes them.
func (v *Viewer) Stats(params plane.Params) (SliceStats, error) {
	p, err := v.Plane(params)
	if err != nil {
		return SliceStats{}, err
	}
	scalars := make([]float64, v.width*v.height)
	if err := v.resampler.ComputeScalars(v.volume, p, v.width, v.height, scalars); err != nil {
		return SliceStats{}, err
	}

	inside := scalars[:0]
	for _, s := range scalars {
		if !math.IsNaN(s) {
			inside = append(inside, s)
		}
	}
	st := SliceStats{Pixels: v.width * v.height, Inside: len(inside)}
	if len(inside) == 0 {
		return st, ErrEmptySlice
	}

	sort.Float64s(inside)
	st.Min = floats.Min(inside)
	st.Max = floats.Max(inside)
	st.Median = stat.Quantile(0.5, stat.Empirical, inside, nil)
	if len(inside) == 1 {
		st.Mean = inside[0]
	} else {
		st.Mean, st.StdDev = stat.MeanStdDev(inside, nil)
	}
	return st, nil
}
