package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"volslice/internal/models"
	"volslice/internal/session"
	"volslice/pkg/config"
	"volslice/pkg/plane"
	"volslice/pkg/source"
	"volslice/pkg/volume"
)

// viewOpts are the flags shared by the commands that cut slices. Unset
// flags fall back to the configuration's view section.
type viewOpts struct {
	input       string
	dataset     string
	orientation string
	offset      float64
	rotation    float64
	width       int
	height      int
}

func (o *viewOpts) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.input, "input", "i", "", "PVM file to slice instead of a configured dataset")
	cmd.Flags().StringVarP(&o.dataset, "dataset", "d", "", "Dataset to slice (Baby, CT-Head, Fuel)")
	cmd.Flags().StringVar(&o.orientation, "orientation", "", "Plane orientation (axial, sagittal, coronal)")
	cmd.Flags().Float64Var(&o.offset, "offset", 0, "Plane offset along its normal, 0-100 percent")
	cmd.Flags().Float64Var(&o.rotation, "rotation", 0, "Plane rotation about its normal in degrees")
	cmd.Flags().IntVar(&o.width, "width", 0, "Slice width in pixels")
	cmd.Flags().IntVar(&o.height, "height", 0, "Slice height in pixels")
}

// state resolves the view state from the configuration and the flags that
// were set on cmd.
func (o *viewOpts) state(cmd *cobra.Command, cfg *config.Config) (session.State, error) {
	st := session.Initial().WithDataset(cfg.View.Dataset)
	if o.dataset != "" {
		d, err := models.ParseDataset(o.dataset)
		if err != nil {
			return st, err
		}
		st = st.WithDataset(d)
	}

	orientation := cfg.View.Orientation
	if o.orientation != "" {
		parsed, err := plane.ParseOrientation(o.orientation)
		if err != nil {
			return st, err
		}
		orientation = parsed
	}
	st = st.WithOrientation(orientation)

	offset, rotation := cfg.View.Offset, cfg.View.Rotation
	if cmd.Flags().Changed("offset") {
		offset = o.offset
	}
	if cmd.Flags().Changed("rotation") {
		rotation = o.rotation
	}
	return st.WithOffset(offset).WithRotation(rotation), nil
}

func (o *viewOpts) size(cfg *config.Config) (int, int) {
	w, h := cfg.Output.Width, cfg.Output.Height
	if o.width > 0 {
		w = o.width
	}
	if o.height > 0 {
		h = o.height
	}
	return w, h
}

// volume loads either the --input file or the configured dataset.
func (o *viewOpts) volume(cfg *config.Config, d models.Dataset) (*volume.Volume, error) {
	if o.input != "" {
		return source.Open(o.input)
	}
	path, ok := cfg.DatasetPath(d)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no configured file", session.ErrUnknownDataset, d)
	}
	return source.Open(path)
}
