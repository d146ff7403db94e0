package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"volslice/pkg/visualization"
)

type sliceOpts struct {
	view   viewOpts
	output string
	stats  bool
}

func newSliceCommand(root *rootOpts) *cobra.Command {
	opts := &sliceOpts{}

	cmd := &cobra.Command{
		Use:   "slice",
		Short: "Render one slice to an image file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			st, err := opts.view.state(cmd, cfg)
			if err != nil {
				return err
			}
			vol, err := opts.view.volume(cfg, st.Dataset)
			if err != nil {
				return err
			}
			r, err := newResampler(cfg)
			if err != nil {
				return err
			}
			width, height := opts.view.size(cfg)
			viewer := visualization.NewViewer(vol, r, width, height)

			start := time.Now()
			img, err := viewer.ExtractSlice(st.Params)
			if err != nil {
				return err
			}

			output := opts.output
			if output == "" {
				ext, err := visualization.Extension(cfg.Output.Format)
				if err != nil {
					return err
				}
				name := fmt.Sprintf("%s_%s_%03.0f_%03.0f%s", strings.ToLower(st.Dataset.String()),
					st.Orientation, st.Offset, st.Rotation, ext)
				output = filepath.Join(cfg.Output.Dir, name)
			}
			if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
				return err
			}
			if err := viewer.SaveSlice(img, output); err != nil {
				return err
			}
			fmt.Printf("Saved %dx%d %s slice of %s to %s in %s\n", width, height, st.Orientation,
				vol.Name(), output, time.Since(start).Round(time.Millisecond))

			if opts.stats {
				s, err := viewer.Stats(st.Params)
				if err != nil {
					return err
				}
				fmt.Printf("Inside volume: %d of %d pixels\n", s.Inside, s.Pixels)
				fmt.Printf("Min/Max: %.4f / %.4f\n", s.Min, s.Max)
				fmt.Printf("Mean ± StdDev: %.4f ± %.4f\n", s.Mean, s.StdDev)
				fmt.Printf("Median: %.4f\n", s.Median)
			}
			return nil
		},
	}
	opts.view.addFlags(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output image (.png, .jpg, .tif, .bmp); defaults to the output directory")
	cmd.Flags().BoolVar(&opts.stats, "stats", false, "Print statistics of the normalized slice values")
	return cmd
}

type sweepOpts struct {
	view   viewOpts
	steps  int
	dir    string
	format string
}

func newSweepCommand(root *rootOpts) *cobra.Command {
	opts := &sweepOpts{}

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Render a sequence of slices from offset 0 to 100",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			st, err := opts.view.state(cmd, cfg)
			if err != nil {
				return err
			}
			vol, err := opts.view.volume(cfg, st.Dataset)
			if err != nil {
				return err
			}
			r, err := newResampler(cfg)
			if err != nil {
				return err
			}

			steps, dir, format := cfg.Output.SweepSteps, cfg.Output.Dir, cfg.Output.Format
			if opts.steps > 0 {
				steps = opts.steps
			}
			if opts.dir != "" {
				dir = opts.dir
			}
			if opts.format != "" {
				format = opts.format
			}

			width, height := opts.view.size(cfg)
			viewer := visualization.NewViewer(vol, r, width, height)

			banner("VOLSLICE OFFSET SWEEP")
			fmt.Printf("Volume: %s (%s)\n", vol.Name(), vol.Extents())
			fmt.Printf("Orientation: %s, rotation %.1f°, %d steps\n", st.Orientation, st.Rotation, steps)

			start := time.Now()
			files, err := viewer.SaveSliceSequence(st.Params, steps, dir, format)
			if err != nil {
				return fmt.Errorf("sweep stopped after %d slices: %w", len(files), err)
			}
			fmt.Printf("Saved %d slices to %s in %.2f seconds\n", len(files), dir, time.Since(start).Seconds())
			return nil
		},
	}
	opts.view.addFlags(cmd)
	cmd.Flags().IntVar(&opts.steps, "steps", 0, "Number of slices in the sweep")
	cmd.Flags().StringVar(&opts.dir, "dir", "", "Directory for the slice images")
	cmd.Flags().StringVar(&opts.format, "format", "", "Image format (png, jpeg, tiff, bmp)")
	return cmd
}
