package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r3"

	"volslice/internal/models"
	"volslice/pkg/source"
)

type phantomOpts struct {
	shape   string
	size    []int
	spacing []float64
	output  string
}

func newPhantomCommand(root *rootOpts) *cobra.Command {
	opts := &phantomOpts{}

	cmd := &cobra.Command{
		Use:   "phantom",
		Short: "Write a synthetic PVM volume",
		Long: fmt.Sprintf(`Write a synthetic single-component PVM volume. Shapes: %s.
The output is compressed when its name ends in .gz, .zst or .sz.`, strings.Join(source.Shapes(), ", ")),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := root.load(); err != nil {
				return err
			}
			if len(opts.size) != 3 {
				return fmt.Errorf("--size needs three values, got %d", len(opts.size))
			}
			if len(opts.spacing) != 3 {
				return fmt.Errorf("--spacing needs three values, got %d", len(opts.spacing))
			}
			raw, err := source.Phantom(opts.shape, models.Extents{X: opts.size[0], Y: opts.size[1], Z: opts.size[2]})
			if err != nil {
				return err
			}
			raw.Header.Spacing = r3.Vec{X: opts.spacing[0], Y: opts.spacing[1], Z: opts.spacing[2]}
			if err := source.Create(opts.output, raw); err != nil {
				return err
			}
			fmt.Printf("Wrote %s phantom %s to %s\n", opts.shape, raw.Header.Extents, opts.output)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.shape, "shape", "sphere", "Phantom shape")
	cmd.Flags().IntSliceVar(&opts.size, "size", []int{64, 64, 64}, "Voxels along x,y,z")
	cmd.Flags().Float64SliceVar(&opts.spacing, "spacing", []float64{1, 1, 1}, "Voxel spacing along x,y,z")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "phantom.pvm", "Output file")
	return cmd
}
