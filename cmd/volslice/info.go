package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"volslice/internal/models"
	"volslice/pkg/source"
)

func newInfoCommand(root *rootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info [file.pvm ...]",
		Short: "Print dimensions, spacing and value ranges of volumes",
		Long: `Print dimensions, spacing and value ranges of the given PVM files, or of
every configured dataset when no file is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			paths := args
			if len(paths) == 0 {
				for _, d := range models.Datasets {
					if p, ok := cfg.DatasetPath(d); ok {
						paths = append(paths, p)
					}
				}
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			defer w.Flush()
			for _, path := range paths {
				vol, err := source.Open(path)
				if err != nil {
					fmt.Fprintf(w, "%s\terror: %v\n", path, err)
					continue
				}
				sp := vol.Spacing()
				kind := "scalar"
				if vol.IsVectorField() {
					kind = "vector"
				}
				fmt.Fprintf(w, "%s\t%s\t%d components (%s)\tspacing %g x %g x %g\t%s\n",
					path, vol.Extents(), vol.Components(), kind, sp.X, sp.Y, sp.Z,
					humanize.Bytes(uint64(vol.SizeBytes())))
				for c := 0; c < vol.Components(); c++ {
					r, err := vol.Range(c)
					if err != nil {
						return err
					}
					fmt.Fprintf(w, "\tcomponent %d\trange [%g, %g]\t\t\n", c, r.Min, r.Max)
				}
			}
			return nil
		},
	}
	return cmd
}
