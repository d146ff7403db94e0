package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"volslice/internal/logging"
	"volslice/pkg/config"
	"volslice/pkg/interpolation"
	"volslice/pkg/resample"
)

type rootOpts struct {
	configPath string
	verbose    bool
}

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &rootOpts{}

	cmd := &cobra.Command{
		Use:   "volslice",
		Short: "Cut arbitrary planar slices out of 3D volume datasets",
		Long: `volslice samples a plane through a PVM volume with trilinear interpolation
and maps the result to colors. Slices can be saved as images, swept along
the plane normal, or served over HTTP.`,
		SilenceUsage: true,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logging.Shutdown()
		},
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "volslice.yaml", "Configuration file (.yaml or .toml)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log debug messages")

	cmd.AddCommand(
		newSliceCommand(opts),
		newSweepCommand(opts),
		newInfoCommand(opts),
		newPhantomCommand(opts),
		newServeCommand(opts),
		newConfigCommand(opts),
	)
	return cmd
}

// load reads the configuration and sets up logging from it.
func (o *rootOpts) load() (*config.Config, error) {
	cfg, err := config.LoadConfig(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.verbose {
		cfg.Log.Verbose = true
	}
	cfg.Log.Apply()
	logging.Debugf("using configuration %s", o.configPath)
	return cfg, nil
}

// newResampler builds the resampler described by cfg.
func newResampler(cfg *config.Config) (*resample.Resampler, error) {
	tf, err := cfg.TransferFunc()
	if err != nil {
		return nil, err
	}
	kernel, err := interpolation.ByName(cfg.Processing.Kernel)
	if err != nil {
		return nil, err
	}
	return resample.New(tf,
		resample.WithKernel(kernel),
		resample.WithWorkers(cfg.Processing.NumCores),
	), nil
}

func banner(title string) {
	fmt.Println("================================")
	fmt.Println(title)
	fmt.Println("================================")
}
