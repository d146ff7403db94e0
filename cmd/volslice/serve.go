package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"volslice/internal/logging"
	"volslice/internal/session"
	"volslice/pkg/server"
)

func newServeCommand(root *rootOpts) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve slices over HTTP",
		Long: `Serve slices over HTTP:

  GET /health/live
  GET /volumes
  GET /volumes/:dataset
  GET /slice?dataset=&orientation=&offset=&rotation=&width=&height=&format=png|jpeg|tiff|bmp|raw`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			r, err := newResampler(cfg)
			if err != nil {
				return err
			}
			sess := session.New(session.FileLoader(cfg.Datasets), r, cfg.Server.CacheSize)
			srv := server.New(cfg, sess)

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
			go func() {
				sig := <-stop
				logging.Infof("Received %s, shutting down", sig)
				if err := srv.Shutdown(); err != nil {
					logging.Errorf("shutdown: %v", err)
				}
			}()

			return srv.Listen()
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address, overrides server.addr")
	return cmd
}
