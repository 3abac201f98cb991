package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ephemeralab/mpeph/mpfile"
	"github.com/ephemeralab/mpeph/server"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve FILE...",
		Short: "Serve point queries against one or more files over HTTP",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger()
			if err != nil {
				return err
			}

			srv := server.New(logger)
			for _, path := range args {
				f, err := mpfile.Open(path)
				if err != nil {
					return err
				}
				defer f.Close()

				if err := srv.Add(f); err != nil {
					return err
				}

				logger.Info().
					Str("path", path).
					Stringer("body", f.Body()).
					Stringer("quantity", f.Quantity()).
					Msg("serving file")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return srv.Run(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")

	return cmd
}
