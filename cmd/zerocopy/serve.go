package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bamsammich/zerocopy/internal/config"
	"github.com/bamsammich/zerocopy/internal/server"
)

const defaultListen = ":9877"

func newServeCmd(root *rootOptions) *cobra.Command {
	var (
		tf      transferFlags
		listen  string
		header  string
		trailer string
	)

	cmd := &cobra.Command{
		Use:   "serve [flags] <file>",
		Short: "Send a file to every client that connects",
		Long: `Listen on a TCP address and send file to each accepted connection with
sendfile, framed by the optional --header and --trailer. The server runs
until interrupted; active transfers get 30s to finish.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			applyConfigDefaults(cmd, root.cfg.Defaults, &tf, nil)
			applyServeDefaults(cmd, root.cfg.Serve, &listen, &header, &trailer)
			limiter, err := tf.limiter()
			if err != nil {
				return err
			}
			chunk, err := tf.chunkSize()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			p := root.startProgress(cmd)
			defer p.finish(cmd)

			srv, err := server.New(server.Config{
				Stats:      p.collector,
				Events:     p.events,
				Limiter:    limiter,
				ListenAddr: listen,
				Path:       args[0],
				Header:     []byte(header),
				Trailer:    []byte(trailer),
				Chunk:      chunk,
			})
			if err != nil {
				return err
			}
			return srv.Serve(ctx)
		},
	}

	tf.register(cmd, true)
	cmd.Flags().StringVar(&listen, "listen", defaultListen, "listen address (host:port)")
	cmd.Flags().StringVar(&header, "header", "", "bytes to send before the file")
	cmd.Flags().StringVar(&trailer, "trailer", "", "bytes to send after the file")
	return cmd
}

// applyServeDefaults applies the [serve] config section for flags not set on the CLI.
func applyServeDefaults(cmd *cobra.Command, cfg config.ServeConfig, listen, header, trailer *string) {
	if !cmd.Flags().Changed("listen") && cfg.Listen != nil {
		*listen = *cfg.Listen
	}
	if !cmd.Flags().Changed("header") && cfg.Header != nil {
		*header = *cfg.Header
	}
	if !cmd.Flags().Changed("trailer") && cfg.Trailer != nil {
		*trailer = *cfg.Trailer
	}
}
