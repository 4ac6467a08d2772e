package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bamsammich/zerocopy/internal/engine"
	"github.com/bamsammich/zerocopy/internal/units"
)

func newSendCmd(root *rootOptions) *cobra.Command {
	var (
		tf        transferFlags
		offset    offsetFlag
		countStr  string
		header    string
		trailer   string
		network   string
		flagNames []string
		timeout   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "send [flags] <address> <file>",
		Short: "Send a file range to a socket with sendfile",
		Long: `Connect to address and send a range of file with the platform's
sendfile primitive.

--offset accepts any integer (decimal, 0x hex, 0o octal); values that do not
fit the kernel's offset type are rejected before anything is sent. Without
--count the file is sent to its end. --header and --trailer are sent around
the data, inside the same kernel call where the platform supports it.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			applyConfigDefaults(cmd, root.cfg.Defaults, &tf, nil)
			limiter, err := tf.limiter()
			if err != nil {
				return err
			}
			chunk, err := tf.chunkSize()
			if err != nil {
				return err
			}
			var count int64
			if countStr != "" {
				if count, err = units.ParseSize(countStr); err != nil {
					return fmt.Errorf("invalid --count: %w", err)
				}
			}
			flags, err := parseSendFlags(flagNames)
			if err != nil {
				return err
			}

			addr, path := args[0], args[1]
			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("open source: %w", err)
			}
			defer f.Close()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			dialer := net.Dialer{Timeout: timeout}
			conn, err := dialer.DialContext(ctx, network, addr)
			if err != nil {
				return fmt.Errorf("connect %s: %w", addr, err)
			}
			defer conn.Close()

			sendConn, ok := conn.(engine.Conn)
			if !ok {
				return errors.New("connection does not expose a socket descriptor")
			}

			p := root.startProgress(cmd)
			slog.Debug("starting send", "path", path, "addr", addr, "offset", offset.String(), "count", count)
			result, err := engine.Send(ctx, sendConn, f, engine.SendOptions{
				Offset:  offset.v,
				Header:  []byte(header),
				Trailer: []byte(trailer),
				Limiter: limiter,
				Events:  p.events,
				Stats:   p.collector,
				Count:   count,
				Chunk:   chunk,
				Flags:   flags,
			})
			p.finish(cmd)
			if err != nil {
				return failure(err, result.BytesSent)
			}
			return nil
		},
	}

	tf.register(cmd, true)
	cmd.Flags().Var(&offset, "offset", "first source byte to send (default 0)")
	cmd.Flags().StringVar(&countStr, "count", "", "bytes to send (e.g. 4K, 1M; default: to end of file)")
	cmd.Flags().StringVar(&header, "header", "", "bytes to send before the data")
	cmd.Flags().StringVar(&trailer, "trailer", "", "bytes to send after the data")
	cmd.Flags().StringVar(&network, "network", "tcp", "network to dial (tcp, tcp4, tcp6, unix)")
	cmd.Flags().StringSliceVar(&flagNames, "flag", nil, "sendfile flag name, see `zerocopy caps` (repeatable)")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "connect timeout")
	return cmd
}
