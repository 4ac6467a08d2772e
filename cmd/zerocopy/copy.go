package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bamsammich/zerocopy/internal/engine"
)

func newCopyCmd(root *rootOptions) *cobra.Command {
	var (
		tf       transferFlags
		verify   bool
		noFollow bool
	)

	cmd := &cobra.Command{
		Use:   "copy [flags] <source> <destination>",
		Short: "Copy a file with sendfile or fcopyfile",
		Long: `Copy a regular file using only kernel zero-copy primitives.

On Linux the copy is a sendfile(2) loop between the two files. On macOS
fcopyfile(3) is used. Where neither primitive can copy between regular
files the command fails instead of falling back to read/write.

If the destination is an existing directory the file is copied into it.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			applyConfigDefaults(cmd, root.cfg.Defaults, &tf, &verify)
			limiter, err := tf.limiter()
			if err != nil {
				return err
			}

			src, dst := args[0], args[1]
			if info, err := os.Stat(dst); err == nil && info.IsDir() {
				dst = filepath.Join(dst, filepath.Base(src))
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			p := root.startProgress(cmd)
			slog.Debug("starting copy", "src", src, "dst", dst, "verify", verify, "bwlimit", tf.bwlimit)
			result, err := engine.CopyFile(ctx, src, dst, engine.CopyOptions{
				Limiter:          limiter,
				Events:           p.events,
				Stats:            p.collector,
				NoFollowSymlinks: noFollow,
				Verify:           verify,
			})
			p.finish(cmd)
			if err != nil {
				return failure(err, result.BytesWritten)
			}

			if result.Symlink {
				slog.Info("created symlink", "dst", dst)
			}
			if verify && !root.quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "blake3 %s  %s\n", result.Digest, dst)
			}
			return nil
		},
	}

	tf.register(cmd, false)
	cmd.Flags().BoolVar(&verify, "verify", false, "verify checksums after copy (BLAKE3)")
	cmd.Flags().BoolVarP(&noFollow, "no-dereference", "P", false, "copy a symlink source as a symlink")
	return cmd
}
