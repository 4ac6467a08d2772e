package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/spf13/cobra"

	"github.com/bamsammich/zerocopy/internal/config"
	"github.com/bamsammich/zerocopy/internal/event"
	"github.com/bamsammich/zerocopy/internal/stats"
	"github.com/bamsammich/zerocopy/internal/ui"
)

var version = "dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

// rootOptions holds the persistent flags and the loaded config file.
type rootOptions struct {
	logCloser io.Closer
	logFile   string
	cfg       config.Config
	verbose   bool
	quiet     bool
}

func run(args []string) int {
	cmd, opts := newRootCmd()
	cmd.SetArgs(args)
	err := cmd.Execute()
	if opts.logCloser != nil {
		opts.logCloser.Close()
	}
	return exitCode(err)
}

func newRootCmd() (*cobra.Command, *rootOptions) {
	opts := &rootOptions{}
	var showVersion bool

	rootCmd := &cobra.Command{
		Use:   "zerocopy",
		Short: "Move file data between descriptors with kernel zero-copy primitives",
		Long: `zerocopy moves file data using the kernel's zero-copy interfaces:
sendfile(2) on Linux, FreeBSD, DragonFly, macOS and Solaris, send_file(2) on
AIX and fcopyfile(3) on macOS. Data never passes through user space.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if showVersion {
				fmt.Fprintf(cmd.OutOrStdout(), "zerocopy %s\n", version)
				return nil
			}
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().BoolVarP(&opts.quiet, "quiet", "q", false, "only print errors")
	rootCmd.PersistentFlags().StringVar(&opts.logFile, "log", "", "write structured JSON log to FILE")
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "print version and exit")

	rootCmd.AddCommand(
		newCopyCmd(opts),
		newSendCmd(opts),
		newServeCmd(opts),
		newCapsCmd(),
		newDocsCmd(),
	)
	return rootCmd, opts
}

// setup loads the config file and installs the default slog logger.
func (o *rootOptions) setup(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		slog.Warn("failed to load config", "path", config.Path(), "error", err)
	}
	o.cfg = cfg

	if !cmd.Flags().Changed("log") && cfg.Defaults.Log != nil {
		o.logFile = *cfg.Defaults.Log
	}

	logLevel := slog.LevelWarn
	if o.verbose {
		logLevel = slog.LevelDebug
	} else if !o.quiet {
		logLevel = slog.LevelInfo
	}
	textHandler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel,
	})
	var logHandler slog.Handler = textHandler
	if o.logFile != "" {
		lf, lfErr := os.Create(o.logFile)
		if lfErr != nil {
			return fmt.Errorf("open log file: %w", lfErr)
		}
		o.logCloser = lf
		jsonHandler := slog.NewJSONHandler(lf, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
		logHandler = ui.NewMultiHandler(textHandler, jsonHandler)
	}
	slog.SetDefault(slog.New(logHandler))
	return nil
}

// progress wires a stats collector and event channel to a presenter.
type progress struct {
	collector *stats.Collector
	events    chan event.Event
	presenter ui.Presenter
	wg        sync.WaitGroup
}

func (o *rootOptions) startProgress(cmd *cobra.Command) *progress {
	p := &progress{
		collector: stats.NewCollector(),
		events:    make(chan event.Event, 256),
	}
	p.presenter = ui.NewPresenter(ui.Config{
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Stats:     p.collector,
		IsTTY:     isTerminal(cmd.ErrOrStderr()),
		Quiet:     o.quiet,
	})

	presenterEvents := p.events
	if o.logFile != "" {
		// Tee events through a goroutine that writes structured records
		// before forwarding to the presenter.
		presenterEvents = make(chan event.Event, 256)
		src := p.events
		dst := presenterEvents
		p.wg.Go(func() {
			defer close(dst)
			for ev := range src {
				logEvent(ev)
				dst <- ev
			}
		})
	}

	p.wg.Go(func() {
		_ = p.presenter.Run(presenterEvents) //nolint:errcheck // presenters only fail on write errors
	})
	return p
}

// finish closes the event stream, waits for the presenter and prints the summary.
func (p *progress) finish(cmd *cobra.Command) {
	close(p.events)
	p.wg.Wait()
	if summary := p.presenter.Summary(); summary != "" {
		fmt.Fprintln(cmd.ErrOrStderr(), summary)
	}
}

func logEvent(ev event.Event) {
	attrs := []slog.Attr{
		slog.String("type", ev.Type.String()),
		slog.String("path", ev.Path),
		slog.Int64("size", ev.Size),
	}
	if ev.Peer != "" {
		attrs = append(attrs, slog.String("peer", ev.Peer))
	}
	if ev.Method != "" {
		attrs = append(attrs, slog.String("method", ev.Method))
	}
	if ev.Error != nil {
		attrs = append(attrs, slog.String("error", ev.Error.Error()))
	}
	slog.LogAttrs(context.Background(), slog.LevelDebug, "zerocopy.event", attrs...)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && ui.IsTTY(f.Fd())
}

// exitError carries a process exit code through cobra.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}

// failure logs err and maps it to an exit code: 1 when some bytes moved
// before the failure, 2 when nothing did.
func failure(err error, moved int64) error {
	slog.Error("transfer failed", "error", err)
	if moved > 0 {
		return &exitError{code: 1} // partial failure
	}
	return &exitError{code: 2} // total failure
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exitError
	if errors.As(err, &exitErr) {
		return exitErr.code
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return 2
}
