package main

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/time/rate"

	"github.com/bamsammich/zerocopy/internal/config"
	"github.com/bamsammich/zerocopy/internal/engine"
	"github.com/bamsammich/zerocopy/internal/platform"
	"github.com/bamsammich/zerocopy/internal/units"
)

// offsetFlag is a pflag.Value holding an arbitrary-precision offset, so a
// value too wide for the platform reaches the transfer layer intact and is
// rejected there rather than silently wrapped by flag parsing.
type offsetFlag struct {
	v *big.Int
}

var _ pflag.Value = (*offsetFlag)(nil)

func (f *offsetFlag) String() string {
	if f.v == nil {
		return ""
	}
	return f.v.String()
}

func (*offsetFlag) Type() string { return "offset" }

func (f *offsetFlag) Set(val string) error {
	v, ok := platform.ParseOffset(val)
	if !ok {
		return fmt.Errorf("invalid offset %q", val)
	}
	f.v = v
	return nil
}

// transferFlags are the pacing flags shared by copy, send and serve.
type transferFlags struct {
	bwlimit string
	chunk   string
}

func (f *transferFlags) register(cmd *cobra.Command, withChunk bool) {
	cmd.Flags().StringVar(&f.bwlimit, "bwlimit", "", "bandwidth limit (e.g. 100M, 1G)")
	if withChunk {
		cmd.Flags().StringVar(&f.chunk, "chunk", "", "bytes requested per kernel call (default 4M)")
	}
}

// limiter parses --bwlimit; an empty value means unlimited.
func (f *transferFlags) limiter() (*rate.Limiter, error) {
	if f.bwlimit == "" {
		return nil, nil //nolint:nilnil // nil limiter means unlimited
	}
	n, err := units.ParseSize(f.bwlimit)
	if err != nil {
		return nil, fmt.Errorf("invalid --bwlimit: %w", err)
	}
	if n <= 0 {
		return nil, fmt.Errorf("invalid --bwlimit: %q must be positive", f.bwlimit)
	}
	return engine.NewBWLimiter(n), nil
}

func (f *transferFlags) chunkSize() (int64, error) {
	if f.chunk == "" {
		return 0, nil
	}
	n, err := units.ParseSize(f.chunk)
	if err != nil {
		return 0, fmt.Errorf("invalid --chunk: %w", err)
	}
	return n, nil
}

// applyConfigDefaults applies config file defaults for flags not explicitly set on the CLI.
func applyConfigDefaults(cmd *cobra.Command, defaults config.DefaultsConfig, tf *transferFlags, verify *bool) {
	if verify != nil && !cmd.Flags().Changed("verify") && defaults.Verify != nil {
		*verify = *defaults.Verify
	}
	if !cmd.Flags().Changed("bwlimit") && defaults.BWLimit != nil {
		tf.bwlimit = *defaults.BWLimit
	}
	if cmd.Flags().Lookup("chunk") != nil && !cmd.Flags().Changed("chunk") && defaults.Chunk != nil {
		tf.chunk = *defaults.Chunk
	}
}

// parseSendFlags maps flag names such as SF_NODISKIO to the platform's
// sendfile flag bits.
func parseSendFlags(names []string) (int, error) {
	defined := platform.Capabilities().Flags
	var flags int
	for _, name := range names {
		bit, ok := defined[strings.ToUpper(name)]
		if !ok {
			return 0, fmt.Errorf("unknown sendfile flag %q on this platform", name)
		}
		flags |= bit
	}
	return flags, nil
}
