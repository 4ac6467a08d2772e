package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bamsammich/zerocopy/internal/platform"
)

func newCapsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "caps",
		Short: "Show the zero-copy primitives available on this platform",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			caps := platform.Capabilities()
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "method          %s\n", caps.Method)
			fmt.Fprintf(w, "sendfile        %s\n", yesNo(caps.Sendfile))
			fmt.Fprintf(w, "fcopyfile       %s\n", yesNo(caps.Fcopyfile))
			fmt.Fprintf(w, "header_trailer  %s\n", yesNo(caps.HeaderTrailer))
			fmt.Fprintf(w, "current_offset  %s\n", yesNo(caps.CurrentOffset))
			flags := "none"
			if names := caps.FlagNames(); len(names) > 0 {
				flags = strings.Join(names, " ")
			}
			fmt.Fprintf(w, "flags           %s\n", flags)
			return nil
		},
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
