package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

// newDocsCmd generates man pages or markdown for every zerocopy command.
// Output carries no generation timestamp so it can be checked in.
func newDocsCmd() *cobra.Command {
	var dir, format string

	cmd := &cobra.Command{
		Use:    "gen-docs",
		Short:  "Generate man pages or markdown for zerocopy",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			gen, err := docsGenerator(format)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
			root := cmd.Root()
			disableAutoGenTag(root)
			return gen(root, dir)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "docs", "output directory")
	cmd.Flags().StringVar(&format, "format", "man", "output format (man or markdown)")
	return cmd
}

func docsGenerator(format string) (func(*cobra.Command, string) error, error) {
	switch format {
	case "man":
		header := &doc.GenManHeader{
			Title:   "ZEROCOPY",
			Section: "1",
			Source:  "zerocopy " + version,
			Manual:  "zerocopy manual",
		}
		return func(root *cobra.Command, dir string) error {
			return doc.GenManTree(root, header, dir)
		}, nil
	case "markdown", "md":
		return doc.GenMarkdownTree, nil
	default:
		return nil, fmt.Errorf("unknown format %q (use man or markdown)", format)
	}
}

func disableAutoGenTag(cmd *cobra.Command) {
	cmd.DisableAutoGenTag = true
	for _, c := range cmd.Commands() {
		disableAutoGenTag(c)
	}
}
