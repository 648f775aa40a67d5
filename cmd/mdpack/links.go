package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ryotapoi/mdpack/internal/core"
)

func newLinksCmd(root *rootOptions) *cobra.Command {
	var format string
	var unresolvedOnly bool

	cmd := &cobra.Command{
		Use:   "links FILE",
		Short: "List the wiki-links of a note and where they resolve",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}

			v, err := core.OpenVault(root.vault, core.OpenOptions{Config: &root.config, Logger: root.log})
			if err != nil {
				return err
			}
			file, ok := core.ResolveSeed(v.Index, args[0])
			if !ok {
				return fmt.Errorf("file not found in vault: %s", args[0])
			}
			links, err := v.Extractor.ScanLinks(file)
			if err != nil {
				return fmt.Errorf("read %s: %w", file, err)
			}
			if unresolvedOnly {
				kept := links[:0]
				for _, l := range links {
					if l.Resolved == "" {
						kept = append(kept, l)
					}
				}
				links = kept
			}

			switch format {
			case "json":
				return printLinksJSON(cmd.OutOrStdout(), file, links)
			default:
				return printLinksText(cmd.OutOrStdout(), file, links)
			}
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "output format (json or text)")
	cmd.Flags().BoolVar(&unresolvedOnly, "unresolved", false, "only list links that resolve to nothing")
	return cmd
}
