package main

import (
	"github.com/spf13/cobra"

	"github.com/ryotapoi/mdpack/internal/core"
)

func newManifestCmd(root *rootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "manifest DIR",
		Short: "Show the manifest recorded in an export destination",
		Long: `Show the run recorded by "mdpack export --manifest" in DIR: the seeds,
depth limit, exported files and the links between them.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			m, err := core.ReadManifest(args[0])
			if err != nil {
				return err
			}
			switch format {
			case "json":
				return printManifestJSON(cmd.OutOrStdout(), m)
			default:
				return printManifestText(cmd.OutOrStdout(), m)
			}
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "output format (json or text)")
	return cmd
}
