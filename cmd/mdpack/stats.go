package main

import (
	"github.com/spf13/cobra"

	"github.com/ryotapoi/mdpack/internal/core"
)

func newStatsCmd(root *rootOptions) *cobra.Command {
	var format, fields string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show vault statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			fieldList := parseFields(fields)
			if err := validateFields(fieldList, validStatsFieldsCLI, "stats"); err != nil {
				return err
			}

			result, err := core.Stats(root.vault, core.StatsOptions{
				Fields: fieldList,
				Config: &root.config,
				Logger: root.log,
			})
			if err != nil {
				return err
			}

			switch format {
			case "json":
				return printStatsJSON(cmd.OutOrStdout(), result, fieldList)
			default:
				return printStatsText(cmd.OutOrStdout(), result, fieldList)
			}
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "output format (json or text)")
	cmd.Flags().StringVar(&fields, "fields", "", "comma-separated fields to output")
	return cmd
}
