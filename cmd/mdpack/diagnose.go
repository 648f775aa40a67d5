package main

import (
	"github.com/spf13/cobra"

	"github.com/ryotapoi/mdpack/internal/core"
)

func newDiagnoseCmd(root *rootOptions) *cobra.Command {
	var format, fields string

	cmd := &cobra.Command{
		Use:   "diagnose",
		Short: "Show ambiguous names, unresolved links and unreadable notes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			fieldList := parseFields(fields)
			if err := validateFields(fieldList, validDiagnoseFieldsCLI, "diagnose"); err != nil {
				return err
			}

			result, err := core.Diagnose(root.vault, core.DiagnoseOptions{
				Fields: fieldList,
				Config: &root.config,
				Logger: root.log,
			})
			if err != nil {
				return err
			}

			switch format {
			case "json":
				return printDiagnoseJSON(cmd.OutOrStdout(), result, fieldList)
			default:
				return printDiagnoseText(cmd.OutOrStdout(), result, fieldList)
			}
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "output format (json or text)")
	cmd.Flags().StringVar(&fields, "fields", "", "comma-separated fields to output")
	return cmd
}
