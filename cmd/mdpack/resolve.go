package main

import (
	"github.com/spf13/cobra"

	"github.com/ryotapoi/mdpack/internal/core"
)

func newResolveCmd(root *rootOptions) *cobra.Command {
	var format, fields string

	cmd := &cobra.Command{
		Use:   "resolve LINK...",
		Short: "Show which file a wiki-link resolves to",
		Long: `Resolve each LINK the way export resolves links inside notes. A link may
be given with or without brackets, e.g. "[[Note#Heading|shown]]" or "Note".`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			fieldList := parseFields(fields)
			if err := validateFields(fieldList, validResolveFields, "resolve"); err != nil {
				return err
			}

			v, err := core.OpenVault(root.vault, core.OpenOptions{Config: &root.config, Logger: root.log})
			if err != nil {
				return err
			}
			links := make([]core.Link, 0, len(args))
			for _, arg := range args {
				links = append(links, v.Extractor.ResolveLink(arg))
			}

			switch format {
			case "json":
				return printResolveJSON(cmd.OutOrStdout(), links, fieldList)
			default:
				return printResolveText(cmd.OutOrStdout(), links, fieldList)
			}
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "output format (json or text)")
	cmd.Flags().StringVar(&fields, "fields", "", "comma-separated fields to output")
	return cmd
}
