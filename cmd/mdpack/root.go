package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ryotapoi/mdpack/internal/core"
	"github.com/ryotapoi/mdpack/internal/logging"
)

const vaultEnv = "MDPACK_VAULT"

// rootOptions carries the persistent flags and the state built from them
// before a subcommand runs.
type rootOptions struct {
	vault     string
	logLevel  string
	logFormat string

	config core.Config
	log    logging.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{log: logging.NoOp()}

	cmd := &cobra.Command{
		Use:   "mdpack",
		Short: "Package linked Markdown notes into a standalone vault",
		Long: `mdpack copies a set of seed notes, and the notes and attachments they
reach through [[wiki-links]], out of an Obsidian-style vault into a new
directory with the same relative layout.

The vault is read from --vault, the MDPACK_VAULT environment variable, or
the current directory. Settings are read from mdpack.yaml at the vault root.`,
		Version:       versionString(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}
			return opts.setup()
		},
	}
	cmd.SetVersionTemplate("mdpack version {{.Version}}\n")

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.vault, "vault", defaultVault(), "vault root directory")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: trace, debug, info, warn, error (overrides mdpack.yaml)")
	flags.StringVar(&opts.logFormat, "log-format", "", "log format: console, json, pretty (overrides mdpack.yaml)")

	cmd.AddCommand(
		newExportCmd(opts),
		newResolveCmd(opts),
		newLinksCmd(opts),
		newDiagnoseCmd(opts),
		newStatsCmd(opts),
		newManifestCmd(opts),
	)
	return cmd
}

func defaultVault() string {
	if v := os.Getenv(vaultEnv); v != "" {
		return v
	}
	return "."
}

// setup loads mdpack.yaml and builds the logger.
func (o *rootOptions) setup() error {
	cfg, err := core.LoadConfig(o.vault)
	if err != nil {
		return err
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if o.logFormat != "" {
		cfg.Log.Format = o.logFormat
	}
	provider, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	o.config = cfg
	o.log = provider.GetLogger("mdpack")
	return nil
}
