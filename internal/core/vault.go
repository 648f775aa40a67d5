package core

import (
	"github.com/ryotapoi/mdpack/internal/logging"
)

// Vault is an indexed source tree with its link extractor.
type Vault struct {
	Config    Config
	Index     *Index
	Extractor *Extractor
}

// OpenOptions controls OpenVault.
type OpenOptions struct {
	Config   *Config  // nil: LoadConfig(vaultPath)
	SkipDirs []string // directories left out of the index
	Logger   logging.Logger
}

// OpenVault loads configuration and builds the index of vaultPath.
func OpenVault(vaultPath string, opts OpenOptions) (*Vault, error) {
	log := logging.OrNoOp(opts.Logger)

	var cfg Config
	if opts.Config != nil {
		cfg = *opts.Config
	} else {
		loaded, err := LoadConfig(vaultPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	ix, err := BuildIndex(vaultPath, IndexOptions{
		Exclude:            cfg.Index.Exclude,
		UseGitignore:       cfg.Index.UseGitignore,
		SkipDirs:           opts.SkipDirs,
		FrontmatterAliases: cfg.Index.FrontmatterAliases,
		Strict:             cfg.Index.OnCollision == CollisionError,
		Logger:             log,
	})
	if err != nil {
		return nil, err
	}
	ex, err := NewExtractor(ix, ExtractorOptions{
		Extensions:       cfg.Links.Extensions,
		FallbackEncoding: cfg.Links.FallbackEncoding,
		Logger:           log,
	})
	if err != nil {
		return nil, err
	}
	return &Vault{Config: cfg, Index: ix, Extractor: ex}, nil
}
