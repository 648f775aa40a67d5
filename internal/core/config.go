package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
	"gopkg.in/yaml.v3"

	"github.com/ryotapoi/mdpack/internal/logging"
)

const configFileName = "mdpack.yaml"

// Collision policies for IndexConfig.OnCollision.
const (
	CollisionWarn  = "warn"
	CollisionError = "error"
)

// Config represents the mdpack.yaml configuration file.
type Config struct {
	Index  IndexConfig    `yaml:"index"`
	Links  LinksConfig    `yaml:"links"`
	Export ExportConfig   `yaml:"export"`
	Log    logging.Config `yaml:"log"`
}

// IndexConfig holds name index settings.
type IndexConfig struct {
	Exclude            []string `yaml:"exclude"` // gitignore syntax
	UseGitignore       bool     `yaml:"use_gitignore"`
	FrontmatterAliases bool     `yaml:"frontmatter_aliases"`
	OnCollision        string   `yaml:"on_collision"`
}

// LinksConfig holds link extraction settings.
type LinksConfig struct {
	Extensions       []string `yaml:"extensions"`
	FallbackEncoding string   `yaml:"fallback_encoding"`
}

// ExportConfig holds export defaults.
type ExportConfig struct {
	Dest     string `yaml:"dest"` // relative paths are joined to the vault
	Manifest bool   `yaml:"manifest"`
}

// DefaultConfig returns the configuration used when mdpack.yaml is absent.
func DefaultConfig() Config {
	return Config{
		Index: IndexConfig{
			OnCollision: CollisionWarn,
		},
		Links: LinksConfig{
			Extensions:       []string{".md", ".txt"},
			FallbackEncoding: "gbk",
		},
		Export: ExportConfig{
			Dest: "../my_new_vault_dir",
		},
	}
}

// LoadConfig reads mdpack.yaml from the vault root over DefaultConfig.
// Returns the defaults and nil error if the file does not exist.
func LoadConfig(vaultPath string) (Config, error) {
	cfg := DefaultConfig()
	p := filepath.Join(vaultPath, configFileName)
	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%s: %w", configFileName, err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", configFileName, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Index.OnCollision {
	case "", CollisionWarn, CollisionError:
	default:
		return fmt.Errorf("index.on_collision: unsupported value %q (must be warn or error)", c.Index.OnCollision)
	}
	for _, ext := range c.Links.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("links.extensions: %q must start with \".\"", ext)
		}
	}
	return nil
}

// DestPath returns the export destination for vaultPath, resolving a
// relative dest against the vault root.
func (c ExportConfig) DestPath(vaultPath string) string {
	if c.Dest == "" || filepath.IsAbs(c.Dest) {
		return c.Dest
	}
	return filepath.Join(vaultPath, c.Dest)
}

// extensionSet lowercases exts into a lookup set.
func extensionSet(exts []string) map[string]bool {
	set := make(map[string]bool, len(exts))
	for _, e := range exts {
		set[strings.ToLower(e)] = true
	}
	return set
}

// excludeMatcher merges config patterns with the vault .gitignore.
// Returns nil if there is nothing to exclude.
func excludeMatcher(root string, patterns []string, useGitignore bool) *ignore.GitIgnore {
	lines := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if p = strings.TrimSpace(p); p != "" {
			lines = append(lines, p)
		}
	}
	if useGitignore {
		if data, err := os.ReadFile(filepath.Join(root, ".gitignore")); err == nil {
			lines = append(lines, strings.Split(string(data), "\n")...)
		}
	}
	if len(lines) == 0 {
		return nil
	}
	return ignore.CompileIgnoreLines(lines...)
}
