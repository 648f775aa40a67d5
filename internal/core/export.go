package core

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/ryotapoi/mdpack/internal/logging"
)

// ExportOptions controls Export.
type ExportOptions struct {
	Seeds    []string
	MaxDepth int    // Unbounded for the full closure
	Dest     string // empty: config export.dest
	Manifest bool   // also enabled by config export.manifest
	DryRun   bool
	Config   *Config // nil: LoadConfig(vaultPath)
	Logger   logging.Logger
}

// ExportResult summarizes an export run.
type ExportResult struct {
	Source       string
	Dest         string
	FilesIndexed int
	MaxDepth     int
	DryRun       bool
	Collisions   []Collision
	Traverse     *TraverseResult
	Materialize  *MaterializeResult
	ManifestPath string
}

// Linked returns how many exported files were pulled in by links.
func (r *ExportResult) Linked() int {
	return r.Traverse.Linked()
}

// Export indexes vaultPath, collects the notes reachable from the seeds
// within MaxDepth and copies them under the destination.
//
// Setup failures (bad source or destination, no valid seed, strict name
// collisions) are returned as errors. Per-file problems are reported in the
// result.
func Export(vaultPath string, opts ExportOptions) (*ExportResult, error) {
	log := logging.OrNoOp(opts.Logger)

	cfg := opts.Config
	if cfg == nil {
		loaded, err := LoadConfig(vaultPath)
		if err != nil {
			return nil, err
		}
		cfg = &loaded
	}

	source, err := filepath.Abs(vaultPath)
	if err != nil {
		return nil, err
	}
	dest := opts.Dest
	if dest == "" {
		dest = cfg.Export.DestPath(vaultPath)
	}
	if dest == "" {
		return nil, setupError(errors.New("no destination"), codeDestRoot, "no destination directory configured")
	}
	dest, err = filepath.Abs(dest)
	if err != nil {
		return nil, err
	}
	if dest == source {
		return nil, setupError(fmt.Errorf("destination is the source: %s", dest), codeDestIsSource, "destination must differ from the source vault: %s", dest)
	}

	var skip []string
	if isWithin(source, dest) {
		skip = append(skip, dest)
	}
	v, err := OpenVault(source, OpenOptions{Config: cfg, SkipDirs: skip, Logger: log})
	if err != nil {
		return nil, err
	}
	ix := v.Index
	log.Info("indexed vault", "files", ix.Len(), "root", source)

	tr, err := Traverse(ix, v.Extractor, opts.Seeds, opts.MaxDepth, log)
	if err != nil {
		return nil, err
	}
	log.Info("collected notes", "seeds", len(tr.Seeds), "linked", tr.Linked())

	mr, err := Materialize(ix, tr.Paths(), dest, MaterializeOptions{DryRun: opts.DryRun, Logger: log})
	if err != nil {
		return nil, err
	}

	result := &ExportResult{
		Source:       source,
		Dest:         dest,
		FilesIndexed: ix.Len(),
		MaxDepth:     opts.MaxDepth,
		DryRun:       opts.DryRun,
		Collisions:   ix.Collisions(),
		Traverse:     tr,
		Materialize:  mr,
	}

	if (opts.Manifest || cfg.Export.Manifest) && !opts.DryRun {
		p, err := WriteManifest(dest, NewManifest(source, opts.MaxDepth, tr, mr))
		if err != nil {
			return result, fmt.Errorf("write manifest: %w", err)
		}
		result.ManifestPath = p
	}
	return result, nil
}
