package core

import (
	"fmt"
	"os"

	"github.com/ryotapoi/mdpack/internal/logging"
)

// StatsOptions controls which fields to return.
type StatsOptions struct {
	Fields []string // nil/empty = all
	Config *Config
	Logger logging.Logger
}

// StatsResult contains vault statistics.
type StatsResult struct {
	FilesTotal       int
	LinkBearingFiles int
	LinksTotal       int
	LinksResolved    int
	LinksUnresolved  int
	Collisions       int
	BytesTotal       int64
}

var validStatsFields = map[string]bool{
	"files_total":        true,
	"link_bearing_files": true,
	"links_total":        true,
	"links_resolved":     true,
	"links_unresolved":   true,
	"collisions":         true,
	"bytes_total":        true,
}

func validateStatsFields(fields []string) error {
	for _, f := range fields {
		if !validStatsFields[f] {
			return fmt.Errorf("unknown stats field: %s", f)
		}
	}
	return nil
}

// Stats returns aggregate statistics for the vault.
func Stats(vaultPath string, opts StatsOptions) (*StatsResult, error) {
	if err := validateStatsFields(opts.Fields); err != nil {
		return nil, err
	}

	v, err := OpenVault(vaultPath, OpenOptions{Config: opts.Config, Logger: opts.Logger})
	if err != nil {
		return nil, err
	}

	result := &StatsResult{
		FilesTotal: v.Index.Len(),
		Collisions: len(v.Index.Collisions()),
	}

	needLinks := isFieldActive("link_bearing_files", opts.Fields) ||
		isFieldActive("links_total", opts.Fields) ||
		isFieldActive("links_resolved", opts.Fields) ||
		isFieldActive("links_unresolved", opts.Fields)
	needBytes := isFieldActive("bytes_total", opts.Fields)

	for _, rel := range v.Index.Files() {
		if needBytes {
			if info, err := os.Stat(v.Index.AbsPath(rel)); err == nil {
				result.BytesTotal += info.Size()
			}
		}
		if !needLinks || !v.Extractor.LinkBearing(rel) {
			continue
		}
		result.LinkBearingFiles++
		links, err := v.Extractor.ScanLinks(rel)
		if err != nil {
			continue
		}
		for _, l := range links {
			result.LinksTotal++
			if l.Resolved != "" {
				result.LinksResolved++
			} else {
				result.LinksUnresolved++
			}
		}
	}
	return result, nil
}
