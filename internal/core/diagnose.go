package core

import (
	"fmt"

	"github.com/ryotapoi/mdpack/internal/logging"
)

// DiagnoseOptions controls which fields to return.
type DiagnoseOptions struct {
	Fields []string // nil/empty = all
	Config *Config
	Logger logging.Logger
}

// UnresolvedLink is a link whose target matches no file.
type UnresolvedLink struct {
	Source string // canonical path of the linking note
	Target string // cleaned reference
	Raw    string
	Line   int
}

// DiagnoseResult contains diagnostic information about the vault.
type DiagnoseResult struct {
	Collisions []Collision      // sorted by key
	Unresolved []UnresolvedLink // sorted by source, then line
	Unreadable []string         // link-bearing files that could not be decoded
}

var validDiagnoseFields = map[string]bool{
	"collisions": true,
	"unresolved": true,
	"unreadable": true,
}

// Diagnose reports ambiguous names and links that resolve to nothing.
func Diagnose(vaultPath string, opts DiagnoseOptions) (*DiagnoseResult, error) {
	for _, f := range opts.Fields {
		if !validDiagnoseFields[f] {
			return nil, fmt.Errorf("unknown diagnose field: %s", f)
		}
	}

	v, err := OpenVault(vaultPath, OpenOptions{Config: opts.Config, Logger: opts.Logger})
	if err != nil {
		return nil, err
	}

	result := &DiagnoseResult{}
	if isFieldActive("collisions", opts.Fields) {
		result.Collisions = v.Index.Collisions()
	}

	wantUnresolved := isFieldActive("unresolved", opts.Fields)
	wantUnreadable := isFieldActive("unreadable", opts.Fields)
	if !wantUnresolved && !wantUnreadable {
		return result, nil
	}
	for _, rel := range v.Index.Files() {
		links, err := v.Extractor.ScanLinks(rel)
		if err != nil {
			if wantUnreadable {
				result.Unreadable = append(result.Unreadable, rel)
			}
			continue
		}
		if !wantUnresolved {
			continue
		}
		for _, l := range links {
			if l.Resolved != "" {
				continue
			}
			result.Unresolved = append(result.Unresolved, UnresolvedLink{
				Source: rel,
				Target: l.Target,
				Raw:    l.Raw,
				Line:   l.Line,
			})
		}
	}
	return result, nil
}
