package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/ryotapoi/mdpack/internal/core"
)

// parseFields splits a comma-separated field string into a slice.
// Returns nil for empty input.
func parseFields(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// validateFormat checks that format is "json" or "text".
func validateFormat(format string) error {
	if format != "json" && format != "text" {
		return fmt.Errorf("invalid format: %q (must be json or text)", format)
	}
	return nil
}

// validateFields checks that all fields are in the valid set.
// name is used in the error message (e.g. "resolve", "stats").
func validateFields(fields []string, valid map[string]bool, name string) error {
	for _, f := range fields {
		if !valid[f] {
			return fmt.Errorf("unknown %s field: %s", name, f)
		}
	}
	return nil
}

// fieldSet returns a set of fields to show. If fields is nil/empty, all valid fields are shown.
func fieldSet(fields []string, valid map[string]bool) map[string]bool {
	if len(fields) == 0 {
		all := make(map[string]bool)
		for k := range valid {
			all[k] = true
		}
		return all
	}
	m := make(map[string]bool, len(fields))
	for _, f := range fields {
		m[f] = true
	}
	return m
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// depthLabel describes a traversal depth limit.
func depthLabel(maxDepth int) string {
	switch {
	case maxDepth < 0:
		return "all linked files (unbounded)"
	case maxDepth == 0:
		return "seeds only (depth 0)"
	default:
		return fmt.Sprintf("linked files up to depth %d", maxDepth)
	}
}

func fileCount(n int) string {
	if n == 1 {
		return "1 file"
	}
	return fmt.Sprintf("%d files", n)
}

// --- Export output ---

type exportJSONFile struct {
	Path string `json:"path"`
	Dest string `json:"dest"`
	Size int64  `json:"size"`
}

type exportJSONFailure struct {
	Path     string `json:"path"`
	Category string `json:"category"`
	Error    string `json:"error"`
}

type exportJSONOutput struct {
	Source       string              `json:"source"`
	Dest         string              `json:"dest"`
	FilesIndexed int                 `json:"files_indexed"`
	MaxDepth     *int                `json:"max_depth"` // null when unbounded
	DryRun       bool                `json:"dry_run"`
	Seeds        []string            `json:"seeds"`
	MissingSeeds []string            `json:"missing_seeds"`
	Linked       int                 `json:"linked"`
	Collisions   int                 `json:"collisions"`
	Copied       []exportJSONFile    `json:"copied"`
	Failures     []exportJSONFailure `json:"failures"`
	Bytes        int64               `json:"bytes"`
	Manifest     string              `json:"manifest,omitempty"`
}

func printExportJSON(w io.Writer, r *core.ExportResult) error {
	out := exportJSONOutput{
		Source:       r.Source,
		Dest:         r.Dest,
		FilesIndexed: r.FilesIndexed,
		DryRun:       r.DryRun,
		Seeds:        nonNil(r.Traverse.Seeds),
		MissingSeeds: nonNil(r.Traverse.UnresolvedSeeds),
		Linked:       r.Linked(),
		Collisions:   len(r.Collisions),
		Copied:       make([]exportJSONFile, 0, len(r.Materialize.Copied)),
		Failures:     make([]exportJSONFailure, 0, len(r.Materialize.Failures)),
		Bytes:        r.Materialize.Bytes(),
		Manifest:     r.ManifestPath,
	}
	if r.MaxDepth >= 0 {
		d := r.MaxDepth
		out.MaxDepth = &d
	}
	for _, c := range r.Materialize.Copied {
		out.Copied = append(out.Copied, exportJSONFile{Path: c.Path, Dest: c.Dest, Size: c.Size})
	}
	for _, f := range r.Materialize.Failures {
		out.Failures = append(out.Failures, exportJSONFailure{Path: f.Path, Category: string(f.Category), Error: f.Err.Error()})
	}
	return writeJSON(w, out)
}

func printExportText(w io.Writer, r *core.ExportResult) error {
	fmt.Fprintf(w, "indexed: %s in %s\n", fileCount(r.FilesIndexed), r.Source)
	fmt.Fprintf(w, "mode: %s\n", depthLabel(r.MaxDepth))
	fmt.Fprintf(w, "seeds: %s\n", strings.Join(r.Traverse.Seeds, ", "))
	if len(r.Traverse.UnresolvedSeeds) > 0 {
		fmt.Fprintf(w, "missing_seeds: %s\n", strings.Join(r.Traverse.UnresolvedSeeds, ", "))
	}
	if len(r.Collisions) > 0 {
		fmt.Fprintf(w, "ambiguous_names: %d (run 'mdpack diagnose' for details)\n", len(r.Collisions))
	}
	fmt.Fprintf(w, "collected: %d seeds + %d linked\n", len(r.Traverse.Seeds), r.Linked())

	verb := "copied"
	if r.DryRun {
		verb = "would_copy"
	}
	size := humanize.Bytes(uint64(r.Materialize.Bytes()))
	fmt.Fprintf(w, "%s: %s (%s) to %s\n", verb, fileCount(len(r.Materialize.Copied)), size, r.Dest)

	if len(r.Materialize.Failures) > 0 {
		fmt.Fprintf(w, "failed: %s\n", fileCount(len(r.Materialize.Failures)))
		for _, f := range r.Materialize.Failures {
			fmt.Fprintf(w, "- path: %s\n", f.Path)
			fmt.Fprintf(w, "  category: %s\n", f.Category)
			fmt.Fprintf(w, "  error: %v\n", f.Err)
		}
	}
	if r.ManifestPath != "" {
		fmt.Fprintf(w, "manifest: %s\n", r.ManifestPath)
	}
	return nil
}

// --- Resolve output ---

var validResolveFields = map[string]bool{
	"link":     true,
	"target":   true,
	"path":     true,
	"resolved": true,
}

func buildResolveMap(l core.Link, fields []string) map[string]any {
	show := fieldSet(fields, validResolveFields)
	m := make(map[string]any)
	if show["link"] {
		m["link"] = l.Raw
	}
	if show["target"] {
		m["target"] = l.Target
	}
	if show["path"] && l.Resolved != "" {
		m["path"] = l.Resolved
	}
	if show["resolved"] {
		m["resolved"] = l.Resolved != ""
	}
	return m
}

func printResolveJSON(w io.Writer, links []core.Link, fields []string) error {
	out := make([]map[string]any, len(links))
	for i, l := range links {
		out[i] = buildResolveMap(l, fields)
	}
	return writeJSON(w, out)
}

func printResolveText(w io.Writer, links []core.Link, fields []string) error {
	show := fieldSet(fields, validResolveFields)
	for _, l := range links {
		prefix := "- "
		line := func(format string, args ...any) {
			fmt.Fprintf(w, prefix+format+"\n", args...)
			prefix = "  "
		}
		if show["link"] {
			line("link: %s", l.Raw)
		}
		if show["target"] {
			line("target: %s", l.Target)
		}
		if show["path"] && l.Resolved != "" {
			line("path: %s", l.Resolved)
		}
		if show["resolved"] {
			line("resolved: %v", l.Resolved != "")
		}
	}
	return nil
}

// --- Links output ---

type linkJSON struct {
	Link   string `json:"link"`
	Target string `json:"target"`
	Path   string `json:"path,omitempty"`
	Line   int    `json:"line"`
}

func printLinksJSON(w io.Writer, file string, links []core.Link) error {
	out := struct {
		File  string     `json:"file"`
		Links []linkJSON `json:"links"`
	}{File: file, Links: make([]linkJSON, 0, len(links))}
	for _, l := range links {
		out.Links = append(out.Links, linkJSON{Link: l.Raw, Target: l.Target, Path: l.Resolved, Line: l.Line})
	}
	return writeJSON(w, out)
}

func printLinksText(w io.Writer, file string, links []core.Link) error {
	fmt.Fprintf(w, "file: %s\n", file)
	fmt.Fprintln(w, "links:")
	for _, l := range links {
		path := l.Resolved
		if path == "" {
			path = "(unresolved)"
		}
		fmt.Fprintf(w, "- %d: %s -> %s\n", l.Line, l.Raw, path)
	}
	return nil
}

// --- Stats output ---

var validStatsFieldsCLI = map[string]bool{
	"files_total":        true,
	"link_bearing_files": true,
	"links_total":        true,
	"links_resolved":     true,
	"links_unresolved":   true,
	"collisions":         true,
	"bytes_total":        true,
}

func printStatsJSON(w io.Writer, r *core.StatsResult, fields []string) error {
	show := fieldSet(fields, validStatsFieldsCLI)
	m := make(map[string]int64)
	if show["files_total"] {
		m["files_total"] = int64(r.FilesTotal)
	}
	if show["link_bearing_files"] {
		m["link_bearing_files"] = int64(r.LinkBearingFiles)
	}
	if show["links_total"] {
		m["links_total"] = int64(r.LinksTotal)
	}
	if show["links_resolved"] {
		m["links_resolved"] = int64(r.LinksResolved)
	}
	if show["links_unresolved"] {
		m["links_unresolved"] = int64(r.LinksUnresolved)
	}
	if show["collisions"] {
		m["collisions"] = int64(r.Collisions)
	}
	if show["bytes_total"] {
		m["bytes_total"] = r.BytesTotal
	}
	return writeJSON(w, m)
}

func printStatsText(w io.Writer, r *core.StatsResult, fields []string) error {
	show := fieldSet(fields, validStatsFieldsCLI)
	if show["files_total"] {
		fmt.Fprintf(w, "files_total: %d\n", r.FilesTotal)
	}
	if show["link_bearing_files"] {
		fmt.Fprintf(w, "link_bearing_files: %d\n", r.LinkBearingFiles)
	}
	if show["links_total"] {
		fmt.Fprintf(w, "links_total: %d\n", r.LinksTotal)
	}
	if show["links_resolved"] {
		fmt.Fprintf(w, "links_resolved: %d\n", r.LinksResolved)
	}
	if show["links_unresolved"] {
		fmt.Fprintf(w, "links_unresolved: %d\n", r.LinksUnresolved)
	}
	if show["collisions"] {
		fmt.Fprintf(w, "collisions: %d\n", r.Collisions)
	}
	if show["bytes_total"] {
		fmt.Fprintf(w, "bytes_total: %s\n", humanize.Bytes(uint64(r.BytesTotal)))
	}
	return nil
}

// --- Diagnose output ---

var validDiagnoseFieldsCLI = map[string]bool{
	"collisions": true,
	"unresolved": true,
	"unreadable": true,
}

type diagnoseJSONCollision struct {
	Key    string   `json:"key"`
	Kind   string   `json:"kind"`
	Paths  []string `json:"paths"`
	Winner string   `json:"winner"`
}

type diagnoseJSONUnresolved struct {
	Source string `json:"source"`
	Link   string `json:"link"`
	Target string `json:"target"`
	Line   int    `json:"line"`
}

func printDiagnoseJSON(w io.Writer, r *core.DiagnoseResult, fields []string) error {
	show := fieldSet(fields, validDiagnoseFieldsCLI)
	m := make(map[string]any)
	if show["collisions"] {
		collisions := make([]diagnoseJSONCollision, len(r.Collisions))
		for i, c := range r.Collisions {
			collisions[i] = diagnoseJSONCollision{Key: c.Key, Kind: c.Kind, Paths: c.Paths, Winner: c.Winner}
		}
		m["collisions"] = collisions
	}
	if show["unresolved"] {
		unresolved := make([]diagnoseJSONUnresolved, len(r.Unresolved))
		for i, u := range r.Unresolved {
			unresolved[i] = diagnoseJSONUnresolved{Source: u.Source, Link: u.Raw, Target: u.Target, Line: u.Line}
		}
		m["unresolved"] = unresolved
	}
	if show["unreadable"] {
		m["unreadable"] = nonNil(r.Unreadable)
	}
	return writeJSON(w, m)
}

func printDiagnoseText(w io.Writer, r *core.DiagnoseResult, fields []string) error {
	show := fieldSet(fields, validDiagnoseFieldsCLI)
	if show["collisions"] {
		fmt.Fprintln(w, "collisions:")
		for _, c := range r.Collisions {
			fmt.Fprintf(w, "- key: %s\n", c.Key)
			fmt.Fprintf(w, "  kind: %s\n", c.Kind)
			fmt.Fprintf(w, "  resolves_to: %s\n", c.Winner)
			fmt.Fprintln(w, "  paths:")
			for _, p := range c.Paths {
				fmt.Fprintf(w, "  - %s\n", p)
			}
		}
	}
	if show["unresolved"] {
		fmt.Fprintln(w, "unresolved:")
		for _, u := range r.Unresolved {
			fmt.Fprintf(w, "- %s:%d %s\n", u.Source, u.Line, u.Raw)
		}
	}
	if show["unreadable"] {
		fmt.Fprintln(w, "unreadable:")
		for _, p := range r.Unreadable {
			fmt.Fprintf(w, "- %s\n", p)
		}
	}
	return nil
}

// --- Manifest output ---

type manifestJSONFile struct {
	Path    string `json:"path"`
	Depth   int    `json:"depth"`
	Seed    bool   `json:"seed"`
	Size    int64  `json:"size"`
	Status  string `json:"status"`
	Failure string `json:"failure,omitempty"`
}

type manifestJSONLink struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type manifestJSONOutput struct {
	RunID     string             `json:"run_id"`
	Source    string             `json:"source"`
	MaxDepth  *int               `json:"max_depth"`
	Seeds     []string           `json:"seeds"`
	CreatedAt string             `json:"created_at"`
	Files     []manifestJSONFile `json:"files"`
	Links     []manifestJSONLink `json:"links"`
}

func printManifestJSON(w io.Writer, m *core.Manifest) error {
	out := manifestJSONOutput{
		RunID:     m.RunID,
		Source:    m.Source,
		Seeds:     nonNil(m.Seeds),
		CreatedAt: m.CreatedAt.Format(time.RFC3339),
		Files:     make([]manifestJSONFile, 0, len(m.Files)),
		Links:     make([]manifestJSONLink, 0, len(m.Links)),
	}
	if m.MaxDepth >= 0 {
		d := m.MaxDepth
		out.MaxDepth = &d
	}
	for _, f := range m.Files {
		out.Files = append(out.Files, manifestJSONFile{
			Path:    f.Path,
			Depth:   f.Depth,
			Seed:    f.IsSeed,
			Size:    f.Size,
			Status:  f.Status,
			Failure: f.Failure,
		})
	}
	for _, l := range m.Links {
		out.Links = append(out.Links, manifestJSONLink{From: l.From, To: l.To})
	}
	return writeJSON(w, out)
}

func printManifestText(w io.Writer, m *core.Manifest) error {
	fmt.Fprintf(w, "run_id: %s\n", m.RunID)
	fmt.Fprintf(w, "source: %s\n", m.Source)
	fmt.Fprintf(w, "created: %s (%s)\n", m.CreatedAt.Format(time.RFC3339), humanize.Time(m.CreatedAt))
	fmt.Fprintf(w, "mode: %s\n", depthLabel(m.MaxDepth))
	fmt.Fprintf(w, "seeds: %s\n", strings.Join(m.Seeds, ", "))
	fmt.Fprintln(w, "files:")
	for _, f := range m.Files {
		status := f.Status
		if f.Failure != "" {
			status += " (" + f.Failure + ")"
		}
		fmt.Fprintf(w, "- %s depth=%d %s\n", f.Path, f.Depth, status)
	}
	fmt.Fprintf(w, "links: %d\n", len(m.Links))
	return nil
}
