package core

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/ryotapoi/mdpack/internal/logging"
)

// Link is one [[...]] occurrence in a note.
type Link struct {
	Raw      string // "[[Target#Heading|Alias]]"
	Target   string // cleaned reference, "Target"
	Resolved string // canonical path, empty if unresolved
	Line     int    // 1-based
}

// ExtractorOptions controls NewExtractor. Zero values select the defaults
// of DefaultConfig.
type ExtractorOptions struct {
	Extensions       []string
	FallbackEncoding string // "none" disables the fallback
	Logger           logging.Logger
}

// Extractor reads notes and resolves their outgoing wiki-links against an
// Index.
type Extractor struct {
	index    *Index
	exts     map[string]bool
	fallback encoding.Encoding
	log      logging.Logger
}

// NewExtractor returns an Extractor resolving against ix.
func NewExtractor(ix *Index, opts ExtractorOptions) (*Extractor, error) {
	defaults := DefaultConfig().Links
	exts := opts.Extensions
	if len(exts) == 0 {
		exts = defaults.Extensions
	}
	name := opts.FallbackEncoding
	if name == "" {
		name = defaults.FallbackEncoding
	}
	var fallback encoding.Encoding
	if !strings.EqualFold(name, "none") {
		enc, err := htmlindex.Get(name)
		if err != nil {
			return nil, fmt.Errorf("fallback encoding %q: %w", name, err)
		}
		fallback = enc
	}
	return &Extractor{
		index:    ix,
		exts:     extensionSet(exts),
		fallback: fallback,
		log:      logging.OrNoOp(opts.Logger),
	}, nil
}

// ExtractLinks returns the canonical paths referenced by the note at
// canonical, in order of appearance, duplicates included. Missing files and
// files outside the extension allow-list yield nothing. Read failures and
// unresolved references are logged and skipped.
func (e *Extractor) ExtractLinks(canonical string) []string {
	links, err := e.ScanLinks(canonical)
	if err != nil {
		e.log.Warn("cannot read file", "path", canonical, "error", err)
		return nil
	}
	var out []string
	for _, l := range links {
		if l.Resolved == "" {
			e.log.Warn("unresolved link", "target", l.Target, "link", l.Raw, "from", canonical, "line", l.Line)
			continue
		}
		out = append(out, l.Resolved)
	}
	return out
}

// ScanLinks returns every non-empty link of the note at canonical, resolved
// or not. It returns nil, nil for missing or non link-bearing files.
func (e *Extractor) ScanLinks(canonical string) ([]Link, error) {
	if !e.LinkBearing(canonical) {
		return nil, nil
	}
	path := e.index.AbsPath(canonical)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, nil
	}
	content, err := e.readText(path)
	if err != nil {
		return nil, err
	}

	raws := parseWikiLinks(content)
	out := make([]Link, 0, len(raws))
	for _, r := range raws {
		target := cleanTarget(r.inner)
		if target == "" {
			continue
		}
		resolved, _ := e.resolveTarget(target)
		out = append(out, Link{
			Raw:      "[[" + r.inner + "]]",
			Target:   target,
			Resolved: resolved,
			Line:     r.line,
		})
	}
	return out, nil
}

// LinkBearing reports whether a file with this path is scanned for links.
func (e *Extractor) LinkBearing(canonical string) bool {
	return hasExtension(canonical, e.exts)
}

// ResolveLink resolves a single link written as "[[Target#x|y]]" or bare
// "Target#x|y". Resolved is empty when nothing matches.
func (e *Extractor) ResolveLink(text string) Link {
	inner := strings.TrimSpace(text)
	if strings.HasPrefix(inner, "[[") && strings.HasSuffix(inner, "]]") && len(inner) >= 4 {
		inner = inner[2 : len(inner)-2]
	}
	l := Link{Raw: "[[" + inner + "]]", Target: cleanTarget(inner)}
	if l.Target != "" {
		l.Resolved, _ = e.resolveTarget(l.Target)
	}
	return l
}

// resolveTarget tries ref+".md", ref and the normalized ref, in that order.
func (e *Extractor) resolveTarget(ref string) (string, bool) {
	for _, key := range []string{ref + ".md", ref, NormalizePath(ref)} {
		if p, ok := e.index.Lookup(key); ok {
			return p, true
		}
	}
	return "", false
}

// readText reads path as UTF-8, falling back to the configured legacy
// encoding. A fallback decode producing replacement characters fails.
func (e *Extractor) readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if utf8.Valid(data) {
		return string(data), nil
	}
	if e.fallback == nil {
		return "", errors.New("not valid UTF-8")
	}
	decoded, err := e.fallback.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}
	if bytesContainRuneError(decoded) {
		return "", errors.New("not valid UTF-8 or fallback encoding")
	}
	return string(decoded), nil
}

func bytesContainRuneError(b []byte) bool {
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		if r == utf8.RuneError {
			return true
		}
		b = b[size:]
	}
	return false
}

type rawLink struct {
	inner string
	line  int
}

// parseWikiLinks returns the inner text of every [[...]] in content. Matching
// is non-greedy and never crosses a line break.
func parseWikiLinks(content string) []rawLink {
	var out []rawLink
	for i, line := range strings.Split(content, "\n") {
		remaining := line
		for {
			start := strings.Index(remaining, "[[")
			if start == -1 {
				break
			}
			end := strings.Index(remaining[start+2:], "]]")
			if end == -1 {
				break
			}
			end = start + 2 + end
			out = append(out, rawLink{inner: remaining[start+2 : end], line: i + 1})
			remaining = remaining[end+2:]
		}
	}
	return out
}

// cleanTarget drops the anchor or block reference (from the first '#' or
// '^'), then the alias (from the first '|'), and trims the rest.
func cleanTarget(inner string) string {
	if idx := strings.IndexAny(inner, "#^"); idx != -1 {
		inner = inner[:idx]
	}
	if idx := strings.Index(inner, "|"); idx != -1 {
		inner = inner[:idx]
	}
	return strings.TrimSpace(inner)
}
