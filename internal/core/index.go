package core

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/adrg/frontmatter"
	ignore "github.com/sabhiram/go-gitignore"

	"github.com/ryotapoi/mdpack/internal/logging"
)

// keyRank orders competing claims on one lookup key. Lower wins.
type keyRank int

const (
	rankPath keyRank = iota
	rankFilename
	rankStem
	rankAlias
)

func (r keyRank) String() string {
	switch r {
	case rankPath:
		return "path"
	case rankFilename:
		return "filename"
	case rankStem:
		return "stem"
	default:
		return "alias"
	}
}

type keyEntry struct {
	path string
	rank keyRank
}

// Collision is a lookup key claimed by more than one file at the same rank.
type Collision struct {
	Key    string
	Kind   string   // "filename", "stem" or "alias"
	Paths  []string // sorted
	Winner string   // canonical path the key resolves to
}

// IndexOptions controls BuildIndex.
type IndexOptions struct {
	Exclude            []string // gitignore syntax, relative to root
	UseGitignore       bool
	SkipDirs           []string // directories never scanned
	FrontmatterAliases bool
	Strict             bool // fail on collisions instead of warning
	Logger             logging.Logger
}

// Index maps every identifying string of a file to its canonical path,
// the slash-separated path relative to the root.
type Index struct {
	root       string
	keys       map[string]keyEntry
	files      []string
	collisions []Collision
}

// BuildIndex scans root once and registers filename, stem, relative path,
// absolute path and normalized absolute path of every file.
//
// A key claimed by several files resolves to the exact path form first,
// then to the lexicographically-first path. Each such collision is logged.
func BuildIndex(root string, opts IndexOptions) (*Index, error) {
	log := logging.OrNoOp(opts.Logger)

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, setupError(err, codeSourceRoot, "source root unavailable: %s", root)
	}
	if !info.IsDir() {
		return nil, setupError(fmt.Errorf("not a directory: %s", root), codeSourceRoot, "source root is not a directory: %s", root)
	}

	skip := make([]string, 0, len(opts.SkipDirs))
	for _, d := range opts.SkipDirs {
		if d == "" {
			continue
		}
		if a, err := filepath.Abs(d); err == nil && a != abs {
			skip = append(skip, a)
		}
	}

	files, err := collectFiles(abs, excludeMatcher(abs, opts.Exclude, opts.UseGitignore), skip)
	if err != nil {
		return nil, err
	}

	ix := &Index{
		root:  abs,
		keys:  make(map[string]keyEntry, len(files)*5),
		files: files,
	}
	claims := make(map[keyRank]map[string]map[string]bool)
	claim := func(key, path string, rank keyRank) {
		if key == "" {
			return
		}
		for _, k := range keyVariants(key) {
			ix.register(k, path, rank)
		}
		if rank == rankPath {
			return
		}
		if claims[rank] == nil {
			claims[rank] = make(map[string]map[string]bool)
		}
		if claims[rank][key] == nil {
			claims[rank][key] = make(map[string]bool)
		}
		claims[rank][key][path] = true
	}

	for _, rel := range files {
		full := filepath.Join(abs, filepath.FromSlash(rel))
		claim(rel, rel, rankPath)
		claim(full, rel, rankPath)
		claim(NormalizePath(full), rel, rankPath)
		claim(filepath.Base(rel), rel, rankFilename)
		claim(stem(rel), rel, rankStem)
	}

	if opts.FrontmatterAliases {
		for _, rel := range files {
			if !strings.EqualFold(filepath.Ext(rel), ".md") {
				continue
			}
			aliases, err := readAliases(filepath.Join(abs, filepath.FromSlash(rel)))
			if err != nil {
				log.Warn("cannot read frontmatter aliases", "path", rel, "error", err)
				continue
			}
			for _, a := range aliases {
				claim(a, rel, rankAlias)
			}
		}
	}

	ix.collisions = ix.collectCollisions(claims)
	for _, c := range ix.collisions {
		log.Warn("ambiguous name", "key", c.Key, "kind", c.Kind, "paths", strings.Join(c.Paths, ", "), "resolves_to", c.Winner)
	}
	if opts.Strict && len(ix.collisions) > 0 {
		keys := make([]string, len(ix.collisions))
		for i, c := range ix.collisions {
			keys[i] = c.Key
		}
		return nil, setupError(ErrAmbiguousNames, codeAmbiguousNames, "ambiguous names: %s", strings.Join(keys, ", "))
	}

	log.Debug("index built", "root", abs, "files", len(files), "keys", len(ix.keys))
	return ix, nil
}

func (ix *Index) register(key, path string, rank keyRank) {
	cur, ok := ix.keys[key]
	if ok && (cur.rank < rank || (cur.rank == rank && cur.path <= path)) {
		return
	}
	ix.keys[key] = keyEntry{path: path, rank: rank}
}

func (ix *Index) collectCollisions(claims map[keyRank]map[string]map[string]bool) []Collision {
	var out []Collision
	for _, rank := range []keyRank{rankFilename, rankStem, rankAlias} {
		for key, set := range claims[rank] {
			if len(set) < 2 || ix.keys[key].rank < rank {
				continue
			}
			paths := make([]string, 0, len(set))
			for p := range set {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			out = append(out, Collision{
				Key:    key,
				Kind:   rank.String(),
				Paths:  paths,
				Winner: ix.keys[key].path,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Key != out[j].Key {
			return out[i].Key < out[j].Key
		}
		return out[i].Kind < out[j].Kind
	})
	return out
}

// Lookup returns the canonical path registered under key exactly.
func (ix *Index) Lookup(key string) (string, bool) {
	e, ok := ix.keys[key]
	return e.path, ok
}

// Resolve tries key as-is, then its normalized form.
func (ix *Index) Resolve(key string) (string, bool) {
	if p, ok := ix.Lookup(key); ok {
		return p, true
	}
	if n := NormalizePath(key); n != key {
		return ix.Lookup(n)
	}
	return "", false
}

// Root returns the absolute source root.
func (ix *Index) Root() string { return ix.root }

// Files returns all canonical paths, sorted.
func (ix *Index) Files() []string {
	out := make([]string, len(ix.files))
	copy(out, ix.files)
	return out
}

// Len returns the number of indexed files.
func (ix *Index) Len() int { return len(ix.files) }

// Collisions returns the ambiguous keys found at build time.
func (ix *Index) Collisions() []Collision {
	out := make([]Collision, len(ix.collisions))
	copy(out, ix.collisions)
	return out
}

// AbsPath returns the on-disk location of a canonical path.
func (ix *Index) AbsPath(canonical string) string {
	return filepath.Join(ix.root, filepath.FromSlash(canonical))
}

func collectFiles(root string, excl *ignore.GitIgnore, skipDirs []string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if d.Name() == dataDirName {
				return filepath.SkipDir
			}
			for _, s := range skipDirs {
				if path == s {
					return filepath.SkipDir
				}
			}
			if excl != nil && excl.MatchesPath(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}
		if excl != nil && excl.MatchesPath(rel) {
			return nil
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

type aliasMatter struct {
	Aliases any `yaml:"aliases"`
}

// readAliases returns the frontmatter "aliases" of a note. Both a single
// string and a list are accepted.
func readAliases(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var meta aliasMatter
	if _, err := frontmatter.Parse(bytes.NewReader(data), &meta); err != nil {
		return nil, err
	}
	var out []string
	switch v := meta.Aliases.(type) {
	case string:
		out = append(out, v)
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
	case []string:
		out = append(out, v...)
	}
	aliases := out[:0]
	for _, a := range out {
		if a = strings.TrimSpace(a); a != "" {
			aliases = append(aliases, a)
		}
	}
	return aliases, nil
}
