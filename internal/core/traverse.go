package core

import (
	"sort"

	"github.com/ryotapoi/mdpack/internal/logging"
)

// Unbounded disables the traversal depth limit.
const Unbounded = -1

// LinkSource returns the canonical paths a note links to.
type LinkSource interface {
	ExtractLinks(canonical string) []string
}

// Edge is a resolved link between two canonical paths.
type Edge struct {
	From string
	To   string
}

// TraverseResult is the outcome of a bounded breadth-first traversal.
type TraverseResult struct {
	Seeds           []string       // resolved seeds, input order, deduplicated
	UnresolvedSeeds []string       // seeds with no index match
	Depths          map[string]int // visited canonical path -> depth first reached
	Edges           []Edge         // resolved links out of expanded notes, deduplicated
}

// Paths returns the export set, sorted.
func (r *TraverseResult) Paths() []string {
	out := make([]string, 0, len(r.Depths))
	for p := range r.Depths {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Linked returns how many visited files were not seeds.
func (r *TraverseResult) Linked() int {
	return len(r.Depths) - len(r.Seeds)
}

// IsSeed reports whether canonical is one of the resolved seeds.
func (r *TraverseResult) IsSeed(canonical string) bool {
	for _, s := range r.Seeds {
		if s == canonical {
			return true
		}
	}
	return false
}

// ResolveSeed resolves a user-supplied seed: the key as-is or normalized,
// then with ".md" appended.
func ResolveSeed(ix *Index, seed string) (string, bool) {
	if p, ok := ix.Resolve(seed); ok {
		return p, true
	}
	return ix.Resolve(seed + ".md")
}

type frontierEntry struct {
	path  string
	depth int
}

// Traverse expands seeds breadth-first through links. Nodes first reached
// at a depth greater than maxDepth are never visited; a negative maxDepth
// means no limit. Nodes at the depth limit are visited but not expanded, so
// maxDepth 0 reads no links at all.
//
// It fails only when no seed resolves.
func Traverse(ix *Index, links LinkSource, seeds []string, maxDepth int, log logging.Logger) (*TraverseResult, error) {
	log = logging.OrNoOp(log)

	result := &TraverseResult{Depths: make(map[string]int)}
	queue := make([]frontierEntry, 0, len(seeds))
	seen := make(map[string]bool, len(seeds))
	for _, seed := range seeds {
		p, ok := ResolveSeed(ix, seed)
		if !ok {
			log.Warn("seed not found", "seed", seed)
			result.UnresolvedSeeds = append(result.UnresolvedSeeds, seed)
			continue
		}
		if seen[p] {
			continue
		}
		seen[p] = true
		result.Seeds = append(result.Seeds, p)
		queue = append(queue, frontierEntry{path: p, depth: 0})
	}
	if len(result.Seeds) == 0 {
		return nil, setupError(ErrNoSeeds, codeNoSeeds, "no valid seed files")
	}

	edgeSeen := make(map[Edge]bool)
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if maxDepth >= 0 && cur.depth > maxDepth {
			continue
		}
		if _, ok := result.Depths[cur.path]; ok {
			continue
		}
		result.Depths[cur.path] = cur.depth
		if maxDepth >= 0 && cur.depth == maxDepth {
			continue
		}

		for _, next := range links.ExtractLinks(cur.path) {
			edge := Edge{From: cur.path, To: next}
			if !edgeSeen[edge] {
				edgeSeen[edge] = true
				result.Edges = append(result.Edges, edge)
			}
			if _, ok := result.Depths[next]; !ok {
				queue = append(queue, frontierEntry{path: next, depth: cur.depth + 1})
			}
		}
	}

	log.Debug("traversal done", "seeds", len(result.Seeds), "visited", len(result.Depths), "edges", len(result.Edges))
	return result, nil
}
