package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// graphSource serves links from a fixed adjacency list and counts calls.
type graphSource struct {
	adj   map[string][]string
	calls map[string]int
}

func (g *graphSource) ExtractLinks(canonical string) []string {
	if g.calls == nil {
		g.calls = make(map[string]int)
	}
	g.calls[canonical]++
	return g.adj[canonical]
}

func chainVault(t *testing.T) (*Index, *Extractor, *recordingLogger) {
	t.Helper()
	_, ix, ex, log := openTestVault(t, map[string]string{
		"A.md":       "[[B]]",
		"B.md":       "[[C]]",
		"C.md":       "[[D]]",
		"D.md":       "end",
		"Orphan.md":  "[[A]]",
		"sub/E.md":   "[[A]]",
		"Island.md":  "alone",
		"assets.png": "",
	})
	return ix, ex, log
}

func TestTraverseDepthZeroIsSeeds(t *testing.T) {
	ix, ex, _ := chainVault(t)
	tr, err := Traverse(ix, ex, []string{"A"}, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"A.md"}, tr.Seeds)
	assert.Equal(t, []string{"A.md"}, tr.Paths())
	assert.Equal(t, 0, tr.Linked())
}

func TestTraverseDepthBoundary(t *testing.T) {
	ix, ex, _ := chainVault(t)
	tests := []struct {
		depth int
		want  []string
	}{
		{1, []string{"A.md", "B.md"}},
		{2, []string{"A.md", "B.md", "C.md"}},
		{3, []string{"A.md", "B.md", "C.md", "D.md"}},
		{10, []string{"A.md", "B.md", "C.md", "D.md"}},
	}
	for _, tt := range tests {
		tr, err := Traverse(ix, ex, []string{"A.md"}, tt.depth, nil)
		require.NoError(t, err)
		assert.Equal(t, tt.want, tr.Paths(), "depth %d", tt.depth)
		for p, d := range tr.Depths {
			assert.LessOrEqual(t, d, tt.depth, "%s at depth %d", p, d)
		}
	}
}

func TestTraverseUnboundedFollowsOutgoingLinksOnly(t *testing.T) {
	ix, ex, _ := chainVault(t)
	tr, err := Traverse(ix, ex, []string{"A"}, Unbounded, nil)
	require.NoError(t, err)
	// Orphan and sub/E link to A but nothing links to them.
	assert.Equal(t, []string{"A.md", "B.md", "C.md", "D.md"}, tr.Paths())
	assert.Equal(t, map[string]int{"A.md": 0, "B.md": 1, "C.md": 2, "D.md": 3}, tr.Depths)
}

func TestTraverseCycleTerminates(t *testing.T) {
	_, ix, ex, _ := openTestVault(t, map[string]string{
		"A.md": "[[B]]",
		"B.md": "[[C]]",
		"C.md": "[[A]]",
	})
	tr, err := Traverse(ix, ex, []string{"A"}, Unbounded, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"A.md", "B.md", "C.md"}, tr.Paths())
	assert.Equal(t, []Edge{
		{From: "A.md", To: "B.md"},
		{From: "B.md", To: "C.md"},
		{From: "C.md", To: "A.md"},
	}, tr.Edges)
}

func TestTraverseShortestDepthWins(t *testing.T) {
	g := &graphSource{adj: map[string][]string{
		"A.md": {"B.md", "C.md"},
		"B.md": {"C.md"},
		"C.md": {"D.md"},
	}}
	_, ix, _, _ := openTestVault(t, map[string]string{"A.md": "", "B.md": "", "C.md": "", "D.md": ""})
	tr, err := Traverse(ix, g, []string{"A"}, 2, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, tr.Depths["C.md"])
	assert.Equal(t, 2, tr.Depths["D.md"])
	assert.Equal(t, 1, g.calls["C.md"], "each node expands once")
}

func TestTraverseDoesNotExpandAtDepthLimit(t *testing.T) {
	g := &graphSource{adj: map[string][]string{"A.md": {"B.md"}, "B.md": {"C.md"}}}
	_, ix, _, _ := openTestVault(t, map[string]string{"A.md": "", "B.md": "", "C.md": ""})

	tr, err := Traverse(ix, g, []string{"A"}, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"A.md"}, tr.Paths())
	assert.Zero(t, g.calls["A.md"])
	assert.Empty(t, tr.Edges)

	tr, err = Traverse(ix, g, []string{"A"}, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"A.md", "B.md"}, tr.Paths())
	assert.Zero(t, g.calls["B.md"])
	assert.Equal(t, []Edge{{From: "A.md", To: "B.md"}}, tr.Edges)
}

func TestTraverseDepthZeroEmitsNoLinkWarnings(t *testing.T) {
	_, ix, ex, log := openTestVault(t, map[string]string{"A.md": "[[Missing]]"})
	_, err := Traverse(ix, ex, []string{"A"}, 0, log)
	require.NoError(t, err)
	assert.False(t, log.hasWarning("unresolved link"))
}

func TestTraverseMultipleSeedsShareVisited(t *testing.T) {
	ix, ex, _ := chainVault(t)
	tr, err := Traverse(ix, ex, []string{"A", "C", "Island"}, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"A.md", "C.md", "Island.md"}, tr.Seeds)
	assert.Equal(t, []string{"A.md", "B.md", "C.md", "D.md", "Island.md"}, tr.Paths())
	assert.Equal(t, 0, tr.Depths["C.md"], "a seed keeps depth 0")
	assert.Equal(t, 2, tr.Linked())
}

func TestTraverseSeedForms(t *testing.T) {
	ix, ex, _ := chainVault(t)
	tr, err := Traverse(ix, ex, []string{"sub/E.md", "sub/E", "./sub/E.md", "E"}, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"sub/E.md"}, tr.Seeds, "seeds are deduplicated")
	assert.True(t, tr.IsSeed("sub/E.md"))
	assert.False(t, tr.IsSeed("A.md"))
}

func TestTraverseUnresolvedSeedsWarn(t *testing.T) {
	ix, ex, log := chainVault(t)
	tr, err := Traverse(ix, ex, []string{"Ghost", "A"}, 0, log)
	require.NoError(t, err)
	assert.Equal(t, []string{"Ghost"}, tr.UnresolvedSeeds)
	assert.Equal(t, []string{"A.md"}, tr.Paths())
	assert.True(t, log.hasWarning("seed not found seed=Ghost"))
}

func TestTraverseNoValidSeeds(t *testing.T) {
	ix, ex, _ := chainVault(t)
	_, err := Traverse(ix, ex, []string{"Ghost", "Nope"}, Unbounded, nil)
	require.Error(t, err)
	assert.True(t, IsSetupError(err))

	_, err = Traverse(ix, ex, nil, 0, nil)
	require.Error(t, err)
	assert.True(t, IsSetupError(err))
}

func TestTraverseMissingNoteContributesNothing(t *testing.T) {
	g := &graphSource{adj: map[string][]string{"A.md": {"gone.md"}}}
	_, ix, _, _ := openTestVault(t, map[string]string{"A.md": ""})
	tr, err := Traverse(ix, g, []string{"A"}, Unbounded, nil)
	require.NoError(t, err)
	// The source returned a path; the traverser visits it but it has no links.
	assert.Equal(t, []string{"A.md", "gone.md"}, tr.Paths())
	assert.Equal(t, 1, g.calls["gone.md"])
}
