package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleManifest(t *testing.T, maxDepth int) (*Manifest, string) {
	t.Helper()
	vault, ix, ex, _ := openTestVault(t, map[string]string{
		"A.md": "[[B]] [[Missing]]",
		"B.md": "[[C]]",
		"C.md": "",
	})
	tr, err := Traverse(ix, ex, []string{"A"}, maxDepth, nil)
	require.NoError(t, err)
	dest := t.TempDir()
	mr, err := Materialize(ix, tr.Paths(), dest, MaterializeOptions{})
	require.NoError(t, err)
	return NewManifest(vault, maxDepth, tr, mr), dest
}

func TestNewManifest(t *testing.T) {
	m, _ := sampleManifest(t, 1)
	assert.NotEmpty(t, m.RunID)
	assert.Equal(t, 1, m.MaxDepth)
	assert.Equal(t, []string{"A.md"}, m.Seeds)
	assert.Equal(t, []ManifestFile{
		{Path: "A.md", Depth: 0, IsSeed: true, Size: int64(len("[[B]] [[Missing]]")), Status: StatusCopied},
		{Path: "B.md", Depth: 1, Size: int64(len("[[C]]")), Status: StatusCopied},
	}, m.Files)
	// B -> C leaves the export set.
	assert.Equal(t, []Edge{{From: "A.md", To: "B.md"}}, m.Links)
}

func TestNewManifestRecordsFailures(t *testing.T) {
	tr := &TraverseResult{
		Seeds:  []string{"A.md"},
		Depths: map[string]int{"A.md": 0, "B.md": 1, "C.md": 1},
	}
	mr := &MaterializeResult{
		Copied:   []CopyRecord{{Path: "A.md", Size: 3}},
		Failures: []FailureRecord{{Path: "B.md", Category: FailurePermission}},
	}
	m := NewManifest("/vault", 1, tr, mr)
	require.Len(t, m.Files, 3)
	assert.Equal(t, StatusFailed, m.Files[1].Status)
	assert.Equal(t, string(FailurePermission), m.Files[1].Failure)
	assert.Equal(t, string(FailureUnresolved), m.Files[2].Failure)
}

func TestWriteReadManifestRoundTrip(t *testing.T) {
	m, dest := sampleManifest(t, 1)
	p, err := WriteManifest(dest, m)
	require.NoError(t, err)
	assert.Equal(t, ManifestPath(dest), p)
	assert.FileExists(t, p)
	assert.NoFileExists(t, p+".tmp")

	got, err := ReadManifest(dest)
	require.NoError(t, err)
	assert.Equal(t, m.RunID, got.RunID)
	assert.Equal(t, m.Source, got.Source)
	assert.Equal(t, m.MaxDepth, got.MaxDepth)
	assert.Equal(t, m.Seeds, got.Seeds)
	assert.True(t, m.CreatedAt.Equal(got.CreatedAt))
	assert.Equal(t, m.Files, got.Files)
	assert.Equal(t, m.Links, got.Links)
}

func TestWriteManifestUnboundedDepth(t *testing.T) {
	m, dest := sampleManifest(t, Unbounded)
	_, err := WriteManifest(dest, m)
	require.NoError(t, err)

	got, err := ReadManifest(dest)
	require.NoError(t, err)
	assert.Equal(t, Unbounded, got.MaxDepth)
	assert.Len(t, got.Files, 3)
	assert.Len(t, got.Links, 2)
}

func TestWriteManifestReplacesPrevious(t *testing.T) {
	first, dest := sampleManifest(t, 0)
	_, err := WriteManifest(dest, first)
	require.NoError(t, err)

	second, _ := sampleManifest(t, Unbounded)
	_, err = WriteManifest(dest, second)
	require.NoError(t, err)

	got, err := ReadManifest(dest)
	require.NoError(t, err)
	assert.Equal(t, second.RunID, got.RunID)
	assert.Len(t, got.Files, 3)
}

func TestReadManifestMissing(t *testing.T) {
	_, err := ReadManifest(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "manifest not found")
}

func TestManifestPath(t *testing.T) {
	dest := t.TempDir()
	assert.Equal(t, filepath.Join(dest, ".mdpack", "manifest.sqlite"), ManifestPath(dest))
	_, err := os.Stat(filepath.Dir(ManifestPath(dest)))
	assert.True(t, os.IsNotExist(err))
}
