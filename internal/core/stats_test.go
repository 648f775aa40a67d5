package core

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryotapoi/mdpack/internal/testutil"
)

func TestStatsFull(t *testing.T) {
	vault := testutil.NewVault(t, map[string]string{
		"Index.md":      "[[Design]] [[Missing]] [[sub/Impl]]",
		"Design.md":     "[[Index]]",
		"sub/Impl.md":   "",
		"img/photo.png": "12345",
		"a/Dup.txt":     "[[Dup]]",
		"b/Dup.txt":     "",
	})
	result, err := Stats(vault, StatsOptions{})
	require.NoError(t, err)

	assert.Equal(t, 6, result.FilesTotal)
	assert.Equal(t, 5, result.LinkBearingFiles)
	assert.Equal(t, 5, result.LinksTotal)
	assert.Equal(t, 4, result.LinksResolved)
	assert.Equal(t, 1, result.LinksUnresolved)
	assert.Equal(t, 2, result.Collisions)

	want := int64(len("[[Design]] [[Missing]] [[sub/Impl]]") + len("[[Index]]") + len("12345") + len("[[Dup]]"))
	assert.Equal(t, want, result.BytesTotal)
}

func TestStatsFieldFilter(t *testing.T) {
	vault := testutil.NewVault(t, map[string]string{"A.md": "[[B]]", "B.md": "bb"})
	result, err := Stats(vault, StatsOptions{Fields: []string{"files_total"}})
	require.NoError(t, err)
	assert.Equal(t, 2, result.FilesTotal)
	assert.Zero(t, result.LinksTotal)
	assert.Zero(t, result.BytesTotal)
}

func TestStatsUnknownField(t *testing.T) {
	vault := testutil.NewVault(t, map[string]string{"A.md": ""})
	_, err := Stats(vault, StatsOptions{Fields: []string{"notes_total"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown stats field")
}

func TestStatsMissingVault(t *testing.T) {
	_, err := Stats(filepath.Join(t.TempDir(), "missing"), StatsOptions{})
	require.Error(t, err)
	assert.True(t, IsSetupError(err))
}
