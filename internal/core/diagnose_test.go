package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryotapoi/mdpack/internal/testutil"
)

func diagnoseVault(t *testing.T) string {
	t.Helper()
	vault := testutil.NewVault(t, map[string]string{
		"Index.md":     "[[Design]]\n[[Ghost#x]]\n[[Note]]",
		"Design.md":    "[[sub1/Note]] [[Nowhere|n]]",
		"sub1/Note.md": "",
		"sub2/Note.md": "",
	})
	require.NoError(t, os.WriteFile(filepath.Join(vault, "broken.md"), []byte{0xff, 0xff}, 0o644))
	return vault
}

func TestDiagnoseCollisions(t *testing.T) {
	vault := diagnoseVault(t)
	cfg := DefaultConfig()
	result, err := Diagnose(vault, DiagnoseOptions{Fields: []string{"collisions"}, Config: &cfg})
	require.NoError(t, err)

	require.Len(t, result.Collisions, 2)
	assert.Equal(t, "Note", result.Collisions[0].Key)
	assert.Equal(t, []string{"sub1/Note.md", "sub2/Note.md"}, result.Collisions[0].Paths)
	assert.Equal(t, "sub1/Note.md", result.Collisions[0].Winner)
	assert.Nil(t, result.Unresolved)
	assert.Nil(t, result.Unreadable)
}

func TestDiagnoseUnresolved(t *testing.T) {
	vault := diagnoseVault(t)
	cfg := DefaultConfig()
	result, err := Diagnose(vault, DiagnoseOptions{Fields: []string{"unresolved"}, Config: &cfg})
	require.NoError(t, err)

	assert.Equal(t, []UnresolvedLink{
		{Source: "Design.md", Target: "Nowhere", Raw: "[[Nowhere|n]]", Line: 1},
		{Source: "Index.md", Target: "Ghost", Raw: "[[Ghost#x]]", Line: 2},
	}, result.Unresolved)
	assert.Nil(t, result.Collisions)
}

func TestDiagnoseAllFields(t *testing.T) {
	vault := diagnoseVault(t)
	cfg := DefaultConfig()
	cfg.Links.FallbackEncoding = "none"
	result, err := Diagnose(vault, DiagnoseOptions{Config: &cfg})
	require.NoError(t, err)
	assert.Len(t, result.Collisions, 2)
	assert.Len(t, result.Unresolved, 2)
	assert.Equal(t, []string{"broken.md"}, result.Unreadable)
}

func TestDiagnoseUnknownField(t *testing.T) {
	vault := diagnoseVault(t)
	_, err := Diagnose(vault, DiagnoseOptions{Fields: []string{"phantoms"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown diagnose field")
}

func TestDiagnoseCleanVault(t *testing.T) {
	vault := testutil.NewVault(t, map[string]string{"A.md": "[[B]]", "B.md": "[[A]]"})
	result, err := Diagnose(vault, DiagnoseOptions{})
	require.NoError(t, err)
	assert.Empty(t, result.Collisions)
	assert.Empty(t, result.Unresolved)
	assert.Empty(t, result.Unreadable)
}
