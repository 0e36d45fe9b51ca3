package genoptions

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	o := Default()
	assert.True(t, o.StopOnConflict)
	assert.False(t, o.TrySolveReduceConflicts)
	assert.False(t, o.SkipLookbackGeneration)
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "genoptions.toml")

	want := Options{
		StopOnConflict:          false,
		TrySolveReduceConflicts: true,
		SkipLookbackGeneration:  true,
	}
	require.NoError(t, Save(want, path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoad_MissingFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	assert.Error(t, err)
}
