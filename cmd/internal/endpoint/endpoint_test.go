package endpoint

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizePipeNamePassesThrough(t *testing.T) {
	name, err := Normalize(`\\.\pipe\ipcutil-test`)
	require.NoError(t, err)
	require.Equal(t, `\\.\pipe\ipcutil-test`, name)
	require.True(t, IsPipeName(name))
}

func TestNormalizeRejectsBarePipePrefix(t *testing.T) {
	_, err := Normalize(`\\.\pipe\`)
	require.Error(t, err)
}

func TestNormalizeAbsolutizesPath(t *testing.T) {
	dir := t.TempDir()
	name, err := Normalize(filepath.Join(dir, "app.sock"))
	require.NoError(t, err)
	require.True(t, filepath.IsAbs(name))
	require.False(t, IsPipeName(name))
}

func TestNormalizeTrimsWhitespace(t *testing.T) {
	dir := t.TempDir()
	name, err := Normalize("  " + filepath.Join(dir, "app.sock") + "  ")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "app.sock"), name)
}

func TestNormalizeRejectsEmpty(t *testing.T) {
	_, err := Normalize("   ")
	require.Error(t, err)
}

func TestNormalizeRejectsMissingParent(t *testing.T) {
	dir := t.TempDir()
	_, err := Normalize(filepath.Join(dir, "no-such-dir", "app.sock"))
	require.Error(t, err)
}
