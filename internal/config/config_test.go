package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	t.Parallel()
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Equal(t, Defaults(), cfg)
}

func TestLoad_OverridesOnlyPresentFields(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "explore.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_states: 10\nrestore_toggles: false\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 10, cfg.MaxStates)
	require.False(t, cfg.RestoreToggles)
	require.Equal(t, Defaults().MaxOptionsPerSelect, cfg.MaxOptionsPerSelect)
}

func TestLoad_RejectsInvalid(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_states: 0\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}
