package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoadStartsFromDefaultAndOverridesGivenFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "layout.yaml")
	require.NoError(t, os.WriteFile(path, []byte("counter_digits: 4\n"), 0600))

	layout, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 4, layout.CounterDigits)
	require.Equal(t, Default().DirMode, layout.DirMode)
	require.Equal(t, Default().LogLevel, layout.LogLevel)
}

func TestLoadRejectsMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLoadRejectsInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "layout.yaml")
	require.NoError(t, os.WriteFile(path, []byte("counter_digits: [not a number\n"), 0600))

	_, err := Load(path)
	require.Error(t, err)
}

func TestValidateRejectsNonPositiveCounterDigits(t *testing.T) {
	layout := Default()
	layout.CounterDigits = 0
	require.Error(t, layout.Validate())
}

func TestValidateRejectsUnknownLogLevel(t *testing.T) {
	layout := Default()
	layout.LogLevel = "VERBOSE"
	require.Error(t, layout.Validate())
}

func TestValidateAcceptsLogLevelCaseInsensitively(t *testing.T) {
	layout := Default()
	layout.LogLevel = "debug"
	require.NoError(t, layout.Validate())
}
