package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDotEnvSkipsMissingFiles(t *testing.T) {
	require.NoError(t, loadDotEnv(filepath.Join(t.TempDir(), "absent.env")))
}

func TestLoadDotEnvDoesNotOverrideProcessEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("CALC_TEST_KEEP=file\nCALC_TEST_NEW=file\n"), 0o600))

	t.Setenv("CALC_TEST_KEEP", "process")
	t.Setenv("CALC_TEST_NEW", "")
	require.NoError(t, os.Unsetenv("CALC_TEST_NEW"))

	require.NoError(t, loadDotEnv(path))
	t.Cleanup(func() { _ = os.Unsetenv("CALC_TEST_NEW") })

	assert.Equal(t, "process", os.Getenv("CALC_TEST_KEEP"))
	assert.Equal(t, "file", os.Getenv("CALC_TEST_NEW"))
}
