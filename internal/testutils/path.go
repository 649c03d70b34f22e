package testutils

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// ChTempDir changes the working directory to path for the duration of the
// test, e.g. to keep a test clear of any .env file in the package directory.
func ChTempDir(t *testing.T, path string) {
	t.Helper()

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(path))

	t.Cleanup(func() {
		require.NoError(t, os.Chdir(wd))
	})
}
