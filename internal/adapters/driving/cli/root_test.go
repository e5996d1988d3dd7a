package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_RegistersCommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"ask", "chat", "index", "search", "stats", "serve", "mcp", "settings", "version"} {
		assert.True(t, names[want], "missing command %q", want)
	}
}

func TestRootCmd_PersistentFlags(t *testing.T) {
	for _, name := range []string{"config", "env-file", "verbose"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), name)
	}
	assert.Equal(t, ".env", rootCmd.PersistentFlags().Lookup("env-file").DefValue)
}

func TestLoadEnvFile_MissingFileIsIgnored(t *testing.T) {
	assert.NoError(t, loadEnvFile(filepath.Join(t.TempDir(), "absent.env")))
	assert.NoError(t, loadEnvFile(""))
}

func TestLoadEnvFile_LoadsWithoutOverriding(t *testing.T) {
	const fresh = "UBUZIMA_TEST_ENV_FRESH"
	const kept = "UBUZIMA_TEST_ENV_KEPT"
	t.Setenv(kept, "from-environment")
	t.Cleanup(func() { os.Unsetenv(fresh) })

	path := filepath.Join(t.TempDir(), ".env")
	content := fresh + "=from-file\n" + kept + "=from-file\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	require.NoError(t, loadEnvFile(path))

	assert.Equal(t, "from-file", os.Getenv(fresh))
	assert.Equal(t, "from-environment", os.Getenv(kept))
}

func TestLoadEnvFile_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("BAD-KEY=1\n"), 0600))

	err := loadEnvFile(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading")
}
