package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/bws-ssh-agent/internal/domain"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadParsesOrderedSecretIDs(t *testing.T) {
	path := writeConfig(t, `
[bws]
access_token = "0.token"
secret_ids = [
  "3f2f81f5-4d4a-4b86-9f51-1e3c4a3c0a01",
  "8a1e6d2b-7c43-4a8e-b5e2-9d0f1c2b3a02",
]
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "0.token", cfg.AccessToken)
	assert.Equal(t, "info", cfg.LogLevel)

	refs := cfg.References()
	require.Len(t, refs, 2)
	assert.Equal(t, 0, refs[0].Position)
	assert.Equal(t, 1, refs[1].Position)
	assert.Equal(t, cfg.SecretIDs[0], refs[0].ID.String())
}

func TestLoadAccessTokenFromEnvOverride(t *testing.T) {
	path := writeConfig(t, `
[bws]
secret_ids = ["3f2f81f5-4d4a-4b86-9f51-1e3c4a3c0a01"]
`)
	t.Setenv("BWS_ACCESS_TOKEN", "0.env-token")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "0.env-token", cfg.AccessToken)
}

func TestLoadRejectsMissingToken(t *testing.T) {
	path := writeConfig(t, `
[bws]
secret_ids = ["3f2f81f5-4d4a-4b86-9f51-1e3c4a3c0a01"]
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorContains(t, err, "access_token")
}

func TestLoadRejectsEmptySecretIDs(t *testing.T) {
	path := writeConfig(t, `
[bws]
access_token = "0.token"
secret_ids = []
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorContains(t, err, "secret_ids")
}

func TestLoadRejectsMalformedSecretID(t *testing.T) {
	path := writeConfig(t, `
[bws]
access_token = "0.token"
secret_ids = ["not-a-uuid"]
`)

	_, err := Load(path)
	require.Error(t, err)

	var invalid *domain.InvalidSecretIDError
	assert.ErrorAs(t, err, &invalid)
}

func TestWriteDefaultCreatesOwnerOnlyFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	require.NoError(t, WriteDefault(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(configFileMode), info.Mode().Perm())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "[bws]")
	assert.Contains(t, string(content), "secret_ids")
}

func TestWriteDefaultRefusesToOverwrite(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("existing"), 0o600))

	err := WriteDefault(path)
	require.Error(t, err)
	assert.ErrorContains(t, err, "already exists")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "existing", string(content))
}

func TestSocketOverrideReadsPathWithoutCredentials(t *testing.T) {
	path := writeConfig(t, `
[agent]
socket_path = "/tmp/custom-agent.sock"
`)

	socket, err := SocketOverride(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom-agent.sock", socket)
}

func TestSocketOverrideEmptyWhenFileMissing(t *testing.T) {
	socket, err := SocketOverride(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)
	assert.Empty(t, socket)
}
