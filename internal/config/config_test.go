package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_BuiltInCredentials(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	cfg, err := Default()
	require.NoError(t, err)

	assert.Equal(t, "Y23RJZMV5M", cfg.Credentials.TeamID)
	assert.Equal(t, "R4WYDP8D72", cfg.Credentials.KeyID)
	assert.Equal(t, filepath.Join(home, ".apple-keys", "AuthKey_R4WYDP8D72.p8"), cfg.Credentials.PrivateKeyPath)
	assert.Equal(t, DefaultDestination, cfg.Output.Destination)
	assert.Equal(t, DefaultPlaceholder, cfg.Output.Placeholder)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Empty(t, cfg.Warnings)
}

func TestLoadFromBytes_Empty(t *testing.T) {
	cfg, err := LoadFromBytes(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultTeamID, cfg.Credentials.TeamID)
	assert.Equal(t, DefaultKeyID, cfg.Credentials.KeyID)
}

func TestLoadFromBytes_FullConfig(t *testing.T) {
	yaml := []byte(`
credentials:
  team_id: "TEAM123456"
  key_id: "KEY9876543"
  private_key_path: "/etc/keys/AuthKey.p8"
output:
  destination: "Sources/App/Secrets.swift"
  placeholder: "let token = \"REPLACE_ME\""
logging:
  level: debug
  format: json
`)
	cfg, err := LoadFromBytes(yaml)
	require.NoError(t, err)

	assert.Equal(t, "TEAM123456", cfg.Credentials.TeamID)
	assert.Equal(t, "KEY9876543", cfg.Credentials.KeyID)
	assert.Equal(t, "/etc/keys/AuthKey.p8", cfg.Credentials.PrivateKeyPath)
	assert.Equal(t, "Sources/App/Secrets.swift", cfg.Output.Destination)
	assert.Equal(t, `let token = "REPLACE_ME"`, cfg.Output.Placeholder)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadFromBytes_KeyPathFollowsKeyID(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	cfg, err := LoadFromBytes([]byte(`
credentials:
  key_id: "ABCDEFGHIJ"
`))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".apple-keys", "AuthKey_ABCDEFGHIJ.p8"), cfg.Credentials.PrivateKeyPath)
}

func TestLoadFromBytes_HomeExpansion(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	cfg, err := LoadFromBytes([]byte(`
credentials:
  private_key_path: "~/keys/music.p8"
`))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "keys", "music.p8"), cfg.Credentials.PrivateKeyPath)
}

func TestLoadFromBytes_EnvVarSubstitution(t *testing.T) {
	t.Setenv("TEST_APPLE_TEAM_ID", "ENVTEAM001")

	cfg, err := LoadFromBytes([]byte(`
credentials:
  team_id: "${TEST_APPLE_TEAM_ID}"
`))
	require.NoError(t, err)
	assert.Equal(t, "ENVTEAM001", cfg.Credentials.TeamID)
	assert.Empty(t, cfg.Warnings)
}

func TestLoadFromBytes_UnresolvedCredentialIsError(t *testing.T) {
	os.Unsetenv("NONEXISTENT_KEY_ID")

	tests := map[string]string{
		"team_id":          "credentials:\n  team_id: \"${NONEXISTENT_KEY_ID}\"\n",
		"key_id":           "credentials:\n  key_id: \"${NONEXISTENT_KEY_ID}\"\n",
		"private_key_path": "credentials:\n  private_key_path: \"/keys/AuthKey_${NONEXISTENT_KEY_ID}.p8\"\n",
	}
	for field, yaml := range tests {
		t.Run(field, func(t *testing.T) {
			_, err := LoadFromBytes([]byte(yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "credentials."+field+" contains unresolved environment variable ${NONEXISTENT_KEY_ID}")
		})
	}
}

func TestLoadFromBytes_UnresolvedOutputWarning(t *testing.T) {
	os.Unsetenv("NONEXISTENT_APP_DIR")

	cfg, err := LoadFromBytes([]byte(`
output:
  destination: "${NONEXISTENT_APP_DIR}/Config.swift"
`))
	require.NoError(t, err)
	assert.Contains(t, cfg.Warnings, "output.destination contains unresolved environment variable")
}

func TestLoadFromBytes_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "team id with whitespace",
			yaml: `
credentials:
  team_id: "TEAM 1"
`,
		},
		{
			name: "key id with whitespace",
			yaml: `
credentials:
  key_id: "KEY\t1"
`,
		},
		{
			name: "blank key path",
			yaml: `
credentials:
  private_key_path: "   "
`,
		},
		{
			name: "unknown log level",
			yaml: `
logging:
  level: trace
`,
		},
		{
			name: "unknown log format",
			yaml: `
logging:
  format: xml
`,
		},
		{
			name: "malformed yaml",
			yaml: `credentials: [`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromBytes([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "musickit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
credentials:
  team_id: "FILETEAM01"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "FILETEAM01", cfg.Credentials.TeamID)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}
