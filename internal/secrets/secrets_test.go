// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) string
		want  map[string]string
	}{
		{
			name: "reads key files and trims whitespace",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "wos-api-key", "  abc123  \n")
				writeFile(t, dir, "other", "xyz")
				return dir
			},
			want: map[string]string{"wos-api-key": "abc123", "other": "xyz"},
		},
		{
			name: "returns empty map for nonexistent directory",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "does-not-exist")
			},
			want: map[string]string{},
		},
		{
			name: "skips empty files and dotfiles",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "wos-api-key", "valid")
				writeFile(t, dir, "blank", "   \n\t  ")
				writeFile(t, dir, ".gitkeep", "")
				writeFile(t, dir, ".hidden", "secret")
				return dir
			},
			want: map[string]string{"wos-api-key": "valid"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.setup(t))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".env", "# comment\n\nWOS_API_KEY=\"quoted key\"\nexport OTHER = plain\nSINGLE='x'\nEMPTY=\n")

	got, err := LoadDotEnv(filepath.Join(dir, ".env"))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"WOS_API_KEY": "quoted key",
		"OTHER":       "plain",
		"SINGLE":      "x",
	}, got)
}

func TestLoadDotEnvMalformed(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".env", "A=1\nnot a pair\n")

	_, err := LoadDotEnv(filepath.Join(dir, ".env"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), ":2:")
}

func TestLoadDotEnvMissing(t *testing.T) {
	got, err := LoadDotEnv(filepath.Join(t.TempDir(), ".env"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestWoSAPIKeyPrecedence(t *testing.T) {
	dir := t.TempDir()
	secretsDir := filepath.Join(dir, ".secrets")
	require.NoError(t, os.Mkdir(secretsDir, 0o755))
	dotEnv := filepath.Join(dir, ".env")

	t.Setenv(WoSAPIKeyEnv, "")
	key, err := WoSAPIKey(secretsDir, dotEnv)
	require.NoError(t, err)
	assert.Empty(t, key)

	writeFile(t, dir, ".env", "WOS_API_KEY=from-dotenv\n")
	key, err = WoSAPIKey(secretsDir, dotEnv)
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", key)

	writeFile(t, secretsDir, WoSAPIKeyFile, "from-file\n")
	key, err = WoSAPIKey(secretsDir, dotEnv)
	require.NoError(t, err)
	assert.Equal(t, "from-file", key)

	t.Setenv(WoSAPIKeyEnv, "from-env")
	key, err = WoSAPIKey(secretsDir, dotEnv)
	require.NoError(t, err)
	assert.Equal(t, "from-env", key)
}

func TestLoadUnreadableFile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root can read files without permission bits")
	}
	dir := t.TempDir()
	writeFile(t, dir, "good-key", "value123")

	badPath := filepath.Join(dir, "bad-key")
	require.NoError(t, os.WriteFile(badPath, []byte("secret"), 0o000))
	t.Cleanup(func() { os.Chmod(badPath, 0o644) })

	got, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "value123", got["good-key"])
	assert.NotContains(t, got, "bad-key")
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
