package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, ".", c.DataDir)
	assert.Equal(t, 30*time.Second, c.HTTPTimeout)
	assert.Equal(t, "https://api.notion.com", c.Tasks.BaseURL)
	assert.Equal(t, 20, c.BotChat.PageSize)
	assert.Equal(t, []string{"o"}, c.Shortcuts.Namespaces)
}

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_OverlaysOnlyPresentFields(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := writeTempJSON(t, map[string]any{
		"http_timeout": "10s",
		"tasks":        map[string]any{"base_url": "http://localhost:8800"},
		"shortcuts":    map[string]any{"namespaces": []string{"o", "de"}, "github_user": "ann"},
	})
	os.Args = []string{"testbin", "-config", path}

	var c Config
	c.LoadDefaults()
	parseJson(&c)

	assert.Equal(t, 10*time.Second, c.HTTPTimeout)
	assert.Equal(t, "http://localhost:8800", c.Tasks.BaseURL)
	assert.Equal(t, "https://api.porkbun.com", c.Registrar.BaseURL, "absent fields keep defaults")
	assert.Equal(t, []string{"o", "de"}, c.Shortcuts.Namespaces)
	assert.Equal(t, "ann", c.Shortcuts.GithubUser)
}

func Test_parseEnv_CredentialsAndLists(t *testing.T) {
	t.Setenv("LAUNCHDECK_REGISTRAR_API_KEY", "pk1_x")
	t.Setenv("LAUNCHDECK_REGISTRAR_SECRET_KEY", "sk1_y")
	t.Setenv("LAUNCHDECK_TASKS_TOKEN", "secret_tok")
	t.Setenv("LAUNCHDECK_SHORTCUTS_NAMESPACES", "o, de , ")
	t.Setenv("LAUNCHDECK_HTTP_TIMEOUT", "45s")

	var c Config
	c.LoadDefaults()
	parseEnv(&c)

	assert.Equal(t, "pk1_x", c.Registrar.APIKey)
	assert.Equal(t, "sk1_y", c.Registrar.SecretAPIKey)
	assert.Equal(t, "secret_tok", c.Tasks.IntegrationToken)
	assert.Equal(t, []string{"o", "de"}, c.Shortcuts.Namespaces)
	assert.Equal(t, 45*time.Second, c.HTTPTimeout)
}

func Test_parseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin", "-d", "/tmp/ld", "-t", "5"}

	var c Config
	c.LoadDefaults()
	parseFlags(&c)

	assert.Equal(t, "/tmp/ld", c.DataDir)
	assert.Equal(t, 5*time.Second, c.HTTPTimeout)
}

func TestResolvedNamespaces(t *testing.T) {
	s := ShortcutsConfig{Namespaces: []string{"o"}, Language: "de", Country: "ch", GithubUser: "ann"}
	assert.Equal(t, []string{"o", "de", ".ch", "ann"}, s.ResolvedNamespaces())

	s = ShortcutsConfig{Namespaces: []string{"o"}}
	assert.Equal(t, []string{"o"}, s.ResolvedNamespaces())
}
