package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultAPIBaseURL, cfg.API.BaseURL)
	assert.Equal(t, DefaultAPITimeout, cfg.API.Timeout)
	assert.True(t, cfg.Sync.Enabled)
	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
	assert.True(t, filepath.IsAbs(cfg.Workspace.Root), "workspace root is made absolute")
	assert.Empty(t, cfg.MCP.Servers)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api:
  base_url: https://podex.internal/
  timeout: 30s
sync:
  enabled: false
log:
  level: debug
mcp:
  servers:
    - name: filesystem
      command: npx
      args: ["-y", "@modelcontextprotocol/server-filesystem", "."]
    - name: fetch
      command: uvx
      args: ["mcp-server-fetch"]
      env:
        HTTP_PROXY: http://proxy:8080
`), 0644))

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "https://podex.internal", cfg.API.BaseURL, "trailing slash trimmed")
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.False(t, cfg.Sync.Enabled)
	assert.Equal(t, "debug", cfg.Log.Level)

	require.Len(t, cfg.MCP.Servers, 2)
	assert.Equal(t, "filesystem", cfg.MCP.Servers[0].Name)
	assert.Equal(t, "npx", cfg.MCP.Servers[0].Command)
	assert.Len(t, cfg.MCP.Servers[0].Args, 3)
	assert.Equal(t, "http://proxy:8080", cfg.MCP.Servers[1].Env["HTTP_PROXY"])
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultAPIBaseURL, cfg.API.BaseURL)
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api: [unclosed"), 0644))

	_, err := Load(path, nil)
	assert.Error(t, err)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: info\n"), 0644))

	t.Setenv("PODEX_LOG_LEVEL", "warn")
	t.Setenv("PODEX_API_URL", "https://staging.podex.dev")

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "https://staging.podex.dev", cfg.API.BaseURL)
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("PODEX_LOG_LEVEL", "warn")

	fs := pflag.NewFlagSet("podex", pflag.ContinueOnError)
	fs.String("api-url", "", "")
	fs.String("log-level", "", "")
	fs.Bool("no-sync", false, "")
	require.NoError(t, fs.Parse([]string{"--log-level", "error", "--no-sync"}))

	cfg, err := Load("", fs)
	require.NoError(t, err)

	assert.Equal(t, "error", cfg.Log.Level)
	assert.False(t, cfg.Sync.Enabled)
	assert.Equal(t, DefaultAPIBaseURL, cfg.API.BaseURL, "unchanged flags do not override")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			API: APIConfig{BaseURL: DefaultAPIBaseURL, Timeout: DefaultAPITimeout},
			Log: LogConfig{Level: "info"},
		}
	}

	tests := []struct {
		name      string
		mutate    func(*Config)
		errSubstr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"bad url", func(c *Config) { c.API.BaseURL = "::not a url" }, "not a valid URL"},
		{"relative url", func(c *Config) { c.API.BaseURL = "podex.dev" }, "not a valid URL"},
		{"zero timeout", func(c *Config) { c.API.Timeout = 0 }, "must be positive"},
		{"bad level", func(c *Config) { c.Log.Level = "verbose" }, "log.level"},
		{"mcp server without name", func(c *Config) {
			c.MCP.Servers = []MCPServer{{Command: "npx"}}
		}, "missing a name"},
		{"mcp server without command", func(c *Config) {
			c.MCP.Servers = []MCPServer{{Name: "fetch"}}
		}, "missing a command"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errSubstr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errSubstr)
			}
		})
	}
}

func TestDefaultConfigPath(t *testing.T) {
	path, err := DefaultConfigPath()
	require.NoError(t, err)

	home, _ := os.UserHomeDir()
	assert.Equal(t, filepath.Join(home, ".config", "podex", "config.yaml"), path)
}
