// Package config loads the Podex terminal client configuration. Values are
// layered flags > environment > config file > defaults, so a one-off
// override never requires editing the file.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

// Defaults for the ambient pieces of the client.
const (
	DefaultAPIBaseURL = "https://app.podex.dev"
	DefaultAPITimeout = 10 * time.Second
	DefaultLogLevel   = "info"
)

// Config is the full client configuration.
type Config struct {
	API       APIConfig       `koanf:"api"`
	Sync      SyncConfig      `koanf:"sync"`
	Log       LogConfig       `koanf:"log"`
	Workspace WorkspaceConfig `koanf:"workspace"`
	MCP       MCPConfig       `koanf:"mcp"`
}

// APIConfig points the client at a Podex backend.
type APIConfig struct {
	BaseURL string        `koanf:"base_url"`
	Timeout time.Duration `koanf:"timeout"`
}

// SyncConfig controls preference mirroring to the user's account.
type SyncConfig struct {
	Enabled bool `koanf:"enabled"`
}

// LogConfig controls the file logger. An empty File means the default
// location under the config directory.
type LogConfig struct {
	Level string `koanf:"level"`
	File  string `koanf:"file"`
}

// WorkspaceConfig anchors the file tree and search.
type WorkspaceConfig struct {
	Root string `koanf:"root"`
}

// MCPServer describes one Model Context Protocol server to surface in the
// MCP sidebar panel.
type MCPServer struct {
	Name    string            `koanf:"name"`
	Command string            `koanf:"command"`
	Args    []string          `koanf:"args"`
	Env     map[string]string `koanf:"env"`
}

// MCPConfig lists the configured MCP servers.
type MCPConfig struct {
	Servers []MCPServer `koanf:"servers"`
}

// DefaultConfigPath returns ~/.config/podex/config.yaml.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "podex", "config.yaml"), nil
}

// Validate rejects values the rest of the client cannot work with.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.base_url %q is not a valid URL", c.API.BaseURL)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive, got %s", c.API.Timeout)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level)
	}
	for i, srv := range c.MCP.Servers {
		if srv.Name == "" {
			return fmt.Errorf("mcp.servers[%d] is missing a name", i)
		}
		if srv.Command == "" {
			return fmt.Errorf("mcp server %q is missing a command", srv.Name)
		}
	}
	return nil
}
