package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// envPrefix namespaces the environment overrides.
const envPrefix = "PODEX_"

// envKeys maps recognized environment variables onto config keys. Anything
// outside this table is ignored rather than guessed at.
var envKeys = map[string]string{
	"PODEX_API_URL":     "api.base_url",
	"PODEX_API_TIMEOUT": "api.timeout",
	"PODEX_SYNC":        "sync.enabled",
	"PODEX_LOG_LEVEL":   "log.level",
	"PODEX_LOG_FILE":    "log.file",
	"PODEX_WORKSPACE":   "workspace.root",
}

// flagKeys maps CLI flag names onto config keys.
var flagKeys = map[string]string{
	"api-url":   "api.base_url",
	"log-level": "log.level",
	"log-file":  "log.file",
	"workspace": "workspace.root",
	"no-sync":   "", // handled below, the flag is inverted
}

// Load builds the configuration. Precedence (highest to lowest):
// flags > environment > config file > defaults. A missing config file is
// normal; a malformed one is an error.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(map[string]interface{}{
		"api.base_url":   DefaultAPIBaseURL,
		"api.timeout":    DefaultAPITimeout,
		"sync.enabled":   true,
		"log.level":      DefaultLogLevel,
		"log.file":       "",
		"workspace.root": ".",
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("read config file %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("stat config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return envKeys[s]
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			if f.Name == "no-sync" {
				if v, _ := flags.GetBool("no-sync"); v {
					return "sync.enabled", false
				}
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.API.BaseURL = strings.TrimRight(cfg.API.BaseURL, "/")
	if cfg.Workspace.Root != "" {
		if abs, err := filepath.Abs(cfg.Workspace.Root); err == nil {
			cfg.Workspace.Root = abs
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
