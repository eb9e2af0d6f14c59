// Package config handles the user-level citenorm configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"
)

// GlobalConfig represents configuration stored in ~/.config/citenorm/config.yml.
type GlobalConfig struct {
	NCBIAPIKey     string `yaml:"ncbi_api_key,omitempty"`
	NCBIEmail      string `yaml:"ncbi_email,omitempty"`
	CrossrefMailto string `yaml:"crossref_mailto,omitempty"`
	Workers        int    `yaml:"workers,omitempty"`
	Retries        int    `yaml:"retries,omitempty"`
	ScholarEnabled *bool  `yaml:"scholar_enabled,omitempty"`
	CheckpointPath string `yaml:"checkpoint_path,omitempty"`
	DBPath         string `yaml:"db_path,omitempty"`
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "citenorm"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"
)

// Environment variables that take precedence over the config file.
const (
	EnvNCBIAPIKey     = "NCBI_API_KEY"
	EnvCrossrefMailto = "CROSSREF_MAILTO"
)

// globalConfigCache caches the loaded global config.
var globalConfigCache *GlobalConfig

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/citenorm/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadGlobalConfig loads the global configuration file and applies
// environment overrides. A missing file yields an empty config, not an error.
func LoadGlobalConfig() (*GlobalConfig, error) {
	if globalConfigCache != nil {
		return globalConfigCache, nil
	}

	cfg, err := readFile(GlobalConfigPath())
	if err != nil {
		return nil, err
	}
	cfg.applyEnv()

	globalConfigCache = cfg
	return cfg, nil
}

// ResetGlobalConfigCache clears the cached global config.
// Useful for testing.
func ResetGlobalConfigCache() {
	globalConfigCache = nil
}

// LoadFileConfig reads the global config file without environment
// overrides or caching. Use it to edit and save the file.
func LoadFileConfig() (*GlobalConfig, error) {
	return readFile(GlobalConfigPath())
}

func readFile(path string) (*GlobalConfig, error) {
	if path == "" {
		return &GlobalConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &GlobalConfig{}, nil
		}
		return nil, fmt.Errorf("reading global config: %w", err)
	}

	var cfg GlobalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing global config: %w", err)
	}
	cfg.CheckpointPath = ExpandPath(cfg.CheckpointPath)
	cfg.DBPath = ExpandPath(cfg.DBPath)
	return &cfg, nil
}

func (c *GlobalConfig) applyEnv() {
	if v := os.Getenv(EnvNCBIAPIKey); v != "" {
		c.NCBIAPIKey = v
	}
	if v := os.Getenv(EnvCrossrefMailto); v != "" {
		c.CrossrefMailto = v
	}
}

// Scholar reports whether the Google Scholar fallback is enabled. It is on
// unless explicitly disabled.
func (c *GlobalConfig) Scholar() bool {
	return c.ScholarEnabled == nil || *c.ScholarEnabled
}

// SaveGlobalConfig writes the file-backed values of cfg to the global config
// path. Environment overrides are not persisted.
func SaveGlobalConfig(cfg *GlobalConfig) error {
	path := GlobalConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding global config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing global config: %w", err)
	}

	ResetGlobalConfigCache()
	return nil
}

// Keys lists the settable configuration keys.
func Keys() []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type field struct {
	get func(*GlobalConfig) string
	set func(*GlobalConfig, string) error
}

var fields = map[string]field{
	"ncbi_api_key": {
		get: func(c *GlobalConfig) string { return c.NCBIAPIKey },
		set: func(c *GlobalConfig, v string) error { c.NCBIAPIKey = v; return nil },
	},
	"ncbi_email": {
		get: func(c *GlobalConfig) string { return c.NCBIEmail },
		set: func(c *GlobalConfig, v string) error { c.NCBIEmail = v; return nil },
	},
	"crossref_mailto": {
		get: func(c *GlobalConfig) string { return c.CrossrefMailto },
		set: func(c *GlobalConfig, v string) error { c.CrossrefMailto = v; return nil },
	},
	"workers": {
		get: func(c *GlobalConfig) string { return itoa(c.Workers) },
		set: func(c *GlobalConfig, v string) (err error) { c.Workers, err = atoi("workers", v); return },
	},
	"retries": {
		get: func(c *GlobalConfig) string { return itoa(c.Retries) },
		set: func(c *GlobalConfig, v string) (err error) { c.Retries, err = atoi("retries", v); return },
	},
	"scholar_enabled": {
		get: func(c *GlobalConfig) string {
			if c.ScholarEnabled == nil {
				return ""
			}
			return strconv.FormatBool(*c.ScholarEnabled)
		},
		set: func(c *GlobalConfig, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid scholar_enabled %q: must be true or false", v)
			}
			c.ScholarEnabled = &b
			return nil
		},
	},
	"checkpoint_path": {
		get: func(c *GlobalConfig) string { return c.CheckpointPath },
		set: func(c *GlobalConfig, v string) error { c.CheckpointPath = ExpandPath(v); return nil },
	},
	"db_path": {
		get: func(c *GlobalConfig) string { return c.DBPath },
		set: func(c *GlobalConfig, v string) error { c.DBPath = ExpandPath(v); return nil },
	},
}

// Get returns the value of key, or an error for an unknown key.
func (c *GlobalConfig) Get(key string) (string, error) {
	f, ok := fields[key]
	if !ok {
		return "", unknownKey(key)
	}
	return f.get(c), nil
}

// Set validates and stores value under key.
func (c *GlobalConfig) Set(key, value string) error {
	f, ok := fields[key]
	if !ok {
		return unknownKey(key)
	}
	return f.set(c, value)
}

func unknownKey(key string) error {
	return fmt.Errorf("unknown config key %q (valid: %v)", key, Keys())
}

func itoa(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}

func atoi(key, v string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a non-negative integer", key, v)
	}
	return n, nil
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, path[1:])
}
