// Package config loads cqlcomplete settings from defaults, an optional YAML
// file, CQLCOMPLETE_* environment variables and command-line overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment variable read by Load. Nested keys
// use a double underscore: CQLCOMPLETE_CLUSTER__HOSTS=a,b.
const EnvPrefix = "CQLCOMPLETE_"

// DefaultFile is looked up in the working directory when no file is given.
const DefaultFile = "cqlcomplete.yaml"

// Config is the full application configuration.
type Config struct {
	LogLevel        string `koanf:"log_level"`
	LogFormat       string `koanf:"log_format"`
	DefaultKeyspace string `koanf:"default_keyspace"`
	SchemaFile      string `koanf:"schema_file"`
	MaxItems        int    `koanf:"max_items"`

	Cluster ClusterConfig `koanf:"cluster"`
	Server  ServerConfig  `koanf:"server"`
	History HistoryConfig `koanf:"history"`

	// File is the config file that was loaded, empty if none.
	File string `koanf:"-"`
}

// ClusterConfig selects the live schema source. It is disabled when Hosts
// is empty.
type ClusterConfig struct {
	Hosts       []string      `koanf:"hosts"`
	Keyspace    string        `koanf:"keyspace"`
	Username    string        `koanf:"username"`
	Password    string        `koanf:"password"`
	Timeout     time.Duration `koanf:"timeout"`
	Consistency string        `koanf:"consistency"`
}

// Enabled reports whether a cluster is configured.
func (c ClusterConfig) Enabled() bool {
	return len(c.Hosts) > 0
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Listen          string        `koanf:"listen"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// HistoryConfig configures the per-user query history store.
type HistoryConfig struct {
	Dir           string        `koanf:"dir"`
	FlushInterval time.Duration `koanf:"flush_interval"`
	Limit         int           `koanf:"limit"`
}

func defaults() map[string]any {
	return map[string]any{
		"log_level":               "info",
		"log_format":              "text",
		"max_items":               50,
		"cluster.timeout":         "2s",
		"cluster.consistency":     "LOCAL_ONE",
		"server.listen":           ":8080",
		"server.shutdown_timeout": "10s",
		"history.dir":             "history",
		"history.flush_interval":  "30s",
		"history.limit":           50,
	}
}

// Load builds the configuration. Precedence, highest first: overrides, env
// vars, config file, defaults. path may be empty; an explicit path that does
// not exist is an error.
func Load(path string, overrides map[string]any) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	used, err := findConfigFile(path)
	if err != nil {
		return nil, err
	}
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	// CQLCOMPLETE_HISTORY__FLUSH_INTERVAL -> history.flush_interval
	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, interface{}) {
		key = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(key, EnvPrefix)), "__", ".")
		if key == "cluster.hosts" {
			return key, strings.Split(value, ",")
		}
		return key, value
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if len(overrides) > 0 {
		if err := k.Load(confmap.Provider(overrides, "."), nil); err != nil {
			return nil, fmt.Errorf("failed to load overrides: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.File = used

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func findConfigFile(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file: %w", err)
		}
		return explicit, nil
	}
	if _, err := os.Stat(DefaultFile); err == nil {
		return DefaultFile, nil
	}
	return "", nil
}

var consistencies = []string{
	"ANY", "ONE", "TWO", "THREE", "QUORUM", "ALL",
	"LOCAL_QUORUM", "EACH_QUORUM", "LOCAL_ONE",
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	var errs []error
	if c.MaxItems < 0 {
		errs = append(errs, fmt.Errorf("max_items must not be negative, got %d", c.MaxItems))
	}
	if c.History.Limit <= 0 {
		errs = append(errs, fmt.Errorf("history.limit must be positive, got %d", c.History.Limit))
	}
	if c.History.FlushInterval <= 0 {
		errs = append(errs, fmt.Errorf("history.flush_interval must be positive, got %s", c.History.FlushInterval))
	}
	if c.Cluster.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("cluster.timeout must be positive, got %s", c.Cluster.Timeout))
	}
	if !validConsistency(c.Cluster.Consistency) {
		errs = append(errs, fmt.Errorf("cluster.consistency %q is not one of %s", c.Cluster.Consistency, strings.Join(consistencies, ", ")))
	}
	if c.Server.Listen == "" {
		errs = append(errs, errors.New("server.listen is required"))
	}
	return errors.Join(errs...)
}

func validConsistency(s string) bool {
	for _, c := range consistencies {
		if strings.EqualFold(c, s) {
			return true
		}
	}
	return false
}
