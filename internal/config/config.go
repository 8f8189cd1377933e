// Package config provides configuration management for kvcask. It loads
// settings from a YAML file and environment variables, with thread-safe
// singleton access, following the same pattern the storage engine itself
// uses for its on-disk state: load once, share a pointer everywhere.
package config

import (
	"log/slog"
	"os"
	"sync"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// DefaultConfigPath is used when LoadConfig is called with an empty path
// and KVCASK_CONFIG is not set in the environment.
const DefaultConfigPath = "config.yml"

// Config holds every tunable shared across the server, client and engine.
type Config struct {
	DATA_DIR             string `yaml:"DATA_DIR"`
	ADDR                 string `yaml:"ADDR"`
	ENGINE               string `yaml:"ENGINE"`
	POOL_KIND            string `yaml:"POOL_KIND"`
	POOL_SIZE            uint32 `yaml:"POOL_SIZE"`
	COMPACTION_THRESHOLD uint64 `yaml:"COMPACTION_THRESHOLD"`
}

var (
	appConfig *Config
	once      sync.Once
	initErr   error
)

// Defaults returns the built-in configuration used when no YAML file is
// present on disk: address 127.0.0.1:4000, engine "kvs".
func Defaults() *Config {
	return &Config{
		DATA_DIR:             "./data",
		ADDR:                 "127.0.0.1:4000",
		ENGINE:               "kvs",
		POOL_KIND:            "shared-queue",
		POOL_SIZE:            4,
		COMPACTION_THRESHOLD: 1024 * 1024,
	}
}

// LoadConfig reads configuration values from a YAML file, optionally
// overlaid with a .env file, and caches the result process-wide. The path
// is resolved as: the explicit argument, then KVCASK_CONFIG, then
// DefaultConfigPath. A missing file is not an error: defaults are used
// instead, since kvcask should run out of the box.
func LoadConfig(path string) (*Config, error) {
	once.Do(func() {
		if err := godotenv.Load(); err != nil {
			slog.Debug("config: no .env file found or error loading it", "error", err)
		} else {
			slog.Debug("config: .env file loaded successfully")
		}

		if path == "" {
			path = os.Getenv("KVCASK_CONFIG")
		}
		if path == "" {
			path = DefaultConfigPath
		}

		cfg := Defaults()
		file, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				initErr = err
				return
			}
			slog.Debug("config: no config file found, using defaults", "path", path)
			appConfig = cfg
			return
		}

		expanded := os.ExpandEnv(string(file))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			initErr = err
			return
		}
		appConfig = cfg
	})
	if initErr != nil {
		return nil, initErr
	}
	return appConfig, nil
}

// GetConfig returns the singleton configuration instance. Panics if
// configuration has not been loaded yet.
func GetConfig() *Config {
	if appConfig == nil {
		panic("config not loaded - call LoadConfig() first")
	}
	return appConfig
}

// reset is used only by tests to undo the sync.Once latch between cases.
func reset() {
	once = sync.Once{}
	appConfig = nil
	initErr = nil
}
