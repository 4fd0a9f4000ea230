// Package config loads the console configuration from tourdesk.yaml, a .env
// file and TOURDESK_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides: TOURDESK_STORE_DRIVER sets
// store.driver.
const EnvPrefix = "TOURDESK"

// LoadOptions locate the configuration sources.
type LoadOptions struct {
	// File is an explicit config path. When empty tourdesk.yaml is searched
	// in SearchPaths.
	File        string
	SearchPaths []string
	// EnvFiles are loaded with godotenv before reading the environment.
	// Missing files are skipped.
	EnvFiles []string
}

// Load reads, defaults and validates the configuration.
func Load(opts LoadOptions) (*Config, error) {
	for _, path := range opts.EnvFiles {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return nil, fmt.Errorf("config: load %s: %w", path, err)
		}
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if opts.File != "" {
		v.SetConfigFile(opts.File)
	} else {
		v.SetConfigName("tourdesk")
		paths := opts.SearchPaths
		if len(paths) == 0 {
			paths = []string{"./configs", "."}
		}
		for _, p := range paths {
			v.AddConfigPath(p)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	bindKeys(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.File != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: invalid configuration: %w", err)
	}
	return &cfg, nil
}

// bindKeys registers every key so AutomaticEnv also applies to keys absent
// from the file when unmarshalling.
func bindKeys(v *viper.Viper) {
	for _, key := range []string{
		"log.level", "log.format",
		"store.driver", "store.dsn", "store.contract",
		"directory.redis.addr", "directory.redis.password", "directory.redis.db", "directory.redis.key",
		"options.file",
		"metrics.enabled", "metrics.addr",
		"preview.templates",
	} {
		_ = v.BindEnv(key)
	}
}
