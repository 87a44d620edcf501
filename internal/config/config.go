/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package config loads regctl settings. Later sources override earlier ones:
// built-in defaults, regctl.toml, .env, then REGCTL_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	// DefaultConfigFile is read from the working directory when no file is given.
	DefaultConfigFile = "regctl.toml"
	// DefaultEnvFile is loaded into the environment when present.
	DefaultEnvFile = ".env"
	// EnvPrefix prefixes every environment variable regctl reads.
	EnvPrefix = "REGCTL_"
)

// Config holds regctl settings.
type Config struct {
	// Manifests are loaded, in order, before every command.
	Manifests []string `koanf:"manifests"`
	// Strict rejects duplicate entries instead of overwriting them.
	Strict bool `koanf:"strict"`
	// Verbosity is the default -v count.
	Verbosity int `koanf:"verbosity"`
	// LogFile, when set, receives a copy of the log output.
	LogFile string `koanf:"log_file"`
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"manifests": []string{},
		"strict":    false,
		"verbosity": 0,
		"log_file":  "",
	}
}

// Load reads the configuration. An empty configFile falls back to
// DefaultConfigFile if it exists; an explicitly named file must exist.
// An empty envFile falls back to DefaultEnvFile if it exists. Variables
// already set in the environment win over the env file.
func Load(configFile, envFile string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	path, err := pick(configFile, DefaultConfigFile)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
	}

	envPath, err := pick(envFile, DefaultEnvFile)
	if err != nil {
		return nil, err
	}
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil {
			return nil, fmt.Errorf("failed to load env file %s: %w", envPath, err)
		}
	}

	err = k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook:       mapstructure.StringToSliceHookFunc(","),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	cfg.Manifests = compact(cfg.Manifests)
	return &cfg, nil
}

// pick returns explicit if set (it must exist), otherwise fallback if it exists.
func pick(explicit, fallback string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config: %w", err)
		}
		return explicit, nil
	}
	if _, err := os.Stat(fallback); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("config: %w", err)
	}
	return fallback, nil
}

func compact(paths []string) []string {
	out := paths[:0]
	for _, p := range paths {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
