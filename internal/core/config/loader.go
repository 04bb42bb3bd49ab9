package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/BurntSushi/toml"
)

// Load decodes a TOML file, then applies env overrides and defaults before
// validating. Unknown keys are logged, not rejected.
func Load(path string) (*Config, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	for _, key := range meta.Undecoded() {
		slog.Warn("unknown config key", "path", path, "key", key.String())
	}
	return finish(&cfg)
}

// LoadOrDefault loads path when it exists and falls back to defaults
// otherwise. An explicitly requested file must exist.
func LoadOrDefault(path string, explicit bool) (*Config, error) {
	cfg, err := Load(path)
	if err == nil || explicit || !errors.Is(err, fs.ErrNotExist) {
		return cfg, err
	}
	return finish(&Config{})
}

func finish(cfg *Config) (*Config, error) {
	ApplyEnvOverrides(cfg)
	applyDefaults(cfg)
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	for _, check := range []func(*Config) error{
		validateLanguages,
		validateResolver,
		validateExclude,
		validateTraversal,
		validateOutput,
	} {
		if err := check(cfg); err != nil {
			return err
		}
	}
	return nil
}
