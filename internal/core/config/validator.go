package config

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"

	"impactscan/internal/engine/parser"
)

func validateLanguages(cfg *Config) error {
	if _, err := parser.BuildLanguageRegistry(cfg.LanguageOverrides()); err != nil {
		return fmt.Errorf("languages: %w", err)
	}
	return nil
}

func validateResolver(cfg *Config) error {
	for i, ext := range cfg.Resolver.Extensions {
		if !strings.HasPrefix(strings.TrimSpace(ext), ".") {
			return fmt.Errorf("resolver.extensions[%d] %q must start with '.'", i, ext)
		}
	}
	for i, name := range cfg.Resolver.IndexFiles {
		if strings.TrimSpace(name) == "" || strings.ContainsAny(name, `/\`) {
			return fmt.Errorf("resolver.index_files[%d] %q must be a bare file name", i, name)
		}
	}
	for prefix, target := range cfg.Resolver.Aliases {
		if strings.TrimSpace(prefix) == "" {
			return fmt.Errorf("resolver.aliases must not contain an empty prefix")
		}
		if strings.TrimSpace(target) == "" {
			return fmt.Errorf("resolver.aliases[%q] must not be empty", prefix)
		}
	}
	return nil
}

func validateExclude(cfg *Config) error {
	for i, pattern := range cfg.Exclude.Dirs {
		if _, err := glob.Compile(pattern); err != nil {
			return fmt.Errorf("exclude.dirs[%d] %q is invalid: %w", i, pattern, err)
		}
	}
	for i, pattern := range cfg.Exclude.Files {
		if _, err := glob.Compile(pattern); err != nil {
			return fmt.Errorf("exclude.files[%d] %q is invalid: %w", i, pattern, err)
		}
	}
	return nil
}

func validateTraversal(cfg *Config) error {
	if cfg.Traversal.Concurrency > 1024 {
		return fmt.Errorf("traversal.concurrency must be <= 1024, got %d", cfg.Traversal.Concurrency)
	}
	if cfg.Traversal.ReadsPerSecond < 0 {
		return fmt.Errorf("traversal.reads_per_second must be >= 0")
	}
	return nil
}

func validateOutput(cfg *Config) error {
	switch cfg.Output.Format {
	case FormatJSON, FormatTree:
	default:
		return fmt.Errorf("output.format must be one of: json, tree")
	}
	return nil
}
