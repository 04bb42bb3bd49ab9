package config

import (
	"os"
	"path/filepath"
	"strings"
)

type ResolvedPaths struct {
	ProjectRoot string
	Entry       string
	ChangesFile string
	OutputPath  string
}

// ResolvePaths anchors the project root at cwd and everything project
// relative at the root. The output path stays relative to cwd.
func ResolvePaths(cfg *Config, cwd string) ResolvedPaths {
	root := ResolveRelative(cwd, cfg.Project.Root)
	resolved := ResolvedPaths{ProjectRoot: root}
	if strings.TrimSpace(cfg.Project.Entry) != "" {
		resolved.Entry = ResolveRelative(root, cfg.Project.Entry)
	}
	if strings.TrimSpace(cfg.Changes.File) != "" {
		resolved.ChangesFile = ResolveRelative(root, cfg.Changes.File)
	}
	if strings.TrimSpace(cfg.Output.Path) != "" {
		resolved.OutputPath = ResolveRelative(cwd, cfg.Output.Path)
	}
	return resolved
}

func ResolveRelative(base, value string) string {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return filepath.Clean(base)
	}
	if filepath.IsAbs(raw) {
		return filepath.Clean(raw)
	}
	return filepath.Clean(filepath.Join(base, raw))
}

// FindConfigFile walks up from start looking for impactscan.toml.
func FindConfigFile(start string) (string, bool) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", false
	}
	for {
		candidate := filepath.Join(dir, DefaultFileName)
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			return candidate, true
		}
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return "", false
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}
