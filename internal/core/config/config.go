package config

import (
	"strings"
	"time"

	"impactscan/internal/engine/parser"
)

const DefaultFileName = "impactscan.toml"

type Config struct {
	Project       Project             `toml:"project"`
	Languages     map[string]Language `toml:"languages"`
	Resolver      Resolver            `toml:"resolver"`
	Exclude       Exclude             `toml:"exclude"`
	Traversal     Traversal           `toml:"traversal"`
	Changes       Changes             `toml:"changes"`
	Output        Output              `toml:"output"`
	Observability Observability       `toml:"observability"`
	Watch         Watch               `toml:"watch"`
}

type Project struct {
	Root  string `toml:"root"`
	Entry string `toml:"entry"`
}

type Language struct {
	Enabled    *bool    `toml:"enabled"`
	Extensions []string `toml:"extensions"`
}

type Resolver struct {
	Extensions  []string          `toml:"extensions"`
	IndexFiles  []string          `toml:"index_files"`
	Aliases     map[string]string `toml:"aliases"`
	PythonRoots []string          `toml:"python_roots"`
}

type Exclude struct {
	Dirs  []string `toml:"dirs"`
	Files []string `toml:"files"`
}

type Traversal struct {
	Concurrency    int     `toml:"concurrency"`
	ReadsPerSecond float64 `toml:"reads_per_second"`
	ReadBurst      int     `toml:"read_burst"`
}

type Changes struct {
	BaseRef          string `toml:"base_ref"`
	File             string `toml:"file"`
	IncludeUntracked bool   `toml:"include_untracked"`
}

type Output struct {
	Format string `toml:"format"`
	Path   string `toml:"path"`
}

type Observability struct {
	MetricsAddr  string `toml:"metrics_addr"`
	OTLPEndpoint string `toml:"otlp_endpoint"`
	OTLPInsecure bool   `toml:"otlp_insecure"`
}

type Watch struct {
	Debounce time.Duration `toml:"debounce"`
}

const (
	FormatJSON = "json"
	FormatTree = "tree"
)

// DefaultConfig is used when no config file is present.
func DefaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.Project.Root) == "" {
		cfg.Project.Root = "."
	}
	if len(cfg.Resolver.Extensions) == 0 {
		cfg.Resolver.Extensions = []string{".ts", ".tsx", ".mts", ".cts", ".js", ".jsx", ".mjs", ".cjs", ".json", ".css"}
	}
	if len(cfg.Resolver.IndexFiles) == 0 {
		cfg.Resolver.IndexFiles = []string{"index"}
	}
	if len(cfg.Exclude.Dirs) == 0 {
		cfg.Exclude.Dirs = []string{"node_modules", "dist", "build", "vendor", ".git", "__pycache__", ".venv"}
	}
	if cfg.Traversal.Concurrency <= 0 {
		cfg.Traversal.Concurrency = 8
	}
	if cfg.Traversal.ReadsPerSecond > 0 && cfg.Traversal.ReadBurst <= 0 {
		cfg.Traversal.ReadBurst = int(cfg.Traversal.ReadsPerSecond)
		if cfg.Traversal.ReadBurst < 1 {
			cfg.Traversal.ReadBurst = 1
		}
	}
	if strings.TrimSpace(cfg.Changes.BaseRef) == "" {
		cfg.Changes.BaseRef = "HEAD"
	}
	if strings.TrimSpace(cfg.Output.Format) == "" {
		cfg.Output.Format = FormatTree
	}
	cfg.Output.Format = strings.ToLower(strings.TrimSpace(cfg.Output.Format))
	if cfg.Watch.Debounce <= 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}
}

// LanguageOverrides converts the [languages] table for parser.BuildLanguageRegistry.
func (c *Config) LanguageOverrides() map[string]parser.LanguageOverride {
	if len(c.Languages) == 0 {
		return nil
	}
	out := make(map[string]parser.LanguageOverride, len(c.Languages))
	for id, lang := range c.Languages {
		out[strings.ToLower(strings.TrimSpace(id))] = parser.LanguageOverride{
			Enabled:    lang.Enabled,
			Extensions: lang.Extensions,
		}
	}
	return out
}
