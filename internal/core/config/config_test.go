package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[project]
root = "./web"
entry = "src/main.ts"

[languages.python]
enabled = false

[languages.javascript]
extensions = [".js", ".es6"]

[resolver]
extensions = [".ts", ".js"]
aliases = { "@/" = "src/" }
python_roots = ["src"]

[exclude]
dirs = ["generated"]
files = ["*.gen.ts"]

[traversal]
concurrency = 4
reads_per_second = 200

[changes]
base_ref = "origin/main"
include_untracked = true

[output]
format = "JSON"

[observability]
metrics_addr = ":9091"

[watch]
debounce = "1s"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "./web", cfg.Project.Root)
	assert.Equal(t, "src/main.ts", cfg.Project.Entry)
	assert.Equal(t, []string{".ts", ".js"}, cfg.Resolver.Extensions)
	assert.Equal(t, []string{"index"}, cfg.Resolver.IndexFiles)
	assert.Equal(t, map[string]string{"@/": "src/"}, cfg.Resolver.Aliases)
	assert.Equal(t, []string{"generated"}, cfg.Exclude.Dirs)
	assert.Equal(t, 4, cfg.Traversal.Concurrency)
	assert.Equal(t, 200, cfg.Traversal.ReadBurst)
	assert.Equal(t, "origin/main", cfg.Changes.BaseRef)
	assert.True(t, cfg.Changes.IncludeUntracked)
	assert.Equal(t, FormatJSON, cfg.Output.Format)
	assert.Equal(t, ":9091", cfg.Observability.MetricsAddr)
	assert.Equal(t, time.Second, cfg.Watch.Debounce)

	overrides := cfg.LanguageOverrides()
	require.Contains(t, overrides, "python")
	require.NotNil(t, overrides["python"].Enabled)
	assert.False(t, *overrides["python"].Enabled)
	assert.Equal(t, []string{".js", ".es6"}, overrides["javascript"].Extensions)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, ".", cfg.Project.Root)
	assert.Equal(t, "HEAD", cfg.Changes.BaseRef)
	assert.Equal(t, FormatTree, cfg.Output.Format)
	assert.Equal(t, 8, cfg.Traversal.Concurrency)
	assert.Zero(t, cfg.Traversal.ReadBurst)
	assert.Equal(t, 500*time.Millisecond, cfg.Watch.Debounce)
	assert.Contains(t, cfg.Exclude.Dirs, "node_modules")
	assert.Contains(t, cfg.Resolver.Extensions, ".tsx")
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"unknown language", "[languages.cobol]\nenabled = true\n", "languages"},
		{"bad extension", "[resolver]\nextensions = [\"ts\"]\n", "resolver.extensions[0]"},
		{"index with path", "[resolver]\nindex_files = [\"lib/index\"]\n", "resolver.index_files[0]"},
		{"empty alias target", "[resolver]\naliases = { \"@/\" = \"\" }\n", "resolver.aliases"},
		{"bad glob", "[exclude]\nfiles = [\"[abc\"]\n", "exclude.files[0]"},
		{"negative rate", "[traversal]\nreads_per_second = -1\n", "reads_per_second"},
		{"bad format", "[output]\nformat = \"xml\"\n", "output.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_DecodeError(t *testing.T) {
	_, err := Load(writeConfig(t, "[project\nroot = 1"))
	require.Error(t, err)
}

func TestLoadOrDefault(t *testing.T) {
	missing := filepath.Join(t.TempDir(), DefaultFileName)

	cfg, err := LoadOrDefault(missing, false)
	require.NoError(t, err)
	assert.Equal(t, FormatTree, cfg.Output.Format)

	_, err = LoadOrDefault(missing, true)
	require.Error(t, err)
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("IMPACTSCAN_ROOT", "/srv/app")
	t.Setenv("IMPACTSCAN_BASE_REF", "release")
	t.Setenv("IMPACTSCAN_OTLP_ENDPOINT", "collector:4317")
	t.Setenv("IMPACTSCAN_TRAVERSAL_CONCURRENCY", "not-a-number")
	t.Setenv("IMPACTSCAN_WATCH_DEBOUNCE", "2s")

	cfg := &Config{Traversal: Traversal{Concurrency: 3}}
	ApplyEnvOverrides(cfg)

	assert.Equal(t, "/srv/app", cfg.Project.Root)
	assert.Equal(t, "release", cfg.Changes.BaseRef)
	assert.Equal(t, "collector:4317", cfg.Observability.OTLPEndpoint)
	assert.Equal(t, 3, cfg.Traversal.Concurrency)
	assert.Equal(t, 2*time.Second, cfg.Watch.Debounce)
}

func TestResolvePaths(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Project.Root = "web"
	cfg.Project.Entry = "src/main.ts"
	cfg.Changes.File = "/tmp/changes.yaml"
	cfg.Output.Path = "out/report.json"

	cwd := filepath.FromSlash("/work")
	paths := ResolvePaths(cfg, cwd)
	assert.Equal(t, filepath.Join(cwd, "web"), paths.ProjectRoot)
	assert.Equal(t, filepath.Join(cwd, "web", "src", "main.ts"), paths.Entry)
	assert.Equal(t, filepath.Clean("/tmp/changes.yaml"), paths.ChangesFile)
	assert.Equal(t, filepath.Join(cwd, "out", "report.json"), paths.OutputPath)
}

func TestFindConfigFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0o755))
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	_, ok := FindConfigFile(nested)
	assert.False(t, ok)

	want := filepath.Join(root, DefaultFileName)
	require.NoError(t, os.WriteFile(want, []byte(""), 0o644))
	got, ok := FindConfigFile(nested)
	require.True(t, ok)
	assert.Equal(t, want, got)
}
