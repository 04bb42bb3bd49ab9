package resolver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type osProber struct{}

func (osProber) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func writeTree(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		p := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	}
}

func TestResolver_JavaScript(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root,
		"src/main.ts",
		"src/util.ts",
		"src/lib/index.tsx",
		"src/legacy.js",
		"src/compiled.ts",
		"src/styles/app.css",
		"src/styles/theme.css",
		"src/data.json",
		"shared/components/button.tsx",
		"public/logo.js",
	)
	r := New(Options{
		Root:    root,
		Aliases: map[string]string{"@/": "src/", "@components/": "shared/components/"},
	}, osProber{})

	from := filepath.Join(root, "src", "main.ts")

	tests := []struct {
		name      string
		from      string
		specifier string
		want      string
		ok        bool
	}{
		{"extension inference", from, "./util", "src/util.ts", true},
		{"exact file", from, "./legacy.js", "src/legacy.js", true},
		{"js to ts swap", from, "./compiled.js", "src/compiled.ts", true},
		{"directory index", from, "./lib", "src/lib/index.tsx", true},
		{"json asset", from, "./data.json", "src/data.json", true},
		{"quoted with query", from, "'./util?raw'", "src/util.ts", true},
		{"parent directory", filepath.Join(root, "src", "lib", "index.tsx"), "../util", "src/util.ts", true},
		{"root absolute", from, "/public/logo", "public/logo.js", true},
		{"alias", from, "@/util", "src/util.ts", true},
		{"longest alias", from, "@components/button", "shared/components/button.tsx", true},
		{"bare package", from, "react", "", false},
		{"node builtin", from, "node:fs", "", false},
		{"url", from, "https://cdn.example.com/x.js", "", false},
		{"missing relative", from, "./missing", "", false},
		{"css relative", filepath.Join(root, "src", "styles", "app.css"), "./theme.css", "src/styles/theme.css", true},
		{"css bare is relative", filepath.Join(root, "src", "styles", "app.css"), "theme.css", "src/styles/theme.css", true},
		{"css tilde package", filepath.Join(root, "src", "styles", "app.css"), "~normalize.css", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.Resolve(tt.from, tt.specifier)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, filepath.Join(root, filepath.FromSlash(tt.want)), got)
			} else {
				assert.Empty(t, got)
			}
		})
	}
}

func TestResolver_Python(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root,
		"app/__init__.py",
		"app/main.py",
		"app/models.py",
		"app/services/__init__.py",
		"app/services/billing.py",
		"src/vendored/tool.py",
	)
	r := New(Options{Root: root, PythonRoots: []string{".", "src"}}, osProber{})

	billing := filepath.Join(root, "app", "services", "billing.py")

	tests := []struct {
		name   string
		from   string
		module string
		want   string
		ok     bool
	}{
		{"absolute module", filepath.Join(root, "app", "main.py"), "app.models", "app/models.py", true},
		{"package init", filepath.Join(root, "app", "main.py"), "app.services", "app/services/__init__.py", true},
		{"secondary root", filepath.Join(root, "app", "main.py"), "vendored.tool", "src/vendored/tool.py", true},
		{"relative sibling", filepath.Join(root, "app", "main.py"), ".models", "app/models.py", true},
		{"relative parent", billing, "..models", "app/models.py", true},
		{"current package", billing, ".", "app/services/__init__.py", true},
		{"third party", filepath.Join(root, "app", "main.py"), "requests", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.Resolve(tt.from, tt.module)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, filepath.Join(root, filepath.FromSlash(tt.want)), got)
			}
		})
	}
}

func TestResolver_DirectoryIsNotAFile(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "src/main.ts", "src/widgets/widget.ts")
	r := New(Options{Root: root}, osProber{})

	_, ok := r.Resolve(filepath.Join(root, "src", "main.ts"), "./widgets")
	assert.False(t, ok)
}

func TestNormalizeSpecifier(t *testing.T) {
	assert.Equal(t, "./a", NormalizeSpecifier(` "./a" `))
	assert.Equal(t, "./b.svg", NormalizeSpecifier("./b.svg?url"))
	assert.Equal(t, "./c.css", NormalizeSpecifier("./c.css#hash"))
}

func TestResolver_KnownDeleted(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "src/main.ts")
	gone := filepath.Join(root, "src", "removed.ts")

	plain := New(Options{Root: root}, osProber{})
	_, ok := plain.Resolve(filepath.Join(root, "src", "main.ts"), "./removed")
	assert.False(t, ok)

	withDeleted := New(Options{Root: root, KnownDeleted: []string{gone}}, osProber{})
	got, ok := withDeleted.Resolve(filepath.Join(root, "src", "main.ts"), "./removed")
	require.True(t, ok)
	assert.Equal(t, gone, got)
}
