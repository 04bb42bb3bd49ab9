package drivers

import (
	"path/filepath"
	"strings"
)

// PythonResolver maps dotted module names to .py files or package __init__.py.
type PythonResolver struct {
	roots []string
	fs    FileProber
}

func NewPythonResolver(roots []string, fs FileProber) *PythonResolver {
	return &PythonResolver{roots: roots, fs: fs}
}

// Resolve handles "pkg.mod" against every source root and "..pkg.mod"
// against the package of fromFile.
func (r *PythonResolver) Resolve(fromFile, module string) (string, bool) {
	module = strings.TrimSpace(module)
	if module == "" {
		return "", false
	}

	level := len(module) - len(strings.TrimLeft(module, "."))
	rest := strings.TrimLeft(module, ".")
	relPath := filepath.Join(strings.Split(rest, ".")...)

	if level > 0 {
		base := filepath.Dir(fromFile)
		for i := 1; i < level; i++ {
			base = filepath.Dir(base)
		}
		return r.probe(filepath.Join(base, relPath))
	}

	for _, root := range r.roots {
		if resolved, ok := r.probe(filepath.Join(root, relPath)); ok {
			return resolved, true
		}
	}
	return "", false
}

func (r *PythonResolver) probe(base string) (string, bool) {
	candidates := []string{
		base + ".py",
		filepath.Join(base, "__init__.py"),
	}
	for _, candidate := range candidates {
		if r.fs.Exists(candidate) {
			return filepath.Clean(candidate), true
		}
	}
	return "", false
}
