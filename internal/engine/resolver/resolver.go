package resolver

import (
	"path/filepath"
	"strings"
)

type Options struct {
	Root        string
	Extensions  []string
	IndexFiles  []string
	Aliases     map[string]string
	PythonRoots []string
	// KnownDeleted lists files removed by the change set under analysis.
	// They resolve as if present so importers can still be classified.
	KnownDeleted []string
}

type deletedOverlay struct {
	base    FileProber
	deleted map[string]struct{}
}

func (o deletedOverlay) Exists(path string) bool {
	if _, ok := o.deleted[filepath.Clean(path)]; ok {
		return true
	}
	return o.base.Exists(path)
}

func DefaultExtensions() []string {
	return []string{".ts", ".tsx", ".mts", ".cts", ".js", ".jsx", ".mjs", ".cjs", ".json", ".css"}
}

// Resolver picks a language driver by the importing file's extension.
// Unresolved specifiers (packages, URLs, missing files) return false.
type Resolver struct {
	js *JavaScriptResolver
	py *PythonResolver
}

func New(opts Options, fs FileProber) *Resolver {
	extensions := opts.Extensions
	if len(extensions) == 0 {
		extensions = DefaultExtensions()
	}
	indexFiles := opts.IndexFiles
	if len(indexFiles) == 0 {
		indexFiles = []string{"index"}
	}
	pyRoots := make([]string, 0, len(opts.PythonRoots)+1)
	for _, root := range opts.PythonRoots {
		if !filepath.IsAbs(root) {
			root = filepath.Join(opts.Root, filepath.FromSlash(root))
		}
		pyRoots = append(pyRoots, filepath.Clean(root))
	}
	if len(pyRoots) == 0 {
		pyRoots = append(pyRoots, opts.Root)
	}

	if len(opts.KnownDeleted) > 0 {
		overlay := deletedOverlay{base: fs, deleted: make(map[string]struct{}, len(opts.KnownDeleted))}
		for _, p := range opts.KnownDeleted {
			overlay.deleted[filepath.Clean(p)] = struct{}{}
		}
		fs = overlay
	}

	return &Resolver{
		js: NewJavaScriptResolver(opts.Root, extensions, indexFiles, opts.Aliases, fs),
		py: NewPythonResolver(pyRoots, fs),
	}
}

func (r *Resolver) Resolve(fromFile, specifier string) (string, bool) {
	switch strings.ToLower(filepath.Ext(fromFile)) {
	case ".py":
		return r.py.Resolve(fromFile, specifier)
	case ".css":
		return r.js.Resolve(fromFile, specifier, true)
	default:
		return r.js.Resolve(fromFile, specifier, false)
	}
}
