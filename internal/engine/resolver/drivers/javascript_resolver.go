package drivers

import (
	"path/filepath"
	"sort"
	"strings"
)

// FileProber reports whether path is an accessible regular file.
type FileProber interface {
	Exists(path string) bool
}

// JavaScriptResolver maps JS/TS/CSS specifiers to files using relative,
// root-absolute and alias rules plus extension and index inference.
type JavaScriptResolver struct {
	root       string
	extensions []string
	indexFiles []string
	aliases    []alias
	fs         FileProber
}

type alias struct {
	prefix string
	target string
}

var jsToTS = map[string][]string{
	".js":  {".ts", ".tsx"},
	".jsx": {".tsx"},
	".mjs": {".mts"},
	".cjs": {".cts"},
}

func NewJavaScriptResolver(root string, extensions, indexFiles []string, aliases map[string]string, fs FileProber) *JavaScriptResolver {
	r := &JavaScriptResolver{
		root:       root,
		extensions: extensions,
		indexFiles: indexFiles,
		fs:         fs,
	}
	for prefix, target := range aliases {
		if !filepath.IsAbs(target) {
			target = filepath.Join(root, filepath.FromSlash(target))
		}
		r.aliases = append(r.aliases, alias{prefix: prefix, target: target})
	}
	// Longest prefix wins.
	sort.Slice(r.aliases, func(i, j int) bool {
		if len(r.aliases[i].prefix) != len(r.aliases[j].prefix) {
			return len(r.aliases[i].prefix) > len(r.aliases[j].prefix)
		}
		return r.aliases[i].prefix < r.aliases[j].prefix
	})
	return r
}

// NormalizeSpecifier strips quoting and bundler query/fragment suffixes.
func NormalizeSpecifier(specifier string) string {
	specifier = strings.TrimSpace(specifier)
	specifier = strings.Trim(specifier, "\"'`")
	if idx := strings.IndexAny(specifier, "?#"); idx > 0 {
		specifier = specifier[:idx]
	}
	return specifier
}

func isExternal(specifier string) bool {
	switch {
	case specifier == "":
		return true
	case strings.HasPrefix(specifier, "node:"), strings.HasPrefix(specifier, "data:"):
		return true
	case strings.Contains(specifier, "://"), strings.HasPrefix(specifier, "//"):
		return true
	}
	return false
}

func isRelative(specifier string) bool {
	return specifier == "." || specifier == ".." ||
		strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../")
}

// Resolve returns the absolute path for specifier as written in fromFile.
// bareIsRelative makes package-looking specifiers relative, as CSS @import does.
func (r *JavaScriptResolver) Resolve(fromFile, specifier string, bareIsRelative bool) (string, bool) {
	specifier = NormalizeSpecifier(specifier)
	if isExternal(specifier) {
		return "", false
	}

	for _, base := range r.bases(fromFile, specifier, bareIsRelative) {
		if resolved, ok := r.probe(base); ok {
			return resolved, true
		}
	}
	return "", false
}

func (r *JavaScriptResolver) bases(fromFile, specifier string, bareIsRelative bool) []string {
	fromDir := filepath.Dir(fromFile)
	native := filepath.FromSlash(specifier)

	switch {
	case isRelative(specifier):
		return []string{filepath.Join(fromDir, native)}
	case strings.HasPrefix(specifier, "/"):
		return []string{filepath.Join(r.root, native), filepath.Clean(native)}
	}

	for _, a := range r.aliases {
		if specifier == a.prefix || strings.HasPrefix(specifier, a.prefix) {
			rest := strings.TrimPrefix(specifier, a.prefix)
			return []string{filepath.Join(a.target, filepath.FromSlash(rest))}
		}
	}

	if bareIsRelative && !strings.HasPrefix(specifier, "~") {
		return []string{filepath.Join(fromDir, native)}
	}
	return nil
}

func (r *JavaScriptResolver) probe(base string) (string, bool) {
	for _, candidate := range r.candidates(base) {
		if r.fs.Exists(candidate) {
			return filepath.Clean(candidate), true
		}
	}
	return "", false
}

func (r *JavaScriptResolver) candidates(base string) []string {
	out := []string{base}
	for _, ext := range r.extensions {
		out = append(out, base+ext)
	}

	ext := strings.ToLower(filepath.Ext(base))
	if swaps, ok := jsToTS[ext]; ok {
		stem := strings.TrimSuffix(base, filepath.Ext(base))
		for _, swap := range swaps {
			out = append(out, stem+swap)
		}
	}

	for _, index := range r.indexFiles {
		for _, ext := range r.extensions {
			out = append(out, filepath.Join(base, index+ext))
		}
	}
	return out
}
