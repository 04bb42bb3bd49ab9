package parser

import (
	"maps"
	"strings"
	"unsafe"

	"impactscan/internal/core/errors"
	"impactscan/internal/shared/util"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_css "github.com/tree-sitter/tree-sitter-css/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// LanguageSpec describes one parseable language.
type LanguageSpec struct {
	Name       string
	Enabled    bool
	Extensions []string
}

// LanguageOverride adjusts a LanguageSpec from configuration.
type LanguageOverride struct {
	Enabled    *bool
	Extensions []string
}

// grammars maps a language id to its compiled tree-sitter grammar.
var grammars = map[string]func() unsafe.Pointer{
	"css":        tree_sitter_css.Language,
	"javascript": tree_sitter_javascript.Language,
	"python":     tree_sitter_python.Language,
	"tsx":        tree_sitter_typescript.LanguageTSX,
	"typescript": tree_sitter_typescript.LanguageTypescript,
}

func DefaultLanguageRegistry() map[string]LanguageSpec {
	return map[string]LanguageSpec{
		"javascript": {Name: "javascript", Enabled: true, Extensions: []string{".js", ".jsx", ".mjs", ".cjs"}},
		"typescript": {Name: "typescript", Enabled: true, Extensions: []string{".ts", ".mts", ".cts"}},
		"tsx":        {Name: "tsx", Enabled: true, Extensions: []string{".tsx"}},
		"python":     {Name: "python", Enabled: true, Extensions: []string{".py"}},
		"css":        {Name: "css", Enabled: true, Extensions: []string{".css"}},
	}
}

// BuildLanguageRegistry applies overrides to the default registry. Override
// extensions replace the defaults and are lower-cased with a leading dot.
func BuildLanguageRegistry(overrides map[string]LanguageOverride) (map[string]LanguageSpec, error) {
	registry := DefaultLanguageRegistry()
	for _, lang := range util.SortedStringKeys(overrides) {
		spec, ok := registry[lang]
		if !ok {
			return nil, errors.Newf(errors.CodeNotSupported, "unknown language %q", lang)
		}
		override := overrides[lang]
		if override.Enabled != nil {
			spec.Enabled = *override.Enabled
		}
		if len(override.Extensions) > 0 {
			spec.Extensions = normalizeExtensions(override.Extensions)
		}
		registry[lang] = spec
	}
	return registry, nil
}

func normalizeExtensions(in []string) []string {
	out := make([]string, 0, len(in))
	for _, ext := range in {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if ext[0] != '.' {
			ext = "." + ext
		}
		out = append(out, ext)
	}
	return out
}

// GrammarLoader holds the grammars of every enabled language.
type GrammarLoader struct {
	languages map[string]*sitter.Language
	registry  map[string]LanguageSpec
}

func NewGrammarLoader(registry map[string]LanguageSpec) (*GrammarLoader, error) {
	if registry == nil {
		registry = DefaultLanguageRegistry()
	}
	gl := &GrammarLoader{
		languages: make(map[string]*sitter.Language, len(registry)),
		registry:  cloneLanguageRegistry(registry),
	}
	for id, spec := range gl.registry {
		if !spec.Enabled {
			continue
		}
		grammar, ok := grammars[id]
		if !ok {
			return nil, errors.AddContext(
				errors.New(errors.CodeNotSupported, "no grammar bundled for language"),
				errors.CtxLanguage, id)
		}
		gl.languages[id] = sitter.NewLanguage(grammar())
	}
	return gl, nil
}

// LanguageRegistry returns a copy of the registry the loader was built with.
func (gl *GrammarLoader) LanguageRegistry() map[string]LanguageSpec {
	return cloneLanguageRegistry(gl.registry)
}

// Language returns nil for unknown or disabled languages.
func (gl *GrammarLoader) Language(id string) *sitter.Language {
	return gl.languages[id]
}

func cloneLanguageRegistry(in map[string]LanguageSpec) map[string]LanguageSpec {
	out := maps.Clone(in)
	for id, spec := range out {
		spec.Extensions = append([]string(nil), spec.Extensions...)
		out[id] = spec
	}
	return out
}
