package parser

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"impactscan/internal/core/errors"
	"impactscan/internal/shared/observability"
	"impactscan/internal/shared/util"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

type Extractor interface {
	Extract(root *sitter.Node, source []byte, filePath string) (*File, error)
}

// Parser is the symbol extractor: it detects the language of a path, parses
// it with a pooled tree-sitter parser and runs the language extractor.
type Parser struct {
	loader     *GrammarLoader
	pools      map[string]*ParserPool
	extractors map[string]Extractor
	extensions map[string]string
}

func NewParser(loader *GrammarLoader) *Parser {
	p := &Parser{
		loader:     loader,
		pools:      make(map[string]*ParserPool),
		extractors: make(map[string]Extractor),
		extensions: make(map[string]string),
	}
	for lang, spec := range loader.LanguageRegistry() {
		if !spec.Enabled {
			continue
		}
		for _, ext := range spec.Extensions {
			p.extensions[strings.ToLower(ext)] = lang
		}
		if grammar := loader.Language(lang); grammar != nil {
			p.pools[lang] = NewParserPool(grammar)
		}
		if extractor, ok := DefaultExtractorForLanguage(lang); ok {
			p.extractors[lang] = extractor
		}
	}
	return p
}

func DefaultExtractorForLanguage(lang string) (Extractor, bool) {
	switch lang {
	case "javascript", "typescript", "tsx":
		return &JavaScriptExtractor{Language: lang}, true
	case "python":
		return &PythonExtractor{}, true
	case "css":
		return &CSSExtractor{}, true
	}
	return nil, false
}

func (p *Parser) RegisterExtractor(lang string, e Extractor) {
	p.extractors[lang] = e
}

// Extract parses the file at path. When override is non-nil it is parsed
// instead of the on-disk content.
func (p *Parser) Extract(path string, override []byte) (*File, error) {
	content := override
	if content == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.AddContext(errors.Wrap(err, errors.CodeNotFound, "read source"), errors.CtxPath, path)
		}
		content = data
	}
	return p.ParseFile(path, content)
}

func (p *Parser) ParseFile(path string, content []byte) (*File, error) {
	lang := p.GetLanguage(path)
	if lang == "" {
		return nil, errors.New(errors.CodeNotSupported, "unsupported language")
	}

	extractor := p.extractors[lang]
	if extractor == nil {
		return nil, errors.Newf(errors.CodeNotSupported, "no extractor for: %s", lang)
	}
	pool := p.pools[lang]
	if pool == nil {
		return nil, errors.Newf(errors.CodeInternal, "grammar not loaded: %s", lang)
	}

	start := time.Now()
	defer func() {
		observability.ExtractDuration.WithLabelValues(lang).Observe(time.Since(start).Seconds())
	}()

	tree := pool.Parse(content)
	if tree == nil {
		return nil, errors.New(errors.CodeInternal, "parse failed")
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, errors.AddContext(
			errors.New(errors.CodeParseError, "source contains syntax errors"),
			errors.CtxLanguage, lang,
		)
	}

	res, err := extractor.Extract(root, content, path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeParseError, "extraction failed")
	}
	res.Language = lang
	return res, nil
}

func (p *Parser) GetLanguage(path string) string {
	return p.extensions[strings.ToLower(filepath.Ext(path))]
}

func (p *Parser) IsSupportedPath(path string) bool {
	return p.GetLanguage(path) != ""
}

func (p *Parser) SupportedExtensions() []string {
	return util.SortedStringKeys(p.extensions)
}
