package parser

import (
	"regexp"
	"time"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

var cssImportTarget = regexp.MustCompile(`@import\s+(?:url\(\s*)?["']?([^"')\s;]+)`)

// CSSExtractor records @import rules. Stylesheets export nothing.
type CSSExtractor struct{}

func (e *CSSExtractor) Extract(root *sitter.Node, source []byte, filePath string) (*File, error) {
	file := &File{
		Path:     filePath,
		Language: "css",
		Exports:  []Export{},
		ParsedAt: time.Now(),
	}

	ctx := &ExtractionContext{Source: source, File: file}
	engine := NewExtractorEngine(map[string]NodeHandler{
		"import_statement": func(ctx *ExtractionContext, node *sitter.Node) bool {
			if m := cssImportTarget.FindStringSubmatch(ctx.Text(node)); m != nil {
				ctx.AddImport(newImport(m[1], ctx.Line(node)))
			}
			return true
		},
	})
	engine.Walk(ctx, root)

	return file, nil
}
