package parser

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// NodeHandler processes a node for a language-specific extractor.
// Returns true if the walker should not descend into the node's children.
type NodeHandler func(ctx *ExtractionContext, node *sitter.Node) bool

// ExtractionContext carries shared state/helpers used by all extractors.
type ExtractionContext struct {
	Source []byte
	File   *File
}

// ExtractorEngine walks the syntax tree and dispatches node handlers by kind.
type ExtractorEngine struct {
	handlers map[string]NodeHandler
}

func NewExtractorEngine(handlers map[string]NodeHandler) *ExtractorEngine {
	return &ExtractorEngine{handlers: handlers}
}

func (e *ExtractorEngine) Walk(ctx *ExtractionContext, node *sitter.Node) {
	if node == nil {
		return
	}

	if handler, ok := e.handlers[node.Kind()]; ok {
		if handler(ctx, node) {
			return
		}
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		e.Walk(ctx, node.Child(i))
	}
}

func (c *ExtractionContext) Text(node *sitter.Node) string {
	if node == nil {
		return ""
	}
	return string(c.Source[node.StartByte():node.EndByte()])
}

func (c *ExtractionContext) Line(node *sitter.Node) int {
	return int(node.StartPosition().Row) + 1
}

func (c *ExtractionContext) EndLine(node *sitter.Node) int {
	return int(node.EndPosition().Row) + 1
}

func (c *ExtractionContext) AddImport(imp ImportInfo) {
	c.File.Imports = append(c.File.Imports, imp)
}

func (c *ExtractionContext) AddExport(name string, decl *sitter.Node) {
	if name == "" {
		return
	}
	c.File.Exports = append(c.File.Exports, Export{
		Name:      name,
		StartLine: c.Line(decl),
		EndLine:   c.EndLine(decl),
	})
}

// ChildOfKind returns the first direct child with the given kind.
func ChildOfKind(node *sitter.Node, kind string) *sitter.Node {
	if node == nil {
		return nil
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child != nil && child.Kind() == kind {
			return child
		}
	}
	return nil
}

// collectIdentifiers gathers binding names from identifiers and destructuring patterns.
func (c *ExtractionContext) collectIdentifiers(node *sitter.Node, out *[]string) {
	if node == nil {
		return
	}
	switch node.Kind() {
	case "identifier", "shorthand_property_identifier_pattern":
		*out = append(*out, c.Text(node))
		return
	case "pair_pattern":
		c.collectIdentifiers(node.ChildByFieldName("value"), out)
		return
	case "assignment_pattern":
		c.collectIdentifiers(node.ChildByFieldName("left"), out)
		return
	}
	for i := uint(0); i < node.NamedChildCount(); i++ {
		c.collectIdentifiers(node.NamedChild(i), out)
	}
}
