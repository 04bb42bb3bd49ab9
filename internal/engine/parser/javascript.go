package parser

import (
	"time"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// JavaScriptExtractor handles JavaScript, TypeScript and TSX. The three
// grammars share the node kinds used here.
type JavaScriptExtractor struct {
	Language string
}

func (e *JavaScriptExtractor) Extract(root *sitter.Node, source []byte, filePath string) (*File, error) {
	file := &File{
		Path:     filePath,
		Language: e.Language,
		ParsedAt: time.Now(),
	}

	ctx := &ExtractionContext{Source: source, File: file}
	engine := NewExtractorEngine(map[string]NodeHandler{
		"import_statement": e.extractImport,
		"export_statement": e.extractExport,
		"call_expression":  e.extractCall,
	})
	engine.Walk(ctx, root)

	return file, nil
}

func (e *JavaScriptExtractor) extractImport(ctx *ExtractionContext, node *sitter.Node) bool {
	source := node.ChildByFieldName("source")
	if source == nil {
		// TypeScript: import x = require("y")
		if clause := ChildOfKind(node, "import_require_clause"); clause != nil {
			if str := ChildOfKind(clause, "string"); str != nil {
				ctx.AddImport(newImport(trimQuoted(ctx.Text(str)), ctx.Line(node), namespaceSpecifier))
			}
		}
		return true
	}

	var specifiers []string
	if clause := ChildOfKind(node, "import_clause"); clause != nil {
		for i := uint(0); i < clause.NamedChildCount(); i++ {
			child := clause.NamedChild(i)
			switch child.Kind() {
			case "identifier":
				specifiers = append(specifiers, defaultSpecifier)
			case "namespace_import":
				specifiers = append(specifiers, namespaceSpecifier)
			case "named_imports":
				for j := uint(0); j < child.NamedChildCount(); j++ {
					spec := child.NamedChild(j)
					if spec.Kind() != "import_specifier" {
						continue
					}
					if name := spec.ChildByFieldName("name"); name != nil {
						specifiers = append(specifiers, trimQuoted(ctx.Text(name)))
					}
				}
			}
		}
	}

	ctx.AddImport(newImport(trimQuoted(ctx.Text(source)), ctx.Line(node), specifiers...))
	return true
}

func (e *JavaScriptExtractor) extractExport(ctx *ExtractionContext, node *sitter.Node) bool {
	topLevel := node.Parent() != nil && node.Parent().Kind() == "program"
	source := node.ChildByFieldName("source")

	if ChildOfKind(node, "default") != nil {
		if topLevel {
			ctx.AddExport(defaultSpecifier, node)
		}
		return false
	}

	if clause := ChildOfKind(node, "export_clause"); clause != nil {
		var imported []string
		for i := uint(0); i < clause.NamedChildCount(); i++ {
			spec := clause.NamedChild(i)
			if spec.Kind() != "export_specifier" {
				continue
			}
			name := trimQuoted(ctx.Text(spec.ChildByFieldName("name")))
			exported := name
			if alias := spec.ChildByFieldName("alias"); alias != nil {
				exported = trimQuoted(ctx.Text(alias))
			}
			imported = append(imported, name)
			if topLevel {
				ctx.AddExport(exported, spec)
			}
		}
		if source != nil {
			ctx.AddImport(newImport(trimQuoted(ctx.Text(source)), ctx.Line(node), imported...))
		}
		return true
	}

	if ns := ChildOfKind(node, "namespace_export"); ns != nil {
		// export * as ns from "./x"
		if topLevel {
			var names []string
			ctx.collectIdentifiers(ns, &names)
			for _, name := range names {
				ctx.AddExport(name, node)
			}
		}
		if source != nil {
			ctx.AddImport(newImport(trimQuoted(ctx.Text(source)), ctx.Line(node), namespaceSpecifier))
		}
		return true
	}

	if source != nil {
		// export * from "./x"; the re-exported names are not known here.
		ctx.AddImport(newImport(trimQuoted(ctx.Text(source)), ctx.Line(node), namespaceSpecifier))
		return true
	}

	if decl := node.ChildByFieldName("declaration"); decl != nil && topLevel {
		for _, name := range e.declarationNames(ctx, decl) {
			ctx.AddExport(name, node)
		}
	}
	return false
}

func (e *JavaScriptExtractor) declarationNames(ctx *ExtractionContext, decl *sitter.Node) []string {
	switch decl.Kind() {
	case "lexical_declaration", "variable_declaration":
		var names []string
		for i := uint(0); i < decl.NamedChildCount(); i++ {
			declarator := decl.NamedChild(i)
			if declarator.Kind() != "variable_declarator" {
				continue
			}
			ctx.collectIdentifiers(declarator.ChildByFieldName("name"), &names)
		}
		return names
	case "ambient_declaration":
		// export declare const x: T
		for i := uint(0); i < decl.NamedChildCount(); i++ {
			if names := e.declarationNames(ctx, decl.NamedChild(i)); len(names) > 0 {
				return names
			}
		}
		return nil
	}
	if name := decl.ChildByFieldName("name"); name != nil {
		return []string{ctx.Text(name)}
	}
	return nil
}

// extractCall records require("x") and dynamic import("x").
func (e *JavaScriptExtractor) extractCall(ctx *ExtractionContext, node *sitter.Node) bool {
	fn := node.ChildByFieldName("function")
	if fn == nil {
		return false
	}
	isDynamicImport := fn.Kind() == "import"
	isRequire := fn.Kind() == "identifier" && ctx.Text(fn) == "require"
	if !isDynamicImport && !isRequire {
		return false
	}

	args := node.ChildByFieldName("arguments")
	if args == nil || args.NamedChildCount() == 0 {
		return false
	}
	first := args.NamedChild(0)
	if first.Kind() != "string" {
		return false
	}
	source := trimQuoted(ctx.Text(first))

	if isDynamicImport {
		ctx.AddImport(newImport(source, ctx.Line(node), namespaceSpecifier))
		return true
	}
	ctx.AddImport(newImport(source, ctx.Line(node), e.requireBindings(ctx, node)...))
	return true
}

func (e *JavaScriptExtractor) requireBindings(ctx *ExtractionContext, call *sitter.Node) []string {
	parent := call.Parent()
	if parent == nil {
		return nil
	}
	switch parent.Kind() {
	case "variable_declarator":
		name := parent.ChildByFieldName("name")
		if name == nil {
			return nil
		}
		if name.Kind() == "object_pattern" {
			return e.objectPatternKeys(ctx, name)
		}
		return []string{namespaceSpecifier}
	case "member_expression":
		if prop := parent.ChildByFieldName("property"); prop != nil {
			return []string{ctx.Text(prop)}
		}
	}
	return nil
}

// objectPatternKeys returns the property names read by a destructuring pattern.
func (e *JavaScriptExtractor) objectPatternKeys(ctx *ExtractionContext, pattern *sitter.Node) []string {
	var keys []string
	for i := uint(0); i < pattern.NamedChildCount(); i++ {
		child := pattern.NamedChild(i)
		switch child.Kind() {
		case "shorthand_property_identifier_pattern":
			keys = append(keys, ctx.Text(child))
		case "pair_pattern":
			if key := child.ChildByFieldName("key"); key != nil {
				keys = append(keys, trimQuoted(ctx.Text(key)))
			}
		case "object_assignment_pattern":
			var names []string
			ctx.collectIdentifiers(child.ChildByFieldName("left"), &names)
			keys = append(keys, names...)
		case "rest_pattern":
			return []string{namespaceSpecifier}
		}
	}
	return keys
}
