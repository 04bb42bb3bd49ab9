package parser

import (
	"time"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

type PythonExtractor struct{}

func (e *PythonExtractor) Extract(root *sitter.Node, source []byte, filePath string) (*File, error) {
	file := &File{
		Path:     filePath,
		Language: "python",
		ParsedAt: time.Now(),
	}

	ctx := &ExtractionContext{Source: source, File: file}
	engine := NewExtractorEngine(map[string]NodeHandler{
		"import_statement":      e.extractImport,
		"import_from_statement": e.extractFromImport,
	})
	engine.Walk(ctx, root)
	e.extractExports(ctx, root)

	return file, nil
}

// extractImport handles "import a.b" and "import a.b as c"; the whole module is bound.
func (e *PythonExtractor) extractImport(ctx *ExtractionContext, node *sitter.Node) bool {
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		var module string
		switch child.Kind() {
		case "dotted_name":
			module = ctx.Text(child)
		case "aliased_import":
			module = ctx.Text(child.ChildByFieldName("name"))
		}
		if module != "" {
			ctx.AddImport(newImport(module, ctx.Line(node), namespaceSpecifier))
		}
	}
	return true
}

func (e *PythonExtractor) extractFromImport(ctx *ExtractionContext, node *sitter.Node) bool {
	moduleNode := node.ChildByFieldName("module_name")
	if moduleNode == nil {
		return true
	}

	var items []string
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child.StartByte() == moduleNode.StartByte() {
			continue
		}
		switch child.Kind() {
		case "dotted_name":
			items = append(items, ctx.Text(child))
		case "aliased_import":
			items = append(items, ctx.Text(child.ChildByFieldName("name")))
		case "wildcard_import":
			items = append(items, namespaceSpecifier)
		}
	}

	ctx.AddImport(newImport(ctx.Text(moduleNode), ctx.Line(node), items...))
	return true
}

// extractExports scans module-level statements only. A literal __all__ list
// replaces the naming convention.
func (e *PythonExtractor) extractExports(ctx *ExtractionContext, root *sitter.Node) {
	var (
		public   []Export
		declared []Export
		hasAll   bool
	)

	add := func(name string, decl *sitter.Node) {
		if name == "" || isPrivatePythonName(name) {
			return
		}
		public = append(public, Export{Name: name, StartLine: ctx.Line(decl), EndLine: ctx.EndLine(decl)})
	}

	for i := uint(0); i < root.NamedChildCount(); i++ {
		stmt := root.NamedChild(i)
		def := stmt
		if stmt.Kind() == "decorated_definition" {
			def = stmt.ChildByFieldName("definition")
			if def == nil {
				continue
			}
		}

		switch def.Kind() {
		case "function_definition", "class_definition":
			add(ctx.Text(def.ChildByFieldName("name")), stmt)
		case "expression_statement":
			assign := ChildOfKind(def, "assignment")
			if assign == nil {
				continue
			}
			left := assign.ChildByFieldName("left")
			if left == nil {
				continue
			}
			if left.Kind() == "identifier" && ctx.Text(left) == "__all__" {
				if names, ok := e.literalNames(ctx, assign.ChildByFieldName("right")); ok {
					hasAll = true
					declared = declared[:0]
					for _, name := range names {
						declared = append(declared, Export{Name: name, StartLine: ctx.Line(stmt), EndLine: ctx.EndLine(stmt)})
					}
				}
				continue
			}
			var names []string
			ctx.collectIdentifiers(left, &names)
			for _, name := range names {
				add(name, stmt)
			}
		}
	}

	if !hasAll {
		ctx.File.Exports = append(ctx.File.Exports, public...)
		return
	}

	// Keep declaration spans for names listed in __all__ when they are defined here.
	spans := make(map[string]Export, len(public))
	for _, exp := range public {
		spans[exp.Name] = exp
	}
	for _, exp := range declared {
		if span, ok := spans[exp.Name]; ok {
			exp = span
		}
		ctx.File.Exports = append(ctx.File.Exports, exp)
	}
}

func (e *PythonExtractor) literalNames(ctx *ExtractionContext, node *sitter.Node) ([]string, bool) {
	if node == nil || (node.Kind() != "list" && node.Kind() != "tuple") {
		return nil, false
	}
	var names []string
	for i := uint(0); i < node.NamedChildCount(); i++ {
		item := node.NamedChild(i)
		if item.Kind() != "string" {
			return nil, false
		}
		names = append(names, trimQuoted(ctx.Text(item)))
	}
	return names, true
}
