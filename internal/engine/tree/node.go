package tree

import (
	"encoding/json"

	"impactscan/internal/engine/impact"
	"impactscan/internal/engine/parser"
)

type NodeType string

const (
	NodeCode  NodeType = "code"
	NodeAsset NodeType = "asset"
)

// Symbols is present on a node only when its file was extracted successfully.
type Symbols struct {
	Imports []parser.ImportInfo
	Exports []string
}

type FileNode struct {
	File       string
	Type       NodeType
	Symbols    *Symbols
	IsAffected bool
	ChangeType impact.ChangeType
	Reason     string
	Children   []*FileNode
	// Stub marks a revisit of a file already expanded elsewhere in the tree.
	Stub bool
}

type fileNodeJSON struct {
	File       string              `json:"file"`
	Type       NodeType            `json:"type"`
	Imports    []parser.ImportInfo `json:"imports,omitempty"`
	Exports    []string            `json:"exports,omitempty"`
	IsAffected bool                `json:"isAffected,omitempty"`
	ChangeType impact.ChangeType   `json:"changeType,omitempty"`
	Reason     string              `json:"reason,omitempty"`
	Children   []*FileNode         `json:"children"`
}

// MarshalJSON keeps absent and empty distinguishable: imports and exports
// appear (possibly as []) exactly when the file was extracted.
func (n *FileNode) MarshalJSON() ([]byte, error) {
	children := n.Children
	if children == nil {
		children = []*FileNode{}
	}
	out := fileNodeJSON{
		File:       n.File,
		Type:       n.Type,
		IsAffected: n.IsAffected,
		ChangeType: n.ChangeType,
		Reason:     n.Reason,
		Children:   children,
	}
	if n.Symbols == nil {
		return json.Marshal(out)
	}

	imports := n.Symbols.Imports
	if imports == nil {
		imports = []parser.ImportInfo{}
	}
	exports := n.Symbols.Exports
	if exports == nil {
		exports = []string{}
	}
	return json.Marshal(struct {
		File       string              `json:"file"`
		Type       NodeType            `json:"type"`
		Imports    []parser.ImportInfo `json:"imports"`
		Exports    []string            `json:"exports"`
		IsAffected bool                `json:"isAffected,omitempty"`
		ChangeType impact.ChangeType   `json:"changeType,omitempty"`
		Reason     string              `json:"reason,omitempty"`
		Children   []*FileNode         `json:"children"`
	}{
		File:       out.File,
		Type:       out.Type,
		Imports:    imports,
		Exports:    exports,
		IsAffected: out.IsAffected,
		ChangeType: out.ChangeType,
		Reason:     out.Reason,
		Children:   out.Children,
	})
}

// Walk visits n and its descendants depth-first, parents before children.
func (n *FileNode) Walk(fn func(node *FileNode, depth int)) {
	n.walk(fn, 0)
}

func (n *FileNode) walk(fn func(node *FileNode, depth int), depth int) {
	fn(n, depth)
	for _, child := range n.Children {
		child.walk(fn, depth+1)
	}
}

// Diagnostic is a soft failure recorded during traversal.
type Diagnostic struct {
	Path    string `json:"path"`
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

const (
	StageAccess  = "access"
	StageExtract = "extract"
	StageImport  = "import"
)

type Stats struct {
	Nodes    int `json:"nodes"`
	Stubs    int `json:"stubs"`
	Affected int `json:"affected"`
	Parsed   int `json:"parsed"`
	Warnings int `json:"warnings"`
}

type Result struct {
	Root        *FileNode
	Diagnostics []Diagnostic
	Stats       Stats
}

// AffectedFiles lists every file marked affected, in tree order, once each.
func (r *Result) AffectedFiles() []string {
	if r == nil || r.Root == nil {
		return nil
	}
	seen := make(map[string]bool)
	var files []string
	r.Root.Walk(func(node *FileNode, _ int) {
		if node.IsAffected && !seen[node.File] {
			seen[node.File] = true
			files = append(files, node.File)
		}
	})
	return files
}
