package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"impactscan/internal/engine/tree"
	"impactscan/internal/shared/util"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true)

	affectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	changedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)
)

// TextOptions controls the human-readable rendering.
type TextOptions struct {
	// Root makes displayed paths relative; empty keeps them absolute.
	Root string
	// Plain disables styling, for files and tests.
	Plain bool
}

type palette struct {
	title, affected, changed, success, status func(string) string
}

func newPalette(plain bool) palette {
	if plain {
		id := func(s string) string { return s }
		return palette{id, id, id, id, id}
	}
	return palette{
		title:    func(s string) string { return titleStyle.Render(s) },
		affected: func(s string) string { return affectedStyle.Render(s) },
		changed:  func(s string) string { return changedStyle.Render(s) },
		success:  func(s string) string { return successStyle.Render(s) },
		status:   func(s string) string { return statusStyle.Render(s) },
	}
}

// WriteText renders the tree, the affected-files table and any warnings.
func WriteText(w io.Writer, rep *Report, opts TextOptions) error {
	p := newPalette(opts.Plain)
	var b strings.Builder

	b.WriteString(p.title("Impact tree") + "\n")
	if rep.Tree == nil {
		b.WriteString(p.status("(empty)") + "\n")
	} else {
		renderTree(&b, rep.Tree, opts.Root, p)
	}
	b.WriteString("\n")

	if len(rep.Summary.AffectedFiles) == 0 {
		b.WriteString(p.success("No affected files.") + "\n")
	} else {
		b.WriteString(p.title(fmt.Sprintf("Affected files (%d)", len(rep.Summary.AffectedFiles))) + "\n")
		b.WriteString(AffectedTable(rep, opts.Root) + "\n")
	}

	if len(rep.Diagnostics) > 0 {
		b.WriteString("\n" + p.title(fmt.Sprintf("Warnings (%d)", len(rep.Diagnostics))) + "\n")
		for _, d := range rep.Diagnostics {
			fmt.Fprintf(&b, "  %s %s: %s\n", p.status("["+d.Stage+"]"), display(opts.Root, d.Path), d.Message)
		}
	}

	b.WriteString(p.status(fmt.Sprintf("%d nodes, %d affected, %d warnings", rep.Summary.Nodes, rep.Summary.Affected, rep.Summary.Warnings)) + "\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func renderTree(b *strings.Builder, root *tree.FileNode, base string, p palette) {
	b.WriteString(nodeLabel(root, base, p) + "\n")
	writeReason(b, root, "", p)
	renderChildren(b, root.Children, "", base, p)
}

func renderChildren(b *strings.Builder, children []*tree.FileNode, prefix, base string, p palette) {
	for i, child := range children {
		last := i == len(children)-1
		connector, indent := "├── ", "│   "
		if last {
			connector, indent = "└── ", "    "
		}
		b.WriteString(prefix + connector + nodeLabel(child, base, p) + "\n")
		writeReason(b, child, prefix+indent, p)
		renderChildren(b, child.Children, prefix+indent, base, p)
	}
}

func nodeLabel(n *tree.FileNode, base string, p palette) string {
	name := display(base, n.File)
	if n.IsAffected {
		name = p.affected(name)
	}
	var tags []string
	if n.Type == tree.NodeAsset {
		tags = append(tags, "asset")
	}
	if n.ChangeType != "" {
		tags = append(tags, string(n.ChangeType))
	}
	label := name
	if len(tags) > 0 {
		label += " " + p.changed("["+strings.Join(tags, ", ")+"]")
	}
	if n.Stub {
		label += " " + p.status("(seen)")
	}
	return label
}

func writeReason(b *strings.Builder, n *tree.FileNode, prefix string, p palette) {
	if n.Reason == "" {
		return
	}
	for _, line := range strings.Split(n.Reason, "\n") {
		b.WriteString(prefix + "  " + p.status("↳ "+line) + "\n")
	}
}

func display(root, path string) string {
	if root == "" {
		return path
	}
	return util.RelativeTo(root, path)
}
