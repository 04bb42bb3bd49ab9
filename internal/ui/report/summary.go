package report

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"

	"impactscan/internal/engine/tree"
)

// AffectedTable renders one row per affected file, in tree order. The
// first node seen for a file supplies its change and reason.
func AffectedTable(rep *Report, root string) string {
	firstSeen := make(map[string]*tree.FileNode)
	if rep.Tree != nil {
		rep.Tree.Walk(func(node *tree.FileNode, _ int) {
			if node.IsAffected && firstSeen[node.File] == nil {
				firstSeen[node.File] = node
			}
		})
	}

	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"#", "File", "Change", "Reason"})
	for i, file := range rep.Summary.AffectedFiles {
		change, reason := "-", ""
		if node := firstSeen[file]; node != nil {
			if node.ChangeType != "" {
				change = string(node.ChangeType)
			}
			reason = node.Reason
		}
		tbl.AppendRow(table.Row{i + 1, display(root, file), change, reason})
	}
	tbl.AppendFooter(table.Row{"", fmt.Sprintf("Total: %d files", len(rep.Summary.AffectedFiles)), "", ""})
	return tbl.Render()
}
