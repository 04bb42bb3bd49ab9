package parser

import (
	"sort"
	"time"
)

// File is the extraction result for one source file.
type File struct {
	Path     string
	Language string
	Imports  []ImportInfo
	Exports  []Export
	ParsedAt time.Time
}

// ImportInfo is one import statement. Specifiers is empty for side-effect
// imports, "default" for default bindings and "*" for namespace bindings.
type ImportInfo struct {
	Source     string   `json:"source"`
	Specifiers []string `json:"specifiers"`
	Line       int      `json:"line,omitempty"`
}

// Export is an exported name plus the 1-based line span of its declaration.
type Export struct {
	Name      string
	StartLine int
	EndLine   int
}

// LineRange is a 1-based inclusive line span.
type LineRange struct {
	Start int
	End   int
}

func (r LineRange) Overlaps(start, end int) bool {
	return r.Start <= end && start <= r.End
}

// ExportNames returns the sorted set of exported names.
func (f *File) ExportNames() []string {
	seen := make(map[string]bool, len(f.Exports))
	names := make([]string, 0, len(f.Exports))
	for _, exp := range f.Exports {
		if seen[exp.Name] {
			continue
		}
		seen[exp.Name] = true
		names = append(names, exp.Name)
	}
	sort.Strings(names)
	return names
}

// ExportsTouching returns the sorted names of exports whose declaration
// overlaps any of the given ranges.
func (f *File) ExportsTouching(ranges []LineRange) []string {
	seen := make(map[string]bool)
	var names []string
	for _, exp := range f.Exports {
		if seen[exp.Name] {
			continue
		}
		for _, r := range ranges {
			if r.Overlaps(exp.StartLine, exp.EndLine) {
				seen[exp.Name] = true
				names = append(names, exp.Name)
				break
			}
		}
	}
	sort.Strings(names)
	return names
}

func newImport(source string, line int, specifiers ...string) ImportInfo {
	specs := make([]string, 0, len(specifiers))
	seen := make(map[string]bool, len(specifiers))
	for _, s := range specifiers {
		specs = appendUnique(specs, seen, s)
	}
	return ImportInfo{Source: source, Specifiers: specs, Line: line}
}
