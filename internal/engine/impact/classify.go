package impact

import (
	"impactscan/internal/engine/parser"
)

// SpecifierResolver maps an import source written in fromFile to an absolute path.
type SpecifierResolver interface {
	Resolve(fromFile, specifier string) (string, bool)
}

// Entry is one (change, import) pair that affects a file.
type Entry struct {
	Change     FileChange
	Specifiers []string
}

// Wildcard is the specifier recorded for namespace and star imports.
const Wildcard = "*"

type Classifier struct {
	Resolver SpecifierResolver
}

func NewClassifier(resolver SpecifierResolver) *Classifier {
	return &Classifier{Resolver: resolver}
}

// Classify walks changes in order and, for each, the file's imports in
// declaration order. Every matching pair yields its own entry.
func (c *Classifier) Classify(filePath string, imports []parser.ImportInfo, changes ChangeSet) []Entry {
	if len(changes) == 0 || len(imports) == 0 {
		return nil
	}

	resolved := make([]string, len(imports))
	for i, imp := range imports {
		if target, ok := c.Resolver.Resolve(filePath, imp.Source); ok {
			resolved[i] = target
		}
	}

	var entries []Entry
	for _, change := range changes {
		for i, imp := range imports {
			if resolved[i] == "" || resolved[i] != change.ChangedFile {
				continue
			}
			if change.HasExportDiff() {
				overlap := intersect(imp.Specifiers, change.ModifiedExports)
				if len(overlap) == 0 {
					continue
				}
				entries = append(entries, Entry{Change: change, Specifiers: overlap})
				continue
			}
			entries = append(entries, Entry{
				Change:     change,
				Specifiers: append([]string(nil), imp.Specifiers...),
			})
		}
	}
	return entries
}

// intersect keeps the order of specifiers; a wildcard matches every modified export.
func intersect(specifiers, modified []string) []string {
	modifiedSet := make(map[string]bool, len(modified))
	for _, name := range modified {
		modifiedSet[name] = true
	}

	var out []string
	seen := make(map[string]bool)
	for _, spec := range specifiers {
		if spec == Wildcard {
			for _, name := range modified {
				if !seen[name] {
					seen[name] = true
					out = append(out, name)
				}
			}
			continue
		}
		if modifiedSet[spec] && !seen[spec] {
			seen[spec] = true
			out = append(out, spec)
		}
	}
	return out
}
