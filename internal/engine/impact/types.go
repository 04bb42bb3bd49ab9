package impact

import (
	"path/filepath"
	"strings"

	"impactscan/internal/core/errors"
)

// ChangeType is the kind of change recorded for a file.
type ChangeType string

const (
	ChangeAdd    ChangeType = "add"
	ChangeModify ChangeType = "modify"
	ChangeDelete ChangeType = "delete"
)

// ParseChangeType accepts the canonical names plus the short git status letters.
func ParseChangeType(raw string) (ChangeType, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "add", "added", "a":
		return ChangeAdd, nil
	case "modify", "modified", "m":
		return ChangeModify, nil
	case "delete", "deleted", "d":
		return ChangeDelete, nil
	}
	return "", errors.Newf(errors.CodeValidationError, "unknown change type %q", raw)
}

// PastTense is used in every default reason string.
func (t ChangeType) PastTense() string {
	switch t {
	case ChangeAdd:
		return "added"
	case ChangeModify:
		return "modified"
	case ChangeDelete:
		return "deleted"
	}
	return string(t)
}

func (t ChangeType) Valid() bool {
	return t == ChangeAdd || t == ChangeModify || t == ChangeDelete
}

// FileChange is one record of the change set. ModifiedExports is only
// meaningful for ChangeModify; nil or empty means the change affects every
// importer regardless of which symbols it uses.
type FileChange struct {
	ChangedFile     string     `json:"changedFile" yaml:"file"`
	ChangeType      ChangeType `json:"changeType" yaml:"type"`
	ModifiedExports []string   `json:"modifiedExports,omitempty" yaml:"modifiedExports,omitempty"`
}

// HasExportDiff reports whether the change carries fine-grained export information.
func (c FileChange) HasExportDiff() bool {
	return c.ChangeType == ChangeModify && len(c.ModifiedExports) > 0
}

// ChangeSet is the ordered, read-only list of changes for one run.
type ChangeSet []FileChange

// Lookup returns the first change recorded for path.
func (cs ChangeSet) Lookup(path string) (FileChange, bool) {
	for _, change := range cs {
		if change.ChangedFile == path {
			return change, true
		}
	}
	return FileChange{}, false
}

func (cs ChangeSet) Files() []string {
	out := make([]string, 0, len(cs))
	for _, change := range cs {
		out = append(out, change.ChangedFile)
	}
	return out
}

func (cs ChangeSet) Validate() error {
	for i, change := range cs {
		if !change.ChangeType.Valid() {
			return errors.AddContext(
				errors.Newf(errors.CodeValidationError, "change %d has unknown type %q", i, change.ChangeType),
				errors.CtxPath, change.ChangedFile,
			)
		}
		if !filepath.IsAbs(change.ChangedFile) {
			return errors.AddContext(
				errors.Newf(errors.CodeValidationError, "change %d path is not absolute", i),
				errors.CtxPath, change.ChangedFile,
			)
		}
	}
	return nil
}
