package impact

import (
	"fmt"
	"path/filepath"
	"strings"
)

// FormatReason renders one line per entry, in entry order.
func FormatReason(entries []Entry) string {
	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		lines = append(lines, reasonLine(entry))
	}
	return strings.Join(lines, "\n")
}

func reasonLine(entry Entry) string {
	base := filepath.Base(entry.Change.ChangedFile)
	switch entry.Change.ChangeType {
	case ChangeDelete:
		return fmt.Sprintf("Imported file '%s' was deleted", base)
	case ChangeAdd:
		return fmt.Sprintf("New file '%s' was added that is imported", base)
	case ChangeModify:
		if len(entry.Specifiers) > 0 {
			return fmt.Sprintf("Modified exports from '%s': %s", base, strings.Join(entry.Specifiers, ", "))
		}
		return fmt.Sprintf("File '%s' content was modified", base)
	}
	return fmt.Sprintf("File '%s' was %s", base, entry.Change.ChangeType.PastTense())
}

// DefaultReason is stamped on a file that is itself part of the change set.
func DefaultReason(t ChangeType) string {
	return "File was " + t.PastTense()
}

// AssetReason is stamped on a non-code file that is part of the change set.
func AssetReason(t ChangeType) string {
	return "Asset file was " + t.PastTense()
}
