package ports

import (
	"context"

	"impactscan/internal/engine/impact"
	"impactscan/internal/engine/parser"
)

// FileSystem answers whether a path is an accessible regular file.
type FileSystem interface {
	Exists(path string) bool
}

// SymbolExtractor abstracts per-file import/export extraction.
type SymbolExtractor interface {
	Extract(path string, override []byte) (*parser.File, error)
	IsSupportedPath(path string) bool
}

// ImportResolver maps an import specifier, as written in fromFile, to an
// absolute file path. ok is false for packages and anything not on disk.
type ImportResolver interface {
	Resolve(fromFile, specifier string) (string, bool)
}

// IgnorePolicy excludes code files from symbol extraction.
type IgnorePolicy interface {
	ShouldIgnore(path string) bool
}

// ChangeSource produces the change set an analysis runs against.
type ChangeSource interface {
	Changes(ctx context.Context) (impact.ChangeSet, error)
}
