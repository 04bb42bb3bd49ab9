package app

import (
	"path/filepath"

	"github.com/gobwas/glob"

	"impactscan/internal/core/errors"
)

// GlobIgnorePolicy excludes files whose base name matches a file glob or
// that sit under a directory whose name matches a dir glob. Only
// directories below Root are considered.
type GlobIgnorePolicy struct {
	root  string
	dirs  []glob.Glob
	files []glob.Glob
}

func NewGlobIgnorePolicy(root string, dirs, files []string) (*GlobIgnorePolicy, error) {
	compiledDirs, err := compileGlobs(dirs, "exclude dir")
	if err != nil {
		return nil, err
	}
	compiledFiles, err := compileGlobs(files, "exclude file")
	if err != nil {
		return nil, err
	}
	return &GlobIgnorePolicy{root: filepath.Clean(root), dirs: compiledDirs, files: compiledFiles}, nil
}

func compileGlobs(patterns []string, label string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeValidationError, "invalid "+label+" pattern "+p)
		}
		out = append(out, g)
	}
	return out, nil
}

func (p *GlobIgnorePolicy) ShouldIgnore(path string) bool {
	if anyMatch(p.files, filepath.Base(path)) {
		return true
	}
	for dir := filepath.Dir(path); dir != p.root; {
		if anyMatch(p.dirs, filepath.Base(dir)) {
			return true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return false
		}
		dir = parent
	}
	return false
}

func anyMatch(globs []glob.Glob, name string) bool {
	for _, g := range globs {
		if g.Match(name) {
			return true
		}
	}
	return false
}
