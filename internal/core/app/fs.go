package app

import (
	"context"
	"os"

	"impactscan/internal/core/ports"
	"impactscan/internal/engine/parser"
	"impactscan/internal/shared/util"
)

// OSFileSystem answers access checks against the local disk. Checks share
// the read limiter with extraction.
type OSFileSystem struct {
	limiter *util.Limiter
}

func NewOSFileSystem(limiter *util.Limiter) *OSFileSystem {
	return &OSFileSystem{limiter: limiter}
}

// Exists reports whether path is a regular file that can be opened.
func (f *OSFileSystem) Exists(path string) bool {
	_ = f.limiter.Wait(context.Background())
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	fh, err := os.Open(path)
	if err != nil {
		return false
	}
	_ = fh.Close()
	return true
}

// limitedExtractor paces file reads made by the extractor.
type limitedExtractor struct {
	parser  *parser.Parser
	limiter *util.Limiter
}

var _ ports.SymbolExtractor = (*limitedExtractor)(nil)

func (e *limitedExtractor) Extract(path string, override []byte) (*parser.File, error) {
	if override == nil {
		_ = e.limiter.Wait(context.Background())
	}
	return e.parser.Extract(path, override)
}

func (e *limitedExtractor) IsSupportedPath(path string) bool {
	return e.parser.IsSupportedPath(path)
}
