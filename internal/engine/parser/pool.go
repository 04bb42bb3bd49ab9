package parser

import (
	"sync"
	"sync/atomic"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// ParserPool hands out tree-sitter parsers bound to one grammar. Parsers are
// not safe for concurrent use, so every prefetch worker borrows its own.
type ParserPool struct {
	lang     *sitter.Language
	parsers  sync.Pool
	borrowed atomic.Int64
}

func NewParserPool(lang *sitter.Language) *ParserPool {
	p := &ParserPool{lang: lang}
	p.parsers.New = func() any {
		sp := sitter.NewParser()
		_ = sp.SetLanguage(lang)
		return sp
	}
	return p
}

// Parse borrows a parser, parses content and returns the parser before
// returning. The caller owns the tree and must Close it. A nil tree means
// the parser gave up.
func (p *ParserPool) Parse(content []byte) *sitter.Tree {
	sp := p.Get()
	defer p.Put(sp)
	return sp.Parse(content, nil)
}

func (p *ParserPool) Get() *sitter.Parser {
	p.borrowed.Add(1)
	return p.parsers.Get().(*sitter.Parser)
}

// Put resets sp for its next borrower.
func (p *ParserPool) Put(sp *sitter.Parser) {
	if sp == nil {
		return
	}
	sp.Reset()
	p.borrowed.Add(-1)
	p.parsers.Put(sp)
}

// InUse is the number of parsers currently borrowed.
func (p *ParserPool) InUse() int {
	return int(p.borrowed.Load())
}
