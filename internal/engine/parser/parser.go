// # internal/engine/parser/parser.go
package parser

import (
	"path/filepath"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"

	"depscope/internal/core/errors"
)

// Extractor turns a parsed syntax tree into a File.
type Extractor interface {
	Extract(root *sitter.Node, source []byte, filePath string) (*File, error)
}

// Parser parses Python sources with a pooled tree-sitter parser. The
// grammar is compiled into the binary; there is no runtime loading.
type Parser struct {
	pool      *ParserPool
	extractor Extractor
}

func NewParser() *Parser {
	lang := sitter.NewLanguage(tree_sitter_python.Language())
	return &Parser{
		pool:      NewParserPool(lang),
		extractor: &PythonExtractor{},
	}
}

// IsSupportedPath reports whether the file is a Python source.
func (p *Parser) IsSupportedPath(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".py")
}

// ParseFile parses one source file and extracts its imports. A file
// with syntax errors yields a PARSE_FAILURE; callers skip such files
// and keep the pass going.
func (p *Parser) ParseFile(path string, content []byte) (*File, error) {
	if !p.IsSupportedPath(path) {
		err := errors.New(errors.CodeValidationError, "unsupported file type")
		return nil, errors.AddContext(err, errors.CtxPath, path)
	}

	sp := p.pool.Get()
	defer p.pool.Put(sp)

	tree := sp.Parse(content, nil)
	if tree == nil {
		err := errors.New(errors.CodeParseFailure, "parse produced no tree")
		return nil, errors.AddContext(err, errors.CtxPath, path)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil || root.HasError() {
		err := errors.New(errors.CodeParseFailure, "syntax errors in source")
		return nil, errors.AddContext(err, errors.CtxPath, path)
	}

	file, err := p.extractor.Extract(root, content, path)
	if err != nil {
		wrapped := errors.Wrap(err, errors.CodeInternal, "extraction failed")
		return nil, errors.AddContext(wrapped, errors.CtxPath, path)
	}
	return file, nil
}

// ActiveParsers reports the number of leased tree-sitter parsers, used
// by health checks.
func (p *Parser) ActiveParsers() int {
	if p == nil || p.pool == nil {
		return 0
	}
	return p.pool.Active()
}
