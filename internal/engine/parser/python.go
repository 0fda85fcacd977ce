// # internal/engine/parser/python.go
package parser

import (
	"strings"
	"time"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// PythonExtractor pulls import statements out of a Python syntax tree.
type PythonExtractor struct{}

func (e *PythonExtractor) Extract(root *sitter.Node, source []byte, filePath string) (*File, error) {
	file := &File{
		Path:     filePath,
		Language: "python",
		ParsedAt: time.Now(),
	}

	ctx := &ExtractionContext{Source: source, File: file}
	engine := NewExtractorEngine(map[string]NodeHandler{
		"import_statement":      e.extractImport,
		"import_from_statement": e.extractFromImport,
		"future_import_statement": func(ctx *ExtractionContext, node *sitter.Node) bool {
			// "from __future__ import ..." has its own node kind.
			ctx.File.Imports = append(ctx.File.Imports, Import{
				Module:    "__future__",
				RawImport: ctx.Text(node),
				Location:  ctx.Location(node),
			})
			return true
		},
	})
	engine.Walk(ctx, root)

	return file, nil
}

// extractImport handles "import a.b.c" and "import numpy as np, sys".
func (e *PythonExtractor) extractImport(ctx *ExtractionContext, node *sitter.Node) bool {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)

		switch child.Kind() {
		case "dotted_name", "identifier":
			module := ctx.Text(child)
			ctx.File.Imports = append(ctx.File.Imports, Import{
				Module:    module,
				RawImport: module,
				Location:  ctx.Location(child),
			})
		case "aliased_import":
			module := ctx.ChildText(child, "dotted_name")
			if module == "" {
				module = ctx.ChildText(child, "identifier")
			}
			ctx.File.Imports = append(ctx.File.Imports, Import{
				Module:    module,
				RawImport: module,
				Alias:     ctx.Text(child.ChildByFieldName("alias")),
				Location:  ctx.Location(child),
			})
		}
	}
	return true
}

// extractFromImport handles "from x.y import z" and relative forms.
// The module side is read through the module_name field; iterating raw
// children would confuse the imported names with the module path.
func (e *PythonExtractor) extractFromImport(ctx *ExtractionContext, node *sitter.Node) bool {
	var module string
	isRelative := false

	if moduleNode := node.ChildByFieldName("module_name"); moduleNode != nil {
		if moduleNode.Kind() == "relative_import" {
			isRelative = true
			module = strings.TrimLeft(ctx.Text(moduleNode), ".")
		} else {
			module = ctx.Text(moduleNode)
		}
	}

	var items []string
	seenImportKeyword := false
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child.Kind() == "import" {
			seenImportKeyword = true
			continue
		}
		if !seenImportKeyword {
			continue
		}
		switch child.Kind() {
		case "dotted_name", "identifier":
			items = append(items, ctx.Text(child))
		case "aliased_import":
			if name := ctx.ChildText(child, "dotted_name"); name != "" {
				items = append(items, name)
			}
		case "wildcard_import":
			items = append(items, "*")
		}
	}

	ctx.File.Imports = append(ctx.File.Imports, Import{
		Module:     module,
		RawImport:  module,
		Items:      items,
		IsRelative: isRelative,
		Location:   ctx.Location(node),
	})
	return true
}
