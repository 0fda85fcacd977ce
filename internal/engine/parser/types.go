// # internal/engine/parser/types.go
package parser

import (
	"strings"
	"time"
)

// File is the parse result for one Python source file.
type File struct {
	Path     string
	Language string
	Imports  []Import
	ParsedAt time.Time
}

// Import is one import statement occurrence.
type Import struct {
	Module     string   // Dotted module path, relative dots stripped
	RawImport  string   // Original import text
	Alias      string   // Optional "as" alias
	Items      []string // For "from X import Y, Z"
	IsRelative bool     // For "from .pkg import x" style imports
	Location   Location
}

type Location struct {
	File   string
	Line   int // 1-based
	Column int // 1-based
}

// ModuleReference is a distinct top-level module name together with one
// file that references it.
type ModuleReference struct {
	Name string
	File string
}

// TopLevelModule returns the first dot-separated component of the
// imported module path, or "" when the import names no module (a bare
// relative import such as "from . import x").
func (imp Import) TopLevelModule() string {
	module := strings.TrimSpace(imp.Module)
	if module == "" {
		return ""
	}
	if idx := strings.Index(module, "."); idx >= 0 {
		module = module[:idx]
	}
	return module
}
