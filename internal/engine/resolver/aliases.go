// Package resolver classifies imported module names and resolves them
// against the active environment's installed distributions.
package resolver

import "strings"

// defaultAliases maps import names to the distribution names pip
// installs when the two differ.
var defaultAliases = map[string]string{
	"pil":     "pillow",
	"yaml":    "pyyaml",
	"cv2":     "opencv-python",
	"skimage": "scikit-image",
	"sklearn": "scikit-learn",
	"bs4":     "beautifulsoup4",
}

// AliasMap resolves import names to installable distribution names.
// Lookups are case-insensitive; resolution is idempotent, so feeding a
// resolved name back in returns it unchanged.
type AliasMap struct {
	entries map[string]string
}

// NewAliasMap returns the built-in alias table merged with extra
// entries. Extra entries win over built-ins; keys are lowercased.
func NewAliasMap(extra map[string]string) AliasMap {
	entries := make(map[string]string, len(defaultAliases)+len(extra))
	for name, pkg := range defaultAliases {
		entries[name] = pkg
	}
	for name, pkg := range extra {
		name = strings.ToLower(strings.TrimSpace(name))
		pkg = strings.TrimSpace(pkg)
		if name == "" || pkg == "" {
			continue
		}
		entries[name] = pkg
	}
	return AliasMap{entries: entries}
}

// Resolve returns the distribution name for an import name, or the
// import name itself when no alias applies.
func (m AliasMap) Resolve(importName string) string {
	if pkg, ok := m.entries[strings.ToLower(importName)]; ok {
		return pkg
	}
	return importName
}

// Len reports the number of alias entries.
func (m AliasMap) Len() int {
	return len(m.entries)
}
