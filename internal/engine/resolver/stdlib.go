package resolver

import (
	_ "embed"
	"strings"
)

//go:embed stdlib/python.txt
var pythonStdlibData string

// pythonStdlib is the embedded fallback table of standard-distribution
// top-level module names. The interpreter probe is authoritative; this
// table only answers when no interpreter can.
var pythonStdlib = map[string]bool{}

func init() {
	for _, line := range strings.Split(pythonStdlibData, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		pythonStdlib[line] = true
		// Register the base name too: urllib.request -> urllib.
		if idx := strings.Index(line, "."); idx > 0 {
			pythonStdlib[line[:idx]] = true
		}
	}
}
