package interp

import (
	"context"
	"encoding/json"
	"os/exec"
	"time"

	"depscope/internal/core/errors"
)

// probeScript asks the interpreter itself where each module would load
// from. One subprocess answers a whole batch.
const probeScript = `
import importlib.util, json, sys
out = {}
for name in sys.argv[1:]:
    entry = {"found": False, "origin": "", "builtin": False}
    if name in sys.builtin_module_names:
        entry = {"found": True, "origin": "built-in", "builtin": True}
    else:
        try:
            spec = importlib.util.find_spec(name)
        except Exception:
            spec = None
        if spec is not None:
            entry["found"] = True
            entry["origin"] = spec.origin or ""
    out[name] = entry
print(json.dumps(out))
`

// DefaultProbeTimeout bounds one classification subprocess.
const DefaultProbeTimeout = 10 * time.Second

// ProbeResult describes where the interpreter would load a module from.
type ProbeResult struct {
	Found   bool   `json:"found"`
	Origin  string `json:"origin"`
	Builtin bool   `json:"builtin"`
}

// ProbeModules resolves the given module names through the environment's
// interpreter in a single subprocess. The returned map has one entry per
// requested name.
func ProbeModules(ctx context.Context, env Environment, names []string) (map[string]ProbeResult, error) {
	if len(names) == 0 {
		return map[string]ProbeResult{}, nil
	}

	args := append([]string{"-c", probeScript}, names...)
	cmd := exec.CommandContext(ctx, env.Executable, args...)
	out, err := cmd.Output()
	if err != nil {
		wrapped := errors.Wrap(err, errors.CodeUnavailable, "probe interpreter modules")
		return nil, errors.AddContext(wrapped, errors.CtxEnvironment, env.Label())
	}

	results := make(map[string]ProbeResult, len(names))
	if err := json.Unmarshal(out, &results); err != nil {
		return nil, errors.Wrap(err, errors.CodeUnavailable, "decode module probe output")
	}
	return results, nil
}
