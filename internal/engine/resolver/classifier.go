package resolver

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"depscope/internal/interp"
	"depscope/internal/shared/observability"
)

// Classifier decides which module names belong to the interpreter's
// standard distribution. Classify answers a whole refresh batch at
// once so implementations can amortize subprocess costs, and it never
// fails: an implementation that loses its primary source degrades to a
// static answer instead of an error.
type Classifier interface {
	Classify(ctx context.Context, env interp.Environment, names []string) map[string]bool
}

var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ProbeFunc resolves module names through an interpreter subprocess.
type ProbeFunc func(ctx context.Context, env interp.Environment, names []string) (map[string]interp.ProbeResult, error)

// InterpreterClassifier asks the environment's own interpreter where
// each module loads from, which keeps classification correct across
// Python versions. When the probe fails it falls back to the embedded
// stdlib table.
type InterpreterClassifier struct {
	probe    ProbeFunc
	fallback *TableClassifier
}

func NewInterpreterClassifier(probe ProbeFunc) *InterpreterClassifier {
	if probe == nil {
		probe = interp.ProbeModules
	}
	return &InterpreterClassifier{probe: probe, fallback: NewTableClassifier()}
}

func (c *InterpreterClassifier) Classify(ctx context.Context, env interp.Environment, names []string) map[string]bool {
	verdicts := make(map[string]bool, len(names))
	if len(names) == 0 {
		return verdicts
	}

	probeNames := make([]string, 0, len(names))
	for _, name := range names {
		// Names that are not importable identifiers never reach pip.
		if !identifierRe.MatchString(name) {
			verdicts[name] = true
			continue
		}
		probeNames = append(probeNames, name)
	}
	if len(probeNames) == 0 {
		return verdicts
	}

	results, err := c.probe(ctx, env, probeNames)
	if err != nil {
		slog.Warn("interpreter probe failed, using embedded stdlib table",
			"environment", env.Label(), "error", err)
		fallback := c.fallback.Classify(ctx, env, probeNames)
		for name, isStdlib := range fallback {
			verdicts[name] = isStdlib
		}
		return verdicts
	}

	for _, name := range probeNames {
		observability.ClassifierLookupsTotal.WithLabelValues("probe").Inc()
		verdicts[name] = stdlibVerdict(results[name])
	}
	return verdicts
}

// stdlibVerdict applies the origin policy to one probe answer: builtins
// and frozen modules are stdlib, unresolvable names are not (they may
// be installable), and resolvable ones are stdlib exactly when they do
// not load from a package install directory.
func stdlibVerdict(result interp.ProbeResult) bool {
	if result.Builtin {
		return true
	}
	if !result.Found {
		return false
	}
	switch result.Origin {
	case "", "built-in", "frozen":
		return true
	}
	return !isSitePackagesOrigin(result.Origin)
}

func isSitePackagesOrigin(origin string) bool {
	normalized := strings.ReplaceAll(origin, "\\", "/")
	return strings.Contains(normalized, "site-packages") ||
		strings.Contains(normalized, "dist-packages")
}

// TableClassifier answers from a stdlib module table compiled into the
// binary. It is the offline fallback and is also used directly in
// environments without a usable interpreter.
type TableClassifier struct{}

func NewTableClassifier() *TableClassifier {
	return &TableClassifier{}
}

func (c *TableClassifier) Classify(_ context.Context, _ interp.Environment, names []string) map[string]bool {
	verdicts := make(map[string]bool, len(names))
	for _, name := range names {
		observability.ClassifierLookupsTotal.WithLabelValues("table").Inc()
		if !identifierRe.MatchString(name) {
			verdicts[name] = true
			continue
		}
		verdicts[name] = pythonStdlib[name]
	}
	return verdicts
}
