// # internal/engine/resolver/resolver.go
package resolver

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"depscope/internal/interp"
	"depscope/internal/shared/observability"
	"depscope/internal/shared/util"
)

// PackageManager abstracts the package tooling of an environment.
type PackageManager interface {
	ListInstalled(ctx context.Context, env interp.Environment) (map[string]string, error)
	Install(ctx context.Context, env interp.Environment, packages []string) *interp.InstallStream
}

type PackageState string

const (
	StateInstalled PackageState = "installed"
	StateMissing   PackageState = "missing"
)

// PackageStatus describes one third-party import and whether its
// distribution is present in the environment.
type PackageStatus struct {
	ImportName  string
	InstallName string
	Version     string
	State       PackageState
	Files       []string
}

// Resolution is the outcome of resolving a set of imported module names
// against one environment snapshot.
type Resolution struct {
	Installed map[string]string
	Stdlib    []string
	Packages  []PackageStatus
	Missing   []string
}

// Resolver combines classification, alias resolution and package
// manager queries into missing-package answers.
type Resolver struct {
	classifier Classifier
	aliases    AliasMap
	manager    PackageManager
}

func NewResolver(classifier Classifier, aliases AliasMap, manager PackageManager) *Resolver {
	if classifier == nil {
		classifier = NewTableClassifier()
	}
	if manager == nil {
		manager = interp.Pip{}
	}
	return &Resolver{classifier: classifier, aliases: aliases, manager: manager}
}

// Aliases exposes the active alias table.
func (r *Resolver) Aliases() AliasMap {
	return r.aliases
}

// InstalledPackages returns the environment's installed distributions
// as lowercased name to version. A failing package manager yields an
// empty map, never an error: resolution treats "cannot list" as
// "nothing verifiably installed".
func (r *Resolver) InstalledPackages(ctx context.Context, env interp.Environment) map[string]string {
	installed, err := r.manager.ListInstalled(ctx, env)
	if err != nil {
		observability.ManagerQueriesTotal.WithLabelValues("error").Inc()
		slog.Warn("package listing failed, treating environment as empty",
			"environment", env.Label(), "error", err)
		return map[string]string{}
	}
	observability.ManagerQueriesTotal.WithLabelValues("ok").Inc()
	return installed
}

// MissingPackages reduces imported module names to the sorted, distinct
// distribution names that need installing: stdlib names are dropped,
// aliases are applied, and anything already installed is skipped.
// Unaliased names keep the import's original spelling.
func (r *Resolver) MissingPackages(ctx context.Context, env interp.Environment, imports []string) []string {
	return r.Resolve(ctx, env, groupFlat(imports)).Missing
}

// Resolve classifies every imported module name once, in one batch, and
// reports the full package picture for the report surface. byModule
// maps each import name to the files referencing it.
func (r *Resolver) Resolve(ctx context.Context, env interp.Environment, byModule map[string][]string) Resolution {
	names := util.SortedStringKeys(byModule)

	installed := r.InstalledPackages(ctx, env)
	stdlibVerdicts := r.classifier.Classify(ctx, env, names)

	resolution := Resolution{Installed: installed}
	missingSet := make(map[string]bool)

	for _, name := range names {
		if stdlibVerdicts[name] {
			resolution.Stdlib = append(resolution.Stdlib, name)
			continue
		}

		installName := r.aliases.Resolve(name)
		status := PackageStatus{
			ImportName:  name,
			InstallName: installName,
			Files:       byModule[name],
		}
		if version, ok := installed[strings.ToLower(installName)]; ok {
			status.State = StateInstalled
			status.Version = version
		} else {
			status.State = StateMissing
			missingSet[installName] = true
		}
		resolution.Packages = append(resolution.Packages, status)
	}

	resolution.Missing = make([]string, 0, len(missingSet))
	for name := range missingSet {
		resolution.Missing = append(resolution.Missing, name)
	}
	sort.Strings(resolution.Missing)

	return resolution
}

// Install starts installing the named distributions into env and
// returns the live output stream. Names pass through as given; callers
// resolve aliases via MissingPackages first.
func (r *Resolver) Install(ctx context.Context, env interp.Environment, packages []string) *interp.InstallStream {
	return r.manager.Install(ctx, env, packages)
}

func groupFlat(imports []string) map[string][]string {
	byModule := make(map[string][]string, len(imports))
	for _, name := range imports {
		if _, ok := byModule[name]; !ok {
			byModule[name] = nil
		}
	}
	return byModule
}
