package kubeconfig

import (
	"log/slog"
	"path/filepath"
)

// FirstOf runs steps in order and returns the first result reported as found.
// Later steps are not evaluated once one succeeds.
func FirstOf[T any](steps ...func() (T, bool)) (T, bool) {
	for _, step := range steps {
		if v, ok := step(); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// Locator finds the kubeconfig file to use, applying the precedence:
// 1. $KUBECONFIG (first entry)
// 2. <home>/.kube/config
// The service-account token mount is never considered here.
type Locator struct {
	resolver *PathResolver
	logger   *slog.Logger
}

// NewLocator creates a new locator
func NewLocator(resolver *PathResolver, logger *slog.Logger) *Locator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Locator{resolver: resolver, logger: logger}
}

// Locate returns the first existing config file, or false if none exists
func (l *Locator) Locate(env Environment) (CandidatePath, bool) {
	found, ok := FirstOf(
		func() (CandidatePath, bool) { return l.resolver.ResolveOverridePath(env) },
		func() (CandidatePath, bool) { return l.resolver.ResolveHomeConfigPath(env) },
	)
	if ok {
		l.logger.Debug("Located kubeconfig",
			"path", found.Path,
			"source", found.Provenance.String())
	}
	return found, ok
}

// TraceStep describes one discovery rule, what it found on disk and whether
// it supplies the credential
type TraceStep struct {
	Provenance Provenance
	Path       string
	Exists     bool
	Selected   bool
}

// Trace evaluates every discovery rule once, without short-circuiting, for
// diagnostics. Path is empty when a rule has no candidate at all (for example
// KUBECONFIG unset). At most one step is Selected, following the same order
// as Locate and then the service-account mount.
func (l *Locator) Trace(env Environment) []TraceStep {
	override := TraceStep{Provenance: ProvenanceOverride}
	if path, ok := l.resolver.overrideCandidate(env); ok && path != "" {
		override.Path = path
		override.Exists = l.resolver.exists(path)
	}

	home := TraceStep{Provenance: ProvenanceHome}
	if dir, ok := l.resolver.ResolveHomeDirectory(env); ok {
		home.Path = filepath.Join(dir, KubeDir, KubeFile)
		home.Exists = l.resolver.exists(home.Path)
	}

	serviceAccount := TraceStep{
		Provenance: ProvenanceServiceAccount,
		Path:       FallbackTokenPath(),
		Exists:     l.resolver.exists(FallbackTokenPath()),
	}

	steps := []TraceStep{override, home, serviceAccount}
	for i := range steps {
		if steps[i].Exists {
			steps[i].Selected = true
			break
		}
	}
	return steps
}
