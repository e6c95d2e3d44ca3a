package kubeconfig

import (
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"k8s.io/client-go/tools/clientcmd"
)

const (
	// ServiceAccountTokenPath is where the platform mounts a workload's token
	ServiceAccountTokenPath = "/var/run/secrets/kubernetes.io/serviceaccount/token"

	// KubeDir and KubeFile name the default config below the home directory
	KubeDir  = clientcmd.RecommendedHomeDir
	KubeFile = clientcmd.RecommendedFileName
)

// Provenance records which discovery rule produced a path
type Provenance int

const (
	ProvenanceNone Provenance = iota
	ProvenanceOverride
	ProvenanceHome
	ProvenanceServiceAccount
)

// String returns the provenance label used in logs and CLI output
func (p Provenance) String() string {
	switch p {
	case ProvenanceOverride:
		return "override"
	case ProvenanceHome:
		return "home"
	case ProvenanceServiceAccount:
		return "service-account"
	default:
		return "none"
	}
}

// CandidatePath is a filesystem path and the rule that produced it
type CandidatePath struct {
	Path       string
	Provenance Provenance
}

// PathResolver computes candidate config locations from an Environment.
// It only queries existence on its filesystem, it never writes.
type PathResolver struct {
	fs     afero.Fs
	logger *slog.Logger
}

// NewPathResolver creates a resolver over fs. A nil fs means the OS filesystem.
func NewPathResolver(fs afero.Fs, logger *slog.Logger) *PathResolver {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PathResolver{fs: fs, logger: logger}
}

// ResolveOverridePath returns the first entry of KUBECONFIG if that file exists.
// Additional entries are ignored with a warning.
func (r *PathResolver) ResolveOverridePath(env Environment) (CandidatePath, bool) {
	path, ok := r.overrideCandidate(env)
	if !ok {
		return CandidatePath{}, false
	}

	if path == "" || !r.exists(path) {
		r.logger.Debug("Could not find file specified in $KUBECONFIG", "path", path)
		return CandidatePath{}, false
	}

	return CandidatePath{Path: path, Provenance: ProvenanceOverride}, true
}

// overrideCandidate returns the first KUBECONFIG entry whether or not it exists.
// ok is false when the variable is unset.
func (r *PathResolver) overrideCandidate(env Environment) (string, bool) {
	raw, ok := env.Lookup(EnvKubeConfig)
	if !ok {
		return "", false
	}

	entries := strings.Split(raw, env.OS.PathListSeparator())
	if len(entries) > 1 {
		r.logger.Warn("Found multiple kubeconfig files, using first",
			"kubeconfig", raw,
			"using", entries[0])
	}
	return entries[0], true
}

// ResolveHomeDirectory returns $HOME when it names an existing directory,
// otherwise the first existing platform fallback.
func (r *PathResolver) ResolveHomeDirectory(env Environment) (string, bool) {
	if home := env.Get(EnvHome); home != "" {
		if ok, _ := afero.DirExists(r.fs, home); ok {
			return home, true
		}
	}

	return firstExistingDir(r.fs, homeStrategyFor(env.OS)(env))
}

// ResolveHomeConfigPath returns <home>/.kube/config if it exists.
func (r *PathResolver) ResolveHomeConfigPath(env Environment) (CandidatePath, bool) {
	home, ok := r.ResolveHomeDirectory(env)
	if ok {
		path := filepath.Join(home, KubeDir, KubeFile)
		if r.exists(path) {
			return CandidatePath{Path: path, Provenance: ProvenanceHome}, true
		}
	}

	r.logger.Debug("Could not find ~/.kube/config")
	return CandidatePath{}, false
}

// FallbackTokenPath returns the service-account token mount path. Existence
// is the caller's concern.
func FallbackTokenPath() string {
	return ServiceAccountTokenPath
}

func (r *PathResolver) exists(path string) bool {
	ok, err := afero.Exists(r.fs, path)
	return err == nil && ok
}
