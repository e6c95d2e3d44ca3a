package kubeconfig

import (
	"os"
	"runtime"
	"strings"

	"k8s.io/client-go/tools/clientcmd"
)

// Environment variables consulted during discovery
const (
	EnvKubeConfig  = clientcmd.RecommendedConfigPathEnvVar // KUBECONFIG
	EnvHome        = "HOME"
	EnvHomeDrive   = "HOMEDRIVE"
	EnvHomePath    = "HOMEPATH"
	EnvUserProfile = "USERPROFILE"
)

// OSFamily selects the platform rules used for home directory discovery
// and for splitting the override variable.
type OSFamily int

const (
	OSPosix OSFamily = iota
	OSWindows
)

// String returns the family name
func (f OSFamily) String() string {
	if f == OSWindows {
		return "windows"
	}
	return "posix"
}

// PathListSeparator returns the separator used in KUBECONFIG for this family.
func (f OSFamily) PathListSeparator() string {
	if f == OSWindows {
		return ";"
	}
	return ":"
}

// DetectOSFamily maps a GOOS value to an OSFamily
func DetectOSFamily(goos string) OSFamily {
	if strings.HasPrefix(strings.ToLower(goos), "windows") {
		return OSWindows
	}
	return OSPosix
}

// Environment is a read-only snapshot of the variables that drive discovery.
// The zero value is an empty POSIX environment.
type Environment struct {
	vars map[string]string
	OS   OSFamily
}

// NewEnvironment builds a snapshot from an explicit variable set. The map is
// copied so later changes by the caller are not observed.
func NewEnvironment(osFamily OSFamily, vars map[string]string) Environment {
	copied := make(map[string]string, len(vars))
	for k, v := range vars {
		copied[k] = v
	}
	return Environment{vars: copied, OS: osFamily}
}

// FromProcess snapshots the discovery variables of the running process.
func FromProcess() Environment {
	vars := make(map[string]string)
	for _, key := range []string{EnvKubeConfig, EnvHome, EnvHomeDrive, EnvHomePath, EnvUserProfile} {
		if v, ok := os.LookupEnv(key); ok {
			vars[key] = v
		}
	}
	return NewEnvironment(DetectOSFamily(runtime.GOOS), vars)
}

// Lookup returns the value of key and whether it was set at all.
func (e Environment) Lookup(key string) (string, bool) {
	v, ok := e.vars[key]
	return v, ok
}

// Get returns the value of key, or "" when unset.
func (e Environment) Get(key string) string {
	return e.vars[key]
}
