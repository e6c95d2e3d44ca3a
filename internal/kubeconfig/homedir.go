package kubeconfig

import (
	"path/filepath"

	"github.com/spf13/afero"
)

// homeCandidates lists, in order, the directories that may serve as the
// user's home for a given OS family. Entries are tried after $HOME.
type homeCandidates func(env Environment) []string

// posixHome has no fallback beyond $HOME
func posixHome(Environment) []string {
	return nil
}

// windowsHome tries HOMEDRIVE+HOMEPATH, then USERPROFILE
func windowsHome(env Environment) []string {
	var candidates []string

	drive, path := env.Get(EnvHomeDrive), env.Get(EnvHomePath)
	if drive != "" && path != "" {
		candidates = append(candidates, filepath.Join(drive, path))
	}

	if profile := env.Get(EnvUserProfile); profile != "" {
		candidates = append(candidates, profile)
	}

	return candidates
}

// homeStrategyFor returns the fallback strategy for an OS family
func homeStrategyFor(osFamily OSFamily) homeCandidates {
	switch osFamily {
	case OSWindows:
		return windowsHome
	default:
		return posixHome
	}
}

// firstExistingDir returns the first candidate that is a directory on fs
func firstExistingDir(fs afero.Fs, candidates []string) (string, bool) {
	for _, dir := range candidates {
		if ok, _ := afero.DirExists(fs, dir); ok {
			return dir, true
		}
	}
	return "", false
}
