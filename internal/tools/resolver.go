package tools

import (
	"os"
	"os/exec"
	"path/filepath"
)

// GoPathEnv names the environment variable whose bin/ directory is
// searched when a tool is not on PATH.
const GoPathEnv = "GOPATH"

// LookupFunc resolves a tool name to an executable path.
type LookupFunc func(name string) (string, bool)

// Resolve finds an executable for name: PATH first, then $GOPATH/bin and
// ~/go/bin, where `go install` puts tools without touching PATH.
// Nothing is cached; every call reflects the current environment.
func Resolve(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	if path, err := exec.LookPath(name); err == nil {
		return path, true
	}
	for _, dir := range SupplementaryDirs() {
		candidate := filepath.Join(dir, name)
		if isExecutableFile(candidate) {
			return candidate, true
		}
	}
	return "", false
}

// SupplementaryDirs lists the non-PATH directories Resolve searches,
// in priority order.
func SupplementaryDirs() []string {
	var dirs []string
	if base := os.Getenv(GoPathEnv); base != "" {
		dirs = append(dirs, filepath.Join(base, "bin"))
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		dirs = append(dirs, filepath.Join(home, "go", "bin"))
	}
	return dirs
}

func isExecutableFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	return info.Mode().Perm()&0111 != 0
}
