package paths

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// ErrNoWordlist means no wordlist could be found or materialised.
var ErrNoWordlist = errors.New("no wordlist available")

// WordlistFile is the name looked for next to the working directory and
// the executable.
const WordlistFile = "common.txt"

// SystemWordlists are well-known distribution locations, in lookup order.
var SystemWordlists = []string{
	"/usr/share/wordlists/dirb/common.txt",
	"/usr/share/wordlists/dirbuster/directory-list-2.3-small.txt",
	"/usr/share/seclists/Discovery/Web-Content/common.txt",
}

// BuiltinWordlist is written to a temporary file when nothing else exists.
var BuiltinWordlist = []string{
	"admin", "api", "login", "logout", "dashboard", "config", "backup",
	"upload", "uploads", "images", "img", "css", "js", "static", "assets",
	"wp-admin", "wp-login", "phpmyadmin", ".git", "robots.txt", "sitemap.xml",
}

// WordlistResolver picks the wordlist handed to the brute-forcer.
type WordlistResolver struct {
	Fs afero.Fs
	// WorkDir and ExeDir are searched for common.txt; empty skips them.
	WorkDir string
	ExeDir  string
	// Extra paths are tried after the system locations.
	Extra []string
}

// NewWordlistResolver returns a resolver over fs rooted at the process's
// working directory and executable location.
func NewWordlistResolver(fs afero.Fs, extra []string) *WordlistResolver {
	r := &WordlistResolver{Fs: fs, Extra: extra}
	if wd, err := os.Getwd(); err == nil {
		r.WorkDir = wd
	}
	if exe, err := os.Executable(); err == nil {
		r.ExeDir = filepath.Dir(exe)
	}
	return r
}

// Candidates lists the lookup order for an optional override.
func (r *WordlistResolver) Candidates(override string) []string {
	var out []string
	if override != "" {
		out = append(out, override)
	}
	if r.WorkDir != "" {
		out = append(out, filepath.Join(r.WorkDir, WordlistFile))
	}
	if r.ExeDir != "" {
		out = append(out, filepath.Join(r.ExeDir, WordlistFile))
	}
	out = append(out, SystemWordlists...)
	return append(out, r.Extra...)
}

// Resolve returns the first existing candidate, or the built-in list
// written to a temporary file. The cleanup func is always safe to call
// and removes the temporary file when one was created.
func (r *WordlistResolver) Resolve(override string) (string, func(), error) {
	noop := func() {}

	for _, candidate := range r.Candidates(override) {
		if r.isFile(candidate) {
			return candidate, noop, nil
		}
	}

	f, err := afero.TempFile(r.Fs, "", "sahin_wordlist_*.txt")
	if err != nil {
		return "", noop, fmt.Errorf("%w: %v", ErrNoWordlist, err)
	}
	name := f.Name()
	cleanup := func() { _ = r.Fs.Remove(name) }

	_, werr := f.WriteString(strings.Join(BuiltinWordlist, "\n") + "\n")
	cerr := f.Close()
	if err := errors.Join(werr, cerr); err != nil {
		cleanup()
		return "", noop, fmt.Errorf("%w: %v", ErrNoWordlist, err)
	}

	return name, cleanup, nil
}

func (r *WordlistResolver) isFile(path string) bool {
	info, err := r.Fs.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
