package tools

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeExecutable(t *testing.T, dir, name string, mode os.FileMode) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), mode))
	return path
}

func TestResolveFromPath(t *testing.T) {
	binDir := t.TempDir()
	want := writeExecutable(t, binDir, "fake-nmap", 0o755)
	t.Setenv("PATH", binDir)
	t.Setenv(GoPathEnv, "")
	t.Setenv("HOME", t.TempDir())

	got, ok := Resolve("fake-nmap")

	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestResolveFromGoPath(t *testing.T) {
	gopath := t.TempDir()
	want := writeExecutable(t, filepath.Join(gopath, "bin"), "fake-subfinder", 0o755)
	t.Setenv("PATH", t.TempDir())
	t.Setenv(GoPathEnv, gopath)
	t.Setenv("HOME", t.TempDir())

	got, ok := Resolve("fake-subfinder")

	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestResolveFromHomeGoBin(t *testing.T) {
	home := t.TempDir()
	want := writeExecutable(t, filepath.Join(home, "go", "bin"), "fake-gobuster", 0o755)
	t.Setenv("PATH", t.TempDir())
	t.Setenv(GoPathEnv, "")
	t.Setenv("HOME", home)

	got, ok := Resolve("fake-gobuster")

	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestResolveIgnoresNonExecutable(t *testing.T) {
	gopath := t.TempDir()
	writeExecutable(t, filepath.Join(gopath, "bin"), "fake-ferox", 0o644)
	t.Setenv("PATH", t.TempDir())
	t.Setenv(GoPathEnv, gopath)
	t.Setenv("HOME", t.TempDir())

	_, ok := Resolve("fake-ferox")

	assert.False(t, ok)
}

func TestResolveIsNotCached(t *testing.T) {
	gopath := t.TempDir()
	t.Setenv("PATH", t.TempDir())
	t.Setenv(GoPathEnv, gopath)
	t.Setenv("HOME", t.TempDir())

	_, ok := Resolve("late-tool")
	require.False(t, ok)

	writeExecutable(t, filepath.Join(gopath, "bin"), "late-tool", 0o755)
	_, ok = Resolve("late-tool")
	assert.True(t, ok)
}

func TestSelectPathToolPrefersFeroxbuster(t *testing.T) {
	all := PathTools(20)

	both := func(name string) (string, bool) { return "/bin/" + name, true }
	tool, path, ok := SelectPathTool(all, both)
	require.True(t, ok)
	assert.Equal(t, Feroxbuster, tool.Binary)
	assert.Equal(t, "/bin/feroxbuster", path)

	onlyGobuster := func(name string) (string, bool) { return "/bin/" + name, name == Gobuster }
	tool, _, ok = SelectPathTool(all, onlyGobuster)
	require.True(t, ok)
	assert.Equal(t, Gobuster, tool.Binary)

	none := func(string) (string, bool) { return "", false }
	_, _, ok = SelectPathTool(all, none)
	assert.False(t, ok)
}
