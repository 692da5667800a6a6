package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("HOME", dir)

	cfg, err := Load("")
	require.NoError(t, err)

	assertDefaults(t, cfg)
}

func TestLoadExplicitMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadOverlaysPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sahin.yaml")
	content := `
db_path: /tmp/custom.db
targets:
  max_urls: 4
profiles:
  fast:
    probe_workers: 50
paths:
  wordlists:
    - /opt/lists/web.txt
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/custom.db", cfg.DBPath)
	assert.Equal(t, 4, cfg.Targets.MaxURLs)
	assert.Equal(t, 3, cfg.Targets.MaxHosts)
	assert.Equal(t, 50, cfg.Profiles.Fast.ProbeWorkers)
	assert.Equal(t, "2s", cfg.Profiles.Fast.ProbeTimeout)
	assert.Equal(t, []string{"/opt/lists/web.txt"}, cfg.Paths.Wordlists)
	assert.Equal(t, "reports", cfg.ReportDir)
}

func TestLoadEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sahin.yaml")
	require.NoError(t, os.WriteFile(path, []byte("report_dir: out\n"), 0644))
	t.Setenv("SAHIN_REPORT_DIR", "from-env")
	t.Setenv("SAHIN_TARGETS_MAX_HOSTS", "7")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.ReportDir)
	assert.Equal(t, 7, cfg.Targets.MaxHosts)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sahin.yaml")
	content := `
targets:
  max_hosts: 0
profiles:
  normal:
    probe_timeout: soon
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "targets.max_hosts must be positive")
	assert.Contains(t, err.Error(), "profiles.normal.probe_timeout")
}

func TestWriteDefaultRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sahin.yaml")
	require.NoError(t, WriteDefault(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "db_path: sahin.db")
	assert.Contains(t, string(data), "probe_workers: 20")

	cfg, err := Load(path)
	require.NoError(t, err)
	assertDefaults(t, cfg)
}

func assertDefaults(t *testing.T, cfg *Config) {
	t.Helper()
	def := DefaultConfig()

	assert.Equal(t, def.DBPath, cfg.DBPath)
	assert.Equal(t, def.ReportDir, cfg.ReportDir)
	assert.Equal(t, def.Tools, cfg.Tools)
	assert.Equal(t, def.Profiles, cfg.Profiles)
	assert.Equal(t, def.Targets, cfg.Targets)
	assert.Equal(t, def.Paths.Threads, cfg.Paths.Threads)
	assert.Equal(t, def.Paths.HintLimit, cfg.Paths.HintLimit)
	assert.Equal(t, def.Paths.UserAgent, cfg.Paths.UserAgent)
	assert.True(t, cfg.Paths.Hints)
	assert.False(t, cfg.Paths.VerifyTLS)
	assert.Empty(t, cfg.Paths.Wordlists)
	assert.Empty(t, cfg.Scope.AllowedDomains)
	assert.Empty(t, cfg.Notify.WebhookURL)
}

func TestGetProfile(t *testing.T) {
	cfg := DefaultConfig()

	normal, err := cfg.GetProfile(ProfileName(false))
	require.NoError(t, err)
	assert.True(t, normal.ServiceDetection)
	assert.Equal(t, 3*time.Second, normal.ProbeTimeoutOr(time.Second))
	assert.Equal(t, 90*time.Second, normal.SubfinderTimeoutOr(time.Second))

	fast, err := cfg.GetProfile(ProfileName(true))
	require.NoError(t, err)
	assert.True(t, fast.FastPreset)
	assert.False(t, fast.ServiceDetection)
	assert.Equal(t, 20, fast.ProbeWorkers)
	assert.Equal(t, 60*time.Second, fast.SubfinderTimeoutOr(time.Second))

	_, err = cfg.GetProfile("turbo")
	assert.Error(t, err)
}

func TestDuration(t *testing.T) {
	assert.Equal(t, 5*time.Second, Duration("", 5*time.Second))
	assert.Equal(t, 5*time.Second, Duration("bogus", 5*time.Second))
	assert.Equal(t, 5*time.Second, Duration("-1s", 5*time.Second))
	assert.Equal(t, 90*time.Second, Duration("90s", 5*time.Second))

	assert.Equal(t, "nmap", ToolConfig{}.Binary("nmap"))
	assert.Equal(t, "/opt/nmap", ToolConfig{Path: "/opt/nmap"}.Binary("nmap"))
}
