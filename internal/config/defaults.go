package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hakim/sahin/internal/tools"
	"gopkg.in/yaml.v3"
)

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		DBPath:    "sahin.db",
		ReportDir: "reports",
		Tools: ToolsConfig{
			Nmap: ToolConfig{
				Path:    tools.Nmap,
				Timeout: "5m",
			},
			Subfinder: ToolConfig{
				Path: tools.Subfinder,
				// Per-profile subfinder_timeout applies when unset
			},
			Feroxbuster: ToolConfig{
				Path:    tools.Feroxbuster,
				Timeout: "3m",
			},
			Gobuster: ToolConfig{
				Path:    tools.Gobuster,
				Timeout: "3m",
			},
		},
		Profiles: ProfilesConfig{
			Normal: Profile{
				ServiceDetection: true,
				Ports:            tools.DefaultPortList,
				SubfinderTimeout: "90s",
				ProbeTimeout:     "3s",
				ProbeWorkers:     10,
			},
			Fast: Profile{
				FastPreset:       true,
				SubfinderTimeout: "60s",
				ProbeTimeout:     "2s",
				ProbeWorkers:     20,
			},
		},
		Targets: TargetsConfig{
			MaxHosts:      3,
			FallbackHosts: 5,
			MaxURLs:       2,
		},
		Paths: PathsConfig{
			Wordlists:   []string{},
			Threads:     20,
			Hints:       true,
			HintLimit:   15,
			HintTimeout: "5s",
			VerifyTLS:   false,
			UserAgent:   "Sahin/1.0",
		},
		Notify: NotifyConfig{
			Timeout: "10s",
		},
		Scope: ScopeConfig{
			AllowedDomains: []string{},
		},
	}
}

// WriteDefault writes a default configuration to the specified path
func WriteDefault(path string) error {
	cfg := DefaultConfig()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal default config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
