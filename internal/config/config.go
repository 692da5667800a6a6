package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ConfigName is the base name searched for when no explicit path is given.
const ConfigName = "sahin"

// EnvPrefix prefixes environment overrides, e.g. SAHIN_DB_PATH.
const EnvPrefix = "SAHIN"

// Config represents the application configuration
type Config struct {
	DBPath    string         `mapstructure:"db_path" yaml:"db_path"`
	ReportDir string         `mapstructure:"report_dir" yaml:"report_dir"`
	Tools     ToolsConfig    `mapstructure:"tools" yaml:"tools"`
	Profiles  ProfilesConfig `mapstructure:"profiles" yaml:"profiles"`
	Targets   TargetsConfig  `mapstructure:"targets" yaml:"targets"`
	Paths     PathsConfig    `mapstructure:"paths" yaml:"paths"`
	Notify    NotifyConfig   `mapstructure:"notify" yaml:"notify"`
	Scope     ScopeConfig    `mapstructure:"scope" yaml:"scope"`
}

// ToolConfig represents configuration for a single tool
type ToolConfig struct {
	// Path overrides the binary name handed to the resolver.
	Path    string `mapstructure:"path" yaml:"path"`
	Timeout string `mapstructure:"timeout" yaml:"timeout"`
}

// ToolsConfig contains configuration for all external tools
type ToolsConfig struct {
	Nmap        ToolConfig `mapstructure:"nmap" yaml:"nmap"`
	Subfinder   ToolConfig `mapstructure:"subfinder" yaml:"subfinder"`
	Feroxbuster ToolConfig `mapstructure:"feroxbuster" yaml:"feroxbuster"`
	Gobuster    ToolConfig `mapstructure:"gobuster" yaml:"gobuster"`
}

// TargetsConfig caps how many hosts and URLs the path stage visits
type TargetsConfig struct {
	MaxHosts      int `mapstructure:"max_hosts" yaml:"max_hosts"`
	FallbackHosts int `mapstructure:"fallback_hosts" yaml:"fallback_hosts"`
	MaxURLs       int `mapstructure:"max_urls" yaml:"max_urls"`
}

// PathsConfig controls wordlist lookup and the robots/sitemap fallback
type PathsConfig struct {
	Wordlists   []string `mapstructure:"wordlists" yaml:"wordlists"`
	Threads     int      `mapstructure:"threads" yaml:"threads"`
	Hints       bool     `mapstructure:"hints" yaml:"hints"`
	HintLimit   int      `mapstructure:"hint_limit" yaml:"hint_limit"`
	HintTimeout string   `mapstructure:"hint_timeout" yaml:"hint_timeout"`
	VerifyTLS   bool     `mapstructure:"verify_tls" yaml:"verify_tls"`
	UserAgent   string   `mapstructure:"user_agent" yaml:"user_agent"`
}

// NotifyConfig configures the completion webhook
type NotifyConfig struct {
	WebhookURL string `mapstructure:"webhook_url" yaml:"webhook_url"`
	Timeout    string `mapstructure:"timeout" yaml:"timeout"`
}

// ScopeConfig restricts which domains may be scanned
type ScopeConfig struct {
	AllowedDomains []string `mapstructure:"allowed_domains" yaml:"allowed_domains"`
}

// Load reads and parses configuration from a YAML file.
// If path is empty, searches for sahin.yaml in the current directory,
// ./configs and ~/.config/sahin/. A missing file is not an error: the
// defaults are used. SAHIN_* environment variables override file values.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		// Use explicit path
		v.SetConfigFile(path)
	} else {
		// Search for config in default locations
		v.SetConfigName(ConfigName)
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")

		homeDir, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(homeDir, ".config", ConfigName))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers every leaf of def with viper so that partial
// files and environment overrides are overlaid on the defaults.
func setDefaults(v *viper.Viper, def *Config) {
	v.SetDefault("db_path", def.DBPath)
	v.SetDefault("report_dir", def.ReportDir)

	for name, tool := range map[string]ToolConfig{
		"nmap":        def.Tools.Nmap,
		"subfinder":   def.Tools.Subfinder,
		"feroxbuster": def.Tools.Feroxbuster,
		"gobuster":    def.Tools.Gobuster,
	} {
		v.SetDefault("tools."+name+".path", tool.Path)
		v.SetDefault("tools."+name+".timeout", tool.Timeout)
	}

	for name, p := range map[string]Profile{
		ProfileNormal: def.Profiles.Normal,
		ProfileFast:   def.Profiles.Fast,
	} {
		prefix := "profiles." + name + "."
		v.SetDefault(prefix+"service_detection", p.ServiceDetection)
		v.SetDefault(prefix+"fast_preset", p.FastPreset)
		v.SetDefault(prefix+"ports", p.Ports)
		v.SetDefault(prefix+"subfinder_timeout", p.SubfinderTimeout)
		v.SetDefault(prefix+"probe_timeout", p.ProbeTimeout)
		v.SetDefault(prefix+"probe_workers", p.ProbeWorkers)
	}

	v.SetDefault("targets.max_hosts", def.Targets.MaxHosts)
	v.SetDefault("targets.fallback_hosts", def.Targets.FallbackHosts)
	v.SetDefault("targets.max_urls", def.Targets.MaxURLs)

	v.SetDefault("paths.wordlists", def.Paths.Wordlists)
	v.SetDefault("paths.threads", def.Paths.Threads)
	v.SetDefault("paths.hints", def.Paths.Hints)
	v.SetDefault("paths.hint_limit", def.Paths.HintLimit)
	v.SetDefault("paths.hint_timeout", def.Paths.HintTimeout)
	v.SetDefault("paths.verify_tls", def.Paths.VerifyTLS)
	v.SetDefault("paths.user_agent", def.Paths.UserAgent)

	v.SetDefault("notify.webhook_url", def.Notify.WebhookURL)
	v.SetDefault("notify.timeout", def.Notify.Timeout)

	v.SetDefault("scope.allowed_domains", def.Scope.AllowedDomains)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.DBPath == "" {
		errs = append(errs, errors.New("db_path cannot be empty"))
	}

	if c.ReportDir == "" {
		errs = append(errs, errors.New("report_dir cannot be empty"))
	}

	for name, tool := range map[string]ToolConfig{
		"nmap":        c.Tools.Nmap,
		"subfinder":   c.Tools.Subfinder,
		"feroxbuster": c.Tools.Feroxbuster,
		"gobuster":    c.Tools.Gobuster,
	} {
		if err := checkDuration("tools."+name+".timeout", tool.Timeout); err != nil {
			errs = append(errs, err)
		}
	}

	for name, p := range map[string]Profile{
		ProfileNormal: c.Profiles.Normal,
		ProfileFast:   c.Profiles.Fast,
	} {
		if err := p.validate("profiles." + name); err != nil {
			errs = append(errs, err)
		}
	}

	if c.Targets.MaxHosts <= 0 {
		errs = append(errs, errors.New("targets.max_hosts must be positive"))
	}

	if c.Targets.FallbackHosts <= 0 {
		errs = append(errs, errors.New("targets.fallback_hosts must be positive"))
	}

	if c.Targets.MaxURLs <= 0 {
		errs = append(errs, errors.New("targets.max_urls must be positive"))
	}

	if c.Paths.Threads <= 0 {
		errs = append(errs, errors.New("paths.threads must be positive"))
	}

	if c.Paths.HintLimit <= 0 {
		errs = append(errs, errors.New("paths.hint_limit must be positive"))
	}

	if err := checkDuration("paths.hint_timeout", c.Paths.HintTimeout); err != nil {
		errs = append(errs, err)
	}

	if err := checkDuration("notify.timeout", c.Notify.Timeout); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Binary returns the configured binary name for a tool, falling back to
// the tool's own name.
func (t ToolConfig) Binary(fallback string) string {
	if t.Path != "" {
		return t.Path
	}
	return fallback
}

// TimeoutOr parses Timeout, returning fallback when unset or invalid.
func (t ToolConfig) TimeoutOr(fallback time.Duration) time.Duration {
	return Duration(t.Timeout, fallback)
}

// Duration parses a duration string such as "90s", returning fallback
// when s is empty or malformed.
func Duration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func checkDuration(key, s string) error {
	if s == "" {
		return nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("%s: invalid duration %q: %w", key, s, err)
	}
	if d <= 0 {
		return fmt.Errorf("%s must be positive", key)
	}
	return nil
}
