package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/hakim/sahin/internal/config"
	"github.com/hakim/sahin/internal/discovery"
	"github.com/hakim/sahin/internal/events"
	"github.com/hakim/sahin/internal/paths"
	"github.com/hakim/sahin/internal/pipeline"
	"github.com/hakim/sahin/internal/portscan"
	"github.com/hakim/sahin/internal/tools"
	"github.com/hashicorp/go-hclog"
)

// stageSet holds the wired components for one run. The full scan and the
// single-stage commands share it so the tool, timeout and profile wiring
// lives in one place.
type stageSet struct {
	ports      *portscan.Scanner
	subdomains *discovery.Discoverer
	paths      *paths.Discoverer
	hints      *paths.HintFetcher
}

// buildStages wires every stage component from the loaded config and the
// selected run profile.
func buildStages(c *config.Config, profile config.Profile, scope *pipeline.ScopeConfig, sink events.Sink, log hclog.Logger) stageSet {
	runner := tools.NewRunner(log)

	ports := portscan.NewScanner(runner, portscan.PortScanConfig{
		NmapPath: c.Tools.Nmap.Binary(tools.Nmap),
		Timeout:  c.Tools.Nmap.TimeoutOr(portscan.DefaultTimeout),
		Nmap: tools.NmapOptions{
			ServiceDetection: profile.ServiceDetection,
			FastPreset:       profile.FastPreset,
			Ports:            profile.Ports,
		},
	}, sink, log)

	subdomains := discovery.NewDiscoverer(runner, discovery.DiscoveryConfig{
		SubfinderPath: c.Tools.Subfinder.Binary(tools.Subfinder),
		Timeout:       c.Tools.Subfinder.TimeoutOr(profile.SubfinderTimeoutOr(discovery.DefaultSubfinderTimeout)),
		Probe: discovery.ProbeConfig{
			Timeout: profile.ProbeTimeoutOr(discovery.DefaultProbeTimeout),
			Workers: profile.ProbeWorkers,
		},
		InScope: scope.InScope,
	}, sink, log)

	pathsDisc := paths.NewDiscoverer(runner, paths.PathConfig{
		FeroxbusterPath:    c.Tools.Feroxbuster.Binary(tools.Feroxbuster),
		GobusterPath:       c.Tools.Gobuster.Binary(tools.Gobuster),
		FeroxbusterTimeout: c.Tools.Feroxbuster.TimeoutOr(paths.DefaultTimeout),
		GobusterTimeout:    c.Tools.Gobuster.TimeoutOr(paths.DefaultTimeout),
		Threads:            c.Paths.Threads,
	}, c.Paths.Wordlists, sink, log)

	hints := paths.NewHintFetcher(paths.HintConfig{
		Timeout:   config.Duration(c.Paths.HintTimeout, paths.DefaultHintTimeout),
		VerifyTLS: c.Paths.VerifyTLS,
		UserAgent: c.Paths.UserAgent,
		Limit:     c.Paths.HintLimit,
	})

	return stageSet{
		ports:      ports,
		subdomains: subdomains,
		paths:      pathsDisc,
		hints:      hints,
	}
}

// loadProfile resolves the run profile selected by --fast.
func loadProfile(fast bool) (config.Profile, string, error) {
	name := config.ProfileName(fast)
	profile, err := cfg.GetProfile(name)
	if err != nil {
		return config.Profile{}, "", err
	}
	return profile, name, nil
}

// resolveScope prefers the --scope flag over the configured allow-list.
// An empty scope allows every target.
func resolveScope(flag string) *pipeline.ScopeConfig {
	if strings.TrimSpace(flag) != "" {
		return pipeline.NewScope(flag)
	}
	return pipeline.NewScope(cfg.Scope.AllowedDomains...)
}

// checkScope rejects a target outside the scope before anything runs.
func checkScope(scope *pipeline.ScopeConfig, domain string) error {
	if err := scope.ValidateTarget(domain); err != nil {
		return fmt.Errorf("scope check failed: %w", err)
	}
	return nil
}

// signalContext is cancelled on Ctrl-C or SIGTERM. Running tools are
// terminated by the runner when it fires.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
