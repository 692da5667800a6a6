package discovery

import (
	"context"
	"fmt"
	"time"

	"github.com/hakim/sahin/internal/events"
	"github.com/hakim/sahin/internal/models"
	"github.com/hakim/sahin/internal/tools"
	"github.com/hashicorp/go-hclog"
)

// DefaultSubfinderTimeout applies when the profile sets none.
const DefaultSubfinderTimeout = 90 * time.Second

// DiscoveryConfig contains configuration for the discovery stage
type DiscoveryConfig struct {
	// SubfinderPath is the binary name handed to the resolver.
	SubfinderPath string
	Timeout       time.Duration
	Probe         ProbeConfig

	// InScope, when set, drops discovered names it rejects. The target
	// domain itself is never dropped.
	InScope func(host string) bool
}

// Discoverer enumerates subdomains with subfinder and probes them for
// liveness.
type Discoverer struct {
	Exec   tools.Executor
	Lookup tools.LookupFunc
	Events events.Sink
	Logger hclog.Logger
	Config DiscoveryConfig
	Prober *Prober
}

// NewDiscoverer wires a Discoverer with the real resolver and a TCP prober.
func NewDiscoverer(exec tools.Executor, cfg DiscoveryConfig, sink events.Sink, logger hclog.Logger) *Discoverer {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Discoverer{
		Exec:   exec,
		Lookup: tools.Resolve,
		Events: sink,
		Logger: logger.Named("discovery"),
		Config: cfg,
		Prober: NewProber(cfg.Probe, sink),
	}
}

// Discover returns every known name for domain and the subset that
// accepted a connection. The domain is always part of subs; with checkLive
// false every name counts as live. A missing subfinder is reported as
// tools.ErrToolUnavailable alongside usable results.
func (d *Discoverer) Discover(ctx context.Context, domain string, checkLive bool) (subs, live models.HostSet, err error) {
	subs = models.NewHostSet()

	// Step 1: Enumerate
	names, err := d.enumerate(ctx, domain)
	for _, name := range names {
		if d.Config.InScope != nil && !d.Config.InScope(name) {
			d.logger().Debug("dropping out-of-scope name", "host", name)
			continue
		}
		subs.Add(name)
	}

	// Step 2: The target itself is always a candidate
	subs.Add(domain)

	// Step 3: Liveness
	if !checkLive {
		return subs, subs.Clone(), err
	}
	if ctx.Err() != nil {
		return subs, models.NewHostSet(), err
	}

	prober := d.Prober
	if prober == nil {
		prober = NewProber(d.Config.Probe, d.Events)
	}
	live = prober.ProbeAll(ctx, subs.Sorted())

	return subs, live, err
}

func (d *Discoverer) enumerate(ctx context.Context, domain string) ([]string, error) {
	name := d.Config.SubfinderPath
	if name == "" {
		name = tools.Subfinder
	}

	path, ok := d.lookup(name)
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, tools.ErrToolUnavailable)
	}
	d.Events.Emit(events.Event{Kind: events.ToolSelected, Stage: models.StageSubdomains, Message: path})

	timeout := d.Config.Timeout
	if timeout <= 0 {
		timeout = DefaultSubfinderTimeout
	}

	res := d.Exec.RunStreaming(ctx, path, tools.SubfinderArgs(domain), timeout, func(line string) {
		if host, ok := tools.ParseHostLine(line); ok {
			d.Events.Emit(events.Event{Kind: events.SubdomainFound, Stage: models.StageSubdomains, Target: host})
		}
	})

	if !res.OK() {
		d.logger().Debug("subfinder failed, discarding output", "exit", res.ExitCode)
		d.Events.Warn(models.StageSubdomains, domain,
			fmt.Errorf("subfinder exited with code %d, results discarded: %w", res.ExitCode, tools.ErrToolFailed))
		return nil, nil
	}

	names := tools.ParseHostList(res.Output)
	d.logger().Debug("subfinder parsed", "domain", domain, "names", len(names))
	return names, nil
}

func (d *Discoverer) lookup(name string) (string, bool) {
	if d.Lookup != nil {
		return d.Lookup(name)
	}
	return tools.Resolve(name)
}

func (d *Discoverer) logger() hclog.Logger {
	if d.Logger == nil {
		return hclog.NewNullLogger()
	}
	return d.Logger
}
