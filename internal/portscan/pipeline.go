package portscan

import (
	"context"
	"fmt"
	"time"

	"github.com/hakim/sahin/internal/events"
	"github.com/hakim/sahin/internal/models"
	"github.com/hakim/sahin/internal/tools"
	"github.com/hashicorp/go-hclog"
)

// DefaultTimeout bounds a single nmap invocation.
const DefaultTimeout = 5 * time.Minute

// PortScanConfig contains configuration for the port scanning stage
type PortScanConfig struct {
	// NmapPath is the binary name handed to the resolver.
	NmapPath string
	Timeout  time.Duration
	Nmap     tools.NmapOptions
}

// Scanner drives nmap once per host and collects open ports.
type Scanner struct {
	Exec   tools.Executor
	Lookup tools.LookupFunc
	Events events.Sink
	Logger hclog.Logger
	Config PortScanConfig
}

// NewScanner returns a Scanner using the real process runner and resolver.
func NewScanner(exec tools.Executor, cfg PortScanConfig, sink events.Sink, logger hclog.Logger) *Scanner {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Scanner{
		Exec:   exec,
		Lookup: tools.Resolve,
		Events: sink,
		Logger: logger.Named("portscan"),
		Config: cfg,
	}
}

// ScanPorts scans every host sequentially and returns the open ports found.
// Hosts whose scan fails or yields nothing are absent from the table; the
// remaining hosts are still scanned. A missing nmap returns an empty table
// and tools.ErrToolUnavailable.
func (s *Scanner) ScanPorts(ctx context.Context, hosts []string) (models.PortTable, error) {
	table := make(models.PortTable)

	// Step 1: Resolve nmap
	name := s.Config.NmapPath
	if name == "" {
		name = tools.Nmap
	}
	path, ok := s.lookup(name)
	if !ok {
		return table, fmt.Errorf("%s: %w", name, tools.ErrToolUnavailable)
	}
	s.Events.Emit(events.Event{
		Kind:    events.ToolSelected,
		Stage:   models.StagePorts,
		Message: path,
	})

	timeout := s.Config.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	// Step 2: Scan each host
	for i, host := range hosts {
		if ctx.Err() != nil {
			break
		}

		res := s.Exec.Run(ctx, path, tools.NmapArgs(host, s.Config.Nmap), timeout)
		if !res.OK() {
			s.logger().Debug("nmap failed", "host", host, "exit", res.ExitCode)
			s.Events.Warn(models.StagePorts, host,
				fmt.Errorf("nmap exited with code %d: %w", res.ExitCode, tools.ErrToolFailed))
		} else {
			// Step 3: Parse grepable output
			for port, service := range tools.ParseGrepable(res.Output) {
				table.Set(host, port, service)
			}
			s.logger().Debug("nmap parsed", "host", host, "open", len(table[host]))
		}

		s.Events.Emit(events.Event{
			Kind:   events.HostScanned,
			Stage:  models.StagePorts,
			Target: host,
			Done:   i + 1,
			Total:  len(hosts),
			Live:   table.HasHost(host),
		})
	}

	return table, nil
}

func (s *Scanner) lookup(name string) (string, bool) {
	if s.Lookup != nil {
		return s.Lookup(name)
	}
	return tools.Resolve(name)
}

func (s *Scanner) logger() hclog.Logger {
	if s.Logger == nil {
		return hclog.NewNullLogger()
	}
	return s.Logger
}
