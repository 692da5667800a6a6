package discovery

import (
	"context"
	"net"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/hakim/sahin/internal/events"
	"github.com/hakim/sahin/internal/models"
	"github.com/sourcegraph/conc/pool"
)

// Probe defaults for the normal profile.
const (
	DefaultProbeTimeout = 3 * time.Second
	DefaultProbeWorkers = 10
)

// ProbePorts are tried in order; the first accepted connection marks the
// host live.
var ProbePorts = []int{80, 443}

// DialFunc opens a connection; it matches (*net.Dialer).DialContext.
type DialFunc func(ctx context.Context, network, address string) (net.Conn, error)

// ProbeConfig controls the liveness worker pool
type ProbeConfig struct {
	Timeout time.Duration
	Workers int
}

// Prober checks hosts for an open web port with plain TCP connects. A
// connect on 80 or 443 is a cheap approximation of "serves HTTP", not
// proof of it.
type Prober struct {
	Dial   DialFunc
	Config ProbeConfig
	Events events.Sink
}

// NewProber returns a Prober using net.Dialer.
func NewProber(cfg ProbeConfig, sink events.Sink) *Prober {
	return &Prober{
		Dial:   (&net.Dialer{}).DialContext,
		Config: cfg,
		Events: sink,
	}
}

type probeResult struct {
	host string
	live bool
}

// ProbeAll probes hosts on a bounded pool and returns the live ones.
// Results are merged after the pool drains.
func (p *Prober) ProbeAll(ctx context.Context, hosts []string) models.HostSet {
	workers := p.Config.Workers
	if workers <= 0 {
		workers = DefaultProbeWorkers
	}

	var done atomic.Int64
	total := len(hosts)

	wp := pool.NewWithResults[probeResult]().WithMaxGoroutines(workers)
	for _, host := range hosts {
		wp.Go(func() probeResult {
			live := p.IsLive(ctx, host)
			p.Events.Emit(events.Event{
				Kind:   events.HostProbed,
				Stage:  models.StageSubdomains,
				Target: host,
				Live:   live,
				Done:   int(done.Add(1)),
				Total:  total,
			})
			return probeResult{host: host, live: live}
		})
	}

	live := models.NewHostSet()
	for _, r := range wp.Wait() {
		if r.live {
			live.Add(r.host)
		}
	}
	return live
}

// IsLive reports whether host accepts a TCP connection on any probe port.
// Every failure counts as not live.
func (p *Prober) IsLive(ctx context.Context, host string) bool {
	timeout := p.Config.Timeout
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	dial := p.Dial
	if dial == nil {
		dial = (&net.Dialer{}).DialContext
	}

	for _, port := range ProbePorts {
		if ctx.Err() != nil {
			return false
		}
		if p.try(ctx, dial, net.JoinHostPort(host, strconv.Itoa(port)), timeout) {
			return true
		}
	}
	return false
}

func (p *Prober) try(ctx context.Context, dial DialFunc, addr string, timeout time.Duration) bool {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	conn, err := dial(ctx, "tcp", addr)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
