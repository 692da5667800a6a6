package paths

import (
	"context"
	"fmt"
	"time"

	"github.com/hakim/sahin/internal/events"
	"github.com/hakim/sahin/internal/models"
	"github.com/hakim/sahin/internal/tools"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/afero"
)

// DefaultTimeout bounds one brute-force run.
const DefaultTimeout = 180 * time.Second

// PathConfig contains configuration for the path discovery stage
type PathConfig struct {
	FeroxbusterPath    string
	GobusterPath       string
	FeroxbusterTimeout time.Duration
	GobusterTimeout    time.Duration
	Threads            int
}

// Discoverer brute-forces paths under a base URL with the first available
// tool.
type Discoverer struct {
	Exec      tools.Executor
	Lookup    tools.LookupFunc
	Events    events.Sink
	Logger    hclog.Logger
	Config    PathConfig
	Wordlists *WordlistResolver
}

// NewDiscoverer wires a Discoverer against the OS filesystem.
func NewDiscoverer(exec tools.Executor, cfg PathConfig, extraWordlists []string, sink events.Sink, logger hclog.Logger) *Discoverer {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Discoverer{
		Exec:      exec,
		Lookup:    tools.Resolve,
		Events:    sink,
		Logger:    logger.Named("paths"),
		Config:    cfg,
		Wordlists: NewWordlistResolver(afero.NewOsFs(), extraWordlists),
	}
}

// DiscoverPaths runs one brute-force pass against baseURL. Findings keep
// the tool's output order. A missing tool yields tools.ErrToolUnavailable,
// a missing wordlist ErrNoWordlist; a failed run yields no findings and
// tools.ErrToolFailed.
func (d *Discoverer) DiscoverPaths(ctx context.Context, baseURL, wordlistOverride string) ([]models.PathFinding, error) {
	// Step 1: Pick a brute-forcer
	tool, path, ok := tools.SelectPathTool(d.pathTools(), d.Lookup)
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", tools.Feroxbuster, tools.Gobuster, tools.ErrToolUnavailable)
	}
	d.Events.Emit(events.Event{Kind: events.ToolSelected, Stage: models.StagePaths, Target: baseURL, Message: path})

	// Step 2: Pick a wordlist
	wl, cleanup, err := d.Wordlists.Resolve(wordlistOverride)
	if err != nil {
		return nil, err
	}
	defer cleanup()
	d.logger().Debug("wordlist selected", "url", baseURL, "wordlist", wl)

	// Step 3: Run and parse
	res := d.Exec.Run(ctx, path, tool.Args(baseURL, wl), d.timeoutFor(tool.Binary))
	if !res.OK() {
		return nil, fmt.Errorf("%s exited with code %d: %w", tool.Binary, res.ExitCode, tools.ErrToolFailed)
	}

	findings := tool.Parse(res.Output)
	for _, f := range findings {
		d.Events.Emit(events.Event{
			Kind:    events.PathFound,
			Stage:   models.StagePaths,
			Target:  baseURL,
			Message: f.Path,
			Status:  f.Status,
		})
	}
	d.logger().Debug("brute-force parsed", "url", baseURL, "tool", tool.Binary, "findings", len(findings))

	return findings, nil
}

func (d *Discoverer) pathTools() []tools.PathTool {
	list := tools.PathTools(d.Config.Threads)
	for i := range list {
		switch list[i].Binary {
		case tools.Feroxbuster:
			if d.Config.FeroxbusterPath != "" {
				list[i].Binary = d.Config.FeroxbusterPath
			}
		case tools.Gobuster:
			if d.Config.GobusterPath != "" {
				list[i].Binary = d.Config.GobusterPath
			}
		}
	}
	return list
}

func (d *Discoverer) timeoutFor(binary string) time.Duration {
	timeout := d.Config.FeroxbusterTimeout
	if binary == tools.Gobuster || (d.Config.GobusterPath != "" && binary == d.Config.GobusterPath) {
		timeout = d.Config.GobusterTimeout
	}
	if timeout <= 0 {
		return DefaultTimeout
	}
	return timeout
}

func (d *Discoverer) logger() hclog.Logger {
	if d.Logger == nil {
		return hclog.NewNullLogger()
	}
	return d.Logger
}
