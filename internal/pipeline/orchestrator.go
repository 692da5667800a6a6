package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hakim/sahin/internal/events"
	"github.com/hakim/sahin/internal/models"
	"github.com/hakim/sahin/internal/paths"
	"github.com/hakim/sahin/internal/tools"
	"github.com/hashicorp/go-hclog"
)

// ErrCancelled is returned when the run context ends before the report
// is built. No report accompanies it.
var ErrCancelled = errors.New("scan cancelled")

// StoreInterface is the minimal bbolt contract required by the orchestrator.
// Using an interface keeps the package testable without a real database.
type StoreInterface interface {
	SaveScan(meta *models.ScanMeta) error
	UpdateScanStatus(id string, status models.ScanStatus) error
	SaveReport(report *models.Report) error
}

// PortScanner is the port stage's component.
type PortScanner interface {
	ScanPorts(ctx context.Context, hosts []string) (models.PortTable, error)
}

// SubdomainDiscoverer is the subdomain stage's component.
type SubdomainDiscoverer interface {
	Discover(ctx context.Context, domain string, checkLive bool) (subs, live models.HostSet, err error)
}

// PathDiscoverer is the path stage's component.
type PathDiscoverer interface {
	DiscoverPaths(ctx context.Context, baseURL, wordlist string) ([]models.PathFinding, error)
}

// HintSource supplies robots/sitemap paths for a base URL.
type HintSource interface {
	Fetch(ctx context.Context, baseURL string) models.PathHint
}

// StageFunc is the signature each pipeline stage must satisfy.
type StageFunc func(ctx context.Context) error

// Stage pairs a human-readable name with its execution function.
type Stage struct {
	Name string
	Run  StageFunc
}

// Orchestrator wires the three stage components together. Any component
// may be nil when its stage is always skipped.
type Orchestrator struct {
	Ports      PortScanner
	Subdomains SubdomainDiscoverer
	Paths      PathDiscoverer
	Hints      HintSource
	// Store is optional; without it nothing is persisted.
	Store  StoreInterface
	Events events.Sink
	Logger hclog.Logger
}

// PipelineConfig controls how Run behaves for a single run.
type PipelineConfig struct {
	// Domain is the target being scanned. Required.
	Domain string

	// Profile is recorded on the report ("normal" or "fast").
	Profile string

	SkipPorts      bool
	SkipSubdomains bool
	SkipPaths      bool

	// CheckLive enables TCP liveness probing of discovered subdomains.
	CheckLive bool

	// Wordlist overrides the brute-force wordlist.
	Wordlist string

	// Hints enables the robots/sitemap fallback for URLs without findings.
	Hints bool

	Limits TargetLimits
	Scope  *ScopeConfig

	// OnStageStart is called immediately before each stage executes.
	// index is 0-based; total is the count of stages selected to run.
	OnStageStart func(name string, index, total int)

	// OnStageDone is called immediately after each stage returns (or panics).
	// err is nil on success; elapsed is the wall time for that stage alone.
	OnStageDone func(name string, index, total int, err error, elapsed time.Duration)
}

// runState accumulates stage outputs. Stages run sequentially; only the
// warning list is touched from other goroutines.
type runState struct {
	domain   string
	ports    models.PortTable
	subs     models.HostSet
	live     models.HostSet
	urls     []string
	findings []models.PathFinding
	hints    []models.PathHint

	mu       sync.Mutex
	warnings []string
}

func (s *runState) warn(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.warnings = append(s.warnings, msg)
}

// Run executes ports, subdomains and paths in that order and returns the
// finished report. Stage failures and panics are recorded and never stop
// the run. If ctx ends first, the scan is marked cancelled and
// ErrCancelled is returned without a report.
func (o *Orchestrator) Run(ctx context.Context, cfg PipelineConfig) (*models.Report, error) {
	log := o.logger()

	// ── 1. Validate required inputs ───────────────────────────────────────────
	domain := models.NormalizeHost(cfg.Domain)
	if domain == "" {
		return nil, fmt.Errorf("pipeline: domain is required")
	}
	if err := cfg.Scope.ValidateTarget(domain); err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	// ── 2. Create the scan record ─────────────────────────────────────────────
	meta := models.NewScan(domain)
	meta.Status = models.StatusRunning
	meta.Profile = cfg.Profile
	o.persist(meta)

	state := &runState{
		domain: domain,
		ports:  make(models.PortTable),
		subs:   models.NewHostSet(domain),
		live:   models.NewHostSet(domain),
	}

	// Warnings raised by components land in the report as well.
	sink := events.Sink(func(e events.Event) {
		if e.Kind == events.Warning {
			state.warn(warningText(e))
		}
		o.Events.Emit(e)
	})

	// ── 3. Select stages ──────────────────────────────────────────────────────
	selected := o.stages(cfg, state, sink)

	// ── 4. Execute stages ─────────────────────────────────────────────────────
	stageErrors := make(map[string]string)
	total := len(selected)

	for i, stage := range selected {
		if ctx.Err() != nil {
			return o.cancelled(meta)
		}

		if cfg.OnStageStart != nil {
			cfg.OnStageStart(stage.Name, i, total)
		}
		sink.Emit(events.Event{Kind: events.StageStarted, Stage: stage.Name, Done: i, Total: total})

		stageStart := time.Now()
		stageErr := runStageIsolated(ctx, stage)
		stageElapsed := time.Since(stageStart)

		meta.StagesRun = appendUnique(meta.StagesRun, stage.Name)

		if stageErr != nil {
			stageErrors[stage.Name] = stageErr.Error()
			state.warn(fmt.Sprintf("%s: %v", stage.Name, stageErr))
			log.Debug("stage failed", "stage", stage.Name, "elapsed", stageElapsed, "error", stageErr)
		} else {
			log.Debug("stage complete", "stage", stage.Name, "elapsed", stageElapsed)
		}

		sink.Emit(events.Event{Kind: events.StageFinished, Stage: stage.Name, Done: i + 1, Total: total, Err: stageErr})
		if cfg.OnStageDone != nil {
			cfg.OnStageDone(stage.Name, i, total, stageErr, stageElapsed)
		}

		if ctx.Err() != nil {
			return o.cancelled(meta)
		}

		// Persist progress after each stage so a crash leaves a usable record.
		o.persist(meta)
	}

	// ── 5. Score and build the report ─────────────────────────────────────────
	risk := ScoreRisk(state.findings, state.ports)
	completed := time.Now()

	report := &models.Report{
		ScanID:           meta.ID,
		Domain:           domain,
		Profile:          cfg.Profile,
		StartedAt:        meta.StartedAt,
		CompletedAt:      completed,
		Ports:            state.ports.Clone(),
		Subdomains:       state.subs.Sorted(),
		Live:             state.live.Sorted(),
		Paths:            state.findings,
		Hints:            state.hints,
		PathURLs:         state.urls,
		InterestingCount: risk.InterestingCount,
		RiskyPortCount:   risk.RiskyPortCount,
		Risk:             risk.Level,
		RiskNote:         risk.Note,
		StagesRun:        append([]string(nil), meta.StagesRun...),
		StageErrors:      stageErrors,
		Warnings:         state.warnings,
	}

	// ── 6. Persist final status ───────────────────────────────────────────────
	meta.Risk = risk.Level
	meta.CompletedAt = &completed
	meta.Status = models.StatusComplete
	if len(stageErrors) > 0 {
		meta.Status = models.StatusPartial
	}
	o.persist(meta)

	if o.Store != nil {
		if err := o.Store.SaveReport(report); err != nil {
			log.Warn("could not save report", "scan", meta.ID, "error", err)
		}
	}

	return report, nil
}

// stages builds the selected stage closures over state, emitting a skip
// event for each disabled stage.
func (o *Orchestrator) stages(cfg PipelineConfig, state *runState, sink events.Sink) []Stage {
	var selected []Stage

	if cfg.SkipPorts || o.Ports == nil {
		sink.Emit(events.Event{Kind: events.StageSkipped, Stage: models.StagePorts})
	} else {
		selected = append(selected, Stage{Name: models.StagePorts, Run: func(ctx context.Context) error {
			table, err := o.Ports.ScanPorts(ctx, []string{state.domain})
			if table != nil {
				state.ports = table
			}
			return err
		}})
	}

	if cfg.SkipSubdomains || o.Subdomains == nil {
		sink.Emit(events.Event{Kind: events.StageSkipped, Stage: models.StageSubdomains})
	} else {
		selected = append(selected, Stage{Name: models.StageSubdomains, Run: func(ctx context.Context) error {
			subs, live, err := o.Subdomains.Discover(ctx, state.domain, cfg.CheckLive)
			if subs != nil {
				state.subs = cfg.Scope.FilterInScope(state.domain, subs)
			}
			if live != nil {
				state.live = liveWithin(live, state.subs)
			}
			return err
		}})
	}

	if cfg.SkipPaths || o.Paths == nil {
		sink.Emit(events.Event{Kind: events.StageSkipped, Stage: models.StagePaths})
	} else {
		selected = append(selected, Stage{Name: models.StagePaths, Run: func(ctx context.Context) error {
			return o.runPaths(ctx, cfg, state, sink)
		}})
	}

	return selected
}

// runPaths brute-forces each derived URL and falls back to robots/sitemap
// hints for URLs that produced nothing.
func (o *Orchestrator) runPaths(ctx context.Context, cfg PipelineConfig, state *runState, sink events.Sink) error {
	state.urls = DeriveTargets(state.domain, state.subs, state.live, state.ports, cfg.Limits)
	sink.Emit(events.Event{
		Kind:    events.TargetsDerived,
		Stage:   models.StagePaths,
		Total:   len(state.urls),
		Message: fmt.Sprint(state.urls),
	})

	// A missing tool or wordlist will not appear mid-run; stop trying once
	// either is reported.
	var unavailable error

	for _, url := range state.urls {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		var found []models.PathFinding
		if unavailable == nil {
			var err error
			found, err = o.Paths.DiscoverPaths(ctx, url, cfg.Wordlist)
			switch {
			case errors.Is(err, tools.ErrToolUnavailable), errors.Is(err, paths.ErrNoWordlist):
				unavailable = err
			case err != nil:
				sink.Warn(models.StagePaths, url, err)
			}
		}
		state.findings = append(state.findings, found...)

		if len(found) == 0 && cfg.Hints && o.Hints != nil {
			if hint := o.Hints.Fetch(ctx, url); !hint.Empty() {
				state.hints = append(state.hints, hint)
			}
		}
	}

	return unavailable
}

// runStageIsolated runs a single stage inside a deferred recover so that a
// panic in stage code is caught and returned as an error rather than crashing
// the orchestrator process.
func runStageIsolated(ctx context.Context, s Stage) (retErr error) {
	defer func() {
		if r := recover(); r != nil {
			retErr = fmt.Errorf("stage %q panicked: %v", s.Name, r)
		}
	}()
	return s.Run(ctx)
}

func (o *Orchestrator) cancelled(meta *models.ScanMeta) (*models.Report, error) {
	if o.Store != nil {
		if err := o.Store.UpdateScanStatus(meta.ID, models.StatusCancelled); err != nil {
			o.logger().Warn("could not mark scan cancelled", "scan", meta.ID, "error", err)
		}
	}
	return nil, ErrCancelled
}

func (o *Orchestrator) persist(meta *models.ScanMeta) {
	if o.Store == nil {
		return
	}
	if err := o.Store.SaveScan(meta); err != nil {
		// Non-fatal: the scan itself is unaffected.
		o.logger().Warn("could not persist scan record", "scan", meta.ID, "error", err)
	}
}

func (o *Orchestrator) logger() hclog.Logger {
	if o.Logger == nil {
		return hclog.NewNullLogger()
	}
	return o.Logger
}

// liveWithin keeps only live hosts that are also known subdomains.
func liveWithin(live, subs models.HostSet) models.HostSet {
	out := models.NewHostSet()
	for h := range live {
		if subs.Has(h) {
			out.Add(h)
		}
	}
	return out
}

func warningText(e events.Event) string {
	switch {
	case e.Target != "" && e.Stage != "":
		return fmt.Sprintf("%s: %s: %s", e.Stage, e.Target, e.Message)
	case e.Stage != "":
		return fmt.Sprintf("%s: %s", e.Stage, e.Message)
	}
	return e.Message
}

// appendUnique appends s to slice only if it is not already present.
func appendUnique(slice []string, s string) []string {
	for _, existing := range slice {
		if existing == s {
			return slice
		}
	}
	return append(slice, s)
}
