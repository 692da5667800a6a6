// Package diff computes the delta between two stored scan reports and
// identifies what is new, removed, or changed between consecutive runs.
package diff

import (
	"fmt"
	"sort"

	"github.com/hakim/sahin/internal/models"
)

// ---------------------------------------------------------------------------
// DiffResult
// ---------------------------------------------------------------------------

// PortChange associates a port event with the host on which it occurred.
type PortChange struct {
	Host    string
	Port    int
	Service string
}

// PathChange is a brute-forced path that appeared or disappeared.
type PathChange struct {
	Path   string
	Status int
}

// DiffResult holds the complete delta between a current and a previous
// report. All slice fields are non-nil (empty slices, not nil) so callers
// can range over them unconditionally. Slices are sorted.
type DiffResult struct {
	Domain          string
	CurrentScanID   string
	PreviousScanID  string
	CurrentStarted  string
	PreviousStarted string

	// Subdomain changes
	NewSubdomains     []string
	RemovedSubdomains []string

	// Live host changes
	NewlyLive    []string
	NoLongerLive []string

	// Port changes (per-host, per-port)
	NewPorts    []PortChange
	ClosedPorts []PortChange

	// Path changes
	NewPaths     []PathChange
	RemovedPaths []PathChange

	// Risk movement
	PreviousRisk models.RiskLevel
	CurrentRisk  models.RiskLevel

	// Summary counts (convenient for rendering without re-iterating slices)
	CurrentSubdomainCount  int
	PreviousSubdomainCount int
	CurrentPortCount       int
	PreviousPortCount      int
	CurrentPathCount       int
	PreviousPathCount      int
}

// RiskChanged reports whether the risk level moved between the runs.
func (d *DiffResult) RiskChanged() bool {
	return d.PreviousRisk != d.CurrentRisk
}

// HasChanges reports whether anything at all differs.
func (d *DiffResult) HasChanges() bool {
	return len(d.NewSubdomains)+len(d.RemovedSubdomains)+
		len(d.NewlyLive)+len(d.NoLongerLive)+
		len(d.NewPorts)+len(d.ClosedPorts)+
		len(d.NewPaths)+len(d.RemovedPaths) > 0 || d.RiskChanged()
}

// ---------------------------------------------------------------------------
// ComputeDiff
// ---------------------------------------------------------------------------

// ComputeDiff calculates the delta between current and previous reports.
// current must be non-nil; a nil previous is treated as an empty first run.
func ComputeDiff(current, previous *models.Report) *DiffResult {
	if previous == nil {
		previous = &models.Report{}
	}

	dr := &DiffResult{
		Domain:         current.Domain,
		CurrentScanID:  current.ScanID,
		PreviousScanID: previous.ScanID,
		PreviousRisk:   previous.Risk,
		CurrentRisk:    current.Risk,
	}
	if !current.StartedAt.IsZero() {
		dr.CurrentStarted = current.StartedAt.Format("2006-01-02 15:04:05")
	}
	if !previous.StartedAt.IsZero() {
		dr.PreviousStarted = previous.StartedAt.Format("2006-01-02 15:04:05")
	}

	dr.NewSubdomains, dr.RemovedSubdomains = diffStrings(current.Subdomains, previous.Subdomains)
	dr.NewlyLive, dr.NoLongerLive = diffStrings(current.Live, previous.Live)
	dr.NewPorts, dr.ClosedPorts = diffPorts(current.Ports, previous.Ports)
	dr.NewPaths, dr.RemovedPaths = diffPaths(current.Paths, previous.Paths)

	// Summary counts
	dr.CurrentSubdomainCount = len(current.Subdomains)
	dr.PreviousSubdomainCount = len(previous.Subdomains)
	dr.CurrentPortCount = current.Ports.TotalOpen()
	dr.PreviousPortCount = previous.Ports.TotalOpen()
	dr.CurrentPathCount = len(current.Paths)
	dr.PreviousPathCount = len(previous.Paths)

	return dr
}

// ---------------------------------------------------------------------------
// Set diffs
// ---------------------------------------------------------------------------

// diffStrings returns members only in current and members only in previous.
func diffStrings(current, previous []string) (added, removed []string) {
	prev := toSet(previous)
	curr := toSet(current)

	added, removed = []string{}, []string{}
	for s := range curr {
		if !prev[s] {
			added = append(added, s)
		}
	}
	for s := range prev {
		if !curr[s] {
			removed = append(removed, s)
		}
	}

	sort.Strings(added)
	sort.Strings(removed)
	return added, removed
}

// portKey uniquely identifies a port on a specific host.
// Format: "host:number" (e.g. "example.com:443")
func portKey(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}

// diffPorts computes newly opened and closed ports across all hosts.
func diffPorts(current, previous models.PortTable) (opened, closed []PortChange) {
	flatten := func(t models.PortTable) map[string]PortChange {
		out := make(map[string]PortChange)
		for host, ports := range t {
			for port, service := range ports {
				out[portKey(host, port)] = PortChange{Host: host, Port: port, Service: service}
			}
		}
		return out
	}

	prevPorts := flatten(previous)
	currPorts := flatten(current)

	opened, closed = []PortChange{}, []PortChange{}

	// New ports: in current but not in previous
	for key, pc := range currPorts {
		if _, exists := prevPorts[key]; !exists {
			opened = append(opened, pc)
		}
	}

	// Closed ports: in previous but not in current
	for key, pc := range prevPorts {
		if _, exists := currPorts[key]; !exists {
			closed = append(closed, pc)
		}
	}

	sortPorts(opened)
	sortPorts(closed)
	return opened, closed
}

// diffPaths compares findings by path; a status change alone is not a
// new path.
func diffPaths(current, previous []models.PathFinding) (added, removed []PathChange) {
	index := func(findings []models.PathFinding) map[string]PathChange {
		out := make(map[string]PathChange, len(findings))
		for _, f := range findings {
			if _, seen := out[f.Path]; !seen {
				out[f.Path] = PathChange{Path: f.Path, Status: f.Status}
			}
		}
		return out
	}

	prev := index(previous)
	curr := index(current)

	added, removed = []PathChange{}, []PathChange{}
	for p, pc := range curr {
		if _, exists := prev[p]; !exists {
			added = append(added, pc)
		}
	}
	for p, pc := range prev {
		if _, exists := curr[p]; !exists {
			removed = append(removed, pc)
		}
	}

	sortPaths(added)
	sortPaths(removed)
	return added, removed
}

func sortPorts(pcs []PortChange) {
	sort.Slice(pcs, func(i, j int) bool {
		if pcs[i].Host != pcs[j].Host {
			return pcs[i].Host < pcs[j].Host
		}
		return pcs[i].Port < pcs[j].Port
	})
}

func sortPaths(pcs []PathChange) {
	sort.Slice(pcs, func(i, j int) bool { return pcs[i].Path < pcs[j].Path })
}

func toSet(names []string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}
