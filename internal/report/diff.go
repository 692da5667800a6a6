package report

import (
	"fmt"
	"strings"

	"github.com/hakim/sahin/internal/diff"
)

// RenderDiff renders the delta between two consecutive scans as markdown.
func RenderDiff(result *diff.DiffResult) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("# Scan Diff Report: %s\n\n", result.Domain))
	b.WriteString(fmt.Sprintf("**Previous:** %s (%s)\n", orDash(result.PreviousScanID), orDash(result.PreviousStarted)))
	b.WriteString(fmt.Sprintf("**Current:** %s (%s)\n\n", orDash(result.CurrentScanID), orDash(result.CurrentStarted)))

	// If there are zero changes across all categories, short-circuit.
	if !result.HasChanges() {
		b.WriteString("No changes detected.\n")
		return b.String()
	}

	writeDiffSummaryTable(&b, result)
	writeRiskChange(&b, result)
	writeList(&b, "New Subdomains", "+", result.NewSubdomains)
	writeList(&b, "Removed Subdomains", "-", result.RemovedSubdomains)
	writeList(&b, "Newly Live", "+", result.NewlyLive)
	writeList(&b, "No Longer Live", "-", result.NoLongerLive)
	writePortChanges(&b, "New Open Ports", "+", result.NewPorts)
	writePortChanges(&b, "Closed Ports", "-", result.ClosedPorts)
	writePathChanges(&b, "New Paths", "+", result.NewPaths)
	writePathChanges(&b, "Removed Paths", "-", result.RemovedPaths)

	return b.String()
}

// ---------------------------------------------------------------------------
// Section writers
// ---------------------------------------------------------------------------

// writeDiffSummaryTable writes the three-row comparison table.
func writeDiffSummaryTable(b *strings.Builder, r *diff.DiffResult) {
	b.WriteString("## Summary\n\n")
	b.WriteString("| Category | Previous | Current | Change |\n")
	b.WriteString("|----------|----------|---------|--------|\n")

	b.WriteString(fmt.Sprintf("| Subdomains | %d | %d | %s |\n",
		r.PreviousSubdomainCount, r.CurrentSubdomainCount, formatChange(len(r.NewSubdomains), len(r.RemovedSubdomains))))
	b.WriteString(fmt.Sprintf("| Open Ports | %d | %d | %s |\n",
		r.PreviousPortCount, r.CurrentPortCount, formatChange(len(r.NewPorts), len(r.ClosedPorts))))
	b.WriteString(fmt.Sprintf("| Paths | %d | %d | %s |\n",
		r.PreviousPathCount, r.CurrentPathCount, formatChange(len(r.NewPaths), len(r.RemovedPaths))))

	b.WriteString("\n")
}

// writeRiskChange notes a risk level movement. Skipped when unchanged.
func writeRiskChange(b *strings.Builder, r *diff.DiffResult) {
	if !r.RiskChanged() {
		return
	}
	b.WriteString(fmt.Sprintf("**Risk:** %s → %s\n\n", orDash(string(r.PreviousRisk)), orDash(string(r.CurrentRisk))))
}

// writeList renders a bullet section. Skipped when empty.
func writeList(b *strings.Builder, title, sign string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString(fmt.Sprintf("## %s (%s%d)\n\n", title, sign, len(items)))
	for _, s := range items {
		b.WriteString(fmt.Sprintf("- %s\n", s))
	}
	b.WriteString("\n")
}

// writePortChanges is the shared table renderer for port change slices.
func writePortChanges(b *strings.Builder, title, sign string, changes []diff.PortChange) {
	if len(changes) == 0 {
		return
	}
	b.WriteString(fmt.Sprintf("## %s (%s%d)\n\n", title, sign, len(changes)))
	b.WriteString("| Host | Port | Service |\n")
	b.WriteString("|------|------|---------|\n")
	for _, pc := range changes {
		b.WriteString(fmt.Sprintf("| %s | %d | %s |\n", pc.Host, pc.Port, orDash(pc.Service)))
	}
	b.WriteString("\n")
}

// writePathChanges renders path additions or removals. Skipped when empty.
func writePathChanges(b *strings.Builder, title, sign string, changes []diff.PathChange) {
	if len(changes) == 0 {
		return
	}
	b.WriteString(fmt.Sprintf("## %s (%s%d)\n\n", title, sign, len(changes)))
	for _, pc := range changes {
		b.WriteString(fmt.Sprintf("- %s (%d)\n", pc.Path, pc.Status))
	}
	b.WriteString("\n")
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// formatChange returns a human-readable change string such as "+3 / -1".
// When there are no additions and no removals it returns "none".
func formatChange(added, removed int) string {
	if added == 0 && removed == 0 {
		return "none"
	}
	parts := make([]string, 0, 2)
	if added > 0 {
		parts = append(parts, fmt.Sprintf("+%d", added))
	}
	if removed > 0 {
		parts = append(parts, fmt.Sprintf("-%d", removed))
	}
	return strings.Join(parts, " / ")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
