package report

import (
	"fmt"
	"strings"

	"github.com/hakim/sahin/internal/models"
	"github.com/hakim/sahin/internal/paths"
)

// Format selects a report rendering.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
)

// Extension is the file extension used for saved reports.
func (f Format) Extension() string {
	if f == FormatMarkdown {
		return "md"
	}
	return "txt"
}

// ParseFormat accepts "text", "txt", "markdown" and "md".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("unknown report format %q (available: text, markdown)", s)
}

// Render renders r in the given format.
func Render(r *models.Report, format Format, version string) string {
	if format == FormatMarkdown {
		return RenderMarkdown(r, version)
	}
	return RenderText(r, version)
}

// RenderText renders the plain-text report written by `scan -o`.
func RenderText(r *models.Report, version string) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Sahin v%s - %s\n", version, r.Domain))
	b.WriteString(strings.Repeat("=", 50) + "\n\n")

	b.WriteString("Subdomains:\n")
	for _, s := range r.Subdomains {
		b.WriteString(s + "\n")
	}
	b.WriteString("\n")

	b.WriteString(fmt.Sprintf("Live: %d\n\n", len(r.Live)))

	b.WriteString("Ports:\n")
	writePortSection(&b, r.Ports, "  %s:\n", "    %s\n")
	b.WriteString("\n")

	b.WriteString("Paths:\n")
	for _, p := range r.Paths {
		b.WriteString(fmt.Sprintf("  %s (%d)\n", p.Path, p.Status))
	}
	b.WriteString("\n")

	if len(r.Hints) > 0 {
		b.WriteString("Hints (robots/sitemap):\n")
		for _, h := range r.Hints {
			b.WriteString(fmt.Sprintf("  %s\n", h.URL))
			for _, p := range h.Robots {
				b.WriteString(fmt.Sprintf("    robots: %s\n", p))
			}
			for _, p := range h.Sitemap {
				b.WriteString(fmt.Sprintf("    sitemap: %s\n", p))
			}
		}
		b.WriteString("\n")
	}

	b.WriteString(fmt.Sprintf("Interesting paths: %d\n", r.InterestingCount))
	b.WriteString(fmt.Sprintf("Risk: %s - %s\n", r.Risk, r.RiskNote))
	b.WriteString(fmt.Sprintf("Scan time: %d seconds\n", int(r.Elapsed().Seconds())))

	return b.String()
}

// Summary is the short end-of-run block printed to the console.
func Summary(r *models.Report) []string {
	return []string{
		fmt.Sprintf("%d subdomains found", len(r.Subdomains)),
		fmt.Sprintf("%d live hosts", len(r.Live)),
		fmt.Sprintf("%d open ports", r.Ports.TotalOpen()),
		fmt.Sprintf("%d paths found", len(r.Paths)),
		fmt.Sprintf("%d interesting paths", r.InterestingCount),
	}
}

// pathNote is the annotation column for a finding.
func pathNote(f models.PathFinding) string {
	if note := paths.Note(f); note != "" {
		return note
	}
	return "-"
}
