package report

import (
	"fmt"
	"strings"

	"github.com/hakim/sahin/internal/models"
)

// RenderMarkdown renders a full scan report as markdown.
func RenderMarkdown(r *models.Report, version string) string {
	var b strings.Builder

	// Header
	b.WriteString(fmt.Sprintf("# Sahin Scan Report: %s\n\n", r.Domain))
	b.WriteString(fmt.Sprintf("**Scan ID:** %s\n", r.ScanID))
	b.WriteString(fmt.Sprintf("**Date:** %s\n", r.StartedAt.Format("2006-01-02 15:04:05")))
	if r.Profile != "" {
		b.WriteString(fmt.Sprintf("**Profile:** %s\n", r.Profile))
	}
	b.WriteString(fmt.Sprintf("**Risk:** %s (%s)\n", r.Risk, r.RiskNote))
	b.WriteString(fmt.Sprintf("**Subdomains:** %d | **Live:** %d | **Open ports:** %d | **Paths:** %d | **Interesting:** %d\n\n",
		len(r.Subdomains), len(r.Live), r.Ports.TotalOpen(), len(r.Paths), r.InterestingCount))

	// Open ports by host
	b.WriteString("## Open Ports\n\n")
	if len(r.Ports) > 0 {
		for _, host := range r.Ports.Hosts() {
			ports := r.Ports[host]
			b.WriteString(fmt.Sprintf("### %s\n\n", host))
			b.WriteString("| Port | Service | Note |\n")
			b.WriteString("|------|---------|------|\n")
			for _, port := range r.Ports.SortedPorts(host) {
				note := PortNotes[port]
				if note == "" {
					note = "-"
				}
				b.WriteString(fmt.Sprintf("| %d | %s | %s |\n", port, ports[port], note))
			}
			if ssl := SSLSummary(ports); ssl != "" {
				b.WriteString(fmt.Sprintf("\n%s\n", ssl))
			}
			b.WriteString("\n")
		}
	} else {
		b.WriteString("None found.\n\n")
	}

	// Subdomains with liveness
	b.WriteString("## Subdomains\n\n")
	live := models.NewHostSet(r.Live...)
	b.WriteString("| Subdomain | Status |\n")
	b.WriteString("|-----------|--------|\n")
	for _, s := range r.Subdomains {
		status := "passive"
		if live.Has(s) {
			status = "live"
		}
		b.WriteString(fmt.Sprintf("| %s | %s |\n", s, status))
	}
	b.WriteString("\n")

	// Paths
	b.WriteString("## Paths\n\n")
	if len(r.PathURLs) > 0 {
		b.WriteString(fmt.Sprintf("Targets: %s\n\n", strings.Join(r.PathURLs, ", ")))
	}
	if len(r.Paths) > 0 {
		b.WriteString("| Path | Status | Size | Note |\n")
		b.WriteString("|------|--------|------|------|\n")
		for _, p := range r.Paths {
			b.WriteString(fmt.Sprintf("| %s | %d | %d | %s |\n", p.Path, p.Status, p.Size, pathNote(p)))
		}
	} else {
		b.WriteString("None found.\n")
	}
	b.WriteString("\n")

	// Hints
	if len(r.Hints) > 0 {
		b.WriteString("## robots.txt / sitemap.xml\n\n")
		for _, h := range r.Hints {
			b.WriteString(fmt.Sprintf("### %s\n\n", h.URL))
			for _, p := range h.Robots {
				b.WriteString(fmt.Sprintf("- `%s` (robots)\n", p))
			}
			for _, p := range h.Sitemap {
				b.WriteString(fmt.Sprintf("- `%s` (sitemap)\n", p))
			}
			b.WriteString("\n")
		}
	}

	// Warnings
	if len(r.Warnings) > 0 {
		b.WriteString("## Warnings\n\n")
		for _, w := range r.Warnings {
			b.WriteString(fmt.Sprintf("- %s\n", w))
		}
		b.WriteString("\n")
	}

	b.WriteString(fmt.Sprintf("_Scan time: %d seconds. Sahin v%s_\n", int(r.Elapsed().Seconds()), version))

	return b.String()
}
