package report

import (
	"testing"
	"time"

	"github.com/hakim/sahin/internal/diff"
	"github.com/hakim/sahin/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *models.Report {
	start := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	return &models.Report{
		ScanID:      "scan-1",
		Domain:      "example.com",
		Profile:     "normal",
		StartedAt:   start,
		CompletedAt: start.Add(42 * time.Second),
		Ports: models.PortTable{
			"example.com": {80: "http nginx", 443: "https", 3306: "MySQL"},
		},
		Subdomains:       []string{"api.example.com", "example.com"},
		Live:             []string{"example.com"},
		Paths:            []models.PathFinding{{Path: "/admin", Status: 301, Size: 10}, {Path: "/css", Status: 200}},
		PathURLs:         []string{"https://example.com", "http://example.com"},
		Hints:            []models.PathHint{{URL: "http://example.com", Robots: []string{"/private"}}},
		InterestingCount: 1,
		RiskyPortCount:   1,
		Risk:             models.RiskInfo,
		RiskNote:         "Review may be useful.",
	}
}

func TestRenderText(t *testing.T) {
	got := RenderText(sampleReport(), "1.0.0")

	want := `Sahin v1.0.0 - example.com
==================================================

Subdomains:
api.example.com
example.com

Live: 1

Ports:
  example.com:
    80 open (http nginx)
    443 open (https)
    3306 open (MySQL) - database, risky if exposed
    SSL: yes (443)

Paths:
  /admin (301)
  /css (200)

Hints (robots/sitemap):
  http://example.com
    robots: /private

Interesting paths: 1
Risk: Info - Review may be useful.
Scan time: 42 seconds
`
	assert.Equal(t, want, got)
}

func TestRenderTextEmpty(t *testing.T) {
	r := &models.Report{Domain: "example.com", Subdomains: []string{"example.com"}, Risk: models.RiskLow, RiskNote: "No obvious exposure."}

	got := RenderText(r, "1.0.0")

	assert.Contains(t, got, "Ports:\n\nPaths:\n\nInteresting paths: 0\n")
	assert.Contains(t, got, "Risk: Low - No obvious exposure.\n")
	assert.NotContains(t, got, "Hints")
}

func TestRenderMarkdown(t *testing.T) {
	got := RenderMarkdown(sampleReport(), "1.0.0")

	assert.Contains(t, got, "# Sahin Scan Report: example.com")
	assert.Contains(t, got, "| 3306 | MySQL | database, risky if exposed |")
	assert.Contains(t, got, "| api.example.com | passive |")
	assert.Contains(t, got, "| example.com | live |")
	assert.Contains(t, got, "| /admin | 301 | 10 | <!> attention |")
	assert.Contains(t, got, "| /css | 200 | 0 | accessible |")
	assert.Contains(t, got, "- `/private` (robots)")
	assert.Contains(t, got, "_Scan time: 42 seconds. Sahin v1.0.0_")
}

func TestPortHelpers(t *testing.T) {
	assert.Equal(t, "8080 open (http-proxy) - often admin panel / alternative service", PortLine(8080, "http-proxy"))
	assert.Equal(t, "22 open (ssh)", PortLine(22, "ssh"))
	assert.Equal(t, "SSL: yes (443)", SSLSummary(map[int]string{443: "https", 80: "http"}))
	assert.Equal(t, "SSL: no (HTTP only)", SSLSummary(map[int]string{80: "http"}))
	assert.Equal(t, "", SSLSummary(map[int]string{22: "ssh"}))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("md")
	require.NoError(t, err)
	assert.Equal(t, FormatMarkdown, f)
	assert.Equal(t, "md", f.Extension())

	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatText, f)
	assert.Equal(t, "txt", f.Extension())

	_, err = ParseFormat("pdf")
	assert.Error(t, err)
}

func TestRenderDiff(t *testing.T) {
	prev := sampleReport()
	curr := sampleReport()
	curr.ScanID = "scan-2"
	curr.Subdomains = append(curr.Subdomains, "new.example.com")
	curr.Ports = models.PortTable{"example.com": {80: "http nginx", 443: "https", 3306: "MySQL", 5432: "PostgreSQL"}}
	curr.Risk = models.RiskMedium

	got := RenderDiff(diff.ComputeDiff(curr, prev))

	assert.Contains(t, got, "| Subdomains | 2 | 3 | +1 |")
	assert.Contains(t, got, "| Open Ports | 3 | 4 | +1 |")
	assert.Contains(t, got, "| Paths | 2 | 2 | none |")
	assert.Contains(t, got, "**Risk:** Info → Medium")
	assert.Contains(t, got, "## New Subdomains (+1)\n\n- new.example.com\n")
	assert.Contains(t, got, "| example.com | 5432 | PostgreSQL |")
}

func TestRenderDiffNoChanges(t *testing.T) {
	got := RenderDiff(diff.ComputeDiff(sampleReport(), sampleReport()))

	assert.Contains(t, got, "No changes detected.")
	assert.NotContains(t, got, "## Summary")
}
