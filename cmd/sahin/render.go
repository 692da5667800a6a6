package main

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/hakim/sahin/internal/events"
	"github.com/hakim/sahin/internal/models"
	"github.com/hakim/sahin/internal/report"
)

var (
	infoColor = color.New(color.FgCyan)
	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
	failColor = color.New(color.FgRed)
	dimColor  = color.New(color.FgHiBlack)
	boldColor = color.New(color.Bold)
)

// consoleRenderer turns pipeline events into the [*]/[+]/[!] console lines.
// Events arrive from probe workers and tool readers concurrently, so every
// write is serialised.
type consoleRenderer struct {
	mu    sync.Mutex
	out   io.Writer
	quiet bool
}

func newConsoleRenderer(out io.Writer, quiet bool) *consoleRenderer {
	return &consoleRenderer{out: out, quiet: quiet}
}

// Sink adapts the renderer to an events.Sink.
func (r *consoleRenderer) Sink() events.Sink {
	return func(e events.Event) {
		if r.quiet {
			return
		}
		if line := formatEvent(e); line != "" {
			r.println(line)
		}
	}
}

// StageStart and StageDone plug into the orchestrator's stage hooks.
func (r *consoleRenderer) StageStart(name string, index, total int) {
	if r.quiet {
		return
	}
	r.println(infoColor.Sprintf("[*] Stage %d/%d: %s...", index+1, total, name))
}

func (r *consoleRenderer) StageDone(name string, index, total int, err error, elapsed time.Duration) {
	if r.quiet {
		return
	}
	if err != nil {
		r.println(failColor.Sprintf("[!] Stage %d/%d: %s FAILED (%s): %v",
			index+1, total, name, elapsed.Round(time.Millisecond), err))
		return
	}
	r.println(okColor.Sprintf("[+] Stage %d/%d: %s complete (%s)",
		index+1, total, name, elapsed.Round(time.Millisecond)))
}

// Infof prints an informational line unless quiet.
func (r *consoleRenderer) Infof(format string, args ...any) {
	if r.quiet {
		return
	}
	r.println(infoColor.Sprintf("[*] "+format, args...))
}

// Warnf prints a warning; warnings survive quiet mode.
func (r *consoleRenderer) Warnf(format string, args ...any) {
	r.println(warnColor.Sprintf("[!] "+format, args...))
}

// Summary prints the end-of-run box. It is always shown.
func (r *consoleRenderer) Summary(rep *models.Report, saved string) {
	const separator = "──────────────────────────────────────────────────"

	var b strings.Builder
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, okColor.Sprint("[+] Scan complete!"))
	fmt.Fprintln(&b, separator)
	fmt.Fprintf(&b, "    Target:    %s\n", rep.Domain)
	fmt.Fprintf(&b, "    Scan ID:   %s\n", rep.ScanID)
	fmt.Fprintf(&b, "    Profile:   %s\n", rep.Profile)
	fmt.Fprintf(&b, "    Elapsed:   %s\n", rep.Elapsed().Round(time.Second))
	if len(rep.StagesRun) > 0 {
		fmt.Fprintf(&b, "    Stages:    %s\n", strings.Join(rep.StagesRun, " -> "))
	}
	fmt.Fprintln(&b, separator)
	for _, line := range report.Summary(rep) {
		fmt.Fprintf(&b, "    %s\n", line)
	}
	fmt.Fprintf(&b, "    Risk:      %s\n", riskColor(rep.Risk).Sprintf("%s - %s", rep.Risk, rep.RiskNote))
	fmt.Fprintln(&b, separator)

	if len(rep.StageErrors) > 0 {
		fmt.Fprintln(&b, failColor.Sprint("[!] Stage errors:"))
		for _, stage := range rep.StagesRun {
			if msg, ok := rep.StageErrors[stage]; ok {
				fmt.Fprintf(&b, "    %-12s %s\n", stage+":", msg)
			}
		}
	}
	if saved != "" {
		fmt.Fprintf(&b, "[+] Report saved to %s\n", saved)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprint(r.out, b.String())
}

func (r *consoleRenderer) println(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.out, line)
}

// formatEvent returns the console line for e, or "" when e is not shown.
// Stage start/finish lines come from the stage hooks instead.
func formatEvent(e events.Event) string {
	switch e.Kind {
	case events.StageSkipped:
		return dimColor.Sprintf("[-] Skipping %s", e.Stage)
	case events.ToolSelected:
		if e.Target != "" {
			return infoColor.Sprintf("[*] %s: %s -> %s", e.Stage, e.Message, e.Target)
		}
		return infoColor.Sprintf("[*] %s: using %s", e.Stage, e.Message)
	case events.HostScanned:
		if e.Live {
			return okColor.Sprintf("[+] %s: open ports found (%d/%d)", e.Target, e.Done, e.Total)
		}
		return dimColor.Sprintf("[-] %s: no open ports (%d/%d)", e.Target, e.Done, e.Total)
	case events.SubdomainFound:
		return fmt.Sprintf("    %s", e.Target)
	case events.HostProbed:
		if !e.Live {
			return ""
		}
		return okColor.Sprintf("[+] Live: %s (%d/%d probed)", e.Target, e.Done, e.Total)
	case events.TargetsDerived:
		return infoColor.Sprintf("[*] Path discovery targets: %d URL(s)", e.Total)
	case events.PathFound:
		line := fmt.Sprintf("[+] %d %s%s", e.Status, strings.TrimRight(e.Target, "/"), e.Message)
		if e.Status >= 400 {
			return dimColor.Sprint(line)
		}
		return okColor.Sprint(line)
	case events.Warning:
		return warnColor.Sprintf("[!] Warning: %s", e.Message)
	}
	return ""
}

func riskColor(level models.RiskLevel) *color.Color {
	switch level {
	case models.RiskMedium:
		return failColor
	case models.RiskInfo:
		return warnColor
	}
	return boldColor
}
