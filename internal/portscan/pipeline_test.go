package portscan

import (
	"context"
	"errors"
	"testing"

	"github.com/hakim/sahin/internal/events"
	"github.com/hakim/sahin/internal/tools"
	"github.com/hakim/sahin/internal/tools/toolstest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exampleGrepable = "Host: 1.2.3.4 (example.com)\tPorts: 80/open/tcp//http//nginx/, 443/open/tcp//https///\n"

func newTestScanner(exec tools.Executor, lookup tools.LookupFunc, rec *toolstest.Recorder) *Scanner {
	s := NewScanner(exec, PortScanConfig{Nmap: tools.NmapOptions{ServiceDetection: true}}, rec.Sink(), nil)
	s.Lookup = lookup
	return s
}

func TestScanPortsMissingNmap(t *testing.T) {
	exec := toolstest.Static(tools.CommandResult{Output: exampleGrepable})
	rec := &toolstest.Recorder{}

	table, err := newTestScanner(exec, toolstest.Available(), rec).ScanPorts(context.Background(), []string{"example.com"})

	require.ErrorIs(t, err, tools.ErrToolUnavailable)
	assert.Empty(t, table)
	assert.Empty(t, exec.Calls())
}

func TestScanPortsCollectsOpenPorts(t *testing.T) {
	exec := toolstest.New(func(name string, args []string) tools.CommandResult {
		switch args[len(args)-1] {
		case "example.com":
			return tools.CommandResult{Output: exampleGrepable}
		case "down.example.com":
			return tools.CommandResult{ExitCode: 1, Output: "Failed to resolve"}
		default:
			return tools.CommandResult{Output: "# Nmap done\n"}
		}
	})
	rec := &toolstest.Recorder{}
	hosts := []string{"example.com", "down.example.com", "quiet.example.com"}

	table, err := newTestScanner(exec, toolstest.Available(tools.Nmap), rec).ScanPorts(context.Background(), hosts)

	require.NoError(t, err)
	assert.Equal(t, map[int]string{80: "http nginx", 443: "https"}, table["example.com"])
	assert.False(t, table.HasHost("down.example.com"))
	assert.False(t, table.HasHost("quiet.example.com"))

	calls := exec.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, "/fake/bin/nmap", calls[0].Name)
	assert.Contains(t, calls[0].Args, "-sV")
	assert.Equal(t, DefaultTimeout, calls[0].Timeout)

	scanned := rec.Of(events.HostScanned)
	require.Len(t, scanned, 3)
	assert.True(t, scanned[0].Live)
	assert.Equal(t, 3, scanned[2].Done)
	assert.Equal(t, 3, scanned[2].Total)

	warnings := rec.Of(events.Warning)
	require.Len(t, warnings, 1)
	assert.Equal(t, "down.example.com", warnings[0].Target)
	assert.True(t, errors.Is(warnings[0].Err, tools.ErrToolFailed))
}

func TestScanPortsStopsWhenCancelled(t *testing.T) {
	exec := toolstest.Static(tools.CommandResult{Output: exampleGrepable})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	table, err := newTestScanner(exec, toolstest.Available(tools.Nmap), &toolstest.Recorder{}).ScanPorts(ctx, []string{"a.example.com", "b.example.com"})

	require.NoError(t, err)
	assert.Empty(t, table)
	assert.Empty(t, exec.Calls())
}
