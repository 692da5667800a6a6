package tools

import (
	"context"
	"strings"
	"time"
)

// Tool binaries driven by the pipeline
const (
	Nmap        = "nmap"
	Subfinder   = "subfinder"
	Feroxbuster = "feroxbuster"
	Gobuster    = "gobuster"
)

// ToolRequirement represents an external tool dependency
type ToolRequirement struct {
	Name        string // Display name
	Binary      string // Executable name
	VersionFlag string // Flag that prints a version banner
	InstallCmd  string // Installation command
	Purpose     string // One-line description
}

// CheckResult represents the result of checking a single tool
type CheckResult struct {
	Tool    ToolRequirement
	Found   bool
	Path    string
	Version string
}

// DefaultTools returns the external tools sahin drives. None is strictly
// required: a missing tool only degrades its stage.
func DefaultTools() []ToolRequirement {
	return []ToolRequirement{
		{
			Name:        "nmap",
			Binary:      Nmap,
			VersionFlag: "--version",
			InstallCmd:  "apt install nmap (or brew install nmap on macOS)",
			Purpose:     "Port scan and service detection",
		},
		{
			Name:        "subfinder",
			Binary:      Subfinder,
			VersionFlag: "-version",
			InstallCmd:  "go install -v github.com/projectdiscovery/subfinder/v2/cmd/subfinder@latest",
			Purpose:     "Subdomain discovery",
		},
		{
			Name:        "feroxbuster",
			Binary:      Feroxbuster,
			VersionFlag: "--version",
			InstallCmd:  "cargo install feroxbuster (or apt install feroxbuster)",
			Purpose:     "Path brute-force (preferred)",
		},
		{
			Name:        "gobuster",
			Binary:      Gobuster,
			VersionFlag: "version",
			InstallCmd:  "go install github.com/OJ/gobuster/v3@latest",
			Purpose:     "Path brute-force (fallback)",
		},
	}
}

// CheckTools checks all tools in the provided list
func CheckTools(ctx context.Context, exec Executor, tools []ToolRequirement) []CheckResult {
	results := make([]CheckResult, len(tools))
	for i, tool := range tools {
		results[i] = CheckTool(ctx, exec, tool)
	}
	return results
}

// CheckTool resolves a single tool and, when found, asks it for a version
// banner (best effort).
func CheckTool(ctx context.Context, exec Executor, tool ToolRequirement) CheckResult {
	result := CheckResult{Tool: tool}

	path, ok := Resolve(tool.Binary)
	if !ok {
		return result
	}
	result.Found = true
	result.Path = path

	if exec != nil && tool.VersionFlag != "" {
		result.Version = firstLine(exec.Run(ctx, path, []string{tool.VersionFlag}, 3*time.Second))
	}
	if result.Version == "" {
		result.Version = "unknown"
	}
	return result
}

// firstLine extracts a short version string from a tool's banner output.
func firstLine(res CommandResult) string {
	if res.Unavailable() {
		return ""
	}
	for _, line := range strings.Split(res.Output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if len(line) > 50 {
			line = line[:50] + "..."
		}
		return line
	}
	return ""
}
