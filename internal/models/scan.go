package models

import (
	"time"

	"github.com/google/uuid"
)

// ScanMeta contains metadata about a scan
type ScanMeta struct {
	ID          string     `json:"id"`
	Target      string     `json:"target"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Status      ScanStatus `json:"status"`
	Profile     string     `json:"profile,omitempty"`
	StagesRun   []string   `json:"stages_run,omitempty"`
	Risk        RiskLevel  `json:"risk,omitempty"`
}

// NewScan creates scan metadata with a fresh ID
func NewScan(target string) *ScanMeta {
	return &ScanMeta{
		ID:        uuid.New().String(),
		Target:    target,
		StartedAt: time.Now(),
		Status:    StatusPending,
		StagesRun: []string{},
	}
}

// Report is the aggregate, read-only result of one pipeline run. It is
// built once when the last stage finishes and must not be modified after.
type Report struct {
	ScanID      string    `json:"scan_id"`
	Domain      string    `json:"domain"`
	Profile     string    `json:"profile"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`

	Ports      PortTable     `json:"ports"`
	Subdomains []string      `json:"subdomains"`
	Live       []string      `json:"live"`
	Paths      []PathFinding `json:"paths"`
	Hints      []PathHint    `json:"hints,omitempty"`
	PathURLs   []string      `json:"path_urls,omitempty"`

	InterestingCount int       `json:"interesting_count"`
	RiskyPortCount   int       `json:"risky_port_count"`
	Risk             RiskLevel `json:"risk"`
	RiskNote         string    `json:"risk_note"`

	StagesRun   []string          `json:"stages_run"`
	StageErrors map[string]string `json:"stage_errors,omitempty"`
	Warnings    []string          `json:"warnings,omitempty"`
}

// Elapsed is the wall time of the run.
func (r *Report) Elapsed() time.Duration {
	return r.CompletedAt.Sub(r.StartedAt)
}
