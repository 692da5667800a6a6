package models

// ScanStatus represents the current state of a scan
type ScanStatus string

const (
	StatusPending   ScanStatus = "pending"
	StatusRunning   ScanStatus = "running"
	StatusComplete  ScanStatus = "complete"
	StatusPartial   ScanStatus = "partial"
	StatusFailed    ScanStatus = "failed"
	StatusCancelled ScanStatus = "cancelled"
)

// Terminal reports whether no further status change is expected.
func (s ScanStatus) Terminal() bool {
	switch s {
	case StatusComplete, StatusPartial, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// HasReport reports whether a scan in this status left a stored report.
func (s ScanStatus) HasReport() bool {
	return s == StatusComplete || s == StatusPartial
}

// RiskLevel is the coarse three-tier classification attached to a report
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskInfo   RiskLevel = "Info"
	RiskMedium RiskLevel = "Medium"
)

// Stage names, in canonical execution order
const (
	StagePorts      = "ports"
	StageSubdomains = "subdomains"
	StagePaths      = "paths"
)
