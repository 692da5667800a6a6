package pipeline

import (
	"github.com/hakim/sahin/internal/models"
	"github.com/hakim/sahin/internal/paths"
)

// RiskyPorts are services that should rarely face the internet.
var RiskyPorts = map[int]bool{
	445:  true, // SMB
	3306: true, // MySQL
	3389: true, // RDP
	5432: true, // PostgreSQL
}

// Risk notes, one per level.
const (
	NoteMedium = "Manual review recommended."
	NoteInfo   = "Review may be useful."
	NoteLow    = "No obvious exposure."
)

// RiskAssessment is the scoring outcome for one run.
type RiskAssessment struct {
	Level            models.RiskLevel
	Note             string
	InterestingCount int
	RiskyPortCount   int
}

// CountRiskyPorts counts (host, port) pairs whose port is in RiskyPorts.
func CountRiskyPorts(ports models.PortTable) int {
	n := 0
	for _, open := range ports {
		for port := range open {
			if RiskyPorts[port] {
				n++
			}
		}
	}
	return n
}

// ScoreRisk grades a run: Medium at two or more interesting paths or
// risky ports, Info at one of either or any path at all, Low otherwise.
func ScoreRisk(findings []models.PathFinding, ports models.PortTable) RiskAssessment {
	a := RiskAssessment{
		InterestingCount: paths.CountInteresting(findings),
		RiskyPortCount:   CountRiskyPorts(ports),
	}

	switch {
	case a.InterestingCount >= 2 || a.RiskyPortCount >= 2:
		a.Level, a.Note = models.RiskMedium, NoteMedium
	case a.InterestingCount >= 1 || a.RiskyPortCount >= 1 || len(findings) > 0:
		a.Level, a.Note = models.RiskInfo, NoteInfo
	default:
		a.Level, a.Note = models.RiskLow, NoteLow
	}

	return a
}
