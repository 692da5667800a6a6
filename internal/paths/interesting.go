package paths

import (
	"strings"

	"github.com/hakim/sahin/internal/models"
)

// InterestingKeywords flag a path for manual review.
var InterestingKeywords = []string{"admin", "upload", "backup", "config", "api", "login", "dashboard", "wp-admin"}

// IsInteresting reports whether path contains any interesting keyword,
// ignoring case and surrounding slashes.
func IsInteresting(path string) bool {
	p := strings.Trim(strings.ToLower(path), "/")
	for _, kw := range InterestingKeywords {
		if strings.Contains(p, kw) {
			return true
		}
	}
	return false
}

// CountInteresting counts findings whose path is interesting.
func CountInteresting(findings []models.PathFinding) int {
	n := 0
	for _, f := range findings {
		if IsInteresting(f.Path) {
			n++
		}
	}
	return n
}

// Note is the short annotation shown next to a finding.
func Note(f models.PathFinding) string {
	switch {
	case IsInteresting(f.Path):
		return "<!> attention"
	case f.Status == 200:
		return "accessible"
	case f.Status == 403:
		return "forbidden"
	}
	return ""
}
