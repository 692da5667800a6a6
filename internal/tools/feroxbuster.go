package tools

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/hakim/sahin/internal/models"
)

// FeroxbusterArgs builds the argv for feroxbuster in silent mode, which
// prints one discovered URL per line.
func FeroxbusterArgs(target, wordlist string) []string {
	return []string{
		"-u", target,
		"-w", wordlist,
		"-q", "--silent",
		"-k",
	}
}

// ParseFeroxbuster understands both feroxbuster output modes:
//
//	https://host/admin              (silent: bare URL, no status)
//	200  GET  1234  /admin          (tabular: status precedes the path)
//
// Silent lines get status 200. Other lines are skipped.
func ParseFeroxbuster(output string) []models.PathFinding {
	var results []models.PathFinding

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "http") {
			u, err := url.Parse(line)
			if err != nil {
				continue
			}
			path := u.Path
			if path == "" {
				path = "/"
			}
			results = append(results, models.PathFinding{Path: path, Status: 200})
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		for i, f := range fields {
			if !strings.HasPrefix(f, "/") {
				continue
			}
			status := 200
			if i > 0 && isDigits(fields[i-1]) {
				if n, err := strconv.Atoi(fields[i-1]); err == nil {
					status = n
				}
			}
			results = append(results, models.PathFinding{Path: f, Status: status})
			break
		}
	}

	return results
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
