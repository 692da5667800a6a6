package tools

import (
	"strconv"
	"strings"

	"github.com/hakim/sahin/internal/models"
)

// GobusterArgs builds the argv for `gobuster dir`. -q and -z keep the
// output to result lines only; -k skips certificate verification.
func GobusterArgs(url, wordlist string, threads int) []string {
	if threads <= 0 {
		threads = 20
	}
	return []string{
		"dir",
		"-u", url,
		"-w", wordlist,
		"-q", "-z",
		"-t", strconv.Itoa(threads),
		"-k",
	}
}

// ParseGobuster parses result lines of the form
//
//	/admin (Status: 301) [Size: 318] [--> http://host/admin/]
//
// Lines without a status marker are ignored.
func ParseGobuster(output string) []models.PathFinding {
	var results []models.PathFinding

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !strings.Contains(line, "(Status:") {
			continue
		}

		fields := strings.Fields(line)
		path := fields[0]
		if !strings.HasPrefix(path, "/") {
			continue
		}

		status, ok := between(line, "Status:", ")")
		if !ok {
			continue
		}
		code, err := strconv.Atoi(status)
		if err != nil {
			continue
		}

		size := 0
		if raw, ok := between(line, "Size:", "]"); ok {
			if n, err := strconv.Atoi(raw); err == nil {
				size = n
			}
		}

		results = append(results, models.PathFinding{Path: path, Status: code, Size: size})
	}

	return results
}

// between returns the trimmed text after start up to the next end marker.
func between(s, start, end string) (string, bool) {
	i := strings.Index(s, start)
	if i < 0 {
		return "", false
	}
	rest := s[i+len(start):]
	j := strings.Index(rest, end)
	if j < 0 {
		return "", false
	}
	return strings.TrimSpace(rest[:j]), true
}
