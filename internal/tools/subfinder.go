package tools

import (
	"strings"
)

// SubfinderArgs builds the argv for a silent enumeration of domain.
// Silent mode prints exactly one host name per line.
func SubfinderArgs(domain string) []string {
	return []string{"-d", domain, "-silent"}
}

// ParseHostList parses newline-delimited host names. Names are lowercased
// and stripped of a trailing dot; blank lines, wildcards and anything that
// cannot be a host name (stderr noise in combined output) are skipped.
// Order is preserved, duplicates are not removed.
func ParseHostList(output string) []string {
	var hosts []string
	for _, line := range strings.Split(output, "\n") {
		if host, ok := ParseHostLine(line); ok {
			hosts = append(hosts, host)
		}
	}
	return hosts
}

// ParseHostLine normalises a single enumerator line.
func ParseHostLine(line string) (string, bool) {
	host := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(line)), ".")
	if host == "" || strings.HasPrefix(host, "*") {
		return "", false
	}
	for _, r := range host {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
		default:
			return "", false
		}
	}
	return host, true
}
