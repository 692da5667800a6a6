package pipeline

import (
	"fmt"
	"strings"

	"github.com/hakim/sahin/internal/models"
)

// ScopeConfig defines allowed scanning boundaries.
// An empty ScopeConfig (no rules) allows any target.
type ScopeConfig struct {
	// AllowedDomains is a list of domain patterns a host must match.
	// Wildcard prefix ("*.example.com") matches any subdomain at any depth.
	// Exact entry ("example.com") matches only that literal value.
	AllowedDomains []string
}

// NewScope builds a scope from comma separated or listed patterns,
// dropping blanks.
func NewScope(patterns ...string) *ScopeConfig {
	s := &ScopeConfig{}
	for _, p := range patterns {
		for _, part := range strings.Split(p, ",") {
			if part = strings.TrimSpace(part); part != "" {
				s.AllowedDomains = append(s.AllowedDomains, part)
			}
		}
	}
	return s
}

// ValidateTarget checks if a domain is within scope.
// Returns nil if allowed, error if out of scope.
// If AllowedDomains is empty, everything is allowed.
func (s *ScopeConfig) ValidateTarget(target string) error {
	if s.InScope(target) {
		return nil
	}
	return fmt.Errorf("target %q is outside allowed scope (domains: %s)",
		target, strings.Join(s.AllowedDomains, ", "))
}

// InScope reports whether host matches any allowed pattern.
func (s *ScopeConfig) InScope(host string) bool {
	if s == nil || len(s.AllowedDomains) == 0 {
		return true
	}
	for _, pattern := range s.AllowedDomains {
		if domainMatches(host, pattern) {
			return true
		}
	}
	return false
}

// FilterInScope returns the members of hosts that are in scope. The scan
// domain is always kept.
func (s *ScopeConfig) FilterInScope(domain string, hosts models.HostSet) models.HostSet {
	out := models.NewHostSet(domain)
	for h := range hosts {
		if s.InScope(h) {
			out.Add(h)
		}
	}
	return out
}

// domainMatches returns true when target satisfies the scope pattern.
//
//   - "*.example.com" matches "foo.example.com" and "foo.bar.example.com"
//     but not "example.com".
//   - "example.com" matches only the exact string "example.com".
//   - Comparison is case-insensitive and ignores a trailing dot.
func domainMatches(target, pattern string) bool {
	target = models.NormalizeHost(target)
	pattern = models.NormalizeHost(pattern)

	if !strings.HasPrefix(pattern, "*.") {
		return target == pattern
	}

	suffix := pattern[1:] // e.g. ".example.com"
	return len(target) > len(suffix) && strings.HasSuffix(target, suffix)
}
