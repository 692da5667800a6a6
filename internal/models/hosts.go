package models

import (
	"sort"
	"strings"
)

// HostSet is an unordered set of case-normalised host names.
type HostSet map[string]struct{}

// NewHostSet builds a set from the given names.
func NewHostSet(names ...string) HostSet {
	s := make(HostSet, len(names))
	for _, n := range names {
		s.Add(n)
	}
	return s
}

// NormalizeHost lowercases a host name and strips surrounding whitespace
// and a trailing dot.
func NormalizeHost(name string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(name)), ".")
}

// Add inserts a normalised name; blank names are ignored.
func (s HostSet) Add(name string) {
	if n := NormalizeHost(name); n != "" {
		s[n] = struct{}{}
	}
}

// Has reports whether name is in the set.
func (s HostSet) Has(name string) bool {
	_, ok := s[NormalizeHost(name)]
	return ok
}

// Sorted returns the members in lexical order.
func (s HostSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Clone returns an independent copy of the set.
func (s HostSet) Clone() HostSet {
	out := make(HostSet, len(s))
	for n := range s {
		out[n] = struct{}{}
	}
	return out
}
