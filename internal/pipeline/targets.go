package pipeline

import (
	"sort"

	"github.com/hakim/sahin/internal/models"
)

// TargetLimits caps how much of the discovered surface the path stage
// visits.
type TargetLimits struct {
	// MaxHosts is how many candidate hosts are turned into URLs.
	MaxHosts int
	// FallbackHosts is how many subdomains are considered when nothing
	// was found live.
	FallbackHosts int
	// MaxURLs is how many base URLs are brute-forced.
	MaxURLs int
}

// DefaultTargetLimits returns the stock caps.
func DefaultTargetLimits() TargetLimits {
	return TargetLimits{MaxHosts: 3, FallbackHosts: 5, MaxURLs: 2}
}

// DeriveTargets picks the base URLs for path discovery. Live hosts are
// preferred over the wider subdomain set. A host with 443 open yields an
// https URL, one with 80 open an http URL, HTTPS first; a host with no
// port data yields both. When nothing qualifies the domain itself is used
// over both schemes.
func DeriveTargets(domain string, subs, live models.HostSet, ports models.PortTable, limits TargetLimits) []string {
	limits = limits.withDefaults()
	domain = models.NormalizeHost(domain)

	// Step 1: Candidate hosts
	var hosts []string
	if len(live) > 0 {
		hosts = domainFirst(domain, live)
	} else {
		hosts = domainFirst(domain, subs)
		if len(hosts) > limits.FallbackHosts {
			hosts = hosts[:limits.FallbackHosts]
		}
	}
	if len(hosts) > limits.MaxHosts {
		hosts = hosts[:limits.MaxHosts]
	}

	// Step 2: URLs per host
	var urls []string
	for _, host := range hosts {
		if !ports.HasHost(host) {
			urls = append(urls, "https://"+host, "http://"+host)
			continue
		}
		if ports.IsOpen(host, 443) {
			urls = append(urls, "https://"+host)
		}
		if ports.IsOpen(host, 80) {
			urls = append(urls, "http://"+host)
		}
	}

	// Step 3: Fallback and cap
	if len(urls) == 0 {
		urls = []string{"https://" + domain, "http://" + domain}
	}
	if len(urls) > limits.MaxURLs {
		urls = urls[:limits.MaxURLs]
	}

	return urls
}

// domainFirst sorts the set with the scan domain leading, so the primary
// target is always visited first.
func domainFirst(domain string, set models.HostSet) []string {
	hosts := set.Sorted()
	sort.SliceStable(hosts, func(i, j int) bool {
		return hosts[i] == domain && hosts[j] != domain
	})
	return hosts
}

func (l TargetLimits) withDefaults() TargetLimits {
	def := DefaultTargetLimits()
	if l.MaxHosts <= 0 {
		l.MaxHosts = def.MaxHosts
	}
	if l.FallbackHosts <= 0 {
		l.FallbackHosts = def.FallbackHosts
	}
	if l.MaxURLs <= 0 {
		l.MaxURLs = def.MaxURLs
	}
	return l
}
