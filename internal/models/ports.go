package models

import "sort"

// PortTable maps host -> port -> service label. Only open ports are stored;
// a host without open ports is absent.
type PortTable map[string]map[int]string

// Set records an open port for host, creating the inner map on demand.
func (t PortTable) Set(host string, port int, service string) {
	ports, ok := t[host]
	if !ok {
		ports = make(map[int]string)
		t[host] = ports
	}
	ports[port] = service
}

// HasHost reports whether any port data exists for host.
func (t PortTable) HasHost(host string) bool {
	_, ok := t[host]
	return ok
}

// IsOpen reports whether port is recorded open on host.
func (t PortTable) IsOpen(host string, port int) bool {
	_, ok := t[host][port]
	return ok
}

// TotalOpen counts open ports across all hosts.
func (t PortTable) TotalOpen() int {
	total := 0
	for _, ports := range t {
		total += len(ports)
	}
	return total
}

// Hosts returns the table's hosts in sorted order.
func (t PortTable) Hosts() []string {
	hosts := make([]string, 0, len(t))
	for h := range t {
		hosts = append(hosts, h)
	}
	sort.Strings(hosts)
	return hosts
}

// SortedPorts returns the open ports of host in ascending order.
func (t PortTable) SortedPorts(host string) []int {
	ports := make([]int, 0, len(t[host]))
	for p := range t[host] {
		ports = append(ports, p)
	}
	sort.Ints(ports)
	return ports
}

// Clone returns a deep copy so a finished report never shares maps with
// the stage that produced them.
func (t PortTable) Clone() PortTable {
	out := make(PortTable, len(t))
	for host, ports := range t {
		inner := make(map[int]string, len(ports))
		for p, svc := range ports {
			inner[p] = svc
		}
		out[host] = inner
	}
	return out
}
