package tools

import (
	"strconv"
	"strings"
)

// DefaultPortList is the curated set of ports scanned outside fast mode.
const DefaultPortList = "21,22,23,25,53,80,110,143,443,445,3306,3389,5432,8080,8443"

// WellKnownServices labels ports when nmap reports no service name.
var WellKnownServices = map[int]string{
	21:   "FTP",
	22:   "SSH",
	23:   "Telnet",
	25:   "SMTP",
	53:   "DNS",
	80:   "HTTP",
	110:  "POP3",
	143:  "IMAP",
	443:  "HTTPS",
	445:  "SMB",
	3306: "MySQL",
	3389: "RDP",
	5432: "PostgreSQL",
	8080: "HTTP-Alt",
	8443: "HTTPS-Alt",
}

// NmapOptions selects the flag variant for one nmap invocation
type NmapOptions struct {
	// ServiceDetection adds -sV.
	ServiceDetection bool
	// FastPreset uses nmap's -F top-ports preset instead of Ports.
	FastPreset bool
	// Ports is a comma separated port list; empty means DefaultPortList.
	Ports string
}

// NmapArgs builds the argv for scanning a single host. -sT is a connect
// scan, which works without raw-socket privileges; -oG - writes the
// grepable format to stdout.
func NmapArgs(host string, opts NmapOptions) []string {
	args := []string{"-Pn", "-sT"}
	if opts.ServiceDetection {
		args = append(args, "-sV")
	}
	args = append(args, "--open")

	if opts.FastPreset {
		args = append(args, "-F")
	} else {
		ports := opts.Ports
		if ports == "" {
			ports = DefaultPortList
		}
		args = append(args, "-p", ports)
	}

	return append(args, "-oG", "-", host)
}

// ParseGrepable extracts open ports from nmap grepable output.
// Records look like port/state/protocol/owner/service/rpc_info/version/;
// records that are not open or do not parse are skipped.
func ParseGrepable(output string) map[int]string {
	results := make(map[int]string)

	for _, line := range strings.Split(output, "\n") {
		idx := strings.Index(line, "Ports:")
		if idx < 0 {
			continue
		}
		field := line[idx+len("Ports:"):]

		// Later grepable fields (Ignored State, OS, ...) are tab separated
		if tab := strings.IndexByte(field, '\t'); tab >= 0 {
			field = field[:tab]
		}

		for _, record := range strings.Split(field, ",") {
			if port, service, ok := parsePortRecord(record); ok {
				results[port] = service
			}
		}
	}

	return results
}

func parsePortRecord(record string) (int, string, bool) {
	record = strings.TrimSpace(record)
	if !strings.Contains(record, "/") {
		return 0, "", false
	}

	segs := strings.Split(record, "/")
	port, err := strconv.Atoi(strings.TrimSpace(segs[0]))
	if err != nil || port < 1 || port > 65535 {
		return 0, "", false
	}
	if len(segs) < 2 || !strings.Contains(strings.ToLower(segs[1]), "open") {
		return 0, "", false
	}

	service := segment(segs, 4)
	version := segment(segs, 6)

	switch {
	case service != "" && version != "":
		return port, service + " " + version, true
	case service != "":
		return port, service, true
	}

	if known, ok := WellKnownServices[port]; ok {
		return port, known, true
	}
	return port, "?", true
}

func segment(segs []string, i int) string {
	if i >= len(segs) {
		return ""
	}
	return strings.TrimSpace(segs[i])
}
