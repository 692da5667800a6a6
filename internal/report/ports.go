package report

import (
	"fmt"
	"strings"

	"github.com/hakim/sahin/internal/models"
)

// PortNotes annotates ports worth a second look.
var PortNotes = map[int]string{
	8080: "often admin panel / alternative service",
	8443: "often admin panel / alternative service",
	3389: "remote desktop, careful",
	3306: "database, risky if exposed",
}

// PortLine formats one open port the way the console and text report show
// it, e.g. "3306 open (MySQL) - database, risky if exposed".
func PortLine(port int, service string) string {
	line := fmt.Sprintf("%d open (%s)", port, service)
	if note, ok := PortNotes[port]; ok {
		line += " - " + note
	}
	return line
}

// SSLSummary describes TLS availability for one host's open ports, or ""
// when neither web port is open.
func SSLSummary(ports map[int]string) string {
	if _, ok := ports[443]; ok {
		return "SSL: yes (443)"
	}
	if _, ok := ports[80]; ok {
		return "SSL: no (HTTP only)"
	}
	return ""
}

// writePortSection renders each host's open ports with notes and the SSL
// summary, using hostFmt for the host heading and lineFmt per line.
func writePortSection(b *strings.Builder, table models.PortTable, hostFmt, lineFmt string) {
	for _, host := range table.Hosts() {
		ports := table[host]
		b.WriteString(fmt.Sprintf(hostFmt, host))
		for _, port := range table.SortedPorts(host) {
			b.WriteString(fmt.Sprintf(lineFmt, PortLine(port, ports[port])))
		}
		if ssl := SSLSummary(ports); ssl != "" {
			b.WriteString(fmt.Sprintf(lineFmt, ssl))
		}
	}
}
