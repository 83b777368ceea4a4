package report

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/cyberscan/scand/internal/scanning"
)

// Port severity tables. Membership reflects how commonly each service is
// targeted when exposed, not the service's inherent quality.
var (
	criticalPorts = map[int]bool{
		21:   true, // FTP
		23:   true, // Telnet
		135:  true, // Windows RPC
		139:  true, // NetBIOS
		445:  true, // SMB
		1433: true, // MSSQL
		3389: true, // RDP
	}

	highPorts = map[int]bool{
		22:   true, // SSH
		80:   true, // HTTP
		443:  true, // HTTPS
		3306: true, // MySQL
		5432: true, // PostgreSQL
		6379: true, // Redis
	}

	mediumPorts = map[int]bool{
		25:  true, // SMTP
		53:  true, // DNS
		110: true, // POP3
		143: true, // IMAP
		993: true, // IMAPS
		995: true, // POP3S
	}
)

// portRecommendations maps well-known ports to hardening advice.
var portRecommendations = map[int]string{
	21:   "Consider using SFTP instead of FTP for secure file transfers",
	22:   "Ensure SSH is configured with key-based authentication and disable password auth",
	23:   "Telnet is insecure - use SSH instead",
	25:   "Secure SMTP with TLS encryption and authentication",
	53:   "Ensure DNS server is not open to amplification attacks",
	80:   "Consider redirecting HTTP traffic to HTTPS",
	135:  "Windows RPC can be exploited - restrict access",
	139:  "NetBIOS can expose sensitive information - disable if not needed",
	443:  "Ensure HTTPS uses strong ciphers and up-to-date certificates",
	445:  "SMB is commonly exploited - ensure latest patches are applied",
	1433: "SQL Server should not be directly accessible from internet",
	3306: "MySQL should be behind a firewall with restricted access",
	3389: "RDP is frequently attacked - use VPN and enable NLA",
	5432: "PostgreSQL should have restricted network access",
	6379: "Redis should not be exposed to internet without authentication",
}

const defaultRecommendation = "Review if this service needs to be publicly accessible"

// cvePattern matches CVE identifiers in raw script output.
var cvePattern = regexp.MustCompile(`CVE-\d{4}-\d+`)

// maxDescriptionLen bounds finding descriptions built from script output.
const maxDescriptionLen = 200

// PortSeverity returns the severity for an open port.
func PortSeverity(port int) string {
	switch {
	case criticalPorts[port]:
		return SeverityCritical
	case highPorts[port]:
		return SeverityHigh
	case mediumPorts[port]:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// PortRecommendation returns hardening advice for a port.
func PortRecommendation(port int) string {
	if rec, ok := portRecommendations[port]; ok {
		return rec
	}
	return defaultRecommendation
}

// portDescription builds a human-readable description of an open port.
func portDescription(p scanning.Port) string {
	service := p.Service
	if service == "" {
		service = "unknown"
	}

	desc := fmt.Sprintf("Port %d is open running %s", p.Number, service)
	if p.Product != "" {
		desc += " (" + p.Product
		if p.Version != "" {
			desc += " " + p.Version
		}
		desc += ")"
	}
	return desc
}

// classifyPort produces an open-port finding.
func classifyPort(host string, p scanning.Port) Finding {
	sev := PortSeverity(int(p.Number))
	return Finding{
		Type:           FindingOpenPort,
		Severity:       sev,
		Title:          fmt.Sprintf("Open Port %d/%s", p.Number, p.Protocol),
		Description:    portDescription(p),
		Host:           host,
		Port:           int(p.Number),
		Protocol:       p.Protocol,
		Service:        p.Service,
		Version:        p.Version,
		RiskLevel:      sev,
		Recommendation: PortRecommendation(int(p.Number)),
	}
}

// classifyOS produces an OS-detection finding.
func classifyOS(host string, os scanning.OSClass) Finding {
	family := os.Family
	if family == "" {
		family = "Unknown"
	}
	return Finding{
		Type:        FindingOSDetection,
		Severity:    SeverityInfo,
		Title:       "Operating System Detected",
		Description: strings.TrimSpace(fmt.Sprintf("Detected OS: %s %s", family, os.Generation)),
		Host:        host,
		OSFamily:    os.Family,
		OSGen:       os.Generation,
		Accuracy:    os.Accuracy,
		RiskLevel:   SeverityInfo,
	}
}

// classifyScript inspects raw script output for vulnerability indicators.
// Returns nil when the output carries none.
func classifyScript(host string, s scanning.ScriptResult) *Finding {
	if strings.Contains(s.Output, "CVE-") {
		// Duplicate CVE identifiers are preserved so occurrence counts
		// survive into the report.
		cves := cvePattern.FindAllString(s.Output, -1)
		return &Finding{
			Type:        FindingVulnerability,
			Severity:    SeverityHigh,
			Title:       fmt.Sprintf("Vulnerability Detected via %s", s.ID),
			Description: truncate(s.Output, maxDescriptionLen),
			Host:        host,
			Script:      s.ID,
			CVEs:        cves,
			RiskLevel:   SeverityHigh,
		}
	}

	if strings.Contains(strings.ToLower(s.Output), "vulnerable") {
		return &Finding{
			Type:        FindingVulnerability,
			Severity:    SeverityMedium,
			Title:       fmt.Sprintf("Potential Vulnerability via %s", s.ID),
			Description: truncate(s.Output, maxDescriptionLen),
			Host:        host,
			Script:      s.ID,
			RiskLevel:   SeverityMedium,
		}
	}

	return nil
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}
