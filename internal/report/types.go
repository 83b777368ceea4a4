// Package report classifies raw scan output into severity-tagged findings
// and aggregates them into a risk-scored report.
package report

import "github.com/cyberscan/scand/internal/profiles"

// Severity levels for findings, ordered from most to least severe.
const (
	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityMedium   = "medium"
	SeverityLow      = "low"
	SeverityInfo     = "info"
)

// Finding types.
const (
	FindingOpenPort      = "open_port"
	FindingOSDetection   = "os_detection"
	FindingVulnerability = "vulnerability"
)

// Finding is a single classified observation from a scan.
type Finding struct {
	Type           string   `json:"type"`
	Severity       string   `json:"severity"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Host           string   `json:"host"`
	Port           int      `json:"port,omitempty"`
	Protocol       string   `json:"protocol,omitempty"`
	Service        string   `json:"service,omitempty"`
	Version        string   `json:"version,omitempty"`
	Script         string   `json:"script,omitempty"`
	CVEs           []string `json:"cves,omitempty"`
	OSFamily       string   `json:"os_family,omitempty"`
	OSGen          string   `json:"os_gen,omitempty"`
	Accuracy       int      `json:"accuracy,omitempty"`
	RiskLevel      string   `json:"risk_level"`
	Recommendation string   `json:"recommendation,omitempty"`
}

// PortRecord describes a single open port on a host.
type PortRecord struct {
	Port      int    `json:"port"`
	Protocol  string `json:"protocol"`
	State     string `json:"state"`
	Service   string `json:"service"`
	Product   string `json:"product"`
	Version   string `json:"version"`
	ExtraInfo string `json:"extrainfo"`
	Severity  string `json:"severity"`
}

// HostSummary describes a scanned host and its open ports.
type HostSummary struct {
	Address   string       `json:"address"`
	Hostname  string       `json:"hostname"`
	State     string       `json:"state"`
	OpenPorts []PortRecord `json:"open_ports"`
}

// Stats aggregates counts across the whole scan.
type Stats struct {
	TotalHosts     int              `json:"total_hosts"`
	UpHosts        int              `json:"up_hosts"`
	DownHosts      int              `json:"down_hosts"`
	TotalOpenPorts int              `json:"total_open_ports"`
	ScanType       string           `json:"scan_type"`
	ScanInfo       profiles.Profile `json:"scan_info"`
}

// Summary counts findings per severity.
type Summary struct {
	CriticalFindings int `json:"critical_findings"`
	HighFindings     int `json:"high_findings"`
	MediumFindings   int `json:"medium_findings"`
	LowFindings      int `json:"low_findings"`
	InfoFindings     int `json:"info_findings"`
}

// Report is the aggregated result of a completed scan.
type Report struct {
	HostsScanned    int           `json:"hosts_scanned"`
	Hosts           []HostSummary `json:"hosts"`
	Findings        []Finding     `json:"findings"`
	FindingsCount   int           `json:"findings_count"`
	RiskScore       float64       `json:"risk_score"`
	RiskLevel       string        `json:"risk_level"`
	Recommendations []string      `json:"recommendations"`
	ScanStats       Stats         `json:"scan_stats"`
	Summary         Summary       `json:"summary"`
}
