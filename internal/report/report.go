package report

import (
	"sort"

	"github.com/cyberscan/scand/internal/profiles"
	"github.com/cyberscan/scand/internal/scanning"
)

// severityWeights drive the overall risk score.
var severityWeights = map[string]float64{
	SeverityCritical: 10,
	SeverityHigh:     7,
	SeverityMedium:   4,
	SeverityLow:      2,
	SeverityInfo:     1,
}

// Build aggregates raw host records into a risk-scored report. The scan
// type must already be validated; it only affects stats and the
// scan-specific recommendations.
func Build(hosts []scanning.Host, scanType string) Report {
	var (
		findings  []Finding
		summaries []HostSummary
		openPorts int
		upHosts   int
		downHosts int
	)

	for _, host := range hosts {
		switch host.State {
		case "up":
			upHosts++
		case "down":
			downHosts++
		}

		summary := HostSummary{
			Address:   host.Address,
			Hostname:  host.Hostname,
			State:     host.State,
			OpenPorts: []PortRecord{},
		}

		ports := make([]scanning.Port, len(host.Ports))
		copy(ports, host.Ports)
		sort.Slice(ports, func(i, j int) bool {
			if ports[i].Protocol != ports[j].Protocol {
				return ports[i].Protocol < ports[j].Protocol
			}
			return ports[i].Number < ports[j].Number
		})

		for _, p := range ports {
			if p.State != "open" {
				continue
			}

			sev := PortSeverity(int(p.Number))
			summary.OpenPorts = append(summary.OpenPorts, PortRecord{
				Port:      int(p.Number),
				Protocol:  p.Protocol,
				State:     p.State,
				Service:   p.Service,
				Product:   p.Product,
				Version:   p.Version,
				ExtraInfo: p.ExtraInfo,
				Severity:  sev,
			})
			findings = append(findings, classifyPort(host.Address, p))
			openPorts++
		}

		for _, os := range host.OSClasses {
			findings = append(findings, classifyOS(host.Address, os))
		}

		for _, s := range host.Scripts {
			if f := classifyScript(host.Address, s); f != nil {
				findings = append(findings, *f)
			}
		}

		summaries = append(summaries, summary)
	}

	score := riskScore(findings)

	profile, _ := profiles.Resolve(scanType)

	return Report{
		HostsScanned:    len(hosts),
		Hosts:           summaries,
		Findings:        findings,
		FindingsCount:   len(findings),
		RiskScore:       score,
		RiskLevel:       riskLevel(score),
		Recommendations: recommendations(findings, scanType),
		ScanStats: Stats{
			TotalHosts:     len(hosts),
			UpHosts:        upHosts,
			DownHosts:      downHosts,
			TotalOpenPorts: openPorts,
			ScanType:       scanType,
			ScanInfo:       profile,
		},
		Summary: summarize(findings),
	}
}

// riskScore averages per-finding severity weights onto a 0-10 scale.
// No findings means no measured risk.
func riskScore(findings []Finding) float64 {
	if len(findings) == 0 {
		return 0
	}

	var total float64
	for _, f := range findings {
		w, ok := severityWeights[f.Severity]
		if !ok {
			w = 1
		}
		total += w
	}

	avg := total / float64(len(findings))
	if avg > 10 {
		avg = 10
	}
	return avg
}

// riskLevel converts a numerical risk score to a categorical level.
func riskLevel(score float64) string {
	switch {
	case score >= 8:
		return SeverityCritical
	case score >= 6:
		return SeverityHigh
	case score >= 4:
		return SeverityMedium
	case score >= 2:
		return SeverityLow
	default:
		return SeverityInfo
	}
}

// recommendations derives high-level advice from the findings. The result
// is never empty.
func recommendations(findings []Finding, scanType string) []string {
	var recs []string

	var openPorts, criticalOpen, vulns int
	for _, f := range findings {
		switch f.Type {
		case FindingOpenPort:
			openPorts++
			if f.Severity == SeverityCritical {
				criticalOpen++
			}
		case FindingVulnerability:
			vulns++
		}
	}

	if criticalOpen > 0 {
		recs = append(recs, "Close or secure critical ports that don't need to be publicly accessible")
	}
	if openPorts > 10 {
		recs = append(recs, "Consider implementing a firewall to reduce attack surface")
	}

	if vulns > 0 {
		recs = append(recs,
			"Apply security patches for detected vulnerabilities",
			"Implement vulnerability management process")
	}

	switch scanType {
	case "full":
		recs = append(recs, "Regular comprehensive scanning should be part of security operations")
	case "stealth":
		recs = append(recs, "Implement intrusion detection to catch stealth scanning attempts")
	}

	if len(recs) == 0 {
		recs = append(recs, "Continue regular security assessments to maintain security posture")
	}

	return recs
}

// summarize counts findings per severity.
func summarize(findings []Finding) Summary {
	var s Summary
	for _, f := range findings {
		switch f.Severity {
		case SeverityCritical:
			s.CriticalFindings++
		case SeverityHigh:
			s.HighFindings++
		case SeverityMedium:
			s.MediumFindings++
		case SeverityLow:
			s.LowFindings++
		case SeverityInfo:
			s.InfoFindings++
		}
	}
	return s
}
