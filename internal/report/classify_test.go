package report

import (
	"strings"
	"testing"

	"github.com/cyberscan/scand/internal/scanning"
)

func TestPortSeverity(t *testing.T) {
	tests := []struct {
		port int
		want string
	}{
		{21, SeverityCritical},
		{23, SeverityCritical},
		{135, SeverityCritical},
		{139, SeverityCritical},
		{445, SeverityCritical},
		{1433, SeverityCritical},
		{3389, SeverityCritical},
		{22, SeverityHigh},
		{80, SeverityHigh},
		{443, SeverityHigh},
		{3306, SeverityHigh},
		{5432, SeverityHigh},
		{6379, SeverityHigh},
		{25, SeverityMedium},
		{53, SeverityMedium},
		{110, SeverityMedium},
		{143, SeverityMedium},
		{993, SeverityMedium},
		{995, SeverityMedium},
		{8080, SeverityLow},
		{9999, SeverityLow},
		{1, SeverityLow},
	}

	for _, tt := range tests {
		if got := PortSeverity(tt.port); got != tt.want {
			t.Errorf("PortSeverity(%d) = %q, want %q", tt.port, got, tt.want)
		}
	}
}

func TestPortRecommendation(t *testing.T) {
	if rec := PortRecommendation(23); !strings.Contains(rec, "SSH") {
		t.Errorf("telnet recommendation should point at SSH, got %q", rec)
	}
	if rec := PortRecommendation(54321); rec != defaultRecommendation {
		t.Errorf("unknown port should get generic recommendation, got %q", rec)
	}
}

func TestPortDescription(t *testing.T) {
	tests := []struct {
		name string
		port scanning.Port
		want string
	}{
		{
			name: "service only",
			port: scanning.Port{Number: 80, Service: "http"},
			want: "Port 80 is open running http",
		},
		{
			name: "product without version",
			port: scanning.Port{Number: 22, Service: "ssh", Product: "OpenSSH"},
			want: "Port 22 is open running ssh (OpenSSH)",
		},
		{
			name: "product and version",
			port: scanning.Port{Number: 22, Service: "ssh", Product: "OpenSSH", Version: "8.9p1"},
			want: "Port 22 is open running ssh (OpenSSH 8.9p1)",
		},
		{
			name: "unknown service",
			port: scanning.Port{Number: 12345},
			want: "Port 12345 is open running unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := portDescription(tt.port); got != tt.want {
				t.Errorf("portDescription = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClassifyScriptCVE(t *testing.T) {
	script := scanning.ScriptResult{
		ID:     "vulners",
		Output: "CVE-2021-44228 9.8 critical\nCVE-2021-45046 9.0\nCVE-2021-44228 again",
	}

	f := classifyScript("10.0.0.1", script)
	if f == nil {
		t.Fatal("expected a finding for CVE output")
	}
	if f.Severity != SeverityHigh {
		t.Errorf("CVE finding severity = %q, want high", f.Severity)
	}
	if f.Type != FindingVulnerability {
		t.Errorf("finding type = %q, want vulnerability", f.Type)
	}
	if f.Script != "vulners" {
		t.Errorf("finding script = %q", f.Script)
	}

	// Order of first appearance, duplicates preserved.
	want := []string{"CVE-2021-44228", "CVE-2021-45046", "CVE-2021-44228"}
	if len(f.CVEs) != len(want) {
		t.Fatalf("extracted %d CVEs, want %d: %v", len(f.CVEs), len(want), f.CVEs)
	}
	for i, cve := range want {
		if f.CVEs[i] != cve {
			t.Errorf("CVEs[%d] = %q, want %q", i, f.CVEs[i], cve)
		}
	}
}

func TestClassifyScriptVulnerableKeyword(t *testing.T) {
	script := scanning.ScriptResult{
		ID:     "http-vuln-check",
		Output: "The target appears VULNERABLE to something",
	}

	f := classifyScript("10.0.0.1", script)
	if f == nil {
		t.Fatal("expected a finding for vulnerable output")
	}
	if f.Severity != SeverityMedium {
		t.Errorf("keyword finding severity = %q, want medium", f.Severity)
	}
	if len(f.CVEs) != 0 {
		t.Errorf("keyword finding should carry no CVEs, got %v", f.CVEs)
	}
}

func TestClassifyScriptNoIndicators(t *testing.T) {
	script := scanning.ScriptResult{ID: "http-title", Output: "Site title: Welcome"}
	if f := classifyScript("10.0.0.1", script); f != nil {
		t.Errorf("expected no finding, got %+v", f)
	}
}

func TestClassifyScriptTruncation(t *testing.T) {
	long := "CVE-2020-1234 " + strings.Repeat("x", 500)
	f := classifyScript("10.0.0.1", scanning.ScriptResult{ID: "vulners", Output: long})
	if f == nil {
		t.Fatal("expected a finding")
	}
	if len(f.Description) != maxDescriptionLen+len("...") {
		t.Errorf("description length = %d, want %d", len(f.Description), maxDescriptionLen+3)
	}
	if !strings.HasSuffix(f.Description, "...") {
		t.Error("truncated description should end with ellipsis")
	}

	short := "CVE-2020-1234 fixed"
	f = classifyScript("10.0.0.1", scanning.ScriptResult{ID: "vulners", Output: short})
	if f.Description != short {
		t.Errorf("short description should be unmodified, got %q", f.Description)
	}
}

func TestClassifyOS(t *testing.T) {
	f := classifyOS("10.0.0.1", scanning.OSClass{Family: "Linux", Generation: "5.X", Accuracy: 95})
	if f.Severity != SeverityInfo {
		t.Errorf("OS finding severity = %q, want info", f.Severity)
	}
	if f.Description != "Detected OS: Linux 5.X" {
		t.Errorf("unexpected description %q", f.Description)
	}

	f = classifyOS("10.0.0.1", scanning.OSClass{})
	if f.Description != "Detected OS: Unknown" {
		t.Errorf("empty OS class description = %q", f.Description)
	}
}
