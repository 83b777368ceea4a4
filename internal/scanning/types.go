// Package scanning provides the scan engine boundary for scand.
// It defines the raw per-host record types consumed by the report
// aggregator and the Engine interface implemented by the nmap runner.
package scanning

import "fmt"

// EngineError represents a failure while invoking the scan engine.
type EngineError struct {
	Op     string // Operation that failed
	Target string // Target being scanned, if applicable
	Err    error  // Original error
}

func (e *EngineError) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("%s failed for %s: %v", e.Op, e.Target, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}

// Host represents the raw scan output for a single host.
type Host struct {
	// Address is the IP address of the scanned host
	Address string
	// Hostname is the resolved hostname, if any
	Hostname string
	// State indicates whether the host is "up" or "down"
	State string
	// Ports contains per-port records across all protocols
	Ports []Port
	// OSClasses contains OS detection records, if any
	OSClasses []OSClass
	// Scripts contains host-level script output records, if any
	Scripts []ScriptResult
}

// Port represents the raw scan output for a single port.
type Port struct {
	// Number is the port number (1-65535)
	Number uint16
	// Protocol is the transport protocol ("tcp" or "udp")
	Protocol string
	// State indicates whether the port is "open", "closed", or "filtered"
	State string
	// Service is the name of the detected service, if any
	Service string
	// Product is the detected product name, if available
	Product string
	// Version is the version of the detected service, if available
	Version string
	// ExtraInfo contains additional service details, if available
	ExtraInfo string
}

// OSClass represents a single OS detection record.
type OSClass struct {
	// Family is the OS family (e.g. "Linux", "Windows")
	Family string
	// Generation is the OS generation (e.g. "5.X")
	Generation string
	// Accuracy is the detection confidence in percent
	Accuracy int
}

// ScriptResult represents raw output from a single engine script.
type ScriptResult struct {
	// ID is the script identifier
	ID string
	// Output is the raw script output text
	Output string
}
