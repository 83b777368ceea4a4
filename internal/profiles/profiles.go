// Package profiles provides the scan profile catalog for scand.
// Each profile maps a scan-type identifier to an opaque nmap argument
// string, a human-readable label and description, and a host timeout.
// The catalog is fixed and read-only; subtype modifiers are pure string
// transforms applied on top of a resolved profile.
package profiles

import (
	"fmt"
	"strings"
	"time"

	"github.com/cyberscan/scand/internal/errors"
)

// Subtype identifiers accepted alongside a scan type.
const (
	SubtypePortRange = "port_range"
	SubtypeIntense   = "intense"
	SubtypeSlow      = "slow"
)

const maxRetries = 2

// Profile describes a single scan configuration.
type Profile struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Args        string        `json:"args"`
	Timeout     time.Duration `json:"timeout"`
}

// catalog holds the built-in profiles in listing order. Argument strings
// are opaque to every component except the engine invocation.
var catalog = []Profile{
	{
		ID:          "basic",
		Name:        "Basic Vulnerability Scan",
		Description: "Top 1000 ports with vulnerability scripts",
		Args: "-sS -sV --top-ports 1000 --script " +
			"vulners,vulscan,http-enum,http-title,http-headers,http-server-header,http-methods,http-vuln*",
		Timeout: 180 * time.Second,
	},
	{
		ID:          "tcp",
		Name:        "TCP Port Range Check",
		Description: "Full TCP port range scan",
		Args:        "-p 1-65535 -T4 -sS -sV",
		Timeout:     300 * time.Second,
	},
	{
		ID:          "full",
		Name:        "Full Vulnerability Scan",
		Description: "All TCP ports with vulnerability scripts",
		Args: "-sS -sV -p 1-65535 --script " +
			"vulners,vulscan,http-enum,http-title,http-headers,http-server-header,http-methods,http-vuln*",
		Timeout: 600 * time.Second,
	},
	{
		ID:          "udp",
		Name:        "UDP Port Scan",
		Description: "Top 200 UDP ports scan",
		Args:        "-sU --top-ports 200 -sV",
		Timeout:     240 * time.Second,
	},
	{
		ID:          "stealth",
		Name:        "Stealth Port Scan",
		Description: "Fast stealth scan without version detection",
		Args:        "-sS --top-ports 1000 -T3 -Pn",
		Timeout:     120 * time.Second,
	},
	{
		ID:          "deep",
		Name:        "Deep Pentest Scan",
		Description: "Aggressive scan with all vulnerability scripts",
		Args: "-A -p 1-65535 -sS -sV --script " +
			"vulners,vulscan,http-enum,http-title,http-headers,http-server-header,http-methods,http-vuln*",
		Timeout: 900 * time.Second,
	},
}

// Resolve returns the profile for the given scan type.
func Resolve(scanType string) (Profile, error) {
	for _, p := range catalog {
		if p.ID == scanType {
			return p, nil
		}
	}
	return Profile{}, errors.ErrUnknownScanType(scanType)
}

// List returns all profiles in declaration order.
func List() []Profile {
	result := make([]Profile, len(catalog))
	copy(result, catalog)
	return result
}

// IDs returns the identifiers of all profiles in declaration order.
func IDs() []string {
	ids := make([]string, len(catalog))
	for i, p := range catalog {
		ids[i] = p.ID
	}
	return ids
}

// Arguments resolves a scan type and builds the final nmap argument string,
// applying the optional subtype transform and the profile's host timeout.
func Arguments(scanType, subtype string) (string, error) {
	profile, err := Resolve(scanType)
	if err != nil {
		return "", err
	}

	args := profile.Args

	switch subtype {
	case SubtypePortRange:
		// Extended port range only makes sense for profiles that scan
		// a bounded port set.
		if scanType == "stealth" || scanType == "udp" {
			args += " -p 1-1000"
		}
	case SubtypeIntense:
		args = swapTiming(args, "-T5")
	case SubtypeSlow:
		args = swapTiming(args, "-T2")
	}

	args += fmt.Sprintf(" --host-timeout %ds --max-retries %d",
		int(profile.Timeout.Seconds()), maxRetries)

	return args, nil
}

// swapTiming replaces an existing nmap timing template flag with the given
// one, or appends it when the profile carries no timing flag.
func swapTiming(args, timing string) string {
	fields := strings.Fields(args)
	for i, f := range fields {
		if len(f) == 3 && strings.HasPrefix(f, "-T") {
			fields[i] = timing
			return strings.Join(fields, " ")
		}
	}
	return args + " " + timing
}
