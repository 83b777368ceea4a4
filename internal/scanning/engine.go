package scanning

import (
	"context"
	"strings"

	"github.com/Ullaakut/nmap/v3"

	"github.com/cyberscan/scand/internal/logging"
)

// Engine abstracts the external scan engine. Implementations run a scan
// against a single target with an opaque argument string and return raw
// per-host records. The argument string comes straight from the profile
// catalog and must not be interpreted.
type Engine interface {
	Run(ctx context.Context, target, args string) ([]Host, error)
}

// NmapEngine invokes nmap as a subprocess through the nmap library.
type NmapEngine struct{}

// NewNmapEngine creates a new nmap-backed engine.
func NewNmapEngine() *NmapEngine {
	return &NmapEngine{}
}

// Run executes an nmap scan against the target with the given arguments.
// The context deadline bounds the subprocess lifetime.
func (e *NmapEngine) Run(ctx context.Context, target, args string) ([]Host, error) {
	scanner, err := nmap.NewScanner(ctx,
		nmap.WithTargets(target),
		nmap.WithCustomArguments(strings.Fields(args)...),
	)
	if err != nil {
		return nil, &EngineError{Op: "create scanner", Target: target, Err: err}
	}

	result, warnings, err := scanner.Run()
	if err != nil {
		return nil, &EngineError{Op: "run scan", Target: target, Err: err}
	}

	if warnings != nil && len(*warnings) > 0 {
		logging.Warn("Scan completed with warnings", "target", target, "warnings", *warnings)
	}

	return convertRun(result), nil
}

// convertRun converts nmap results to raw host records.
func convertRun(result *nmap.Run) []Host {
	hosts := make([]Host, 0, len(result.Hosts))
	for i := range result.Hosts {
		if host := convertHost(&result.Hosts[i]); host != nil {
			hosts = append(hosts, *host)
		}
	}
	return hosts
}

// convertHost converts a single nmap host to our format.
func convertHost(h *nmap.Host) *Host {
	if len(h.Addresses) == 0 {
		return nil
	}

	host := &Host{
		Address: h.Addresses[0].Addr,
		State:   h.Status.State,
		Ports:   make([]Port, 0, len(h.Ports)),
	}

	if len(h.Hostnames) > 0 {
		host.Hostname = h.Hostnames[0].Name
	}

	for j := range h.Ports {
		p := &h.Ports[j]
		host.Ports = append(host.Ports, Port{
			Number:    p.ID,
			Protocol:  p.Protocol,
			State:     p.State.State,
			Service:   p.Service.Name,
			Product:   p.Service.Product,
			Version:   p.Service.Version,
			ExtraInfo: p.Service.ExtraInfo,
		})

		// Port-level script output carries vulnerability details too.
		for k := range p.Scripts {
			host.Scripts = append(host.Scripts, ScriptResult{
				ID:     p.Scripts[k].ID,
				Output: p.Scripts[k].Output,
			})
		}
	}

	for j := range h.OS.Matches {
		m := &h.OS.Matches[j]
		for k := range m.Classes {
			c := &m.Classes[k]
			host.OSClasses = append(host.OSClasses, OSClass{
				Family:     c.Family,
				Generation: c.OSGeneration,
				Accuracy:   c.Accuracy,
			})
		}
	}

	for j := range h.HostScripts {
		host.Scripts = append(host.Scripts, ScriptResult{
			ID:     h.HostScripts[j].ID,
			Output: h.HostScripts[j].Output,
		})
	}

	return host
}
