// Package scale provides the Spectrum Scale health probe.
package scale

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"strings"
	"time"

	units "github.com/docker/go-units"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jandubois/scale-health/internal/config"
	"github.com/jandubois/scale-health/internal/mmhealth"
	"github.com/jandubois/scale-health/internal/probe"
	"github.com/jandubois/scale-health/internal/runner"
)

// Name is the probe subcommand name.
const Name = "health"

// NodeComponent is the pseudo-component covering the whole node.
const NodeComponent = "NODE"

// ErrNotInstalled is returned by CheckInstallation when mmhealth is missing.
var ErrNotInstalled = errors.New("no IBM Spectrum Scale installation detected")

var (
	now      = time.Now
	hostname = os.Hostname
)

// ServiceName returns the monitoring service name for a component.
func ServiceName(component string) string {
	return fmt.Sprintf("Spectrum Scale %s Health", titleCase(component))
}

// CheckInstallation verifies that the install directory and the mmhealth
// executable exist.
func CheckInstallation(cfg config.Config) error {
	info, err := os.Stat(cfg.InstallDir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: missing directory %s", ErrNotInstalled, cfg.InstallDir)
	}
	info, err = os.Stat(cfg.ToolPath())
	if err != nil || !info.Mode().IsRegular() {
		return fmt.Errorf("%w: missing %s", ErrNotInstalled, cfg.ToolPath())
	}
	return nil
}

// HealthCommand returns the mmhealth command line for node. An empty node
// queries the local node.
func HealthCommand(cfg config.Config, node string) string {
	if node == "" {
		return cfg.ToolPath() + " node show -Y"
	}
	return fmt.Sprintf("%s node show -N %s -Y", cfg.ToolPath(), node)
}

// MapState converts an mmhealth status label to a probe status. Labels
// outside the known vocabulary are UNKNOWN.
func MapState(state mmhealth.HealthState) probe.Status {
	switch state {
	case mmhealth.StateHealthy, mmhealth.StateTips:
		return probe.StatusOK
	case mmhealth.StateDegraded:
		return probe.StatusWarning
	case mmhealth.StateFailed:
		return probe.StatusCritical
	default:
		return probe.StatusUnknown
	}
}

func stateMessage(status probe.Status, comp string, state mmhealth.HealthState) string {
	if status == probe.StatusUnknown {
		return fmt.Sprintf("UNKNOWN: %s is in unrecognized state '%s'", comp, state)
	}
	return fmt.Sprintf("%s: %s is in state '%s'", status, comp, state)
}

// Run evaluates the health of cfg.Component on cfg.Node.
func Run(ctx context.Context, cfg config.Config, r runner.Runner) *probe.Result {
	component := strings.ToUpper(cfg.Component)
	if component == "" {
		component = NodeComponent
	}
	comp := titleCase(component)
	node := cfg.Node

	result := &probe.Result{
		Status:  probe.StatusUnknown,
		Service: ServiceName(component),
	}

	if err := CheckInstallation(cfg); err != nil {
		slog.Debug("installation check failed", "error", err)
		result.Status = probe.StatusCritical
		result.Message = "CRITICAL - No IBM Spectrum Scale Installation detected."
		return result
	}

	out, err := r.Output(ctx, HealthCommand(cfg, node))
	if err != nil {
		result.Message = fmt.Sprintf("UNKNOWN: failed to query health of node '%s': %v", node, err)
		return result
	}

	records := mmhealth.Parse(out, cfg.RecordPrefix)
	row, ok := mmhealth.Select(records, mmhealth.NodeCriteria(component))
	if !ok {
		result.Message = fmt.Sprintf("UNKNOWN: Health for Component '%s' on node '%s' not found", comp, node)
		return result
	}

	state, ok := row.Status()
	if !ok {
		result.Message = fmt.Sprintf("UNKNOWN: %s on node '%s' reports no status", comp, node)
		return result
	}

	result.Status = MapState(state)
	result.Message = stateMessage(result.Status, comp, state)
	if result.Status == probe.StatusUnknown {
		slog.Warn("unrecognized health state", "component", component, "state", state)
	}

	if cfg.Metrics {
		result.Metrics = componentMetrics(records)
	}
	if cfg.Details {
		result.LongOutput = details(records, row, component)
	}
	return result
}

// componentRows returns the NODE-entity rows of every component except the
// node pseudo-component itself.
func componentRows(records iter.Seq[mmhealth.StatusRecord]) []mmhealth.StatusRecord {
	var rows []mmhealth.StatusRecord
	for r := range records {
		if r.EntityType() == NodeComponent && r.Component() != NodeComponent {
			rows = append(rows, r)
		}
	}
	return rows
}

func componentMetrics(records iter.Seq[mmhealth.StatusRecord]) []probe.Metric {
	rows := componentRows(records)
	unhealthy := 0
	for _, r := range rows {
		state, _ := r.Status()
		if MapState(state) != probe.StatusOK {
			unhealthy++
		}
	}
	return []probe.Metric{
		{Name: "components", Value: float64(len(rows))},
		{Name: "unhealthy", Value: float64(unhealthy)},
	}
}

func details(records iter.Seq[mmhealth.StatusRecord], row mmhealth.StatusRecord, component string) []string {
	var lines []string
	if changed, ok := row.LastStatusChange(); ok {
		lines = append(lines, fmt.Sprintf("Last state change: %s ago", units.HumanDuration(now().Sub(changed))))
	}

	if component == NodeComponent {
		for _, r := range componentRows(records) {
			state, _ := r.Status()
			lines = append(lines, fmt.Sprintf("%s: %s", r.Component(), state))
		}
		return lines
	}

	for r := range records {
		if r.Component() != component || r.EntityType() == NodeComponent {
			continue
		}
		state, _ := r.Status()
		lines = append(lines, fmt.Sprintf("%s %s: %s", r.EntityType(), r.EntityName(), state))
	}
	return lines
}

// ResolveNode picks the node to check: the explicit name, then envHostname,
// then the name mmhealth reports for the local node, then the system hostname.
func ResolveNode(ctx context.Context, cfg config.Config, r runner.Runner, explicit, envHostname string) string {
	if explicit != "" {
		return explicit
	}
	if envHostname != "" {
		return envHostname
	}

	if err := CheckInstallation(cfg); err == nil {
		out, err := r.Output(ctx, HealthCommand(cfg, ""))
		if err != nil {
			slog.Debug("query local node name failed", "error", err)
		} else if row, ok := mmhealth.Select(mmhealth.Parse(out, cfg.RecordPrefix), mmhealth.NodeCriteria(NodeComponent)); ok && row.EntityName() != "" {
			return row.EntityName()
		}
	}

	if name, err := hostname(); err == nil && name != "" {
		return name
	}
	return "localhost"
}

// titleCase capitalizes every "_" separated word, so NATIVE_RAID becomes
// Native_Raid.
func titleCase(s string) string {
	caser := cases.Title(language.Und)
	words := strings.Split(s, "_")
	for i, w := range words {
		words[i] = caser.String(w)
	}
	return strings.Join(words, "_")
}
