package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jandubois/scale-health/internal/config"
	"github.com/jandubois/scale-health/internal/db"
	"github.com/jandubois/scale-health/internal/probe"
	"github.com/jandubois/scale-health/internal/probes/scale"
	"github.com/jandubois/scale-health/internal/runner"
)

// Replaced in tests.
var exit = os.Exit
var stdout io.Writer = os.Stdout

var healthCmd = &cobra.Command{
	Use:   scale.Name,
	Short: "Check the health of a node or one of its components",
	Long: `Runs "mmhealth node show -N <node> -Y", selects the row of the requested
component and prints one Checkmk local check line. The exit status is
0 (OK), 1 (WARNING), 2 (CRITICAL) or 3 (UNKNOWN).`,
	// Extra arguments are reported by runHealth as UNKNOWN.
	Args: cobra.ArbitraryArgs,
	Run:  runHealth,
}

func init() {
	rootCmd.AddCommand(healthCmd)
	healthCmd.SetFlagErrorFunc(flagError)

	healthCmd.Flags().StringP("node", "n", "", "Node to check (defaults to $HOSTNAME, then the local mmhealth node, then the hostname)")
	healthCmd.Flags().String("component", "", "Component to check (default NODE)")
	healthCmd.Flags().Bool("metrics", false, "Report component counts as metrics")
	healthCmd.Flags().Bool("details", false, "Append per-component detail lines")
	healthCmd.Flags().Bool("create-check", false, "Install a local check for --node and --component instead of checking")
}

func runHealth(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()

	if len(args) > 0 {
		finishUnknown(cmd, fmt.Errorf("unexpected argument %q", args[0]))
		return
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		finishUnknown(cmd, err)
		return
	}

	r := runner.Exec{Timeout: cfg.Timeout}
	cfg = applyScope(ctx, cmd, cfg, r)
	if v, _ := cmd.Flags().GetBool("metrics"); v {
		cfg.Metrics = true
	}
	if v, _ := cmd.Flags().GetBool("details"); v {
		cfg.Details = true
	}
	if err := cfg.Validate(); err != nil {
		finishUnknown(cmd, err)
		return
	}

	if createCheck, _ := cmd.Flags().GetBool("create-check"); createCheck {
		if err := installLocalCheck(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exit(int(probe.StatusUnknown))
		}
		return
	}

	slog.Debug("checking health", "node", cfg.Node, "component", cfg.Component)

	start := time.Now()
	result := scale.Run(ctx, cfg, r)
	recordOutcome(ctx, cfg, result, start, time.Since(start))
	finish(result)
}

// applyScope fills in the node and component from flags, the config file
// and the node name fallback chain.
func applyScope(ctx context.Context, cmd *cobra.Command, cfg config.Config, r runner.Runner) config.Config {
	if component, _ := cmd.Flags().GetString("component"); component != "" {
		cfg.Component = component
	}
	cfg.Component = strings.ToUpper(cfg.Component)

	explicit, _ := cmd.Flags().GetString("node")
	if explicit == "" {
		explicit = cfg.Node
	}
	cfg.Node = scale.ResolveNode(ctx, cfg, r, explicit, os.Getenv("HOSTNAME"))
	return cfg
}

func recordOutcome(ctx context.Context, cfg config.Config, result *probe.Result, start time.Time, duration time.Duration) {
	if cfg.Journal == "" {
		return
	}
	d, err := openJournal(ctx, cfg.Journal)
	if err != nil {
		slog.Warn("journal unavailable", "path", cfg.Journal, "error", err)
		return
	}
	defer d.Close()

	if err := d.InsertResult(ctx, db.NewEntry(cfg.Node, cfg.Component, result, start, duration)); err != nil {
		slog.Warn("failed to journal result", "path", cfg.Journal, "error", err)
	}
}

func flagError(cmd *cobra.Command, err error) error {
	finishUnknown(cmd, err)
	return nil
}

// finishUnknown reports err as UNKNOWN for the component given on the
// command line.
func finishUnknown(cmd *cobra.Command, err error) {
	component, _ := cmd.Flags().GetString("component")
	if component == "" {
		component = scale.NodeComponent
	}
	finish(&probe.Result{
		Status:  probe.StatusUnknown,
		Service: scale.ServiceName(strings.ToUpper(component)),
		Message: fmt.Sprintf("UNKNOWN: %v", err),
	})
}

// finish prints the single result line and exits with its status.
func finish(result *probe.Result) {
	if err := probe.Write(stdout, result); err != nil {
		slog.Error("failed to write result", "error", err)
	}
	exit(result.Status.ExitCode())
}
