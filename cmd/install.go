package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jandubois/scale-health/internal/config"
	"github.com/jandubois/scale-health/internal/localcheck"
	"github.com/jandubois/scale-health/internal/runner"
)

var createCheckCmd = &cobra.Command{
	Use:   "create-check",
	Short: "Install a Checkmk local check for a node and component",
	Long: `Writes a wrapper script into the Checkmk agent's local check directory so
the agent discovers a health check scoped to one node and component.`,
	Args: cobra.NoArgs,
	RunE: runCreateCheck,
}

var removeCheckCmd = &cobra.Command{
	Use:   "remove-check",
	Short: "Remove a previously installed local check",
	Args:  cobra.NoArgs,
	RunE:  runRemoveCheck,
}

func init() {
	rootCmd.AddCommand(createCheckCmd)
	rootCmd.AddCommand(removeCheckCmd)

	for _, c := range []*cobra.Command{createCheckCmd, removeCheckCmd} {
		c.Flags().StringP("node", "n", "", "Node to check (defaults to $HOSTNAME, then the local mmhealth node, then the hostname)")
		c.Flags().String("component", "", "Component to check (default NODE)")
		c.Flags().String("agent-dir", "", "Checkmk agent local check directory (default from config)")
	}
}

func runCreateCheck(cmd *cobra.Command, args []string) error {
	cfg, err := scopedConfig(cmd)
	if err != nil {
		return err
	}
	return installLocalCheck(cfg)
}

func runRemoveCheck(cmd *cobra.Command, args []string) error {
	cfg, err := scopedConfig(cmd)
	if err != nil {
		return err
	}

	path, err := localcheck.Remove(cfg.AgentLocalDir, localcheck.Check{Node: cfg.Node, Component: cfg.Component})
	if err != nil {
		return err
	}
	fmt.Printf("Removed %s\n", path)
	return nil
}

func scopedConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return config.Config{}, err
	}
	if dir, _ := cmd.Flags().GetString("agent-dir"); dir != "" {
		cfg.AgentLocalDir = dir
	}
	cfg = applyScope(cmd.Context(), cmd, cfg, runner.Exec{Timeout: cfg.Timeout})
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func installLocalCheck(cfg config.Config) error {
	executable, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}
	executable, err = filepath.EvalSymlinks(executable)
	if err != nil {
		return fmt.Errorf("failed to resolve executable path: %w", err)
	}

	path, err := localcheck.Install(cfg.AgentLocalDir, localcheck.Check{
		Executable: executable,
		Node:       cfg.Node,
		Component:  cfg.Component,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Installed local check %s\n", path)
	return nil
}
