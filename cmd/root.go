package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jandubois/scale-health/internal/config"
	"github.com/jandubois/scale-health/internal/db"
	"github.com/jandubois/scale-health/internal/probes/scale"
)

// Version is set at build time via -ldflags "-X github.com/jandubois/scale-health/cmd.Version=..."
var Version = "dev"

const configEnv = "SCALE_HEALTH_CONFIG"

var rootCmd = &cobra.Command{
	Use:   "scale-health",
	Short: "Checkmk local check for IBM Spectrum Scale health",
	Long: `scale-health asks mmhealth for the state of a Spectrum Scale node or one of
its components and prints a single Checkmk local check line.

Running it without arguments is the same as "scale-health health".`,
	SilenceUsage: true,
}

func Execute() error {
	if len(os.Args) == 1 {
		rootCmd.SetArgs([]string{scale.Name})
	}
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Config file (or "+configEnv+" env var, default "+config.DefaultPath+")")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("journal", "", "SQLite journal of probe outcomes (disabled when empty)")

	rootCmd.Flags().BoolP("version", "v", false, "Print version and exit")
	rootCmd.Run = func(cmd *cobra.Command, args []string) {
		if v, _ := cmd.Flags().GetBool("version"); v {
			fmt.Printf("scale-health version %s\n", Version)
			return
		}
		cmd.Help()
	}
}

// loadConfig assembles the configuration from the config file and the
// persistent flags, and sets up logging on stderr.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = os.Getenv(configEnv)
	}

	cfg, err := config.Load(path)
	if err != nil {
		setupLogging(config.Default().LogLevel)
		return config.Config{}, err
	}

	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel, _ = cmd.Flags().GetString("log-level")
	}
	if cmd.Flags().Changed("journal") {
		cfg.Journal, _ = cmd.Flags().GetString("journal")
	}

	setupLogging(cfg.LogLevel)
	return cfg, nil
}

// setupLogging sends logs to stderr; stdout carries the check result.
func setupLogging(level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelWarn
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}

func openJournal(ctx context.Context, path string) (*db.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("no journal configured (use --journal or the journal config key)")
	}
	d, err := db.Connect(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := d.Migrate(ctx); err != nil {
		d.Close()
		return nil, fmt.Errorf("migrate journal: %w", err)
	}
	return d, nil
}
