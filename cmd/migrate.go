package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jandubois/scale-health/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run journal database migrations",
	Args:  cobra.NoArgs,
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.Flags().Bool("down", false, "Roll back all migrations")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Journal == "" {
		return fmt.Errorf("no journal configured (use --journal or the journal config key)")
	}

	ctx := cmd.Context()
	d, err := db.Connect(ctx, cfg.Journal)
	if err != nil {
		return err
	}
	defer d.Close()

	if down, _ := cmd.Flags().GetBool("down"); down {
		slog.Info("rolling back all migrations", "path", cfg.Journal)
		if err := d.Rollback(ctx); err != nil {
			return err
		}
		slog.Info("migrations rolled back")
		return nil
	}

	slog.Info("running migrations", "path", cfg.Journal)
	if err := d.Migrate(ctx); err != nil {
		return err
	}
	slog.Info("migrations complete")
	return nil
}
