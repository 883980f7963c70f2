package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	units "github.com/docker/go-units"
	"github.com/spf13/cobra"

	"github.com/jandubois/scale-health/internal/db"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent health outcomes from the journal",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "l", 20, "Number of entries to show")
	historyCmd.Flags().StringP("node", "n", "", "Only show entries for this node")
	historyCmd.Flags().String("component", "", "Only show entries for this component")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	d, err := openJournal(ctx, cfg.Journal)
	if err != nil {
		return err
	}
	defer d.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	node, _ := cmd.Flags().GetString("node")
	component, _ := cmd.Flags().GetString("component")

	entries, err := d.RecentResults(ctx, db.RecentFilter{
		Node:      node,
		Component: strings.ToUpper(component),
		Limit:     limit,
	})
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No journal entries")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tNODE\tCOMPONENT\tSTATUS\tDURATION\tMESSAGE")
	for _, e := range entries {
		fmt.Fprintf(w, "%s ago\t%s\t%s\t%s\t%s\t%s\n",
			units.HumanDuration(time.Since(e.ExecutedAt)),
			e.Node,
			e.Component,
			e.Status,
			e.Duration,
			e.Message,
		)
	}
	return w.Flush()
}
