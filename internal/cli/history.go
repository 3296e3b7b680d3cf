package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pipepilot/pipepilot/internal/db"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past generation runs",
	Long: `Reads run history from the configured Postgres database. History is
optional; set history.database_url (or PIPEPILOT_DB_URL) to enable it.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openHistoryOrFail()
		if err != nil {
			return err
		}
		defer d.Close()

		runs, err := d.ListRuns(historyLimit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			cmd.Println("No runs recorded.")
			return nil
		}
		for _, r := range runs {
			cmd.Printf("%-6d %-10s %2d rounds  %s  %s\n",
				r.ID, r.Status, r.Rounds, r.StartedAt.Format("2006-01-02 15:04"), r.RepoURL)
		}
		return nil
	},
}

var historyLogCmd = &cobra.Command{
	Use:   "log <run-id>",
	Short: "Show the events of one run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid run id %q", args[0])
		}

		d, err := openHistoryOrFail()
		if err != nil {
			return err
		}
		defer d.Close()

		events, err := d.RunEvents(runID)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			cmd.Printf("No events for run %d.\n", runID)
			return nil
		}
		for _, e := range events {
			cmd.Printf("%s  %-14s %s\n", e.Timestamp.Format("15:04:05"), e.Event, e.Detail)
		}
		return nil
	},
}

func openHistoryOrFail() (*db.DB, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.History.DatabaseURL == "" {
		return nil, fmt.Errorf("no history database configured; set history.database_url or PIPEPILOT_DB_URL")
	}
	d, err := db.Open(cfg.History.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := d.Migrate(); err != nil {
		d.Close()
		return nil, err
	}
	return d, nil
}

func init() {
	historyListCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum runs to list")
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyLogCmd)
}
