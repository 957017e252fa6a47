package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"courtwatch/internal/config"
	"courtwatch/internal/store"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show tracked matches and recent runs",
	Long: `Print the current tracker state: every tracked match with its
status, court and notification flag, plus a summary of recent runs.

Example:
  courtwatch status --config ./courtwatch.yaml`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringP("config", "c", "courtwatch.yaml", "Path to configuration file")
	statusCmd.Flags().Int("runs", 5, "Number of recent runs to show")
}

func runStatus(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	showRuns, _ := cmd.Flags().GetInt("runs")

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	st, err := store.NewStore(cfg.Store.Driver, cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer st.Close()

	state, err := st.Load()
	if err != nil {
		return fmt.Errorf("failed to load state: %w", err)
	}

	counts := state.Count()
	fmt.Printf("Player: %s\n", cfg.Player.Slug)
	fmt.Printf("Tracked matches: %d (%d future, %d assigned, %d notified)\n\n",
		counts.Total, counts.Future, counts.Assigned, counts.Notified)

	if counts.Total > 0 {
		matches := make([]*store.Match, 0, len(state.Matches))
		for _, m := range state.Matches {
			matches = append(matches, m)
		}
		sort.Slice(matches, func(i, j int) bool {
			return matches[i].FirstSeen.Before(matches[j].FirstSeen)
		})

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "MATCH\tSTATUS\tCOURT\tNOTIFIED\tLAST SEEN")
		for _, m := range matches {
			court := m.Court
			if court == "" {
				court = "-"
			}
			notified := "no"
			if m.Notified {
				notified = "yes"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				m.ID, m.Status, court, notified, m.LastSeen.Format("2006-01-02 15:04:05"))
		}
		w.Flush()
		fmt.Println()
	}

	if len(state.History) == 0 || showRuns <= 0 {
		return nil
	}

	start := len(state.History) - showRuns
	if start < 0 {
		start = 0
	}
	recent := state.History[start:]

	fmt.Printf("Recent runs (%d of %d):\n", len(recent), len(state.History))
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIMESTAMP\tOBSERVED\tNEW\tCHECKED\tASSIGNED\tNOTIFIED\tPRUNED")
	for i := len(recent) - 1; i >= 0; i-- {
		rec := recent[i]
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%d\t%d\n",
			rec.Timestamp.Format("2006-01-02 15:04:05"),
			rec.Observed, rec.New, rec.Checked, rec.Assigned, rec.Notified, rec.Pruned)
	}
	w.Flush()

	return nil
}
