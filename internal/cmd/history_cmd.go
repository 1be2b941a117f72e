package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded pipeline runs",
	Long: `History lists past runs from the run-history store, newest first.

Runs persist across invocations only when history_path is set in the
settings file; without it each process keeps its history in memory.

Examples:
  queryflow history
  queryflow history --limit 50`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum runs to show")
}

func runHistory(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	if settings.HistoryPath == "" {
		fmt.Println("No persistent history. Set history_path in the settings file to record runs across invocations.")
		return nil
	}

	store, err := openHistory(settings)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	records, err := store.List(ctx, historyLimit)
	if err != nil {
		return fmt.Errorf("list history: %w", err)
	}
	if len(records) == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}

	renderHistory(os.Stdout, records)
	return nil
}
