package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
)

var (
	batchWorkers int
	batchJSON    bool
)

var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Answer a file of questions over a worker pool",
	Long: `Batch reads one question per line (blank lines and # comments are
skipped) and answers them concurrently. Results print in input order;
repeated questions after the first are served from the cache.

Examples:
  queryflow batch questions.txt
  queryflow batch questions.txt --workers 8`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().IntVar(&batchWorkers, "workers", 4, "Concurrent pipeline runs")
	batchCmd.Flags().BoolVar(&batchJSON, "json", false, "Emit all outcomes as JSON")
}

func runBatch(cmd *cobra.Command, args []string) error {
	queries, err := readQueries(args[0])
	if err != nil {
		return err
	}
	if len(queries) == 0 {
		return fmt.Errorf("no questions in %s", args[0])
	}

	settings, err := loadSettings()
	if err != nil {
		return err
	}
	eng, cleanup, err := buildEngine(settings)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	results := eng.AskBatch(ctx, queries, batchWorkers)
	if batchJSON {
		return printJSON(results)
	}

	failed := 0
	for _, res := range results {
		fmt.Printf("%s[%d/%d]%s %s\n", colorBold, res.Index+1, len(results), colorReset, res.Query)
		if res.Err != nil {
			failed++
			fmt.Printf("  %sfailed:%s %v\n\n", colorRed, colorReset, res.Err)
			continue
		}
		fmt.Printf("  %s\n", firstLine(res.Outcome.Answer))
		if res.Outcome.SQL != "" {
			fmt.Printf("  %ssql%s %s\n", colorDim, colorReset, res.Outcome.SQL)
		}
		fmt.Println()
	}

	fmt.Printf("%d answered, %d failed\n", len(results)-failed, failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d questions failed", failed, len(results))
	}
	return nil
}

// readQueries loads one question per line, skipping blanks and
// # comment lines.
func readQueries(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read questions: %w", err)
	}
	var queries []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		queries = append(queries, line)
	}
	return queries, nil
}
