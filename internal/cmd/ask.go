package cmd

import (
	"context"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
)

var askJSON bool

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer one natural-language question against the warehouse",
	Long: `Ask turns a question into SQL, runs it, and explains the result.

The question is classified to pick the relevant tables, the generated
SQL passes static checks before it touches the warehouse, and failed
executions are regenerated with the error fed back to the model.

Examples:
  queryflow ask "revenue by country"
  queryflow ask "top 5 customers by total spend"
  queryflow ask --json "orders by status"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "Emit the full outcome as JSON")
}

func runAsk(cmd *cobra.Command, args []string) error {
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

	outcome, runErr := eng.Ask(ctx, strings.Join(args, " "))
	if outcome != nil {
		if askJSON {
			if err := printJSON(outcome); err != nil {
				return err
			}
		} else {
			renderOutcome(os.Stdout, outcome, settings)
		}
	}
	return runErr
}
